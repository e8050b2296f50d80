package extractor

import "bolx/internal/domain"

// Assignment maps tokens to regions. ByRegion[i] lists, in token order, the
// indices of the tokens assigned to regions[i]; Unassigned lists the rest.
type Assignment struct {
	ByRegion   [][]int
	Unassigned []int
}

// Assign places every token in exactly one region or leaves it unassigned.
// A region is a candidate when its bbox, expanded by margin, contains the
// token centre. Among candidates the region whose centre is closest wins,
// then the lower Order, then the earlier declaration.
func Assign(tokens []domain.Token, regions []domain.Region, margin float64) Assignment {
	a := Assignment{ByRegion: make([][]int, len(regions))}
	for ti := range tokens {
		c := tokens[ti].BBox.Center()
		best := -1
		bestDist := 0.0
		for ri := range regions {
			if !regions[ri].BBox.Expand(margin).Contains(c) {
				continue
			}
			d := regions[ri].BBox.DistanceToCenter(c)
			if best < 0 || d < bestDist || (d == bestDist && regions[ri].Order < regions[best].Order) {
				best, bestDist = ri, d
			}
		}
		if best < 0 {
			a.Unassigned = append(a.Unassigned, ti)
			continue
		}
		a.ByRegion[best] = append(a.ByRegion[best], ti)
	}
	return a
}

func pick(tokens []domain.Token, idx []int) []domain.Token {
	out := make([]domain.Token, len(idx))
	for i, k := range idx {
		out[i] = tokens[k]
	}
	return out
}
