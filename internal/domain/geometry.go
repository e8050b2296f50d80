package domain

import "math"

// Point is a position on a page in layout coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox is an axis-aligned rectangle with the origin at the top-left corner of
// the page; Y grows downward.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// NewBBox builds a BBox from two corners in any order.
func NewBBox(x0, y0, x1, y1 float64) BBox {
	return BBox{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// Width returns the horizontal extent.
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent.
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Area returns the rectangle area; degenerate boxes have zero area.
func (b BBox) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Width() * b.Height()
}

// IsEmpty reports whether the box has non-positive width or height.
func (b BBox) IsEmpty() bool { return b.X1 <= b.X0 || b.Y1 <= b.Y0 }

// Center returns the midpoint of the box.
func (b BBox) Center() Point {
	return Point{X: (b.X0 + b.X1) / 2, Y: (b.Y0 + b.Y1) / 2}
}

// HalfDiagonal returns half the length of the box diagonal.
func (b BBox) HalfDiagonal() float64 {
	return math.Hypot(b.Width(), b.Height()) / 2
}

// Contains reports whether p lies inside the box, edges included.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 && p.Y >= b.Y0 && p.Y <= b.Y1
}

// Expand grows the box by margin on every side.
func (b BBox) Expand(margin float64) BBox {
	return BBox{X0: b.X0 - margin, Y0: b.Y0 - margin, X1: b.X1 + margin, Y1: b.Y1 + margin}
}

// Intersection returns the overlapping part of two boxes, or an empty box.
func (b BBox) Intersection(other BBox) BBox {
	r := BBox{
		X0: math.Max(b.X0, other.X0),
		Y0: math.Max(b.Y0, other.Y0),
		X1: math.Min(b.X1, other.X1),
		Y1: math.Min(b.Y1, other.Y1),
	}
	if r.IsEmpty() {
		return BBox{}
	}
	return r
}

// Union returns the smallest box covering both boxes.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// DistanceToCenter returns the distance from p to the box centre.
func (b BBox) DistanceToCenter(p Point) float64 {
	return b.Center().Distance(p)
}
