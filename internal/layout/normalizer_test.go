package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bolx/internal/domain"
	"bolx/internal/layout"
)

func rawToken(text string, x0, y0, x1, y1, conf float64) domain.RawToken {
	return domain.RawToken{Text: text, BBox: [4]float64{x0, y0, x1, y1}, Confidence: conf}
}

func texts(tokens []domain.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestNormalize_ReadingOrder(t *testing.T) {
	n := layout.NewNormalizer(layout.DefaultOptions())
	page := domain.RawPage{
		Index: 0,
		Tokens: []domain.RawToken{
			rawToken("26,", 150, 11, 175, 21, 0.9),
			rawToken("DATE", 10, 10, 50, 20, 0.9),
			rawToken("2025", 180, 10, 220, 20, 0.9),
			rawToken("below", 10, 40, 50, 50, 0.9),
			rawToken("August", 60, 9, 140, 19, 0.9),
		},
	}

	got := n.Normalize(page)
	assert.Equal(t, []string{"DATE", "August", "26,", "2025", "below"}, texts(got.Tokens))
}

func TestNormalize_DropsEmptyAndFixesConfidence(t *testing.T) {
	n := layout.NewNormalizer(layout.Options{})
	page := domain.RawPage{
		Index: 2,
		Tokens: []domain.RawToken{
			rawToken("  ", 0, 0, 10, 10, 0.5),
			rawToken(" digital ", 20, 0, 60, 10, 0),
			rawToken("scan", 70, 12, 40, 2, 0.4),
		},
	}

	got := n.Normalize(page)
	require.Len(t, got.Tokens, 2)
	assert.Equal(t, "digital", got.Tokens[0].Text)
	assert.Equal(t, 1.0, got.Tokens[0].Confidence)
	assert.Equal(t, 2, got.Tokens[0].PageIndex)
	// Corners given in reverse order are normalised.
	assert.Equal(t, domain.BBox{X0: 40, Y0: 2, X1: 70, Y1: 12}, got.Tokens[1].BBox)
	assert.Equal(t, 0.4, got.Tokens[1].Confidence)
}

func TestNormalize_EmptyPage(t *testing.T) {
	n := layout.NewNormalizer(layout.DefaultOptions())
	got := n.Normalize(domain.RawPage{Index: 1, Width: 600, Height: 800})

	assert.Empty(t, got.Tokens)
	assert.Empty(t, got.Lines)
	assert.Equal(t, 600.0, got.Width)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := layout.NewNormalizer(layout.DefaultOptions())
	page := domain.RawPage{
		Tokens: []domain.RawToken{
			rawToken("c", 100, 30, 120, 40, 1),
			rawToken("a", 10, 10, 30, 20, 1),
			rawToken("d", 10, 31, 30, 41, 1),
			rawToken("b", 40, 12, 60, 22, 1),
		},
		Lines: []domain.LineSegment{
			{Orientation: domain.Vertical, Position: 100, Start: 0, End: 50},
			{Orientation: domain.Horizontal, Position: 25, Start: 0, End: 200},
			{Orientation: domain.Horizontal, Position: 26, Start: 150, End: 300},
		},
	}

	first := n.Normalize(page)

	again := domain.RawPage{Lines: first.Lines}
	for _, tok := range first.Tokens {
		again.Tokens = append(again.Tokens, rawToken(tok.Text,
			tok.BBox.X0, tok.BBox.Y0, tok.BBox.X1, tok.BBox.Y1, tok.Confidence))
	}
	second := n.Normalize(again)

	assert.Equal(t, first.Tokens, second.Tokens)
	assert.Equal(t, first.Lines, second.Lines)
}

func TestMergeLines(t *testing.T) {
	lines := []domain.LineSegment{
		{Orientation: domain.Horizontal, Position: 10, Start: 0, End: 100},
		{Orientation: domain.Horizontal, Position: 12, Start: 300, End: 100},
		{Orientation: domain.Horizontal, Position: 11, Start: 500, End: 600},
		{Orientation: domain.Vertical, Position: 50, Start: 0, End: 40},
		{Orientation: domain.Horizontal, Position: 80, Start: 0, End: 100},
	}

	got := layout.MergeLines(lines, 3)
	require.Len(t, got, 4)

	// Same position band but a disjoint extent stays separate.
	assert.Equal(t, domain.Horizontal, got[0].Orientation)
	assert.Equal(t, 11.0, got[0].Position)
	assert.Equal(t, 500.0, got[0].Start)

	// Overlapping segments: position weighted by length (100 and 200).
	assert.InDelta(t, (10*100.0+12*200.0)/300.0, got[1].Position, 1e-9)
	assert.Equal(t, 0.0, got[1].Start)
	assert.Equal(t, 300.0, got[1].End)

	assert.Equal(t, 80.0, got[2].Position)
	assert.Equal(t, domain.Vertical, got[3].Orientation)
}

func TestNewNormalizer_ZeroOptionsMergeLines(t *testing.T) {
	n := layout.NewNormalizer(layout.Options{})
	page := domain.RawPage{Lines: []domain.LineSegment{
		{Orientation: domain.Horizontal, Position: 100, Start: 0, End: 200},
		{Orientation: domain.Horizontal, Position: 101, Start: 0, End: 200},
	}}

	got := n.Normalize(page)
	require.Len(t, got.Lines, 1)
	assert.InDelta(t, 100.5, got.Lines[0].Position, 1e-9)
}

func TestNormalizeDocument_SortsPages(t *testing.T) {
	n := layout.NewNormalizer(layout.DefaultOptions())
	doc := domain.SourceDocument{Pages: []domain.RawPage{{Index: 1}, {Index: 0}}}

	got := n.NormalizeDocument(doc)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].PageIndex)
	assert.Equal(t, 1, got[1].PageIndex)
}
