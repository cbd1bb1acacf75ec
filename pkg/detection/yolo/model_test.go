package yolo

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// head builds a [4+classes][anchors] tensor from per-anchor rows.
func head(classes int, rows ...[]float32) []float32 {
	features := 4 + classes
	anchors := len(rows)
	data := make([]float32, features*anchors)
	for a, row := range rows {
		for f := 0; f < features; f++ {
			data[f*anchors+a] = row[f]
		}
	}
	return data
}

func TestDecodeOutput(t *testing.T) {
	data := head(3,
		[]float32{320, 320, 100, 200, 0.9, 0.1, 0.0},
		[]float32{100, 100, 20, 20, 0.2, 0.3, 0.1},
		[]float32{64, 64, 32, 32, 0.1, 0.0, 0.7},
	)

	got := decodeOutput(data, 7, 3, scaleFactors{x: 2, y: 1}, 0.5)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].class)
	assert.InDelta(t, 0.9, got[0].score, 1e-6)
	assert.Equal(t, image.Rect(540, 220, 740, 420), got[0].rect)

	assert.Equal(t, 2, got[1].class)
	assert.Equal(t, image.Rect(96, 48, 160, 80), got[1].rect)
}

func TestDecodeOutputMalformed(t *testing.T) {
	assert.Nil(t, decodeOutput([]float32{1, 2, 3}, 7, 3, scaleFactors{1, 1}, 0.5))
	assert.Nil(t, decodeOutput(make([]float32, 12), 4, 3, scaleFactors{1, 1}, 0.5))
}

func TestClassSeparated(t *testing.T) {
	person := image.Rect(100, 100, 300, 400)
	motorcycle := image.Rect(120, 150, 320, 420)

	rects := classSeparated([]candidate{
		{class: 3, score: 0.9, rect: motorcycle},
		{class: 0, score: 0.8, rect: person},
		{class: 0, score: 0.7, rect: person.Add(image.Pt(10, 10))},
	})
	require.Len(t, rects, 3)

	assert.Equal(t, person, rects[1], "class 0 keeps its coordinates")
	assert.True(t, rects[0].Intersect(rects[1]).Empty(), "different classes never overlap")
	assert.False(t, rects[1].Intersect(rects[2]).Empty(), "same class still overlaps")
	assert.Equal(t, motorcycle.Size(), rects[0].Size())
}
