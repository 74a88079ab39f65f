package dmi

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveGrid(t *testing.T) {
	g, err := resolveGrid(96, 64, 32, 32, 6)
	require.NoError(t, err)
	assert.Equal(t, gridLayout{columns: 3, rows: 2}, g)

	// Trailing unused cells are fine.
	g, err = resolveGrid(96, 64, 32, 32, 5)
	require.NoError(t, err)
	assert.Equal(t, gridLayout{columns: 3, rows: 2}, g)
}

func TestResolveGridErrors(t *testing.T) {
	tables := []struct {
		name                                               string
		imgWidth, imgHeight, cellWidth, cellHeight, frames int
	}{
		{"partial cells", 100, 64, 32, 32, 6},
		{"too many frames", 96, 64, 32, 32, 7},
		{"zero cell size", 96, 64, 0, 32, 6},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := resolveGrid(table.imgWidth, table.imgHeight, table.cellWidth, table.cellHeight, table.frames)
			require.Error(t, err)
			assert.IsType(t, new(GeometryError), err)
		})
	}
}

func TestCell(t *testing.T) {
	g := gridLayout{columns: 3, rows: 2}

	assert.Equal(t, image.Rect(0, 0, 32, 32), g.cell(0, 32, 32))
	assert.Equal(t, image.Rect(64, 0, 96, 32), g.cell(2, 32, 32))
	assert.Equal(t, image.Rect(0, 32, 32, 64), g.cell(3, 32, 32))
	assert.Equal(t, image.Rect(64, 32, 96, 64), g.cell(5, 32, 32))
}

func TestPackGrid(t *testing.T) {
	tables := []struct {
		frames, columns, rows int
	}{
		{1, 1, 1},
		{2, 2, 1},
		{4, 2, 2},
		{5, 3, 2},
		{6, 3, 2},
		{9, 3, 3},
		{10, 4, 3},
	}

	for _, table := range tables {
		g := packGrid(table.frames)
		assert.Equal(t, gridLayout{columns: table.columns, rows: table.rows}, g, "frames = %d", table.frames)
	}
}

func TestEachFrameOrder(t *testing.T) {
	a, err := NewState("a", 1, 2)
	require.NoError(t, err)
	b, err := NewState("b", 4, 1)
	require.NoError(t, err)

	type visit struct {
		name       string
		dir, frame int
	}
	var visits []visit
	require.NoError(t, eachFrame([]*IconState{a, b}, func(s *IconState, dir, frame int) error {
		visits = append(visits, visit{s.Name, dir, frame})
		return nil
	}))

	assert.Equal(t, []visit{
		{"a", 0, 0},
		{"a", 0, 1},
		{"b", 0, 0},
		{"b", 1, 0},
		{"b", 2, 0},
		{"b", 3, 0},
	}, visits)

	assert.Equal(t, 6, totalFrames([]*IconState{a, b}))
}
