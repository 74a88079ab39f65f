package dmi

import (
	"image"
	"math"
)

// gridLayout maps a flattened frame sequence onto the sprite sheet.
type gridLayout struct {
	columns, rows int
}

// cell returns the pixel rectangle of the i'th grid cell, row-major.
func (g gridLayout) cell(i, cellWidth, cellHeight int) image.Rectangle {
	x := (i % g.columns) * cellWidth
	y := (i / g.columns) * cellHeight
	return image.Rect(x, y, x+cellWidth, y+cellHeight)
}

// resolveGrid computes the grid layout of an existing sprite sheet and
// validates that it can hold the declared frames. Partial cells are
// rejected; trailing unused cells are permitted and ignored.
func resolveGrid(imgWidth, imgHeight, cellWidth, cellHeight, frames int) (gridLayout, error) {
	if cellWidth <= 0 || cellHeight <= 0 {
		return gridLayout{}, geometryErrorf("invalid cell size %dx%d", cellWidth, cellHeight)
	}
	if imgWidth%cellWidth != 0 || imgHeight%cellHeight != 0 {
		return gridLayout{}, geometryErrorf("image %dx%d is not divisible into %dx%d cells", imgWidth, imgHeight, cellWidth, cellHeight)
	}

	g := gridLayout{columns: imgWidth / cellWidth, rows: imgHeight / cellHeight}
	if g.columns == 0 || g.rows == 0 {
		return gridLayout{}, geometryErrorf("image %dx%d holds no %dx%d cells", imgWidth, imgHeight, cellWidth, cellHeight)
	}
	if frames > g.columns*g.rows {
		return gridLayout{}, geometryErrorf("metadata declares %d frames but the %dx%d cell grid holds only %d", frames, g.columns, g.rows, g.columns*g.rows)
	}

	return g, nil
}

// packGrid chooses the layout for a new sprite sheet: the most square
// grid with no wasted rows. Columns are the ceiling of the square root
// of the frame count and rows shrink to fit, which minimizes wasted
// cells and then height. Packing is a pure function of the frame
// count, so repacking an unchanged document reproduces the same sheet.
func packGrid(frames int) gridLayout {
	if frames < 1 {
		return gridLayout{columns: 1, rows: 1}
	}
	columns := int(math.Ceil(math.Sqrt(float64(frames))))
	rows := (frames + columns - 1) / columns
	return gridLayout{columns: columns, rows: rows}
}

// eachFrame visits every frame of every state in sprite sheet cell
// order: states as declared, frames in sequence, directions varying
// fastest. Both the decode slicer and the encode packer flatten through
// this one function, which is what makes them inverses.
func eachFrame(states []*IconState, fn func(s *IconState, dir, frame int) error) error {
	for _, s := range states {
		for f := 0; f < s.Frames(); f++ {
			for d := 0; d < s.Dirs(); d++ {
				if err := fn(s, d, f); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// totalFrames counts the grid cells the states occupy.
func totalFrames(states []*IconState) int {
	var n int
	for _, s := range states {
		n += s.Dirs() * s.Frames()
	}
	return n
}
