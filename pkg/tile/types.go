package tile

import (
	"errors"
	"image"
)

// ErrInvalidDimension is returned when a width, height, tile size or bound
// is zero or negative.
var ErrInvalidDimension = errors.New("invalid dimension")

// Region is one cell of a tile grid, in pixels of the source image.
type Region struct {
	Row, Col      int
	X, Y          int
	Width, Height int
}

// Rect returns the region as an image.Rectangle with an exclusive max corner.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Grid holds the ordered regions covering an image
type Grid struct {
	Rows    int
	Cols    int
	Size    int
	Regions []Region // row-major
}

// Count returns the number of regions in the grid.
func (g *Grid) Count() int {
	return len(g.Regions)
}

// At returns the region at the given row and column.
func (g *Grid) At(row, col int) (Region, bool) {
	if row < 0 || col < 0 || row >= g.Rows || col >= g.Cols {
		return Region{}, false
	}
	return g.Regions[row*g.Cols+col], true
}
