package tile

import (
	"fmt"
	"math"
)

// Plan partitions a width x height image into square tiles of the given size.
//
// Regions are returned row-major. Tiles on the right and bottom edges are
// clipped to the image instead of padded, so their width or height may be
// smaller than size but never zero.
func Plan(width, height, size int) (*Grid, error) {
	if width <= 0 || height <= 0 || size <= 0 {
		return nil, fmt.Errorf("%w: width=%d height=%d tile size=%d", ErrInvalidDimension, width, height, size)
	}

	cols := ceilDiv(width, size)
	rows := ceilDiv(height, size)

	grid := &Grid{
		Rows:    rows,
		Cols:    cols,
		Size:    size,
		Regions: make([]Region, 0, rows*cols),
	}

	for row := 0; row < rows; row++ {
		y := row * size
		h := min(size, height-y)
		for col := 0; col < cols; col++ {
			x := col * size
			grid.Regions = append(grid.Regions, Region{
				Row:    row,
				Col:    col,
				X:      x,
				Y:      y,
				Width:  min(size, width-x),
				Height: h,
			})
		}
	}

	return grid, nil
}

// FitWithin returns the dimensions of a width x height image scaled so its
// long edge is at most bound. Images already within bound are returned
// unchanged; nothing is ever upscaled.
func FitWithin(width, height, bound int) (int, int, error) {
	if width <= 0 || height <= 0 || bound <= 0 {
		return 0, 0, fmt.Errorf("%w: width=%d height=%d bound=%d", ErrInvalidDimension, width, height, bound)
	}

	long := max(width, height)
	if long <= bound {
		return width, height, nil
	}

	scale := float64(bound) / float64(long)
	if width >= height {
		return bound, scaleEdge(height, scale), nil
	}
	return scaleEdge(width, scale), bound, nil
}

func scaleEdge(edge int, scale float64) int {
	return max(1, int(math.Round(float64(edge)*scale)))
}

// ceilDiv divides positive ints rounding up, without overflowing near MaxInt.
func ceilDiv(a, b int) int {
	return (a-1)/b + 1
}
