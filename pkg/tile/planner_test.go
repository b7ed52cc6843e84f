package tile

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_EdgeClipping(t *testing.T) {
	grid, err := Plan(10, 10, 4)
	require.NoError(t, err)

	assert.Equal(t, 3, grid.Rows)
	assert.Equal(t, 3, grid.Cols)
	require.Equal(t, 9, grid.Count())

	for _, r := range grid.Regions {
		wantW, wantH := 4, 4
		if r.Col == 2 {
			wantW = 2
		}
		if r.Row == 2 {
			wantH = 2
		}
		assert.Equal(t, wantW, r.Width, "width of tile (%d,%d)", r.Row, r.Col)
		assert.Equal(t, wantH, r.Height, "height of tile (%d,%d)", r.Row, r.Col)
	}
}

func TestPlan_ExactMultiple(t *testing.T) {
	grid, err := Plan(512, 384, 128)
	require.NoError(t, err)

	assert.Equal(t, 3, grid.Rows)
	assert.Equal(t, 4, grid.Cols)
	require.Equal(t, 12, grid.Count())
	for _, r := range grid.Regions {
		assert.Equal(t, 128, r.Width)
		assert.Equal(t, 128, r.Height)
	}
}

func TestPlan_SingleTile(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		size          int
	}{
		{"size equals both", 64, 64, 64},
		{"size larger than both", 30, 20, 256},
		{"size equals long edge", 100, 40, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := Plan(tt.width, tt.height, tt.size)
			require.NoError(t, err)
			require.Equal(t, 1, grid.Count())
			assert.Equal(t, Region{Width: tt.width, Height: tt.height}, grid.Regions[0])
		})
	}
}

func TestPlan_RowMajorOrder(t *testing.T) {
	grid, err := Plan(7, 5, 3)
	require.NoError(t, err)

	want := []Region{
		{Row: 0, Col: 0, X: 0, Y: 0, Width: 3, Height: 3},
		{Row: 0, Col: 1, X: 3, Y: 0, Width: 3, Height: 3},
		{Row: 0, Col: 2, X: 6, Y: 0, Width: 1, Height: 3},
		{Row: 1, Col: 0, X: 0, Y: 3, Width: 3, Height: 2},
		{Row: 1, Col: 1, X: 3, Y: 3, Width: 3, Height: 2},
		{Row: 1, Col: 2, X: 6, Y: 3, Width: 1, Height: 2},
	}
	assert.Equal(t, want, grid.Regions)
}

func TestPlan_Deterministic(t *testing.T) {
	a, err := Plan(1000, 777, 256)
	require.NoError(t, err)
	b, err := Plan(1000, 777, 256)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPlan_CoversEveryPixelOnce(t *testing.T) {
	cases := [][3]int{
		{1, 1, 1},
		{10, 10, 4},
		{17, 3, 5},
		{3, 17, 5},
		{64, 48, 16},
		{100, 1, 7},
		{33, 65, 32},
	}

	for _, c := range cases {
		w, h, s := c[0], c[1], c[2]
		grid, err := Plan(w, h, s)
		require.NoError(t, err)

		assert.Equal(t, ceilDiv(w, s)*ceilDiv(h, s), grid.Count(), "count for %dx%d/%d", w, h, s)

		hits := make([]int, w*h)
		for _, r := range grid.Regions {
			assert.Zero(t, r.X%s, "x offset multiple of size")
			assert.Zero(t, r.Y%s, "y offset multiple of size")
			assert.Positive(t, r.Width)
			assert.Positive(t, r.Height)
			assert.LessOrEqual(t, r.Width, s)
			assert.LessOrEqual(t, r.Height, s)
			for y := r.Y; y < r.Y+r.Height; y++ {
				for x := r.X; x < r.X+r.Width; x++ {
					hits[y*w+x]++
				}
			}
		}
		for i, n := range hits {
			if n != 1 {
				t.Fatalf("%dx%d/%d: pixel (%d,%d) covered %d times", w, h, s, i%w, i/w, n)
			}
		}
	}
}

func TestPlan_InvalidDimension(t *testing.T) {
	tests := []struct {
		name                string
		width, height, size int
	}{
		{"zero width", 0, 10, 4},
		{"zero height", 10, 0, 4},
		{"zero size", 10, 10, 0},
		{"negative width", -1, 10, 4},
		{"negative size", 10, 10, -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := Plan(tt.width, tt.height, tt.size)
			require.ErrorIs(t, err, ErrInvalidDimension)
			assert.Nil(t, grid)
		})
	}
}

func TestGrid_At(t *testing.T) {
	grid, err := Plan(10, 10, 4)
	require.NoError(t, err)

	r, ok := grid.At(2, 1)
	require.True(t, ok)
	assert.Equal(t, Region{Row: 2, Col: 1, X: 4, Y: 8, Width: 4, Height: 2}, r)
	assert.Equal(t, image.Rect(4, 8, 8, 10), r.Rect())

	_, ok = grid.At(3, 0)
	assert.False(t, ok)
	_, ok = grid.At(0, -1)
	assert.False(t, ok)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		bound         int
		wantW, wantH  int
	}{
		{"landscape scaled", 4000, 3000, 2000, 2000, 1500},
		{"portrait scaled", 3000, 4000, 1000, 750, 1000},
		{"square scaled", 800, 800, 200, 200, 200},
		{"already within", 640, 480, 1024, 640, 480},
		{"exactly at bound", 1024, 768, 1024, 1024, 768},
		{"rounding", 1000, 333, 100, 100, 33},
		{"thin strip keeps one pixel", 5000, 2, 100, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := FitWithin(tt.width, tt.height, tt.bound)
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestFitWithin_Invalid(t *testing.T) {
	_, _, err := FitWithin(100, 100, 0)
	assert.ErrorIs(t, err, ErrInvalidDimension)
	_, _, err = FitWithin(0, 100, 50)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, 1, ceilDiv(1, 4))
	assert.Equal(t, 1, ceilDiv(4, 4))
	assert.Equal(t, 2, ceilDiv(5, 4))
	assert.Equal(t, 1, ceilDiv(math.MaxInt, math.MaxInt))
	assert.Equal(t, 2, ceilDiv(math.MaxInt, math.MaxInt-1))
	assert.Equal(t, math.MaxInt/2+1, ceilDiv(math.MaxInt, 2))
}

func TestPlan_HugeDimensions(t *testing.T) {
	grid, err := Plan(math.MaxInt, 1, math.MaxInt)
	require.NoError(t, err)
	require.Equal(t, 1, grid.Count())
	assert.Equal(t, math.MaxInt, grid.Regions[0].Width)

	grid, err = Plan(math.MaxInt, 1, math.MaxInt/2+1)
	require.NoError(t, err)
	require.Equal(t, 2, grid.Count())
	assert.Equal(t, math.MaxInt/2+1, grid.Regions[0].Width)
	assert.Equal(t, math.MaxInt/2, grid.Regions[1].Width)
}
