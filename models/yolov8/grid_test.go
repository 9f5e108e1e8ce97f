package yolov8

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGrid(t *testing.T) {
	cells := BuildGrid(64, []int{8, 16, 32})

	require.Len(t, cells, 64+16+4)

	// Row-major within a stride.
	assert.Equal(t, GridCell{GridX: 0, GridY: 0, Stride: 8}, cells[0])
	assert.Equal(t, GridCell{GridX: 7, GridY: 0, Stride: 8}, cells[7])
	assert.Equal(t, GridCell{GridX: 0, GridY: 1, Stride: 8}, cells[8])

	// Strides concatenated in order.
	assert.Equal(t, GridCell{GridX: 0, GridY: 0, Stride: 16}, cells[64])
	assert.Equal(t, GridCell{GridX: 1, GridY: 1, Stride: 32}, cells[83])
}

func TestGrid_Cached(t *testing.T) {
	a := Grid(320, DefaultStrides)
	b := Grid(320, []int{8, 16, 32})

	require.Len(t, a, 1600+400+100)
	assert.Same(t, &a[0], &b[0])

	c := Grid(640, DefaultStrides)
	assert.Len(t, c, 8400)
}

func TestGrid_Concurrent(t *testing.T) {
	done := make(chan []GridCell, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- Grid(256, []int{8, 16, 32}) }()
	}

	first := <-done
	for i := 1; i < 8; i++ {
		assert.Same(t, &first[0], &(<-done)[0])
	}
}
