package yolov8

import (
	"fmt"
	"sync"
)

// GridCell is one anchor point of the detection head.
type GridCell struct {
	GridX  int
	GridY  int
	Stride int
}

type gridKey struct {
	size    int
	strides string
}

var grids = struct {
	sync.RWMutex
	cache map[gridKey][]GridCell
}{cache: make(map[gridKey][]GridCell)}

// BuildGrid enumerates the grid cells of every stride in order. Within a
// stride cells are row-major (gy outer, gx inner).
//
// Arguments:
//   - size: The square model input side.
//   - strides: The head strides, each dividing size.
//
// Returns:
//   - []GridCell: sum over strides of (size/stride)^2 cells.
func BuildGrid(size int, strides []int) []GridCell {
	total := 0
	for _, s := range strides {
		total += (size / s) * (size / s)
	}

	cells := make([]GridCell, 0, total)
	for _, s := range strides {
		n := size / s
		for gy := 0; gy < n; gy++ {
			for gx := 0; gx < n; gx++ {
				cells = append(cells, GridCell{GridX: gx, GridY: gy, Stride: s})
			}
		}
	}

	return cells
}

// Grid returns the cached grid for (size, strides), building it on first
// use. The returned slice is shared and must not be modified.
func Grid(size int, strides []int) []GridCell {
	key := gridKey{size: size, strides: fmt.Sprint(strides)}

	grids.RLock()
	cells, ok := grids.cache[key]
	grids.RUnlock()
	if ok {
		return cells
	}

	grids.Lock()
	defer grids.Unlock()
	if cells, ok := grids.cache[key]; ok {
		return cells
	}
	cells = BuildGrid(size, strides)
	grids.cache[key] = cells

	return cells
}
