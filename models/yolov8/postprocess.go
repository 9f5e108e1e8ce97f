package yolov8

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// expectedBin returns the softmax-weighted mean bin index of logits.
func expectedBin(logits []float32) float32 {
	peak := logits[0]
	for _, v := range logits[1:] {
		peak = math32.Max(peak, v)
	}

	var sum, weighted float32
	for k, v := range logits {
		e := math32.Exp(v - peak)
		sum += e
		weighted += e * float32(k)
	}

	return weighted / sum
}

// Decode postprocesses the output of the YOLOv8 model.
//
// Record i belongs to grid cell i of Grid(InputSize, Strides). The box
// confidence is the sigmoid of the best class logit and a record is kept when
// it is at least scoreThreshold/100. Each of the four box sides is the
// expected bin of a 16-way softmax times the cell stride, measured from the
// cell center.
//
// Arguments:
//   - output: The [N, 64+C] row-major output.
//   - scoreThreshold: The minimum confidence on the 0-100 scale.
//
// Returns:
//   - A slice of candidates in model-input pixels with confidence scaled to
//     0-100, in grid order.
//   - ErrShapeMismatch if N or the record width do not match.
func (m *YOLOv8) Decode(output postprocess.Tensor, scoreThreshold float32) ([]postprocess.Result, error) {
	grid := m.grid
	numCols := 4*RegMax + m.options.NumClasses
	if output.Rows != len(grid) || output.Cols != numCols || len(output.Data) != output.Rows*output.Cols {
		return nil, errors.Wrapf(postprocess.ErrShapeMismatch,
			"yolov8: got %dx%d, want %dx%d", output.Rows, output.Cols, len(grid), numCols)
	}

	minConf := scoreThreshold / 100
	results := make([]postprocess.Result, 0, 64)

	for i, cell := range grid {
		row := output.Row(i)

		scores := row[4*RegMax:]
		classID := 0
		maxLogit := scores[0]
		for j := 1; j < len(scores); j++ {
			if scores[j] > maxLogit {
				maxLogit = scores[j]
				classID = j
			}
		}

		conf := sigmoid(maxLogit)
		if !(conf >= minConf) {
			continue
		}

		stride := float32(cell.Stride)
		left := expectedBin(row[0*RegMax:1*RegMax]) * stride
		top := expectedBin(row[1*RegMax:2*RegMax]) * stride
		right := expectedBin(row[2*RegMax:3*RegMax]) * stride
		bottom := expectedBin(row[3*RegMax:4*RegMax]) * stride

		cx := (float32(cell.GridX) + 0.5) * stride
		cy := (float32(cell.GridY) + 0.5) * stride
		x0 := cx - left
		y0 := cy - top

		results = append(results, postprocess.Result{
			Box: images.Rect{
				X:      x0,
				Y:      y0,
				Width:  cx + right - x0,
				Height: cy + bottom - y0,
			},
			Score: conf * 100,
			Class: classID,
		})
	}

	return results, nil
}
