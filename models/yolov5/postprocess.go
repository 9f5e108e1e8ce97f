package yolov5

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Decode postprocesses the output of the YOLOv5 model.
//
// A record is kept when its objectness is strictly greater than
// scoreThreshold. The objectness becomes the reported confidence unchanged
// and the label is the first class with the highest score.
//
// Arguments:
//   - output: The [N, 5+C] output of the YOLOv5 model.
//   - scoreThreshold: The minimum objectness on the 0-100 scale.
//
// Returns:
//   - A slice of candidates in model-input pixels, in record order.
//   - ErrShapeMismatch if the record width is not 5+C.
func (m *YOLOv5) Decode(output postprocess.Tensor, scoreThreshold float32) ([]postprocess.Result, error) {
	numCols := 5 + m.options.NumClasses
	if output.Cols != numCols || len(output.Data) != output.Rows*output.Cols {
		return nil, errors.Wrapf(postprocess.ErrShapeMismatch, "yolov5: got %dx%d, want Nx%d", output.Rows, output.Cols, numCols)
	}

	results := make([]postprocess.Result, 0, 64)

	for i := 0; i < output.Rows; i++ {
		row := output.Row(i)

		objConf := row[4]
		if !(objConf > scoreThreshold) {
			continue
		}

		scores := row[5:]
		classID := 0
		maxScore := scores[0]
		for j := 1; j < len(scores); j++ {
			if scores[j] > maxScore {
				maxScore = scores[j]
				classID = j
			}
		}

		w := row[2]
		h := row[3]

		results = append(results, postprocess.Result{
			Box: images.Rect{
				X:      row[0] - w/2, // cx - w/2
				Y:      row[1] - h/2, // cy - h/2
				Width:  w,
				Height: h,
			},
			Score: objConf,
			Class: classID,
		})
	}

	return results, nil
}
