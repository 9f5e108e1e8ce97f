// Package yolov5 - Decoder for anchor-based YOLOv5 style outputs.
package yolov5

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/models/model"
)

// DefaultStrides are the detection head strides of the stock model.
var DefaultStrides = []int{8, 16, 32}

// AnchorsPerCell is the number of anchors each head predicts per grid cell.
const AnchorsPerCell = 3

// YOLOv5 is the instance of the YOLOv5 decoder.
type YOLOv5 struct {
	options model.Options
}

// Options returns the options for the YOLOv5 decoder.
//
// Returns:
//   - The options for the YOLOv5 decoder.
func (m *YOLOv5) Options() model.Options {
	opts := m.options
	opts.Strides = slices.Clone(m.options.Strides)
	return opts
}

// OutputShape returns the expected [N, 5+C] output shape.
func (m *YOLOv5) OutputShape() (int, int) {
	return m.options.Rows, 5 + m.options.NumClasses
}

// NewModel creates a new decoder.
//
// Arguments:
//   - args: The arguments for creating a new model.
//
// Returns:
//   - The decoder.
func NewModel(args model.NewModelArgs) (*YOLOv5, error) {
	if args.InputSize <= 0 {
		return nil, errors.Errorf("yolov5: input size must be positive, got %d", args.InputSize)
	}
	if args.NumClasses <= 0 {
		return nil, errors.Errorf("yolov5: class count must be positive, got %d", args.NumClasses)
	}

	strides := slices.Clone(args.Strides)
	if len(strides) == 0 {
		strides = slices.Clone(DefaultStrides)
	}

	rows := args.Rows
	if rows == 0 {
		for _, s := range strides {
			if s <= 0 || args.InputSize%s != 0 {
				return nil, errors.Errorf("yolov5: input size %d is not divisible by stride %d", args.InputSize, s)
			}
			cells := args.InputSize / s
			rows += AnchorsPerCell * cells * cells
		}
	}

	layout := args.Layout
	if layout == "" {
		layout = model.LayoutRowMajor
	}

	return &YOLOv5{
		options: model.Options{
			Name:       model.ModelNameYOLOv5,
			InputSize:  args.InputSize,
			NumClasses: args.NumClasses,
			Strides:    strides,
			Layout:     layout,
			Rows:       rows,
		},
	}, nil
}
