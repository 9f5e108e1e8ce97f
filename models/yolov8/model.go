// Package yolov8 - Decoder for anchor-free YOLOv8 style outputs with
// Distribution Focal Loss box regression.
package yolov8

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/models/model"
)

// RegMax is the number of distance bins per box side.
const RegMax = 16

// DefaultStrides are the detection head strides of the stock model.
var DefaultStrides = []int{8, 16, 32}

// YOLOv8 is the instance of the YOLOv8 decoder.
type YOLOv8 struct {
	options model.Options
	grid    []GridCell
}

// Options returns the options for the YOLOv8 decoder.
func (m *YOLOv8) Options() model.Options {
	opts := m.options
	opts.Strides = slices.Clone(m.options.Strides)
	return opts
}

// OutputShape returns the expected [N, 64+C] output shape where N is the
// total number of grid cells over all strides.
func (m *YOLOv8) OutputShape() (int, int) {
	return m.options.Rows, 4*RegMax + m.options.NumClasses
}

// NewModel creates a new decoder.
//
// Arguments:
//   - args: The arguments for creating a new model. Strides default to 8, 16
//     and 32 and every stride must divide the input size.
//
// Returns:
//   - The decoder.
func NewModel(args model.NewModelArgs) (*YOLOv8, error) {
	if args.InputSize <= 0 {
		return nil, errors.Errorf("yolov8: input size must be positive, got %d", args.InputSize)
	}
	if args.NumClasses <= 0 {
		return nil, errors.Errorf("yolov8: class count must be positive, got %d", args.NumClasses)
	}

	strides := slices.Clone(args.Strides)
	if len(strides) == 0 {
		strides = slices.Clone(DefaultStrides)
	}
	for _, s := range strides {
		if s <= 0 || args.InputSize%s != 0 {
			return nil, errors.Errorf("yolov8: input size %d is not divisible by stride %d", args.InputSize, s)
		}
	}

	layout := args.Layout
	if layout == "" {
		layout = model.LayoutChannelMajor
	}

	grid := Grid(args.InputSize, strides)

	return &YOLOv8{
		options: model.Options{
			Name:       model.ModelNameYOLOv8,
			InputSize:  args.InputSize,
			NumClasses: args.NumClasses,
			Strides:    strides,
			Layout:     layout,
			Rows:       len(grid),
		},
		grid: grid,
	}, nil
}
