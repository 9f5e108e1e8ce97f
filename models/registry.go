package models

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/yolov5"
	"github.com/nvr-ai/go-detect/models/yolov8"
)

// ErrUnsupportedModel is returned by NewModel for unknown model names.
var ErrUnsupportedModel = errors.New("unsupported model name")

// NewModel creates a new decoder instance based on the specified model name.
//
// This factory function is the single entry point for decoder creation,
// routing requests to the model-specific constructors. Every decoder shares
// the same output contract, so callers only ever hold a model.Model.
//
// Arguments:
//   - args: Parameters specifying the model name, input size and class count.
//
// Returns:
//   - model.Model: A configured decoder implementing the Model interface.
//   - error: An error if the model name is unsupported or validation fails.
//
// Example:
//
// ```go
//
//	m, err := NewModel(model.NewModelArgs{
//	    Name:       model.ModelNameYOLOv8,
//	    InputSize:  640,
//	    NumClasses: 80,
//	})
//	if err != nil {
//	    log.Fatalf("Failed to create decoder: %v", err)
//	}
//
// ```
func NewModel(args model.NewModelArgs) (model.Model, error) {
	switch args.Name {
	case model.ModelNameYOLOv5:
		m, err := yolov5.NewModel(args)
		if err != nil {
			return nil, err
		}
		return m, nil
	case model.ModelNameYOLOv8:
		m, err := yolov8.NewModel(args)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedModel, "%q", args.Name)
	}
}
