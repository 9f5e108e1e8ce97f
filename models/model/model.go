// Package model - Definitions shared by the detection model decoders.
package model

import (
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Name is the unique identifier of a model output layout.
type Name string

const (
	// ModelNameYOLOv5 is an anchor-decoded output: one record per candidate
	// holding (cx, cy, w, h, objectness, class scores...).
	ModelNameYOLOv5 Name = "yolov5"
	// ModelNameYOLOv8 is an anchor-free DFL output: one record per grid cell
	// holding 4x16 distance logits followed by class logits.
	ModelNameYOLOv8 Name = "yolov8"
)

// Layout describes how records are laid out in the raw output tensor.
type Layout string

const (
	// LayoutRowMajor is [1, N, K]: records are contiguous.
	LayoutRowMajor Layout = "row"
	// LayoutChannelMajor is [1, K, N]: fields are contiguous.
	LayoutChannelMajor Layout = "channel"
)

// Options is the resolved configuration of a decoder.
type Options struct {
	Name       Name   `json:"name" yaml:"name"`
	InputSize  int    `json:"input_size" yaml:"input_size"`
	NumClasses int    `json:"num_classes" yaml:"num_classes"`
	Strides    []int  `json:"strides" yaml:"strides"`
	Layout     Layout `json:"layout" yaml:"layout"`
	Rows       int    `json:"rows" yaml:"rows"`
}

// Model decodes the raw output of one detection model family into candidate
// detections in model-input pixel coordinates.
type Model interface {
	// Options returns the resolved decoder options.
	Options() Options
	// OutputShape returns the expected record count and record width.
	OutputShape() (rows, cols int)
	// Decode turns a row-major output tensor into candidates whose confidence
	// passes scoreThreshold (0-100 scale).
	Decode(output postprocess.Tensor, scoreThreshold float32) ([]postprocess.Result, error)
}

// NewModelArgs is the arguments for creating a new model.
type NewModelArgs struct {
	Name       Name   `json:"name" yaml:"name"`
	InputSize  int    `json:"input_size" yaml:"input_size"`
	NumClasses int    `json:"num_classes" yaml:"num_classes"`
	Strides    []int  `json:"strides" yaml:"strides"`
	Layout     Layout `json:"layout" yaml:"layout"`
	// Rows overrides the expected record count for exports with a
	// non-default head.
	Rows int `json:"rows" yaml:"rows"`
}
