// Package postprocess - Postprocessing utilities for detection models.
package postprocess

import "github.com/nvr-ai/go-detect/images"

// Result represents a single detection result.
type Result struct {
	// The bounding box of the result, in model-input pixels until unmapped.
	Box images.Rect
	// The confidence score of the result on a 0-100 scale.
	Score float32
	// The predicted class index of the result.
	Class int
}
