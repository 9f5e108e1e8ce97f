// Package detectors - Per-frame detection post-processing pipeline.
package detectors

import (
	"github.com/nvr-ai/go-detect/models"
)

// Config represents the configuration of a Detector.
type Config struct {
	// ScoreThreshold filters candidates below this confidence (0-100 scale).
	ScoreThreshold float32 `json:"score_threshold" yaml:"score_threshold"`

	// IoUThreshold controls Non-Maximum Suppression (0-1 scale).
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`

	// ClassAware restricts suppression to boxes of the same class.
	ClassAware bool `json:"class_aware" yaml:"class_aware"`

	// RelevantClasses lists class names to report (empty = all classes).
	RelevantClasses []string `json:"relevant_classes" yaml:"relevant_classes"`

	// Labels resolves RelevantClasses to class ids.
	Labels *models.OutputClassSet `json:"-" yaml:"-"`
}

// DefaultConfig returns a configuration with sensible defaults.
//
// Returns:
//   - Config: Score threshold 50, IoU threshold 0.45, class agnostic NMS and
//     the 80 COCO labels.
//
// @example
// config := DefaultConfig()
// config.ScoreThreshold = 35
// detector, err := NewDetector(m, config, logger)
func DefaultConfig() Config {
	return Config{
		ScoreThreshold:  50,
		IoUThreshold:    0.45,
		RelevantClasses: []string{},
		Labels:          models.YOLOClasses,
	}
}

// Params returns the per-frame parameters described by the config.
func (c Config) Params() Params {
	return Params{
		ScoreThreshold: c.ScoreThreshold,
		IoUThreshold:   c.IoUThreshold,
		ClassAware:     c.ClassAware,
	}
}
