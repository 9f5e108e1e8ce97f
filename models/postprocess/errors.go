package postprocess

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

var (
	// ErrShapeMismatch is returned when a raw output tensor does not have the
	// dimensions a decoder expects.
	ErrShapeMismatch = errors.New("output tensor shape mismatch")
	// ErrInvalidThreshold is returned when a score or IoU threshold is outside
	// its valid range.
	ErrInvalidThreshold = errors.New("invalid threshold")
)

// ValidateThresholds checks a score threshold on the 0-100 scale and an IoU
// threshold on the 0-1 scale. Out-of-range values are rejected, never clamped.
func ValidateThresholds(score, iou float32) error {
	if math32.IsNaN(score) || score < 0 || score > 100 {
		return errors.Wrapf(ErrInvalidThreshold, "score threshold %v outside [0, 100]", score)
	}
	if math32.IsNaN(iou) || iou < 0 || iou > 1 {
		return errors.Wrapf(ErrInvalidThreshold, "iou threshold %v outside [0, 1]", iou)
	}
	return nil
}
