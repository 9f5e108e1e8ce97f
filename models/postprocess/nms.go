package postprocess

import (
	"github.com/nvr-ai/go-detect/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"` // Overlap above which a box is suppressed.
	ClassAware   bool    `json:"class_aware" yaml:"class_aware"`     // If true, suppress only within the same class.
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// Each candidate is compared against the boxes already kept and is dropped when
// its IoU with any of them is strictly greater than the threshold. The slice is
// narrowed in place; the returned slice shares its backing array with
// detections.
//
// Arguments:
//   - detections: Slice of detections sorted by descending confidence.
//   - config: The suppression threshold and class mode.
//
// Returns:
//   - The kept detections in their original relative order.
func ApplyGreedyNMS(detections []Result, config NMSConfig) []Result {
	kept := detections[:0]

	for _, candidate := range detections {
		suppressed := false
		for _, anchor := range kept {
			if config.ClassAware && anchor.Class != candidate.Class {
				continue
			}
			if images.CalculateIoU(anchor.Box, candidate.Box) > config.IoUThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, candidate)
		}
	}

	return kept
}
