package postprocess

import "github.com/nvr-ai/go-detect/images"

// Unmap rewrites every box from model-input coordinates into the original
// frame described by lb, clipping to the frame bounds.
func Unmap(results []Result, lb images.Letterbox) {
	for i := range results {
		results[i].Box = lb.UnmapRect(results[i].Box)
	}
}
