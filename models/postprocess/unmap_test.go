package postprocess

import (
	"testing"

	"github.com/nvr-ai/go-detect/images"
	"github.com/stretchr/testify/assert"
)

func TestUnmap(t *testing.T) {
	lb := images.NewLetterbox(1280, 720, 640)
	results := []Result{
		{Box: box(100, 200, 50, 40), Score: 90},
		{Box: box(-10, 130, 40, 30), Score: 80},
	}

	Unmap(results, lb)

	assert.InDelta(t, 200, results[0].Box.X, 1e-4)
	assert.InDelta(t, 120, results[0].Box.Y, 1e-4)
	assert.InDelta(t, 100, results[0].Box.Width, 1e-4)
	assert.InDelta(t, 80, results[0].Box.Height, 1e-4)

	assert.Equal(t, float32(0), results[1].Box.X)
	assert.Equal(t, float32(0), results[1].Box.Y)
	assert.InDelta(t, 60, results[1].Box.Width, 1e-4)
	assert.InDelta(t, 40, results[1].Box.Height, 1e-4)

	for _, r := range results {
		assert.GreaterOrEqual(t, r.Box.X, float32(0))
		assert.GreaterOrEqual(t, r.Box.Y, float32(0))
		assert.LessOrEqual(t, r.Box.Right(), float32(1279))
		assert.LessOrEqual(t, r.Box.Bottom(), float32(719))
	}
}

func TestUnmap_ClipsToSquareFrame(t *testing.T) {
	lb := images.NewLetterbox(100, 100, 100)
	results := []Result{{Box: box(-5, -5, 20, 20), Score: 50}}

	Unmap(results, lb)

	assert.Equal(t, box(0, 0, 15, 15), results[0].Box)
}
