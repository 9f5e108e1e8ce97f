package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolution_MegaPixels(t *testing.T) {
	tests := []struct {
		name     string
		res      Resolution
		expected float64
	}{
		{"Full HD 1080p", Resolution{Width: 1920, Height: 1080}, 2.07},
		{"4K UHD", Resolution{Width: 3840, Height: 2160}, 8.29},
		{"1MP (5:4)", Resolution{Width: 1280, Height: 1024}, 1.31},
		{"Zero Width", Resolution{Width: 0, Height: 1080}, 0},
		{"Negative Width", Resolution{Width: -1920, Height: 1080}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.res.MegaPixels())
		})
	}
}

func TestResolution_String(t *testing.T) {
	res, ok := GetResolutionByType(ResolutionTypeFHD1080p)
	require.True(t, ok)
	assert.Equal(t, "Full HD 1080p (1920x1080, 2.07MP)", res.String())
}

func TestResolution_Letterbox(t *testing.T) {
	res, ok := GetResolutionByType(ResolutionTypeHD720p)
	require.True(t, ok)

	lb := res.Letterbox(640)
	assert.Equal(t, 360, lb.ResizedHeight)
	assert.Equal(t, 140, lb.PadTop())
}

func TestCameraResolutions_Ordered(t *testing.T) {
	seen := make(map[ResolutionType]bool)
	for i, r := range CameraResolutions {
		assert.False(t, seen[r.Name], "duplicate %s", r.Name)
		seen[r.Name] = true
		if i > 0 {
			assert.GreaterOrEqual(t, r.Width*r.Height, CameraResolutions[i-1].Width*CameraResolutions[i-1].Height)
		}
	}
}

func TestGetResolutionByType_Unknown(t *testing.T) {
	_, ok := GetResolutionByType("nope")
	assert.False(t, ok)
}

func TestGetHighestResolutionUnderDimensions(t *testing.T) {
	res, ok := GetHighestResolutionUnderDimensions(2000, 1100)
	require.True(t, ok)
	assert.Equal(t, ResolutionTypeFHD1080p, res.Name)

	_, ok = GetHighestResolutionUnderDimensions(100, 100)
	assert.False(t, ok)
}
