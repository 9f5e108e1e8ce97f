package main

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/config"
	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

func TestParseInput(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bus.jpg", "clip.MP4", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	tests := []struct {
		path    string
		want    InputType
		wantErr bool
	}{
		{"0", InputCamera, false},
		{"2", InputCamera, false},
		{filepath.Join(dir, "bus.jpg"), InputImage, false},
		{filepath.Join(dir, "clip.MP4"), InputVideo, false},
		{dir, InputDirectory, false},
		{filepath.Join(dir, "notes.txt"), InputInvalid, true},
		{filepath.Join(dir, "missing.png"), InputInvalid, true},
		{"", InputInvalid, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			src, err := parseInput(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, src.Type)
		})
	}

	src, err := parseInput("2")
	require.NoError(t, err)
	assert.Equal(t, 2, src.DeviceID)
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "camera_result.mp4", defaultOutputPath(Source{Type: InputCamera}))
	assert.Equal(t, "data/bus_result.jpg", defaultOutputPath(Source{Type: InputImage, Path: "data/bus.jpg"}))
	assert.Equal(t, "clip_result.mp4", defaultOutputPath(Source{Type: InputVideo, Path: "clip.mp4"}))
	assert.Equal(t, "frames_result", defaultOutputPath(Source{Type: InputDirectory, Path: "frames/"}))
}

func TestLabelOrigin(t *testing.T) {
	text := image.Pt(60, 12)

	// Room above the box.
	assert.Equal(t, image.Pt(10, 82), labelOrigin(image.Rect(10, 100, 50, 150), text, 6, 640))
	// Clipped to the top edge.
	assert.Equal(t, image.Pt(10, 0), labelOrigin(image.Rect(10, 5, 50, 50), text, 6, 640))
	// Shifted left to stay inside the frame.
	assert.Equal(t, image.Pt(580, 82), labelOrigin(image.Rect(600, 100, 639, 150), text, 6, 640))
}

func TestCaption(t *testing.T) {
	r := postprocess.Result{Box: images.Rect{X: 1, Y: 2, Width: 3, Height: 4}, Score: 87.34, Class: 2}
	assert.Equal(t, "car 87.3%", caption(models.YOLOClasses, r))
	assert.Equal(t, image.Rect(1, 2, 4, 6), boxRect(r))
}

func TestApplyFlags(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	f := &flags{model: "m.onnx", kind: "yolov5", score: 40, iou: 0.6, size: 320, show: false}
	applyFlags(cfg, f, map[string]bool{"model": true, "kind": true, "score": true, "show": true})

	assert.Equal(t, "m.onnx", cfg.Model.Path)
	assert.Equal(t, "yolov5", cfg.Model.Kind)
	assert.Equal(t, float32(40), cfg.Detector.ScoreThreshold)
	assert.False(t, cfg.Input.Show)

	// Unset flags keep configuration values.
	assert.InDelta(t, 0.45, cfg.Detector.IoUThreshold, 1e-6)
	assert.Equal(t, 640, cfg.Model.InputSize)
}
