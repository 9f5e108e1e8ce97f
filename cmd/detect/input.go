package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/util"
)

// InputType represents the type of input being processed.
type InputType int

const (
	InputInvalid InputType = iota
	InputCamera
	InputVideo
	InputImage
	InputDirectory
)

func (t InputType) String() string {
	switch t {
	case InputCamera:
		return "camera"
	case InputVideo:
		return "video"
	case InputImage:
		return "image"
	case InputDirectory:
		return "directory"
	}
	return "invalid"
}

var supportedVideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// Source is a resolved input.
type Source struct {
	Type     InputType
	Path     string
	DeviceID int
}

// parseInput infers the input type: a bare integer is a camera index, a
// directory is a batch of images, anything else is classified by extension.
func parseInput(path string) (Source, error) {
	if path == "" {
		return Source{}, errors.New("no input given")
	}

	if id, err := strconv.Atoi(path); err == nil && id >= 0 {
		return Source{Type: InputCamera, Path: path, DeviceID: id}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Source{}, errors.Wrapf(err, "input %q", path)
	}
	if info.IsDir() {
		return Source{Type: InputDirectory, Path: path}, nil
	}

	if util.IsImagePath(path) {
		return Source{Type: InputImage, Path: path}, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, v := range supportedVideoExtensions {
		if ext == v {
			return Source{Type: InputVideo, Path: path}, nil
		}
	}

	return Source{}, errors.Errorf("input %q: unsupported file type %q", path, ext)
}

// defaultOutputPath places results next to the input with a "_result" suffix.
func defaultOutputPath(src Source) string {
	switch src.Type {
	case InputCamera:
		return "camera_result.mp4"
	case InputDirectory:
		return filepath.Clean(src.Path) + "_result"
	}

	ext := filepath.Ext(src.Path)
	return strings.TrimSuffix(src.Path, ext) + "_result" + ext
}
