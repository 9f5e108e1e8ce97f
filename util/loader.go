// Package util - File loading helpers.
package util

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Frame is the frame number parsed from names like "frame-42.jpg", or -1.
	Frame int
}

// IsImagePath reports whether path has a still image extension.
func IsImagePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".bmp":
		return true
	}
	return false
}

// LoadDirectoryImageFiles lists all image files in a directory.
//
// Files named "frame-<n>" are ordered by n; other files follow in name order.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The image files in processing order.
// - error: Error if the directory cannot be read.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", dir)
	}

	var images []ImageFile
	for _, file := range files {
		if file.IsDir() || !IsImagePath(file.Name()) {
			continue
		}

		ext := filepath.Ext(file.Name())
		frame, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSuffix(file.Name(), ext), "frame-"))
		if err != nil {
			frame = -1
		}
		images = append(images, ImageFile{
			Path:  filepath.Join(dir, file.Name()),
			Frame: frame,
		})
	}

	sort.SliceStable(images, func(i, j int) bool {
		a, b := images[i], images[j]
		if (a.Frame < 0) != (b.Frame < 0) {
			return a.Frame >= 0
		}
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		return a.Path < b.Path
	})

	return images, nil
}

// LoadLabels reads one class label per line. Blank lines and lines starting
// with '#' are skipped.
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening labels %q", path)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		labels = append(labels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading labels %q", path)
	}
	if len(labels) == 0 {
		return nil, errors.Errorf("labels file %q is empty", path)
	}

	return labels, nil
}
