package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDirectoryImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame-10.jpg", "frame-2.png", "cover.jpeg", "notes.txt", "frame-1.bmp"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))

	images, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, images, 4)

	assert.Equal(t, 1, images[0].Frame)
	assert.Equal(t, 2, images[1].Frame)
	assert.Equal(t, 10, images[2].Frame)
	assert.Equal(t, -1, images[3].Frame)
	assert.Equal(t, filepath.Join(dir, "cover.jpeg"), images[3].Path)

	_, err = LoadDirectoryImageFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLoadLabels(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "labels.txt")
	writeFile(t, path, "# custom set\nperson\n\n  forklift  \npallet\n")

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"person", "forklift", "pallet"}, labels)

	empty := filepath.Join(dir, "empty.txt")
	writeFile(t, empty, "\n# nothing\n")
	_, err = LoadLabels(empty)
	assert.Error(t, err)

	_, err = LoadLabels(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestIsImagePath(t *testing.T) {
	assert.True(t, IsImagePath("a/b/c.JPG"))
	assert.True(t, IsImagePath("c.png"))
	assert.False(t, IsImagePath("clip.mp4"))
	assert.False(t, IsImagePath("0"))
}
