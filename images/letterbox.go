package images

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
)

// Letterbox describes how an original WxH frame was fitted into a square SxS
// model input while preserving aspect ratio.
//
// The long side is scaled to exactly Size and the short side is rounded to the
// nearest integer. The leftover pixels along the short side are split between
// the two borders; the left/top border gets PadX/2 and PadY/2 (integer
// division), the remainder goes to the right/bottom.
type Letterbox struct {
	OriginalWidth  int
	OriginalHeight int
	Size           int
	ResizedWidth   int
	ResizedHeight  int
	Scale          float32
	PadX           int
	PadY           int
}

// NewLetterbox computes the letterbox geometry for a width x height frame and
// a square model input of the given size.
//
// Arguments:
//   - width: The original frame width in pixels.
//   - height: The original frame height in pixels.
//   - size: The square model input side.
//
// Returns:
//   - Letterbox: The geometry. Exactly one of PadX, PadY is non-zero unless the
//     frame is already square.
//
// @example
//
//	lb := NewLetterbox(1280, 720, 640)
//	// lb.Scale == 0.5, lb.ResizedHeight == 360, lb.PadY == 280, lb.PadTop() == 140
func NewLetterbox(width, height, size int) Letterbox {
	lb := Letterbox{
		OriginalWidth:  width,
		OriginalHeight: height,
		Size:           size,
	}

	if width > height {
		lb.Scale = float32(size) / float32(width)
		lb.ResizedWidth = size
		lb.ResizedHeight = int(math32.Round(float32(height) * lb.Scale))
	} else {
		lb.Scale = float32(size) / float32(height)
		lb.ResizedHeight = size
		lb.ResizedWidth = int(math32.Round(float32(width) * lb.Scale))
	}

	lb.PadX = size - lb.ResizedWidth
	lb.PadY = size - lb.ResizedHeight

	return lb
}

// PadLeft returns the border width on the left of the resized image.
func (lb Letterbox) PadLeft() int {
	return lb.PadX / 2
}

// PadTop returns the border height above the resized image.
func (lb Letterbox) PadTop() int {
	return lb.PadY / 2
}

// ToModel maps an original-frame point into model-input coordinates.
func (lb Letterbox) ToModel(x, y float32) (float32, float32) {
	return x*lb.Scale + float32(lb.PadLeft()), y*lb.Scale + float32(lb.PadTop())
}

// ToOriginal maps a model-input point back into original-frame coordinates.
// The result is not clamped.
func (lb Letterbox) ToOriginal(x, y float32) (float32, float32) {
	return (x - float32(lb.PadLeft())) / lb.Scale, (y - float32(lb.PadTop())) / lb.Scale
}

// Clamp limits a point to the original frame: x to [0, W-1] and y to [0, H-1].
func (lb Letterbox) Clamp(x, y float32) (float32, float32) {
	maxX := float32(lb.OriginalWidth - 1)
	maxY := float32(lb.OriginalHeight - 1)

	return math32.Max(0, math32.Min(x, maxX)), math32.Max(0, math32.Min(y, maxY))
}

// UnmapRect converts a model-input box into an original-frame box.
//
// Both corners are mapped back and clamped independently, then the width and
// height are recomputed from the clamped corners.
//
// Arguments:
//   - r: The box in model-input coordinates.
//
// Returns:
//   - Rect: The box in original-frame coordinates, fully inside the frame.
func (lb Letterbox) UnmapRect(r Rect) Rect {
	x0, y0 := lb.Clamp(lb.ToOriginal(r.X, r.Y))
	x1, y1 := lb.Clamp(lb.ToOriginal(r.Right(), r.Bottom()))

	return Rect{
		X:      x0,
		Y:      y0,
		Width:  math32.Max(0, x1-x0),
		Height: math32.Max(0, y1-y0),
	}
}

// LetterboxImage resizes img into a size x size canvas following the geometry
// returned by NewLetterbox. The border is filled with fill.
//
// Arguments:
//   - img: The source frame.
//   - size: The square model input side.
//   - fill: The border color.
//
// Returns:
//   - *image.RGBA: The letterboxed image.
//   - Letterbox: The geometry used, needed later to map boxes back.
func LetterboxImage(img image.Image, size int, fill color.Color) (*image.RGBA, Letterbox) {
	bounds := img.Bounds()
	lb := NewLetterbox(bounds.Dx(), bounds.Dy(), size)

	resized := resize.Resize(uint(lb.ResizedWidth), uint(lb.ResizedHeight), img, resize.Bilinear)

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)

	offset := image.Pt(lb.PadLeft(), lb.PadTop())
	dst := image.Rectangle{Min: offset, Max: offset.Add(image.Pt(lb.ResizedWidth, lb.ResizedHeight))}
	draw.Draw(canvas, dst, resized, resized.Bounds().Min, draw.Src)

	return canvas, lb
}
