package inference

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/images"
)

// Normalization maps 0-255 pixel values into model input values as
// (v - Mean[c]) * Norm[c], per channel in RGB order.
type Normalization struct {
	Mean [3]float32
	Norm [3]float32
	// SwapRB feeds channels in BGR order.
	SwapRB bool
	// Fill is the letterbox border color.
	Fill color.RGBA
}

// DefaultNormalization scales pixels to [0, 1] with a black border.
func DefaultNormalization() Normalization {
	return Normalization{
		Norm: [3]float32{1.0 / 255, 1.0 / 255, 1.0 / 255},
		Fill: color.RGBA{A: 255},
	}
}

// PrepareInput letterboxes img into a size x size frame and writes it as a
// planar CHW tensor into dst.
//
// Arguments:
//   - img: The frame to prepare.
//   - size: The square model input side.
//   - norm: The per-channel normalization.
//   - dst: The destination tensor of at least 3*size*size floats.
//
// Returns:
//   - images.Letterbox: The geometry needed to map detections back.
//   - error: An error if dst is too small or the frame is empty.
func PrepareInput(img image.Image, size int, norm Normalization, dst []float32) (images.Letterbox, error) {
	channelSize := size * size
	if len(dst) < channelSize*3 {
		return images.Letterbox{}, errors.Errorf("destination tensor only holds %d floats, needs %d", len(dst), channelSize*3)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return images.Letterbox{}, errors.Errorf("empty frame %v", b)
	}

	boxed, lb := images.LetterboxImage(img, size, norm.Fill)

	first, third := 0, 2
	if norm.SwapRB {
		first, third = 2, 0
	}
	planes := [3][]float32{
		dst[first*channelSize : (first+1)*channelSize],
		dst[channelSize : 2*channelSize],
		dst[third*channelSize : (third+1)*channelSize],
	}

	i := 0
	for y := 0; y < size; y++ {
		row := boxed.Pix[y*boxed.Stride : y*boxed.Stride+size*4]
		for x := 0; x < size; x++ {
			px := row[x*4 : x*4+3]
			for c := 0; c < 3; c++ {
				planes[c][i] = (float32(px[c]) - norm.Mean[c]) * norm.Norm[c]
			}
			i++
		}
	}

	return lb, nil
}
