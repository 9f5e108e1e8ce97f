package main

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

var palette = []color.RGBA{
	{255, 56, 56, 0},
	{255, 157, 151, 0},
	{255, 112, 31, 0},
	{255, 178, 29, 0},
	{207, 210, 49, 0},
	{72, 249, 10, 0},
	{146, 204, 23, 0},
	{61, 219, 134, 0},
	{26, 147, 52, 0},
	{0, 212, 187, 0},
	{44, 153, 168, 0},
	{0, 194, 255, 0},
	{52, 69, 147, 0},
	{100, 115, 255, 0},
	{0, 24, 236, 0},
	{132, 56, 255, 0},
}

const (
	labelFont  = gocv.FontHersheySimplex
	labelScale = 0.5
)

func caption(labels *models.OutputClassSet, r postprocess.Result) string {
	return fmt.Sprintf("%s %.1f%%", labels.Label(r.Class), r.Score)
}

func boxRect(r postprocess.Result) image.Rectangle {
	return image.Rect(
		int(r.Box.X),
		int(r.Box.Y),
		int(r.Box.X+r.Box.Width),
		int(r.Box.Y+r.Box.Height),
	)
}

// labelOrigin places a text box of the given size above box, shifted down
// and left as needed to stay inside a frame of frameWidth.
func labelOrigin(box image.Rectangle, text image.Point, baseline, frameWidth int) image.Point {
	x := box.Min.X
	y := box.Min.Y - text.Y - baseline
	if y < 0 {
		y = 0
	}
	if x+text.X > frameWidth {
		x = frameWidth - text.X
	}
	if x < 0 {
		x = 0
	}
	return image.Pt(x, y)
}

// draw renders detections onto img.
func draw(img *gocv.Mat, labels *models.OutputClassSet, results []postprocess.Result) {
	for _, r := range results {
		rect := boxRect(r)
		gocv.Rectangle(img, rect, palette[r.Class%len(palette)], 2)

		text := caption(labels, r)
		size, baseline := gocv.GetTextSizeWithBaseline(text, labelFont, labelScale, 1)
		origin := labelOrigin(rect, size, baseline, img.Cols())

		background := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(size.X, size.Y+baseline))}
		gocv.Rectangle(img, background, color.RGBA{255, 255, 255, 0}, -1)
		gocv.PutText(img, text, image.Pt(origin.X, origin.Y+size.Y), labelFont, labelScale, color.RGBA{0, 0, 0, 0}, 1)
	}
}

// printResults writes one line per detection as label:confidence [x, y, w, h].
func printResults(labels *models.OutputClassSet, results []postprocess.Result) {
	for _, r := range results {
		fmt.Printf("%s:%.2f [%.0f, %.0f, %.0f, %.0f]\n",
			labels.Label(r.Class), r.Score, r.Box.X, r.Box.Y, r.Box.Width, r.Box.Height)
	}
}
