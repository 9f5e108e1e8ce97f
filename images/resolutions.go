package images

import (
	"fmt"
	"math"
)

// AspectRatio names the width:height ratio of a camera frame.
type AspectRatio string

const (
	AspectRatio169 AspectRatio = "16:9"
	AspectRatio43  AspectRatio = "4:3"
	AspectRatio54  AspectRatio = "5:4"
	AspectRatio32  AspectRatio = "3:2"
)

// ResolutionType is the common name of a camera frame size.
type ResolutionType string

const (
	ResolutionTypeNHD      ResolutionType = "nHD"
	ResolutionTypeVGA      ResolutionType = "VGA"
	ResolutionTypeFWVGA    ResolutionType = "FWVGA"
	ResolutionTypeHD720p   ResolutionType = "HD 720p"
	ResolutionType1MP54    ResolutionType = "1MP (5:4)"
	ResolutionTypeFHD1080p ResolutionType = "Full HD 1080p"
	ResolutionType2MP43    ResolutionType = "2MP (4:3)"
	ResolutionTypeQHD1440p ResolutionType = "QHD 1440p"
	ResolutionType3MP43    ResolutionType = "3MP (4:3)"
	ResolutionType6MP32    ResolutionType = "6MP (3:2)"
	ResolutionType4KUHD    ResolutionType = "4K UHD"
)

// Resolution is a camera frame size that detections are mapped back into.
type Resolution struct {
	Name        ResolutionType `json:"name"`
	AspectRatio AspectRatio    `json:"aspect_ratio"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
}

// MegaPixels returns Width*Height in millions, rounded to two decimals.
func (r Resolution) MegaPixels() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	mp := float64(r.Width*r.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", r.Name, r.Width, r.Height, r.MegaPixels())
}

// Letterbox returns the geometry used to fit a frame of this resolution into
// a size x size model input.
func (r Resolution) Letterbox(size int) Letterbox {
	return NewLetterbox(r.Width, r.Height, size)
}

// CameraResolutions lists the supported camera frame sizes, smallest first.
var CameraResolutions = []Resolution{
	{Name: ResolutionTypeNHD, AspectRatio: AspectRatio169, Width: 640, Height: 360},
	{Name: ResolutionTypeVGA, AspectRatio: AspectRatio43, Width: 640, Height: 480},
	{Name: ResolutionTypeFWVGA, AspectRatio: AspectRatio169, Width: 854, Height: 480},
	{Name: ResolutionTypeHD720p, AspectRatio: AspectRatio169, Width: 1280, Height: 720},
	{Name: ResolutionType1MP54, AspectRatio: AspectRatio54, Width: 1280, Height: 1024},
	{Name: ResolutionType2MP43, AspectRatio: AspectRatio43, Width: 1600, Height: 1200},
	{Name: ResolutionTypeFHD1080p, AspectRatio: AspectRatio169, Width: 1920, Height: 1080},
	{Name: ResolutionType3MP43, AspectRatio: AspectRatio43, Width: 2048, Height: 1536},
	{Name: ResolutionTypeQHD1440p, AspectRatio: AspectRatio169, Width: 2560, Height: 1440},
	{Name: ResolutionType6MP32, AspectRatio: AspectRatio32, Width: 3072, Height: 2048},
	{Name: ResolutionType4KUHD, AspectRatio: AspectRatio169, Width: 3840, Height: 2160},
}

// GetResolutionByType retrieves a resolution by its name.
func GetResolutionByType(t ResolutionType) (Resolution, bool) {
	for _, r := range CameraResolutions {
		if r.Name == t {
			return r, true
		}
	}
	return Resolution{}, false
}

// GetHighestResolutionUnderDimensions returns the largest known resolution
// that fits inside width x height.
//
// Arguments:
//   - width: The maximum frame width.
//   - height: The maximum frame height.
//
// Returns:
//   - Resolution: The resolution with the most pixels that fits.
//   - bool: False if no resolution fits.
func GetHighestResolutionUnderDimensions(width, height int) (Resolution, bool) {
	var highest Resolution
	var found bool

	for _, res := range CameraResolutions {
		if res.Width <= width && res.Height <= height {
			if !found || res.Width*res.Height > highest.Width*highest.Height {
				highest = res
				found = true
			}
		}
	}
	return highest, found
}
