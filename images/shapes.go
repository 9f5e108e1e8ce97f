// Package images - Image geometry and letterbox utilities.
package images

import "github.com/chewxy/math32"

// Rect is a lightweight bounding box in pixel units.
//
// X,Y is the top-left corner. Width and Height are never negative for boxes
// produced by the decoders.
type Rect struct {
	X, Y, Width, Height float32
}

// Right returns the exclusive right edge of the box.
func (r Rect) Right() float32 {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge of the box.
func (r Rect) Bottom() float32 {
	return r.Y + r.Height
}

// Area returns Width * Height.
func (r Rect) Area() float32 {
	return r.Width * r.Height
}

// Intersect returns the overlapping region of r and o.
//
// When the boxes do not overlap the zero Rect is returned.
func (r Rect) Intersect(o Rect) Rect {
	x1 := math32.Max(r.X, o.X)
	y1 := math32.Max(r.Y, o.Y)
	x2 := math32.Min(r.Right(), o.Right())
	y2 := math32.Min(r.Bottom(), o.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// CalculateIoU measures the overlap of two boxes as Intersection over Union.
//
// The value lies in [0, 1]: 1 for identical boxes, 0 for disjoint ones. It is
// computed with the inclusion-exclusion principle:
//
//	IoU = inter / (area(r) + area(o) - inter)
//
// Degenerate inputs (both boxes of zero area, or an empty union) yield 0 rather
// than NaN or Inf.
//
// Arguments:
//   - r: The first box.
//   - o: The box to compare against.
//
// Returns:
//   - float32: The IoU score.
//
// Example Usage:
// ```go
//
//	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
//	b := Rect{X: 5, Y: 5, Width: 10, Height: 10}
//	iou := CalculateIoU(a, b) // 25 / (100 + 100 - 25) = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	inter := r.Intersect(o).Area()
	if inter <= 0 {
		return 0
	}

	union := r.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}

	return inter / union
}
