package postprocess

import (
	"slices"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Tensor is a read-only view over a raw model output laid out as Rows records
// of Cols values each, row-major.
type Tensor struct {
	Data []float32
	Rows int
	Cols int
}

// NewTensor wraps data as a rows x cols tensor.
//
// Arguments:
//   - data: The flat output buffer.
//   - rows: The number of records.
//   - cols: The number of values per record.
//
// Returns:
//   - Tensor: The view over data. No copy is made.
//   - error: ErrShapeMismatch if len(data) != rows*cols.
func NewTensor(data []float32, rows, cols int) (Tensor, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return Tensor{}, errors.Wrapf(ErrShapeMismatch, "%d values cannot form %dx%d", len(data), rows, cols)
	}
	return Tensor{Data: data, Rows: rows, Cols: cols}, nil
}

// FromDense converts a float32 gorgonia tensor of shape [N, K] or [1, N, K]
// into a Tensor.
func FromDense(d *tensor.Dense) (Tensor, error) {
	if d.Dtype() != tensor.Float32 {
		return Tensor{}, errors.Wrapf(ErrShapeMismatch, "dtype %v, want float32", d.Dtype())
	}

	shape := d.Shape()
	var rows, cols int
	switch {
	case len(shape) == 2:
		rows, cols = shape[0], shape[1]
	case len(shape) == 3 && shape[0] == 1:
		rows, cols = shape[1], shape[2]
	default:
		return Tensor{}, errors.Wrapf(ErrShapeMismatch, "unsupported shape %v", shape)
	}

	if d.IsView() {
		m, ok := d.Materialize().(*tensor.Dense)
		if !ok {
			return Tensor{}, errors.Wrap(ErrShapeMismatch, "cannot materialize view")
		}
		d = m
	}

	data, ok := d.Data().([]float32)
	if !ok {
		return Tensor{}, errors.Wrapf(ErrShapeMismatch, "backing data is %T", d.Data())
	}

	return NewTensor(data, rows, cols)
}

// Row returns the i-th record.
func (t Tensor) Row(i int) []float32 {
	return t.Data[i*t.Cols : (i+1)*t.Cols]
}

// Transpose returns a new Tensor with rows and columns swapped. It is used
// for exports that emit channel-major [K, N] outputs. t.Data is left intact.
//
// Returns:
//   - Tensor: The row-major [N, K] tensor over a fresh buffer.
//   - error: ErrShapeMismatch if the data cannot be transposed.
func (t Tensor) Transpose() (Tensor, error) {
	if len(t.Data) != t.Rows*t.Cols {
		return Tensor{}, errors.Wrapf(ErrShapeMismatch, "%d values cannot form %dx%d", len(t.Data), t.Rows, t.Cols)
	}

	// A single row or column has the same memory order either way.
	if t.Rows <= 1 || t.Cols <= 1 {
		return Tensor{Data: slices.Clone(t.Data), Rows: t.Cols, Cols: t.Rows}, nil
	}

	d := tensor.New(tensor.WithShape(t.Rows, t.Cols), tensor.WithBacking(slices.Clone(t.Data)))
	if err := d.T(); err != nil {
		return Tensor{}, errors.Wrap(err, "transposing output")
	}
	if err := d.Transpose(); err != nil {
		return Tensor{}, errors.Wrap(err, "transposing output")
	}

	return FromDense(d)
}
