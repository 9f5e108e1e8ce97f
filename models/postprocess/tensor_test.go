package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestNewTensor(t *testing.T) {
	tt, err := NewTensor([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 5, 6}, tt.Row(1))

	_, err = NewTensor([]float32{1, 2, 3}, 2, 3)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestTensor_Transpose(t *testing.T) {
	// Channel-major 3x2: two records with three values each.
	cm, err := NewTensor([]float32{1, 2, 3, 4, 5, 6}, 3, 2)
	require.NoError(t, err)

	rm, err := cm.Transpose()
	require.NoError(t, err)
	assert.Equal(t, 2, rm.Rows)
	assert.Equal(t, 3, rm.Cols)
	assert.Equal(t, []float32{1, 3, 5}, rm.Row(0))
	assert.Equal(t, []float32{2, 4, 6}, rm.Row(1))

	// The source buffer is reusable for the next frame.
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, cm.Data)
}

func TestTensor_TransposeRoundTrip(t *testing.T) {
	const rows, cols = 70, 13
	data := make([]float32, rows*cols)
	for i := range data {
		data[i] = float32(i)
	}
	src, err := NewTensor(data, rows, cols)
	require.NoError(t, err)

	tr, err := src.Transpose()
	require.NoError(t, err)
	require.Equal(t, cols, tr.Rows)
	require.Equal(t, rows, tr.Cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			assert.Equal(t, src.Data[r*cols+c], tr.Data[c*rows+r])
		}
	}

	back, err := tr.Transpose()
	require.NoError(t, err)
	assert.Equal(t, src, back)
}

func TestTensor_TransposeVector(t *testing.T) {
	row, err := NewTensor([]float32{1, 2, 3}, 1, 3)
	require.NoError(t, err)

	col, err := row.Transpose()
	require.NoError(t, err)
	assert.Equal(t, 3, col.Rows)
	assert.Equal(t, 1, col.Cols)
	assert.Equal(t, []float32{2}, col.Row(1))

	_, err = Tensor{Data: []float32{1, 2}, Rows: 2, Cols: 2}.Transpose()
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFromDense(t *testing.T) {
	t.Run("batched", func(t *testing.T) {
		d := tensor.New(tensor.WithShape(1, 2, 3), tensor.WithBacking([]float32{1, 2, 3, 4, 5, 6}))
		out, err := FromDense(d)
		require.NoError(t, err)
		assert.Equal(t, 2, out.Rows)
		assert.Equal(t, 3, out.Cols)
		assert.Equal(t, []float32{4, 5, 6}, out.Row(1))
	})

	t.Run("matrix", func(t *testing.T) {
		d := tensor.New(tensor.WithShape(3, 2), tensor.WithBacking([]float32{1, 2, 3, 4, 5, 6}))
		out, err := FromDense(d)
		require.NoError(t, err)
		assert.Equal(t, 3, out.Rows)
		assert.Equal(t, 2, out.Cols)
	})

	t.Run("batch of two", func(t *testing.T) {
		d := tensor.New(tensor.WithShape(2, 1, 3), tensor.WithBacking([]float32{1, 2, 3, 4, 5, 6}))
		_, err := FromDense(d)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("wrong dtype", func(t *testing.T) {
		d := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float64{1, 2, 3, 4}))
		_, err := FromDense(d)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
}

func TestValidateThresholds(t *testing.T) {
	tests := []struct {
		name  string
		score float32
		iou   float32
		ok    bool
	}{
		{"defaults", 50, 0.45, true},
		{"bounds", 0, 1, true},
		{"upper bounds", 100, 0, true},
		{"negative score", -1, 0.45, false},
		{"score above 100", 100.5, 0.45, false},
		{"iou above 1", 50, 1.2, false},
		{"negative iou", 50, -0.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateThresholds(tt.score, tt.iou)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidThreshold)
		})
	}
}
