package yolov5

import (
	"testing"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, classes int) *YOLOv5 {
	t.Helper()
	m, err := NewModel(model.NewModelArgs{InputSize: 640, NumClasses: classes})
	require.NoError(t, err)
	return m
}

func tensorOf(t *testing.T, cols int, rows ...[]float32) postprocess.Tensor {
	t.Helper()
	data := make([]float32, 0, len(rows)*cols)
	for _, r := range rows {
		data = append(data, r...)
	}
	out, err := postprocess.NewTensor(data, len(rows), cols)
	require.NoError(t, err)
	return out
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t, 80)

	rows, cols := m.OutputShape()
	assert.Equal(t, 25200, rows)
	assert.Equal(t, 85, cols)
	assert.Equal(t, model.ModelNameYOLOv5, m.Options().Name)
	assert.Equal(t, model.LayoutRowMajor, m.Options().Layout)

	_, err := NewModel(model.NewModelArgs{InputSize: 650, NumClasses: 80})
	assert.Error(t, err)

	_, err = NewModel(model.NewModelArgs{InputSize: 640})
	assert.Error(t, err)
}

func TestNewModel_OwnsStrides(t *testing.T) {
	strides := []int{8, 16, 32}
	m, err := NewModel(model.NewModelArgs{InputSize: 640, NumClasses: 80, Strides: strides})
	require.NoError(t, err)

	strides[0] = 32
	assert.Equal(t, []int{8, 16, 32}, m.Options().Strides)

	m.Options().Strides[1] = 64
	assert.Equal(t, []int{8, 16, 32}, m.Options().Strides)
	assert.Equal(t, []int{8, 16, 32}, DefaultStrides)

	rows, _ := m.OutputShape()
	assert.Equal(t, 25200, rows)
}

func TestDecode_Threshold(t *testing.T) {
	m := newTestModel(t, 3)
	output := tensorOf(t, 8, []float32{100, 80, 40, 20, 30, 0.1, 0.7, 0.2})

	t.Run("objectness above threshold is kept", func(t *testing.T) {
		got, err := m.Decode(output, 25)
		require.NoError(t, err)
		require.Len(t, got, 1)

		assert.Equal(t, float32(30), got[0].Score)
		assert.Equal(t, 1, got[0].Class)
		assert.Equal(t, images.Rect{X: 80, Y: 70, Width: 40, Height: 20}, got[0].Box)
	})

	t.Run("objectness below threshold is dropped", func(t *testing.T) {
		got, err := m.Decode(output, 35)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("objectness equal to threshold is dropped", func(t *testing.T) {
		got, err := m.Decode(output, 30)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestDecode_ArgmaxTieTakesFirst(t *testing.T) {
	m := newTestModel(t, 4)
	output := tensorOf(t, 9,
		[]float32{10, 10, 4, 4, 60, 0.2, 0.9, 0.9, 0.1},
		[]float32{20, 20, 4, 4, 70, 0.5, 0.5, 0.5, 0.5},
	)

	got, err := m.Decode(output, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Class)
	assert.Equal(t, 0, got[1].Class)

	// Record order is preserved.
	assert.Equal(t, float32(60), got[0].Score)
	assert.Equal(t, float32(70), got[1].Score)
}

func TestDecode_ShapeMismatch(t *testing.T) {
	m := newTestModel(t, 80)

	output, err := postprocess.NewTensor(make([]float32, 84*2), 2, 84)
	require.NoError(t, err)

	_, err = m.Decode(output, 25)
	assert.ErrorIs(t, err, postprocess.ErrShapeMismatch)
}

func BenchmarkDecode(b *testing.B) {
	m, err := NewModel(model.NewModelArgs{InputSize: 640, NumClasses: 80})
	require.NoError(b, err)

	rows, cols := m.OutputShape()
	data := make([]float32, rows*cols)
	for i := 0; i < rows; i++ {
		data[i*cols+4] = float32(i % 100)
	}
	output, err := postprocess.NewTensor(data, rows, cols)
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Decode(output, 50)
	}
}
