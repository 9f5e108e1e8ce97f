package yolov8

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSize = 64

func newTestModel(t testing.TB, classes int) *YOLOv8 {
	t.Helper()
	m, err := NewModel(model.NewModelArgs{InputSize: testSize, NumClasses: classes})
	require.NoError(t, err)
	return m
}

// emptyOutput returns an output whose class logits are all very negative so
// no cell passes any threshold.
func emptyOutput(t testing.TB, m *YOLOv8) postprocess.Tensor {
	t.Helper()
	rows, cols := m.OutputShape()
	data := make([]float32, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 4 * RegMax; j < cols; j++ {
			data[i*cols+j] = -50
		}
	}
	out, err := postprocess.NewTensor(data, rows, cols)
	require.NoError(t, err)
	return out
}

// peaked fills the four distance distributions so each side puts all its
// mass on the given bin.
func peaked(row []float32, bins [4]int) {
	for side := 0; side < 4; side++ {
		for k := 0; k < RegMax; k++ {
			row[side*RegMax+k] = -1000
		}
		row[side*RegMax+bins[side]] = 0
	}
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t, 80)
	rows, cols := m.OutputShape()
	assert.Equal(t, 84, rows)
	assert.Equal(t, 144, cols)
	assert.Equal(t, model.LayoutChannelMajor, m.Options().Layout)

	_, err := NewModel(model.NewModelArgs{InputSize: 100, NumClasses: 80})
	assert.Error(t, err)
}

func TestNewModel_OwnsStrides(t *testing.T) {
	strides := []int{8, 16, 32}
	m, err := NewModel(model.NewModelArgs{InputSize: testSize, NumClasses: 1, Strides: strides})
	require.NoError(t, err)

	out := emptyOutput(t, m)
	_, err = m.Decode(out, 25)
	require.NoError(t, err)

	strides[0] = 16
	_, err = m.Decode(out, 25)
	require.NoError(t, err)

	opts := m.Options()
	opts.Strides[0] = 32
	assert.Equal(t, []int{8, 16, 32}, m.Options().Strides)

	rows, _ := m.OutputShape()
	assert.Equal(t, 84, rows)
}

func TestNewModel_DefaultStridesNotShared(t *testing.T) {
	m := newTestModel(t, 1)

	m.Options().Strides[0] = 64
	assert.Equal(t, []int{8, 16, 32}, DefaultStrides)
	assert.Equal(t, []int{8, 16, 32}, m.Options().Strides)
}

func TestDecode_DistanceIsBinTimesStride(t *testing.T) {
	m := newTestModel(t, 2)

	for _, k := range []int{0, 1, 5, 15} {
		for _, cellIdx := range []int{0, 9, 64, 83} {
			output := emptyOutput(t, m)
			row := output.Row(cellIdx)
			peaked(row, [4]int{k, k, k, k})
			row[4*RegMax+1] = 5

			got, err := m.Decode(output, 50)
			require.NoError(t, err)
			require.Len(t, got, 1)

			cell := Grid(testSize, DefaultStrides)[cellIdx]
			stride := float32(cell.Stride)
			dist := float32(k) * stride
			cx := (float32(cell.GridX) + 0.5) * stride
			cy := (float32(cell.GridY) + 0.5) * stride

			assert.Equal(t, cx-dist, got[0].Box.X, "k=%d cell=%d", k, cellIdx)
			assert.Equal(t, cy-dist, got[0].Box.Y, "k=%d cell=%d", k, cellIdx)
			assert.Equal(t, 2*dist, got[0].Box.Width, "k=%d cell=%d", k, cellIdx)
			assert.Equal(t, 2*dist, got[0].Box.Height, "k=%d cell=%d", k, cellIdx)
			assert.Equal(t, 1, got[0].Class)
		}
	}
}

func TestDecode_IndependentSides(t *testing.T) {
	m := newTestModel(t, 1)
	output := emptyOutput(t, m)

	// Cell 9 is (1, 1) at stride 8, center (12, 12).
	row := output.Row(9)
	peaked(row, [4]int{1, 0, 2, 3})
	row[4*RegMax] = 3

	got, err := m.Decode(output, 50)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, float32(4), got[0].Box.X)
	assert.Equal(t, float32(12), got[0].Box.Y)
	assert.Equal(t, float32(24), got[0].Box.Width)
	assert.Equal(t, float32(24), got[0].Box.Height)
}

func TestDecode_Threshold(t *testing.T) {
	m := newTestModel(t, 3)
	output := emptyOutput(t, m)

	// sigmoid(0) == 0.5
	row := output.Row(0)
	peaked(row, [4]int{1, 1, 1, 1})
	row[4*RegMax+2] = 0

	got, err := m.Decode(output, 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 50, got[0].Score, 1e-4)
	assert.Equal(t, 2, got[0].Class)

	got, err = m.Decode(output, 51)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecode_ConfidenceScale(t *testing.T) {
	m := newTestModel(t, 2)
	output := emptyOutput(t, m)
	row := output.Row(3)
	peaked(row, [4]int{2, 2, 2, 2})
	row[4*RegMax] = 2.5

	got, err := m.Decode(output, 0)
	require.NoError(t, err)
	require.Len(t, got, len(Grid(testSize, DefaultStrides)))

	expected := 100 / (1 + math32.Exp(-2.5))
	assert.InDelta(t, expected, got[3].Score, 1e-4)
	for _, r := range got {
		assert.GreaterOrEqual(t, r.Score, float32(0))
		assert.LessOrEqual(t, r.Score, float32(100))
	}
}

func TestDecode_ShapeMismatch(t *testing.T) {
	m := newTestModel(t, 80)

	t.Run("wrong record count", func(t *testing.T) {
		output, err := postprocess.NewTensor(make([]float32, 83*144), 83, 144)
		require.NoError(t, err)
		_, err = m.Decode(output, 50)
		assert.ErrorIs(t, err, postprocess.ErrShapeMismatch)
	})

	t.Run("wrong record width", func(t *testing.T) {
		output, err := postprocess.NewTensor(make([]float32, 84*85), 84, 85)
		require.NoError(t, err)
		_, err = m.Decode(output, 50)
		assert.ErrorIs(t, err, postprocess.ErrShapeMismatch)
	})
}

func BenchmarkDecode(b *testing.B) {
	m, err := NewModel(model.NewModelArgs{InputSize: 640, NumClasses: 80})
	require.NoError(b, err)
	output := emptyOutput(b, m)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Decode(output, 25)
	}
}
