package models

import (
	"testing"

	"github.com/nvr-ai/go-detect/models/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModel(t *testing.T) {
	tests := []struct {
		name string
		rows int
		cols int
	}{
		{string(model.ModelNameYOLOv5), 25200, 85},
		{string(model.ModelNameYOLOv8), 8400, 144},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewModel(model.NewModelArgs{Name: model.Name(tt.name), InputSize: 640, NumClasses: 80})
			require.NoError(t, err)

			rows, cols := m.OutputShape()
			assert.Equal(t, tt.rows, rows)
			assert.Equal(t, tt.cols, cols)
			assert.Equal(t, model.Name(tt.name), m.Options().Name)
		})
	}

	_, err := NewModel(model.NewModelArgs{Name: "rtdetr", InputSize: 640, NumClasses: 80})
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestOutputClassSet(t *testing.T) {
	assert.Equal(t, 80, YOLOClasses.Len())
	assert.Equal(t, "person", YOLOClasses.Label(0))
	assert.Equal(t, "toothbrush", YOLOClasses.Label(79))
	assert.Equal(t, "class_80", YOLOClasses.Label(80))
	assert.Equal(t, "class_-1", YOLOClasses.Label(-1))

	idx, ok := YOLOClasses.Index("car")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = YOLOClasses.Index("unicorn")
	assert.False(t, ok)

	custom := NewOutputClassSet("custom", []string{"a", "b"})
	assert.Equal(t, "b", custom.Label(1))
}
