package safe

import (
	"errors"
	"image"
	"testing"

	"lanemask/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func bgrBytes(rows, cols int) []byte {
	data := make([]byte, rows*cols*3)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			for c := 0; c < 3; c++ {
				data[(y*cols+x)*3+c] = byte(y*40 + x*4 + c)
			}
		}
	}
	return data
}

// ownedMat copies data into a Mat that owns its pixels.
func ownedMat(t *testing.T, rows, cols int, matType gocv.MatType, data []byte) gocv.Mat {
	t.Helper()
	shared, err := gocv.NewMatFromBytes(rows, cols, matType, data)
	require.NoError(t, err)
	defer shared.Close()
	return shared.Clone()
}

// subRegion wraps a view into parent without copying, so rows are not
// contiguous in memory.
func subRegion(t *testing.T, parent gocv.Mat, rect image.Rectangle) *Mat {
	t.Helper()
	view := parent.Region(rect)
	sm := wrap(view)
	t.Cleanup(sm.Close)
	require.False(t, view.IsContinuous())
	return sm
}

func TestChannelFieldsNonContinuous(t *testing.T) {
	parent := ownedMat(t, 4, 4, gocv.MatTypeCV8UC3, bgrBytes(4, 4))
	defer parent.Close()

	channels, err := subRegion(t, parent, image.Rect(1, 1, 3, 3)).ChannelFields()
	require.NoError(t, err)

	for c := 0; c < 3; c++ {
		want := []float64{
			float64(40 + 4 + c), float64(40 + 8 + c),
			float64(80 + 4 + c), float64(80 + 8 + c),
		}
		assert.Equalf(t, want, channels[c].Data, "channel %d", c)
	}
}

func TestChannelFieldsContinuousMatchesRegion(t *testing.T) {
	full, err := NewMatFromBytes(4, 4, gocv.MatTypeCV8UC3, bgrBytes(4, 4))
	require.NoError(t, err)
	defer full.Close()

	channels, err := full.ChannelFields()
	require.NoError(t, err)
	assert.Equal(t, float64(2*40+1*4+2), channels[2].At(2, 1))
}

func TestScalarFieldNonContinuous(t *testing.T) {
	gray := make([]byte, 16)
	for i := range gray {
		gray[i] = byte(i * 10)
	}
	parent := ownedMat(t, 4, 4, gocv.MatTypeCV8UC1, gray)
	defer parent.Close()

	field, err := subRegion(t, parent, image.Rect(2, 0, 4, 2)).ScalarField()
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 30, 60, 70}, field.Data)
}

func TestScalarFieldRoundTrip(t *testing.T) {
	in := models.ScalarField{Rows: 2, Cols: 2, Data: []float64{-1.5, 0, 2.25, 1020}}

	mat, err := NewMatFromScalarField(in)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, gocv.MatTypeCV64FC1, mat.Type())
	out, err := mat.ScalarField()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMatLifecycle(t *testing.T) {
	a, err := NewMat(2, 2, gocv.MatTypeCV8UC1)
	require.NoError(t, err)
	b, err := NewMat(2, 2, gocv.MatTypeCV8UC1)
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.ID(), b.ID())
	assert.True(t, a.IsValid())

	a.Close()
	a.Close()
	assert.False(t, a.IsValid())
	assert.Zero(t, a.Rows())

	err = ValidateColorImage(a, "test")
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = NewMat(0, 2, gocv.MatTypeCV8UC1)
	assert.Error(t, err)
}
