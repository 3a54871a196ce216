package threshold

import (
	"errors"
	"testing"

	"lanemask/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRescale8Truncates(t *testing.T) {
	t.Parallel()

	field := models.ScalarField{Rows: 1, Cols: 4, Data: []float64{0, 50, 100, 200}}

	got, err := Rescale8(field, RescaleMultiply)
	require.NoError(t, err)
	// 255*50/200 = 63.75 and 255*100/200 = 127.5 both truncate.
	assert.Equal(t, []uint8{0, 63, 127, 255}, got)
}

func TestRescale8Divide(t *testing.T) {
	t.Parallel()

	field := models.ScalarField{Rows: 1, Cols: 4, Data: []float64{0, 30.9, 100, 255}}

	got, err := Rescale8(field, RescaleDivide)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 30, 100, 255}, got)
}

func TestRescale8ClampsNegatives(t *testing.T) {
	t.Parallel()

	field := models.ScalarField{Rows: 1, Cols: 3, Data: []float64{-10, 5, 10}}

	got, err := Rescale8(field, RescaleMultiply)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 127, 255}, got)
}

func TestRescale8DegenerateField(t *testing.T) {
	t.Parallel()

	field := models.NewScalarField(3, 3)

	_, err := Rescale8(field, RescaleMultiply)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDegenerateField))

	var degenerate *models.DegenerateFieldError
	require.True(t, errors.As(err, &degenerate))
	assert.Equal(t, 3, degenerate.Rows)
}

func TestRescale8RejectsEmptyField(t *testing.T) {
	t.Parallel()

	_, err := Rescale8(models.ScalarField{}, RescaleMultiply)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = Rescale8(models.ScalarField{Rows: 2, Cols: 2, Data: []float64{1}}, RescaleMultiply)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestRescaleAndThreshold(t *testing.T) {
	t.Parallel()

	// Scaled values: 0, 20, 100, 101, 255.
	field := models.ScalarField{Rows: 1, Cols: 5, Data: []float64{0, -20, 100, 101, 255}}

	t.Run("absolute closed bounds keep both endpoints", func(t *testing.T) {
		mask, err := RescaleAndThreshold(field, RescaleOptions{Absolute: true}, models.Range{Low: 20, High: 100}, models.ClosedBounds)
		require.NoError(t, err)
		assert.Equal(t, []uint8{0, 1, 1, 0, 0}, mask.Data)
	})

	t.Run("without absolute value negatives clamp to zero", func(t *testing.T) {
		mask, err := RescaleAndThreshold(field, RescaleOptions{}, models.Range{Low: 20, High: 100}, models.ClosedBounds)
		require.NoError(t, err)
		assert.Equal(t, []uint8{0, 0, 1, 0, 0}, mask.Data)
	})

	t.Run("left open bounds drop the low endpoint", func(t *testing.T) {
		mask, err := RescaleAndThreshold(field, RescaleOptions{Absolute: true}, models.Range{Low: 20, High: 255}, models.LeftOpenBounds)
		require.NoError(t, err)
		assert.Equal(t, []uint8{0, 0, 1, 1, 1}, mask.Data)
	})
}

func TestRescaleAndThresholdDegenerateGivesZeroMask(t *testing.T) {
	t.Parallel()

	field := models.NewScalarField(2, 3)

	mask, err := RescaleAndThreshold(field, RescaleOptions{Absolute: true}, models.Range{Low: 0, High: 255}, models.ClosedBounds)
	assert.True(t, errors.Is(err, models.ErrDegenerateField))
	assert.Equal(t, 2, mask.Rows)
	assert.Equal(t, 3, mask.Cols)
	assert.Equal(t, 0, mask.Count())
}

func TestThresholdField(t *testing.T) {
	t.Parallel()

	field := models.ScalarField{Rows: 1, Cols: 4, Data: []float64{0.69, 0.7, 1.3, 1.31}}

	mask, err := ThresholdField(field, models.Range{Low: 0.7, High: 1.3}, models.ClosedBounds)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1, 1, 0}, mask.Data)
}
