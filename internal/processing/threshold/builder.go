package threshold

import (
	"errors"
	"math"

	"lanemask/internal/models"
	"lanemask/internal/opencv/safe"
)

// RescaleMode selects how a field is mapped onto 0..255. Both modes truncate;
// they differ only in floating point rounding at the top of the range.
type RescaleMode int

const (
	// RescaleMultiply computes 255 * v / max.
	RescaleMultiply RescaleMode = iota
	// RescaleDivide computes v / (max / 255).
	RescaleDivide
)

// RescaleOptions configures RescaleAndThreshold.
type RescaleOptions struct {
	Absolute bool
	Mode     RescaleMode
}

// Rescale8 maps field onto 0..255 by its global maximum and truncates each
// value. Negative values clamp to 0. A field whose maximum is not positive
// returns a *models.DegenerateFieldError.
func Rescale8(field models.ScalarField, mode RescaleMode) ([]uint8, error) {
	if err := safe.ValidateField(field, "rescale"); err != nil {
		return nil, err
	}

	peak := field.Max()
	if !(peak > 0) {
		return nil, &models.DegenerateFieldError{Operation: "rescale", Rows: field.Rows, Cols: field.Cols}
	}

	out := make([]uint8, len(field.Data))
	scale := peak / 255

	for i, v := range field.Data {
		var scaled float64
		if mode == RescaleDivide {
			scaled = v / scale
		} else {
			scaled = 255 * v / peak
		}
		out[i] = truncate8(scaled)
	}

	return out, nil
}

func truncate8(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// RescaleAndThreshold optionally takes |v|, rescales to 8 bits, and marks
// pixels whose scaled value lies in rng under bounds.
//
// A degenerate field yields an all-zero mask together with the
// *models.DegenerateFieldError so callers can decide whether to report it.
func RescaleAndThreshold(field models.ScalarField, opts RescaleOptions, rng models.Range, bounds models.Bounds) (models.BinaryMask, error) {
	if err := safe.ValidateField(field, "rescale and threshold"); err != nil {
		return models.BinaryMask{}, err
	}

	src := field
	if opts.Absolute {
		src = field.Abs()
	}

	scaled, err := Rescale8(src, opts.Mode)
	if err != nil {
		if errors.Is(err, models.ErrDegenerateField) {
			return models.NewBinaryMask(field.Rows, field.Cols), err
		}
		return models.BinaryMask{}, err
	}

	mask := models.NewBinaryMask(field.Rows, field.Cols)
	for i, v := range scaled {
		if rng.Contains(float64(v), bounds) {
			mask.Data[i] = 1
		}
	}

	return mask, nil
}

// ThresholdField marks pixels of field that lie in rng under bounds without
// any rescaling.
func ThresholdField(field models.ScalarField, rng models.Range, bounds models.Bounds) (models.BinaryMask, error) {
	if err := safe.ValidateField(field, "threshold"); err != nil {
		return models.BinaryMask{}, err
	}

	mask := models.NewBinaryMask(field.Rows, field.Cols)
	for i, v := range field.Data {
		if rng.Contains(v, bounds) {
			mask.Data[i] = 1
		}
	}

	return mask, nil
}
