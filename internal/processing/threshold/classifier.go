package threshold

import (
	"fmt"
	"math"

	"lanemask/internal/models"
	"lanemask/internal/opencv/conversion"
	"lanemask/internal/opencv/safe"
	"lanemask/internal/processing/gradient"
)

// Default windows for the standalone classifiers.
var (
	DefaultAbsRange        = models.Range{Low: 20, High: 100}
	DefaultMagnitudeRange  = models.Range{Low: 30, High: 100}
	DefaultDirectionRange  = models.Range{Low: 0, High: math.Pi / 2}
	DefaultSaturationRange = models.Range{Low: 100, High: 255}
)

// Boundary policy per classifier. Saturation excludes its lower bound, the
// gradient classifiers include both.
var (
	AbsBounds        = models.ClosedBounds
	MagnitudeBounds  = models.ClosedBounds
	DirectionBounds  = models.ClosedBounds
	SaturationBounds = models.LeftOpenBounds
)

// AbsGradient marks pixels whose absolute Sobel derivative along axis,
// rescaled to 8 bits by the global maximum, lies in rng.
func AbsGradient(img *safe.Mat, axis models.Axis, rng models.Range) (models.BinaryMask, error) {
	gray, err := conversion.ToGray(img)
	if err != nil {
		return models.BinaryMask{}, err
	}

	d, err := gradient.Derivative(gray, axis, gradient.DefaultKernelSize)
	if err != nil {
		return models.BinaryMask{}, fmt.Errorf("abs gradient: %w", err)
	}

	return AbsGradientFromDerivative(d, rng)
}

func AbsGradientFromDerivative(d models.ScalarField, rng models.Range) (models.BinaryMask, error) {
	return RescaleAndThreshold(d, RescaleOptions{Absolute: true, Mode: RescaleMultiply}, rng, AbsBounds)
}

// Magnitude marks pixels whose gradient magnitude sqrt(dx²+dy²), rescaled to
// 8 bits, lies in rng.
func Magnitude(img *safe.Mat, ksize int, rng models.Range) (models.BinaryMask, error) {
	dx, dy, err := derivatives(img, ksize)
	if err != nil {
		return models.BinaryMask{}, fmt.Errorf("magnitude: %w", err)
	}

	return MagnitudeFromDerivatives(dx, dy, rng)
}

func MagnitudeFromDerivatives(dx, dy models.ScalarField, rng models.Range) (models.BinaryMask, error) {
	if !dx.SameShape(dy.Rows, dy.Cols) {
		return models.BinaryMask{}, models.NewInvalidInput("magnitude", "derivative shapes differ: %dx%d vs %dx%d",
			dx.Cols, dx.Rows, dy.Cols, dy.Rows)
	}

	mag := models.NewScalarField(dx.Rows, dx.Cols)
	for i := range mag.Data {
		x, y := dx.Data[i], dy.Data[i]
		mag.Data[i] = math.Sqrt(x*x + y*y)
	}

	return RescaleAndThreshold(mag, RescaleOptions{Mode: RescaleDivide}, rng, MagnitudeBounds)
}

// Direction marks pixels whose gradient angle atan2(|dy|, |dx|), in radians,
// lies in rng. No rescaling is applied.
func Direction(img *safe.Mat, ksize int, rng models.Range) (models.BinaryMask, error) {
	dx, dy, err := derivatives(img, ksize)
	if err != nil {
		return models.BinaryMask{}, fmt.Errorf("direction: %w", err)
	}

	return DirectionFromDerivatives(dx, dy, rng)
}

func DirectionFromDerivatives(dx, dy models.ScalarField, rng models.Range) (models.BinaryMask, error) {
	if !dx.SameShape(dy.Rows, dy.Cols) {
		return models.BinaryMask{}, models.NewInvalidInput("direction", "derivative shapes differ: %dx%d vs %dx%d",
			dx.Cols, dx.Rows, dy.Cols, dy.Rows)
	}

	angle := models.NewScalarField(dx.Rows, dx.Cols)
	for i := range angle.Data {
		angle.Data[i] = math.Atan2(math.Abs(dy.Data[i]), math.Abs(dx.Data[i]))
	}

	return ThresholdField(angle, rng, DirectionBounds)
}

// Saturation marks pixels whose HLS saturation s satisfies low < s <= high.
func Saturation(img *safe.Mat, rng models.Range) (models.BinaryMask, error) {
	hls, err := conversion.ToHLS(img)
	if err != nil {
		return models.BinaryMask{}, err
	}

	return SaturationFromChannel(hls.Saturation, rng)
}

func SaturationFromChannel(s models.ScalarField, rng models.Range) (models.BinaryMask, error) {
	return ThresholdField(s, rng, SaturationBounds)
}

func derivatives(img *safe.Mat, ksize int) (dx, dy models.ScalarField, err error) {
	gray, err := conversion.ToGray(img)
	if err != nil {
		return models.ScalarField{}, models.ScalarField{}, err
	}

	return gradient.NewCache(gray).Pair(ksize)
}
