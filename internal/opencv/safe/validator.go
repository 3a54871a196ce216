package safe

import (
	"fmt"

	"lanemask/internal/models"

	"gocv.io/x/gocv"
)

// MaxKernelSize is the largest Sobel aperture OpenCV accepts.
const MaxKernelSize = 31

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return models.NewInvalidInput(operation, "Mat is nil")
	}

	if !mat.IsValid() {
		return models.NewInvalidInput(operation, "Mat is invalid")
	}

	if mat.Empty() {
		return models.NewInvalidInput(operation, "Mat is empty")
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return models.NewInvalidInput(operation, "Mat has invalid dimensions %dx%d", mat.Cols(), mat.Rows())
	}

	return nil
}

// ValidateColorImage accepts only non-empty 8-bit three channel images.
func ValidateColorImage(mat *Mat, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	if channels := mat.Channels(); channels != 3 {
		return models.NewInvalidInput(operation, "image requires 3 channels, got %d", channels)
	}

	if mat.Type() != gocv.MatTypeCV8UC3 {
		return models.NewInvalidInput(operation, "image requires 8-bit channels, got MatType %d", int(mat.Type()))
	}

	return nil
}

func ValidateColorConversion(src *Mat, code gocv.ColorConversionCode) error {
	switch code {
	case gocv.ColorBGRToGray, gocv.ColorRGBToGray, gocv.ColorBGRToHLS, gocv.ColorRGBToHLS:
		return ValidateColorImage(src, "CvtColor")
	default:
		return fmt.Errorf("unsupported color conversion code %d", int(code))
	}
}

// ValidateKernelSize enforces an odd Sobel aperture in [1, MaxKernelSize].
func ValidateKernelSize(ksize int, operation string) error {
	if ksize < 1 || ksize > MaxKernelSize {
		return models.NewInvalidInput(operation, "kernel size %d out of range [1, %d]", ksize, MaxKernelSize)
	}

	if ksize%2 == 0 {
		return models.NewInvalidInput(operation, "kernel size %d must be odd", ksize)
	}

	return nil
}

func ValidateField(field models.ScalarField, operation string) error {
	if field.Empty() {
		return models.NewInvalidInput(operation, "field is empty")
	}

	if len(field.Data) != field.Rows*field.Cols {
		return models.NewInvalidInput(operation, "field holds %d values for %dx%d", len(field.Data), field.Cols, field.Rows)
	}

	return nil
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return models.NewInvalidInput(operation, "invalid dimensions %dx%d", width, height)
	}

	if width > 32768 || height > 32768 {
		return models.NewInvalidInput(operation, "dimensions %dx%d exceed maximum size", width, height)
	}

	return nil
}
