package conversion

import (
	"fmt"

	"lanemask/internal/models"
	"lanemask/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// HLS holds the three channels of OpenCV's 8-bit HLS representation.
// Hue is in [0, 180], lightness and saturation in [0, 255].
type HLS struct {
	Hue        models.ScalarField
	Lightness  models.ScalarField
	Saturation models.ScalarField
}

// ToGray converts a BGR image to grayscale intensity.
func ToGray(src *safe.Mat) (models.ScalarField, error) {
	dst, err := convert(src, gocv.ColorBGRToGray, gocv.MatTypeCV8UC1)
	if err != nil {
		return models.ScalarField{}, err
	}
	defer dst.Close()

	field, err := dst.ScalarField()
	if err != nil {
		return models.ScalarField{}, fmt.Errorf("grayscale readback failed: %w", err)
	}
	return field, nil
}

// ToHLS converts a BGR image to hue, lightness and saturation channels.
func ToHLS(src *safe.Mat) (HLS, error) {
	dst, err := convert(src, gocv.ColorBGRToHLS, gocv.MatTypeCV8UC3)
	if err != nil {
		return HLS{}, err
	}
	defer dst.Close()

	channels, err := dst.ChannelFields()
	if err != nil {
		return HLS{}, fmt.Errorf("HLS readback failed: %w", err)
	}

	return HLS{
		Hue:        channels[0],
		Lightness:  channels[1],
		Saturation: channels[2],
	}, nil
}

var cvtColor = gocv.CvtColor

func convert(src *safe.Mat, code gocv.ColorConversionCode, dstType gocv.MatType) (*safe.Mat, error) {
	if err := safe.ValidateColorConversion(src, code); err != nil {
		return nil, err
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), dstType)
	if err != nil {
		return nil, fmt.Errorf("destination Mat creation failed: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	if err := cvtColor(srcMat, &dstMat, code); err != nil {
		dst.Close()
		return nil, fmt.Errorf("color conversion failed: %w", err)
	}

	return dst, nil
}
