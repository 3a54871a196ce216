package conversion

import (
	"fmt"
	"image"
	"image/color"

	"lanemask/internal/models"
	"lanemask/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ImageToMat converts a decoded Go image (RGB order) to the BGR CV_8UC3 Mat
// the pipeline consumes. Alpha is dropped.
func ImageToMat(img image.Image) (*safe.Mat, error) {
	if img == nil {
		return nil, models.NewInvalidInput("image conversion", "input image is nil")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if err := safe.ValidateDimensions(width, height, "image conversion"); err != nil {
		return nil, err
	}

	buf := make([]byte, width*height*3)

	switch typedImg := img.(type) {
	case *image.RGBA:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				pixel := typedImg.RGBAAt(x+bounds.Min.X, y+bounds.Min.Y)
				putBGR(buf, (y*width+x)*3, pixel.R, pixel.G, pixel.B)
			}
		}
	case *image.NRGBA:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				pixel := typedImg.NRGBAAt(x+bounds.Min.X, y+bounds.Min.Y)
				putBGR(buf, (y*width+x)*3, pixel.R, pixel.G, pixel.B)
			}
		}
	case *image.Gray:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				v := typedImg.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y
				putBGR(buf, (y*width+x)*3, v, v, v)
			}
		}
	default:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
				// Convert from 16-bit to 8-bit
				putBGR(buf, (y*width+x)*3, uint8(r>>8), uint8(g>>8), uint8(b>>8))
			}
		}
	}

	mat, err := safe.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, buf)
	if err != nil {
		return nil, fmt.Errorf("BGR Mat creation failed: %w", err)
	}
	return mat, nil
}

func putBGR(buf []byte, offset int, r, g, b uint8) {
	buf[offset] = b
	buf[offset+1] = g
	buf[offset+2] = r
}

// MaskToImage renders a 0/1 mask as a black/white grayscale image.
func MaskToImage(mask models.BinaryMask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, mask.Cols, mask.Rows))

	for y := 0; y < mask.Rows; y++ {
		for x := 0; x < mask.Cols; x++ {
			if mask.At(y, x) != 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return img
}
