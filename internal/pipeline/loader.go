package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lanemask/internal/logger"
	"lanemask/internal/models"
	"lanemask/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const maxImageFileSize = 256 * 1024 * 1024

// ImageLoader decodes image files into BGR Mats for the pipeline.
type ImageLoader struct {
	logger logger.Logger
}

func NewImageLoader(log logger.Logger) *ImageLoader {
	return &ImageLoader{logger: logger.OrNop(log)}
}

func (l *ImageLoader) LoadFromPath(path string) (*safe.Mat, error) {
	data, err := l.readFile(path)
	if err != nil {
		return nil, err
	}

	return l.LoadFromBytes(data, strings.ToLower(filepath.Ext(path)))
}

func (l *ImageLoader) readFile(path string) ([]byte, error) {
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.Size() > maxImageFileSize {
		return nil, fmt.Errorf("image file too large: %d bytes (max %d)", info.Size(), maxImageFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

// LoadFromBytes decodes data with OpenCV as a 3-channel BGR image.
func (l *ImageLoader) LoadFromBytes(data []byte, format string) (*safe.Mat, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image with OpenCV: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("failed to decode image: unsupported or corrupt %s data", formatName(format))
	}

	safeMat, err := safe.NewMatFromMat(mat)
	if err != nil {
		return nil, fmt.Errorf("failed to create safe Mat: %w", err)
	}

	l.logger.Info("ImageLoader", "image loaded", map[string]interface{}{
		"mat_id":   safeMat.ID(),
		"width":    safeMat.Cols(),
		"height":   safeMat.Rows(),
		"channels": safeMat.Channels(),
		"format":   formatName(format),
	})

	return safeMat, nil
}

// LoadMask reads a reference mask image. Pixels brighter than 127 are set.
func (l *ImageLoader) LoadMask(path string) (models.BinaryMask, error) {
	data, err := l.readFile(path)
	if err != nil {
		return models.BinaryMask{}, err
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadGrayScale)
	if err != nil {
		return models.BinaryMask{}, fmt.Errorf("failed to decode mask with OpenCV: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return models.BinaryMask{}, fmt.Errorf("failed to decode mask: unsupported or corrupt %s data",
			formatName(strings.ToLower(filepath.Ext(path))))
	}

	gray, err := safe.NewMatFromMat(mat)
	if err != nil {
		return models.BinaryMask{}, fmt.Errorf("failed to create safe Mat: %w", err)
	}
	defer gray.Close()

	field, err := gray.ScalarField()
	if err != nil {
		return models.BinaryMask{}, err
	}

	mask := models.NewBinaryMask(field.Rows, field.Cols)
	for i, v := range field.Data {
		if v > 127 {
			mask.Data[i] = 1
		}
	}
	return mask, nil
}

func formatName(ext string) string {
	switch strings.TrimPrefix(ext, ".") {
	case "jpg", "jpeg":
		return "jpeg"
	case "png":
		return "png"
	case "bmp":
		return "bmp"
	case "tif", "tiff":
		return "tiff"
	case "webp":
		return "webp"
	case "":
		return "unknown"
	default:
		return strings.TrimPrefix(ext, ".")
	}
}
