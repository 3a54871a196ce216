package pipeline

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sort"

	"lanemask/internal/logger"
	"lanemask/internal/models"
	"lanemask/internal/opencv/conversion"
)

// MaskSaver writes result masks as black/white PNGs for inspection.
type MaskSaver struct {
	logger logger.Logger
}

func NewMaskSaver(log logger.Logger) *MaskSaver {
	return &MaskSaver{logger: logger.OrNop(log)}
}

// SaveMasks writes <prefix>_<mask>.png into dir for each of the five masks
// and returns the written paths in name order.
func (s *MaskSaver) SaveMasks(dir, prefix string, result *Result) ([]string, error) {
	if result == nil {
		return nil, fmt.Errorf("no result to save")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	masks := result.Masks()
	names := make([]string, 0, len(masks))
	for name := range masks {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, name))
		if err := writePNG(path, masks[name]); err != nil {
			s.logger.Error("MaskSaver", err, map[string]interface{}{
				"path": path,
			})
			return paths, err
		}
		paths = append(paths, path)
	}

	s.logger.Info("MaskSaver", "masks saved", map[string]interface{}{
		"dir":    dir,
		"count":  len(paths),
		"run_id": result.RunID,
	})

	return paths, nil
}

func writePNG(path string, mask models.BinaryMask) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := png.Encode(f, conversion.MaskToImage(mask)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
