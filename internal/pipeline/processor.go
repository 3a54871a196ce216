package pipeline

import (
	"context"
	"errors"
	"fmt"

	"lanemask/internal/config"
	"lanemask/internal/debug/timing"
	"lanemask/internal/logger"
	"lanemask/internal/models"
	"lanemask/internal/opencv/conversion"
	"lanemask/internal/opencv/safe"
	"lanemask/internal/processing/gradient"
	"lanemask/internal/processing/threshold"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const component = "Pipeline"

// Processor runs the lane-marking threshold pipeline. It holds no per-image
// state, so one Processor may serve concurrent Run calls.
type Processor struct {
	params config.Params
	logger logger.Logger
}

func NewProcessor(params config.Params, log logger.Logger) (*Processor, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline parameters: %w", err)
	}

	return &Processor{
		params: params,
		logger: logger.OrNop(log),
	}, nil
}

// Run computes the four classifier masks for img and fuses them.
func (p *Processor) Run(ctx context.Context, img *safe.Mat) (*Result, error) {
	if err := safe.ValidateColorImage(img, "pipeline"); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	tracker := timing.NewTracker()
	result := &Result{
		RunID:   runID,
		Formula: p.params.Formula,
	}

	p.logger.Debug(component, "run started", map[string]interface{}{
		"run_id":     runID,
		"mat_id":     img.ID(),
		"rows":       img.Rows(),
		"cols":       img.Cols(),
		"formula":    p.params.Formula.String(),
		"abs":        p.params.AbsAxis.String() + " " + p.params.AbsRange.Format(threshold.AbsBounds),
		"magnitude":  p.params.MagRange.Format(threshold.MagnitudeBounds),
		"direction":  p.params.DirRange.Format(threshold.DirectionBounds),
		"saturation": p.params.SatRange.Format(threshold.SaturationBounds),
	})

	var (
		gray models.ScalarField
		hls  conversion.HLS
	)
	err := tracker.Track(ctx, "convert", func() error {
		var err error
		if gray, err = conversion.ToGray(img); err != nil {
			return fmt.Errorf("grayscale conversion: %w", err)
		}
		if hls, err = conversion.ToHLS(img); err != nil {
			return fmt.Errorf("HLS conversion: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, p.fail(runID, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	derivatives := gradient.NewCache(gray)
	err = tracker.Track(ctx, "derivatives", func() error {
		if _, err := derivatives.Get(p.params.AbsAxis, gradient.DefaultKernelSize); err != nil {
			return err
		}
		if _, _, err := derivatives.Pair(p.params.MagKernel); err != nil {
			return err
		}
		_, _, err := derivatives.Pair(p.params.DirKernel)
		return err
	})
	if err != nil {
		return nil, p.fail(runID, fmt.Errorf("derivatives: %w", err))
	}

	stages := []struct {
		name string
		dst  *models.BinaryMask
		fn   func() (models.BinaryMask, error)
	}{
		{"abs", &result.Abs, func() (models.BinaryMask, error) {
			d, err := derivatives.Get(p.params.AbsAxis, gradient.DefaultKernelSize)
			if err != nil {
				return models.BinaryMask{}, err
			}
			return threshold.AbsGradientFromDerivative(d, p.params.AbsRange)
		}},
		{"magnitude", &result.Magnitude, func() (models.BinaryMask, error) {
			dx, dy, err := derivatives.Pair(p.params.MagKernel)
			if err != nil {
				return models.BinaryMask{}, err
			}
			return threshold.MagnitudeFromDerivatives(dx, dy, p.params.MagRange)
		}},
		{"direction", &result.Direction, func() (models.BinaryMask, error) {
			dx, dy, err := derivatives.Pair(p.params.DirKernel)
			if err != nil {
				return models.BinaryMask{}, err
			}
			return threshold.DirectionFromDerivatives(dx, dy, p.params.DirRange)
		}},
		{"saturation", &result.Saturation, func() (models.BinaryMask, error) {
			return threshold.SaturationFromChannel(hls.Saturation, p.params.SatRange)
		}},
	}

	degenerate := make([]bool, len(stages))
	g, gctx := errgroup.WithContext(ctx)
	if !p.params.Parallel {
		g.SetLimit(1)
	}

	for i, stage := range stages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return tracker.Track(gctx, stage.name, func() error {
				mask, err := stage.fn()
				if errors.Is(err, models.ErrDegenerateField) {
					// The mask is valid and all zero.
					degenerate[i] = true
					err = nil
				}
				if err != nil {
					return fmt.Errorf("%s classifier: %w", stage.name, err)
				}
				*stage.dst = mask
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, p.fail(runID, err)
	}

	for i, stage := range stages {
		if degenerate[i] {
			result.Degenerate = append(result.Degenerate, stage.name)
			p.logger.Debug(component, "flat gradient field, mask left empty", map[string]interface{}{
				"run_id":     runID,
				"classifier": stage.name,
			})
		}
	}

	err = tracker.Track(ctx, "combine", func() error {
		combined, err := threshold.Combine(result.Abs, result.Magnitude, result.Direction, result.Saturation, p.params.Formula)
		if err != nil {
			return err
		}
		result.Combined = combined
		return nil
	})
	if err != nil {
		return nil, p.fail(runID, fmt.Errorf("combine: %w", err))
	}

	result.Timings = tracker.Timings()
	result.Stages = tracker.Operations()
	result.Elapsed = tracker.Total()

	p.logger.Info(component, "run completed", map[string]interface{}{
		"run_id":     runID,
		"counts":     result.Counts(),
		"elapsed_ms": result.Elapsed.Milliseconds(),
	})

	return result, nil
}

func (p *Processor) fail(runID string, err error) error {
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		p.logger.Error(component, err, map[string]interface{}{"run_id": runID})
	}
	return err
}
