package pipeline

import (
	"time"

	"lanemask/internal/models"
	"lanemask/internal/processing/threshold"
)

// Result carries the five masks produced by one Run.
type Result struct {
	RunID   string
	Formula threshold.Formula

	Abs        models.BinaryMask
	Magnitude  models.BinaryMask
	Direction  models.BinaryMask
	Saturation models.BinaryMask
	Combined   models.BinaryMask

	// Degenerate lists classifiers whose field had a zero maximum.
	Degenerate []string

	// Stages lists timed stages in completion order.
	Stages  []string
	Timings map[string]time.Duration
	Elapsed time.Duration
}

// Masks returns the masks keyed by name, in no particular order.
func (r *Result) Masks() map[string]models.BinaryMask {
	return map[string]models.BinaryMask{
		"abs":        r.Abs,
		"magnitude":  r.Magnitude,
		"direction":  r.Direction,
		"saturation": r.Saturation,
		"combined":   r.Combined,
	}
}

// Counts returns the number of set pixels per mask.
func (r *Result) Counts() map[string]int {
	counts := make(map[string]int, 5)
	for name, m := range r.Masks() {
		counts[name] = m.Count()
	}
	return counts
}
