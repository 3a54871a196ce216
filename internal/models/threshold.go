package models

import (
	"fmt"
	"math"
)

// Bound controls whether a range endpoint is part of the range.
type Bound int

const (
	Inclusive Bound = iota
	Exclusive
)

// Bounds pairs the comparison used at each end of a Range. The classifiers
// disagree on it, so it travels separately from the numbers.
type Bounds struct {
	Low  Bound
	High Bound
}

var (
	// ClosedBounds is low <= v <= high.
	ClosedBounds = Bounds{Low: Inclusive, High: Inclusive}
	// LeftOpenBounds is low < v <= high.
	LeftOpenBounds = Bounds{Low: Exclusive, High: Inclusive}
)

// Range is an ordered (low, high) threshold pair.
type Range struct {
	Low  float64
	High float64
}

// Contains applies both endpoint comparisons.
func (r Range) Contains(v float64, b Bounds) bool {
	var lowOK, highOK bool
	if b.Low == Exclusive {
		lowOK = v > r.Low
	} else {
		lowOK = v >= r.Low
	}
	if b.High == Exclusive {
		highOK = v < r.High
	} else {
		highOK = v <= r.High
	}
	return lowOK && highOK
}

func (r Range) Validate() error {
	if math.IsNaN(r.Low) || math.IsNaN(r.High) {
		return NewInvalidInput("range", "bounds must be numbers, got (%v, %v)", r.Low, r.High)
	}
	if r.Low > r.High {
		return NewInvalidInput("range", "low %v exceeds high %v", r.Low, r.High)
	}
	return nil
}

// Format renders the range with bracket notation for b.
func (r Range) Format(b Bounds) string {
	open, closeBr := "[", "]"
	if b.Low == Exclusive {
		open = "("
	}
	if b.High == Exclusive {
		closeBr = ")"
	}
	return fmt.Sprintf("%s%g, %g%s", open, r.Low, r.High, closeBr)
}
