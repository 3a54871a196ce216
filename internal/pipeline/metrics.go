package pipeline

import (
	"lanemask/internal/models"
)

// SegmentationMetrics scores a predicted mask against a reference mask.
type SegmentationMetrics struct {
	TruePositive  int
	FalsePositive int
	FalseNegative int
	TrueNegative  int

	IoU                    float64 // Intersection over Union
	DiceCoefficient        float64
	MisclassificationError float64
}

// CalculateSegmentationMetrics compares predicted with reference pixel by
// pixel. Two empty masks count as a perfect match.
func CalculateSegmentationMetrics(predicted, reference models.BinaryMask) (*SegmentationMetrics, error) {
	if !predicted.Valid() {
		return nil, models.NewInvalidInput("segmentation metrics", "mask holds %d values for %dx%d",
			len(predicted.Data), predicted.Cols, predicted.Rows)
	}
	if !predicted.SameShape(reference) {
		return nil, models.NewInvalidInput("segmentation metrics", "mask is %dx%d, reference is %dx%d",
			predicted.Cols, predicted.Rows, reference.Cols, reference.Rows)
	}

	m := &SegmentationMetrics{}
	for i, p := range predicted.Data {
		r := reference.Data[i]
		switch {
		case p == 1 && r == 1:
			m.TruePositive++
		case p == 1:
			m.FalsePositive++
		case r == 1:
			m.FalseNegative++
		default:
			m.TrueNegative++
		}
	}

	intersection := float64(m.TruePositive)
	mistakes := m.FalsePositive + m.FalseNegative

	if union := m.TruePositive + mistakes; union > 0 {
		m.IoU = intersection / float64(union)
		m.DiceCoefficient = 2 * intersection / float64(2*m.TruePositive+mistakes)
	} else {
		m.IoU = 1
		m.DiceCoefficient = 1
	}

	if total := len(predicted.Data); total > 0 {
		m.MisclassificationError = float64(mistakes) / float64(total)
	}

	return m, nil
}
