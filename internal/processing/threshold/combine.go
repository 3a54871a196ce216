package threshold

import (
	"fmt"

	"lanemask/internal/models"
)

// Formula selects how the four classifier masks are fused.
type Formula int

const (
	// FormulaFull is abs | (magnitude & direction) | saturation.
	FormulaFull Formula = iota
	// FormulaAbsOrSaturation is abs | saturation. It reproduces masks from
	// the earlier tooling, where an operator precedence slip made the
	// magnitude and direction term a no-op.
	FormulaAbsOrSaturation
)

func (f Formula) String() string {
	switch f {
	case FormulaFull:
		return "full"
	case FormulaAbsOrSaturation:
		return "abs_or_saturation"
	default:
		return fmt.Sprintf("Formula(%d)", int(f))
	}
}

// ParseFormula accepts the names produced by Formula.String.
func ParseFormula(s string) (Formula, error) {
	switch s {
	case "", "full":
		return FormulaFull, nil
	case "abs_or_saturation":
		return FormulaAbsOrSaturation, nil
	default:
		return FormulaFull, fmt.Errorf("unknown combine formula %q", s)
	}
}

// Combine fuses the classifier masks pixel by pixel.
func Combine(abs, mag, dir, sat models.BinaryMask, formula Formula) (models.BinaryMask, error) {
	if !abs.Valid() {
		return models.BinaryMask{}, models.NewInvalidInput("combine", "abs mask holds %d values for %dx%d",
			len(abs.Data), abs.Cols, abs.Rows)
	}
	for name, m := range map[string]models.BinaryMask{"magnitude": mag, "direction": dir, "saturation": sat} {
		if !abs.SameShape(m) {
			return models.BinaryMask{}, models.NewInvalidInput("combine", "%s mask is %dx%d, abs mask is %dx%d",
				name, m.Cols, m.Rows, abs.Cols, abs.Rows)
		}
	}

	out := models.NewBinaryMask(abs.Rows, abs.Cols)

	switch formula {
	case FormulaFull:
		for i := range out.Data {
			if abs.Data[i] == 1 || (mag.Data[i] == 1 && dir.Data[i] == 1) || sat.Data[i] == 1 {
				out.Data[i] = 1
			}
		}
	case FormulaAbsOrSaturation:
		for i := range out.Data {
			if abs.Data[i] == 1 || sat.Data[i] == 1 {
				out.Data[i] = 1
			}
		}
	default:
		return models.BinaryMask{}, fmt.Errorf("unknown combine formula %v", formula)
	}

	return out, nil
}
