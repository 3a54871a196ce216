package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Axis selects the spatial direction of a derivative.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis accepts "x" or "y".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	default:
		return AxisX, fmt.Errorf("unknown axis %q", s)
	}
}

// ScalarField is a row-major grid of float64 values, one per pixel.
type ScalarField struct {
	Rows int
	Cols int
	Data []float64
}

// NewScalarField allocates a zeroed field.
func NewScalarField(rows, cols int) ScalarField {
	return ScalarField{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

func (f ScalarField) At(row, col int) float64 {
	return f.Data[row*f.Cols+col]
}

func (f ScalarField) Set(row, col int, v float64) {
	f.Data[row*f.Cols+col] = v
}

func (f ScalarField) Empty() bool {
	return f.Rows <= 0 || f.Cols <= 0 || len(f.Data) == 0
}

// Max returns the global maximum of the field.
func (f ScalarField) Max() float64 {
	if len(f.Data) == 0 {
		return 0
	}
	return floats.Max(f.Data)
}

// Abs returns a new field holding |v| for every element.
func (f ScalarField) Abs() ScalarField {
	out := NewScalarField(f.Rows, f.Cols)
	for i, v := range f.Data {
		out.Data[i] = math.Abs(v)
	}
	return out
}

// SameShape reports whether both fields cover the same grid.
func (f ScalarField) SameShape(rows, cols int) bool {
	return f.Rows == rows && f.Cols == cols
}

// BinaryMask holds one 0/1 decision per pixel.
type BinaryMask struct {
	Rows int
	Cols int
	Data []uint8
}

// NewBinaryMask allocates an all-zero mask.
func NewBinaryMask(rows, cols int) BinaryMask {
	return BinaryMask{Rows: rows, Cols: cols, Data: make([]uint8, rows*cols)}
}

func (m BinaryMask) At(row, col int) uint8 {
	return m.Data[row*m.Cols+col]
}

func (m BinaryMask) Set(row, col int, v bool) {
	if v {
		m.Data[row*m.Cols+col] = 1
	} else {
		m.Data[row*m.Cols+col] = 0
	}
}

// Count returns the number of set pixels.
func (m BinaryMask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Valid reports whether Data holds exactly Rows*Cols pixels.
func (m BinaryMask) Valid() bool {
	return m.Rows >= 0 && m.Cols >= 0 && len(m.Data) == m.Rows*m.Cols
}

func (m BinaryMask) SameShape(o BinaryMask) bool {
	return m.Rows == o.Rows && m.Cols == o.Cols && len(m.Data) == len(o.Data)
}
