package safe

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"lanemask/internal/models"

	"gocv.io/x/gocv"
)

// Mat wraps gocv.Mat with validity tracking so that a closed Mat is never
// handed back to OpenCV.
type Mat struct {
	mat     gocv.Mat
	isValid int32
	mu      sync.RWMutex
	id      uint64
}

var nextMatID uint64

func NewMat(rows, cols int, matType gocv.MatType) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", cols, rows)
	}

	mat := gocv.NewMatWithSize(rows, cols, matType)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to create Mat with size %dx%d", cols, rows)
	}

	return wrap(mat), nil
}

// NewMatFromMat clones srcMat; the caller keeps ownership of srcMat.
func NewMatFromMat(srcMat gocv.Mat) (*Mat, error) {
	if srcMat.Empty() {
		return nil, fmt.Errorf("source Mat is empty")
	}

	if srcMat.Rows() <= 0 || srcMat.Cols() <= 0 {
		return nil, fmt.Errorf("source Mat has invalid dimensions: %dx%d", srcMat.Cols(), srcMat.Rows())
	}

	clonedMat := srcMat.Clone()
	if clonedMat.Empty() {
		clonedMat.Close()
		return nil, fmt.Errorf("failed to clone Mat")
	}

	return wrap(clonedMat), nil
}

// NewMatFromBytes builds an 8-bit Mat from interleaved channel data.
func NewMatFromBytes(rows, cols int, matType gocv.MatType, data []byte) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", cols, rows)
	}

	mat, err := gocv.NewMatFromBytes(rows, cols, matType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create Mat from bytes: %w", err)
	}

	// NewMatFromBytes shares the Go slice; clone so the Mat owns its pixels.
	defer mat.Close()
	return NewMatFromMat(mat)
}

// NewMatFromScalarField copies a field into a CV_64F single-channel Mat.
func NewMatFromScalarField(field models.ScalarField) (*Mat, error) {
	if field.Empty() || len(field.Data) != field.Rows*field.Cols {
		return nil, fmt.Errorf("invalid scalar field %dx%d with %d values", field.Cols, field.Rows, len(field.Data))
	}

	dst, err := NewMat(field.Rows, field.Cols, gocv.MatTypeCV64FC1)
	if err != nil {
		return nil, err
	}

	data, err := dst.mat.DataPtrFloat64()
	if err != nil {
		dst.Close()
		return nil, fmt.Errorf("failed to access float64 data: %w", err)
	}
	copy(data, field.Data)

	return dst, nil
}

func wrap(mat gocv.Mat) *Mat {
	safeMat := &Mat{
		mat:     mat,
		isValid: 1,
		id:      atomic.AddUint64(&nextMatID, 1),
	}

	// Set finalizer for cleanup if Close() is not called
	runtime.SetFinalizer(safeMat, (*Mat).finalize)

	return safeMat
}

func (sm *Mat) IsValid() bool {
	return atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Empty() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return true
	}

	return sm.mat.Empty()
}

func (sm *Mat) Rows() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Cols()
}

func (sm *Mat) Channels() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Channels()
}

func (sm *Mat) Type() gocv.MatType {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return gocv.MatTypeCV8UC1
	}

	return sm.mat.Type()
}

// ScalarField reads a single-channel CV_8U or CV_64F Mat into a field.
func (sm *Mat) ScalarField() (models.ScalarField, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() || sm.mat.Empty() {
		return models.ScalarField{}, fmt.Errorf("Mat is invalid or empty")
	}

	rows, cols := sm.mat.Rows(), sm.mat.Cols()
	field := models.NewScalarField(rows, cols)

	switch sm.mat.Type() {
	case gocv.MatTypeCV8UC1:
		if sm.mat.IsContinuous() {
			data, err := sm.mat.DataPtrUint8()
			if err != nil {
				return models.ScalarField{}, fmt.Errorf("failed to access uint8 data: %w", err)
			}
			for i, v := range data[:rows*cols] {
				field.Data[i] = float64(v)
			}
			return field, nil
		}
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				field.Set(y, x, float64(sm.mat.GetUCharAt(y, x)))
			}
		}
	case gocv.MatTypeCV64FC1:
		if sm.mat.IsContinuous() {
			data, err := sm.mat.DataPtrFloat64()
			if err != nil {
				return models.ScalarField{}, fmt.Errorf("failed to access float64 data: %w", err)
			}
			copy(field.Data, data)
			return field, nil
		}
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				field.Set(y, x, sm.mat.GetDoubleAt(y, x))
			}
		}
	default:
		return models.ScalarField{}, fmt.Errorf("unsupported MatType %d for scalar field", int(sm.mat.Type()))
	}

	return field, nil
}

// ChannelFields splits a CV_8UC3 Mat into three fields.
func (sm *Mat) ChannelFields() ([3]models.ScalarField, error) {
	var out [3]models.ScalarField

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() || sm.mat.Empty() {
		return out, fmt.Errorf("Mat is invalid or empty")
	}
	if sm.mat.Type() != gocv.MatTypeCV8UC3 {
		return out, fmt.Errorf("channel split requires CV_8UC3, got type %d", int(sm.mat.Type()))
	}

	rows, cols := sm.mat.Rows(), sm.mat.Cols()
	for c := range out {
		out[c] = models.NewScalarField(rows, cols)
	}

	if sm.mat.IsContinuous() {
		data, err := sm.mat.DataPtrUint8()
		if err != nil {
			return out, fmt.Errorf("failed to access uint8 data: %w", err)
		}
		for i := 0; i < rows*cols; i++ {
			out[0].Data[i] = float64(data[3*i])
			out[1].Data[i] = float64(data[3*i+1])
			out[2].Data[i] = float64(data[3*i+2])
		}
		return out, nil
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			pixel := sm.mat.GetVecbAt(y, x)
			for c := 0; c < 3; c++ {
				out[c].Set(y, x, float64(pixel[c]))
			}
		}
	}
	return out, nil
}

func (sm *Mat) GetMat() gocv.Mat {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat
}

func (sm *Mat) ID() uint64 {
	return sm.id
}

func (sm *Mat) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		if !sm.mat.Empty() {
			sm.mat.Close()
		}

		runtime.SetFinalizer(sm, nil)
	}
}

// finalize is called by the garbage collector if Close was never called.
func (sm *Mat) finalize() {
	if atomic.LoadInt32(&sm.isValid) == 1 {
		sm.Close()
	}
}
