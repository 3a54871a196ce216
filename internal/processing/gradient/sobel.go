package gradient

import (
	"fmt"
	"sync"

	"lanemask/internal/models"
	"lanemask/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// DefaultKernelSize is the Sobel aperture used when callers do not choose one.
const DefaultKernelSize = 3

// BorderPolicy is shared by every derivative so that fields from different
// classifiers line up pixel for pixel.
const BorderPolicy = gocv.BorderDefault

var sobel = gocv.Sobel

// Derivative computes the first Sobel derivative of field along axis.
func Derivative(field models.ScalarField, axis models.Axis, ksize int) (models.ScalarField, error) {
	if err := safe.ValidateField(field, "derivative"); err != nil {
		return models.ScalarField{}, err
	}
	if err := safe.ValidateKernelSize(ksize, "derivative"); err != nil {
		return models.ScalarField{}, err
	}

	dx, dy := 1, 0
	switch axis {
	case models.AxisX:
	case models.AxisY:
		dx, dy = 0, 1
	default:
		return models.ScalarField{}, models.NewInvalidInput("derivative", "unknown axis %v", axis)
	}

	src, err := safe.NewMatFromScalarField(field)
	if err != nil {
		return models.ScalarField{}, fmt.Errorf("source Mat creation failed: %w", err)
	}
	defer src.Close()

	dst, err := safe.NewMat(field.Rows, field.Cols, gocv.MatTypeCV64FC1)
	if err != nil {
		return models.ScalarField{}, fmt.Errorf("destination Mat creation failed: %w", err)
	}
	defer dst.Close()

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	if err := sobel(srcMat, &dstMat, gocv.MatTypeCV64F, dx, dy, ksize, 1, 0, BorderPolicy); err != nil {
		return models.ScalarField{}, fmt.Errorf("sobel failed: %w", err)
	}

	out, err := dst.ScalarField()
	if err != nil {
		return models.ScalarField{}, fmt.Errorf("derivative readback failed: %w", err)
	}
	return out, nil
}

type cacheKey struct {
	axis  models.Axis
	ksize int
}

type cacheEntry struct {
	once  sync.Once
	field models.ScalarField
	err   error
}

// Cache memoizes derivatives of one grayscale field. Classifiers running
// concurrently share the same entries; each derivative is computed once.
type Cache struct {
	gray    models.ScalarField
	mu      sync.Mutex
	entries map[cacheKey]*cacheEntry
}

func NewCache(gray models.ScalarField) *Cache {
	return &Cache{
		gray:    gray,
		entries: make(map[cacheKey]*cacheEntry),
	}
}

// Get returns the derivative along axis at ksize, computing it on first use.
// Callers must not modify the returned field.
func (c *Cache) Get(axis models.Axis, ksize int) (models.ScalarField, error) {
	key := cacheKey{axis: axis, ksize: ksize}

	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &cacheEntry{}
		c.entries[key] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.field, entry.err = Derivative(c.gray, axis, ksize)
	})
	return entry.field, entry.err
}

// Pair returns the x and y derivatives at ksize.
func (c *Cache) Pair(ksize int) (dx, dy models.ScalarField, err error) {
	dx, err = c.Get(models.AxisX, ksize)
	if err != nil {
		return models.ScalarField{}, models.ScalarField{}, err
	}
	dy, err = c.Get(models.AxisY, ksize)
	if err != nil {
		return models.ScalarField{}, models.ScalarField{}, err
	}
	return dx, dy, nil
}

// Len reports how many derivatives have been requested so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
