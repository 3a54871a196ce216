package conversion

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"lanemask/internal/models"
	"lanemask/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestImageToMatUsesBGROrder(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 0, B: 0, A: 128})

	mat, err := ImageToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, 1, mat.Rows())
	assert.Equal(t, 2, mat.Cols())
	assert.Equal(t, gocv.MatTypeCV8UC3, mat.Type())

	channels, err := mat.ChannelFields()
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 0}, channels[0].Data, "blue")
	assert.Equal(t, []float64{20, 0}, channels[1].Data, "green")
	assert.Equal(t, []float64{10, 200}, channels[2].Data, "red")
}

func TestImageToMatGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(2, 1, color.Gray{Y: 77})

	mat, err := ImageToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	gray, err := ToGray(mat)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 77}, gray.Data)
}

func TestImageToMatRejectsInvalid(t *testing.T) {
	_, err := ImageToMat(nil)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = ImageToMat(image.NewRGBA(image.Rect(0, 0, 0, 5)))
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestToGrayKeepsNeutralValues(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	for x, v := range []uint8{0, 64, 200, 255} {
		img.SetRGBA(x, 0, color.RGBA{R: v, G: v, B: v, A: 255})
	}

	mat, err := ImageToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	gray, err := ToGray(mat)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 64, 200, 255}, gray.Data)
}

func TestToHLSSaturation(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	img.SetRGBA(1, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(2, 0, color.RGBA{B: 255, A: 255})

	mat, err := ImageToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	hls, err := ToHLS(mat)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 255, 255}, hls.Saturation.Data)
	assert.Equal(t, 0.0, hls.Hue.At(0, 1), "red hue")
	assert.Equal(t, 120.0, hls.Hue.At(0, 2), "blue hue")
}

func TestColorConversionRejectsSingleChannel(t *testing.T) {
	single, err := safe.NewMat(2, 2, gocv.MatTypeCV8UC1)
	require.NoError(t, err)
	defer single.Close()

	_, err = ToGray(single)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = ToHLS(single)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	single.Close()
	_, err = ToGray(single)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestMaskToImage(t *testing.T) {
	mask := models.NewBinaryMask(2, 2)
	mask.Set(0, 1, true)
	mask.Set(1, 0, true)

	img := MaskToImage(mask)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	assert.Equal(t, []uint8{0, 255, 255, 0}, img.Pix)
}

func TestColorConversionReportsOpenCVFailure(t *testing.T) {
	cause := errors.New("opencv: conversion rejected")
	orig := cvtColor
	cvtColor = func(src gocv.Mat, dst *gocv.Mat, code gocv.ColorConversionCode) error {
		return cause
	}
	t.Cleanup(func() { cvtColor = orig })

	mat, err := ImageToMat(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	require.NoError(t, err)
	defer mat.Close()

	_, err = ToGray(mat)
	assert.ErrorIs(t, err, cause)

	_, err = ToHLS(mat)
	assert.ErrorIs(t, err, cause)
}
