package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"lanemask/internal/models"
	"lanemask/internal/processing/threshold"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	assert.Equal(t, models.AxisX, p.AbsAxis)
	assert.Equal(t, models.Range{Low: 20, High: 100}, p.AbsRange)
	assert.Equal(t, 3, p.MagKernel)
	assert.Equal(t, models.Range{Low: 30, High: 100}, p.MagRange)
	assert.Equal(t, 3, p.DirKernel)
	assert.Equal(t, models.Range{Low: 0.7, High: 1.3}, p.DirRange)
	assert.Equal(t, models.Range{Low: 170, High: 255}, p.SatRange)
	assert.Equal(t, threshold.FormulaFull, p.Formula)
	assert.True(t, p.Parallel)
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeConfig(t, "thresholds.json", `{
		"abs_axis": "y",
		"mag_kernel": 9,
		"dir_high": 1.5,
		"combine_formula": "abs_or_saturation",
		"parallel": false
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	p, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, models.AxisY, p.AbsAxis)
	assert.Equal(t, 9, p.MagKernel)
	assert.Equal(t, models.Range{Low: DefaultDirLow, High: 1.5}, p.DirRange)
	assert.Equal(t, threshold.FormulaAbsOrSaturation, p.Formula)
	assert.False(t, p.Parallel)

	// Untouched fields keep their defaults.
	assert.Equal(t, models.Range{Low: DefaultSatLow, High: DefaultSatHigh}, p.SatRange)
	assert.Equal(t, DefaultDirKernel, p.DirKernel)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		body     string
		contains string
	}{
		{"wrong extension", "thresholds.yaml", `{}`, ".json extension"},
		{"bad json", "bad.json", `{"abs_low": }`, "parse config JSON"},
		{"even kernel", "even.json", `{"mag_kernel": 4}`, "must be odd"},
		{"kernel too large", "large.json", `{"dir_kernel": 33}`, "out of range"},
		{"inverted range", "inverted.json", `{"sat_low": 200, "sat_high": 100}`, "sat range"},
		{"unknown formula", "formula.json", `{"combine_formula": "everything"}`, "combine_formula"},
		{"unknown axis", "axis.json", `{"abs_axis": "z"}`, "abs_axis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParamsValidateNaN(t *testing.T) {
	p := DefaultParams()
	p.DirRange = models.Range{Low: math.NaN(), High: 1}

	err := p.Validate()
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestEmptyConfigGetters(t *testing.T) {
	cfg := Empty()

	assert.Equal(t, DefaultAbsAxis, cfg.GetAbsAxis())
	assert.Equal(t, DefaultCombineFormula, cfg.GetCombineFormula())
	assert.True(t, cfg.GetParallel())
	assert.NoError(t, cfg.Validate())
}
