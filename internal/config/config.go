package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lanemask/internal/models"
	"lanemask/internal/opencv/safe"
	"lanemask/internal/processing/threshold"
)

// Defaults for the combined pipeline. The direction and saturation windows
// are narrower than the standalone classifier defaults.
const (
	DefaultAbsAxis        = "x"
	DefaultAbsLow         = 20.0
	DefaultAbsHigh        = 100.0
	DefaultMagKernel      = 3
	DefaultMagLow         = 30.0
	DefaultMagHigh        = 100.0
	DefaultDirKernel      = 3
	DefaultDirLow         = 0.7
	DefaultDirHigh        = 1.3
	DefaultSatLow         = 170.0
	DefaultSatHigh        = 255.0
	DefaultCombineFormula = "full"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config holds per-classifier thresholds for the combined pipeline. Fields
// left nil fall back to the defaults above, so partial files are safe.
type Config struct {
	AbsAxis *string  `json:"abs_axis,omitempty"`
	AbsLow  *float64 `json:"abs_low,omitempty"`
	AbsHigh *float64 `json:"abs_high,omitempty"`

	MagKernel *int     `json:"mag_kernel,omitempty"`
	MagLow    *float64 `json:"mag_low,omitempty"`
	MagHigh   *float64 `json:"mag_high,omitempty"`

	// Direction thresholds are radians.
	DirKernel *int     `json:"dir_kernel,omitempty"`
	DirLow    *float64 `json:"dir_low,omitempty"`
	DirHigh   *float64 `json:"dir_high,omitempty"`

	SatLow  *float64 `json:"sat_low,omitempty"`
	SatHigh *float64 `json:"sat_high,omitempty"`

	CombineFormula *string `json:"combine_formula,omitempty"`
	Parallel       *bool   `json:"parallel,omitempty"`
}

// Params is the typed form consumed by the pipeline.
type Params struct {
	AbsAxis   models.Axis
	AbsRange  models.Range
	MagKernel int
	MagRange  models.Range
	DirKernel int
	DirRange  models.Range
	SatRange  models.Range
	Formula   threshold.Formula
	Parallel  bool
}

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file and validates it.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the effective values, defaults included.
func (c *Config) Validate() error {
	_, err := c.Params()
	return err
}

// Params resolves defaults and converts the config to typed parameters.
func (c *Config) Params() (Params, error) {
	axis, err := models.ParseAxis(c.GetAbsAxis())
	if err != nil {
		return Params{}, fmt.Errorf("abs_axis: %w", err)
	}

	formula, err := threshold.ParseFormula(c.GetCombineFormula())
	if err != nil {
		return Params{}, fmt.Errorf("combine_formula: %w", err)
	}

	p := Params{
		AbsAxis:   axis,
		AbsRange:  models.Range{Low: c.GetAbsLow(), High: c.GetAbsHigh()},
		MagKernel: c.GetMagKernel(),
		MagRange:  models.Range{Low: c.GetMagLow(), High: c.GetMagHigh()},
		DirKernel: c.GetDirKernel(),
		DirRange:  models.Range{Low: c.GetDirLow(), High: c.GetDirHigh()},
		SatRange:  models.Range{Low: c.GetSatLow(), High: c.GetSatHigh()},
		Formula:   formula,
		Parallel:  c.GetParallel(),
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks kernel sizes and threshold windows.
func (p Params) Validate() error {
	if err := safe.ValidateKernelSize(p.MagKernel, "mag_kernel"); err != nil {
		return err
	}
	if err := safe.ValidateKernelSize(p.DirKernel, "dir_kernel"); err != nil {
		return err
	}

	ranges := []struct {
		name string
		r    models.Range
	}{
		{"abs", p.AbsRange},
		{"mag", p.MagRange},
		{"dir", p.DirRange},
		{"sat", p.SatRange},
	}
	for _, entry := range ranges {
		if err := entry.r.Validate(); err != nil {
			return fmt.Errorf("%s range: %w", entry.name, err)
		}
	}

	return nil
}

// DefaultParams returns the combined pipeline defaults.
func DefaultParams() Params {
	p, err := Empty().Params()
	if err != nil {
		panic("config defaults are invalid: " + err.Error())
	}
	return p
}

func (c *Config) GetAbsAxis() string {
	if c.AbsAxis == nil || *c.AbsAxis == "" {
		return DefaultAbsAxis
	}
	return *c.AbsAxis
}

func (c *Config) GetAbsLow() float64 {
	if c.AbsLow == nil {
		return DefaultAbsLow
	}
	return *c.AbsLow
}

func (c *Config) GetAbsHigh() float64 {
	if c.AbsHigh == nil {
		return DefaultAbsHigh
	}
	return *c.AbsHigh
}

func (c *Config) GetMagKernel() int {
	if c.MagKernel == nil {
		return DefaultMagKernel
	}
	return *c.MagKernel
}

func (c *Config) GetMagLow() float64 {
	if c.MagLow == nil {
		return DefaultMagLow
	}
	return *c.MagLow
}

func (c *Config) GetMagHigh() float64 {
	if c.MagHigh == nil {
		return DefaultMagHigh
	}
	return *c.MagHigh
}

func (c *Config) GetDirKernel() int {
	if c.DirKernel == nil {
		return DefaultDirKernel
	}
	return *c.DirKernel
}

func (c *Config) GetDirLow() float64 {
	if c.DirLow == nil {
		return DefaultDirLow
	}
	return *c.DirLow
}

func (c *Config) GetDirHigh() float64 {
	if c.DirHigh == nil {
		return DefaultDirHigh
	}
	return *c.DirHigh
}

func (c *Config) GetSatLow() float64 {
	if c.SatLow == nil {
		return DefaultSatLow
	}
	return *c.SatLow
}

func (c *Config) GetSatHigh() float64 {
	if c.SatHigh == nil {
		return DefaultSatHigh
	}
	return *c.SatHigh
}

func (c *Config) GetCombineFormula() string {
	if c.CombineFormula == nil || *c.CombineFormula == "" {
		return DefaultCombineFormula
	}
	return *c.CombineFormula
}

// GetParallel defaults to true.
func (c *Config) GetParallel() bool {
	if c.Parallel == nil {
		return true
	}
	return *c.Parallel
}
