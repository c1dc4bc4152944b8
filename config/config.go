// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Plate     PlateConfig     `yaml:"plate"`
	Grid      GridConfig      `yaml:"grid"`
	Thermal   ThermalConfig   `yaml:"thermal"`
	Spray     SprayConfig     `yaml:"spray"`
	Run       RunConfig       `yaml:"run"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Screen    ScreenConfig    `yaml:"screen"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PlateConfig holds the physical plate parameters.
type PlateConfig struct {
	LengthX            float64 `yaml:"length_x"`            // Plate extent along x (m)
	LengthY            float64 `yaml:"length_y"`            // Plate extent along y (m)
	InitialTemperature float64 `yaml:"initial_temperature"` // Uniform starting temperature (°C)
	FreezingPoint      float64 `yaml:"freezing_point"`      // Cells strictly below this are ice
}

// GridConfig holds the discretization.
type GridConfig struct {
	NX int `yaml:"nx"`
	NY int `yaml:"ny"`
}

// ThermalConfig holds in-plane diffusion parameters.
type ThermalConfig struct {
	Diffusivity float64 `yaml:"diffusivity"` // alpha (m²/s)
	DT          float64 `yaml:"dt"`          // Diffusion time step (s)
	Substeps    int     `yaml:"substeps"`    // Diffusion steps per droplet batch
}

// SprayConfig holds droplet spray parameters.
type SprayConfig struct {
	BatchSize      int         `yaml:"batch_size"`
	CoolingPerDrop float64     `yaml:"cooling_per_drop"` // °C removed per impact, spread by the kernel
	Budget         int         `yaml:"budget"`           // Maximum droplets over the run
	Seed           int64       `yaml:"seed"`
	Kernel         [][]float64 `yaml:"kernel"` // 3x3 impact weights, normalized on load
}

// RunConfig holds execution parameters.
type RunConfig struct {
	Workers           int `yaml:"workers"`            // 0 = GOMAXPROCS
	ParallelThreshold int `yaml:"parallel_threshold"` // Min cell count before stages fan out
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsEvery int `yaml:"stats_every"` // Iterations between field stats samples
	PerfWindow int `yaml:"perf_window"` // Iterations in the rolling perf window
}

// ScreenConfig holds display settings for the graphical viewer.
type ScreenConfig struct {
	Width              int `yaml:"width"`
	Height             int `yaml:"height"`
	TargetFPS          int `yaml:"target_fps"`
	IterationsPerFrame int `yaml:"iterations_per_frame"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DX     float64 // LengthX / NX
	DY     float64 // LengthY / NY
	FoX    float64 // alpha*dt/dx²
	FoY    float64 // alpha*dt/dy²
	FoSum  float64 // FoX + FoY
	Stable bool    // FoSum <= 0.5 (5-point explicit stencil limit)
}

// StabilityLimit is the largest FoX+FoY for which the explicit 5-point
// update is non-oscillating.
const StabilityLimit = 0.5

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate rejects configurations the simulation cannot be built from.
// Numerically unstable Fourier numbers are allowed; see Derived.Stable.
func (c *Config) Validate() error {
	var errs []error
	if c.Plate.LengthX <= 0 || c.Plate.LengthY <= 0 {
		errs = append(errs, fmt.Errorf("plate lengths must be positive, got %gx%g", c.Plate.LengthX, c.Plate.LengthY))
	}
	if c.Grid.NX < 1 || c.Grid.NY < 1 {
		errs = append(errs, fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Grid.NX, c.Grid.NY))
	}
	if c.Thermal.Diffusivity < 0 || c.Thermal.DT < 0 {
		errs = append(errs, errors.New("diffusivity and dt must be non-negative"))
	}
	if c.Thermal.Substeps < 0 {
		errs = append(errs, fmt.Errorf("substeps must be non-negative, got %d", c.Thermal.Substeps))
	}
	if c.Spray.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch_size must be at least 1, got %d", c.Spray.BatchSize))
	}
	if c.Spray.Budget < 0 {
		errs = append(errs, fmt.Errorf("budget must be non-negative, got %d", c.Spray.Budget))
	}
	if _, err := c.KernelWeights(); err != nil {
		errs = append(errs, err)
	}
	if c.Run.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be non-negative, got %d", c.Run.Workers))
	}
	return errors.Join(errs...)
}

// KernelWeights returns the configured impact kernel as a fixed 3x3 table.
// The weights are not normalized here.
func (c *Config) KernelWeights() ([3][3]float64, error) {
	var w [3][3]float64
	if len(c.Spray.Kernel) != 3 {
		return w, fmt.Errorf("kernel must have 3 rows, got %d", len(c.Spray.Kernel))
	}
	for i, row := range c.Spray.Kernel {
		if len(row) != 3 {
			return w, fmt.Errorf("kernel row %d must have 3 weights, got %d", i, len(row))
		}
		copy(w[i][:], row)
	}
	return w, nil
}

// ComputeDerived calculates values derived from loaded config.
// Call again after mutating a loaded config in code.
func (c *Config) ComputeDerived() {
	c.Derived.DX = c.Plate.LengthX / float64(c.Grid.NX)
	c.Derived.DY = c.Plate.LengthY / float64(c.Grid.NY)
	c.Derived.FoX = c.Thermal.Diffusivity * c.Thermal.DT / (c.Derived.DX * c.Derived.DX)
	c.Derived.FoY = c.Thermal.Diffusivity * c.Thermal.DT / (c.Derived.DY * c.Derived.DY)
	c.Derived.FoSum = c.Derived.FoX + c.Derived.FoY
	c.Derived.Stable = c.Derived.FoSum <= StabilityLimit
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Spray.Kernel = make([][]float64, len(c.Spray.Kernel))
	for i, row := range c.Spray.Kernel {
		cp.Spray.Kernel[i] = append([]float64(nil), row...)
	}
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
