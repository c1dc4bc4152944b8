package main

import (
	"math"

	"github.com/pthm-cable/icing/config"
)

// ParamSpec defines a single calibrated parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Log     bool    // Search in log space
}

// ParamVector holds the set of calibrated parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the parameter set. With diffusivity false only
// cooling_per_drop is searched.
func NewParamVector(base *config.Config, diffusivity bool) *ParamVector {
	pv := &ParamVector{
		Specs: []ParamSpec{
			{Name: "cooling_per_drop", Path: "spray.cooling_per_drop", Min: 1e-4, Max: 1e3, Default: base.Spray.CoolingPerDrop, Log: true},
		},
	}
	if diffusivity {
		pv.Specs = append(pv.Specs, ParamSpec{
			Name: "diffusivity", Path: "thermal.diffusivity", Min: 1e-7, Max: 1e-1, Default: base.Thermal.Diffusivity, Log: true,
		})
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to the [0,1] search range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		if spec.Log {
			normalized[i] = (math.Log(raw[i]) - math.Log(spec.Min)) / (math.Log(spec.Max) - math.Log(spec.Min))
			continue
		}
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts search values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		if spec.Log {
			raw[i] = math.Exp(math.Log(spec.Min) + normalized[i]*(math.Log(spec.Max)-math.Log(spec.Min)))
			continue
		}
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Min(math.Max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies raw parameter values to cfg and refreshes derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		switch spec.Name {
		case "cooling_per_drop":
			cfg.Spray.CoolingPerDrop = clamped[i]
		case "diffusivity":
			cfg.Thermal.Diffusivity = clamped[i]
		}
	}
	cfg.ComputeDerived()
}
