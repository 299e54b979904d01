package config

import (
	"math"
	"sort"

	"github.com/san-kum/cowell/pkg/gravity"
)

const (
	earthJ2 = 1.08263e-3
	twoPi   = 2 * math.Pi
)

var Presets = map[string]map[string]*Config{
	"two_body": {
		"circular": {
			Dynamics: "two_body", Mode: "adaptive", Solver: "dopri5", Controller: "pid",
			T1: twoPi, MaxSteps: 4096, Rtol: 1e-8, Atol: 1e-8,
			Args:      map[string]any{"mu": 1.0},
			InitState: InitStateConfig{Cartesian: []float64{1, 0, 0, 0, 1, 0}},
		},
		"eccentric": {
			Dynamics: "two_body", Mode: "fixed", Solver: "dopri5", Controller: "constant",
			T1: gravity.Period(2, 1), Dt: 0.01, MaxSteps: 4096,
			Args:      map[string]any{"mu": 1.0},
			InitState: InitStateConfig{Elements: &gravity.Elements{A: 2, E: 0.5, I: 0.2}},
		},
		"impact": {
			Dynamics: "two_body", Mode: "adaptive", Solver: "dopri5", Controller: "pid", Event: "radius_below",
			T1: twoPi, MaxSteps: 4096, Rtol: 1e-8, Atol: 1e-8,
			Args:      map[string]any{"mu": 1.0, "rmin": 0.5},
			InitState: InitStateConfig{Cartesian: []float64{1, 0, 0, 0, 0.5, 0}},
		},
		"sampled": {
			Dynamics: "two_body", Mode: "custom", Solver: "dopri5", Controller: "pid",
			T1: twoPi, Ts: []float64{0, twoPi / 4, twoPi / 2, 3 * twoPi / 4, twoPi}, Rtol: 1e-8, Atol: 1e-8,
			Args:      map[string]any{"mu": 1.0},
			InitState: InitStateConfig{Cartesian: []float64{1, 0, 0, 0, 1, 0}},
		},
	},
	"j2": {
		"leo": {
			Dynamics: "j2", Mode: "final", Solver: "dopri5", Controller: "pid",
			T1: 10 * gravity.Period(1.1, 1), MaxSteps: 4096, Rtol: 1e-8, Atol: 1e-8,
			Args:      map[string]any{"mu": 1.0, "J2": earthJ2, "R_eq": 1.0},
			InitState: InitStateConfig{Elements: &gravity.Elements{A: 1.1, E: 0.001, I: 0.9}},
		},
		"molniya": {
			Dynamics: "j2", Mode: "adaptive", Solver: "dopri5", Controller: "pid", Event: "radius_below",
			T1: gravity.Period(4.17, 1), MaxSteps: 4096, Rtol: 1e-8, Atol: 1e-8,
			Args:      map[string]any{"mu": 1.0, "J2": earthJ2, "R_eq": 1.0},
			InitState: InitStateConfig{Elements: &gravity.Elements{A: 4.17, E: 0.74, I: 1.1071, ArgP: 3 * math.Pi / 2}},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(dynamics, preset string) *Config {
	dynPresets, ok := Presets[dynamics]
	if !ok {
		return nil
	}
	cfg, ok := dynPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(dynamics string) []string {
	dynPresets, ok := Presets[dynamics]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(dynPresets))
	for name := range dynPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindPreset looks a preset up by name across all dynamics.
func FindPreset(preset string) *Config {
	for _, dyn := range ListDynamics() {
		if cfg := GetPreset(dyn, preset); cfg != nil {
			return cfg
		}
	}
	return nil
}

// ListDynamics returns the dynamics that have presets.
func ListDynamics() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
