// Package airstate derives air density and speed of sound from bench
// conditions. Gamma and R are physical constants, never calibration knobs.
package airstate

import "math"

const (
	Gamma = 1.4     // ratio of specific heats for air
	RAir  = 287.058 // J/(kg*K)
)

// State describes the air at the bench. Immutable; density and speed of
// sound are derived on demand.
type State struct {
	PressurePa float64 `json:"pressure_pa"` // total static pressure
	TempK      float64 `json:"temp_k"`
	RH         float64 `json:"rh"` // relative humidity 0..1; 0 ignores vapor
}

// Standard returns sea-level air at 20 C, dry.
func Standard() State {
	return State{PressurePa: 101325.0, TempK: 293.15}
}

// saturationPa is the Tetens approximation for water vapor saturation
// pressure, adequate for flow-bench correction in the 0..50 C range.
func saturationPa(tempK float64) float64 {
	tc := tempK - 273.15
	return 610.78 * math.Exp((17.27*tc)/(tc+237.3))
}

// Density returns air density in kg/m^3 accounting for water vapor.
// The dry partial pressure is floored at 1 Pa so the function is total
// over its domain.
func (s State) Density() float64 {
	pv := s.RH * saturationPa(s.TempK)
	pdry := math.Max(1.0, s.PressurePa-pv)
	return pdry / (RAir * s.TempK)
}

// SpeedOfSound returns a(T) in m/s.
func SpeedOfSound(tempK float64) float64 {
	return math.Sqrt(Gamma * RAir * tempK)
}
