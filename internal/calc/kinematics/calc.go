// Package kinematics covers velocity, Mach, Pitot and the discrete
// swirl/tumble numbers measured on the bench.
package kinematics

import (
	"math"

	"github.com/pkg/errors"

	"FlowLab/internal/calc/airstate"
	"FlowLab/internal/calc/calcerr"
)

// VelocityFromFlow is the mean section velocity V = Q/A.
func VelocityFromFlow(q, area float64) (float64, error) {
	if area <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "area must be positive")
	}
	return q / area, nil
}

// Mach is V / a(T).
func Mach(v, tempK float64) (float64, error) {
	a := airstate.SpeedOfSound(tempK)
	if a <= 0 || math.IsNaN(a) {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "temperature yields no speed of sound")
	}
	return v / a, nil
}

// Pitot converts a probe depression to local velocity: C * sqrt(2*dp/rho).
func Pitot(dpPitot, rho, cProbe float64) (float64, error) {
	if dpPitot < 0 || rho <= 0 || cProbe <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "pitot needs dp>=0, rho>0, c>0")
	}
	return cProbe * math.Sqrt(2.0*dpPitot/rho), nil
}

// Sample is one probe reading for the discrete swirl/tumble integrals:
// transverse velocity (tangential for swirl, cross-axis for tumble), axial
// velocity, moment arm (radius for swirl, x offset for tumble) and the area
// weight of the sample.
type Sample struct {
	UTrans float64 `json:"u_trans"`
	UAxial float64 `json:"u_axial"`
	Arm    float64 `json:"arm"`
	DA     float64 `json:"da"`
}

func momentRatio(samples []Sample, radius float64) (float64, error) {
	num := 0.0
	den := 0.0
	for _, s := range samples {
		num += s.UTrans * s.UAxial * s.Arm * s.DA
		den += s.UAxial * s.UAxial * s.DA
	}
	if radius <= 0 || den <= 0 {
		// Zero mean axial flow makes the ratio physically undefined.
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "swirl needs R>0 and positive axial momentum")
	}
	return num / (radius * den), nil
}

// SwirlNumber is S = sum(u_t*u_z*r*dA) / (R * sum(u_z^2*dA)).
func SwirlNumber(samples []Sample, radius float64) (float64, error) {
	return momentRatio(samples, radius)
}

// TumbleNumber is the same integral taken about the transverse axis.
func TumbleNumber(samples []Sample, radius float64) (float64, error) {
	return momentRatio(samples, radius)
}

// SwirlRatioFromWheelRPM converts a paddle-wheel swirl meter reading into a
// dimensionless ratio: (omega * R) / Vbar with Vbar = Q / A_cyl.
func SwirlRatioFromWheelRPM(wheelRPM, bore, q float64) (float64, error) {
	if bore <= 0 || q <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "swirl ratio needs bore>0, q>0")
	}
	aCyl := math.Pi * bore * bore / 4.0
	vBar := q / aCyl
	omega := 2.0 * math.Pi * wheelRPM / 60.0
	return omega * (bore * 0.5) / vBar, nil
}

// EnergyDensity is the kinetic energy density of the jet: 0.5*rho*v^2.
func EnergyDensity(rho, v float64) (float64, error) {
	if rho <= 0 || v < 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "energy density needs rho>0, v>=0")
	}
	return 0.5 * rho * v * v, nil
}

// PortEnergy scales the energy density by the port section area.
func PortEnergy(area, rho, v float64) (float64, error) {
	if area <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "port energy needs area>0")
	}
	e, err := EnergyDensity(rho, v)
	if err != nil {
		return 0, err
	}
	return e * area, nil
}
