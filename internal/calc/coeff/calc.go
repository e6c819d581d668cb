// Package coeff computes discharge coefficients from flow, reference area,
// depression and density.
package coeff

import (
	"math"

	"github.com/pkg/errors"

	"FlowLab/internal/calc/calcerr"
	"FlowLab/internal/calc/flowcorr"
)

// Cd is the discharge coefficient: Q / (A * sqrt(2*dp/rho)).
// SI units throughout: m^3/s, m^2, Pa, kg/m^3.
func Cd(q, aRef, dp, rho float64) (float64, error) {
	if q < 0 || aRef <= 0 || dp <= 0 || rho <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "cd needs q>=0, a>0, dp>0, rho>0")
	}
	return q / (aRef * math.Sqrt(2.0*dp/rho)), nil
}

// SAECd first corrects the measured flow to the reference depression and
// density, then evaluates Cd at those reference conditions.
func SAECd(qMeas, dpMeas, rhoMeas, aRef, dpRef, rhoRef float64) (float64, error) {
	qRef, err := flowcorr.Referenced(qMeas, dpMeas, rhoMeas, dpRef, rhoRef)
	if err != nil {
		return 0, err
	}
	return Cd(qRef, aRef, dpRef, rhoRef)
}

// EffectiveCd substitutes a blended effective area for the reference area.
// It is a normalization metric rather than a physical coefficient and is
// allowed to exceed 1.0.
func EffectiveCd(q, aEff, dp, rho float64) (float64, error) {
	return Cd(q, aEff, dp, rho)
}
