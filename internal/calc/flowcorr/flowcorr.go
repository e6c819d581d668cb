// Package flowcorr rescales a measured flow to a reference depression and
// air state.
package flowcorr

import (
	"math"

	"github.com/pkg/errors"

	"FlowLab/internal/calc/airstate"
	"FlowLab/internal/calc/calcerr"
	"FlowLab/internal/calc/units"
)

// ReferenceDepressionInH2O is the industry-standard bench depression.
const ReferenceDepressionInH2O = 28.0

// Referenced converts a measured flow to reference conditions:
// Q* = Q * sqrt(dpRef/dpMeas) * sqrt(rhoMeas/rhoRef).
// Flow units pass through unchanged; pressures in Pa, densities in kg/m^3.
func Referenced(qMeas, dpMeas, rhoMeas, dpRef, rhoRef float64) (float64, error) {
	if dpMeas <= 0 || dpRef <= 0 || rhoMeas <= 0 || rhoRef <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "depression and density must be positive")
	}
	return qMeas * math.Sqrt(dpRef/dpMeas) * math.Sqrt(rhoMeas/rhoRef), nil
}

// To28InH2O corrects a flow measured at dpMeasInH2O to the 28 inch water
// column reference. When ref is nil the measured air state is used as the
// reference, so only the depression is corrected.
func To28InH2O(qMeas, dpMeasInH2O float64, meas airstate.State, ref *airstate.State) (float64, error) {
	rhoMeas := meas.Density()
	rhoRef := rhoMeas
	if ref != nil {
		rhoRef = ref.Density()
	}
	return Referenced(qMeas,
		units.InH2OToPa(dpMeasInH2O), rhoMeas,
		units.InH2OToPa(ReferenceDepressionInH2O), rhoRef)
}
