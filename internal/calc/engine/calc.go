// Package engine couples bench flow to engine demand: volumetric flow of a
// four-stroke engine, the RPM solvers inverting it, the calibrated peak-RPM
// balance, HP/kW limit estimators and the exhaust/intake ratio model.
package engine

import (
	"math"

	"github.com/pkg/errors"

	"FlowLab/internal/calc/calcerr"
	"FlowLab/internal/calc/calibration"
	"FlowLab/internal/calc/units"
)

// in^3 per ft^3 times two crank revolutions per intake event.
const ft3PerIntakeCycle = 2.0 * 1728.0

// VolumetricFlow is the engine's intake demand in m^3/s for a four-stroke:
// one intake event per two crank revolutions.
// Q = (Vd * rpm / 2) / 60 * VE, displacement in litres.
func VolumetricFlow(displacementL, rpm, ve float64) (float64, error) {
	if displacementL <= 0 || rpm < 0 || ve < 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "needs displacement>0, rpm>=0, ve>=0")
	}
	vd := displacementL * 1e-3
	return (vd * rpm / 2.0) / 60.0 * ve, nil
}

// RPMFromFlow inverts VolumetricFlow for the RPM supported by a head flow
// capacity qHead (m^3/s).
func RPMFromFlow(qHead, displacementL, ve float64) (float64, error) {
	if qHead <= 0 || displacementL <= 0 || ve <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "needs q>0, displacement>0, ve>0")
	}
	vd := displacementL * 1e-3
	return qHead * 60.0 * 2.0 / (vd * ve), nil
}

// RPMFromCSA is the RPM at which the mean port section aAvg (m^2) reaches
// the target mean velocity (m/s): Q = A*v, then invert the demand relation.
func RPMFromCSA(aAvg, displacementL, ve, vTarget float64) (float64, error) {
	if aAvg <= 0 || vTarget <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "needs area>0, v_target>0")
	}
	return RPMFromFlow(aAvg*vTarget, displacementL, ve)
}

// PeakRPMFromPortArea solves the calibrated "port supply meets engine demand
// at peak power" balance in customary units. Raw per-port capacity
// (A/144 * Mach*a0 * 60 CFM) is scaled by the effective port count and the
// effective-distribution calibration, then RPM = Q*3456/(CID*VE).
func PeakRPMFromPortArea(cal *calibration.Registry, aMeanIn2, mach, nPortsEff, displacementCID, ve float64) (float64, error) {
	if aMeanIn2 <= 0 || mach <= 0 || nPortsEff <= 0 || displacementCID <= 0 || ve <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "needs positive area, mach, ports, displacement, ve")
	}
	vFtS := mach * cal.Value(calibration.KeyA0FtS)
	qCFM := (aMeanIn2 / 144.0) * vFtS * 60.0 * nPortsEff * cal.Value(calibration.KeyPortDist)
	return qCFM * ft3PerIntakeCycle / (displacementCID * ve), nil
}

// PortAreaFromPeakRPM inverts PeakRPMFromPortArea for the mean port area
// (in^2) that balances the given peak RPM.
func PortAreaFromPeakRPM(cal *calibration.Registry, peakRPM, mach, nPortsEff, displacementCID, ve float64) (float64, error) {
	if peakRPM <= 0 || mach <= 0 || nPortsEff <= 0 || displacementCID <= 0 || ve <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "needs positive rpm, mach, ports, displacement, ve")
	}
	vFtS := mach * cal.Value(calibration.KeyA0FtS)
	qCFM := peakRPM * displacementCID * ve / ft3PerIntakeCycle
	return qCFM * 144.0 / (vFtS * 60.0 * nPortsEff * cal.Value(calibration.KeyPortDist)), nil
}

// PeakRPMFromPortAreaSI is the metric entry point; it converts to the
// customary chain so both unit systems share one calibrated derivation.
func PeakRPMFromPortAreaSI(cal *calibration.Registry, aMeanMM2, mach, nPortsEff, displacementL, ve float64) (float64, error) {
	if aMeanMM2 <= 0 || displacementL <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "needs positive area and displacement")
	}
	return PeakRPMFromPortArea(cal, units.MM2ToIn2(aMeanMM2), mach, nPortsEff, units.LToIn3(displacementL), ve)
}

// ShiftRPM is the recommended shift point above peak power.
func ShiftRPM(cal *calibration.Registry, peakRPM float64) float64 {
	return peakRPM * (1.0 + cal.Value(calibration.KeyShiftAlph))
}

// AirflowHPLimit is the linear airflow limit estimator HP = K * CFM@28.
func AirflowHPLimit(cal *calibration.Registry, cfm28 float64) (float64, error) {
	if cfm28 < 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "flow must be non-negative")
	}
	return cal.Value(calibration.KeyHPPerCFM) * cfm28, nil
}

// PortAreaHPLimit estimates the HP supported by the mean port section. The
// report profile runs the ft^3/min chain; the manual profile the handbook
// cm^2 * m/s chain. Both are pure linear calibrations on the same inputs.
func PortAreaHPLimit(cal *calibration.Registry, aMeanIn2, mach, nPortsEff float64) (float64, error) {
	if aMeanIn2 <= 0 || mach <= 0 || nPortsEff <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "needs positive area, mach, ports")
	}
	k := cal.Value(calibration.KeyHPCSA)
	if cal.Profile() == calibration.ProfileManual {
		aCm2 := units.In2ToMM2(aMeanIn2) / 100.0
		vMS := mach * cal.Value(calibration.KeyA0MS)
		return k * aCm2 * vMS * nPortsEff, nil
	}
	vFtS := mach * cal.Value(calibration.KeyA0FtS)
	return k * (aMeanIn2 / 144.0) * vFtS * 60.0 * nPortsEff, nil
}

// PortAreaKWLimit is the SI port-area power limit: K * Q with Q in m^3/min
// through the mean section at the main-screen Mach velocity.
func PortAreaKWLimit(cal *calibration.Registry, aMeanMM2, mach, nPortsEff float64) (float64, error) {
	if aMeanMM2 <= 0 || mach <= 0 || nPortsEff <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "needs positive area, mach, ports")
	}
	vMS := mach * cal.Value(calibration.KeyA0MS)
	qM3Min := aMeanMM2 * 1e-6 * vMS * 60.0 * nPortsEff
	return cal.Value(calibration.KeyKWPerCSA) * qM3Min, nil
}

// AirflowKWLimit is the SI airflow power limit: K * Q[m^3/min]@28.
func AirflowKWLimit(cal *calibration.Registry, qM3Min float64) (float64, error) {
	if qM3Min < 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "flow must be non-negative")
	}
	return cal.Value(calibration.KeyKWPerFlow) * qM3Min, nil
}

// CRCorrection is the best-torque compression ratio factor:
// f(cr) = K * (1 + slope*(cr - ref)).
func CRCorrection(cal *calibration.Registry, cr float64) float64 {
	return cal.Value(calibration.KeyCRFactor) *
		(1.0 + cal.Value(calibration.KeyCRSlope)*(cr-cal.Value(calibration.KeyCRRef)))
}

// MeasuredExIntRatio is the raw exhaust-to-intake flow ratio.
func MeasuredExIntRatio(qEx, qIn float64) (float64, error) {
	if qIn <= 0 || qEx < 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "needs q_in>0, q_ex>=0")
	}
	return qEx / qIn, nil
}

// AdjustedExIntRatio applies the calibrated screen uplift to a measured
// ratio, capped at 1.0.
func AdjustedExIntRatio(cal *calibration.Registry, raw float64) float64 {
	return math.Min(raw*cal.Value(calibration.KeyExIntUplift), 1.0)
}

// RequiredExIntRatio is the calibrated linear regression in compression
// ratio and max lift (inches) for the target exhaust/intake ratio.
func RequiredExIntRatio(cal *calibration.Registry, cr, maxLiftIn float64) (float64, error) {
	if cr <= 0 || maxLiftIn <= 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "needs cr>0, max lift>0")
	}
	r := cal.Value(calibration.KeyExIntBase) +
		cal.Value(calibration.KeyExIntCR)*(cr-cal.Value(calibration.KeyCRRef)) +
		cal.Value(calibration.KeyExIntLift)*(maxLiftIn-0.5)
	return math.Min(math.Max(r, 0.5), 1.0), nil
}

// MeanPistonSpeedMS is the canonical 2*stroke*rpm/60 in m/s, stroke in mm.
func MeanPistonSpeedMS(strokeMM, rpm float64) (float64, error) {
	if strokeMM <= 0 || rpm < 0 {
		return 0, errors.Wrap(calcerr.ErrInvalidArgument, "needs stroke>0, rpm>=0")
	}
	return 2.0 * (strokeMM * 1e-3) * rpm / 60.0, nil
}
