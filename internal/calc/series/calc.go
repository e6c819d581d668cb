// Package series turns flow-bench measurement rows into the per-lift series
// the screens plot, and compares two tests element-wise. Missing optional
// inputs degrade only the affected series to null entries; nothing here
// fails a whole computation over one bad point.
package series

import (
	"math"

	"github.com/pkg/errors"

	"FlowLab/internal/calc/airstate"
	"FlowLab/internal/calc/calcerr"
	"FlowLab/internal/calc/calibration"
	"FlowLab/internal/calc/coeff"
	"FlowLab/internal/calc/flowcorr"
	"FlowLab/internal/calc/units"
)

type Units string

const (
	UnitsUS Units = "US"
	UnitsSI Units = "SI"
)

type Mode string

const (
	ModeLift Mode = "lift"
	ModeLD   Mode = "ld"
)

type Side string

const (
	SideIntake  Side = "intake"
	SideExhaust Side = "exhaust"
)

// FlowPoint is one measured bench row, normalized to SI. Optional fields are
// pointers; a nil field only blanks the series derived from it. Extra keeps
// upstream fields the engine never reads.
type FlowPoint struct {
	LiftMM          float64            `json:"lift_mm"`
	FlowInM3Min     float64            `json:"q_in_m3min"`
	FlowExM3Min     float64            `json:"q_ex_m3min"`
	DepressionInH2O float64            `json:"dp_inh2o"`
	MeanAreaMM2     *float64           `json:"a_mean_mm2,omitempty"`
	EffAreaMM2      *float64           `json:"a_eff_mm2,omitempty"`
	SwirlRPM        *float64           `json:"swirl_rpm,omitempty"`
	Air             *airstate.State    `json:"air,omitempty"`
	Extra           map[string]float64 `json:"extra,omitempty"`
}

// Series holds the per-lift outputs for one side of the head. Slices are
// index-aligned with the input rows; nil entries mean "unavailable".
type Series struct {
	Lift              []float64  `json:"x_lift"`
	LD                []*float64 `json:"x_ld"`
	Flow              []float64  `json:"flow"`
	SAECd             []*float64 `json:"sae_cd"`
	EffectiveCd       []*float64 `json:"effective_cd"`
	MeanVelocity      []*float64 `json:"v_mean"`
	EffectiveVelocity []*float64 `json:"v_eff"`
	Energy            []*float64 `json:"energy"`
	EnergyDensity     []*float64 `json:"energy_density"`
	FlowPerArea       []*float64 `json:"flow_per_area"`
	Swirl             []*float64 `json:"swirl"`
}

// LDAxisTick ceils an L/D value to the next 0.01, matching the legacy graph
// axis.
func LDAxisTick(v float64) float64 {
	return math.Ceil(v*100.0) / 100.0
}

func ptr(v float64) *float64 { return &v }

// Build computes all series for one side. valveDiamMM may be zero, which
// blanks the L/D, SAE Cd and flow-per-area series only. Output values are in
// the requested unit system.
func Build(cal *calibration.Registry, u Units, valveDiamMM float64, points []FlowPoint, side Side) (Series, error) {
	if cal == nil {
		return Series{}, errors.Wrap(calcerr.ErrInvalidArgument, "nil calibration registry")
	}
	if side != SideIntake && side != SideExhaust {
		return Series{}, errors.Wrapf(calcerr.ErrInvalidArgument, "unknown side %q", side)
	}
	rhoStd := cal.Value(calibration.KeyRhoKgM3)
	dpRef := units.InH2OToPa(flowcorr.ReferenceDepressionInH2O)

	var s Series
	for _, p := range points {
		q := p.FlowInM3Min
		if side == SideExhaust {
			q = p.FlowExM3Min
		}
		qM3S := q / 60.0

		s.Lift = append(s.Lift, p.LiftMM)
		s.Flow = append(s.Flow, q)

		rho := rhoStd
		if p.Air != nil {
			rho = p.Air.Density()
		}

		// L/D axis.
		if valveDiamMM > 0 {
			s.LD = append(s.LD, ptr(LDAxisTick(p.LiftMM/valveDiamMM)))
		} else {
			s.LD = append(s.LD, nil)
		}

		// SAE Cd against the curtain-area reference at 28 inches.
		var saeCd *float64
		if valveDiamMM > 0 && p.LiftMM > 0 && p.DepressionInH2O > 0 {
			aRef := math.Pi * (valveDiamMM * 1e-3) * (p.LiftMM * 1e-3)
			if cd, err := coeff.SAECd(qM3S, units.InH2OToPa(p.DepressionInH2O), rho, aRef, dpRef, rhoStd); err == nil {
				saeCd = ptr(cd)
			}
		}
		s.SAECd = append(s.SAECd, saeCd)

		// Effective Cd against the supplied blended area.
		var effCd *float64
		if p.EffAreaMM2 != nil && *p.EffAreaMM2 > 0 && p.DepressionInH2O > 0 {
			if qRef, err := flowcorr.Referenced(qM3S, units.InH2OToPa(p.DepressionInH2O), rho, dpRef, rhoStd); err == nil {
				if cd, err := coeff.EffectiveCd(qRef, *p.EffAreaMM2*1e-6, dpRef, rhoStd); err == nil {
					effCd = ptr(cd)
				}
			}
		}
		s.EffectiveCd = append(s.EffectiveCd, effCd)

		// Mean velocity, energy and energy density ride on the mean area.
		var vMean, energy, eDens *float64
		if p.MeanAreaMM2 != nil && *p.MeanAreaMM2 > 0 {
			aM2 := *p.MeanAreaMM2 * 1e-6
			v := qM3S / aM2
			vMean = ptr(v)
			eDens = ptr(0.5 * rhoStd * v * v)
			energy = ptr(0.5 * rhoStd * v * v * aM2)
		}
		s.MeanVelocity = append(s.MeanVelocity, vMean)
		s.EnergyDensity = append(s.EnergyDensity, eDens)
		s.Energy = append(s.Energy, energy)

		var vEff *float64
		if p.EffAreaMM2 != nil && *p.EffAreaMM2 > 0 {
			vEff = ptr(qM3S / (*p.EffAreaMM2 * 1e-6))
		}
		s.EffectiveVelocity = append(s.EffectiveVelocity, vEff)

		// Observed flow per unit of curtain area, m^3/min per mm^2.
		var perArea *float64
		if valveDiamMM > 0 && p.LiftMM > 0 {
			perArea = ptr(q / (math.Pi * valveDiamMM * p.LiftMM))
		}
		s.FlowPerArea = append(s.FlowPerArea, perArea)

		s.Swirl = append(s.Swirl, p.SwirlRPM)
	}

	if u == UnitsUS {
		s = s.toUS()
	}
	return s, nil
}

func (s Series) toUS() Series {
	out := s
	out.Lift = make([]float64, len(s.Lift))
	for i, v := range s.Lift {
		out.Lift[i] = units.MMToIn(v)
	}
	out.Flow = make([]float64, len(s.Flow))
	for i, v := range s.Flow {
		out.Flow[i] = units.M3MinToCFM(v)
	}
	out.MeanVelocity = scale(s.MeanVelocity, 1.0/units.MPerFt)
	out.EffectiveVelocity = scale(s.EffectiveVelocity, 1.0/units.MPerFt)
	out.Energy = scale(s.Energy, units.LbfPerN)
	out.EnergyDensity = scale(s.EnergyDensity, units.PSFPerPa)
	// m^3/min per mm^2 -> CFM per in^2.
	out.FlowPerArea = scale(s.FlowPerArea, units.MM2PerIn2/(units.M3SPerCFM*60.0))
	return out
}

func scale(in []*float64, k float64) []*float64 {
	out := make([]*float64, len(in))
	for i, v := range in {
		if v != nil {
			out[i] = ptr(*v * k)
		}
	}
	return out
}

// Labels maps each series key to its unit label in the given system.
func Labels(u Units) map[string]string {
	if u == UnitsUS {
		return map[string]string{
			"x_lift": "in", "x_ld": "-", "flow": "CFM",
			"sae_cd": "-", "effective_cd": "-",
			"v_mean": "ft/s", "v_eff": "ft/s",
			"energy": "ft·lbf/ft", "energy_density": "lbf/ft²",
			"flow_per_area": "CFM/in²", "swirl": "rpm",
		}
	}
	return map[string]string{
		"x_lift": "mm", "x_ld": "-", "flow": "m³/min",
		"sae_cd": "-", "effective_cd": "-",
		"v_mean": "m/s", "v_eff": "m/s",
		"energy": "J/m", "energy_density": "J/m³",
		"flow_per_area": "m³/min/mm²", "swirl": "rpm",
	}
}

// Comparison holds element-wise percent deltas of test A against test B.
// Entries are nil wherever the denominator is zero or either operand is
// unavailable.
type Comparison struct {
	X                 []float64  `json:"x"`
	Flow              []*float64 `json:"flow_pct"`
	SAECd             []*float64 `json:"sae_cd_pct"`
	EffectiveCd       []*float64 `json:"effective_cd_pct"`
	MeanVelocity      []*float64 `json:"v_mean_pct"`
	EffectiveVelocity []*float64 `json:"v_eff_pct"`
	Energy            []*float64 `json:"energy_pct"`
	EnergyDensity     []*float64 `json:"energy_density_pct"`
	FlowPerArea       []*float64 `json:"flow_per_area_pct"`
	Swirl             []*float64 `json:"swirl_pct"`
}

// PercentDelta is 100*(a-b)/b per element, nil on zero denominator or nil
// operand. Length is the shorter of the two inputs.
func PercentDelta(a, b []*float64) []*float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]*float64, n)
	for i := 0; i < n; i++ {
		if a[i] == nil || b[i] == nil || *b[i] == 0 {
			continue
		}
		out[i] = ptr(100.0 * (*a[i] - *b[i]) / *b[i])
	}
	return out
}

func asPtrs(in []float64) []*float64 {
	out := make([]*float64, len(in))
	for i := range in {
		out[i] = ptr(in[i])
	}
	return out
}

// Compare builds the percent-delta comparison of two series over the chosen
// x axis (lift or L/D, taken from A).
func Compare(a, b Series, mode Mode) Comparison {
	c := Comparison{
		Flow:              PercentDelta(asPtrs(a.Flow), asPtrs(b.Flow)),
		SAECd:             PercentDelta(a.SAECd, b.SAECd),
		EffectiveCd:       PercentDelta(a.EffectiveCd, b.EffectiveCd),
		MeanVelocity:      PercentDelta(a.MeanVelocity, b.MeanVelocity),
		EffectiveVelocity: PercentDelta(a.EffectiveVelocity, b.EffectiveVelocity),
		Energy:            PercentDelta(a.Energy, b.Energy),
		EnergyDensity:     PercentDelta(a.EnergyDensity, b.EnergyDensity),
		FlowPerArea:       PercentDelta(a.FlowPerArea, b.FlowPerArea),
		Swirl:             PercentDelta(a.Swirl, b.Swirl),
	}
	if mode == ModeLD {
		c.X = make([]float64, len(a.LD))
		for i, v := range a.LD {
			if v != nil {
				c.X[i] = *v
			}
		}
	} else {
		c.X = append(c.X, a.Lift...)
	}
	return c
}
