// Package mainscreen computes the main-screen aggregate metrics: peak and
// shift RPM from the calibrated port balance, power limit estimates, mean
// port velocity at the fixed screen speed of sound, piston speed and the
// port volume/section/length solver.
package mainscreen

import (
	"math"

	"github.com/pkg/errors"

	"FlowLab/internal/calc/calcerr"
	"FlowLab/internal/calc/calibration"
	"FlowLab/internal/calc/engine"
	"FlowLab/internal/calc/units"
)

type InputSI struct {
	Mach            float64            `json:"mach"`
	MeanPortAreaMM2 float64            `json:"mean_port_area_mm2"`
	BoreMM          float64            `json:"bore_mm"`
	StrokeMM        float64            `json:"stroke_mm"`
	Cylinders       int                `json:"cylinders"`
	VE              float64            `json:"ve"`
	PortsEff        float64            `json:"ports_eff"`
	CR              float64            `json:"cr"`
	FlowM3Min28     float64            `json:"flow_m3min_28"` // optional, enables the airflow limit
	Extra           map[string]float64 `json:"extra,omitempty"`
}

type ResultSI struct {
	DisplacementL        float64  `json:"displacement_l"`
	MeanPortVelocityMS   float64  `json:"mean_port_velocity_ms"`
	PeakRPM              float64  `json:"peak_rpm"`
	ShiftRPM             float64  `json:"shift_rpm"`
	EngineDemandM3Min    float64  `json:"engine_demand_m3min"`
	MeanPistonSpeedMS    float64  `json:"mean_piston_speed_ms"`
	PortEnergyDensityJM3 float64  `json:"port_energy_density_jm3"`
	PortAreaKWLimit      float64  `json:"port_area_kw_limit"`
	AirflowKWLimit       *float64 `json:"airflow_kw_limit,omitempty"`
	CRCorrection         float64  `json:"cr_correction"`
	Notes                string   `json:"notes"`
}

type InputUS struct {
	Mach            float64            `json:"mach"`
	MeanPortAreaIn2 float64            `json:"mean_port_area_in2"`
	BoreIn          float64            `json:"bore_in"`
	StrokeIn        float64            `json:"stroke_in"`
	Cylinders       int                `json:"cylinders"`
	VE              float64            `json:"ve"`
	PortsEff        float64            `json:"ports_eff"`
	CR              float64            `json:"cr"`
	FlowCFM28       float64            `json:"flow_cfm_28"`
	Extra           map[string]float64 `json:"extra,omitempty"`
}

type ResultUS struct {
	DisplacementCID      float64  `json:"displacement_cid"`
	MeanPortVelocityFtS  float64  `json:"mean_port_velocity_fts"`
	PeakRPM              float64  `json:"peak_rpm"`
	ShiftRPM             float64  `json:"shift_rpm"`
	EngineDemandCFM      float64  `json:"engine_demand_cfm"`
	MeanPistonSpeedFtMin float64  `json:"mean_piston_speed_ftmin"`
	PortEnergyDensityPSF float64  `json:"port_energy_density_psf"`
	PortAreaHPLimit      float64  `json:"port_area_hp_limit"`
	AirflowHPLimit       *float64 `json:"airflow_hp_limit,omitempty"`
	CRCorrection         float64  `json:"cr_correction"`
	Notes                string   `json:"notes"`
}

const notes = "Peak RPM balances calibrated port supply against four-stroke demand."

func defaults(ve, portsEff, cr float64) (float64, float64, float64) {
	if ve <= 0 {
		ve = 1.0
	}
	if portsEff <= 0 {
		portsEff = 2.0
	}
	if cr <= 0 {
		cr = 10.5
	}
	return ve, portsEff, cr
}

func CalculateSI(cal *calibration.Registry, in InputSI) (ResultSI, error) {
	if cal == nil {
		return ResultSI{}, errors.Wrap(calcerr.ErrInvalidArgument, "nil calibration registry")
	}
	if in.Mach <= 0 || in.Mach > 1.0 {
		return ResultSI{}, errors.Wrap(calcerr.ErrInvalidArgument, "mach must be in (0, 1]")
	}
	if in.MeanPortAreaMM2 <= 0 || in.BoreMM <= 0 || in.StrokeMM <= 0 || in.Cylinders < 1 {
		return ResultSI{}, errors.Wrap(calcerr.ErrInvalidArgument, "area, bore, stroke and cylinders are required")
	}
	ve, portsEff, cr := defaults(in.VE, in.PortsEff, in.CR)

	// mm^3 per cylinder -> litres for the whole engine.
	displL := math.Pi / 4.0 * in.BoreMM * in.BoreMM * in.StrokeMM * float64(in.Cylinders) * 1e-6

	peak, err := engine.PeakRPMFromPortAreaSI(cal, in.MeanPortAreaMM2, in.Mach, portsEff, displL, ve)
	if err != nil {
		return ResultSI{}, err
	}
	demand, err := engine.VolumetricFlow(displL, peak, ve)
	if err != nil {
		return ResultSI{}, err
	}
	piston, err := engine.MeanPistonSpeedMS(in.StrokeMM, peak)
	if err != nil {
		return ResultSI{}, err
	}
	kwCSA, err := engine.PortAreaKWLimit(cal, in.MeanPortAreaMM2, in.Mach, portsEff)
	if err != nil {
		return ResultSI{}, err
	}
	vMS := in.Mach * cal.Value(calibration.KeyA0MS)
	res := ResultSI{
		DisplacementL:        displL,
		MeanPortVelocityMS:   vMS,
		PeakRPM:              peak,
		ShiftRPM:             engine.ShiftRPM(cal, peak),
		EngineDemandM3Min:    demand * 60.0,
		MeanPistonSpeedMS:    piston,
		PortEnergyDensityJM3: 0.5 * cal.Value(calibration.KeyRhoKgM3) * vMS * vMS,
		PortAreaKWLimit:      kwCSA,
		CRCorrection:         engine.CRCorrection(cal, cr),
		Notes:                notes,
	}
	if in.FlowM3Min28 > 0 {
		kw, err := engine.AirflowKWLimit(cal, in.FlowM3Min28)
		if err != nil {
			return ResultSI{}, err
		}
		res.AirflowKWLimit = &kw
	}
	return res, nil
}

func CalculateUS(cal *calibration.Registry, in InputUS) (ResultUS, error) {
	if cal == nil {
		return ResultUS{}, errors.Wrap(calcerr.ErrInvalidArgument, "nil calibration registry")
	}
	if in.Mach <= 0 || in.Mach > 1.0 {
		return ResultUS{}, errors.Wrap(calcerr.ErrInvalidArgument, "mach must be in (0, 1]")
	}
	if in.MeanPortAreaIn2 <= 0 || in.BoreIn <= 0 || in.StrokeIn <= 0 || in.Cylinders < 1 {
		return ResultUS{}, errors.Wrap(calcerr.ErrInvalidArgument, "area, bore, stroke and cylinders are required")
	}
	ve, portsEff, cr := defaults(in.VE, in.PortsEff, in.CR)

	cid := math.Pi / 4.0 * in.BoreIn * in.BoreIn * in.StrokeIn * float64(in.Cylinders)

	peak, err := engine.PeakRPMFromPortArea(cal, in.MeanPortAreaIn2, in.Mach, portsEff, cid, ve)
	if err != nil {
		return ResultUS{}, err
	}
	demand, err := engine.VolumetricFlow(units.In3ToL(cid), peak, ve)
	if err != nil {
		return ResultUS{}, err
	}
	piston, err := engine.MeanPistonSpeedMS(units.InToMM(in.StrokeIn), peak)
	if err != nil {
		return ResultUS{}, err
	}
	hpCSA, err := engine.PortAreaHPLimit(cal, in.MeanPortAreaIn2, in.Mach, portsEff)
	if err != nil {
		return ResultUS{}, err
	}
	vFtS := in.Mach * cal.Value(calibration.KeyA0FtS)
	res := ResultUS{
		DisplacementCID:      cid,
		MeanPortVelocityFtS:  vFtS,
		PeakRPM:              peak,
		ShiftRPM:             engine.ShiftRPM(cal, peak),
		EngineDemandCFM:      units.M3SToCFM(demand),
		MeanPistonSpeedFtMin: units.MSToFtS(piston) * 60.0,
		PortEnergyDensityPSF: 0.5 * cal.Value(calibration.KeyRhoSlug) * vFtS * vFtS,
		PortAreaHPLimit:      hpCSA,
		CRCorrection:         engine.CRCorrection(cal, cr),
		Notes:                notes,
	}
	if in.FlowCFM28 > 0 {
		hp, err := engine.AirflowHPLimit(cal, in.FlowCFM28)
		if err != nil {
			return ResultUS{}, err
		}
		res.AirflowHPLimit = &hp
	}
	return res, nil
}

// PortSolveInput carries any two of the three port descriptors; the third
// must be zero and is solved for.
type PortSolveInput struct {
	PortVolumeCC float64 `json:"port_volume_cc"`
	MeanCSACm2   float64 `json:"mean_csa_cm2"`
	CenterlineCM float64 `json:"centerline_cm"`
}

type PortSolveResult struct {
	PortVolumeCC float64 `json:"port_volume_cc"`
	MeanCSACm2   float64 `json:"mean_csa_cm2"`
	CenterlineCM float64 `json:"centerline_cm"`
	Solved       string  `json:"solved"`
}

// PortSolve completes the port_cc = mean_csa * centerline relation from any
// two known values.
func PortSolve(in PortSolveInput) (PortSolveResult, error) {
	known := 0
	for _, v := range []float64{in.PortVolumeCC, in.MeanCSACm2, in.CenterlineCM} {
		if v < 0 {
			return PortSolveResult{}, errors.Wrap(calcerr.ErrInvalidArgument, "port descriptors must be non-negative")
		}
		if v > 0 {
			known++
		}
	}
	if known != 2 {
		return PortSolveResult{}, errors.Wrap(calcerr.ErrInvalidArgument, "exactly two of volume, csa and length must be set")
	}
	out := PortSolveResult{PortVolumeCC: in.PortVolumeCC, MeanCSACm2: in.MeanCSACm2, CenterlineCM: in.CenterlineCM}
	switch {
	case in.PortVolumeCC == 0:
		out.PortVolumeCC = in.MeanCSACm2 * in.CenterlineCM
		out.Solved = "port_volume_cc"
	case in.MeanCSACm2 == 0:
		out.MeanCSACm2 = in.PortVolumeCC / in.CenterlineCM
		out.Solved = "mean_csa_cm2"
	default:
		out.CenterlineCM = in.PortVolumeCC / in.MeanCSACm2
		out.Solved = "centerline_cm"
	}
	return out, nil
}
