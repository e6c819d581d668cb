// Package flowtest computes the flow-test screen: header aggregate metrics,
// the per-row table and the plot series for both sides of the head. Header
// metrics fail hard on missing required geometry; per-row series degrade to
// null entries instead.
package flowtest

import (
	"github.com/pkg/errors"

	"FlowLab/internal/calc/airstate"
	"FlowLab/internal/calc/calcerr"
	"FlowLab/internal/calc/calibration"
	"FlowLab/internal/calc/engine"
	"FlowLab/internal/calc/flowcorr"
	"FlowLab/internal/calc/geometry"
	"FlowLab/internal/calc/series"
	"FlowLab/internal/calc/units"
)

// Window describes a port window, used only as an area cap.
type Window struct {
	WidthMM  float64 `json:"width_mm"`
	HeightMM float64 `json:"height_mm"`
	RTopMM   float64 `json:"r_top_mm"`
	RBotMM   float64 `json:"r_bot_mm"`
}

// SideGeometry is the per-side valve and port description. Throat, stem and
// seat fields are optional; without them only the derived metrics that need
// them are skipped.
type SideGeometry struct {
	ValveDiamMM  float64  `json:"valve_diam_mm"`
	ThroatDiamMM *float64 `json:"throat_diam_mm,omitempty"`
	StemDiamMM   *float64 `json:"stem_diam_mm,omitempty"`
	SeatAngleDeg *float64 `json:"seat_angle_deg,omitempty"`
	SeatWidthMM  *float64 `json:"seat_width_mm,omitempty"`
	Window       Window   `json:"window"`
}

type Header struct {
	Intake     SideGeometry       `json:"intake"`
	Exhaust    SideGeometry       `json:"exhaust"`
	CR         float64            `json:"cr"`
	MaxLiftMM  float64            `json:"max_lift_mm"`
	ExPipeUsed bool               `json:"ex_pipe_used"`
	Extra      map[string]float64 `json:"extra,omitempty"`
}

type Input struct {
	Units  series.Units       `json:"units"`
	Header Header             `json:"header"`
	Rows   []series.FlowPoint `json:"rows"`
}

// HeaderMetrics are the aggregate values of the screen header. Areas are
// mm^2 for SI output and in^2 for US; see Result.Labels.
type HeaderMetrics struct {
	IntakeWindowArea  float64  `json:"intake_window_area"`
	ExhaustWindowArea float64  `json:"exhaust_window_area"`
	IntakeThroatArea  *float64 `json:"intake_throat_area,omitempty"`
	ExhaustThroatArea *float64 `json:"exhaust_throat_area,omitempty"`
	IntakeEffArea     *float64 `json:"intake_eff_area,omitempty"`
	ExhaustEffArea    *float64 `json:"exhaust_eff_area,omitempty"`
	MaxLDIntake       float64  `json:"max_ld_intake"`
	MaxLDExhaust      float64  `json:"max_ld_exhaust"`
	EIMeasured        *float64 `json:"ei_measured,omitempty"`
	EIAdjusted        *float64 `json:"ei_adjusted,omitempty"`
	EIRequired        float64  `json:"ei_required"`
}

// Row is one table line with corrected flows.
type Row struct {
	Lift      float64  `json:"lift"`
	LD        *float64 `json:"ld,omitempty"`
	FlowIn    float64  `json:"flow_in"`
	FlowEx    float64  `json:"flow_ex"`
	FlowIn28  *float64 `json:"flow_in_28,omitempty"`
	FlowEx28  *float64 `json:"flow_ex_28,omitempty"`
	EIRow     *float64 `json:"ei,omitempty"`
}

type Result struct {
	Units   series.Units      `json:"units"`
	Header  HeaderMetrics     `json:"header"`
	Rows    []Row             `json:"rows"`
	Intake  series.Series     `json:"intake"`
	Exhaust series.Series     `json:"exhaust"`
	Labels  map[string]string `json:"labels"`
	Notes   string            `json:"notes"`
}

func ptr(v float64) *float64 { return &v }

// sideEffArea evaluates the blended effective area at max lift when the full
// seat geometry is present, capped by the port window.
func sideEffArea(g SideGeometry, maxLiftMM, windowMM2 float64) *float64 {
	if g.ThroatDiamMM == nil || g.StemDiamMM == nil || g.SeatAngleDeg == nil || g.SeatWidthMM == nil {
		return nil
	}
	a, err := geometry.EffectiveWithSeat(maxLiftMM, g.ValveDiamMM,
		*g.ThroatDiamMM, *g.StemDiamMM, *g.SeatAngleDeg, *g.SeatWidthMM,
		geometry.BlendLogistic)
	if err != nil {
		return nil
	}
	if capped, err := geometry.CapByWindow(a, windowMM2); err == nil {
		a = capped
	}
	return ptr(a)
}

func sideThroat(g SideGeometry) *float64 {
	if g.ThroatDiamMM == nil {
		return nil
	}
	stem := 0.0
	if g.StemDiamMM != nil {
		stem = *g.StemDiamMM
	}
	a, err := geometry.Throat(*g.ThroatDiamMM, stem)
	if err != nil {
		return nil
	}
	return ptr(a)
}

// Calculate runs the whole screen. The input rows are SI-normalized; Units
// selects the output system only.
func Calculate(cal *calibration.Registry, in Input) (Result, error) {
	if cal == nil {
		return Result{}, errors.Wrap(calcerr.ErrInvalidArgument, "nil calibration registry")
	}
	h := in.Header
	if h.Intake.ValveDiamMM <= 0 || h.Exhaust.ValveDiamMM <= 0 {
		return Result{}, errors.Wrap(calcerr.ErrInvalidArgument, "valve diameters are required")
	}
	if h.CR <= 0 || h.MaxLiftMM <= 0 {
		return Result{}, errors.Wrap(calcerr.ErrInvalidArgument, "cr and max lift are required")
	}
	inWin, err := geometry.PortWindow(h.Intake.Window.WidthMM, h.Intake.Window.HeightMM,
		h.Intake.Window.RTopMM, h.Intake.Window.RBotMM)
	if err != nil {
		return Result{}, errors.WithMessage(err, "intake window")
	}
	exWin, err := geometry.PortWindow(h.Exhaust.Window.WidthMM, h.Exhaust.Window.HeightMM,
		h.Exhaust.Window.RTopMM, h.Exhaust.Window.RBotMM)
	if err != nil {
		return Result{}, errors.WithMessage(err, "exhaust window")
	}

	hm := HeaderMetrics{
		IntakeWindowArea:  inWin,
		ExhaustWindowArea: exWin,
		IntakeThroatArea:  sideThroat(h.Intake),
		ExhaustThroatArea: sideThroat(h.Exhaust),
		IntakeEffArea:     sideEffArea(h.Intake, h.MaxLiftMM, inWin),
		ExhaustEffArea:    sideEffArea(h.Exhaust, h.MaxLiftMM, exWin),
		MaxLDIntake:       h.MaxLiftMM / h.Intake.ValveDiamMM,
		MaxLDExhaust:      h.MaxLiftMM / h.Exhaust.ValveDiamMM,
	}

	// Existing E/I from the corrected row flows, then the screen uplift.
	var sumIn, sumEx float64
	rows := make([]Row, 0, len(in.Rows))
	for _, p := range in.Rows {
		r := Row{Lift: p.LiftMM, FlowIn: p.FlowInM3Min, FlowEx: p.FlowExM3Min}
		if h.Intake.ValveDiamMM > 0 {
			r.LD = ptr(p.LiftMM / h.Intake.ValveDiamMM)
		}
		air := stdOrPointAir(p)
		if p.DepressionInH2O > 0 {
			if q, err := flowcorr.To28InH2O(p.FlowInM3Min, p.DepressionInH2O, air, nil); err == nil {
				r.FlowIn28 = ptr(q)
				sumIn += q
			}
			if q, err := flowcorr.To28InH2O(p.FlowExM3Min, p.DepressionInH2O, air, nil); err == nil {
				r.FlowEx28 = ptr(q)
				sumEx += q
			}
		}
		if p.FlowInM3Min > 0 {
			r.EIRow = ptr(p.FlowExM3Min / p.FlowInM3Min)
		}
		rows = append(rows, r)
	}
	if sumIn > 0 {
		raw := sumEx / sumIn
		hm.EIMeasured = ptr(raw)
		hm.EIAdjusted = ptr(engine.AdjustedExIntRatio(cal, raw))
	}
	req, err := engine.RequiredExIntRatio(cal, h.CR, units.MMToIn(h.MaxLiftMM))
	if err != nil {
		return Result{}, err
	}
	hm.EIRequired = req

	intake, err := series.Build(cal, in.Units, h.Intake.ValveDiamMM, in.Rows, series.SideIntake)
	if err != nil {
		return Result{}, err
	}
	exhaust, err := series.Build(cal, in.Units, h.Exhaust.ValveDiamMM, in.Rows, series.SideExhaust)
	if err != nil {
		return Result{}, err
	}

	if in.Units == series.UnitsUS {
		hm = hm.toUS()
		rows = rowsToUS(rows)
	}

	return Result{
		Units:   in.Units,
		Header:  hm,
		Rows:    rows,
		Intake:  intake,
		Exhaust: exhaust,
		Labels:  series.Labels(in.Units),
		Notes:   "Flows corrected to 28 in H2O at the measured air state.",
	}, nil
}

func stdOrPointAir(p series.FlowPoint) airstate.State {
	if p.Air != nil {
		return *p.Air
	}
	return airstate.Standard()
}

func (m HeaderMetrics) toUS() HeaderMetrics {
	out := m
	out.IntakeWindowArea = units.MM2ToIn2(m.IntakeWindowArea)
	out.ExhaustWindowArea = units.MM2ToIn2(m.ExhaustWindowArea)
	out.IntakeThroatArea = scalePtr(m.IntakeThroatArea, 1.0/units.MM2PerIn2)
	out.ExhaustThroatArea = scalePtr(m.ExhaustThroatArea, 1.0/units.MM2PerIn2)
	out.IntakeEffArea = scalePtr(m.IntakeEffArea, 1.0/units.MM2PerIn2)
	out.ExhaustEffArea = scalePtr(m.ExhaustEffArea, 1.0/units.MM2PerIn2)
	return out
}

func rowsToUS(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r
		out[i].Lift = units.MMToIn(r.Lift)
		out[i].FlowIn = units.M3MinToCFM(r.FlowIn)
		out[i].FlowEx = units.M3MinToCFM(r.FlowEx)
		out[i].FlowIn28 = scalePtr(r.FlowIn28, 1.0/(units.M3SPerCFM*60.0))
		out[i].FlowEx28 = scalePtr(r.FlowEx28, 1.0/(units.M3SPerCFM*60.0))
	}
	return out
}

func scalePtr(v *float64, k float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(*v * k)
}
