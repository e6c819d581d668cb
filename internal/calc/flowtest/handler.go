package flowtest

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"FlowLab/internal/calc/calibration"
	"FlowLab/internal/calc/series"
	"FlowLab/internal/calc/units"
)

type Handler struct {
	Cal *calibration.Registry
}

// RowUS is a measurement row in customary units, converted at the edge so
// both unit systems share the SI computation path.
type RowUS struct {
	LiftIn          float64            `json:"lift_in"`
	FlowCFM         float64            `json:"q_cfm"`
	FlowExCFM       float64            `json:"q_ex_cfm"`
	DepressionInH2O float64            `json:"dp_inh2o"`
	MeanAreaIn2     *float64           `json:"a_mean_in2,omitempty"`
	EffAreaIn2      *float64           `json:"a_eff_in2,omitempty"`
	SwirlRPM        *float64           `json:"swirl_rpm,omitempty"`
	Extra           map[string]float64 `json:"extra,omitempty"`
}

// Point converts the row to the SI-normalized shape.
func (r RowUS) Point() series.FlowPoint {
	p := series.FlowPoint{
		LiftMM:          units.InToMM(r.LiftIn),
		FlowInM3Min:     units.CFMToM3Min(r.FlowCFM),
		FlowExM3Min:     units.CFMToM3Min(r.FlowExCFM),
		DepressionInH2O: r.DepressionInH2O,
		SwirlRPM:        r.SwirlRPM,
		Extra:           r.Extra,
	}
	if r.MeanAreaIn2 != nil {
		v := units.In2ToMM2(*r.MeanAreaIn2)
		p.MeanAreaMM2 = &v
	}
	if r.EffAreaIn2 != nil {
		v := units.In2ToMM2(*r.EffAreaIn2)
		p.EffAreaMM2 = &v
	}
	return p
}

// SideGeometryUS mirrors SideGeometry with inch fields.
type SideGeometryUS struct {
	ValveDiamIn  float64  `json:"valve_diam_in"`
	ThroatDiamIn *float64 `json:"throat_diam_in,omitempty"`
	StemDiamIn   *float64 `json:"stem_diam_in,omitempty"`
	SeatAngleDeg *float64 `json:"seat_angle_deg,omitempty"`
	SeatWidthIn  *float64 `json:"seat_width_in,omitempty"`
	Window       struct {
		WidthIn  float64 `json:"width_in"`
		HeightIn float64 `json:"height_in"`
		RTopIn   float64 `json:"r_top_in"`
		RBotIn   float64 `json:"r_bot_in"`
	} `json:"window"`
}

func (g SideGeometryUS) toSI() SideGeometry {
	out := SideGeometry{
		ValveDiamMM:  units.InToMM(g.ValveDiamIn),
		ThroatDiamMM: scaleInToMM(g.ThroatDiamIn),
		StemDiamMM:   scaleInToMM(g.StemDiamIn),
		SeatAngleDeg: g.SeatAngleDeg,
		SeatWidthMM:  scaleInToMM(g.SeatWidthIn),
	}
	out.Window = Window{
		WidthMM:  units.InToMM(g.Window.WidthIn),
		HeightMM: units.InToMM(g.Window.HeightIn),
		RTopMM:   units.InToMM(g.Window.RTopIn),
		RBotMM:   units.InToMM(g.Window.RBotIn),
	}
	return out
}

func scaleInToMM(v *float64) *float64 {
	if v == nil {
		return nil
	}
	mm := units.InToMM(*v)
	return &mm
}

type requestSI struct {
	Header Header             `json:"header"`
	Rows   []series.FlowPoint `json:"rows"`
}

type requestUS struct {
	Header struct {
		Intake     SideGeometryUS     `json:"intake"`
		Exhaust    SideGeometryUS     `json:"exhaust"`
		CR         float64            `json:"cr"`
		MaxLiftIn  float64            `json:"max_lift_in"`
		ExPipeUsed bool               `json:"ex_pipe_used"`
		Extra      map[string]float64 `json:"extra,omitempty"`
	} `json:"header"`
	Rows []RowUS `json:"rows"`
}

func (h *Handler) CalcSI(w http.ResponseWriter, r *http.Request) {
	var req requestSI
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(h.Cal, Input{Units: series.UnitsSI, Header: req.Header, Rows: req.Rows})
	if err != nil {
		log.WithError(err).Warn("flowtest SI calculation rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) CalcUS(w http.ResponseWriter, r *http.Request) {
	var req requestUS
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	header := Header{
		Intake:     req.Header.Intake.toSI(),
		Exhaust:    req.Header.Exhaust.toSI(),
		CR:         req.Header.CR,
		MaxLiftMM:  units.InToMM(req.Header.MaxLiftIn),
		ExPipeUsed: req.Header.ExPipeUsed,
		Extra:      req.Header.Extra,
	}
	rows := make([]series.FlowPoint, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, row.Point())
	}
	res, err := Calculate(h.Cal, Input{Units: series.UnitsUS, Header: header, Rows: rows})
	if err != nil {
		log.WithError(err).Warn("flowtest US calculation rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
