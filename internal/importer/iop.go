// Package importer brings external flow-test data into the engine's
// structured records: the line-oriented IOP text report and XLSX row sheets.
// The core packages never parse text themselves; everything is normalized
// to SI records here.
package importer

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"FlowLab/internal/calc/calcerr"
	"FlowLab/internal/calc/flowtest"
	"FlowLab/internal/calc/mainscreen"
	"FlowLab/internal/calc/series"
	"FlowLab/internal/calc/units"
)

// Report is a parsed IOP text report, normalized to SI regardless of the
// source unit system.
type Report struct {
	Units  series.Units       `json:"units"`
	Main   mainscreen.InputSI `json:"main"`
	Header flowtest.Header    `json:"header"`
	Rows   []series.FlowPoint `json:"rows"`
}

// normNumber parses a number tolerating decimal commas, NBSP and embedded
// spaces, as the legacy SI reports use.
func normNumber(s string) (float64, error) {
	clean := strings.NewReplacer("\u00a0", "", " ", "", ",", ".").Replace(strings.TrimSpace(s))
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, errors.Wrapf(calcerr.ErrInvalidArgument, "invalid numeric value %q", s)
	}
	return v, nil
}

func parseKV(lines []string) map[string]string {
	out := make(map[string]string)
	for _, ln := range lines {
		k, v, ok := strings.Cut(ln, ":")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

func kvNum(kv map[string]string, key string, def float64) (float64, error) {
	s, ok := kv[key]
	if !ok {
		return def, nil
	}
	return normNumber(s)
}

func kvRequired(kv map[string]string, key string) (float64, error) {
	s, ok := kv[key]
	if !ok {
		return 0, errors.Wrapf(calcerr.ErrInvalidArgument, "missing required key %q", key)
	}
	return normNumber(s)
}

func splitSections(text string) (main, flow, rows []string, err error) {
	lines := make([]string, 0, 64)
	for _, ln := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimSpace(ln))
	}
	idx := map[string]int{"[MAIN]": -1, "[FLOWTEST]": -1, "[ROWS]": -1}
	for i, ln := range lines {
		if _, ok := idx[ln]; ok && idx[ln] == -1 {
			idx[ln] = i
		}
	}
	var missing []string
	for _, name := range []string{"[MAIN]", "[FLOWTEST]", "[ROWS]"} {
		if idx[name] == -1 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, nil, errors.Wrapf(calcerr.ErrInvalidArgument,
			"invalid report: missing sections %v", missing)
	}
	nonEmpty := func(block []string) []string {
		out := make([]string, 0, len(block))
		for _, ln := range block {
			if ln != "" && !strings.HasPrefix(ln, "#") {
				out = append(out, ln)
			}
		}
		return out
	}
	return nonEmpty(lines[idx["[MAIN]"]+1 : idx["[FLOWTEST]"]]),
		nonEmpty(lines[idx["[FLOWTEST]"]+1 : idx["[ROWS]"]]),
		nonEmpty(lines[idx["[ROWS]"]+1:]),
		nil
}

func parseRowFields(ln string, minCols int) ([]float64, []bool, error) {
	parts := strings.Split(ln, ";")
	if len(parts) < minCols {
		return nil, nil, errors.Wrapf(calcerr.ErrInvalidArgument,
			"malformed row (need at least %d columns): %q", minCols, ln)
	}
	vals := make([]float64, len(parts))
	set := make([]bool, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := normNumber(p)
		if err != nil {
			return nil, nil, err
		}
		vals[i], set[i] = v, true
	}
	return vals, set, nil
}

// ParseSI parses an SI-unit IOP report: key/value [MAIN] and [FLOWTEST]
// sections and ;-delimited [ROWS] with lift;Qin;Qex;dp and optional mean
// area, effective area and valve diameter columns.
func ParseSI(text string) (Report, error) {
	mainBlock, flowBlock, rowsBlock, err := splitSections(text)
	if err != nil {
		return Report{}, err
	}
	kvMain := parseKV(mainBlock)
	kvFlow := parseKV(flowBlock)

	rep := Report{Units: series.UnitsSI}
	if rep.Main.Mach, err = kvRequired(kvMain, "mach"); err != nil {
		return Report{}, err
	}
	if rep.Main.MeanPortAreaMM2, err = kvRequired(kvMain, "meanportarea_mm2"); err != nil {
		return Report{}, err
	}
	if rep.Main.BoreMM, err = kvRequired(kvMain, "bore_mm"); err != nil {
		return Report{}, err
	}
	if rep.Main.StrokeMM, err = kvRequired(kvMain, "stroke_mm"); err != nil {
		return Report{}, err
	}
	cyl, err := kvRequired(kvMain, "cylinders")
	if err != nil {
		return Report{}, err
	}
	rep.Main.Cylinders = int(cyl)
	if rep.Main.VE, err = kvNum(kvMain, "ve", 1.0); err != nil {
		return Report{}, err
	}
	if rep.Main.PortsEff, err = kvNum(kvMain, "portseff", 2.0); err != nil {
		return Report{}, err
	}
	if rep.Main.CR, err = kvNum(kvMain, "cr", 10.5); err != nil {
		return Report{}, err
	}

	if rep.Header, err = parseHeaderSI(kvFlow, rep.Main.CR); err != nil {
		return Report{}, err
	}

	for _, ln := range rowsBlock {
		vals, set, err := parseRowFields(ln, 4)
		if err != nil {
			return Report{}, err
		}
		p := series.FlowPoint{
			LiftMM:          vals[0],
			FlowInM3Min:     vals[1],
			FlowExM3Min:     vals[2],
			DepressionInH2O: vals[3],
		}
		area := rep.Main.MeanPortAreaMM2
		p.MeanAreaMM2 = &area
		if len(vals) >= 5 && set[4] {
			p.MeanAreaMM2 = &vals[4]
		}
		if len(vals) >= 6 && set[5] {
			p.EffAreaMM2 = &vals[5]
		}
		rep.Rows = append(rep.Rows, p)
	}
	return rep, nil
}

func parseHeaderSI(kv map[string]string, cr float64) (flowtest.Header, error) {
	var h flowtest.Header
	read := func(key string, dst *float64) error {
		v, err := kvRequired(kv, key)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"inlet_width_mm", &h.Intake.Window.WidthMM},
		{"inlet_height_mm", &h.Intake.Window.HeightMM},
		{"inlet_rtop_mm", &h.Intake.Window.RTopMM},
		{"inlet_rbot_mm", &h.Intake.Window.RBotMM},
		{"exhaust_width_mm", &h.Exhaust.Window.WidthMM},
		{"exhaust_height_mm", &h.Exhaust.Window.HeightMM},
		{"exhaust_rtop_mm", &h.Exhaust.Window.RTopMM},
		{"exhaust_rbot_mm", &h.Exhaust.Window.RBotMM},
		{"valve_in_mm", &h.Intake.ValveDiamMM},
		{"valve_ex_mm", &h.Exhaust.ValveDiamMM},
		{"maxlift_mm", &h.MaxLiftMM},
	} {
		if err := read(f.key, f.dst); err != nil {
			return flowtest.Header{}, err
		}
	}
	h.CR = cr
	return h, nil
}

// ParseUS parses a US fixture: main-screen values in customary units, port
// geometry still in mm (legacy fixture convention), rows in inches and CFM.
// The result is SI-normalized like everything else.
func ParseUS(text string) (Report, error) {
	mainBlock, flowBlock, rowsBlock, err := splitSections(text)
	if err != nil {
		return Report{}, err
	}
	kvMain := parseKV(mainBlock)
	kvFlow := parseKV(flowBlock)

	rep := Report{Units: series.UnitsUS}
	if rep.Main.Mach, err = kvRequired(kvMain, "mach"); err != nil {
		return Report{}, err
	}
	areaIn2, err := kvRequired(kvMain, "meanportarea_in2")
	if err != nil {
		return Report{}, err
	}
	rep.Main.MeanPortAreaMM2 = units.In2ToMM2(areaIn2)
	boreIn, err := kvRequired(kvMain, "bore_in")
	if err != nil {
		return Report{}, err
	}
	rep.Main.BoreMM = units.InToMM(boreIn)
	strokeIn, err := kvRequired(kvMain, "stroke_in")
	if err != nil {
		return Report{}, err
	}
	rep.Main.StrokeMM = units.InToMM(strokeIn)
	cyl, err := kvNum(kvMain, "cylinders", 1)
	if err != nil {
		return Report{}, err
	}
	rep.Main.Cylinders = int(cyl)
	if rep.Main.VE, err = kvNum(kvMain, "ve", 1.0); err != nil {
		return Report{}, err
	}
	if rep.Main.PortsEff, err = kvNum(kvMain, "portseff", 2.0); err != nil {
		return Report{}, err
	}
	if rep.Main.CR, err = kvNum(kvMain, "cr", 10.5); err != nil {
		return Report{}, err
	}

	if rep.Header, err = parseHeaderSI(kvFlow, rep.Main.CR); err != nil {
		return Report{}, err
	}

	for _, ln := range rowsBlock {
		vals, set, err := parseRowFields(ln, 4)
		if err != nil {
			return Report{}, err
		}
		p := series.FlowPoint{
			LiftMM:          units.InToMM(vals[0]),
			FlowInM3Min:     units.CFMToM3Min(vals[1]),
			FlowExM3Min:     units.CFMToM3Min(vals[2]),
			DepressionInH2O: vals[3],
		}
		if len(vals) >= 5 && set[4] {
			a := units.In2ToMM2(vals[4])
			p.MeanAreaMM2 = &a
		}
		if len(vals) >= 6 && set[5] {
			a := units.In2ToMM2(vals[5])
			p.EffAreaMM2 = &a
		}
		rep.Rows = append(rep.Rows, p)
	}
	return rep, nil
}
