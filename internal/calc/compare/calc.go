// Package compare runs two flow tests through the series builder and
// reports element-wise percent deltas of A against B.
package compare

import (
	"github.com/pkg/errors"

	"FlowLab/internal/calc/calcerr"
	"FlowLab/internal/calc/calibration"
	"FlowLab/internal/calc/series"
)

type Input struct {
	Units        series.Units       `json:"units"`
	Mode         series.Mode        `json:"mode"`
	Side         series.Side        `json:"side"`
	ValveDiamAMM float64            `json:"valve_diam_a_mm"`
	ValveDiamBMM float64            `json:"valve_diam_b_mm"`
	A            []series.FlowPoint `json:"a"`
	B            []series.FlowPoint `json:"b"`
}

type Result struct {
	Units  series.Units      `json:"units"`
	Mode   series.Mode       `json:"mode"`
	A      series.Series     `json:"a"`
	B      series.Series     `json:"b"`
	Deltas series.Comparison `json:"deltas"`
	Labels map[string]string `json:"labels"`
}

func Calculate(cal *calibration.Registry, in Input) (Result, error) {
	if in.Mode != series.ModeLift && in.Mode != series.ModeLD {
		return Result{}, errors.Wrapf(calcerr.ErrInvalidArgument, "mode must be lift or ld, got %q", in.Mode)
	}
	if in.Side == "" {
		in.Side = series.SideIntake
	}
	if len(in.A) == 0 || len(in.B) == 0 {
		return Result{}, errors.Wrap(calcerr.ErrInvalidArgument, "both tests need rows")
	}
	a, err := series.Build(cal, in.Units, in.ValveDiamAMM, in.A, in.Side)
	if err != nil {
		return Result{}, err
	}
	b, err := series.Build(cal, in.Units, in.ValveDiamBMM, in.B, in.Side)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Units:  in.Units,
		Mode:   in.Mode,
		A:      a,
		B:      b,
		Deltas: series.Compare(a, b, in.Mode),
		Labels: series.Labels(in.Units),
	}, nil
}
