package flowtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlowLab/internal/calc/calcerr"
	"FlowLab/internal/calc/calibration"
	"FlowLab/internal/calc/series"
	"FlowLab/internal/calc/units"
)

func reg(t *testing.T) *calibration.Registry {
	t.Helper()
	cal, err := calibration.New(calibration.ProfileReport)
	require.NoError(t, err)
	return cal
}

func fptr(v float64) *float64 { return &v }

func fullHeader() Header {
	return Header{
		Intake: SideGeometry{
			ValveDiamMM:  44.0,
			ThroatDiamMM: fptr(38.0),
			StemDiamMM:   fptr(7.0),
			SeatAngleDeg: fptr(45.0),
			SeatWidthMM:  fptr(2.0),
			Window:       Window{WidthMM: 40.0, HeightMM: 50.0, RTopMM: 8.0, RBotMM: 6.0},
		},
		Exhaust: SideGeometry{
			ValveDiamMM:  36.0,
			ThroatDiamMM: fptr(31.0),
			StemDiamMM:   fptr(7.0),
			SeatAngleDeg: fptr(45.0),
			SeatWidthMM:  fptr(1.8),
			Window:       Window{WidthMM: 32.0, HeightMM: 38.0, RTopMM: 6.0, RBotMM: 6.0},
		},
		CR:        10.5,
		MaxLiftMM: 12.7,
	}
}

func benchRows() []series.FlowPoint {
	return []series.FlowPoint{
		{LiftMM: 2.54, FlowInM3Min: 1.9, FlowExM3Min: 1.4, DepressionInH2O: 28.0},
		{LiftMM: 7.62, FlowInM3Min: 4.5, FlowExM3Min: 3.3, DepressionInH2O: 28.0},
		{LiftMM: 12.7, FlowInM3Min: 6.1, FlowExM3Min: 4.4, DepressionInH2O: 28.0},
	}
}

func TestCalculateRequiresGeometry(t *testing.T) {
	cal := reg(t)

	h := fullHeader()
	h.Intake.ValveDiamMM = 0
	_, err := Calculate(cal, Input{Units: series.UnitsSI, Header: h, Rows: benchRows()})
	assert.True(t, calcerr.IsInvalidArgument(err))

	h = fullHeader()
	h.CR = 0
	_, err = Calculate(cal, Input{Units: series.UnitsSI, Header: h, Rows: benchRows()})
	assert.True(t, calcerr.IsInvalidArgument(err))

	h = fullHeader()
	h.Intake.Window.WidthMM = 0
	_, err = Calculate(cal, Input{Units: series.UnitsSI, Header: h, Rows: benchRows()})
	assert.True(t, calcerr.IsInvalidArgument(err))

	_, err = Calculate(nil, Input{Units: series.UnitsSI, Header: fullHeader(), Rows: benchRows()})
	assert.True(t, calcerr.IsInvalidArgument(err))
}

func TestCalculateHeaderMetrics(t *testing.T) {
	res, err := Calculate(reg(t), Input{Units: series.UnitsSI, Header: fullHeader(), Rows: benchRows()})
	require.NoError(t, err)

	assert.Greater(t, res.Header.IntakeWindowArea, 0.0)
	assert.Greater(t, res.Header.ExhaustWindowArea, 0.0)
	require.NotNil(t, res.Header.IntakeThroatArea)
	require.NotNil(t, res.Header.IntakeEffArea)
	assert.LessOrEqual(t, *res.Header.IntakeEffArea, *res.Header.IntakeThroatArea+1e-9)

	assert.InDelta(t, 12.7/44.0, res.Header.MaxLDIntake, 1e-9)
	assert.InDelta(t, 12.7/36.0, res.Header.MaxLDExhaust, 1e-9)

	require.NotNil(t, res.Header.EIMeasured)
	require.NotNil(t, res.Header.EIAdjusted)
	assert.InDelta(t, (1.4+3.3+4.4)/(1.9+4.5+6.1), *res.Header.EIMeasured, 1e-9)
	assert.GreaterOrEqual(t, *res.Header.EIAdjusted, *res.Header.EIMeasured)
	assert.GreaterOrEqual(t, res.Header.EIRequired, 0.5)
	assert.LessOrEqual(t, res.Header.EIRequired, 1.0)
}

func TestCalculateOptionalSideGeometry(t *testing.T) {
	h := fullHeader()
	h.Intake.ThroatDiamMM = nil
	h.Intake.SeatWidthMM = nil
	res, err := Calculate(reg(t), Input{Units: series.UnitsSI, Header: h, Rows: benchRows()})
	require.NoError(t, err)
	assert.Nil(t, res.Header.IntakeThroatArea)
	assert.Nil(t, res.Header.IntakeEffArea)
	assert.NotNil(t, res.Header.ExhaustThroatArea)
}

func TestCalculateRows(t *testing.T) {
	rows := benchRows()
	rows[1].DepressionInH2O = 10.0
	res, err := Calculate(reg(t), Input{Units: series.UnitsSI, Header: fullHeader(), Rows: rows})
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	// At reference depression the corrected flow equals the measured one.
	require.NotNil(t, res.Rows[0].FlowIn28)
	assert.InDelta(t, res.Rows[0].FlowIn, *res.Rows[0].FlowIn28, 1e-9)

	// Below reference the corrected flow is larger.
	require.NotNil(t, res.Rows[1].FlowIn28)
	assert.Greater(t, *res.Rows[1].FlowIn28, res.Rows[1].FlowIn)

	require.NotNil(t, res.Rows[0].EIRow)
	assert.InDelta(t, 1.4/1.9, *res.Rows[0].EIRow, 1e-9)
	require.NotNil(t, res.Rows[0].LD)
	assert.InDelta(t, 2.54/44.0, *res.Rows[0].LD, 1e-9)
}

func TestCalculateUSMatchesSI(t *testing.T) {
	cal := reg(t)
	si, err := Calculate(cal, Input{Units: series.UnitsSI, Header: fullHeader(), Rows: benchRows()})
	require.NoError(t, err)
	us, err := Calculate(cal, Input{Units: series.UnitsUS, Header: fullHeader(), Rows: benchRows()})
	require.NoError(t, err)

	assert.InDelta(t, units.MM2ToIn2(si.Header.IntakeWindowArea), us.Header.IntakeWindowArea, 1e-9)
	assert.InDelta(t, units.MMToIn(si.Rows[0].Lift), us.Rows[0].Lift, 1e-9)
	assert.InDelta(t, units.M3MinToCFM(si.Rows[0].FlowIn), us.Rows[0].FlowIn, 1e-9)
	assert.InDelta(t, units.M3MinToCFM(*si.Rows[0].FlowIn28), *us.Rows[0].FlowIn28, 1e-9)

	// Dimensionless header metrics do not change with the unit system.
	assert.InDelta(t, *si.Header.EIMeasured, *us.Header.EIMeasured, 1e-12)
	assert.InDelta(t, si.Header.EIRequired, us.Header.EIRequired, 1e-12)
	assert.InDelta(t, si.Header.MaxLDIntake, us.Header.MaxLDIntake, 1e-12)
}
