package mainscreen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlowLab/internal/calc/calcerr"
	"FlowLab/internal/calc/calibration"
	"FlowLab/internal/calc/units"
)

func reg(t *testing.T, p calibration.Profile) *calibration.Registry {
	t.Helper()
	cal, err := calibration.New(p)
	require.NoError(t, err)
	return cal
}

func TestCalculateUSReferenceEngine(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)
	// Bore and stroke chosen to displace 427.7 CID over eight cylinders.
	stroke := 427.7 / (8.0 * math.Pi / 4.0 * 4.125 * 4.125)
	res, err := CalculateUS(cal, InputUS{
		Mach:            0.5475,
		MeanPortAreaIn2: 2.75,
		BoreIn:          4.125,
		StrokeIn:        stroke,
		Cylinders:       8,
		VE:              1.0,
		PortsEff:        4.0,
		CR:              10.5,
		FlowCFM28:       300.0,
	})
	require.NoError(t, err)

	assert.InDelta(t, 427.7, res.DisplacementCID, 1e-6)
	assert.InDelta(t, 7037.0, res.PeakRPM, 1.0)
	assert.InDelta(t, res.PeakRPM*1.07, res.ShiftRPM, 1e-6)
	assert.InDelta(t, 0.5475*1125.0, res.MeanPortVelocityFtS, 1e-9)
	vFtS := res.MeanPortVelocityFtS
	assert.InDelta(t, 0.5*0.0023769*vFtS*vFtS, res.PortEnergyDensityPSF, 1e-9)
	assert.Greater(t, res.EngineDemandCFM, 0.0)
	assert.Greater(t, res.MeanPistonSpeedFtMin, 0.0)
	assert.Greater(t, res.PortAreaHPLimit, 0.0)
	require.NotNil(t, res.AirflowHPLimit)
	assert.InDelta(t, 123.3, *res.AirflowHPLimit, 1e-9)
	assert.InDelta(t, 1.1207, res.CRCorrection, 1e-9)
}

func TestCalculateSIMatchesUS(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)
	us, err := CalculateUS(cal, InputUS{
		Mach: 0.5475, MeanPortAreaIn2: 2.75,
		BoreIn: 4.125, StrokeIn: 4.0, Cylinders: 8,
		VE: 1.0, PortsEff: 4.0, CR: 10.5,
	})
	require.NoError(t, err)
	si, err := CalculateSI(cal, InputSI{
		Mach: 0.5475, MeanPortAreaMM2: units.In2ToMM2(2.75),
		BoreMM: units.InToMM(4.125), StrokeMM: units.InToMM(4.0), Cylinders: 8,
		VE: 1.0, PortsEff: 4.0, CR: 10.5,
	})
	require.NoError(t, err)

	assert.InDelta(t, us.PeakRPM, si.PeakRPM, 0.01)
	assert.InDelta(t, us.ShiftRPM, si.ShiftRPM, 0.01)
	assert.InDelta(t, units.In3ToL(us.DisplacementCID), si.DisplacementL, 1e-6)
	// The fixed SI speed of sound is rounded to 343.2 m/s, a touch above
	// the exact 1125 ft/s conversion.
	assert.InDelta(t, units.FtSToMS(us.MeanPortVelocityFtS), si.MeanPortVelocityMS, 0.5)
}

func TestCalculateDefaults(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)
	// Zero VE, ports and CR fall back to 1.0, 2 and 10.5.
	res, err := CalculateSI(cal, InputSI{
		Mach: 0.5, MeanPortAreaMM2: 1774.0,
		BoreMM: 86.0, StrokeMM: 86.0, Cylinders: 4,
	})
	require.NoError(t, err)
	assert.Greater(t, res.PeakRPM, 0.0)
	assert.Nil(t, res.AirflowKWLimit)
	assert.InDelta(t, 1.1207, res.CRCorrection, 1e-9)
}

func TestCalculateValidation(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)
	_, err := CalculateSI(cal, InputSI{Mach: 1.5, MeanPortAreaMM2: 1774.0, BoreMM: 86.0, StrokeMM: 86.0, Cylinders: 4})
	assert.True(t, calcerr.IsInvalidArgument(err))
	_, err = CalculateSI(cal, InputSI{Mach: 0.5, BoreMM: 86.0, StrokeMM: 86.0, Cylinders: 4})
	assert.True(t, calcerr.IsInvalidArgument(err))
	_, err = CalculateUS(cal, InputUS{Mach: 0.5, MeanPortAreaIn2: 2.75, BoreIn: 4.0, StrokeIn: 4.0})
	assert.True(t, calcerr.IsInvalidArgument(err))
	_, err = CalculateSI(nil, InputSI{Mach: 0.5, MeanPortAreaMM2: 1774.0, BoreMM: 86.0, StrokeMM: 86.0, Cylinders: 4})
	assert.True(t, calcerr.IsInvalidArgument(err))
}

func TestPortSolve(t *testing.T) {
	res, err := PortSolve(PortSolveInput{MeanCSACm2: 11.5, CenterlineCM: 15.0})
	require.NoError(t, err)
	assert.Equal(t, "port_volume_cc", res.Solved)
	assert.InDelta(t, 172.5, res.PortVolumeCC, 1e-9)

	res, err = PortSolve(PortSolveInput{PortVolumeCC: 172.5, CenterlineCM: 15.0})
	require.NoError(t, err)
	assert.Equal(t, "mean_csa_cm2", res.Solved)
	assert.InDelta(t, 11.5, res.MeanCSACm2, 1e-9)

	res, err = PortSolve(PortSolveInput{PortVolumeCC: 172.5, MeanCSACm2: 11.5})
	require.NoError(t, err)
	assert.Equal(t, "centerline_cm", res.Solved)
	assert.InDelta(t, 15.0, res.CenterlineCM, 1e-9)
}

func TestPortSolveValidation(t *testing.T) {
	_, err := PortSolve(PortSolveInput{PortVolumeCC: 172.5})
	assert.True(t, calcerr.IsInvalidArgument(err))
	_, err = PortSolve(PortSolveInput{PortVolumeCC: 172.5, MeanCSACm2: 11.5, CenterlineCM: 15.0})
	assert.True(t, calcerr.IsInvalidArgument(err))
	_, err = PortSolve(PortSolveInput{PortVolumeCC: -1.0, MeanCSACm2: 11.5})
	assert.True(t, calcerr.IsInvalidArgument(err))
}
