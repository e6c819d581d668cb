package engine

import (
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

func TestVolumetricFlowAndInverse(t *testing.T) {
	// 7.0 L at 6000 rpm, VE 1: Q = 7e-3 * 6000/2 / 60 = 0.35 m^3/s.
	q, err := VolumetricFlow(7.0, 6000.0, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.35, q, 1e-9)

	rpm, err := RPMFromFlow(q, 7.0, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 6000.0, rpm, 1e-6)

	_, err = VolumetricFlow(0, 6000.0, 1.0)
	assert.True(t, calcerr.IsInvalidArgument(err))
}

func TestRPMFromCSA(t *testing.T) {
	// Q = A*v feeds the same demand inversion.
	rpm, err := RPMFromCSA(0.002, 7.0, 1.0, 100.0)
	require.NoError(t, err)
	want, _ := RPMFromFlow(0.002*100.0, 7.0, 1.0)
	assert.InDelta(t, want, rpm, 1e-9)
}

// The frozen reference point: 2.75 in^2 per port, Mach 0.5475, four effective
// ports, 427.7 CID at VE 1 peaks at 7037 rpm.
func TestPeakRPMReferencePoint(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)
	rpm, err := PeakRPMFromPortArea(cal, 2.75, 0.5475, 4.0, 427.7, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 7037.0, rpm, 1.0)
}

func TestPeakRPMPortAreaRoundTrip(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)
	rpm, err := PeakRPMFromPortArea(cal, 2.75, 0.5475, 4.0, 427.7, 1.0)
	require.NoError(t, err)
	area, err := PortAreaFromPeakRPM(cal, rpm, 0.5475, 4.0, 427.7, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 2.75, area, 1e-9)
}

func TestPeakRPMSIMatchesUS(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)
	us, err := PeakRPMFromPortArea(cal, 2.75, 0.5475, 4.0, 427.7, 1.0)
	require.NoError(t, err)
	si, err := PeakRPMFromPortAreaSI(cal,
		units.In2ToMM2(2.75), 0.5475, 4.0, units.In3ToL(427.7), 1.0)
	require.NoError(t, err)
	assert.InDelta(t, us, si, 1e-6)
}

func TestShiftRPM(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)
	assert.InDelta(t, 7000.0*1.07, ShiftRPM(cal, 7000.0), 1e-9)
}

func TestAirflowHPLimit(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)
	hp, err := AirflowHPLimit(cal, 300.0)
	require.NoError(t, err)
	assert.InDelta(t, 123.3, hp, 1e-9)

	man := reg(t, calibration.ProfileManual)
	hp, err = AirflowHPLimit(man, 300.0)
	require.NoError(t, err)
	assert.InDelta(t, 129.0, hp, 1e-9)

	_, err = AirflowHPLimit(cal, -1.0)
	assert.True(t, calcerr.IsInvalidArgument(err))
}

func TestPortAreaHPLimitProfiles(t *testing.T) {
	rep := reg(t, calibration.ProfileReport)
	hpRep, err := PortAreaHPLimit(rep, 2.75, 0.5475, 4.0)
	require.NoError(t, err)
	// Report chain: 1.0 HP per ft^3/min through the port section.
	vFtS := 0.5475 * 1125.0
	assert.InDelta(t, (2.75/144.0)*vFtS*60.0*4.0, hpRep, 1e-6)

	man := reg(t, calibration.ProfileManual)
	hpMan, err := PortAreaHPLimit(man, 2.75, 0.5475, 4.0)
	require.NoError(t, err)
	aCm2 := units.In2ToMM2(2.75) / 100.0
	assert.InDelta(t, 0.257*aCm2*0.5475*343.2*4.0, hpMan, 1e-6)
}

func TestPortAreaKWLimit(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)
	kw, err := PortAreaKWLimit(cal, 1774.0, 0.5475, 4.0)
	require.NoError(t, err)
	vMS := 0.5475 * 343.2
	qM3Min := 1774.0 * 1e-6 * vMS * 60.0 * 4.0
	assert.InDelta(t, 6.534*qM3Min, kw, 1e-6)
}

func TestAirflowKWLimit(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)
	kw, err := AirflowKWLimit(cal, 10.0)
	require.NoError(t, err)
	assert.InDelta(t, 214.2, kw, 1e-9)
}

func TestCRCorrection(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)
	// Zero slope: the factor is flat in CR.
	assert.InDelta(t, 1.1207, CRCorrection(cal, 10.5), 1e-12)
	assert.InDelta(t, 1.1207, CRCorrection(cal, 13.0), 1e-12)
}

func TestExIntRatios(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)

	raw, err := MeasuredExIntRatio(84.1, 114.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.7345, raw, 0.0001)

	adj := AdjustedExIntRatio(cal, raw)
	assert.InDelta(t, raw*1.0143, adj, 1e-9)

	// The uplift never pushes the adjusted ratio past unity.
	assert.Equal(t, 1.0, AdjustedExIntRatio(cal, 0.999))

	_, err = MeasuredExIntRatio(84.1, 0)
	assert.True(t, calcerr.IsInvalidArgument(err))
}

func TestRequiredExIntRatio(t *testing.T) {
	cal := reg(t, calibration.ProfileReport)

	// At the CR reference with 0.5 in max lift both slopes vanish.
	r, err := RequiredExIntRatio(cal, 10.5, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, r, 1e-9)

	// Higher CR asks for more exhaust, taller lift for less.
	hi, err := RequiredExIntRatio(cal, 14.5, 0.5)
	require.NoError(t, err)
	assert.Greater(t, hi, r)
	lo, err := RequiredExIntRatio(cal, 10.5, 0.8)
	require.NoError(t, err)
	assert.Less(t, lo, r)

	// Extreme input clamps to the [0.5, 1.0] band.
	clamped, err := RequiredExIntRatio(cal, 10.5, 3.0)
	require.NoError(t, err)
	assert.Equal(t, 0.5, clamped)

	_, err = RequiredExIntRatio(cal, 0, 0.5)
	assert.True(t, calcerr.IsInvalidArgument(err))
}

func TestMeanPistonSpeed(t *testing.T) {
	v, err := MeanPistonSpeedMS(86.0, 6000.0)
	require.NoError(t, err)
	assert.InDelta(t, 17.2, v, 1e-9)

	_, err = MeanPistonSpeedMS(0, 6000.0)
	assert.True(t, calcerr.IsInvalidArgument(err))
}
