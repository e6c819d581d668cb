package coeff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlowLab/internal/calc/calcerr"
	"FlowLab/internal/calc/units"
)

// 44 mm valve at 6 mm lift flowing 0.5 m^3/min at 28 inches in standard air.
func TestCdBenchScenario(t *testing.T) {
	aRef := math.Pi * 0.044 * 0.006
	dp := units.InH2OToPa(28.0)
	cd, err := Cd(0.5/60.0, aRef, dp, 1.225)
	require.NoError(t, err)
	assert.InDelta(t, 0.0942, cd, 0.0002)
}

func TestCdInvalid(t *testing.T) {
	_, err := Cd(0.01, 0, 100.0, 1.2)
	assert.True(t, calcerr.IsInvalidArgument(err))
	_, err = Cd(0.01, 0.001, -5.0, 1.2)
	assert.True(t, calcerr.IsInvalidArgument(err))
	_, err = Cd(-0.01, 0.001, 100.0, 1.2)
	assert.True(t, calcerr.IsInvalidArgument(err))
}

func TestSAECdMatchesCdAtReference(t *testing.T) {
	aRef := math.Pi * 0.044 * 0.006
	dp := units.InH2OToPa(28.0)
	direct, err := Cd(0.5/60.0, aRef, dp, 1.225)
	require.NoError(t, err)
	sae, err := SAECd(0.5/60.0, dp, 1.225, aRef, dp, 1.225)
	require.NoError(t, err)
	assert.InDelta(t, direct, sae, 1e-12)
}

func TestSAECdCorrectsLowDepression(t *testing.T) {
	aRef := math.Pi * 0.044 * 0.006
	dpRef := units.InH2OToPa(28.0)
	dpMeas := units.InH2OToPa(10.0)
	atRef, err := SAECd(0.5/60.0, dpRef, 1.225, aRef, dpRef, 1.225)
	require.NoError(t, err)
	// The same physical flow measured at lower depression must yield the
	// same coefficient: flow scales with sqrt(dp).
	qLow := (0.5 / 60.0) * math.Sqrt(10.0/28.0)
	atLow, err := SAECd(qLow, dpMeas, 1.225, aRef, dpRef, 1.225)
	require.NoError(t, err)
	assert.InDelta(t, atRef, atLow, 1e-9)
}

func TestEffectiveCdMayExceedOne(t *testing.T) {
	// A small blended area normalizes the same flow above unity.
	cd, err := EffectiveCd(0.05, 1e-5, units.InH2OToPa(28.0), 1.225)
	require.NoError(t, err)
	assert.Greater(t, cd, 1.0)
}
