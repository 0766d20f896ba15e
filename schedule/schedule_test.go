package schedule_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/aegud/schedule"
)

// TestGeometric_Endpoints checks the closed-form endpoints and clamping.
func TestGeometric_Endpoints(t *testing.T) {
	g, err := schedule.NewGeometric(1e-3, 20)
	require.NoError(t, err)

	assert.InDelta(t, 1e-3, g.Total(0), 1e-12, "σ(0) = σmin")
	assert.InDelta(t, 20, g.Total(1), 1e-9, "σ(1) = σmax")
	assert.Equal(t, g.Total(1), g.Total(2), "t past 1 clamps")
	assert.InDelta(t, g.Total(0.5)*math.Log(20/1e-3), g.RateNoise(0.5), 1e-12,
		"rate is σ(t)·log(σmax/σmin)")

	_, err = schedule.NewGeometric(0, 20)
	assert.ErrorIs(t, err, schedule.ErrBadSigmaRange, "σmin must be positive")
	_, err = schedule.NewGeometric(2, 1)
	assert.ErrorIs(t, err, schedule.ErrBadSigmaRange, "σmax must exceed σmin")
}

// TestLogLinear_SurvivalLinearity verifies exp(−σ(t)) = 1−(1−ε)t, the
// schedule's defining property.
func TestLogLinear_SurvivalLinearity(t *testing.T) {
	l, err := schedule.NewLogLinear(1e-3)
	require.NoError(t, err)

	for _, ti := range []float64{0, 0.25, 0.5, 0.75, 1} {
		survival := math.Exp(-l.Total(ti))
		assert.InDelta(t, 1-(1-1e-3)*ti, survival, 1e-9, "survival linear at t=%v", ti)
	}

	_, err = schedule.NewLogLinear(1)
	assert.ErrorIs(t, err, schedule.ErrBadEps, "eps=1 rejected")
}

// TestInformationPreserving_Suppression checks that higher information
// content lowers accumulated noise, bounded below by σmin.
func TestInformationPreserving_Suppression(t *testing.T) {
	p, err := schedule.NewInformationPreserving(1e-3, 20, 0.5)
	require.NoError(t, err)

	base := p.Total(0.5)
	require.NoError(t, p.UpdateInformation(1))
	assert.Less(t, p.Total(0.5), base, "high information suppresses noise")
	assert.InDelta(t, 0.5*base, p.Total(0.5), 1e-9, "suppressed by 1−strength·info")

	assert.GreaterOrEqual(t, p.Total(0), 1e-3, "clamped to σmin")
	assert.ErrorIs(t, p.UpdateInformation(1.5), schedule.ErrBadInformation)

	_, err = schedule.NewInformationPreserving(1e-3, 20, 1)
	assert.ErrorIs(t, err, schedule.ErrBadStrength)
}

// TestLearnable_GeometricInit verifies an untrained table reproduces the
// geometric schedule and carries zero regularization.
func TestLearnable_GeometricInit(t *testing.T) {
	l, err := schedule.NewLearnable(1e-3, 20, schedule.DefaultKnots)
	require.NoError(t, err)
	g, err := schedule.NewGeometric(1e-3, 20)
	require.NoError(t, err)

	for _, ti := range []float64{0, 0.3, 0.7, 1} {
		assert.InDelta(t, g.Total(ti), l.Total(ti), g.Total(ti)*1e-6,
			"untrained knots follow the geometric schedule at t=%v", ti)
	}
	assert.InDelta(t, 0, l.Regularization(), 1e-18, "linear log table has no penalty")

	_, err = schedule.NewLearnable(1e-3, 20, 1)
	assert.ErrorIs(t, err, schedule.ErrBadKnots)
}

// TestLearnable_Regularization_PenalizesDecrease verifies that a
// non-monotone table is penalized much harder than a merely bent one.
func TestLearnable_Regularization_PenalizesDecrease(t *testing.T) {
	l, err := schedule.NewLearnable(1e-3, 20, 8)
	require.NoError(t, err)

	knots := l.Knots()
	knots[3], knots[4] = knots[4], knots[3] // introduce a decreasing step

	assert.Greater(t, l.Regularization(), 0.0, "non-monotone table is penalized")
}

// TestLearnable_RateNoise_Positive checks the finite-difference rate is
// positive over an increasing table.
func TestLearnable_RateNoise_Positive(t *testing.T) {
	l, err := schedule.NewLearnable(1e-3, 20, schedule.DefaultKnots)
	require.NoError(t, err)

	for _, ti := range []float64{0, 0.5, 1} {
		assert.Greater(t, l.RateNoise(ti), 0.0, "rate positive at t=%v", ti)
	}
}

// TestHybrid_ContinuityAndPhases checks continuity at the switch point and
// the slow-then-rapid shape.
func TestHybrid_ContinuityAndPhases(t *testing.T) {
	h, err := schedule.NewHybrid(1e-3, 20, 0.5)
	require.NoError(t, err)

	below := h.Total(0.5 - 1e-9)
	above := h.Total(0.5 + 1e-9)
	assert.InDelta(t, below, above, 1e-6, "σ continuous at the switch point")

	assert.InDelta(t, 1e-3, h.Total(0), 1e-12, "starts at σmin")
	assert.InDelta(t, 20, h.Total(1), 1e-9, "ends at σmax")
	assert.Greater(t, h.RateNoise(0.9), h.RateNoise(0.1),
		"rapid phase accumulates faster than the slow phase")

	_, err = schedule.NewHybrid(1e-3, 20, 1)
	assert.ErrorIs(t, err, schedule.ErrBadSwitchPoint)
}
