package schedule

import "errors"

// DEFAULTS - single source of truth for schedule construction.
const (
	// DefaultSigmaMin is the noise floor of bounded schedules.
	DefaultSigmaMin = 1e-3

	// DefaultSigmaMax is the noise ceiling of bounded schedules.
	DefaultSigmaMax = 20.0

	// DefaultLogLinearEps keeps the log-linear schedule finite at t=1.
	DefaultLogLinearEps = 1e-3

	// DefaultKnots is the number of interpolation knots of the learnable
	// schedule.
	DefaultKnots = 16

	// DefaultPreserveStrength scales how strongly information content
	// suppresses the information-preserving schedule.
	DefaultPreserveStrength = 0.5

	// DefaultSwitchPoint splits the hybrid schedule's slow and rapid
	// phases.
	DefaultSwitchPoint = 0.5

	// rateDelta is the step of finite-difference rate estimation.
	rateDelta = 1e-4
)

// Sentinel errors for schedule construction and updates.
var (
	// ErrBadSigmaRange indicates σmin ≤ 0 or σmax ≤ σmin.
	ErrBadSigmaRange = errors.New("schedule: need 0 < sigma_min < sigma_max")

	// ErrBadEps indicates a log-linear epsilon outside (0, 1).
	ErrBadEps = errors.New("schedule: eps must be in (0, 1)")

	// ErrBadKnots indicates fewer than two learnable knots.
	ErrBadKnots = errors.New("schedule: need at least 2 knots")

	// ErrBadStrength indicates a preservation strength outside [0, 1).
	ErrBadStrength = errors.New("schedule: strength must be in [0, 1)")

	// ErrBadSwitchPoint indicates a hybrid switch point outside (0, 1).
	ErrBadSwitchPoint = errors.New("schedule: switch point must be in (0, 1)")

	// ErrBadInformation indicates an information level outside [0, 1].
	ErrBadInformation = errors.New("schedule: information must be in [0, 1]")
)

// Noise is a diffusion noise schedule over t ∈ [0, 1].
type Noise interface {
	// Total returns the accumulated noise σ(t).
	Total(t float64) float64

	// RateNoise returns the instantaneous rate dσ/dt at t.
	RateNoise(t float64) float64
}

// clampTime restricts t to the schedule domain [0, 1].
func clampTime(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}

	return t
}
