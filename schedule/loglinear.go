package schedule

import "math"

// LogLinear is the schedule σ(t) = −log(1−(1−ε)·t): the single-position
// survival probability exp(−σ) decays linearly in t. ε keeps σ(1) finite.
type LogLinear struct {
	eps float64
}

// NewLogLinear validates ε ∈ (0, 1).
func NewLogLinear(eps float64) (*LogLinear, error) {
	if eps <= 0 || eps >= 1 {
		return nil, ErrBadEps
	}

	return &LogLinear{eps: eps}, nil
}

// Total returns −log(1−(1−ε)·t).
func (l *LogLinear) Total(t float64) float64 {
	t = clampTime(t)

	return -math.Log1p(-(1 - l.eps) * t)
}

// RateNoise returns dσ/dt = (1−ε)/(1−(1−ε)·t).
func (l *LogLinear) RateNoise(t float64) float64 {
	t = clampTime(t)

	return (1 - l.eps) / (1 - (1-l.eps)*t)
}
