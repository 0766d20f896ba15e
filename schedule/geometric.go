package schedule

import "math"

// Geometric is the standard geometric noise schedule:
// σ(t) = σmin^(1−t)·σmax^t, so log σ interpolates linearly.
type Geometric struct {
	sigmaMin, sigmaMax float64
	logRatio           float64 // log(σmax/σmin), precomputed
}

// NewGeometric validates the range and precomputes the log ratio.
func NewGeometric(sigmaMin, sigmaMax float64) (*Geometric, error) {
	if sigmaMin <= 0 || sigmaMax <= sigmaMin {
		return nil, ErrBadSigmaRange
	}

	return &Geometric{
		sigmaMin: sigmaMin,
		sigmaMax: sigmaMax,
		logRatio: math.Log(sigmaMax / sigmaMin),
	}, nil
}

// Total returns σmin^(1−t)·σmax^t.
func (g *Geometric) Total(t float64) float64 {
	t = clampTime(t)

	return g.sigmaMin * math.Exp(t*g.logRatio)
}

// RateNoise returns dσ/dt = σ(t)·log(σmax/σmin).
func (g *Geometric) RateNoise(t float64) float64 {
	return g.Total(t) * g.logRatio
}
