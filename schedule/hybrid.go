package schedule

import "math"

// Hybrid accumulates noise in two phases: linear and slow up to the switch
// point, then geometric and rapid toward σmax. The two phases meet at
// σmid = √(σmin·σmax), so σ(t) is continuous.
type Hybrid struct {
	sigmaMin, sigmaMax float64
	switchPoint        float64
	sigmaMid           float64
}

// NewHybrid validates the range and switch point.
func NewHybrid(sigmaMin, sigmaMax, switchPoint float64) (*Hybrid, error) {
	if sigmaMin <= 0 || sigmaMax <= sigmaMin {
		return nil, ErrBadSigmaRange
	}
	if switchPoint <= 0 || switchPoint >= 1 {
		return nil, ErrBadSwitchPoint
	}

	return &Hybrid{
		sigmaMin:    sigmaMin,
		sigmaMax:    sigmaMax,
		switchPoint: switchPoint,
		sigmaMid:    math.Sqrt(sigmaMin * sigmaMax),
	}, nil
}

// Total returns the two-phase noise: σmin + (σmid−σmin)·t/p for t ≤ p,
// then σmid·(σmax/σmid)^((t−p)/(1−p)).
func (h *Hybrid) Total(t float64) float64 {
	t = clampTime(t)
	if t <= h.switchPoint {
		return h.sigmaMin + (h.sigmaMid-h.sigmaMin)*t/h.switchPoint
	}
	frac := (t - h.switchPoint) / (1 - h.switchPoint)

	return h.sigmaMid * math.Exp(frac*math.Log(h.sigmaMax/h.sigmaMid))
}

// RateNoise returns the per-phase derivative: constant in the slow phase,
// proportional to σ(t) in the rapid phase.
func (h *Hybrid) RateNoise(t float64) float64 {
	t = clampTime(t)
	if t <= h.switchPoint {
		return (h.sigmaMid - h.sigmaMin) / h.switchPoint
	}

	return h.Total(t) * math.Log(h.sigmaMax/h.sigmaMid) / (1 - h.switchPoint)
}
