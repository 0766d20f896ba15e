package schedule

import "math"

// monotonicityWeight scales the monotonicity penalty relative to the
// smoothness penalty in Regularization.
const monotonicityWeight = 10.0

// Learnable is a trainable schedule: a table of log-σ values at evenly
// spaced knots over [0, 1], read through linear interpolation in log
// space. Knots initialize along the geometric schedule, so an untrained
// Learnable behaves like Geometric.
type Learnable struct {
	logSigma []float64
}

// NewLearnable builds a knot table spanning [log σmin, log σmax].
func NewLearnable(sigmaMin, sigmaMax float64, knots int) (*Learnable, error) {
	if sigmaMin <= 0 || sigmaMax <= sigmaMin {
		return nil, ErrBadSigmaRange
	}
	if knots < 2 {
		return nil, ErrBadKnots
	}

	lo, hi := math.Log(sigmaMin), math.Log(sigmaMax)
	logSigma := make([]float64, knots)
	for i := range logSigma {
		logSigma[i] = lo + (hi-lo)*float64(i)/float64(knots-1)
	}

	return &Learnable{logSigma: logSigma}, nil
}

// Knots returns the log-σ table for optimizers; mutations take effect on
// the next Total call.
func (l *Learnable) Knots() []float64 { return l.logSigma }

// Total interpolates log σ linearly between the two knots bracketing t and
// exponentiates.
func (l *Learnable) Total(t float64) float64 {
	t = clampTime(t)
	pos := t * float64(len(l.logSigma)-1)
	i := int(pos)
	if i >= len(l.logSigma)-1 {
		return math.Exp(l.logSigma[len(l.logSigma)-1])
	}
	frac := pos - float64(i)

	return math.Exp(l.logSigma[i]*(1-frac) + l.logSigma[i+1]*frac)
}

// RateNoise estimates dσ/dt by a central finite difference, one-sided at
// the domain boundaries.
func (l *Learnable) RateNoise(t float64) float64 {
	t = clampTime(t)
	lo, hi := t-rateDelta, t+rateDelta
	if lo < 0 {
		lo = 0
	}
	if hi > 1 {
		hi = 1
	}

	return (l.Total(hi) - l.Total(lo)) / (hi - lo)
}

// Regularization returns the training penalty of the current table: the
// squared second difference of log σ (smoothness) plus monotonicityWeight
// times the squared magnitude of any decreasing step (σ must not shrink
// over time).
func (l *Learnable) Regularization() float64 {
	var smooth, mono float64
	for i := 1; i < len(l.logSigma); i++ {
		if d := l.logSigma[i-1] - l.logSigma[i]; d > 0 {
			mono += d * d
		}
		if i < len(l.logSigma)-1 {
			dd := l.logSigma[i+1] - 2*l.logSigma[i] + l.logSigma[i-1]
			smooth += dd * dd
		}
	}

	return smooth + monotonicityWeight*mono
}
