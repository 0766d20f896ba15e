package schedule

// InformationPreserving modulates a geometric base schedule by the
// observed information content of the data: while content is high the
// accumulated noise is suppressed by up to the configured strength, and
// the result is clamped back into [σmin, σmax].
//
// The information level is pushed in via UpdateInformation between
// diffusion steps; the schedule itself stays a pure function of (t, level).
type InformationPreserving struct {
	base     *Geometric
	strength float64
	info     float64
}

// NewInformationPreserving builds the schedule over [σmin, σmax] with the
// given suppression strength in [0, 1).
func NewInformationPreserving(sigmaMin, sigmaMax, strength float64) (*InformationPreserving, error) {
	if strength < 0 || strength >= 1 {
		return nil, ErrBadStrength
	}
	base, err := NewGeometric(sigmaMin, sigmaMax)
	if err != nil {
		return nil, err
	}

	return &InformationPreserving{base: base, strength: strength}, nil
}

// UpdateInformation records the latest observed information content in
// [0, 1]; subsequent Total/RateNoise calls use it.
func (p *InformationPreserving) UpdateInformation(info float64) error {
	if info < 0 || info > 1 {
		return ErrBadInformation
	}
	p.info = info

	return nil
}

// factor is the current suppression multiplier 1−strength·info ∈ (0, 1].
func (p *InformationPreserving) factor() float64 {
	return 1 - p.strength*p.info
}

// Total returns the suppressed geometric noise, clamped to [σmin, σmax].
func (p *InformationPreserving) Total(t float64) float64 {
	sigma := p.base.Total(t) * p.factor()
	if sigma < p.base.sigmaMin {
		return p.base.sigmaMin
	}
	if sigma > p.base.sigmaMax {
		return p.base.sigmaMax
	}

	return sigma
}

// RateNoise returns the suppressed geometric rate. The clamp applied in
// Total is ignored here; inside the active range the derivative is exact.
func (p *InformationPreserving) RateNoise(t float64) float64 {
	return p.base.RateNoise(t) * p.factor()
}
