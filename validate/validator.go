package validate

import (
	"math/rand"

	"github.com/katalvlaran/aegud/graph"
	"github.com/katalvlaran/aegud/schedule"
	"github.com/katalvlaran/aegud/token"
)

// DEFAULTS - single source of truth for validator construction.
const (
	// DefaultSteps is the number of forward-diffusion samples per run.
	DefaultSteps = 50

	// DefaultBatchSize is the synthetic batch size.
	DefaultBatchSize = 16

	// DefaultSeqLen is the synthetic sequence length.
	DefaultSeqLen = 128

	// DefaultEntropyThreshold is the minimum final normalized entropy.
	DefaultEntropyThreshold = 0.95

	// DefaultKLThreshold is the maximum final KL from uniform.
	DefaultKLThreshold = 0.01

	// DefaultChiPThreshold is the minimum chi-squared p-value when the
	// chi-squared criterion is enabled.
	DefaultChiPThreshold = 0.05
)

// Internal panic messages (programmer errors in option constructors).
const (
	panicStepsInvalid = "validate: WithSteps: steps must be >= 1"
	panicShapeInvalid = "validate: WithBatchShape: size and length must be >= 1"
)

// Criteria is the convergence acceptance rule applied to the final step.
type Criteria struct {
	EntropyThreshold float64 `json:"entropy_threshold"`
	KLThreshold      float64 `json:"kl_threshold"`
	UseChiSquared    bool    `json:"use_chi_squared"`
	ChiPThreshold    float64 `json:"chi_p_threshold"`
}

// DefaultCriteria returns the standard rule: entropy > 0.95 AND KL < 0.01,
// chi-squared disabled.
func DefaultCriteria() Criteria {
	return Criteria{
		EntropyThreshold: DefaultEntropyThreshold,
		KLThreshold:      DefaultKLThreshold,
		ChiPThreshold:    DefaultChiPThreshold,
	}
}

// Met reports whether the step satisfies the criteria.
func (c Criteria) Met(m StepMetrics) bool {
	if m.Entropy <= c.EntropyThreshold || m.KL >= c.KLThreshold {
		return false
	}
	if c.UseChiSquared && m.ChiPValue <= c.ChiPThreshold {
		return false
	}

	return true
}

// Option mutates validator construction.
type Option func(*Validator)

// WithSteps sets the number of diffusion samples. Panics on steps < 1.
func WithSteps(steps int) Option {
	if steps < 1 {
		panic(panicStepsInvalid)
	}

	return func(v *Validator) { v.steps = steps }
}

// WithBatchShape sets the synthetic batch dimensions. Panics on
// non-positive values.
func WithBatchShape(size, length int) Option {
	if size < 1 || length < 1 {
		panic(panicShapeInvalid)
	}

	return func(v *Validator) { v.size, v.length = size, length }
}

// WithCriteria replaces the convergence rule.
func WithCriteria(c Criteria) Option {
	return func(v *Validator) { v.criteria = c }
}

// Validator runs forward diffusion under a noise schedule and scores the
// trajectory against convergence criteria. It owns no randomness; callers
// pass the rng, keeping runs reproducible.
type Validator struct {
	g     graph.Graph
	noise schedule.Noise

	steps, size, length int
	criteria            Criteria
}

// NewValidator wires a graph and noise schedule into a validator.
func NewValidator(g graph.Graph, noise schedule.Noise, opts ...Option) *Validator {
	v := &Validator{
		g:        g,
		noise:    noise,
		steps:    DefaultSteps,
		size:     DefaultBatchSize,
		length:   DefaultSeqLen,
		criteria: DefaultCriteria(),
	}
	for _, opt := range opts {
		opt(v)
	}

	return v
}

// ForwardConvergence diffuses x0 forward across the schedule, sampling
// metrics at each of the validator's steps, and seals the trajectory into
// a named record. A nil x0 requests a uniform random batch.
//
// Each step corrupts the CLEAN batch at the step's total noise (the
// forward kernel composes, so sampling from x0 at σ(t) is exact).
// Complexity: O(steps·size·length).
func (v *Validator) ForwardConvergence(name string, x0 *token.Batch, rng *rand.Rand) (*Record, error) {
	var err error
	if x0 == nil {
		if x0, err = token.Random(v.g.Dim(), v.size, v.length, rng); err != nil {
			return nil, err
		}
	}

	steps := make([]StepMetrics, 0, v.steps)
	for i := 1; i <= v.steps; i++ {
		t := float64(i) / float64(v.steps)
		sigma := v.noise.Total(t)
		xt, err := v.g.SampleTransition(x0, sigma, rng)
		if err != nil {
			return nil, err
		}
		m, err := sample(i, t, sigma, x0, xt)
		if err != nil {
			return nil, err
		}
		steps = append(steps, m)
	}

	return NewRecord(name, v.g.Dim(), v.criteria, steps)
}
