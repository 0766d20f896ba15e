package graph

import (
	"math"

	"github.com/katalvlaran/aegud/entropy"
	"github.com/katalvlaran/aegud/nn"
	"github.com/katalvlaran/aegud/token"
)

// tempEps keeps the effective temperature finite until the adaptive weight
// actually reaches zero.
const tempEps = 1e-8

// Enhanced extends the adaptive graph with convergence guarantees: a
// time-dependent adaptive weight w(t) ∈ [0, 1] blends the adaptive rate
// toward the pure-uniform generator as t → maxT, and an optional KL term
// regularizes the loss toward the uniform marginal.
//
// Three weight policies compose by multiplication:
//
//   - two-stage: hard drop to 0 at and after the stage point. This drop
//     applies unconditionally, regardless of the other policies.
//   - asymptotic: smooth 1−(t/maxT)².
//   - controlled decay: exp(−t/τ).
type Enhanced struct {
	*AdaptiveUniform

	maxT float64
}

// NewEnhanced builds an enhanced adaptive graph. All convergence policies
// default to enabled; disable individually via WithoutTwoStage,
// WithoutAsymptotic and WithoutControlledDecay.
func NewEnhanced(dim int, opts ...Option) (*Enhanced, error) {
	base, err := NewAdaptive(dim, opts...)
	if err != nil {
		return nil, err
	}

	return &Enhanced{AdaptiveUniform: base, maxT: DefaultMaxT}, nil
}

// MaxT returns the terminal diffusion time.
func (g *Enhanced) MaxT() float64 { return g.maxT }

// AdaptiveWeight returns w(t), the share of the adaptive rate blended into
// the effective generator at time t. Times are clamped to [0, maxT].
//
// The two-stage drop is checked first and wins outright: at or after the
// stage point the process is pure uniform no matter which other policies
// are active.
func (g *Enhanced) AdaptiveWeight(t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > g.maxT {
		t = g.maxT
	}
	if g.opts.twoStage && t >= g.opts.stagePoint*g.maxT {
		return 0
	}

	w := 1.0
	frac := t / g.maxT
	if g.opts.asymptotic {
		w *= 1 - frac*frac
	}
	if g.opts.controlledDecay {
		w *= math.Exp(-t / g.opts.decayTau)
	}

	return w
}

// RateAt builds the effective rate tensor at time t: the adaptive rate
// blended with the pure-uniform generator by w(t). The result satisfies
// the generator property for any w ∈ [0, 1].
// Complexity: O(size·length·vocab²).
func (g *Enhanced) RateAt(b *token.Batch, t float64) (*Rate, error) {
	rate, err := g.AdaptiveRate(b)
	if err != nil {
		return nil, err
	}
	w := g.AdaptiveWeight(t)
	if w == 1 {
		return rate, nil
	}

	uni, err := NewRate(rate.Batch(), rate.Len(), rate.Vocab())
	if err != nil {
		return nil, err
	}
	uni.uniformGenerator()
	if err := rate.Blend(uni, w); err != nil {
		return nil, err
	}

	return rate, nil
}

// KLFromUniformRate measures how far the rate tensor's implied transition
// behavior sits from uniform: each rate row is softmaxed into a
// distribution, all rows are averaged into one marginal, and the KL
// divergence of that marginal from uniform is returned.
// Complexity: O(batch·length·vocab²).
func KLFromUniformRate(r *Rate) float64 {
	vocab := r.Vocab()
	marginal := make([]float64, vocab)
	dist := make([]float64, vocab)
	rows := 0
	for b := 0; b < r.Batch(); b++ {
		for l := 0; l < r.Len(); l++ {
			for i := 0; i < vocab; i++ {
				row, _ := r.Row(b, l, i)
				nn.Softmax(dist, row)
				nn.AddInto(marginal, dist)
				rows++
			}
		}
	}
	nn.ScaleInto(marginal, 1/float64(rows))

	return entropy.KLFromUniform(token.NewHistogram(marginal))
}

// ScoreEntropyWithKL computes the adaptive score-entropy loss plus the
// time-weighted KL regularizer (t/maxT)²·klWeight·KL(rate‖uniform). The KL
// term is returned separately so trainers can report the breakdown; it is
// zero when KL regularization is disabled.
func (g *Enhanced) ScoreEntropyWithKL(s Scores, sigma, t float64, xt, x0 *token.Batch) ([][]float64, float64, error) {
	loss, err := g.ScoreEntropy(s, sigma, xt, x0)
	if err != nil {
		return nil, 0, err
	}
	if g.opts.klWeight == 0 {
		return loss, 0, nil
	}

	rate, err := g.RateAt(x0, t)
	if err != nil {
		return nil, 0, err
	}
	frac := t / g.maxT
	klTerm := frac * frac * g.opts.klWeight * KLFromUniformRate(rate)

	return loss, klTerm, nil
}

// ConvergenceMetrics snapshots convergence diagnostics of batch b at time
// t: mean normalized entropy and mean KL-from-uniform of the per-sequence
// token histograms, an information-content proxy for residual mutual
// information, and the effective temperature 1/(w(t)+ε).
func (g *Enhanced) ConvergenceMetrics(b *token.Batch, t float64) (Metrics, error) {
	if b.Vocab() != g.dim {
		return Metrics{}, ErrVocabMismatch
	}
	info, err := g.est.InformationContent(b)
	if err != nil {
		return Metrics{}, err
	}

	var m Metrics
	for i := 0; i < b.Size(); i++ {
		h := b.CountSeq(i)
		m.Entropy += entropy.Normalized(h)
		m.KLFromUniform += entropy.KLFromUniform(h)
	}
	m.Entropy /= float64(b.Size())
	m.KLFromUniform /= float64(b.Size())

	remaining := 1 - t/g.maxT
	if remaining < 0 {
		remaining = 0
	}
	m.MutualInformation = nn.Mean(info) * remaining

	w := g.AdaptiveWeight(t)
	if w == 0 {
		m.EffectiveTemperature = math.Inf(1)
	} else {
		m.EffectiveTemperature = 1 / (w + tempEps)
	}

	return m, nil
}
