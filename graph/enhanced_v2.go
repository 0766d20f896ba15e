package graph

import (
	"math"
	"math/rand"

	"github.com/katalvlaran/aegud/nn"
	"github.com/katalvlaran/aegud/token"
)

// Fixed V2 component dimensions and constants.
const (
	// scheduleHidden is the hidden width of the learned schedule net.
	scheduleHidden = 32

	// scheduleGateWidth is the sharpness of the sigmoid gate around the
	// learned transition point.
	scheduleGateWidth = 0.1

	// scheduleTransitionPoint initializes the learned transition point.
	scheduleTransitionPoint = 0.8

	// decayModulation scales the frequency influence on per-token decay.
	decayModulation = 0.5

	// decayMomentum is the EMA momentum of token-frequency tracking.
	decayMomentum = 0.9

	// bottleneckLatent is the latent width of the information bottleneck.
	bottleneckLatent = 8
)

// ScheduleNet is a small learned mapping t → weight multiplier: a 1→h→h→h→1
// MLP squashed by a sigmoid, gated to shut off smoothly past its transition
// point.
type ScheduleNet struct {
	l1, l2, l3, out *nn.Linear

	// transitionPoint is where the gate closes; trainable in principle,
	// fixed after construction here.
	transitionPoint float64
}

// newScheduleNet builds a schedule net with N(0, 0.02) weights.
func newScheduleNet(rng *rand.Rand) (*ScheduleNet, error) {
	l1, err := nn.NewLinear(1, scheduleHidden, rng)
	if err != nil {
		return nil, err
	}
	l2, err := nn.NewLinear(scheduleHidden, scheduleHidden, rng)
	if err != nil {
		return nil, err
	}
	l3, err := nn.NewLinear(scheduleHidden, scheduleHidden, rng)
	if err != nil {
		return nil, err
	}
	out, err := nn.NewLinear(scheduleHidden, 1, rng)
	if err != nil {
		return nil, err
	}

	return &ScheduleNet{
		l1: l1, l2: l2, l3: l3, out: out,
		transitionPoint: scheduleTransitionPoint,
	}, nil
}

// Weight evaluates the learned schedule at time t. The gate
// sigmoid((point−t)/width) forces the multiplier toward 0 once t passes
// the transition point, whatever the net outputs.
func (s *ScheduleNet) Weight(t float64) float64 {
	h, _ := s.l1.Forward([]float64{t})
	for i := range h {
		h[i] = nn.GELU(h[i])
	}
	h, _ = s.l2.Forward(h)
	for i := range h {
		h[i] = nn.GELU(h[i])
	}
	h, _ = s.l3.Forward(h)
	for i := range h {
		h[i] = nn.GELU(h[i])
	}
	h, _ = s.out.Forward(h)

	gate := nn.Sigmoid((s.transitionPoint - t) / scheduleGateWidth)

	return nn.Sigmoid(h[0]) * gate
}

// VocabDecay assigns each token its own decay time constant from two
// signals: a small learned head over the token's embedding, and a tracked
// empirical frequency prior. Frequent or high-modulation tokens keep
// structure longer, rare ones diffuse away first.
type VocabDecay struct {
	tau   float64
	freqs []float64
	mods  []float64 // sigmoid(head(embed[tok])), fixed at construction
}

// newVocabDecay starts all frequencies at uniform and precomputes the
// per-token embedding modulation.
func newVocabDecay(embed *nn.Embedding, tau float64, rng *rand.Rand) (*VocabDecay, error) {
	vocab := embed.Vocab()
	head, err := nn.NewLinear(embed.Dim(), 1, rng)
	if err != nil {
		return nil, err
	}

	freqs := make([]float64, vocab)
	mods := make([]float64, vocab)
	for i := range freqs {
		freqs[i] = 1 / float64(vocab)
		out, err := head.Forward(embed.Row(i))
		if err != nil {
			return nil, err
		}
		mods[i] = nn.Sigmoid(out[0])
	}

	return &VocabDecay{tau: tau, freqs: freqs, mods: mods}, nil
}

// UpdateFrequencies folds batch b's token histogram into the tracked
// frequencies with EMA momentum.
func (d *VocabDecay) UpdateFrequencies(b *token.Batch) {
	probs := b.Count().Probs()
	for i := range d.freqs {
		d.freqs[i] = decayMomentum*d.freqs[i] + (1-decayMomentum)*probs[i]
	}
}

// Weight returns the per-token decay multiplier at time t:
// exp(−t/τ_tok), where τ_tok stretches τ by the embedding modulation
// (0.5..1.5) and the frequency prior 1+mod·log1p(freq·V). Tokens above
// uniform frequency, or favored by the learned head, decay slower.
func (d *VocabDecay) Weight(tok int, t float64) float64 {
	effTau := d.tau * (0.5 + d.mods[tok]) *
		(1 + decayModulation*math.Log1p(d.freqs[tok]*float64(len(d.freqs))))

	return math.Exp(-t / effTau)
}

// Bottleneck is a linear variational autoencoder over token embeddings
// used as an auxiliary information-budget loss.
type Bottleneck struct {
	enc, dec *nn.Linear
	beta     float64
}

// newBottleneck builds the encoder/decoder pair.
func newBottleneck(embedDim int, beta float64, rng *rand.Rand) (*Bottleneck, error) {
	enc, err := nn.NewLinear(embedDim, bottleneckLatent, rng)
	if err != nil {
		return nil, err
	}
	dec, err := nn.NewLinear(bottleneckLatent, embedDim, rng)
	if err != nil {
		return nil, err
	}

	return &Bottleneck{enc: enc, dec: dec, beta: beta}, nil
}

// InfoLoss returns the mean per-vector bottleneck objective over vecs:
// reconstruction MSE plus beta times the variational KL proxy 0.5·Σμ².
func (b *Bottleneck) InfoLoss(vecs [][]float64) float64 {
	if len(vecs) == 0 {
		return 0
	}
	var total float64
	for _, x := range vecs {
		mu, _ := b.enc.Forward(x)
		xhat, _ := b.dec.Forward(mu)

		var mse float64
		for i := range x {
			d := x[i] - xhat[i]
			mse += d * d
		}
		mse /= float64(len(x))

		var klvar float64
		for _, m := range mu {
			klvar += m * m
		}
		klvar *= 0.5

		total += mse + b.beta*klvar
	}

	return total / float64(len(vecs))
}

// EnhancedV2 layers three further mechanisms on the enhanced graph: a
// learned convergence schedule, vocabulary-aware per-token decay, an
// information-bottleneck auxiliary loss, and the relaxed epsilon-ball
// convergence check. Each mechanism is opt-in through its With* option.
type EnhancedV2 struct {
	*Enhanced

	sched  *ScheduleNet
	decay  *VocabDecay
	bottle *Bottleneck
}

// NewEnhancedV2 builds a V2 graph. Components requested via
// WithLearnedSchedule, WithVocabularyDecay and WithBottleneck are
// instantiated from the shared seed; the rest stay nil and their code
// paths collapse to the plain enhanced behavior.
func NewEnhancedV2(dim int, opts ...Option) (*EnhancedV2, error) {
	base, err := NewEnhanced(dim, opts...)
	if err != nil {
		return nil, err
	}

	g := &EnhancedV2{Enhanced: base}
	rng := rand.New(rand.NewSource(base.opts.seed))
	if base.opts.learnedSchedule {
		if g.sched, err = newScheduleNet(rng); err != nil {
			return nil, err
		}
	}
	if base.opts.vocabDecay {
		if g.decay, err = newVocabDecay(g.est.Embedding(), base.opts.decayTau, rng); err != nil {
			return nil, err
		}
	}
	if base.opts.bottleneck {
		embedDim := len(g.est.Embedding().Row(0))
		if g.bottle, err = newBottleneck(embedDim, base.opts.bottleneckBeta, rng); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// AdaptiveWeight composes the enhanced policies with the learned schedule.
// The two-stage hard drop (inside the enhanced weight) still wins: a zero
// base weight stays zero.
func (g *EnhancedV2) AdaptiveWeight(t float64) float64 {
	w := g.Enhanced.AdaptiveWeight(t)
	if w == 0 || g.sched == nil {
		return w
	}

	return w * g.sched.Weight(t)
}

// RateAt builds the effective rate at time t. With vocabulary decay active
// the blend weight varies per source token; otherwise rows share w(t).
func (g *EnhancedV2) RateAt(b *token.Batch, t float64) (*Rate, error) {
	w := g.AdaptiveWeight(t)
	rate, err := g.AdaptiveRate(b)
	if err != nil {
		return nil, err
	}
	if w == 1 && g.decay == nil {
		return rate, nil
	}

	uniRow := make([]float64, g.dim)
	u := 1 / float64(g.dim)
	diag := -float64(g.dim-1) / float64(g.dim)
	for i := 0; i < rate.Batch(); i++ {
		for j := 0; j < rate.Len(); j++ {
			for src := 0; src < g.dim; src++ {
				wTok := w
				if g.decay != nil {
					wTok *= g.decay.Weight(src, t)
				}
				row, err := rate.Row(i, j, src)
				if err != nil {
					return nil, err
				}
				for k := range uniRow {
					uniRow[k] = u
				}
				uniRow[src] = diag
				for k := range row {
					row[k] = wTok*row[k] + (1-wTok)*uniRow[k]
				}
			}
		}
	}

	return rate, nil
}

// ScoreEntropyWithKL computes the V2 loss breakdown: the adaptive
// score-entropy loss, plus an auxiliary scalar combining the time-weighted
// KL regularizer and the bottleneck information loss. Token frequencies
// are folded in from the clean batch before the rate is built.
func (g *EnhancedV2) ScoreEntropyWithKL(s Scores, sigma, t float64, xt, x0 *token.Batch) ([][]float64, float64, error) {
	if g.decay != nil {
		g.decay.UpdateFrequencies(x0)
	}

	loss, err := g.ScoreEntropy(s, sigma, xt, x0)
	if err != nil {
		return nil, 0, err
	}

	var aux float64
	if g.opts.klWeight > 0 {
		rate, err := g.RateAt(x0, t)
		if err != nil {
			return nil, 0, err
		}
		frac := t / g.maxT
		aux += frac * frac * g.opts.klWeight * KLFromUniformRate(rate)
	}
	if g.bottle != nil {
		vecs := make([][]float64, 0, x0.Size()*x0.Len())
		for i := 0; i < x0.Size(); i++ {
			for j := 0; j < x0.Len(); j++ {
				vecs = append(vecs, g.est.Embedding().Row(x0.At(i, j)))
			}
		}
		aux += g.bottle.InfoLoss(vecs)
	}

	return loss, aux, nil
}

// CheckRelaxedConvergence tests whether batch b's empirical token
// distribution sits inside the epsilon ball around uniform: the largest
// per-token deviation must be strictly below relaxedEps·(1/V). Returns the
// verdict alongside the observed maximum deviation.
func (g *EnhancedV2) CheckRelaxedConvergence(b *token.Batch) (bool, float64, error) {
	if b.Vocab() != g.dim {
		return false, 0, ErrVocabMismatch
	}
	probs := b.Count().Probs()
	u := 1 / float64(g.dim)
	var maxDev float64
	for _, p := range probs {
		if d := math.Abs(p - u); d > maxDev {
			maxDev = d
		}
	}

	return maxDev < g.opts.relaxedEps*u, maxDev, nil
}

// ConvergenceMetrics extends the enhanced diagnostics with the relaxed
// convergence verdict and recomputes the effective temperature from the
// V2 weight (the learned schedule shifts it).
func (g *EnhancedV2) ConvergenceMetrics(b *token.Batch, t float64) (Metrics, error) {
	m, err := g.Enhanced.ConvergenceMetrics(b, t)
	if err != nil {
		return Metrics{}, err
	}

	converged, maxDev, err := g.CheckRelaxedConvergence(b)
	if err != nil {
		return Metrics{}, err
	}
	m.RelaxedConverged = converged
	m.MaxDeviation = maxDev

	w := g.AdaptiveWeight(t)
	if w == 0 {
		m.EffectiveTemperature = math.Inf(1)
	} else {
		m.EffectiveTemperature = 1 / (w + tempEps)
	}

	return m, nil
}
