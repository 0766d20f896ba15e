package graph

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/aegud/entropy"
	"github.com/katalvlaran/aegud/token"
	"github.com/katalvlaran/aegud/transition"
)

// AdaptiveUniform keeps the uniform forward-corruption process but shapes
// the LOSS through an entropy-modulated rate tensor: high-entropy positions
// earn larger transition rates, pulling training signal toward the regions
// worth denoising.
//
// Forward sampling stays uniform on purpose. The adaptive rate informs the
// objective, not the corruption kernel.
type AdaptiveUniform struct {
	dim  int
	opts Options

	est   *entropy.Estimator
	trans *transition.Matrix
}

// NewAdaptive builds an adaptive-uniform graph over a vocabulary of size
// dim. Construction proceeds in three stages:
//
//	Stage 1 (Validate): dim must be positive and any requested sparsity
//	  must not exceed it.
//	Stage 2 (Prepare): apply options over defaults.
//	Stage 3 (Finalize): instantiate the entropy estimator and the learned
//	  transition matrix with the shared seed.
func NewAdaptive(dim int, opts ...Option) (*AdaptiveUniform, error) {
	if dim <= 0 {
		return nil, ErrBadVocab
	}
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.sparsityK > dim {
		return nil, transition.ErrBadTopK
	}

	est, err := entropy.NewEstimator(dim, entropy.WithSeed(o.seed))
	if err != nil {
		return nil, err
	}
	trans, err := transition.New(dim, transition.WithSeed(o.seed))
	if err != nil {
		return nil, err
	}

	return &AdaptiveUniform{dim: dim, opts: o, est: est, trans: trans}, nil
}

// Dim returns the vocabulary size.
func (g *AdaptiveUniform) Dim() int { return g.dim }

// Estimator exposes the entropy estimator for diagnostics and auxiliary
// losses.
func (g *AdaptiveUniform) Estimator() *entropy.Estimator { return g.est }

// Transition exposes the learned transition matrix.
func (g *AdaptiveUniform) Transition() *transition.Matrix { return g.trans }

// SampleTransition corrupts b uniformly with probability 1−exp(−σ) per
// position, identical to the baseline. See the type doc for why the
// adaptive rate does not drive sampling.
func (g *AdaptiveUniform) SampleTransition(b *token.Batch, sigma float64, rng *rand.Rand) (*token.Batch, error) {
	return sampleUniformCorruption(g.dim, b, sigma, rng)
}

// TransitionRow returns the uniform single-step transition row.
func (g *AdaptiveUniform) TransitionRow(cur int, sigma float64) ([]float64, error) {
	return uniformTransitionRow(g.dim, cur, sigma)
}

// SampleLimit draws from the uniform limiting distribution.
func (g *AdaptiveUniform) SampleLimit(size, length int, rng *rand.Rand) (*token.Batch, error) {
	return token.Random(g.dim, size, length, rng)
}

// transitionProbs returns the (possibly sparse) learned transition matrix
// for the given mean entropy.
func (g *AdaptiveUniform) transitionProbs(meanEntropy float64) (*mat.Dense, error) {
	if g.opts.sparsityK > 0 {
		return g.trans.SparseTopK(g.opts.sparsityK)
	}

	return g.trans.Probs(meanEntropy), nil
}

// AdaptiveRate builds the per-position rate tensor for batch b.
//
// Each row (seq, pos, source) copies the learned transition row scaled by
// rateScale·(1+entropyScale·score(seq,pos)), with the diagonal fixed so the
// row sums to zero. The returned tensor satisfies the generator property.
// Complexity: O(size·length·vocab²).
func (g *AdaptiveUniform) AdaptiveRate(b *token.Batch) (*Rate, error) {
	if b.Vocab() != g.dim {
		return nil, ErrVocabMismatch
	}
	scores, err := g.est.Scores(b)
	if err != nil {
		return nil, err
	}

	var meanEntropy float64
	for i := range scores {
		for j := range scores[i] {
			meanEntropy += scores[i][j]
		}
	}
	meanEntropy /= float64(b.Size() * b.Len())

	probs, err := g.transitionProbs(meanEntropy)
	if err != nil {
		return nil, err
	}

	rate, err := NewRate(b.Size(), b.Len(), g.dim)
	if err != nil {
		return nil, err
	}
	for i := 0; i < b.Size(); i++ {
		for j := 0; j < b.Len(); j++ {
			factor := g.opts.rateScale * (1 + g.opts.entropyScale*scores[i][j])
			for src := 0; src < g.dim; src++ {
				if err := rate.SetRow(i, j, src, probs.RawRowView(src), factor); err != nil {
					return nil, err
				}
			}
		}
	}

	return rate, nil
}

// SamplePositions draws k positions of sequence i in b, weighted by their
// entropy scores: high-entropy positions are proposed for corruption more
// often. Draws are independent, so positions may repeat.
// Complexity: O(length·(k+hidden²)).
func (g *AdaptiveUniform) SamplePositions(b *token.Batch, i, k int, rng *rand.Rand) ([]int, error) {
	if b.Vocab() != g.dim {
		return nil, ErrVocabMismatch
	}
	if i < 0 || i >= b.Size() || k < 1 {
		return nil, token.ErrShapeMismatch
	}
	scores, err := g.est.Scores(b)
	if err != nil {
		return nil, err
	}

	weights := scores[i]
	var total float64
	for _, w := range weights {
		total += w
	}

	out := make([]int, k)
	for n := range out {
		if total == 0 {
			out[n] = rng.Intn(b.Len())
			continue
		}
		target := rng.Float64() * total
		var acc float64
		for j, w := range weights {
			acc += w
			if target < acc || j == b.Len()-1 {
				out[n] = j
				break
			}
		}
	}

	return out, nil
}

// ScoreEntropy computes the uniform score-entropy loss scaled per sequence
// by (0.5+info)·(0.5+meanScore), where info is the estimator's information
// content of the CLEAN batch and meanScore the mean per-position entropy of
// the NOISED batch. Sequences the estimator deems informative, corrupted
// into high-entropy states, contribute more.
func (g *AdaptiveUniform) ScoreEntropy(s Scores, sigma float64, xt, x0 *token.Batch) ([][]float64, error) {
	base, err := scoreEntropyBase(g.dim, s, sigma, xt, x0)
	if err != nil {
		return nil, err
	}

	info, err := g.est.InformationContent(x0)
	if err != nil {
		return nil, err
	}
	noisy, err := g.est.SequenceScores(xt)
	if err != nil {
		return nil, err
	}

	for i := range base {
		scale := (0.5 + info[i]) * (0.5 + noisy[i])
		for j := range base[i] {
			base[i][j] *= scale
		}
	}

	return base, nil
}
