package graph

import (
	"math"
	"math/rand"

	"github.com/katalvlaran/aegud/token"
)

// ratioClamp bounds exp(score) before the loss logarithm, and logEps keeps
// the logarithm argument strictly positive.
const (
	ratioClamp = 100.0
	logEps     = 1e-10
)

// Uniform is the classical uniform-corruption diffusion graph: every token
// independently resamples uniformly with probability 1−exp(−σ).
type Uniform struct {
	dim int
}

// NewUniform constructs the uniform baseline over a vocabulary of size dim.
func NewUniform(dim int) (*Uniform, error) {
	if dim <= 0 {
		return nil, ErrBadVocab
	}

	return &Uniform{dim: dim}, nil
}

// Dim returns the vocabulary size.
func (g *Uniform) Dim() int { return g.dim }

// SampleTransition corrupts each position of b independently: with
// probability 1−exp(−σ) the token is replaced by a uniform draw.
// Complexity: O(size·length).
func (g *Uniform) SampleTransition(b *token.Batch, sigma float64, rng *rand.Rand) (*token.Batch, error) {
	return sampleUniformCorruption(g.dim, b, sigma, rng)
}

// TransitionRow returns the single-position transition-probability row from
// source token cur at noise level sigma: off-diagonal (1−exp(−σ))/V, the
// diagonal holding the remaining mass.
func (g *Uniform) TransitionRow(cur int, sigma float64) ([]float64, error) {
	return uniformTransitionRow(g.dim, cur, sigma)
}

// SampleLimit draws size×length tokens from the uniform limiting
// distribution.
func (g *Uniform) SampleLimit(size, length int, rng *rand.Rand) (*token.Batch, error) {
	return token.Random(g.dim, size, length, rng)
}

// ScoreEntropy computes the per-position uniform score-entropy loss:
// −log(exp(score[x0]) / Σ exp(score)) / expm1(σ), with exponentials clamped
// to [0, ratioClamp] and logEps added before the logarithm.
func (g *Uniform) ScoreEntropy(s Scores, sigma float64, xt, x0 *token.Batch) ([][]float64, error) {
	return scoreEntropyBase(g.dim, s, sigma, xt, x0)
}

// sampleUniformCorruption is the shared forward-sampling path of every
// graph variant. The adaptive machinery deliberately does NOT drive this:
// the research method applies adaptivity to the loss only, and that
// documented inconsistency is preserved here rather than silently fixed.
func sampleUniformCorruption(dim int, b *token.Batch, sigma float64, rng *rand.Rand) (*token.Batch, error) {
	if b.Vocab() != dim {
		return nil, ErrVocabMismatch
	}
	if sigma < 0 {
		return nil, ErrBadSigma
	}
	moveChance := 1 - math.Exp(-sigma)
	out := b.Clone()
	for i := 0; i < out.Size(); i++ {
		for j := 0; j < out.Len(); j++ {
			if rng.Float64() < moveChance {
				if err := out.Set(i, j, rng.Intn(dim)); err != nil {
					return nil, err
				}
			}
		}
	}

	return out, nil
}

// uniformTransitionRow builds the uniform single-step transition row.
func uniformTransitionRow(dim, cur int, sigma float64) ([]float64, error) {
	if cur < 0 || cur >= dim {
		return nil, token.ErrTokenRange
	}
	if sigma < 0 {
		return nil, ErrBadSigma
	}
	off := (1 - math.Exp(-sigma)) / float64(dim)
	row := make([]float64, dim)
	var sum float64
	for j := range row {
		if j == cur {
			continue
		}
		row[j] = off
		sum += off
	}
	row[cur] = 1 - sum

	return row, nil
}

// scoreEntropyBase is the uniform score-entropy loss shared by all graphs.
func scoreEntropyBase(dim int, s Scores, sigma float64, xt, x0 *token.Batch) ([][]float64, error) {
	if xt.Vocab() != dim || x0.Vocab() != dim {
		return nil, ErrVocabMismatch
	}
	if xt.Size() != x0.Size() || xt.Len() != x0.Len() {
		return nil, token.ErrShapeMismatch
	}
	if sigma <= 0 {
		return nil, ErrBadSigma
	}
	if err := s.validate(x0.Size(), x0.Len(), dim); err != nil {
		return nil, err
	}

	esigm1 := math.Expm1(sigma)
	loss := make([][]float64, x0.Size())
	for i := range loss {
		loss[i] = make([]float64, x0.Len())
		for j := range loss[i] {
			var sum float64
			var target float64
			for k, sc := range s[i][j] {
				ratio := math.Exp(sc)
				if ratio > ratioClamp {
					ratio = ratioClamp
				}
				sum += ratio
				if k == x0.At(i, j) {
					target = ratio
				}
			}
			loss[i][j] = -math.Log(target/sum+logEps) / esigm1
		}
	}

	return loss, nil
}
