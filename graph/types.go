package graph

import (
	"errors"
	"math/rand"

	"github.com/katalvlaran/aegud/token"
)

// Sentinel errors shared by all graph variants.
var (
	// ErrBadVocab indicates a non-positive vocabulary size at construction.
	ErrBadVocab = errors.New("graph: vocabulary size must be > 0")

	// ErrBadSigma indicates a negative (or, where division requires it,
	// non-positive) noise level.
	ErrBadSigma = errors.New("graph: sigma must be non-negative")

	// ErrVocabMismatch indicates a batch whose vocabulary differs from the
	// graph's.
	ErrVocabMismatch = errors.New("graph: batch vocabulary does not match graph")

	// ErrScoreShape indicates model scores whose shape does not match the
	// batch and vocabulary.
	ErrScoreShape = errors.New("graph: score shape does not match batch")
)

// Scores is the output of an external scoring model: per sequence, per
// position, a vector of vocab scores (interpreted as log score ratios).
type Scores [][][]float64

// validate checks that s has shape size×length×vocab.
func (s Scores) validate(size, length, vocab int) error {
	if len(s) != size {
		return ErrScoreShape
	}
	for _, seq := range s {
		if len(seq) != length {
			return ErrScoreShape
		}
		for _, row := range seq {
			if len(row) != vocab {
				return ErrScoreShape
			}
		}
	}

	return nil
}

// Graph is the forward-diffusion model contract consumed by trainers and
// validators. Implementations are single-owner objects: nothing is shared
// across experiments except read-only configuration.
type Graph interface {
	// Dim returns the vocabulary size.
	Dim() int

	// SampleTransition draws the noised batch x_t given x_0 at noise level
	// sigma, corrupting each position independently.
	SampleTransition(b *token.Batch, sigma float64, rng *rand.Rand) (*token.Batch, error)

	// TransitionRow returns the transition-probability row for a source
	// token at noise level sigma (row sums to 1).
	TransitionRow(cur int, sigma float64) ([]float64, error)

	// SampleLimit draws a batch from the limiting (stationary) distribution.
	SampleLimit(size, length int, rng *rand.Rand) (*token.Batch, error)

	// ScoreEntropy computes the per-position score-entropy loss of model
	// scores against the clean batch x0 at noise level sigma.
	ScoreEntropy(s Scores, sigma float64, xt, x0 *token.Batch) ([][]float64, error)
}

// Metrics is one convergence-diagnostic snapshot of a graph at time t.
type Metrics struct {
	// MutualInformation is the crude information-content proxy scaled by
	// remaining time.
	MutualInformation float64

	// KLFromUniform is the mean per-sequence KL divergence of the token
	// histogram from uniform.
	KLFromUniform float64

	// Entropy is the mean per-sequence normalized Shannon entropy.
	Entropy float64

	// EffectiveTemperature is 1/(w+ε) for adaptive weight w; +Inf once the
	// process is forced pure-uniform.
	EffectiveTemperature float64

	// RelaxedConverged reports the relaxed epsilon-ball convergence check
	// (EnhancedV2 only; false elsewhere).
	RelaxedConverged bool

	// MaxDeviation is the largest per-token deviation from the uniform
	// probability observed by the relaxed check.
	MaxDeviation float64
}
