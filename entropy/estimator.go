package entropy

import (
	"errors"
	"math"
	"math/rand"

	"github.com/katalvlaran/aegud/nn"
	"github.com/katalvlaran/aegud/token"
)

// Sentinel errors for estimator operations.
var (
	// ErrBadVocab indicates a non-positive vocabulary size at construction.
	ErrBadVocab = errors.New("entropy: vocabulary size must be > 0")

	// ErrVocabMismatch indicates a batch whose vocabulary differs from the
	// estimator's.
	ErrVocabMismatch = errors.New("entropy: batch vocabulary does not match estimator")
)

// Estimator maps token sequences to per-position information scores in
// [0,1]. Parameters are fixed at construction (seeded init); all methods
// are pure functions over them.
type Estimator struct {
	vocab  int
	hidden int
	window int

	embed *nn.Embedding
	norm  *nn.LayerNorm
	head1 *nn.Linear // hidden -> hidden/2
	head2 *nn.Linear // hidden/2 -> 1
}

// NewEstimator constructs an Estimator for the given vocabulary.
// Stage 1 (Validate): vocab > 0.
// Stage 2 (Prepare): gather options, seed rng, allocate layers.
// Stage 3 (Finalize): return the estimator or a construction error.
func NewEstimator(vocab int, opts ...Option) (*Estimator, error) {
	if vocab <= 0 {
		return nil, ErrBadVocab
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	rng := rand.New(rand.NewSource(o.seed))

	embed, err := nn.NewEmbedding(vocab, o.hiddenDim, rng)
	if err != nil {
		return nil, err
	}
	norm, err := nn.NewLayerNorm(o.hiddenDim)
	if err != nil {
		return nil, err
	}
	half := o.hiddenDim / 2
	if half == 0 {
		half = 1
	}
	head1, err := nn.NewLinear(o.hiddenDim, half, rng)
	if err != nil {
		return nil, err
	}
	head2, err := nn.NewLinear(half, 1, rng)
	if err != nil {
		return nil, err
	}

	return &Estimator{
		vocab:  vocab,
		hidden: o.hiddenDim,
		window: o.window,
		embed:  embed,
		norm:   norm,
		head1:  head1,
		head2:  head2,
	}, nil
}

// Vocab returns the estimator's vocabulary size.
func (e *Estimator) Vocab() int { return e.vocab }

// Embedding exposes the token embedding table for callers that reuse the
// estimator's token vectors (auxiliary losses, diagnostics).
func (e *Estimator) Embedding() *nn.Embedding { return e.embed }

// Scores returns per-position scores, shape size×length, each in [0,1].
// Position i's context is its embedding plus a sinusoidal positional code
// plus the mean embedding of its ±window neighborhood, layer-normalized and
// squashed through the bounded head.
// Complexity: O(size·length·(window+hidden²)).
func (e *Estimator) Scores(b *token.Batch) ([][]float64, error) {
	if b.Vocab() != e.vocab {
		return nil, ErrVocabMismatch
	}
	size, length := b.Size(), b.Len()
	out := make([][]float64, size)
	ctx := make([]float64, e.hidden)
	for i := 0; i < size; i++ {
		out[i] = make([]float64, length)
		for j := 0; j < length; j++ {
			e.contextVec(b, i, j, ctx)
			normed, err := e.norm.Forward(ctx)
			if err != nil {
				return nil, err
			}
			h, err := e.head1.Forward(normed)
			if err != nil {
				return nil, err
			}
			for k, v := range h {
				h[k] = nn.GELU(v)
			}
			s, err := e.head2.Forward(h)
			if err != nil {
				return nil, err
			}
			out[i][j] = nn.Sigmoid(s[0])
		}
	}

	return out, nil
}

// contextVec fills dst with embed(tok) + positional code + window mean.
func (e *Estimator) contextVec(b *token.Batch, i, j int, dst []float64) {
	row := e.embed.Row(b.At(i, j))
	copy(dst, row)

	// Sinusoidal positional code, transformer-style.
	for k := 0; k < e.hidden; k++ {
		freq := math.Pow(10000, -float64(k/2*2)/float64(e.hidden))
		if k%2 == 0 {
			dst[k] += math.Sin(float64(j) * freq)
		} else {
			dst[k] += math.Cos(float64(j) * freq)
		}
	}

	if e.window == 0 {
		return
	}
	lo, hi := j-e.window, j+e.window
	if lo < 0 {
		lo = 0
	}
	if hi >= b.Len() {
		hi = b.Len() - 1
	}
	// Neighbor sums are unscaled; the following LayerNorm absorbs magnitude.
	for p := lo; p <= hi; p++ {
		if p == j {
			continue
		}
		nb := e.embed.Row(b.At(i, p))
		for k, v := range nb {
			dst[k] += v
		}
	}
}

// SequenceScores returns the mean per-position score of each sequence.
func (e *Estimator) SequenceScores(b *token.Batch) ([]float64, error) {
	scores, err := e.Scores(b)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(scores))
	for i, row := range scores {
		out[i] = nn.Mean(row)
	}

	return out, nil
}

// InformationContent estimates per-sequence information in [0,1] as the
// equal blend of the sequence's normalized histogram entropy and its mean
// contextual score.
// Complexity: O(size·(length·hidden² + vocab)).
func (e *Estimator) InformationContent(b *token.Batch) ([]float64, error) {
	ctxScores, err := e.SequenceScores(b)
	if err != nil {
		return nil, err
	}
	out := make([]float64, b.Size())
	for i := range out {
		freq := Normalized(b.CountSeq(i))
		out[i] = 0.5*freq + 0.5*ctxScores[i]
	}

	return out, nil
}
