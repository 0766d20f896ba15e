package nn

import (
	"errors"
	"math"
	"math/rand"
)

// initStd is the standard deviation of the Gaussian parameter init,
// matching the usual 0.02 embedding-scale convention.
const initStd = 0.02

// Sentinel errors for layer construction and forward passes.
var (
	// ErrBadDimensions indicates a non-positive layer dimension.
	ErrBadDimensions = errors.New("nn: dimensions must be > 0")

	// ErrDimensionMismatch indicates an input vector of the wrong length.
	ErrDimensionMismatch = errors.New("nn: input dimension mismatch")

	// ErrTokenRange indicates an embedding lookup outside [0, vocab).
	ErrTokenRange = errors.New("nn: token id out of range")
)

// Linear is a dense affine map y = Wx + b with W of shape out×in.
type Linear struct {
	in, out int
	w       []float64 // row-major out×in
	b       []float64 // length out
}

// NewLinear creates a Linear layer with N(0, 0.02) weights and zero bias.
// Complexity: O(in·out).
func NewLinear(in, out int, rng *rand.Rand) (*Linear, error) {
	if in <= 0 || out <= 0 {
		return nil, ErrBadDimensions
	}
	w := make([]float64, in*out)
	for i := range w {
		w[i] = rng.NormFloat64() * initStd
	}

	return &Linear{in: in, out: out, w: w, b: make([]float64, out)}, nil
}

// In returns the input dimension.
func (l *Linear) In() int { return l.in }

// Out returns the output dimension.
func (l *Linear) Out() int { return l.out }

// Forward applies the affine map to x.
// Complexity: O(in·out).
func (l *Linear) Forward(x []float64) ([]float64, error) {
	if len(x) != l.in {
		return nil, ErrDimensionMismatch
	}
	y := make([]float64, l.out)
	for o := 0; o < l.out; o++ {
		sum := l.b[o]
		row := l.w[o*l.in : (o+1)*l.in]
		for i, xi := range x {
			sum += row[i] * xi
		}
		y[o] = sum
	}

	return y, nil
}

// Embedding maps token ids to dense dim-vectors.
type Embedding struct {
	vocab, dim int
	w          []float64 // row-major vocab×dim
}

// NewEmbedding creates an Embedding table with N(0, 0.02) rows.
// Complexity: O(vocab·dim).
func NewEmbedding(vocab, dim int, rng *rand.Rand) (*Embedding, error) {
	if vocab <= 0 || dim <= 0 {
		return nil, ErrBadDimensions
	}
	w := make([]float64, vocab*dim)
	for i := range w {
		w[i] = rng.NormFloat64() * initStd
	}

	return &Embedding{vocab: vocab, dim: dim, w: w}, nil
}

// Vocab returns the vocabulary size.
func (e *Embedding) Vocab() int { return e.vocab }

// Dim returns the embedding dimension.
func (e *Embedding) Dim() int { return e.dim }

// Lookup returns the embedding row for token id, backed by layer storage.
// Callers must treat the returned slice as read-only.
func (e *Embedding) Lookup(id int) ([]float64, error) {
	if id < 0 || id >= e.vocab {
		return nil, ErrTokenRange
	}

	return e.w[id*e.dim : (id+1)*e.dim], nil
}

// Row is Lookup without the bounds check, for hot inner loops that have
// already validated their batch. Panics on out-of-range ids.
func (e *Embedding) Row(id int) []float64 {
	return e.w[id*e.dim : (id+1)*e.dim]
}

// RowNorms returns the L2 norm of every embedding row; used by the
// transition-smoothness regularizer.
// Complexity: O(vocab·dim).
func (e *Embedding) RowNorms() []float64 {
	norms := make([]float64, e.vocab)
	for i := 0; i < e.vocab; i++ {
		var ss float64
		for _, v := range e.w[i*e.dim : (i+1)*e.dim] {
			ss += v * v
		}
		norms[i] = math.Sqrt(ss)
	}

	return norms
}

// LayerNorm normalizes a vector to zero mean and unit variance, then applies
// a learned scale and shift (initialized to identity).
type LayerNorm struct {
	dim         int
	gamma, beta []float64
}

// NewLayerNorm creates an identity-initialized LayerNorm over dim features.
func NewLayerNorm(dim int) (*LayerNorm, error) {
	if dim <= 0 {
		return nil, ErrBadDimensions
	}
	gamma := make([]float64, dim)
	for i := range gamma {
		gamma[i] = 1
	}

	return &LayerNorm{dim: dim, gamma: gamma, beta: make([]float64, dim)}, nil
}

// Forward normalizes x in a fresh slice.
// Complexity: O(dim).
func (n *LayerNorm) Forward(x []float64) ([]float64, error) {
	if len(x) != n.dim {
		return nil, ErrDimensionMismatch
	}
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(n.dim)

	var variance float64
	for _, v := range x {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n.dim)
	inv := 1 / math.Sqrt(variance+normEps)

	y := make([]float64, n.dim)
	for i, v := range x {
		y[i] = (v-mean)*inv*n.gamma[i] + n.beta[i]
	}

	return y, nil
}

// normEps keeps the variance denominator strictly positive.
const normEps = 1e-8
