package transition

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/aegud/nn"
)

// Sentinel errors for transition-matrix operations.
var (
	// ErrBadVocab indicates a non-positive vocabulary size at construction.
	ErrBadVocab = errors.New("transition: vocabulary size must be > 0")

	// ErrBadTopK indicates a sparsification k outside [1, vocab].
	ErrBadTopK = errors.New("transition: top-k must be in [1, vocab]")

	// ErrNotStochastic indicates a matrix row that does not sum to 1 within
	// the configured epsilon.
	ErrNotStochastic = errors.New("transition: matrix row does not sum to 1")
)

// Matrix holds learned similarity embeddings and produces row-stochastic
// vocab×vocab transition matrices. Parameters are fixed at construction;
// Probs and SparseTopK are pure functions over them.
type Matrix struct {
	dim         int
	hidden      int
	temperature float64
	selfBias    float64
	embed       *mat.Dense // dim×hidden similarity embeddings
}

// New constructs a Matrix over a vocabulary of size dim.
// Stage 1 (Validate): dim > 0.
// Stage 2 (Prepare): gather options, seed rng, draw N(0, 0.02) embeddings.
// Stage 3 (Finalize): return the matrix.
// Complexity: O(dim·hidden).
func New(dim int, opts ...Option) (*Matrix, error) {
	if dim <= 0 {
		return nil, ErrBadVocab
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	rng := rand.New(rand.NewSource(o.seed))
	data := make([]float64, dim*o.hiddenDim)
	for i := range data {
		data[i] = rng.NormFloat64() * 0.02
	}

	return &Matrix{
		dim:         dim,
		hidden:      o.hiddenDim,
		temperature: o.temperature,
		selfBias:    o.selfBias,
		embed:       mat.NewDense(dim, o.hiddenDim, data),
	}, nil
}

// Dim returns the vocabulary size.
func (m *Matrix) Dim() int { return m.dim }

// EmbeddingRowNorms returns the L2 norm of each similarity embedding row,
// consumed by the transition-smoothness regularizer.
// Complexity: O(dim·hidden).
func (m *Matrix) EmbeddingRowNorms() []float64 {
	norms := make([]float64, m.dim)
	for i := 0; i < m.dim; i++ {
		norms[i] = mat.Norm(m.embed.RowView(i), 2)
	}

	return norms
}

// Probs returns the dense vocab×vocab transition-probability matrix.
//
// Similarity is the scaled embedding Gram matrix E·Eᵀ/√hidden with the
// self-transition bias added on the diagonal; the softmax temperature is
// temperature·(1+meanEntropy), so higher entropy flattens transitions.
// Invariant: every returned row sums to 1.
// Complexity: O(dim²·hidden).
func (m *Matrix) Probs(meanEntropy float64) *mat.Dense {
	if meanEntropy < 0 {
		meanEntropy = 0
	}
	sim := mat.NewDense(m.dim, m.dim, nil)
	sim.Mul(m.embed, m.embed.T())
	sim.Scale(1/math.Sqrt(float64(m.hidden)), sim)
	for i := 0; i < m.dim; i++ {
		sim.Set(i, i, sim.At(i, i)+m.selfBias)
	}

	temp := m.temperature * (1 + meanEntropy)
	probs := mat.NewDense(m.dim, m.dim, nil)
	row := make([]float64, m.dim)
	for i := 0; i < m.dim; i++ {
		copy(row, sim.RawRowView(i))
		for j := range row {
			row[j] /= temp
		}
		nn.Softmax(row, row)
		probs.SetRow(i, row)
	}

	return probs
}

// SparseTopK returns the transition matrix with all but the k largest
// entries of each row zeroed, then renormalized so rows sum to 1 again.
// Entropy modulation is not applied on the sparse path.
// Complexity: O(dim²·(hidden + log dim)).
func (m *Matrix) SparseTopK(k int) (*mat.Dense, error) {
	if k < 1 || k > m.dim {
		return nil, ErrBadTopK
	}
	dense := m.Probs(0)
	if k == m.dim {
		return dense, nil
	}

	idx := make([]int, m.dim)
	for i := 0; i < m.dim; i++ {
		row := dense.RawRowView(i)
		for j := range idx {
			idx[j] = j
		}
		sort.Slice(idx, func(a, b int) bool { return row[idx[a]] > row[idx[b]] })

		keep := make(map[int]struct{}, k)
		for _, j := range idx[:k] {
			keep[j] = struct{}{}
		}
		var sum float64
		for j := range row {
			if _, ok := keep[j]; !ok {
				row[j] = 0
			} else {
				sum += row[j]
			}
		}
		for j := range row {
			row[j] /= sum
		}
	}

	return dense, nil
}

// ValidateRowStochastic checks that every row of d sums to 1 within eps and
// that all entries are non-negative. Returns ErrNotStochastic on violation.
// Complexity: O(r·c).
func ValidateRowStochastic(d *mat.Dense, eps float64) error {
	r, c := d.Dims()
	for i := 0; i < r; i++ {
		var sum float64
		for j := 0; j < c; j++ {
			v := d.At(i, j)
			if v < -eps {
				return ErrNotStochastic
			}
			sum += v
		}
		if math.Abs(sum-1) > eps {
			return ErrNotStochastic
		}
	}

	return nil
}
