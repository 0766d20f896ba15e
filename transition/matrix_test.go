package transition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/aegud/transition"
)

// rowSums collects per-row sums of a square matrix.
func rowSums(d *mat.Dense) []float64 {
	r, c := d.Dims()
	sums := make([]float64, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sums[i] += d.At(i, j)
		}
	}

	return sums
}

// TestNew_Validation covers construction errors and option panics.
func TestNew_Validation(t *testing.T) {
	_, err := transition.New(0)
	assert.ErrorIs(t, err, transition.ErrBadVocab)

	assert.Panics(t, func() { transition.WithTemperature(0) })
	assert.Panics(t, func() { transition.WithHiddenDim(-1) })
}

// TestProbs_RowStochastic verifies the core invariant: every dense row sums
// to 1 within DefaultEpsilon, at several entropy levels.
func TestProbs_RowStochastic(t *testing.T) {
	m, err := transition.New(24, transition.WithHiddenDim(16), transition.WithSeed(3))
	require.NoError(t, err)

	for _, meanEntropy := range []float64{0, 0.5, 1.0} {
		probs := m.Probs(meanEntropy)
		for i, s := range rowSums(probs) {
			assert.InDelta(t, 1.0, s, transition.DefaultEpsilon, "row %d at entropy %v", i, meanEntropy)
		}
		assert.NoError(t, transition.ValidateRowStochastic(probs, transition.DefaultEpsilon))
	}
}

// TestProbs_EntropyFlattens verifies that higher mean entropy lowers the
// sharpest transition probability (flatter rows).
func TestProbs_EntropyFlattens(t *testing.T) {
	m, err := transition.New(16, transition.WithHiddenDim(8), transition.WithSelfBias(2.0))
	require.NoError(t, err)

	maxAt := func(e float64) float64 {
		probs := m.Probs(e)
		maxv := 0.0
		r, c := probs.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if probs.At(i, j) > maxv {
					maxv = probs.At(i, j)
				}
			}
		}

		return maxv
	}

	assert.Greater(t, maxAt(0), maxAt(1.0), "doubling the temperature must flatten the sharpest row")
}

// TestSparseTopK_RowStochastic verifies renormalization and the per-row
// support bound of the sparse variant.
func TestSparseTopK_RowStochastic(t *testing.T) {
	m, err := transition.New(20, transition.WithHiddenDim(8), transition.WithSeed(7))
	require.NoError(t, err)

	sparse, err := m.SparseTopK(5)
	require.NoError(t, err)

	for i, s := range rowSums(sparse) {
		assert.InDelta(t, 1.0, s, transition.DefaultEpsilon, "sparse row %d", i)
	}
	r, c := sparse.Dims()
	for i := 0; i < r; i++ {
		nonzero := 0
		for j := 0; j < c; j++ {
			if sparse.At(i, j) > 0 {
				nonzero++
			}
		}
		assert.LessOrEqual(t, nonzero, 5, "each row keeps at most k entries")
	}
}

// TestSparseTopK_Validation covers k bounds and the k == dim passthrough.
func TestSparseTopK_Validation(t *testing.T) {
	m, err := transition.New(8, transition.WithHiddenDim(4))
	require.NoError(t, err)

	_, err = m.SparseTopK(0)
	assert.ErrorIs(t, err, transition.ErrBadTopK)
	_, err = m.SparseTopK(9)
	assert.ErrorIs(t, err, transition.ErrBadTopK)

	full, err := m.SparseTopK(8)
	require.NoError(t, err)
	assert.NoError(t, transition.ValidateRowStochastic(full, transition.DefaultEpsilon))
}

// TestValidateRowStochastic_Rejects verifies the validator's failure path.
func TestValidateRowStochastic_Rejects(t *testing.T) {
	bad := mat.NewDense(2, 2, []float64{0.5, 0.6, 0.5, 0.5})
	assert.ErrorIs(t, transition.ValidateRowStochastic(bad, 1e-5), transition.ErrNotStochastic)

	neg := mat.NewDense(1, 2, []float64{1.5, -0.5})
	assert.ErrorIs(t, transition.ValidateRowStochastic(neg, 1e-5), transition.ErrNotStochastic)
}

// TestEmbeddingRowNorms sanity-checks the smoothness-regularizer input.
func TestEmbeddingRowNorms(t *testing.T) {
	m, err := transition.New(6, transition.WithHiddenDim(4))
	require.NoError(t, err)

	norms := m.EmbeddingRowNorms()
	require.Len(t, norms, 6)
	for _, n := range norms {
		assert.Greater(t, n, 0.0, "random init rows are non-degenerate")
	}
}
