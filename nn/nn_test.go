package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/aegud/nn"
)

// TestLinear_ShapeAndDeterminism verifies dimension validation and that
// equal seeds produce identical forward passes.
func TestLinear_ShapeAndDeterminism(t *testing.T) {
	_, err := nn.NewLinear(0, 3, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, nn.ErrBadDimensions)

	a, err := nn.NewLinear(4, 3, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	b, err := nn.NewLinear(4, 3, rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	x := []float64{1, -2, 0.5, 3}
	ya, err := a.Forward(x)
	require.NoError(t, err)
	yb, err := b.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, ya, yb, "same seed must yield the same parameters")

	_, err = a.Forward([]float64{1, 2})
	assert.ErrorIs(t, err, nn.ErrDimensionMismatch)
}

// TestEmbedding_LookupAndNorms verifies range checks and the row-norm helper.
func TestEmbedding_LookupAndNorms(t *testing.T) {
	e, err := nn.NewEmbedding(6, 8, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	_, err = e.Lookup(6)
	assert.ErrorIs(t, err, nn.ErrTokenRange)

	row, err := e.Lookup(2)
	require.NoError(t, err)
	assert.Len(t, row, 8)

	norms := e.RowNorms()
	require.Len(t, norms, 6)
	var ss float64
	for _, v := range row {
		ss += v * v
	}
	assert.InDelta(t, math.Sqrt(ss), norms[2], 1e-12, "RowNorms must match a manual L2 norm")
}

// TestLayerNorm_Normalizes verifies zero mean / unit variance up to the
// stabilizing epsilon.
func TestLayerNorm_Normalizes(t *testing.T) {
	ln, err := nn.NewLayerNorm(4)
	require.NoError(t, err)

	y, err := ln.Forward([]float64{1, 2, 3, 4})
	require.NoError(t, err)

	assert.InDelta(t, 0, nn.Mean(y), 1e-9, "normalized mean must be ~0")
	var variance float64
	for _, v := range y {
		variance += v * v
	}
	assert.InDelta(t, 1, variance/4, 1e-6, "normalized variance must be ~1")
}

// TestSoftmax_Properties verifies the simplex invariant and stability under
// large inputs.
func TestSoftmax_Properties(t *testing.T) {
	src := []float64{1000, 1001, 1002}
	dst := make([]float64, 3)
	nn.Softmax(dst, src)

	var sum float64
	for _, p := range dst {
		require.False(t, math.IsNaN(p), "softmax must not overflow")
		assert.Greater(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12, "softmax output must sum to 1")
	assert.Greater(t, dst[2], dst[1], "ordering must be preserved")
}

// TestActivations_Bounds spot-checks the bounded activations.
func TestActivations_Bounds(t *testing.T) {
	assert.InDelta(t, 0.5, nn.Sigmoid(0), 1e-12)
	assert.Greater(t, nn.Sigmoid(10), 0.999)
	assert.Less(t, nn.Sigmoid(-10), 0.001)

	assert.Equal(t, 0.0, nn.ReLU(-3))
	assert.Equal(t, 3.0, nn.ReLU(3))

	assert.InDelta(t, 0.0, nn.GELU(0), 1e-12)
	assert.InDelta(t, 2.9964, nn.GELU(3), 1e-3, "GELU(3) is close to identity")
}
