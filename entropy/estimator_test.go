package entropy_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/aegud/entropy"
	"github.com/katalvlaran/aegud/token"
)

// TestNewEstimator_Validation covers construction errors and option panics.
func TestNewEstimator_Validation(t *testing.T) {
	_, err := entropy.NewEstimator(0)
	assert.ErrorIs(t, err, entropy.ErrBadVocab)

	assert.Panics(t, func() { entropy.WithHiddenDim(0) }, "non-positive hidden dim is a programmer error")
	assert.Panics(t, func() { entropy.WithWindow(-1) }, "negative window is a programmer error")
}

// TestEstimator_ScoresBounded verifies shape, bounds, and determinism of the
// per-position scores.
func TestEstimator_ScoresBounded(t *testing.T) {
	est, err := entropy.NewEstimator(32, entropy.WithHiddenDim(16), entropy.WithSeed(5))
	require.NoError(t, err)

	b, err := token.Random(32, 3, 12, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	scores, err := est.Scores(b)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	for _, row := range scores {
		require.Len(t, row, 12)
		for _, s := range row {
			assert.GreaterOrEqual(t, s, 0.0, "scores are sigmoid-bounded")
			assert.LessOrEqual(t, s, 1.0)
		}
	}

	again, err := est.Scores(b)
	require.NoError(t, err)
	assert.Equal(t, scores, again, "scores are pure functions of the batch")
}

// TestEstimator_VocabMismatch verifies the batch/estimator vocabulary check.
func TestEstimator_VocabMismatch(t *testing.T) {
	est, err := entropy.NewEstimator(16, entropy.WithHiddenDim(8))
	require.NoError(t, err)

	b, err := token.Random(32, 1, 4, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	_, err = est.Scores(b)
	assert.ErrorIs(t, err, entropy.ErrVocabMismatch)
}

// TestEstimator_InformationContent verifies the 50/50 blend: a repeated
// single-token sequence must score strictly below a diverse one, and all
// estimates stay in [0,1].
func TestEstimator_InformationContent(t *testing.T) {
	est, err := entropy.NewEstimator(16, entropy.WithHiddenDim(8), entropy.WithSeed(9))
	require.NoError(t, err)

	flat, err := token.Alternating(16, 1, 16, 3, 3) // single repeated token
	require.NoError(t, err)
	diverse, err := token.Repeated(16, 1, 16, 16) // all vocabulary tokens
	require.NoError(t, err)

	flatInfo, err := est.InformationContent(flat)
	require.NoError(t, err)
	diverseInfo, err := est.InformationContent(diverse)
	require.NoError(t, err)

	assert.Less(t, flatInfo[0], diverseInfo[0],
		"frequency entropy term must separate flat from diverse sequences")
	for _, v := range append(flatInfo, diverseInfo...) {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}
