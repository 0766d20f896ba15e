package graph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/aegud/nn"
	"github.com/katalvlaran/aegud/token"
)

// newTestDecay builds a VocabDecay over a fresh seeded embedding.
func newTestDecay(t *testing.T, vocab int) *VocabDecay {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	embed, err := nn.NewEmbedding(vocab, 8, rng)
	require.NoError(t, err)
	d, err := newVocabDecay(embed, DefaultDecayTau, rng)
	require.NoError(t, err)

	return d
}

// TestVocabDecay_FrequentTokensDecaySlower checks the frequency prior:
// after observing heavily skewed batches, the dominant token's decay
// weight exceeds an unseen token's with the same embedding modulation.
func TestVocabDecay_FrequentTokensDecaySlower(t *testing.T) {
	d := newTestDecay(t, 4)
	d.mods = []float64{0.5, 0.5, 0.5, 0.5} // isolate the frequency signal

	b, err := token.NewBatch(4, [][]int{{0, 0, 0, 0, 0, 0, 1, 2}})
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		d.UpdateFrequencies(b)
	}

	assert.Greater(t, d.Weight(0, 0.3), d.Weight(3, 0.3),
		"frequent token keeps structure longer than an unseen one")
}

// TestVocabDecay_WeightBounds checks that weights stay in (0, 1] over the
// time domain.
func TestVocabDecay_WeightBounds(t *testing.T) {
	d := newTestDecay(t, 4)
	for tok := 0; tok < 4; tok++ {
		for _, ti := range []float64{0, 0.5, 1} {
			w := d.Weight(tok, ti)
			assert.Greater(t, w, 0.0, "token %d decay positive at t=%v", tok, ti)
			assert.LessOrEqual(t, w, 1.0, "token %d decay bounded at t=%v", tok, ti)
		}
	}
	assert.Equal(t, 1.0, d.Weight(0, 0), "no decay at t=0")
}

// TestScheduleNet_GateClosesPastTransition checks the learned schedule's
// hard property: the output is in [0,1] and the gate crushes it well past
// the transition point.
func TestScheduleNet_GateClosesPastTransition(t *testing.T) {
	s, err := newScheduleNet(rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	for _, ti := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
		w := s.Weight(ti)
		assert.GreaterOrEqual(t, w, 0.0, "schedule weight bounded below at t=%v", ti)
		assert.LessOrEqual(t, w, 1.0, "schedule weight bounded above at t=%v", ti)
	}
	assert.Less(t, s.Weight(1.5), 1e-3, "gate closes far past the transition point")
}

// TestBottleneck_InfoLossNonNegative checks the auxiliary loss sign: MSE
// plus a scaled squared-norm KL proxy can never go negative.
func TestBottleneck_InfoLossNonNegative(t *testing.T) {
	b, err := newBottleneck(16, 0.1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	vecs := [][]float64{make([]float64, 16), make([]float64, 16)}
	for i := range vecs[1] {
		vecs[1][i] = 0.5
	}
	assert.GreaterOrEqual(t, b.InfoLoss(vecs), 0.0, "bottleneck loss is a sum of non-negative terms")
	assert.Zero(t, b.InfoLoss(nil), "empty input contributes nothing")
}

// TestUniformGenerator_Rows checks the prebuilt uniform generator used by
// rate blending.
func TestUniformGenerator_Rows(t *testing.T) {
	r, err := NewRate(1, 1, 4)
	require.NoError(t, err)
	r.uniformGenerator()

	assert.NoError(t, r.ValidateGenerator(DefaultEpsilon))
	row, err := r.Row(0, 0, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, row[0], 1e-12, "off-diagonal rate is 1/V")
	assert.InDelta(t, -0.75, row[2], 1e-12, "diagonal balances the row")
}
