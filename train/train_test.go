package train_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/aegud/graph"
	"github.com/katalvlaran/aegud/schedule"
	"github.com/katalvlaran/aegud/token"
	"github.com/katalvlaran/aegud/train"
)

// newNoise builds the default geometric schedule for tests.
func newNoise(t *testing.T) schedule.Noise {
	t.Helper()
	n, err := schedule.NewGeometric(schedule.DefaultSigmaMin, schedule.DefaultSigmaMax)
	require.NoError(t, err)

	return n
}

// TestScoreEntropyLoss_MeanAndWeight checks the grid reduction.
func TestScoreEntropyLoss_MeanAndWeight(t *testing.T) {
	grid := [][]float64{{1, 2}, {3, 4}}

	loss, err := train.ScoreEntropyLoss(grid, 2)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, loss, 1e-12, "mean 2.5 weighted by dσ=2")

	_, err = train.ScoreEntropyLoss(nil, 1)
	assert.ErrorIs(t, err, train.ErrEmptyLoss, "empty grid must error")
}

// TestNewTrainer_CapabilityResolution verifies the KL capability is read
// off the graph's type once: enhanced graphs get the regularized path,
// the plain uniform graph does not.
func TestNewTrainer_CapabilityResolution(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	model, err := train.NewToyModel(8, 1)
	require.NoError(t, err)

	uni, err := graph.NewUniform(8)
	require.NoError(t, err)
	tr, err := train.NewTrainer(model, uni, newNoise(t), rng, nil)
	require.NoError(t, err)
	assert.False(t, tr.KLRegularized(), "uniform graph has no KL loss")

	v2, err := graph.NewEnhancedV2(8, graph.WithSeed(1))
	require.NoError(t, err)
	tr, err = train.NewTrainer(model, v2, newNoise(t), rng, nil)
	require.NoError(t, err)
	assert.True(t, tr.KLRegularized(), "V2 graph routes through the regularized loss")

	_, err = train.NewTrainer(nil, uni, newNoise(t), rng, nil)
	assert.ErrorIs(t, err, train.ErrNilCollaborator, "nil model rejected")
}

// TestTrainer_Step_ProducesFiniteLoss runs steps on both loss paths and
// checks the outputs are finite and the updater sees every step.
func TestTrainer_Step_ProducesFiniteLoss(t *testing.T) {
	graphs := map[string]graph.Graph{}
	uni, err := graph.NewUniform(8)
	require.NoError(t, err)
	graphs["uniform"] = uni
	v2, err := graph.NewEnhancedV2(8, graph.WithSeed(1))
	require.NoError(t, err)
	graphs["enhanced-v2"] = v2

	for name, g := range graphs {
		rng := rand.New(rand.NewSource(3))
		model, err := train.NewToyModel(8, 1)
		require.NoError(t, err, name)

		var seen []int
		updater := train.UpdaterFunc(func(step int, loss float64) error {
			seen = append(seen, step)
			return nil
		})
		tr, err := train.NewTrainer(model, g, newNoise(t), rng, updater)
		require.NoError(t, err, name)

		x0, err := token.Random(8, 4, 16, rng)
		require.NoError(t, err, name)
		for i := 0; i < 3; i++ {
			res, err := tr.Step(x0)
			require.NoError(t, err, name)
			assert.False(t, math.IsNaN(res.Loss) || math.IsInf(res.Loss, 0),
				"%s: loss stays finite", name)
			assert.Greater(t, res.Sigma, 0.0, "%s: sampled time is positive", name)
		}
		assert.Equal(t, []int{1, 2, 3}, seen, "%s: updater called per step", name)
	}
}

// TestTrainer_Step_VocabMismatch verifies batch validation.
func TestTrainer_Step_VocabMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	model, err := train.NewToyModel(8, 1)
	require.NoError(t, err)
	g, err := graph.NewUniform(8)
	require.NoError(t, err)
	tr, err := train.NewTrainer(model, g, newNoise(t), rng, nil)
	require.NoError(t, err)

	x0, err := token.Random(4, 2, 8, rng)
	require.NoError(t, err)
	_, err = tr.Step(x0)
	assert.ErrorIs(t, err, train.ErrBatchVocab)
}

// TestTrainer_Step_UpdaterFailure verifies updater errors surface.
func TestTrainer_Step_UpdaterFailure(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	model, err := train.NewToyModel(8, 1)
	require.NoError(t, err)
	g, err := graph.NewUniform(8)
	require.NoError(t, err)

	boom := errors.New("optimizer rejected the step")
	tr, err := train.NewTrainer(model, g, newNoise(t), rng,
		train.UpdaterFunc(func(int, float64) error { return boom }))
	require.NoError(t, err)

	x0, err := token.Random(8, 2, 8, rng)
	require.NoError(t, err)
	_, err = tr.Step(x0)
	assert.ErrorIs(t, err, boom)
}

// TestAdaptiveLoss_Breakdown checks the component assembly: all parts
// non-negative and the total is their sum.
func TestAdaptiveLoss_Breakdown(t *testing.T) {
	g, err := graph.NewAdaptive(8, graph.WithSeed(1))
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(3))

	x0, err := token.Repeated(8, 2, 16, 1)
	require.NoError(t, err)
	xt, err := token.Random(8, 2, 16, rng)
	require.NoError(t, err)

	b, err := train.AdaptiveLoss(g.Estimator(), g.Transition(), 1.5, 0.25, x0, xt)
	require.NoError(t, err)

	assert.Equal(t, 1.5, b.Base)
	assert.Equal(t, 0.25, b.KL)
	assert.GreaterOrEqual(t, b.EntropyReg, 0.0, "squared deviation is non-negative")
	assert.GreaterOrEqual(t, b.InfoPreservation, 0.0, "relu drop is non-negative")
	assert.GreaterOrEqual(t, b.Smoothness, 0.0, "variance is non-negative")
	assert.InDelta(t, b.Base+b.EntropyReg+b.InfoPreservation+b.Smoothness+b.KL, b.Total, 1e-12,
		"total is the component sum")
}

// TestExperiment_Run_CapturesFailure verifies that a failing experiment
// reports its error while the rest of the batch completes.
func TestExperiment_Run_CapturesFailure(t *testing.T) {
	good := train.Experiment{
		Name: "good", Steps: 2, Vocab: 8, BatchSize: 2, SeqLen: 8, Seed: 1,
		Build: func() (graph.Graph, error) { return graph.NewUniform(8) },
	}
	bad := train.Experiment{
		Name: "bad", Steps: 2, Vocab: 8, BatchSize: 2, SeqLen: 8, Seed: 1,
		Build: func() (graph.Graph, error) { return nil, graph.ErrBadVocab },
	}
	panicky := train.Experiment{
		Name: "panicky", Steps: 2, Vocab: 8, BatchSize: 2, SeqLen: 8, Seed: 1,
		Build: func() (graph.Graph, error) { panic("construction exploded") },
	}

	results := train.RunAll([]train.Experiment{good, bad, panicky})
	require.Len(t, results, 3, "every experiment yields a result")

	assert.Empty(t, results[0].Err, "good experiment succeeds")
	assert.Len(t, results[0].Losses, 2)
	assert.Equal(t, graph.ErrBadVocab.Error(), results[1].Err, "error captured verbatim")
	assert.Contains(t, results[2].Err, "construction exploded", "panic captured as error text")
}

// TestExperiment_Run_WithValidation attaches a convergence record.
func TestExperiment_Run_WithValidation(t *testing.T) {
	e := train.Experiment{
		Name: "validated", Steps: 1, Vocab: 8, BatchSize: 8, SeqLen: 64, Seed: 1,
		Build:    func() (graph.Graph, error) { return graph.NewUniform(8) },
		Validate: true,
	}

	res := e.Run()
	require.Empty(t, res.Err)
	require.NotNil(t, res.Record, "validation record attached")
	assert.Equal(t, "validated", res.Record.Name)
}

// TestCheckpoint_SaveLoad_RoundTrip covers the checkpoint file cycle.
func TestCheckpoint_SaveLoad_RoundTrip(t *testing.T) {
	results := []train.Result{{Name: "one", Losses: []float64{3, 2, 1}, FinalLoss: 1}}

	path, err := train.SaveCheckpoint(t.TempDir(), results)
	require.NoError(t, err)

	cp, err := train.LoadCheckpoint(path)
	require.NoError(t, err)
	require.Len(t, cp.Results, 1)
	assert.Equal(t, "one", cp.Results[0].Name)
	assert.Equal(t, 1.0, cp.Results[0].FinalLoss)
}
