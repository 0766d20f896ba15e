package train

import (
	"errors"
	"math/rand"

	"github.com/katalvlaran/aegud/graph"
	"github.com/katalvlaran/aegud/schedule"
	"github.com/katalvlaran/aegud/token"
)

// timeFloor keeps the sampled diffusion time away from 0, where expm1(σ)
// in the loss denominator vanishes.
const timeFloor = 1e-3

// Sentinel errors for trainer construction and stepping.
var (
	// ErrNilCollaborator indicates a missing model, graph or noise
	// schedule.
	ErrNilCollaborator = errors.New("train: model, graph and noise must be non-nil")

	// ErrBatchVocab indicates a training batch whose vocabulary differs
	// from the graph's.
	ErrBatchVocab = errors.New("train: batch vocabulary does not match graph")
)

// StepResult reports one training step.
type StepResult struct {
	Step  int     `json:"step"`
	Time  float64 `json:"time"`
	Sigma float64 `json:"sigma"`
	Loss  float64 `json:"loss"`
	KL    float64 `json:"kl"`
}

// Trainer owns its model, graph, noise schedule and rng exclusively; steps
// are synchronous and single-threaded.
type Trainer struct {
	model ScoreModel
	g     graph.Graph
	noise schedule.Noise
	rng   *rand.Rand

	// klg is non-nil iff the graph opted into the KL-regularized loss;
	// resolved once here, never per step.
	klg KLRegularized

	updater Updater
	step    int
}

// NewTrainer wires the collaborators together. The KL capability of g is
// resolved here: an EnhancedV2 (or anything else implementing
// KLRegularized) routes every step through the regularized loss. A nil
// updater means losses are only reported, not applied.
func NewTrainer(model ScoreModel, g graph.Graph, noise schedule.Noise, rng *rand.Rand, updater Updater) (*Trainer, error) {
	if model == nil || g == nil || noise == nil || rng == nil {
		return nil, ErrNilCollaborator
	}
	t := &Trainer{model: model, g: g, noise: noise, rng: rng, updater: updater}
	if klg, ok := g.(KLRegularized); ok {
		t.klg = klg
	}

	return t, nil
}

// KLRegularized reports whether the trainer resolved the KL-regularized
// loss path.
func (tr *Trainer) KLRegularized() bool { return tr.klg != nil }

// Step runs one training step over the clean batch x0: sample a diffusion
// time, corrupt the batch at the schedule's noise level, score it, reduce
// the score-entropy loss weighted by dσ/dt, and hand the scalar to the
// updater.
func (tr *Trainer) Step(x0 *token.Batch) (StepResult, error) {
	if x0.Vocab() != tr.g.Dim() {
		return StepResult{}, ErrBatchVocab
	}
	tr.step++

	t := timeFloor + (1-timeFloor)*tr.rng.Float64()
	sigma := tr.noise.Total(t)
	dsigma := tr.noise.RateNoise(t)

	xt, err := tr.g.SampleTransition(x0, sigma, tr.rng)
	if err != nil {
		return StepResult{}, err
	}
	scores, err := tr.model.Score(xt, sigma)
	if err != nil {
		return StepResult{}, err
	}

	var grid [][]float64
	var klTerm float64
	if tr.klg != nil {
		grid, klTerm, err = tr.klg.ScoreEntropyWithKL(scores, sigma, t, xt, x0)
	} else {
		grid, err = tr.g.ScoreEntropy(scores, sigma, xt, x0)
	}
	if err != nil {
		return StepResult{}, err
	}

	loss, err := ScoreEntropyLoss(grid, dsigma)
	if err != nil {
		return StepResult{}, err
	}
	loss += klTerm

	if tr.updater != nil {
		if err := tr.updater.Update(tr.step, loss); err != nil {
			return StepResult{}, err
		}
	}

	return StepResult{Step: tr.step, Time: t, Sigma: sigma, Loss: loss, KL: klTerm}, nil
}
