package train

import (
	"fmt"
	"math/rand"

	"github.com/katalvlaran/aegud/graph"
	"github.com/katalvlaran/aegud/schedule"
	"github.com/katalvlaran/aegud/token"
	"github.com/katalvlaran/aegud/validate"
)

// Experiment is one named training-and-validation configuration. Build
// returns fresh collaborators per run, so experiments never share state.
type Experiment struct {
	Name string

	// Steps is the number of training steps.
	Steps int

	// Batch dimensions of the synthetic training data.
	Vocab, BatchSize, SeqLen int

	// Seed drives data generation, sampling and model init.
	Seed int64

	// Build constructs the graph under test.
	Build func() (graph.Graph, error)

	// Noise constructs the schedule; nil defaults to geometric.
	Noise func() (schedule.Noise, error)

	// Validate runs forward-convergence validation after training.
	Validate bool
}

// Result is the outcome of one experiment. Err is the captured error or
// panic message; a non-empty Err never stops the remaining experiments.
type Result struct {
	Name      string           `json:"name"`
	Losses    []float64        `json:"losses"`
	FinalLoss float64          `json:"final_loss"`
	Record    *validate.Record `json:"record,omitempty"`
	Err       string           `json:"error,omitempty"`
}

// Run executes the experiment. Panics inside graph construction or
// stepping are converted into the Result's Err field.
func (e Experiment) Run() (res Result) {
	res.Name = e.Name
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Sprintf("panic: %v", r)
		}
	}()

	g, err := e.Build()
	if err != nil {
		res.Err = err.Error()
		return res
	}
	noise, err := e.buildNoise()
	if err != nil {
		res.Err = err.Error()
		return res
	}

	rng := rand.New(rand.NewSource(e.Seed))
	model, err := NewToyModel(e.Vocab, e.Seed)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	trainer, err := NewTrainer(model, g, noise, rng, nil)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	x0, err := token.Random(e.Vocab, e.BatchSize, e.SeqLen, rng)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	for i := 0; i < e.Steps; i++ {
		step, err := trainer.Step(x0)
		if err != nil {
			res.Err = err.Error()
			return res
		}
		res.Losses = append(res.Losses, step.Loss)
	}
	if n := len(res.Losses); n > 0 {
		res.FinalLoss = res.Losses[n-1]
	}

	if e.Validate {
		v := validate.NewValidator(g, noise,
			validate.WithBatchShape(e.BatchSize, e.SeqLen))
		rec, err := v.ForwardConvergence(e.Name, x0, rng)
		if err != nil {
			res.Err = err.Error()
			return res
		}
		res.Record = rec
	}

	return res
}

// buildNoise falls back to the default geometric schedule.
func (e Experiment) buildNoise() (schedule.Noise, error) {
	if e.Noise == nil {
		return schedule.NewGeometric(schedule.DefaultSigmaMin, schedule.DefaultSigmaMax)
	}

	return e.Noise()
}

// RunAll executes experiments in order, one Result each. A failure is
// recorded and the batch continues.
func RunAll(experiments []Experiment) []Result {
	results := make([]Result, 0, len(experiments))
	for _, e := range experiments {
		results = append(results, e.Run())
	}

	return results
}
