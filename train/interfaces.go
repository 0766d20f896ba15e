package train

import (
	"github.com/katalvlaran/aegud/graph"
	"github.com/katalvlaran/aegud/token"
)

// ScoreModel produces score vectors for a noised batch: for every
// position, one value per vocabulary entry, interpreted as log score
// ratios by the graph's loss.
type ScoreModel interface {
	Score(xt *token.Batch, sigma float64) (graph.Scores, error)
}

// KLRegularized marks graphs whose score-entropy loss carries an auxiliary
// KL-regularization term. The trainer checks for this capability once at
// construction and never again.
type KLRegularized interface {
	ScoreEntropyWithKL(s graph.Scores, sigma, t float64, xt, x0 *token.Batch) ([][]float64, float64, error)
}

// Updater consumes the scalar loss of each training step, typically an
// optimizer adapter.
type Updater interface {
	Update(step int, loss float64) error
}

// UpdaterFunc adapts a plain function to the Updater interface.
type UpdaterFunc func(step int, loss float64) error

// Update calls f.
func (f UpdaterFunc) Update(step int, loss float64) error { return f(step, loss) }
