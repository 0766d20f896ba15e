package train

import (
	"errors"

	"github.com/katalvlaran/aegud/nn"
	"github.com/katalvlaran/aegud/token"
	"github.com/katalvlaran/aegud/transition"
)

// Loss-component weights of the adaptive objective.
const (
	// entropyTarget is the information score the entropy regularizer pulls
	// the noised batch toward.
	entropyTarget = 0.5

	// entropyRegWeight scales the entropy regularizer.
	entropyRegWeight = 0.1

	// infoPreserveWeight scales the information-preservation penalty.
	infoPreserveWeight = 0.1

	// smoothnessWeight scales the embedding-norm smoothness term.
	smoothnessWeight = 0.01
)

// ErrEmptyLoss indicates an empty per-position loss grid.
var ErrEmptyLoss = errors.New("train: loss grid is empty")

// ScoreEntropyLoss reduces a per-position loss grid to the training
// scalar: the grand mean weighted by the schedule rate dσ/dt.
func ScoreEntropyLoss(grid [][]float64, dsigma float64) (float64, error) {
	var sum float64
	n := 0
	for _, row := range grid {
		for _, v := range row {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, ErrEmptyLoss
	}

	return sum / float64(n) * dsigma, nil
}

// Breakdown is the adaptive objective split into its components.
// Total is the training scalar; the rest are reported for diagnostics.
type Breakdown struct {
	Base             float64 `json:"base"`
	EntropyReg       float64 `json:"entropy_reg"`
	InfoPreservation float64 `json:"info_preservation"`
	Smoothness       float64 `json:"smoothness"`
	KL               float64 `json:"kl"`
	Total            float64 `json:"total"`
}

// AdaptiveLoss assembles the full adaptive objective around a reduced
// base loss:
//
//   - entropy regularization: squared distance of the noised batch's mean
//     information score from entropyTarget;
//   - information preservation: the positive part of the information drop
//     from clean to noised batch (information should be destroyed by the
//     schedule, not by the rate shaping);
//   - smoothness: variance of the transition-embedding row norms;
//   - klTerm: passed through from a KL-regularized graph, zero otherwise.
func AdaptiveLoss(est InfoScorer, trans *transition.Matrix, base, klTerm float64, x0, xt *token.Batch) (Breakdown, error) {
	cleanInfo, err := est.InformationContent(x0)
	if err != nil {
		return Breakdown{}, err
	}
	noisyInfo, err := est.InformationContent(xt)
	if err != nil {
		return Breakdown{}, err
	}

	meanNoisy := nn.Mean(noisyInfo)
	dev := meanNoisy - entropyTarget
	entropyReg := entropyRegWeight * dev * dev

	var drop float64
	for i := range cleanInfo {
		if d := cleanInfo[i] - noisyInfo[i]; d > 0 {
			drop += d
		}
	}
	infoPreserve := infoPreserveWeight * drop / float64(len(cleanInfo))

	norms := trans.EmbeddingRowNorms()
	mean := nn.Mean(norms)
	var variance float64
	for _, v := range norms {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(norms))
	smoothness := smoothnessWeight * variance

	b := Breakdown{
		Base:             base,
		EntropyReg:       entropyReg,
		InfoPreservation: infoPreserve,
		Smoothness:       smoothness,
		KL:               klTerm,
	}
	b.Total = b.Base + b.EntropyReg + b.InfoPreservation + b.Smoothness + b.KL

	return b, nil
}

// InfoScorer is the slice of the entropy estimator the adaptive loss
// needs.
type InfoScorer interface {
	InformationContent(b *token.Batch) ([]float64, error)
}
