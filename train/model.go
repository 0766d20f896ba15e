package train

import (
	"math/rand"

	"github.com/katalvlaran/aegud/graph"
	"github.com/katalvlaran/aegud/nn"
	"github.com/katalvlaran/aegud/token"
)

// toyHidden is the hidden width of the toy score model.
const toyHidden = 32

// ToyModel is a minimal ScoreModel for experiments and tests: embedding,
// a sigma-conditioned hidden layer, and a per-token score head. It is not
// meant to learn anything useful; it exists so the training loop has a
// deterministic, well-shaped collaborator.
type ToyModel struct {
	vocab int
	embed *nn.Embedding
	mix   *nn.Linear
	head  *nn.Linear
}

// NewToyModel builds the model with seeded N(0, 0.02) weights.
func NewToyModel(vocab int, seed int64) (*ToyModel, error) {
	if vocab <= 0 {
		return nil, graph.ErrBadVocab
	}
	rng := rand.New(rand.NewSource(seed))

	embed, err := nn.NewEmbedding(vocab, toyHidden, rng)
	if err != nil {
		return nil, err
	}
	mix, err := nn.NewLinear(toyHidden+1, toyHidden, rng)
	if err != nil {
		return nil, err
	}
	head, err := nn.NewLinear(toyHidden, vocab, rng)
	if err != nil {
		return nil, err
	}

	return &ToyModel{vocab: vocab, embed: embed, mix: mix, head: head}, nil
}

// Score maps every position of xt to a vocab-sized score vector. Sigma is
// appended to the embedding so the model sees the noise level.
func (m *ToyModel) Score(xt *token.Batch, sigma float64) (graph.Scores, error) {
	if xt.Vocab() != m.vocab {
		return nil, ErrBatchVocab
	}

	scores := make(graph.Scores, xt.Size())
	input := make([]float64, toyHidden+1)
	for i := range scores {
		scores[i] = make([][]float64, xt.Len())
		for j := range scores[i] {
			copy(input, m.embed.Row(xt.At(i, j)))
			input[toyHidden] = sigma

			h, err := m.mix.Forward(input)
			if err != nil {
				return nil, err
			}
			for k := range h {
				h[k] = nn.GELU(h[k])
			}
			out, err := m.head.Forward(h)
			if err != nil {
				return nil, err
			}
			scores[i][j] = out
		}
	}

	return scores, nil
}
