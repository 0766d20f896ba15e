package hier

import (
	"errors"
	"math"
	"math/rand"

	"github.com/katalvlaran/aegud/graph"
	"github.com/katalvlaran/aegud/token"
	"github.com/katalvlaran/aegud/validate"
)

// DEFAULTS - single source of truth for hierarchy construction.
const (
	// DefaultSeed seeds codec derivation and per-level graph init.
	DefaultSeed = 1

	// minLevelVocab floors compressed vocabularies so coarse levels stay
	// expressive.
	minLevelVocab = 16

	// maxStagePoint caps the derived two-stage point so deep hierarchies
	// keep it inside the open unit interval.
	maxStagePoint = 0.95
)

// DefaultRatios are the standard compression ratios, coarsest first; the
// trailing 1 keeps the finest level at full resolution.
func DefaultRatios() []int { return []int{8, 4, 1} }

// defaultLevelWeights are the per-level loss weights, finest first.
func defaultLevelWeights(levels int) []float64 {
	w := make([]float64, levels)
	for i := range w {
		w[i] = math.Pow(0.5, float64(i))
	}

	return w
}

// corruptionCap bounds the per-level terminal corruption probability:
// the finest level may reach 0.99, each coarser one slightly less.
func corruptionCap(depth int) float64 {
	c := 0.99 - 0.1*float64(depth)
	if c < 0.8 {
		c = 0.8
	}

	return c
}

// Sentinel errors for hierarchy construction and stepping.
var (
	// ErrBadRatios indicates an empty ratio list, a non-positive ratio, or
	// a final ratio different from 1.
	ErrBadRatios = errors.New("hier: ratios must be positive and end with 1")

	// ErrBadVocab indicates a non-positive fine vocabulary.
	ErrBadVocab = errors.New("hier: vocabulary size must be > 0")

	// ErrVocabMismatch indicates a batch from the wrong fine vocabulary.
	ErrVocabMismatch = errors.New("hier: batch vocabulary does not match hierarchy")

	// ErrLevelShape indicates per-level inputs whose count differs from
	// the number of levels.
	ErrLevelShape = errors.New("hier: need exactly one entry per level")
)

// Level is one resolution of the hierarchy: its graph, its codec from the
// fine vocabulary, and its diffusion speed.
type Level struct {
	// Graph diffuses over this level's vocabulary.
	Graph *graph.EnhancedV2

	// Codec projects between the fine vocabulary and this level's.
	Codec *Codec

	// Speed multiplies diffusion time; coarser levels run faster.
	Speed float64

	cap float64
}

// Sigma is the level's accumulated noise at hierarchy time t:
// −log(1−cap·min(1, t·speed)).
func (l *Level) Sigma(t float64) float64 {
	lt := t * l.Speed
	if lt > 1 {
		lt = 1
	}
	if lt < 0 {
		lt = 0
	}

	return -math.Log1p(-l.cap * lt)
}

// Diffusion is a fixed stack of levels over one fine vocabulary, ordered
// finest first. Levels never share graphs or codecs.
type Diffusion struct {
	vocab  int
	levels []Level
}

// New builds the hierarchy for the given fine vocabulary and compression
// ratios (coarsest first, ending in 1). Level vocabularies are
// max(minLevelVocab, vocab/ratio) capped at the fine vocabulary. Coarser
// levels get stronger entropy scaling, later two-stage points and longer
// decay constants, so they keep adaptive structure while the fine level
// converges first.
func New(vocab int, ratios []int, seed int64) (*Diffusion, error) {
	if vocab <= 0 {
		return nil, ErrBadVocab
	}
	if len(ratios) == 0 || ratios[len(ratios)-1] != 1 {
		return nil, ErrBadRatios
	}
	for _, r := range ratios {
		if r < 1 {
			return nil, ErrBadRatios
		}
	}

	n := len(ratios)
	levels := make([]Level, 0, n)
	// Iterate finest (last ratio) to coarsest so levels[0] is full
	// resolution.
	for depth := 0; depth < n; depth++ {
		ratio := ratios[n-1-depth]
		lv := vocab / ratio
		if lv < minLevelVocab {
			lv = minLevelVocab
		}
		if lv > vocab {
			lv = vocab
		}

		g, err := graph.NewEnhancedV2(lv,
			graph.WithSeed(seed+int64(depth)),
			graph.WithEntropyScale(1+0.5*float64(depth)),
			graph.WithTwoStage(math.Min(maxStagePoint, 0.7+0.1*float64(depth))),
			graph.WithControlledDecay(0.1*float64(depth+1)))
		if err != nil {
			return nil, err
		}
		codec, err := NewCodec(vocab, lv, seed+int64(depth))
		if err != nil {
			return nil, err
		}

		levels = append(levels, Level{
			Graph: g,
			Codec: codec,
			Speed: 1 + 0.5*float64(depth),
			cap:   corruptionCap(depth),
		})
	}

	return &Diffusion{vocab: vocab, levels: levels}, nil
}

// Vocab returns the fine vocabulary size.
func (d *Diffusion) Vocab() int { return d.vocab }

// Levels returns the level stack, finest first.
func (d *Diffusion) Levels() []Level { return d.levels }

// Encode projects x0 into every level's vocabulary, finest first.
func (d *Diffusion) Encode(x0 *token.Batch) ([]*token.Batch, error) {
	if x0.Vocab() != d.vocab {
		return nil, ErrVocabMismatch
	}
	encoded := make([]*token.Batch, len(d.levels))
	for i := range d.levels {
		b, err := d.levels[i].Codec.Encode(x0)
		if err != nil {
			return nil, err
		}
		encoded[i] = b
	}

	return encoded, nil
}

// Step diffuses x0 one hierarchy step at time t. Every level corrupts its
// encoding of x0 at its own noise level; the returned fine-vocabulary
// batch then blends them coarse to fine: each coarser level overwrites a
// position with probability 1−exp(−σ_level), so as coarse noise grows the
// output is increasingly dominated by coarse-level corruption.
//
// The per-level corrupted batches are returned alongside the blend for
// loss computation.
func (d *Diffusion) Step(x0 *token.Batch, t float64, rng *rand.Rand) (*token.Batch, []*token.Batch, error) {
	encoded, err := d.Encode(x0)
	if err != nil {
		return nil, nil, err
	}

	noised := make([]*token.Batch, len(d.levels))
	for i := range d.levels {
		xt, err := d.levels[i].Graph.SampleTransition(encoded[i], d.levels[i].Sigma(t), rng)
		if err != nil {
			return nil, nil, err
		}
		noised[i] = xt
	}

	// Finest level is the base; coarser levels overlay stochastically.
	out, err := d.levels[0].Codec.Decode(noised[0], rng)
	if err != nil {
		return nil, nil, err
	}
	for i := len(d.levels) - 1; i >= 1; i-- {
		decoded, err := d.levels[i].Codec.Decode(noised[i], rng)
		if err != nil {
			return nil, nil, err
		}
		p := 1 - math.Exp(-d.levels[i].Sigma(t))
		for a := 0; a < out.Size(); a++ {
			for b := 0; b < out.Len(); b++ {
				if rng.Float64() < p {
					if err := out.Set(a, b, decoded.At(a, b)); err != nil {
						return nil, nil, err
					}
				}
			}
		}
	}

	return out, noised, nil
}

// Loss computes the weighted multi-level score-entropy loss: per level,
// the mean of its graph's loss over the level-encoded batches, weighted
// 1, 0.5, 0.25, … finest first, then normalized by the weight sum.
func (d *Diffusion) Loss(scores []graph.Scores, t float64, noised []*token.Batch, x0 *token.Batch) (float64, error) {
	if len(scores) != len(d.levels) || len(noised) != len(d.levels) {
		return 0, ErrLevelShape
	}
	encoded, err := d.Encode(x0)
	if err != nil {
		return 0, err
	}

	weights := defaultLevelWeights(len(d.levels))
	var total, weightSum float64
	for i := range d.levels {
		sigma := d.levels[i].Sigma(t)
		grid, err := d.levels[i].Graph.ScoreEntropy(scores[i], sigma, noised[i], encoded[i])
		if err != nil {
			return 0, err
		}
		var sum float64
		n := 0
		for _, row := range grid {
			for _, v := range row {
				sum += v
				n++
			}
		}
		total += weights[i] * sum / float64(n)
		weightSum += weights[i]
	}

	return total / weightSum, nil
}

// ValidateLevels runs forward-convergence validation per level and
// returns one record each, finest first.
func (d *Diffusion) ValidateLevels(size, length int, rng *rand.Rand) ([]*validate.Record, error) {
	records := make([]*validate.Record, len(d.levels))
	for i := range d.levels {
		noise := levelNoise{level: &d.levels[i]}
		v := validate.NewValidator(d.levels[i].Graph, noise,
			validate.WithBatchShape(size, length))
		rec, err := v.ForwardConvergence("level", nil, rng)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}

	return records, nil
}

// levelNoise adapts a level's sigma curve to the schedule.Noise contract.
type levelNoise struct {
	level *Level
}

func (n levelNoise) Total(t float64) float64 { return n.level.Sigma(t) }

func (n levelNoise) RateNoise(t float64) float64 {
	lt := t * n.level.Speed
	if lt >= 1 || lt < 0 {
		return 0
	}

	return n.level.cap * n.level.Speed / (1 - n.level.cap*lt)
}
