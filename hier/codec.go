package hier

import (
	"errors"
	"math/rand"

	"github.com/katalvlaran/aegud/nn"
	"github.com/katalvlaran/aegud/token"
)

// codecEmbedDim is the embedding width used to derive projections.
const codecEmbedDim = 32

// Sentinel errors for codec construction and use.
var (
	// ErrBadCodecVocab indicates non-positive or inverted vocabulary
	// sizes.
	ErrBadCodecVocab = errors.New("hier: need 0 < coarse vocab <= fine vocab")

	// ErrCodecVocabMismatch indicates a batch from the wrong vocabulary.
	ErrCodecVocabMismatch = errors.New("hier: batch vocabulary does not match codec")
)

// Codec is a many-to-one projection between a fine and a coarse
// vocabulary: down maps every fine token to its coarse class, up lists
// the fine members of each class. Both tables are built once, at
// construction, and never change.
type Codec struct {
	fine, coarse int
	down         []int
	up           [][]int
}

// NewCodec derives the projection from embedding similarity: fine and
// coarse tokens get seeded embeddings, and each fine token maps to the
// coarse token with the largest dot product. Coarse classes left empty by
// the argmax adopt their index modulo the fine vocabulary, so Decode
// always has a member to choose.
func NewCodec(fine, coarse int, seed int64) (*Codec, error) {
	if coarse <= 0 || fine < coarse {
		return nil, ErrBadCodecVocab
	}
	if fine == coarse {
		return identityCodec(fine), nil
	}

	rng := rand.New(rand.NewSource(seed))
	fineEmb, err := nn.NewEmbedding(fine, codecEmbedDim, rng)
	if err != nil {
		return nil, err
	}
	coarseEmb, err := nn.NewEmbedding(coarse, codecEmbedDim, rng)
	if err != nil {
		return nil, err
	}

	down := make([]int, fine)
	up := make([][]int, coarse)
	for v := 0; v < fine; v++ {
		best, bestDot := 0, dot(fineEmb.Row(v), coarseEmb.Row(0))
		for c := 1; c < coarse; c++ {
			if d := dot(fineEmb.Row(v), coarseEmb.Row(c)); d > bestDot {
				best, bestDot = c, d
			}
		}
		down[v] = best
		up[best] = append(up[best], v)
	}
	for c := range up {
		if len(up[c]) == 0 {
			up[c] = []int{c % fine}
		}
	}

	return &Codec{fine: fine, coarse: coarse, down: down, up: up}, nil
}

// identityCodec maps every token to itself.
func identityCodec(vocab int) *Codec {
	down := make([]int, vocab)
	up := make([][]int, vocab)
	for v := range down {
		down[v] = v
		up[v] = []int{v}
	}

	return &Codec{fine: vocab, coarse: vocab, down: down, up: up}
}

// Fine returns the fine vocabulary size.
func (c *Codec) Fine() int { return c.fine }

// Coarse returns the coarse vocabulary size.
func (c *Codec) Coarse() int { return c.coarse }

// Down returns the coarse class of a fine token.
func (c *Codec) Down(v int) int { return c.down[v] }

// Members returns the fine tokens of a coarse class.
func (c *Codec) Members(class int) []int { return c.up[class] }

// Encode projects a fine-vocabulary batch into the coarse vocabulary.
// Complexity: O(size·length).
func (c *Codec) Encode(b *token.Batch) (*token.Batch, error) {
	if b.Vocab() != c.fine {
		return nil, ErrCodecVocabMismatch
	}
	seqs := make([][]int, b.Size())
	for i := range seqs {
		seqs[i] = make([]int, b.Len())
		for j := range seqs[i] {
			seqs[i][j] = c.down[b.At(i, j)]
		}
	}

	return token.NewBatch(c.coarse, seqs)
}

// Decode lifts a coarse batch back to the fine vocabulary, drawing each
// token uniformly from its class members. The projection loses
// information; Decode(Encode(b)) reproduces classes, not tokens.
func (c *Codec) Decode(b *token.Batch, rng *rand.Rand) (*token.Batch, error) {
	if b.Vocab() != c.coarse {
		return nil, ErrCodecVocabMismatch
	}
	seqs := make([][]int, b.Size())
	for i := range seqs {
		seqs[i] = make([]int, b.Len())
		for j := range seqs[i] {
			members := c.up[b.At(i, j)]
			seqs[i][j] = members[rng.Intn(len(members))]
		}
	}

	return token.NewBatch(c.fine, seqs)
}

// dot is a plain inner product.
func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}

	return s
}
