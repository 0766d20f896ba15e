package token

import (
	"errors"
	"math/rand"
)

// Sentinel errors for token operations.
var (
	// ErrBadVocab indicates a non-positive vocabulary size.
	ErrBadVocab = errors.New("token: vocabulary size must be > 0")

	// ErrEmptyBatch indicates a batch with no sequences or zero-length sequences.
	ErrEmptyBatch = errors.New("token: batch must have at least one non-empty sequence")

	// ErrRaggedBatch indicates sequences of differing lengths within one batch.
	ErrRaggedBatch = errors.New("token: all sequences must have the same length")

	// ErrTokenRange indicates a token outside [0, vocab).
	ErrTokenRange = errors.New("token: token id out of vocabulary range")

	// ErrShapeMismatch indicates two batches of incompatible shape or vocabulary.
	ErrShapeMismatch = errors.New("token: batch shapes or vocabularies differ")
)

// Batch is a fixed-shape collection of token sequences over one vocabulary.
//
// Sequences are stored row-major: seqs[i][j] is the token at position j of
// sequence i. All mutating access goes through Set; external callers should
// treat a Batch handed to a graph or diagnostic as read-only.
type Batch struct {
	vocab int     // vocabulary size, tokens in [0, vocab)
	seqs  [][]int // size × length, rectangular
}

// NewBatch validates and wraps raw sequences into a Batch.
// Stage 1 (Validate): vocab > 0, non-empty, rectangular, tokens in range.
// Stage 2 (Finalize): wrap without copying.
// Complexity: O(size·length).
func NewBatch(vocab int, seqs [][]int) (*Batch, error) {
	if vocab <= 0 {
		return nil, ErrBadVocab
	}
	if len(seqs) == 0 || len(seqs[0]) == 0 {
		return nil, ErrEmptyBatch
	}
	length := len(seqs[0])
	for _, s := range seqs {
		if len(s) != length {
			return nil, ErrRaggedBatch
		}
		for _, tok := range s {
			if tok < 0 || tok >= vocab {
				return nil, ErrTokenRange
			}
		}
	}

	return &Batch{vocab: vocab, seqs: seqs}, nil
}

// Random draws a size×length batch of uniform tokens from rng.
// Complexity: O(size·length).
func Random(vocab, size, length int, rng *rand.Rand) (*Batch, error) {
	if vocab <= 0 {
		return nil, ErrBadVocab
	}
	if size <= 0 || length <= 0 {
		return nil, ErrEmptyBatch
	}
	seqs := make([][]int, size)
	for i := range seqs {
		seqs[i] = make([]int, length)
		for j := range seqs[i] {
			seqs[i][j] = rng.Intn(vocab)
		}
	}

	return &Batch{vocab: vocab, seqs: seqs}, nil
}

// Repeated builds a size×length batch cycling through the first period
// tokens of the vocabulary: 0,1,…,period−1,0,1,… Every row is identical.
// Used by the information-decay diagnostic as a maximally structured input.
func Repeated(vocab, size, length, period int) (*Batch, error) {
	if vocab <= 0 {
		return nil, ErrBadVocab
	}
	if size <= 0 || length <= 0 {
		return nil, ErrEmptyBatch
	}
	if period <= 0 || period > vocab {
		period = vocab
	}
	seqs := make([][]int, size)
	for i := range seqs {
		seqs[i] = make([]int, length)
		for j := range seqs[i] {
			seqs[i][j] = j % period
		}
	}

	return &Batch{vocab: vocab, seqs: seqs}, nil
}

// Alternating builds a size×length batch flipping between tokens a and b.
func Alternating(vocab, size, length, a, b int) (*Batch, error) {
	if vocab <= 0 {
		return nil, ErrBadVocab
	}
	if size <= 0 || length <= 0 {
		return nil, ErrEmptyBatch
	}
	if a < 0 || a >= vocab || b < 0 || b >= vocab {
		return nil, ErrTokenRange
	}
	seqs := make([][]int, size)
	for i := range seqs {
		seqs[i] = make([]int, length)
		for j := range seqs[i] {
			if j%2 == 0 {
				seqs[i][j] = a
			} else {
				seqs[i][j] = b
			}
		}
	}

	return &Batch{vocab: vocab, seqs: seqs}, nil
}

// Vocab returns the vocabulary size. Complexity: O(1).
func (b *Batch) Vocab() int { return b.vocab }

// Size returns the number of sequences. Complexity: O(1).
func (b *Batch) Size() int { return len(b.seqs) }

// Len returns the common sequence length. Complexity: O(1).
func (b *Batch) Len() int { return len(b.seqs[0]) }

// At returns the token at sequence i, position j. Panics on out-of-range
// indices (programmer error, matching slice semantics).
func (b *Batch) At(i, j int) int { return b.seqs[i][j] }

// Set assigns token v at sequence i, position j.
func (b *Batch) Set(i, j, v int) error {
	if v < 0 || v >= b.vocab {
		return ErrTokenRange
	}
	b.seqs[i][j] = v

	return nil
}

// Seq returns sequence i backed by the batch storage (no copy).
func (b *Batch) Seq(i int) []int { return b.seqs[i] }

// Clone returns a deep copy of the batch.
// Complexity: O(size·length) time and memory.
func (b *Batch) Clone() *Batch {
	seqs := make([][]int, len(b.seqs))
	for i, s := range b.seqs {
		seqs[i] = make([]int, len(s))
		copy(seqs[i], s)
	}

	return &Batch{vocab: b.vocab, seqs: seqs}
}

// Overlap returns the fraction of positions at which a and b hold the same
// token. Used as the crude correlation / mutual-information proxy.
// Complexity: O(size·length).
func Overlap(a, b *Batch) (float64, error) {
	if a.vocab != b.vocab || a.Size() != b.Size() || a.Len() != b.Len() {
		return 0, ErrShapeMismatch
	}
	match := 0
	total := 0
	for i := range a.seqs {
		for j := range a.seqs[i] {
			if a.seqs[i][j] == b.seqs[i][j] {
				match++
			}
			total++
		}
	}

	return float64(match) / float64(total), nil
}
