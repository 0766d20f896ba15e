package graph

import (
	"errors"
	"math"
)

// Sentinel errors for rate-tensor operations.
var (
	// ErrBadShape indicates non-positive rate-tensor dimensions.
	ErrBadShape = errors.New("graph: rate tensor dimensions must be > 0")

	// ErrIndexOutOfBounds indicates an index outside the tensor's shape.
	ErrIndexOutOfBounds = errors.New("graph: rate tensor index out of bounds")

	// ErrNotGenerator indicates a row violating the continuous-time
	// generator property (row sum zero, off-diagonal non-negative).
	ErrNotGenerator = errors.New("graph: rate row violates generator property")
)

// Rate is a dense (batch, length, vocab, vocab) tensor of instantaneous
// transition rates, stored flat in row-major order for cache friendliness.
//
// Entry (b, l, i, j) is the rate of moving from source token i to target
// token j at position l of sequence b.
type Rate struct {
	batch, length, vocab int
	data                 []float64 // len == batch·length·vocab·vocab
}

// NewRate allocates a zero rate tensor of the given shape.
// Complexity: O(batch·length·vocab²) memory.
func NewRate(batch, length, vocab int) (*Rate, error) {
	if batch <= 0 || length <= 0 || vocab <= 0 {
		return nil, ErrBadShape
	}

	return &Rate{
		batch:  batch,
		length: length,
		vocab:  vocab,
		data:   make([]float64, batch*length*vocab*vocab),
	}, nil
}

// Batch returns the batch dimension.
func (r *Rate) Batch() int { return r.batch }

// Len returns the sequence-length dimension.
func (r *Rate) Len() int { return r.length }

// Vocab returns the vocabulary dimension.
func (r *Rate) Vocab() int { return r.vocab }

// indexOf computes the flat offset of row (b, l, i) or reports bounds.
func (r *Rate) indexOf(b, l, i int) (int, error) {
	if b < 0 || b >= r.batch || l < 0 || l >= r.length || i < 0 || i >= r.vocab {
		return 0, ErrIndexOutOfBounds
	}

	return ((b*r.length+l)*r.vocab + i) * r.vocab, nil
}

// At returns entry (b, l, i, j).
func (r *Rate) At(b, l, i, j int) (float64, error) {
	off, err := r.indexOf(b, l, i)
	if err != nil {
		return 0, err
	}
	if j < 0 || j >= r.vocab {
		return 0, ErrIndexOutOfBounds
	}

	return r.data[off+j], nil
}

// Row returns the rate row for source token i at (b, l), backed by tensor
// storage. Callers mutating the row own the generator invariant.
func (r *Rate) Row(b, l, i int) ([]float64, error) {
	off, err := r.indexOf(b, l, i)
	if err != nil {
		return nil, err
	}

	return r.data[off : off+r.vocab], nil
}

// SetRow writes the off-diagonal entries of row (b, l, i) from probs scaled
// by factor and fixes the diagonal to minus their sum, establishing the
// generator invariant for that row.
// Complexity: O(vocab).
func (r *Rate) SetRow(b, l, i int, probs []float64, factor float64) error {
	row, err := r.Row(b, l, i)
	if err != nil {
		return err
	}
	if len(probs) != r.vocab {
		return ErrBadShape
	}
	var off float64
	for j := range row {
		if j == i {
			continue
		}
		v := probs[j] * factor
		row[j] = v
		off += v
	}
	row[i] = -off

	return nil
}

// Blend overwrites r with w·r + (1−w)·other, element-wise. Shapes must
// match. Blending two generators yields a generator (row sums stay zero).
// Complexity: O(batch·length·vocab²).
func (r *Rate) Blend(other *Rate, w float64) error {
	if r.batch != other.batch || r.length != other.length || r.vocab != other.vocab {
		return ErrBadShape
	}
	for k := range r.data {
		r.data[k] = w*r.data[k] + (1-w)*other.data[k]
	}

	return nil
}

// ValidateGenerator checks every row for the continuous-time generator
// property: off-diagonal entries ≥ −eps and row sum within eps of zero.
// Complexity: O(batch·length·vocab²).
func (r *Rate) ValidateGenerator(eps float64) error {
	for b := 0; b < r.batch; b++ {
		for l := 0; l < r.length; l++ {
			for i := 0; i < r.vocab; i++ {
				row, _ := r.Row(b, l, i)
				var sum float64
				for j, v := range row {
					if j != i && v < -eps {
						return ErrNotGenerator
					}
					sum += v
				}
				if math.Abs(sum) > eps {
					return ErrNotGenerator
				}
			}
		}
	}

	return nil
}

// uniformGenerator fills r with the pure-uniform generator: every
// off-diagonal rate 1/vocab, diagonal −(vocab−1)/vocab.
func (r *Rate) uniformGenerator() {
	u := 1 / float64(r.vocab)
	diag := -float64(r.vocab-1) / float64(r.vocab)
	for b := 0; b < r.batch; b++ {
		for l := 0; l < r.length; l++ {
			for i := 0; i < r.vocab; i++ {
				row, _ := r.Row(b, l, i)
				for j := range row {
					row[j] = u
				}
				row[i] = diag
			}
		}
	}
}
