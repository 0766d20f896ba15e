package token

// Histogram holds per-vocabulary token counts for a batch or sequence.
// It is recomputed fresh at every diagnostic checkpoint and never persisted.
type Histogram struct {
	counts []float64 // one bucket per vocabulary token
	total  float64   // sum of all counts
}

// NewHistogram wraps raw counts into a Histogram.
// Negative counts are a programmer error and clamp to zero.
func NewHistogram(counts []float64) Histogram {
	c := make([]float64, len(counts))
	var total float64
	for i, v := range counts {
		if v < 0 {
			v = 0
		}
		c[i] = v
		total += v
	}

	return Histogram{counts: c, total: total}
}

// Count builds the token-frequency histogram over the whole batch.
// Complexity: O(size·length + vocab).
func (b *Batch) Count() Histogram {
	counts := make([]float64, b.vocab)
	for _, s := range b.seqs {
		for _, tok := range s {
			counts[tok]++
		}
	}

	return Histogram{counts: counts, total: float64(b.Size() * b.Len())}
}

// CountSeq builds the histogram of a single sequence i.
// Complexity: O(length + vocab).
func (b *Batch) CountSeq(i int) Histogram {
	counts := make([]float64, b.vocab)
	for _, tok := range b.seqs[i] {
		counts[tok]++
	}

	return Histogram{counts: counts, total: float64(b.Len())}
}

// Buckets returns the number of buckets (the vocabulary size).
func (h Histogram) Buckets() int { return len(h.counts) }

// Total returns the total mass of the histogram.
func (h Histogram) Total() float64 { return h.total }

// Counts returns a copy of the raw per-token counts.
func (h Histogram) Counts() []float64 {
	out := make([]float64, len(h.counts))
	copy(out, h.counts)

	return out
}

// Probs returns the normalized probability vector. A zero-mass histogram
// yields the all-zero vector rather than NaN.
// Complexity: O(vocab).
func (h Histogram) Probs() []float64 {
	probs := make([]float64, len(h.counts))
	if h.total == 0 {
		return probs
	}
	for i, c := range h.counts {
		probs[i] = c / h.total
	}

	return probs
}

// Diversity returns the fraction of vocabulary tokens with non-zero count.
func (h Histogram) Diversity() float64 {
	if len(h.counts) == 0 {
		return 0
	}
	used := 0
	for _, c := range h.counts {
		if c > 0 {
			used++
		}
	}

	return float64(used) / float64(len(h.counts))
}
