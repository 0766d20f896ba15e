package entropy

import (
	"math"

	"github.com/katalvlaran/aegud/token"
)

// Shannon returns the Shannon entropy of the histogram in nats.
// Zero-probability buckets contribute nothing; a zero-mass or single-bucket
// histogram has zero entropy.
// Complexity: O(vocab).
func Shannon(h token.Histogram) float64 {
	var ent float64
	for _, p := range h.Probs() {
		if p > 0 {
			ent -= p * math.Log(p)
		}
	}

	return ent
}

// Normalized returns Shannon entropy divided by log(vocab), so that a
// uniform histogram scores exactly 1 and a single-token histogram exactly 0.
func Normalized(h token.Histogram) float64 {
	v := h.Buckets()
	if v <= 1 {
		return 0
	}

	return Shannon(h) / math.Log(float64(v))
}

// KLFromUniform returns KL(P ‖ U) in nats, where P is the histogram's
// empirical distribution and U the uniform distribution over its buckets.
// Exactly 0 for a uniform histogram; log(vocab) for a point mass.
// Complexity: O(vocab).
func KLFromUniform(h token.Histogram) float64 {
	v := float64(h.Buckets())
	if v == 0 {
		return 0
	}
	var kl float64
	for _, p := range h.Probs() {
		if p > 0 {
			kl += p * math.Log(p*v)
		}
	}

	return kl
}

// Perplexity returns exp(Shannon entropy): the effective vocabulary size
// implied by the histogram.
func Perplexity(h token.Histogram) float64 {
	return math.Exp(Shannon(h))
}
