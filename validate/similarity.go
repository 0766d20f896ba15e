package validate

import (
	"github.com/katalvlaran/aegud/token"
)

// NGramOverlap measures how much local structure of a survives in b: the
// fraction of order-n grams of each sequence of a that also occur anywhere
// in the corresponding sequence of b, averaged over the batch.
// Complexity: O(size·length·n).
func NGramOverlap(a, b *token.Batch, n int) (float64, error) {
	if a.Vocab() != b.Vocab() || a.Size() != b.Size() || a.Len() != b.Len() {
		return 0, token.ErrShapeMismatch
	}
	if n < 1 || n > a.Len() {
		return 0, ErrBadNGram
	}

	var total float64
	for i := 0; i < a.Size(); i++ {
		seen := make(map[string]struct{})
		for j := 0; j+n <= b.Len(); j++ {
			seen[gramKey(b.Seq(i)[j:j+n])] = struct{}{}
		}

		grams := a.Len() - n + 1
		found := 0
		for j := 0; j+n <= a.Len(); j++ {
			if _, ok := seen[gramKey(a.Seq(i)[j : j+n])]; ok {
				found++
			}
		}
		total += float64(found) / float64(grams)
	}

	return total / float64(a.Size()), nil
}

// gramKey packs an n-gram into a map key. Token ids fit comfortably in a
// rune each for any realistic vocabulary.
func gramKey(gram []int) string {
	key := make([]rune, len(gram))
	for i, tok := range gram {
		key[i] = rune(tok)
	}

	return string(key)
}

// PositionSimilarity measures positional agreement between a and b with
// linearly decaying weights: position 0 weighs 1, the last position 0.5,
// emphasizing sequence prefixes where structure concentrates.
func PositionSimilarity(a, b *token.Batch) (float64, error) {
	if a.Vocab() != b.Vocab() || a.Size() != b.Size() || a.Len() != b.Len() {
		return 0, token.ErrShapeMismatch
	}

	length := a.Len()
	var matched, weight float64
	for j := 0; j < length; j++ {
		w := 1.0
		if length > 1 {
			w = 1 - 0.5*float64(j)/float64(length-1)
		}
		for i := 0; i < a.Size(); i++ {
			if a.At(i, j) == b.At(i, j) {
				matched += w
			}
			weight += w
		}
	}

	return matched / weight, nil
}
