// Package entropy estimates local information content of token sequences
// and provides the histogram information measures (Shannon entropy,
// KL-from-uniform, perplexity) shared by the diffusion graphs and the
// convergence diagnostics.
//
// The Estimator maps a batch of token sequences to per-position scores in
// [0,1]: tokens are embedded, mixed with a windowed context encoder, and
// squashed through a bounded head. InformationContent blends the mean
// contextual score 50/50 with the normalized Shannon entropy of the
// sequence's own token-frequency histogram.
//
// For fixed construction parameters every method is a pure function of its
// input batch — there is no internal state, no global buffers.
package entropy
