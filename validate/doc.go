// Package validate diagnoses forward-diffusion convergence: does a graph,
// driven by a noise schedule, actually carry data to the uniform limit?
//
// The Validator runs the forward process over a synthetic batch and
// records per-step metrics (normalized entropy, KL from uniform,
// chi-squared uniformity, mutual-information proxy, perplexity, token
// diversity), then applies fixed convergence criteria to the final step.
// Records are immutable once built and serialize to timestamped JSON
// report files.
//
// Supplementary diagnostics measure how quickly structured information is
// destroyed (InformationDecay over patterned batches, with an exponential
// decay-rate fit) and how much surface structure survives a given noise
// level (NGramOverlap, PositionSimilarity).
package validate
