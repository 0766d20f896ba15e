// Package graph defines the forward-diffusion models of aegud: transition-
// rate "graphs" over a token vocabulary, from the pure-uniform baseline to
// the entropy-adaptive variants with convergence guarantees.
//
// The key algebraic object is the Rate tensor: for a batch of sequences and
// a scalar time t, a dense (batch, length, vocab, vocab) array of
// instantaneous transition rates. Its generator invariant — every row sums
// to zero, off-diagonal entries non-negative, diagonal equal to minus the
// off-diagonal sum — is enforced by construction and checked by
// Rate.ValidateGenerator.
//
// Graph variants, leaves first:
//
//   - Uniform: the classical uniform-corruption baseline.
//   - AdaptiveUniform: modulates a learned transition matrix by per-position
//     entropy scores and scales the score-entropy loss by information
//     content.
//   - Enhanced: wraps the adaptive rate in a time-decaying adaptive weight
//     w(t) ∈ [0,1] (two-stage, asymptotic 1−t², controlled exp(−t/τ);
//     composable), blending toward the pure-uniform generator so the
//     process provably converges to the uniform stationary distribution.
//   - EnhancedV2: adds a learned schedule network, vocabulary-aware decay,
//     an information-bottleneck auxiliary loss, and a relaxed convergence
//     check.
//
// A deliberate inconsistency of the research method is preserved: the
// adaptive rate machinery shapes the loss but NOT forward sampling.
// SampleTransition always applies simple uniform corruption with
// probability 1−exp(−σ); see its doc comment.
package graph
