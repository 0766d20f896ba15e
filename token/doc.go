// Package token defines the central Batch and Histogram types used by every
// diffusion graph, noise schedule, and diagnostic in aegud.
//
// A Batch is an immutable-by-convention collection of fixed-length token
// sequences over a single vocabulary. A Histogram is the per-vocabulary
// count vector of a Batch, recomputed fresh at each diagnostic checkpoint
// and never persisted.
//
// Errors:
//
//	ErrBadVocab     - vocabulary size is non-positive.
//	ErrEmptyBatch   - batch has no sequences or zero-length sequences.
//	ErrRaggedBatch  - sequences have differing lengths.
//	ErrTokenRange   - a token lies outside [0, vocab).
//	ErrShapeMismatch - two batches differ in shape or vocabulary.
package token
