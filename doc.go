// Package aegud is a research-experimentation harness for Adaptive
// Entropy-Guided Uniform Diffusion (AEGUD) — a discrete diffusion
// language-model variant in which a uniform forward process over a token
// vocabulary is modulated by per-position entropy estimates.
//
// 🚀 What is aegud?
//
//	A deterministic, test-first playground that brings together:
//		• Token primitives: sequences, batches, frequency histograms
//		• Entropy estimation: per-position information scores in [0,1]
//		• Transition algebra: learned row-stochastic V×V matrices, dense & top-k
//		• Diffusion graphs: uniform baseline, adaptive, and enhanced variants
//		  with time-decaying adaptive weights and convergence guarantees
//		• Noise schedules: geometric, log-linear, information-preserving,
//		  learnable, and hybrid two-phase
//		• Hierarchical diffusion: coarse-to-fine vocabulary levels with
//		  explicit many-to-one codecs
//		• Diagnostics: entropy, KL-from-uniform, χ² uniformity, information
//		  decay, perplexity — serialized as immutable JSON metric records
//
// ✨ Why this layout?
//
//   - Deterministic by construction – all randomness flows through seeded
//     generators handed in at construction; no global mutable state
//   - Explicit invariants – transition rows sum to 1, generator rows sum
//     to 0, adaptive weights decay to 0 at terminal time; each invariant
//     is validated and covered by tests
//   - Explicit capabilities – whether a graph supports a KL-regularized
//     loss is an interface resolved once at trainer construction, never
//     probed per call
//
// Everything is organized under flat topic packages:
//
//	token/      — sequences, batches & histograms
//	nn/         — minimal forward-only neural primitives
//	entropy/    — entropy estimation & histogram information measures
//	transition/ — learned row-stochastic transition matrices
//	graph/      — diffusion graphs & rate tensors
//	schedule/   — noise schedules σ(t)
//	hier/       — hierarchical coarse-to-fine diffusion
//	validate/   — convergence diagnostics & metric records
//	train/      — losses, trainer, experiment runner, checkpoints
//	cmd/aegud/  — CLI experiment runner
//
// The transformer scoring model and the optimizer are externally supplied
// collaborators: aegud consumes them through small interfaces and never
// reaches into their internals.
package aegud
