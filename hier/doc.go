// Package hier runs diffusion over a hierarchy of vocabulary resolutions:
// one graph per level, from a heavily compressed coarse vocabulary down to
// the full token space.
//
// Levels are connected by Codecs: explicit many-to-one projection tables
// built once from embedding similarity. Encoding and decoding are plain
// lookups, never differentiable operations. Coarse levels diffuse faster
// than fine ones, and Step blends the per-level corruptions
// stochastically, so early diffusion destroys fine detail while coarse
// structure lingers.
package hier
