// Package nn provides the minimal forward-only neural primitives that the
// entropy estimator, learned schedules, and auxiliary modules are built on:
// linear maps, token embeddings, layer normalization, bounded activations,
// and a numerically stable softmax.
//
// There is no autodiff here. Parameters are drawn once from an explicitly
// seeded generator at construction and stay fixed; every Forward call is a
// pure function of its inputs and those parameters. Training the external
// score model is the optimizer's business, not this package's.
package nn
