// Package transition produces learned row-stochastic transition matrices
// over a token vocabulary from embedding-dot-product similarity.
//
// The temperature of the row-wise softmax grows with the mean entropy of
// the current batch, so high-entropy inputs yield flatter, more uniform
// transitions. A top-k sparsified variant zeros all but the k largest
// entries per row and renormalizes — an approximation that bounds compute
// for large vocabularies.
//
// Invariant: every row of every produced matrix sums to 1 within
// DefaultEpsilon, in both the dense and the sparse case.
package transition
