// Package schedule defines noise schedules for continuous-time discrete
// diffusion: monotone maps t → σ(t) with their rates dσ/dt.
//
// Provided schedules:
//
//   - Geometric: σmin^(1−t)·σmax^t, the standard log-linear interpolation.
//   - LogLinear: −log(1−(1−ε)·t), unbounded as t→1.
//   - InformationPreserving: a geometric base modulated down while the
//     observed information content is high, clamped to [σmin, σmax].
//   - Learnable: a log-σ knot table with interpolation, finite-difference
//     rates, and a smoothness+monotonicity regularizer.
//   - Hybrid: slow accumulation up to a switch point, then rapid geometric
//     growth to full noise.
//
// All schedules validate parameters at construction and are pure afterward;
// times outside [0, 1] are clamped.
package schedule
