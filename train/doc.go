// Package train drives score-entropy training over a diffusion graph and
// a noise schedule.
//
// External collaborators enter through small interfaces: ScoreModel
// produces per-token score vectors for a noised batch, Updater consumes
// the resulting loss, and KLRegularized marks graphs whose loss carries a
// KL-regularization term. Whether a graph is KL-regularized is resolved
// exactly once, at trainer construction.
//
// The Experiment runner executes named configurations sequentially; a
// panic or error inside one experiment is captured into its Result and
// never aborts the batch. Checkpoints serialize configuration, loss
// trajectories and validation records to timestamped JSON files.
package train
