// Command aegud runs the adaptive-diffusion experiment suite: it trains a
// toy score model against each configured graph variant, validates forward
// convergence, and writes a JSON checkpoint of the results.
//
// Usage:
//
//	aegud [--experiment all|uniform|adaptive|enhanced|two-stage|v2|hierarchical]
//	      [--vocab 128] [--steps 50] [--batch 16] [--seqlen 64]
//	      [--seed 1] [--out .]
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/katalvlaran/aegud/graph"
	"github.com/katalvlaran/aegud/hier"
	"github.com/katalvlaran/aegud/train"
)

func main() {
	var (
		experiment = flag.String("experiment", "all", "experiment to run (all, uniform, adaptive, enhanced, two-stage, v2, hierarchical)")
		vocab      = flag.Int("vocab", 128, "vocabulary size")
		steps      = flag.Int("steps", 50, "training steps per experiment")
		batch      = flag.Int("batch", 16, "batch size")
		seqLen     = flag.Int("seqlen", 64, "sequence length")
		seed       = flag.Int64("seed", 1, "random seed")
		out        = flag.String("out", ".", "output directory for checkpoints and reports")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "aegud: ", log.LstdFlags)

	if *experiment == "hierarchical" || *experiment == "all" {
		if err := runHierarchical(logger, *vocab, *batch, *seqLen, *seed, *out); err != nil {
			logger.Fatalf("hierarchical: %v", err)
		}
		if *experiment == "hierarchical" {
			return
		}
	}

	experiments := suite(*experiment, *vocab, *steps, *batch, *seqLen, *seed)
	if len(experiments) == 0 {
		logger.Fatalf("unknown experiment %q", *experiment)
	}

	results := train.RunAll(experiments)
	for _, res := range results {
		if res.Err != "" {
			logger.Printf("%-12s FAILED: %s", res.Name, res.Err)
			continue
		}
		status := "not converged"
		if res.Record != nil && res.Record.Converged {
			status = "converged"
		}
		logger.Printf("%-12s final loss %.4f, %s", res.Name, res.FinalLoss, status)
	}

	path, err := train.SaveCheckpoint(*out, results)
	if err != nil {
		logger.Fatalf("checkpoint: %v", err)
	}
	logger.Printf("checkpoint written to %s", path)
}

// suite assembles the named experiment configurations. "all" returns the
// full comparison set.
func suite(name string, vocab, steps, batch, seqLen int, seed int64) []train.Experiment {
	base := func(n string, build func() (graph.Graph, error)) train.Experiment {
		return train.Experiment{
			Name: n, Steps: steps,
			Vocab: vocab, BatchSize: batch, SeqLen: seqLen,
			Seed: seed, Build: build, Validate: true,
		}
	}

	all := []train.Experiment{
		base("uniform", func() (graph.Graph, error) {
			return graph.NewUniform(vocab)
		}),
		base("adaptive", func() (graph.Graph, error) {
			return graph.NewAdaptive(vocab, graph.WithSeed(seed))
		}),
		base("enhanced", func() (graph.Graph, error) {
			return graph.NewEnhanced(vocab, graph.WithSeed(seed))
		}),
		base("two-stage", func() (graph.Graph, error) {
			return graph.NewEnhanced(vocab,
				graph.WithSeed(seed),
				graph.WithTwoStage(0.8),
				graph.WithoutAsymptotic(),
				graph.WithoutControlledDecay())
		}),
		base("v2", func() (graph.Graph, error) {
			return graph.NewEnhancedV2(vocab,
				graph.WithSeed(seed),
				graph.WithLearnedSchedule(),
				graph.WithVocabularyDecay(),
				graph.WithBottleneck(graph.DefaultBottleneckBeta))
		}),
	}
	if name == "all" {
		return all
	}
	for _, e := range all {
		if e.Name == name {
			return []train.Experiment{e}
		}
	}

	return nil
}

// runHierarchical validates the multi-level stack and writes its per-level
// reports.
func runHierarchical(logger *log.Logger, vocab, batch, seqLen int, seed int64, out string) error {
	d, err := hier.New(vocab, hier.DefaultRatios(), seed)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(seed))

	records, err := d.ValidateLevels(batch, seqLen, rng)
	if err != nil {
		return err
	}
	for i, rec := range records {
		status := "not converged"
		if rec.Converged {
			status = "converged"
		}
		logger.Printf("hierarchical level %d (vocab %d): %s", i, rec.Vocab, status)
		path, err := rec.Save(out)
		if err != nil {
			return fmt.Errorf("save level %d report: %w", i, err)
		}
		logger.Printf("hierarchical level %d report: %s", i, path)
	}

	// One diffusion step as a smoke check of the blended forward process.
	x0, err := d.Levels()[0].Graph.SampleLimit(batch, seqLen, rng)
	if err != nil {
		return err
	}
	if _, _, err := d.Step(x0, 0.5, rng); err != nil {
		return err
	}

	return nil
}
