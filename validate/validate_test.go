package validate_test

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/aegud/graph"
	"github.com/katalvlaran/aegud/schedule"
	"github.com/katalvlaran/aegud/token"
	"github.com/katalvlaran/aegud/validate"
)

// TestChiSquared_UniformCounts verifies the uniform case: zero statistic,
// p-value 1.
func TestChiSquared_UniformCounts(t *testing.T) {
	h := token.NewHistogram([]float64{10, 10, 10, 10})

	stat, p, err := validate.ChiSquared(h)
	require.NoError(t, err)
	assert.Zero(t, stat, "uniform counts give zero statistic")
	assert.InDelta(t, 1, p, 1e-12, "zero statistic cannot reject uniformity")
	assert.Greater(t, p, 0.05, "uniform counts pass at the 5% level")
}

// TestChiSquared_DegenerateCounts verifies a point mass is rejected
// decisively.
func TestChiSquared_DegenerateCounts(t *testing.T) {
	h := token.NewHistogram([]float64{40, 0, 0, 0})

	stat, p, err := validate.ChiSquared(h)
	require.NoError(t, err)
	assert.InDelta(t, 120, stat, 1e-9, "point mass over 40 draws, 4 buckets")
	assert.Less(t, p, 1e-10, "point mass is rejected with p ~ 0")

	_, _, err = validate.ChiSquared(token.NewHistogram([]float64{0, 0}))
	assert.ErrorIs(t, err, validate.ErrEmptyHistogram, "empty histogram must error")
}

// TestMutualInfo_Extremes checks the overlap-based MI proxy at identical
// and disjoint batches.
func TestMutualInfo_Extremes(t *testing.T) {
	a, err := token.NewBatch(4, [][]int{{0, 1, 2, 3}})
	require.NoError(t, err)
	b, err := token.NewBatch(4, [][]int{{1, 2, 3, 0}})
	require.NoError(t, err)

	mi, err := validate.MutualInfo(a, a.Clone())
	require.NoError(t, err)
	assert.Greater(t, mi, 20.0, "full overlap gives near-maximal MI")

	mi, err = validate.MutualInfo(a, b)
	require.NoError(t, err)
	assert.Zero(t, mi, "disjoint batches carry no shared information")
}

// TestValidator_ForwardConvergence_UniformGraph runs the baseline graph
// under heavy noise and expects convergence under the default criteria.
func TestValidator_ForwardConvergence_UniformGraph(t *testing.T) {
	g, err := graph.NewUniform(8)
	require.NoError(t, err)
	noise, err := schedule.NewGeometric(schedule.DefaultSigmaMin, schedule.DefaultSigmaMax)
	require.NoError(t, err)

	v := validate.NewValidator(g, noise,
		validate.WithSteps(10),
		validate.WithBatchShape(16, 256))
	rng := rand.New(rand.NewSource(7))

	rec, err := v.ForwardConvergence("uniform-baseline", nil, rng)
	require.NoError(t, err)

	assert.Len(t, rec.Steps, 10, "one sample per step")
	assert.True(t, rec.Converged, "uniform corruption at σmax=20 reaches the limit")
	final := rec.Final()
	assert.Greater(t, final.Entropy, 0.95, "final entropy above threshold")
	assert.Less(t, final.KL, 0.01, "final KL below threshold")
	assert.InDelta(t, 1.0/8, final.OverlapWith, 0.05, "source overlap near 1/V at full noise")
}

// TestValidator_Criteria_ChiSquaredGate verifies the optional chi-squared
// criterion flips the verdict on a skewed final step.
func TestValidator_Criteria_ChiSquaredGate(t *testing.T) {
	crit := validate.DefaultCriteria()
	skewed := validate.StepMetrics{Entropy: 0.96, KL: 0.005, ChiPValue: 0.01}

	assert.True(t, crit.Met(skewed), "chi-squared off: entropy and KL suffice")

	crit.UseChiSquared = true
	assert.False(t, crit.Met(skewed), "chi-squared on: low p-value blocks convergence")
}

// TestRecord_SaveLoad_RoundTrip covers the timestamped JSON report cycle.
func TestRecord_SaveLoad_RoundTrip(t *testing.T) {
	steps := []validate.StepMetrics{{Step: 1, Time: 1, Entropy: 0.99, KL: 0.001}}
	rec, err := validate.NewRecord("roundtrip", 8, validate.DefaultCriteria(), steps)
	require.NoError(t, err)
	assert.True(t, rec.Converged)

	dir := t.TempDir()
	path, err := rec.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Contains(t, filepath.Base(path), "validation_report_", "report name carries the prefix")

	loaded, err := validate.LoadRecord(path)
	require.NoError(t, err)
	assert.Equal(t, rec.Name, loaded.Name)
	assert.Equal(t, rec.Converged, loaded.Converged)
	assert.Len(t, loaded.Steps, 1)

	_, err = validate.NewRecord("empty", 8, validate.DefaultCriteria(), nil)
	assert.ErrorIs(t, err, validate.ErrNoSteps, "empty trajectory must error")
}

// TestValidator_InformationDecay fits decay rates for all three patterns
// and checks they are positive and finite under moderate noise.
func TestValidator_InformationDecay(t *testing.T) {
	g, err := graph.NewUniform(8)
	require.NoError(t, err)
	noise, err := schedule.NewGeometric(schedule.DefaultSigmaMin, 3)
	require.NoError(t, err)

	v := validate.NewValidator(g, noise,
		validate.WithSteps(20),
		validate.WithBatchShape(8, 128))
	rng := rand.New(rand.NewSource(7))

	fits, err := v.InformationDecay(rng)
	require.NoError(t, err)
	require.Len(t, fits, 3, "one fit per pattern")

	for pattern, fit := range fits {
		assert.Greater(t, fit.Rate, 0.0, "%s: information decays", pattern)
		assert.False(t, math.IsInf(fit.Rate, 1), "%s: moderate noise leaves a finite rate", pattern)
		assert.Len(t, fit.Trajectory, 20, "%s: full trajectory recorded", pattern)
	}
}

// TestNGramOverlap checks identical, shifted and invalid inputs.
func TestNGramOverlap(t *testing.T) {
	a, err := token.NewBatch(4, [][]int{{0, 1, 2, 3, 0, 1}})
	require.NoError(t, err)

	overlap, err := validate.NGramOverlap(a, a.Clone(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, overlap, "a batch shares all n-grams with itself")

	b, err := token.NewBatch(4, [][]int{{3, 3, 3, 3, 3, 3}})
	require.NoError(t, err)
	overlap, err = validate.NGramOverlap(a, b, 2)
	require.NoError(t, err)
	assert.Zero(t, overlap, "disjoint token sets share no n-grams")

	_, err = validate.NGramOverlap(a, b, 0)
	assert.ErrorIs(t, err, validate.ErrBadNGram, "order below 1 rejected")
	_, err = validate.NGramOverlap(a, b, 7)
	assert.ErrorIs(t, err, validate.ErrBadNGram, "order above length rejected")
}

// TestPositionSimilarity checks the prefix weighting: an early match
// scores higher than a late one.
func TestPositionSimilarity(t *testing.T) {
	base, err := token.NewBatch(4, [][]int{{0, 1, 2, 3}})
	require.NoError(t, err)
	early, err := token.NewBatch(4, [][]int{{0, 3, 3, 0}})
	require.NoError(t, err)
	late, err := token.NewBatch(4, [][]int{{3, 0, 0, 3}})
	require.NoError(t, err)

	se, err := validate.PositionSimilarity(base, early)
	require.NoError(t, err)
	sl, err := validate.PositionSimilarity(base, late)
	require.NoError(t, err)
	assert.Greater(t, se, sl, "matching the prefix outweighs matching the suffix")

	self, err := validate.PositionSimilarity(base, base.Clone())
	require.NoError(t, err)
	assert.Equal(t, 1.0, self, "identical batches are fully similar")
}
