package validate

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/aegud/entropy"
	"github.com/katalvlaran/aegud/token"
)

// overlapEps keeps the MI logarithm finite at full overlap.
const overlapEps = 1e-10

// Sentinel errors for metric computations.
var (
	// ErrEmptyHistogram indicates a histogram with no observations.
	ErrEmptyHistogram = errors.New("validate: histogram has no observations")

	// ErrBadNGram indicates an n-gram order below 1 or above the sequence
	// length.
	ErrBadNGram = errors.New("validate: n-gram order out of range")
)

// StepMetrics is one forward-diffusion diagnostic sample.
type StepMetrics struct {
	Step        int     `json:"step"`
	Time        float64 `json:"time"`
	Sigma       float64 `json:"sigma"`
	Entropy     float64 `json:"entropy"`
	KL          float64 `json:"kl"`
	ChiSquared  float64 `json:"chi_squared"`
	ChiPValue   float64 `json:"chi_p_value"`
	MutualInfo  float64 `json:"mutual_info"`
	Perplexity  float64 `json:"perplexity"`
	Diversity   float64 `json:"diversity"`
	OverlapWith float64 `json:"overlap_with_source"`
}

// ChiSquared tests h for uniformity: the Pearson statistic over equal
// expected counts and its survival-function p-value at V−1 degrees of
// freedom. A p-value near 1 is consistent with uniform; near 0 rejects it.
func ChiSquared(h token.Histogram) (stat, p float64, err error) {
	if h.Total() == 0 {
		return 0, 0, ErrEmptyHistogram
	}
	expected := h.Total() / float64(h.Buckets())
	contribs := make([]float64, 0, h.Buckets())
	for _, c := range h.Counts() {
		d := c - expected
		contribs = append(contribs, d*d/expected)
	}
	stat = floats.Sum(contribs)
	dist := distuv.ChiSquared{K: float64(h.Buckets() - 1)}

	return stat, dist.Survival(stat), nil
}

// MutualInfo approximates the residual mutual information between a clean
// batch and its noised counterpart from their token overlap:
// −log(1−overlap+ε)·overlap. Zero overlap gives ~0; full overlap diverges
// toward the ε-bounded maximum.
func MutualInfo(x0, xt *token.Batch) (float64, error) {
	overlap, err := token.Overlap(x0, xt)
	if err != nil {
		return 0, err
	}

	return -math.Log(1-overlap+overlapEps) * overlap, nil
}

// sample computes the histogram-based diagnostics for batch b against its
// clean source.
func sample(step int, t, sigma float64, x0, xt *token.Batch) (StepMetrics, error) {
	h := xt.Count()
	stat, p, err := ChiSquared(h)
	if err != nil {
		return StepMetrics{}, err
	}
	mi, err := MutualInfo(x0, xt)
	if err != nil {
		return StepMetrics{}, err
	}
	overlap, err := token.Overlap(x0, xt)
	if err != nil {
		return StepMetrics{}, err
	}

	return StepMetrics{
		Step:        step,
		Time:        t,
		Sigma:       sigma,
		Entropy:     entropy.Normalized(h),
		KL:          entropy.KLFromUniform(h),
		ChiSquared:  stat,
		ChiPValue:   p,
		MutualInfo:  mi,
		Perplexity:  entropy.Perplexity(h),
		Diversity:   h.Diversity(),
		OverlapWith: overlap,
	}, nil
}
