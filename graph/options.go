package graph

// DEFAULTS - single source of truth for graph construction. The enhanced
// defaults mirror the research method's reference configuration: all three
// convergence policies enabled, KL regularization at 0.01.
const (
	// DefaultEpsilon is the tolerance of generator-invariant checks.
	DefaultEpsilon = 1e-9

	// DefaultEntropyScale scales the influence of per-position entropy on
	// the adaptive rate.
	DefaultEntropyScale = 1.0

	// DefaultRateScale is the global multiplier of adaptive rates.
	DefaultRateScale = 1.0

	// DefaultStagePoint is the two-stage transition time fraction: at or
	// after it the adaptive weight drops hard to 0.
	DefaultStagePoint = 0.8

	// DefaultDecayTau is the controlled-decay time constant.
	DefaultDecayTau = 0.1

	// DefaultKLWeight is the KL-regularization weight of the enhanced loss.
	DefaultKLWeight = 0.01

	// DefaultRelaxedEpsilon is the relaxed-convergence tolerance, as a
	// multiple of the uniform probability 1/vocab.
	DefaultRelaxedEpsilon = 0.1

	// DefaultBottleneckBeta weighs the variational KL term of the
	// information-bottleneck auxiliary loss.
	DefaultBottleneckBeta = 0.1

	// DefaultSeed seeds learned-component initialization.
	DefaultSeed = 1

	// DefaultMaxT is the terminal diffusion time.
	DefaultMaxT = 1.0
)

// Internal panic messages (programmer errors in option constructors).
const (
	panicStagePointInvalid = "graph: WithTwoStage: point must be in (0, 1)"
	panicDecayTauInvalid   = "graph: WithControlledDecay: tau must be > 0"
	panicKLWeightInvalid   = "graph: WithKLRegularization: weight must be >= 0"
	panicScaleInvalid      = "graph: WithEntropyScale/WithRateScale: scale must be > 0"
	panicSparsityInvalid   = "graph: WithSparsity: k must be >= 1"
	panicRelaxEpsInvalid   = "graph: WithRelaxedEpsilon: eps must be > 0"
	panicBetaInvalid       = "graph: WithBottleneck: beta must be >= 0"
)

// Option mutates graph construction options. Options irrelevant to a given
// constructor are ignored by it (e.g. V2-only options on NewEnhanced).
type Option func(*Options)

// Options carries the tunables of every graph variant; fields stay
// unexported from callers' perspective via the functional constructors.
type Options struct {
	entropyScale float64
	rateScale    float64
	sparsityK    int // 0 = dense transitions
	seed         int64

	asymptotic      bool
	twoStage        bool
	stagePoint      float64
	controlledDecay bool
	decayTau        float64
	klWeight        float64

	learnedSchedule bool
	vocabDecay      bool
	bottleneck      bool
	bottleneckBeta  float64
	relaxedEps      float64
}

func defaultOptions() Options {
	return Options{
		entropyScale:    DefaultEntropyScale,
		rateScale:       DefaultRateScale,
		seed:            DefaultSeed,
		asymptotic:      true,
		twoStage:        true,
		stagePoint:      DefaultStagePoint,
		controlledDecay: true,
		decayTau:        DefaultDecayTau,
		klWeight:        DefaultKLWeight,
		bottleneckBeta:  DefaultBottleneckBeta,
		relaxedEps:      DefaultRelaxedEpsilon,
	}
}

// WithEntropyScale sets the entropy influence on rates. Panics on s <= 0.
func WithEntropyScale(s float64) Option {
	if s <= 0 {
		panic(panicScaleInvalid)
	}

	return func(o *Options) { o.entropyScale = s }
}

// WithRateScale sets the global rate multiplier. Panics on s <= 0.
func WithRateScale(s float64) Option {
	if s <= 0 {
		panic(panicScaleInvalid)
	}

	return func(o *Options) { o.rateScale = s }
}

// WithSparsity switches the adaptive transition matrix to its top-k sparse
// variant. Panics on k < 1 (upper bound is validated against the vocabulary
// at construction).
func WithSparsity(k int) Option {
	if k < 1 {
		panic(panicSparsityInvalid)
	}

	return func(o *Options) { o.sparsityK = k }
}

// WithSeed seeds learned-component initialization.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.seed = seed }
}

// WithTwoStage enables the two-stage policy with the given transition time
// fraction. Panics on point outside (0, 1).
func WithTwoStage(point float64) Option {
	if point <= 0 || point >= 1 {
		panic(panicStagePointInvalid)
	}

	return func(o *Options) { o.twoStage = true; o.stagePoint = point }
}

// WithoutTwoStage disables the two-stage policy.
func WithoutTwoStage() Option {
	return func(o *Options) { o.twoStage = false }
}

// WithAsymptotic enables the smooth 1−t² asymptotic-guarantee policy.
func WithAsymptotic() Option {
	return func(o *Options) { o.asymptotic = true }
}

// WithoutAsymptotic disables the asymptotic-guarantee policy.
func WithoutAsymptotic() Option {
	return func(o *Options) { o.asymptotic = false }
}

// WithControlledDecay enables exponential decay with time constant tau.
// Panics on tau <= 0.
func WithControlledDecay(tau float64) Option {
	if tau <= 0 {
		panic(panicDecayTauInvalid)
	}

	return func(o *Options) { o.controlledDecay = true; o.decayTau = tau }
}

// WithoutControlledDecay disables the exponential-decay policy.
func WithoutControlledDecay() Option {
	return func(o *Options) { o.controlledDecay = false }
}

// WithKLRegularization sets the KL-regularization weight; 0 disables the
// regularized loss term. Panics on negative weights.
func WithKLRegularization(w float64) Option {
	if w < 0 {
		panic(panicKLWeightInvalid)
	}

	return func(o *Options) { o.klWeight = w }
}

// WithLearnedSchedule enables the V2 learned convergence schedule.
func WithLearnedSchedule() Option {
	return func(o *Options) { o.learnedSchedule = true }
}

// WithVocabularyDecay enables V2 per-token decay-rate modulation.
func WithVocabularyDecay() Option {
	return func(o *Options) { o.vocabDecay = true }
}

// WithBottleneck enables the V2 information-bottleneck auxiliary loss with
// variational weight beta. Panics on beta < 0.
func WithBottleneck(beta float64) Option {
	if beta < 0 {
		panic(panicBetaInvalid)
	}

	return func(o *Options) { o.bottleneck = true; o.bottleneckBeta = beta }
}

// WithRelaxedEpsilon sets the relaxed-convergence tolerance. Panics on
// eps <= 0.
func WithRelaxedEpsilon(eps float64) Option {
	if eps <= 0 {
		panic(panicRelaxEpsInvalid)
	}

	return func(o *Options) { o.relaxedEps = eps }
}
