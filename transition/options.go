package transition

// DEFAULTS - single source of truth for Matrix construction.
const (
	// DefaultEpsilon is the tolerance of the row-stochastic validator.
	DefaultEpsilon = 1e-5

	// DefaultHiddenDim is the width of the similarity embeddings.
	DefaultHiddenDim = 64

	// DefaultTemperature is the base softmax temperature before entropy
	// modulation.
	DefaultTemperature = 1.0

	// DefaultSelfBias is the additive bias on diagonal (self-transition)
	// similarities.
	DefaultSelfBias = 0.0

	// DefaultSeed seeds the embedding init when no seed is given.
	DefaultSeed = 1
)

// Internal panic messages (programmer errors in option constructors).
const (
	panicTemperatureInvalid = "transition: WithTemperature: temperature must be > 0"
	panicHiddenDimInvalid   = "transition: WithHiddenDim: dim must be > 0"
)

// Option mutates Matrix construction options.
type Option func(*options)

type options struct {
	hiddenDim   int
	temperature float64
	selfBias    float64
	seed        int64
}

func defaultOptions() options {
	return options{
		hiddenDim:   DefaultHiddenDim,
		temperature: DefaultTemperature,
		selfBias:    DefaultSelfBias,
		seed:        DefaultSeed,
	}
}

// WithHiddenDim sets the similarity embedding width. Panics on dim <= 0.
func WithHiddenDim(dim int) Option {
	if dim <= 0 {
		panic(panicHiddenDimInvalid)
	}

	return func(o *options) { o.hiddenDim = dim }
}

// WithTemperature sets the base softmax temperature. Panics on t <= 0.
func WithTemperature(t float64) Option {
	if t <= 0 {
		panic(panicTemperatureInvalid)
	}

	return func(o *options) { o.temperature = t }
}

// WithSelfBias sets the diagonal similarity bias. Positive values favor
// self-transitions, negative values suppress them.
func WithSelfBias(b float64) Option {
	return func(o *options) { o.selfBias = b }
}

// WithSeed seeds the deterministic embedding initialization.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}
