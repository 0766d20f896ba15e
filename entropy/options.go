package entropy

// DEFAULTS - single source of truth for Estimator construction.
const (
	// DefaultHiddenDim is the embedding / context width of the estimator.
	DefaultHiddenDim = 64

	// DefaultWindow is the half-width of the context-mixing window: position
	// i attends to [i-window, i+window].
	DefaultWindow = 4

	// DefaultSeed seeds the estimator's parameter init when no seed is given.
	DefaultSeed = 1
)

// Internal panic messages (programmer errors in option constructors).
const (
	panicHiddenDimInvalid = "entropy: WithHiddenDim: dim must be > 0"
	panicWindowInvalid    = "entropy: WithWindow: window must be >= 0"
)

// Option mutates estimator construction options. Safe to apply repeatedly.
type Option func(*options)

type options struct {
	hiddenDim int
	window    int
	seed      int64
}

func defaultOptions() options {
	return options{hiddenDim: DefaultHiddenDim, window: DefaultWindow, seed: DefaultSeed}
}

// WithHiddenDim sets the embedding / context width. Panics on dim <= 0.
func WithHiddenDim(dim int) Option {
	if dim <= 0 {
		panic(panicHiddenDimInvalid)
	}

	return func(o *options) { o.hiddenDim = dim }
}

// WithWindow sets the context half-width; 0 disables neighbor mixing.
// Panics on negative values.
func WithWindow(window int) Option {
	if window < 0 {
		panic(panicWindowInvalid)
	}

	return func(o *options) { o.window = window }
}

// WithSeed seeds the deterministic parameter initialization.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}
