package search

import "errors"

// Sentinel errors returned before a search starts.
var (
	// ErrNilGraph indicates that a nil *graph.Graph was passed to Search.
	ErrNilGraph = errors.New("search: graph is nil")

	// ErrInvalidWeight indicates a negative, NaN or infinite heuristic weight.
	ErrInvalidWeight = errors.New("search: weight must be a finite non-negative number")

	// ErrInvalidKind indicates a Kind outside the declared constants.
	ErrInvalidKind = errors.New("search: unknown strategy kind")
)

// Options configures a search.
//
// Strategy – priority formula and heuristic weight. Default AStar, weight 1.
// Directed – expand only declared edges instead of the bidirectional view.
type Options struct {
	Strategy Strategy
	Directed bool

	weightSet bool
}

// Option is a functional option for Search.
type Option func(*Options)

// DefaultOptions returns the options used when Search is called without any.
func DefaultOptions() Options {
	return Options{Strategy: NewStrategy(AStar)}
}

// WithKind selects the strategy. Unless WithWeight is also given, the
// kind's default weight applies.
func WithKind(k Kind) Option {
	return func(o *Options) {
		o.Strategy.Kind = k
		if !o.weightSet {
			o.Strategy.Weight = DefaultWeightFor(k)
		}
	}
}

// WithWeight sets the heuristic weight for AStar and WeightedAStar.
// UniformCost and Greedy ignore it.
func WithWeight(w float64) Option {
	return func(o *Options) {
		o.Strategy.Weight = w
		o.weightSet = true
	}
}

// WithStrategy sets kind and weight at once.
func WithStrategy(s Strategy) Option {
	return func(o *Options) {
		o.Strategy = s
		o.weightSet = true
	}
}

// WithDirected restricts expansion to declared outgoing edges.
func WithDirected() Option {
	return func(o *Options) {
		o.Directed = true
	}
}
