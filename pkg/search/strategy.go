package search

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/pathtrace/pkg/errors"
)

// Kind selects the priority formula used by the search loop.
type Kind int

const (
	// UniformCost orders the frontier by accumulated cost (Dijkstra).
	UniformCost Kind = iota
	// AStar orders by g + weight*h with a default weight of 1.
	AStar
	// WeightedAStar orders by g + weight*h with a default weight above 1.
	WeightedAStar
	// Greedy orders by the heuristic estimate alone.
	Greedy
)

// Default heuristic weights.
const (
	DefaultWeight         = 1.0
	DefaultWeightedWeight = 1.5
)

// Kinds lists every strategy in declaration order.
var Kinds = []Kind{UniformCost, AStar, WeightedAStar, Greedy}

var kindNames = map[Kind]string{
	UniformCost:   "ucs",
	AStar:         "astar",
	WeightedAStar: "weighted-astar",
	Greedy:        "greedy",
}

var kindAliases = map[string]Kind{
	"ucs":            UniformCost,
	"uniform-cost":   UniformCost,
	"uniform_cost":   UniformCost,
	"dijkstra":       UniformCost,
	"astar":          AStar,
	"a*":             AStar,
	"a-star":         AStar,
	"weighted-astar": WeightedAStar,
	"weighted_astar": WeightedAStar,
	"wastar":         WeightedAStar,
	"wa*":            WeightedAStar,
	"greedy":         Greedy,
	"best-first":     Greedy,
	"gbfs":           Greedy,
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a strategy name or alias, case-insensitively.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidAlgorithm, "unknown algorithm %q (want one of ucs, astar, weighted-astar, greedy)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("search: invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// DefaultWeightFor returns the heuristic weight used when none is given.
func DefaultWeightFor(k Kind) float64 {
	if k == WeightedAStar {
		return DefaultWeightedWeight
	}
	return DefaultWeight
}

// Strategy pairs a Kind with its heuristic weight.
type Strategy struct {
	Kind   Kind    `json:"algorithm"`
	Weight float64 `json:"weight"`
}

// NewStrategy returns a Strategy for k with its default weight.
func NewStrategy(k Kind) Strategy {
	return Strategy{Kind: k, Weight: DefaultWeightFor(k)}
}

// Priority computes the frontier priority for accumulated cost g and
// heuristic estimate h.
func (s Strategy) Priority(g, h float64) float64 {
	switch s.Kind {
	case UniformCost:
		return g
	case Greedy:
		return h
	default:
		return g + s.Weight*h
	}
}

// Informed reports whether the strategy consults heuristic estimates.
func (s Strategy) Informed() bool {
	return s.Kind != UniformCost
}

// Optimal reports whether the strategy guarantees a minimum-cost path,
// given an admissible heuristic.
func (s Strategy) Optimal() bool {
	switch s.Kind {
	case UniformCost:
		return true
	case AStar, WeightedAStar:
		return s.Weight <= 1
	}
	return false
}

func (s Strategy) validate() error {
	if _, ok := kindNames[s.Kind]; !ok {
		return fmt.Errorf("%w: %d", ErrInvalidKind, int(s.Kind))
	}
	if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) || s.Weight < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, s.Weight)
	}
	return nil
}

// String returns "kind" or "kind(w=weight)" for weighted strategies.
func (s Strategy) String() string {
	if s.Kind == AStar || s.Kind == WeightedAStar {
		return fmt.Sprintf("%s(w=%g)", s.Kind, s.Weight)
	}
	return s.Kind.String()
}
