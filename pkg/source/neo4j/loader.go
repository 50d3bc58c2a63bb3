package neo4j

import (
	"context"
	"fmt"

	"github.com/matzehuels/pathtrace/pkg/errors"
	"github.com/matzehuels/pathtrace/pkg/graph"
)

// Column names expected in query results.
const (
	ColFrom   = "from"
	ColTo     = "to"
	ColWeight = "weight"
)

// Query is a Cypher read query and its parameters.
type Query struct {
	Cypher string
	Params map[string]any
}

// DefaultQuery matches every relationship between nodes that have a name
// property. Relationships without a weight property cost 1. Isolated nodes
// are returned with a null target so they still appear in the graph.
func DefaultQuery() Query {
	return Query{Cypher: `MATCH (a) WHERE a.name IS NOT NULL
OPTIONAL MATCH (a)-[r]->(b) WHERE b.name IS NOT NULL
RETURN a.name AS from, b.name AS to, coalesce(r.weight, 1.0) AS weight`}
}

// RelationshipQuery generalizes DefaultQuery to a node identifier property,
// a weight property and optionally one relationship type. An empty relType
// matches every type.
func RelationshipQuery(relType, idProp, weightProp string) Query {
	rel := "r"
	if relType != "" {
		rel = "r:" + quoteIdent(relType)
	}
	return Query{Cypher: fmt.Sprintf(`MATCH (a) WHERE a.%[2]s IS NOT NULL
OPTIONAL MATCH (a)-[%[1]s]->(b) WHERE b.%[2]s IS NOT NULL
RETURN a.%[2]s AS from, b.%[2]s AS to, coalesce(r.%[3]s, 1.0) AS weight`,
		rel, quoteIdent(idProp), quoteIdent(weightProp))}
}

// quoteIdent backtick-quotes a Cypher identifier.
func quoteIdent(s string) string {
	out := make([]rune, 0, len(s)+2)
	out = append(out, '`')
	for _, r := range s {
		if r == '`' {
			out = append(out, '`')
		}
		out = append(out, r)
	}
	return string(append(out, '`'))
}

// Loader turns query results into graphs.
type Loader struct {
	client Client
}

// NewLoader creates a loader over client.
func NewLoader(client Client) *Loader {
	return &Loader{client: client}
}

// Load runs q and returns the raw adjacency mapping. Rows with a null
// target contribute a node without edges. When the same edge appears more
// than once the lowest weight is kept.
func (l *Loader) Load(ctx context.Context, q Query) (map[string]any, error) {
	records, err := l.client.ExecuteRead(ctx, q.Cypher, q.Params)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "neo4j query")
	}

	adj := make(map[string]map[string]float64)
	for i, rec := range records {
		from, ok := rec[ColFrom].(string)
		if !ok || from == "" {
			return nil, errors.Format("row %d: %q must be a non-empty string, got %T", i, ColFrom, rec[ColFrom])
		}
		if adj[from] == nil {
			adj[from] = make(map[string]float64)
		}

		rawTo, present := rec[ColTo]
		if !present || rawTo == nil {
			continue
		}
		to, ok := rawTo.(string)
		if !ok || to == "" {
			return nil, errors.Format("row %d: %q must be a non-empty string, got %T", i, ColTo, rawTo)
		}
		w, ok := graph.ToFloat(rec[ColWeight])
		if !ok {
			return nil, errors.Format("row %d: edge %s -> %s has non-numeric weight %v", i, from, to, rec[ColWeight])
		}
		if prev, dup := adj[from][to]; dup {
			w = min(prev, w)
		}
		adj[from][to] = w
	}

	if len(adj) == 0 {
		return nil, errors.Format("query returned no nodes")
	}

	raw := make(map[string]any, len(adj))
	for k, v := range adj {
		raw[k] = v
	}
	return raw, nil
}

// LoadGraph runs q and normalizes the result.
func (l *Loader) LoadGraph(ctx context.Context, q Query) (*graph.Graph, error) {
	raw, err := l.Load(ctx, q)
	if err != nil {
		return nil, err
	}
	return graph.Normalize(raw)
}

// Close closes the underlying client.
func (l *Loader) Close(ctx context.Context) error {
	return l.client.Close(ctx)
}
