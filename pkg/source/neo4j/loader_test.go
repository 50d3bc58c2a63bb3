package neo4j

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/matzehuels/pathtrace/pkg/errors"
)

type fakeClient struct {
	records []Record
	err     error
	cypher  string
	params  map[string]any
	closed  bool
}

func (f *fakeClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) ([]Record, error) {
	f.cypher, f.params = cypher, params
	return f.records, f.err
}

func (f *fakeClient) Close(context.Context) error {
	f.closed = true
	return nil
}

func TestLoadGraph(t *testing.T) {
	client := &fakeClient{records: []Record{
		{"from": "A", "to": "B", "weight": int64(1)},
		{"from": "A", "to": "C", "weight": 4.0},
		{"from": "B", "to": "C", "weight": 1.0},
		{"from": "B", "to": "D", "weight": 2.0},
		{"from": "C", "to": "D", "weight": 3.0},
		{"from": "C", "to": "D", "weight": 1.0}, // parallel relationship, lower weight wins
		{"from": "E", "to": nil, "weight": 1.0},
	}}
	loader := NewLoader(client)

	g, err := loader.LoadGraph(context.Background(), Query{Cypher: "MATCH ...", Params: map[string]any{"k": 1}})
	require.NoError(t, err)

	assert.Equal(t, "MATCH ...", client.cypher)
	assert.Equal(t, map[string]any{"k": 1}, client.params)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, g.AvailableNodes())
	w, ok := g.Weight("C", "D")
	assert.True(t, ok)
	assert.Equal(t, 1.0, w)
	assert.Empty(t, g.Neighbors("E"))

	require.NoError(t, loader.Close(context.Background()))
	assert.True(t, client.closed)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeClient
		code    perrors.Code
		message string
	}{
		{"query fails", &fakeClient{err: errors.New("connection refused")}, perrors.ErrCodeNetwork, "neo4j query"},
		{"empty", &fakeClient{}, perrors.ErrCodeInvalidFormat, "no nodes"},
		{"numeric id", &fakeClient{records: []Record{{"from": int64(1), "to": "B", "weight": 1.0}}}, perrors.ErrCodeInvalidFormat, `"from"`},
		{"bad target", &fakeClient{records: []Record{{"from": "A", "to": 2.0, "weight": 1.0}}}, perrors.ErrCodeInvalidFormat, `"to"`},
		{"bad weight", &fakeClient{records: []Record{{"from": "A", "to": "B", "weight": "heavy"}}}, perrors.ErrCodeInvalidFormat, "non-numeric"},
		{"negative weight", &fakeClient{records: []Record{{"from": "A", "to": "B", "weight": -1.0}}}, perrors.ErrCodeInvalidFormat, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.client).LoadGraph(context.Background(), DefaultQuery())
			require.Error(t, err)
			assert.Equal(t, tt.code, perrors.GetCode(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestRelationshipQuery(t *testing.T) {
	q := RelationshipQuery("ROAD", "city", "km")
	assert.Contains(t, q.Cypher, "[r:`ROAD`]")
	assert.Contains(t, q.Cypher, "a.`city` AS from")
	assert.Contains(t, q.Cypher, "coalesce(r.`km`, 1.0)")

	injected := RelationshipQuery("X`] DETACH DELETE a //", "id", "w")
	assert.True(t, strings.Contains(injected.Cypher, "`X``] DETACH DELETE a //`"))
}

func TestNewClientRequiresURI(t *testing.T) {
	_, err := NewClient(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrMissingURI)
}

func TestRelationshipQueryAnyType(t *testing.T) {
	q := RelationshipQuery("", "name", "weight")
	assert.Contains(t, q.Cypher, "OPTIONAL MATCH (a)-[r]->(b)")
	assert.NotContains(t, q.Cypher, "r:``")
}
