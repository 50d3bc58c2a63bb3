package heuristic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pathtrace/pkg/errors"
)

func TestEstimate(t *testing.T) {
	h := Table{"D": {"A": 3, "B": 2}}

	assert.Equal(t, 3.0, h.Estimate("D", "A"))
	assert.Equal(t, 0.0, h.Estimate("D", "X"), "missing node")
	assert.Equal(t, 0.0, h.Estimate("Z", "A"), "missing goal")

	var empty Table
	assert.Equal(t, 0.0, empty.Estimate("D", "A"))
	assert.Equal(t, 0, empty.Len())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Table
	}{
		{"nil", nil, Table{}},
		{"empty mapping", map[string]any{}, Table{}},
		{"empty list", []any{}, Table{}},
		{
			"numeric types",
			map[string]any{"D": map[string]any{"A": 3, "B": 1.5, "C": json.Number("0")}},
			Table{"D": {"A": 3, "B": 1.5, "C": 0}},
		},
		{
			"non-mapping goal skipped",
			map[string]any{"D": map[string]any{"A": 1}, "E": 7},
			Table{"D": {"A": 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeYAML(t *testing.T) {
	var raw any
	require.NoError(t, yaml.Unmarshal([]byte("Bucharest:\n  Arad: 366\n  Sibiu: 253\n"), &raw))

	h, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bucharest"}, h.Goals())
	assert.Equal(t, 253.0, h.Estimate("Bucharest", "Sibiu"))
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"scalar", 3},
		{"string", "h"},
		{"string estimate", map[string]any{"D": map[string]any{"A": "3"}}},
		{"negative estimate", map[string]any{"D": map[string]any{"A": -1}}},
		{"null estimate", map[string]any{"D": map[string]any{"A": nil}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.IsFormatError(err))
		})
	}
}

func TestAdmissible(t *testing.T) {
	h := Table{"D": {"A": 3, "B": 2, "C": 1}}

	node, ok := h.Admissible("D", map[string]float64{"A": 3, "B": 2, "C": 1})
	assert.True(t, ok)
	assert.Empty(t, node)

	node, ok = h.Admissible("D", map[string]float64{"A": 3, "B": 1})
	assert.False(t, ok)
	assert.Equal(t, "B", node)
}
