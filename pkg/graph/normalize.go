package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/matzehuels/pathtrace/pkg/errors"
)

// Keys recognized in wrapper documents and node records.
var (
	GraphKeys     = []string{"graph", "grafo"}
	HeuristicKeys = []string{"heuristic", "heuristics", "heuristica"}
	ConfigKeys    = []string{"config"}

	edgesKeys = []string{"edges", "arestas"}
	countKeys = []string{"n_edges", "edge_count", "n_arestas"}
)

// Parts holds the sections of a wrapper document.
type Parts struct {
	Graph     any
	Heuristic any
	Config    map[string]any
}

// Unwrap splits a wrapper document into its sections. It reports false when
// raw is not a mapping or when any top-level key is not a wrapper key, in
// which case raw should be treated as a bare graph.
func Unwrap(raw any) (Parts, bool) {
	m, ok := AsMap(raw)
	if !ok || len(m) == 0 {
		return Parts{}, false
	}
	for k := range m {
		if !isWrapperKey(k) {
			return Parts{}, false
		}
	}
	p := Parts{
		Graph:     lookup(m, GraphKeys),
		Heuristic: lookup(m, HeuristicKeys),
	}
	if cfg, ok := AsMap(lookup(m, ConfigKeys)); ok {
		p.Config = cfg
	}
	return p, true
}

// strayWrapperKey reports the first non-wrapper key of a mapping that holds
// a graph section of node records next to keys Unwrap does not accept. A
// bare graph with a node named "graph" maps that node to weights or to an
// edges record, so it is not matched.
func strayWrapperKey(raw any) (string, bool) {
	m, ok := AsMap(raw)
	if !ok {
		return "", false
	}
	section, ok := AsMap(lookup(m, GraphKeys))
	if !ok || len(section) == 0 {
		return "", false
	}
	for k, v := range section {
		if slices.Contains(edgesKeys, k) || slices.Contains(countKeys, k) {
			return "", false
		}
		if _, isMap := AsMap(v); isMap {
			continue
		}
		if _, isList := asList(v); !isList {
			return "", false
		}
	}
	for _, k := range sortedKeys(m) {
		if !isWrapperKey(k) {
			return k, true
		}
	}
	return "", false
}

func isWrapperKey(k string) bool {
	return slices.Contains(GraphKeys, k) || slices.Contains(HeuristicKeys, k) || slices.Contains(ConfigKeys, k)
}

func lookup(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

// Normalize converts any accepted graph encoding into a validated Graph.
// See the package documentation for the accepted shapes. A *Graph is
// returned unchanged.
//
// Normalize returns an INVALID_FORMAT error when the structure is not a
// non-empty mapping, a node record has an unrecognized shape, or a weight is
// not a finite non-negative number.
func Normalize(raw any) (*Graph, error) {
	if g, ok := raw.(*Graph); ok && g != nil {
		return g, nil
	}
	if parts, ok := Unwrap(raw); ok {
		if parts.Graph == nil {
			return nil, errors.Format("document has no graph section")
		}
		raw = parts.Graph
	} else if key, ok := strayWrapperKey(raw); ok {
		return nil, errors.Format("wrapper document has unknown top-level key %q (allowed: graph, heuristic, config)", key)
	}

	top, ok := AsMap(raw)
	if !ok {
		return nil, errors.Format("graph must be a mapping of node ids, got %s", describe(raw))
	}
	if len(top) == 0 {
		return nil, errors.Format("graph must contain at least one node")
	}

	adj := make(map[string]map[string]float64, len(top))
	for _, node := range sortedKeys(top) {
		edges, err := normalizeNode(node, top[node])
		if err != nil {
			return nil, err
		}
		adj[node] = edges
	}
	return New(adj)
}

func normalizeNode(node string, v any) (map[string]float64, error) {
	if m, ok := AsMap(v); ok {
		if raw := lookup(m, edgesKeys); raw != nil {
			edges, ok := AsMap(raw)
			if !ok {
				return nil, errors.Format("node %q: edges must be a mapping, got %s", node, describe(raw))
			}
			return weights(node, edges, false)
		}
		if hasEdgesKey(m) {
			return map[string]float64{}, nil
		}
		return weights(node, m, true)
	}
	if items, ok := asList(v); ok {
		out := make(map[string]float64, len(items))
		for i, item := range items {
			entry, ok := AsMap(item)
			if !ok || len(entry) != 1 {
				return nil, errors.Format("node %q: item %d must be a single-entry mapping", node, i)
			}
			for to, rw := range entry {
				if slices.Contains(countKeys, to) {
					continue
				}
				w, err := weight(node, to, rw)
				if err != nil {
					return nil, err
				}
				out[to] = w
			}
		}
		return out, nil
	}
	return nil, errors.Format("node %q: expected edges mapping or list of single-entry mappings, got %s", node, describe(v))
}

// hasEdgesKey reports whether m carries an explicit null edges entry.
func hasEdgesKey(m map[string]any) bool {
	for _, k := range edgesKeys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// weights converts a neighbor -> weight mapping. Count markers are skipped
// when skipCounts is set, which applies to the plain adjacency encoding where
// they can share a mapping with neighbors.
func weights(node string, m map[string]any, skipCounts bool) (map[string]float64, error) {
	out := make(map[string]float64, len(m))
	for _, to := range sortedKeys(m) {
		if skipCounts && slices.Contains(countKeys, to) {
			continue
		}
		w, err := weight(node, to, m[to])
		if err != nil {
			return nil, err
		}
		out[to] = w
	}
	return out, nil
}

func weight(from, to string, v any) (float64, error) {
	w, ok := ToFloat(v)
	if !ok {
		return 0, errors.Format("edge %s -> %s: weight must be numeric, got %s", from, to, describe(v))
	}
	if err := checkWeight(from, to, w); err != nil {
		return 0, err
	}
	return w, nil
}

// ToFloat converts a decoded numeric value into a float64. Strings and
// booleans are not numeric.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case nil, bool, string:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return math.NaN(), false
}

// AsMap converts any decoded mapping into a map keyed by string. Decoders
// differ in the map types they produce (YAML yields map[any]any for
// non-string keys), so keys are formatted with fmt.Sprint.
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out, true
}

func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if _, ok := ToFloat(v); ok {
		return "number"
	}
	if _, ok := asList(v); ok {
		return "list"
	}
	return fmt.Sprintf("%T", v)
}
