package cli

import (
	"context"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/pathtrace/pkg/cache"
	"github.com/matzehuels/pathtrace/pkg/config"
	pio "github.com/matzehuels/pathtrace/pkg/io"
	"github.com/matzehuels/pathtrace/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"json", []string{"json"}},
		{"JSON, svg,,dot", []string{"json", "svg", "dot"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParsePairs(t *testing.T) {
	got, err := parsePairs([]string{"A:D", "ns:a:B"})
	if err != nil {
		t.Fatal(err)
	}
	want := []pipeline.Query{{Start: "A", Goal: "D"}, {Start: "ns:a", Goal: "B"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parsePairs = %v, want %v", got, want)
	}

	for _, bad := range []string{"AD", ":D", "A:"} {
		if _, err := parsePairs([]string{bad}); err == nil {
			t.Errorf("parsePairs(%q) should fail", bad)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	got := outputPaths("out/route.svg", []string{"svg"}, "A", "D")
	if got["svg"] != "out/route.svg" {
		t.Errorf("single format = %v", got)
	}

	got = outputPaths("out/route.svg", []string{"json", "svg", "text"}, "A", "D")
	want := map[string]string{"json": "out/route.json", "svg": "out/route.svg", "text": "out/route.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("multiple formats = %v, want %v", got, want)
	}

	got = outputPaths("", []string{"png"}, "A", "D")
	if !strings.HasPrefix(got["png"], "search_A_to_D_") || !strings.HasSuffix(got["png"], ".png") {
		t.Errorf("derived name = %q", got["png"])
	}
}

func TestToStdout(t *testing.T) {
	one := func(f string) map[string][]byte { return map[string][]byte{f: nil} }
	tests := []struct {
		output    string
		artifacts map[string][]byte
		want      bool
	}{
		{"", one("json"), true},
		{"", one("dot"), true},
		{"", one("svg"), false},
		{"-", one("svg"), true},
		{"out.json", one("json"), false},
		{"", map[string][]byte{"json": nil, "dot": nil}, false},
	}
	for _, tt := range tests {
		if got := toStdout(tt.output, tt.artifacts); got != tt.want {
			t.Errorf("toStdout(%q, %v) = %v, want %v", tt.output, tt.artifacts, got, tt.want)
		}
	}
}

func TestOptionsPrecedence(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config.Search = config.SearchConfig{Algorithm: "greedy", Weight: 4, Formats: []string{"svg"}}

	doc, err := pio.Decode(map[string]any{
		"graph":  map[string]any{"A": map[string]any{"B": 1}},
		"config": map[string]any{"start": "A", "goal": "B", "algorithm": "ucs"},
	})
	if err != nil {
		t.Fatal(err)
	}

	opts := c.options(doc, searchFlags{to: "A"})
	if opts.Start != "A" || opts.Goal != "A" {
		t.Errorf("endpoints = %s -> %s, want flag goal over document", opts.Start, opts.Goal)
	}
	if opts.Algorithm != "ucs" {
		t.Errorf("algorithm = %q, document should win over config file", opts.Algorithm)
	}
	if opts.Weight != 4 {
		t.Errorf("weight = %v, want config file value", opts.Weight)
	}
	if !reflect.DeepEqual(opts.Formats, []string{"svg"}) {
		t.Errorf("formats = %v", opts.Formats)
	}

	opts = c.options(doc, searchFlags{algorithm: "astar"})
	if opts.Algorithm != "astar" {
		t.Errorf("algorithm = %q, flag should win", opts.Algorithm)
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()
	c := New(io.Discard, LogInfo)
	dir := filepath.Join(t.TempDir(), "c")
	c.Config.Cache = config.CacheConfig{Backend: config.BackendFile, Dir: dir}

	store, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := store.(*cache.FileCache)
	if !ok || fc.Dir() != dir {
		t.Errorf("file backend = %T", store)
	}

	store, _ = c.newCache(ctx, true)
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("--no-cache = %T, want NullCache", store)
	}

	c.Config.Cache.Backend = config.BackendNone
	store, _ = c.newCache(ctx, false)
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("backend none = %T, want NullCache", store)
	}

	c.Config.Cache = config.CacheConfig{Backend: config.BackendRedis, RedisURL: "http://not-redis"}
	if _, err := c.newCache(ctx, false); err == nil {
		t.Error("bad redis url should fail")
	}
}

func TestDisplayAddr(t *testing.T) {
	if got := displayAddr(":8080"); got != "http://localhost:8080" {
		t.Errorf("displayAddr(:8080) = %s", got)
	}
	if got := displayAddr("0.0.0.0:9000"); got != "http://0.0.0.0:9000" {
		t.Errorf("displayAddr = %s", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "b", "c"); got != "b" {
		t.Errorf("firstNonEmpty = %q", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Errorf("firstNonEmpty() = %q", got)
	}
}
