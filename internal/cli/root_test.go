package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pathtrace/pkg/errors"
)

const exampleGraph = `{"A":{"B":1,"C":4},"B":{"C":1,"D":2},"C":{"D":1}}`

// testCLI returns a CLI whose config file disables caching, and the path of
// a graph file holding exampleGraph.
func testCLI(t *testing.T) (*CLI, string, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	cfg := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	graphFile := filepath.Join(dir, "graph.json")
	if err := os.WriteFile(graphFile, []byte(exampleGraph), 0o644); err != nil {
		t.Fatal(err)
	}
	return New(io.Discard, LogInfo), cfg, graphFile
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"search", "nodes", "validate", "batch", "replay", "serve", "import", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
	if root.PersistentFlags().Lookup("verbose") == nil {
		t.Error("--verbose flag missing")
	}
}

func TestSearchWritesFiles(t *testing.T) {
	c, cfg, graphFile := testCLI(t)
	out := filepath.Join(t.TempDir(), "route")

	root := c.RootCommand()
	root.SetArgs([]string{"search", graphFile, "--config", cfg, "--from", "A", "--to", "D", "-a", "ucs", "-f", "json,dot", "-o", out})
	if err := root.Execute(); err != nil {
		t.Fatalf("search: %v", err)
	}

	data, err := os.ReadFile(out + ".json")
	if err != nil {
		t.Fatalf("json output: %v", err)
	}
	if !strings.Contains(string(data), `"cost": 3`) && !strings.Contains(string(data), `"cost":3`) {
		t.Errorf("json output has no cost 3:\n%s", data)
	}
	dot, err := os.ReadFile(out + ".dot")
	if err != nil {
		t.Fatalf("dot output: %v", err)
	}
	if !strings.HasPrefix(string(dot), "graph G {") {
		t.Errorf("dot output starts with %q", strings.SplitN(string(dot), "\n", 2)[0])
	}
}

func TestSearchUnknownNode(t *testing.T) {
	c, cfg, graphFile := testCLI(t)

	root := c.RootCommand()
	root.SetArgs([]string{"search", graphFile, "--config", cfg, "--from", "A", "--to", "Z", "-o", filepath.Join(t.TempDir(), "x.json")})
	root.SetErr(io.Discard)
	err := root.Execute()
	if !errors.IsUnknownNode(err) {
		t.Fatalf("err = %v, want unknown node", err)
	}
}

func TestSearchInvalidFormat(t *testing.T) {
	c, cfg, graphFile := testCLI(t)

	root := c.RootCommand()
	root.SetArgs([]string{"search", graphFile, "--config", cfg, "--from", "A", "--to", "D", "-f", "gif"})
	root.SetErr(io.Discard)
	if err := root.Execute(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
}

func TestMissingExplicitConfig(t *testing.T) {
	c, _, graphFile := testCLI(t)

	root := c.RootCommand()
	root.SetArgs([]string{"nodes", graphFile, "--config", filepath.Join(t.TempDir(), "nope.toml")})
	root.SetErr(io.Discard)
	if err := root.Execute(); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestVerboseOverridesConfigLevel(t *testing.T) {
	c, cfg, graphFile := testCLI(t)
	if err := os.WriteFile(cfg, []byte("[cache]\nbackend = \"none\"\n[log]\nlevel = \"error\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"validate", graphFile, "--config", cfg, "-v"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestBatchCommand(t *testing.T) {
	c, cfg, graphFile := testCLI(t)

	root := c.RootCommand()
	root.SetArgs([]string{"batch", graphFile, "--config", cfg, "-p", "A:D", "-p", "A:Z", "--json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("batch should report per-pair failures without failing: %v", err)
	}
}

func TestCompleteNodes(t *testing.T) {
	_, _, graphFile := testCLI(t)

	got, _ := completeNodes(nil, []string{graphFile}, "")
	if strings.Join(got, ",") != "A,B,C,D" {
		t.Errorf("completeNodes = %v, want A,B,C,D", got)
	}
	got, _ = completeNodes(nil, []string{graphFile}, "C")
	if len(got) != 1 || got[0] != "C" {
		t.Errorf("completeNodes(C) = %v", got)
	}
	if got, _ := completeNodes(nil, nil, ""); got != nil {
		t.Errorf("completeNodes without file = %v", got)
	}
}

func TestCompletionScript(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := New(io.Discard, LogInfo).RootCommand()
	var buf strings.Builder
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.Execute(); err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(buf.String(), "pathtrace") {
		t.Error("bash completion does not mention the program")
	}
}
