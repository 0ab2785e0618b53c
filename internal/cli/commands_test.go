package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/netdraw/pkg/graph"
	"github.com/matzehuels/netdraw/pkg/topology/topotest"
)

func writeDocument(t *testing.T) string {
	t.Helper()
	b := topotest.New("compute", "io").
		Switch("core", 0, 1).
		Switch("agg", 0).
		Host("s1", 0).
		Host("s2", 0).
		Host("leaf", 1).
		Connect("core", "agg", 100).
		Connect("core", "leaf", 10).
		Connect("s1", "s2", 25).
		Aggregate("agg", "s1", "s2")
	path := filepath.Join(t.TempDir(), "cluster.json")
	if err := graph.WriteDocumentFile(b.Document(), path); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args and returns what it wrote to its
// output stream.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func frameIDs(l graph.Layout) []string {
	ids := make([]string, len(l.Nodes))
	for i, n := range l.Nodes {
		ids[i] = n.ID
	}
	slices.Sort(ids)
	return ids
}

func TestLayoutCommand(t *testing.T) {
	doc := writeDocument(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"collapsed", nil, []string{"agg", "core", "leaf"}},
		{"expanded", []string{"--expand", "agg"}, []string{"core", "leaf", "s1", "s2"}},
		{"expand then collapse", []string{"-e", "agg,-agg"}, []string{"agg", "core", "leaf"}},
		{"partition", []string{"--partition", "1"}, []string{"core", "leaf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "frame.json")
			args := append([]string{"layout", doc, "-o", out, "--no-cache"}, tt.args...)
			if _, err := run(t, args...); err != nil {
				t.Fatalf("layout error: %v", err)
			}
			frame, err := graph.ReadLayoutFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if got := frameIDs(frame); !slices.Equal(got, tt.want) {
				t.Errorf("layout nodes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLayoutCommandYAML(t *testing.T) {
	doc := writeDocument(t)
	if _, err := run(t, "layout", doc, "--format", "yaml", "--no-cache"); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	data, err := os.ReadFile(strings.TrimSuffix(doc, ".json") + ".layout.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("nodes:")) {
		t.Errorf("yaml layout = %q, want a nodes key", data)
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	doc := writeDocument(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"layout", doc, "--format", "xml"}},
		{"bad color mode", []string{"layout", doc, "--color", "rainbow"}},
		{"bad partition", []string{"layout", doc, "--partition", "7"}},
		{"not an aggregate", []string{"layout", doc, "--expand", "core"}},
		{"missing document", []string{"layout", filepath.Join(t.TempDir(), "none.json")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, append(tt.args, "--no-cache")...); err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}

func TestRenderAndVisualize(t *testing.T) {
	doc := writeDocument(t)
	dir := t.TempDir()

	if _, err := run(t, "render", doc, "-f", "json,dot", "-o", filepath.Join(dir, "view")); err != nil {
		t.Fatalf("render error: %v", err)
	}
	for _, name := range []string{"view.json", "view.dot"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("render did not write %s: %v", name, err)
		}
	}

	out := filepath.Join(dir, "again.dot")
	if _, err := run(t, "visualize", filepath.Join(dir, "view.json"), "-f", "dot", "-o", out); err != nil {
		t.Fatalf("visualize error: %v", err)
	}
	want, _ := os.ReadFile(filepath.Join(dir, "view.dot"))
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Error("visualize of a rendered frame should match the render output")
	}
}

func TestDescribeCommandJSON(t *testing.T) {
	out, err := run(t, "describe", writeDocument(t), "--json", "--no-cache")
	if err != nil {
		t.Fatalf("describe error: %v", err)
	}

	var got descriptionOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Nodes != 3 || got.Hosts != 1 || got.Switches != 2 {
		t.Errorf("describe = %d nodes, %d hosts, %d switches, want 3, 1, 2", got.Nodes, got.Hosts, got.Switches)
	}
	if !slices.Equal(got.Partitions, []string{"compute", "io"}) {
		t.Errorf("partitions = %v, want [compute io]", got.Partitions)
	}
	if len(got.ColorModes) == 0 || got.ColorModes[0] != "normal" {
		t.Errorf("color modes = %v, want normal first", got.ColorModes)
	}
}

func TestDescribeCommandText(t *testing.T) {
	out, err := run(t, "describe", writeDocument(t), "--no-cache")
	if err != nil {
		t.Fatalf("describe error: %v", err)
	}
	for _, want := range []string{"Stats", "Partitions", "compute", "color modes"} {
		if !strings.Contains(out, want) {
			t.Errorf("describe output missing %q:\n%s", want, out)
		}
	}
}

func TestSearchCommand(t *testing.T) {
	doc := writeDocument(t)

	out, err := run(t, "search", doc, "id", "^l", "--details", "--no-cache")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	for _, want := range []string{"1 nodes", "leaf", "1 nodes selected"} {
		if !strings.Contains(out, want) {
			t.Errorf("search output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "search", doc, "id", "^nothing$", "--no-cache")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if !strings.Contains(out, "no records match") {
		t.Errorf("search output = %q, want no matches", out)
	}

	if _, err := run(t, "search", doc, "Bad", ".", "--no-cache"); err == nil {
		t.Error("search on an invalid field should fail")
	}
}

func TestCachePathCommand(t *testing.T) {
	config := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", config)

	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if got := strings.TrimSpace(out); !strings.HasSuffix(got, appName) {
		t.Errorf("cache path = %q, want suffix %q", got, appName)
	}

	out, err = run(t, "cache", "path", "--sessions")
	if err != nil {
		t.Fatalf("cache path --sessions error: %v", err)
	}
	if got, want := strings.TrimSpace(out), filepath.Join(config, appName, "sessions"); got != want {
		t.Errorf("cache path --sessions = %q, want %q", got, want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	doc := writeDocument(t)
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"layout", doc, "-o", filepath.Join(t.TempDir(), "f.json")})
	if err := root.Execute(); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(cacheHome, appName))
	if len(entries) == 0 {
		t.Fatal("layout left the cache empty")
	}

	root = New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if n := countFiles(t, filepath.Join(cacheHome, appName)); n != 0 {
		t.Errorf("cache clear left %d files", n)
	}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the program name")
	}
}

func TestExampleTopology(t *testing.T) {
	doc := filepath.Join("..", "..", "examples", "topologies", "two-racks.json")
	out := filepath.Join(t.TempDir(), "frame.json")

	if _, err := run(t, "layout", doc, "-o", out, "--no-cache"); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	frame, err := graph.ReadLayoutFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"h0", "h1", "h2", "h3", "leaf0", "leaf1", "spine"}
	if got := frameIDs(frame); !slices.Equal(got, want) {
		t.Errorf("layout nodes = %v, want %v", got, want)
	}

	if _, err := run(t, "layout", doc, "-o", out, "-e", "leaf1", "--no-cache"); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if frame, err = graph.ReadLayoutFile(out); err != nil {
		t.Fatal(err)
	}
	want = []string{"h0", "h1", "h2", "h3", "leaf0", "leaf1a", "leaf1b", "spine"}
	if got := frameIDs(frame); !slices.Equal(got, want) {
		t.Errorf("expanded layout nodes = %v, want %v", got, want)
	}
}
