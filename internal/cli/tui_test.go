package cli

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/matzehuels/netdraw/pkg/pipeline"
	"github.com/matzehuels/netdraw/pkg/topology/topotest"
	"github.com/matzehuels/netdraw/pkg/view"
)

func browseSession(t *testing.T) *view.GraphSession {
	t.Helper()
	doc := topotest.New("compute", "io").
		Switch("core", 0, 1).
		Switch("agg", 0).
		Host("s1", 0).
		Host("s2", 0).
		Host("leaf", 1).
		Connect("core", "agg", 100).
		Connect("core", "leaf", 10).
		Connect("s1", "s2", 25).
		Aggregate("agg", "s1", "s2").
		Document()
	r := pipeline.NewRunner(nil, nil, nil)
	s, err := r.Session(&pipeline.Loaded{Document: doc}, pipeline.Options{Partition: view.AllPartitions})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds msgs through Update in order.
func press(m BrowseModel, msgs ...tea.Msg) BrowseModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(BrowseModel)
	}
	return m
}

func TestBrowseExpandCollapse(t *testing.T) {
	m := NewBrowseModel(browseSession(t))
	if want := []string{"agg", "core", "leaf"}; !slices.Equal(m.rows, want) {
		t.Fatalf("rows = %v, want %v", m.rows, want)
	}

	m = press(m, keys("e"))
	if want := []string{"core", "leaf", "s1", "s2"}; !slices.Equal(m.rows, want) {
		t.Fatalf("rows after expand = %v, want %v", m.rows, want)
	}
	if nodes, _ := m.Session.Selection(); !slices.Equal(nodes, []string{"s1", "s2"}) {
		t.Errorf("selection after expand = %v, want [s1 s2]", nodes)
	}

	// core has no aggregate; s1 folds back into agg.
	m = press(m, keys("c"))
	if !m.failed {
		t.Error("collapse on a top-level node should report an error")
	}
	m = press(m, keys("j"), keys("j"), keys("c"))
	if want := []string{"agg", "core", "leaf"}; !slices.Equal(m.rows, want) {
		t.Errorf("rows after collapse = %v, want %v", m.rows, want)
	}
	if got, _ := m.current(); got != "agg" {
		t.Errorf("cursor after collapse = %q, want agg", got)
	}
}

func TestBrowsePartitionAndColors(t *testing.T) {
	m := NewBrowseModel(browseSession(t))

	m = press(m, keys("p"))
	if got := m.Session.Partition(); got != 0 {
		t.Errorf("partition after p = %d, want 0", got)
	}
	m = press(m, keys("p"), keys("p"))
	if got := m.Session.Partition(); got != view.AllPartitions {
		t.Errorf("partition after cycling = %d, want %d", got, view.AllPartitions)
	}

	m = press(m, keys("m"))
	if got := m.Session.ColorMode(); got != "partition" {
		t.Errorf("color mode after m = %q, want partition", got)
	}
}

func TestBrowseSearch(t *testing.T) {
	m := NewBrowseModel(browseSession(t))

	m = press(m, keys("/"))
	if !m.searching {
		t.Fatal("/ should open the search input")
	}
	m = press(m, keys("type=host"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching {
		t.Error("enter should close the search input")
	}
	if nodes, _ := m.Session.Selection(); !slices.Equal(nodes, []string{"leaf"}) {
		t.Errorf("selection after search = %v, want [leaf]", nodes)
	}
	if !strings.Contains(m.details.View(), "1 nodes selected") {
		t.Errorf("details = %q, want the leaf summary", m.details.View())
	}

	m = press(m, keys("/"), keys("id=["), tea.KeyMsg{Type: tea.KeyEnter})
	if !m.failed {
		t.Error("an invalid pattern should report an error")
	}
}

func TestBrowseToggleSelected(t *testing.T) {
	m := NewBrowseModel(browseSession(t))
	m = press(m, keys("j"), keys(" "))
	if nodes, _ := m.Session.Selection(); !slices.Equal(nodes, []string{"core"}) {
		t.Errorf("selection = %v, want [core]", nodes)
	}
	m = press(m, keys(" "))
	if nodes, _ := m.Session.Selection(); len(nodes) != 0 {
		t.Errorf("selection after second toggle = %v, want empty", nodes)
	}
}

func TestBrowseProgram(t *testing.T) {
	tm := teatest.NewTestModel(t, NewBrowseModel(browseSession(t)), teatest.WithInitialTermSize(100, 40))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("agg"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(keys("e"))
	tm.Send(keys("q"))

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	m, ok := fm.(BrowseModel)
	if !ok {
		t.Fatalf("final model = %T, want BrowseModel", fm)
	}
	if want := []string{"core", "leaf", "s1", "s2"}; !slices.Equal(m.rows, want) {
		t.Errorf("final rows = %v, want %v", m.rows, want)
	}
}
