package topology_test

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/graph"
	"github.com/matzehuels/netdraw/pkg/topology"
	"github.com/matzehuels/netdraw/pkg/topology/topotest"
)

func TestLoadDerivedValues(t *testing.T) {
	g := topotest.New("compute").
		Switch("sw", 0).
		Host("a", 0).
		Host("b", 0).
		Connect("sw", "a", 10).
		Connect("sw", "b", 40.6).
		Graph(t)

	e, ok := g.Edge("sw-b")
	if !ok {
		t.Fatal("edge sw-b not found")
	}
	if e.Label != 41 {
		t.Errorf("Label = %d, want 41", e.Label)
	}
	if math.Abs(e.Width-4.06) > 1e-9 {
		t.Errorf("Width = %v, want 4.06", e.Width)
	}

	sw, _ := g.Node("sw")
	if math.Abs(sw.Bandwidth-50.6) > 1e-9 {
		t.Errorf("Bandwidth = %v, want 50.6", sw.Bandwidth)
	}
	if want := 10 * math.Log(50.6); math.Abs(sw.Size-want) > 1e-9 {
		t.Errorf("Size = %v, want %v", sw.Size, want)
	}
	if sw.Title != "desc sw" {
		t.Errorf("Title = %q, want %q", sw.Title, "desc sw")
	}

	if got := len(g.EdgeBandwidths()); got != 2 {
		t.Errorf("EdgeBandwidths() len = %d, want 2", got)
	}
	// a and b differ in size; sw is distinct from both.
	if got := len(g.NodeBandwidths()); got != 3 {
		t.Errorf("NodeBandwidths() len = %d, want 3", got)
	}
}

func TestLoadUnresolvedEdgeBandwidth(t *testing.T) {
	g := topotest.New().
		Host("a").
		Host("b").
		Connect("a", "b", 8).
		EdgeRef("a", "missing").
		Graph(t)

	a, _ := g.Node("a")
	if a.Bandwidth != 16 {
		t.Errorf("Bandwidth = %v, want 16 (8 resolved + 8 default)", a.Bandwidth)
	}
	if got := g.Neighbors(a.Index, topology.All); len(got) != 1 {
		t.Errorf("Neighbors() = %v, want only b", got)
	}
}

func TestLoadIsolatedNode(t *testing.T) {
	g := topotest.New().Host("lonely").Graph(t)
	n, _ := g.Node("lonely")
	if n.Bandwidth != 0 || n.Size != 0 {
		t.Errorf("Bandwidth, Size = %v, %v, want 0, 0", n.Bandwidth, n.Size)
	}
}

func TestLoadZeroCapacityWidth(t *testing.T) {
	g := topotest.New().
		Host("a").
		Host("b").
		Host("c").
		Connect("a", "b", 0).
		Connect("b", "c", 25).
		Graph(t)

	for i := range g.EdgeCount() {
		if w := g.EdgeAt(i).Width; w != 1 {
			t.Errorf("edge %s Width = %v, want 1", g.EdgeAt(i).ID, w)
		}
	}
}

func TestLoadMergedState(t *testing.T) {
	b := topotest.New().
		Switch("agg").
		Host("s1").
		Host("s2").
		Host("s3").
		Aggregate("agg", "s1", "s2", "ghost")
	explicit := graph.Flag(false)
	b.Document().Nodes[2].Merged = &explicit
	g := b.Graph(t)

	tests := []struct {
		id     string
		merged bool
	}{
		{"agg", false},
		{"s1", true},
		{"s2", false},
		{"s3", false},
	}
	for _, tt := range tests {
		n, _ := g.Node(tt.id)
		if n.Merged != tt.merged {
			t.Errorf("%s Merged = %v, want %v", tt.id, n.Merged, tt.merged)
		}
	}

	agg, _ := g.Node("agg")
	if got := len(g.Children(agg.Index)); got != 2 {
		t.Errorf("Children() len = %d, want 2 (ghost skipped)", got)
	}
	if p, ok := g.Parent("s1"); !ok || p.ID != "agg" {
		t.Errorf("Parent(s1) = %v, %v, want agg", p, ok)
	}
	if _, ok := g.Parent("s3"); ok {
		t.Error("Parent(s3) should not exist")
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name  string
		build func() *graph.Document
	}{
		{"duplicate node", func() *graph.Document {
			return topotest.New().Host("a").Host("a").Document()
		}},
		{"duplicate edge", func() *graph.Document {
			b := topotest.New().Host("a").Host("b").Connect("a", "b", 1)
			d := b.Document()
			d.Edges = append(d.Edges, d.Edges[0])
			return d
		}},
		{"two parents", func() *graph.Document {
			return topotest.New().
				Switch("p1").Switch("p2").Host("c").
				Aggregate("p1", "c").
				Aggregate("p2", "c").
				Document()
		}},
		{"self parent", func() *graph.Document {
			return topotest.New().Switch("p").Aggregate("p", "p").Document()
		}},
		{"empty id", func() *graph.Document {
			return topotest.New().Host("").Document()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := topology.Load(tt.build())
			if !errors.Is(err, errors.ErrCodeInvalidDocument) {
				t.Errorf("Load() error = %v, want %s", err, errors.ErrCodeInvalidDocument)
			}
		})
	}
}

func TestNeighbors(t *testing.T) {
	g := topotest.New().
		Switch("hub").
		Host("a").
		Host("b").
		Host("c").
		Connect("hub", "a", 1).
		Connect("hub", "b", 1).
		Connect("hub", "c", 1).
		EdgeRef("hub", "hub-a").
		Graph(t)

	hub, _ := g.Node("hub")
	a, _ := g.Node("a")
	c, _ := g.Node("c")

	if got := g.NeighborIDs("hub", topology.All); !slices.Equal(got, []string{"a", "b", "c", "a"}) {
		t.Errorf("NeighborIDs(All) = %v", got)
	}

	vis := topology.NewSet(a.Index, c.Index)
	want := []int{a.Index, c.Index, a.Index}
	if got := g.Neighbors(hub.Index, vis); !slices.Equal(got, want) {
		t.Errorf("Neighbors(vis) = %v, want %v", got, want)
	}
	if got := g.NeighborIDs("nope", topology.All); got != nil {
		t.Errorf("NeighborIDs(unknown) = %v, want nil", got)
	}
}

func TestSetMerged(t *testing.T) {
	g := topotest.New().Host("a").Graph(t)
	if err := g.SetMerged("a", true); err != nil {
		t.Fatalf("SetMerged() error = %v", err)
	}
	if n, _ := g.Node("a"); !n.Merged {
		t.Error("Merged = false after SetMerged(true)")
	}
	if err := g.SetMerged("zzz", true); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("SetMerged(unknown) = %v, want %s", err, errors.ErrCodeNodeNotFound)
	}
}

func TestTopo(t *testing.T) {
	g := topotest.New().Host("a").Host("b").Topo("a", "2x8").Graph(t)
	a, _ := g.Node("a")
	b, _ := g.Node("b")

	if i, ok := a.Topo.Get(); !ok || i != 0 {
		t.Errorf("a.Topo = %d, %v, want 0, true", i, ok)
	}
	if b.Topo.IsSet() || b.Topo.Wire() != graph.NoTopo {
		t.Errorf("b.Topo = %+v, want absent", b.Topo)
	}
	if got := g.TopoName(a.Topo); got != "2x8" {
		t.Errorf("TopoName() = %q, want 2x8", got)
	}
}
