package topology

import "github.com/matzehuels/netdraw/pkg/graph"

// Topo is an optional hardware-locality topology index.
// The zero value means "no topology".
type Topo struct {
	index int
	ok    bool
}

// NoTopo returns the absent topology.
func NoTopo() Topo { return Topo{} }

// TopoOf returns a present topology with index i.
func TopoOf(i int) Topo { return Topo{index: i, ok: true} }

// Get returns the topology index and whether one is set.
func (t Topo) Get() (int, bool) { return t.index, t.ok }

// IsSet reports whether a topology is present.
func (t Topo) IsSet() bool { return t.ok }

// Wire returns the document encoding: the index, or -1 when absent.
func (t Topo) Wire() int {
	if !t.ok {
		return graph.NoTopo
	}
	return t.index
}

// topoFromWire decodes the document field. Missing values and negative
// indices are absent.
func topoFromWire(v *int) Topo {
	if v == nil || *v < 0 {
		return NoTopo()
	}
	return TopoOf(*v)
}
