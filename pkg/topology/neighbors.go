package topology

// Visibility decides which nodes a neighbor query may return.
type Visibility interface {
	Visible(index int) bool
}

// VisibleFunc adapts a function to [Visibility].
type VisibleFunc func(index int) bool

// Visible implements Visibility.
func (f VisibleFunc) Visible(index int) bool { return f(index) }

// All accepts every node.
var All Visibility = VisibleFunc(func(int) bool { return true })

// Set is a set of arena indices. It implements [Visibility].
type Set map[int]struct{}

// NewSet returns a set holding the given indices.
func NewSet(indices ...int) Set {
	s := make(Set, len(indices))
	for _, i := range indices {
		s[i] = struct{}{}
	}
	return s
}

// Add inserts i.
func (s Set) Add(i int) { s[i] = struct{}{} }

// Remove deletes i.
func (s Set) Remove(i int) { delete(s, i) }

// Has reports whether i is in the set.
func (s Set) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Visible implements Visibility.
func (s Set) Visible(i int) bool { return s.Has(i) }

// Neighbors returns the arena indices of the `to` endpoints of node i's
// edges, in edge order. Endpoints that are unresolvable or rejected by vis
// are skipped. Parallel edges yield repeated entries.
func (g *Graph) Neighbors(i int, vis Visibility) []int {
	n := &g.nodes[i]
	out := make([]int, 0, len(n.Edges))
	for _, eid := range n.Edges {
		e, ok := g.Edge(eid)
		if !ok {
			continue
		}
		j, ok := g.nodeIdx[e.To]
		if !ok {
			continue
		}
		if vis != nil && !vis.Visible(j) {
			continue
		}
		out = append(out, j)
	}
	return out
}

// NeighborIDs is [Graph.Neighbors] expressed in document identifiers.
func (g *Graph) NeighborIDs(id string, vis Visibility) []string {
	i, ok := g.nodeIdx[id]
	if !ok {
		return nil
	}
	idx := g.Neighbors(i, vis)
	out := make([]string, len(idx))
	for k, j := range idx {
		out[k] = g.nodes[j].ID
	}
	return out
}
