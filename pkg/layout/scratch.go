package layout

import "github.com/matzehuels/netdraw/pkg/topology"

// LayoutScratch is the transient state of one layout pass. It is keyed by
// the slot of a node in the visible list and never touches the graph's
// persistent records.
//
// Rings are stored flat: members holds ring members back to back and
// starts[r] is the offset of ring r.
type LayoutScratch struct {
	g     *topology.Graph
	ids   []string
	size  []float64
	nbrs  [][]int // visible neighbor slots, repeated for parallel edges
	index map[int]int

	crt       []int
	sub       []float64
	initAngle []float64

	pool   []int
	inPool []bool
	ring   []int // -1 while in the pool

	members []int
	starts  []int

	placed []bool
	free   []bool
	x, y   []float64
	writes []int
}

// NewScratch initializes the scratch for the nodes at the given arena
// indices: crt_nedges is the visible neighbor count, the subtree size is
// size·2π and the initial angle is zero.
func NewScratch(g *topology.Graph, shown []int) *LayoutScratch {
	n := len(shown)
	s := &LayoutScratch{
		g:         g,
		ids:       make([]string, n),
		size:      make([]float64, n),
		nbrs:      make([][]int, n),
		index:     make(map[int]int, n),
		crt:       make([]int, n),
		sub:       make([]float64, n),
		initAngle: make([]float64, n),
		pool:      make([]int, n),
		inPool:    make([]bool, n),
		ring:      make([]int, n),
		members:   make([]int, 0, n),
		placed:    make([]bool, n),
		free:      make([]bool, n),
		x:         make([]float64, n),
		y:         make([]float64, n),
		writes:    make([]int, n),
	}
	for v, idx := range shown {
		s.index[idx] = v
	}

	vis := topology.VisibleFunc(func(i int) bool {
		_, ok := s.index[i]
		return ok
	})
	for v, idx := range shown {
		node := g.NodeAt(idx)
		s.ids[v] = node.ID
		s.size[v] = node.Size
		for _, j := range g.Neighbors(idx, vis) {
			s.nbrs[v] = append(s.nbrs[v], s.index[j])
		}
		s.crt[v] = len(s.nbrs[v])
		s.sub[v] = node.Size * twoPi
		s.pool[v] = v
		s.inPool[v] = true
		s.ring[v] = -1
	}
	return s
}

// RingCount returns the number of completed rings.
func (s *LayoutScratch) RingCount() int { return len(s.starts) }

// Ring returns the member slots of ring r.
func (s *LayoutScratch) Ring(r int) []int {
	end := len(s.members)
	if r+1 < len(s.starts) {
		end = s.starts[r+1]
	}
	return s.members[s.starts[r]:end]
}

// pushRing appends a ring on top of the stack. Empty rings are dropped.
func (s *LayoutScratch) pushRing(ring []int) {
	if len(ring) == 0 {
		return
	}
	r := len(s.starts)
	s.starts = append(s.starts, len(s.members))
	s.members = append(s.members, ring...)
	for _, v := range ring {
		s.ring[v] = r
	}
}

// extract removes every pool node matching keep, preserving pool order, and
// returns them. The whole set leaves the pool before the caller propagates
// anything.
func (s *LayoutScratch) extract(keep func(v int) bool) []int {
	var out []int
	rest := s.pool[:0]
	for _, v := range s.pool {
		if keep(v) {
			out = append(out, v)
			s.inPool[v] = false
		} else {
			rest = append(rest, v)
		}
	}
	s.pool = rest
	return out
}

// set writes a final position. Each slot is written at most once per pass.
func (s *LayoutScratch) set(v int, x, y float64) {
	s.x[v], s.y[v] = x, y
	s.placed[v] = true
	s.writes[v]++
}

// unplacedIn returns the distinct unplaced neighbors of v in ring r, in
// neighbor order.
func (s *LayoutScratch) unplacedIn(v, r int) []int {
	var out []int
	for _, w := range s.nbrs[v] {
		if s.ring[w] != r || s.placed[w] {
			continue
		}
		dup := false
		for _, c := range out {
			if c == w {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, w)
		}
	}
	return out
}

// Result exports the placements and ring membership.
func (s *LayoutScratch) Result() *Result {
	res := &Result{
		Placements: make([]Placement, len(s.ids)),
		Rings:      make([][]string, s.RingCount()),
		byID:       make(map[string]int, len(s.ids)),
	}
	for v, id := range s.ids {
		res.Placements[v] = Placement{ID: id, X: s.x[v], Y: s.y[v], Ring: s.ring[v], Free: s.free[v]}
		res.byID[id] = v
	}
	for r := range res.Rings {
		ring := s.Ring(r)
		res.Rings[r] = make([]string, len(ring))
		for k, v := range ring {
			res.Rings[r][k] = s.ids[v]
		}
	}
	if n := len(res.Rings); n > 0 {
		res.Roots = res.Rings[n-1]
	}
	return res
}
