package layout

import (
	"math"

	"github.com/matzehuels/netdraw/pkg/topology"
)

// Spacing tunables. They are empirical and fixed for visual parity with the
// browser viewer.
const (
	// Damping scales the footprint a peeled node hands to its neighbors.
	Damping = 2.3
	// RootSpread divides the aggregated root footprint when sizing the ring
	// that surrounds a multi-node root.
	RootSpread = 3.0
)

const twoPi = 2 * math.Pi

// Point is a 2D coordinate.
type Point struct {
	X, Y float64
}

// Placement is the computed position of one node.
type Placement struct {
	ID   string
	X, Y float64
	Ring int // Ring index, 0 closest to the leaves

	// Free marks nodes the tree could not reach (a forest component whose
	// root ring was consumed elsewhere). They are pinned at the origin and
	// left for the force simulation.
	Free bool
}

// Result is the output of a layout pass.
type Result struct {
	Placements []Placement // In visible-node order
	Rings      [][]string  // Ring membership, ring 0 first
	Roots      []string    // Members of the top ring

	byID map[string]int
}

// Position returns the coordinates computed for a node.
func (r *Result) Position(id string) (Point, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Point{}, false
	}
	p := r.Placements[i]
	return Point{p.X, p.Y}, true
}

// Compute lays out the nodes at the given arena indices. Neighbors outside
// shown are ignored. The graph is only read.
func Compute(g *topology.Graph, shown []int) *Result {
	s := NewScratch(g, shown)
	s.BuildRings()
	s.Place()
	return s.Result()
}

// Around spreads n points evenly on a circle of the given radius around
// center, starting at angle start.
func Around(center Point, n int, radius, start float64) []Point {
	out := make([]Point, n)
	for k := range n {
		a := start + float64(k)*twoPi/float64(n)
		out[k] = Point{
			X: center.X + math.Cos(a)*radius,
			Y: center.Y + math.Sin(a)*radius,
		}
	}
	return out
}
