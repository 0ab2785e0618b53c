package layout

import (
	"math"
	"slices"
)

// Place assigns coordinates once the rings are built.
//
// A single root sits at the origin. Multiple roots are spread on a circle
// (see placeRoots) and skipped by the top-down pass. Walking from the top ring
// to the leaves, each node seats its unplaced neighbors from the ring below
// at
//
//	angle = initAngle + k·2π/n (+ π/n when n is even)
//	dist  = subtreeSize / 2π
//
// The even-count offset only applies to nodes that have an incoming
// direction, so a lone root spreads its children starting at angle 0.
func (s *LayoutScratch) Place() {
	top := s.RingCount() - 1
	if top < 0 {
		return
	}
	single := len(s.Ring(top)) == 1

	start := top
	if !single {
		s.placeRoots(top)
		start = top - 1
	}

	for lvl := start; lvl >= 0; lvl-- {
		for _, v := range s.Ring(lvl) {
			isRoot := single && lvl == top
			if !s.placed[v] {
				s.set(v, 0, 0)
				s.free[v] = !isRoot
			}
			if lvl == 0 {
				continue
			}

			children := s.unplacedIn(v, lvl-1)
			n := float64(len(children))
			dist := s.sub[v] / twoPi
			for k, c := range children {
				angle := s.initAngle[v] + float64(k)*twoPi/n
				if len(children)%2 == 0 && !isRoot {
					angle += math.Pi / n
				}
				s.initAngle[c] = angle
				s.set(c, s.x[v]+math.Cos(angle)*dist, s.y[v]+math.Sin(angle)*dist)
			}
		}
	}
}

// placeRoots spreads a multi-node root ring on a circle of radius
// Σ(2·size)/2π, root i at angle i·2π/N, and seats the next ring on a
// second circle around the origin whose radius is the largest of
//
//	Σ(root footprint/2π) / 3π
//	Σ(next-ring size) / π
//	root radius · 2π
//
// With exactly one ring below the roots, roots are ordered zig-zag by how
// many children they have, and each root's children are centered on its own
// angle. Deeper trees seat the whole next ring evenly instead.
func (s *LayoutScratch) placeRoots(top int) {
	roots := s.Ring(top)
	radius := 0.0
	for _, v := range roots {
		radius += 2 * s.size[v]
	}
	radius /= twoPi

	if top == 0 {
		s.circle(roots, radius)
		return
	}

	next := s.Ring(top - 1)
	var rootSpan, nextSize float64
	for _, v := range roots {
		rootSpan += s.sub[v] / twoPi
	}
	for _, v := range next {
		nextSize += s.size[v]
	}
	outer := max(rootSpan/RootSpread/math.Pi, nextSize/math.Pi, radius*twoPi)

	if top > 1 {
		s.circle(roots, radius)
		for k, c := range next {
			angle := float64(k) * twoPi / float64(len(next))
			s.initAngle[c] = angle
			s.set(c, math.Cos(angle)*outer, math.Sin(angle)*outer)
		}
		return
	}

	ordered := s.zigzag(roots, top-1)
	for i, v := range ordered {
		angle := float64(i) * twoPi / float64(len(ordered))
		s.set(v, math.Cos(angle)*radius, math.Sin(angle)*radius)

		children := s.unplacedIn(v, top-1)
		half := float64(len(children)) / 2
		for k, c := range children {
			sub := angle + (float64(k)-half)*twoPi/float64(len(next))
			s.initAngle[c] = sub
			s.set(c, math.Cos(sub)*outer, math.Sin(sub)*outer)
		}
	}
}

func (s *LayoutScratch) circle(ring []int, radius float64) {
	for i, v := range ring {
		angle := float64(i) * twoPi / float64(len(ring))
		s.set(v, math.Cos(angle)*radius, math.Sin(angle)*radius)
	}
}

// zigzag orders roots so that the ones with many children alternate with the
// ones with few. Roots are sorted by child count; the upper half is reversed
// and interleaved with the lower half, and an odd root out goes last.
func (s *LayoutScratch) zigzag(roots []int, below int) []int {
	type ranked struct {
		slot, children int
	}
	big := make([]ranked, len(roots))
	for i, v := range roots {
		big[i] = ranked{v, len(s.unplacedIn(v, below))}
	}
	slices.SortStableFunc(big, func(a, b ranked) int { return a.children - b.children })

	half := len(big) / 2
	small := slices.Clone(big[half : 2*half])
	slices.Reverse(small)
	big = append(big[:half:half], big[2*half:]...)

	out := make([]int, 0, len(roots))
	for i := range small {
		out = append(out, big[i].slot, small[i].slot)
	}
	if len(roots)%2 == 1 {
		out = append(out, big[len(big)-1].slot)
	}
	return out
}
