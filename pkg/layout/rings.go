package layout

// BuildRings ranks every node of the pool into rings.
//
// # Algorithm
//
//  1. Peel: extract all pool nodes with crt_nedges <= 1 as the next ring.
//     Once the ring has left the pool, each member hands footprint/2π·2.3 to
//     every neighbor still in the pool and decrements its count.
//  2. When nothing can be peeled but the pool is not empty, split the
//     remaining core into a multi-node root (see splitCore).
//
// Every iteration removes at least one node from the pool, so BuildRings
// terminates on any input, cyclic or not. Isolated nodes have a count of zero
// and are peeled immediately.
func (s *LayoutScratch) BuildRings() {
	for len(s.pool) > 0 {
		ring := s.extract(func(v int) bool { return s.crt[v] <= 1 })
		if len(ring) == 0 {
			s.splitCore()
			continue
		}
		for _, v := range ring {
			for _, w := range s.nbrs[v] {
				if s.inPool[w] {
					s.sub[w] += s.sub[v] / twoPi * Damping
					s.crt[w]--
				}
			}
		}
		s.pushRing(ring)
	}
}

// splitCore consumes the whole pool when every remaining node still has at
// least two live neighbors. It builds a sub-stack of levels:
//
//	a. nodes with no neighbor in the last completed ring; the members of that
//	   level that are isolated from each other are split into a level of
//	   their own when they are a proper subset of it
//	b. repeatedly, all nodes with the current maximum crt_nedges
//	c. whatever is left
//
// Counts decay after each extraction, without footprint propagation. The
// sub-stack is then unwound from its top: each popped level hands its
// footprint to its neighbors in the level below it and becomes a ring. The
// bottom level becomes the root ring.
func (s *LayoutScratch) splitCore() {
	var levels [][]int

	if last := s.RingCount() - 1; last >= 0 {
		detached := s.extract(func(v int) bool {
			for _, w := range s.nbrs[v] {
				if s.ring[w] == last {
					return false
				}
			}
			return true
		})
		s.decay(detached)

		split := s.isolatedWithin(detached)
		if len(split) > 0 && len(split) < len(detached) {
			levels = append(levels, without(detached, split), split)
		} else {
			levels = append(levels, detached)
		}
	}

	for {
		peak, ok := s.maxCount()
		if !ok || peak <= 0 {
			break
		}
		level := s.extract(func(v int) bool { return s.crt[v] >= peak })
		s.decay(level)
		levels = append(levels, level)
	}

	if len(s.pool) > 0 {
		levels = append(levels, s.extract(func(int) bool { return true }))
	}

	levels = compact(levels)
	if len(levels) == 0 {
		return
	}

	level := make(map[int]int)
	for l, members := range levels {
		for _, v := range members {
			level[v] = l
		}
	}
	for top := len(levels) - 1; top > 0; top-- {
		sons := levels[top]
		for _, v := range sons {
			for _, w := range s.nbrs[v] {
				if l, ok := level[w]; ok && l == top-1 {
					s.sub[w] += s.sub[v] / twoPi * Damping
				}
			}
		}
		s.pushRing(sons)
	}
	s.pushRing(levels[0])
}

// decay decrements the count of every pool neighbor of the given nodes.
func (s *LayoutScratch) decay(nodes []int) {
	for _, v := range nodes {
		for _, w := range s.nbrs[v] {
			if s.inPool[w] {
				s.crt[w]--
			}
		}
	}
}

// maxCount returns the largest crt_nedges in the pool.
func (s *LayoutScratch) maxCount() (int, bool) {
	if len(s.pool) == 0 {
		return 0, false
	}
	peak := s.crt[s.pool[0]]
	for _, v := range s.pool[1:] {
		peak = max(peak, s.crt[v])
	}
	return peak, true
}

// isolatedWithin returns the members of level with no neighbor in level.
func (s *LayoutScratch) isolatedWithin(level []int) []int {
	in := make(map[int]bool, len(level))
	for _, v := range level {
		in[v] = true
	}
	var out []int
	for _, v := range level {
		linked := false
		for _, w := range s.nbrs[v] {
			if in[w] {
				linked = true
				break
			}
		}
		if !linked {
			out = append(out, v)
		}
	}
	return out
}

func without(level, drop []int) []int {
	skip := make(map[int]bool, len(drop))
	for _, v := range drop {
		skip[v] = true
	}
	out := make([]int, 0, len(level)-len(drop))
	for _, v := range level {
		if !skip[v] {
			out = append(out, v)
		}
	}
	return out
}

func compact(levels [][]int) [][]int {
	out := levels[:0]
	for _, l := range levels {
		if len(l) > 0 {
			out = append(out, l)
		}
	}
	return out
}
