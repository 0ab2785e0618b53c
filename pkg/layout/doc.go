// Package layout computes deterministic tree positions for a netloc topology.
//
// # Overview
//
// Tree-shaped topologies (Document.Type == "tree") are not left to the force
// simulation. Instead, [Compute] ranks the visible nodes into concentric
// rings, from the leaves inward, and then places them from the root outward
// so that each node reserves an angular sector proportional to everything it
// carries.
//
// # Rings
//
// Ring construction peels leaves: every pool node with at most one remaining
// neighbor forms the next ring. When no such node is left but the pool is not
// empty, the remaining core is split into a synthetic multi-node root (see
// [LayoutScratch]). Ring 0 is the outermost ring; the last ring holds the
// roots.
//
// # Subtree Size
//
// Each node starts with an angular footprint of size·2π. Whenever a node is
// peeled, every live neighbor grows by footprint/2π·2.3. The footprint of a
// placed node becomes the radius, footprint/2π, at which its children sit.
//
// # Determinism
//
// All iteration follows the order of the visible node list and of each node's
// edge list. Running Compute twice on the same input gives identical
// coordinates.
package layout
