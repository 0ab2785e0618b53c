// Package topology is the in-memory graph model of a netloc topology document.
//
// # Overview
//
// A [Graph] is an arena: nodes, edges and links live in slices and are
// addressed by stable integer indices assigned at load time. String
// identifiers from the document map to those indices through lookup tables.
// Algorithms (the tree layout in particular) work on indices only, which keeps
// iteration order well defined.
//
//	doc, _ := graph.ReadDocumentFile("cluster.json")
//	g, err := topology.Load(doc)
//	for i := range g.NodeCount() {
//	    n := g.NodeAt(i)
//	    fmt.Println(n.ID, n.Bandwidth, n.Size)
//	}
//
// # Derived Values
//
// [Load] derives per-record values that the document does not carry:
//
//   - Edge Label: round(gbits)
//   - Edge Width: gbits / min(gbits over all edges)
//   - Node Bandwidth: sum of gbits of the node's edges, 8 for each unresolved edge
//   - Node Size: 10·ln(bandwidth)
//
// These are never hand-edited; [Graph.Recompute] re-derives them.
//
// # Neighbors
//
// [Graph.Neighbors] resolves the `to` endpoint of each of a node's edges, in
// edge order, keeping only endpoints the caller's [Visibility] accepts. Edges
// that reference missing records are skipped.
//
// # Hierarchy
//
// Aggregate nodes list their sub-nodes in Sub. A node belongs to at most one
// aggregate; [Load] rejects documents that violate this. Only the Merged flag
// changes after load, through [Graph.SetMerged].
//
// # Concurrency
//
// A Graph is not safe for concurrent mutation. Reads are safe once loading is
// complete and no SetMerged calls are in flight.
package topology
