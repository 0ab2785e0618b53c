// Package graph provides serialization types for netloc topology documents
// and positioned layouts.
//
// This package defines the wire format read from topology producers and the
// frame format handed to renderers, used for JSON files, API responses,
// caching and document storage.
//
// # Architecture
//
// The package sits at the serialization boundary between external formats and
// the in-memory model:
//
//   - [Document]: Input topology (nodes, edges, links, partitions, hwloc topologies)
//   - [Layout]: Positioned frame with render state (colors, physics, arrows)
//   - pkg/topology.Graph: Internal arena built from a [Document]
//   - pkg/view.GraphSession: Produces [Layout] frames
//
// # Document Format
//
//	{
//	  "type": "tree",
//	  "partitions": ["compute"],
//	  "hwloctopos": ["2x8cores"],
//	  "nodes": [{"id": "sw0", "type": "switch", "edges": [1], "part": [0], "topo": -1}],
//	  "edges": [{"id": 1, "from": "sw0", "to": "n0", "reverse": 2, "gbits": 100}],
//	  "links": [{"id": 7, "src_port": "p1", "dst_port": "p2", "gbits": 100}]
//	}
//
// Identifiers are accepted as JSON strings or numbers and normalized to
// strings ([ID]). Producers write string node ids and integer edge ids.
//
// Common operations:
//
//	doc, _ := graph.ReadDocumentFile("cluster.json")
//	data, _ := graph.MarshalDocument(doc)
//	hash := cache.Hash(data)
//
// # Layout Serialization
//
//	data, _ := graph.MarshalLayout(frame)      // JSON
//	yml, _ := graph.MarshalLayoutYAML(frame)   // YAML
//	frame, _ := graph.UnmarshalLayout(data)
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
