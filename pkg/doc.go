// Package pkg provides the core libraries for netdraw, a viewer for netloc
// network topologies.
//
// # Overview
//
// Netdraw reads a netloc topology document (switches, hosts, the links between
// them, partitions and hwloc references) and turns it into something a person
// can look at: a view that shows aggregates collapsed until asked otherwise,
// positions every shown node, colors it, and renders the result. The pkg
// directory is organized into four main areas:
//
//  1. Domain logic ([topology], [layout], [view], [color], [search])
//  2. Serialization and rendering ([graph], [render], [render/nodelink])
//  3. Infrastructure ([cache], [session], [storage], [observability])
//  4. Orchestration ([pipeline])
//
// # Architecture
//
// The typical data flow through netdraw:
//
//	topology document (JSON)
//	         ↓
//	    [graph] package (decode + validate)
//	         ↓
//	    [topology] package (indexed graph, aggregates, partitions)
//	         ↓
//	    [view] package (shown records, expand/collapse, colors)
//	         ↓
//	    [layout] package (ring placement for trees)
//	         ↓
//	    [render/nodelink] package (DOT, SVG, PNG, PDF)
//
// # Quick Start
//
// Draw the second partition of a document with one aggregate expanded:
//
//	import (
//	    "context"
//
//	    "github.com/matzehuels/netdraw/pkg/cache"
//	    "github.com/matzehuels/netdraw/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	defer runner.Close()
//
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Path:      "cluster.json",
//	    Partition: 1,
//	    Expand:    []string{"agg0"},
//	    Formats:   []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// ## Domain Logic
//
// [topology] - The indexed topology graph. Nodes and edges are addressed by
// id and by index, aggregates know their sub nodes and edges, and merged
// flags track which aggregates are currently folded.
//
// [layout] - Deterministic tree placement. Visible nodes are peeled into
// rings from the leaves inward and placed from the root outward, each node
// reserving a sector proportional to its subtree.
//
// [view] - A [view.GraphSession] owns one drawn view: the partition, the
// expansion state, the selection and the color mode. Every change returns
// the instructions a client needs to update its drawing, and a session can
// be snapshotted and restored.
//
// [color] - Color modes (by type, partition or hwloc topology) and the
// palette they draw from.
//
// [search] - Regular expression selection over record fields, plus the
// summaries and descriptions printed for a selection or a view.
//
// ## Serialization and Rendering
//
// [graph] - The wire types: topology documents and computed layout frames,
// in JSON or YAML.
//
// [render/nodelink] - Graphviz output for a layout frame. [render] converts
// the SVG into PNG and PDF.
//
// ## Infrastructure
//
// [cache] - Content-addressed caching of decoded documents, frames and
// artifacts. File, Redis and null backends.
//
// [session] - Persistence for view snapshots: memory, file and Redis
// stores.
//
// [storage] - Document storage for the server, in memory or in MongoDB.
//
// [observability] - Hooks for pipeline and session events; the prom
// subpackage exports them as Prometheus metrics.
//
// [pipeline] - Load → view → layout → render, shared by the CLI and the
// server so both produce the same frames.
//
// [errors] and [buildinfo] hold shared error values and version data.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/layout/...     # Specific package
//	go test -run Example ./...   # Examples only
//
// The [topology/topotest] package builds small documents for tests.
//
// [topology]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/topology
// [topology/topotest]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/topology/topotest
// [layout]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/layout
// [view]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/view
// [view.GraphSession]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/view#GraphSession
// [color]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/color
// [search]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/search
// [graph]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/session
// [storage]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/storage
// [observability]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/netdraw/pkg/buildinfo
package pkg
