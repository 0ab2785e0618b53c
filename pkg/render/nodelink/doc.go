// Package nodelink renders topology frames as node-link diagrams.
//
// # Overview
//
// A frame from package view already carries every node position, so
// Graphviz is only used as a drawing backend: [ToDOT] pins each node with
// pos="x,y!" and the neato engine draws the edges between them without
// moving anything.
//
// # Usage
//
//	dot := nodelink.ToDOT(frame, nodelink.Options{Labels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Node colors, sizes and edge widths come from the frame. Edges with an
// arrow (one directed link with no shown reverse) get an arrowhead; all
// other edges are drawn undirected.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion goes through package render and requires
// librsvg (rsvg-convert).
package nodelink
