// Package render turns positioned topology frames into images.
//
// # Overview
//
// The interactive renderer is opaque to this module: it receives a
// [graph.Layout] and the instruction stream produced by package view. This
// package covers static output for the CLI and the HTTP server:
//
//   - Node-link drawings with pinned positions (in [nodelink] subpackage)
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(nodelink.ToDOT(frame, nodelink.Options{}))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// The SVG produced by [nodelink] has its viewBox normalized to the drawing,
// so exported images are already cropped to the visible nodes.
//
// [graph.Layout]: github.com/matzehuels/netdraw/pkg/graph.Layout
// [nodelink]: github.com/matzehuels/netdraw/pkg/render/nodelink
package render
