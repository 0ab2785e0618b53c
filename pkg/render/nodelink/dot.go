package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/netdraw/pkg/graph"
	"github.com/matzehuels/netdraw/pkg/render"
)

// minNodeSize is the smallest drawn diameter, in points. Nodes with no
// bandwidth have size zero.
const minNodeSize = 10.0

// Options configures node-link rendering.
type Options struct {
	// Labels draws node titles and edge capacity labels.
	Labels bool
}

// ToDOT converts a frame to Graphviz DOT with every node pinned at its
// layout position. Positions are in points; the y axis is flipped because
// Graphviz grows upward.
func ToDOT(l graph.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontsize=10, penwidth=0];\n")
	buf.WriteString("  edge [fontsize=8];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		if _, ok := l.Node(e.From); !ok {
			continue
		}
		if _, ok := l.Node(e.To); !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(edgeAttrs(e, opts), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graph.LayoutNode, opts Options) []string {
	d := max(n.Size, minNodeSize) / 72
	attrs := []string{
		fmt.Sprintf("pos=\"%s,%s!\"", num(n.X), num(flip(n.Y))),
		fmt.Sprintf("width=%s", num(d)),
		fmt.Sprintf("height=%s", num(d)),
	}
	if opts.Labels {
		attrs = append(attrs, fmt.Sprintf("xlabel=%q", label(n)), "label=\"\"")
	} else {
		attrs = append(attrs, "label=\"\"")
	}
	if n.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Color))
	}
	if n.Aggregate {
		attrs = append(attrs, "penwidth=2", "color=\"black\"")
	}
	return attrs
}

func label(n graph.LayoutNode) string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

func edgeAttrs(e graph.LayoutEdge, opts Options) []string {
	attrs := []string{fmt.Sprintf("penwidth=%s", num(max(e.Width, 1)))}
	if e.Color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", e.Color))
	}
	if !e.Arrow {
		attrs = append(attrs, "dir=none")
	}
	if opts.Labels && e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	return attrs
}

// flip mirrors y without producing negative zero.
func flip(y float64) float64 {
	if y == 0 {
		return 0
	}
	return -y
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RenderSVG renders DOT source (as produced by [ToDOT]) to SVG using
// Graphviz. The returned SVG is ready for [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()
	g.SetLayout("neato")

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// Render produces the frame in the given format: "dot", "svg", "png" or
// "pdf". Scale applies to PNG only.
func Render(ctx context.Context, l graph.Layout, format string, opts Options, scale float64) ([]byte, error) {
	dot := ToDOT(l, opts)
	if format == "dot" {
		return []byte(dot), nil
	}
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case "svg":
		return svg, nil
	case "png":
		return render.ToPNG(svg, scale)
	case "pdf":
		return render.ToPDF(svg)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}
