// Package search selects and describes topology records.
//
// [Select] matches shown nodes and edges against a regular expression on one
// record field. [Describe], [SummarizeNodes] and [SummarizeEdges] produce the
// textual panels a viewer shows next to the drawing.
package search

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/topology"
)

// Fields with dedicated matching rules.
const (
	FieldPart = "part"
	FieldTopo = "topo"
)

// NodeFields and EdgeFields list the searchable record fields.
var (
	NodeFields = []string{"id", "type", "title", "hostname", "part", "topo", "sub", "edges", "bandwidth", "size", "merged"}
	EdgeFields = []string{"id", "from", "to", "reverse", "gbits", "part", "links", "label", "width"}
)

// Match is the result of a search.
type Match struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

// Select returns the shown nodes and edges whose field matches pattern.
//
//   - part: the pattern runs over partition names; records in any matching
//     partition are selected
//   - topo: the pattern runs over topology names; only nodes are selected
//   - anything else: the pattern runs over the field's string form. Zero,
//     empty and false values never match. Lists are joined with commas.
func Select(g *topology.Graph, nodes, edges []int, field, pattern string) (Match, error) {
	if err := errors.ValidateField(field); err != nil {
		return Match{}, err
	}
	re, err := errors.CompilePattern(pattern)
	if err != nil {
		return Match{}, err
	}

	m := Match{Nodes: []string{}, Edges: []string{}}
	switch field {
	case FieldPart:
		parts := matching(re, g.Partitions)
		for _, i := range nodes {
			if n := g.NodeAt(i); anyIn(n.Part, parts) {
				m.Nodes = append(m.Nodes, n.ID)
			}
		}
		for _, i := range edges {
			if e := g.EdgeAt(i); anyIn(e.Part, parts) {
				m.Edges = append(m.Edges, e.ID)
			}
		}

	case FieldTopo:
		topos := matching(re, g.Topos)
		for _, i := range nodes {
			n := g.NodeAt(i)
			if t, ok := n.Topo.Get(); ok && slices.Contains(topos, t) {
				m.Nodes = append(m.Nodes, n.ID)
			}
		}

	default:
		for _, i := range nodes {
			n := g.NodeAt(i)
			if v, ok := nodeField(n, field); ok && re.MatchString(v) {
				m.Nodes = append(m.Nodes, n.ID)
			}
		}
		for _, i := range edges {
			e := g.EdgeAt(i)
			if v, ok := edgeField(e, field); ok && re.MatchString(v) {
				m.Edges = append(m.Edges, e.ID)
			}
		}
	}
	return m, nil
}

// matching returns the indices of names that match re.
func matching(re *regexp.Regexp, names []string) []int {
	var out []int
	for i, name := range names {
		if re.MatchString(name) {
			out = append(out, i)
		}
	}
	return out
}

func anyIn(have, want []int) bool {
	for _, p := range have {
		if slices.Contains(want, p) {
			return true
		}
	}
	return false
}

// nodeField returns the string form of a node field. ok is false for
// unknown fields and falsy values.
func nodeField(n *topology.Node, field string) (string, bool) {
	switch field {
	case "id":
		return truthy(n.ID)
	case "type":
		return truthy(n.Type)
	case "title", "desc":
		return truthy(n.Title)
	case "hostname":
		return truthy(n.Hostname)
	case "sub":
		return strings.Join(n.Sub, ","), true
	case "edges":
		return strings.Join(n.Edges, ","), true
	case "bandwidth":
		return number(n.Bandwidth)
	case "size":
		return number(n.Size)
	case "merged":
		if n.Merged {
			return "true", true
		}
	}
	return "", false
}

func edgeField(e *topology.Edge, field string) (string, bool) {
	switch field {
	case "id":
		return truthy(e.ID)
	case "from":
		return truthy(e.From)
	case "to":
		return truthy(e.To)
	case "reverse":
		return truthy(e.Reverse)
	case "gbits":
		return number(e.Gbits)
	case "label":
		return number(float64(e.Label))
	case "width":
		return number(e.Width)
	case "links":
		return strings.Join(e.Links, ","), true
	}
	return "", false
}

func truthy(s string) (string, bool) { return s, s != "" }

func number(v float64) (string, bool) {
	if v == 0 {
		return "", false
	}
	return formatNumber(v), true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
