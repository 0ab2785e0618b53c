package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Layout - Positioned Frame
// =============================================================================

// Layout is a positioned frame of the visible graph, as handed to a renderer.
//
// Positions are in renderer units with the tree root at the origin. Physics
// flags tell a force-directed renderer which elements it may move; Fixed
// nodes keep their position even with physics enabled.
type Layout struct {
	Type      string       `json:"type" bson:"type" yaml:"type"`
	Partition int          `json:"partition" bson:"partition" yaml:"partition"`
	ColorMode string       `json:"color_mode,omitempty" bson:"color_mode,omitempty" yaml:"color_mode,omitempty"`
	Physics   bool         `json:"physics" bson:"physics" yaml:"physics"`
	Nodes     []LayoutNode `json:"nodes" bson:"nodes" yaml:"nodes"`
	Edges     []LayoutEdge `json:"edges" bson:"edges" yaml:"edges"`

	SelectedNodes []string `json:"selected_nodes,omitempty" bson:"selected_nodes,omitempty" yaml:"selected_nodes,omitempty"`
	SelectedEdges []string `json:"selected_edges,omitempty" bson:"selected_edges,omitempty" yaml:"selected_edges,omitempty"`
}

// LayoutNode is a visible node with its render state.
type LayoutNode struct {
	ID      string  `json:"id" bson:"id" yaml:"id"`
	Title   string  `json:"title,omitempty" bson:"title,omitempty" yaml:"title,omitempty"`
	Type    string  `json:"type" bson:"type" yaml:"type"`
	X       float64 `json:"x" bson:"x" yaml:"x"`
	Y       float64 `json:"y" bson:"y" yaml:"y"`
	Size    float64 `json:"size" bson:"size" yaml:"size"`
	Color   string  `json:"color,omitempty" bson:"color,omitempty" yaml:"color,omitempty"`
	Physics bool    `json:"physics" bson:"physics" yaml:"physics"`
	Fixed   bool    `json:"fixed,omitempty" bson:"fixed,omitempty" yaml:"fixed,omitempty"`
	Ring    int     `json:"ring" bson:"ring" yaml:"ring"`
	// Free marks nodes the tree layout could not attach to a placed parent.
	Free bool `json:"free,omitempty" bson:"free,omitempty" yaml:"free,omitempty"`
	// Aggregate marks nodes that can be expanded into sub-nodes.
	Aggregate bool `json:"aggregate,omitempty" bson:"aggregate,omitempty" yaml:"aggregate,omitempty"`
}

// LayoutEdge is a visible edge with its render state.
type LayoutEdge struct {
	ID        string  `json:"id" bson:"id" yaml:"id"`
	From      string  `json:"from" bson:"from" yaml:"from"`
	To        string  `json:"to" bson:"to" yaml:"to"`
	Label     string  `json:"label" bson:"label" yaml:"label"`
	Width     float64 `json:"width" bson:"width" yaml:"width"`
	Arrow     bool    `json:"arrow,omitempty" bson:"arrow,omitempty" yaml:"arrow,omitempty"`
	Color     string  `json:"color,omitempty" bson:"color,omitempty" yaml:"color,omitempty"`
	Highlight string  `json:"highlight,omitempty" bson:"highlight,omitempty" yaml:"highlight,omitempty"`
	Physics   bool    `json:"physics" bson:"physics" yaml:"physics"`
}

// Node returns the layout node with the given id.
func (l *Layout) Node(id string) (LayoutNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return LayoutNode{}, false
}

// Bounds returns the bounding box of all node positions.
// An empty layout has zero bounds.
func (l *Layout) Bounds() (minX, minY, maxX, maxY float64) {
	for i, n := range l.Nodes {
		if i == 0 {
			minX, maxX, minY, maxY = n.X, n.X, n.Y, n.Y
			continue
		}
		minX = min(minX, n.X)
		maxX = max(maxX, n.X)
		minY = min(minY, n.Y)
		maxY = max(maxY, n.Y)
	}
	return minX, minY, maxX, maxY
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// MarshalLayoutYAML serializes a Layout to YAML.
func MarshalLayoutYAML(l Layout) ([]byte, error) {
	return yaml.Marshal(l)
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Nodes == nil && len(l.Edges) > 0 {
		return Layout{}, fmt.Errorf("layout has edges but no nodes")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a file, as YAML when yamlOut is set and
// as JSON otherwise.
func WriteLayoutFile(l Layout, path string, yamlOut bool) error {
	var (
		data []byte
		err  error
	)
	if yamlOut {
		data, err = MarshalLayoutYAML(l)
	} else {
		data, err = MarshalLayout(l)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a JSON Layout from a file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
