package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// =============================================================================
// Constants
// =============================================================================

// TypeTree marks documents whose topology is tree-shaped. Only these documents
// get the deterministic tree layout; any other type is left to the renderer's
// force simulation.
const TypeTree = "tree"

// Node types.
const (
	NodeHost   = "host"
	NodeSwitch = "switch"
)

// NoTopo is the wire value for a host without a hardware-locality topology.
const NoTopo = -1

// =============================================================================
// ID - Flexible Identifier
// =============================================================================

// ID is a record identifier. It decodes from either a JSON string or a JSON
// number and always encodes as a string.
type ID string

// UnmarshalJSON accepts "abc", 12 and 12.5 alike.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", data)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as a plain string.
func (id ID) String() string { return string(id) }

// IDs converts a slice of identifiers to plain strings.
func IDs(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// =============================================================================
// Flag - Boolean that also accepts 0/1
// =============================================================================

// Flag is a boolean that decodes from true/false or from a number, where any
// non-zero number is true. Producers emit merged state as 0/1.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*f = true
		return nil
	case "false", "null":
		*f = false
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("flag must be a boolean or number: %s", data)
	}
	*f = v != 0
	return nil
}

// =============================================================================
// Document - Input Topology
// =============================================================================

// Document is the topology description produced by netloc.
type Document struct {
	Type       string       `json:"type" bson:"type" yaml:"type"`
	Partitions []string     `json:"partitions" bson:"partitions" yaml:"partitions"`
	Topos      []string     `json:"hwloctopos" bson:"hwloctopos" yaml:"hwloctopos"`
	Nodes      []NodeRecord `json:"nodes" bson:"nodes" yaml:"nodes"`
	Edges      []EdgeRecord `json:"edges" bson:"edges" yaml:"edges"`
	Links      []LinkRecord `json:"links" bson:"links" yaml:"links"`
}

// IsTree reports whether the document asks for the tree layout.
func (d *Document) IsTree() bool { return d.Type == TypeTree }

// NodeRecord is a host or switch as written by the producer.
type NodeRecord struct {
	ID       ID     `json:"id" bson:"id" yaml:"id"`
	Type     string `json:"type" bson:"type" yaml:"type"`
	Desc     string `json:"desc,omitempty" bson:"desc,omitempty" yaml:"desc,omitempty"`
	Hostname string `json:"hostname,omitempty" bson:"hostname,omitempty" yaml:"hostname,omitempty"`
	Part     []int  `json:"part" bson:"part" yaml:"part"`
	// Topo is nil or NoTopo when the host has no hwloc topology.
	Topo   *int  `json:"topo,omitempty" bson:"topo,omitempty" yaml:"topo,omitempty"`
	Sub    []ID  `json:"sub,omitempty" bson:"sub,omitempty" yaml:"sub,omitempty"`
	Edges  []ID  `json:"edges" bson:"edges" yaml:"edges"`
	Merged *Flag `json:"merged,omitempty" bson:"merged,omitempty" yaml:"merged,omitempty"`
}

// EdgeRecord is a directed half of an undirected link bundle.
type EdgeRecord struct {
	ID      ID      `json:"id" bson:"id" yaml:"id"`
	From    ID      `json:"from" bson:"from" yaml:"from"`
	To      ID      `json:"to" bson:"to" yaml:"to"`
	Reverse ID      `json:"reverse,omitempty" bson:"reverse,omitempty" yaml:"reverse,omitempty"`
	Gbits   float64 `json:"gbits" bson:"gbits" yaml:"gbits"`
	Part    []int   `json:"part" bson:"part" yaml:"part"`
	Links   []ID    `json:"links,omitempty" bson:"links,omitempty" yaml:"links,omitempty"`
}

// LinkRecord is a physical port-to-port connection.
type LinkRecord struct {
	ID      ID      `json:"id" bson:"id" yaml:"id"`
	SrcPort string  `json:"src_port" bson:"src_port" yaml:"src_port"`
	DstPort string  `json:"dst_port" bson:"dst_port" yaml:"dst_port"`
	Gbits   float64 `json:"gbits" bson:"gbits" yaml:"gbits"`
}
