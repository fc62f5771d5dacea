package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// Layout is the serialization format for a rendered graph view.
//
// Positions are not stored: Graphviz computes them while rendering the DOT
// source. The node list carries the styling that was applied so other
// front ends can reproduce the same view.
type Layout struct {
	Title  string       `json:"title,omitempty" bson:"title,omitempty"`
	Engine string       `json:"engine" bson:"engine"`   // Graphviz layout engine, e.g. "sfdp"
	SizeBy string       `json:"size_by" bson:"size_by"` // data source used for node styling
	DOT    string       `json:"dot" bson:"dot"`
	Nodes  []StyledNode `json:"nodes" bson:"nodes"`
	Links  []Link       `json:"links" bson:"links"`
}

// StyledNode is a node with its display attributes.
type StyledNode struct {
	ID      string  `json:"id" bson:"id"`
	Label   string  `json:"label,omitempty" bson:"label,omitempty"` // screen name when known
	Value   int     `json:"value" bson:"value"`                     // raw data-source value
	Size    float64 `json:"size" bson:"size"`
	Color   string  `json:"color" bson:"color"`
	Tooltip string  `json:"tooltip,omitempty" bson:"tooltip,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *StyledNode) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// A layout without DOT source is rejected.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.DOT == "" {
		return Layout{}, fmt.Errorf("layout must contain DOT string")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
