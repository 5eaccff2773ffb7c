package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Layout - Simulation Output Format
// =============================================================================

// Layout is the serialization format of a laid-out path diagram.
// It is what `wordpath layout` writes and what the render stage consumes.
type Layout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Simulation state at the time of export.
	Alpha     float64 `json:"alpha"`
	Ticks     int     `json:"ticks"`
	Converged bool    `json:"converged"`

	Nodes []LayoutNode `json:"nodes"`
	Edges []Edge       `json:"edges"`
	Route *Route       `json:"route,omitempty"`
}

// LayoutNode is a positioned node in a [Layout].
type LayoutNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label,omitempty"`
	Group Group   `json:"group"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// NewLayout captures the current positions of g. Node order is preserved.
func NewLayout(g *Graph, width, height float64) Layout {
	l := Layout{
		Width:  width,
		Height: height,
		Nodes:  make([]LayoutNode, 0, g.NodeCount()),
		Edges:  make([]Edge, 0, g.EdgeCount()),
	}
	for _, n := range g.nodes() {
		l.Nodes = append(l.Nodes, LayoutNode{
			ID: n.ID, Label: n.Label, Group: n.Group,
			X: n.X, Y: n.Y,
		})
	}
	if g != nil {
		l.Edges = append(l.Edges, g.Edges...)
	}
	return l
}

// Graph rebuilds a graph from the layout, with positions restored.
func (l Layout) Graph() *Graph {
	g := &Graph{index: make(map[string]int, len(l.Nodes))}
	for i, ln := range l.Nodes {
		g.index[ln.ID] = i
		g.Nodes = append(g.Nodes, &Node{
			ID: ln.ID, Label: ln.Label, Group: ln.Group, Index: i,
			X: ln.X, Y: ln.Y,
		})
	}
	g.Edges = append(g.Edges, l.Edges...)
	return g
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Every edge must reference a node of the layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	ids := make(map[string]struct{}, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.ID == "" {
			return Layout{}, fmt.Errorf("layout node without id")
		}
		ids[n.ID] = struct{}{}
	}
	for _, e := range l.Edges {
		if _, ok := ids[e.Source]; !ok {
			return Layout{}, fmt.Errorf("edge %s→%s: unknown source", e.Source, e.Target)
		}
		if _, ok := ids[e.Target]; !ok {
			return Layout{}, fmt.Errorf("edge %s→%s: unknown target", e.Source, e.Target)
		}
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
