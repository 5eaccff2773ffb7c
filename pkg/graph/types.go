package graph

import (
	"fmt"
	"strings"
)

// =============================================================================
// Group - Position-Derived Node Category
// =============================================================================

// Group classifies a node by where it appears in the source path.
// The numeric values match the route service's convention (0, 1, 2).
type Group int

const (
	GroupIntermediate Group = iota
	GroupOrigin
	GroupDestination
)

// String returns the lower-case group name.
func (g Group) String() string {
	switch g {
	case GroupOrigin:
		return "origin"
	case GroupDestination:
		return "destination"
	default:
		return "intermediate"
	}
}

// MarshalText encodes the group by name.
func (g Group) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText decodes a group name. Matching is case-insensitive.
func (g *Group) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "origin":
		*g = GroupOrigin
	case "destination":
		*g = GroupDestination
	case "intermediate", "":
		*g = GroupIntermediate
	default:
		return fmt.Errorf("unknown group %q", text)
	}
	return nil
}

// =============================================================================
// Node - Simulated Path Entry
// =============================================================================

// Node is one distinct word of the path together with its simulation state.
//
// X/Y is the simulated position and VX/VY the velocity; both are owned by the
// force simulation. When Pinned is set the node is held at FX/FY.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"` // spelling of the first occurrence
	Group Group  `json:"group"`
	Index int    `json:"index"` // first-occurrence position in the path

	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`

	Pinned bool    `json:"pinned,omitempty"`
	FX     float64 `json:"fx,omitempty"`
	FY     float64 `json:"fy,omitempty"`
}

// Pin fixes the node at (x, y).
func (n *Node) Pin(x, y float64) {
	n.Pinned = true
	n.FX, n.FY = x, y
}

// Unpin returns the node to free simulation.
func (n *Node) Unpin() {
	n.Pinned = false
	n.FX, n.FY = 0, 0
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge - Consecutive Path Pair
// =============================================================================

// Edge connects two consecutive path entries. Direction follows the path but
// is ignored by the layout.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// IsLoop reports whether both endpoints are the same node.
func (e Edge) IsLoop() bool { return e.Source == e.Target }

// key returns an order-independent identity for the edge.
func (e Edge) key() [2]string {
	if e.Source < e.Target {
		return [2]string{e.Source, e.Target}
	}
	return [2]string{e.Target, e.Source}
}

// =============================================================================
// EdgePolicy - Repeat Handling
// =============================================================================

// EdgePolicy decides what happens to edges when a route revisits a word.
type EdgePolicy string

const (
	// EdgesPreserve keeps one edge per consecutive pair.
	EdgesPreserve EdgePolicy = "preserve"
	// EdgesCollapse drops duplicate undirected pairs and self-loops.
	EdgesCollapse EdgePolicy = "collapse"
)

// ParseEdgePolicy converts a flag value into an EdgePolicy.
// The empty string selects EdgesPreserve.
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch EdgePolicy(strings.ToLower(s)) {
	case "", EdgesPreserve:
		return EdgesPreserve, nil
	case EdgesCollapse:
		return EdgesCollapse, nil
	default:
		return "", fmt.Errorf("invalid edge policy: %q (must be 'preserve' or 'collapse')", s)
	}
}
