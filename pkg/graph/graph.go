package graph

import (
	"strings"
	"unicode"
)

// Graph is the node/edge set built from one path.
//
// Nodes are stored as pointers so every occurrence of a word resolves to the
// same instance. The force simulation mutates positions in place.
type Graph struct {
	Nodes []*Node
	Edges []Edge

	index map[string]int
}

// BuildOption configures [Build].
type BuildOption func(*builder)

type builder struct {
	policy EdgePolicy
}

// WithEdgePolicy selects how edges on revisited words are handled.
func WithEdgePolicy(p EdgePolicy) BuildOption {
	return func(b *builder) {
		if p != "" {
			b.policy = p
		}
	}
}

// Build constructs the graph for an ordered path.
//
// Entries are trimmed and lower-cased to form node IDs; blank entries are
// skipped. The node of the first entry is the origin, the node of the last
// entry is the destination unless it is also the origin. A nil or empty path
// yields an empty graph.
func Build(path []string, opts ...BuildOption) *Graph {
	b := builder{policy: EdgesPreserve}
	for _, opt := range opts {
		opt(&b)
	}

	g := &Graph{index: make(map[string]int)}
	ids := make([]string, 0, len(path))
	for _, raw := range path {
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}
		id := NormalizeID(label)
		ids = append(ids, id)
		if _, ok := g.index[id]; ok {
			continue
		}
		g.index[id] = len(g.Nodes)
		g.Nodes = append(g.Nodes, &Node{ID: id, Label: label, Index: len(g.Nodes)})
	}
	if len(ids) == 0 {
		return g
	}

	g.Nodes[g.index[ids[0]]].Group = GroupOrigin
	if last := g.Nodes[g.index[ids[len(ids)-1]]]; len(ids) > 1 && last.Group != GroupOrigin {
		last.Group = GroupDestination
	}

	seen := make(map[[2]string]struct{})
	for i := 0; i+1 < len(ids); i++ {
		e := Edge{Source: ids[i], Target: ids[i+1]}
		if b.policy == EdgesCollapse {
			if e.IsLoop() {
				continue
			}
			if _, dup := seen[e.key()]; dup {
				continue
			}
			seen[e.key()] = struct{}{}
		}
		g.Edges = append(g.Edges, e)
	}
	return g
}

// NormalizeID returns the canonical identifier for a path entry.
func NormalizeID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	i, ok := g.index[NormalizeID(id)]
	if !ok {
		return nil, false
	}
	return g.Nodes[i], true
}

// IndexOf returns the position of id in Nodes, or -1.
func (g *Graph) IndexOf(id string) int {
	if g == nil {
		return -1
	}
	if i, ok := g.index[NormalizeID(id)]; ok {
		return i
	}
	return -1
}

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.Nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return len(g.Edges)
}

// IsEmpty reports whether there is nothing to draw.
func (g *Graph) IsEmpty() bool { return g.NodeCount() == 0 }

// Degree returns the number of edge endpoints at id. A self-loop counts twice.
func (g *Graph) Degree(id string) int {
	if g == nil {
		return 0
	}
	id = NormalizeID(id)
	d := 0
	for _, e := range g.Edges {
		if e.Source == id {
			d++
		}
		if e.Target == id {
			d++
		}
	}
	return d
}

// Origin returns the origin node, or nil for an empty graph.
func (g *Graph) Origin() *Node {
	for _, n := range g.nodes() {
		if n.Group == GroupOrigin {
			return n
		}
	}
	return nil
}

// Destination returns the destination node, or nil if the path has none.
func (g *Graph) Destination() *Node {
	for _, n := range g.nodes() {
		if n.Group == GroupDestination {
			return n
		}
	}
	return nil
}

// Clone returns a deep copy. Node pointers in the copy are fresh.
func (g *Graph) Clone() *Graph {
	out := &Graph{index: make(map[string]int, g.NodeCount())}
	for i, n := range g.nodes() {
		cp := *n
		out.Nodes = append(out.Nodes, &cp)
		out.index[n.ID] = i
	}
	if g != nil {
		out.Edges = append([]Edge(nil), g.Edges...)
	}
	return out
}

func (g *Graph) nodes() []*Node {
	if g == nil {
		return nil
	}
	return g.Nodes
}

// ParsePath splits a textual route into entries. Commas, arrows ("->", "→"),
// and whitespace all separate words:
//
//	ParsePath("cat,cot, cog -> dog") // [cat cot cog dog]
func ParsePath(s string) []string {
	s = strings.NewReplacer("->", " ", "→", " ", ">", " ").Replace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}
