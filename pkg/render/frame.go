package render

import (
	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/interact"
)

// Frame is an immutable snapshot of everything needed to draw one tick.
// Constructors copy their inputs; draw functions never modify a frame.
type Frame struct {
	Width    float64           `json:"width"`
	Height   float64           `json:"height"`
	Viewport interact.Viewport `json:"viewport"`

	Nodes []FrameNode `json:"nodes"`
	Edges []FrameEdge `json:"edges"`

	Tick     int     `json:"tick"`
	Alpha    float64 `json:"alpha"`
	Active   bool    `json:"active"`
	Dragging string  `json:"dragging,omitempty"`
	Caption  string  `json:"caption,omitempty"`
}

// FrameNode is a node position in model space.
type FrameNode struct {
	ID     string      `json:"id"`
	Label  string      `json:"label"`
	Group  graph.Group `json:"group"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Pinned bool        `json:"pinned,omitempty"`
}

// FrameEdge references its endpoints by index into Frame.Nodes.
type FrameEdge struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// NewFrame snapshots nodes and edges. Edges whose endpoints are not among
// nodes are dropped.
func NewFrame(nodes []graph.Node, edges []graph.Edge, width, height float64, vp interact.Viewport) Frame {
	f := Frame{
		Width:    width,
		Height:   height,
		Viewport: vp,
		Nodes:    make([]FrameNode, len(nodes)),
		Edges:    make([]FrameEdge, 0, len(edges)),
	}
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
		f.Nodes[i] = FrameNode{
			ID: n.ID, Label: n.DisplayLabel(), Group: n.Group,
			X: n.X, Y: n.Y, Pinned: n.Pinned,
		}
	}
	for _, e := range edges {
		s, ok1 := index[e.Source]
		t, ok2 := index[e.Target]
		if ok1 && ok2 {
			f.Edges = append(f.Edges, FrameEdge{Source: s, Target: t})
		}
	}
	return f
}

// FrameFromLayout builds a frame for a finished layout with an identity
// viewport.
func FrameFromLayout(l graph.Layout) Frame {
	g := l.Graph()
	nodes := make([]graph.Node, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = *n
	}
	f := NewFrame(nodes, g.Edges, l.Width, l.Height, interact.NewViewport())
	f.Tick = l.Ticks
	f.Alpha = l.Alpha
	if l.Route != nil {
		f.Caption = l.Route.Caption()
	}
	return f
}

// Empty reports whether there is nothing to draw.
func (f Frame) Empty() bool { return len(f.Nodes) == 0 }

// Screen returns the screen position of node i.
func (f Frame) Screen(i int) (float64, float64) {
	n := f.Nodes[i]
	return f.Viewport.ToScreen(n.X, n.Y)
}

// Scale returns the viewport scale, treating an unset viewport as identity.
func (f Frame) Scale() float64 {
	if f.Viewport.Scale == 0 {
		return 1
	}
	return f.Viewport.Scale
}
