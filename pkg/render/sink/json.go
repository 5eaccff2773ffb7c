package sink

import (
	"encoding/json"

	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/render"
)

// RenderJSON exports a finished layout as pretty-printed JSON, the same
// document [graph.ReadLayoutFile] reads back.
func RenderJSON(l graph.Layout) ([]byte, error) {
	if l.Nodes == nil {
		l.Nodes = []graph.LayoutNode{}
	}
	if l.Edges == nil {
		l.Edges = []graph.Edge{}
	}
	return graph.MarshalLayout(l)
}

// RenderFrameJSON encodes a live frame compactly, as sent to websocket
// clients.
func RenderFrameJSON(f render.Frame) ([]byte, error) {
	if f.Nodes == nil {
		f.Nodes = []render.FrameNode{}
	}
	if f.Edges == nil {
		f.Edges = []render.FrameEdge{}
	}
	return json.Marshal(f)
}
