package render

import "github.com/matzehuels/wordpath/pkg/graph"

// NodeRadius is the drawn circle radius in model units.
const NodeRadius = 30.0

// Fixed colours of the diagram.
const (
	ColorOrigin       = "#00f3ff"
	ColorDestination  = "#bc13fe"
	ColorIntermediate = "#1f2937"
	ColorBackground   = "#0a0b1e"
	ColorEdge         = "#4b5563"
	ColorLightText    = "#ffffff"
)

// NodeStyle describes how a node of one group is drawn.
type NodeStyle struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	Text        string
}

// StyleFor returns the style of group g. Bright nodes get dark text,
// intermediate nodes get a white outline and white text.
func StyleFor(g graph.Group) NodeStyle {
	switch g {
	case graph.GroupOrigin:
		return NodeStyle{Fill: ColorOrigin, Stroke: ColorOrigin, StrokeWidth: 3, Text: ColorBackground}
	case graph.GroupDestination:
		return NodeStyle{Fill: ColorDestination, Stroke: ColorDestination, StrokeWidth: 3, Text: ColorBackground}
	default:
		return NodeStyle{Fill: ColorIntermediate, Stroke: ColorLightText, StrokeWidth: 2, Text: ColorLightText}
	}
}
