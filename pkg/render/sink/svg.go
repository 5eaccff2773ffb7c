package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/wordpath/pkg/render"
)

const glowFilter = `  <defs>
    <filter id="glow">
      <feGaussianBlur stdDeviation="2.5" result="coloredBlur"/>
      <feMerge><feMergeNode in="coloredBlur"/><feMergeNode in="SourceGraphic"/></feMerge>
    </filter>
  </defs>
`

const labelCSS = `
    .edge { stroke: %s; stroke-opacity: 0.6; stroke-width: 2; }
    .label { font-family: 'Courier New', monospace; font-size: 14px; font-weight: 900; text-anchor: middle; pointer-events: none; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	glow       bool
	background string
	caption    *string
}

// WithoutGlow disables the node glow filter.
func WithoutGlow() SVGOption { return func(r *svgRenderer) { r.glow = false } }

// WithBackground fills the canvas with color. The default is transparent.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithCaption overrides the frame caption; "" hides it.
func WithCaption(s string) SVGOption { return func(r *svgRenderer) { r.caption = &s } }

// RenderSVG draws the frame as a standalone SVG document. The viewport is
// applied as a single transform on the diagram group. An empty frame yields
// an empty canvas.
func RenderSVG(f render.Frame, opts ...SVGOption) []byte {
	r := svgRenderer{glow: true}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := canvasSize(f)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <style>"+labelCSS+"\n  </style>\n", render.ColorEdge)
	if r.glow {
		buf.WriteString(glowFilter)
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}

	if !f.Empty() {
		renderDiagram(&buf, f, r.glow)
	}

	caption := f.Caption
	if r.caption != nil {
		caption = *r.caption
	}
	if caption != "" {
		fmt.Fprintf(&buf, `  <text class="label caption" x="%.1f" y="%.1f" fill="%s">%s</text>`+"\n",
			w/2, h-16, render.ColorOrigin, html.EscapeString(caption))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDiagram(buf *bytes.Buffer, f render.Frame, glow bool) {
	fmt.Fprintf(buf, `  <g transform="translate(%.2f,%.2f) scale(%.4f)">`+"\n", f.Viewport.TX, f.Viewport.TY, f.Scale())

	buf.WriteString("    <g class=\"edges\">\n")
	for _, e := range f.Edges {
		s, t := f.Nodes[e.Source], f.Nodes[e.Target]
		fmt.Fprintf(buf, `      <line class="edge" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", s.X, s.Y, t.X, t.Y)
	}
	buf.WriteString("    </g>\n")

	filter := ""
	if glow {
		filter = ` filter="url(#glow)"`
	}
	buf.WriteString("    <g class=\"nodes\">\n")
	for _, n := range f.Nodes {
		st := render.StyleFor(n.Group)
		id := html.EscapeString(n.ID)
		fmt.Fprintf(buf, `      <g id="node-%s" class="node %s" transform="translate(%.2f,%.2f)">`+"\n", id, n.Group, n.X, n.Y)
		fmt.Fprintf(buf, `        <circle r="%.0f" fill="%s" stroke="%s" stroke-width="%.0f"%s/>`+"\n",
			render.NodeRadius, st.Fill, st.Stroke, st.StrokeWidth, filter)
		fmt.Fprintf(buf, `        <text class="label" y="5" fill="%s">%s</text>`+"\n", st.Text, html.EscapeString(n.Label))
		buf.WriteString("      </g>\n")
	}
	buf.WriteString("    </g>\n")
	buf.WriteString("  </g>\n")
}

func canvasSize(f render.Frame) (float64, float64) {
	w, h := f.Width, f.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// Canvas size used when a frame carries none.
const (
	DefaultWidth  = 1200.0
	DefaultHeight = 600.0
)
