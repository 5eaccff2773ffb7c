package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/wordpath/pkg/render"
)

// Options configures DOT generation.
type Options struct {
	// Detailed appends the group and model position to node labels.
	Detailed bool

	// Transparent leaves the background unfilled.
	Transparent bool
}

// pointsPerInch converts model units (treated as points) to Graphviz inches.
const pointsPerInch = 72.0

// ToDOT converts a frame to an undirected Graphviz graph with every node
// pinned at its simulated position. The viewport is not applied; Graphviz
// fits the drawing itself.
//
// Model y grows downward and Graphviz y grows upward, so y is negated.
func ToDOT(f render.Frame, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  overlap=true;\n")
	if opts.Transparent {
		buf.WriteString("  bgcolor=\"transparent\";\n")
	} else {
		fmt.Fprintf(&buf, "  bgcolor=%q;\n", render.ColorBackground)
	}
	diameter := 2 * render.NodeRadius / pointsPerInch
	fmt.Fprintf(&buf, "  node [shape=circle, fixedsize=true, width=%.3f, style=filled, fontname=\"Courier New\", fontsize=14];\n", diameter)
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=2];\n", render.ColorEdge+"99")
	buf.WriteString("\n")

	for _, n := range f.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed)), ", "))
	}

	buf.WriteString("\n")
	for _, e := range f.Edges {
		fmt.Fprintf(&buf, "  %q -- %q;\n", f.Nodes[e.Source].ID, f.Nodes[e.Target].ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n render.FrameNode, detailed bool) string {
	if !detailed {
		return n.Label
	}
	return fmt.Sprintf("%s\n%s\n%.0f,%.0f", n.Label, n.Group, n.X, n.Y)
}

func fmtAttrs(n render.FrameNode, label string) []string {
	st := render.StyleFor(n.Group)
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.X, -n.Y),
		fmt.Sprintf("fillcolor=%q", st.Fill),
		fmt.Sprintf("color=%q", st.Stroke),
		fmt.Sprintf("fontcolor=%q", st.Text),
		fmt.Sprintf("penwidth=%.0f", st.StrokeWidth),
	}
	if n.Pinned {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG with the neato engine, which keeps
// pinned positions. The result can be converted with [render.ToPDF] or
// [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element to a zero-origin viewBox with
// explicit pixel size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
