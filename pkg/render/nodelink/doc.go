// Package nodelink exports path diagrams as Graphviz graphs.
//
// # Overview
//
// [ToDOT] writes an undirected DOT graph in which every node carries its
// simulated position as a pinned pos attribute ("x,y!"). Rendering with the
// neato engine keeps those positions, so the Graphviz drawing matches the
// force layout instead of being re-laid out.
//
//	dot := nodelink.ToDOT(frame, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// The DOT source can also be saved and processed with external Graphviz
// tools (neato -n2 honours the same positions).
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
