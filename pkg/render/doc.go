// Package render turns simulation state into pictures.
//
// # Frames
//
// A [Frame] is an immutable copy of the nodes, edges, viewport and canvas
// size at one tick. Draw functions take a frame by value and have no side
// effects, so a frame can be handed to another goroutine (a websocket writer,
// a terminal renderer) while the simulation keeps ticking.
//
//	frame := render.NewFrame(sim.Nodes(), g.Edges, 1200, 600, ctrl.Viewport())
//	svg := sink.RenderSVG(frame)
//
// # Outputs
//
//   - [sink]: SVG, PNG, PDF, JSON and terminal (lipgloss) output
//   - [nodelink]: Graphviz DOT with pinned positions, rendered by neato
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG with the external rsvg-convert tool
// (from librsvg).
//
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// # Style
//
// Nodes are circles of radius [NodeRadius] coloured by group: origin
// [ColorOrigin], destination [ColorDestination], everything else
// [ColorIntermediate]. Edges are straight lines in [ColorEdge].
//
// [sink]: github.com/matzehuels/wordpath/pkg/render/sink
// [nodelink]: github.com/matzehuels/wordpath/pkg/render/nodelink
package render
