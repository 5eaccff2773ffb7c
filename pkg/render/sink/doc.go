// Package sink provides output formats for laid-out path diagrams.
//
// # Available Formats
//
//   - [RenderSVG]: standalone SVG document (default)
//   - [RenderPNG]: PNG via SVG conversion (requires rsvg-convert)
//   - [RenderPDF]: PDF via SVG conversion (requires rsvg-convert)
//   - [RenderJSON]: layout document, readable by [graph.ReadLayoutFile]
//   - [RenderFrameJSON]: compact frame encoding for live clients
//   - [RenderTerminal]: coloured text grid for the interactive viewer
//
// All functions are pure with respect to their input frame and are safe to
// call concurrently.
//
// # SVG Options
//
//	svg := sink.RenderSVG(frame,
//	    sink.WithBackground("#0a0b1e"),
//	    sink.WithoutGlow(),
//	)
//
// PNG and PDF output default to the dark background so the white labels of
// intermediate nodes stay readable.
package sink
