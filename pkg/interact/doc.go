// Package interact maps pointer input onto a force layout.
//
// A [Viewport] is the pan/zoom transform between model and screen space. A
// [Controller] owns one viewport and turns pointer events into either a node
// drag, which pins the node under the pointer through the [Pinner] interface,
// or a viewport change:
//
//   - pointer down over a node pins it and warms the simulation
//   - pointer down over empty space starts a pan
//   - wheel and pinch zoom around the pointer, clamped to [MinScale, MaxScale]
//
// Zooming and panning never touch node coordinates. The controller is not
// safe for concurrent use and must run on the goroutine that steps the
// simulation.
package interact
