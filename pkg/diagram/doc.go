// Package diagram is the interactive path diagram component.
//
// A [Diagram] ties together the graph built from a word path, the force
// simulation that lays it out, and the pointer controller that drags nodes
// and moves the viewport. Hosts call [Diagram.Frame] once per display frame
// and redraw only when it reports a change, so a converged diagram costs
// nothing to keep open.
//
//	d, _ := diagram.New()
//	d.SetPath([]string{"cat", "cot", "cog", "dog"})
//	for {
//		if f, redraw := d.Frame(); redraw {
//			draw(f)
//		}
//	}
//
// A Diagram is single-threaded. [Loop] owns one on a dedicated goroutine,
// ticks it at a fixed interval and serializes mutations posted from other
// goroutines, which is how the WebSocket server and the terminal viewer
// drive it.
package diagram
