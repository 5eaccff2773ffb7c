package interact

import (
	"math"

	"github.com/matzehuels/wordpath/pkg/graph"
)

// DefaultNodeRadius is the hit radius of a node in model units.
const DefaultNodeRadius = 30.0

// Pinner is the part of a simulation the controller drives.
// *force.Simulation implements it.
type Pinner interface {
	Nodes() []graph.Node
	Pin(id string, x, y float64) bool
	Unpin(id string)
	DragStart()
	DragEnd()
}

// EventType identifies a pointer event.
type EventType string

const (
	PointerDown EventType = "down"
	PointerMove EventType = "move"
	PointerUp   EventType = "up"
	Wheel       EventType = "wheel"
	Pinch       EventType = "pinch"
)

// Event is a pointer event in screen coordinates.
type Event struct {
	Type EventType `json:"type"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`

	// DeltaY is the wheel delta; negative zooms in.
	DeltaY float64 `json:"delta_y,omitempty"`
	// Scale is the pinch ratio since the previous pinch event.
	Scale float64 `json:"scale,omitempty"`
}

type mode int

const (
	modeIdle mode = iota
	modeDrag
	modePan
)

// Controller turns pointer events into node drags and viewport changes.
// It must be driven from the goroutine that steps the simulation.
type Controller struct {
	vp     Viewport
	sim    Pinner
	radius float64

	mode         mode
	dragID       string
	lastX, lastY float64
}

// ControllerOption configures a [Controller].
type ControllerOption func(*Controller)

// WithViewport sets the initial viewport.
func WithViewport(v Viewport) ControllerOption {
	return func(c *Controller) { c.vp = v }
}

// WithNodeRadius sets the hit radius in model units.
func WithNodeRadius(r float64) ControllerOption {
	return func(c *Controller) {
		if r > 0 {
			c.radius = r
		}
	}
}

// NewController creates a controller with no simulation attached.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{vp: NewViewport(), radius: DefaultNodeRadius}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach connects the controller to a simulation, cancelling any gesture
// on the previous one.
func (c *Controller) Attach(p Pinner) {
	c.Cancel()
	c.sim = p
}

// Detach disconnects the simulation without touching it.
func (c *Controller) Detach() {
	c.sim = nil
	c.mode = modeIdle
	c.dragID = ""
}

// Cancel ends the current gesture. An active drag is released as if the
// pointer went up.
func (c *Controller) Cancel() {
	if c.mode == modeDrag && c.sim != nil {
		c.sim.Unpin(c.dragID)
		c.sim.DragEnd()
	}
	c.mode = modeIdle
	c.dragID = ""
}

// Viewport returns the current transform.
func (c *Controller) Viewport() Viewport { return c.vp }

// SetViewport replaces the current transform.
func (c *Controller) SetViewport(v Viewport) { c.vp = v }

// ResetViewport restores the identity transform.
func (c *Controller) ResetViewport() { c.vp.Reset() }

// FitViewport frames all nodes of the attached simulation.
func (c *Controller) FitViewport(width, height, padding float64) {
	if c.sim == nil {
		c.vp.Reset()
		return
	}
	c.vp.Fit(BoundsOf(c.sim.Nodes(), c.radius), width, height, padding)
}

// Dragging returns the id of the node being dragged.
func (c *Controller) Dragging() (string, bool) {
	return c.dragID, c.mode == modeDrag
}

// Panning reports whether a pan gesture is in progress.
func (c *Controller) Panning() bool { return c.mode == modePan }

// Busy reports whether any gesture is in progress.
func (c *Controller) Busy() bool { return c.mode != modeIdle }

// HitTest returns the topmost node under the screen point.
func (c *Controller) HitTest(sx, sy float64) (string, bool) {
	if c.sim == nil {
		return "", false
	}
	mx, my := c.vp.ToModel(sx, sy)
	nodes := c.sim.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if math.Hypot(nodes[i].X-mx, nodes[i].Y-my) <= c.radius {
			return nodes[i].ID, true
		}
	}
	return "", false
}

// Handle dispatches ev and reports whether anything visible changed.
func (c *Controller) Handle(ev Event) bool {
	switch ev.Type {
	case PointerDown:
		return c.PointerDown(ev.X, ev.Y)
	case PointerMove:
		return c.PointerMove(ev.X, ev.Y)
	case PointerUp:
		return c.PointerUp(ev.X, ev.Y)
	case Wheel:
		return c.Wheel(ev.X, ev.Y, ev.DeltaY)
	case Pinch:
		return c.Pinch(ev.X, ev.Y, ev.Scale)
	}
	return false
}

// PointerDown starts a drag over a node or a pan over empty space.
func (c *Controller) PointerDown(sx, sy float64) bool {
	c.Cancel()
	c.lastX, c.lastY = sx, sy
	if id, ok := c.HitTest(sx, sy); ok {
		mx, my := c.vp.ToModel(sx, sy)
		if c.sim.Pin(id, mx, my) {
			c.mode = modeDrag
			c.dragID = id
			c.sim.DragStart()
			return true
		}
	}
	c.mode = modePan
	return false
}

// PointerMove updates the drag pin or pans the viewport.
func (c *Controller) PointerMove(sx, sy float64) bool {
	dx, dy := sx-c.lastX, sy-c.lastY
	c.lastX, c.lastY = sx, sy
	switch c.mode {
	case modeDrag:
		mx, my := c.vp.ToModel(sx, sy)
		return c.sim.Pin(c.dragID, mx, my)
	case modePan:
		if dx == 0 && dy == 0 {
			return false
		}
		c.vp.Pan(dx, dy)
		return true
	}
	return false
}

// PointerUp releases the drag or ends the pan.
func (c *Controller) PointerUp(sx, sy float64) bool {
	if c.mode == modeIdle {
		return false
	}
	changed := c.PointerMove(sx, sy)
	wasDrag := c.mode == modeDrag
	c.Cancel()
	return changed || wasDrag
}

const (
	// wheelSensitivity converts wheel delta to a zoom exponent (base 2).
	wheelSensitivity = 0.002

	// maxWheelExponent keeps Exp2 finite and non-zero for huge deltas, so
	// they zoom to the scale bound instead of being rejected.
	maxWheelExponent = 64
)

// Wheel zooms around the pointer. A delta of -500 doubles the scale.
func (c *Controller) Wheel(sx, sy, deltaY float64) bool {
	exp := max(min(-deltaY*wheelSensitivity, maxWheelExponent), -maxWheelExponent)
	return c.zoom(sx, sy, math.Exp2(exp))
}

// Pinch zooms around the gesture centre by ratio.
func (c *Controller) Pinch(sx, sy, ratio float64) bool {
	return c.zoom(sx, sy, ratio)
}

func (c *Controller) zoom(sx, sy, factor float64) bool {
	before := c.vp
	c.vp.ZoomAt(sx, sy, factor)
	return c.vp != before
}
