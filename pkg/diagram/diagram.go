package diagram

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/wordpath/pkg/force"
	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/interact"
	"github.com/matzehuels/wordpath/pkg/render"
)

// Diagram is one interactive path diagram. It owns at most one simulation
// at a time and is not safe for concurrent use; see [Loop].
type Diagram struct {
	id     string
	cfg    force.Config
	policy graph.EdgePolicy
	logger *log.Logger

	ctrl  *interact.Controller
	g     *graph.Graph
	sim   *force.Simulation
	route *graph.Route

	dirty    bool
	disposed bool
}

// Option configures a [Diagram].
type Option func(*Diagram)

// WithConfig sets the force constants for every simulation the diagram creates.
func WithConfig(cfg force.Config) Option {
	return func(d *Diagram) { d.cfg = cfg }
}

// WithEdgePolicy selects how repeated words produce edges.
func WithEdgePolicy(p graph.EdgePolicy) Option {
	return func(d *Diagram) { d.policy = p }
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(d *Diagram) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithID overrides the generated identifier.
func WithID(id string) Option {
	return func(d *Diagram) {
		if id != "" {
			d.id = id
		}
	}
}

// New creates an idle, empty diagram.
func New(opts ...Option) (*Diagram, error) {
	d := &Diagram{
		id:     uuid.NewString(),
		cfg:    force.DefaultConfig(),
		policy: graph.EdgesPreserve,
		logger: log.Default(),
		ctrl:   interact.NewController(interact.WithNodeRadius(render.NodeRadius)),
		g:      graph.Build(nil),
		dirty:  true,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.cfg.SetDefaults()
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// ID returns the diagram identifier.
func (d *Diagram) ID() string { return d.id }

// SetPath replaces the diagram content. Any drag ends and the previous
// simulation is discarded. A nil or empty path leaves an idle, empty diagram.
func (d *Diagram) SetPath(path []string) {
	d.SetRoute(graph.Route{Path: path})
}

// SetRoute is SetPath with route metadata for the caption.
func (d *Diagram) SetRoute(r graph.Route) {
	if d.disposed {
		return
	}
	d.ctrl.Cancel()
	d.ctrl.Detach()
	d.sim = nil
	d.route = nil
	d.dirty = true

	d.g = r.Graph(graph.WithEdgePolicy(d.policy))
	if d.g.IsEmpty() {
		d.logger.Debug("diagram cleared", "id", d.id)
		return
	}
	sim, err := force.New(d.g, d.cfg, force.WithLogger(d.logger))
	if err != nil {
		// cfg was validated in New.
		d.logger.Error("create simulation", "id", d.id, "err", err)
		d.g = graph.Build(nil)
		return
	}
	d.sim = sim
	d.route = &r
	d.ctrl.Attach(sim)
	d.logger.Debug("diagram path set", "id", d.id, "nodes", d.g.NodeCount(), "edges", d.g.EdgeCount())
}

// Frame is the per-frame callback. It ticks the simulation once if it is
// active and returns the current frame and whether it must be redrawn.
// Once converged and idle, redraw is false.
func (d *Diagram) Frame() (render.Frame, bool) {
	redraw := d.dirty
	d.dirty = false

	var nodes []graph.Node
	if d.sim != nil {
		if d.sim.Active() {
			nodes = d.sim.Step(1)
			redraw = true
		} else {
			nodes = d.sim.Nodes()
		}
	}
	return d.snapshot(nodes), redraw && !d.disposed
}

// Snapshot returns the current frame without ticking.
func (d *Diagram) Snapshot() render.Frame {
	if d.sim == nil {
		return d.snapshot(nil)
	}
	return d.snapshot(d.sim.Nodes())
}

func (d *Diagram) snapshot(nodes []graph.Node) render.Frame {
	f := render.NewFrame(nodes, d.g.Edges, d.cfg.Width, d.cfg.Height, d.ctrl.Viewport())
	if d.sim != nil {
		f.Tick = d.sim.Ticks()
		f.Alpha = d.sim.Alpha()
		f.Active = d.sim.Active()
	}
	f.Dragging, _ = d.ctrl.Dragging()
	if d.route != nil && d.route.HasMetadata() {
		f.Caption = d.route.Caption()
	}
	return f
}

// Pointer routes a pointer event to the interaction controller. It must be
// called between ticks, never concurrently with Frame.
func (d *Diagram) Pointer(ev interact.Event) {
	if d.disposed {
		return
	}
	if d.ctrl.Handle(ev) {
		d.dirty = true
	}
}

// ResetView restores the identity viewport.
func (d *Diagram) ResetView() {
	d.ctrl.ResetViewport()
	d.dirty = true
}

// FitView frames all nodes with padding on every side.
func (d *Diagram) FitView(padding float64) {
	d.ctrl.FitViewport(d.cfg.Width, d.cfg.Height, padding)
	d.dirty = true
}

// Viewport returns the current viewport.
func (d *Diagram) Viewport() interact.Viewport { return d.ctrl.Viewport() }

// Active reports whether the simulation still moves nodes.
func (d *Diagram) Active() bool { return d.sim != nil && d.sim.Active() }

// Empty reports whether there is nothing to draw.
func (d *Diagram) Empty() bool { return d.g.IsEmpty() }

// Layout exports the current positions.
func (d *Diagram) Layout() graph.Layout {
	var l graph.Layout
	if d.sim != nil {
		l = d.sim.Layout()
	} else {
		l = graph.NewLayout(d.g, d.cfg.Width, d.cfg.Height)
	}
	l.Route = d.route
	return l
}

// Dispose releases the simulation. Later calls to any method other than the
// accessors are no-ops.
func (d *Diagram) Dispose() {
	if d.disposed {
		return
	}
	d.ctrl.Detach()
	d.sim = nil
	d.disposed = true
	d.logger.Debug("diagram disposed", "id", d.id)
}

// Disposed reports whether Dispose was called.
func (d *Diagram) Disposed() bool { return d.disposed }
