package force

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/observability"
)

// ErrNonFinite is reported when a tick produced NaN or infinite values.
var ErrNonFinite = errors.New("non-finite position")

// Simulation positions the nodes of one graph. It is not safe for concurrent
// use; hosts drive it from a single goroutine.
type Simulation struct {
	cfg    Config
	g      *graph.Graph
	links  []link
	logger *log.Logger
	rng    *rand.Rand

	alpha       float64
	alphaTarget float64
	ticks       int
	skipped     int
	stopped     bool

	// Scratch buffers, reused across ticks.
	px, py []float64
	vx, vy []float64
}

type link struct {
	s, t     int
	strength float64
	bias     float64
}

// Option configures a [Simulation].
type Option func(*Simulation)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a simulation over g. Positions of g's nodes are owned by the
// simulation from here on. Nodes at the origin that are not pinned are placed
// on a spiral around the canvas centre.
//
// A zero Config selects [DefaultConfig]. Otherwise zero fields are filled
// by [Config.SetDefaults], which keeps an explicit zero ChargeStrength,
// CenterStrength and VelocityDecay. The result must pass [Config.Validate].
func New(g *graph.Graph, cfg Config, opts ...Option) (*Simulation, error) {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g == nil {
		g = graph.Build(nil)
	}
	s := &Simulation{
		cfg:    cfg,
		g:      g,
		logger: log.Default(),
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		alpha:  1,
	}
	for _, opt := range opts {
		opt(s)
	}

	n := len(g.Nodes)
	s.px, s.py = make([]float64, n), make([]float64, n)
	s.vx, s.vy = make([]float64, n), make([]float64, n)
	s.place()
	s.links = resolveLinks(g, cfg.LinkStrength)
	s.logger.Debug("simulation created", "nodes", n, "edges", len(g.Edges), "theta", cfg.Theta)
	return s, nil
}

var initialAngle = math.Pi * (3 - math.Sqrt(5))

const initialRadius = 10.0

func (s *Simulation) place() {
	cx, cy := s.cfg.Center()
	for i, n := range s.g.Nodes {
		if n.Pinned {
			n.X, n.Y = n.FX, n.FY
			continue
		}
		if n.X != 0 || n.Y != 0 {
			continue
		}
		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		n.X = cx + r*math.Cos(a)
		n.Y = cy + r*math.Sin(a)
	}
}

func resolveLinks(g *graph.Graph, strength float64) []link {
	deg := make([]int, len(g.Nodes))
	for _, e := range g.Edges {
		if e.IsLoop() {
			continue
		}
		deg[g.IndexOf(e.Source)]++
		deg[g.IndexOf(e.Target)]++
	}
	links := make([]link, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.IsLoop() {
			continue
		}
		si, ti := g.IndexOf(e.Source), g.IndexOf(e.Target)
		if si < 0 || ti < 0 {
			continue
		}
		links = append(links, link{
			s:        si,
			t:        ti,
			strength: strength / float64(min(deg[si], deg[ti])),
			bias:     float64(deg[si]) / float64(deg[si]+deg[ti]),
		})
	}
	return links
}

// =============================================================================
// Stepping
// =============================================================================

// Step advances the simulation by one tick and returns a snapshot of the
// nodes. dt <= 0 is treated as 1. Once converged, Step leaves positions
// unchanged until a restart.
func (s *Simulation) Step(dt float64) []graph.Node {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 1
	}
	if !s.stopped {
		s.advance(dt)
	}
	return s.Nodes()
}

func (s *Simulation) advance(dt float64) {
	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay
	s.ticks++

	if err := s.safeTick(dt); err != nil {
		s.skipped++
		s.logger.Warn("tick skipped", "tick", s.ticks, "err", err)
		observability.Simulation().OnTickSkipped(s.ticks, err)
	}

	if s.alpha < s.cfg.AlphaMin && s.alphaTarget < s.cfg.AlphaMin {
		s.stopped = true
		s.logger.Debug("simulation converged", "ticks", s.ticks, "alpha", s.alpha)
		observability.Simulation().OnConverged(s.ticks)
	}
}

func (s *Simulation) safeTick(dt float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panic: %v", r)
		}
	}()
	s.compute(dt)
	for i := range s.px {
		if !finite(s.px[i]) || !finite(s.py[i]) || !finite(s.vx[i]) || !finite(s.vy[i]) {
			return fmt.Errorf("node %q: %w", s.g.Nodes[i].ID, ErrNonFinite)
		}
	}
	s.commit()
	return nil
}

// compute writes the next positions and velocities into the scratch buffers.
// Forces are evaluated against the committed positions only.
func (s *Simulation) compute(dt float64) {
	nodes := s.g.Nodes
	n := len(nodes)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, nd := range nodes {
		xs[i], ys[i] = nd.X, nd.Y
		s.vx[i], s.vy[i] = nd.VX, nd.VY
	}

	s.applyLinks(xs, ys)
	if s.cfg.Theta > 0 {
		s.applyChargeApprox(xs, ys)
	} else {
		s.applyChargeExact(xs, ys)
	}

	keep := 1 - s.cfg.VelocityDecay
	for i, nd := range nodes {
		if nd.Pinned {
			s.px[i], s.py[i] = nd.FX, nd.FY
			s.vx[i], s.vy[i] = 0, 0
			continue
		}
		s.vx[i] *= keep
		s.vy[i] *= keep
		s.px[i] = xs[i] + s.vx[i]*dt
		s.py[i] = ys[i] + s.vy[i]*dt
	}

	s.applyCenter()
}

func (s *Simulation) applyLinks(xs, ys []float64) {
	for _, l := range s.links {
		dx := xs[l.t] - xs[l.s]
		dy := ys[l.t] - ys[l.s]
		if dx == 0 {
			dx = s.jiggle()
		}
		if dy == 0 {
			dy = s.jiggle()
		}
		d := math.Sqrt(dx*dx + dy*dy)
		k := (d - s.cfg.LinkDistance) / d * s.alpha * l.strength
		dx *= k
		dy *= k
		s.vx[l.t] -= dx * l.bias
		s.vy[l.t] -= dy * l.bias
		s.vx[l.s] += dx * (1 - l.bias)
		s.vy[l.s] += dy * (1 - l.bias)
	}
}

// repel returns the velocity change per unit offset between two nodes at
// squared raw distance d2.
func (s *Simulation) repel(d2 float64, count int) float64 {
	minD := s.cfg.DistanceMin
	clamped := max(d2, minD*minD)
	return s.cfg.ChargeStrength * float64(count) * s.alpha / (clamped * math.Sqrt(d2))
}

func (s *Simulation) pairOffset(xs, ys []float64, i, j int) (dx, dy, d2 float64, ok bool) {
	dx = xs[j] - xs[i]
	dy = ys[j] - ys[i]
	if dx == 0 && dy == 0 {
		dx, dy = s.jiggle(), s.jiggle()
	}
	d2 = dx*dx + dy*dy
	if m := s.cfg.DistanceMax; m > 0 && d2 > m*m {
		return 0, 0, 0, false
	}
	return dx, dy, d2, true
}

func (s *Simulation) applyChargeExact(xs, ys []float64) {
	n := len(xs)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx, dy, d2, ok := s.pairOffset(xs, ys, i, j)
			if !ok {
				continue
			}
			f := s.repel(d2, 1)
			s.vx[i] += dx * f
			s.vy[i] += dy * f
			s.vx[j] -= dx * f
			s.vy[j] -= dy * f
		}
	}
}

func (s *Simulation) applyChargeApprox(xs, ys []float64) {
	qt := newQuadtree(xs, ys)
	for i := range xs {
		qt.visit(i, s.cfg.Theta,
			func(cx, cy float64, count int) {
				dx, dy := cx-xs[i], cy-ys[i]
				d2 := dx*dx + dy*dy
				if m := s.cfg.DistanceMax; m > 0 && d2 > m*m {
					return
				}
				f := s.repel(d2, count)
				s.vx[i] += dx * f
				s.vy[i] += dy * f
			},
			func(j int) {
				dx, dy, d2, ok := s.pairOffset(xs, ys, i, j)
				if !ok {
					return
				}
				f := s.repel(d2, 1)
				s.vx[i] += dx * f
				s.vy[i] += dy * f
			})
	}
}

// applyCenter translates free nodes so the centroid moves toward the canvas
// centre.
func (s *Simulation) applyCenter() {
	n := len(s.px)
	if n == 0 || s.cfg.CenterStrength == 0 {
		return
	}
	var sx, sy float64
	for i := range s.px {
		sx += s.px[i]
		sy += s.py[i]
	}
	cx, cy := s.cfg.Center()
	shiftX := (cx - sx/float64(n)) * s.cfg.CenterStrength
	shiftY := (cy - sy/float64(n)) * s.cfg.CenterStrength
	for i, nd := range s.g.Nodes {
		if nd.Pinned {
			continue
		}
		s.px[i] += shiftX
		s.py[i] += shiftY
	}
}

func (s *Simulation) commit() {
	for i, nd := range s.g.Nodes {
		nd.X, nd.Y = s.px[i], s.py[i]
		nd.VX, nd.VY = s.vx[i], s.vy[i]
	}
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Run ticks until the simulation converges, ctx is cancelled, or maxTicks
// ticks have run (maxTicks <= 0 means no limit). It returns the number of
// ticks performed.
func (s *Simulation) Run(ctx context.Context, maxTicks int) (int, error) {
	start := s.ticks
	for !s.stopped {
		if maxTicks > 0 && s.ticks-start >= maxTicks {
			break
		}
		if err := ctx.Err(); err != nil {
			return s.ticks - start, err
		}
		s.advance(1)
	}
	return s.ticks - start, nil
}

// =============================================================================
// State
// =============================================================================

// Alpha returns the current cooling parameter.
func (s *Simulation) Alpha() float64 { return s.alpha }

// AlphaTarget returns the value alpha is moving toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// Ticks returns the number of ticks run, including skipped ones.
func (s *Simulation) Ticks() int { return s.ticks }

// Skipped returns the number of ticks whose result was discarded.
func (s *Simulation) Skipped() int { return s.skipped }

// Active reports whether Step still moves nodes.
func (s *Simulation) Active() bool { return !s.stopped }

// Converged reports whether the simulation has cooled down.
func (s *Simulation) Converged() bool { return s.stopped }

// Config returns the constants in use.
func (s *Simulation) Config() Config { return s.cfg }

// Graph returns the simulated graph. Callers must not mutate it while the
// simulation is in use.
func (s *Simulation) Graph() *graph.Graph { return s.g }

// Nodes returns a copy of the current node state.
func (s *Simulation) Nodes() []graph.Node {
	out := make([]graph.Node, len(s.g.Nodes))
	for i, n := range s.g.Nodes {
		out[i] = *n
	}
	return out
}

// Layout captures the current positions together with the simulation state.
func (s *Simulation) Layout() graph.Layout {
	l := graph.NewLayout(s.g, s.cfg.Width, s.cfg.Height)
	l.Alpha = s.alpha
	l.Ticks = s.ticks
	l.Converged = s.stopped
	return l
}

// =============================================================================
// Restart and Pinning
// =============================================================================

// SetAlphaTarget sets the value alpha moves toward and resumes ticking when
// the target keeps the simulation warm.
func (s *Simulation) SetAlphaTarget(target float64) {
	s.alphaTarget = target
	if target >= s.cfg.AlphaMin {
		s.stopped = false
	}
	observability.Simulation().OnRestart(target)
}

// Restart reheats the simulation to alpha 1.
func (s *Simulation) Restart() {
	s.alpha = 1
	s.stopped = false
}

// DragStart warms the simulation for an interactive drag.
func (s *Simulation) DragStart() { s.SetAlphaTarget(s.cfg.DragAlphaTarget) }

// DragEnd lets the simulation cool again.
func (s *Simulation) DragEnd() { s.SetAlphaTarget(0) }

// Pin holds the node with the given id at (x, y). It reports whether the
// node exists.
func (s *Simulation) Pin(id string, x, y float64) bool {
	n, ok := s.g.Node(id)
	if !ok {
		return false
	}
	n.Pin(x, y)
	n.X, n.Y = x, y
	n.VX, n.VY = 0, 0
	return true
}

// Unpin releases a pinned node.
func (s *Simulation) Unpin(id string) {
	if n, ok := s.g.Node(id); ok {
		n.Unpin()
	}
}
