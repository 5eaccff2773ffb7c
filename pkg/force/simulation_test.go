package force

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/observability"
)

func newSim(t *testing.T, path []string, cfg Config) *Simulation {
	t.Helper()
	s, err := New(graph.Build(path), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestAlphaMonotonicAndConverges(t *testing.T) {
	s := newSim(t, []string{"cat", "cot", "cog", "dog"}, DefaultConfig())

	prev := s.Alpha()
	for i := 0; i < 1000 && s.Active(); i++ {
		s.Step(1)
		if s.Alpha() > prev {
			t.Fatalf("tick %d: alpha rose from %v to %v", s.Ticks(), prev, s.Alpha())
		}
		prev = s.Alpha()
	}
	if !s.Converged() {
		t.Fatal("simulation did not converge")
	}
	if s.Ticks() > 310 {
		t.Errorf("converged after %d ticks, want about 300", s.Ticks())
	}
	if s.Alpha() >= DefaultAlphaMin {
		t.Errorf("alpha = %v after convergence", s.Alpha())
	}
}

func TestStepAfterConvergenceIsNoop(t *testing.T) {
	s := newSim(t, []string{"cat", "cot", "cog"}, DefaultConfig())
	if _, err := s.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	before := s.Nodes()
	ticks := s.Ticks()
	after := s.Step(1)
	if s.Ticks() != ticks {
		t.Error("Step advanced a converged simulation")
	}
	for i := range before {
		if before[i].X != after[i].X || before[i].Y != after[i].Y {
			t.Errorf("node %s moved after convergence", before[i].ID)
		}
	}
}

func TestSingleNodeConvergesToCenter(t *testing.T) {
	s := newSim(t, []string{"cat"}, DefaultConfig())
	if _, err := s.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	n := s.Nodes()[0]
	cx, cy := s.Config().Center()
	if math.Abs(n.X-cx) > 1e-6 || math.Abs(n.Y-cy) > 1e-6 {
		t.Errorf("position = (%v, %v), want (%v, %v)", n.X, n.Y, cx, cy)
	}
	if n.Group != graph.GroupOrigin {
		t.Errorf("group = %v, want origin", n.Group)
	}
}

func TestZeroConfigUsesDefaults(t *testing.T) {
	s := newSim(t, []string{"cat"}, Config{})
	if got := s.Config(); got != DefaultConfig() {
		t.Errorf("config = %+v, want defaults", got)
	}
	if _, err := s.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	n := s.Nodes()[0]
	cx, cy := s.Config().Center()
	if math.Abs(n.X-cx) > 1e-6 || math.Abs(n.Y-cy) > 1e-6 {
		t.Errorf("position = (%v, %v), want (%v, %v)", n.X, n.Y, cx, cy)
	}
}

func TestEmptyGraph(t *testing.T) {
	s, err := New(nil, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if nodes := s.Step(1); len(nodes) != 0 {
		t.Errorf("Step returned %d nodes", len(nodes))
	}
	if _, err := s.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if !s.Converged() {
		t.Error("empty simulation should converge")
	}
}

func TestLayoutSpreadsNodes(t *testing.T) {
	s := newSim(t, []string{"cat", "cot", "cog", "dog"}, DefaultConfig())
	if _, err := s.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	nodes := s.Nodes()
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			d := math.Hypot(nodes[i].X-nodes[j].X, nodes[i].Y-nodes[j].Y)
			if d < 30 {
				t.Errorf("%s and %s overlap (distance %.1f)", nodes[i].ID, nodes[j].ID, d)
			}
		}
	}

	// Linked pairs settle near the rest distance.
	g := s.Graph()
	for _, e := range g.Edges {
		a, _ := g.Node(e.Source)
		b, _ := g.Node(e.Target)
		d := math.Hypot(a.X-b.X, a.Y-b.Y)
		if d < DefaultLinkDistance/2 || d > DefaultLinkDistance*3 {
			t.Errorf("edge %s-%s length %.1f", e.Source, e.Target, d)
		}
	}
}

func TestPinnedNodeHoldsPosition(t *testing.T) {
	s := newSim(t, []string{"cat", "cot", "cog", "dog"}, DefaultConfig())
	if !s.Pin("cot", 100, 150) {
		t.Fatal("Pin returned false")
	}
	s.DragStart()
	for i := 0; i < 50; i++ {
		for _, n := range s.Step(1) {
			if n.ID != "cot" {
				continue
			}
			if n.X != 100 || n.Y != 150 {
				t.Fatalf("tick %d: pinned node at (%v, %v)", i, n.X, n.Y)
			}
		}
	}
	s.Unpin("cot")
	s.DragEnd()
	if s.AlphaTarget() != 0 {
		t.Errorf("AlphaTarget = %v after drag end", s.AlphaTarget())
	}
	if s.Pin("missing", 0, 0) {
		t.Error("Pin of unknown node returned true")
	}
}

func TestDragRestartsConvergedSimulation(t *testing.T) {
	s := newSim(t, []string{"cat", "cot"}, DefaultConfig())
	if _, err := s.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	s.DragStart()
	if !s.Active() {
		t.Fatal("DragStart did not resume ticking")
	}
	before := s.Alpha()
	s.Step(1)
	if s.Alpha() <= before {
		t.Errorf("alpha did not warm toward the drag target: %v -> %v", before, s.Alpha())
	}
	s.DragEnd()
	n, err := s.Run(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 || !s.Converged() {
		t.Errorf("simulation did not cool after drag end (ran %d ticks)", n)
	}
}

func TestCoincidentNodesStayFinite(t *testing.T) {
	g := graph.Build([]string{"a", "b", "c"})
	for _, n := range g.Nodes {
		n.X, n.Y = 400, 300
	}
	s, err := New(g, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	nodes := s.Nodes()
	for _, n := range nodes {
		if !finite(n.X) || !finite(n.Y) {
			t.Fatalf("node %s at (%v, %v)", n.ID, n.X, n.Y)
		}
	}
	if nodes[0].X == nodes[1].X && nodes[0].Y == nodes[1].Y {
		t.Error("coincident nodes were not separated")
	}
	if s.Skipped() != 0 {
		t.Errorf("Skipped = %d", s.Skipped())
	}
}

type recordingHooks struct {
	observability.NoopSimulationHooks
	skipped   []error
	converged int
}

func (h *recordingHooks) OnTickSkipped(_ int, err error) { h.skipped = append(h.skipped, err) }
func (h *recordingHooks) OnConverged(ticks int)          { h.converged = ticks }

func TestNonFiniteTickIsDiscarded(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetSimulationHooks(hooks)
	defer observability.Reset()

	s := newSim(t, []string{"cat", "cot"}, DefaultConfig())
	s.Step(1)
	before := s.Nodes()

	s.cfg.ChargeStrength = math.Inf(-1)
	s.Step(1)
	after := s.Nodes()
	for i := range before {
		if before[i].X != after[i].X || before[i].Y != after[i].Y {
			t.Errorf("node %s moved on a discarded tick", before[i].ID)
		}
	}
	if s.Skipped() != 1 || len(hooks.skipped) != 1 {
		t.Fatalf("Skipped = %d, hooks = %d", s.Skipped(), len(hooks.skipped))
	}
	if !errors.Is(hooks.skipped[0], ErrNonFinite) {
		t.Errorf("reason = %v, want ErrNonFinite", hooks.skipped[0])
	}

	s.cfg.ChargeStrength = DefaultChargeStrength
	s.Step(1)
	if s.Skipped() != 1 {
		t.Error("recovered tick was skipped")
	}
	if _, err := s.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if hooks.converged == 0 {
		t.Error("OnConverged not called")
	}
}

func TestRunHonoursContext(t *testing.T) {
	s := newSim(t, []string{"cat", "cot", "cog"}, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Run(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}

	n, err := s.Run(context.Background(), 5)
	if err != nil || n != 5 {
		t.Errorf("Run(5) = %d, %v", n, err)
	}
}

func TestBarnesHutMatchesExact(t *testing.T) {
	path := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}

	exact := newSim(t, path, DefaultConfig())
	cfg := DefaultConfig()
	cfg.Theta = 1e-9
	approx := newSim(t, path, cfg)

	for i := 0; i < 20; i++ {
		a := exact.Step(1)
		b := approx.Step(1)
		for k := range a {
			if math.Abs(a[k].X-b[k].X) > 1e-6 || math.Abs(a[k].Y-b[k].Y) > 1e-6 {
				t.Fatalf("tick %d node %s: exact (%v, %v) approx (%v, %v)",
					i, a[k].ID, a[k].X, a[k].Y, b[k].X, b[k].Y)
			}
		}
	}

	cfg.Theta = 0.9
	coarse := newSim(t, path, cfg)
	if _, err := coarse.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	for _, n := range coarse.Nodes() {
		if !finite(n.X) || !finite(n.Y) {
			t.Fatalf("node %s at (%v, %v)", n.ID, n.X, n.Y)
		}
	}
}

func TestStepTreatsNonPositiveDtAsOne(t *testing.T) {
	a := newSim(t, []string{"cat", "cot"}, DefaultConfig())
	b := newSim(t, []string{"cat", "cot"}, DefaultConfig())
	na := a.Step(0)
	nb := b.Step(1)
	for i := range na {
		if na[i].X != nb[i].X || na[i].Y != nb[i].Y {
			t.Errorf("Step(0) and Step(1) differ for %s", na[i].ID)
		}
	}
}

func TestInitialPlacement(t *testing.T) {
	s := newSim(t, []string{"a", "b", "c"}, DefaultConfig())
	cx, cy := s.Config().Center()
	for i, n := range s.Nodes() {
		want := initialRadius * math.Sqrt(0.5+float64(i))
		got := math.Hypot(n.X-cx, n.Y-cy)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("node %d radius = %v, want %v", i, got, want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"positive charge", func(c *Config) { c.ChargeStrength = 10 }, true},
		{"negative distance", func(c *Config) { c.LinkDistance = -1 }, true},
		{"alpha decay of one", func(c *Config) { c.AlphaDecay = 1 }, true},
		{"drag target below alpha min", func(c *Config) { c.DragAlphaTarget = 0.0001 }, true},
		{"theta too large", func(c *Config) { c.Theta = 3 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := New(graph.Build([]string{"a"}), Config{ChargeStrength: 5}); err == nil {
		t.Error("New accepted an invalid config")
	}
}

func TestSetDefaultsFillsZeroConfig(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero config after SetDefaults: %v", err)
	}
	if cfg.LinkDistance != DefaultLinkDistance || cfg.Width != DefaultWidth {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}
