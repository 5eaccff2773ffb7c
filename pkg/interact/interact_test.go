package interact

import (
	"math"
	"testing"

	"github.com/matzehuels/wordpath/pkg/graph"
)

type fakeSim struct {
	nodes    []graph.Node
	drags    int
	dragEnds int
	unpinned []string
}

func (f *fakeSim) Nodes() []graph.Node {
	return append([]graph.Node(nil), f.nodes...)
}

func (f *fakeSim) Pin(id string, x, y float64) bool {
	for i := range f.nodes {
		if f.nodes[i].ID == id {
			f.nodes[i].Pin(x, y)
			f.nodes[i].X, f.nodes[i].Y = x, y
			return true
		}
	}
	return false
}

func (f *fakeSim) Unpin(id string) {
	f.unpinned = append(f.unpinned, id)
	for i := range f.nodes {
		if f.nodes[i].ID == id {
			f.nodes[i].Unpin()
		}
	}
}

func (f *fakeSim) DragStart() { f.drags++ }
func (f *fakeSim) DragEnd()   { f.dragEnds++ }

func newFake() *fakeSim {
	return &fakeSim{nodes: []graph.Node{
		{ID: "cat", X: 100, Y: 100},
		{ID: "cot", X: 300, Y: 100},
		{ID: "top", X: 310, Y: 100}, // overlaps cot, drawn later
	}}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestViewportRoundTrip(t *testing.T) {
	v := NewViewport()
	v.Pan(40, -20)
	v.ZoomAt(200, 100, 2)

	for _, p := range [][2]float64{{0, 0}, {123.5, -7}, {800, 600}} {
		sx, sy := v.ToScreen(p[0], p[1])
		mx, my := v.ToModel(sx, sy)
		if !approx(mx, p[0]) || !approx(my, p[1]) {
			t.Errorf("round trip %v -> (%v, %v)", p, mx, my)
		}
	}
}

func TestZoomKeepsPointerFixed(t *testing.T) {
	v := NewViewport()
	v.Pan(15, 25)
	mx, my := v.ToModel(250, 180)
	v.ZoomAt(250, 180, 1.7)
	sx, sy := v.ToScreen(mx, my)
	if !approx(sx, 250) || !approx(sy, 180) {
		t.Errorf("anchor moved to (%v, %v)", sx, sy)
	}
}

func TestZoomClamped(t *testing.T) {
	v := NewViewport()
	for i := 0; i < 50; i++ {
		v.ZoomAt(0, 0, 1.5)
		if v.Scale > DefaultMaxScale {
			t.Fatalf("scale %v above max", v.Scale)
		}
	}
	if v.Scale != DefaultMaxScale {
		t.Errorf("scale = %v, want %v", v.Scale, DefaultMaxScale)
	}
	for i := 0; i < 100; i++ {
		v.ZoomAt(0, 0, 0.5)
		if v.Scale < DefaultMinScale {
			t.Fatalf("scale %v below min", v.Scale)
		}
	}
	if v.Scale != DefaultMinScale {
		t.Errorf("scale = %v, want %v", v.Scale, DefaultMinScale)
	}

	before := v
	v.ZoomAt(0, 0, 0)
	v.ZoomAt(0, 0, math.NaN())
	if v != before {
		t.Error("invalid factor changed the viewport")
	}
}

func TestWheelHugeDeltaClamps(t *testing.T) {
	c := NewController()
	if !c.Wheel(0, 0, -1e6) {
		t.Error("huge zoom-in reported no change")
	}
	if got := c.Viewport().Scale; got != DefaultMaxScale {
		t.Errorf("scale after Wheel(-1e6) = %v, want %v", got, DefaultMaxScale)
	}
	if !c.Wheel(0, 0, 1e6) {
		t.Error("huge zoom-out reported no change")
	}
	if got := c.Viewport().Scale; got != DefaultMinScale {
		t.Errorf("scale after Wheel(1e6) = %v, want %v", got, DefaultMinScale)
	}
}

func TestFit(t *testing.T) {
	v := NewViewport()
	v.Fit(Bounds{MinX: 0, MinY: 0, MaxX: 400, MaxY: 100}, 800, 600, 0)
	if !approx(v.Scale, 2) {
		t.Errorf("scale = %v, want 2", v.Scale)
	}
	cx, cy := v.ToScreen(200, 50)
	if !approx(cx, 400) || !approx(cy, 300) {
		t.Errorf("centre maps to (%v, %v)", cx, cy)
	}

	v.Fit(Bounds{MinX: 0, MinY: 0, MaxX: 1e6, MaxY: 1e6}, 800, 600, 10)
	if v.Scale != DefaultMinScale {
		t.Errorf("scale = %v, want clamp to %v", v.Scale, DefaultMinScale)
	}

	v.Fit(BoundsOf(nil, 30), 800, 600, 10)
	if v != NewViewport() {
		t.Errorf("empty bounds: viewport = %+v", v)
	}
}

func TestDragPinsAndReleases(t *testing.T) {
	sim := newFake()
	c := NewController()
	c.Attach(sim)

	if !c.PointerDown(105, 95) {
		t.Fatal("PointerDown over node reported no change")
	}
	if id, ok := c.Dragging(); !ok || id != "cat" {
		t.Fatalf("Dragging = %q, %v", id, ok)
	}
	if sim.drags != 1 {
		t.Errorf("DragStart calls = %d", sim.drags)
	}

	c.PointerMove(150, 160)
	n := sim.nodes[0]
	if !n.Pinned || n.FX != 150 || n.FY != 160 {
		t.Errorf("pin = (%v, %v, %v)", n.Pinned, n.FX, n.FY)
	}

	c.PointerUp(150, 160)
	if sim.nodes[0].Pinned {
		t.Error("node still pinned after pointer up")
	}
	if sim.dragEnds != 1 {
		t.Errorf("DragEnd calls = %d", sim.dragEnds)
	}
	if c.Busy() {
		t.Error("controller still busy")
	}
}

func TestDragUsesModelCoordinates(t *testing.T) {
	sim := newFake()
	c := NewController()
	c.Attach(sim)
	v := NewViewport()
	v.ZoomAt(0, 0, 2)
	v.Pan(50, 0)
	c.SetViewport(v)

	// cat at model (100, 100) is at screen (250, 200).
	if id, ok := c.HitTest(250, 200); !ok || id != "cat" {
		t.Fatalf("HitTest = %q, %v", id, ok)
	}
	c.PointerDown(250, 200)
	c.PointerMove(450, 400)
	if n := sim.nodes[0]; n.FX != 200 || n.FY != 200 {
		t.Errorf("pin at (%v, %v), want model (200, 200)", n.FX, n.FY)
	}
	if c.Viewport() != v {
		t.Error("drag changed the viewport")
	}
}

func TestHitTestTopmost(t *testing.T) {
	c := NewController()
	c.Attach(newFake())
	if id, _ := c.HitTest(305, 100); id != "top" {
		t.Errorf("HitTest = %q, want top", id)
	}
	if _, ok := c.HitTest(700, 500); ok {
		t.Error("hit on empty space")
	}
}

func TestPanOnEmptySpace(t *testing.T) {
	sim := newFake()
	c := NewController()
	c.Attach(sim)

	c.PointerDown(600, 400)
	if !c.Panning() {
		t.Fatal("expected pan")
	}
	c.PointerMove(620, 390)
	c.PointerUp(630, 390)
	v := c.Viewport()
	if v.TX != 30 || v.TY != -10 {
		t.Errorf("translate = (%v, %v), want (30, -10)", v.TX, v.TY)
	}
	for _, n := range sim.nodes {
		if n.Pinned {
			t.Errorf("pan pinned %s", n.ID)
		}
	}
	if sim.drags != 0 {
		t.Error("pan restarted the simulation")
	}
}

func TestWheelZoomsAroundPointer(t *testing.T) {
	sim := newFake()
	c := NewController()
	c.Attach(sim)

	if !c.Handle(Event{Type: Wheel, X: 100, Y: 100, DeltaY: -500}) {
		t.Fatal("wheel reported no change")
	}
	if !approx(c.Viewport().Scale, 2) {
		t.Errorf("scale = %v, want 2", c.Viewport().Scale)
	}
	if id, ok := c.HitTest(100, 100); !ok || id != "cat" {
		t.Errorf("node under pointer changed: %q", id)
	}
	if sim.nodes[0].X != 100 {
		t.Error("zoom mutated node coordinates")
	}

	c.Handle(Event{Type: Pinch, X: 0, Y: 0, Scale: 0.5})
	if !approx(c.Viewport().Scale, 1) {
		t.Errorf("scale after pinch = %v", c.Viewport().Scale)
	}
}

func TestAttachCancelsDrag(t *testing.T) {
	old := newFake()
	c := NewController()
	c.Attach(old)
	c.PointerDown(100, 100)

	c.Attach(newFake())
	if _, ok := c.Dragging(); ok {
		t.Error("drag survived attach")
	}
	if old.dragEnds != 1 || len(old.unpinned) != 1 {
		t.Errorf("old simulation not released: ends=%d unpinned=%v", old.dragEnds, old.unpinned)
	}

	c.PointerDown(100, 100)
	c.Detach()
	if c.Busy() {
		t.Error("busy after detach")
	}
	if c.PointerUp(100, 100) {
		t.Error("pointer up without gesture reported a change")
	}
}

func TestNoSimulation(t *testing.T) {
	c := NewController()
	if c.PointerDown(10, 10) {
		t.Error("pointer down without simulation reported a change")
	}
	c.PointerMove(20, 20)
	c.PointerUp(20, 20)
	if v := c.Viewport(); v.TX != 10 || v.TY != 10 {
		t.Errorf("pan without simulation: %+v", v)
	}
	c.FitViewport(800, 600, 10)
	if c.Viewport() != NewViewport() {
		t.Error("FitViewport without simulation should reset")
	}
}
