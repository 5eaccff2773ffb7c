package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/wordpath/pkg/diagram"
	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/interact"
	"github.com/matzehuels/wordpath/pkg/render"
	"github.com/matzehuels/wordpath/pkg/render/sink"
)

func newTestModel(t *testing.T, path ...string) viewModel {
	t.Helper()
	d, err := diagram.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Dispose)
	route := graph.Route{Path: path}
	d.SetRoute(route)
	m := newViewModel(d, route, time.Millisecond)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 34})
	return next.(viewModel)
}

func step(m viewModel, n int) viewModel {
	for i := 0; i < n; i++ {
		next, _ := m.Update(frameMsg(time.Now()))
		m = next.(viewModel)
	}
	return m
}

func TestViewModelTicks(t *testing.T) {
	m := newTestModel(t, "cat", "cot", "dog")
	if m.cols != 120 || m.rows != 30 {
		t.Fatalf("grid = %dx%d", m.cols, m.rows)
	}

	m = step(m, 1)
	if m.frame.Tick != 1 || len(m.frame.Nodes) != 3 {
		t.Fatalf("frame after one tick = %+v", m.frame)
	}
	m = step(m, 1000)
	if m.frame.Active {
		t.Error("simulation still active after 1000 frames")
	}

	view := m.View()
	for _, want := range []string{"cat → cot → dog", "resting", "3 nodes"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewModelKeys(t *testing.T) {
	m := step(newTestModel(t, "cat", "cot"), 400)

	key := func(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

	next, _ := m.Update(key("+"))
	m = step(next.(viewModel), 1)
	if m.frame.Viewport.Scale <= 1 {
		t.Errorf("scale after + = %v", m.frame.Viewport.Scale)
	}

	next, _ = m.Update(key("r"))
	m = step(next.(viewModel), 1)
	if m.frame.Viewport.Scale != 1 {
		t.Errorf("scale after reset = %v", m.frame.Viewport.Scale)
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q did not quit")
	} else if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q returned a command other than Quit")
	}
}

func TestViewModelEmpty(t *testing.T) {
	m := step(newTestModel(t), 2)
	view := m.View()
	if !strings.Contains(view, "empty path") || !strings.Contains(view, "idle") {
		t.Errorf("empty view = %q", view)
	}
}

func TestPointerEvent(t *testing.T) {
	f := render.Frame{Width: 1200, Height: 600}
	grid := sink.NewTermGrid(f, 120, 30)

	tests := []struct {
		name string
		msg  tea.MouseMsg
		want interact.EventType
		ok   bool
	}{
		{"press", tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, interact.PointerDown, true},
		{"press on header", tea.MouseMsg{X: 10, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, "", false},
		{"motion", tea.MouseMsg{X: 11, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}, interact.PointerMove, true},
		{"release", tea.MouseMsg{X: 11, Y: 5, Action: tea.MouseActionRelease}, interact.PointerUp, true},
		{"wheel up", tea.MouseMsg{X: 3, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp}, interact.Wheel, true},
		{"right click", tea.MouseMsg{X: 3, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonRight}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := pointerEvent(tt.msg, grid)
			if ok != tt.ok || (ok && ev.Type != tt.want) {
				t.Fatalf("pointerEvent = %+v, %v", ev, ok)
			}
		})
	}

	ev, _ := pointerEvent(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, grid)
	if ev.X != 105 || ev.Y != 70 {
		t.Errorf("press at (%v, %v), want (105, 70)", ev.X, ev.Y)
	}
	ev, _ = pointerEvent(tea.MouseMsg{X: 3, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp}, grid)
	if ev.DeltaY >= 0 {
		t.Error("wheel up should zoom in")
	}
}

func TestDragInTerminal(t *testing.T) {
	m := step(newTestModel(t, "cat", "cot"), 400)
	grid := sink.NewTermGrid(m.frame, m.cols, m.rows)

	x, y := m.frame.Screen(0)
	col, row := grid.ScreenToCell(x, y)
	press := tea.MouseMsg{X: col, Y: row + viewHeaderLines, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	next, _ := m.Update(press)
	m = step(next.(viewModel), 1)
	if m.frame.Dragging != "cat" {
		t.Fatalf("dragging = %q", m.frame.Dragging)
	}
	if !strings.Contains(m.View(), "dragging cat") {
		t.Error("status does not show the drag")
	}

	next, _ = m.Update(tea.MouseMsg{X: col, Y: row + viewHeaderLines, Action: tea.MouseActionRelease})
	m = step(next.(viewModel), 1)
	if m.frame.Dragging != "" {
		t.Error("drag survived release")
	}
}
