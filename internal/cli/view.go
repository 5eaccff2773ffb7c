package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wordpath/pkg/diagram"
	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/interact"
	"github.com/matzehuels/wordpath/pkg/pipeline"
	"github.com/matzehuels/wordpath/pkg/render"
	"github.com/matzehuels/wordpath/pkg/render/sink"
)

const (
	viewHeaderLines = 2
	viewFooterLines = 2

	// wheelStep is the wheel delta sent per scroll notch.
	wheelStep = 100.0
)

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var flags renderFlags
	var fps int

	cmd := &cobra.Command{
		Use:   "view [path|route.json|-] [word...]",
		Short: "Explore a word path interactively in the terminal",
		Long: `Explore a word path interactively in the terminal.

The diagram animates as the simulation settles. Drag a word with the mouse
to pin it, drag empty space to pan and scroll to zoom.

Keys: r reset view, f fit, + and - zoom, q quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			opts.Route, err = pipeline.ParseArgs(args, c.in)
			if err != nil {
				return err
			}
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}
			interval := time.Second / time.Duration(max(fps, 1))
			return c.runView(cmd.Context(), opts, interval)
		},
	}

	flags.addLayoutFlags(cmd.Flags())
	cmd.Flags().IntVar(&fps, "fps", 30, "frames per second")

	return cmd
}

func (c *CLI) runView(ctx context.Context, opts pipeline.Options, interval time.Duration) error {
	d, err := diagram.New(
		diagram.WithConfig(opts.Force),
		diagram.WithEdgePolicy(opts.Policy()),
		diagram.WithLogger(c.Logger),
	)
	if err != nil {
		return err
	}
	defer d.Dispose()
	d.SetRoute(opts.Route)

	// Log lines would tear the alternate screen.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(log.FatalLevel)
	defer c.Logger.SetLevel(level)

	p := tea.NewProgram(newViewModel(d, opts.Route, interval),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}

// =============================================================================
// viewModel - bubbletea model around a Diagram
// =============================================================================

type frameMsg time.Time

type viewModel struct {
	d        *diagram.Diagram
	route    graph.Route
	interval time.Duration

	frame      render.Frame
	cols, rows int
}

func newViewModel(d *diagram.Diagram, route graph.Route, interval time.Duration) viewModel {
	return viewModel{
		d:        d,
		route:    route,
		interval: interval,
		frame:    d.Snapshot(),
		cols:     80,
		rows:     24 - viewHeaderLines - viewFooterLines,
	}
}

func (m viewModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m viewModel) Init() tea.Cmd {
	return m.tick()
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if f, redraw := m.d.Frame(); redraw {
			m.frame = f
		}
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.cols = max(msg.Width, 1)
		m.rows = max(msg.Height-viewHeaderLines-viewFooterLines, 1)

	case tea.KeyMsg:
		cx, cy := m.frame.Width/2, m.frame.Height/2
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.d.ResetView()
		case "f":
			m.d.FitView(2 * render.NodeRadius)
		case "+", "=":
			m.d.Pointer(interact.Event{Type: interact.Wheel, X: cx, Y: cy, DeltaY: -wheelStep})
		case "-":
			m.d.Pointer(interact.Event{Type: interact.Wheel, X: cx, Y: cy, DeltaY: wheelStep})
		}

	case tea.MouseMsg:
		grid := sink.NewTermGrid(m.frame, m.cols, m.rows)
		if ev, ok := pointerEvent(msg, grid); ok {
			m.d.Pointer(ev)
		}
	}
	return m, nil
}

// pointerEvent converts a terminal mouse event into frame coordinates.
// Rows above the diagram belong to the header.
func pointerEvent(msg tea.MouseMsg, grid sink.TermGrid) (interact.Event, bool) {
	row := msg.Y - viewHeaderLines
	x, y := grid.CellToScreen(msg.X, row)
	ev := interact.Event{X: x, Y: y}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		ev.Type, ev.DeltaY = interact.Wheel, -wheelStep
	case msg.Button == tea.MouseButtonWheelDown:
		ev.Type, ev.DeltaY = interact.Wheel, wheelStep
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if row < 0 || row >= grid.Rows {
			return ev, false
		}
		ev.Type = interact.PointerDown
	case msg.Action == tea.MouseActionMotion:
		ev.Type = interact.PointerMove
	case msg.Action == tea.MouseActionRelease:
		ev.Type = interact.PointerUp
	default:
		return ev, false
	}
	return ev, true
}

func (m viewModel) View() string {
	var b strings.Builder

	title := m.frame.Caption
	if title == "" {
		title = strings.Join(m.route.Path, " → ")
	}
	if title == "" {
		title = "empty path"
	}
	b.WriteString(StyleTitle.Render(appName) + " " + StyleValue.Render(title))
	b.WriteString("\n\n")

	b.WriteString(sink.RenderTerminal(m.frame, m.cols, m.rows))
	b.WriteString("\n")

	b.WriteString(StyleDim.Render(m.status()))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("drag move · scroll zoom · r reset · f fit · q quit"))
	return b.String()
}

func (m viewModel) status() string {
	f := m.frame
	state := "resting"
	switch {
	case f.Empty():
		state = "idle"
	case f.Dragging != "":
		state = "dragging " + f.Dragging
	case f.Active:
		state = "simulating"
	}
	return fmt.Sprintf("%s · %s · tick %d · alpha %.3f · zoom %.2fx",
		plural(len(f.Nodes), "node"), state, f.Tick, f.Alpha, f.Scale())
}
