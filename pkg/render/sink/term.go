package sink

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/render"
)

// Terminal glyphs.
const (
	edgeGlyph  = '·'
	emptyGlyph = ' '
)

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellEdge
	cellOrigin
	cellDestination
	cellIntermediate
)

var termStyles = map[cellKind]lipgloss.Style{
	cellEdge:         lipgloss.NewStyle().Foreground(lipgloss.Color(render.ColorEdge)),
	cellOrigin:       lipgloss.NewStyle().Foreground(lipgloss.Color(render.ColorOrigin)).Bold(true),
	cellDestination:  lipgloss.NewStyle().Foreground(lipgloss.Color(render.ColorDestination)).Bold(true),
	cellIntermediate: lipgloss.NewStyle().Foreground(lipgloss.Color(render.ColorLightText)).Bold(true),
}

// TermGrid maps between frame pixels and terminal cells for one size.
type TermGrid struct {
	Cols, Rows int
	CellW      float64
	CellH      float64
}

// NewTermGrid fits the frame canvas into cols x rows cells.
func NewTermGrid(f render.Frame, cols, rows int) TermGrid {
	cols, rows = max(cols, 1), max(rows, 1)
	w, h := canvasSize(f)
	return TermGrid{Cols: cols, Rows: rows, CellW: w / float64(cols), CellH: h / float64(rows)}
}

// CellToScreen returns the frame pixel at the centre of a cell.
func (g TermGrid) CellToScreen(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * g.CellW, (float64(row) + 0.5) * g.CellH
}

// ScreenToCell returns the cell containing a frame pixel.
func (g TermGrid) ScreenToCell(x, y float64) (int, int) {
	return int(math.Floor(x / g.CellW)), int(math.Floor(y / g.CellH))
}

// RenderTerminal draws the frame as cols x rows lines of text. Node labels
// are coloured by group with lipgloss; edges are dotted lines. Content
// outside the grid is clipped.
func RenderTerminal(f render.Frame, cols, rows int) string {
	grid := NewTermGrid(f, cols, rows)
	glyphs := make([][]rune, grid.Rows)
	kinds := make([][]cellKind, grid.Rows)
	for r := range glyphs {
		glyphs[r] = []rune(strings.Repeat(string(emptyGlyph), grid.Cols))
		kinds[r] = make([]cellKind, grid.Cols)
	}
	put := func(c, r int, ch rune, k cellKind) {
		if r >= 0 && r < grid.Rows && c >= 0 && c < grid.Cols {
			glyphs[r][c] = ch
			kinds[r][c] = k
		}
	}

	for _, e := range f.Edges {
		c0, r0 := grid.ScreenToCell(f.Screen(e.Source))
		c1, r1 := grid.ScreenToCell(f.Screen(e.Target))
		line(c0, r0, c1, r1, func(c, r int) { put(c, r, edgeGlyph, cellEdge) })
	}

	for i, n := range f.Nodes {
		c, r := grid.ScreenToCell(f.Screen(i))
		label := []rune(n.Label)
		start := c - len(label)/2
		for j, ch := range label {
			put(start+j, r, ch, kindOf(n.Group))
		}
	}

	var b strings.Builder
	for r := range glyphs {
		if r > 0 {
			b.WriteByte('\n')
		}
		writeRow(&b, glyphs[r], kinds[r])
	}
	return b.String()
}

func kindOf(g graph.Group) cellKind {
	switch g {
	case graph.GroupOrigin:
		return cellOrigin
	case graph.GroupDestination:
		return cellDestination
	default:
		return cellIntermediate
	}
}

// writeRow styles runs of equal kind together.
func writeRow(b *strings.Builder, glyphs []rune, kinds []cellKind) {
	start := 0
	for i := 1; i <= len(glyphs); i++ {
		if i < len(glyphs) && kinds[i] == kinds[start] {
			continue
		}
		run := string(glyphs[start:i])
		if st, ok := termStyles[kinds[start]]; ok {
			run = st.Render(run)
		}
		b.WriteString(run)
		start = i
	}
}

// line walks the cells between two points (Bresenham).
func line(c0, r0, c1, r1 int, visit func(c, r int)) {
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	err := dc + dr
	for steps := 0; steps < 10000; steps++ {
		visit(c0, r0)
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * err
		if e2 >= dr {
			err += dr
			c0 += sc
		}
		if e2 <= dc {
			err += dc
			r0 += sr
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
