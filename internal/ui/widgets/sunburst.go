package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/HaPhanBaoMinh/clusterrings/internal/layout"
)

// Grid maps terminal cells onto chart coordinates. A cell is twice as tall
// as it is wide, so one column covers half the chart units of one row.
type Grid struct {
	Cols, Rows int
	Scale      float64 // chart units per row
}

// NewGrid fits a circle of the given radius into cols x rows cells.
func NewGrid(radius float64, cols, rows int) Grid {
	g := Grid{Cols: cols, Rows: rows}
	if cols <= 0 || rows <= 0 || radius <= 0 {
		return g
	}
	g.Scale = math.Max(radius/(float64(rows)/2), radius/(float64(cols)/4))
	return g
}

// Point is the chart coordinate of the centre of cell (col, row), relative
// to the chart centre with y pointing down.
func (g Grid) Point(col, row int) (x, y float64) {
	x = (float64(col) + 0.5 - float64(g.Cols)/2) * g.Scale / 2
	y = (float64(row) + 0.5 - float64(g.Rows)/2) * g.Scale
	return x, y
}

// Cell is the cell containing chart coordinate (x, y).
func (g Grid) Cell(x, y float64) (col, row int) {
	if g.Scale == 0 {
		return 0, 0
	}
	col = int(math.Floor(x*2/g.Scale + float64(g.Cols)/2))
	row = int(math.Floor(y/g.Scale + float64(g.Rows)/2))
	return col, row
}

// StyleFunc returns the current style of arc i.
type StyleFunc func(i int) layout.Style

type cell struct {
	ch   rune
	fg   string
	bg   string
	bold bool
}

// Sunburst rasterises c onto g. Fills are blended over background by the
// arc opacity. Strokes that are not the background colour (highlights and
// critical outlines) are drawn on the cells where an arc meets another.
func Sunburst(c *layout.Chart, g Grid, style StyleFunc, background string) string {
	if g.Cols <= 0 || g.Rows <= 0 || g.Scale == 0 {
		return ""
	}
	bg, err := colorful.Hex(background)
	if err != nil {
		bg = colorful.Color{}
	}

	idx := make([][]int, g.Rows)
	for r := range idx {
		idx[r] = make([]int, g.Cols)
		for col := range idx[r] {
			idx[r][col] = c.ArcAt(g.Point(col, r))
		}
	}

	grid := make([][]cell, g.Rows)
	for r := range grid {
		grid[r] = make([]cell, g.Cols)
		for col := range grid[r] {
			i := idx[r][col]
			if i < 0 {
				grid[r][col] = cell{ch: ' '}
				continue
			}
			st := style(i)
			fill := blend(bg, c.Arcs[i].Fill, st.Opacity)
			if isEdge(idx, r, col) && !strings.EqualFold(st.Stroke, "#ffffff") {
				fill = blend(bg, st.Stroke, st.Opacity)
			}
			grid[r][col] = cell{ch: ' ', bg: fill}
		}
	}

	for _, l := range c.Labels {
		col, r := g.Cell(l.X, l.Y)
		put(grid, r, col-len(l.Text)/2, l.Text, "#ffffff")
	}
	for k, line := range c.Center {
		r := g.Rows/2 - len(c.Center)/2 + k
		put(grid, r, g.Cols/2-lipgloss.Width(line)/2, line, "#555555")
	}

	lines := make([]string, g.Rows)
	for r, row := range grid {
		lines[r] = renderRow(row)
	}
	return strings.Join(lines, "\n")
}

// isEdge reports whether a neighbour of (r, col) belongs to another arc.
func isEdge(idx [][]int, r, col int) bool {
	i := idx[r][col]
	for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		rr, cc := r+d[0], col+d[1]
		if rr < 0 || rr >= len(idx) || cc < 0 || cc >= len(idx[rr]) {
			return true
		}
		if idx[rr][cc] != i {
			return true
		}
	}
	return false
}

func put(grid [][]cell, r, col int, text, fg string) {
	if r < 0 || r >= len(grid) {
		return
	}
	for _, ch := range text {
		if col >= 0 && col < len(grid[r]) {
			grid[r][col].ch = ch
			grid[r][col].fg = fg
			grid[r][col].bold = true
		}
		col++
	}
}

func renderRow(row []cell) string {
	var b strings.Builder
	var run strings.Builder
	var cur cell
	flush := func() {
		if run.Len() == 0 {
			return
		}
		st := lipgloss.NewStyle().Bold(cur.bold)
		if cur.fg != "" {
			st = st.Foreground(lipgloss.Color(cur.fg))
		}
		if cur.bg != "" {
			st = st.Background(lipgloss.Color(cur.bg))
		}
		b.WriteString(st.Render(run.String()))
		run.Reset()
	}
	for k, c := range row {
		if k == 0 || c.fg != cur.fg || c.bg != cur.bg || c.bold != cur.bold {
			flush()
			cur = c
		}
		run.WriteRune(c.ch)
	}
	flush()
	return b.String()
}

func blend(bg colorful.Color, hex string, opacity float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	return bg.BlendRgb(c, clamp01(opacity)).Clamped().Hex()
}
