package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/HaPhanBaoMinh/clusterrings/internal/config"
	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
	"github.com/HaPhanBaoMinh/clusterrings/internal/interact"
	"github.com/HaPhanBaoMinh/clusterrings/internal/layout"
	"github.com/HaPhanBaoMinh/clusterrings/internal/ui/styles"
	"github.com/HaPhanBaoMinh/clusterrings/internal/ui/widgets"
)

type View int

const (
	ViewChart View = iota
	ViewNodes
)

const (
	panelWidth = 40
	background = "#000000"
)

// Opener builds a source for a path typed by the user.
type Opener func(path string) domain.SnapshotSource

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg    config.Config
	source domain.SnapshotSource
	open   Opener

	view    View
	loading bool
	snap    *domain.ClusterSnapshot
	chart   *layout.Chart
	session *interact.Session

	// last hover, kept on screen for the fade-out duration after exit
	linger *interact.Hover
	gen    int

	table     table.Model
	input     textinput.Model
	inputOpen bool

	width, height int
	err           error
}

func New(cfg config.Config, src domain.SnapshotSource, open Opener) Model {
	ctx, cancel := context.WithCancel(context.Background())

	t := table.New()
	t.SetHeight(12)
	t.SetWidth(100)

	in := textinput.New()
	in.Placeholder = config.DefaultFile
	in.Prompt = "open: "
	in.CharLimit = 512

	return Model{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		source:  src,
		open:    open,
		view:    ViewChart,
		loading: true,
		table:   t,
		input:   in,
		width:   100,
		height:  30,
	}
}

type snapshotMsg struct {
	source string
	snap   *domain.ClusterSnapshot
}
type errMsg struct{ error }
type fadeMsg struct{ gen int }

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	src := m.source
	ctx := m.ctx
	return func() tea.Msg {
		if src == nil {
			return errMsg{domain.ErrNoData}
		}
		snap, err := src.Load(ctx)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg{source: src.Name(), snap: snap}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(m.width - 4)
		m.table.SetHeight(max(m.bodyHeight()-2, 3))
		m.rebuildTable()
		return m, nil

	case snapshotMsg:
		m.loading = false
		m.err = nil
		m.snap = msg.snap
		m.chart = layout.Build(msg.snap, m.cfg)
		m.session = interact.NewSession(m.chart, m.cfg.Resources)
		m.linger = nil
		m.gen++
		m.rebuildTable()
		log.WithFields(log.Fields{
			"source": msg.source,
			"nodes":  m.chart.Summary.Nodes,
			"arcs":   len(m.chart.Arcs),
		}).Info("snapshot loaded")
		return m, nil

	case errMsg:
		m.loading = false
		m.err = msg.error
		if errors.Is(msg.error, domain.ErrNoData) {
			log.WithError(msg.error).Info("nothing to show")
		} else {
			log.WithError(msg.error).Error("load failed")
		}
		return m, nil

	case fadeMsg:
		if msg.gen == m.gen {
			m.linger = nil
		}
		return m, nil

	case tea.MouseMsg:
		if m.view != ViewChart || m.chart == nil || m.inputOpen {
			return m, nil
		}
		if msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionPress {
			return m, nil
		}
		cmd := m.hover(m.arcAtCell(msg.X, msg.Y))
		return m, cmd

	case tea.KeyMsg:
		if m.inputOpen {
			switch msg.String() {
			case "enter":
				path := strings.TrimSpace(m.input.Value())
				m.inputOpen = false
				m.input.Blur()
				if path == "" || m.open == nil {
					return m, nil
				}
				m.source = m.open(path)
				m.loading = true
				return m, m.load()
			case "esc":
				m.inputOpen = false
				m.input.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.cancel()
			return m, tea.Quit

		case "tab":
			if m.view == ViewChart {
				m.view = ViewNodes
			} else {
				m.view = ViewChart
			}
			return m, nil

		case "r":
			m.loading = true
			return m, m.load()

		case "o":
			m.inputOpen = true
			m.input.SetValue("")
			cmd := m.input.Focus()
			return m, cmd

		case "esc":
			cmd := m.hover(-1)
			return m, cmd
		}

		if m.view == ViewChart {
			switch msg.String() {
			case "left", "h":
				cmd := m.hover(m.sibling(-1))
				return m, cmd
			case "right", "l":
				cmd := m.hover(m.sibling(1))
				return m, cmd
			case "down", "j":
				cmd := m.hover(m.child())
				return m, cmd
			case "up", "k":
				cmd := m.hover(m.parent())
				return m, cmd
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// hover moves the session to arc i. Leaving an arc keeps its panel for the
// fade-out duration.
func (m *Model) hover(i int) tea.Cmd {
	if m.session == nil || i == m.session.Current() {
		return nil
	}
	prev, had := m.session.Hover()
	m.session.Move(i)
	m.gen++
	m.linger = nil
	if i >= 0 || !had {
		return nil
	}
	fade := m.cfg.Animations.TooltipFadeOut
	if fade <= 0 {
		return nil
	}
	m.linger = &prev
	gen := m.gen
	return tea.Tick(fade, func(time.Time) tea.Msg { return fadeMsg{gen: gen} })
}

func (m Model) current() int {
	if m.session == nil {
		return -1
	}
	return m.session.Current()
}

// sibling steps through the arcs sharing the current arc's parent. With
// nothing hovered it starts at the first resource arc.
func (m Model) sibling(step int) int {
	cur := m.current()
	if m.chart == nil {
		return -1
	}
	if cur < 0 {
		return first(m.chart.Children(-1))
	}
	sib := m.chart.Siblings(cur)
	for k, i := range sib {
		if i == cur {
			return sib[(k+step+len(sib))%len(sib)]
		}
	}
	return cur
}

func (m Model) child() int {
	cur := m.current()
	if m.chart == nil {
		return -1
	}
	if cur < 0 {
		return first(m.chart.Children(-1))
	}
	if kids := m.chart.Children(cur); len(kids) > 0 {
		return kids[0]
	}
	return cur
}

func (m Model) parent() int {
	cur := m.current()
	if cur < 0 || m.chart == nil {
		return cur
	}
	if p := m.chart.Arcs[cur].Parent; p >= 0 {
		return p
	}
	return cur
}

func first(ids []int) int {
	if len(ids) == 0 {
		return -1
	}
	return ids[0]
}

const headerHeight = 1

// footer: summary line and key help
const footerHeight = 2

func (m Model) bodyHeight() int {
	h := m.height - headerHeight - footerHeight
	if m.inputOpen {
		h--
	}
	return max(h, 1)
}

func (m Model) grid() widgets.Grid {
	if m.chart == nil {
		return widgets.Grid{}
	}
	return widgets.NewGrid(m.chart.Radius, m.chartCols(), m.bodyHeight())
}

func (m Model) chartCols() int {
	if m.width >= 2*panelWidth {
		return m.width - panelWidth
	}
	return m.width
}

// arcAtCell hit-tests terminal cell (x, y).
func (m Model) arcAtCell(x, y int) int {
	g := m.grid()
	col, row := x, y-headerHeight
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return -1
	}
	return m.chart.ArcAt(g.Point(col, row))
}

func (m *Model) rebuildTable() {
	total := m.table.Width()
	wNode, wServer, wPct, wBar, wVMs := nodeColWidths(total)

	cols := []table.Column{
		{Title: "NODE", Width: wNode},
		{Title: "SERVER", Width: wServer},
		{Title: "CPU%", Width: wPct},
		{Title: "", Width: wBar},
		{Title: "MEM%", Width: wPct},
		{Title: "", Width: wBar},
		{Title: "DISK%", Width: wPct},
		{Title: "", Width: wBar},
		{Title: "VMS", Width: wVMs},
	}
	var rows []table.Row
	for _, n := range m.snap.Nodes() {
		row := table.Row{n.Name, n.Server}
		for _, rt := range domain.ResourceTypes {
			q := n.Resource(rt)
			pct := layout.Utilization(q.Used, q.Capacity)
			row = append(row, fmt.Sprintf("%4.0f%%", pct), widgets.Bar(pct/100, wBar-1))
		}
		row = append(row, fmt.Sprintf("%d/%d", n.VMsRunning, n.VMsRunning+n.VMsStopped))
		rows = append(rows, row)
	}
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if c := m.table.Cursor(); len(rows) > 0 && (c < 0 || c >= len(rows)) {
		m.table.SetCursor(0)
	}
	m.table.Focus()
}

func (m Model) View() string {
	head := styles.Header.Render(m.headerText())

	var body string
	switch {
	case m.err != nil:
		body = m.renderError()
	case m.chart == nil:
		body = styles.Faint.Render("loading...")
	case m.view == ViewNodes:
		body = lipgloss.NewStyle().Padding(0, 1).Render(m.table.View())
	default:
		body = m.renderChart()
	}
	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)

	parts := []string{head, body}
	if m.inputOpen {
		parts = append(parts, m.input.View())
	}
	parts = append(parts,
		styles.Footer.Render(m.summaryText()),
		styles.Footer.Render("←/→ siblings • ↓ child • ↑ parent • [esc] clear • [tab] chart/nodes • [r] reload • [o] open • [q] quit"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) headerText() string {
	tabs := []string{styles.Tab.Render("Chart"), styles.Tab.Render("Nodes")}
	tabs[m.view] = styles.TabActive.Render([]string{"Chart", "Nodes"}[m.view])

	src := "-"
	if m.source != nil {
		src = m.source.Name()
	}
	parts := []string{"clusterrings", "src: " + src}
	if m.chart != nil && m.chart.Date != "" {
		parts = append(parts, m.chart.Date)
	}
	parts = append(parts, strings.Join(tabs, " "))
	if m.loading {
		parts = append(parts, "loading...")
	}
	if h, ok := m.activeHover(); ok {
		parts = append(parts, styles.Breadcrumb.Render(h.Breadcrumb))
	}
	return strings.Join(parts, "  │ ")
}

// activeHover is the hovered arc's panel, or the lingering one.
func (m Model) activeHover() (interact.Hover, bool) {
	if m.session != nil {
		if h, ok := m.session.Hover(); ok {
			return h, true
		}
	}
	if m.linger != nil {
		return *m.linger, true
	}
	return interact.Hover{}, false
}

func (m Model) renderChart() string {
	g := m.grid()
	chart := widgets.Sunburst(m.chart, g, m.session.Style, background)
	if m.chartCols() == m.width {
		return chart
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chart, m.renderPanel())
}

func (m Model) renderPanel() string {
	h, ok := m.activeHover()
	if !ok {
		return styles.Box.Width(panelWidth - 2).Render(styles.Faint.Render("hover an arc or use the arrow keys"))
	}
	lines := []string{styles.Title.Render(h.Panel.Title)}
	for _, l := range h.Panel.Lines {
		lines = append(lines, styles.Status(l.Status).Render(l.Text))
	}
	content := strings.Join(lines, "\n")
	if cur := m.current(); cur < 0 {
		content = styles.Faint.Render(content)
	}
	return styles.Box.Width(panelWidth - 2).Render(content)
}

func (m Model) renderError() string {
	if errors.Is(m.err, domain.ErrNoData) {
		return styles.Warn.Render(fmt.Sprintf("No data: %v. Press [o] to open a stats file.", m.err))
	}
	return styles.Danger.Render("Error: " + m.err.Error())
}

func (m Model) summaryText() string {
	if m.chart == nil {
		return ""
	}
	return summaryLine(m.chart.Summary)
}
