package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HaPhanBaoMinh/clusterrings/internal/config"
	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
	"github.com/HaPhanBaoMinh/clusterrings/internal/layout"
)

type staticSource struct {
	name  string
	snap  *domain.ClusterSnapshot
	err   error
	loads int
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Load(context.Context) (*domain.ClusterSnapshot, error) {
	s.loads++
	return s.snap, s.err
}

func testSnapshot() *domain.ClusterSnapshot {
	return &domain.ClusterSnapshot{
		Timestamp: "2024-03-05",
		Servers: []domain.Server{{
			ID: "pve",
			Nodes: []domain.NodeStats{
				{
					Server: "pve", Name: "alpha",
					CPU:        domain.Quantity{Capacity: 8, Used: 6, Free: 2},
					Memory:     domain.Quantity{Capacity: 32, Used: 16, Free: 16},
					Disk:       domain.Quantity{Capacity: 500, Used: 200, Free: 300},
					VMsRunning: 1,
					VMs:        []domain.VMDetail{{Name: "web", Status: domain.VMRunning, CPU: 6, Memory: 16, Disk: 200}},
				},
				{
					Server: "pve", Name: "beta",
					CPU:        domain.Quantity{Capacity: 8, Used: 2, Free: 6},
					Memory:     domain.Quantity{Capacity: 32, Used: 8, Free: 24},
					Disk:       domain.Quantity{Capacity: 500, Used: 100, Free: 400},
					VMsRunning: 1,
					VMs:        []domain.VMDetail{{Name: "db", Status: domain.VMRunning, CPU: 2, Memory: 8, Disk: 100}},
				},
			},
		}},
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, src domain.SnapshotSource) Model {
	t.Helper()
	m := New(config.Default(), src, nil)
	m, _ = update(t, m, m.Init()())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func TestLoadBuildsChart(t *testing.T) {
	src := &staticSource{name: "test", snap: testSnapshot()}
	m := loaded(t, src)

	if m.chart == nil || m.session == nil {
		t.Fatal("chart not built")
	}
	if src.loads != 1 {
		t.Errorf("loads = %d", src.loads)
	}
	view := m.View()
	for _, want := range []string{"src: test", "5 March 2024", "Nodes: 2/2 active", "No overcommit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, cmd := update(t, m, key("r"))
	if cmd == nil {
		t.Fatal("reload returned no command")
	}
	update(t, m, cmd())
	if src.loads != 2 {
		t.Errorf("loads after reload = %d", src.loads)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		src  domain.SnapshotSource
		want string
	}{
		{"no source", nil, "No data"},
		{"missing default", &staticSource{name: "file", err: fmt.Errorf("proxmox_stats.json: %w", domain.ErrNoData)}, "No data"},
		{"failure", &staticSource{name: "url", err: errors.New("loading remote data: status 500")}, "Error: loading remote data: status 500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := New(config.Default(), tc.src, nil)
			m, _ = update(t, m, m.Init()())
			if m.chart != nil {
				t.Error("chart built on error")
			}
			if !strings.Contains(m.View(), tc.want) {
				t.Errorf("view missing %q", tc.want)
			}
		})
	}
}

func TestMouseHover(t *testing.T) {
	m := loaded(t, &staticSource{name: "test", snap: testSnapshot()})

	mem := -1
	for _, i := range m.chart.Level(layout.LevelResource) {
		if m.chart.Arcs[i].Resource == domain.Memory {
			mem = i
		}
	}
	a := m.chart.Arcs[mem]
	r := (a.InnerRadius + a.OuterRadius) / 2
	col, row := m.grid().Cell(math.Sin(a.MidAngle())*r, -math.Cos(a.MidAngle())*r)

	m, _ = update(t, m, tea.MouseMsg{X: col, Y: row + headerHeight, Action: tea.MouseActionMotion})
	if m.current() != mem {
		t.Fatalf("hovered %d, want memory arc %d", m.current(), mem)
	}
	if !strings.Contains(m.View(), "Total assigned: 24.00 GB") {
		t.Error("info panel not shown")
	}

	// the centre hole is not an arc
	m, cmd := update(t, m, tea.MouseMsg{X: m.grid().Cols / 2, Y: m.grid().Rows/2 + headerHeight, Action: tea.MouseActionMotion})
	if m.current() != -1 {
		t.Errorf("hovered %d over the centre", m.current())
	}
	if cmd == nil || m.linger == nil {
		t.Fatal("panel does not linger after exit")
	}
}

func TestKeyboardNavigation(t *testing.T) {
	m := loaded(t, &staticSource{name: "test", snap: testSnapshot()})
	c := m.chart
	describe := func() string {
		i := m.current()
		if i < 0 {
			return "none"
		}
		a := c.Arcs[i]
		return fmt.Sprintf("%s/%v/%s/%s", a.Level, a.Resource, a.Node, a.VM)
	}

	steps := []struct {
		key  string
		want string
	}{
		{"right", "resource/CPU//"},
		{"right", "resource/Memory//"},
		{"down", "node/Memory/alpha/"},
		{"right", "node/Memory/beta/"},
		{"right", "node/Memory/alpha/"},
		{"left", "node/Memory/beta/"},
		{"down", "vm/Memory/beta/db"},
		{"down", "vm/Memory/beta/db"},
		{"up", "node/Memory/beta/"},
		{"up", "resource/Memory//"},
		{"up", "resource/Memory//"},
		{"left", "resource/CPU//"},
		{"left", "resource/Disk//"},
		{"esc", "none"},
	}
	for k, s := range steps {
		m, _ = update(t, m, key(s.key))
		if got := describe(); got != s.want {
			t.Fatalf("step %d (%s): at %s, want %s", k, s.key, got, s.want)
		}
	}
}

func TestNodeHoverDimsChart(t *testing.T) {
	m := loaded(t, &staticSource{name: "test", snap: testSnapshot()})
	for _, k := range []string{"right", "down"} {
		m, _ = update(t, m, key(k))
	}
	node := m.current()
	for _, i := range m.chart.Level(layout.LevelVM) {
		want := 0.3
		if m.chart.Arcs[i].Parent == node {
			want = 1
		}
		if got := m.session.Style(i).Opacity; got != want {
			t.Errorf("vm arc %d opacity %v, want %v", i, got, want)
		}
	}

	m, _ = update(t, m, key("esc"))
	for _, i := range m.chart.Level(layout.LevelVM) {
		if got := m.session.Style(i); got != m.chart.Arcs[i].Style {
			t.Errorf("vm arc %d not restored: %+v", i, got)
		}
	}
}

func TestPanelFades(t *testing.T) {
	m := loaded(t, &staticSource{name: "test", snap: testSnapshot()})
	m, _ = update(t, m, key("right"))
	m, cmd := update(t, m, key("esc"))
	if cmd == nil || m.linger == nil {
		t.Fatal("no lingering panel")
	}
	if !strings.Contains(m.View(), "Total assigned") {
		t.Error("lingering panel not rendered")
	}

	m, _ = update(t, m, fadeMsg{gen: m.gen - 1})
	if m.linger == nil {
		t.Fatal("stale fade cleared the panel")
	}
	m, _ = update(t, m, fadeMsg{gen: m.gen})
	if m.linger != nil {
		t.Fatal("panel still shown after fade")
	}
}

func TestOpenFile(t *testing.T) {
	var opened string
	other := &staticSource{name: "other.json", snap: testSnapshot()}
	m := New(config.Default(), nil, func(path string) domain.SnapshotSource {
		opened = path
		return other
	})
	m, _ = update(t, m, m.Init()())

	m, _ = update(t, m, key("o"))
	if !m.inputOpen {
		t.Fatal("input not open")
	}
	m, _ = update(t, m, key("other.json"))
	m, cmd := update(t, m, key("enter"))
	if opened != "other.json" {
		t.Fatalf("opened %q", opened)
	}
	if cmd == nil {
		t.Fatal("no load command")
	}
	m, _ = update(t, m, cmd())
	if m.err != nil || m.chart == nil {
		t.Fatalf("open failed: %v", m.err)
	}
}

func TestNodesView(t *testing.T) {
	m := loaded(t, &staticSource{name: "test", snap: testSnapshot()})
	m, _ = update(t, m, key("tab"))
	if m.view != ViewNodes {
		t.Fatal("tab did not switch view")
	}
	view := m.View()
	for _, want := range []string{"NODE", "alpha", "beta", "1/1"} {
		if !strings.Contains(view, want) {
			t.Errorf("nodes view missing %q", want)
		}
	}
}
