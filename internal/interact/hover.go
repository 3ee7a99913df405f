// Package interact turns pointer hover over chart arcs into style changes,
// an info panel and a breadcrumb.
package interact

import (
	"fmt"
	"strings"

	"github.com/HaPhanBaoMinh/clusterrings/internal/config"
	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
	"github.com/HaPhanBaoMinh/clusterrings/internal/layout"
)

const (
	HighlightStroke = "#333333"
	DimOpacity      = 0.3
)

// StyleCommand sets the style of one arc.
type StyleCommand struct {
	Arc   int
	Style layout.Style
}

type InfoLine struct {
	Text   string
	Status layout.Status
}

type InfoPanel struct {
	Title string
	Lines []InfoLine
}

// Hover is everything a renderer needs to show a hovered arc.
type Hover struct {
	Arc        int
	Highlight  []StyleCommand
	Dim        []StyleCommand // VM opacity changes, node hovers only
	Panel      InfoPanel
	Breadcrumb string
}

// OnHoverEnter describes hovering arc i of c.
func OnHoverEnter(c *layout.Chart, res config.Resources, i int) Hover {
	if i < 0 || i >= len(c.Arcs) {
		return Hover{Arc: -1}
	}
	a := c.Arcs[i]
	h := Hover{Arc: i, Breadcrumb: Breadcrumb(c, i)}

	hl := a.Style
	hl.Stroke = HighlightStroke
	hl.StrokeWidth = 2
	if a.Level == layout.LevelVM {
		hl.StrokeWidth, hl.Opacity = 1, 1
	}
	h.Highlight = []StyleCommand{{Arc: i, Style: hl}}

	switch a.Level {
	case layout.LevelResource:
		h.Panel = resourcePanel(a)
	case layout.LevelNode:
		h.Panel = nodePanel(a, res.For(a.Resource).Thresholds)
		for _, j := range c.Level(layout.LevelVM) {
			st := c.Arcs[j].Style
			st.Opacity = DimOpacity
			if c.Arcs[j].Parent == i {
				st.Opacity = 1
			}
			h.Dim = append(h.Dim, StyleCommand{Arc: j, Style: st})
		}
	case layout.LevelVM:
		h.Panel = vmPanel(a)
	}
	return h
}

// OnHoverExit restores what OnHoverEnter changed for arc i.
func OnHoverExit(c *layout.Chart, i int) []StyleCommand {
	if i < 0 || i >= len(c.Arcs) {
		return nil
	}
	cmds := []StyleCommand{{Arc: i, Style: c.Arcs[i].Style}}
	if c.Arcs[i].Level == layout.LevelNode {
		for _, j := range c.Level(layout.LevelVM) {
			cmds = append(cmds, StyleCommand{Arc: j, Style: c.Arcs[j].Style})
		}
	}
	return cmds
}

// Breadcrumb is "Resource", "Resource > Node" or "Resource > Node > VM".
func Breadcrumb(c *layout.Chart, i int) string {
	if i < 0 || i >= len(c.Arcs) {
		return ""
	}
	a := c.Arcs[i]
	parts := []string{a.Resource.String()}
	if a.Level >= layout.LevelNode {
		parts = append(parts, a.Node)
	}
	if a.Level == layout.LevelVM {
		parts = append(parts, a.VM)
	}
	return strings.Join(parts, " > ")
}

type nodeLabels struct {
	used, total, free string
	decimals          int
}

var nodeFields = map[domain.ResourceType]nodeLabels{
	domain.CPU:    {used: "Cores assigned", total: "Physical cores", free: "Free cores", decimals: 0},
	domain.Memory: {used: "Memory used", total: "Memory total", free: "Memory free", decimals: 2},
	domain.Disk:   {used: "Disk used", total: "Disk total", free: "Free space", decimals: 2},
}

var vmFields = map[domain.ResourceType]struct{ assigned, other string }{
	domain.CPU:    {assigned: "Cores assigned", other: "Cores"},
	domain.Memory: {assigned: "Memory assigned", other: "Memory"},
	domain.Disk:   {assigned: "Storage assigned", other: "Storage"},
}

func resourcePanel(a layout.Arc) InfoPanel {
	return InfoPanel{
		Title: a.Resource.String(),
		Lines: []InfoLine{
			{Text: fmt.Sprintf("Total assigned: %.2f %s", a.Value, a.Resource.Unit())},
			{Text: fmt.Sprintf("%d active nodes", a.Count)},
		},
	}
}

func nodePanel(a layout.Arc, th config.Thresholds) InfoPanel {
	f := nodeFields[a.Resource]
	return InfoPanel{
		Title: fmt.Sprintf("%s (%s)", a.Node, a.Resource),
		Lines: []InfoLine{
			{Text: f.used + ": " + quantity(a.Resource, a.Value, f.decimals)},
			{Text: f.total + ": " + quantity(a.Resource, a.Capacity, f.decimals)},
			{Text: fmt.Sprintf("Utilization: %.2f%%", a.Utilization), Status: layout.UsageStatus(a.Utilization, th)},
			{Text: f.free + ": " + quantity(a.Resource, a.Free, f.decimals), Status: layout.FreeStatus(a.Free, a.Resource)},
			{Text: fmt.Sprintf("Running VMs: %d", a.Count)},
		},
	}
}

func vmPanel(a layout.Arc) InfoPanel {
	p := InfoPanel{Title: a.VM}
	if a.Detail == nil {
		return p
	}
	vm := *a.Detail
	status := "Stopped"
	if vm.Running() {
		status = "Running"
	}
	p.Lines = []InfoLine{
		{Text: "Node: " + a.Node},
		{Text: vmFields[a.Resource].assigned + ": " + quantity(a.Resource, vm.Assigned(a.Resource), decimalsFor(a.Resource))},
		{Text: "Status: " + status},
	}
	for _, rt := range domain.ResourceTypes {
		if rt == a.Resource {
			continue
		}
		p.Lines = append(p.Lines, InfoLine{Text: vmFields[rt].other + ": " + quantity(rt, vm.Assigned(rt), decimalsFor(rt))})
	}
	return p
}

func decimalsFor(rt domain.ResourceType) int { return nodeFields[rt].decimals }

// quantity formats v with its unit; core counts carry no unit suffix.
func quantity(rt domain.ResourceType, v float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, v)
	if rt == domain.CPU {
		return s
	}
	return s + " " + rt.Unit()
}
