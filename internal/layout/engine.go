package layout

import (
	"math"

	"github.com/HaPhanBaoMinh/clusterrings/internal/config"
	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
)

type Level int

const (
	LevelResource Level = iota
	LevelNode
	LevelVM
)

func (l Level) String() string {
	switch l {
	case LevelResource:
		return "resource"
	case LevelNode:
		return "node"
	case LevelVM:
		return "vm"
	}
	return "unknown"
}

// Style is the stroke and opacity an arc is drawn with.
type Style struct {
	Stroke      string
	StrokeWidth float64
	Opacity     float64
}

var (
	resourceStyle     = Style{Stroke: "#ffffff", StrokeWidth: 1, Opacity: 1}
	nodeStyle         = Style{Stroke: "#ffffff", StrokeWidth: 1, Opacity: 1}
	criticalNodeStyle = Style{Stroke: "#e68080", StrokeWidth: 2, Opacity: 1}
	vmStyle           = Style{Stroke: "#ffffff", StrokeWidth: 0.5, Opacity: 0.7}
)

// Arc is one annular sector. Angles are radians clockwise from 12 o'clock.
type Arc struct {
	Level       Level
	Parent      int // index in Chart.Arcs, -1 for resource arcs
	StartAngle  float64
	EndAngle    float64
	InnerRadius float64
	OuterRadius float64
	Fill        string
	Style       Style

	Resource domain.ResourceType
	Server   string
	Node     string
	VM       string

	Value       float64 // cluster total, node used, or VM assigned
	Capacity    float64
	Free        float64
	Utilization float64
	Critical    bool
	// Count is the number of nodes with positive usage for a resource arc
	// and the number of running VMs for a node arc.
	Count  int
	Detail *domain.VMDetail
}

func (a Arc) Span() float64     { return a.EndAngle - a.StartAngle }
func (a Arc) MidAngle() float64 { return a.StartAngle + a.Span()/2 }

// Contains reports whether polar point (theta, r) falls inside a.
func (a Arc) Contains(theta, r float64) bool {
	return r >= a.InnerRadius && r < a.OuterRadius && theta >= a.StartAngle && theta < a.EndAngle
}

type Rings struct {
	Inner    float64
	Resource float64
	Node     float64
	VM       float64
}

type Label struct {
	Text string
	X, Y float64
}

// Chart is the full layout of one snapshot. It is rebuilt from scratch for
// every snapshot and never mutated afterwards.
type Chart struct {
	Width, Height float64
	Radius        float64
	Rings         Rings
	Arcs          []Arc
	Labels        []Label
	Center        []string
	Summary       Summary
	Date          string
}

// Build lays out snap. Arcs are ordered depth first: each resource arc,
// then each of its node arcs followed by that node's VM arcs.
func Build(snap *domain.ClusterSnapshot, cfg config.Config) *Chart {
	radius := cfg.Chart.Radius()
	c := &Chart{
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
		Radius: radius,
		Rings: Rings{
			Inner:    radius * cfg.Chart.InnerRadiusRatio,
			Resource: radius * cfg.Chart.ResourceRingRatio,
			Node:     radius * cfg.Chart.NodeRingRatio,
			VM:       radius * cfg.Chart.VMRingRatio,
		},
		Center:  cfg.CenterTitle,
		Summary: Summarize(snap),
		Date:    FormatDate(snapTimestamp(snap), cfg.DateFormat),
	}
	if snap == nil {
		return c
	}

	nodes := snap.Nodes()
	for _, rs := range EqualPartition(0, 2*math.Pi, domain.ResourceTypes) {
		rt := rs.Key
		base := cfg.Resources.For(rt).Color
		total := snap.Total(rt)

		shares := make([]Share[int], 0, len(nodes))
		for i, n := range nodes {
			shares = append(shares, Share[int]{Key: i, Value: n.Resource(rt).Used})
		}
		active := 0
		for _, s := range shares {
			if s.Value > 0 {
				active++
			}
		}

		ri := c.add(Arc{
			Level:       LevelResource,
			Parent:      -1,
			StartAngle:  rs.Start,
			EndAngle:    rs.End,
			InnerRadius: c.Rings.Inner,
			OuterRadius: c.Rings.Resource,
			Fill:        mustColor(base).Hex(),
			Style:       resourceStyle,
			Resource:    rt,
			Value:       total,
			Count:       active,
		})
		mid := c.Arcs[ri].MidAngle()
		lr := (c.Rings.Inner + c.Rings.Resource) / 2
		c.Labels = append(c.Labels, Label{Text: rt.String(), X: math.Sin(mid) * lr, Y: -math.Cos(mid) * lr})

		for _, ns := range PartitionOver(rs.Start, rs.End, shares, snap.PositiveTotal(rt)) {
			n := nodes[ns.Key]
			q := n.Resource(rt)
			util := Utilization(q.Used, q.Capacity)
			crit := IsCritical(rt, util, q.Free)
			style := nodeStyle
			if crit {
				style = criticalNodeStyle
			}
			ni := c.add(Arc{
				Level:       LevelNode,
				Parent:      ri,
				StartAngle:  ns.Start,
				EndAngle:    ns.End,
				InnerRadius: c.Rings.Resource,
				OuterRadius: c.Rings.Node,
				Fill:        UtilizationColor(base, util),
				Style:       style,
				Resource:    rt,
				Server:      n.Server,
				Node:        n.Name,
				Value:       q.Used,
				Capacity:    q.Capacity,
				Free:        q.Free,
				Utilization: util,
				Critical:    crit,
				Count:       len(n.RunningVMs()),
			})
			c.addVMs(ni, n, base)
		}
	}
	return c
}

// addVMs splits node arc ni among the node's running VMs, normalised by the
// node's own running-VM total.
func (c *Chart) addVMs(ni int, n domain.NodeStats, base string) {
	parent := c.Arcs[ni]
	var shares []Share[int]
	for i, vm := range n.VMs {
		if vm.Running() {
			shares = append(shares, Share[int]{Key: i, Value: vm.Assigned(parent.Resource)})
		}
	}
	fill := VMColor(base)
	for _, vs := range Partition(parent.StartAngle, parent.EndAngle, shares) {
		vm := &n.VMs[vs.Key]
		c.add(Arc{
			Level:       LevelVM,
			Parent:      ni,
			StartAngle:  vs.Start,
			EndAngle:    vs.End,
			InnerRadius: c.Rings.Node,
			OuterRadius: c.Rings.VM,
			Fill:        fill,
			Style:       vmStyle,
			Resource:    parent.Resource,
			Server:      n.Server,
			Node:        n.Name,
			VM:          vm.Name,
			Value:       vm.Assigned(parent.Resource),
			Detail:      vm,
		})
	}
}

func (c *Chart) add(a Arc) int {
	c.Arcs = append(c.Arcs, a)
	return len(c.Arcs) - 1
}

// ArcAt returns the index of the arc under (x, y), relative to the chart
// centre with y pointing down, or -1.
func (c *Chart) ArcAt(x, y float64) int {
	theta := math.Atan2(x, -y)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	r := math.Hypot(x, y)
	for i, a := range c.Arcs {
		if a.Contains(theta, r) {
			return i
		}
	}
	return -1
}

// Children returns the indexes of the arcs whose parent is i.
func (c *Chart) Children(i int) []int {
	var out []int
	for j, a := range c.Arcs {
		if a.Parent == i && j != i {
			out = append(out, j)
		}
	}
	return out
}

// Siblings returns the arcs sharing i's parent, i included, in angle order.
func (c *Chart) Siblings(i int) []int {
	if i < 0 || i >= len(c.Arcs) {
		return nil
	}
	return c.Children(c.Arcs[i].Parent)
}

// Level returns the indexes of every arc at level l.
func (c *Chart) Level(l Level) []int {
	var out []int
	for i, a := range c.Arcs {
		if a.Level == l {
			out = append(out, i)
		}
	}
	return out
}

func snapTimestamp(s *domain.ClusterSnapshot) string {
	if s == nil {
		return ""
	}
	return s.Timestamp
}
