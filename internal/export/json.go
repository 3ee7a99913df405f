package export

import (
	"encoding/json"
	"io"

	"github.com/HaPhanBaoMinh/clusterrings/internal/interact"
	"github.com/HaPhanBaoMinh/clusterrings/internal/layout"
)

// ChartJSON is the wire form of a chart for external renderers.
type ChartJSON struct {
	Date    string      `json:"date"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Radius  float64     `json:"radius"`
	Rings   RingsJSON   `json:"rings"`
	Center  []string    `json:"center"`
	Summary SummaryJSON `json:"summary"`
	Arcs    []ArcJSON   `json:"arcs"`
	Labels  []LabelJSON `json:"labels"`
}

type RingsJSON struct {
	Inner    float64 `json:"inner"`
	Resource float64 `json:"resource"`
	Node     float64 `json:"node"`
	VM       float64 `json:"vm"`
}

type ArcJSON struct {
	Level       string  `json:"level"`
	Parent      int     `json:"parent"`
	StartAngle  float64 `json:"start_angle"`
	EndAngle    float64 `json:"end_angle"`
	InnerRadius float64 `json:"inner_radius"`
	OuterRadius float64 `json:"outer_radius"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
	Opacity     float64 `json:"opacity"`
	Resource    string  `json:"resource"`
	Server      string  `json:"server,omitempty"`
	Node        string  `json:"node,omitempty"`
	VM          string  `json:"vm,omitempty"`
	Value       float64 `json:"value"`
	Capacity    float64 `json:"capacity,omitempty"`
	Free        float64 `json:"free,omitempty"`
	Utilization float64 `json:"utilization,omitempty"`
	Critical    bool    `json:"critical"`
	Breadcrumb  string  `json:"breadcrumb"`
}

type LabelJSON struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type SummaryJSON struct {
	Nodes          int     `json:"nodes"`
	ActiveNodes    int     `json:"active_nodes"`
	VMs            int     `json:"vms"`
	RunningVMs     int     `json:"running_vms"`
	CPUUsed        float64 `json:"cpu_used"`
	CPUOvercommit  float64 `json:"cpu_overcommit_percent"`
	OvercommitText string  `json:"cpu_overcommit_text"`
	MemUsage       float64 `json:"memory_usage_percent"`
	MemFree        float64 `json:"memory_free"`
}

func ChartToJSON(c *layout.Chart) ChartJSON {
	out := ChartJSON{
		Date:   c.Date,
		Width:  c.Width,
		Height: c.Height,
		Radius: c.Radius,
		Rings:  RingsJSON{Inner: c.Rings.Inner, Resource: c.Rings.Resource, Node: c.Rings.Node, VM: c.Rings.VM},
		Center: c.Center,
		Summary: SummaryJSON{
			Nodes:          c.Summary.Nodes,
			ActiveNodes:    c.Summary.ActiveNodes,
			VMs:            c.Summary.VMs,
			RunningVMs:     c.Summary.RunningVMs,
			CPUUsed:        c.Summary.CPUUsed,
			CPUOvercommit:  c.Summary.CPUOvercommit,
			OvercommitText: c.Summary.OvercommitText(),
			MemUsage:       c.Summary.MemUsage,
			MemFree:        c.Summary.MemFree,
		},
		Arcs:   make([]ArcJSON, 0, len(c.Arcs)),
		Labels: make([]LabelJSON, 0, len(c.Labels)),
	}
	for i, a := range c.Arcs {
		out.Arcs = append(out.Arcs, ArcJSON{
			Level:       a.Level.String(),
			Parent:      a.Parent,
			StartAngle:  a.StartAngle,
			EndAngle:    a.EndAngle,
			InnerRadius: a.InnerRadius,
			OuterRadius: a.OuterRadius,
			Fill:        a.Fill,
			Stroke:      a.Style.Stroke,
			StrokeWidth: a.Style.StrokeWidth,
			Opacity:     a.Style.Opacity,
			Resource:    a.Resource.String(),
			Server:      a.Server,
			Node:        a.Node,
			VM:          a.VM,
			Value:       a.Value,
			Capacity:    a.Capacity,
			Free:        a.Free,
			Utilization: a.Utilization,
			Critical:    a.Critical,
			Breadcrumb:  interact.Breadcrumb(c, i),
		})
	}
	for _, l := range c.Labels {
		out.Labels = append(out.Labels, LabelJSON{Text: l.Text, X: l.X, Y: l.Y})
	}
	return out
}

// JSON writes the chart as indented JSON.
func JSON(w io.Writer, c *layout.Chart) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ChartToJSON(c))
}
