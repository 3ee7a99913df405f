package layout

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/HaPhanBaoMinh/clusterrings/internal/config"
	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
)

func node(name string, cpu, mem, disk domain.Quantity, vms ...domain.VMDetail) domain.NodeStats {
	running := 0
	for _, vm := range vms {
		if vm.Running() {
			running++
		}
	}
	return domain.NodeStats{
		Server: "pve", Name: name, CPU: cpu, Memory: mem, Disk: disk,
		VMsRunning: running, VMsStopped: len(vms) - running, VMs: vms,
	}
}

func vm(name string, status domain.VMStatus, cpu, mem, disk float64) domain.VMDetail {
	return domain.VMDetail{Name: name, Status: status, CPU: cpu, Memory: mem, Disk: disk}
}

func sampleSnapshot() *domain.ClusterSnapshot {
	return &domain.ClusterSnapshot{
		Timestamp: "2025-03-14T09:30:00",
		Servers: []domain.Server{{
			ID: "pve",
			Nodes: []domain.NodeStats{
				node("n1",
					domain.Quantity{Capacity: 100, Used: 60, Free: 40},
					domain.Quantity{Capacity: 64, Used: 70, Free: -6},
					domain.Quantity{Capacity: 500, Used: 30, Free: -5},
					vm("a", domain.VMRunning, 40, 50, 10),
					vm("b", domain.VMStopped, 10, 10, 10),
					vm("c", domain.VMRunning, 20, 0, 20),
				),
				node("n2",
					domain.Quantity{Capacity: 100, Used: 40, Free: 60},
					domain.Quantity{Capacity: 64, Used: 0, Free: 64},
					domain.Quantity{Capacity: 500, Used: 0, Free: 500},
				),
			},
		}},
	}
}

func arcsAt(c *Chart, l Level, rt domain.ResourceType) []Arc {
	var out []Arc
	for _, a := range c.Arcs {
		if a.Level == l && a.Resource == rt {
			out = append(out, a)
		}
	}
	return out
}

func TestBuildResourceRingIsEqual(t *testing.T) {
	snap := sampleSnapshot()
	// heavy skew on CPU must not change the resource ring
	snap.Servers[0].Nodes[0].CPU.Used = 1e6
	c := Build(snap, config.Default())

	res := c.Level(LevelResource)
	if len(res) != 3 {
		t.Fatalf("resource arcs = %d, want 3", len(res))
	}
	for i, idx := range res {
		a := c.Arcs[idx]
		if math.Abs(a.Span()-2*math.Pi/3) > eps {
			t.Errorf("resource %v span %v", a.Resource, a.Span())
		}
		if a.Resource != domain.ResourceTypes[i] {
			t.Errorf("resource %d = %v", i, a.Resource)
		}
		if math.Abs(a.InnerRadius-90) > eps || math.Abs(a.OuterRadius-150) > eps {
			t.Errorf("resource radii %v..%v", a.InnerRadius, a.OuterRadius)
		}
	}
}

func TestBuildNodeRingProportional(t *testing.T) {
	c := Build(sampleSnapshot(), config.Default())
	third := 2 * math.Pi / 3

	nodes := arcsAt(c, LevelNode, domain.CPU)
	if len(nodes) != 2 {
		t.Fatalf("cpu node arcs = %d, want 2", len(nodes))
	}
	if nodes[0].Node != "n1" || nodes[1].Node != "n2" {
		t.Errorf("node order %s, %s", nodes[0].Node, nodes[1].Node)
	}
	if math.Abs(nodes[0].StartAngle) > eps || math.Abs(nodes[0].Span()-0.6*third) > eps {
		t.Errorf("n1 span %v..%v", nodes[0].StartAngle, nodes[0].EndAngle)
	}
	if math.Abs(nodes[1].StartAngle-nodes[0].EndAngle) > eps || math.Abs(nodes[1].Span()-0.4*third) > eps {
		t.Errorf("n2 span %v..%v", nodes[1].StartAngle, nodes[1].EndAngle)
	}
	if nodes[0].Utilization != 60 || nodes[0].Fill != UtilizationColor("#f4a4a4", 60) {
		t.Errorf("n1 util %v fill %s", nodes[0].Utilization, nodes[0].Fill)
	}
	if nodes[0].Count != 2 || nodes[1].Count != 0 {
		t.Errorf("running vm counts %d, %d", nodes[0].Count, nodes[1].Count)
	}

	// n2 has no memory or disk usage and gets no arc there
	for _, rt := range []domain.ResourceType{domain.Memory, domain.Disk} {
		got := arcsAt(c, LevelNode, rt)
		if len(got) != 1 || got[0].Node != "n1" {
			t.Fatalf("%v node arcs = %+v", rt, got)
		}
		if math.Abs(got[0].Span()-third) > eps {
			t.Errorf("%v single node should fill its resource, span %v", rt, got[0].Span())
		}
	}
}

func TestBuildCriticalFlags(t *testing.T) {
	c := Build(sampleSnapshot(), config.Default())
	mem := arcsAt(c, LevelNode, domain.Memory)[0]
	if !mem.Critical || mem.Style != criticalNodeStyle {
		t.Errorf("memory at %v%% should be critical", mem.Utilization)
	}
	disk := arcsAt(c, LevelNode, domain.Disk)[0]
	if !disk.Critical {
		t.Error("disk with negative free should be critical")
	}
	cpu := arcsAt(c, LevelNode, domain.CPU)[0]
	if cpu.Critical || cpu.Style != nodeStyle {
		t.Error("cpu at 60% is not critical")
	}
}

func TestBuildVMRing(t *testing.T) {
	c := Build(sampleSnapshot(), config.Default())

	cpuVMs := arcsAt(c, LevelVM, domain.CPU)
	var names []string
	for _, a := range cpuVMs {
		names = append(names, a.VM)
	}
	// stopped VM b never appears
	if diff := cmp.Diff([]string{"a", "c"}, names); diff != "" {
		t.Errorf("cpu vm arcs (-want +got):\n%s", diff)
	}
	parent := c.Arcs[cpuVMs[0].Parent]
	if parent.Node != "n1" || parent.Level != LevelNode {
		t.Fatalf("vm parent = %+v", parent)
	}
	// local normalisation: 40 of 60 and 20 of 60 of the node span
	if math.Abs(cpuVMs[0].Span()-parent.Span()*40/60) > eps {
		t.Errorf("vm a span %v", cpuVMs[0].Span())
	}
	if math.Abs(cpuVMs[0].StartAngle-parent.StartAngle) > eps || math.Abs(cpuVMs[1].EndAngle-parent.EndAngle) > eps {
		t.Error("vm arcs do not fill the node span")
	}
	if cpuVMs[0].Fill != VMColor("#f4a4a4") || cpuVMs[0].Style.Opacity != 0.7 {
		t.Errorf("vm fill %s style %+v", cpuVMs[0].Fill, cpuVMs[0].Style)
	}
	if cpuVMs[0].Detail == nil || cpuVMs[0].Detail.Memory != 50 {
		t.Errorf("vm detail %+v", cpuVMs[0].Detail)
	}

	// vm c has zero memory assigned: only a remains on the memory ring
	memVMs := arcsAt(c, LevelVM, domain.Memory)
	if len(memVMs) != 1 || memVMs[0].VM != "a" {
		t.Errorf("memory vm arcs = %+v", memVMs)
	}

	// n2 has no running VMs: no VM arc under it for any resource
	for _, a := range c.Arcs {
		if a.Level == LevelVM && a.Node == "n2" {
			t.Errorf("unexpected vm arc under n2: %+v", a)
		}
	}
}

func TestBuildZeroValuesNeverDrawn(t *testing.T) {
	c := Build(sampleSnapshot(), config.Default())
	for _, a := range c.Arcs {
		if a.Span() <= 0 {
			t.Errorf("zero width arc %+v", a)
		}
		if a.Level != LevelResource && a.Value <= 0 {
			t.Errorf("arc for non-positive value %+v", a)
		}
	}
}

func TestBuildEmptyCluster(t *testing.T) {
	snap := &domain.ClusterSnapshot{Servers: []domain.Server{{ID: "pve", Nodes: []domain.NodeStats{
		node("idle", domain.Quantity{Capacity: 8}, domain.Quantity{Capacity: 8}, domain.Quantity{Capacity: 8}),
	}}}}
	c := Build(snap, config.Default())
	if len(c.Arcs) != 3 {
		t.Fatalf("arcs = %d, want only the 3 resource arcs", len(c.Arcs))
	}
	if len(Build(nil, config.Default()).Arcs) != 0 {
		t.Error("nil snapshot should give no arcs")
	}
}

func TestChartNavigation(t *testing.T) {
	c := Build(sampleSnapshot(), config.Default())
	cpu := c.Level(LevelResource)[0]
	kids := c.Children(cpu)
	if len(kids) != 2 {
		t.Fatalf("cpu children = %v", kids)
	}
	if got := c.Siblings(kids[1]); !cmp.Equal(got, kids) {
		t.Errorf("Siblings = %v, want %v", got, kids)
	}
	if got := c.Siblings(cpu); !cmp.Equal(got, c.Level(LevelResource)) {
		t.Errorf("resource siblings = %v", got)
	}

	n1 := c.Arcs[kids[0]]
	r := (n1.InnerRadius + n1.OuterRadius) / 2
	th := n1.MidAngle()
	if got := c.ArcAt(math.Sin(th)*r, -math.Cos(th)*r); got != kids[0] {
		t.Errorf("ArcAt(n1 mid) = %d, want %d", got, kids[0])
	}
	if got := c.ArcAt(0, 0); got != -1 {
		t.Errorf("ArcAt(centre) = %d, want -1", got)
	}
	if got := c.ArcAt(0, -1000); got != -1 {
		t.Errorf("ArcAt(outside) = %d, want -1", got)
	}
}

func TestBuildLabelsAndDate(t *testing.T) {
	c := Build(sampleSnapshot(), config.Default())
	if len(c.Labels) != 3 || c.Labels[0].Text != "CPU" {
		t.Fatalf("labels = %+v", c.Labels)
	}
	// CPU spans 0..2π/3, its label sits right of and above the centre
	if c.Labels[0].X <= 0 || c.Labels[0].Y >= 0 {
		t.Errorf("cpu label at %v,%v", c.Labels[0].X, c.Labels[0].Y)
	}
	if c.Date != "14 March 2025" {
		t.Errorf("date = %q", c.Date)
	}
}

func TestBuildNegativeUsedStaysInsideResource(t *testing.T) {
	q := domain.Quantity{Capacity: 10, Used: 5, Free: 5}
	snap := &domain.ClusterSnapshot{Servers: []domain.Server{{
		ID: "pve",
		Nodes: []domain.NodeStats{
			node("a", domain.Quantity{Capacity: 100, Used: 60, Free: 40}, q, q),
			node("b", domain.Quantity{Capacity: 100, Used: -30, Free: 130}, q, q),
		},
	}}}
	c := Build(snap, config.Default())

	cpu := arcsAt(c, LevelNode, domain.CPU)
	if len(cpu) != 1 || cpu[0].Node != "a" {
		t.Fatalf("cpu node arcs = %+v, want only a", cpu)
	}
	res := arcsAt(c, LevelResource, domain.CPU)[0]
	if math.Abs(cpu[0].StartAngle-res.StartAngle) > eps || math.Abs(cpu[0].EndAngle-res.EndAngle) > eps {
		t.Errorf("node a spans %v..%v, resource %v..%v", cpu[0].StartAngle, cpu[0].EndAngle, res.StartAngle, res.EndAngle)
	}
	if res.Value != 30 {
		t.Errorf("resource total = %v, want the raw sum 30", res.Value)
	}

	for _, rt := range domain.ResourceTypes {
		parent := arcsAt(c, LevelResource, rt)[0]
		for _, a := range arcsAt(c, LevelNode, rt) {
			if a.StartAngle < parent.StartAngle-eps || a.EndAngle > parent.EndAngle+eps {
				t.Errorf("%v node %s %v..%v leaves resource %v..%v", rt, a.Node, a.StartAngle, a.EndAngle, parent.StartAngle, parent.EndAngle)
			}
		}
	}

	mem := arcsAt(c, LevelNode, domain.Memory)[0]
	r := (mem.InnerRadius + mem.OuterRadius) / 2
	i := c.ArcAt(math.Sin(mem.MidAngle())*r, -math.Cos(mem.MidAngle())*r)
	if i < 0 {
		t.Fatal("ArcAt in the memory node ring hit nothing")
	}
	if got := c.Arcs[i]; got.Resource != domain.Memory || got.Level != LevelNode {
		t.Errorf("ArcAt in the memory node ring hit %s/%v", got.Node, got.Resource)
	}
}
