package layout

import (
	"fmt"
	"time"

	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
)

// Summary holds the cluster-wide figures shown next to the chart.
type Summary struct {
	Nodes       int
	ActiveNodes int // nodes with at least one running VM
	VMs         int
	RunningVMs  int

	CPUUsed       float64
	CPUCapacity   float64
	CPUOvercommit float64 // percent above capacity, negative when under

	MemUsed     float64
	MemCapacity float64
	MemUsage    float64 // percent
	MemFree     float64

	DiskUsed     float64
	DiskCapacity float64
}

func Summarize(snap *domain.ClusterSnapshot) Summary {
	var s Summary
	for _, n := range snap.Nodes() {
		s.Nodes++
		if n.VMsRunning > 0 {
			s.ActiveNodes++
		}
		s.VMs += n.VMsRunning + n.VMsStopped
		s.RunningVMs += n.VMsRunning

		s.CPUUsed += n.CPU.Used
		s.CPUCapacity += n.CPU.Capacity
		s.MemUsed += n.Memory.Used
		s.MemCapacity += n.Memory.Capacity
		s.MemFree += n.Memory.Free
		s.DiskUsed += n.Disk.Used
		s.DiskCapacity += n.Disk.Capacity
	}
	if s.CPUCapacity > 0 {
		s.CPUOvercommit = s.CPUUsed/s.CPUCapacity*100 - 100
	}
	s.MemUsage = Utilization(s.MemUsed, s.MemCapacity)
	return s
}

func (s Summary) OvercommitText() string {
	if s.CPUOvercommit > 0 {
		return fmt.Sprintf("%.0f%% overcommit", s.CPUOvercommit)
	}
	return "No overcommit"
}

// timestamp layouts seen in stats files, most specific first
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders ts with layout. Timestamps that do not parse are
// returned unchanged.
func FormatDate(ts, layout string) string {
	for _, l := range timestampLayouts {
		if t, err := time.Parse(l, ts); err == nil {
			return t.Format(layout)
		}
	}
	return ts
}
