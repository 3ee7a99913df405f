package app

import (
	"fmt"

	"github.com/HaPhanBaoMinh/clusterrings/internal/layout"
)

// clamp clamps v into [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// compute dynamic widths for the Nodes table based on available total width
func nodeColWidths(total int) (wNode, wServer, wPct, wBar, wVMs int) {
	minNode, minServer, minPct, minVMs := 16, 10, 6, 7
	base := minNode + minServer + 3*minPct + minVMs
	remain := total - base
	if remain < 12 {
		remain = 12
	}

	// three bars share the flexible space, the remainder goes to the name
	wBar = remain / 3
	extra := remain - 3*wBar

	wNode = clamp(minNode+extra, 12, 40)
	wServer = minServer
	wPct = minPct
	wVMs = minVMs
	wBar = clamp(wBar, 4, 30)
	return
}

func summaryLine(s layout.Summary) string {
	return fmt.Sprintf("Nodes: %d/%d active • VMs: %d/%d running • CPU: %.1f/%.0f cores (%s) • Memory: %.1f%% used, %.2f GB free • Disk: %.1f/%.1f GB",
		s.ActiveNodes, s.Nodes,
		s.RunningVMs, s.VMs,
		s.CPUUsed, s.CPUCapacity, s.OvercommitText(),
		s.MemUsage, s.MemFree,
		s.DiskUsed, s.DiskCapacity,
	)
}
