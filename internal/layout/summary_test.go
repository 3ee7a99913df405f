package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSummarize(t *testing.T) {
	got := Summarize(sampleSnapshot())
	want := Summary{
		Nodes: 2, ActiveNodes: 1, VMs: 3, RunningVMs: 2,
		CPUUsed: 100, CPUCapacity: 200, CPUOvercommit: -50,
		MemUsed: 70, MemCapacity: 128, MemUsage: 70.0 / 128 * 100, MemFree: 58,
		DiskUsed: 30, DiskCapacity: 1000,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Summarize (-want +got):\n%s", diff)
	}
	if got.OvercommitText() != "No overcommit" {
		t.Errorf("OvercommitText = %q", got.OvercommitText())
	}
	if s := (Summary{CPUOvercommit: 37.6}); s.OvercommitText() != "38% overcommit" {
		t.Errorf("OvercommitText = %q", s.OvercommitText())
	}
	if Summarize(nil) != (Summary{}) {
		t.Error("nil snapshot should summarise to zero")
	}
}

func TestFormatDate(t *testing.T) {
	cases := map[string]string{
		"2025-03-14T09:30:00":        "14 March 2025",
		"2025-03-14T09:30:00.123456": "14 March 2025",
		"2025-03-14T09:30:00Z":       "14 March 2025",
		"2025-03-14 09:30:00":        "14 March 2025",
		"yesterday":                  "yesterday",
	}
	for in, want := range cases {
		if got := FormatDate(in, "2 January 2006"); got != want {
			t.Errorf("FormatDate(%q) = %q, want %q", in, got, want)
		}
	}
}
