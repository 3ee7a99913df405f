package layout

import (
	"testing"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestUtilizationColor(t *testing.T) {
	cases := []struct {
		base string
		pct  float64
		want string
	}{
		{"#f4a4a4", 0, NeutralGray},
		{"#a5c8e1", 0, NeutralGray},
		{"#f4a4a4", -5, NeutralGray},
		{"#f4a4a4", 100, "#f4a4a4"},
		{"#a5d6c8", 100, "#a5d6c8"},
		{"#f4a4a4", 50, "#fab3b3"},
		{"#f4a4a4", 150, "#f69999"},
		{"#f4a4a4", 200, "#f88f8f"},
		{"#f4a4a4", 500, "#f88f8f"},
	}
	for _, c := range cases {
		if got := UtilizationColor(c.base, c.pct); got != c.want {
			t.Errorf("UtilizationColor(%s, %v) = %s, want %s", c.base, c.pct, got, c.want)
		}
	}
}

func TestOvershootKeepsEightyPercent(t *testing.T) {
	base := RGB{255, 32, 32}
	for _, pct := range []float64{110, 150, 200, 300} {
		got := base.Utilization(pct)
		if got.R != 255 {
			t.Errorf("%v%%: red = %d, want 255", pct, got.R)
		}
		if float64(got.G) < 0.8*32 || float64(got.B) < 0.8*32 {
			t.Errorf("%v%%: green/blue %d/%d dropped below 80%%", pct, got.G, got.B)
		}
	}
}

func TestLightenDarken(t *testing.T) {
	c := RGB{240, 100, 0}
	if got := c.Lighten(30); got != (RGB{255, 130, 30}) {
		t.Errorf("Lighten = %+v", got)
	}
	if got := VMColor("#f4a4a4"); got != "#c38383" {
		t.Errorf("VMColor = %s, want #c38383", got)
	}
	if _, err := ParseColor("pink"); err == nil {
		t.Error("ParseColor(pink): expected error")
	}
}

func TestInvalidBaseColourFallsBackWithWarning(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	if got := mustColor("blue").Hex(); got != NeutralGray {
		t.Errorf("mustColor(blue) = %s, want %s", got, NeutralGray)
	}
	if e := hook.LastEntry(); e == nil || e.Level != log.WarnLevel {
		t.Fatalf("expected a warning, got %+v", hook.AllEntries())
	}
}
