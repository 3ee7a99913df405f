package layout

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	log "github.com/sirupsen/logrus"
)

// NeutralGray fills arcs with zero utilisation.
const NeutralGray = "#f0f0f0"

// RGB is an 8-bit sRGB colour.
type RGB struct {
	R, G, B uint8
}

func ParseColor(hex string) (RGB, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGB{}, fmt.Errorf("parse colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}, nil
}

// mustColor expects a validated config colour. Anything else falls back to
// NeutralGray with a warning.
func mustColor(hex string) RGB {
	c, err := ParseColor(hex)
	if err != nil {
		log.WithError(err).Warn("invalid colour, using neutral gray")
		return RGB{0xf0, 0xf0, 0xf0}
	}
	return c
}

func (c RGB) Hex() string { return c.Colorful().Hex() }

func (c RGB) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Lighten adds d to every channel, clamped to 255.
func (c RGB) Lighten(d int) RGB {
	return RGB{clampByte(int(c.R) + d), clampByte(int(c.G) + d), clampByte(int(c.B) + d)}
}

// Darken scales every channel by f.
func (c RGB) Darken(f float64) RGB {
	return RGB{
		clampByte(int(math.Round(float64(c.R) * f))),
		clampByte(int(math.Round(float64(c.G) * f))),
		clampByte(int(math.Round(float64(c.B) * f))),
	}
}

// Utilization maps a utilisation percentage onto the base colour c. Zero (or
// less) is neutral gray; up to 100% fades from a washed-out variant to c;
// above 100% warms c towards red, saturating at 200%.
func (c RGB) Utilization(pct float64) RGB {
	if !(pct > 0) {
		return mustColor(NeutralGray)
	}
	factor := math.Min(pct/100, 1)
	light := c.Lighten(30)
	mix := func(l, b uint8) float64 {
		return math.Round(float64(l)*(1-factor) + float64(b)*factor)
	}
	r, g, b := mix(light.R, c.R), mix(light.G, c.G), mix(light.B, c.B)

	if pct > 100 {
		over := math.Min((pct-100)/100, 1) * 0.7
		r = math.Min(255, r+math.Round((255-r)*over*0.5))
		g = math.Ceil(math.Max(g-math.Round(30*over), g*0.8))
		b = math.Ceil(math.Max(b-math.Round(30*over), b*0.8))
	}
	return RGB{clampByte(int(r)), clampByte(int(g)), clampByte(int(b))}
}

// UtilizationColor is RGB.Utilization on a hex colour.
func UtilizationColor(base string, pct float64) string {
	if !(pct > 0) {
		return NeutralGray
	}
	return mustColor(base).Utilization(pct).Hex()
}

// VMColor is the flat fill of the VM ring: the base colour 20% darker.
func VMColor(base string) string { return mustColor(base).Darken(0.8).Hex() }

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
