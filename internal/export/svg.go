package export

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/HaPhanBaoMinh/clusterrings/internal/config"
	"github.com/HaPhanBaoMinh/clusterrings/internal/interact"
	"github.com/HaPhanBaoMinh/clusterrings/internal/layout"
)

var arcClass = map[layout.Level]string{
	layout.LevelResource: "resource-arc",
	layout.LevelNode:     "node-arc",
	layout.LevelVM:       "vm-arc",
}

// SVG writes a standalone SVG document. Hover highlighting, the info
// panel (as a native tooltip) and node-hover dimming are done in CSS.
func SVG(w io.Writer, c *layout.Chart, cfg config.Config) error {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(c.Width), num(c.Height), num(c.Width), num(c.Height))
	writeStyle(&b, c, cfg.Animations)
	fmt.Fprintf(&b, `<g transform="translate(%s,%s)">`+"\n", num(c.Width/2), num(c.Height/2))

	fmt.Fprintf(&b, `<circle r="%s" fill="#f8f9fa" stroke="#ccc"/>`+"\n", num(c.Rings.Inner))
	for i, line := range c.Center {
		dy := float64(i) - float64(len(c.Center)-1)/2
		fmt.Fprintf(&b, `<text class="central-text" text-anchor="middle" dy="%sem">%s</text>`+"\n", num(dy), html.EscapeString(line))
	}

	for i, a := range c.Arcs {
		class := arcClass[a.Level]
		if a.Level == layout.LevelVM {
			class += fmt.Sprintf(" p-%d", a.Parent)
		}
		fmt.Fprintf(&b, `<path id="arc-%d" class="arc %s" d="%s" fill="%s" stroke="%s" stroke-width="%s" opacity="%s" data-resource="%s"`,
			i, class, ArcPath(a), a.Fill, a.Style.Stroke, num(a.Style.StrokeWidth), num(a.Style.Opacity), a.Resource)
		if a.Node != "" {
			fmt.Fprintf(&b, ` data-node="%s"`, html.EscapeString(a.Node))
		}
		if a.VM != "" {
			fmt.Fprintf(&b, ` data-vm="%s"`, html.EscapeString(a.VM))
		}
		if a.Level == layout.LevelNode {
			fmt.Fprintf(&b, ` data-critical="%t"`, a.Critical)
		}
		fmt.Fprintf(&b, "><title>%s</title></path>\n", html.EscapeString(tooltip(c, cfg, i)))
	}

	for _, l := range c.Labels {
		fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" fill="white" font-weight="bold" pointer-events="none">%s</text>`+"\n",
			num(l.X), num(l.Y), html.EscapeString(l.Text))
	}
	b.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeStyle(b *strings.Builder, c *layout.Chart, anim config.Animations) {
	b.WriteString("<style>\n")
	fmt.Fprintf(b, ".arc{transition:opacity %dms,stroke %dms}\n", anim.TooltipFadeOut.Milliseconds(), anim.TooltipFadeOut.Milliseconds())
	fmt.Fprintf(b, ".arc:hover{stroke:%s;stroke-width:2;transition-duration:%dms}\n", interact.HighlightStroke, anim.TooltipFadeIn.Milliseconds())
	b.WriteString(".vm-arc:hover{stroke-width:1;opacity:1}\n")
	b.WriteString(".central-text{font:bold 14px sans-serif;fill:#555}\n")
	for _, i := range c.Level(layout.LevelNode) {
		fmt.Fprintf(b, "svg:has(#arc-%d:hover) .vm-arc:not(.p-%d){opacity:%s}\n", i, i, num(interact.DimOpacity))
		fmt.Fprintf(b, "svg:has(#arc-%d:hover) .vm-arc.p-%d{opacity:1}\n", i, i)
	}
	b.WriteString("</style>\n")
}

func tooltip(c *layout.Chart, cfg config.Config, i int) string {
	h := interact.OnHoverEnter(c, cfg.Resources, i)
	lines := []string{h.Breadcrumb, h.Panel.Title}
	for _, l := range h.Panel.Lines {
		lines = append(lines, l.Text)
	}
	return strings.Join(lines, "\n")
}

// ArcPath is the SVG path of an annular sector, angles clockwise from
// 12 o'clock.
func ArcPath(a layout.Arc) string {
	large := 0
	if a.Span() > math.Pi {
		large = 1
	}
	ox0, oy0 := polar(a.StartAngle, a.OuterRadius)
	ox1, oy1 := polar(a.EndAngle, a.OuterRadius)
	var b strings.Builder
	fmt.Fprintf(&b, "M%s,%sA%s,%s,0,%d,1,%s,%s", num(ox0), num(oy0), num(a.OuterRadius), num(a.OuterRadius), large, num(ox1), num(oy1))
	if a.InnerRadius > 0 {
		ix1, iy1 := polar(a.EndAngle, a.InnerRadius)
		ix0, iy0 := polar(a.StartAngle, a.InnerRadius)
		fmt.Fprintf(&b, "L%s,%sA%s,%s,0,%d,0,%s,%s", num(ix1), num(iy1), num(a.InnerRadius), num(a.InnerRadius), large, num(ix0), num(iy0))
	} else {
		b.WriteString("L0,0")
	}
	b.WriteString("Z")
	return b.String()
}

func polar(theta, r float64) (float64, float64) {
	return r * math.Sin(theta), -r * math.Cos(theta)
}

// num prints at most three decimals without trailing zeros.
func num(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}
