// Package styles holds the lipgloss palette of the rings TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/HaPhanBaoMinh/clusterrings/internal/layout"
)

// palette
const (
	accent    = lipgloss.Color("#7DCE13")
	muted     = lipgloss.Color("#999999")
	dim       = lipgloss.Color("#6C6C6C")
	text      = lipgloss.Color("#DDDDDD")
	critical  = lipgloss.Color("#FF5F87")
	warning   = lipgloss.Color("#FFAF00")
	healthy   = lipgloss.Color("#5FD7AF")
	chromeTop = lipgloss.Color("#AAAAAA")
	chromeBot = lipgloss.Color("#777777")
)

var (
	Title      = lipgloss.NewStyle().Bold(true)
	TabActive  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	Tab        = lipgloss.NewStyle().Foreground(muted)
	Header     = lipgloss.NewStyle().Foreground(chromeTop)
	Breadcrumb = lipgloss.NewStyle().Bold(true).Foreground(text)
	Footer     = lipgloss.NewStyle().Foreground(chromeBot)
	Box        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	Faint      = lipgloss.NewStyle().Foreground(dim)

	Danger = lipgloss.NewStyle().Foreground(critical)
	Warn   = lipgloss.NewStyle().Foreground(warning)
	Good   = lipgloss.NewStyle().Foreground(healthy)
)

var statusStyles = map[layout.Status]lipgloss.Style{
	layout.StatusCritical: Danger,
	layout.StatusWarning:  Warn,
	layout.StatusOK:       Good,
}

// Status maps an info panel status class to its style. Lines without a
// class render plain.
func Status(s layout.Status) lipgloss.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return lipgloss.NewStyle()
}
