package interact

import (
	"github.com/HaPhanBaoMinh/clusterrings/internal/config"
	"github.com/HaPhanBaoMinh/clusterrings/internal/layout"
)

// Session is the hover state of one rendered chart. A new chart needs a new
// session.
type Session struct {
	chart     *layout.Chart
	resources config.Resources
	current   int
	hover     Hover
	overrides map[int]layout.Style
}

func NewSession(c *layout.Chart, res config.Resources) *Session {
	return &Session{chart: c, resources: res, current: -1, overrides: map[int]layout.Style{}}
}

func (s *Session) Chart() *layout.Chart { return s.chart }

// Current is the hovered arc, -1 when none.
func (s *Session) Current() int { return s.current }

// Hover returns the active hover, if any.
func (s *Session) Hover() (Hover, bool) {
	return s.hover, s.current >= 0
}

// Enter hovers arc i, leaving any previous arc first.
func (s *Session) Enter(i int) Hover {
	if s.current >= 0 {
		s.Exit()
	}
	h := OnHoverEnter(s.chart, s.resources, i)
	if h.Arc < 0 {
		return h
	}
	s.apply(h.Dim)
	s.apply(h.Highlight)
	s.current, s.hover = i, h
	return h
}

// Exit leaves the hovered arc and returns the reset commands.
func (s *Session) Exit() []StyleCommand {
	if s.current < 0 {
		return nil
	}
	cmds := OnHoverExit(s.chart, s.current)
	s.apply(cmds)
	s.current, s.hover = -1, Hover{Arc: -1}
	return cmds
}

// Move hovers i (or nothing for a negative i). It is a no-op when i is
// already hovered.
func (s *Session) Move(i int) {
	if i == s.current {
		return
	}
	if i < 0 {
		s.Exit()
		return
	}
	s.Enter(i)
}

// Style is the current style of arc i.
func (s *Session) Style(i int) layout.Style {
	if st, ok := s.overrides[i]; ok {
		return st
	}
	return s.chart.Arcs[i].Style
}

func (s *Session) apply(cmds []StyleCommand) {
	for _, c := range cmds {
		if c.Style == s.chart.Arcs[c.Arc].Style {
			delete(s.overrides, c.Arc)
			continue
		}
		s.overrides[c.Arc] = c.Style
	}
}
