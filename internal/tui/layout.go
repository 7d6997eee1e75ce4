package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Layout proportions
const (
	// Share of the width given to the search surface when docked
	SearchPanelPercent = 55

	// A horizontal drag longer than this share of the width is a swipe
	SwipeThresholdPercent = 25

	MinPanelWidth   = 30
	MinResultsLines = 6

	// Vertical layout: single footer line
	ChromeHeight = 1

	// Panel title line
	TitleHeight = 1

	// Now-playing bar: one line plus border
	NowPlayingHeight = 3
)

// panelLayout holds calculated panel widths for the View
type panelLayout struct {
	searchWidth    int // 0 if not shown
	favoritesWidth int // 0 if not shown
}

// calculatePanelLayout splits the width between the visible surfaces
func (m Model) calculatePanelLayout() panelLayout {
	switch {
	case m.SearchCtl.Wide():
		search := max(m.Width*SearchPanelPercent/100, MinPanelWidth)
		return panelLayout{searchWidth: search, favoritesWidth: max(m.Width-search, 0)}
	case m.SearchCtl.Visible():
		return panelLayout{searchWidth: m.Width}
	default:
		return panelLayout{favoritesWidth: m.Width}
	}
}

// inputsHeight is the number of lines the search inputs occupy
func (m Model) inputsHeight() int {
	return TitleHeight + 2 + m.CountryInput.Height() + m.LanguageInput.Height()
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	contentHeight := m.Height - ChromeHeight
	layout := m.calculatePanelLayout()

	if layout.searchWidth > 0 {
		m.TermInput.Width = max(layout.searchWidth-4, 1)
		m.CountryInput.SetWidth(layout.searchWidth)
		m.LanguageInput.SetWidth(layout.searchWidth)
		m.Results.SetSize(layout.searchWidth, max(contentHeight-m.inputsHeight(), MinResultsLines))
	}

	if layout.favoritesWidth > 0 {
		m.NowPlaying.SetWidth(layout.favoritesWidth)
		m.Favorites.SetSize(layout.favoritesWidth, max(contentHeight-TitleHeight-NowPlayingHeight, MinResultsLines))
	}
}

// === Swipe ===

// dragState tracks a mouse drag in progress
type dragState struct {
	startX int
}

// handleMouseMsg turns horizontal drags into swipes
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.drag = &dragState{startX: msg.X}
		}
	case tea.MouseActionRelease:
		if m.drag == nil {
			return m, nil
		}
		dx := msg.X - m.drag.startX
		m.drag = nil
		return m, m.handleSwipe(dx)
	}
	return m, nil
}

// handleSwipe opens the search surface on a long drag to the right and
// closes it on a long drag to the left. Docked layouts ignore swipes.
func (m *Model) handleSwipe(dx int) tea.Cmd {
	if m.SearchCtl.Wide() || m.Width == 0 {
		return nil
	}
	dist := dx
	if dist < 0 {
		dist = -dist
	}
	if dist*100 <= m.Width*SwipeThresholdPercent {
		return nil
	}

	switch {
	case dx > 0 && !m.SearchCtl.Visible():
		return m.openSearch()
	case dx < 0 && m.SearchCtl.Visible():
		return m.closeSearch()
	}
	return nil
}
