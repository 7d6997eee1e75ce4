package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/airwave/internal/domain"
	"github.com/mmcdole/airwave/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.State == StateHelp {
		if key.Matches(msg, Keys.ForceQuit) {
			return m, tea.Quit
		}
		m.State = StateBrowsing
		return m, nil
	}

	if key.Matches(msg, Keys.ForceQuit) {
		return m, tea.Quit
	}

	if m.inputFocused() {
		return m.handleInputKey(msg)
	}
	return m.handleListKey(msg)
}

// handleInputKey handles keys while one of the search inputs has focus.
// Printable keys always go to the input.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Escape):
		return m, m.closeSearch()
	case key.Matches(msg, Keys.NextField):
		return m, m.cycleFocus(1)
	case key.Matches(msg, Keys.PrevField):
		return m, m.cycleFocus(-1)
	case key.Matches(msg, Keys.LoadMore):
		return m, m.loadMore()
	}

	switch m.Focus {
	case FocusTerm:
		if key.Matches(msg, Keys.Enter) || msg.Type == tea.KeyDown {
			return m, m.setFocus(FocusResults)
		}
		var cmd tea.Cmd
		m.TermInput, cmd = m.TermInput.Update(msg)
		req, ok := m.SearchCtl.SetTerm(m.TermInput.Value())
		return m, tea.Batch(cmd, m.issue(req, ok))

	case FocusCountry:
		return m, m.updateSuggestInput(msg, m.CountryInput, domain.FilterCountry)

	case FocusLanguage:
		return m, m.updateSuggestInput(msg, m.LanguageInput, domain.FilterLanguage)
	}
	return m, nil
}

// updateSuggestInput routes a key to a country or language input. The
// filter follows every keystroke; committing a value with enter also asks
// the directory whether anything matches it.
func (m *Model) updateSuggestInput(msg tea.KeyMsg, input *components.SuggestInput, kind domain.FilterKind) tea.Cmd {
	if key.Matches(msg, Keys.Enter) && !input.HasSelection() {
		value := input.Value()
		cmds := []tea.Cmd{m.setFocus(FocusResults)}
		if value != "" {
			cmds = append(cmds, CheckFilterCmd(m.OptionsSvc, kind, value))
		}
		return tea.Batch(cmds...)
	}

	accepting := key.Matches(msg, Keys.Enter)
	cmd, changed := input.Update(msg)
	m.updateLayout()
	if !changed {
		return cmd
	}

	cmds := []tea.Cmd{cmd, m.setFilter(kind, input.Value())}
	if accepting {
		cmds = append(cmds, CheckFilterCmd(m.OptionsSvc, kind, input.Value()))
	}
	return tea.Batch(cmds...)
}

func (m *Model) setFilter(kind domain.FilterKind, value string) tea.Cmd {
	switch kind {
	case domain.FilterCountry:
		return m.issue(m.SearchCtl.SetCountry(value))
	case domain.FilterLanguage:
		return m.issue(m.SearchCtl.SetLanguage(value))
	default:
		return m.issue(m.SearchCtl.SetTerm(value))
	}
}

// handleListKey handles keys while the favorites or results list has focus
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.focusedList()
	if list == nil {
		return m, nil
	}

	// An open filter bar owns the keyboard
	if list.IsFilterTyping() || (list.IsFiltering() && key.Matches(msg, Keys.Escape)) {
		cmd, _ := list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.searchShown() && (m.SearchCtl.Visible() || !m.SearchCtl.Filters().IsEmpty()) {
			return m, m.closeSearch()
		}
		return m, nil

	case key.Matches(msg, Keys.NextField):
		return m, m.cycleFocus(1)

	case key.Matches(msg, Keys.PrevField):
		return m, m.cycleFocus(-1)

	case key.Matches(msg, Keys.Search):
		if m.searchShown() {
			return m, m.setFocus(FocusTerm)
		}
		return m, m.openSearch()

	case key.Matches(msg, Keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, Keys.LoadMore):
		return m, m.loadMore()

	case key.Matches(msg, Keys.Remove):
		station, ok := list.SelectedStation()
		if !ok || !m.FavoritesSvc.Contains(station.ID) {
			return m, nil
		}
		return m, ToggleFavoriteCmd(m.FavoritesSvc, station)

	case key.Matches(msg, Keys.PlayPause):
		if _, _, ok := m.PlaybackSvc.Current(); !ok {
			// Nothing selected yet: start the highlighted favorite
			if station, ok := m.Favorites.SelectedStation(); ok && m.Focus == FocusFavorites {
				return m, PlayStationCmd(m.PlaybackSvc, station)
			}
			return m, nil
		}
		return m, TogglePauseCmd(m.PlaybackSvc)

	case key.Matches(msg, Keys.Stop):
		return m, StopCmd(m.PlaybackSvc)

	case key.Matches(msg, Keys.VolumeUp):
		return m, AdjustVolumeCmd(m.PlaybackSvc, m.VolumeStep)

	case key.Matches(msg, Keys.VolumeDown):
		return m, AdjustVolumeCmd(m.PlaybackSvc, -m.VolumeStep)
	}

	cmd, _ := list.Update(msg)
	return m, cmd
}

// handleEnter acts on the selected row: a favorite plays or stops, a
// search result toggles its favorite state, the last row loads more.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.Focus {
	case FocusFavorites:
		station, ok := m.Favorites.SelectedStation()
		if !ok {
			return m, nil
		}
		if m.PlaybackSvc.IsCurrent(station.StreamURL()) {
			return m, StopCmd(m.PlaybackSvc)
		}
		return m, PlayStationCmd(m.PlaybackSvc, station)

	case FocusResults:
		if m.Results.OnLoadMore() {
			return m, m.loadMore()
		}
		station, ok := m.Results.SelectedStation()
		if !ok {
			return m, nil
		}
		return m, ToggleFavoriteCmd(m.FavoritesSvc, station)
	}
	return m, nil
}
