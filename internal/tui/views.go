package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/airwave/internal/domain"
	"github.com/mmcdole/airwave/internal/service"
	"github.com/mmcdole/airwave/internal/tui/components"
	"github.com/mmcdole/airwave/internal/tui/styles"
)

func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}
	if m.State == StateHelp {
		return m.renderHelp()
	}

	// Suggestion dropdowns change height while typing
	m.updateLayout()
	layout := m.calculatePanelLayout()

	var panels []string
	if layout.searchWidth > 0 {
		panels = append(panels, m.renderSearchPanel(layout.searchWidth))
	}
	if layout.favoritesWidth > 0 {
		panels = append(panels, m.renderFavoritesPanel(layout.favoritesWidth))
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	content = lipgloss.NewStyle().Height(m.Height - ChromeHeight).MaxHeight(m.Height - ChromeHeight).Render(content)
	return content + "\n" + m.renderFooter()
}

// renderSearchPanel draws the inputs stacked above the results list
func (m Model) renderSearchPanel(width int) string {
	title := styles.TitleStyle.Render("Find stations")
	if m.SearchCtl.Status() == domain.SearchLoading {
		title += " " + RenderSpinner(m.SpinnerFrame)
	}

	term := styles.SubtitleStyle.Render("Name") + "\n" + m.TermInput.View()

	block := lipgloss.JoinVertical(lipgloss.Left,
		title,
		term,
		m.CountryInput.View(),
		m.LanguageInput.View(),
		m.Results.View(),
	)
	return lipgloss.NewStyle().Width(width).Render(block)
}

// renderFavoritesPanel draws the now-playing bar above the favorites list
func (m Model) renderFavoritesPanel(width int) string {
	m.syncNowPlaying()

	title := styles.TitleStyle.Render("airwave") + styles.DimStyle.Render(" · internet radio")
	block := lipgloss.JoinVertical(lipgloss.Left,
		styles.Truncate(title, width),
		m.NowPlaying.View(),
		m.Favorites.View(),
	)
	return lipgloss.NewStyle().Width(width).Render(block)
}

// syncNowPlaying copies playback state into the now-playing bar
func (m Model) syncNowPlaying() {
	_, _, selected := m.PlaybackSvc.Current()
	m.NowPlaying.Name = m.PlaybackSvc.DisplayName()
	m.NowPlaying.Selected = selected
	m.NowPlaying.Playing = m.PlaybackSvc.IsPlaying()
	m.NowPlaying.Volume = m.PlaybackSvc.Volume()
}

func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.SuccessStyle.Render(m.StatusMsg)
		}
	}

	var hints []string
	switch m.Focus {
	case FocusFavorites:
		hints = []string{"enter", "play/stop", "x", "remove", "f", "find"}
	case FocusResults:
		hints = []string{"enter", "favorite", "C-l", "more", "esc", "close"}
	default:
		hints = []string{"tab", "next", "enter", "results", "esc", "close"}
	}
	var center strings.Builder
	for i := 0; i < len(hints); i += 2 {
		if i > 0 {
			center.WriteString(styles.DimStyle.Render("  "))
		}
		center.WriteString(styles.HelpKeyStyle.Render(hints[i]))
		center.WriteString(styles.HelpDescStyle.Render(" " + hints[i+1]))
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center.String())
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		// Not enough space - just left + right
		gap := max(m.Width-leftWidth-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad
	return left + strings.Repeat(" ", leftPad) + center.String() + strings.Repeat(" ", rightPad) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      PLAYBACK
  j/k        Up/down               Enter  Play/stop favorite
  g/G        First/last item       Space  Play/pause
  C-u/C-d    Scroll half page      s      Stop
  Tab/S-Tab  Next/previous field   +/-    Volume

SEARCH                          FAVORITES
  f          Find stations         Enter  Toggle favorite (results)
  ↑/↓        Pick suggestion       x      Remove favorite
  C-l        Load more             /      Filter list
  Esc        Close search          q      Quit

Swipe right/left with the mouse to open/close search.

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// RenderSpinner renders the spinner at the given frame
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(components.SpinnerFrames[frame%len(components.SpinnerFrames)])
}

// === Row decorations ===

// resultMarker shows whether a search result is already a favorite
func resultMarker(favorites *service.FavoritesService) components.RowMarker {
	return func(s domain.Station) styles.RowPart {
		if favorites.Contains(s.ID) {
			green := styles.Green
			return styles.RowPart{Text: styles.FavoriteChar, Foreground: &green, Bold: true}
		}
		dim := styles.DimGray
		return styles.RowPart{Text: styles.AddChar, Foreground: &dim}
	}
}

// favoriteMarker flags the favorite that is currently loaded
func favoriteMarker(playback *service.PlaybackService) components.RowMarker {
	return func(s domain.Station) styles.RowPart {
		if !playback.IsCurrent(s.StreamURL()) {
			return styles.RowPart{Text: " "}
		}
		color := styles.Amber
		glyph := styles.PlayChar
		if playback.IsPlaying() {
			color = styles.Green
		} else {
			glyph = styles.PauseChar
		}
		return styles.RowPart{Text: glyph, Foreground: &color, Bold: true}
	}
}

func resultDetail(s domain.Station) string {
	parts := make([]string, 0, 2)
	if q := s.Quality(); q != "" {
		parts = append(parts, q)
	}
	if s.CountryCode != "" {
		parts = append(parts, s.CountryCode)
	}
	return strings.Join(parts, " · ")
}

func favoriteDetail(s domain.Station) string {
	return s.Origin()
}
