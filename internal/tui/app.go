package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/airwave/internal/domain"
	"github.com/mmcdole/airwave/internal/service"
	"github.com/mmcdole/airwave/internal/tui/components"
	"github.com/mmcdole/airwave/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
)

// Focus is the region receiving keyboard input
type Focus int

const (
	FocusFavorites Focus = iota
	FocusTerm
	FocusCountry
	FocusLanguage
	FocusResults
)

// String returns a human-readable representation of the focus
func (f Focus) String() string {
	switch f {
	case FocusFavorites:
		return "Favorites"
	case FocusTerm:
		return "Term"
	case FocusCountry:
		return "Country"
	case FocusLanguage:
		return "Language"
	case FocusResults:
		return "Results"
	default:
		return "Unknown"
	}
}

const (
	// DefaultWideThreshold is the terminal width at which search stays docked
	DefaultWideThreshold = 110
	// DefaultVolumeStep is the percentage moved per volume key press
	DefaultVolumeStep = 5

	tickInterval = 250 * time.Millisecond
)

// Options tune the model; zero values pick the defaults
type Options struct {
	WideThreshold int
	VolumeStep    int
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	FavoritesSvc *service.FavoritesService
	SearchCtl    *service.SearchController
	PlaybackSvc  *service.PlaybackService
	OptionsSvc   *service.FilterOptionsService

	WideThreshold int
	VolumeStep    int

	// UI Components
	TermInput     textinput.Model
	CountryInput  *components.SuggestInput
	LanguageInput *components.SuggestInput
	Results       *components.StationList
	Favorites     *components.StationList
	NowPlaying    *components.NowPlaying

	Focus Focus

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int

	drag *dragState
}

// NewModel creates a new application model
func NewModel(
	favoritesSvc *service.FavoritesService,
	searchCtl *service.SearchController,
	playbackSvc *service.PlaybackService,
	optionsSvc *service.FilterOptionsService,
	opts Options,
) Model {
	if opts.WideThreshold <= 0 {
		opts.WideThreshold = DefaultWideThreshold
	}
	if opts.VolumeStep <= 0 {
		opts.VolumeStep = DefaultVolumeStep
	}

	ti := textinput.New()
	ti.Placeholder = "Station name..."
	ti.CharLimit = 100
	ti.Prompt = "› "
	ti.PromptStyle = styles.PromptStyle
	ti.TextStyle = styles.InputTextStyle
	ti.PlaceholderStyle = styles.DimStyle

	m := Model{
		State:         StateBrowsing,
		FavoritesSvc:  favoritesSvc,
		SearchCtl:     searchCtl,
		PlaybackSvc:   playbackSvc,
		OptionsSvc:    optionsSvc,
		WideThreshold: opts.WideThreshold,
		VolumeStep:    opts.VolumeStep,
		TermInput:     ti,
		CountryInput:  components.NewSuggestInput("Country", "Any country"),
		LanguageInput: components.NewSuggestInput("Language", "Any language"),
		NowPlaying:    components.NewNowPlaying(),
		Focus:         FocusFavorites,
	}
	m.Results = components.NewStationList("Stations", resultMarker(favoritesSvc), resultDetail)
	m.Results.SetEmptyText("No stations found")
	m.Favorites = components.NewStationList("Favorites", favoriteMarker(playbackSvc), favoriteDetail)
	m.Favorites.SetEmptyText("No favorites yet, press f to find stations")
	m.Favorites.SetFocused(true)
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	m.Favorites.SetLoading(len(m.FavoritesSvc.IDs()) > 0)
	return tea.Batch(
		LoadCountriesCmd(m.OptionsSvc),
		LoadLanguagesCmd(m.OptionsSvc),
		HydrateFavoritesCmd(m.FavoritesSvc),
		TickCmd(tickInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		cmd := m.applyWidth()
		m.updateLayout()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		m.Results.Tick()
		m.Favorites.Tick()
		return m, TickCmd(tickInterval)

	case CountriesLoadedMsg:
		m.CountryInput.SetOptions(msg.Countries)
		return m, nil

	case LanguagesLoadedMsg:
		m.LanguageInput.SetOptions(msg.Languages)
		return m, nil

	case FavoritesHydratedMsg:
		// The service keeps only the newest hydration; read it back from there
		m.Favorites.SetLoading(false)
		m.Favorites.SetStations(m.FavoritesSvc.Stations())
		return m, nil

	case SearchResultMsg:
		if msg.OK {
			m.SearchCtl.Complete(msg.Request.Token, msg.Stations)
		}
		m.syncResults()
		return m, nil

	case FavoriteToggledMsg:
		// The set changed even if saving failed, so the panel follows it either way
		m.Favorites.SetLoading(true)
		hydrate := HydrateFavoritesCmd(m.FavoritesSvc)
		if msg.Err != nil {
			m.StatusMsg = ErrMsg{Err: msg.Err, Context: "updating favorites"}.Error()
			m.StatusIsErr = true
			return m, tea.Batch(hydrate, ClearStatusCmd(5*time.Second))
		}
		verb := "Removed %s from favorites"
		if msg.Added {
			verb = "Added %s to favorites"
		}
		m.StatusMsg = fmt.Sprintf(verb, msg.Station.DisplayName())
		m.StatusIsErr = false
		return m, tea.Batch(hydrate, ClearStatusCmd(3*time.Second))

	case PlaybackChangedMsg:
		return m, nil

	case VolumeChangedMsg:
		m.StatusMsg = fmt.Sprintf("Volume %d%%", msg.Volume)
		m.StatusIsErr = false
		return m, ClearStatusCmd(2 * time.Second)

	case FilterCheckedMsg:
		if msg.Found || !m.filterStillApplies(msg.Kind, msg.Value) {
			return m, nil
		}
		m.StatusMsg = fmt.Sprintf("No stations for %s %q", msg.Kind, msg.Value)
		m.StatusIsErr = true
		return m, ClearStatusCmd(5 * time.Second)

	case ErrMsg:
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// === Search surface ===

// searchShown reports whether the search surface is on screen
func (m Model) searchShown() bool {
	return m.SearchCtl.Wide() || m.SearchCtl.Visible()
}

// favoritesShown reports whether the favorites surface is on screen
func (m Model) favoritesShown() bool {
	return m.SearchCtl.Wide() || !m.SearchCtl.Visible()
}

// applyWidth records which side of the wide threshold the terminal is on
func (m *Model) applyWidth() tea.Cmd {
	req, ok := m.SearchCtl.SetWide(m.Width >= m.WideThreshold)
	cmds := []tea.Cmd{m.issue(req, ok)}
	if !m.favoritesShown() && m.Focus == FocusFavorites {
		cmds = append(cmds, m.setFocus(FocusTerm))
	}
	if !m.searchShown() && m.Focus != FocusFavorites {
		cmds = append(cmds, m.setFocus(FocusFavorites))
	}
	return tea.Batch(cmds...)
}

// openSearch shows the search surface and focuses the name input
func (m *Model) openSearch() tea.Cmd {
	req, ok := m.SearchCtl.SetVisible(true)
	cmd := m.issue(req, ok)
	m.updateLayout()
	return tea.Batch(cmd, m.setFocus(FocusTerm))
}

// closeSearch clears every filter and hides the surface. On a narrow
// layout the favorites come back into view, so they are re-fetched.
func (m *Model) closeSearch() tea.Cmd {
	wasNarrow := !m.SearchCtl.Wide() && m.SearchCtl.Visible()

	m.TermInput.SetValue("")
	m.CountryInput.SetValue("")
	m.LanguageInput.SetValue("")
	m.Results.ClearFilter()

	req, ok := m.SearchCtl.Reset()
	cmds := []tea.Cmd{m.issue(req, ok), m.setFocus(FocusFavorites)}
	if wasNarrow {
		m.Favorites.SetLoading(true)
		cmds = append(cmds, HydrateFavoritesCmd(m.FavoritesSvc))
	}
	m.updateLayout()
	return tea.Batch(cmds...)
}

// issue turns a controller request into a command and refreshes the list
func (m *Model) issue(req service.SearchRequest, ok bool) tea.Cmd {
	m.syncResults()
	if !ok {
		return nil
	}
	return SearchCmd(m.SearchCtl, req)
}

func (m *Model) loadMore() tea.Cmd {
	req, ok := m.SearchCtl.LoadMore()
	return m.issue(req, ok)
}

// syncResults copies controller state into the results list
func (m *Model) syncResults() {
	results := m.SearchCtl.Results()
	m.Results.SetStations(results)
	m.Results.SetLoading(m.SearchCtl.Status() == domain.SearchLoading)
	m.Results.SetShowLoadMore(len(results) > 0)
	m.Results.SetTitle(m.resultsTitle())
}

func (m Model) resultsTitle() string {
	value, kind, ok := m.SearchCtl.Filters().Active()
	if !ok {
		return "Stations"
	}
	return fmt.Sprintf("Stations · %s: %s", kind, value)
}

// filterStillApplies reports whether value is still the active input for kind
func (m Model) filterStillApplies(kind domain.FilterKind, value string) bool {
	f := m.SearchCtl.Filters()
	switch kind {
	case domain.FilterCountry:
		return f.Country == value
	case domain.FilterLanguage:
		return f.Language == value
	default:
		return f.Term == value
	}
}

// === Focus ===

// focusOrder lists the focusable regions currently on screen
func (m Model) focusOrder() []Focus {
	var order []Focus
	if m.searchShown() {
		order = append(order, FocusTerm, FocusCountry, FocusLanguage, FocusResults)
	}
	if m.favoritesShown() {
		order = append(order, FocusFavorites)
	}
	return order
}

// cycleFocus moves focus by step through focusOrder, wrapping around
func (m *Model) cycleFocus(step int) tea.Cmd {
	order := m.focusOrder()
	if len(order) == 0 {
		return nil
	}
	idx := 0
	for i, f := range order {
		if f == m.Focus {
			idx = i
			break
		}
	}
	idx = (idx + step + len(order)) % len(order)
	return m.setFocus(order[idx])
}

func (m *Model) setFocus(f Focus) tea.Cmd {
	m.Focus = f
	m.TermInput.Blur()
	m.CountryInput.Blur()
	m.LanguageInput.Blur()
	m.Results.SetFocused(f == FocusResults)
	m.Favorites.SetFocused(f == FocusFavorites)

	var cmd tea.Cmd
	switch f {
	case FocusTerm:
		cmd = m.TermInput.Focus()
	case FocusCountry:
		cmd = m.CountryInput.Focus()
	case FocusLanguage:
		cmd = m.LanguageInput.Focus()
	}
	m.updateLayout()
	return cmd
}

func (m Model) inputFocused() bool {
	return m.Focus == FocusTerm || m.Focus == FocusCountry || m.Focus == FocusLanguage
}

// focusedList returns the list holding focus, nil when an input has it
func (m Model) focusedList() *components.StationList {
	switch m.Focus {
	case FocusResults:
		return m.Results
	case FocusFavorites:
		return m.Favorites
	default:
		return nil
	}
}
