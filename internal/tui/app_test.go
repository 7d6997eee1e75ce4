package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/airwave/internal/adapter"
	"github.com/mmcdole/airwave/internal/domain"
	"github.com/mmcdole/airwave/internal/service"
	"github.com/mmcdole/airwave/internal/store"
)

// fakeDirectory serves canned stations, one slice per page
type fakeDirectory struct {
	mu        sync.Mutex
	byID      map[string]domain.Station
	pages     map[int][]domain.Station
	countries []string
	languages []string
	count     int

	searches []searchCall
	lookups  int
}

type searchCall struct {
	filter string
	kind   domain.FilterKind
	page   int
}

func (f *fakeDirectory) SearchStations(_ context.Context, filter string, kind domain.FilterKind, page, _ int) []domain.Station {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, searchCall{filter, kind, page})
	return f.pages[page]
}

func (f *fakeDirectory) StationByID(_ context.Context, id string) (domain.Station, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	st, ok := f.byID[id]
	return st, ok
}

func (f *fakeDirectory) Countries(context.Context) []string { return f.countries }
func (f *fakeDirectory) Languages(context.Context) []string { return f.languages }

func (f *fakeDirectory) CountMatching(_ context.Context, _ string, _ domain.FilterKind, limit int) int {
	return min(f.count, limit)
}

func (f *fakeDirectory) ReportClick(context.Context, string) {}

func (f *fakeDirectory) lastSearch(t *testing.T) searchCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.searches)
	return f.searches[len(f.searches)-1]
}

func (f *fakeDirectory) lookupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}

func station(id, name string) domain.Station {
	return domain.Station{
		ID:          id,
		Name:        name,
		Country:     "Brazil",
		CountryCode: "BR",
		URLResolved: "http://stream.example/" + id,
	}
}

func newTestDirectory() *fakeDirectory {
	a, b, c, d := station("a", "Alpha FM"), station("b", "Beta Rock"), station("c", "Gamma Jazz"), station("d", "Delta News")
	return &fakeDirectory{
		byID:      map[string]domain.Station{"a": a, "b": b, "c": c, "d": d},
		pages:     map[int][]domain.Station{1: {a, b}, 2: {c, d}},
		countries: []string{"Brazil", "Germany", "Gabon"},
		languages: []string{"portuguese", "german"},
		count:     1,
	}
}

func newTestModel(t *testing.T, dir *fakeDirectory, favorites string) Model {
	t.Helper()
	kv, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return newTestModelWithStore(t, dir, kv, favorites)
}

func newTestModelWithStore(t *testing.T, dir *fakeDirectory, kv *store.Store, favorites string) Model {
	t.Helper()
	logger := adapter.NullLogger()

	if favorites != "" {
		require.NoError(t, kv.Set(domain.KeyFavorites, favorites))
	}

	output := adapter.NewNullOutput(logger)
	playback := service.NewPlaybackService(output, kv, dir, logger)
	favs := service.NewFavoritesService(kv, dir, playback, logger)
	search := service.NewSearchController(dir, 2, logger)
	options := service.NewFilterOptionsService(dir, kv.Lists("http://directory.test"), time.Hour, logger)

	return NewModel(favs, search, playback, options, Options{WideThreshold: 110, VolumeStep: 5})
}

// drain runs cmd and feeds every resulting message back into the model.
// Timers (ticks, status clears, cursor blinks) are skipped.
func drain(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 200; steps++ {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}

		done := make(chan tea.Msg, 1)
		go func() { done <- c() }()
		var msg tea.Msg
		select {
		case msg = <-done:
		case <-time.After(50 * time.Millisecond):
			continue
		}

		switch msg := msg.(type) {
		case nil, TickMsg, ClearStatusMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, nextCmd := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nextCmd)
		}
	}
	return m
}

func send(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	return drain(next.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = send(m, runes(string(r)))
	}
	return m
}

func resize(m Model, width int) Model {
	return send(m, tea.WindowSizeMsg{Width: width, Height: 40})
}

func TestStartupLoadsOptionsAndFavorites(t *testing.T) {
	dir := newTestDirectory()
	m := newTestModel(t, dir, "b,a")

	m = drain(m, m.Init())
	m = resize(m, 80)

	assert.Equal(t, []string{"Brazil", "Germany", "Gabon"}, m.CountryInput.Options())
	assert.Equal(t, []string{"portuguese", "german"}, m.LanguageInput.Options())

	stations := m.Favorites.Stations()
	require.Len(t, stations, 2)
	assert.Equal(t, "Beta Rock", stations[0].Name, "favorites keep their saved order")
	assert.False(t, m.Favorites.IsLoading())
}

func TestNarrowSearchOpensAndCloses(t *testing.T) {
	dir := newTestDirectory()
	m := resize(newTestModel(t, dir, "a"), 80)
	require.False(t, m.SearchCtl.Wide())
	assert.Equal(t, FocusFavorites, m.Focus)

	m = send(m, runes("f"))
	assert.True(t, m.SearchCtl.Visible())
	assert.Equal(t, FocusTerm, m.Focus)
	assert.Equal(t, []Focus{FocusTerm, FocusCountry, FocusLanguage, FocusResults}, m.focusOrder(),
		"narrow search hides favorites")

	m = typeText(m, "rock")
	last := dir.lastSearch(t)
	assert.Equal(t, searchCall{"rock", domain.FilterName, 1}, last)
	assert.Equal(t, "rock", m.SearchCtl.Filters().Term)

	before := dir.lookupCount()
	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.SearchCtl.Visible())
	assert.True(t, m.SearchCtl.Filters().IsEmpty())
	assert.Equal(t, "", m.TermInput.Value())
	assert.Equal(t, FocusFavorites, m.Focus)
	assert.Greater(t, dir.lookupCount(), before, "closing a narrow search re-fetches favorites")
}

func TestWideLayoutDocksSearch(t *testing.T) {
	dir := newTestDirectory()
	m := resize(newTestModel(t, dir, ""), 120)

	assert.True(t, m.SearchCtl.Wide())
	assert.True(t, m.searchShown())
	assert.True(t, m.favoritesShown())
	assert.Equal(t, searchCall{"", domain.FilterName, 1}, dir.lastSearch(t), "docked search browses without filters")
	assert.Len(t, m.Results.Stations(), 2)

	layout := m.calculatePanelLayout()
	assert.Equal(t, 66, layout.searchWidth)
	assert.Equal(t, 54, layout.favoritesWidth)

	// Narrowing keeps search open full screen
	m = resize(m, 90)
	assert.False(t, m.SearchCtl.Wide())
	assert.Equal(t, 90, m.calculatePanelLayout().searchWidth)
}

func TestResultEnterTogglesFavorite(t *testing.T) {
	dir := newTestDirectory()
	m := resize(newTestModel(t, dir, ""), 120)

	m = send(m, tea.KeyMsg{Type: tea.KeyTab}) // favorites -> term
	require.Equal(t, FocusTerm, m.Focus)
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, FocusResults, m.Focus)

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.FavoritesSvc.Contains("a"))
	require.Len(t, m.Favorites.Stations(), 1)
	assert.Equal(t, "Alpha FM", m.Favorites.Stations()[0].Name)
	assert.Contains(t, m.StatusMsg, "Added Alpha FM")

	m = send(m, runes("x"))
	assert.False(t, m.FavoritesSvc.Contains("a"))
	assert.Empty(t, m.Favorites.Stations())
}

func TestLoadMoreRowAppendsNextPage(t *testing.T) {
	dir := newTestDirectory()
	m := resize(newTestModel(t, dir, ""), 120)
	m.setFocus(FocusResults)

	m = send(m, runes("G"))
	require.True(t, m.Results.OnLoadMore())

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 2, m.SearchCtl.Page())
	assert.Equal(t, searchCall{"", domain.FilterName, 2}, dir.lastSearch(t))
	assert.Len(t, m.Results.Stations(), 4)
}

func TestFavoriteEnterPlaysAndStops(t *testing.T) {
	dir := newTestDirectory()
	m := newTestModel(t, dir, "a")
	m = drain(m, m.Init())
	m = resize(m, 80)

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.PlaybackSvc.IsCurrent("http://stream.example/a"))
	assert.True(t, m.PlaybackSvc.IsPlaying())
	assert.Contains(t, m.View(), "Playing: Alpha FM")

	m = send(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.False(t, m.PlaybackSvc.IsPlaying(), "space pauses")
	assert.True(t, m.PlaybackSvc.IsCurrent("http://stream.example/a"))

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	_, _, ok := m.PlaybackSvc.Current()
	assert.False(t, ok, "enter on the current favorite stops it")
	assert.Contains(t, m.View(), service.NoSelectionName)
}

func TestRemovingPlayingFavoriteStopsPlayback(t *testing.T) {
	dir := newTestDirectory()
	m := newTestModel(t, dir, "a")
	m = drain(m, m.Init())
	m = resize(m, 80)

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.PlaybackSvc.IsPlaying())

	m = send(m, runes("x"))
	_, _, ok := m.PlaybackSvc.Current()
	assert.False(t, ok)
	assert.Empty(t, m.Favorites.Stations())
}

func TestCountryTypingAppliesFilter(t *testing.T) {
	dir := newTestDirectory()
	dir.count = 0
	m := newTestModel(t, dir, "")
	m = drain(m, m.Init())
	m = resize(m, 80)
	m = send(m, runes("f"))
	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, FocusCountry, m.Focus)

	m = typeText(m, "bra")
	assert.Equal(t, searchCall{"bra", domain.FilterCountry, 1}, dir.lastSearch(t), "the filter follows each keystroke")
	assert.Equal(t, []string{"Brazil"}, m.CountryInput.Suggestions())

	m = send(m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Brazil", m.CountryInput.Value())
	assert.Equal(t, "Brazil", m.SearchCtl.Filters().Country)
	assert.Equal(t, searchCall{"Brazil", domain.FilterCountry, 1}, dir.lastSearch(t))
	assert.True(t, m.StatusIsErr, "directory reported no stations for the country")
	assert.Contains(t, m.StatusMsg, `"Brazil"`)
}

func TestTermTakesPrecedenceOverCountry(t *testing.T) {
	dir := newTestDirectory()
	m := resize(newTestModel(t, dir, ""), 120)

	m.setFocus(FocusCountry)
	m = typeText(m, "Germany")
	m.setFocus(FocusTerm)
	m = typeText(m, "jazz")

	assert.Equal(t, searchCall{"jazz", domain.FilterName, 1}, dir.lastSearch(t))
}

func TestSwipeOpensAndClosesSearch(t *testing.T) {
	dir := newTestDirectory()
	m := resize(newTestModel(t, dir, ""), 100)

	drag := func(m Model, from, to int) Model {
		m = send(m, tea.MouseMsg{X: from, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		return send(m, tea.MouseMsg{X: to, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	}

	m = drag(m, 10, 30)
	assert.False(t, m.SearchCtl.Visible(), "a short drag is not a swipe")

	m = drag(m, 10, 60)
	assert.True(t, m.SearchCtl.Visible())

	m = drag(m, 60, 40)
	assert.True(t, m.SearchCtl.Visible())

	m = drag(m, 80, 20)
	assert.False(t, m.SearchCtl.Visible())

	wide := resize(m, 140)
	wide = drag(wide, 120, 10)
	assert.True(t, wide.searchShown(), "docked search ignores swipes")
}

func TestVolumeKeys(t *testing.T) {
	dir := newTestDirectory()
	m := resize(newTestModel(t, dir, ""), 80)

	m = send(m, runes("+"))
	assert.Equal(t, 100, m.PlaybackSvc.Volume(), "volume is capped")

	m = send(m, runes("-"))
	m = send(m, runes("-"))
	assert.Equal(t, 90, m.PlaybackSvc.Volume())
	assert.Equal(t, "Volume 90%", m.StatusMsg)
}

func TestStaleSearchResultIgnored(t *testing.T) {
	dir := newTestDirectory()
	m := resize(newTestModel(t, dir, ""), 120)
	require.Len(t, m.Results.Stations(), 2)

	m = send(m, SearchResultMsg{
		Request:  service.SearchRequest{Token: "long-gone"},
		Stations: []domain.Station{station("z", "Zulu")},
		OK:       true,
	})
	assert.Len(t, m.Results.Stations(), 2)
	for _, s := range m.Results.Stations() {
		assert.NotEqual(t, "z", s.ID)
	}
}

func TestFavoritesFilter(t *testing.T) {
	dir := newTestDirectory()
	m := newTestModel(t, dir, "a,b,c")
	m = drain(m, m.Init())
	m = resize(m, 80)

	m = send(m, runes("/"))
	require.True(t, m.Favorites.IsFilterTyping())
	m = typeText(m, "jaz")

	assert.Equal(t, 1, m.Favorites.StationCount())
	st, ok := m.Favorites.SelectedStation()
	require.True(t, ok)
	assert.Equal(t, "c", st.ID)

	// q is typed into the filter, not treated as quit
	m = send(m, runes("q"))
	assert.True(t, m.Favorites.IsFilterTyping())
	assert.Equal(t, 0, m.Favorites.StationCount())

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Favorites.IsFiltering())
	assert.Equal(t, 3, m.Favorites.StationCount())
}

func TestHelpScreen(t *testing.T) {
	m := resize(newTestModel(t, newTestDirectory(), ""), 80)

	m = send(m, runes("?"))
	assert.Equal(t, StateHelp, m.State)
	assert.True(t, strings.Contains(m.View(), "Find stations"))

	m = send(m, runes("j"))
	assert.Equal(t, StateBrowsing, m.State)
}

func TestViewRendersNowPlaying(t *testing.T) {
	m := resize(newTestModel(t, newTestDirectory(), ""), 80)

	view := m.View()
	assert.Contains(t, view, service.NoSelectionName)
	assert.Contains(t, view, "100%")
	assert.Contains(t, view, "Favorites")
}

func TestFavoriteSaveFailureStillRefreshesPanel(t *testing.T) {
	dir := newTestDirectory()
	kv, err := store.Open(t.TempDir())
	require.NoError(t, err)
	m := newTestModelWithStore(t, dir, kv, "a")
	m = drain(m, m.Init())
	m = resize(m, 80)
	require.Len(t, m.Favorites.Stations(), 1)

	// Writes fail from here on
	require.NoError(t, kv.Close())

	m = send(m, runes("x"))
	assert.False(t, m.FavoritesSvc.Contains("a"))
	assert.Empty(t, m.Favorites.Stations(), "panel follows the in-memory set")
	assert.True(t, m.StatusIsErr)
	assert.Contains(t, m.StatusMsg, "updating favorites")
}
