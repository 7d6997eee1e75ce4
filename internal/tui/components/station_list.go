package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/airwave/internal/domain"
	"github.com/mmcdole/airwave/internal/service"
	"github.com/mmcdole/airwave/internal/tui/styles"
)

// Spinner frames for loading animation
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Layout constants for station lists
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// LoadMoreLabel is the trailing row that requests the next page
const LoadMoreLabel = "Load more"

// RowMarker returns the leading glyph drawn for a station row
type RowMarker func(domain.Station) styles.RowPart

// RowDetail returns the dimmed trailing text drawn for a station row
type RowDetail func(domain.Station) string

// StationList is a scrollable, filterable list of stations with an optional
// "load more" row at the end.
type StationList struct {
	stations []domain.Station

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title       string
	emptyText   string
	marker      RowMarker
	detail      RowDetail
	showMore    bool
	loading     bool
	spinnerTick int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	matches      []domain.Station
}

// NewStationList creates an empty list with the given title
func NewStationList(title string, marker RowMarker, detail RowDetail) *StationList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &StationList{
		title:       title,
		emptyText:   "No stations",
		marker:      marker,
		detail:      detail,
		filterInput: ti,
	}
}

// Update handles navigation and filter typing. It returns true when the
// key was consumed.
func (l *StationList) Update(msg tea.KeyMsg) (tea.Cmd, bool) {
	if !l.focused {
		return nil, false
	}

	if l.filterActive && l.filterInput.Focused() {
		switch msg.String() {
		case "esc":
			l.clearFilter()
			return nil, true
		case "enter":
			l.filterInput.Blur()
			return nil, true
		case "backspace":
			if l.filterInput.Value() == "" {
				l.clearFilter()
				return nil, true
			}
		}

		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd, true
	}

	if l.filterActive && msg.String() == "esc" {
		l.clearFilter()
		return nil, true
	}

	count := l.RowCount()
	keys := ListKeys
	switch {
	case key.Matches(msg, keys.Filter):
		l.StartFilter()
		return nil, true
	case count == 0:
		return nil, false
	case key.Matches(msg, keys.Down):
		if l.cursor < count-1 {
			l.cursor++
			l.ensureVisible()
		}
	case key.Matches(msg, keys.Up):
		if l.cursor > 0 {
			l.cursor--
			l.ensureVisible()
		}
	case key.Matches(msg, keys.Home):
		l.cursor = 0
		l.offset = 0
	case key.Matches(msg, keys.End):
		l.cursor = count - 1
		l.ensureVisible()
	case key.Matches(msg, keys.HalfDown):
		l.cursor = min(l.cursor+l.maxVisible/2, count-1)
		l.ensureVisible()
	case key.Matches(msg, keys.HalfUp):
		l.cursor = max(l.cursor-l.maxVisible/2, 0)
		l.ensureVisible()
	default:
		return nil, false
	}
	return nil, true
}

func (l *StationList) View() string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(l.width-frameW, 0)).
		Height(max(l.height-frameH, 0)).
		Render(l.renderContent())
}

func (l *StationList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

func (l *StationList) SetFocused(focused bool) {
	l.focused = focused
	if !focused {
		l.filterInput.Blur()
	}
}

func (l *StationList) SetTitle(title string) {
	l.title = title
}

func (l *StationList) SetEmptyText(text string) {
	l.emptyText = text
}

// SetStations replaces the list content, keeping the cursor in range and
// re-applying an active filter.
func (l *StationList) SetStations(stations []domain.Station) {
	l.stations = stations
	if l.filterActive {
		l.applyFilter()
	}
	l.clampCursor()
}

func (l *StationList) Stations() []domain.Station {
	return l.stations
}

// SetShowLoadMore toggles the trailing "load more" row
func (l *StationList) SetShowLoadMore(show bool) {
	l.showMore = show
	l.clampCursor()
}

func (l *StationList) SetLoading(loading bool) {
	l.loading = loading
}

func (l *StationList) IsLoading() bool {
	return l.loading
}

// Tick advances the loading spinner
func (l *StationList) Tick() {
	l.spinnerTick++
}

// StationCount is the number of station rows currently shown
func (l *StationList) StationCount() int {
	if l.matches != nil {
		return len(l.matches)
	}
	return len(l.stations)
}

// RowCount includes the "load more" row when present
func (l *StationList) RowCount() int {
	n := l.StationCount()
	if l.loadMoreVisible() {
		n++
	}
	return n
}

// SelectedStation returns the station under the cursor
func (l *StationList) SelectedStation() (domain.Station, bool) {
	if l.cursor < 0 || l.cursor >= l.StationCount() {
		return domain.Station{}, false
	}
	return l.stationAt(l.cursor), true
}

// OnLoadMore reports whether the cursor rests on the "load more" row
func (l *StationList) OnLoadMore() bool {
	return l.loadMoreVisible() && l.cursor == l.StationCount()
}

// StartFilter opens the filter bar and focuses it
func (l *StationList) StartFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

func (l *StationList) IsFiltering() bool {
	return l.filterActive
}

// IsFilterTyping returns true if the filter bar has keyboard focus
func (l *StationList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

func (l *StationList) ClearFilter() {
	l.clearFilter()
}

// Internal methods

func (l *StationList) loadMoreVisible() bool {
	return l.showMore && !l.filterActive && len(l.stations) > 0
}

func (l *StationList) stationAt(i int) domain.Station {
	if l.matches != nil {
		return l.matches[i]
	}
	return l.stations[i]
}

func (l *StationList) clampCursor() {
	count := l.RowCount()
	if l.cursor >= count {
		l.cursor = count - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	if l.offset > l.cursor {
		l.offset = l.cursor
	}
}

func (l *StationList) recalcMaxVisible() {
	// Interior height minus title line and scroll indicators
	l.maxVisible = l.height - BorderHeight - ScrollIndicatorLines - 1
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *StationList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *StationList) clearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.matches = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
	l.clampCursor()
}

func (l *StationList) applyFilter() {
	query := l.filterInput.Value()
	changed := query != l.filterQuery
	l.filterQuery = query

	if query == "" {
		l.matches = nil
		l.clampCursor()
		return
	}

	l.matches = service.FilterStations(l.stations, query)
	if changed {
		l.cursor = 0
		l.offset = 0
	}
	l.clampCursor()
}

// Rendering

func (l *StationList) renderContent() string {
	itemWidth := max(l.width-BorderWidth, 10)

	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))

	if l.loading && len(l.stations) == 0 {
		spinner := SpinnerFrames[l.spinnerTick%len(SpinnerFrames)]
		loadingLine := styles.DimStyle.Render(spinner + " Loading...")
		return titleLine + "\n \n" + loadingLine + "\n "
	}

	count := l.RowCount()
	if count == 0 {
		emptyMsg := styles.DimStyle.Render(l.emptyText)
		if l.filterActive && l.filterQuery != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		content := titleLine + "\n \n" + emptyMsg + "\n "
		if l.filterActive {
			content += "\n" + l.renderFilterBar()
		}
		return content
	}

	end := min(l.offset+l.maxVisible, count)
	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		selected := l.focused && i == l.cursor
		if i == l.StationCount() {
			lines = append(lines, l.renderLoadMore(selected, itemWidth))
			continue
		}
		lines = append(lines, l.renderStation(l.stationAt(i), selected, itemWidth))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}
	return content
}

func (l *StationList) renderStation(s domain.Station, selected bool, width int) string {
	var parts []styles.RowPart
	used := 2 // row margins

	if l.marker != nil {
		m := l.marker(s)
		m.Text += " "
		parts = append(parts, m)
		used += lipgloss.Width(m.Text)
	}

	detail := ""
	if l.detail != nil {
		detail = l.detail(s)
	}

	nameWidth := width - used
	if detail != "" {
		nameWidth -= lipgloss.Width(detail) + 1
	}
	if nameWidth < 8 {
		// Too narrow for both, drop the detail
		nameWidth = width - used
		detail = ""
	}

	name := styles.Truncate(s.DisplayName(), nameWidth)
	parts = append(parts, styles.RowPart{Text: styles.Pad(name, nameWidth)})
	if detail != "" {
		dim := styles.DimGray
		parts = append(parts, styles.RowPart{Text: " " + detail, Foreground: &dim})
	}

	return styles.RenderListRow(parts, selected, width)
}

func (l *StationList) renderLoadMore(selected bool, width int) string {
	label := LoadMoreLabel
	if l.loading {
		label = SpinnerFrames[l.spinnerTick%len(SpinnerFrames)] + " Loading..."
	}
	amber := styles.Amber
	return styles.RenderListRow([]styles.RowPart{{Text: label, Foreground: &amber}}, selected, width)
}

func (l *StationList) renderFilterBar() string {
	input := l.filterInput.View()
	if l.filterQuery == "" {
		return input
	}
	return input + styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", l.StationCount(), len(l.stations)))
}
