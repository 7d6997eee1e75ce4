package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/airwave/internal/service"
	"github.com/mmcdole/airwave/internal/tui/styles"
)

// SuggestInput is a single-line text input with a dropdown of matching
// options underneath (countries, languages).
type SuggestInput struct {
	input       textinput.Model
	label       string
	options     []string
	suggestions []string
	selected    int // -1 when no suggestion is highlighted
	limit       int
	width       int
}

// NewSuggestInput creates an input labelled label with the given placeholder
func NewSuggestInput(label, placeholder string) *SuggestInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 64
	ti.Prompt = "› "
	ti.PromptStyle = styles.PromptStyle
	ti.TextStyle = styles.InputTextStyle
	ti.PlaceholderStyle = styles.DimStyle

	return &SuggestInput{
		input:    ti,
		label:    label,
		selected: -1,
		limit:    service.DefaultSuggestLimit,
	}
}

// Update routes a key to the input. changed is true when the value differs
// afterwards, either from typing or from accepting a suggestion.
func (s *SuggestInput) Update(msg tea.KeyMsg) (cmd tea.Cmd, changed bool) {
	keys := SuggestKeys
	switch {
	case key.Matches(msg, keys.Next) && len(s.suggestions) > 0:
		s.selected = (s.selected + 1) % len(s.suggestions)
		return nil, false
	case key.Matches(msg, keys.Prev) && len(s.suggestions) > 0:
		if s.selected <= 0 {
			s.selected = len(s.suggestions) - 1
		} else {
			s.selected--
		}
		return nil, false
	case key.Matches(msg, keys.Accept) && s.selected >= 0:
		return nil, s.Accept()
	}

	before := s.input.Value()
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() == before {
		return cmd, false
	}
	s.refresh()
	return cmd, true
}

// Accept commits the highlighted suggestion as the value
func (s *SuggestInput) Accept() bool {
	if s.selected < 0 || s.selected >= len(s.suggestions) {
		return false
	}
	choice := s.suggestions[s.selected]
	changed := choice != s.input.Value()
	s.input.SetValue(choice)
	s.input.CursorEnd()
	s.suggestions = nil
	s.selected = -1
	return changed
}

// HasSelection reports whether a suggestion is highlighted
func (s *SuggestInput) HasSelection() bool {
	return s.selected >= 0 && s.selected < len(s.suggestions)
}

func (s *SuggestInput) View() string {
	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render(s.label))
	b.WriteString("\n")
	b.WriteString(s.input.View())

	if !s.input.Focused() {
		return b.String()
	}
	for i, opt := range s.suggestions {
		b.WriteString("\n")
		line := styles.Truncate(opt, max(s.width-4, 4))
		if i == s.selected {
			b.WriteString(styles.SuggestionSelectedStyle.Render(line))
		} else {
			b.WriteString(styles.SuggestionStyle.Render(line))
		}
	}
	return b.String()
}

// Height is the number of lines View renders
func (s *SuggestInput) Height() int {
	h := 2
	if s.input.Focused() {
		h += len(s.suggestions)
	}
	return h
}

func (s *SuggestInput) SetWidth(width int) {
	s.width = width
	s.input.Width = max(width-4, 1)
}

// SetOptions replaces the candidate list and recomputes suggestions
func (s *SuggestInput) SetOptions(options []string) {
	s.options = options
	s.refresh()
}

func (s *SuggestInput) Options() []string {
	return s.options
}

func (s *SuggestInput) Suggestions() []string {
	return s.suggestions
}

func (s *SuggestInput) Value() string {
	return s.input.Value()
}

func (s *SuggestInput) SetValue(v string) {
	s.input.SetValue(v)
	s.suggestions = nil
	s.selected = -1
}

func (s *SuggestInput) Focus() tea.Cmd {
	cmd := s.input.Focus()
	s.refresh()
	return cmd
}

func (s *SuggestInput) Blur() {
	s.input.Blur()
	s.selected = -1
}

func (s *SuggestInput) Focused() bool {
	return s.input.Focused()
}

func (s *SuggestInput) refresh() {
	s.selected = -1
	s.suggestions = service.Suggest(s.options, s.input.Value(), s.limit)
	// An exact pick needs no dropdown
	if len(s.suggestions) == 1 && strings.EqualFold(s.suggestions[0], s.input.Value()) {
		s.suggestions = nil
	}
}
