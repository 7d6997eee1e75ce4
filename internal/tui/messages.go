package tui

import (
	"github.com/mmcdole/airwave/internal/domain"
	"github.com/mmcdole/airwave/internal/service"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// CountriesLoadedMsg carries the country suggestion options
type CountriesLoadedMsg struct {
	Countries []string
}

// LanguagesLoadedMsg carries the language suggestion options
type LanguagesLoadedMsg struct {
	Languages []string
}

// FavoritesHydratedMsg signals that favorite details were fetched
type FavoritesHydratedMsg struct {
	Stations []domain.Station
}

// SearchResultMsg carries one directory page for a search request.
// OK is false when the request was superseded before it finished.
type SearchResultMsg struct {
	Request  service.SearchRequest
	Stations []domain.Station
	OK       bool
}

// FavoriteToggledMsg signals a favorite was added or removed. Err is set
// when the set changed in memory but could not be saved.
type FavoriteToggledMsg struct {
	Station domain.Station
	Added   bool
	Err     error
}

// PlaybackChangedMsg signals the playback state changed
type PlaybackChangedMsg struct{}

// VolumeChangedMsg carries the new volume level
type VolumeChangedMsg struct {
	Volume int
}

// FilterCheckedMsg reports whether a committed filter value matches any station
type FilterCheckedMsg struct {
	Kind  domain.FilterKind
	Value string
	Found bool
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
