package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/airwave/internal/domain"
	"github.com/mmcdole/airwave/internal/service"
)

// Command factories for async operations

// LoadCountriesCmd loads the country suggestion options
func LoadCountriesCmd(svc *service.FilterOptionsService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return CountriesLoadedMsg{Countries: svc.Countries(ctx)}
	}
}

// LoadLanguagesCmd loads the language suggestion options
func LoadLanguagesCmd(svc *service.FilterOptionsService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return LanguagesLoadedMsg{Languages: svc.Languages(ctx)}
	}
}

// HydrateFavoritesCmd fetches details for every favorite
func HydrateFavoritesCmd(svc *service.FavoritesService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second) // one lookup per favorite
		defer cancel()

		return FavoritesHydratedMsg{Stations: svc.Hydrate(ctx)}
	}
}

// SearchCmd runs one directory query issued by the search controller
func SearchCmd(ctrl *service.SearchController, req service.SearchRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		stations, ok := ctrl.Execute(ctx, req)
		return SearchResultMsg{Request: req, Stations: stations, OK: ok}
	}
}

// ToggleFavoriteCmd adds or removes a station from favorites
func ToggleFavoriteCmd(svc *service.FavoritesService, station domain.Station) tea.Cmd {
	return func() tea.Msg {
		added, err := svc.Toggle(station.ID)
		if errors.Is(err, domain.ErrInvalidStationID) {
			return ErrMsg{Err: err, Context: "updating favorites"}
		}
		return FavoriteToggledMsg{Station: station, Added: added, Err: err}
	}
}

// PlayStationCmd loads and starts a station
func PlayStationCmd(svc *service.PlaybackService, station domain.Station) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := svc.PlayStation(ctx, station); err != nil {
			return ErrMsg{Err: err, Context: "playing " + station.DisplayName()}
		}
		return PlaybackChangedMsg{}
	}
}

// StopCmd stops playback and forgets the current station
func StopCmd(svc *service.PlaybackService) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Stop(); err != nil {
			return ErrMsg{Err: err, Context: "stopping"}
		}
		return PlaybackChangedMsg{}
	}
}

// TogglePauseCmd pauses or resumes the current station
func TogglePauseCmd(svc *service.PlaybackService) tea.Cmd {
	return func() tea.Msg {
		if _, err := svc.TogglePause(); err != nil {
			return ErrMsg{Err: err, Context: "toggling playback"}
		}
		return PlaybackChangedMsg{}
	}
}

// AdjustVolumeCmd moves the volume by delta percentage points
func AdjustVolumeCmd(svc *service.PlaybackService, delta int) tea.Cmd {
	return func() tea.Msg {
		v, err := svc.AdjustVolume(delta)
		if err != nil {
			return ErrMsg{Err: err, Context: "setting volume"}
		}
		return VolumeChangedMsg{Volume: v}
	}
}

// CheckFilterCmd asks the directory whether a committed filter value has stations
func CheckFilterCmd(svc *service.FilterOptionsService, kind domain.FilterKind, value string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return FilterCheckedMsg{Kind: kind, Value: value, Found: svc.HasStations(ctx, value, kind)}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears the status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
