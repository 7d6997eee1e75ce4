package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/mmcdole/airwave/internal/domain"
)

// nowPlaying is the slice of the playback service favorites need (consumer-defined interface)
type nowPlaying interface {
	CurrentURL() string
	Stop() error
}

// FavoritesService owns the persisted favorites set and its hydrated station details
type FavoritesService struct {
	kv        domain.KeyValueStore
	directory domain.DirectoryRepository
	player    nowPlaying
	logger    *slog.Logger

	mu       sync.RWMutex
	ids      []string         // insertion order, unique
	stations []domain.Station // last hydration result
	gen      uint64           // hydration generation
}

// NewFavoritesService creates the service and loads the persisted set
func NewFavoritesService(
	kv domain.KeyValueStore,
	directory domain.DirectoryRepository,
	player nowPlaying,
	logger *slog.Logger,
) *FavoritesService {
	if logger == nil {
		logger = slog.Default()
	}

	raw, _ := kv.Get(domain.KeyFavorites)
	ids := ParseFavorites(raw)
	logger.Debug("loaded favorites", "count", len(ids))

	return &FavoritesService{
		kv:        kv,
		directory: directory,
		player:    player,
		logger:    logger,
		ids:       ids,
	}
}

// ParseFavorites splits the persisted form into unique identifiers.
// Empty segments are ignored and the first occurrence of a duplicate wins.
func ParseFavorites(raw string) []string {
	parts := strings.Split(raw, domain.FavoritesSeparator)
	ids := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		ids = append(ids, p)
	}
	return ids
}

// FormatFavorites joins identifiers into the persisted form
func FormatFavorites(ids []string) string {
	return strings.Join(ids, domain.FavoritesSeparator)
}

// Toggle removes id if present, otherwise appends it.
// The whole set is persisted after the change. Removing the station that is
// currently playing also stops playback.
func (s *FavoritesService) Toggle(id string) (added bool, err error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, domain.FavoritesSeparator) {
		return false, domain.ErrInvalidStationID
	}

	s.mu.Lock()
	idx := slices.Index(s.ids, id)
	var removed *domain.Station
	if idx >= 0 {
		s.ids = slices.Delete(slices.Clone(s.ids), idx, idx+1)
		if i := indexStation(s.stations, id); i >= 0 {
			st := s.stations[i]
			removed = &st
			s.stations = slices.Delete(slices.Clone(s.stations), i, i+1)
		}
	} else {
		s.ids = append(slices.Clone(s.ids), id)
		added = true
	}
	serialized := FormatFavorites(s.ids)
	s.mu.Unlock()

	var saveErr error
	if err := s.kv.Set(domain.KeyFavorites, serialized); err != nil {
		s.logger.Error("failed to persist favorites", "error", err)
		saveErr = fmt.Errorf("saving favorites: %w", err)
	} else {
		s.logger.Info("favorite toggled", "stationID", id, "added", added)
	}

	// Player has its own lock; never call it while holding ours
	if removed != nil && s.player != nil {
		current := s.player.CurrentURL()
		if current != "" && current == removed.StreamURL() {
			s.logger.Info("removed favorite was playing, stopping", "stationID", id)
			if err := s.player.Stop(); err != nil {
				return added, errors.Join(saveErr, fmt.Errorf("stopping playback: %w", err))
			}
		}
	}

	return added, saveErr
}

// Contains returns true if id is a favorite
func (s *FavoritesService) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.ids, id)
}

// IDs returns a copy of the favorite identifiers in insertion order
func (s *FavoritesService) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

// Stations returns the most recent hydration result
func (s *FavoritesService) Stations() []domain.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.stations)
}

// Hydrate fetches full details for every favorite, one at a time.
// Identifiers the directory cannot resolve are skipped. The result replaces
// Stations() unless a newer hydration started in the meantime.
func (s *FavoritesService) Hydrate(ctx context.Context) []domain.Station {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	ids := slices.Clone(s.ids)
	s.mu.Unlock()

	stations := make([]domain.Station, 0, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			s.logger.Debug("favorites hydration cancelled", "loaded", len(stations), "total", len(ids))
			return stations
		}
		station, ok := s.directory.StationByID(ctx, id)
		if !ok {
			s.logger.Debug("skipping unresolved favorite", "stationID", id)
			continue
		}
		stations = append(stations, station)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("discarding superseded favorites hydration", "gen", gen, "latest", s.gen)
		return stations
	}

	// Drop anything un-favorited while we were fetching
	current := make([]domain.Station, 0, len(stations))
	for _, st := range stations {
		if slices.Contains(s.ids, st.ID) {
			current = append(current, st)
		}
	}
	s.stations = current
	s.logger.Debug("favorites hydrated", "resolved", len(current), "total", len(ids))
	return slices.Clone(current)
}

func indexStation(stations []domain.Station, id string) int {
	return slices.IndexFunc(stations, func(st domain.Station) bool { return st.ID == id })
}
