package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mozillazg/go-unidecode"

	"github.com/mmcdole/airwave/internal/domain"
)

const (
	// DefaultSuggestLimit caps the suggestion list under a filter input
	DefaultSuggestLimit = 10

	listCountries = "countries"
	listLanguages = "languages"
)

// listCache stores option lists between runs (consumer-defined interface)
type listCache interface {
	Get(name string, maxAge time.Duration) ([]string, bool)
	Save(name string, items []string) error
}

// FilterOptionsService provides the country and language option lists
type FilterOptionsService struct {
	directory domain.DirectoryRepository
	cache     listCache
	ttl       time.Duration
	logger    *slog.Logger
}

// NewFilterOptionsService creates the service. cache may be nil.
func NewFilterOptionsService(
	directory domain.DirectoryRepository,
	cache listCache,
	ttl time.Duration,
	logger *slog.Logger,
) *FilterOptionsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilterOptionsService{
		directory: directory,
		cache:     cache,
		ttl:       ttl,
		logger:    logger,
	}
}

// Countries returns every country name known to the directory
func (s *FilterOptionsService) Countries(ctx context.Context) []string {
	return s.list(ctx, listCountries, s.directory.Countries)
}

// Languages returns every language name known to the directory
func (s *FilterOptionsService) Languages(ctx context.Context) []string {
	return s.list(ctx, listLanguages, s.directory.Languages)
}

func (s *FilterOptionsService) list(ctx context.Context, name string, fetch func(context.Context) []string) []string {
	if s.cache != nil {
		if items, ok := s.cache.Get(name, s.ttl); ok {
			s.logger.Debug("option list cache hit", "list", name, "count", len(items))
			return items
		}
	}

	items := fetch(ctx)
	if len(items) == 0 {
		// Don't cache a failed fetch
		return items
	}

	if s.cache != nil {
		if err := s.cache.Save(name, items); err != nil {
			s.logger.Warn("failed to cache option list", "list", name, "error", err)
		}
	}
	s.logger.Debug("option list fetched", "list", name, "count", len(items))
	return items
}

// HasStations returns true if at least one station matches value on kind
func (s *FilterOptionsService) HasStations(ctx context.Context, value string, kind domain.FilterKind) bool {
	return s.directory.CountMatching(ctx, value, kind, 1) > 0
}

// foldText lowercases and strips accents ("São Tomé" -> "sao tome")
func foldText(s string) string {
	return strings.ToLower(unidecode.Unidecode(s))
}

// Suggest returns options matching value for a searchable input.
// Substring hits come first in option order; remaining slots are filled
// with fuzzy matches, best first.
func Suggest(options []string, value string, limit int) []string {
	needle := foldText(strings.TrimSpace(value))
	if needle == "" || len(options) == 0 {
		return nil
	}
	if limit < 1 {
		limit = DefaultSuggestLimit
	}

	folded := make([]string, len(options))
	for i, opt := range options {
		folded[i] = foldText(opt)
	}

	out := make([]string, 0, limit)
	taken := make(map[int]bool)
	for i, f := range folded {
		if len(out) == limit {
			return out
		}
		if strings.Contains(f, needle) {
			out = append(out, options[i])
			taken[i] = true
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(needle, folded)
	sort.Stable(ranks)
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		if taken[r.OriginalIndex] {
			continue
		}
		out = append(out, options[r.OriginalIndex])
		taken[r.OriginalIndex] = true
	}
	return out
}
