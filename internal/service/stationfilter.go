package service

import (
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/airwave/internal/domain"
)

// stationIndex implements sahilm/fuzzy.Source over folded station names
type stationIndex struct {
	stations []domain.Station
	names    []string
}

func (idx stationIndex) String(i int) string { return idx.names[i] }
func (idx stationIndex) Len() int            { return len(idx.stations) }

// FilterStations fuzzy-matches query against station names and origins,
// best match first. An empty query returns every station in order. The
// result is never nil.
func FilterStations(stations []domain.Station, query string) []domain.Station {
	needle := foldText(query)
	if needle == "" {
		out := make([]domain.Station, len(stations))
		copy(out, stations)
		return out
	}

	idx := stationIndex{stations: stations, names: make([]string, len(stations))}
	for i, st := range stations {
		idx.names[i] = foldText(st.DisplayName() + " " + st.Origin())
	}

	matches := fuzzy.FindFrom(needle, idx)
	out := make([]domain.Station, 0, len(matches))
	for _, m := range matches {
		out = append(out, stations[m.Index])
	}
	return out
}
