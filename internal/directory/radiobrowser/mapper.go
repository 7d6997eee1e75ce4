package radiobrowser

import (
	"strings"

	"github.com/mmcdole/airwave/internal/domain"
)

// MapStations converts directory records to domain stations.
// Records without an identifier cannot be favorited or de-duplicated and are dropped.
func MapStations(records []Station) []domain.Station {
	stations := make([]domain.Station, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.StationUUID) == "" {
			continue
		}
		stations = append(stations, mapStation(r))
	}
	return stations
}

func mapStation(r Station) domain.Station {
	return domain.Station{
		ID:          r.StationUUID,
		Name:        strings.TrimSpace(r.Name),
		Country:     r.Country,
		CountryCode: strings.ToUpper(r.CountryCode),
		URLResolved: r.URLResolved,
		URL:         r.URL,
		Homepage:    r.Homepage,
		Favicon:     r.Favicon,
		Tags:        r.Tags,
		Language:    r.Language,
		Codec:       r.Codec,
		Bitrate:     r.Bitrate,
		Votes:       r.Votes,
	}
}

// MapNames returns the distinct non-blank names, keeping first-seen order
func MapNames(entries []NamedEntry) []string {
	names := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
