package domain

import (
	"fmt"
	"strings"
)

// Station is a single radio stream entry from the directory service.
// Values are produced by the directory client only and never mutated afterwards.
type Station struct {
	ID          string // Directory identifier (stationuuid)
	Name        string // Display name
	Country     string // Country name, e.g. "Brazil"
	CountryCode string // ISO 3166-1 alpha-2 code, e.g. "BR"
	URLResolved string // Resolved stream URL handed to the audio output

	// Fields carried for display and future use
	URL      string // Stream URL as registered (may be a playlist)
	Homepage string
	Favicon  string
	Tags     string // Comma separated
	Language string // Comma separated
	Codec    string // "MP3", "AAC", ...
	Bitrate  int    // kbps, 0 when unknown
	Votes    int
}

// DisplayName returns the station name, falling back to the stream URL
func (s Station) DisplayName() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return s.StreamURL()
}

// StreamURL returns the URL the audio output should load
func (s Station) StreamURL() string {
	if s.URLResolved != "" {
		return s.URLResolved
	}
	return s.URL
}

// Origin returns the "<code>-<country>" label shown next to favorites
func (s Station) Origin() string {
	switch {
	case s.CountryCode != "" && s.Country != "":
		return s.CountryCode + "-" + s.Country
	case s.Country != "":
		return s.Country
	default:
		return s.CountryCode
	}
}

// Quality returns a short codec/bitrate label such as "MP3 128k"
func (s Station) Quality() string {
	switch {
	case s.Codec != "" && s.Bitrate > 0:
		return fmt.Sprintf("%s %dk", s.Codec, s.Bitrate)
	case s.Bitrate > 0:
		return fmt.Sprintf("%dk", s.Bitrate)
	default:
		return s.Codec
	}
}

// FilterKind selects which directory field a search filters on
type FilterKind int

const (
	FilterName FilterKind = iota
	FilterCountry
	FilterLanguage
)

// String returns the directory query-parameter name for the filter
func (k FilterKind) String() string {
	switch k {
	case FilterName:
		return "name"
	case FilterCountry:
		return "country"
	case FilterLanguage:
		return "language"
	default:
		return "unknown"
	}
}

// VolumeTier is the icon band a volume level falls into
type VolumeTier int

const (
	VolumeMuted VolumeTier = iota
	VolumeLow
	VolumeHigh
)

// VolumeHighThreshold is the first level rendered with the "high" icon
const VolumeHighThreshold = 60

// TierForVolume maps a 0-100 volume to its icon band
func TierForVolume(volume int) VolumeTier {
	switch {
	case volume <= 0:
		return VolumeMuted
	case volume < VolumeHighThreshold:
		return VolumeLow
	default:
		return VolumeHigh
	}
}

// String returns a human-readable representation of the tier
func (t VolumeTier) String() string {
	switch t {
	case VolumeMuted:
		return "Muted"
	case VolumeLow:
		return "Low"
	case VolumeHigh:
		return "High"
	default:
		return "Unknown"
	}
}
