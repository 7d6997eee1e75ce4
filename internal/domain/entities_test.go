package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchFiltersActive(t *testing.T) {
	tests := []struct {
		name      string
		filters   SearchFilters
		wantValue string
		wantKind  FilterKind
		wantOK    bool
	}{
		{"all empty", SearchFilters{}, "", FilterName, false},
		{"term wins over country", SearchFilters{Term: "rock", Country: "Brazil"}, "rock", FilterName, true},
		{"country wins over language", SearchFilters{Country: "Brazil", Language: "portuguese"}, "Brazil", FilterCountry, true},
		{"language alone", SearchFilters{Language: "german"}, "german", FilterLanguage, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, kind, ok := tt.filters.Active()
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, !tt.wantOK, tt.filters.IsEmpty())
		})
	}
}

func TestTierForVolume(t *testing.T) {
	assert.Equal(t, VolumeMuted, TierForVolume(0))
	assert.Equal(t, VolumeMuted, TierForVolume(-5))
	assert.Equal(t, VolumeLow, TierForVolume(1))
	assert.Equal(t, VolumeLow, TierForVolume(59))
	assert.Equal(t, VolumeHigh, TierForVolume(60))
	assert.Equal(t, VolumeHigh, TierForVolume(100))
}

func TestStationLabels(t *testing.T) {
	s := Station{Name: "  ", URL: "http://a/pls", Country: "Brazil", CountryCode: "BR", Codec: "MP3", Bitrate: 128}
	assert.Equal(t, "http://a/pls", s.DisplayName())
	assert.Equal(t, "BR-Brazil", s.Origin())
	assert.Equal(t, "MP3 128k", s.Quality())

	s.URLResolved = "http://a/stream"
	assert.Equal(t, "http://a/stream", s.StreamURL())
	assert.Equal(t, "Brazil", Station{Country: "Brazil"}.Origin())
}

func TestFilterKindString(t *testing.T) {
	assert.Equal(t, "name", FilterName.String())
	assert.Equal(t, "country", FilterCountry.String())
	assert.Equal(t, "language", FilterLanguage.String())
}
