package radiobrowser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapStationsDropsRecordsWithoutID(t *testing.T) {
	got := MapStations([]Station{
		{StationUUID: "a", Name: "A", CountryCode: "us"},
		{StationUUID: " ", Name: "blank"},
		{Name: "missing"},
	})
	assert.Len(t, got, 1)
	assert.Equal(t, "US", got[0].CountryCode)
}

func TestMapNames(t *testing.T) {
	tests := []struct {
		name    string
		entries []NamedEntry
		want    []string
	}{
		{"nil", nil, []string{}},
		{"trims and drops blanks", []NamedEntry{{Name: " Brazil "}, {Name: ""}}, []string{"Brazil"}},
		{"keeps first-seen order without duplicates", []NamedEntry{{Name: "b"}, {Name: "a"}, {Name: "b"}}, []string{"b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapNames(tt.entries))
		})
	}
}
