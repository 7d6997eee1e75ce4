package domain

// SearchStatus is the state of the search controller
type SearchStatus int

const (
	SearchIdle SearchStatus = iota
	SearchLoading
	SearchLoaded
)

// String returns a human-readable representation of the status
func (s SearchStatus) String() string {
	switch s {
	case SearchIdle:
		return "Idle"
	case SearchLoading:
		return "Loading"
	case SearchLoaded:
		return "Loaded"
	default:
		return "Unknown"
	}
}

// SearchFilters holds the user's current search inputs.
// The first non-empty one of Term, Country, Language decides the query.
type SearchFilters struct {
	Term     string
	Country  string
	Language string
}

// Active returns the filter value and kind that decide the query.
// ok is false when every filter is empty.
func (f SearchFilters) Active() (value string, kind FilterKind, ok bool) {
	switch {
	case f.Term != "":
		return f.Term, FilterName, true
	case f.Country != "":
		return f.Country, FilterCountry, true
	case f.Language != "":
		return f.Language, FilterLanguage, true
	default:
		return "", FilterName, false
	}
}

// IsEmpty returns true if no filter is set
func (f SearchFilters) IsEmpty() bool {
	_, _, ok := f.Active()
	return !ok
}
