package domain

import "context"

// DirectoryRepository is the read-only station directory.
//
// All methods are best-effort: failures are logged by the implementation and
// reported as an empty result, so "no matches" and "request failed" look the same.
type DirectoryRepository interface {
	// SearchStations returns one page of stations whose kind field matches filter.
	// The wire offset is (page-1)*pageSize.
	SearchStations(ctx context.Context, filter string, kind FilterKind, page, pageSize int) []Station

	// StationByID returns the station with the given identifier, if any
	StationByID(ctx context.Context, id string) (Station, bool)

	// Countries returns the distinct country names known to the directory
	Countries(ctx context.Context) []string

	// Languages returns the distinct language names known to the directory
	Languages(ctx context.Context) []string

	// CountMatching returns how many stations match, capped at limit
	CountMatching(ctx context.Context, filter string, kind FilterKind, limit int) int
}

// ClickReporter records a play against the directory's click counter
type ClickReporter interface {
	ReportClick(ctx context.Context, id string)
}
