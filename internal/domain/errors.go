package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrDirectoryUnavailable indicates the station directory could not be reached
	ErrDirectoryUnavailable = errors.New("station directory is unreachable")

	// ErrStationNotFound indicates the directory has no station for an identifier
	ErrStationNotFound = errors.New("station not found")

	// ErrInvalidStationID indicates a blank or malformed station identifier
	ErrInvalidStationID = errors.New("invalid station identifier")

	// ErrNoCurrentStation indicates a playback command without a selected station
	ErrNoCurrentStation = errors.New("no station selected")

	// ErrPlayerUnavailable indicates the audio backend could not be started
	ErrPlayerUnavailable = errors.New("audio player is unavailable")
)
