package domain

// AudioOutput is the single shared audio handle.
// Only the playback service mutates it.
type AudioOutput interface {
	// Load replaces the current source without starting playback
	Load(url string) error

	// Play starts or resumes the loaded source
	Play() error

	// Pause halts playback, keeping the source loaded
	Pause() error

	// Reset stops playback and clears the source
	Reset() error

	// SetVolume sets the output level in the native 0.0-1.0 range
	SetVolume(level float64) error

	// Playing reports whether audio is currently playing
	Playing() bool

	// Loaded reports whether a source is loaded
	Loaded() bool

	Close() error
}
