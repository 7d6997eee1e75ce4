package domain

// Persisted keys in the settings area
const (
	KeyFavorites       = "favoriteRadios"
	KeyCurrentURL      = "actual_radio"
	KeyCurrentName     = "actual_radio_name"
	KeyVolume          = "volume"
	FavoritesSeparator = ","
)

// KeyValueStore is the flat persisted settings area.
// It replaces ad hoc global storage access: every component that persists
// state receives one of these explicitly.
type KeyValueStore interface {
	// Get returns the value for key; absent keys return ("", false)
	Get(key string) (string, bool)

	// Set writes value under key before returning
	Set(key, value string) error

	// Delete removes key; deleting an absent key is not an error
	Delete(key string) error

	Close() error
}
