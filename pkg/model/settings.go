package model

// Settings is the small process-wide configuration mutable at runtime by
// GM actions. Loaded once at startup, persisted on every change.
type Settings struct {
	// AllowMultipleGMs controls whether a second GM may join while one is
	// already connected.
	AllowMultipleGMs bool `json:"allowMultipleGMs"`
}

// DefaultSettings returns the documented startup defaults.
func DefaultSettings() Settings {
	return Settings{AllowMultipleGMs: true}
}
