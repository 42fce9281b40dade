package driven

// ConfigStore reads and writes application settings as dotted keys
// ("vault.root", "chunking.max_tokens"). The file-backed implementation
// maps the dots onto nested TOML tables; typed getters absorb the sloppy
// typing a decoded config file produces.
type ConfigStore interface {
	// Get returns the raw value under key and whether the key exists.
	Get(key string) (any, bool)

	// GetString returns the value under key, or "" when absent or not
	// a string.
	GetString(key string) string

	// GetInt returns the value under key, or 0 when absent or not an
	// integer. Implementations accept the integer widths their decoder
	// produces (TOML loads whole numbers as int64).
	GetInt(key string) int

	// GetBool returns the value under key, or false when absent or not
	// a bool.
	GetBool(key string) bool

	// GetStringSlice returns the value under key, or nil when absent
	// or not a slice of strings.
	GetStringSlice(key string) []string

	// Set stores a value under key and persists it.
	Set(key string, value any) error

	// Save writes the current values to backing storage.
	Save() error

	// Load replaces the current values with those in backing storage.
	Load() error

	// Path names the backing file, for display in status output.
	Path() string
}
