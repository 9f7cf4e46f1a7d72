package cook

// Config holds configuration for cook-on-demand.
type Config struct {
	// Enabled switches on-demand cooking on. Ship builds run with cooked
	// content only and leave this off.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Database is the path of the sqlite cook database. ":memory:" keeps it
	// ephemeral.
	Database string `mapstructure:"database" default:".cache/cook.db"`
}
