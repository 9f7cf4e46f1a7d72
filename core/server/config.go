package server

// Config holds configuration for the HTTP control server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the control API. Empty
	// disables authentication.
	ApiKey string `mapstructure:"api_key" default:""`
	// PollIntervalMS is how often the server drains file change
	// notifications into the pipeline.
	PollIntervalMS int `mapstructure:"poll_interval_ms" default:"250"`
}

// PollIntervalMSOrDefault guards against zero and negative intervals.
func (c Config) PollIntervalMSOrDefault() int {
	if c.PollIntervalMS <= 0 {
		return 250
	}
	return c.PollIntervalMS
}
