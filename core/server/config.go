package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitMB caps the size of an uploaded import file.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"32"`
}

// BodyLimitBytes returns the request body limit, falling back to 32 MiB.
func (c Config) BodyLimitBytes() int {
	if c.BodyLimitMB <= 0 {
		return 32 << 20
	}
	return c.BodyLimitMB << 20
}

// AuthEnabled reports whether requests must carry the API key.
func (c Config) AuthEnabled() bool {
	return c.ApiKey != ""
}
