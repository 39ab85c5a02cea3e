package platform

// Config holds the security platform API settings.
type Config struct {
	// BaseURL is the API root, e.g. https://api.example.com.
	BaseURL string `mapstructure:"base_url" default:""`
	// Token is sent as a bearer token.
	Token string `mapstructure:"token" default:""`
	// Path is the combined vulnerabilities query endpoint.
	Path string `mapstructure:"path" default:"/spotlight/combined/vulnerabilities/v1"`
	// Filter is passed through as the query filter expression.
	Filter string `mapstructure:"filter" default:""`
	// PageSize is the number of entries requested per page.
	PageSize int `mapstructure:"page_size" default:"500"`
	// MaxRetries bounds retries of a single page on 429 and 5xx responses.
	MaxRetries int `mapstructure:"max_retries" default:"5"`
	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Enabled reports whether a platform endpoint is configured.
func (c Config) Enabled() bool {
	return c.BaseURL != ""
}
