package config

const (
	// DefaultTimeoutMs is the default request timeout in milliseconds
	DefaultTimeoutMs = 30000
	// DefaultMaxRedirects is the default number of redirects to follow
	DefaultMaxRedirects = 10
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:         DefaultTimeoutMs,
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    DefaultMaxRedirects,
		ValidateSSL:     BoolPtr(true),
		PrettyBody:      BoolPtr(true),
		NoColor:         BoolPtr(false),
	}
}
