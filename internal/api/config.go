package api

import "time"

// Config holds HTTP API settings.
type Config struct {
	// Env is the deployment environment; the dev session endpoint only
	// exists in development.
	Env string `env:"APP_ENV" envDefault:"development"`

	// SessionSecret signs dashboard session tokens.
	SessionSecret string        `env:"API_SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"API_SESSION_TTL" envDefault:"24h"`
	SecureCookies bool          `env:"API_SECURE_COOKIES" envDefault:"true"`

	// RateLimit is the sustained request rate per application; zero disables limiting.
	RateLimit float64 `env:"API_RATE_LIMIT" envDefault:"20"`
	RateBurst int     `env:"API_RATE_BURST" envDefault:"40"`

	MaxBodyBytes int64 `env:"API_MAX_BODY_BYTES" envDefault:"1048576"`
}

func (c Config) isDevelopment() bool {
	return c.Env == "development"
}
