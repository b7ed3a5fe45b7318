package webhook

import "time"

type Config struct {
	// Timeout bounds a single delivery attempt.
	Timeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
	// SigningSecret, when set, adds HMAC-SHA256 signature headers to every request.
	SigningSecret string `env:"WEBHOOK_SIGNING_SECRET"`
	// StrictStatus makes a non-2xx response count as a failed delivery.
	// Off by default: only transport failures are failures.
	StrictStatus bool   `env:"WEBHOOK_STRICT_STATUS" envDefault:"false"`
	UserAgent    string `env:"WEBHOOK_USER_AGENT" envDefault:"relay-webhook/1.0"`
}
