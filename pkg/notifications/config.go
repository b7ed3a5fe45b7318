package notifications

import "time"

// Config sizes the fan-out and bounds each external call.
type Config struct {
	// PageSize is the number of directory entries read per broadcast page.
	PageSize int `env:"NOTIFY_PAGE_SIZE" envDefault:"1000"`
	// BatchSize is the number of rows per atomic insert.
	BatchSize int `env:"NOTIFY_BATCH_SIZE" envDefault:"500"`

	StoreTimeout   time.Duration `env:"NOTIFY_STORE_TIMEOUT" envDefault:"10s"`
	EmailTimeout   time.Duration `env:"NOTIFY_EMAIL_TIMEOUT" envDefault:"15s"`
	WebhookTimeout time.Duration `env:"NOTIFY_WEBHOOK_TIMEOUT" envDefault:"10s"`
}

func DefaultConfig() Config {
	return Config{
		PageSize:       1000,
		BatchSize:      500,
		StoreTimeout:   10 * time.Second,
		EmailTimeout:   15 * time.Second,
		WebhookTimeout: 10 * time.Second,
	}
}

// sanitized replaces non-positive values with defaults.
func (c Config) sanitized() Config {
	d := DefaultConfig()
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = d.StoreTimeout
	}
	if c.EmailTimeout <= 0 {
		c.EmailTimeout = d.EmailTimeout
	}
	if c.WebhookTimeout <= 0 {
		c.WebhookTimeout = d.WebhookTimeout
	}
	return c
}
