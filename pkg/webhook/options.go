package webhook

import "time"

type sendOptions struct {
	timeout time.Duration
	headers map[string]string
	secret  string
}

// SendOption adjusts a single Send call.
type SendOption func(*sendOptions)

// WithTimeout overrides the configured timeout for one call.
func WithTimeout(d time.Duration) SendOption {
	return func(o *sendOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHeader adds a request header. Empty keys or values are ignored.
func WithHeader(key, value string) SendOption {
	return func(o *sendOptions) {
		if key != "" && value != "" {
			o.headers[key] = value
		}
	}
}

// WithSignature signs the request with secret instead of the configured one.
func WithSignature(secret string) SendOption {
	return func(o *sendOptions) {
		o.secret = secret
	}
}
