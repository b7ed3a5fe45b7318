package apikey

import "errors"

var (
	ErrMissingKey   = errors.New("API key is required")
	ErrInvalidKey   = errors.New("Invalid API key") //nolint:staticcheck // client-facing message
	ErrLookupFailed = errors.New("api key lookup failed")
)
