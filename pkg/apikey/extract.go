package apikey

import (
	"net/http"
	"strings"
)

// Extractor pulls a raw API key from a request. It returns "" when absent.
type Extractor func(r *http.Request) string

// FromHeader reads the key from the named header.
func FromHeader(name string) Extractor {
	return func(r *http.Request) string {
		return strings.TrimSpace(r.Header.Get(name))
	}
}

// FromBearer reads the key from an "Authorization: Bearer" header.
func FromBearer() Extractor {
	return func(r *http.Request) string {
		value := r.Header.Get("Authorization")
		if len(value) < 7 || !strings.EqualFold(value[:7], "bearer ") {
			return ""
		}
		return strings.TrimSpace(value[7:])
	}
}

// FromQuery reads the key from the named query parameter.
func FromQuery(param string) Extractor {
	return func(r *http.Request) string {
		return strings.TrimSpace(r.URL.Query().Get(param))
	}
}

// Chain returns the first non-empty key found by extractors, in order.
func Chain(extractors ...Extractor) Extractor {
	return func(r *http.Request) string {
		for _, ex := range extractors {
			if key := ex(r); key != "" {
				return key
			}
		}
		return ""
	}
}

// DefaultExtractor checks X-Api-Key, then a bearer token, then ?api_key=.
var DefaultExtractor = Chain(FromHeader("X-Api-Key"), FromBearer(), FromQuery("api_key"))
