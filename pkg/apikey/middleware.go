package apikey

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorHandler writes the response for a rejected request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareOptions struct {
	extractor Extractor
	onError   ErrorHandler
}

type MiddlewareOption func(*middlewareOptions)

func WithExtractor(ex Extractor) MiddlewareOption {
	return func(o *middlewareOptions) { o.extractor = ex }
}

func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(o *middlewareOptions) { o.onError = h }
}

// Middleware authenticates every request and stores the application in the
// request context. Missing and invalid keys get 401; lookup failures 500.
func Middleware(auth *Authenticator, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	o := middlewareOptions{extractor: DefaultExtractor, onError: defaultErrorHandler}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			app, err := auth.Authenticate(r.Context(), o.extractor(r))
			if err != nil {
				o.onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithApplication(r.Context(), app)))
		})
	}
}

// StatusCode maps an authentication error to its HTTP status.
func StatusCode(err error) int {
	if errors.Is(err, ErrMissingKey) || errors.Is(err, ErrInvalidKey) {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	msg := err.Error()
	if errors.Is(err, ErrLookupFailed) {
		msg = "Internal server error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
