package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/relay/pkg/validator"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// bindJSON decodes the request body into v. A missing Content-Type is
// accepted; any other media type is rejected. Unknown fields are ignored.
func bindJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return ErrUnsupportedType
		}
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return ErrBodyTooLarge
		case errors.Is(err, io.EOF):
			return HTTPError{Code: http.StatusBadRequest, Message: "Request body is required"}
		default:
			return fmt.Errorf("%w: %w", HTTPError{Code: http.StatusBadRequest, Message: "Invalid JSON body"}, err)
		}
	}
	return nil
}

// idParam returns the {id} route parameter. Every stored id is a UUID, so
// anything else is rejected before it reaches the store.
func idParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if err := validator.Apply(validator.ValidUUID("id", id)); err != nil {
		return "", errors.Join(ErrBadRequest, err)
	}
	return id, nil
}
