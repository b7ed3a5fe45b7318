package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/relay/pkg/apikey"
	"github.com/dmitrymomot/relay/pkg/logger"
	"github.com/dmitrymomot/relay/pkg/notifications"
	"github.com/dmitrymomot/relay/pkg/validator"
)

// HTTPError is an error with a status code and a client-facing message.
type HTTPError struct {
	Code    int
	Message string
}

func (e HTTPError) Error() string {
	return e.Message
}

var (
	ErrBadRequest      = HTTPError{Code: http.StatusBadRequest, Message: "Invalid request"}
	ErrUnauthorized    = HTTPError{Code: http.StatusUnauthorized, Message: "Not authenticated"}
	ErrNotFound        = HTTPError{Code: http.StatusNotFound, Message: "Not found"}
	ErrTooManyRequests = HTTPError{Code: http.StatusTooManyRequests, Message: "Too many requests"}
	ErrUnsupportedType = HTTPError{Code: http.StatusUnsupportedMediaType, Message: "Content-Type must be application/json"}
	ErrBodyTooLarge    = HTTPError{Code: http.StatusRequestEntityTooLarge, Message: "Request body too large"}
	ErrInternal        = HTTPError{Code: http.StatusInternalServerError, Message: "Internal server error"}
)

// errorInfo is the classified form of an error.
type errorInfo struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
	LogLevel   slog.Level
}

// classifyError maps domain and transport errors to a response.
func classifyError(err error) errorInfo {
	info := errorInfo{StatusCode: http.StatusInternalServerError, Message: ErrInternal.Message}

	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		info.StatusCode, info.Message = httpErr.Code, httpErr.Message
	case errors.Is(err, notifications.ErrInvalidRequest):
		info.StatusCode, info.Message = ErrBadRequest.Code, ErrBadRequest.Message
	case errors.Is(err, notifications.ErrApplicationNotFound):
		info.StatusCode, info.Message = http.StatusNotFound, "Application not found"
	case errors.Is(err, notifications.ErrApplicationInactive):
		info.StatusCode, info.Message = http.StatusForbidden, "Application is inactive"
	case errors.Is(err, notifications.ErrNotificationNotFound):
		info.StatusCode, info.Message = http.StatusNotFound, "Notification not found"
	case errors.Is(err, apikey.ErrMissingKey), errors.Is(err, apikey.ErrInvalidKey):
		info.StatusCode, info.Message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, notifications.ErrResolveRecipients):
		info.Message = "Failed to resolve recipients"
	case errors.Is(err, notifications.ErrWriteFailed):
		info.Message = "Failed to create notifications"
	}

	if ve := validator.ExtractValidationErrors(err); ve != nil {
		info.StatusCode = http.StatusBadRequest
		info.Message = "Validation failed"
		info.Fields = ve.Map()
	}

	info.LogLevel = slog.LevelError
	if info.StatusCode < http.StatusInternalServerError {
		info.LogLevel = slog.LevelWarn
	}
	return info
}

type errorResponse struct {
	OK      bool                `json:"ok"`
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// writeError logs err and writes the JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	info := classifyError(err)

	s.log.LogAttrs(r.Context(), info.LogLevel, "request error",
		logger.Error(err),
		slog.Int("status_code", info.StatusCode),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		logger.Component("api"),
	)

	writeJSON(w, info.StatusCode, errorResponse{Error: info.Message, Fields: info.Fields})
}
