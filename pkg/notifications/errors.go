package notifications

import "errors"

// Rejected: the request is malformed or not authorized. Nothing was written.
var (
	ErrInvalidRequest      = errors.New("invalid notification request")
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationInactive = errors.New("application is inactive")
)

// Request-level failures after validation. Rows committed before the failure remain.
var (
	ErrResolveRecipients = errors.New("failed to resolve recipients")
	ErrWriteFailed       = errors.New("failed to write notifications")
)

// Per-recipient failures, reported in results and never returned from a send.
var (
	ErrInvalidRecipient      = errors.New("user_id is required")
	ErrUnresolvableRecipient = errors.New("no email address could be resolved for recipient")
	ErrEmailNotConfigured    = errors.New("email delivery is not configured")
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAppUserNotFound      = errors.New("app user not found")
)
