package webhook

import "errors"

var (
	ErrDeliveryFailed       = errors.New("webhook delivery failed")
	ErrUnexpectedStatus     = errors.New("webhook endpoint returned non-2xx status")
	ErrTimeout              = errors.New("webhook request timeout")
	ErrInvalidURL           = errors.New("invalid webhook URL")
	ErrInvalidPayload       = errors.New("invalid webhook payload")
	ErrInvalidConfiguration = errors.New("invalid webhook configuration")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
)
