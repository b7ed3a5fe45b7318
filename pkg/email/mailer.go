package email

import (
	"context"

	"github.com/dmitrymomot/relay/pkg/validator"
)

// EmailSender delivers a single message.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams is a provider-neutral message.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	BodyText string `json:"body_text,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

// Validate checks the fields every provider needs.
func (p SendEmailParams) Validate() error {
	return validator.Apply(
		validator.ValidEmail("send_to", p.SendTo),
		validator.RequiredString("subject", p.Subject),
		validator.RequiredString("body_html", p.BodyHTML),
	)
}

// SenderFunc adapts a function to EmailSender.
type SenderFunc func(ctx context.Context, params SendEmailParams) error

func (f SenderFunc) SendEmail(ctx context.Context, params SendEmailParams) error {
	return f(ctx, params)
}
