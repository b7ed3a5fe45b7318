package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/relay/pkg/validator"
)

type postmarkSender struct {
	client *postmark.Client
	cfg    Config
}

// NewPostmarkSender creates a Postmark-backed sender. Only the server token
// is needed for transactional sends.
func NewPostmarkSender(cfg Config) (EmailSender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: POSTMARK_SERVER_TOKEN is required", ErrInvalidConfig)
	}
	if err := requireSender(cfg); err != nil {
		return nil, err
	}
	return &postmarkSender{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		cfg:    cfg,
	}, nil
}

func (s *postmarkSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       s.cfg.SenderEmail,
		ReplyTo:    s.cfg.ReplyTo,
		To:         params.SendTo,
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TextBody:   params.BodyText,
		TrackOpens: false,
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSendEmail, fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message))
	}
	return nil
}

func isEmail(s string) bool {
	return validator.Apply(validator.ValidEmail("email", s)) == nil
}
