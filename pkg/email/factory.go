package email

import (
	"context"
	"fmt"
	"strings"
)

// New builds the sender selected by cfg.Provider. It returns
// ErrEmailDisabled for the "none" provider so callers can run without email.
func New(ctx context.Context, cfg Config) (EmailSender, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderNone:
		return nil, ErrEmailDisabled
	case ProviderPostmark:
		return NewPostmarkSender(cfg)
	case ProviderSES:
		return NewSESSender(ctx, cfg)
	case ProviderSMTP:
		return NewSMTPSender(cfg)
	case ProviderDev:
		return NewDevSender(cfg.DevDir), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

func requireSender(cfg Config) error {
	if cfg.SenderEmail == "" {
		return fmt.Errorf("%w: EMAIL_FROM is required", ErrInvalidConfig)
	}
	if !isEmail(cfg.SenderEmail) {
		return fmt.Errorf("%w: EMAIL_FROM must be a valid email address", ErrInvalidConfig)
	}
	if cfg.ReplyTo != "" && !isEmail(cfg.ReplyTo) {
		return fmt.Errorf("%w: EMAIL_REPLY_TO must be a valid email address", ErrInvalidConfig)
	}
	return nil
}
