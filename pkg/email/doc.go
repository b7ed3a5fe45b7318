// Package email sends transactional mail through Postmark, Amazon SES or a
// plain SMTP relay. A development sender writes messages to disk instead.
//
// The provider is chosen by EMAIL_PROVIDER (postmark, ses, smtp, dev or
// none). New returns ErrEmailDisabled for none, which callers treat as
// "run without email" rather than a failure:
//
//	mailer, err := email.New(ctx, cfg)
//	switch {
//	case errors.Is(err, email.ErrEmailDisabled):
//		// notifications are still stored, send_email is ignored
//	case err != nil:
//		return err
//	}
//
// # Configuration
//
//	EMAIL_FROM, EMAIL_REPLY_TO                     common to every provider
//	POSTMARK_SERVER_TOKEN, POSTMARK_ACCOUNT_TOKEN  postmark
//	AWS_REGION (plus the usual AWS credential chain) ses
//	SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_SECURE smtp
//	EMAIL_DEV_DIR                                  dev, default tmp/emails
//
// Every sender runs SendEmailParams.Validate before contacting its provider,
// so a missing recipient or subject surfaces as validator.ValidationErrors. Provider
// failures are wrapped in ErrFailedToSendEmail and misconfiguration in
// ErrInvalidConfig.
//
// The notifications package renders bodies with the templ components in the
// templates subpackage.
package email
