package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type smtpSender struct {
	cfg  Config
	addr string
}

// NewSMTPSender sends through a plain SMTP relay. Port 465 or SMTP_SECURE
// selects implicit TLS; otherwise STARTTLS is used when the server offers it.
func NewSMTPSender(cfg Config) (EmailSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTP_HOST is required", ErrInvalidConfig)
	}
	if cfg.SMTPPort <= 0 {
		return nil, fmt.Errorf("%w: SMTP_PORT must be positive", ErrInvalidConfig)
	}
	if err := requireSender(cfg); err != nil {
		return nil, err
	}
	if cfg.SMTPPort == 465 {
		cfg.SMTPSecure = true
	}
	return &smtpSender{cfg: cfg, addr: net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort))}, nil
}

func (s *smtpSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	msg, err := buildMessage(s.cfg.SenderEmail, s.cfg.ReplyTo, params, time.Now())
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if err := s.deliver(ctx, params.SendTo, msg); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	return nil
}

func (s *smtpSender) deliver(ctx context.Context, to string, msg []byte) error {
	dialer := &net.Dialer{}
	var conn net.Conn
	var err error
	if s.cfg.SMTPSecure {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.cfg.SMTPHost}}).DialContext(ctx, "tcp", s.addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", s.addr)
	}
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("handshake: %w", err)
	}
	defer client.Close()

	if !s.cfg.SMTPSecure {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.cfg.SMTPHost}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if s.cfg.SMTPUser != "" && s.cfg.SMTPPass != "" {
		if err := client.Auth(smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := client.Mail(s.cfg.SenderEmail); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return client.Quit()
}

// buildMessage renders a multipart/alternative message with an optional text part.
func buildMessage(from, replyTo string, p SendEmailParams, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct{ ctype, content string }{
		{"text/plain; charset=UTF-8", p.BodyText},
		{"text/html; charset=UTF-8", p.BodyHTML},
	}
	for _, part := range parts {
		if part.content == "" {
			continue
		}
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.ctype},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&msg, "%s: %s\r\n", k, v) }
	header("From", from)
	header("To", p.SendTo)
	if replyTo != "" {
		header("Reply-To", replyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", p.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@relay>", uuid.NewString()))
	header("MIME-Version", "1.0")
	if p.Tag != "" {
		header("X-Tag", p.Tag)
	}
	header("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
