package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DeliveryResult describes the single attempt made by Send.
type DeliveryResult struct {
	StatusCode int
	Duration   time.Duration
}

// Sender posts JSON payloads to subscriber URLs. One attempt per call, never retried.
type Sender struct {
	client *http.Client
	cfg    Config
}

// NewSender builds a Sender with a pooled transport. A nil client selects the default.
func NewSender(cfg Config, client *http.Client) *Sender {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "relay-webhook/1.0"
	}
	return &Sender{client: client, cfg: cfg}
}

// Send marshals data to JSON and POSTs it to webhookURL.
//
// A transport error (connection refused, DNS, timeout) is always returned.
// The response status is only checked when the sender is configured with
// StrictStatus; otherwise any response counts as delivered.
func (s *Sender) Send(ctx context.Context, webhookURL string, data any, opts ...SendOption) (DeliveryResult, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := validateURL(webhookURL); err != nil {
		return DeliveryResult{}, err
	}

	o := sendOptions{timeout: s.cfg.Timeout, secret: s.cfg.SigningSecret, headers: map[string]string{}}
	for _, opt := range opts {
		opt(&o)
	}

	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}
	if o.secret != "" {
		sig, err := SignPayload(o.secret, payload)
		if err != nil {
			return DeliveryResult{}, err
		}
		for k, v := range sig.Headers() {
			req.Header.Set(k, v)
		}
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	result := DeliveryResult{Duration: time.Since(start)}
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return result, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()
	result.StatusCode = resp.StatusCode

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if s.cfg.StrictStatus && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return result, fmt.Errorf("%w: %s", ErrUnexpectedStatus, statusMessage(resp.StatusCode, body))
	}
	return result, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}

// statusMessage keeps response bodies short and single-line for logs.
func statusMessage(code int, body []byte) string {
	msg := fmt.Sprintf("status %d", code)
	if len(body) == 0 {
		return msg
	}
	s := strings.ReplaceAll(string(body), "\n", " ")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return msg + ": " + s
}
