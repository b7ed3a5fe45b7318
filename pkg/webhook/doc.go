// Package webhook delivers JSON events to application callback URLs.
//
// Delivery is a single POST with no retries: callers record the outcome and
// move on.
//
//	sender := webhook.NewSender(cfg, nil)
//	res, err := sender.Send(ctx, app.WebhookURL, payload,
//		webhook.WithHeader("X-Notification-Event", "notification.created"),
//	)
//
// A transport failure is always an error. A non-2xx response is only an
// error when StrictStatus is set; otherwise the status is reported in the
// DeliveryResult and the delivery counts as made.
//
// # Configuration
//
//	WEBHOOK_TIMEOUT          per-request timeout, default 10s
//	WEBHOOK_SIGNING_SECRET   enables signature headers when set
//	WEBHOOK_STRICT_STATUS    treat non-2xx as failure, default false
//	WEBHOOK_USER_AGENT       default relay-webhook/1.0
//
// WithTimeout, WithHeader and WithSignature override these per call.
//
// # Signatures
//
// With a secret configured every request carries X-Webhook-Signature,
// X-Webhook-Timestamp and X-Webhook-ID. The signature is
// hex(HMAC-SHA256(secret, "<unix timestamp>.<body>")). Receivers check it
// with VerifyRequest:
//
//	body, _ := io.ReadAll(r.Body)
//	if err := webhook.VerifyRequest(secret, body, r.Header, 5*time.Minute); err != nil {
//		http.Error(w, "bad signature", http.StatusUnauthorized)
//		return
//	}
//
// # Errors
//
// Send wraps failures in ErrInvalidPayload, ErrInvalidURL, ErrTimeout,
// ErrDeliveryFailed or ErrUnexpectedStatus. VerifyRequest returns
// ErrInvalidSignature.
package webhook
