package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/relay/pkg/email"
	"github.com/dmitrymomot/relay/pkg/email/templates"
	"github.com/dmitrymomot/relay/pkg/logger"
	"github.com/dmitrymomot/relay/pkg/webhook"
)

// Webhook events.
const (
	EventCreated          = "notification.created"
	EventBroadcastCreated = "notification.broadcast_created"
	EventBulkCreated      = "notification.bulk_created"
)

// Webhook request headers.
const (
	HeaderEvent = "X-Notification-Event"
	HeaderAppID = "X-Notification-App-Id"
)

// WebhookSender posts a JSON payload to a URL.
type WebhookSender interface {
	Send(ctx context.Context, url string, data any, opts ...webhook.SendOption) (webhook.DeliveryResult, error)
}

// Outcome is the result of one side-effect attempt. A zero Outcome means
// nothing was attempted.
type Outcome struct {
	Attempted bool
	Err       error
}

func (o Outcome) Delivered() bool {
	return o.Attempted && o.Err == nil
}

// DeliveryResult reports what happened to one targeted recipient.
type DeliveryResult struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
	Inserted       bool   `json:"inserted"`
	Emailed        bool   `json:"emailed"`
	EmailError     string `json:"email_error,omitempty"`
	WebhookSent    *bool  `json:"webhook_sent,omitempty"`
	WebhookError   string `json:"webhook_error,omitempty"`
	Error          string `json:"error,omitempty"`
}

// setWebhook records a webhook outcome; unattempted webhooks leave the fields empty.
func (r *DeliveryResult) setWebhook(o Outcome) {
	if !o.Attempted {
		return
	}
	sent := o.Err == nil
	r.WebhookSent = &sent
	if o.Err != nil {
		r.WebhookError = o.Err.Error()
	}
}

// Dispatcher performs email and webhook side effects. Each attempt is made
// once under its own timeout and its failure is returned as data.
type Dispatcher struct {
	mailer   email.EmailSender
	hooks    WebhookSender
	cfg      Config
	log      *slog.Logger
	observer Observer
}

// NewDispatcher creates a Dispatcher. A nil mailer disables email and a nil
// hooks sender disables webhooks.
func NewDispatcher(mailer email.EmailSender, hooks WebhookSender, cfg Config, log *slog.Logger, observer Observer) *Dispatcher {
	if log == nil {
		log = logger.Discard()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Dispatcher{mailer: mailer, hooks: hooks, cfg: cfg.sanitized(), log: log, observer: observer}
}

// Email sends n to address. An empty address is ErrUnresolvableRecipient;
// a missing mailer is ErrEmailNotConfigured. Neither is attempted.
func (d *Dispatcher) Email(ctx context.Context, app *Application, address string, n Notification) Outcome {
	if address == "" {
		return Outcome{Err: ErrUnresolvableRecipient}
	}
	if d.mailer == nil {
		return Outcome{Err: ErrEmailNotConfigured}
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.EmailTimeout)
	defer cancel()

	html, err := templates.Render(ctx, templates.Notification(n.Title, app.Name, n.Message))
	if err == nil {
		err = d.mailer.SendEmail(ctx, email.SendEmailParams{
			SendTo:   address,
			Subject:  n.Title,
			BodyHTML: html,
			BodyText: templates.NotificationText(n.Title, app.Name, n.Message),
			Tag:      "notification",
		})
	}

	d.observer.EmailAttempted(app.ID, err)
	if err != nil {
		d.log.LogAttrs(ctx, slog.LevelWarn, "notification email failed",
			logger.AppID(app.ID),
			logger.UserID(n.UserID),
			logger.NotificationID(n.ID),
			logger.Error(err),
		)
	}
	return Outcome{Attempted: true, Err: err}
}

// Webhook posts payload to the application's webhook URL, if it has one.
func (d *Dispatcher) Webhook(ctx context.Context, app *Application, event string, payload any) Outcome {
	if app.WebhookURL == "" || d.hooks == nil {
		return Outcome{}
	}

	_, err := d.hooks.Send(ctx, app.WebhookURL, payload,
		webhook.WithTimeout(d.cfg.WebhookTimeout),
		webhook.WithHeader(HeaderEvent, event),
		webhook.WithHeader(HeaderAppID, app.ID),
	)

	d.observer.WebhookAttempted(app.ID, event, err)
	if err != nil {
		d.log.LogAttrs(ctx, slog.LevelWarn, "notification webhook failed",
			logger.AppID(app.ID),
			logger.Event(event),
			logger.Error(err),
		)
	}
	return Outcome{Attempted: true, Err: err}
}

// DeliverOne runs the side effects for one persisted targeted notification:
// the notification.created webhook, then the email when requested.
func (d *Dispatcher) DeliverOne(ctx context.Context, app *Application, n Notification, address string, sendEmail bool) DeliveryResult {
	res := DeliveryResult{
		UserID:         n.UserID,
		Email:          address,
		NotificationID: n.ID,
		Inserted:       true,
	}

	res.setWebhook(d.Webhook(ctx, app, EventCreated, createdEvent{
		Event:        EventCreated,
		Notification: n,
	}))

	if sendEmail {
		o := d.Email(ctx, app, address, n)
		res.Emailed = o.Delivered()
		if o.Err != nil {
			res.EmailError = o.Err.Error()
		}
	}
	return res
}

// EmailBatch emails every notification in created using the addresses in
// emails, keyed by user id. Missing addresses count as failures.
func (d *Dispatcher) EmailBatch(ctx context.Context, app *Application, created []Notification, emails map[string]string) (sent, failed int) {
	for _, n := range created {
		if d.Email(ctx, app, emails[n.UserID], n).Delivered() {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}

type createdEvent struct {
	Event        string       `json:"event"`
	Notification Notification `json:"notification"`
}

// aggregateEvent is the single webhook sent after a broadcast.
type aggregateEvent struct {
	Event     string         `json:"event"`
	AppID     string         `json:"app_id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      Type           `json:"type"`
	Priority  Priority       `json:"priority"`
	Data      map[string]any `json:"data"`
	ExpiresAt *time.Time     `json:"expires_at"`
	Count     int            `json:"count"`
}

// bulkEvent is the single webhook sent after a bulk send.
type bulkEvent struct {
	Event         string         `json:"event"`
	AppID         string         `json:"app_id"`
	Notifications []Notification `json:"notifications"`
	Count         int            `json:"count"`
}
