package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/pkg/webhook"
)

type capturedHook struct {
	event string
	appID string
	body  map[string]any
}

// newHookServer records every webhook request and answers with status.
func newHookServer(t *testing.T, status int) (*httptest.Server, func() []capturedHook) {
	t.Helper()
	var (
		mu   sync.Mutex
		hits []capturedHook
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		mu.Lock()
		hits = append(hits, capturedHook{event: r.Header.Get(HeaderEvent), appID: r.Header.Get(HeaderAppID), body: body})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedHook {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedHook(nil), hits...)
	}
}

func TestDispatcher_Email(t *testing.T) {
	t.Parallel()

	app := &Application{ID: "app-1", Name: "Acme"}
	n := Notification{ID: "n1", UserID: "u1", Title: "Hello <b>", Message: "line1\nline2"}

	t.Run("sends rendered message", func(t *testing.T) {
		t.Parallel()
		mailer := &recordingMailer{}
		obs := newRecordingObserver()
		d := NewDispatcher(mailer, nil, DefaultConfig(), nil, obs)

		o := d.Email(context.Background(), app, "a@x.com", n)
		assert.True(t, o.Delivered())
		require.Len(t, mailer.sent, 1)
		sent := mailer.sent[0]
		assert.Equal(t, "a@x.com", sent.SendTo)
		assert.Equal(t, "Hello <b>", sent.Subject)
		assert.Contains(t, sent.BodyHTML, "Hello &lt;b&gt;")
		assert.Equal(t, "Hello <b> (Acme)\n\nline1\nline2", sent.BodyText)
		assert.Equal(t, 1, obs.emails)
	})

	t.Run("empty address is unresolvable", func(t *testing.T) {
		t.Parallel()
		mailer := &recordingMailer{}
		o := NewDispatcher(mailer, nil, DefaultConfig(), nil, nil).Email(context.Background(), app, "", n)
		assert.False(t, o.Attempted)
		assert.ErrorIs(t, o.Err, ErrUnresolvableRecipient)
		assert.Empty(t, mailer.sent)
	})

	t.Run("no mailer configured", func(t *testing.T) {
		t.Parallel()
		o := NewDispatcher(nil, nil, DefaultConfig(), nil, nil).Email(context.Background(), app, "a@x.com", n)
		assert.False(t, o.Attempted)
		assert.ErrorIs(t, o.Err, ErrEmailNotConfigured)
	})

	t.Run("provider failure is returned as data", func(t *testing.T) {
		t.Parallel()
		smtpErr := errors.New("550 mailbox unavailable")
		mailer := &recordingMailer{failFor: map[string]error{"a@x.com": smtpErr}}
		obs := newRecordingObserver()
		o := NewDispatcher(mailer, nil, DefaultConfig(), nil, obs).Email(context.Background(), app, "a@x.com", n)
		assert.True(t, o.Attempted)
		assert.False(t, o.Delivered())
		assert.ErrorIs(t, o.Err, smtpErr)
		assert.Equal(t, 1, obs.emailErrs)
	})
}

func TestDispatcher_Webhook(t *testing.T) {
	t.Parallel()

	t.Run("posts payload with event headers", func(t *testing.T) {
		t.Parallel()
		srv, hits := newHookServer(t, http.StatusOK)
		app := &Application{ID: "app-1", WebhookURL: srv.URL}
		d := NewDispatcher(nil, webhook.NewSender(webhook.Config{}, srv.Client()), DefaultConfig(), nil, nil)

		o := d.Webhook(context.Background(), app, EventBulkCreated, bulkEvent{Event: EventBulkCreated, AppID: app.ID, Count: 2})
		require.True(t, o.Delivered())

		got := hits()
		require.Len(t, got, 1)
		assert.Equal(t, EventBulkCreated, got[0].event)
		assert.Equal(t, "app-1", got[0].appID)
		assert.Equal(t, float64(2), got[0].body["count"])
	})

	t.Run("non-success status is not a failure", func(t *testing.T) {
		t.Parallel()
		srv, hits := newHookServer(t, http.StatusInternalServerError)
		app := &Application{ID: "app-1", WebhookURL: srv.URL}
		d := NewDispatcher(nil, webhook.NewSender(webhook.Config{}, srv.Client()), DefaultConfig(), nil, nil)

		o := d.Webhook(context.Background(), app, EventCreated, createdEvent{Event: EventCreated})
		assert.True(t, o.Delivered())
		assert.Len(t, hits(), 1)
	})

	t.Run("no url means no attempt", func(t *testing.T) {
		t.Parallel()
		hooks := new(MockWebhookSender)
		o := NewDispatcher(nil, hooks, DefaultConfig(), nil, nil).Webhook(context.Background(), &Application{ID: "app-1"}, EventCreated, nil)
		assert.False(t, o.Attempted)
		hooks.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("transport error is captured", func(t *testing.T) {
		t.Parallel()
		hooks := new(MockWebhookSender)
		hooks.On("Send", mock.Anything, "https://hooks.example.com", mock.Anything).Return(webhook.ErrDeliveryFailed).Once()
		obs := newRecordingObserver()

		o := NewDispatcher(nil, hooks, DefaultConfig(), nil, obs).
			Webhook(context.Background(), &Application{ID: "app-1", WebhookURL: "https://hooks.example.com"}, EventCreated, nil)
		assert.True(t, o.Attempted)
		assert.ErrorIs(t, o.Err, webhook.ErrDeliveryFailed)
		assert.Equal(t, []string{EventCreated}, obs.webhooks)
		hooks.AssertExpectations(t)
	})
}

func TestDispatcher_DeliverOne(t *testing.T) {
	t.Parallel()

	n := Notification{ID: "n1", AppID: "app-1", UserID: "u1", Title: "T", Message: "M"}

	tests := []struct {
		name        string
		webhookErr  error
		withURL     bool
		address     string
		sendEmail   bool
		wantEmailed bool
		wantEmailEr string
		wantHook    *bool
	}{
		{name: "no side effects requested", address: "a@x.com"},
		{name: "email only", address: "a@x.com", sendEmail: true, wantEmailed: true},
		{name: "email unresolvable", sendEmail: true, wantEmailEr: ErrUnresolvableRecipient.Error()},
		{name: "webhook sent", withURL: true, wantHook: ptr(true)},
		{name: "webhook failed, email still sent", withURL: true, webhookErr: webhook.ErrTimeout, address: "a@x.com", sendEmail: true, wantEmailed: true, wantHook: ptr(false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := &Application{ID: "app-1", Name: "Acme"}
			hooks := new(MockWebhookSender)
			if tt.withURL {
				app.WebhookURL = "https://hooks.example.com"
				hooks.On("Send", mock.Anything, app.WebhookURL, createdEvent{Event: EventCreated, Notification: n}).Return(tt.webhookErr).Once()
			}
			d := NewDispatcher(&recordingMailer{}, hooks, DefaultConfig(), nil, nil)

			res := d.DeliverOne(context.Background(), app, n, tt.address, tt.sendEmail)
			assert.True(t, res.Inserted)
			assert.Equal(t, "n1", res.NotificationID)
			assert.Equal(t, tt.wantEmailed, res.Emailed)
			assert.Equal(t, tt.wantEmailEr, res.EmailError)
			assert.Equal(t, tt.wantHook, res.WebhookSent)
			if tt.webhookErr != nil {
				assert.NotEmpty(t, res.WebhookError)
			}
			hooks.AssertExpectations(t)
		})
	}
}

func TestDispatcher_EmailBatch(t *testing.T) {
	t.Parallel()

	mailer := &recordingMailer{failFor: map[string]error{"bad@x.com": errors.New("rejected")}}
	d := NewDispatcher(mailer, nil, DefaultConfig(), nil, nil)
	created := []Notification{
		{ID: "1", UserID: "u1", Title: "T", Message: "M"},
		{ID: "2", UserID: "u2", Title: "T", Message: "M"},
		{ID: "3", UserID: "u3", Title: "T", Message: "M"},
	}

	sent, failed := d.EmailBatch(context.Background(), &Application{ID: "app-1"}, created, map[string]string{
		"u1": "a@x.com",
		"u3": "bad@x.com",
	})
	assert.Equal(t, 1, sent)
	assert.Equal(t, 2, failed)
	assert.Equal(t, []string{"a@x.com"}, mailer.recipients())
}

func ptr[T any](v T) *T { return &v }
