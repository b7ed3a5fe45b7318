// Package notifications implements the relay's fan-out engine: it resolves
// the recipients of a send, persists one notification per recipient and
// dispatches best-effort email and webhook side effects.
//
// The package is transport-agnostic. HTTP handlers, the dashboard and tests
// all drive the same Manager.
//
// # Architecture
//
//   - Resolver: turns a send's addressing into recipients with emails,
//     either an explicit list (targeted) or the whole directory (broadcast)
//   - Writer: inserts notifications in fixed-size atomic batches
//   - Dispatcher: attempts each email and webhook exactly once and reports
//     the outcome as data
//   - Manager: validates a request, resolves its application through a
//     Scope and runs the path
//
// # Basic Usage
//
//	store := notifications.NewMemoryStorage()
//	manager := notifications.NewManager(store,
//	    notifications.WithMailer(mailer),
//	    notifications.WithWebhookSender(webhook.NewSender(webhook.Config{}, nil)),
//	)
//
//	report, err := manager.SendTargeted(ctx, notifications.ElevatedScope(app), notifications.TargetedRequest{
//	    AppID:      app.ID,
//	    Content:    notifications.Content{Title: "Welcome", Message: "Thanks for joining"},
//	    Recipients: []notifications.Recipient{{UserID: "u1", Email: "u1@example.com"}},
//	    SendEmail:  true,
//	})
//
// # Failure Model
//
// A send returns an error only when it is rejected (ErrInvalidRequest,
// ErrApplicationNotFound, ErrApplicationInactive) or when the directory or
// a broadcast write fails (ErrResolveRecipients, ErrWriteFailed). Rows
// committed before such a failure are not rolled back. Email and webhook
// failures never fail a send; they are reported in the result.
//
// Webhooks carry the event name and application id in the
// X-Notification-Event and X-Notification-App-Id headers.
package notifications
