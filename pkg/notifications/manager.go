package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/relay/pkg/email"
	"github.com/dmitrymomot/relay/pkg/logger"
	"github.com/dmitrymomot/relay/pkg/validator"
)

// Manager is the fan-out engine: it validates a send, resolves the target
// application through a Scope, persists notifications and dispatches their
// side effects. Requests are processed sequentially.
type Manager struct {
	store      managerStore
	resolver   *Resolver
	writer     *Writer
	dispatcher *Dispatcher
	cfg        Config
	log        *slog.Logger
	observer   Observer

	mailer email.EmailSender
	hooks  WebhookSender
}

type managerStore interface {
	NotificationStore
	Directory
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithConfig(cfg Config) ManagerOption {
	return func(m *Manager) { m.cfg = cfg.sanitized() }
}

// WithMailer enables email delivery.
func WithMailer(s email.EmailSender) ManagerOption {
	return func(m *Manager) { m.mailer = s }
}

// WithWebhookSender enables webhook delivery.
func WithWebhookSender(s WebhookSender) ManagerOption {
	return func(m *Manager) { m.hooks = s }
}

func WithObserver(o Observer) ManagerOption {
	return func(m *Manager) {
		if o != nil {
			m.observer = o
		}
	}
}

func NewManager(store managerStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		cfg:      DefaultConfig(),
		log:      logger.Discard(),
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(m)
	}

	m.resolver = NewResolver(store, m.cfg)
	m.writer = NewWriter(store, m.cfg)
	m.dispatcher = NewDispatcher(m.mailer, m.hooks, m.cfg, m.log, m.observer)
	return m
}

// TargetedRequest addresses an explicit list of recipients.
type TargetedRequest struct {
	AppID string
	Content
	Recipients []Recipient
	SendEmail  bool
}

// TargetedReport lists one DeliveryResult per input recipient, in input order.
type TargetedReport struct {
	OK      bool             `json:"ok"`
	Results []DeliveryResult `json:"results"`
	// Created holds the persisted rows in recipient order.
	Created []Notification `json:"-"`
}

// BroadcastRequest addresses every directory entry of the application.
type BroadcastRequest struct {
	AppID string
	Content
	SendEmail bool
}

// BroadcastReport carries running totals. Email counts are present only when
// email was requested.
type BroadcastReport struct {
	OK               bool   `json:"ok"`
	BroadcastAll     bool   `json:"broadcast_all"`
	TotalUsers       int    `json:"total_users"`
	InsertedCount    int    `json:"inserted_count"`
	SendEmail        bool   `json:"send_email"`
	EmailedCount     *int   `json:"emailed_count,omitempty"`
	FailedEmailCount *int   `json:"failed_email_count,omitempty"`
	WebhookSent      *bool  `json:"webhook_sent,omitempty"`
	WebhookError     string `json:"webhook_error,omitempty"`
}

// BulkItem is one independently addressed notification of a bulk send.
type BulkItem struct {
	UserID string `json:"user_id"`
	Content
}

// BulkRequest persists heterogeneous notifications in one request.
type BulkRequest struct {
	AppID string
	Items []BulkItem
	// Silent suppresses the aggregate webhook.
	Silent bool
}

type BulkReport struct {
	OK            bool           `json:"success"`
	Notifications []Notification `json:"notifications"`
	Count         int            `json:"count"`
	WebhookSent   *bool          `json:"webhook_sent,omitempty"`
	WebhookError  string         `json:"webhook_error,omitempty"`
}

// SendTargeted persists one notification per recipient and dispatches its
// side effects. Per-recipient failures are reported in the results; the
// returned error is reserved for rejection and resolution failure.
func (m *Manager) SendTargeted(ctx context.Context, scope Scope, req TargetedRequest) (report *TargetedReport, err error) {
	start := time.Now()
	defer func() { m.observer.SendCompleted(req.AppID, PathTargeted, time.Since(start), err) }()

	if err := validateContent(req.AppID, req.Content,
		validator.RequiredSlice("recipients", req.Recipients),
	); err != nil {
		return nil, err
	}
	app, err := m.application(ctx, scope, req.AppID)
	if err != nil {
		return nil, err
	}

	content := req.Content.withDefaults()
	results := make([]DeliveryResult, 0, len(req.Recipients))
	var rows []Notification

	for res, err := range m.resolver.Targeted(ctx, app.ID, req.Recipients) {
		if err != nil {
			m.log.LogAttrs(ctx, slog.LevelError, "recipient resolution failed",
				logger.AppID(app.ID), logger.Count("inserted", len(rows)), logger.Error(err))
			m.observer.NotificationsInserted(app.ID, PathTargeted, len(rows))
			return nil, errors.Join(ErrResolveRecipients, err)
		}
		if res.Err != nil {
			results = append(results, DeliveryResult{UserID: res.UserID, Error: res.Err.Error()})
			continue
		}

		created, err := m.writer.Write(ctx, []Notification{content.For(app.ID, res.UserID)}, nil)
		if err != nil {
			m.log.LogAttrs(ctx, slog.LevelWarn, "notification insert failed",
				logger.AppID(app.ID), logger.UserID(res.UserID), logger.Error(err))
			results = append(results, DeliveryResult{UserID: res.UserID, Email: res.Email, Error: err.Error()})
			continue
		}
		rows = append(rows, created[0])

		results = append(results, m.dispatcher.DeliverOne(ctx, app, created[0], res.Email, req.SendEmail))
	}

	m.observer.NotificationsInserted(app.ID, PathTargeted, len(rows))
	m.log.LogAttrs(ctx, slog.LevelInfo, "targeted send completed",
		logger.AppID(app.ID),
		logger.Count("recipients", len(req.Recipients)),
		logger.Count("inserted", len(rows)),
	)
	return &TargetedReport{OK: true, Results: results, Created: rows}, nil
}

// Broadcast persists one notification per directory entry, page by page.
// A resolver or writer failure aborts the request; rows already committed
// remain and the aggregate webhook is not sent.
func (m *Manager) Broadcast(ctx context.Context, scope Scope, req BroadcastRequest) (report *BroadcastReport, err error) {
	start := time.Now()
	defer func() { m.observer.SendCompleted(req.AppID, PathBroadcast, time.Since(start), err) }()

	if err := validateContent(req.AppID, req.Content); err != nil {
		return nil, err
	}
	app, err := m.application(ctx, scope, req.AppID)
	if err != nil {
		return nil, err
	}

	content := req.Content.withDefaults()
	result := &BroadcastReport{OK: true, BroadcastAll: true, SendEmail: req.SendEmail}
	var emailed, failed int

	defer func() { m.observer.NotificationsInserted(app.ID, PathBroadcast, result.InsertedCount) }()

	for page, err := range m.resolver.Broadcast(ctx, app.ID) {
		if err != nil {
			m.log.LogAttrs(ctx, slog.LevelError, "broadcast page read failed",
				logger.AppID(app.ID), logger.Count("offset", result.TotalUsers), logger.Error(err))
			return nil, errors.Join(ErrResolveRecipients, err)
		}
		result.TotalUsers += len(page)

		notifs := make([]Notification, len(page))
		emails := make(map[string]string, len(page))
		for i, r := range page {
			notifs[i] = content.For(app.ID, r.UserID)
			if r.Email != "" {
				emails[r.UserID] = r.Email
			}
		}

		_, err = m.writer.Write(ctx, notifs, func(batch []Notification) {
			result.InsertedCount += len(batch)
			if req.SendEmail {
				s, f := m.dispatcher.EmailBatch(ctx, app, batch, emails)
				emailed += s
				failed += f
			}
		})
		if err != nil {
			m.log.LogAttrs(ctx, slog.LevelError, "broadcast write failed",
				logger.AppID(app.ID), logger.Count("inserted", result.InsertedCount), logger.Error(err))
			return nil, err
		}
	}

	if req.SendEmail {
		result.EmailedCount = &emailed
		result.FailedEmailCount = &failed
	}

	if result.InsertedCount > 0 {
		o := m.dispatcher.Webhook(ctx, app, EventBroadcastCreated, aggregateEvent{
			Event:     EventBroadcastCreated,
			AppID:     app.ID,
			Title:     content.Title,
			Message:   content.Message,
			Type:      content.Type,
			Priority:  content.Priority,
			Data:      content.Data,
			ExpiresAt: content.ExpiresAt,
			Count:     result.InsertedCount,
		})
		if o.Attempted {
			sent := o.Err == nil
			result.WebhookSent = &sent
			if o.Err != nil {
				result.WebhookError = o.Err.Error()
			}
		}
	}

	m.log.LogAttrs(ctx, slog.LevelInfo, "broadcast completed",
		logger.AppID(app.ID),
		logger.Count("total_users", result.TotalUsers),
		logger.Count("inserted", result.InsertedCount),
		logger.Count("emailed", emailed),
		logger.Count("failed_email", failed),
	)
	return result, nil
}

// SendBulk persists explicitly addressed notifications in batches and sends
// one notification.bulk_created webhook unless Silent is set.
func (m *Manager) SendBulk(ctx context.Context, scope Scope, req BulkRequest) (report *BulkReport, err error) {
	start := time.Now()
	defer func() { m.observer.SendCompleted(req.AppID, PathBulk, time.Since(start), err) }()

	rules := []validator.Rule{
		validator.RequiredString("app_id", req.AppID),
		validator.RequiredSlice("notifications", req.Items),
	}
	for i, it := range req.Items {
		field := fmt.Sprintf("notifications[%d]", i)
		rules = append(rules,
			validator.RequiredString(field+".user_id", it.UserID),
			validator.RequiredString(field+".title", it.Title),
			validator.RequiredString(field+".message", it.Message),
		)
		rules = append(rules, enumRules(field+".", it.Content)...)
	}
	if err := validator.Apply(rules...); err != nil {
		return nil, errors.Join(ErrInvalidRequest, err)
	}

	app, err := m.application(ctx, scope, req.AppID)
	if err != nil {
		return nil, err
	}

	notifs := make([]Notification, len(req.Items))
	for i, it := range req.Items {
		notifs[i] = it.Content.For(app.ID, strings.TrimSpace(it.UserID))
	}

	created, err := m.writer.Write(ctx, notifs, nil)
	m.observer.NotificationsInserted(app.ID, PathBulk, len(created))
	if err != nil {
		m.log.LogAttrs(ctx, slog.LevelError, "bulk write failed",
			logger.AppID(app.ID), logger.Count("inserted", len(created)), logger.Error(err))
		return nil, err
	}

	report = &BulkReport{OK: true, Notifications: created, Count: len(created)}
	if !req.Silent && len(created) > 0 {
		o := m.dispatcher.Webhook(ctx, app, EventBulkCreated, bulkEvent{
			Event:         EventBulkCreated,
			AppID:         app.ID,
			Notifications: created,
			Count:         len(created),
		})
		if o.Attempted {
			sent := o.Err == nil
			report.WebhookSent = &sent
			if o.Err != nil {
				report.WebhookError = o.Err.Error()
			}
		}
	}
	return report, nil
}

func (m *Manager) application(ctx context.Context, scope Scope, appID string) (*Application, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.StoreTimeout)
	defer cancel()

	app, err := scope.Application(ctx, appID)
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) || errors.Is(err, ErrApplicationInactive) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve application: %w", err)
	}
	return app, nil
}

func validateContent(appID string, c Content, extra ...validator.Rule) error {
	rules := append([]validator.Rule{
		validator.RequiredString("app_id", appID),
		validator.RequiredString("title", c.Title),
		validator.RequiredString("message", c.Message),
	}, enumRules("", c)...)
	if err := validator.Apply(append(rules, extra...)...); err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}
	return nil
}

func enumRules(prefix string, c Content) []validator.Rule {
	return []validator.Rule{
		validator.When(c.Type != "", validator.InListString(prefix+"type", string(c.Type), Types)),
		validator.When(c.Priority != "", validator.InListString(prefix+"priority", string(c.Priority), Priorities)),
	}
}

// List returns notifications of appID, newest first.
func (m *Manager) List(ctx context.Context, appID string, opts ListOptions) ([]Notification, error) {
	return m.store.List(ctx, appID, opts)
}

func (m *Manager) SetRead(ctx context.Context, appID, id string, read bool) (*Notification, error) {
	return m.store.SetRead(ctx, appID, id, read)
}

func (m *Manager) Delete(ctx context.Context, appID, id string) error {
	return m.store.Delete(ctx, appID, id)
}

func (m *Manager) Stats(ctx context.Context, appID, userID string) (Stats, error) {
	return m.store.Stats(ctx, appID, userID)
}

// RegisterUsers upserts directory entries for appID. Every entry needs a
// user id and a valid email. Duplicate ids in one call collapse to the last.
func (m *Manager) RegisterUsers(ctx context.Context, appID string, users []Recipient) ([]AppUser, error) {
	rules := []validator.Rule{validator.RequiredSlice("users", users)}
	entries := make([]AppUser, 0, len(users))
	index := make(map[string]int, len(users))
	for i, u := range users {
		u = u.normalize()
		field := fmt.Sprintf("users[%d]", i)
		rules = append(rules,
			validator.RequiredString(field+".user_id", u.UserID),
			validator.ValidEmail(field+".email", u.Email),
		)
		entry := AppUser{AppID: appID, ExternalUserID: u.UserID, Email: u.Email}
		if j, ok := index[u.UserID]; ok {
			entries[j] = entry
			continue
		}
		index[u.UserID] = len(entries)
		entries = append(entries, entry)
	}
	if err := validator.Apply(rules...); err != nil {
		return nil, errors.Join(ErrInvalidRequest, err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.StoreTimeout)
	defer cancel()
	return m.store.UpsertUsers(ctx, appID, entries)
}
