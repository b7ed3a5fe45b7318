package notifications

import (
	"context"
	"time"
)

// NotificationStore persists notifications.
type NotificationStore interface {
	// InsertBatch inserts all rows in one atomic statement and returns them,
	// in input order, with store-assigned ids and timestamps.
	InsertBatch(ctx context.Context, batch []Notification) ([]Notification, error)
	List(ctx context.Context, appID string, opts ListOptions) ([]Notification, error)
	// SetRead updates the read flag. Marking read stamps ReadAt.
	SetRead(ctx context.Context, appID, id string, read bool) (*Notification, error)
	Delete(ctx context.Context, appID, id string) error
	Stats(ctx context.Context, appID, userID string) (Stats, error)
}

// Directory maps application user ids to email addresses.
type Directory interface {
	// UpsertUsers writes entries keyed by (app, external user id), last write wins.
	UpsertUsers(ctx context.Context, appID string, users []AppUser) ([]AppUser, error)
	// LookupUser returns ErrAppUserNotFound when the key is absent.
	LookupUser(ctx context.Context, appID, externalUserID string) (*AppUser, error)
	// ListUsers pages entries ordered by creation time ascending.
	ListUsers(ctx context.Context, appID string, offset, limit int) ([]AppUser, error)
}

// ApplicationStore manages tenant applications.
type ApplicationStore interface {
	ApplicationByID(ctx context.Context, id string) (*Application, error)
	// ApplicationByAPIKey returns ErrApplicationNotFound for unknown keys.
	ApplicationByAPIKey(ctx context.Context, key string) (*Application, error)
	CreateApplication(ctx context.Context, app Application) (*Application, error)
	ListApplications(ctx context.Context, ownerID string) ([]Application, error)
	UpdateApplication(ctx context.Context, ownerID, id string, patch ApplicationPatch) (*Application, error)
	// RotateAPIKey swaps the key in a single write; the old key stops working immediately.
	RotateAPIKey(ctx context.Context, ownerID, id, newKey string) (*Application, error)
	DeleteApplication(ctx context.Context, ownerID, id string) error
}

// Storage is everything the relay persists.
type Storage interface {
	NotificationStore
	Directory
	ApplicationStore
}

// ListOptions filters List. Zero values mean no filter.
type ListOptions struct {
	UserID string
	Read   *bool
	Type   Type
	Limit  int
}

// Stats counts an application's notifications, optionally for one user.
type Stats struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
	Read   int `json:"read"`
}

// ApplicationPatch holds optional updates. Nil fields are left unchanged;
// an empty WebhookURL clears it.
type ApplicationPatch struct {
	Name       *string `json:"name,omitempty"`
	WebhookURL *string `json:"webhook_url,omitempty"`
	Active     *bool   `json:"is_active,omitempty"`
}

// Apply copies set fields onto app.
func (p ApplicationPatch) Apply(app *Application, now time.Time) {
	if p.Name != nil {
		app.Name = *p.Name
	}
	if p.WebhookURL != nil {
		app.WebhookURL = *p.WebhookURL
	}
	if p.Active != nil {
		app.Active = *p.Active
	}
	app.UpdatedAt = now
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// EffectiveLimit clamps Limit into [1, MaxListLimit], defaulting to DefaultListLimit.
func (o ListOptions) EffectiveLimit() int {
	switch {
	case o.Limit <= 0:
		return DefaultListLimit
	case o.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return o.Limit
	}
}
