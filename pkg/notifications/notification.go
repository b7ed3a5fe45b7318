package notifications

import (
	"strings"
	"time"
)

// Type classifies a notification for display.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Types lists every accepted Type.
var Types = []string{string(TypeInfo), string(TypeSuccess), string(TypeWarning), string(TypeError)}

// Priority is an opaque urgency label carried with the notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var Priorities = []string{string(PriorityLow), string(PriorityNormal), string(PriorityHigh), string(PriorityUrgent)}

// Notification is a persisted message addressed to one end user of an application.
type Notification struct {
	ID        string         `json:"id"`
	AppID     string         `json:"app_id"`
	UserID    string         `json:"user_id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      Type           `json:"type"`
	Priority  Priority       `json:"priority"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"is_read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// Content holds the fields shared by every notification produced by one send.
// ExpiresAt is kept to microsecond precision, the resolution of the stores.
type Content struct {
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      Type           `json:"type,omitempty"`
	Priority  Priority       `json:"priority,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// withDefaults fills Type and Priority with info and normal.
func (c Content) withDefaults() Content {
	if c.Type == "" {
		c.Type = TypeInfo
	}
	if c.Priority == "" {
		c.Priority = PriorityNormal
	}
	return c
}

// For builds an unsaved notification of c addressed to userID.
func (c Content) For(appID, userID string) Notification {
	c = c.withDefaults()
	if c.ExpiresAt != nil {
		exp := c.ExpiresAt.Truncate(time.Microsecond)
		c.ExpiresAt = &exp
	}
	return Notification{
		AppID:     appID,
		UserID:    userID,
		Title:     c.Title,
		Message:   c.Message,
		Type:      c.Type,
		Priority:  c.Priority,
		Data:      c.Data,
		ExpiresAt: c.ExpiresAt,
	}
}

// Application is a tenant that sends notifications through the relay.
type Application struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	APIKey     string    `json:"api_key,omitempty"`
	OwnerID    string    `json:"owner_id"`
	WebhookURL string    `json:"webhook_url,omitempty"`
	Active     bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AppUser is a directory entry mapping an application's user id to an email.
type AppUser struct {
	AppID          string    `json:"app_id"`
	ExternalUserID string    `json:"external_user_id"`
	Email          string    `json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Recipient is a user id with an optionally known email address.
type Recipient struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// normalize trims both fields.
func (r Recipient) normalize() Recipient {
	return Recipient{UserID: strings.TrimSpace(r.UserID), Email: strings.TrimSpace(r.Email)}
}
