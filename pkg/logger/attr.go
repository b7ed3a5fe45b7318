package logger

import (
	"log/slog"
	"time"
)

// Error records err under the key "error".
// A nil error yields an empty Attr, which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// AppID records the application identifier under the key "app_id".
func AppID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("app_id", id)
}

// UserID records the end-user identifier under the key "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// OwnerID records the dashboard owner identifier under the key "owner_id".
func OwnerID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("owner_id", id)
}

// NotificationID records the notification identifier under the key "notification_id".
func NotificationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("notification_id", id)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Count records a counter under the given key.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
