package apikey

import (
	"context"

	"github.com/dmitrymomot/relay/pkg/notifications"
)

type applicationContextKey struct{}

// WithApplication stores the authenticated application in ctx.
func WithApplication(ctx context.Context, app *notifications.Application) context.Context {
	return context.WithValue(ctx, applicationContextKey{}, app)
}

// FromContext returns the application authenticated by Middleware.
func FromContext(ctx context.Context) (*notifications.Application, bool) {
	app, ok := ctx.Value(applicationContextKey{}).(*notifications.Application)
	return app, ok && app != nil
}
