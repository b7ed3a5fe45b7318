package notifications

import (
	"context"
	"errors"
)

// Scope resolves the application a send targets under the caller's
// authority. Dashboard callers act as an owner; integration callers have
// already proven possession of the application's API key.
type Scope interface {
	Application(ctx context.Context, appID string) (*Application, error)
}

// ScopeFunc adapts a function to Scope.
type ScopeFunc func(ctx context.Context, appID string) (*Application, error)

func (f ScopeFunc) Application(ctx context.Context, appID string) (*Application, error) {
	return f(ctx, appID)
}

// OwnerScope grants access to applications owned by ownerID. Applications
// owned by someone else are reported as not found.
func OwnerScope(apps ApplicationStore, ownerID string) Scope {
	return ScopeFunc(func(ctx context.Context, appID string) (*Application, error) {
		app, err := apps.ApplicationByID(ctx, appID)
		if err != nil {
			if errors.Is(err, ErrApplicationNotFound) {
				return nil, ErrApplicationNotFound
			}
			return nil, err
		}
		if app.OwnerID != ownerID {
			return nil, ErrApplicationNotFound
		}
		return app, nil
	})
}

// ElevatedScope grants access to app only, as authenticated by its API key.
// An empty appID means "the authenticated application".
func ElevatedScope(app *Application) Scope {
	return ScopeFunc(func(_ context.Context, appID string) (*Application, error) {
		if app == nil || (appID != "" && appID != app.ID) {
			return nil, ErrApplicationNotFound
		}
		if !app.Active {
			return nil, ErrApplicationInactive
		}
		return app, nil
	})
}
