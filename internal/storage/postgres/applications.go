package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/relay/pkg/notifications"
)

const applicationColumns = `id::text, name, api_key, owner_id, COALESCE(webhook_url, ''), is_active, created_at, updated_at`

func scanApplication(row pgx.CollectableRow) (notifications.Application, error) {
	var a notifications.Application
	err := row.Scan(&a.ID, &a.Name, &a.APIKey, &a.OwnerID, &a.WebhookURL, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// oneApplication collects a single application row, mapping no row to
// ErrApplicationNotFound.
func oneApplication(rows pgx.Rows, err error, op string) (*notifications.Application, error) {
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app, err := pgx.CollectExactlyOneRow(rows, scanApplication)
	switch {
	case isMissing(err):
		return nil, notifications.ErrApplicationNotFound
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &app, nil
}

func (s *Store) ApplicationByID(ctx context.Context, id string) (*notifications.Application, error) {
	rows, err := s.db.Query(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return oneApplication(rows, err, "get application")
}

func (s *Store) ApplicationByAPIKey(ctx context.Context, key string) (*notifications.Application, error) {
	rows, err := s.db.Query(ctx, `SELECT `+applicationColumns+` FROM applications WHERE api_key = $1`, key)
	return oneApplication(rows, err, "get application by key")
}

func (s *Store) CreateApplication(ctx context.Context, app notifications.Application) (*notifications.Application, error) {
	rows, err := s.db.Query(ctx, `
		INSERT INTO applications (name, api_key, owner_id, webhook_url, is_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING `+applicationColumns,
		app.Name, app.APIKey, app.OwnerID, app.WebhookURL, app.Active)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanApplication)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	return &created, nil
}

func (s *Store) ListApplications(ctx context.Context, ownerID string) ([]notifications.Application, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE owner_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	apps, err := pgx.CollectRows(rows, scanApplication)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// UpdateApplication applies patch in one statement. A nil field keeps the
// column; an empty webhook URL clears it.
func (s *Store) UpdateApplication(ctx context.Context, ownerID, id string, patch notifications.ApplicationPatch) (*notifications.Application, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE applications
		SET name = COALESCE($3, name),
		    webhook_url = CASE WHEN $4::text IS NULL THEN webhook_url ELSE NULLIF($4::text, '') END,
		    is_active = COALESCE($5, is_active),
		    updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+applicationColumns,
		id, ownerID, patch.Name, patch.WebhookURL, patch.Active)
	return oneApplication(rows, err, "update application")
}

func (s *Store) RotateAPIKey(ctx context.Context, ownerID, id, newKey string) (*notifications.Application, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE applications
		SET api_key = $3, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+applicationColumns, id, ownerID, newKey)
	return oneApplication(rows, err, "rotate api key")
}

// DeleteApplication removes the application; its notifications and
// directory entries go with it through ON DELETE CASCADE.
func (s *Store) DeleteApplication(ctx context.Context, ownerID, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM applications WHERE id = $1 AND owner_id = $2`, id, ownerID)
	switch {
	case isInvalidID(err):
		return notifications.ErrApplicationNotFound
	case err != nil:
		return fmt.Errorf("delete application: %w", err)
	case tag.RowsAffected() == 0:
		return notifications.ErrApplicationNotFound
	}
	return nil
}
