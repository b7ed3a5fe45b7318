package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/relay/pkg/notifications"
	"github.com/dmitrymomot/relay/pkg/pg"
)

const appUserColumns = `app_id::text, external_user_id, COALESCE(email, ''), created_at, updated_at`

func scanAppUser(row pgx.CollectableRow) (notifications.AppUser, error) {
	var u notifications.AppUser
	err := row.Scan(&u.AppID, &u.ExternalUserID, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// UpsertUsers writes all entries in one statement. ON CONFLICT cannot touch
// the same row twice, so duplicate ids are collapsed first (last wins).
func (s *Store) UpsertUsers(ctx context.Context, appID string, users []notifications.AppUser) ([]notifications.AppUser, error) {
	if len(users) == 0 {
		return []notifications.AppUser{}, nil
	}

	var (
		index  = make(map[string]int, len(users))
		ids    = make([]string, 0, len(users))
		emails = make([]string, 0, len(users))
	)
	for _, u := range users {
		if i, ok := index[u.ExternalUserID]; ok {
			emails[i] = u.Email
			continue
		}
		index[u.ExternalUserID] = len(ids)
		ids = append(ids, u.ExternalUserID)
		emails = append(emails, u.Email)
	}

	rows, err := s.db.Query(ctx, `
		INSERT INTO app_users (app_id, external_user_id, email)
		SELECT $1::uuid, u.external_user_id, NULLIF(u.email, '')
		FROM unnest($2::text[], $3::text[]) AS u(external_user_id, email)
		ON CONFLICT (app_id, external_user_id)
		DO UPDATE SET email = EXCLUDED.email, updated_at = now()
		RETURNING `+appUserColumns, appID, ids, emails)
	if err != nil {
		return nil, fmt.Errorf("upsert app users: %w", err)
	}
	out, err := pgx.CollectRows(rows, scanAppUser)
	switch {
	case pg.IsForeignKeyViolationError(err), isInvalidID(err):
		return nil, notifications.ErrApplicationNotFound
	case err != nil:
		return nil, fmt.Errorf("upsert app users: %w", err)
	}
	return inOrder(out, ids, func(u notifications.AppUser) string { return u.ExternalUserID }), nil
}

func (s *Store) LookupUser(ctx context.Context, appID, externalUserID string) (*notifications.AppUser, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appUserColumns+`
		FROM app_users
		WHERE app_id = $1 AND external_user_id = $2`, appID, externalUserID)
	if err != nil {
		return nil, fmt.Errorf("lookup app user: %w", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanAppUser)
	switch {
	case isMissing(err):
		return nil, notifications.ErrAppUserNotFound
	case err != nil:
		return nil, fmt.Errorf("lookup app user: %w", err)
	}
	return &u, nil
}

// ListUsers pages by (created_at, id) so rows with equal timestamps keep a
// stable order between pages.
func (s *Store) ListUsers(ctx context.Context, appID string, offset, limit int) ([]notifications.AppUser, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appUserColumns+`
		FROM app_users
		WHERE app_id = $1
		ORDER BY created_at, id
		OFFSET $2 LIMIT $3`, appID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list app users: %w", err)
	}
	users, err := pgx.CollectRows(rows, scanAppUser)
	switch {
	case isInvalidID(err):
		return []notifications.AppUser{}, nil
	case err != nil:
		return nil, fmt.Errorf("list app users: %w", err)
	}
	return users, nil
}
