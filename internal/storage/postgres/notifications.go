package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/relay/pkg/notifications"
)

const notificationColumns = `id::text, app_id::text, user_id, title, message, type, priority, data, is_read, read_at, created_at, expires_at`

// The whole batch is one statement, so it commits or fails as a unit.
const insertNotificationsSQL = `
INSERT INTO notifications (id, app_id, user_id, title, message, type, priority, data, expires_at)
SELECT u.id::uuid, u.app_id::uuid, u.user_id, u.title, u.message, u.type, u.priority, u.data::jsonb, u.expires_at
FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[], $6::text[], $7::text[], $8::text[], $9::timestamptz[])
    AS u(id, app_id, user_id, title, message, type, priority, data, expires_at)
RETURNING ` + notificationColumns

func scanNotification(row pgx.CollectableRow) (notifications.Notification, error) {
	var (
		n    notifications.Notification
		data []byte
	)
	if err := row.Scan(&n.ID, &n.AppID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Priority,
		&data, &n.Read, &n.ReadAt, &n.CreatedAt, &n.ExpiresAt); err != nil {
		return n, err
	}
	var err error
	n.Data, err = decodeData(data)
	return n, err
}

func (s *Store) InsertBatch(ctx context.Context, batch []notifications.Notification) ([]notifications.Notification, error) {
	if len(batch) == 0 {
		return []notifications.Notification{}, nil
	}

	var (
		ids       = make([]string, len(batch))
		appIDs    = make([]string, len(batch))
		userIDs   = make([]string, len(batch))
		titles    = make([]string, len(batch))
		messages  = make([]string, len(batch))
		types     = make([]string, len(batch))
		prios     = make([]string, len(batch))
		data      = make([]*string, len(batch))
		expiresAt = make([]*time.Time, len(batch))
	)
	for i, n := range batch {
		ids[i] = uuid.NewString()
		appIDs[i] = n.AppID
		userIDs[i] = n.UserID
		titles[i] = n.Title
		messages[i] = n.Message
		types[i] = string(n.Type)
		prios[i] = string(n.Priority)
		expiresAt[i] = n.ExpiresAt

		d, err := encodeData(n.Data)
		if err != nil {
			return nil, err
		}
		data[i] = d
	}

	rows, err := s.db.Query(ctx, insertNotificationsSQL, ids, appIDs, userIDs, titles, messages, types, prios, data, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("insert notifications: %w", err)
	}
	created, err := pgx.CollectRows(rows, scanNotification)
	if err != nil {
		return nil, fmt.Errorf("insert notifications: %w", err)
	}
	return inOrder(created, ids, func(n notifications.Notification) string { return n.ID }), nil
}

func (s *Store) List(ctx context.Context, appID string, opts notifications.ListOptions) ([]notifications.Notification, error) {
	var (
		where = []string{"app_id = $1"}
		args  = []any{appID}
	)
	if opts.UserID != "" {
		args = append(args, opts.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if opts.Read != nil {
		args = append(args, *opts.Read)
		where = append(where, fmt.Sprintf("is_read = $%d", len(args)))
	}
	if opts.Type != "" {
		args = append(args, string(opts.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	args = append(args, opts.EffectiveLimit())

	query := fmt.Sprintf(`SELECT %s FROM notifications WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d`,
		notificationColumns, strings.Join(where, " AND "), len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	list, err := pgx.CollectRows(rows, scanNotification)
	switch {
	case isInvalidID(err):
		return []notifications.Notification{}, nil
	case err != nil:
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func (s *Store) SetRead(ctx context.Context, appID, id string, read bool) (*notifications.Notification, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE notifications
		SET is_read = $3::boolean,
		    read_at = CASE WHEN $3::boolean THEN now() ELSE read_at END
		WHERE app_id = $1 AND id = $2
		RETURNING `+notificationColumns, appID, id, read)
	if err != nil {
		return nil, fmt.Errorf("update notification: %w", err)
	}
	n, err := pgx.CollectExactlyOneRow(rows, scanNotification)
	if err != nil {
		if isMissing(err) {
			return nil, notifications.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("update notification: %w", err)
	}
	return &n, nil
}

func (s *Store) Delete(ctx context.Context, appID, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE app_id = $1 AND id = $2`, appID, id)
	if err != nil {
		if isInvalidID(err) {
			return notifications.ErrNotificationNotFound
		}
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notifications.ErrNotificationNotFound
	}
	return nil
}

func (s *Store) Stats(ctx context.Context, appID, userID string) (notifications.Stats, error) {
	var st notifications.Stats
	err := s.db.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE NOT is_read), count(*) FILTER (WHERE is_read)
		FROM notifications
		WHERE app_id = $1 AND ($2::text = '' OR user_id = $2::text)`, appID, userID).
		Scan(&st.Total, &st.Unread, &st.Read)
	if err != nil {
		if isInvalidID(err) {
			return notifications.Stats{}, nil
		}
		return st, fmt.Errorf("notification stats: %w", err)
	}
	return st, nil
}
