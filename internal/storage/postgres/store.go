package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/relay/pkg/notifications"
	"github.com/dmitrymomot/relay/pkg/pg"
)

// DB is the subset of pgxpool.Pool and pgx.Tx the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements notifications.Storage on PostgreSQL.
type Store struct {
	db DB
}

var _ notifications.Storage = (*Store)(nil)

func New(db DB) *Store {
	return &Store{db: db}
}

// isMissing reports no matching row. A malformed uuid cannot match a row either.
func isMissing(err error) bool {
	return pg.IsNotFoundError(err) || pg.IsInvalidInputError(err)
}

func isInvalidID(err error) bool {
	return pg.IsInvalidInputError(err)
}

func encodeData(data map[string]any) (*string, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode notification data: %w", err)
	}
	s := string(raw)
	return &s, nil
}

func decodeData(raw []byte) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode notification data: %w", err)
	}
	return data, nil
}

// inOrder returns rows arranged by keys. Rows whose key is not listed are dropped.
func inOrder[T any](rows []T, keys []string, key func(T) string) []T {
	byKey := make(map[string]T, len(rows))
	for _, r := range rows {
		byKey[key(r)] = r
	}
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		if r, ok := byKey[k]; ok {
			out = append(out, r)
		}
	}
	return out
}
