package notifications

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-process Storage for development and tests.
type MemoryStorage struct {
	mu sync.RWMutex

	seq           int64
	notifications map[string]*memNotification
	users         map[userKey]*memUser
	apps          map[string]*Application
	keys          map[string]string // api key -> app id
}

type memNotification struct {
	seq int64
	n   Notification
}

type memUser struct {
	seq int64
	u   AppUser
}

type userKey struct {
	appID, externalID string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string]*memNotification),
		users:         make(map[userKey]*memUser),
		apps:          make(map[string]*Application),
		keys:          make(map[string]string),
	}
}

func (s *MemoryStorage) InsertBatch(ctx context.Context, batch []Notification) ([]Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	out := make([]Notification, len(batch))
	for i, n := range batch {
		s.seq++
		n.ID = uuid.NewString()
		n.Read = false
		n.ReadAt = nil
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		n.Data = maps.Clone(n.Data)
		s.notifications[n.ID] = &memNotification{seq: s.seq, n: n}
		out[i] = n
	}
	return out, nil
}

func (s *MemoryStorage) List(ctx context.Context, appID string, opts ListOptions) ([]Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []*memNotification
	for _, row := range s.notifications {
		n := row.n
		if n.AppID != appID ||
			(opts.UserID != "" && n.UserID != opts.UserID) ||
			(opts.Read != nil && n.Read != *opts.Read) ||
			(opts.Type != "" && n.Type != opts.Type) {
			continue
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b *memNotification) int {
		if c := b.n.CreatedAt.Compare(a.n.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	limit := opts.EffectiveLimit()
	out := make([]Notification, 0, min(limit, len(rows)))
	for _, row := range rows[:min(limit, len(rows))] {
		out = append(out, row.n)
	}
	return out, nil
}

func (s *MemoryStorage) SetRead(ctx context.Context, appID, id string, read bool) (*Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.notifications[id]
	if !ok || row.n.AppID != appID {
		return nil, ErrNotificationNotFound
	}
	row.n.Read = read
	if read {
		now := time.Now().UTC()
		row.n.ReadAt = &now
	}
	n := row.n
	return &n, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, appID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.notifications[id]
	if !ok || row.n.AppID != appID {
		return ErrNotificationNotFound
	}
	delete(s.notifications, id)
	return nil
}

func (s *MemoryStorage) Stats(ctx context.Context, appID, userID string) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	for _, row := range s.notifications {
		if row.n.AppID != appID || (userID != "" && row.n.UserID != userID) {
			continue
		}
		st.Total++
		if row.n.Read {
			st.Read++
		} else {
			st.Unread++
		}
	}
	return st, nil
}

func (s *MemoryStorage) UpsertUsers(ctx context.Context, appID string, users []AppUser) ([]AppUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	out := make([]AppUser, 0, len(users))
	for _, u := range users {
		key := userKey{appID: appID, externalID: u.ExternalUserID}
		row, ok := s.users[key]
		if !ok {
			s.seq++
			row = &memUser{seq: s.seq, u: AppUser{AppID: appID, ExternalUserID: u.ExternalUserID, CreatedAt: now}}
			s.users[key] = row
		}
		row.u.Email = u.Email
		row.u.UpdatedAt = now
		out = append(out, row.u)
	}
	return out, nil
}

func (s *MemoryStorage) LookupUser(ctx context.Context, appID, externalUserID string) (*AppUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.users[userKey{appID: appID, externalID: externalUserID}]
	if !ok {
		return nil, ErrAppUserNotFound
	}
	u := row.u
	return &u, nil
}

func (s *MemoryStorage) ListUsers(ctx context.Context, appID string, offset, limit int) ([]AppUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []*memUser
	for key, row := range s.users {
		if key.appID == appID {
			rows = append(rows, row)
		}
	}
	slices.SortFunc(rows, func(a, b *memUser) int {
		if c := a.u.CreatedAt.Compare(b.u.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	if offset >= len(rows) {
		return []AppUser{}, nil
	}
	rows = rows[offset:min(offset+limit, len(rows))]
	out := make([]AppUser, len(rows))
	for i, row := range rows {
		out[i] = row.u
	}
	return out, nil
}

func (s *MemoryStorage) ApplicationByID(ctx context.Context, id string) (*Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	cp := *app
	return &cp, nil
}

func (s *MemoryStorage) ApplicationByAPIKey(ctx context.Context, key string) (*Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.keys[key]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	cp := *s.apps[id]
	return &cp, nil
}

func (s *MemoryStorage) CreateApplication(ctx context.Context, app Application) (*Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	app.CreatedAt, app.UpdatedAt = now, now
	s.apps[app.ID] = &app
	s.keys[app.APIKey] = app.ID
	cp := app
	return &cp, nil
}

func (s *MemoryStorage) ListApplications(ctx context.Context, ownerID string) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Application{}
	for _, app := range s.apps {
		if app.OwnerID == ownerID {
			out = append(out, *app)
		}
	}
	slices.SortFunc(out, func(a, b Application) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *MemoryStorage) UpdateApplication(ctx context.Context, ownerID, id string, patch ApplicationPatch) (*Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok || app.OwnerID != ownerID {
		return nil, ErrApplicationNotFound
	}
	patch.Apply(app, time.Now().UTC())
	cp := *app
	return &cp, nil
}

func (s *MemoryStorage) RotateAPIKey(ctx context.Context, ownerID, id, newKey string) (*Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok || app.OwnerID != ownerID {
		return nil, ErrApplicationNotFound
	}
	delete(s.keys, app.APIKey)
	app.APIKey = newKey
	app.UpdatedAt = time.Now().UTC()
	s.keys[newKey] = id
	cp := *app
	return &cp, nil
}

func (s *MemoryStorage) DeleteApplication(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok || app.OwnerID != ownerID {
		return ErrApplicationNotFound
	}
	delete(s.keys, app.APIKey)
	delete(s.apps, id)
	for nid, row := range s.notifications {
		if row.n.AppID == id {
			delete(s.notifications, nid)
		}
	}
	for key := range s.users {
		if key.appID == id {
			delete(s.users, key)
		}
	}
	return nil
}
