package notifications

import (
	"context"
	"errors"
	"iter"
	"time"
)

// Resolution is one resolved targeted recipient. Err is set for entries that
// cannot be processed (for example an empty user id); such entries are
// reported, not dropped.
type Resolution struct {
	Recipient
	Err error
}

// Resolver turns a send's addressing into concrete recipients with emails.
type Resolver struct {
	dir      Directory
	pageSize int
	timeout  time.Duration
}

func NewResolver(dir Directory, cfg Config) *Resolver {
	cfg = cfg.sanitized()
	return &Resolver{dir: dir, pageSize: cfg.PageSize, timeout: cfg.StoreTimeout}
}

// Targeted yields one Resolution per input recipient, in order. A supplied
// email is written through to the directory before it is yielded; otherwise
// the directory is consulted by exact user id. A directory error ends the
// sequence with that error.
func (r *Resolver) Targeted(ctx context.Context, appID string, recipients []Recipient) iter.Seq2[Resolution, error] {
	return func(yield func(Resolution, error) bool) {
		for _, rc := range recipients {
			rc = rc.normalize()
			if rc.UserID == "" {
				if !yield(Resolution{Recipient: rc, Err: ErrInvalidRecipient}, nil) {
					return
				}
				continue
			}

			resolved, err := r.resolveOne(ctx, appID, rc)
			if err != nil {
				yield(Resolution{}, err)
				return
			}
			if !yield(Resolution{Recipient: resolved}, nil) {
				return
			}
		}
	}
}

func (r *Resolver) resolveOne(ctx context.Context, appID string, rc Recipient) (Recipient, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if rc.Email != "" {
		if _, err := r.dir.UpsertUsers(ctx, appID, []AppUser{{ExternalUserID: rc.UserID, Email: rc.Email}}); err != nil {
			return Recipient{}, err
		}
		return rc, nil
	}

	u, err := r.dir.LookupUser(ctx, appID, rc.UserID)
	switch {
	case errors.Is(err, ErrAppUserNotFound):
		return rc, nil
	case err != nil:
		return Recipient{}, err
	}
	rc.Email = u.Email
	return rc, nil
}

// Broadcast yields the application's directory one page at a time in
// creation order. Paging stops after a page shorter than the page size. A
// read failure ends the sequence with that error.
func (r *Resolver) Broadcast(ctx context.Context, appID string) iter.Seq2[[]Recipient, error] {
	return func(yield func([]Recipient, error) bool) {
		for offset := 0; ; offset += r.pageSize {
			users, err := r.page(ctx, appID, offset)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(users) == 0 {
				return
			}

			page := make([]Recipient, len(users))
			for i, u := range users {
				page[i] = Recipient{UserID: u.ExternalUserID, Email: u.Email}
			}
			if !yield(page, nil) || len(users) < r.pageSize {
				return
			}
		}
	}
}

func (r *Resolver) page(ctx context.Context, appID string, offset int) ([]AppUser, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.dir.ListUsers(ctx, appID, offset, r.pageSize)
}
