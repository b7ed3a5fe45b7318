package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/relay/pkg/email"
	"github.com/dmitrymomot/relay/pkg/webhook"
)

// MockStorage for testing Resolver, Writer and Manager
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) InsertBatch(ctx context.Context, batch []Notification) ([]Notification, error) {
	args := m.Called(ctx, batch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Notification), args.Error(1)
}

func (m *MockStorage) List(ctx context.Context, appID string, opts ListOptions) ([]Notification, error) {
	args := m.Called(ctx, appID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Notification), args.Error(1)
}

func (m *MockStorage) SetRead(ctx context.Context, appID, id string, read bool) (*Notification, error) {
	args := m.Called(ctx, appID, id, read)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, appID, id string) error {
	args := m.Called(ctx, appID, id)
	return args.Error(0)
}

func (m *MockStorage) Stats(ctx context.Context, appID, userID string) (Stats, error) {
	args := m.Called(ctx, appID, userID)
	return args.Get(0).(Stats), args.Error(1)
}

func (m *MockStorage) UpsertUsers(ctx context.Context, appID string, users []AppUser) ([]AppUser, error) {
	args := m.Called(ctx, appID, users)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]AppUser), args.Error(1)
}

func (m *MockStorage) LookupUser(ctx context.Context, appID, externalUserID string) (*AppUser, error) {
	args := m.Called(ctx, appID, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AppUser), args.Error(1)
}

func (m *MockStorage) ListUsers(ctx context.Context, appID string, offset, limit int) ([]AppUser, error) {
	args := m.Called(ctx, appID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]AppUser), args.Error(1)
}

// MockWebhookSender for testing Dispatcher
type MockWebhookSender struct {
	mock.Mock
}

func (m *MockWebhookSender) Send(ctx context.Context, url string, data any, opts ...webhook.SendOption) (webhook.DeliveryResult, error) {
	args := m.Called(ctx, url, data)
	return webhook.DeliveryResult{StatusCode: 200}, args.Error(0)
}

// recordingMailer captures sent messages and fails for addresses in failFor.
type recordingMailer struct {
	mu      sync.Mutex
	sent    []email.SendEmailParams
	failFor map[string]error
}

func (r *recordingMailer) SendEmail(_ context.Context, p email.SendEmailParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failFor[p.SendTo]; ok {
		return err
	}
	r.sent = append(r.sent, p)
	return nil
}

func (r *recordingMailer) recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sent))
	for i, p := range r.sent {
		out[i] = p.SendTo
	}
	return out
}

type recordingObserver struct {
	mu         sync.Mutex
	inserted   map[string]int
	emails     int
	emailErrs  int
	webhooks   []string
	completed  []string
	sendErrors int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{inserted: map[string]int{}}
}

func (o *recordingObserver) NotificationsInserted(_, path string, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inserted[path] += n
}

func (o *recordingObserver) EmailAttempted(_ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.emails++
	if err != nil {
		o.emailErrs++
	}
}

func (o *recordingObserver) WebhookAttempted(_, event string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.webhooks = append(o.webhooks, event)
}

func (o *recordingObserver) SendCompleted(_, path string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = append(o.completed, path)
	if err != nil {
		o.sendErrors++
	}
}
