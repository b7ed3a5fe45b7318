package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/pkg/apikey"
	"github.com/dmitrymomot/relay/pkg/cache"
	"github.com/dmitrymomot/relay/pkg/notifications"
)

type testEnv struct {
	store   *notifications.MemoryStorage
	handler http.Handler
	srv     *Server
}

func newTestEnv(t *testing.T, mutate ...func(*Config)) *testEnv {
	t.Helper()
	cfg := Config{Env: "development", SessionSecret: "test-secret", SessionTTL: time.Hour}
	for _, fn := range mutate {
		fn(&cfg)
	}
	store := notifications.NewMemoryStorage()
	auth := apikey.NewAuthenticator(store, apikey.WithCache(cache.NewLRU[apikey.Entry](100, time.Minute)))
	srv := NewServer(cfg, notifications.NewManager(store), store, auth)
	return &testEnv{store: store, handler: srv.Handler(), srv: srv}
}

func (e *testEnv) createApp(t *testing.T, ownerID string, active bool) *notifications.Application {
	t.Helper()
	key, err := apikey.Generate()
	require.NoError(t, err)
	app, err := e.store.CreateApplication(context.Background(), notifications.Application{
		Name:    "Acme",
		APIKey:  key,
		OwnerID: ownerID,
		Active:  active,
	})
	require.NoError(t, err)
	return app
}

func (e *testEnv) session(t *testing.T, ownerID string) string {
	t.Helper()
	token, _, err := e.srv.sessions.issue(ownerID)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, target string, body any, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func keyHeader(app *notifications.Application) map[string]string {
	return map[string]string{"X-Api-Key": app.APIKey}
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestIntegrationAuth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	active := env.createApp(t, "owner-1", true)
	inactive := env.createApp(t, "owner-1", false)

	tests := []struct {
		name       string
		header     map[string]string
		target     string
		wantStatus int
		wantError  string
	}{
		{name: "missing key", target: "/api/v1/stats", wantStatus: http.StatusUnauthorized, wantError: "API key is required"},
		{name: "unknown key", target: "/api/v1/stats", header: map[string]string{"X-Api-Key": "ntf_nope"}, wantStatus: http.StatusUnauthorized, wantError: "Invalid API key"},
		{name: "inactive application", target: "/api/v1/stats", header: keyHeader(inactive), wantStatus: http.StatusUnauthorized, wantError: "Invalid API key"},
		{name: "header key", target: "/api/v1/stats", header: keyHeader(active), wantStatus: http.StatusOK},
		{name: "bearer key", target: "/api/v1/stats", header: bearer(active.APIKey), wantStatus: http.StatusOK},
		{name: "query key", target: "/api/v1/stats?api_key=" + active.APIKey, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, body := env.do(t, http.MethodGet, tt.target, nil, tt.header)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}

func TestNotificationLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	app := env.createApp(t, "owner-1", true)
	h := keyHeader(app)

	rec, body := env.do(t, http.MethodPost, "/api/v1/notifications", map[string]any{
		"user_id": "u1", "title": "Hi", "message": "Hello", "priority": "high",
	}, h)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	created := body["notification"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "u1", created["user_id"])
	assert.Equal(t, "info", created["type"])
	assert.Equal(t, "high", created["priority"])

	rec, body = env.do(t, http.MethodGet, "/api/v1/notifications?user_id=u1&is_read=false", nil, h)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["notifications"], 1)

	rec, body = env.do(t, http.MethodPatch, "/api/v1/notifications/"+id, map[string]any{"is_read": true}, h)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["notification"].(map[string]any)["is_read"])

	rec, body = env.do(t, http.MethodGet, "/api/v1/stats?user_id=u1", nil, h)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"total": float64(1), "unread": float64(0), "read": float64(1)}, body["stats"])

	rec, body = env.do(t, http.MethodDelete, "/api/v1/notifications/"+id, nil, h)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Notification deleted", body["message"])

	rec, body = env.do(t, http.MethodDelete, "/api/v1/notifications/"+id, nil, h)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Notification not found", body["error"])
}

func TestCreateNotification_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	app := env.createApp(t, "owner-1", true)

	tests := []struct {
		name      string
		body      map[string]any
		wantField string
	}{
		{name: "missing user id", body: map[string]any{"title": "T", "message": "M"}, wantField: "user_id"},
		{name: "missing title", body: map[string]any{"user_id": "u1", "message": "M"}, wantField: "title"},
		{name: "unknown type", body: map[string]any{"user_id": "u1", "title": "T", "message": "M", "type": "alert"}, wantField: "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, body := env.do(t, http.MethodPost, "/api/v1/notifications", tt.body, keyHeader(app))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, body["fields"], tt.wantField)
		})
	}

	t.Run("list query", func(t *testing.T) {
		t.Parallel()
		rec, _ := env.do(t, http.MethodGet, "/api/v1/notifications?limit=zero", nil, keyHeader(app))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBindJSON(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	app := env.createApp(t, "owner-1", true)

	t.Run("unsupported content type", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader("user_id=u1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Api-Key", app.APIKey)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader("{"))
		req.Header.Set("X-Api-Key", app.APIKey)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("body too large", func(t *testing.T) {
		t.Parallel()
		small := newTestEnv(t, func(c *Config) { c.MaxBodyBytes = 64 })
		app := small.createApp(t, "owner-1", true)
		rec, _ := small.do(t, http.MethodPost, "/api/v1/notifications", map[string]any{
			"user_id": "u1", "title": "T", "message": strings.Repeat("x", 200),
		}, keyHeader(app))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestBroadcastAndDirectory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	app := env.createApp(t, "owner-1", true)
	h := keyHeader(app)

	rec, body := env.do(t, http.MethodPost, "/api/v1/broadcast", map[string]any{"title": "T", "message": "M"}, h)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["total_users"])

	rec, body = env.do(t, http.MethodPost, "/api/v1/app-users/bulk", map[string]any{"users": []map[string]any{
		{"user_id": "u1", "email": "u1@example.com"},
		{"external_user_id": "u2", "email": "u2@example.com"},
		{"user_id": "u3"},
	}}, h)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(2), body["count"])

	rec, body = env.do(t, http.MethodPost, "/api/v1/app-users", map[string]any{"external_user_id": "u3", "email": "u3@example.com"}, h)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u3", body["app_user"].(map[string]any)["external_user_id"])

	rec, body = env.do(t, http.MethodPost, "/api/v1/notifications/broadcast", map[string]any{"title": "T", "message": "M"}, h)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["broadcast_all"])
	assert.Equal(t, float64(3), body["total_users"])
	assert.Equal(t, float64(3), body["inserted_count"])
	assert.NotContains(t, body, "emailed_count")

	t.Run("rejects invalid directory entries", func(t *testing.T) {
		t.Parallel()
		rec, body := env.do(t, http.MethodPost, "/api/v1/app-users/bulk", map[string]any{"users": []map[string]any{{"user_id": "u9"}}}, h)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No valid users provided", body["error"])

		rec, _ = env.do(t, http.MethodPost, "/api/v1/app-users", map[string]any{"user_id": "u9", "email": "not-an-email"}, h)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSendEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("targeted", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		app := env.createApp(t, "owner-1", true)

		rec, body := env.do(t, http.MethodPost, "/api/v1/notifications/send", map[string]any{
			"title": "T", "message": "M",
			"recipients": []any{"u1", map[string]any{"user_id": " "}},
		}, keyHeader(app))
		require.Equal(t, http.StatusOK, rec.Code)
		results := body["results"].([]any)
		require.Len(t, results, 2)
		assert.Equal(t, true, results[0].(map[string]any)["inserted"])
		assert.Equal(t, "user_id is required", results[1].(map[string]any)["error"])
	})

	t.Run("bulk", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		app := env.createApp(t, "owner-1", true)

		rec, body := env.do(t, http.MethodPost, "/api/v1/notifications/bulk", map[string]any{"notifications": []map[string]any{
			{"user_id": "u1", "title": "A", "message": "a"},
			{"user_id": "u2", "title": "B", "message": "b", "type": "error"},
		}}, keyHeader(app))
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(2), body["count"])

		rec, _ = env.do(t, http.MethodPost, "/api/v1/notifications/bulk", map[string]any{"notifications": []any{}}, keyHeader(app))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("owner events", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		app := env.createApp(t, "owner-1", true)

		rec, body := env.do(t, http.MethodPost, "/api/v1/events/bulk", map[string]any{"events": []map[string]any{
			{"title": "Deploy", "message": "done"},
			{"title": "no message"},
		}}, keyHeader(app))
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, float64(1), body["count"])

		list, err := env.store.List(context.Background(), app.ID, notifications.ListOptions{UserID: "owner-1"})
		require.NoError(t, err)
		assert.Len(t, list, 1)

		rec, body = env.do(t, http.MethodPost, "/api/v1/events/bulk", map[string]any{"events": []map[string]any{{"title": "x"}}}, keyHeader(app))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "At least one event with title and message is required", body["error"])
	})
}

func TestIngest(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	app := env.createApp(t, "owner-1", true)
	payload := map[string]any{"user_id": "u1", "title": "T", "message": "M"}

	rec, body := env.do(t, http.MethodPost, "/api/ingest", payload, keyHeader(app))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "api_key query param is required", body["error"])

	rec, body = env.do(t, http.MethodPost, "/api/ingest?api_key=ntf_wrong", payload, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid api_key", body["error"])

	rec, body = env.do(t, http.MethodPost, "/api/ingest?api_key="+app.APIKey, payload, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec, _ := env.do(t, http.MethodOptions, "/api/v1/broadcast", nil, map[string]string{"Origin": "https://app.example.com"})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Api-Key")
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(c *Config) { c.RateLimit, c.RateBurst = 1, 1 })
	app := env.createApp(t, "owner-1", true)
	other := env.createApp(t, "owner-1", true)

	rec, _ := env.do(t, http.MethodGet, "/api/v1/stats", nil, keyHeader(app))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/stats", nil, keyHeader(app))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	rec, _ = env.do(t, http.MethodGet, "/api/v1/stats", nil, keyHeader(other))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboardApplications(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/api/dashboard/applications", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := env.do(t, http.MethodPost, "/api/dev/session", map[string]any{"owner_id": "owner-1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := body["token"].(string)
	require.NotEmpty(t, rec.Result().Cookies())
	h := bearer(token)

	rec, body = env.do(t, http.MethodPost, "/api/dashboard/applications", map[string]any{"name": "Acme", "webhook_url": "ftp://example.com"}, h)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["fields"], "webhook_url")

	rec, body = env.do(t, http.MethodPost, "/api/dashboard/applications", map[string]any{"name": "Acme"}, h)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := body["application"].(map[string]any)
	id, oldKey := created["id"].(string), created["api_key"].(string)
	assert.True(t, apikey.WellFormed(oldKey))

	// Warm the key cache.
	rec, _ = env.do(t, http.MethodGet, "/api/v1/stats", nil, map[string]string{"X-Api-Key": oldKey})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, http.MethodPost, "/api/dashboard/applications/"+id+"/regenerate-key", nil, h)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API key regenerated", body["message"])
	newKey := body["application"].(map[string]any)["api_key"].(string)
	assert.NotEqual(t, oldKey, newKey)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/stats", nil, map[string]string{"X-Api-Key": oldKey})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = env.do(t, http.MethodGet, "/api/v1/stats", nil, map[string]string{"X-Api-Key": newKey})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, http.MethodPatch, "/api/dashboard/applications/"+id, map[string]any{"is_active": false}, h)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["application"].(map[string]any)["is_active"])
	rec, _ = env.do(t, http.MethodGet, "/api/v1/stats", nil, map[string]string{"X-Api-Key": newKey})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = env.do(t, http.MethodGet, "/api/dashboard/applications", nil, h)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["applications"], 1)

	other := env.session(t, "owner-2")
	rec, _ = env.do(t, http.MethodDelete, "/api/dashboard/applications/"+id, nil, bearer(other))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodDelete, "/api/dashboard/applications/"+id, nil, h)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboardSend(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	app := env.createApp(t, "owner-1", true)
	h := bearer(env.session(t, "owner-1"))

	t.Run("foreign application", func(t *testing.T) {
		t.Parallel()
		rec, body := env.do(t, http.MethodPost, "/api/dashboard/notifications/send", map[string]any{
			"app_id": app.ID, "title": "T", "message": "M", "recipients": []string{"u1"},
		}, bearer(env.session(t, "owner-2")))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Application not found", body["error"])
	})

	t.Run("missing recipients", func(t *testing.T) {
		t.Parallel()
		rec, body := env.do(t, http.MethodPost, "/api/dashboard/notifications/send", map[string]any{
			"app_id": app.ID, "title": "T", "message": "M",
		}, h)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, body["fields"], "recipients")
	})

	t.Run("targeted with email by default", func(t *testing.T) {
		t.Parallel()
		rec, body := env.do(t, http.MethodPost, "/api/dashboard/notifications/send", map[string]any{
			"app_id": app.ID, "title": "T", "message": "M",
			"recipients": []any{"u1", map[string]any{"user_id": "u2", "email": "u2@example.com"}},
		}, h)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, true, body["ok"])
		for _, r := range body["results"].([]any) {
			res := r.(map[string]any)
			assert.Equal(t, true, res["inserted"])
			assert.Equal(t, false, res["emailed"])
			assert.NotEmpty(t, res["email_error"])
		}
	})

	t.Run("broadcast without email", func(t *testing.T) {
		t.Parallel()
		local := newTestEnv(t)
		app := local.createApp(t, "owner-1", true)
		_, err := local.store.UpsertUsers(context.Background(), app.ID, []notifications.AppUser{
			{AppID: app.ID, ExternalUserID: "u1"}, {AppID: app.ID, ExternalUserID: "u2"},
		})
		require.NoError(t, err)

		rec, body := local.do(t, http.MethodPost, "/api/dashboard/notifications/send", map[string]any{
			"app_id": app.ID, "title": "T", "message": "M", "broadcast_all": true, "send_email": false,
		}, bearer(local.session(t, "owner-1")))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(2), body["inserted_count"])
		assert.Equal(t, false, body["send_email"])
		assert.NotContains(t, body, "emailed_count")
	})
}

func TestDevSessionOnlyInDevelopment(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(c *Config) { c.Env = "production" })
	rec, _ := env.do(t, http.MethodPost, "/api/dev/session", map[string]any{"owner_id": "owner-1"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newSessions("secret", time.Hour)
	s.now = func() time.Time { return now }

	token, _, err := s.issue("owner-1")
	require.NoError(t, err)

	sess, err := s.parse(token)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", sess.OwnerID)

	_, err = newSessions("other", time.Hour).parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = s.parse(token + "x")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = s.parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidSession)

	now = now.Add(2 * time.Hour)
	_, err = s.parse(token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestOpsRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec, _ := env.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteIDMustBeUUID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	app := env.createApp(t, "owner-1", true)
	keyHeader := map[string]string{"X-Api-Key": app.APIKey}
	session := bearer(env.session(t, "owner-1"))

	tests := []struct {
		name   string
		method string
		target string
		body   any
		header map[string]string
	}{
		{name: "mark notification read", method: http.MethodPatch, target: "/api/v1/notifications/not-a-uuid", body: map[string]any{"is_read": true}, header: keyHeader},
		{name: "delete notification", method: http.MethodDelete, target: "/api/v1/notifications/42", header: keyHeader},
		{name: "update application", method: http.MethodPatch, target: "/api/dashboard/applications/acme", body: map[string]any{"name": "Acme"}, header: session},
		{name: "delete application", method: http.MethodDelete, target: "/api/dashboard/applications/acme", header: session},
		{name: "regenerate key", method: http.MethodPost, target: "/api/dashboard/applications/" + app.ID + "x/regenerate-key", header: session},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, body := env.do(t, tt.method, tt.target, tt.body, tt.header)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "Validation failed", body["error"])
			assert.Contains(t, body["fields"], "id")
		})
	}

	got, err := env.store.ApplicationByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.APIKey, got.APIKey)
}
