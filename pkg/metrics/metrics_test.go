package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/pkg/metrics"
	"github.com/dmitrymomot/relay/pkg/notifications"
)

var _ notifications.Observer = (*metrics.Observer)(nil)

func TestObserver(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	obs := metrics.NewObserver(reg)

	obs.NotificationsInserted("app-1", notifications.PathBroadcast, 1500)
	obs.NotificationsInserted("app-1", notifications.PathTargeted, 0)
	obs.EmailAttempted("app-1", nil)
	obs.EmailAttempted("app-1", errors.New("rejected"))
	obs.EmailAttempted("app-1", nil)
	obs.WebhookAttempted("app-1", notifications.EventCreated, nil)
	obs.SendCompleted("app-1", notifications.PathBroadcast, 2*time.Second, nil)

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP relay_email_attempts_total Notification emails attempted, by result.
# TYPE relay_email_attempts_total counter
relay_email_attempts_total{result="error"} 1
relay_email_attempts_total{result="ok"} 2
# HELP relay_notifications_inserted_total Notifications persisted, by send path.
# TYPE relay_notifications_inserted_total counter
relay_notifications_inserted_total{path="broadcast"} 1500
# HELP relay_webhook_attempts_total Webhook calls attempted, by event and result.
# TYPE relay_webhook_attempts_total counter
relay_webhook_attempts_total{event="notification.created",result="ok"} 1
`), "relay_email_attempts_total", "relay_notifications_inserted_total", "relay_webhook_attempts_total")
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "relay_send_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestHandler(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics.NewObserver(reg).EmailAttempted("app-1", nil)

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `relay_email_attempts_total{result="ok"} 1`)
}
