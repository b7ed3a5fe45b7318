package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// Observer records fan-out telemetry as Prometheus metrics. Labels carry the
// send path and outcome only; application ids are left to logs.
type Observer struct {
	inserted *prometheus.CounterVec
	emails   *prometheus.CounterVec
	webhooks *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewObserver registers the relay metrics with reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	f := promauto.With(reg)
	return &Observer{
		inserted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_notifications_inserted_total",
			Help: "Notifications persisted, by send path.",
		}, []string{"path"}),
		emails: f.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_email_attempts_total",
			Help: "Notification emails attempted, by result.",
		}, []string{"result"}),
		webhooks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_webhook_attempts_total",
			Help: "Webhook calls attempted, by event and result.",
		}, []string{"event", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relay_send_duration_seconds",
			Help:    "Duration of send requests, by send path.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"path"}),
	}
}

func (o *Observer) NotificationsInserted(_, path string, n int) {
	if n > 0 {
		o.inserted.WithLabelValues(path).Add(float64(n))
	}
}

func (o *Observer) EmailAttempted(_ string, err error) {
	o.emails.WithLabelValues(result(err)).Inc()
}

func (o *Observer) WebhookAttempted(_, event string, err error) {
	o.webhooks.WithLabelValues(event, result(err)).Inc()
}

func (o *Observer) SendCompleted(_, path string, d time.Duration, _ error) {
	o.duration.WithLabelValues(path).Observe(d.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}
