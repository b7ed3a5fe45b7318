// Package metrics exposes relay delivery telemetry to Prometheus.
//
// Observer implements notifications.Observer and plugs in through
// notifications.WithObserver. Handler serves the registry at /metrics.
//
//	registry := prometheus.NewRegistry()
//	manager := notifications.NewManager(store, notifications.WithObserver(metrics.NewObserver(registry)))
//	api.WithMetricsHandler(metrics.Handler(registry))
//
// Series:
//
//	relay_notifications_inserted_total{path}
//	relay_email_attempts_total{result}
//	relay_webhook_attempts_total{event,result}
//	relay_send_duration_seconds{path}
//
// Application ids are deliberately absent from labels to keep cardinality
// bounded; they are in the logs.
package metrics
