// Package logger builds slog loggers for the relay and provides attribute
// helpers for the identifiers that show up in most log lines (application,
// end user, notification, request).
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "relay"),
//		logger.WithContextExtractors(logger.RequestIDExtractor(middleware.GetReqID)),
//	)
//	log.LogAttrs(ctx, slog.LevelWarn, "webhook failed", logger.AppID(app.ID), logger.Error(err))
//
// WithEnvironment picks text output at debug level for development and JSON
// at info level for staging and production, and stamps every record with the
// service and env names. WithLevel, WithFormat and WithOutput override those
// choices afterwards.
//
// Context extractors run on every record, so request-scoped values such as
// the chi request id appear without being passed by hand. Libraries that
// accept a logger default to Discard.
package logger
