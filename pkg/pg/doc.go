// Package pg opens pgx connection pools and applies goose migrations.
//
//	pool, err := pg.Connect(ctx, cfg)
//	...
//	err = pg.Migrate(ctx, pool, migrations.FS, cfg, log)
//
// Error helpers classify pgx/pgconn errors (no rows, unique violation,
// invalid input) so storage code can map them to domain errors.
package pg
