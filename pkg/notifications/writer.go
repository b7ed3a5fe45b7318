package notifications

import (
	"context"
	"fmt"
	"time"
)

// Writer inserts notifications in fixed-size atomic batches.
type Writer struct {
	store     NotificationStore
	batchSize int
	timeout   time.Duration
}

func NewWriter(store NotificationStore, cfg Config) *Writer {
	cfg = cfg.sanitized()
	return &Writer{store: store, batchSize: cfg.BatchSize, timeout: cfg.StoreTimeout}
}

// Write inserts notifs batch by batch, calling onBatch (if non-nil) after
// each committed batch. The first failing batch stops the write: the rows
// committed so far are returned together with an ErrWriteFailed error.
func (w *Writer) Write(ctx context.Context, notifs []Notification, onBatch func([]Notification)) ([]Notification, error) {
	created := make([]Notification, 0, len(notifs))
	for start := 0; start < len(notifs); start += w.batchSize {
		batch := notifs[start:min(start+w.batchSize, len(notifs))]

		rows, err := w.insert(ctx, batch)
		if err != nil {
			return created, fmt.Errorf("%w: batch at offset %d: %w", ErrWriteFailed, start, err)
		}
		created = append(created, rows...)
		if onBatch != nil {
			onBatch(rows)
		}
	}
	return created, nil
}

func (w *Writer) insert(ctx context.Context, batch []Notification) ([]Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	rows, err := w.store.InsertBatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(batch) {
		return nil, fmt.Errorf("store returned %d rows for %d inserted", len(rows), len(batch))
	}
	return rows, nil
}
