package notifications

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func makeNotifications(n int) []Notification {
	out := make([]Notification, n)
	for i := range out {
		out[i] = Content{Title: "T", Message: "M"}.For("app-1", fmt.Sprintf("u%d", i))
	}
	return out
}

func TestWriter_Write(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		rows        int
		batchSize   int
		wantBatches []int
	}{
		{name: "nothing to write", rows: 0, batchSize: 500, wantBatches: nil},
		{name: "single batch", rows: 3, batchSize: 500, wantBatches: []int{3}},
		{name: "exact batches", rows: 1000, batchSize: 500, wantBatches: []int{500, 500}},
		{name: "trailing partial batch", rows: 1001, batchSize: 500, wantBatches: []int{500, 500, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := NewMemoryStorage()
			w := NewWriter(store, Config{BatchSize: tt.batchSize})

			var batches []int
			created, err := w.Write(context.Background(), makeNotifications(tt.rows), func(b []Notification) {
				batches = append(batches, len(b))
			})
			require.NoError(t, err)
			assert.Len(t, created, tt.rows)
			assert.Equal(t, tt.wantBatches, batches)

			for i, n := range created {
				assert.NotEmpty(t, n.ID)
				assert.Equal(t, fmt.Sprintf("u%d", i), n.UserID, "rows must keep input order")
			}
		})
	}
}

func TestWriter_FailedBatchStopsWrite(t *testing.T) {
	t.Parallel()

	store := new(MockStorage)
	insertErr := errors.New("deadlock detected")
	first := makeNotifications(2)
	store.On("InsertBatch", mock.Anything, mock.MatchedBy(func(b []Notification) bool { return b[0].UserID == "u0" })).
		Return(first, nil).Once()
	store.On("InsertBatch", mock.Anything, mock.MatchedBy(func(b []Notification) bool { return b[0].UserID == "u2" })).
		Return(nil, insertErr).Once()

	var callbacks int
	created, err := NewWriter(store, Config{BatchSize: 2}).Write(context.Background(), makeNotifications(6), func([]Notification) {
		callbacks++
	})

	require.ErrorIs(t, err, ErrWriteFailed)
	assert.ErrorIs(t, err, insertErr)
	assert.Contains(t, err.Error(), "offset 2")
	assert.Len(t, created, 2)
	assert.Equal(t, 1, callbacks)
	store.AssertNumberOfCalls(t, "InsertBatch", 2)
}

func TestWriter_ShortResultIsFailure(t *testing.T) {
	t.Parallel()

	store := new(MockStorage)
	store.On("InsertBatch", mock.Anything, mock.Anything).Return(makeNotifications(1), nil).Once()

	created, err := NewWriter(store, DefaultConfig()).Write(context.Background(), makeNotifications(3), nil)
	require.ErrorIs(t, err, ErrWriteFailed)
	assert.Empty(t, created)
}
