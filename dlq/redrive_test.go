package dlq_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelsud/webhook-exchange/dlq"
)

type stubEventStore struct {
	redriven []string
	revived  bool
	err      error
}

func (s *stubEventStore) Redrive(ctx context.Context, id string, now time.Time) (bool, error) {
	s.redriven = append(s.redriven, id)
	return s.revived, s.err
}

type stubEventQueue struct {
	enqueued []string
	err      error
}

func (s *stubEventQueue) Enqueue(ctx context.Context, eventID string) error {
	s.enqueued = append(s.enqueued, eventID)
	return s.err
}

func TestEventRedriver(t *testing.T) {
	ctx := context.Background()

	t.Run("success - failed event goes back to the queue", func(t *testing.T) {
		store := &stubEventStore{revived: true}
		queue := &stubEventQueue{}
		redriver := dlq.NewEventRedriver(store, queue)

		err := redriver.Remediate(ctx, dlq.Entry{
			ID:     "entry-1",
			Source: dlq.SourceIntake,
			RefID:  "evt-1",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"evt-1"}, store.redriven)
		assert.Equal(t, []string{"evt-1"}, queue.enqueued)
	})

	t.Run("success - lost queue notification is not fatal", func(t *testing.T) {
		store := &stubEventStore{revived: true}
		queue := &stubEventQueue{err: assert.AnError}
		redriver := dlq.NewEventRedriver(store, queue)

		err := redriver.Remediate(ctx, dlq.Entry{
			Source: dlq.SourceIntake,
			RefID:  "evt-1",
		})
		assert.NoError(t, err)
	})

	t.Run("error - delivery entries are rejected", func(t *testing.T) {
		store := &stubEventStore{}
		queue := &stubEventQueue{}
		redriver := dlq.NewEventRedriver(store, queue)

		err := redriver.Remediate(ctx, dlq.Entry{
			ID:     "entry-2",
			Source: dlq.SourceDelivery,
			RefID:  "evt-1:orders",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no automatic redrive")
		assert.Empty(t, store.redriven)
	})

	t.Run("error - event not in a redrivable state", func(t *testing.T) {
		store := &stubEventStore{revived: false}
		queue := &stubEventQueue{}
		redriver := dlq.NewEventRedriver(store, queue)

		err := redriver.Remediate(ctx, dlq.Entry{
			Source: dlq.SourceIntake,
			RefID:  "evt-1",
		})
		require.Error(t, err)
		assert.Empty(t, queue.enqueued)
	})
}
