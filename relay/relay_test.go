package relay_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelsud/webhook-exchange/delivery"
	"github.com/marcelsud/webhook-exchange/destinations"
	"github.com/marcelsud/webhook-exchange/intake"
	"github.com/marcelsud/webhook-exchange/relay"
)

type stubDeliverer struct {
	calls   []string // webhook ids in call order
	targets map[string]delivery.Target
	results map[string]delivery.Result
	err     error
}

func (s *stubDeliverer) DeliverTo(ctx context.Context, webhookID string, target delivery.Target, payload []byte) (delivery.Result, error) {
	s.calls = append(s.calls, webhookID)
	if s.targets == nil {
		s.targets = make(map[string]delivery.Target)
	}
	s.targets[webhookID] = target
	if s.err != nil {
		return delivery.Result{}, s.err
	}
	if result, ok := s.results[webhookID]; ok {
		return result, nil
	}
	return delivery.Result{WebhookID: webhookID, Success: true}, nil
}

func loadDestinations(t *testing.T, content string) *destinations.Loader {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "destinations-*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())

	loader := destinations.NewLoader()
	require.NoError(t, loader.Load(tmpFile.Name()))
	return loader
}

func TestProcessorProcess(t *testing.T) {
	event := intake.Event{
		ID:      "evt-1",
		Payload: []byte(`{"kind":"run.completed"}`),
	}

	twoTargets := `
destinations:
  - id: "orders"
    target_url: "https://example.com/orders"
  - id: "billing"
    target_url: "https://example.com/billing"
`

	t.Run("success - event fans out to every destination", func(t *testing.T) {
		deliverer := &stubDeliverer{}
		processor := relay.NewProcessor(deliverer, loadDestinations(t, twoTargets), zerolog.Nop())

		require.NoError(t, processor.Process(context.Background(), event))
		assert.Len(t, deliverer.calls, 2)
		assert.Contains(t, deliverer.calls, "evt-1:orders")
		assert.Contains(t, deliverer.calls, "evt-1:billing")
	})

	t.Run("success - destination overrides reach the deliverer", func(t *testing.T) {
		deliverer := &stubDeliverer{}
		processor := relay.NewProcessor(deliverer, loadDestinations(t, `
destinations:
  - id: "orders"
    target_url: "https://example.com/orders"
    secret: "tenant-secret"
    max_attempts: 2
    timeout_ms: 1500
`), zerolog.Nop())

		require.NoError(t, processor.Process(context.Background(), event))
		target := deliverer.targets["evt-1:orders"]
		assert.Equal(t, "https://example.com/orders", target.URL)
		assert.Equal(t, "tenant-secret", target.Secret)
		assert.Equal(t, 2, target.MaxAttempts)
		assert.Equal(t, 1500*time.Millisecond, target.Timeout)
	})

	t.Run("success - disabled destinations are skipped", func(t *testing.T) {
		deliverer := &stubDeliverer{}
		processor := relay.NewProcessor(deliverer, loadDestinations(t, `
destinations:
  - id: "orders"
    target_url: "https://example.com/orders"
  - id: "staging"
    target_url: "https://staging.example.com/hooks"
    disabled: true
`), zerolog.Nop())

		require.NoError(t, processor.Process(context.Background(), event))
		assert.Equal(t, []string{"evt-1:orders"}, deliverer.calls)
	})

	t.Run("success - no destinations configured", func(t *testing.T) {
		deliverer := &stubDeliverer{}
		processor := relay.NewProcessor(deliverer, destinations.NewLoader(), zerolog.Nop())

		require.NoError(t, processor.Process(context.Background(), event))
		assert.Empty(t, deliverer.calls)
	})

	t.Run("error - rejected destination fails the fan-out", func(t *testing.T) {
		deliverer := &stubDeliverer{
			results: map[string]delivery.Result{
				"evt-1:orders": {WebhookID: "evt-1:orders", Success: false, Error: "max attempts reached"},
			},
		}
		processor := relay.NewProcessor(deliverer, loadDestinations(t, twoTargets), zerolog.Nop())

		err := processor.Process(context.Background(), event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejected by 1 of 2 destinations")
	})

	t.Run("error - delivery failure surfaces", func(t *testing.T) {
		deliverer := &stubDeliverer{err: errors.New("recording result: connection refused")}
		processor := relay.NewProcessor(deliverer, loadDestinations(t, twoTargets), zerolog.Nop())

		err := processor.Process(context.Background(), event)
		assert.ErrorContains(t, err, "delivering event evt-1")
	})
}
