package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcelsud/webhook-exchange/delivery"
	"github.com/marcelsud/webhook-exchange/destinations"
	"github.com/marcelsud/webhook-exchange/intake"
)

/* Relay forwards accepted inbound events to every configured destination.
 * It is the processing step between intake and delivery: an event counts as
 * processed only when all destinations accepted it, so a partial fan-out is
 * retried as a whole. Destinations deduplicate on the webhook id, which is
 * stable across retries
 */

// Deliverer runs one full delivery cycle against a target
type Deliverer interface {
	DeliverTo(ctx context.Context, webhookID string, target delivery.Target, payload []byte) (delivery.Result, error)
}

// Processor fans accepted events out to configured destinations
type Processor struct {
	deliverer Deliverer
	loader    *destinations.Loader
	logger    zerolog.Logger
}

// NewProcessor creates a new relay processor
func NewProcessor(deliverer Deliverer, loader *destinations.Loader, logger zerolog.Logger) *Processor {
	return &Processor{
		deliverer: deliverer,
		loader:    loader,
		logger:    logger.With().Str("component", "relay").Logger(),
	}
}

// Process delivers the event payload to every destination
func (p *Processor) Process(ctx context.Context, event intake.Event) error {
	targets := p.loader.List()
	if len(targets) == 0 {
		p.logger.Debug().Str("event_id", event.ID).Msg("no destinations configured, event dropped")
		return nil
	}

	var failed, skipped int
	for _, destination := range targets {
		if destination.Disabled {
			skipped++
			continue
		}
		webhookID := fmt.Sprintf("%s:%s", event.ID, destination.ID)
		result, err := p.deliverer.DeliverTo(ctx, webhookID, delivery.Target{
			URL:         destination.TargetURL,
			Headers:     destination.Headers,
			Secret:      destination.Secret,
			MaxAttempts: destination.MaxAttempts,
			Timeout:     time.Duration(destination.TimeoutMs) * time.Millisecond,
		}, event.Payload)
		if err != nil {
			return fmt.Errorf("delivering event %s to %s: %w", event.ID, destination.ID, err)
		}
		if !result.Success {
			failed++
			p.logger.Warn().
				Str("event_id", event.ID).
				Str("destination", destination.ID).
				Int("attempts", len(result.Attempts)).
				Str("error", result.Error).
				Msg("destination rejected event")
		}
	}

	if failed > 0 {
		return fmt.Errorf("event %s rejected by %d of %d destinations", event.ID, failed, len(targets)-skipped)
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Int("destinations", len(targets)-skipped).
		Msg("event relayed")
	return nil
}
