package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marcelsud/webhook-exchange/delivery"
	"github.com/marcelsud/webhook-exchange/destinations"
)

// deliveryRequest asks for an outbound delivery to a configured destination
type deliveryRequest struct {
	DestinationID string          `json:"destination_id"`
	Payload       json.RawMessage `json:"payload"`
}

// deliveryAcceptedResponse is returned when a delivery is queued
type deliveryAcceptedResponse struct {
	WebhookID     string `json:"webhook_id"`
	DestinationID string `json:"destination_id"`
}

// attemptResponse represents one delivery attempt in the API
type attemptResponse struct {
	Number       int       `json:"number"`
	StartedAt    time.Time `json:"started_at"`
	StatusCode   int       `json:"status_code,omitempty"`
	LatencyMs    int64     `json:"latency_ms"`
	Error        string    `json:"error,omitempty"`
	NetworkError bool      `json:"network_error,omitempty"`
}

// deliveryResponse represents a finalized delivery in the API
type deliveryResponse struct {
	WebhookID  string            `json:"webhook_id"`
	Success    bool              `json:"success"`
	StatusCode int               `json:"status_code,omitempty"`
	DurationMs int64             `json:"duration_ms"`
	Error      string            `json:"error,omitempty"`
	Attempts   []attemptResponse `json:"attempts"`
}

// destinationResponse represents a configured destination in the API
type destinationResponse struct {
	ID          string `json:"id"`
	TargetURL   string `json:"target_url"`
	MaxAttempts int    `json:"max_attempts,omitempty"`
	TimeoutMs   int    `json:"timeout_ms,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
}

// postDelivery handles POST /v1/deliveries
// The delivery runs in the background; the response only acknowledges intent
func postDelivery(deliveryService delivery.UseCase, loader *destinations.Loader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request deliveryRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if request.DestinationID == "" {
			http.Error(w, "destination_id is required", http.StatusBadRequest)
			return
		}
		if len(request.Payload) == 0 {
			http.Error(w, "payload is required", http.StatusBadRequest)
			return
		}

		destination, err := loader.Get(request.DestinationID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if destination.Disabled {
			http.Error(w, "destination is disabled", http.StatusConflict)
			return
		}

		webhookID := uuid.NewString()
		target := delivery.Target{
			URL:         destination.TargetURL,
			Headers:     destination.Headers,
			Secret:      destination.Secret,
			MaxAttempts: destination.MaxAttempts,
			Timeout:     time.Duration(destination.TimeoutMs) * time.Millisecond,
		}

		// The request context dies with this response; the delivery must not
		go func() {
			deliveryService.DeliverTo(context.Background(), webhookID, target, request.Payload)
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		response := deliveryAcceptedResponse{
			WebhookID:     webhookID,
			DestinationID: destination.ID,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// getDelivery handles GET /v1/deliveries/:id
func getDelivery(deliveries delivery.Reader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		result, err := deliveries.Get(r.Context(), id)
		if errors.Is(err, delivery.ErrNotFound) {
			http.Error(w, "delivery not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		attempts := make([]attemptResponse, 0, len(result.Attempts))
		for _, attempt := range result.Attempts {
			attempts = append(attempts, attemptResponse{
				Number:       attempt.Number,
				StartedAt:    attempt.StartedAt,
				StatusCode:   attempt.StatusCode,
				LatencyMs:    attempt.Latency.Milliseconds(),
				Error:        attempt.Error,
				NetworkError: attempt.NetworkError,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		response := deliveryResponse{
			WebhookID:  result.WebhookID,
			Success:    result.Success,
			StatusCode: result.StatusCode,
			DurationMs: result.Duration.Milliseconds(),
			Error:      result.Error,
			Attempts:   attempts,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// getDestinations handles GET /v1/destinations
func getDestinations(loader *destinations.Loader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		all := loader.List()

		responses := make([]destinationResponse, 0, len(all))
		for _, destination := range all {
			responses = append(responses, destinationResponse{
				ID:          destination.ID,
				TargetURL:   destination.TargetURL,
				MaxAttempts: destination.MaxAttempts,
				TimeoutMs:   destination.TimeoutMs,
				Disabled:    destination.Disabled,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(responses); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
