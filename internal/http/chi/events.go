package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marcelsud/webhook-exchange/intake"
	"github.com/marcelsud/webhook-exchange/signature"
)

/* HTTP layer DTOs for the intake API
 * Separate from domain entities to avoid leaking internal structure
 */

// eventEnvelope carries the identity fields read from the raw body
// The signature is computed over the raw bytes, so the body is parsed
// without re-marshaling
type eventEnvelope struct {
	WorkflowID string `json:"workflow_id"`
	AgentID    string `json:"agent_id"`
	Offset     *int64 `json:"offset"`
}

// eventAckResponse represents the API response when receiving an event
type eventAckResponse struct {
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
}

// eventResponse represents a stored event in the API
type eventResponse struct {
	EventID     string     `json:"event_id"`
	WorkflowID  string     `json:"workflow_id"`
	AgentID     string     `json:"agent_id"`
	Offset      *int64     `json:"offset,omitempty"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Attempts    int        `json:"attempts"`
	ReceivedAt  time.Time  `json:"received_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// postEvent handles POST /v1/events
func postEvent(intakeService intake.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		var envelope eventEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			http.Error(w, "body must be a JSON object", http.StatusBadRequest)
			return
		}
		if envelope.WorkflowID == "" || envelope.AgentID == "" {
			http.Error(w, "workflow_id and agent_id are required", http.StatusBadRequest)
			return
		}

		ack, err := intakeService.Receive(
			r.Context(),
			envelope.WorkflowID,
			envelope.AgentID,
			envelope.Offset,
			body,
			r.Header.Get(signature.Header),
		)
		if errors.Is(err, intake.ErrInvalidSignature) {
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(ack.HTTPStatus)
		response := eventAckResponse{
			EventID:   ack.EventID,
			Duplicate: ack.Duplicate,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// getEvent handles GET /v1/events/:id
func getEvent(events intake.Reader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		event, err := events.Get(r.Context(), id)
		if errors.Is(err, intake.ErrNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		response := eventResponse{
			EventID:     event.ID,
			WorkflowID:  event.WorkflowID,
			AgentID:     event.AgentID,
			Offset:      event.Offset,
			Status:      event.Status.String(),
			Error:       event.Error,
			Attempts:    event.AttemptCount,
			ReceivedAt:  event.ReceivedAt,
			ProcessedAt: event.ProcessedAt,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
