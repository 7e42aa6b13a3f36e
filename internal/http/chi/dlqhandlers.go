package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marcelsud/webhook-exchange/dlq"
)

const defaultDLQLimit = 50

// dlqEntryResponse represents a dead letter entry in the API
type dlqEntryResponse struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	RefID        string     `json:"ref_id"`
	Reason       string     `json:"reason"`
	FailureCount int        `json:"failure_count"`
	MaxRetries   int        `json:"max_retries"`
	NextRetryAt  time.Time  `json:"next_retry_at"`
	Resolved     bool       `json:"resolved"`
	Resolution   string     `json:"resolution,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// resolveRequest carries the operator's decision for an entry
type resolveRequest struct {
	Resolution string `json:"resolution"`
}

func toDLQEntryResponse(entry dlq.Entry) dlqEntryResponse {
	response := dlqEntryResponse{
		ID:           entry.ID,
		Source:       entry.Source.String(),
		RefID:        entry.RefID,
		Reason:       entry.Reason,
		FailureCount: entry.FailureCount,
		MaxRetries:   entry.MaxRetries,
		NextRetryAt:  entry.NextRetryAt,
		Resolved:     entry.Resolved,
		ResolvedAt:   entry.ResolvedAt,
		CreatedAt:    entry.CreatedAt,
	}
	if entry.Resolved {
		response.Resolution = entry.Resolution.String()
	}
	return response
}

// getDLQEntries handles GET /v1/dlq
func getDLQEntries(dlqService dlq.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := defaultDLQLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		entries, err := dlqService.List(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		responses := make([]dlqEntryResponse, 0, len(entries))
		for _, entry := range entries {
			responses = append(responses, toDLQEntryResponse(entry))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(responses); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// postDLQResolve handles POST /v1/dlq/:id/resolve
func postDLQResolve(dlqService dlq.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var request resolveRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resolution := dlq.NewResolution(request.Resolution)
		if err := resolution.Validate(); err != nil {
			http.Error(w, "resolution must be retry, discard or manual", http.StatusBadRequest)
			return
		}

		entry, err := dlqService.Resolve(r.Context(), id, resolution)
		if errors.Is(err, dlq.ErrNotFound) {
			http.Error(w, "dead letter entry not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, dlq.ErrResolved) {
			http.Error(w, "dead letter entry already resolved", http.StatusConflict)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toDLQEntryResponse(entry)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
