package chi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/marcelsud/webhook-exchange/stats"
)

const defaultStatsLimit = 24

// rollupResponse represents one aggregated period in the API
type rollupResponse struct {
	PeriodStart         time.Time `json:"period_start"`
	PeriodEnd           time.Time `json:"period_end"`
	EventsReceived      int64     `json:"events_received"`
	EventsCompleted     int64     `json:"events_completed"`
	EventsFailed        int64     `json:"events_failed"`
	SignatureValid      int64     `json:"signature_valid"`
	SignatureInvalid    int64     `json:"signature_invalid"`
	UniqueWorkflows     int64     `json:"unique_workflows"`
	UniqueAgents        int64     `json:"unique_agents"`
	DeliveriesSucceeded int64     `json:"deliveries_succeeded"`
	DeliveriesFailed    int64     `json:"deliveries_failed"`
	DeliveryAttempts    int64     `json:"delivery_attempts"`
	AvgLatencyMs        int64     `json:"avg_latency_ms"`
	MinLatencyMs        int64     `json:"min_latency_ms"`
	MaxLatencyMs        int64     `json:"max_latency_ms"`
	ComputedAt          time.Time `json:"computed_at"`
}

// getStats handles GET /v1/stats
func getStats(statsService stats.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := defaultStatsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		rollups, err := statsService.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		responses := make([]rollupResponse, 0, len(rollups))
		for _, rollup := range rollups {
			responses = append(responses, rollupResponse{
				PeriodStart:         rollup.PeriodStart,
				PeriodEnd:           rollup.PeriodEnd,
				EventsReceived:      rollup.EventsReceived,
				EventsCompleted:     rollup.EventsCompleted,
				EventsFailed:        rollup.EventsFailed,
				SignatureValid:      rollup.SignatureValid,
				SignatureInvalid:    rollup.SignatureInvalid,
				UniqueWorkflows:     rollup.UniqueWorkflows,
				UniqueAgents:        rollup.UniqueAgents,
				DeliveriesSucceeded: rollup.DeliveriesSucceeded,
				DeliveriesFailed:    rollup.DeliveriesFailed,
				DeliveryAttempts:    rollup.DeliveryAttempts,
				AvgLatencyMs:        rollup.AvgLatencyMs,
				MinLatencyMs:        rollup.MinLatencyMs,
				MaxLatencyMs:        rollup.MaxLatencyMs,
				ComputedAt:          rollup.ComputedAt,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(responses); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
