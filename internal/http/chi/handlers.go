package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"

	"github.com/marcelsud/webhook-exchange/delivery"
	"github.com/marcelsud/webhook-exchange/destinations"
	"github.com/marcelsud/webhook-exchange/dlq"
	"github.com/marcelsud/webhook-exchange/intake"
	"github.com/marcelsud/webhook-exchange/stats"
)

// Services bundles everything the API surface depends on
type Services struct {
	Intake       intake.UseCase
	Events       intake.Reader
	Delivery     delivery.UseCase
	Deliveries   delivery.Reader
	Destinations *destinations.Loader
	DLQ          dlq.UseCase
	Stats        stats.UseCase
}

// Handlers sets up the exchange API routes
func Handlers(ctx context.Context, services Services) *chi.Mux {
	logger := httplog.NewLogger("webhook-exchange", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/v1", func(r chi.Router) {
		// Inbound intake
		r.Post("/events", postEvent(services.Intake).ServeHTTP)
		r.Get("/events/{id}", getEvent(services.Events).ServeHTTP)

		// Outbound delivery
		r.Post("/deliveries", postDelivery(services.Delivery, services.Destinations).ServeHTTP)
		r.Get("/deliveries/{id}", getDelivery(services.Deliveries).ServeHTTP)
		r.Get("/destinations", getDestinations(services.Destinations).ServeHTTP)

		// Dead letter queue
		r.Get("/dlq", getDLQEntries(services.DLQ).ServeHTTP)
		r.Post("/dlq/{id}/resolve", postDLQResolve(services.DLQ).ServeHTTP)

		// Statistics
		r.Get("/stats", getStats(services.Stats).ServeHTTP)
	})

	return r
}
