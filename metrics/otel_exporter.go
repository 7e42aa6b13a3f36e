package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/marcelsud/webhook-exchange/delivery"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector

	// OTel meters and instruments
	meter            metric.Meter
	queueDepthGauge  metric.Int64ObservableGauge
	statusCountGauge metric.Int64ObservableGauge
	dlqDepthGauge    metric.Int64ObservableGauge
	deliveryCounter  metric.Int64Counter
	deliveryDuration metric.Float64Histogram
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"webhook-exchange",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	// Pending notifications in the event stream
	oe.queueDepthGauge, err = oe.meter.Int64ObservableGauge(
		"exchange.queue.depth",
		metric.WithDescription("Number of pending notifications in the event stream"),
		metric.WithUnit("{events}"),
		metric.WithInt64Callback(oe.observeQueueDepth),
	)
	if err != nil {
		return fmt.Errorf("creating queue depth gauge: %w", err)
	}

	// Inbound event count gauge (per status)
	oe.statusCountGauge, err = oe.meter.Int64ObservableGauge(
		"exchange.events.count",
		metric.WithDescription("Number of inbound events by status"),
		metric.WithUnit("{events}"),
		metric.WithInt64Callback(oe.observeStatusCounts),
	)
	if err != nil {
		return fmt.Errorf("creating status count gauge: %w", err)
	}

	// Unresolved dead letter entries
	oe.dlqDepthGauge, err = oe.meter.Int64ObservableGauge(
		"exchange.dlq.depth",
		metric.WithDescription("Number of unresolved dead letter entries"),
		metric.WithUnit("{entries}"),
		metric.WithInt64Callback(oe.observeDLQDepth),
	)
	if err != nil {
		return fmt.Errorf("creating dlq depth gauge: %w", err)
	}

	// Finalized outbound deliveries
	oe.deliveryCounter, err = oe.meter.Int64Counter(
		"exchange.deliveries.count",
		metric.WithDescription("Number of finalized outbound deliveries"),
		metric.WithUnit("{deliveries}"),
	)
	if err != nil {
		return fmt.Errorf("creating delivery counter: %w", err)
	}

	// End to end delivery duration including backoff waits
	oe.deliveryDuration, err = oe.meter.Float64Histogram(
		"exchange.delivery.duration",
		metric.WithDescription("End to end duration of finalized deliveries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("creating delivery duration histogram: %w", err)
	}

	return nil
}

// observeQueueDepth is a callback that reports the event stream depth
func (oe *OTelExporter) observeQueueDepth(ctx context.Context, observer metric.Int64Observer) error {
	depth, err := oe.collector.GetQueueDepth(ctx)
	if err != nil {
		return err
	}
	observer.Observe(depth)
	return nil
}

// observeStatusCounts is a callback that reports inbound event counts by status
func (oe *OTelExporter) observeStatusCounts(ctx context.Context, observer metric.Int64Observer) error {
	statusCounts, err := oe.collector.GetEventStatusCounts(ctx)
	if err != nil {
		return err
	}

	for status, count := range statusCounts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("event.status", status),
		))
	}

	return nil
}

// observeDLQDepth is a callback that reports the dead letter backlog
func (oe *OTelExporter) observeDLQDepth(ctx context.Context, observer metric.Int64Observer) error {
	depth, err := oe.collector.GetDLQDepth(ctx)
	if err != nil {
		return err
	}
	observer.Observe(depth)
	return nil
}

// DeliveryFinished records a finalized outbound delivery
// Implements the delivery notifier; called off the orchestrator's hot path
func (oe *OTelExporter) DeliveryFinished(result delivery.Result) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.Bool("delivery.success", result.Success),
		attribute.Int("delivery.attempts", len(result.Attempts)),
	)
	oe.deliveryCounter.Add(ctx, 1, attrs)
	oe.deliveryDuration.Record(ctx, result.Duration.Seconds(), attrs)
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.Handler()
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
