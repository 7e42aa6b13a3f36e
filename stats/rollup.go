package stats

import "time"

// Rollup is an aggregated view of one reporting period
// A period is identified by its [start, end) bounds; recomputing the same
// period replaces the previous numbers instead of accumulating them
type Rollup struct {
	PeriodStart time.Time
	PeriodEnd   time.Time

	EventsReceived   int64
	EventsCompleted  int64
	EventsFailed     int64
	SignatureValid   int64
	SignatureInvalid int64
	UniqueWorkflows  int64
	UniqueAgents     int64

	DeliveriesSucceeded int64
	DeliveriesFailed    int64
	DeliveryAttempts    int64
	// Latency figures cover the attempts in the period; zero when the
	// period saw no attempts
	AvgLatencyMs int64
	MinLatencyMs int64
	MaxLatencyMs int64

	ComputedAt time.Time
}

// Empty reports whether the period saw no activity at all
func (r Rollup) Empty() bool {
	return r.EventsReceived == 0 && r.DeliveryAttempts == 0
}
