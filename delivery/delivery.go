package delivery

import "time"

/* Delivery entities are append-only audit records
 * An Attempt is immutable once recorded; a Result is finalized exactly once,
 * on success or when the attempt budget is exhausted
 */

// Attempt represents a single HTTP call to a remote endpoint
type Attempt struct {
	Number          int // 1-based
	StartedAt       time.Time
	URL             string
	RequestHeaders  map[string]string
	RequestBody     []byte
	StatusCode      int // 0 when the call never produced a response
	ResponseHeaders map[string]string
	ResponseBody    string
	Latency         time.Duration
	Error           string
	NetworkError    bool
}

// Result represents the outcome of a full delivery cycle for one webhook
type Result struct {
	WebhookID  string
	Attempts   []Attempt
	Success    bool
	StatusCode int // final HTTP status, from the last attempt
	Duration   time.Duration
	Error      string
}

// LastAttempt returns the most recent attempt, if any
func (r Result) LastAttempt() (Attempt, bool) {
	if len(r.Attempts) == 0 {
		return Attempt{}, false
	}
	return r.Attempts[len(r.Attempts)-1], true
}
