package delivery

/* Outcome classification drives the retry loop
 * Success stops with success, Retryable waits and tries again,
 * Terminal stops immediately so permanent client errors are never retried
 */

// Outcome represents the classification of a delivery attempt
type Outcome int

const (
	Success Outcome = iota + 1
	Retryable
	Terminal
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Retryable:
		return "retryable"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// DefaultSuccessStatuses are the statuses treated as delivered
func DefaultSuccessStatuses() []int {
	return []int{200, 201, 202, 204}
}

// DefaultRetryableStatuses are the statuses worth another attempt
func DefaultRetryableStatuses() []int {
	return []int{408, 429, 500, 502, 503, 504}
}

// Classifier maps an attempt to an outcome based on configured status sets
type Classifier struct {
	success   map[int]struct{}
	retryable map[int]struct{}
}

// NewClassifier creates a classifier from explicit status sets
// Empty slices fall back to the defaults
func NewClassifier(success, retryable []int) Classifier {
	if len(success) == 0 {
		success = DefaultSuccessStatuses()
	}
	if len(retryable) == 0 {
		retryable = DefaultRetryableStatuses()
	}

	c := Classifier{
		success:   make(map[int]struct{}, len(success)),
		retryable: make(map[int]struct{}, len(retryable)),
	}
	for _, s := range success {
		c.success[s] = struct{}{}
	}
	for _, s := range retryable {
		c.retryable[s] = struct{}{}
	}
	return c
}

// Classify determines the outcome of an attempt
// Network failures are always retryable; statuses in neither set are terminal
func (c Classifier) Classify(attempt Attempt) Outcome {
	if attempt.NetworkError {
		return Retryable
	}
	if _, ok := c.success[attempt.StatusCode]; ok {
		return Success
	}
	if _, ok := c.retryable[attempt.StatusCode]; ok {
		return Retryable
	}
	return Terminal
}
