package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marcelsud/webhook-exchange/signature"
)

/* Executor performs exactly one HTTP POST per call
 * Every attempt carries headers identifying the logical webhook, the attempt
 * number and an issue timestamp so the receiver can run its own idempotency
 * check, plus an HMAC signature over the raw body
 */

const maxResponseBodyBytes = 64 * 1024

// Executor issues a single delivery attempt with a bounded timeout
type Executor struct {
	client  *http.Client
	secret  string
	timeout time.Duration
}

// NewExecutor creates an executor
// A missing timeout is a configuration error: there is no wait-forever path
func NewExecutor(timeout time.Duration, secret string) (*Executor, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("request timeout must be positive, got %v", timeout)
	}
	return &Executor{
		client:  &http.Client{},
		secret:  secret,
		timeout: timeout,
	}, nil
}

// Execute performs one HTTP POST and records the outcome
// It never returns an error: failures are captured on the Attempt itself
func (e *Executor) Execute(ctx context.Context, webhookID string, target Target, body []byte, attemptNumber int) Attempt {
	now := time.Now()
	attempt := Attempt{
		Number:      attemptNumber,
		StartedAt:   now,
		URL:         target.URL,
		RequestBody: body,
	}

	requestHeaders := map[string]string{
		"Content-Type":     "application/json",
		"X-Webhook-ID":     webhookID,
		"X-Attempt-Number": fmt.Sprintf("%d", attemptNumber),
		"X-Timestamp":      now.UTC().Format(time.RFC3339),
	}
	secret := e.secret
	if target.Secret != "" {
		secret = target.Secret
	}
	if secret != "" {
		sig, err := signature.Sign(secret, body)
		if err != nil {
			attempt.Error = fmt.Sprintf("signing payload: %v", err)
			attempt.NetworkError = false
			return attempt
		}
		requestHeaders[signature.Header] = sig
	}
	// Caller headers never override the identifying headers
	// Comparison is canonical: "content-type" and "Content-Type" are the
	// same header on the wire
	reserved := make(map[string]bool, len(requestHeaders))
	for key := range requestHeaders {
		reserved[http.CanonicalHeaderKey(key)] = true
	}
	for key, value := range target.Headers {
		if !reserved[http.CanonicalHeaderKey(key)] {
			requestHeaders[key] = value
		}
	}
	attempt.RequestHeaders = requestHeaders

	timeout := e.timeout
	if target.Timeout > 0 {
		timeout = target.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		attempt.Error = fmt.Sprintf("creating request: %v", err)
		attempt.NetworkError = true
		return attempt
	}
	for key, value := range requestHeaders {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	attempt.Latency = time.Since(start)
	if err != nil {
		// Timeout, connection refused, DNS failure: no response to record
		attempt.Error = fmt.Sprintf("performing request: %v", err)
		attempt.NetworkError = true
		return attempt
	}
	defer resp.Body.Close()

	attempt.StatusCode = resp.StatusCode
	attempt.ResponseHeaders = make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		attempt.ResponseHeaders[key] = resp.Header.Get(key)
	}

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		attempt.Error = fmt.Sprintf("reading response body: %v", err)
		return attempt
	}
	attempt.ResponseBody = string(responseBody)

	return attempt
}
