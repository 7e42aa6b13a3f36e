package destinations

import (
	"fmt"
	"net/url"
)

/* Destination represents a configured delivery target
 * Maps destination_id to a target URL with per-destination overrides
 */
type Destination struct {
	ID          string
	TargetURL   string
	Secret      string            // signing secret override; empty uses the global secret
	Headers     map[string]string // extra headers sent on every delivery
	MaxAttempts int               // 0 uses the global delivery budget
	TimeoutMs   int               // 0 uses the global attempt timeout
	Disabled    bool              // kept in the registry but skipped at delivery time
}

// Validate checks if the destination configuration is valid
func (d *Destination) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("destination id cannot be empty")
	}
	if d.TargetURL == "" {
		return fmt.Errorf("target_url cannot be empty for destination %s", d.ID)
	}
	parsed, err := url.Parse(d.TargetURL)
	if err != nil {
		return fmt.Errorf("invalid target_url for destination %s: %w", d.ID, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("target_url must be http or https for destination %s (got %q)", d.ID, parsed.Scheme)
	}
	if d.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts cannot be negative for destination %s", d.ID)
	}
	if d.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms cannot be negative for destination %s", d.ID)
	}
	return nil
}
