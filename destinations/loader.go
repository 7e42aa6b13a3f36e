package destinations

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/* Loader manages destination configuration from destinations.yaml
 * Provides in-memory lookup for fast access
 */

// Config represents the structure of destinations.yaml
type Config struct {
	Destinations []DestinationConfig `yaml:"destinations"`
}

// DestinationConfig represents a single destination in the YAML file
type DestinationConfig struct {
	ID          string            `yaml:"id"`
	TargetURL   string            `yaml:"target_url"`
	Secret      string            `yaml:"secret"`
	Headers     map[string]string `yaml:"headers"`
	MaxAttempts int               `yaml:"max_attempts"`
	TimeoutMs   int               `yaml:"timeout_ms"`
	Disabled    bool              `yaml:"disabled"`
}

// Loader holds the loaded destinations
type Loader struct {
	destinations map[string]*Destination
}

// NewLoader creates a new destination loader
func NewLoader() *Loader {
	return &Loader{
		destinations: make(map[string]*Destination),
	}
}

// Load reads and parses the destinations.yaml file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading destinations file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing destinations YAML: %w", err)
	}

	for _, dc := range config.Destinations {
		destination := &Destination{
			ID:          dc.ID,
			TargetURL:   dc.TargetURL,
			Secret:      dc.Secret,
			Headers:     dc.Headers,
			MaxAttempts: dc.MaxAttempts,
			TimeoutMs:   dc.TimeoutMs,
			Disabled:    dc.Disabled,
		}

		if err := destination.Validate(); err != nil {
			return fmt.Errorf("validating destination: %w", err)
		}
		if _, exists := l.destinations[destination.ID]; exists {
			return fmt.Errorf("duplicate destination id: %s", destination.ID)
		}

		l.destinations[destination.ID] = destination
	}

	return nil
}

// Get retrieves a destination by its ID
func (l *Loader) Get(id string) (*Destination, error) {
	destination, exists := l.destinations[id]
	if !exists {
		return nil, fmt.Errorf("destination not found: %s", id)
	}
	return destination, nil
}

// List returns all loaded destinations
func (l *Loader) List() []*Destination {
	destinations := make([]*Destination, 0, len(l.destinations))
	for _, destination := range l.destinations {
		destinations = append(destinations, destination)
	}
	return destinations
}

// Exists checks if a destination ID exists
func (l *Loader) Exists(id string) bool {
	_, exists := l.destinations[id]
	return exists
}
