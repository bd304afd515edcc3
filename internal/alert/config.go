package alert

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AlertConfig defines a webhook alert destination.
type AlertConfig struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // ["denied", "allowed_partial"]
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// AlertEvent is the payload sent to webhook endpoints: one interception
// decision worth alerting on.
type AlertEvent struct {
	Timestamp     string   `json:"timestamp"`
	TraceID       string   `json:"trace_id"`
	CallerRole    string   `json:"caller_role"`
	CallerID      string   `json:"caller_id"`
	Intent        string   `json:"intent"`
	Outcome       string   `json:"outcome"`
	Reason        string   `json:"reason"`
	SecurityLevel string   `json:"security_level"`
	BlockedFields []string `json:"blocked_fields,omitempty"`
	CatalogHash   string   `json:"catalog_hash"`
}

// LoadConfigs reads webhook destinations from a YAML file. An empty path
// yields no destinations.
func LoadConfigs(path string) ([]AlertConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alert config: %w", err)
	}
	var doc struct {
		Webhooks []AlertConfig `yaml:"webhooks"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse alert config: %w", err)
	}
	for i, cfg := range doc.Webhooks {
		if cfg.URL == "" {
			return nil, fmt.Errorf("alert config: webhook %d has no url", i)
		}
	}
	return doc.Webhooks, nil
}
