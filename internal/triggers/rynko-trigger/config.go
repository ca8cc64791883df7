package rynkotrigger

import (
	"fmt"
	"strings"
	"time"

	"rynko-workers/internal/common/config"
	"rynko-workers/internal/models"
)

// CallbackPrefix is the route prefix of inbound webhook deliveries.
const CallbackPrefix = "/webhooks/rynko/"

type Config struct {
	Enabled       bool
	NodeID        string
	Event         string
	PublicURL     string
	Path          string
	BPMNProcessID string
	APIKey        string
	BaseURL       string
	APITimeout    time.Duration
	// LifecycleTimeout bounds each of Activate and Deactivate.
	LifecycleTimeout time.Duration
	// DeactivateOnShutdown deletes the subscription when the process stops.
	// Off by default so restarts keep receiving events.
	DeactivateOnShutdown bool
}

func DefaultConfig() *Config {
	return &Config{
		Event:            models.EventDocumentCompleted,
		Path:             "webhook",
		APITimeout:       60 * time.Second,
		LifecycleTimeout: 30 * time.Second,
	}
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.NodeID == "" {
		return fmt.Errorf("node_id is required")
	}
	if !isEvent(c.Event) {
		return fmt.Errorf("event must be one of %v", models.WebhookEvents)
	}
	if c.PublicURL == "" {
		return fmt.Errorf("public_url is required")
	}
	if c.Path == "" || strings.Contains(c.Path, "/") {
		return fmt.Errorf("path must be a single non-empty segment")
	}
	if c.BPMNProcessID == "" {
		return fmt.Errorf("bpmn_process_id is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	return nil
}

// CallbackURL is the URL the vendor delivers events to.
func (c *Config) CallbackURL() string {
	return strings.TrimRight(c.PublicURL, "/") + CallbackPrefix + c.Path
}

func isEvent(event string) bool {
	for _, e := range models.WebhookEvents {
		if e == event {
			return true
		}
	}
	return false
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	t := appConfig.Trigger
	cfg.Enabled = t.Enabled
	cfg.NodeID = t.NodeID
	cfg.PublicURL = t.PublicURL
	cfg.BPMNProcessID = t.BPMNProcessID
	cfg.DeactivateOnShutdown = t.DeactivateOnShutdown
	if t.Event != "" {
		cfg.Event = t.Event
	}
	if t.Path != "" {
		cfg.Path = t.Path
	}

	cfg.APIKey = appConfig.Rynko.APIKey
	cfg.BaseURL = appConfig.Rynko.BaseURL
	if appConfig.Rynko.Timeout > 0 {
		cfg.APITimeout = config.GetDuration(appConfig.Rynko.Timeout)
	}
	if appConfig.Camunda.RequestTimeout > 0 {
		cfg.LifecycleTimeout = config.GetDuration(appConfig.Camunda.RequestTimeout)
	}
	return cfg
}
