package rynkotrigger

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"rynko-workers/internal/common/config"
	"rynko-workers/internal/common/errors"
	"rynko-workers/internal/common/logger"
	"rynko-workers/internal/common/metrics"
	"rynko-workers/internal/common/observability"
	"rynko-workers/internal/common/rynko"
	"rynko-workers/internal/common/staticdata"
	"rynko-workers/pkg/registry"

	"github.com/google/uuid"
)

const maxDeliveryBytes = 10 << 20

// Trigger is the rynkoTrigger node: it owns the webhook subscription and
// turns each delivery into a process instance.
type Trigger struct {
	config  *Config
	logger  logger.Logger
	manager *Manager
	starter ProcessStarter
}

type TriggerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Logger        logger.Logger
	Observability *observability.Observability
	Store         staticdata.Store
	Starter       ProcessStarter
	// API overrides the Rynko client built from the configuration.
	API WebhookAPI
}

func NewTrigger(opts TriggerOptions) (*Trigger, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", registry.NodeRynkoTrigger, err)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%s requires a static data store", registry.NodeRynkoTrigger)
	}
	if opts.Starter == nil {
		return nil, fmt.Errorf("%s requires a process starter", registry.NodeRynkoTrigger)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.With(map[string]interface{}{
		"trigger": registry.NodeRynkoTrigger,
		"nodeId":  cfg.NodeID,
	})

	api := opts.API
	if api == nil {
		creds := rynko.Credentials{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL}
		api = rynko.NewClient(creds, cfg.APITimeout, opts.Observability)
	}

	return &Trigger{
		config:  cfg,
		logger:  log,
		manager: NewManager(cfg, api, staticdata.ForNode(opts.Store, cfg.NodeID), log),
		starter: opts.Starter,
	}, nil
}

func (t *Trigger) Manager() *Manager {
	return t.manager
}

// Path is the callback path segment served under CallbackPrefix.
func (t *Trigger) Path() string {
	return t.config.Path
}

func (t *Trigger) IsEnabled() bool {
	return t.config.Enabled
}

// Activate registers the webhook subscription.
func (t *Trigger) Activate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.LifecycleTimeout)
	defer cancel()

	t.logger.Info("Activating webhook trigger", map[string]interface{}{
		"event":       t.config.Event,
		"callbackUrl": t.config.CallbackURL(),
	})
	return t.manager.Activate(ctx)
}

// Deactivate removes the webhook subscription.
func (t *Trigger) Deactivate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, t.config.LifecycleTimeout)
	defer cancel()

	t.logger.Info("Deactivating webhook trigger", nil)
	t.manager.Deactivate(ctx)
}

// Shutdown deactivates the trigger when DeactivateOnShutdown is set and
// otherwise leaves the subscription registered for the next start to adopt.
// It reports whether the subscription was deleted.
func (t *Trigger) Shutdown(ctx context.Context) bool {
	if !t.config.DeactivateOnShutdown {
		t.logger.Info("Keeping webhook subscription registered", map[string]interface{}{
			"event": t.config.Event,
		})
		return false
	}
	t.Deactivate(ctx)
	return true
}

// ServeHTTP accepts a delivery and starts the configured process with the
// body as its variables. The body is not verified or validated.
func (t *Trigger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deliveryID := uuid.New().String()

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDeliveryBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		t.reject(w, deliveryID, status, err)
		return
	}

	variables, err := deliveryVariables(raw)
	if err != nil {
		t.reject(w, deliveryID, http.StatusBadRequest, err)
		return
	}

	event := t.config.Event
	if e, ok := variables["event"].(string); ok && isEvent(e) {
		event = e
	}

	key, err := t.starter.StartProcessInstance(r.Context(), t.config.BPMNProcessID, variables)
	if err != nil {
		stdErr := errors.AsStandardError(err)
		metrics.WebhookDeliveries.WithLabelValues(event, "start_failed").Inc()
		t.logger.Error("Failed to start process for webhook delivery", map[string]interface{}{
			"deliveryId":    deliveryID,
			"bpmnProcessId": t.config.BPMNProcessID,
			"errorCode":     string(stdErr.Code),
			"error":         stdErr.Message,
		})
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"received": false,
			"error":    stdErr.Message,
		})
		return
	}

	metrics.WebhookDeliveries.WithLabelValues(event, "started").Inc()
	t.logger.Info("Webhook delivery started process", map[string]interface{}{
		"deliveryId":         deliveryID,
		"event":              event,
		"processInstanceKey": key,
	})
	writeJSON(w, http.StatusOK, deliveryResponse{Received: true})
}

func (t *Trigger) reject(w http.ResponseWriter, deliveryID string, status int, err error) {
	metrics.WebhookDeliveries.WithLabelValues(t.config.Event, "rejected").Inc()
	t.logger.Warn("Rejected webhook delivery", map[string]interface{}{
		"deliveryId": deliveryID,
		"status":     status,
		"error":      err.Error(),
	})
	writeJSON(w, status, map[string]interface{}{
		"received": false,
		"error":    err.Error(),
	})
}

// deliveryVariables decodes a delivery body. An object is used as-is;
// any other JSON value is wrapped as {"items": value}.
func deliveryVariables(raw []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("empty request body")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("request body is not valid JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("request body has trailing data")
	}

	if obj, ok := body.(map[string]interface{}); ok {
		return obj, nil
	}
	return map[string]interface{}{"items": body}, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Starter adapts a function to ProcessStarter.
type Starter func(ctx context.Context, bpmnProcessID string, variables map[string]interface{}) (int64, error)

func (f Starter) StartProcessInstance(ctx context.Context, bpmnProcessID string, variables map[string]interface{}) (int64, error) {
	return f(ctx, bpmnProcessID, variables)
}
