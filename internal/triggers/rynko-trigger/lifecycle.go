package rynkotrigger

import (
	"context"
	"fmt"

	"rynko-workers/internal/common/errors"
	"rynko-workers/internal/common/logger"
	"rynko-workers/internal/common/metrics"
	"rynko-workers/internal/common/staticdata"
	"rynko-workers/internal/models"
)

// Manager keeps at most one vendor webhook subscription registered for a
// trigger node, tracking its id in the node's static data.
type Manager struct {
	config *Config
	logger logger.Logger
	api    WebhookAPI
	data   *staticdata.NodeData
}

func NewManager(cfg *Config, api WebhookAPI, data *staticdata.NodeData, log logger.Logger) *Manager {
	return &Manager{
		config: cfg,
		logger: log,
		api:    api,
		data:   data,
	}
}

// CheckExists reports whether the subscription is registered. A stored id
// is verified remotely and cleared when the lookup fails. Without one, an
// existing subscription for the same URL and event is adopted.
func (m *Manager) CheckExists(ctx context.Context) bool {
	webhookID := m.storedID(ctx)

	if webhookID != "" {
		if _, err := m.api.GetWebhookSubscription(ctx, webhookID); err != nil {
			m.lifecycleFailed("checkExists", err)
			m.clearID(ctx)
			return false
		}
		metrics.WebhookLifecycleCalls.WithLabelValues("checkExists", "exists").Inc()
		return true
	}

	subs, err := m.api.ListWebhookSubscriptions(ctx)
	if err != nil {
		m.lifecycleFailed("checkExists", err)
		return false
	}

	callbackURL := m.config.CallbackURL()
	for _, sub := range subs {
		if sub.Subscribes(callbackURL, m.config.Event) {
			if err := m.data.Set(ctx, webhookIDKey, sub.ID); err != nil {
				m.storeFailed("set", err)
				return false
			}
			m.logger.Info("Adopted existing webhook subscription", map[string]interface{}{
				"webhookId": sub.ID,
				"event":     m.config.Event,
			})
			metrics.WebhookLifecycleCalls.WithLabelValues("checkExists", "adopted").Inc()
			return true
		}
	}

	metrics.WebhookLifecycleCalls.WithLabelValues("checkExists", "missing").Inc()
	return false
}

// Create registers a subscription for the configured event and stores its id.
func (m *Manager) Create(ctx context.Context) bool {
	req := models.NewCreateWebhookRequest(m.config.CallbackURL(), m.config.Event)

	sub, err := m.api.CreateWebhookSubscription(ctx, req)
	if err != nil {
		m.lifecycleFailed("create", err)
		return false
	}

	if err := m.data.Set(ctx, webhookIDKey, sub.ID); err != nil {
		m.storeFailed("set", err)
		return false
	}

	m.logger.Info("Registered webhook subscription", map[string]interface{}{
		"webhookId": sub.ID,
		"event":     m.config.Event,
		"url":       req.URL,
	})
	metrics.WebhookLifecycleCalls.WithLabelValues("create", "ok").Inc()
	return true
}

// Delete removes the tracked subscription, ignoring remote failures, and
// always clears the stored id.
func (m *Manager) Delete(ctx context.Context) bool {
	webhookID := m.storedID(ctx)
	if webhookID == "" {
		return true
	}

	if err := m.api.DeleteWebhookSubscription(ctx, webhookID); err != nil {
		m.lifecycleFailed("delete", err)
	} else {
		m.logger.Info("Deleted webhook subscription", map[string]interface{}{
			"webhookId": webhookID,
		})
		metrics.WebhookLifecycleCalls.WithLabelValues("delete", "ok").Inc()
	}

	m.clearID(ctx)
	return true
}

// Activate makes sure a subscription exists, creating one if needed.
func (m *Manager) Activate(ctx context.Context) error {
	if m.CheckExists(ctx) {
		return nil
	}
	if !m.Create(ctx) {
		return errors.NewWebhookLifecycleFailedError("activate",
			fmt.Errorf("could not register %s webhook for %s", m.config.Event, m.config.CallbackURL()))
	}
	return nil
}

// Deactivate deletes the subscription.
func (m *Manager) Deactivate(ctx context.Context) {
	m.Delete(ctx)
}

func (m *Manager) storedID(ctx context.Context) string {
	id, ok, err := m.data.Get(ctx, webhookIDKey)
	if err != nil {
		m.storeFailed("get", err)
		return ""
	}
	if !ok {
		return ""
	}
	return id
}

func (m *Manager) clearID(ctx context.Context) {
	if err := m.data.Delete(ctx, webhookIDKey); err != nil {
		m.storeFailed("delete", err)
	}
}

func (m *Manager) lifecycleFailed(step string, err error) {
	metrics.WebhookLifecycleCalls.WithLabelValues(step, "error").Inc()
	stdErr := errors.AsStandardError(err)
	m.logger.Warn(fmt.Sprintf("Webhook %s failed", step), map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"error":     stdErr.Message,
		"event":     m.config.Event,
	})
}

func (m *Manager) storeFailed(op string, err error) {
	stdErr := errors.AsStandardError(err)
	if stdErr.Code != errors.ErrCodeStaticDataFailed {
		stdErr = errors.NewStaticDataFailedError(op, err)
	}
	m.logger.Error(stdErr.Message, map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"error":     stdErr.Details,
		"nodeId":    m.data.NodeID(),
	})
}
