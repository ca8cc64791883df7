package rynkotrigger

import (
	"context"

	"rynko-workers/internal/models"
)

// webhookIDKey is the static data key of the tracked subscription.
const webhookIDKey = "webhookId"

// WebhookAPI is the subset of the Rynko client used by the trigger.
type WebhookAPI interface {
	ListWebhookSubscriptions(ctx context.Context) ([]models.WebhookSubscription, error)
	GetWebhookSubscription(ctx context.Context, id string) (*models.WebhookSubscription, error)
	CreateWebhookSubscription(ctx context.Context, req models.CreateWebhookRequest) (*models.WebhookSubscription, error)
	DeleteWebhookSubscription(ctx context.Context, id string) error
}

// ProcessStarter starts one workflow run per delivery.
type ProcessStarter interface {
	StartProcessInstance(ctx context.Context, bpmnProcessID string, variables map[string]interface{}) (int64, error)
}

type deliveryResponse struct {
	Received bool `json:"received"`
}
