package models

// Webhook events a trigger can subscribe to.
const (
	EventDocumentCompleted = "document.completed"
	EventDocumentFailed    = "document.failed"
	EventBatchCompleted    = "batch.completed"
)

// WebhookEvents lists the supported events, default first.
var WebhookEvents = []string{EventDocumentCompleted, EventDocumentFailed, EventBatchCompleted}

// WebhookSubscription is a vendor-side webhook registration.
type WebhookSubscription struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Name   string   `json:"name,omitempty"`
}

// Subscribes reports whether s delivers event to url.
func (s WebhookSubscription) Subscribes(url, event string) bool {
	if s.URL != url {
		return false
	}
	for _, e := range s.Events {
		if e == event {
			return true
		}
	}
	return false
}

// CreateWebhookRequest is the body of POST /api/v1/webhook-subscriptions.
type CreateWebhookRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Name   string   `json:"name"`
}

// NewCreateWebhookRequest subscribes url to a single event.
func NewCreateWebhookRequest(url, event string) CreateWebhookRequest {
	return CreateWebhookRequest{
		URL:    url,
		Events: []string{event},
		Name:   "n8n - " + event,
	}
}
