// internal/common/rynko/client.go
package rynko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"rynko-workers/internal/common/errors"
	commonhttp "rynko-workers/internal/common/http"
	"rynko-workers/internal/models"
)

const (
	pathVerify        = "/api/v1/auth/verify"
	pathTeams         = "/api/v1/integration-api/teams"
	pathWorkspaces    = "/api/v1/integration-api/workspaces"
	pathTemplates     = "/api/v1/integration-api/templates"
	pathGenerate      = "/api/v1/documents/generate"
	pathDocuments     = "/api/v1/documents"
	pathSubscriptions = "/api/v1/webhook-subscriptions"
)

// Client calls the Rynko REST API. Every method returns a *errors.StandardError
// with code UPSTREAM_HTTP_ERROR on non-2xx or transport failures.
type Client struct {
	credentials Credentials
	http        *commonhttp.Client
}

// NewClient builds a client. observer may be nil.
func NewClient(creds Credentials, timeout time.Duration, observer commonhttp.RequestObserver) *Client {
	httpClient := commonhttp.NewClient(timeout).WithAuthenticator(creds)
	if observer != nil {
		httpClient = httpClient.WithObserver(observer)
	}
	return &Client{
		credentials: creds,
		http:        httpClient,
	}
}

// BaseURL returns the resolved API base URL.
func (c *Client) BaseURL() string {
	return c.credentials.ResolvedBaseURL()
}

// VerifyCredentials calls the credential test endpoint.
func (c *Client) VerifyCredentials(ctx context.Context) error {
	_, err := c.request(ctx, commonhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.BaseURL() + pathVerify,
	})
	return err
}

func (c *Client) ListTeams(ctx context.Context) ([]models.Team, error) {
	resp, err := c.request(ctx, commonhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.BaseURL() + pathTeams,
	})
	if err != nil {
		return nil, err
	}
	var teams []models.Team
	if err := decodeList(resp, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *Client) ListWorkspaces(ctx context.Context, teamID string) ([]models.Workspace, error) {
	resp, err := c.request(ctx, commonhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.BaseURL() + pathWorkspaces,
		Query:  map[string]string{"teamId": teamID},
	})
	if err != nil {
		return nil, err
	}
	var workspaces []models.Workspace
	if err := decodeList(resp, &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

func (c *Client) ListTemplates(ctx context.Context, workspaceID string) ([]models.Template, error) {
	resp, err := c.request(ctx, commonhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.BaseURL() + pathTemplates,
		Query:  map[string]string{"workspaceId": workspaceID},
	})
	if err != nil {
		return nil, err
	}
	var templates []models.Template
	if err := decodeList(resp, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// GenerateDocument queues a document job and returns the job object.
func (c *Client) GenerateDocument(ctx context.Context, req models.GenerateRequest) (interface{}, error) {
	resp, err := c.request(ctx, commonhttp.RequestOptions{
		Method: http.MethodPost,
		URL:    c.BaseURL() + pathGenerate,
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return UnwrapData(resp), nil
}

func (c *Client) GetDocument(ctx context.Context, jobID string) (interface{}, error) {
	resp, err := c.request(ctx, commonhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.BaseURL() + pathDocuments + "/" + url.PathEscape(jobID),
		Route:  pathDocuments + "/{jobId}",
	})
	if err != nil {
		return nil, err
	}
	return UnwrapData(resp), nil
}

// SearchDocuments returns the raw list response.
func (c *Client) SearchDocuments(ctx context.Context, search models.DocumentSearch) (interface{}, error) {
	return c.request(ctx, commonhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.BaseURL() + pathDocuments,
		Query:  search.Query(),
	})
}

// ListWebhookSubscriptions reads response.data; a missing list is empty.
func (c *Client) ListWebhookSubscriptions(ctx context.Context) ([]models.WebhookSubscription, error) {
	resp, err := c.request(ctx, commonhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.BaseURL() + pathSubscriptions,
	})
	if err != nil {
		return nil, err
	}
	var subs []models.WebhookSubscription
	if err := decodeList(resp, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *Client) GetWebhookSubscription(ctx context.Context, id string) (*models.WebhookSubscription, error) {
	resp, err := c.request(ctx, commonhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.BaseURL() + pathSubscriptions + "/" + url.PathEscape(id),
		Route:  pathSubscriptions + "/{id}",
	})
	if err != nil {
		return nil, err
	}
	// Existence is what matters here; an unexpected body still counts.
	sub := models.WebhookSubscription{ID: id}
	_ = remarshal(UnwrapData(resp), &sub)
	return &sub, nil
}

// CreateWebhookSubscription returns the created subscription read from
// response.data.
func (c *Client) CreateWebhookSubscription(ctx context.Context, req models.CreateWebhookRequest) (*models.WebhookSubscription, error) {
	resp, err := c.request(ctx, commonhttp.RequestOptions{
		Method: http.MethodPost,
		URL:    c.BaseURL() + pathSubscriptions,
		Body:   req,
	})
	if err != nil {
		return nil, err
	}

	body, _ := resp.(map[string]interface{})
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		return nil, errors.NewWebhookLifecycleFailedError("create", fmt.Errorf("response has no data object"))
	}
	var sub models.WebhookSubscription
	if err := remarshal(data, &sub); err != nil {
		return nil, err
	}
	if sub.ID == "" {
		return nil, errors.NewWebhookLifecycleFailedError("create", fmt.Errorf("response has no subscription id"))
	}
	return &sub, nil
}

func (c *Client) DeleteWebhookSubscription(ctx context.Context, id string) error {
	_, err := c.request(ctx, commonhttp.RequestOptions{
		Method: http.MethodDelete,
		URL:    c.BaseURL() + pathSubscriptions + "/" + url.PathEscape(id),
		Route:  pathSubscriptions + "/{id}",
	})
	return err
}

func (c *Client) request(ctx context.Context, opts commonhttp.RequestOptions) (interface{}, error) {
	resp, err := c.http.RequestWithAuthentication(ctx, opts)
	if err != nil {
		if statusErr, ok := err.(*commonhttp.StatusError); ok {
			return nil, errors.NewUpstreamHTTPError(statusErr.StatusCode, statusErr.Message)
		}
		return nil, errors.NewUpstreamTransportError(err)
	}
	return resp, nil
}

// UnwrapData returns body.data when it is present and truthy, else body.
func UnwrapData(body interface{}) interface{} {
	m, ok := body.(map[string]interface{})
	if !ok {
		return body
	}
	if data, ok := m["data"]; ok && truthy(data) {
		return data
	}
	return body
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}

// decodeList accepts either a bare JSON array or an object wrapping the
// array under "data".
func decodeList(body interface{}, out interface{}) error {
	var list interface{} = []interface{}{}
	switch b := body.(type) {
	case []interface{}:
		list = b
	case map[string]interface{}:
		if data, ok := b["data"].([]interface{}); ok {
			list = data
		}
	}
	return remarshal(list, out)
}

func remarshal(in interface{}, out interface{}) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return errors.NewInputParsingFailedError(err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.NewInputParsingFailedError(fmt.Errorf("unexpected response shape: %w", err))
	}
	return nil
}
