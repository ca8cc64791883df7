package models

import "strconv"

// Document formats accepted by the generate endpoint.
const (
	FormatPDF   = "pdf"
	FormatExcel = "excel"
)

// Document job statuses as reported by the API.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// GenerateRequest is the body of POST /api/v1/documents/generate.
// FileName is omitted when empty, WaitForCompletion when unset and
// Variables when there are none.
type GenerateRequest struct {
	TemplateID        string                 `json:"templateId"`
	TeamID            string                 `json:"teamId"`
	WorkspaceID       string                 `json:"workspaceId"`
	Format            string                 `json:"format"`
	FileName          string                 `json:"fileName,omitempty"`
	WaitForCompletion *bool                  `json:"waitForCompletion,omitempty"`
	Variables         map[string]interface{} `json:"variables,omitempty"`
}

// DocumentSearch is the filter of GET /api/v1/documents: a page size
// plus exactly one filter key (status, templateId or format).
type DocumentSearch struct {
	Limit int
	Key   string
	Value string
}

// Query renders the search as query string parameters.
func (s DocumentSearch) Query() map[string]string {
	limit := s.Limit
	if limit <= 0 {
		limit = 10
	}
	q := map[string]string{"limit": strconv.Itoa(limit)}
	if s.Key != "" {
		q[s.Key] = s.Value
	}
	return q
}
