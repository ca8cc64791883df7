package rynkodocument

import (
	"context"

	"rynko-workers/internal/common/logger"
	"rynko-workers/internal/models"
)

// Params holds the resolved parameters of one input item.
type Params map[string]interface{}

func (p Params) String(name string) string {
	s, _ := p[name].(string)
	return s
}

func (p Params) Map(name string) map[string]interface{} {
	m, _ := p[name].(map[string]interface{})
	return m
}

type Input struct {
	Resource       string
	Operation      string
	ContinueOnFail bool
	Items          []Params
}

type Output struct {
	Results []interface{} `json:"results"`
}

// DocumentAPI is the subset of the Rynko client used by this worker.
type DocumentAPI interface {
	VerifyCredentials(ctx context.Context) error
	ListTeams(ctx context.Context) ([]models.Team, error)
	ListWorkspaces(ctx context.Context, teamID string) ([]models.Workspace, error)
	ListTemplates(ctx context.Context, workspaceID string) ([]models.Template, error)
	GenerateDocument(ctx context.Context, req models.GenerateRequest) (interface{}, error)
	GetDocument(ctx context.Context, jobID string) (interface{}, error)
	SearchDocuments(ctx context.Context, search models.DocumentSearch) (interface{}, error)
}

type ServiceDependencies struct {
	Logger logger.Logger
	API    DocumentAPI
}
