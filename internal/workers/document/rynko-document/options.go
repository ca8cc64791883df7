package rynkodocument

import (
	"context"

	"rynko-workers/internal/common/errors"
	"rynko-workers/internal/common/metrics"
	"rynko-workers/internal/models"
	"rynko-workers/pkg/registry"
)

// LoadOptions runs a dynamic option loader by method name. Loader failures
// are logged and produce an empty list; only an unknown method is an error.
func (s *Service) LoadOptions(ctx context.Context, method string, params map[string]string) ([]models.OptionItem, error) {
	switch method {
	case registry.LoadTeams:
		return s.GetTeams(ctx), nil
	case registry.LoadWorkspaces:
		return s.GetWorkspaces(ctx, params["teamId"]), nil
	case registry.LoadTemplates:
		return s.GetTemplates(ctx, params["workspaceId"], ""), nil
	case registry.LoadPDFTemplates:
		return s.GetTemplates(ctx, params["workspaceId"], models.FormatPDF), nil
	case registry.LoadExcelTemplates:
		return s.GetTemplates(ctx, params["workspaceId"], models.FormatExcel), nil
	default:
		return nil, errors.NewUnknownSelectorError("loadOptions method", method)
	}
}

func (s *Service) GetTeams(ctx context.Context) []models.OptionItem {
	teams, err := s.api.ListTeams(ctx)
	if err != nil {
		s.optionLoadFailed(registry.LoadTeams, err)
		return []models.OptionItem{}
	}
	items := make([]models.OptionItem, 0, len(teams))
	for _, t := range teams {
		items = append(items, t.Option())
	}
	return items
}

func (s *Service) GetWorkspaces(ctx context.Context, teamID string) []models.OptionItem {
	if teamID == "" {
		return []models.OptionItem{}
	}
	workspaces, err := s.api.ListWorkspaces(ctx, teamID)
	if err != nil {
		s.optionLoadFailed(registry.LoadWorkspaces, err)
		return []models.OptionItem{}
	}
	items := make([]models.OptionItem, 0, len(workspaces))
	for _, w := range workspaces {
		items = append(items, w.Option())
	}
	return items
}

// GetTemplates lists the workspace's templates, keeping only those that
// can render format when format is non-empty.
func (s *Service) GetTemplates(ctx context.Context, workspaceID, format string) []models.OptionItem {
	if workspaceID == "" {
		return []models.OptionItem{}
	}

	method := registry.LoadTemplates
	switch format {
	case models.FormatPDF:
		method = registry.LoadPDFTemplates
	case models.FormatExcel:
		method = registry.LoadExcelTemplates
	}

	templates, err := s.api.ListTemplates(ctx, workspaceID)
	if err != nil {
		s.optionLoadFailed(method, err)
		return []models.OptionItem{}
	}
	items := make([]models.OptionItem, 0, len(templates))
	for _, t := range templates {
		if format != "" && !t.Supports(format) {
			continue
		}
		items = append(items, t.Option())
	}
	return items
}

func (s *Service) optionLoadFailed(method string, err error) {
	metrics.OptionLoadFailures.WithLabelValues(method).Inc()
	loadErr := errors.NewOptionLoadFailedError(method, err)
	s.logger.Warn(loadErr.Message, map[string]interface{}{
		"errorCode": string(loadErr.Code),
		"error":     loadErr.Details,
	})
}
