package rynkodocument

import (
	"context"
	"fmt"

	"rynko-workers/internal/common/errors"
	"rynko-workers/internal/common/logger"
	"rynko-workers/internal/common/metrics"
	"rynko-workers/internal/models"
	"rynko-workers/pkg/registry"
)

const searchLimit = 10

type Service struct {
	config *Config
	logger logger.Logger
	api    DocumentAPI
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger,
		api:    deps.API,
	}
}

// Execute runs the operation once per item, in order. A failing item either
// aborts the job or, with ContinueOnFail, yields {"error": message}.
// Unknown selectors always abort.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Resource != registry.ResourceDocument {
		return nil, errors.NewUnknownSelectorError("resource", input.Resource)
	}
	if !isOperation(input.Operation) {
		return nil, errors.NewUnknownSelectorError("operation", input.Operation)
	}

	s.logger.Info("Executing document operation", map[string]interface{}{
		"operation": input.Operation,
		"items":     len(input.Items),
	})

	results := make([]interface{}, 0, len(input.Items))
	for i, item := range input.Items {
		result, err := s.executeItem(ctx, input.Operation, item)
		if err != nil {
			stdErr := errors.AsStandardError(err)
			if stdErr.Code == errors.ErrCodeUnknownSelector || !input.ContinueOnFail {
				metrics.WorkerItemsProcessed.WithLabelValues(TaskType, input.Operation, "error").Inc()
				return nil, stdErr
			}

			s.logger.Warn("Item failed, continuing", map[string]interface{}{
				"operation": input.Operation,
				"item":      i,
				"errorCode": string(stdErr.Code),
				"error":     stdErr.Message,
			})
			metrics.WorkerItemsProcessed.WithLabelValues(TaskType, input.Operation, "error").Inc()
			results = append(results, map[string]interface{}{"error": stdErr.Message})
			continue
		}

		if result == nil {
			result = map[string]interface{}{}
		}
		metrics.WorkerItemsProcessed.WithLabelValues(TaskType, input.Operation, "ok").Inc()
		results = append(results, result)
	}

	return &Output{Results: results}, nil
}

func (s *Service) executeItem(ctx context.Context, operation string, item Params) (interface{}, error) {
	switch operation {
	case registry.OperationGenerate:
		return s.generate(ctx, item, item.String("format"))
	case registry.OperationGeneratePDF:
		return s.generate(ctx, item, models.FormatPDF)
	case registry.OperationGenerateExcel:
		return s.generate(ctx, item, models.FormatExcel)
	case registry.OperationGet:
		return s.api.GetDocument(ctx, item.String("jobId"))
	case registry.OperationSearch:
		search, err := buildSearch(item)
		if err != nil {
			return nil, err
		}
		return s.api.SearchDocuments(ctx, search)
	default:
		return nil, errors.NewUnknownSelectorError("operation", operation)
	}
}

func (s *Service) generate(ctx context.Context, item Params, format string) (interface{}, error) {
	return s.api.GenerateDocument(ctx, buildGenerateRequest(item, format))
}

// buildGenerateRequest maps item parameters onto the generate body.
// fileName is sent only when non-empty, waitForCompletion only when set,
// variables only when at least one pair is given. Later duplicate names
// overwrite earlier ones.
func buildGenerateRequest(item Params, format string) models.GenerateRequest {
	req := models.GenerateRequest{
		TemplateID:  item.String("templateId"),
		TeamID:      item.String("teamId"),
		WorkspaceID: item.String("workspaceId"),
		Format:      format,
	}

	options := item.Map("options")
	if fileName, ok := options["fileName"].(string); ok && fileName != "" {
		req.FileName = fileName
	}
	if wait, ok := options["waitForCompletion"].(bool); ok {
		req.WaitForCompletion = &wait
	}

	values, _ := item.Map("variables")["variableValues"].([]interface{})
	if len(values) > 0 {
		req.Variables = make(map[string]interface{}, len(values))
		for _, raw := range values {
			pair, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			req.Variables[fmt.Sprint(pair["name"])] = pair["value"]
		}
	}

	return req
}

func buildSearch(item Params) (models.DocumentSearch, error) {
	search := models.DocumentSearch{Limit: searchLimit}
	switch by := item.String("searchBy"); by {
	case "status":
		search.Key, search.Value = "status", item.String("searchStatus")
	case "templateId":
		search.Key, search.Value = "templateId", item.String("searchTemplateId")
	case "format":
		search.Key, search.Value = "format", item.String("searchFormat")
	default:
		return search, errors.NewUnknownSelectorError("searchBy", by)
	}
	return search, nil
}

// TestConnection runs the credential test.
func (s *Service) TestConnection(ctx context.Context) error {
	return s.api.VerifyCredentials(ctx)
}

func isOperation(op string) bool {
	switch op {
	case registry.OperationGenerate, registry.OperationGeneratePDF, registry.OperationGenerateExcel,
		registry.OperationGet, registry.OperationSearch:
		return true
	}
	return false
}
