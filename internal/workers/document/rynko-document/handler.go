package rynkodocument

import (
	"context"
	"fmt"
	"time"

	"rynko-workers/internal/common/camunda"
	"rynko-workers/internal/common/config"
	"rynko-workers/internal/common/errors"
	"rynko-workers/internal/common/logger"
	"rynko-workers/internal/common/metrics"
	"rynko-workers/internal/common/observability"
	"rynko-workers/internal/common/rynko"
	"rynko-workers/internal/models"
	"rynko-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = registry.DocumentTaskType

type Handler struct {
	config       *Config
	logger       logger.Logger
	camunda      *camunda.Client
	obs          *observability.Observability
	service      *Service
	errorHandler *errors.ErrorHandler
	worker       *camunda.Worker
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Camunda       *camunda.Client
	CustomConfig  *Config
	Logger        logger.Logger
	Observability *observability.Observability
	// API overrides the Rynko client built from the configuration.
	API DocumentAPI
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", config.DocumentWorkerName, err)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.With(map[string]interface{}{"worker": TaskType})

	api := opts.API
	if api == nil {
		creds := rynko.Credentials{APIKey: workerConfig.APIKey, BaseURL: workerConfig.BaseURL}
		api = rynko.NewClient(creds, workerConfig.APITimeout, opts.Observability)
	}

	handler := &Handler{
		config:       workerConfig,
		logger:       loggerInstance,
		camunda:      opts.Camunda,
		obs:          opts.Observability,
		errorHandler: errors.NewErrorHandler(loggerInstance),
	}

	handler.service = NewService(ServiceDependencies{
		Logger: loggerInstance,
		API:    api,
	}, handler.config)

	return handler, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing document job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err, startTime)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err, startTime)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJobProcessed(ctx, "completed")
	h.obs.RecordJobDuration(ctx, time.Since(startTime), "completed")
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}

	result, err := validateVariables(variables)
	if err != nil {
		return nil, errors.NewValidationFailedError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("Validation errors: %v", result.GetErrorMessages()))
	}

	return buildInput(variables), nil
}

// buildInput resolves per-item parameters. Item values override the
// top-level ones and defaults fill the rest. Without "items" the top-level
// variables form a single item. Resource and operation are read once.
func buildInput(variables map[string]interface{}) *Input {
	node := make(map[string]interface{}, len(variables))
	for k, v := range variables {
		if k == "items" || k == "continueOnFail" {
			continue
		}
		node[k] = v
	}

	description := registry.Rynko()
	nodeParams := Params(registry.ApplyDefaults(description, node))

	input := &Input{
		Resource:  nodeParams.String("resource"),
		Operation: nodeParams.String("operation"),
	}
	input.ContinueOnFail, _ = variables["continueOnFail"].(bool)

	rawItems, ok := variables["items"].([]interface{})
	if !ok {
		input.Items = []Params{nodeParams}
		return input
	}

	input.Items = make([]Params, 0, len(rawItems))
	for _, raw := range rawItems {
		merged := make(map[string]interface{}, len(node))
		for k, v := range node {
			merged[k] = v
		}
		if m, ok := raw.(map[string]interface{}); ok {
			for k, v := range m {
				merged[k] = v
			}
		}
		input.Items = append(input.Items, Params(registry.ApplyDefaults(description, merged)))
	}
	return input
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	variables := map[string]interface{}{
		"results": output.Results,
	}

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	_, err = request.Send(ctx)
	if err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
	} else {
		h.logger.Info("Successfully completed document job", map[string]interface{}{
			"jobKey":  job.GetKey(),
			"results": len(output.Results),
		})
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, startTime time.Time) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, extractErrorCode(err)).Inc()
	h.obs.RecordJobProcessed(ctx, "failed")
	h.obs.RecordJobDuration(ctx, time.Since(startTime), "failed")
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Register() error {
	if !h.config.Enabled {
		h.logger.Info("Worker is disabled, skipping registration", nil)
		return nil
	}
	if h.camunda == nil {
		return fmt.Errorf("camunda client is required to register %s", TaskType)
	}

	h.worker = camunda.OpenWorker(h.camunda.GetClient(), camunda.WorkerOptions{
		TaskType:      TaskType,
		MaxJobsActive: h.config.MaxJobsActive,
		Timeout:       h.config.Timeout,
	}, h, h.logger)

	return nil
}

func (h *Handler) Close() {
	if h.worker != nil {
		h.worker.Stop()
		h.worker = nil
	}
}

func (h *Handler) HealthCheck(ctx context.Context) error {
	if h.camunda != nil {
		if err := h.camunda.HealthCheck(ctx); err != nil {
			return fmt.Errorf("camunda health check failed: %w", err)
		}
	}

	if err := h.service.TestConnection(ctx); err != nil {
		return fmt.Errorf("rynko credential test failed: %w", err)
	}

	return nil
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

// Execute runs the document operation for every item of input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

// LoadOptions serves the node's dynamic dropdowns.
func (h *Handler) LoadOptions(ctx context.Context, method string, params map[string]string) ([]models.OptionItem, error) {
	return h.service.LoadOptions(ctx, method, params)
}

func extractErrorCode(err error) string {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN_ERROR"
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()

	if appConfig != nil {
		if workerCfg, exists := appConfig.Workers[config.DocumentWorkerName]; exists {
			cfg.Enabled = workerCfg.Enabled
			if workerCfg.MaxJobsActive > 0 {
				cfg.MaxJobsActive = workerCfg.MaxJobsActive
			}
			if workerCfg.Timeout > 0 {
				cfg.Timeout = config.GetDuration(workerCfg.Timeout)
			}
		}

		cfg.APIKey = appConfig.Rynko.APIKey
		cfg.BaseURL = appConfig.Rynko.BaseURL
		if appConfig.Rynko.Timeout > 0 {
			cfg.APITimeout = config.GetDuration(appConfig.Rynko.Timeout)
		}
	}

	return cfg
}
