// cmd/worker-manager/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"rynko-workers/internal/common/camunda"
	"rynko-workers/internal/common/config"
	"rynko-workers/internal/common/logger"
	"rynko-workers/internal/common/observability"
	"rynko-workers/internal/common/staticdata"
	"rynko-workers/internal/server"
	"rynko-workers/pkg/registry"

	rynkotrigger "rynko-workers/internal/triggers/rynko-trigger"
	rynkodocument "rynko-workers/internal/workers/document/rynko-document"
)

const (
	storeRetries    = 15
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer func() { _ = zapLog.Sync() }()

	log := logger.NewZapAdapter(zapLog)
	log.Info("Starting worker manager...", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	camundaClient, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}

	// --- Static data ---
	store, closeStore, err := staticdata.Open(ctx, cfg, log, storeRetries)
	if err != nil {
		zapLog.Fatal("static data store unavailable", zap.Error(err))
	}

	// --- Rynko document worker ---
	documents, err := rynkodocument.NewHandler(rynkodocument.HandlerOptions{
		AppConfig:     cfg,
		Camunda:       camundaClient,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		zapLog.Fatal("document worker configuration invalid", zap.Error(err))
	}
	if err := documents.Register(); err != nil {
		zapLog.Fatal("document worker registration failed", zap.Error(err))
	}

	// --- Rynko trigger ---
	webhooks := map[string]http.Handler{}
	var trigger *rynkotrigger.Trigger
	if cfg.Trigger.Enabled {
		trigger, err = rynkotrigger.NewTrigger(rynkotrigger.TriggerOptions{
			AppConfig:     cfg,
			Logger:        log,
			Observability: obs,
			Store:         store,
			Starter:       camundaClient,
		})
		if err != nil {
			zapLog.Fatal("trigger configuration invalid", zap.Error(err))
		}
		webhooks[trigger.Path()] = trigger
	} else {
		log.Info("trigger disabled", nil)
	}

	// --- HTTP server ---
	srv := server.New(server.Options{
		Address:     cfg.Server.Address,
		ServiceName: cfg.App.Name,
		Logger:      log,
		Nodes:       registry.All(),
		Options:     documents,
		Ready:       documents,
		Webhooks:    webhooks,
	})
	ln, err := srv.Listen()
	if err != nil {
		zapLog.Fatal("http server failed to bind", zap.Error(err))
	}
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(ln)
	}()

	// The listener is bound, so the callback is reachable before the
	// subscription is registered.
	if trigger != nil {
		if err := trigger.Activate(ctx); err != nil {
			log.Error("Trigger activation failed; deliveries will not arrive", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	log.Info("Worker manager started", map[string]interface{}{
		"taskType": documents.GetTaskType(),
		"address":  ln.Addr().String(),
		"trigger":  trigger != nil,
	})

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received, stopping workers...", nil)
	case err := <-serverErr:
		if err != nil {
			log.Error("HTTP server failed", map[string]interface{}{"error": err.Error()})
		}
	}

	if err := shutdown(trigger, documents, srv, closeStore, camundaClient); err != nil {
		log.Error("Shutdown completed with errors", map[string]interface{}{"error": err.Error()})
	}
	obs.Shutdown()

	log.Info("Worker manager stopped", nil)
}

func shutdown(
	trigger *rynkotrigger.Trigger,
	documents *rynkodocument.Handler,
	srv *server.Server,
	closeStore func() error,
	camundaClient *camunda.Client,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var result *multierror.Error

	if trigger != nil {
		trigger.Shutdown(ctx)
	}
	documents.Close()

	if err := srv.Shutdown(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := closeStore(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := camundaClient.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
