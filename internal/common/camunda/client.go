package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rynko-workers/internal/common/config"
	"rynko-workers/internal/common/errors"
	"rynko-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/cenkalti/backoff/v4"
)

type Client struct {
	client zbc.Client
	config *ClientConfig
	logger logger.Logger
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	RetryConfig            *RetryConfig
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// ConfigFrom maps the camunda config section.
func ConfigFrom(cfg config.CamundaConfig) *ClientConfig {
	return &ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: cfg.Plaintext,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         config.GetDuration(cfg.RequestTimeout),
		RetryConfig:            DefaultRetryConfig,
	}
}

// NewClientWithConfig creates the Zeebe client and waits for the gateway
// topology to answer, retrying with exponential backoff.
func NewClientWithConfig(ctx context.Context, cfg *ClientConfig, log logger.Logger) (*Client, error) {
	if cfg.RetryConfig == nil {
		cfg.RetryConfig = DefaultRetryConfig
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, config: cfg, logger: log}

	connect := func() error {
		return c.HealthCheck(ctx)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("Zeebe gateway not reachable yet", map[string]interface{}{
			"gateway": cfg.GatewayAddress,
			"error":   err.Error(),
			"wait":    wait.String(),
		})
	}
	if err := backoff.RetryNotify(connect, c.policy(ctx), notify); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.GatewayAddress, err)
	}

	return c, nil
}

func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) policy(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.config.RetryConfig.BaseDelay
	exp.MaxInterval = c.config.RetryConfig.MaxDelay
	return backoff.WithContext(
		backoff.WithMaxRetries(exp, uint64(c.config.RetryConfig.MaxRetries)),
		ctx,
	)
}

// ExecuteWithRetry runs a Zeebe command, retrying transient gateway errors.
func (c *Client) ExecuteWithRetry(
	ctx context.Context,
	commandFunc func(context.Context) (interface{}, error),
	operationName string,
) (interface{}, error) {
	var result interface{}
	attempt := 0

	op := func() error {
		attempt++
		reqCtx := ctx
		if c.config.RequestTimeout > 0 {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
			defer cancel()
		}
		r, err := commandFunc(reqCtx)
		if err != nil {
			if !isRetryableZeebeError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = r
		return nil
	}

	if err := backoff.Retry(op, c.policy(ctx)); err != nil {
		return nil, mapZeebeError(err, operationName, attempt)
	}
	return result, nil
}

// StartProcessInstance creates an instance of the latest deployed version
// of bpmnProcessID and returns its key.
func (c *Client) StartProcessInstance(ctx context.Context, bpmnProcessID string, variables map[string]interface{}) (int64, error) {
	res, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		cmd, err := c.client.NewCreateInstanceCommand().
			BPMNProcessId(bpmnProcessID).
			LatestVersion().
			VariablesFromMap(variables)
		if err != nil {
			return nil, err
		}
		return cmd.Send(ctx)
	}, "create-process-instance")
	if err != nil {
		return 0, err
	}

	resp, ok := res.(interface{ GetProcessInstanceKey() int64 })
	if !ok {
		return 0, fmt.Errorf("unexpected create instance response %T", res)
	}
	return resp.GetProcessInstanceKey(), nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	_, err := c.client.NewTopologyCommand().Send(ctx)
	if err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
		"resource_exhausted",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func mapZeebeError(err error, operation string, attempts int) error {
	msg := err.Error()
	lowerMsg := strings.ToLower(msg)

	enhancedMsg := fmt.Sprintf("Zeebe operation '%s' failed", operation)
	if attempts > 1 {
		enhancedMsg += fmt.Sprintf(" after %d attempts", attempts)
	}

	stdErr := &errors.StandardError{
		Message:   enhancedMsg,
		Details:   msg,
		Timestamp: time.Now().UTC(),
	}

	switch {
	case strings.Contains(lowerMsg, "connection refused") ||
		strings.Contains(lowerMsg, "connection reset") ||
		strings.Contains(lowerMsg, "unavailable") ||
		strings.Contains(lowerMsg, "unreachable"):
		stdErr.Code = "ZEEBE_UNAVAILABLE"
		stdErr.Retryable = true

	case strings.Contains(lowerMsg, "timeout") ||
		strings.Contains(lowerMsg, "deadline exceeded"):
		stdErr.Code = "ZEEBE_TIMEOUT"
		stdErr.Retryable = true

	case strings.Contains(lowerMsg, "not found"):
		stdErr.Code = "ZEEBE_NOT_FOUND"

	case strings.Contains(lowerMsg, "permission denied") ||
		strings.Contains(lowerMsg, "unauthorized") ||
		strings.Contains(lowerMsg, "unauthenticated"):
		stdErr.Code = "ZEEBE_UNAUTHORIZED"

	default:
		stdErr.Code = "ZEEBE_COMMAND_FAILED"
	}
	return stdErr
}
