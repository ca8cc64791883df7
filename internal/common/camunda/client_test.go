package camunda

import (
	"context"
	"fmt"
	"testing"
	"time"

	"rynko-workers/internal/common/config"
	"rynko-workers/internal/common/errors"
	"rynko-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *Client {
	return &Client{
		config: &ClientConfig{
			RequestTimeout: time.Second,
			RetryConfig: &RetryConfig{
				MaxRetries: 2,
				BaseDelay:  time.Millisecond,
				MaxDelay:   5 * time.Millisecond,
			},
		},
		logger: logger.NewTestLogger(t),
	}
}

func TestExecuteWithRetry_RetriesTransientErrors(t *testing.T) {
	c := testClient(t)
	calls := 0

	res, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, fmt.Errorf("rpc error: code = Unavailable desc = connection refused")
		}
		return "ok", nil
	}, "test")

	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	c := testClient(t)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, fmt.Errorf("rpc error: code = NotFound desc = process 'x' not found")
	}, "create-process-instance")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	stdErr := err.(*errors.StandardError)
	assert.Equal(t, errors.ErrorCode("ZEEBE_NOT_FOUND"), stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Equal(t, "Zeebe operation 'create-process-instance' failed", stdErr.Message)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	c := testClient(t)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, fmt.Errorf("context deadline exceeded")
	}, "test")

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	stdErr := err.(*errors.StandardError)
	assert.Equal(t, errors.ErrorCode("ZEEBE_TIMEOUT"), stdErr.Code)
	assert.Contains(t, stdErr.Message, "after 3 attempts")
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(fmt.Errorf("connection reset by peer")))
	assert.True(t, isRetryableZeebeError(fmt.Errorf("code = RESOURCE_EXHAUSTED")))
	assert.False(t, isRetryableZeebeError(fmt.Errorf("invalid argument")))
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", Plaintext: true, RequestTimeout: 1500})
	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	assert.Same(t, DefaultRetryConfig, cfg.RetryConfig)
}
