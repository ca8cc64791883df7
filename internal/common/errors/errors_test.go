package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUpstreamHTTPError(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		vendorMessage string
		wantMessage   string
		wantRetryable bool
	}{
		{"server error", 500, "", "Request failed with status code 500", false},
		{"bad gateway with message", 502, "upstream down", "Request failed with status code 502: upstream down", false},
		{"not found", 404, "Template not found", "Request failed with status code 404: Template not found", false},
		{"unauthorized", 401, "", "Request failed with status code 401", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewUpstreamHTTPError(tt.status, tt.vendorMessage)
			assert.Equal(t, ErrCodeUpstreamHTTPError, err.Code)
			assert.Equal(t, tt.wantMessage, err.Message)
			assert.Equal(t, tt.wantRetryable, err.Retryable)
			assert.Equal(t, tt.status, err.Metadata["statusCode"])
		})
	}
}

func TestNewUnknownSelectorError(t *testing.T) {
	err := NewUnknownSelectorError("operation", "frobnicate")
	assert.Equal(t, "Unknown operation: frobnicate", err.Message)
	assert.False(t, err.Retryable)
	assert.Equal(t, 0, GetRetryCount(err.Code))
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("5xx upstream error gets no retries", func(t *testing.T) {
		bpmnErr := ConvertToBPMNError(NewUpstreamHTTPError(503, ""))
		assert.Equal(t, "UPSTREAM_HTTP_ERROR", bpmnErr.Code)
		assert.Equal(t, 0, bpmnErr.Retries)
		assert.False(t, bpmnErr.Retryable)
		assert.Equal(t, 503, bpmnErr.ErrorVariables["statusCode"])
	})

	t.Run("transport error gets no retries", func(t *testing.T) {
		bpmnErr := ConvertToBPMNError(NewUpstreamTransportError(fmt.Errorf("connection reset by peer")))
		assert.Equal(t, 0, bpmnErr.Retries)
		assert.False(t, IsRetryableErrorCode(ErrCodeUpstreamHTTPError))
	})

	t.Run("4xx upstream error gets no retries", func(t *testing.T) {
		bpmnErr := ConvertToBPMNError(NewUpstreamHTTPError(400, "bad"))
		assert.Equal(t, 0, bpmnErr.Retries)
		assert.False(t, bpmnErr.Retryable)
	})

	t.Run("unmapped code falls back to itself", func(t *testing.T) {
		bpmnErr := ConvertToBPMNError(&StandardError{Code: "SOMETHING_ELSE", Message: "x"})
		assert.Equal(t, "SOMETHING_ELSE", bpmnErr.Code)
	})

	t.Run("error variables", func(t *testing.T) {
		vars := ConvertToBPMNError(NewValidationFailedError("items must be array")).ToErrorVariables()
		assert.Equal(t, "VALIDATION_FAILED", vars["errorCode"])
		assert.Equal(t, "items must be array", vars["errorDetails"])
		assert.Equal(t, "VALIDATION_FAILED", vars["originalErrorCode"])
	})
}

func TestAsStandardError(t *testing.T) {
	stdErr := NewInputParsingFailedError(fmt.Errorf("bad json"))
	assert.Same(t, stdErr, AsStandardError(stdErr))

	wrapped := AsStandardError(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, wrapped.Code)
	assert.Equal(t, "boom", wrapped.Message)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "UPSTREAM", GetErrorCategory(ErrCodeUpstreamHTTPError))
	assert.Equal(t, "LIFECYCLE", GetErrorCategory(ErrCodeWebhookLifecycleFailed))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeStaticDataFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeUnknownSelector))
	assert.Equal(t, "OTHER", GetErrorCategory("MYSTERY"))
}
