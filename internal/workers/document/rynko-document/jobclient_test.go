package rynkodocument

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

// ==========================
// Fake Job Client
// ==========================

// fakeGateway records the job commands the handler sends. Calls to any other
// gateway method panic on the nil embedded interface.
type fakeGateway struct {
	pb.GatewayClient

	mu        sync.Mutex
	completed []*pb.CompleteJobRequest
	failed    []*pb.FailJobRequest
}

func (g *fakeGateway) CompleteJob(_ context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completed = append(g.completed, in)
	return &pb.CompleteJobResponse{}, nil
}

func (g *fakeGateway) FailJob(_ context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failed = append(g.failed, in)
	return &pb.FailJobResponse{}, nil
}

type fakeJobClient struct {
	gateway *fakeGateway
}

func newFakeJobClient() *fakeJobClient {
	return &fakeJobClient{gateway: &fakeGateway{}}
}

func noRetry(context.Context, error) bool { return false }

func (c *fakeJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c *fakeJobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c *fakeJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

func decodeVariables(t *testing.T, raw string) map[string]interface{} {
	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &vars))
	return vars
}

// ==========================
// Job Lifecycle Tests
// ==========================

func TestHandler_Handle_CompletesWithResults(t *testing.T) {
	fake := newFakeRynko(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/documents/job_1":
			_, _ = w.Write([]byte(`{"data":{"id":"job_1","status":"completed"}}`))
		default:
			_, _ = w.Write([]byte(`{"data":{"id":"job_2","status":"failed"}}`))
		}
	})
	h := newTestHandler(t, fake.server.URL)
	client := newFakeJobClient()

	h.Handle(client, createMockJob(11, map[string]interface{}{
		"operation": "get",
		"items": []interface{}{
			map[string]interface{}{"jobId": "job_1"},
			map[string]interface{}{"jobId": "job_2"},
		},
	}))

	require.Empty(t, client.gateway.failed)
	require.Len(t, client.gateway.completed, 1)
	assert.Equal(t, int64(11), client.gateway.completed[0].JobKey)

	vars := decodeVariables(t, client.gateway.completed[0].Variables)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"id": "job_1", "status": "completed"},
		map[string]interface{}{"id": "job_2", "status": "failed"},
	}, vars["results"])
}

func TestHandler_Handle_UpstreamFailureIsNotRetried(t *testing.T) {
	var posts atomic.Int32
	fake := newFakeRynko(t, func(w http.ResponseWriter, r *http.Request) {
		if posts.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"data":{"id":"job_1","status":"pending"}}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	h := newTestHandler(t, fake.server.URL)
	client := newFakeJobClient()

	h.Handle(client, createMockJob(12, map[string]interface{}{
		"operation":   "generatePdf",
		"teamId":      "team_1",
		"workspaceId": "ws_1",
		"items": []interface{}{
			map[string]interface{}{"templateId": "inv-001"},
			map[string]interface{}{"templateId": "inv-002"},
		},
	}))

	assert.EqualValues(t, 2, posts.Load())
	require.Empty(t, client.gateway.completed)
	require.Len(t, client.gateway.failed, 1)

	failed := client.gateway.failed[0]
	assert.Equal(t, int64(12), failed.JobKey)
	assert.Equal(t, int32(0), failed.Retries)
	assert.Contains(t, failed.ErrorMessage, "Request failed with status code 503")

	vars := decodeVariables(t, failed.Variables)
	assert.Equal(t, "UPSTREAM_HTTP_ERROR", vars["originalErrorCode"])
	assert.EqualValues(t, 503, vars["statusCode"])
}

func TestHandler_Handle_UnknownOperationIsNotRetried(t *testing.T) {
	h := newTestHandler(t, "http://127.0.0.1:1")
	client := newFakeJobClient()

	h.Handle(client, createMockJob(13, map[string]interface{}{
		"resource":  "document",
		"operation": "frobnicate",
	}))

	require.Empty(t, client.gateway.completed)
	require.Len(t, client.gateway.failed, 1)
	assert.Equal(t, int32(0), client.gateway.failed[0].Retries)
}
