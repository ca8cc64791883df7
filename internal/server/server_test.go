package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"rynko-workers/internal/common/errors"
	"rynko-workers/internal/common/logger"
	"rynko-workers/internal/models"
	"rynko-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOptionLoader struct {
	mock.Mock
}

func (m *MockOptionLoader) LoadOptions(ctx context.Context, method string, params map[string]string) ([]models.OptionItem, error) {
	args := m.Called(method, params)
	items, _ := args.Get(0).([]models.OptionItem)
	return items, args.Error(1)
}

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	opts.Logger = logger.NewTestLogger(t)
	if opts.Nodes == nil {
		opts.Nodes = registry.All()
	}
	ts := httptest.NewServer(New(opts).Router)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out interface{}) int {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, Options{})

	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/health", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Ready(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	ts := newTestServer(t, Options{Ready: checkerFunc(func(ctx context.Context) error {
		if healthy.Load() {
			return nil
		}
		return fmt.Errorf("rynko credential test failed")
	})})

	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/ready", &body))
	assert.Equal(t, "ready", body["status"])

	healthy.Store(false)
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts.URL+"/ready", &body))
	assert.Equal(t, "rynko credential test failed", body["error"])
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Nodes(t *testing.T) {
	ts := newTestServer(t, Options{})

	var nodes []registry.NodeDescription
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/nodes", &nodes))
	require.Len(t, nodes, 3)
	assert.Equal(t, registry.NodeRynko, nodes[0].Name)

	var node registry.NodeDescription
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/nodes/rynkoTrigger", &node))
	assert.Equal(t, "Rynko Trigger", node.DisplayName)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/nodes/renderbase", nil))
}

func TestServer_Options(t *testing.T) {
	loader := new(MockOptionLoader)
	ts := newTestServer(t, Options{Options: loader})

	loader.On("LoadOptions", "getWorkspaces", map[string]string{"teamId": "team_1"}).
		Return([]models.OptionItem{{Name: "Production", Value: "ws_1"}}, nil).Once()
	loader.On("LoadOptions", "getTeams", map[string]string{}).
		Return([]models.OptionItem{}, nil).Once()
	loader.On("LoadOptions", "getFolders", map[string]string{}).
		Return(nil, errors.NewUnknownSelectorError("loadOptions method", "getFolders")).Once()

	var items []models.OptionItem
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/nodes/rynko/options/getWorkspaces?teamId=team_1", &items))
	assert.Equal(t, []models.OptionItem{{Name: "Production", Value: "ws_1"}}, items)

	var raw []interface{}
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/nodes/rynko/options/getTeams", &raw))
	assert.NotNil(t, raw)
	assert.Empty(t, raw)

	var errBody map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/nodes/rynko/options/getFolders", &errBody))
	assert.Equal(t, "Unknown loadOptions method: getFolders", errBody["error"])

	loader.AssertExpectations(t)
}

func TestServer_OptionsDisabled(t *testing.T) {
	ts := newTestServer(t, Options{})
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/nodes/rynko/options/getTeams", nil))
}

func TestServer_Webhooks(t *testing.T) {
	received := make(chan string, 1)
	hook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"received":true}`))
	})
	ts := newTestServer(t, Options{Webhooks: map[string]http.Handler{"webhook": hook}})

	resp, err := http.Post(ts.URL+"/webhooks/rynko/webhook", "application/json", strings.NewReader(`{"event":"document.completed"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/webhooks/rynko/webhook", <-received)

	resp, err = http.Post(ts.URL+"/webhooks/rynko/other", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/webhooks/rynko/webhook")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_RecoversFromPanics(t *testing.T) {
	hook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	ts := newTestServer(t, Options{Webhooks: map[string]http.Handler{"webhook": hook}})

	resp, err := http.Post(ts.URL+"/webhooks/rynko/webhook", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestServer_ListenBeforeServe(t *testing.T) {
	srv := New(Options{Address: "127.0.0.1:0", Logger: logger.NewTestLogger(t), Nodes: registry.All()})

	ln, err := srv.Listen()
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, "http://"+ln.Addr().String()+"/health", &body))

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, <-served)
}

func TestServer_ListenFailsOnBoundAddress(t *testing.T) {
	first := New(Options{Address: "127.0.0.1:0", Logger: logger.NewTestLogger(t)})
	ln, err := first.Listen()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	second := New(Options{Address: ln.Addr().String(), Logger: logger.NewTestLogger(t)})
	_, err = second.Listen()
	assert.ErrorContains(t, err, "failed to listen on")
	assert.Error(t, second.Start())
}
