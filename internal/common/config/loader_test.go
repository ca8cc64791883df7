package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
rynko:
  api_key: rk_test
static_data:
  driver: memory
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultRynkoBaseURL, cfg.Rynko.BaseURL)
	assert.Equal(t, 60000, cfg.Rynko.Timeout)
	assert.Equal(t, "document.completed", cfg.Trigger.Event)
	assert.Equal(t, "webhook", cfg.Trigger.Path)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10, cfg.Camunda.MaxJobsActive)

	worker := GetWorkerConfig(cfg, DocumentWorkerName)
	assert.True(t, worker.Enabled)
	assert.Equal(t, 10, worker.MaxJobsActive)
	assert.Equal(t, 30000, worker.Timeout)
}

func TestLoadFromFile_TrimsBaseURL(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
rynko:
  api_key: rk_test
  base_url: https://eu.rynko.dev/
static_data:
  driver: memory
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://eu.rynko.dev", cfg.Rynko.BaseURL)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_RYNKO_KEY", "rk_from_env")
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
rynko:
  api_key: ${TEST_RYNKO_KEY}
static_data:
  driver: memory
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rk_from_env", cfg.Rynko.APIKey)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("RYNKO_API_KEY", "rk_override")
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
rynko:
  api_key: rk_file
static_data:
  driver: memory
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rk_override", cfg.Rynko.APIKey)
}

func TestLoadFromFile_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "missing api key",
			body: `
camunda:
  broker_address: localhost:26500
static_data:
  driver: memory
`,
			wantErr: "api_key",
		},
		{
			name: "missing broker",
			body: `
rynko:
  api_key: rk_test
static_data:
  driver: memory
`,
			wantErr: "broker_address",
		},
		{
			name: "enabled trigger needs public url",
			body: `
camunda:
  broker_address: localhost:26500
rynko:
  api_key: rk_test
trigger:
  enabled: true
  node_id: trigger-1
  bpmn_process_id: on-document
static_data:
  driver: memory
`,
			wantErr: "public_url",
		},
		{
			name: "unsupported trigger event",
			body: `
camunda:
  broker_address: localhost:26500
rynko:
  api_key: rk_test
trigger:
  enabled: true
  node_id: trigger-1
  event: document.deleted
  public_url: https://hooks.example.com
  bpmn_process_id: on-document
static_data:
  driver: memory
`,
			wantErr: "event",
		},
		{
			name: "redis driver without address",
			body: `
camunda:
  broker_address: localhost:26500
rynko:
  api_key: rk_test
`,
			wantErr: "database.redis.address",
		},
		{
			name: "unknown driver",
			body: `
camunda:
  broker_address: localhost:26500
rynko:
  api_key: rk_test
static_data:
  driver: etcd
`,
			wantErr: "static_data.driver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		DocumentWorkerName: {Enabled: false},
	}}
	assert.False(t, IsWorkerEnabled(cfg, DocumentWorkerName))
	assert.True(t, IsWorkerEnabled(cfg, "other"))
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "rynko", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=rynko sslmode=disable", p.GetDSN())
}
