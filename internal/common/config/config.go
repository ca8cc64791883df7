// internal/common/config/config.go
package config

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func init() {
	// Report validation failures with the yaml/env key names.
	validation.ErrorTag = "mapstructure"
}

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Rynko      RynkoConfig             `mapstructure:"rynko"`
	Trigger    TriggerConfig           `mapstructure:"trigger"`
	StaticData StaticDataConfig        `mapstructure:"static_data"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Server     ServerConfig            `mapstructure:"server"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Logging    LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

func (c CamundaConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BrokerAddress, validation.Required),
		validation.Field(&c.MaxJobsActive, validation.Min(1)),
	)
}

// RynkoConfig holds the API credential. BaseURL falls back to the public
// API when left empty.
type RynkoConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

func (r RynkoConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.APIKey, validation.Required),
		validation.Field(&r.BaseURL, is.URL),
		validation.Field(&r.Timeout, validation.Min(1)),
	)
}

// TriggerConfig configures the webhook trigger node.
type TriggerConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	NodeID        string `mapstructure:"node_id"`
	Event         string `mapstructure:"event"`
	PublicURL     string `mapstructure:"public_url"`
	Path          string `mapstructure:"path"`
	BPMNProcessID string `mapstructure:"bpmn_process_id"`
	// DeactivateOnShutdown removes the vendor subscription on graceful
	// shutdown. Leave off for rolling restarts.
	DeactivateOnShutdown bool `mapstructure:"deactivate_on_shutdown"`
}

// TriggerEvents lists the events a trigger can subscribe to.
var TriggerEvents = []interface{}{"document.completed", "document.failed", "batch.completed"}

func (t TriggerConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.NodeID, validation.When(t.Enabled, validation.Required)),
		validation.Field(&t.Event, validation.When(t.Enabled, validation.Required, validation.In(TriggerEvents...))),
		validation.Field(&t.PublicURL, validation.When(t.Enabled, validation.Required, is.URL)),
		validation.Field(&t.Path, validation.When(t.Enabled, validation.Required)),
		validation.Field(&t.BPMNProcessID, validation.When(t.Enabled, validation.Required)),
	)
}

// StaticDataConfig selects the backend persisting node static data.
type StaticDataConfig struct {
	Driver string `mapstructure:"driver"` // redis | postgres | memory
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Validate checks the sections needed to start the worker manager.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Camunda),
		validation.Field(&c.Rynko),
		validation.Field(&c.Trigger),
	)
	if err != nil {
		return err
	}

	switch c.StaticData.Driver {
	case "redis":
		if c.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for static_data.driver=redis")
		}
	case "postgres":
		if c.Database.Postgres.Host == "" || c.Database.Postgres.Database == "" || c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres host, database and user are required for static_data.driver=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("static_data.driver must be one of redis, postgres, memory (got %q)", c.StaticData.Driver)
	}
	return nil
}
