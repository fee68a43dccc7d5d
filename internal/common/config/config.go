// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Providers  []ProviderConfig        `mapstructure:"providers"`
	Generation GenerationConfig        `mapstructure:"generation"`
	Alerts     AlertConfig             `mapstructure:"alerts"`
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
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
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

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// ProviderConfig describes one hosted chat-completion endpoint. Credentials
// are injected into each provider client explicitly; nothing reads them from
// ambient process state.
type ProviderConfig struct {
	ID         string `mapstructure:"id"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Priority   int    `mapstructure:"priority"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds, per call
	MaxRetries int    `mapstructure:"max_retries"`
}

// GenerationConfig holds tuning for the generation pipeline and result cache.
type GenerationConfig struct {
	CacheBackend      string            `mapstructure:"cache_backend"` // "memory" or "redis"
	CacheTTL          time.Duration     `mapstructure:"cache_ttl"`
	CacheMaxEntries   int               `mapstructure:"cache_max_entries"`
	TaskDeadline      time.Duration     `mapstructure:"task_deadline"`
	SynthesisTokens   int               `mapstructure:"synthesis_tokens"`
	AnalysisTokens    int               `mapstructure:"analysis_tokens"`
	RiskReviewTokens  int               `mapstructure:"risk_review_tokens"`
	TrackedDependency map[string]string `mapstructure:"tracked_dependencies"` // id -> pinned version
	HistoryEnabled    bool              `mapstructure:"history_enabled"`
	SearchIndex       string            `mapstructure:"search_index"`
}

// AlertConfig holds settings for degraded-result operator alerts.
type AlertConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	AWSRegion string `mapstructure:"aws_region"`
	SNSTopic  string `mapstructure:"sns_topic"`
	Email     struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
