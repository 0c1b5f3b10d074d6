package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Artifacts   ArtifactsConfig `mapstructure:"artifacts"`
	Form        FormConfig      `mapstructure:"form"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	MCP         MCPConfig       `mapstructure:"mcp"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLSEnabled   bool          `mapstructure:"tls_enabled"`
	CertFile     string        `mapstructure:"cert_file"`
	KeyFile      string        `mapstructure:"key_file"`
}

// Artifact sources
const (
	ArtifactSourceFile   = "file"
	ArtifactSourceSQLite = "sqlite"
)

// ArtifactsConfig says where the fitted scaler and classifier live
type ArtifactsConfig struct {
	Source         string `mapstructure:"source"` // "file" or "sqlite"
	ScalerPath     string `mapstructure:"scaler_path"`
	ClassifierPath string `mapstructure:"classifier_path"`
	SQLitePath     string `mapstructure:"sqlite_path"`
}

// FormConfig holds per-field overrides of the form's bounds and defaults
type FormConfig struct {
	Fields map[string]FieldOverride `mapstructure:"fields"`
}

// FieldOverride replaces any of a field's min, max or default. Nil members
// keep the built-in value.
type FieldOverride struct {
	Min     *float64 `mapstructure:"min"`
	Max     *float64 `mapstructure:"max"`
	Default *float64 `mapstructure:"default"`
}

// RateLimitConfig throttles form submissions per client address
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	MaxClients        int     `mapstructure:"max_clients"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"` // "stdout", "stderr" or "file"
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}
