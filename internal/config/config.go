package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/heart-failure-risk-portal/internal/domain"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v      *viper.Viper
	config *domain.Config
}

// NewManager creates a new configuration manager. An empty configFile
// searches the default locations; a missing file there is not an error.
func NewManager(configFile string) (*Manager, error) {
	m := &Manager{v: viper.New()}
	if err := m.loadConfig(configFile); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig(configFile string) error {
	v := m.v

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/heart-failure-risk/")
	}

	v.SetEnvPrefix("HF_RISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	m.setDefaults()
	if err := m.bindFieldEnv(); err != nil {
		return err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and environment variables apply
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	v := m.v

	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.tls_enabled", false)
	v.SetDefault("server.cert_file", "")
	v.SetDefault("server.key_file", "")

	// Artifact defaults mirror the files produced by the training notebook
	v.SetDefault("artifacts.source", domain.ArtifactSourceFile)
	v.SetDefault("artifacts.scaler_path", "models/scaler.json")
	v.SetDefault("artifacts.classifier_path", "models/heart_failure_model.json")
	v.SetDefault("artifacts.sqlite_path", "models/artifacts.db")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("rate_limit.max_clients", 10000)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.filename", "")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// MCP defaults
	v.SetDefault("mcp.server_name", "heart-failure-risk")
	v.SetDefault("mcp.server_version", "v1.0.0")
}

// bindFieldEnv makes form.fields.<name>.{min,max,default} settable from the
// environment, e.g. HF_RISK_FORM_FIELDS_AGE_MAX. These keys have no
// defaults, so AutomaticEnv alone never sees them.
func (m *Manager) bindFieldEnv() error {
	for _, spec := range domain.DefaultFieldSpecs() {
		for _, key := range []string{"min", "max", "default"} {
			if err := m.v.BindEnv(fmt.Sprintf("form.fields.%s.%s", spec.Name, key)); err != nil {
				return fmt.Errorf("error binding environment for form.fields.%s.%s: %w", spec.Name, key, err)
			}
		}
	}
	return nil
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetArtifactsConfig returns the artifact location configuration
func (m *Manager) GetArtifactsConfig() *domain.ArtifactsConfig {
	return &m.config.Artifacts
}

// GetLoggingConfig returns logging configuration
func (m *Manager) GetLoggingConfig() *domain.LoggingConfig {
	return &m.config.Logging
}

// FieldSpecs returns the form fields with any configured overrides applied
func (m *Manager) FieldSpecs() ([]domain.FieldSpec, error) {
	return ApplyFieldOverrides(domain.DefaultFieldSpecs(), m.config.Form.Fields)
}

// ApplyFieldOverrides returns specs with the given bound and default
// overrides applied. Flags cannot be widened beyond {0,1}.
func ApplyFieldOverrides(specs []domain.FieldSpec, overrides map[string]domain.FieldOverride) ([]domain.FieldSpec, error) {
	out := make([]domain.FieldSpec, len(specs))
	copy(out, specs)

	index := make(map[string]int, len(out))
	for i, spec := range out {
		index[spec.Name] = i
	}

	// Sorted so the first reported error is stable
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		override := overrides[name]
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("form.fields: unknown field %q", name)
		}
		spec := &out[i]
		if spec.Kind == domain.KindFlag && (override.Min != nil || override.Max != nil) {
			return nil, fmt.Errorf("form.fields.%s: bounds of a yes/no field cannot be changed", name)
		}
		if override.Min != nil {
			spec.Min = *override.Min
		}
		if override.Max != nil {
			spec.Max = *override.Max
		}
		if override.Default != nil {
			spec.Default = *override.Default
		}
		if spec.Min > spec.Max {
			return nil, fmt.Errorf("form.fields.%s: min %v exceeds max %v", name, spec.Min, spec.Max)
		}
		if !spec.InRange(spec.Default) {
			return nil, fmt.Errorf("form.fields.%s: default %v outside [%v, %v]", name, spec.Default, spec.Min, spec.Max)
		}
		if spec.Kind != domain.KindReal && (spec.Default != float64(int64(spec.Default)) || spec.Min != float64(int64(spec.Min)) || spec.Max != float64(int64(spec.Max))) {
			return nil, fmt.Errorf("form.fields.%s: integer field needs whole-number bounds and default", name)
		}
	}

	return out, nil
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.TLSEnabled && (config.Server.CertFile == "" || config.Server.KeyFile == "") {
		return fmt.Errorf("TLS enabled but cert_file or key_file is missing")
	}

	// Validate artifact configuration
	switch config.Artifacts.Source {
	case domain.ArtifactSourceFile:
		if config.Artifacts.ScalerPath == "" {
			return fmt.Errorf("artifacts.scaler_path is required")
		}
		if config.Artifacts.ClassifierPath == "" {
			return fmt.Errorf("artifacts.classifier_path is required")
		}
	case domain.ArtifactSourceSQLite:
		if config.Artifacts.SQLitePath == "" {
			return fmt.Errorf("artifacts.sqlite_path is required")
		}
	default:
		return fmt.Errorf("invalid artifact source: %q", config.Artifacts.Source)
	}

	// Validate rate limiting
	if config.RateLimit.Enabled {
		if config.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit.requests_per_second must be positive")
		}
		if config.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate_limit.burst must be positive")
		}
		if config.RateLimit.MaxClients <= 0 {
			return fmt.Errorf("rate_limit.max_clients must be positive")
		}
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if _, err := m.FieldSpecs(); err != nil {
		return err
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}
