// Package setup registers the MCP server with desktop MCP clients.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ServerName is the key of the portal's entry under mcpServers
const ServerName = "heart-failure-risk"

// BinaryName is the default name of the MCP server executable
const BinaryName = "mcp-server"

// DesktopConfig represents the desktop client configuration file structure.
// Keys other than mcpServers are preserved on save.
type DesktopConfig struct {
	MCPServers map[string]MCPServerConfig `json:"mcpServers"`
	other      map[string]json.RawMessage
}

// MCPServerConfig represents a single MCP server configuration.
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Options contains options for the setup process.
type Options struct {
	DesktopConfigPath string // empty uses the platform default
	BinaryPath        string // empty searches common locations
	ConfigFile        string // portal configuration passed as HF_RISK_CONFIG
}

// DefaultDesktopConfigPath returns the path to the desktop client's config file.
func DefaultDesktopConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support", "Claude")
	case "linux":
		// Try XDG config first, then fallback
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "Claude")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config", "Claude")
		}
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		configDir = filepath.Join(appData, "Claude")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return filepath.Join(configDir, "claude_desktop_config.json"), nil
}

// LoadDesktopConfig loads the existing configuration; a missing file yields
// an empty one.
func LoadDesktopConfig(configPath string) (*DesktopConfig, error) {
	config := &DesktopConfig{
		MCPServers: make(map[string]MCPServerConfig),
		other:      make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &config.other); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw, ok := config.other["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &config.MCPServers); err != nil {
			return nil, fmt.Errorf("failed to parse mcpServers: %w", err)
		}
		delete(config.other, "mcpServers")
	}
	if config.MCPServers == nil {
		config.MCPServers = make(map[string]MCPServerConfig)
	}

	return config, nil
}

// SaveDesktopConfig saves the configuration file.
func SaveDesktopConfig(configPath string, config *DesktopConfig) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := make(map[string]interface{}, len(config.other)+1)
	for k, v := range config.other {
		out[k] = v
	}
	out["mcpServers"] = config.MCPServers

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Configure adds or updates the portal's MCP server entry and returns the
// path of the file it wrote.
func Configure(opts Options) (string, error) {
	configPath, err := desktopConfigPath(opts)
	if err != nil {
		return "", err
	}

	config, err := LoadDesktopConfig(configPath)
	if err != nil {
		return "", err
	}

	binaryPath := opts.BinaryPath
	if binaryPath == "" {
		binaryPath, err = findBinary()
		if err != nil {
			return "", fmt.Errorf("could not find server binary: %w", err)
		}
	}

	serverConfig := MCPServerConfig{Command: binaryPath}
	if opts.ConfigFile != "" {
		configFile, err := filepath.Abs(opts.ConfigFile)
		if err != nil {
			return "", err
		}
		serverConfig.Env = map[string]string{"HF_RISK_CONFIG": configFile}
	}
	config.MCPServers[ServerName] = serverConfig

	if err := SaveDesktopConfig(configPath, config); err != nil {
		return "", err
	}
	return configPath, nil
}

// Status represents the current setup status.
type Status struct {
	DesktopConfigPath string
	Configured        bool
	ServerPath        string
	ConfigFile        string
	Issues            []string
}

// GetStatus checks whether the server is registered and its binary and
// configuration file exist.
func GetStatus(opts Options) (*Status, error) {
	configPath, err := desktopConfigPath(opts)
	if err != nil {
		return nil, err
	}
	status := &Status{DesktopConfigPath: configPath, Issues: []string{}}

	config, err := LoadDesktopConfig(configPath)
	if err != nil {
		return nil, err
	}

	serverConfig, ok := config.MCPServers[ServerName]
	if !ok {
		status.Issues = append(status.Issues, "MCP server is not registered")
		return status, nil
	}
	status.Configured = true
	status.ServerPath = serverConfig.Command
	status.ConfigFile = serverConfig.Env["HF_RISK_CONFIG"]

	if info, err := os.Stat(serverConfig.Command); err != nil {
		status.Issues = append(status.Issues, fmt.Sprintf("Server binary not found at: %s", serverConfig.Command))
	} else if info.Mode()&0111 == 0 {
		status.Issues = append(status.Issues, fmt.Sprintf("Server binary is not executable: %s", serverConfig.Command))
	}
	if status.ConfigFile != "" {
		if _, err := os.Stat(status.ConfigFile); err != nil {
			status.Issues = append(status.Issues, fmt.Sprintf("Configuration file not found: %s", status.ConfigFile))
		}
	}

	return status, nil
}

func desktopConfigPath(opts Options) (string, error) {
	if opts.DesktopConfigPath != "" {
		return opts.DesktopConfigPath, nil
	}
	return DefaultDesktopConfigPath()
}

// findBinary attempts to find the server binary in common locations.
func findBinary() (string, error) {
	if path, err := exec.LookPath(BinaryName); err == nil {
		return filepath.Abs(path)
	}

	home, _ := os.UserHomeDir()
	locations := []string{
		"./" + BinaryName,
		"./bin/" + BinaryName,
		filepath.Join(home, ".local", "bin", BinaryName),
		"/usr/local/bin/" + BinaryName,
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return filepath.Abs(loc)
		}
	}

	return "", fmt.Errorf("binary '%s' not found in common locations", BinaryName)
}
