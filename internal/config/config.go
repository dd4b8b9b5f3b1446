// Package config handles agentes configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./agentes.yaml, ~/.config/agentes/agentes.yaml, /etc/agentes/agentes.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"agentes.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "agentes", "agentes.yaml"))
	}

	paths = append(paths, "/etc/agentes/agentes.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all agentes configuration.
type Config struct {
	OpenAI        OpenAIConfig          `yaml:"openai"`
	MCPServers    map[string]ServerSpec `yaml:"mcp_servers"`
	DataDir       string                `yaml:"data_dir"`
	LogLevel      string                `yaml:"log_level"`
	MaxToolRounds int                   `yaml:"max_tool_rounds"`
}

// OpenAIConfig defines the model endpoint settings. BaseURL may point at
// any OpenAI-compatible server (api.openai.com, a local Ollama, etc.).
type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// ServerSpec defines how to launch one MCP tool server.
type ServerSpec struct {
	// Command is the executable name. It must be resolvable on PATH.
	Command string `yaml:"command"`
	// Args are passed verbatim to the executable.
	Args []string `yaml:"args"`
	// Env are extra environment variables ("KEY=VALUE") for the subprocess.
	Env []string `yaml:"env"`
	// Description is shown in the tools listing alongside the server name.
	Description string `yaml:"description"`
}

// Load reads configuration from a YAML file.
//
// Environment variable references in the file (e.g. ${BRAVE_API_KEY} inside
// a server's args) are expanded before unmarshaling, so secrets stay out of
// the config file itself.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration. The API key is taken from the
// OPENAI_API_KEY environment variable unless the file overrides it.
func Default() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			Model:       "gpt-4o-mini",
			Temperature: 0.1,
		},
		MaxToolRounds: 10,
	}
}

// Validate checks that required settings are present. It never mutates
// the config. A missing model credential is fatal at startup, before
// any prompt is shown.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set (export it or set openai.api_key in the config file)")
	}
	if c.OpenAI.Model == "" {
		return fmt.Errorf("openai.model must not be empty")
	}
	if c.MaxToolRounds <= 0 {
		return fmt.Errorf("max_tool_rounds must be positive, got %d", c.MaxToolRounds)
	}
	return nil
}
