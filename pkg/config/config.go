package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig                 `json:"app" yaml:"app"`
	Gateways  map[string]GatewayConfig  `json:"gateways" yaml:"gateways"`
	Providers map[string]ProviderConfig `json:"providers" yaml:"providers"`
	Memory    MemoryConfig              `json:"memory" yaml:"memory"`
	Security  SecurityConfig            `json:"security" yaml:"security"`
	Executor  ExecutorConfig            `json:"executor" yaml:"executor"`
}

type AppConfig struct {
	Name      string `json:"name" yaml:"name"`
	Workspace string `json:"workspace" yaml:"workspace"`
}

type GatewayConfig struct {
	Token    string `json:"token" yaml:"token"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	NotifyID string `json:"notify_id,omitempty" yaml:"notify_id,omitempty"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	Model   string `json:"model" yaml:"model"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

type MemoryConfig struct {
	Type string `json:"type" yaml:"type"`
	Path string `json:"path" yaml:"path"`
}

type SecurityConfig struct {
	SandboxMode     bool     `json:"sandbox_mode" yaml:"sandbox_mode"`
	AllowedTools    []string `json:"allowed_tools" yaml:"allowed_tools"`
	DeniedTools     []string `json:"denied_tools" yaml:"denied_tools"`
	DeniedArguments []string `json:"denied_arguments" yaml:"denied_arguments"`
}

type ExecutorConfig struct {
	MaxParallel      int   `json:"max_parallel" yaml:"max_parallel"`
	DefaultTimeoutMS int64 `json:"default_timeout_ms" yaml:"default_timeout_ms"`
}

// LoadConfig reads a JSON or YAML config file, chosen by extension, and
// applies defaults for anything left unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "nova"
	}
	if c.App.Workspace == "" {
		c.App.Workspace = "./workspace"
	}
	if c.Memory.Path == "" {
		c.Memory.Path = "nova_memory.db"
	}
	if c.Executor.MaxParallel <= 0 {
		c.Executor.MaxParallel = 10
	}
	if c.Executor.DefaultTimeoutMS <= 0 {
		c.Executor.DefaultTimeoutMS = 30000
	}
}

// GetDefaultProvider returns the first enabled provider
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled {
		return tg, true
	}
	return GatewayConfig{}, false
}

// GetDiscordConfig returns discord config if enabled
func (c *Config) GetDiscordConfig() (GatewayConfig, bool) {
	dc, ok := c.Gateways["discord"]
	if ok && dc.Enabled {
		return dc, true
	}
	return GatewayConfig{}, false
}
