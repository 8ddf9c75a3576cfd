package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"app": {"name": "nova-test", "workspace": "/tmp/ws"},
		"gateways": {"telegram": {"token": "tg-token", "enabled": true}},
		"providers": {"openai": {"api_key": "key", "model": "gpt-4o", "enabled": true}},
		"security": {"denied_tools": ["shell"], "denied_arguments": ["rm\\s+-rf"]},
		"executor": {"max_parallel": 4, "default_timeout_ms": 5000}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.App.Name != "nova-test" {
		t.Errorf("App.Name = %s", cfg.App.Name)
	}
	if cfg.Executor.MaxParallel != 4 || cfg.Executor.DefaultTimeoutMS != 5000 {
		t.Errorf("executor config = %+v", cfg.Executor)
	}
	if len(cfg.Security.DeniedTools) != 1 || cfg.Security.DeniedTools[0] != "shell" {
		t.Errorf("security config = %+v", cfg.Security)
	}

	tg, ok := cfg.GetTelegramConfig()
	if !ok || tg.Token != "tg-token" {
		t.Errorf("telegram config = %+v ok=%v", tg, ok)
	}
	name, provider := cfg.GetDefaultProvider()
	if name != "openai" || provider.Model != "gpt-4o" {
		t.Errorf("default provider = %s %+v", name, provider)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
app:
  name: nova-yaml
gateways:
  discord:
    token: dc-token
    enabled: true
executor:
  max_parallel: 2
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.App.Name != "nova-yaml" {
		t.Errorf("App.Name = %s", cfg.App.Name)
	}
	if cfg.Executor.MaxParallel != 2 {
		t.Errorf("MaxParallel = %d", cfg.Executor.MaxParallel)
	}
	dc, ok := cfg.GetDiscordConfig()
	if !ok || dc.Token != "dc-token" {
		t.Errorf("discord config = %+v ok=%v", dc, ok)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "config.json", `{}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Executor.MaxParallel != 10 {
		t.Errorf("default MaxParallel = %d, want 10", cfg.Executor.MaxParallel)
	}
	if cfg.Executor.DefaultTimeoutMS != 30000 {
		t.Errorf("default DefaultTimeoutMS = %d, want 30000", cfg.Executor.DefaultTimeoutMS)
	}
	if cfg.Memory.Path == "" {
		t.Error("memory path default missing")
	}
	if _, ok := cfg.GetTelegramConfig(); ok {
		t.Error("no gateway should be enabled by default")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
