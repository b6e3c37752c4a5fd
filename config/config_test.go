package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no scout variables set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, name := range []string{
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "REGISTRY_URL", "PORT",
		"SCOUT_MODEL_API_KEY", "SCOUT_MODEL_NAME", "SCOUT_REGISTRY_URL", "SCOUT_DEBUG",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.Name)
	assert.Empty(t, cfg.Model.APIKey)
	assert.Equal(t, "http://localhost:8000/mcp/registry", cfg.Registry.URL)
	assert.True(t, cfg.Registry.Rewrite)
	assert.False(t, cfg.Registry.ReportFailures)
	assert.Equal(t, 1, cfg.Execution.RetryAttempts)
	assert.Equal(t, 10, cfg.Execution.MaxIterations)
	assert.Equal(t, 30*time.Second, cfg.Execution.ToolTimeout)
	assert.Equal(t, ":3000", cfg.Server.ListenAddr())
	assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, float64(10), cfg.Server.RateLimit)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("REGISTRY_URL", "https://registry.example/mcp")
	t.Setenv("PORT", "8080")
	t.Setenv("SCOUT_EXECUTION_RETRY_ATTEMPTS", "3")
	t.Setenv("SCOUT_DEBUG", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.Model.APIKey)
	assert.Equal(t, "gpt-4.1-mini", cfg.Model.Name)
	assert.Equal(t, "https://registry.example/mcp", cfg.Registry.URL)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr())
	assert.Equal(t, 3, cfg.Execution.RetryAttempts)
	assert.True(t, cfg.Debug)
}

func TestLoadPrefixedWinsOverAlias(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-alias")
	t.Setenv("SCOUT_MODEL_API_KEY", "sk-scout")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-scout", cfg.Model.APIKey)
}

func TestLoadFileAndDotEnv(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
model:
  provider: gemini
  name: gemini-2.5-pro
  temperature: 0.3
  max_output_tokens: 512
registry:
  url: https://file.example/mcp
  strict: true
execution:
  timeout: 45s
  headers:
    Authorization: Bearer registry-token
server:
  addr: 127.0.0.1:9000
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=sk-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("OPENAI_API_KEY") })

	cfg, err := NewLoader().Load(file)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Model.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model.Name)
	assert.Equal(t, "sk-dotenv", cfg.Model.APIKey)
	assert.Equal(t, "https://file.example/mcp", cfg.Registry.URL)
	assert.True(t, cfg.Registry.Strict)
	assert.Equal(t, 45*time.Second, cfg.Execution.Timeout)
	assert.InDelta(t, 0.3, cfg.Model.Temperature, 1e-9)
	assert.Equal(t, int64(512), cfg.Model.MaxOutputTokens)
	// viper lowercases map keys; HTTP header names are case-insensitive.
	assert.Equal(t, map[string]string{"authorization": "Bearer registry-token"}, cfg.Execution.Headers)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr())
}

func TestLoadFlagOverride(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_MODEL", "from-env")
	l := NewLoader()
	l.Viper().Set("model.name", "from-flag")

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Model.Name)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Model:     ModelConfig{Provider: "openai"},
			Execution: ExecutionConfig{MaxIterations: 10, RetryAttempts: 1, Transport: "sse"},
			Server:    ServerConfig{Port: 3000},
		}
	}
	require.NoError(t, Validate(valid()))

	tests := map[string]func(*Config){
		"provider":       func(c *Config) { c.Model.Provider = "bedrock" },
		"temperature":    func(c *Config) { c.Model.Temperature = 3 },
		"top p":          func(c *Config) { c.Model.TopP = -0.1 },
		"max tokens":     func(c *Config) { c.Model.MaxOutputTokens = -1 },
		"transport":      func(c *Config) { c.Execution.Transport = "websocket" },
		"max iterations": func(c *Config) { c.Execution.MaxIterations = 0 },
		"retry attempts": func(c *Config) { c.Execution.RetryAttempts = 0 },
		"port":           func(c *Config) { c.Server.Port = 70000 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
