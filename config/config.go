// Package config loads scout configuration.
//
// Sources, later ones overriding earlier ones:
//  1. Default values
//  2. A YAML file (--config, or ./scout.yaml and $HOME/.scout/scout.yaml)
//  3. Environment variables, after a .env file is loaded into the environment
//  4. Command-line flags bound to the loader's viper instance
//
// Environment variables use the SCOUT_ prefix with underscores for nested
// keys, e.g. SCOUT_MODEL_NAME. The conventional variables OPENAI_API_KEY,
// OPENAI_BASE_URL, OPENAI_MODEL, REGISTRY_URL and PORT are honored as well.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-kratos/scout"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every scout environment variable.
const EnvPrefix = "SCOUT"

// ModelConfig selects and authenticates the language model.
type ModelConfig struct {
	// Provider is "openai" or "gemini".
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	Name     string `mapstructure:"name"`
	// BaseURL points the provider at an OpenAI-compatible gateway.
	BaseURL string `mapstructure:"base_url"`
	// Sampling controls; zero leaves the provider default in place.
	Temperature     float64 `mapstructure:"temperature"`
	TopP            float64 `mapstructure:"top_p"`
	MaxOutputTokens int64   `mapstructure:"max_output_tokens"`
	Seed            int64   `mapstructure:"seed"`
}

// RegistryConfig locates the MCP registry and controls discovery.
type RegistryConfig struct {
	URL string `mapstructure:"url"`
	// Rewrite turns free-form prompts into a single-word registry query.
	Rewrite bool `mapstructure:"rewrite"`
	// Strict validates registry payloads against the discovery schema.
	Strict bool `mapstructure:"strict"`
	// ReportFailures reports failed registry searches as discovery failures
	// rather than as "not found".
	ReportFailures bool          `mapstructure:"report_failures"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// ExecutionConfig controls agent runs.
type ExecutionConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxIterations int           `mapstructure:"max_iterations"`
	// RetryAttempts is the total number of attempts per agent run; 1 disables retrying.
	RetryAttempts int `mapstructure:"retry_attempts"`
	// Transport is the MCP transport, "streamable" or "sse".
	Transport   string        `mapstructure:"transport"`
	ToolTimeout time.Duration `mapstructure:"tool_timeout"`
	// Headers are sent with every MCP request, e.g. a registry access token.
	Headers map[string]string `mapstructure:"headers"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Addr is the listen address. When empty the server listens on Port.
	Addr            string        `mapstructure:"addr"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimit is the sustained requests per second per client, 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
	BodyLimit string  `mapstructure:"body_limit"`
}

// ListenAddr returns the address the server listens on.
func (c ServerConfig) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled exports spans to stdout.
	Enabled bool `mapstructure:"enabled"`
}

// Config is the complete scout configuration.
type Config struct {
	// Debug enables debug logging for every run.
	Debug     bool            `mapstructure:"debug"`
	Model     ModelConfig     `mapstructure:"model"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Execution ExecutionConfig `mapstructure:"execution"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// Loader reads configuration into a Config.
type Loader struct {
	v        *viper.Viper
	envFiles []string
}

// NewLoader creates a loader with defaults and environment bindings in place.
// envFiles are loaded into the process environment before reading; they
// default to ".env".
func NewLoader(envFiles ...string) *Loader {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	l := &Loader{v: viper.New(), envFiles: envFiles}
	l.setDefaults()
	l.bindEnv()
	return l
}

// Viper returns the underlying viper instance, e.g. to bind flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

func (l *Loader) setDefaults() {
	l.v.SetDefault("debug", false)

	l.v.SetDefault("model.provider", "openai")
	l.v.SetDefault("model.name", "gpt-4o-mini")

	l.v.SetDefault("registry.url", "http://localhost:8000/mcp/registry")
	l.v.SetDefault("registry.rewrite", true)
	l.v.SetDefault("registry.strict", false)
	l.v.SetDefault("registry.report_failures", false)
	l.v.SetDefault("registry.timeout", "0s")

	l.v.SetDefault("execution.timeout", "0s")
	l.v.SetDefault("execution.max_iterations", 10)
	l.v.SetDefault("execution.retry_attempts", 1)
	l.v.SetDefault("execution.transport", "streamable")
	l.v.SetDefault("execution.tool_timeout", "30s")

	l.v.SetDefault("server.addr", "")
	l.v.SetDefault("server.port", 3000)
	l.v.SetDefault("server.read_timeout", "30s")
	l.v.SetDefault("server.write_timeout", "5m")
	l.v.SetDefault("server.shutdown_timeout", "10s")
	l.v.SetDefault("server.rate_limit", 10)
	l.v.SetDefault("server.burst", 20)
	l.v.SetDefault("server.body_limit", "1M")

	l.v.SetDefault("logging.level", "info")
	l.v.SetDefault("logging.format", "text")

	l.v.SetDefault("tracing.enabled", false)
}

func (l *Loader) bindEnv() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	aliases := map[string][]string{
		"model.api_key":  {"SCOUT_MODEL_API_KEY", "OPENAI_API_KEY"},
		"model.base_url": {"SCOUT_MODEL_BASE_URL", "OPENAI_BASE_URL"},
		"model.name":     {"SCOUT_MODEL_NAME", "OPENAI_MODEL"},
		"registry.url":   {"SCOUT_REGISTRY_URL", "REGISTRY_URL"},
		"server.port":    {"SCOUT_SERVER_PORT", "PORT"},
	}
	for key, names := range aliases {
		_ = l.v.BindEnv(append([]string{key}, names...)...)
	}
}

// Load reads the configuration. An empty cfgFile searches the default
// locations and tolerates a missing file; an explicit cfgFile must exist.
func (l *Loader) Load(cfgFile string) (*Config, error) {
	for _, file := range l.envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}
	}

	if cfgFile != "" {
		l.v.SetConfigFile(cfgFile)
	} else {
		l.v.SetConfigName("scout")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("$HOME/.scout")
	}
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Load is a convenience wrapper around NewLoader().Load(cfgFile).
func Load(cfgFile string) (*Config, error) {
	return NewLoader().Load(cfgFile)
}

// Validate checks values that cannot be fixed up by defaults. Missing
// credentials are not an error here: they are checked per request.
func Validate(cfg *Config) error {
	if err := (scout.ModelConfig{Provider: cfg.Model.Provider}).Validate(); err != nil {
		return err
	}
	if cfg.Model.Temperature < 0 || cfg.Model.Temperature > 2 {
		return fmt.Errorf("model.temperature must be between 0 and 2: %v", cfg.Model.Temperature)
	}
	if cfg.Model.TopP < 0 || cfg.Model.TopP > 1 {
		return fmt.Errorf("model.top_p must be between 0 and 1: %v", cfg.Model.TopP)
	}
	if cfg.Model.MaxOutputTokens < 0 {
		return fmt.Errorf("model.max_output_tokens must not be negative: %d", cfg.Model.MaxOutputTokens)
	}
	switch cfg.Execution.Transport {
	case "", "streamable", "sse":
	default:
		return fmt.Errorf("unsupported MCP transport: %s", cfg.Execution.Transport)
	}
	if cfg.Execution.MaxIterations < 1 {
		return fmt.Errorf("execution.max_iterations must be positive: %d", cfg.Execution.MaxIterations)
	}
	if cfg.Execution.RetryAttempts < 1 {
		return fmt.Errorf("execution.retry_attempts must be positive: %d", cfg.Execution.RetryAttempts)
	}
	if cfg.Server.Addr == "" && (cfg.Server.Port < 1 || cfg.Server.Port > 65535) {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	return nil
}
