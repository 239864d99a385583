// Package config resolves pagelens settings from defaults, a YAML file, a
// .env file and PAGELENS_* environment variables, in that order. Command
// line flags are applied on top by cmd/pagelens.
//
// The upstream API key is never part of the configuration. Only the name of
// the environment variable that holds it is, so the key can be rotated
// without restarting anything and never lands in a file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/csheth/pagelens/internal/llm"
)

// AppName names the XDG directories and the tracing service.
const AppName = "pagelens"

const (
	DefaultAddr            = ":8787"
	DefaultBodyLimit       = 64 * 1024
	DefaultUpstreamTimeout = 60 * time.Second
	DefaultReadingColumns  = 88
	DefaultTracingEndpoint = "localhost:4318"
)

// Config is the resolved configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Client   ClientConfig   `yaml:"client"`
	Log      LogConfig      `yaml:"log"`
	Tracing  TracingConfig  `yaml:"tracing"`

	// Source is the config file that was read, empty when none existed.
	Source string `yaml:"-"`
}

// ServerConfig configures `pagelens serve`.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	BodyLimit   int      `yaml:"body_limit"`
}

// UpstreamConfig selects the hosted model provider.
type UpstreamConfig struct {
	Provider string            `yaml:"provider"`
	Endpoint string            `yaml:"endpoint"`
	KeyEnv   string            `yaml:"key_env"`
	Models   map[string]string `yaml:"models"`
	Timeout  time.Duration     `yaml:"timeout"`
}

// ClientConfig configures the reader.
type ClientConfig struct {
	// Server is the base URL of a pagelens backend. Empty runs the
	// explanation service in-process.
	Server         string `yaml:"server"`
	Model          string `yaml:"model"`
	ReadingColumns int    `yaml:"reading_columns"`
	AltScreen      bool   `yaml:"alt_screen"`
}

// LogConfig configures zap output.
type LogConfig struct {
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug"`
}

// TracingConfig configures the OTLP exporter.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// Options controls where Load looks.
type Options struct {
	// Path is an explicit config file. It must exist when set.
	Path string
	// EnvFile is loaded with godotenv; a missing file is ignored.
	EnvFile string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        DefaultAddr,
			CORSOrigins: []string{"*"},
			BodyLimit:   DefaultBodyLimit,
		},
		Upstream: UpstreamConfig{
			Provider: llm.ProviderOpenAI,
			Timeout:  DefaultUpstreamTimeout,
		},
		Client: ClientConfig{
			Model:          string(llm.DefaultModel),
			ReadingColumns: DefaultReadingColumns,
			AltScreen:      true,
		},
		Log: LogConfig{
			File: DefaultLogFile(),
		},
		Tracing: TracingConfig{
			Endpoint:    DefaultTracingEndpoint,
			ServiceName: AppName,
		},
	}
}

// Dir is the XDG config directory for pagelens.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultPath is the config file read when no --config is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultLogFile lives under the XDG state directory.
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	path := opts.Path
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.readFile(expandPath(path), explicit); err != nil {
		return nil, err
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Source = path
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setString("PAGELENS_ADDR", &c.Server.Addr)
	setString("PAGELENS_PROVIDER", &c.Upstream.Provider)
	setString("PAGELENS_UPSTREAM_ENDPOINT", &c.Upstream.Endpoint)
	setString("PAGELENS_KEY_ENV", &c.Upstream.KeyEnv)
	setString("PAGELENS_SERVER", &c.Client.Server)
	setString("PAGELENS_MODEL", &c.Client.Model)
	setString("PAGELENS_LOG_FILE", &c.Log.File)
	setString("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Tracing.Endpoint)

	if v := os.Getenv("PAGELENS_CORS_ORIGINS"); strings.TrimSpace(v) != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("PAGELENS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PAGELENS_TIMEOUT: %w", err)
		}
		c.Upstream.Timeout = d
	}
	if v := os.Getenv("PAGELENS_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PAGELENS_DEBUG: %w", err)
		}
		c.Log.Debug = debug
	}
	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("OTEL_ENABLED: %w", err)
		}
		c.Tracing.Enabled = enabled
	}
	return nil
}

func (c *Config) normalize() {
	c.Upstream.Provider = strings.ToLower(strings.TrimSpace(c.Upstream.Provider))
	c.Client.Model = strings.ToLower(strings.TrimSpace(c.Client.Model))
	c.Client.Server = strings.TrimRight(strings.TrimSpace(c.Client.Server), "/")
	if c.Log.File != "" {
		c.Log.File = expandPath(c.Log.File)
	}
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if c.Client.ReadingColumns <= 0 {
		c.Client.ReadingColumns = DefaultReadingColumns
	}
	if c.Server.BodyLimit <= 0 {
		c.Server.BodyLimit = DefaultBodyLimit
	}
}

// Validate rejects settings that would only fail later at request time.
func (c *Config) Validate() error {
	switch c.Upstream.Provider {
	case "", llm.ProviderOpenAI, llm.ProviderGemini, llm.ProviderOllama:
	default:
		return &FieldError{Field: "upstream.provider", Value: c.Upstream.Provider, Reason: "must be openai, gemini or ollama"}
	}
	if c.Client.Model != "" && !llm.ModelChoice(c.Client.Model).Valid() {
		return &FieldError{Field: "client.model", Value: c.Client.Model, Reason: "must be one of " + tierNames()}
	}
	for tier := range c.Upstream.Models {
		if !llm.ModelChoice(strings.ToLower(tier)).Valid() {
			return &FieldError{Field: "upstream.models", Value: tier, Reason: "unknown tier, want one of " + tierNames()}
		}
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return &FieldError{Field: "server.addr", Reason: "must not be empty"}
	}
	return nil
}

// LLM converts the upstream section into a provider configuration.
func (c *Config) LLM() llm.Config {
	models := make(map[llm.ModelChoice]string, len(c.Upstream.Models))
	for tier, model := range c.Upstream.Models {
		models[llm.ModelChoice(strings.ToLower(tier))] = model
	}
	return llm.Config{
		Provider: c.Upstream.Provider,
		Endpoint: c.Upstream.Endpoint,
		KeyEnv:   c.Upstream.KeyEnv,
		Models:   models,
	}
}

// ModelChoice is the reader's starting tier.
func (c *Config) ModelChoice() llm.ModelChoice {
	return llm.ParseModelChoice(c.Client.Model)
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// FieldError reports an invalid configuration value.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("config %s=%q: %s", e.Field, e.Value, e.Reason)
}

func tierNames() string {
	models := llm.Models()
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
