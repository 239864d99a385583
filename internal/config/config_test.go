package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/pagelens/internal/llm"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	for _, key := range []string{
		"PAGELENS_ADDR", "PAGELENS_PROVIDER", "PAGELENS_UPSTREAM_ENDPOINT", "PAGELENS_KEY_ENV",
		"PAGELENS_SERVER", "PAGELENS_MODEL", "PAGELENS_LOG_FILE", "PAGELENS_CORS_ORIGINS",
		"PAGELENS_TIMEOUT", "PAGELENS_DEBUG", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Empty(t, cfg.Source)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, llm.ProviderOpenAI, cfg.Upstream.Provider)
	assert.Equal(t, DefaultUpstreamTimeout, cfg.Upstream.Timeout)
	assert.Equal(t, llm.ModelFast, cfg.ModelChoice())
	assert.Equal(t, filepath.Join(dir, "state", AppName, "pagelens.log"), cfg.Log.File)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadReadsDefaultXDGFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(Dir(), 0o755))
	writeFile(t, Dir(), "config.yaml", "client:\n  model: quality\n")

	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, DefaultPath(), cfg.Source)
	assert.Equal(t, llm.ModelQuality, cfg.ModelChoice())
}

func TestLoadYAMLThenEnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "pagelens.yaml", `
server:
  addr: ":9000"
  cors_origins: ["http://localhost:5173"]
upstream:
  provider: Gemini
  key_env: MY_GEMINI_KEY
  timeout: 45s
  models:
    quality: gemini-2.5-pro-latest
client:
  server: "http://localhost:9000/"
  model: reasoning
log:
  debug: true
`)
	t.Setenv("PAGELENS_ADDR", ":9100")
	t.Setenv("PAGELENS_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(Options{Path: path, EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, llm.ProviderGemini, cfg.Upstream.Provider)
	assert.Equal(t, 45*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "http://localhost:9000", cfg.Client.Server)
	assert.Equal(t, llm.ModelReasoning, cfg.ModelChoice())
	assert.True(t, cfg.Log.Debug)

	llmCfg := cfg.LLM()
	assert.Equal(t, "MY_GEMINI_KEY", llmCfg.KeyEnv)
	assert.Equal(t, "gemini-2.5-pro-latest", llmCfg.Models[llm.ModelQuality])
}

func TestLoadDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := isolate(t)
	envFile := writeFile(t, dir, ".env", "PAGELENS_PROVIDER=ollama\nPAGELENS_MODEL=quality\n")
	t.Setenv("PAGELENS_MODEL", "reasoning")

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOllama, cfg.Upstream.Provider)
	assert.Equal(t, llm.ModelReasoning, cfg.ModelChoice())
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	dir := isolate(t)
	_, err := Load(Options{Path: filepath.Join(dir, "nope.yaml"), EnvFile: filepath.Join(dir, "missing.env")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"provider", "upstream:\n  provider: carrier-pigeon\n", "upstream.provider"},
		{"model", "client:\n  model: turbo\n", "client.model"},
		{"tier override", "upstream:\n  models:\n    ultra: x\n", "upstream.models"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := writeFile(t, dir, "c.yaml", tt.yaml)
			_, err := Load(Options{Path: path, EnvFile: filepath.Join(dir, "missing.env")})
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestLoadRejectsBadEnvDuration(t *testing.T) {
	dir := isolate(t)
	t.Setenv("PAGELENS_TIMEOUT", "soon")
	_, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAGELENS_TIMEOUT")
}

func TestMarshalOmitsSource(t *testing.T) {
	cfg := Default()
	cfg.Source = "/tmp/x.yaml"
	out, err := cfg.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "/tmp/x.yaml")
	assert.Contains(t, string(out), "provider: openai")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "papers/a.pdf"), expandPath("~/papers/a.pdf"))
	assert.Equal(t, "/abs/a.pdf", expandPath("/abs/a.pdf"))
	assert.Equal(t, "", expandPath(""))
}
