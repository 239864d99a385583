package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/csheth/pagelens/internal/config"
	"github.com/csheth/pagelens/internal/explainclient"
	"github.com/csheth/pagelens/internal/llm"
)

func writeConfig(t *testing.T, body string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path, filepath.Join(dir, "missing.env")
}

func TestConfigCommandPrintsResolvedYAML(t *testing.T) {
	path, envFile := writeConfig(t, "server:\n  addr: \":9999\"\nclient:\n  model: quality\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "--config", path, "--env-file", envFile})
	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "# "+path+"\n"), "source header missing: %q", text)
	assert.Contains(t, text, ":9999")
	assert.Contains(t, text, "model: quality")
}

func TestConfigCommandRejectsInvalidModel(t *testing.T) {
	path, envFile := writeConfig(t, "client:\n  model: turbo\n")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "--config", path, "--env-file", envFile})
	err := cmd.Execute()

	var fieldErr *config.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "client.model", fieldErr.Field)
}

func TestRootRejectsInvalidModelFlag(t *testing.T) {
	path, envFile := writeConfig(t, "client:\n  model: fast\n")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "--env-file", envFile, "--model", "turbo"})
	err := cmd.Execute()

	var fieldErr *config.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "client.model", fieldErr.Field)
	assert.Contains(t, fieldErr.Error(), "fast, quality, reasoning")
}

func TestApplyReaderFlagsNormalizesModel(t *testing.T) {
	flags := &readerFlags{}
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&flags.model, "model", "", "")
	require.NoError(t, cmd.ParseFlags([]string{"--model", " Quality "}))

	cfg := config.Default()
	require.NoError(t, applyReaderFlags(cmd, cfg, flags))
	assert.Equal(t, llm.ModelQuality, cfg.ModelChoice())
}

func TestRootRejectsExtraArguments(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"a.pdf", "b.pdf"})
	assert.Error(t, cmd.Execute())
}

func TestBuildExplainerPrefersServer(t *testing.T) {
	cfg := config.Default()
	cfg.Client.Server = "http://localhost:8787"

	explainer, label, err := buildExplainer(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &explainclient.Client{}, explainer)
	assert.Equal(t, "localhost:8787", label)
}

func TestBuildExplainerUsesUpstream(t *testing.T) {
	cfg := config.Default()
	cfg.Upstream.Provider = llm.ProviderOllama

	explainer, label, err := buildExplainer(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &llm.Explainer{}, explainer)
	assert.Equal(t, "Ollama", label)
}

func TestBuildExplainerUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Upstream.Provider = "carrier-pigeon"

	_, _, err := buildExplainer(cfg, zap.NewNop())
	assert.Error(t, err)
}
