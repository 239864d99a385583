package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

const (
	defaultOpenAIBase   = "https://api.openai.com/v1"
	defaultOllamaHost   = "http://localhost:11434"
	defaultOllamaModel  = "ministral-3:latest"
	defaultOpenAIKeyEnv = "OPENAI_API_KEY"
	defaultGeminiKeyEnv = "GEMINI_API_KEY"
)

// A single short passage; callers still bound each request with their context.
const defaultLLMHTTPTimeout = 60 * time.Second

// Config describes how to build a completion provider.
type Config struct {
	Provider string
	// Endpoint overrides the provider base URL (OpenAI-compatible base, Ollama host, Gemini base).
	Endpoint string
	// KeyEnv names the environment variable holding the credential. It is read on every request.
	KeyEnv string
	// Models overrides the catalog model name per tier.
	Models     map[ModelChoice]string
	HTTPClient *http.Client
}

// Request is a fully resolved completion call for one tier.
type Request struct {
	Tier   Tier
	Prompt Prompt
}

// Provider performs a single completion against an upstream API.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Catalog() Catalog
	Name() string
}

// New builds the provider named by cfg.Provider. Unknown names are an error;
// an empty name selects OpenAI.
func New(cfg Config) (Provider, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}
	client := pickHTTPClient(cfg.HTTPClient)
	switch provider {
	case ProviderOpenAI:
		base := strings.TrimRight(cfg.Endpoint, "/")
		if base == "" {
			base = defaultOpenAIBase
		}
		return &openAIClient{
			base:    base,
			apiKey:  envKey(cfg.KeyEnv, defaultOpenAIKeyEnv),
			catalog: OpenAICatalog().With(cfg.Models),
			client:  client,
		}, nil
	case ProviderGemini:
		return &geminiClient{
			base:    strings.TrimRight(cfg.Endpoint, "/"),
			apiKey:  envKey(cfg.KeyEnv, defaultGeminiKeyEnv),
			catalog: GeminiCatalog().With(cfg.Models),
			client:  client,
		}, nil
	case ProviderOllama:
		host := strings.TrimRight(cfg.Endpoint, "/")
		if host == "" {
			if env := os.Getenv("OLLAMA_HOST"); env != "" {
				host = strings.TrimRight(env, "/")
			} else {
				host = defaultOllamaHost
			}
		}
		model := os.Getenv("OLLAMA_MODEL")
		if model == "" {
			model = defaultOllamaModel
		}
		return &ollamaClient{
			host:    host,
			catalog: OllamaCatalog(model).With(cfg.Models),
			client:  client,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// envKey returns a lookup that reads the credential lazily so a key exported
// after startup is honoured and a missing one surfaces per request.
func envKey(name, fallback string) func() string {
	if strings.TrimSpace(name) == "" {
		name = fallback
	}
	return func() string {
		return strings.TrimSpace(os.Getenv(name))
	}
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}
