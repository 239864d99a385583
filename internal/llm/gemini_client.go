package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	genai "google.golang.org/genai"
)

type geminiClient struct {
	base    string
	apiKey  func() string
	catalog Catalog
	client  *http.Client
}

func (g *geminiClient) Name() string {
	return "Gemini"
}

func (g *geminiClient) Catalog() Catalog {
	return g.catalog
}

// buildGeminiRequest mirrors buildOpenAIRequest: the chat profile uses the
// system instruction channel and temperature, the reasoning profile merges
// everything into the user turn.
func buildGeminiRequest(req Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	switch req.Tier.Profile {
	case ProfileReasoning:
		contents := []*genai.Content{genai.NewContentFromText(req.Prompt.Merged(), genai.RoleUser)}
		return contents, &genai.GenerateContentConfig{MaxOutputTokens: geminiReasoningMaxOutput}
	default:
		contents := []*genai.Content{genai.NewContentFromText(req.Prompt.UserContent(), genai.RoleUser)}
		return contents, &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.Prompt.System, genai.RoleUser),
			Temperature:       genai.Ptr[float32](chatTemperature),
			MaxOutputTokens:   geminiChatMaxOutput,
		}
	}
}

func (g *geminiClient) Complete(ctx context.Context, req Request) (string, error) {
	apiKey := g.apiKey()
	if apiKey == "" {
		return "", &Error{Kind: KindNotConfigured}
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.client,
	}
	if g.base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.base}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", &Error{Kind: KindUpstream, Err: fmt.Errorf("create gemini client: %w", err)}
	}

	contents, genCfg := buildGeminiRequest(req)
	res, err := client.Models.GenerateContent(ctx, req.Tier.Model, contents, genCfg)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	return strings.TrimSpace(res.Text()), nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Code
		// Gemini rejects bad keys as INVALID_ARGUMENT rather than 401.
		if status == http.StatusBadRequest && strings.Contains(apiErr.Message, "API key") {
			status = http.StatusUnauthorized
		}
		return classifyStatus(status, apiErr.Message, fmt.Errorf("gemini API call failed: %w", err))
	}
	return &Error{Kind: KindUpstream, Err: fmt.Errorf("gemini API call failed: %w", err)}
}
