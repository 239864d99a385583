package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type ollamaClient struct {
	host    string
	catalog Catalog
	client  *http.Client
}

func (c *ollamaClient) Name() string {
	return "Ollama"
}

func (c *ollamaClient) Catalog() Catalog {
	return c.catalog
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

func buildOllamaRequest(req Request) ollamaChatRequest {
	payload := ollamaChatRequest{
		Model:    req.Tier.Model,
		Messages: req.Prompt.Messages(req.Tier.Profile),
		Stream:   false,
	}
	switch req.Tier.Profile {
	case ProfileReasoning:
		payload.Options = &ollamaOptions{NumPredict: reasoningMaxCompletion}
	default:
		temperature := chatTemperature
		payload.Options = &ollamaOptions{Temperature: &temperature, NumPredict: chatMaxTokens}
	}
	return payload
}

// Complete talks to a local Ollama daemon; it needs no credential.
func (c *ollamaClient) Complete(ctx context.Context, req Request) (string, error) {
	buf, err := json.Marshal(buildOllamaRequest(req))
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: KindUpstream, Err: fmt.Errorf("ollama request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindUpstream, Err: fmt.Errorf("read ollama response: %w", err)}
	}
	if resp.StatusCode >= 400 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &envelope)
		return "", classifyStatus(resp.StatusCode, strings.TrimSpace(envelope.Error), fmt.Errorf("ollama API error: %s", resp.Status))
	}

	var parsed struct {
		Message Message `json:"message"`
		Done    bool    `json:"done"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Kind: KindUpstream, Err: fmt.Errorf("decode ollama response: %w", err)}
	}
	return strings.TrimSpace(parsed.Message.Content), nil
}
