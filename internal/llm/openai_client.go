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

type openAIClient struct {
	base    string
	apiKey  func() string
	catalog Catalog
	client  *http.Client
}

func (c *openAIClient) Name() string {
	return "OpenAI"
}

func (c *openAIClient) Catalog() Catalog {
	return c.catalog
}

type openAIChatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Temperature         *float64  `json:"temperature,omitempty"`
	MaxTokens           int       `json:"max_tokens,omitempty"`
	MaxCompletionTokens int       `json:"max_completion_tokens,omitempty"`
}

// buildOpenAIRequest shapes the payload for the tier's profile.
func buildOpenAIRequest(req Request) openAIChatRequest {
	payload := openAIChatRequest{
		Model:    req.Tier.Model,
		Messages: req.Prompt.Messages(req.Tier.Profile),
	}
	switch req.Tier.Profile {
	case ProfileReasoning:
		payload.MaxCompletionTokens = reasoningMaxCompletion
	default:
		temperature := chatTemperature
		payload.Temperature = &temperature
		payload.MaxTokens = chatMaxTokens
	}
	return payload
}

func (c *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	apiKey := c.apiKey()
	if apiKey == "" {
		return "", &Error{Kind: KindNotConfigured}
	}
	buf, err := json.Marshal(buildOpenAIRequest(req))
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.base)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: KindUpstream, Err: fmt.Errorf("openai request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindUpstream, Err: fmt.Errorf("read openai response: %w", err)}
	}
	if resp.StatusCode >= 400 {
		detail := openAIErrorMessage(body)
		return "", classifyStatus(resp.StatusCode, detail, fmt.Errorf("openai API error: %s", resp.Status))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Kind: KindUpstream, Err: fmt.Errorf("decode openai response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// openAIErrorMessage extracts error.message from an OpenAI error body.
func openAIErrorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return strings.TrimSpace(envelope.Error.Message)
}
