// Package explainclient calls a pagelens backend's POST /api/explain.
package explainclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/pagelens/internal/llm"
)

const defaultHTTPTimeout = 60 * time.Second

// Client talks to one backend. It has the same Explain signature as
// llm.Explainer so the reader can use either.
type Client struct {
	base   string
	client *http.Client
	logger *zap.Logger
}

// New returns a client for the backend at base, e.g. http://localhost:8787.
func New(base string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		client: httpClient,
		logger: logger.With(zap.String("component", "explainclient")),
	}
}

type requestBody struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

type responseBody struct {
	Explanation string `json:"explanation"`
	Error       string `json:"error"`
}

// Explain validates text locally, then asks the backend. Failures come back
// as *llm.Error with the backend's message preserved.
func (c *Client) Explain(ctx context.Context, text string, model llm.ModelChoice) (string, error) {
	if err := llm.ValidatePassage(text); err != nil {
		return "", err
	}
	buf, err := json.Marshal(requestBody{Text: text, Model: string(model)})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/explain", bytes.NewReader(buf))
	if err != nil {
		return "", &llm.Error{Kind: llm.KindUpstream, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Debug("backend request cancelled", zap.String("base", c.base))
		} else {
			c.logger.Warn("backend unreachable", zap.String("base", c.base), zap.Error(err))
		}
		return "", &llm.Error{Kind: llm.KindUpstream, Detail: "could not reach the explanation server", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &llm.Error{Kind: llm.KindUpstream, Err: fmt.Errorf("read response: %w", err)}
	}
	var body responseBody
	decodeErr := json.Unmarshal(raw, &body)

	c.logger.Debug("backend responded",
		zap.Int("status", resp.StatusCode),
		zap.String("model", string(model)),
		zap.Duration("duration", time.Since(started)),
	)

	if resp.StatusCode != http.StatusOK {
		return "", errorFor(resp.StatusCode, strings.TrimSpace(body.Error))
	}
	if decodeErr != nil {
		return "", &llm.Error{Kind: llm.KindUpstream, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if strings.TrimSpace(body.Explanation) == "" {
		return llm.FallbackExplanation, nil
	}
	return body.Explanation, nil
}

// errorFor rebuilds the classified error from the backend's status and
// message.
func errorFor(status int, message string) *llm.Error {
	cause := fmt.Errorf("backend returned %d: %s", status, message)
	switch {
	case status == http.StatusBadRequest:
		if message == "" {
			message = "Invalid text"
		}
		return &llm.Error{Kind: llm.KindInvalidInput, Detail: message, Status: status, Err: cause}
	case status == http.StatusUnauthorized:
		return &llm.Error{Kind: llm.KindUnauthorized, Status: status, Err: cause}
	case status == http.StatusTooManyRequests:
		return &llm.Error{Kind: llm.KindRateLimited, Status: status, Err: cause}
	case message == llm.NotConfiguredMessage:
		return &llm.Error{Kind: llm.KindNotConfigured, Status: status, Err: cause}
	default:
		detail := strings.TrimPrefix(message, llm.UpstreamMessage)
		detail = strings.TrimSpace(strings.TrimPrefix(detail, ":"))
		return &llm.Error{Kind: llm.KindUpstream, Detail: detail, Status: status, Err: cause}
	}
}
