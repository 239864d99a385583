package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *openAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &openAIClient{
		base:    server.URL,
		apiKey:  func() string { return "sk-test" },
		catalog: OpenAICatalog(),
		client:  server.Client(),
	}
}

func explainRequest(choice ModelChoice, text string) Request {
	return Request{Tier: OpenAICatalog().Resolve(choice), Prompt: BuildExplainPrompt(text)}
}

func TestOpenAIClientChatProfile(t *testing.T) {
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload["model"] != "gpt-4o-mini" {
			t.Fatalf("expected fast model, got %v", payload["model"])
		}
		if _, ok := payload["temperature"]; !ok {
			t.Fatal("chat profile should send temperature")
		}
		if _, ok := payload["max_tokens"]; !ok {
			t.Fatal("chat profile should cap max_tokens")
		}
		if _, ok := payload["max_completion_tokens"]; ok {
			t.Fatal("chat profile must not send max_completion_tokens")
		}
		messages := payload["messages"].([]any)
		if len(messages) != 2 {
			t.Fatalf("expected system + user messages, got %d", len(messages))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  Entropy measures disorder.  "}}]}`))
	})

	got, err := client.Complete(context.Background(), explainRequest(ModelFast, "entropy"))
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got != "Entropy measures disorder." {
		t.Fatalf("unexpected explanation %q", got)
	}
}

func TestOpenAIClientReasoningProfile(t *testing.T) {
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload["model"] != "o3-mini" {
			t.Fatalf("expected reasoning model, got %v", payload["model"])
		}
		if _, ok := payload["temperature"]; ok {
			t.Fatal("reasoning profile must not send temperature")
		}
		if _, ok := payload["max_tokens"]; ok {
			t.Fatal("reasoning profile must not send max_tokens")
		}
		if payload["max_completion_tokens"] != float64(reasoningMaxCompletion) {
			t.Fatalf("unexpected max_completion_tokens %v", payload["max_completion_tokens"])
		}
		messages := payload["messages"].([]any)
		if len(messages) != 1 {
			t.Fatalf("expected a single merged message, got %d", len(messages))
		}
		if role := messages[0].(map[string]any)["role"]; role != "user" {
			t.Fatalf("merged message should be user role, got %v", role)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"Reasoned."}}]}`))
	})

	got, err := client.Complete(context.Background(), explainRequest(ModelReasoning, "entropy"))
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got != "Reasoned." {
		t.Fatalf("unexpected explanation %q", got)
	}
}

func TestOpenAIClientClassifiesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
		detail string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`, KindUnauthorized, "Incorrect API key provided"},
		{"forbidden", http.StatusForbidden, `{}`, KindUnauthorized, ""},
		{"throttled", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, KindRateLimited, "slow down"},
		{"server", http.StatusBadGateway, `not json`, KindUpstream, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := client.Complete(context.Background(), explainRequest(ModelFast, "entropy"))
			if err == nil {
				t.Fatal("expected error")
			}
			llmErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if llmErr.Kind != tt.want {
				t.Fatalf("kind = %s, want %s", llmErr.Kind, tt.want)
			}
			if llmErr.Status != tt.status {
				t.Fatalf("status = %d, want %d", llmErr.Status, tt.status)
			}
			if llmErr.Detail != tt.detail {
				t.Fatalf("detail = %q, want %q", llmErr.Detail, tt.detail)
			}
		})
	}
}

func TestOpenAIClientWithoutKeyMakesNoCall(t *testing.T) {
	called := false
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	client.apiKey = func() string { return "" }

	_, err := client.Complete(context.Background(), explainRequest(ModelFast, "entropy"))
	if KindOf(err) != KindNotConfigured {
		t.Fatalf("expected not configured, got %v", err)
	}
	if called {
		t.Fatal("no upstream call expected without a key")
	}
}

func TestOpenAIClientNoChoicesIsEmpty(t *testing.T) {
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	got, err := client.Complete(context.Background(), explainRequest(ModelFast, "entropy"))
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}
