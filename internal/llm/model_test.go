package llm

import "testing"

func TestParseModelChoice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want ModelChoice
	}{
		{"fast", ModelFast},
		{"QUALITY", ModelQuality},
		{" reasoning ", ModelReasoning},
		{"", DefaultModel},
		{"gpt-5-ultra", DefaultModel},
	}
	for _, tt := range tests {
		if got := ParseModelChoice(tt.in); got != tt.want {
			t.Fatalf("ParseModelChoice(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModelChoiceNextCycles(t *testing.T) {
	t.Parallel()

	choice := ModelFast
	seen := []ModelChoice{choice}
	for i := 0; i < 3; i++ {
		choice = choice.Next()
		seen = append(seen, choice)
	}
	want := []ModelChoice{ModelFast, ModelQuality, ModelReasoning, ModelFast}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("cycle step %d = %q, want %q", i, seen[i], want[i])
		}
	}
	if got := ModelChoice("bogus").Next(); got != DefaultModel {
		t.Fatalf("unknown choice should reset to default, got %q", got)
	}
}

func TestCatalogsCoverEveryTier(t *testing.T) {
	t.Parallel()

	catalogs := map[string]Catalog{
		"openai": OpenAICatalog(),
		"gemini": GeminiCatalog(),
		"ollama": OllamaCatalog("llama3"),
	}
	for name, catalog := range catalogs {
		for _, choice := range Models() {
			tier, ok := catalog[choice]
			if !ok {
				t.Fatalf("%s catalog missing %s", name, choice)
			}
			if tier.Model == "" {
				t.Fatalf("%s catalog has empty model for %s", name, choice)
			}
			wantProfile := ProfileChat
			if choice == ModelReasoning {
				wantProfile = ProfileReasoning
			}
			if tier.Profile != wantProfile {
				t.Fatalf("%s %s profile = %s, want %s", name, choice, tier.Profile, wantProfile)
			}
		}
	}
}

func TestCatalogResolveFallsBackToDefault(t *testing.T) {
	t.Parallel()

	tier := OpenAICatalog().Resolve(ModelChoice("nope"))
	if tier.Choice != DefaultModel {
		t.Fatalf("expected default tier, got %q", tier.Choice)
	}
}

func TestPromptMessagesPerProfile(t *testing.T) {
	t.Parallel()

	prompt := BuildExplainPrompt("  entropy  ")
	chat := prompt.Messages(ProfileChat)
	if len(chat) != 2 || chat[0].Role != "system" || chat[1].Role != "user" {
		t.Fatalf("chat profile should send system + user, got %#v", chat)
	}
	if chat[1].Content != "Explain this passage:\n\n\"entropy\"" {
		t.Fatalf("unexpected user content %q", chat[1].Content)
	}

	reasoning := prompt.Messages(ProfileReasoning)
	if len(reasoning) != 1 || reasoning[0].Role != "user" {
		t.Fatalf("reasoning profile should send one user message, got %#v", reasoning)
	}
	if reasoning[0].Content != prompt.System+"\n\n"+chat[1].Content {
		t.Fatalf("reasoning message should merge instruction and passage, got %q", reasoning[0].Content)
	}
}
