package llm

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxPassageChars bounds the passage sent upstream. Longer input is
	// rejected, never truncated.
	MaxPassageChars = 2000

	// FallbackExplanation is returned when the upstream answers with no text.
	FallbackExplanation = "No explanation could be generated for this passage."
)

const explainInstruction = "You are a friendly reading assistant helping someone understand a document. " +
	"Explain the passage they selected in plain language, in 2 to 4 short sentences. " +
	"Avoid jargon; if a technical term is unavoidable, define it briefly. " +
	"Do not repeat the passage and do not add a preamble."

// Message is a provider-agnostic chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt is the instruction plus the passage to explain.
type Prompt struct {
	System  string
	Passage string
}

// BuildExplainPrompt frames text as the passage to explain.
func BuildExplainPrompt(text string) Prompt {
	return Prompt{
		System:  explainInstruction,
		Passage: strings.TrimSpace(text),
	}
}

// UserContent is the user-role body for profiles that keep the system
// instruction on its own channel.
func (p Prompt) UserContent() string {
	return "Explain this passage:\n\n\"" + p.Passage + "\""
}

// Merged folds the instruction into the user body for profiles without a
// system channel.
func (p Prompt) Merged() string {
	var b strings.Builder
	b.WriteString(p.System)
	b.WriteString("\n\n")
	b.WriteString(p.UserContent())
	return b.String()
}

// Messages returns the chat transcript for profile.
func (p Prompt) Messages(profile Profile) []Message {
	switch profile {
	case ProfileReasoning:
		return []Message{{Role: "user", Content: p.Merged()}}
	default:
		return []Message{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.UserContent()},
		}
	}
}

// ValidatePassage applies the input rules shared by the server and the
// client: non-blank and at most MaxPassageChars characters.
func ValidatePassage(text string) error {
	if strings.TrimSpace(text) == "" {
		return &Error{Kind: KindInvalidInput, Detail: "Text is required"}
	}
	if utf8.RuneCountInString(text) > MaxPassageChars {
		return &Error{Kind: KindInvalidInput, Detail: TooLongMessage}
	}
	return nil
}
