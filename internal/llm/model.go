package llm

import "strings"

// ModelChoice names a completion tier. It is what clients send on the wire.
type ModelChoice string

const (
	ModelFast      ModelChoice = "fast"
	ModelQuality   ModelChoice = "quality"
	ModelReasoning ModelChoice = "reasoning"
)

// DefaultModel is used whenever a choice is missing or unrecognised.
const DefaultModel = ModelFast

var modelSequence = []ModelChoice{ModelFast, ModelQuality, ModelReasoning}

// Models lists every supported tier in display order.
func Models() []ModelChoice {
	return append([]ModelChoice(nil), modelSequence...)
}

// ParseModelChoice maps a wire value onto a tier. Unknown values fall back to
// DefaultModel rather than failing the request.
func ParseModelChoice(value string) ModelChoice {
	switch ModelChoice(strings.ToLower(strings.TrimSpace(value))) {
	case ModelFast:
		return ModelFast
	case ModelQuality:
		return ModelQuality
	case ModelReasoning:
		return ModelReasoning
	default:
		return DefaultModel
	}
}

// Valid reports whether c is one of the known tiers.
func (c ModelChoice) Valid() bool {
	for _, known := range modelSequence {
		if c == known {
			return true
		}
	}
	return false
}

// Next cycles to the following tier, wrapping around.
func (c ModelChoice) Next() ModelChoice {
	for i, known := range modelSequence {
		if c == known {
			return modelSequence[(i+1)%len(modelSequence)]
		}
	}
	return DefaultModel
}

// Label is the human-facing tier name.
func (c ModelChoice) Label() string {
	switch c {
	case ModelQuality:
		return "Quality"
	case ModelReasoning:
		return "Reasoning"
	default:
		return "Fast"
	}
}

// Profile selects how a request is shaped for a tier.
type Profile int

const (
	// ProfileChat sends a system instruction and the passage as separate
	// messages with sampling temperature and a max_tokens cap.
	ProfileChat Profile = iota
	// ProfileReasoning has no system channel and no temperature: the
	// instruction and passage are merged into one user message, and length is
	// capped with max_completion_tokens, which also budgets hidden reasoning.
	ProfileReasoning
)

func (p Profile) String() string {
	if p == ProfileReasoning {
		return "reasoning"
	}
	return "chat"
}

const (
	chatTemperature          = 0.3
	chatMaxTokens            = 300
	reasoningMaxCompletion   = 2000
	geminiChatMaxOutput      = 300
	geminiReasoningMaxOutput = 2048
)

// Tier binds a choice to an upstream model and request profile.
type Tier struct {
	Choice  ModelChoice
	Model   string
	Profile Profile
}

// Catalog maps every ModelChoice to the Tier a provider serves it with.
type Catalog map[ModelChoice]Tier

// Resolve returns the tier for choice, falling back to DefaultModel.
func (c Catalog) Resolve(choice ModelChoice) Tier {
	if tier, ok := c[choice]; ok {
		return tier
	}
	return c[DefaultModel]
}

// With returns a copy whose model names are replaced by the non-empty overrides.
// Profiles stay fixed per tier.
func (c Catalog) With(overrides map[ModelChoice]string) Catalog {
	out := make(Catalog, len(c))
	for choice, tier := range c {
		if name := strings.TrimSpace(overrides[choice]); name != "" {
			tier.Model = name
		}
		out[choice] = tier
	}
	return out
}

func OpenAICatalog() Catalog {
	return Catalog{
		ModelFast:      {Choice: ModelFast, Model: "gpt-4o-mini", Profile: ProfileChat},
		ModelQuality:   {Choice: ModelQuality, Model: "gpt-4o", Profile: ProfileChat},
		ModelReasoning: {Choice: ModelReasoning, Model: "o3-mini", Profile: ProfileReasoning},
	}
}

func GeminiCatalog() Catalog {
	return Catalog{
		ModelFast:      {Choice: ModelFast, Model: "gemini-2.5-flash", Profile: ProfileChat},
		ModelQuality:   {Choice: ModelQuality, Model: "gemini-2.5-pro", Profile: ProfileChat},
		ModelReasoning: {Choice: ModelReasoning, Model: "gemini-2.5-pro", Profile: ProfileReasoning},
	}
}

// OllamaCatalog serves every tier from the one local model.
func OllamaCatalog(model string) Catalog {
	return Catalog{
		ModelFast:      {Choice: ModelFast, Model: model, Profile: ProfileChat},
		ModelQuality:   {Choice: ModelQuality, Model: model, Profile: ProfileChat},
		ModelReasoning: {Choice: ModelReasoning, Model: model, Profile: ProfileReasoning},
	}
}
