package llm

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Explainer turns a selected passage into a short plain-language explanation.
type Explainer struct {
	provider Provider
	logger   *zap.Logger
}

// NewExplainer wraps provider. A nil logger discards output.
func NewExplainer(provider Provider, logger *zap.Logger) *Explainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Explainer{
		provider: provider,
		logger:   logger.With(zap.String("component", "explainer")),
	}
}

// Explain validates text, resolves the tier for choice and performs one
// upstream completion. It never retries. Errors are *Error values.
func (e *Explainer) Explain(ctx context.Context, text string, choice ModelChoice) (string, error) {
	if err := ValidatePassage(text); err != nil {
		return "", err
	}
	if e.provider == nil {
		return "", &Error{Kind: KindNotConfigured, Err: errors.New("no provider configured")}
	}

	tier := e.provider.Catalog().Resolve(ParseModelChoice(string(choice)))
	req := Request{Tier: tier, Prompt: BuildExplainPrompt(text)}

	started := time.Now()
	explanation, err := e.provider.Complete(ctx, req)
	fields := []zap.Field{
		zap.String("provider", e.provider.Name()),
		zap.String("tier", string(tier.Choice)),
		zap.String("model", tier.Model),
		zap.Stringer("profile", tier.Profile),
		zap.Int("chars", utf8.RuneCountInString(text)),
		zap.Duration("duration", time.Since(started)),
	}
	if err != nil {
		var llmErr *Error
		if !errors.As(err, &llmErr) {
			err = &Error{Kind: KindUpstream, Err: err}
		}
		if errors.Is(err, context.Canceled) {
			e.logger.Debug("explanation cancelled", fields...)
			return "", err
		}
		e.logger.Warn("explanation failed", append(fields, zap.Stringer("kind", KindOf(err)), zap.Error(err))...)
		return "", err
	}
	if explanation == "" {
		e.logger.Info("empty upstream explanation, using fallback", fields...)
		return FallbackExplanation, nil
	}
	e.logger.Debug("explanation ready", fields...)
	return explanation, nil
}
