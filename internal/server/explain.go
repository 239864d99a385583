package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/csheth/pagelens/internal/llm"
)

// explainBody keeps the raw fields so a wrongly typed value can be told
// apart from malformed JSON.
type explainBody struct {
	Text  json.RawMessage `json:"text"`
	Model json.RawMessage `json:"model"`
}

type explainRequest struct {
	Text  string `validate:"required,notblank,max=2000"`
	Model llm.ModelChoice
}

type explainResponse struct {
	Explanation string `json:"explanation"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// parseExplainRequest decodes and validates the body. Errors are
// *llm.Error values of kind InvalidInput.
func parseExplainRequest(body []byte) (explainRequest, error) {
	var raw explainBody
	if err := json.Unmarshal(body, &raw); err != nil {
		return explainRequest{}, &llm.Error{Kind: llm.KindInvalidInput, Detail: "Invalid JSON body", Err: err}
	}

	var req explainRequest
	if len(raw.Text) > 0 {
		if err := json.Unmarshal(raw.Text, &req.Text); err != nil {
			return explainRequest{}, &llm.Error{Kind: llm.KindInvalidInput, Detail: "Text is required", Err: err}
		}
	}
	var model string
	if len(raw.Model) > 0 {
		// A model that is not a string falls back to the default tier.
		_ = json.Unmarshal(raw.Model, &model)
	}
	req.Model = llm.ParseModelChoice(model)

	if err := validate.Struct(req); err != nil {
		return explainRequest{}, validationError(err)
	}
	return req, nil
}

func validationError(err error) error {
	detail := "Text is required"
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() == "max" {
		detail = llm.TooLongMessage
	}
	return &llm.Error{Kind: llm.KindInvalidInput, Detail: detail, Err: err}
}

func (s *Server) explain(c *fiber.Ctx) error {
	req, err := parseExplainRequest(c.Body())
	if err != nil {
		s.logger.Debug("rejected explain request", zap.Error(err))
		return errorJSON(c, statusFor(err), llm.UserMessage(err))
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.timeout)
	defer cancel()

	explanation, err := s.explainer.Explain(ctx, req.Text, req.Model)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("explain failed",
			zap.Int("status", status),
			zap.Stringer("kind", llm.KindOf(err)),
			zap.String("model", string(req.Model)),
			zap.Error(err),
		)
		return errorJSON(c, status, llm.UserMessage(err))
	}
	return c.JSON(explainResponse{Explanation: explanation})
}
