package assistant

import (
	"context"
	"fmt"

	"mom-assistant/internal/config"
	"mom-assistant/internal/models"
	"mom-assistant/internal/prompts"
)

// Completer is the subset of the completion client the steps need.
type Completer interface {
	Complete(ctx context.Context, req models.CompletionRequest) (models.CompletionResult, error)
}

// Translator turns English text into Mandarin.
type Translator struct {
	client  Completer
	prompts *prompts.Set
	model   string
	step    config.StepConfig
}

func NewTranslator(client Completer, set *prompts.Set, model string, step config.StepConfig) *Translator {
	return &Translator{client: client, prompts: set, model: model, step: step}
}

// Translate returns the model's translation verbatim. Callers validate that
// englishText is non-empty.
func (t *Translator) Translate(ctx context.Context, englishText string) (string, error) {
	system, user, err := t.prompts.Render(prompts.Translate, prompts.Data{EnglishText: englishText})
	if err != nil {
		return "", err
	}

	res, err := t.client.Complete(ctx, newRequest(t.model, t.step, system, user, false))
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return res.Text, nil
}

// ReplyDrafter writes the five-part reply on the mom's behalf.
type ReplyDrafter struct {
	client  Completer
	prompts *prompts.Set
	model   string
	step    config.StepConfig
	format  string
}

func NewReplyDrafter(client Completer, set *prompts.Set, model string, step config.StepConfig, format string) *ReplyDrafter {
	if format == "" {
		format = config.ReplyFormatSections
	}
	return &ReplyDrafter{client: client, prompts: set, model: model, step: step, format: format}
}

// DraftReply returns the raw reply blob. It is only invoked when momInput is
// present; it does not check that itself.
func (d *ReplyDrafter) DraftReply(ctx context.Context, englishText, momInput string) (string, error) {
	key := prompts.Reply
	jsonMode := d.format == config.ReplyFormatJSON
	if jsonMode {
		key = prompts.ReplyJSON
	}

	system, user, err := d.prompts.Render(key, prompts.Data{EnglishText: englishText, MomInput: momInput})
	if err != nil {
		return "", err
	}

	res, err := d.client.Complete(ctx, newRequest(d.model, d.step, system, user, jsonMode))
	if err != nil {
		return "", fmt.Errorf("draft reply: %w", err)
	}
	return res.Text, nil
}

func newRequest(model string, step config.StepConfig, system, user string, jsonMode bool) models.CompletionRequest {
	return models.CompletionRequest{
		Model: model,
		Messages: []models.Message{
			{Role: models.RoleSystem, Content: system},
			{Role: models.RoleUser, Content: user},
		},
		Temperature: step.Temperature,
		MaxTokens:   step.MaxTokens,
		JSONMode:    jsonMode,
	}
}
