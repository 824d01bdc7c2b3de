package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mom-assistant/internal/apperrors"
	"mom-assistant/internal/config"
	"mom-assistant/internal/logger"
	"mom-assistant/internal/models"
	"mom-assistant/internal/prompts"
	"mom-assistant/internal/textutil"
)

// Completer is the subset of the completion client the generator needs.
type Completer interface {
	Complete(ctx context.Context, req models.CompletionRequest) (models.CompletionResult, error)
}

// Recipe is the structured recipe the model is asked to return.
type Recipe struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// MalformedJSONError reports model output that did not decode as a recipe.
type MalformedJSONError struct {
	Raw string
	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("recipe response is not valid JSON: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

func (e *MalformedJSONError) Is(target error) bool { return target == apperrors.ErrMalformedJSON }

// Generator produces recipes from a topic.
type Generator struct {
	client  Completer
	prompts *prompts.Set
	cfg     config.RecipeConfig
}

func NewGenerator(client Completer, set *prompts.Set, cfg config.RecipeConfig) *Generator {
	return &Generator{client: client, prompts: set, cfg: cfg}
}

// Generate asks the model for a recipe about topic and decodes its JSON
// answer. There is no partial recovery from undecodable output.
func (g *Generator) Generate(ctx context.Context, topic string) (Recipe, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Recipe{}, apperrors.Validation("topic", "No recipe topic provided")
	}

	system, user, err := g.prompts.Render(prompts.Recipe, prompts.Data{Topic: topic})
	if err != nil {
		return Recipe{}, err
	}

	res, err := g.client.Complete(ctx, models.CompletionRequest{
		Model: g.cfg.Model,
		Messages: []models.Message{
			{Role: models.RoleSystem, Content: system},
			{Role: models.RoleUser, Content: user},
		},
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		JSONMode:    g.cfg.JSONMode,
	})
	if err != nil {
		return Recipe{}, fmt.Errorf("generate recipe: %w", err)
	}

	recipe, err := Decode(res.Text)
	if err != nil {
		return Recipe{}, err
	}

	logger.FromContext(ctx).Info("recipe generated",
		"topic", topic,
		"ingredients", len(recipe.Ingredients),
		"instructions", len(recipe.Instructions),
	)
	return recipe, nil
}

// Decode parses model output as a single recipe object, tolerating a
// surrounding Markdown code fence.
func Decode(text string) (Recipe, error) {
	body := textutil.StripCodeFence(text)

	decoder := json.NewDecoder(bytes.NewReader([]byte(body)))
	var recipe Recipe
	if err := decoder.Decode(&recipe); err != nil {
		return Recipe{}, &MalformedJSONError{Raw: text, Err: err}
	}
	if decoder.More() {
		return Recipe{}, &MalformedJSONError{Raw: text, Err: fmt.Errorf("unexpected data after recipe object")}
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []string{}
	}
	if recipe.Instructions == nil {
		recipe.Instructions = []string{}
	}
	return recipe, nil
}
