package cmd

import (
	"fmt"
	"io"

	"mom-assistant/internal/assistant"
	"mom-assistant/internal/completion"
	"mom-assistant/internal/config"
	"mom-assistant/internal/prompts"
	"mom-assistant/internal/recipe"
	"mom-assistant/internal/telemetry"
	"mom-assistant/internal/tokens"
)

type app struct {
	pipeline *assistant.Pipeline
	recipes  *recipe.Generator
	shutdown telemetry.Shutdown
}

// buildApp validates cfg and wires the completion client, prompts and both
// workflows. Spans go to traceOut when telemetry is enabled.
func buildApp(cfg config.Config, traceOut io.Writer) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Init(cfg.Telemetry, traceOut)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	client, err := completion.New(cfg.Provider, completion.NewHTTPClient(cfg.Provider))
	if err != nil {
		return nil, err
	}

	set, err := prompts.Load(cfg.Prompts.File)
	if err != nil {
		return nil, err
	}

	a := cfg.Assistant
	pipeline := assistant.NewPipeline(
		assistant.NewTranslator(client, set, a.Model, a.Translate),
		assistant.NewReplyDrafter(client, set, a.Model, a.Reply, a.ReplyFormat),
		assistant.WithInputGuard(tokens.NewGuard(a.Model, cfg.Limits.MaxInputTokens)),
		assistant.WithConcurrency(a.Concurrent),
	)

	return &app{
		pipeline: pipeline,
		recipes:  recipe.NewGenerator(client, set, cfg.Recipe),
		shutdown: shutdown,
	}, nil
}
