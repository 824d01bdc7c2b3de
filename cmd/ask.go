package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"mom-assistant/internal/render"
)

func (c *cli) askCmd() *cobra.Command {
	var text, mom string

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Translate English text and optionally draft a reply to mom's answer",
		Example: `  mom-assistant ask --text "Can you finish the dress by Friday?"
  mom-assistant ask --text "Can you finish the dress by Friday?" --mom "可以，但是需要多加五十块钱"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				res, err := a.pipeline.Run(cmd.Context(), text, mom)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.stdout, render.New().Pipeline(res))
				return res.ReplyErr
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "English text to translate")
	cmd.Flags().StringVar(&mom, "mom", "", "mom's Mandarin response, drafts a reply when set")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func (c *cli) recipeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "recipe <topic>",
		Short:   "Generate a recipe as title, ingredients and instructions",
		Example: `  mom-assistant recipe tomato egg stir-fry`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				rec, err := a.recipes.Generate(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(c.stdout, render.New().Recipe(rec))
				return nil
			})
		},
	}
}

func (c *cli) withApp(ctx context.Context, fn func(*app) error) error {
	a, err := buildApp(*c.cfg, c.stderr)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryFlushTimeout)
		defer cancel()
		if err := a.shutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "err", err)
		}
	}()
	return fn(a)
}
