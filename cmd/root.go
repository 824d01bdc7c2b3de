package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mom-assistant/internal/config"
	"mom-assistant/internal/logger"
)

// cli carries state shared between the root command and its subcommands.
type cli struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

// Execute runs the CLI with the provided arguments.
func Execute(ctx context.Context, args []string) error {
	root := newRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "mom-assistant",
		Short:         "Translate English for mom and draft bilingual replies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().String("config", "", "path to a YAML configuration file")
	root.PersistentFlags().String("log-level", config.DefaultServerLogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(c.serveCmd(), c.askCmd(), c.recipeCmd())
	return root
}

func (c *cli) load(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	logger.SetupWriter(c.stderr, cfg.Server.LogLevel)

	c.cfg = cfg
	return nil
}
