package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("NEXT_PUBLIC_ENV_VARIABLE_OPEN_AI_API_KEY", "")
}

func TestLoadDefaults(t *testing.T) {
	clearKeyEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerLogLevel, cfg.Server.LogLevel)
	assert.Equal(t, DefaultProviderBaseURL, cfg.Provider.BaseURL)
	assert.Equal(t, DefaultProviderTimeout, cfg.Provider.Timeout)
	assert.Equal(t, DefaultModel, cfg.Assistant.Model)
	assert.Equal(t, DefaultTranslateTemperature, cfg.Assistant.Translate.Temperature)
	assert.Equal(t, DefaultTranslateMaxTokens, cfg.Assistant.Translate.MaxTokens)
	assert.Equal(t, DefaultReplyTemperature, cfg.Assistant.Reply.Temperature)
	assert.Equal(t, DefaultReplyMaxTokens, cfg.Assistant.Reply.MaxTokens)
	assert.Equal(t, ReplyFormatSections, cfg.Assistant.ReplyFormat)
	assert.True(t, cfg.Assistant.Concurrent)
	assert.True(t, cfg.Recipe.JSONMode)
	assert.Equal(t, DefaultMaxInputTokens, cfg.Limits.MaxInputTokens)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Empty(t, cfg.Provider.APIKey)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearKeyEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: 8081
provider:
  api_key: file-key
  timeout: 5s
  headers:
    OpenAI-Organization: org-1
assistant:
  reply_format: json
  reply:
    max_tokens: 1500
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv(EnvPrefix+"SERVER__PORT", "9090")
	t.Setenv(EnvPrefix+"ASSISTANT__CONCURRENT", "false")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", path, "")

	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "file-key", cfg.Provider.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "org-1", cfg.Provider.Headers["OpenAI-Organization"])
	assert.Equal(t, ReplyFormatJSON, cfg.Assistant.ReplyFormat)
	assert.Equal(t, 1500, cfg.Assistant.Reply.MaxTokens)
	assert.Equal(t, DefaultTranslateMaxTokens, cfg.Assistant.Translate.MaxTokens)
	assert.False(t, cfg.Assistant.Concurrent)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFlagOverridesPort(t *testing.T) {
	clearKeyEnv(t)

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("port", DefaultServerPort, "")
	cmd.Flags().String("log-level", DefaultServerLogLevel, "")
	cmd.Flags().String("text", "", "")
	require.NoError(t, cmd.Flags().Set("port", "4242"))
	require.NoError(t, cmd.Flags().Set("text", "hello"))

	t.Setenv(EnvPrefix+"SERVER__LOG_LEVEL", "debug")

	cfg, err := Load(cmd)
	require.NoError(t, err)
	assert.Equal(t, 4242, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoadAPIKeyFallbacks(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("NEXT_PUBLIC_ENV_VARIABLE_OPEN_AI_API_KEY", "legacy-key")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.Provider.APIKey)

	t.Setenv("OPENAI_API_KEY", "primary-key")
	cfg, err = Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "primary-key", cfg.Provider.APIKey)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearKeyEnv(t)

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", filepath.Join(t.TempDir(), "absent.yaml"), "")

	_, err := Load(cmd)
	assert.Error(t, err)
}

func validConfig(t *testing.T) Config {
	t.Helper()
	clearKeyEnv(t)
	cfg, err := Load(nil)
	require.NoError(t, err)
	cfg.Provider.APIKey = "sk-test"
	return *cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.Provider.APIKey = "  " }, wantErr: "api_key"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "temperature too high", mutate: func(c *Config) { c.Assistant.Translate.Temperature = 2.5 }, wantErr: "assistant.translate.temperature"},
		{name: "zero reply budget", mutate: func(c *Config) { c.Assistant.Reply.MaxTokens = 0 }, wantErr: "assistant.reply.max_tokens"},
		{name: "unknown reply format", mutate: func(c *Config) { c.Assistant.ReplyFormat = "xml" }, wantErr: "reply_format"},
		{name: "empty recipe model", mutate: func(c *Config) { c.Recipe.Model = "" }, wantErr: "recipe.model"},
		{name: "bad header", mutate: func(c *Config) { c.Provider.Headers = Headers{"X Bad": "1"} }, wantErr: "provider.headers"},
		{name: "negative limit", mutate: func(c *Config) { c.Limits.MaxInputTokens = -1 }, wantErr: "max_input_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateMissingKeyIsSentinel(t *testing.T) {
	cfg := validConfig(t)
	cfg.Provider.APIKey = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}
