package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

const (
	DefaultServerPort     = 3000
	DefaultServerLogLevel = "info"

	DefaultProviderBaseURL = "https://api.openai.com/v1"
	DefaultProviderTimeout = 60 * time.Second

	DefaultModel = "gpt-3.5-turbo"

	DefaultTranslateTemperature = 0.3
	DefaultTranslateMaxTokens   = 200
	DefaultReplyTemperature     = 0.7
	DefaultReplyMaxTokens       = 1000
	DefaultReplyFormat          = ReplyFormatSections

	DefaultRecipeTemperature = 1.0
	DefaultRecipeMaxTokens   = 1024

	DefaultMaxInputTokens = 2000

	DefaultTelemetryServiceName = "mom-assistant"

	EnvPrefix = "MOM_ASSISTANT_"
)

const (
	ReplyFormatSections = "sections"
	ReplyFormatJSON     = "json"
)

// Environment variables consulted for the provider credential when
// provider.api_key is not set. The second one is what the web front-end
// historically shipped with.
var apiKeyEnvFallbacks = []string{"OPENAI_API_KEY", "NEXT_PUBLIC_ENV_VARIABLE_OPEN_AI_API_KEY"}

// ErrMissingAPIKey is returned by Validate when no provider credential is configured.
var ErrMissingAPIKey = errors.New("provider.api_key must be provided (or set OPENAI_API_KEY)")

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Provider  ProviderConfig  `koanf:"provider"`
	Assistant AssistantConfig `koanf:"assistant"`
	Recipe    RecipeConfig    `koanf:"recipe"`
	Limits    LimitsConfig    `koanf:"limits"`
	Prompts   PromptsConfig   `koanf:"prompts"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig defines listener configuration.
type ServerConfig struct {
	Port     int    `koanf:"port"`
	LogLevel string `koanf:"log_level"`
}

// ProviderConfig captures authentication and routing info for the completion service.
type ProviderConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
	Headers Headers       `koanf:"headers"`
}

// Headers contains additional HTTP headers to send with a provider request.
type Headers map[string]string

// StepConfig tunes a single completion call.
type StepConfig struct {
	Temperature float64 `koanf:"temperature"`
	MaxTokens   int     `koanf:"max_tokens"`
}

// AssistantConfig configures the translate and reply pipeline.
type AssistantConfig struct {
	Model       string     `koanf:"model"`
	Translate   StepConfig `koanf:"translate"`
	Reply       StepConfig `koanf:"reply"`
	ReplyFormat string     `koanf:"reply_format"`
	Concurrent  bool       `koanf:"concurrent"`
}

// RecipeConfig configures recipe generation.
type RecipeConfig struct {
	Model       string  `koanf:"model"`
	Temperature float64 `koanf:"temperature"`
	MaxTokens   int     `koanf:"max_tokens"`
	JSONMode    bool    `koanf:"json_mode"`
}

// LimitsConfig bounds user input. Zero disables a limit.
type LimitsConfig struct {
	MaxInputTokens int `koanf:"max_input_tokens"`
}

// PromptsConfig points at an optional YAML file overriding built-in prompts.
type PromptsConfig struct {
	File string `koanf:"file"`
}

// TelemetryConfig toggles OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.port":                     DefaultServerPort,
		"server.log_level":                DefaultServerLogLevel,
		"provider.base_url":               DefaultProviderBaseURL,
		"provider.timeout":                DefaultProviderTimeout,
		"assistant.model":                 DefaultModel,
		"assistant.translate.temperature": DefaultTranslateTemperature,
		"assistant.translate.max_tokens":  DefaultTranslateMaxTokens,
		"assistant.reply.temperature":     DefaultReplyTemperature,
		"assistant.reply.max_tokens":      DefaultReplyMaxTokens,
		"assistant.reply_format":          DefaultReplyFormat,
		"assistant.concurrent":            true,
		"recipe.model":                    DefaultModel,
		"recipe.temperature":              DefaultRecipeTemperature,
		"recipe.max_tokens":               DefaultRecipeMaxTokens,
		"recipe.json_mode":                true,
		"limits.max_input_tokens":         DefaultMaxInputTokens,
		"telemetry.enabled":               false,
		"telemetry.service_name":          DefaultTelemetryServiceName,
	}
}

// Load layers defaults, the optional --config YAML file, MOM_ASSISTANT_*
// environment variables and changed command-line flags, in that order.
// It does not validate; callers that need a provider call Validate.
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("set default %q: %w", key, err)
		}
	}

	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", configPath, err)
		}
		slog.Debug("loaded config file", "path", configPath)
	}

	// MOM_ASSISTANT_PROVIDER__BASE_URL -> provider.base_url
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if cmd != nil {
		if err := k.Load(posflag.ProviderWithValue(cmd.Flags(), ".", k, flagKey), nil); err != nil {
			return nil, fmt.Errorf("read flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if strings.TrimSpace(cfg.Provider.APIKey) == "" {
		for _, name := range apiKeyEnvFallbacks {
			if key := strings.TrimSpace(os.Getenv(name)); key != "" {
				cfg.Provider.APIKey = key
				break
			}
		}
	}

	return &cfg, nil
}

// flagConfigKeys maps command-line flags onto config keys. Flags not listed
// here are command arguments and never reach the config.
var flagConfigKeys = map[string]string{
	"port":      "server.port",
	"log-level": "server.log_level",
}

func flagKey(name, value string) (string, any) {
	key, ok := flagConfigKeys[name]
	if !ok {
		return "", nil
	}
	return key, value
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate performs strict sanity checks on the configuration.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}

	if strings.TrimSpace(c.Provider.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if strings.TrimSpace(c.Provider.BaseURL) == "" {
		return errors.New("provider.base_url must be provided")
	}
	if c.Provider.Timeout < 0 {
		return fmt.Errorf("provider.timeout must not be negative, got %s", c.Provider.Timeout)
	}
	for headerKey := range c.Provider.Headers {
		if !isCanonicalHTTPHeader(headerKey) {
			return fmt.Errorf("provider.headers: %q is not a valid HTTP header name", headerKey)
		}
	}

	if strings.TrimSpace(c.Assistant.Model) == "" {
		return errors.New("assistant.model must not be empty")
	}
	if err := validateStep("assistant.translate", c.Assistant.Translate); err != nil {
		return err
	}
	if err := validateStep("assistant.reply", c.Assistant.Reply); err != nil {
		return err
	}
	switch c.Assistant.ReplyFormat {
	case ReplyFormatSections, ReplyFormatJSON:
	default:
		return fmt.Errorf("assistant.reply_format %q must be one of %q or %q", c.Assistant.ReplyFormat, ReplyFormatSections, ReplyFormatJSON)
	}

	if strings.TrimSpace(c.Recipe.Model) == "" {
		return errors.New("recipe.model must not be empty")
	}
	if err := validateStep("recipe", StepConfig{Temperature: c.Recipe.Temperature, MaxTokens: c.Recipe.MaxTokens}); err != nil {
		return err
	}

	if c.Limits.MaxInputTokens < 0 {
		return fmt.Errorf("limits.max_input_tokens must not be negative, got %d", c.Limits.MaxInputTokens)
	}

	return nil
}

func validateStep(name string, step StepConfig) error {
	if step.Temperature < 0 || step.Temperature > 2 {
		return fmt.Errorf("%s.temperature must be within [0, 2], got %v", name, step.Temperature)
	}
	if step.MaxTokens <= 0 {
		return fmt.Errorf("%s.max_tokens must be positive, got %d", name, step.MaxTokens)
	}
	return nil
}

func isCanonicalHTTPHeader(header string) bool {
	if header == "" {
		return false
	}

	for _, r := range header {
		if !(r == '-' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}
