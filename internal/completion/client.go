package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"mom-assistant/internal/config"
	"mom-assistant/internal/logger"
	"mom-assistant/internal/models"
)

// Client issues chat completions against an OpenAI-compatible service.
type Client struct {
	api *openai.Client
}

// New constructs a Client. The API key is sent as a bearer token on every
// request.
func New(cfg config.ProviderConfig, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		return nil, errors.New("http client must not be nil")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, config.ErrMissingAPIKey
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = baseURL
	clientCfg.HTTPClient = httpClient

	return &Client{api: openai.NewClientWithConfig(clientCfg)}, nil
}

// Complete sends req and returns the first choice's message content.
func (c *Client) Complete(ctx context.Context, req models.CompletionRequest) (models.CompletionResult, error) {
	payload, err := buildChatPayload(req)
	if err != nil {
		return models.CompletionResult{}, err
	}

	log := logger.FromContext(ctx)
	log.Debug("completion request",
		"model", req.Model,
		"messages", len(req.Messages),
		"temperature", req.Temperature,
		"max_tokens", req.MaxTokens,
		"json_mode", req.JSONMode,
	)

	resp, err := c.api.CreateChatCompletion(ctx, payload)
	if err != nil {
		return models.CompletionResult{}, classifyError(err)
	}

	result, err := toResult(resp)
	if err != nil {
		return models.CompletionResult{}, err
	}

	log.Debug("completion response",
		"id", result.ID,
		"finish_reason", result.FinishReason,
		"total_tokens", result.Usage.TotalTokens,
	)
	return result, nil
}

func buildChatPayload(req models.CompletionRequest) (openai.ChatCompletionRequest, error) {
	if strings.TrimSpace(req.Model) == "" {
		return openai.ChatCompletionRequest{}, fmt.Errorf("%w: model must not be empty", ErrInvalidRequest)
	}
	if len(req.Messages) == 0 {
		return openai.ChatCompletionRequest{}, fmt.Errorf("%w: at least one message is required", ErrInvalidRequest)
	}
	if req.Temperature < 0 || req.Temperature > 2 {
		return openai.ChatCompletionRequest{}, fmt.Errorf("%w: temperature %v outside [0, 2]", ErrInvalidRequest, req.Temperature)
	}
	if req.MaxTokens <= 0 {
		return openai.ChatCompletionRequest{}, fmt.Errorf("%w: max tokens must be positive", ErrInvalidRequest)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case models.RoleSystem, models.RoleUser:
		default:
			return openai.ChatCompletionRequest{}, fmt.Errorf("%w: unsupported role %q", ErrInvalidRequest, msg.Role)
		}
		if strings.TrimSpace(msg.Content) == "" {
			return openai.ChatCompletionRequest{}, fmt.Errorf("%w: %s message content must not be empty", ErrInvalidRequest, msg.Role)
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	payload := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		payload.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return payload, nil
}

func toResult(resp openai.ChatCompletionResponse) (models.CompletionResult, error) {
	if len(resp.Choices) == 0 {
		return models.CompletionResult{}, &MalformedResponseError{Reason: "response did not include choices"}
	}

	choice := resp.Choices[0]
	if strings.TrimSpace(choice.Message.Content) == "" {
		return models.CompletionResult{}, &MalformedResponseError{Reason: "first choice has no text content"}
	}

	return models.CompletionResult{
		Text:         choice.Message.Content,
		ID:           resp.ID,
		FinishReason: string(choice.FinishReason),
		Usage: models.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &MalformedResponseError{Reason: "decode provider response", Err: err}
	}

	return &ProviderError{Err: err}
}
