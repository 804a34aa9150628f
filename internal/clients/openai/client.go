// Package openai drives the OpenAI API: chat completions for artifact
// generation and the audio transcription endpoint for speech-to-text.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/edusloth/edusloth-backend/internal/config"
	"github.com/edusloth/edusloth-backend/internal/logger"
)

type Client struct {
	log        *logger.Logger
	cfg        config.ProviderConfig
	api        openai.Client
	httpClient *http.Client
}

func NewClient(cfg config.ProviderConfig, log *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	api := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL+"/v1"),
		option.WithRequestTimeout(cfg.Timeout),
	)
	return &Client{
		log:        log.With("client", "OpenAIClient"),
		cfg:        cfg,
		api:        api,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) Name() string            { return "openai" }
func (c *Client) SingleCallChars() int    { return c.cfg.SingleCallChars }
func (c *Client) ChunkChars() int         { return c.cfg.ChunkChars }
func (c *Client) SupportsFileInput() bool { return false }

func (c *Client) GenerateText(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(0.5),
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateFromFile exists to satisfy the provider contract; chat completions
// take no binary document input, so callers must extract text first.
func (c *Client) GenerateFromFile(ctx context.Context, system, prompt string, data []byte, mimeType string, maxTokens int) (string, error) {
	return "", errors.New("openai provider does not accept binary document input")
}
