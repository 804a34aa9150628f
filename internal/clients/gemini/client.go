// Package gemini drives the Gemini API. It is the large-context provider:
// it accepts whole documents (PDF bytes) natively, so the pipeline can skip
// local text extraction when this provider is primary.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/edusloth/edusloth-backend/internal/config"
	"github.com/edusloth/edusloth-backend/internal/logger"
)

type Client struct {
	log *logger.Logger
	cfg config.ProviderConfig
	api *genai.Client
}

func NewClient(ctx context.Context, cfg config.ProviderConfig, log *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing GOOGLE_API_KEY")
	}
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{
		log: log.With("client", "GeminiClient"),
		cfg: cfg,
		api: api,
	}, nil
}

func (c *Client) Name() string            { return "gemini" }
func (c *Client) SingleCallChars() int    { return c.cfg.SingleCallChars }
func (c *Client) ChunkChars() int         { return c.cfg.ChunkChars }
func (c *Client) SupportsFileInput() bool { return true }

func (c *Client) GenerateText(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	resp, err := c.api.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), c.generateConfig(system, maxTokens))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return c.responseText(resp)
}

func (c *Client) GenerateFromFile(ctx context.Context, system, prompt string, data []byte, mimeType string, maxTokens int) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := c.api.Models.GenerateContent(ctx, c.cfg.Model, contents, c.generateConfig(system, maxTokens))
	if err != nil {
		return "", fmt.Errorf("gemini generate content from file: %w", err)
	}
	return c.responseText(resp)
}

func (c *Client) generateConfig(system string, maxTokens int) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.5),
		MaxOutputTokens: int32(maxTokens),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return cfg
}

func (c *Client) responseText(resp *genai.GenerateContentResponse) (string, error) {
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}
