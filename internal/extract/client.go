// Package extract sends receipt images to a hosted vision-language model
// and returns the raw text completion.
//
// The client speaks the OpenAI chat completions protocol via
// github.com/sashabaranov/go-openai, pointed at Groq's OpenAI-compatible
// endpoint by default. The image travels inline as a base64 data URL in
// an image_url message part; there is no upload step, no caching, and no
// retry — one invocation is exactly one outbound call.
package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mmr-tortoise/receipted/internal/config"
	"github.com/mmr-tortoise/receipted/internal/model"
)

// Extractor is the port the CLI driver depends on. Having the batch loop
// accept this interface (rather than the concrete Client) lets tests run
// the full pipeline against a stub with no network access.
type Extractor interface {
	// Extract sends one image to the inference endpoint and returns the
	// raw text completion. Errors carry the image path for per-file
	// reporting in batch runs.
	Extract(ctx context.Context, ref model.ImageRef) (string, error)
}

// Client is the go-openai based Extractor implementation.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	instruction string
}

// NewClient constructs a Client for the configured endpoint.
//
// The credential is passed in explicitly rather than read from the
// environment here, keeping credential resolution in one place (the
// credential store) and this client free of hidden process-wide state.
func NewClient(apiKey string, cfg *config.Config, instruction string) *Client {
	apiCfg := openai.DefaultConfig(apiKey)
	apiCfg.BaseURL = cfg.BaseURL
	if cfg.TimeoutSeconds > 0 {
		apiCfg.HTTPClient = &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		instruction: instruction,
	}
}

// Extract reads the image, embeds it as a base64 data URL, and performs
// one chat completion call. The returned string is the model's raw text;
// JSON extraction from it is the parser's job, not the client's.
func (c *Client) Extract(ctx context.Context, ref model.ImageRef) (string, error) {
	data, err := os.ReadFile(ref.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", ref.Path, model.ErrFileNotFound)
		}
		return "", fmt.Errorf("failed to read %s: %w", ref.Path, err)
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: c.instruction,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: DataURL(ref.Format, data),
						},
					},
				},
			},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("inference request for %s failed: %w", ref.Path, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("inference request for %s returned no choices", ref.Path)
	}

	return resp.Choices[0].Message.Content, nil
}

// DataURL encodes raw image bytes as a base64 data URL with the format's
// MIME type, the inline form the chat completions vision API accepts.
func DataURL(format model.ImageFormat, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s",
		format.MIMEType(), base64.StdEncoding.EncodeToString(data))
}
