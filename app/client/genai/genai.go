package genai

import (
	"context"
	"nova/app/config"
	"strings"
	"time"

	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const maxGenerateDuration = 30 * time.Second

// Client is the generative-text boundary: one prompt in, one answer out.
type Client struct {
	model llms.Model
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)
	appCtx := do.MustInvoke[context.Context](di)

	model, err := googleai.New(appCtx,
		googleai.WithAPIKey(cfg.Gemini.APIKey),
		googleai.WithDefaultModel(cfg.Gemini.Model),
	)
	if err != nil {
		return nil, oops.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{model: model}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, maxGenerateDuration)
	defer cancel()

	answer, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", oops.Errorf("failed to generate content: %w", err)
	}

	return strings.TrimSpace(answer), nil
}
