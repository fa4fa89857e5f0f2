package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

// Client produces briefing JSON through the Gemini API.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

func ConfigFromEnv() Config {
	key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if key == "" {
		key = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}
	return Config{
		APIKey:      key,
		Model:       strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		BaseURL:     strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
		Temperature: 0.4,
	}
}

func NewFromEnv(ctx context.Context, log *logger.Logger) (Client, error) {
	return New(ctx, log, ConfigFromEnv())
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &client{
		log:   log.With("service", "GeminiClient", "model", cfg.Model),
		gc:    gc,
		model: cfg.Model,
		temp:  cfg.Temperature,
	}, nil
}

type client struct {
	log   *logger.Logger
	gc    *genai.Client
	model string
	temp  float32
}

func (c *client) Complete(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if c.temp > 0 {
		cfg.Temperature = genai.Ptr(c.temp)
	}

	resp, err := c.gc.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	c.log.Debug("gemini completion", "chars", len(text))
	return text, nil
}
