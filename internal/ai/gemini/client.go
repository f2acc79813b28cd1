package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/yegors/aeroai/internal/ai"
	"github.com/yegors/aeroai/internal/config"
	"github.com/yegors/aeroai/pkg/logger"
	"google.golang.org/genai"
)

const (
	// DefaultModel matches the model the voice assistant was tuned against
	DefaultModel = "gemini-1.5-flash"
	// DefaultBreakerMaxFailures is the consecutive failure count that opens the breaker
	DefaultBreakerMaxFailures = 5
	// DefaultBreakerOpenTimeout is how long the breaker stays open before probing again
	DefaultBreakerOpenTimeout = 30 * time.Second
)

// contentGenerator is the subset of *genai.Models used by the client
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config holds the settings needed to build a Client
type Config struct {
	APIKey             string
	Generation         ai.GenerationConfig
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration
}

// ConfigFromSettings maps the [gemini] config section onto client settings
func ConfigFromSettings(gc config.GeminiConfig) Config {
	generation := ai.GenerationConfig{
		Model:           gc.Model,
		MaxOutputTokens: int32(gc.MaxOutputTokens),
	}
	if gc.Temperature != nil {
		temp := float32(*gc.Temperature)
		generation.Temperature = &temp
	}

	return Config{
		APIKey:             gc.APIKey,
		Generation:         generation,
		BreakerMaxFailures: gc.BreakerMaxFailures,
		BreakerOpenTimeout: time.Duration(gc.BreakerOpenSecs) * time.Second,
	}
}

// Client represents a Google Gemini text generation client
type Client struct {
	models     contentGenerator
	generation ai.GenerationConfig
	breaker    *gobreaker.CircuitBreaker[string]
	logger     *logger.Logger
}

// NewClient creates a Gemini client backed by the Gemini Developer API
func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return newClient(gc.Models, cfg, log), nil
}

func newClient(models contentGenerator, cfg Config, log *logger.Logger) *Client {
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = DefaultModel
	}
	if cfg.BreakerMaxFailures <= 0 {
		cfg.BreakerMaxFailures = DefaultBreakerMaxFailures
	}
	if cfg.BreakerOpenTimeout <= 0 {
		cfg.BreakerOpenTimeout = DefaultBreakerOpenTimeout
	}

	c := &Client{
		models:     models,
		generation: cfg.Generation,
		logger:     log.Named("gemini"),
	}

	maxFailures := uint32(cfg.BreakerMaxFailures)
	c.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// a caller hanging up says nothing about the upstream
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})

	return c
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.generation.Model
}

// Generate sends a single user prompt and returns the generated text
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.breaker.Execute(func() (string, error) {
		return c.generate(ctx, prompt)
	})
	if err != nil {
		c.logger.Error("Gemini generation failed",
			logger.String("model", c.generation.Model),
			logger.Duration("duration", time.Since(start)),
			logger.Error(err))
		return "", err
	}

	c.logger.Debug("Gemini generation completed",
		logger.String("model", c.generation.Model),
		logger.Int("prompt_chars", len(prompt)),
		logger.Int("response_chars", len(text)),
		logger.Duration("duration", time.Since(start)))
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	var genCfg *genai.GenerateContentConfig
	if c.generation.Temperature != nil || c.generation.MaxOutputTokens > 0 {
		genCfg = &genai.GenerateContentConfig{
			Temperature:     c.generation.Temperature,
			MaxOutputTokens: c.generation.MaxOutputTokens,
		}
	}

	resp, err := c.models.GenerateContent(ctx, c.generation.Model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", ai.ErrNoContent
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked by gemini: %s", resp.PromptFeedback.BlockReason)
	}

	text := resp.Text()
	if text == "" {
		return "", ai.ErrNoContent
	}
	return text, nil
}
