// Package gemini implements the AI tutor assistant on top of the Gemini API.
// Calls are bounded by a per-request timeout, retried with backoff on
// transient failures and guarded by a circuit breaker.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/gaspar-hub/academic-hub/internal/application/tutor"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/pkg/circuitbreaker"
	"github.com/gaspar-hub/academic-hub/pkg/logger"
	"github.com/gaspar-hub/academic-hub/pkg/retry"
)

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("gemini: API key is required")

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-3-flash-preview"

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds the client settings.
type Config struct {
	APIKey string
	Model  string

	// RequestTimeout bounds one attempt.
	RequestTimeout time.Duration

	// MaxRetries counts the first attempt.
	MaxRetries int

	BreakerThreshold int
	BreakerTimeout   time.Duration

	Logger *logger.Logger
}

// generator is the subset of genai.Models used by the client.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client answers tutor questions with a Gemini model.
type Client struct {
	models  generator
	model   string
	timeout time.Duration
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

var _ tutor.Assistant = (*Client)(nil)

// New creates a client for the Gemini API.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newClient(gc.Models, cfg), nil
}

func newClient(models generator, cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("gemini")

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	c := &Client{
		models:  models,
		model:   cfg.Model,
		timeout: cfg.RequestTimeout,
		log:     log,
	}
	c.retrier = retry.TutorRetrier(cfg.MaxRetries,
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Debug("retrying tutor request", logger.Int("attempt", attempt), logger.Duration("delay", delay), logger.Err(err))
		}),
	)
	c.breaker = circuitbreaker.TutorBreaker(
		func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
		circuitbreaker.WithFailureThreshold(cfg.BreakerThreshold),
		circuitbreaker.WithTimeout(cfg.BreakerTimeout),
	)
	return c
}

// Ask sends the conversation to the model and returns the reply text.
func (c *Client) Ask(ctx context.Context, history []tutor.Turn, systemInstruction string) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		contents = append(contents, genai.NewContentFromText(t.Text, role(t.Role)))
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}

	var reply string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		text, err := retry.DoWith(ctx, c.retrier, func(ctx context.Context) (string, error) {
			return c.generate(ctx, contents, config)
		})
		reply = text
		return err
	})
	switch {
	case circuitbreaker.IsRejection(err):
		return "", shared.WrapError("tutor", "Ask", shared.ErrServiceUnavailable, "circuit open", err)
	case errors.Is(err, context.DeadlineExceeded):
		return "", shared.WrapError("tutor", "Ask", shared.ErrTimeout, "tutor request timeout", err)
	case err != nil:
		return "", shared.WrapError("tutor", "Ask", shared.ErrExternalService, "tutor request failed", err)
	}
	return reply, nil
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", classify(err)
	}
	c.log.Debug("model replied", logger.String("model", c.model), logger.Latency(time.Since(start)))
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}

// classify marks rate limits, server errors and attempt timeouts as
// retryable.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return retry.Retryable(err)
		}
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return retry.Retryable(err)
	}
	return err
}

func role(r tutor.Role) genai.Role {
	if r == tutor.RoleModel {
		return genai.RoleModel
	}
	return genai.RoleUser
}
