// Package ollama provides Ollama integration for local text completion.
// Implements the CompletionClient interface used by the dialogue core.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/recipetalk/v1/internal/ports/outbound"
	apperrors "github.com/recipetalk/v1/pkg/errors"
	"go.uber.org/zap"
)

// Config holds the Ollama connection settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the Ollama generate API.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

var _ outbound.CompletionClient = (*Client)(nil)

// NewClient creates a new Ollama client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2:3b"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger = logger.Named("ollama-client")
	logger.Info("Ollama client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout))

	return &Client{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// Ollama API structures
type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type generateResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count,omitempty"`
}

// HealthCheck verifies the Ollama service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return apperrors.NewProviderUnavailableError("ollama", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.NewProviderUnavailableError("ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewProviderUnavailableError("ollama",
			fmt.Errorf("health check returned status %d", resp.StatusCode))
	}

	c.logger.Debug("Ollama health check passed")
	return nil
}

// Complete sends one prompt and returns the raw completion text. Failures
// map to the PROVIDER_UNAVAILABLE / PROVIDER_TIMEOUT error classes so callers
// can degrade per failure class.
func (c *Client) Complete(ctx context.Context, prompt string, opts outbound.CompletionOptions) (string, error) {
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": opts.Temperature,
			"num_predict": maxTokensOrDefault(opts.MaxTokens),
			"num_ctx":     4096,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", apperrors.NewProviderUnavailableError("ollama", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", apperrors.NewProviderTimeoutError("ollama", err)
		}
		return "", apperrors.NewProviderUnavailableError("ollama", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewProviderUnavailableError("ollama", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewProviderUnavailableError("ollama",
			fmt.Errorf("API error %d: %s", resp.StatusCode, string(body)))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", apperrors.NewMalformedResponseError("completion envelope", err)
	}
	if !genResp.Done {
		return "", apperrors.NewMalformedResponseError("incomplete response from Ollama", nil)
	}

	c.logger.Debug("Ollama completion successful",
		zap.String("model", genResp.Model),
		zap.Int("eval_count", genResp.EvalCount))

	return strings.TrimSpace(genResp.Response), nil
}

func maxTokensOrDefault(maxTokens int) int {
	if maxTokens <= 0 {
		return 500
	}
	return maxTokens
}

func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
