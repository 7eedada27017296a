package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/zazer0/resume-mcp/internal/utils"
)

const (
	defaultModel      = "gemini-2.5-pro"
	defaultMaxRetries = 2
	retryBackoffBase  = 2 * time.Second
)

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	client     *genai.Client
	modelName  string
	maxRetries int
	logger     *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client:     client,
		modelName:  model,
		maxRetries: maxRetries,
		logger:     logger,
	}, nil
}

// GenerateContent sends the prompt to Gemini and returns the first textual response.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return g.generateContent(ctx, prompt, nil)
}

// GenerateJSON sends the prompt to Gemini in JSON response mode, so the
// model is constrained to emit a single JSON document.
func (g *Generator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	return g.generateContent(ctx, prompt, cfg)
}

func (g *Generator) generateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * retryBackoffBase
			g.logger.Debug("retrying gemini call",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			if err := utils.WaitFor(ctx, backoff); err != nil {
				return "", err
			}
		}

		resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
		if err != nil {
			lastErr = fmt.Errorf("generate content: %w", err)
			if retryable(err) {
				continue
			}
			return "", lastErr
		}

		output := collectText(resp)
		if output == "" {
			lastErr = errors.New("gemini api returned empty response")
			continue
		}

		return output, nil
	}

	return "", lastErr
}

func collectText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

// retryable reports whether the API error is transient.
func retryable(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
