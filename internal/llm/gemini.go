package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
)

const (
	defaultModel       = "gemini-2.0-flash"
	defaultTemperature = 0.25
	defaultMaxTokens   = 600
	transientRetries   = 2
	retryBackoff       = 500 * time.Millisecond
)

// GeminiClient implements Client using the Google Gemini SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// NewGeminiClient creates the Gemini-backed client. The API key must
// be non-empty; callers that have no key should carry a nil Client
// instead of constructing one.
func NewGeminiClient(ctx context.Context, apiKey, model string, baseLog *logger.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &GeminiClient{
		client: client,
		model:  model,
		log:    baseLog.With("service", "GeminiClient"),
	}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, system, user string) (string, error) {
	return g.GenerateChat(ctx, system, []Message{{Role: RoleUser, Content: user}})
}

func (g *GeminiClient) GenerateChat(ctx context.Context, system string, messages []Message) (string, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: defaultMaxTokens,
	}
	temp := float32(defaultTemperature)
	config.Temperature = &temp
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	contents := make([]*genai.Content, len(messages))
	for i, m := range messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents[i] = &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		}
	}

	var lastErr error
	for attempt := 0; attempt <= transientRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &Error{Kind: KindTransient, Err: ctx.Err()}
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}

		result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
		if err != nil {
			lastErr = classify(err)
			if KindOf(lastErr) == KindTransient {
				g.log.Warn("Transient model failure, retrying", "attempt", attempt, "error", err)
				continue
			}
			return "", lastErr
		}

		text := strings.TrimSpace(result.Text())
		if text == "" {
			return "", &Error{Kind: KindOther, Err: fmt.Errorf("model returned empty response")}
		}
		return text, nil
	}
	return "", lastErr
}

func classify(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &Error{Kind: KindQuota, Err: err}
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return &Error{Kind: KindAuth, Err: err}
		case apiErr.Code >= 500:
			return &Error{Kind: KindTransient, Err: err}
		}
		return &Error{Kind: KindOther, Err: err}
	}
	return &Error{Kind: KindTransient, Err: err}
}
