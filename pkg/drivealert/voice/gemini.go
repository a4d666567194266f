package voice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	daerrors "github.com/randalmurphal/drivealert/pkg/drivealert/errors"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

const assistantInstruction = "You are an in-car driving assistant. Answer the driver's request " +
	"in one short spoken sentence. Alert trigger names such as GPS_OFF or FIX_300 describe " +
	"what just happened; turn them into a natural warning."

// GeminiResolver resolves intents with a Gemini model.
type GeminiResolver struct {
	client *genai.Client
	model  string
	retry  daerrors.RetryConfig
	logger *slog.Logger
}

// NewGeminiResolver creates a resolver authenticated with apiKey.
func NewGeminiResolver(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiResolver, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiResolver{client: client, model: model, retry: daerrors.NLURetry, logger: logger}, nil
}

// WithRetry replaces the retry policy for network failures.
func (g *GeminiResolver) WithRetry(cfg daerrors.RetryConfig) *GeminiResolver {
	g.retry = cfg
	return g
}

// DetectIntent sends text as a fresh single-turn session and returns the
// first text part of the answer.
func (g *GeminiResolver) DetectIntent(ctx context.Context, text string) (string, error) {
	session := uuid.New().String()

	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(assistantInstruction)}}

	resp, err := daerrors.Retry(ctx, g.retry, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return model.GenerateContent(ctx, genai.Text(text))
	})
	if err != nil {
		return "", err
	}
	answer, err := firstText(resp)
	if err != nil {
		return "", err
	}
	if g.logger != nil {
		g.logger.Debug("intent resolved", slog.String("session", session), slog.String("model", g.model))
	}
	return answer, nil
}

// Close releases the client.
func (g *GeminiResolver) Close() error {
	return g.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates found in response")
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				return string(txt), nil
			}
		}
	}
	return "", errors.New("no text content found in response")
}
