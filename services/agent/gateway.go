package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gateway sends a prompt to an LLM endpoint and returns the raw text
// response. It carries no contract beyond a negotiated timeout; callers wrap
// it with retry, breaker and fallback handling.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// UnavailableGateway always fails. It stands in when no API key is
// configured, so every pipeline runs on its deterministic fallback.
type UnavailableGateway struct{}

func (UnavailableGateway) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("agent gateway not configured")
}

// GeminiGateway implements Gateway against the Gemini API.
type GeminiGateway struct {
	model *genai.GenerativeModel
}

// NewGeminiGateway creates a Gateway for the given API key and model name.
func NewGeminiGateway(ctx context.Context, apiKey, modelName string) (*GeminiGateway, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGateway{model: client.GenerativeModel(modelName)}, nil
}

func (g *GeminiGateway) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}
