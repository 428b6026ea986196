package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	genai "google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model produced no candidate text.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// rateLimitBackoff is the pause before the single permitted retry on a
// rate-limit-class error.
const rateLimitBackoff = 2 * time.Second

// Gemini is a thin wrapper around the official genai client. Sampling is
// pinned to temperature 0 so repeated runs over the same file are
// reproducible.
type Gemini struct {
	cli    *genai.Client
	model  string
	logger *slog.Logger
}

func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{cli: cli, model: model, logger: logger}, nil
}

// Generate sends the prompt once, retrying exactly once on a
// rate-limit-class error. All other errors are terminal for the call.
func (g *Gemini) Generate(ctx context.Context, prompt string, maxTokens int) (*Result, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: int32(maxTokens),
	}
	contents := []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Rate limited, retrying generation once", "backoff", rateLimitBackoff)
			select {
			case <-time.After(rateLimitBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, config)
		if err != nil {
			lastErr = err
			if isRateLimited(err) {
				continue
			}
			return nil, err
		}

		result := &Result{}
		if resp.UsageMetadata != nil {
			result.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
			result.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		}
		if len(resp.Candidates) == 0 ||
			resp.Candidates[0].Content == nil ||
			len(resp.Candidates[0].Content.Parts) == 0 {
			// Partial usage is still reported alongside the error.
			return result, ErrEmptyResponse
		}
		result.Text = resp.Candidates[0].Content.Parts[0].Text

		g.logger.Debug("Generation completed",
			"model", g.model,
			"input_tokens", result.InputTokens,
			"output_tokens", result.OutputTokens)
		return result, nil
	}
	return nil, lastErr
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429
	}
	return strings.Contains(err.Error(), "RESOURCE_EXHAUSTED")
}
