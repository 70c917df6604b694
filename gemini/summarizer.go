// Package gemini implements the summarizer and sentiment classifier on
// Google Gemini.
package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/use-agent/webstruct/analysis"
	"github.com/use-agent/webstruct/models"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

var (
	_ analysis.Summarizer = (*Summarizer)(nil)
	_ analysis.Classifier = (*Summarizer)(nil)
)

// Summarizer implements analysis.Summarizer and analysis.Classifier.
type Summarizer struct {
	client *genai.Client
	model  string
}

// NewSummarizer creates a Summarizer. An empty model selects DefaultModel.
func NewSummarizer(client *genai.Client, model string) *Summarizer {
	if model == "" {
		model = DefaultModel
	}
	return &Summarizer{client: client, model: model}
}

// NewClient creates a Gemini API client. baseURL overrides the endpoint and
// may be empty.
func NewClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	return genai.NewClient(ctx, cfg)
}

// Summarize returns a short summary of text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.generate(ctx, BuildConfig(analysis.SummaryPrompt, 256), text)
}

// Classify returns a normalised sentiment label for text.
func (s *Summarizer) Classify(ctx context.Context, text string) (string, error) {
	out, err := s.generate(ctx, BuildConfig(analysis.SentimentPrompt, 8), text)
	if err != nil {
		return "", err
	}
	return analysis.ParseSentiment(out), nil
}

func (s *Summarizer) generate(ctx context.Context, config *genai.GenerateContentConfig, text string) (string, error) {
	result, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: text}},
		}},
		config,
	)
	if err != nil {
		return "", classifyError(err)
	}
	if result == nil {
		return "", models.NewScrapeError(models.ErrCodeLLMFailure, "gemini returned nil result", nil)
	}
	out := strings.TrimSpace(result.Text())
	if out == "" {
		return "", models.NewScrapeError(models.ErrCodeLLMFailure, "gemini returned no text", nil)
	}
	return out, nil
}

// BuildConfig returns the GenerateContentConfig for one call. Thinking is
// disabled so the whole output budget goes to the answer.
func BuildConfig(system string, maxTokens int32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: maxTokens,
		ThinkingConfig:  &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	}
}

func classifyError(err error) *models.ScrapeError {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return models.NewScrapeError(models.ErrCodeLLMAuthFailure, "gemini rejected credentials", err)
	case http.StatusTooManyRequests:
		return models.NewScrapeError(models.ErrCodeLLMRateLimited, "gemini quota exceeded", err)
	default:
		return models.NewScrapeError(models.ErrCodeLLMFailure, "gemini request failed", err)
	}
}
