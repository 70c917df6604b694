// Package provider builds the document analyzer from configuration.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/use-agent/webstruct/analysis"
	"github.com/use-agent/webstruct/config"
	"github.com/use-agent/webstruct/gemini"
	"github.com/use-agent/webstruct/llm"
)

// Supported summarizer providers.
const (
	Lead   = "lead"
	OpenAI = "openai"
	Gemini = "gemini"
)

// DefaultOpenAIModel is used for the openai provider when no model is set.
const DefaultOpenAIModel = "gpt-4o-mini"

// NewAnalyzer returns an Analyzer for cfg.Provider together with the
// normalised provider name. Model-backed providers need an API key and also
// serve as the sentiment classifier when cfg.Classify is set.
func NewAnalyzer(ctx context.Context, cfg config.AnalysisConfig) (*analysis.Analyzer, string, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = Lead
	}

	var (
		summarizer analysis.Summarizer
		classifier analysis.Classifier
	)
	switch name {
	case Lead:
		summarizer = &analysis.LeadSummarizer{MaxSentences: cfg.LeadSentences, MaxWords: cfg.LeadWords}
	case OpenAI:
		if cfg.APIKey == "" {
			return nil, "", fmt.Errorf("provider %s: api key is required", name)
		}
		model := cfg.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		client := llm.NewClient(&http.Client{Timeout: cfg.Timeout}, llm.Params{
			APIKey:  cfg.APIKey,
			Model:   model,
			BaseURL: cfg.BaseURL,
		})
		summarizer, classifier = client, client
	case Gemini:
		if cfg.APIKey == "" {
			return nil, "", fmt.Errorf("provider %s: api key is required", name)
		}
		client, err := gemini.NewClient(ctx, cfg.APIKey, cfg.BaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("provider %s: %w", name, err)
		}
		s := gemini.NewSummarizer(client, cfg.Model)
		summarizer, classifier = s, s
	default:
		return nil, "", fmt.Errorf("unknown summarizer provider %q", cfg.Provider)
	}

	opts := []analysis.Option{analysis.WithInputLimits(cfg.SummaryInputRunes, cfg.ClassifyInputRunes)}
	if cfg.Classify && classifier != nil {
		opts = append(opts, analysis.WithClassifier(classifier))
	}
	return analysis.NewAnalyzer(summarizer, opts...), name, nil
}
