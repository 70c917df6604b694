package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/webstruct/analysis"
	"github.com/use-agent/webstruct/gemini"
	"github.com/use-agent/webstruct/models"
)

func geminiServer(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(status)
		if status != http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": status, "message": "failed"},
			})
			return
		}
		parts := []map[string]any{}
		finish := "STOP"
		if text != "" {
			parts = append(parts, map[string]any{"text": text})
		} else {
			finish = "MAX_TOKENS"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": parts,
				},
				"finishReason": finish,
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newSummarizer(t *testing.T, srv *httptest.Server) *gemini.Summarizer {
	t.Helper()

	client, err := gemini.NewClient(context.Background(), "test-key", srv.URL)
	require.NoError(t, err)
	return gemini.NewSummarizer(client, "")
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	cfg := gemini.BuildConfig(analysis.SummaryPrompt, 256)

	require.NotNil(t, cfg.SystemInstruction)
	require.Len(t, cfg.SystemInstruction.Parts, 1)
	assert.Equal(t, analysis.SummaryPrompt, cfg.SystemInstruction.Parts[0].Text)
	require.NotNil(t, cfg.Temperature)
	assert.Zero(t, *cfg.Temperature)
	assert.Equal(t, int32(256), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.ThinkingConfig)
	require.NotNil(t, cfg.ThinkingConfig.ThinkingBudget)
	assert.Zero(t, *cfg.ThinkingConfig.ThinkingBudget)
}

func TestSummarizer_Summarize(t *testing.T) {
	t.Parallel()

	srv := geminiServer(t, http.StatusOK, " A concise summary. ")

	summary, err := newSummarizer(t, srv).Summarize(context.Background(), "long page text")

	require.NoError(t, err)
	assert.Equal(t, "A concise summary.", summary)
}

func TestSummarizer_Classify(t *testing.T) {
	t.Parallel()

	srv := geminiServer(t, http.StatusOK, "Positive")

	label, err := newSummarizer(t, srv).Classify(context.Background(), "great news")

	require.NoError(t, err)
	assert.Equal(t, analysis.SentimentPositive, label)
}

func TestSummarizer_Error(t *testing.T) {
	t.Parallel()

	srv := geminiServer(t, http.StatusBadRequest, "")

	_, err := newSummarizer(t, srv).Summarize(context.Background(), "text")

	require.Error(t, err)
	assert.Equal(t, models.ErrCodeLLMFailure, models.ErrorCode(err))
}

func TestSummarizer_EmptyCandidate(t *testing.T) {
	t.Parallel()

	srv := geminiServer(t, http.StatusOK, "")
	s := newSummarizer(t, srv)

	t.Run("summarize", func(t *testing.T) {
		t.Parallel()

		summary, err := s.Summarize(context.Background(), "long page text")

		require.Error(t, err)
		assert.Empty(t, summary)
		assert.Equal(t, models.ErrCodeLLMFailure, models.ErrorCode(err))
	})

	t.Run("classify", func(t *testing.T) {
		t.Parallel()

		label, err := s.Classify(context.Background(), "great news")

		require.Error(t, err)
		assert.Empty(t, label)
		assert.Equal(t, models.ErrCodeLLMFailure, models.ErrorCode(err))
	})

	t.Run("analyze records summary error", func(t *testing.T) {
		t.Parallel()

		a := analysis.NewAnalyzer(s, analysis.WithClassifier(s))
		doc := &models.StructuredDocument{SourceURL: "https://example.com", CleanedText: "Some page text."}

		out, err := a.Analyze(context.Background(), doc)

		require.NoError(t, err)
		assert.Empty(t, out.Summary)
		assert.NotEmpty(t, out.SummaryError)
		assert.Equal(t, analysis.SentimentNeutral, out.SentimentLabel)
	})
}
