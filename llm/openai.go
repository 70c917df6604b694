package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/use-agent/webstruct/analysis"
	"github.com/use-agent/webstruct/models"
)

// DefaultBaseURL is used when Params.BaseURL is empty.
const DefaultBaseURL = "https://api.openai.com/v1"

// Client is a lightweight OpenAI-compatible chat client used as a summarizer
// and sentiment classifier. It uses net/http directly.
type Client struct {
	httpClient *http.Client
	params     Params
}

// Params holds the provider configuration.
type Params struct {
	APIKey  string
	Model   string
	BaseURL string // e.g. "https://api.openai.com/v1"
}

var (
	_ analysis.Summarizer = (*Client)(nil)
	_ analysis.Classifier = (*Client)(nil)
)

// NewClient creates a new LLM client. Pass a nil httpClient to use a default one.
func NewClient(httpClient *http.Client, params Params) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if params.BaseURL == "" {
		params.BaseURL = DefaultBaseURL
	}
	return &Client{httpClient: httpClient, params: params}
}

// chatRequest is the OpenAI chat completion request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the minimal OpenAI chat completion response we need.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatErrorResponse captures an API error from the LLM provider.
type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Summarize asks the model for a short summary of text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, analysis.SummaryPrompt, text, 200)
}

// Classify asks the model for a sentiment label and normalises the reply.
func (c *Client) Classify(ctx context.Context, text string) (string, error) {
	reply, err := c.complete(ctx, analysis.SentimentPrompt, text, 5)
	if err != nil {
		return "", err
	}
	return analysis.ParseSentiment(reply), nil
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model: c.params.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
		MaxTokens:   maxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.params.BaseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.params.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeLLMFailure, "LLM request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeLLMFailure, "failed to read LLM response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyLLMError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", models.NewScrapeError(models.ErrCodeLLMFailure, "failed to parse LLM response", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", models.NewScrapeError(models.ErrCodeLLMFailure, "LLM returned no choices", nil)
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// classifyLLMError maps HTTP status codes to appropriate error codes.
func classifyLLMError(statusCode int, body []byte) *models.ScrapeError {
	var errResp chatErrorResponse
	msg := "LLM API error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return models.NewScrapeError(models.ErrCodeLLMAuthFailure, msg, nil)
	case statusCode == http.StatusTooManyRequests:
		return models.NewScrapeError(models.ErrCodeLLMRateLimited, msg, nil)
	default:
		return models.NewScrapeError(models.ErrCodeLLMFailure, fmt.Sprintf("LLM API returned %d: %s", statusCode, msg), nil)
	}
}
