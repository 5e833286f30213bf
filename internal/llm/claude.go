package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	claudeBaseURL    = "https://api.anthropic.com"
	claudeModel      = "claude-sonnet-4-20250514"
	anthropicVersion = "2023-06-01"
)

// Claude calls the Anthropic Messages API.
type Claude struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	HTTPClient *http.Client
}

// NewClaude returns a Claude generator with default model and endpoint.
func NewClaude(apiKey string) *Claude {
	return &Claude{
		APIKey:     apiKey,
		Model:      claudeModel,
		BaseURL:    claudeBaseURL,
		MaxTokens:  defaultMaxTokens,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContentBlock `json:"content"`
	Error   *claudeError         `json:"error,omitempty"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (c *Claude) GenerateSummary(ctx context.Context, industry, timePeriod string) (string, error) {
	body, err := json.Marshal(claudeRequest{
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		Messages: []claudeMessage{
			{Role: "user", Content: BuildPrompt(industry, timePeriod)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var cr claudeResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(respBody, &cr) == nil && cr.Error != nil {
			return "", &ProviderError{Provider: ProviderClaude, Status: resp.StatusCode, Message: cr.Error.Message}
		}
		return "", &ProviderError{Provider: ProviderClaude, Status: resp.StatusCode, Message: string(respBody)}
	}

	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if cr.Error != nil {
		return "", &ProviderError{Provider: ProviderClaude, Status: resp.StatusCode, Message: cr.Error.Message}
	}

	for _, block := range cr.Content {
		if block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w from %s", ErrEmptyResponse, ProviderClaude)
}
