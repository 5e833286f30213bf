package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com"
	geminiModel   = "gemini-2.0-flash"
)

// Gemini calls the Google generateContent API.
type Gemini struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	HTTPClient *http.Client
}

// NewGemini returns a Gemini generator with default model and endpoint.
func NewGemini(apiKey string) *Gemini {
	return &Gemini{
		APIKey:     apiKey,
		Model:      geminiModel,
		BaseURL:    geminiBaseURL,
		MaxTokens:  defaultMaxTokens,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (g *Gemini) GenerateSummary(ctx context.Context, industry, timePeriod string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: BuildPrompt(industry, timePeriod)}}},
		},
		GenerationConfig: &geminiGenerationConfig{MaxOutputTokens: g.MaxTokens},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	// The API key travels as a query parameter.
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.BaseURL, url.PathEscape(g.Model), url.QueryEscape(g.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		// Drop the URL from the error so the key is not logged.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var gr geminiResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(respBody, &gr) == nil && gr.Error != nil {
			return "", &ProviderError{Provider: ProviderGemini, Status: resp.StatusCode, Message: gr.Error.Message}
		}
		return "", &ProviderError{Provider: ProviderGemini, Status: resp.StatusCode, Message: string(respBody)}
	}

	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if gr.Error != nil {
		return "", &ProviderError{Provider: ProviderGemini, Status: resp.StatusCode, Message: gr.Error.Message}
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w from %s", ErrEmptyResponse, ProviderGemini)
	}

	return gr.Candidates[0].Content.Parts[0].Text, nil
}
