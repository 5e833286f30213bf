// Package llm generates catch-up summaries with a hosted language model.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Generator writes a markdown summary for an industry and time period.
// Both arguments are display labels ("Software Development", "5+ years").
type Generator interface {
	GenerateSummary(ctx context.Context, industry, timePeriod string) (string, error)
}

// Provider names accepted by New.
const (
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderStatic = "static"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 2048
)

// Config selects and configures a provider.
type Config struct {
	Provider  string
	APIKey    string
	Model     string // empty selects the provider default
	BaseURL   string // empty selects the public endpoint
	MaxTokens int
	Timeout   time.Duration
}

// New builds the generator named by cfg.Provider.
func New(cfg Config) (Generator, error) {
	if cfg.Provider == ProviderStatic {
		return Static{}, nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("an API key is required for the %s provider", cfg.Provider)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	httpClient := &http.Client{Timeout: timeout}

	switch cfg.Provider {
	case "", ProviderClaude:
		c := NewClaude(cfg.APIKey)
		c.HTTPClient = httpClient
		c.MaxTokens = maxTokens
		if cfg.Model != "" {
			c.Model = cfg.Model
		}
		if cfg.BaseURL != "" {
			c.BaseURL = cfg.BaseURL
		}
		return c, nil
	case ProviderGemini:
		g := NewGemini(cfg.APIKey)
		g.HTTPClient = httpClient
		g.MaxTokens = maxTokens
		if cfg.Model != "" {
			g.Model = cfg.Model
		}
		if cfg.BaseURL != "" {
			g.BaseURL = cfg.BaseURL
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// BuildPrompt returns the instruction sent to every provider.
func BuildPrompt(industry, timePeriod string) string {
	return fmt.Sprintf(`You help people catch up on what they missed in their industry while they were away.

A professional in the %s industry has been away for %s and wants to know which major developments, trends, news and changes they missed.

Write a comprehensive but digestible summary covering:
1. **Major News & Events** - key headlines, mergers, acquisitions, notable company news
2. **Technology & Tool Changes** - new tools, platforms or technologies that gained adoption
3. **Industry Trends** - shifting paradigms, emerging practices, changing priorities
4. **Regulatory & Policy Updates** - new laws, regulations or compliance requirements, if any
5. **Key People & Moves** - notable leadership changes and influential new voices

Use markdown: "##" section headings, "-" bullet points and **bold** for emphasis. Do not use tables, links, images or code blocks.

Hit the highlights that would actually affect someone returning to work in this field, without overwhelming them.`, industry, timePeriod)
}
