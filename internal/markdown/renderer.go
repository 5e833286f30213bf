package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Engine names accepted by NewRenderer.
const (
	EngineFragment   = "fragment"
	EngineCommonMark = "commonmark"
)

// Renderer converts markdown text to an HTML fragment.
type Renderer interface {
	Render(text string) string
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(string) string

func (f RendererFunc) Render(text string) string { return f(text) }

// CommonMark renders full CommonMark plus GFM tables and strikethrough via
// goldmark. Raw HTML in the source is omitted.
type CommonMark struct {
	md goldmark.Markdown
}

// NewCommonMark returns a goldmark-backed renderer.
func NewCommonMark() *CommonMark {
	return &CommonMark{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Render converts text, falling back to escaped text if goldmark fails.
func (c *CommonMark) Render(text string) string {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(text), &buf); err != nil {
		return template.HTMLEscapeString(text)
	}
	return buf.String()
}

// Sanitized filters the output of another renderer through a bluemonday
// policy.
type Sanitized struct {
	Next   Renderer
	Policy *bluemonday.Policy
}

// NewSanitized wraps next with bluemonday's user-generated-content policy.
func NewSanitized(next Renderer) *Sanitized {
	return &Sanitized{Next: next, Policy: bluemonday.UGCPolicy()}
}

func (s *Sanitized) Render(text string) string {
	return s.Policy.Sanitize(s.Next.Render(text))
}

// NewRenderer builds the renderer for engine. An empty engine selects
// Fragment. Output is only sanitized when sanitize is set.
func NewRenderer(engine string, sanitize bool) (Renderer, error) {
	var r Renderer
	switch engine {
	case "", EngineFragment:
		r = Fragment
	case EngineCommonMark:
		r = NewCommonMark()
	default:
		return nil, fmt.Errorf("unknown render engine %q (must be %s or %s)", engine, EngineFragment, EngineCommonMark)
	}
	if sanitize {
		r = NewSanitized(r)
	}
	return r, nil
}
