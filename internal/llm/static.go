package llm

import (
	"context"
	"fmt"
)

// Static returns a fixed summary without calling any API. It is meant for
// local development and tests.
type Static struct{}

func (Static) GenerateSummary(ctx context.Context, industry, timePeriod string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf(`## %s: the last %s

This is a placeholder summary; no language model was called.

## Major News & Events
- **Placeholder**: configure a provider to get a real summary
- Set llm.provider to claude or gemini

## Industry Trends
Nothing to report yet.`, industry, timePeriod), nil
}
