// Package llm enriches heuristic scan reports with an advisory verdict from a
// remote model. The scan engine does not depend on this package; callers wire
// a Client in when they want enrichment.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vigilsec/promptwall/pkg/types"
)

// Client produces a verdict for the original input and its heuristic report.
type Client interface {
	Enrich(ctx context.Context, input string, report *types.ScanReport) (*types.LlmVerdict, error)
}

// EnrichmentError wraps a provider failure. The heuristic report remains
// usable when enrichment fails; callers decide whether to surface or drop.
type EnrichmentError struct {
	Provider string
	Err      error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrichment via %s failed: %v", e.Provider, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// systemPrompt instructs the model to answer with a strict JSON verdict.
const systemPrompt = `You are an application security assistant. Analyze prompt-injection scan results and respond with strict JSON: {"label": "safe|suspicious|malicious", "rationale": "...", "mitigation": "..."}. The mitigation should advise remediation steps.`

// maxInputChars bounds the excerpt of the scanned input forwarded to the
// provider.
const maxInputChars = 2000

// userPrompt summarizes the input and heuristic findings for the model.
func userPrompt(input string, report *types.ScanReport) string {
	findings, _ := json.Marshal(report.Findings)
	return fmt.Sprintf("Input excerpt:\n%s\n\nScore: %.1f (%s)\nTop findings: %s\n",
		truncate(input, maxInputChars), report.RiskScore, report.RiskBand, findings)
}

// parseVerdict decodes the model's strict-JSON answer. Models occasionally
// wrap JSON in a code fence; strip it before decoding.
func parseVerdict(content string) (*types.LlmVerdict, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	var verdict types.LlmVerdict
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return nil, fmt.Errorf("expected JSON verdict from model response: %w", err)
	}
	return &verdict, nil
}

func truncate(s string, maxChars int) string {
	count := 0
	for i := range s {
		if count == maxChars {
			return s[:i] + "…"
		}
		count++
	}
	return s
}

// NoopClient returns a fixed verdict without any network call. Used by the
// "noop" provider for offline runs and health checks.
type NoopClient struct{}

// Enrich implements Client.
func (NoopClient) Enrich(ctx context.Context, input string, report *types.ScanReport) (*types.LlmVerdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &types.LlmVerdict{
		Label:      "unavailable",
		Rationale:  "LLM provider not configured; returning heuristic-only verdict.",
		Mitigation: "Configure a provider to receive enriched guidance.",
	}, nil
}
