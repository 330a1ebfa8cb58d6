package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/vigilsec/promptwall/pkg/types"
)

// anthropicClient speaks the Anthropic messages API.
type anthropicClient struct {
	http       *http.Client
	url        string
	apiKey     string
	model      string
	maxRetries int
}

func newAnthropicClient(s Settings) (*anthropicClient, error) {
	base := s.Endpoint
	if base == "" {
		base = "https://api.anthropic.com"
	}
	model := s.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	return &anthropicClient{
		http:       &http.Client{Timeout: time.Duration(s.TimeoutSecs) * time.Second},
		url:        strings.TrimSuffix(base, "/") + "/v1/messages",
		apiKey:     s.APIKey,
		model:      model,
		maxRetries: s.MaxRetries,
	}, nil
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Enrich implements Client.
func (c *anthropicClient) Enrich(ctx context.Context, input string, report *types.ScanReport) (*types.LlmVerdict, error) {
	payload := anthropicRequest{
		Model:     c.model,
		System:    systemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: userPrompt(input, report)}},
		MaxTokens: 200,
	}

	var reply anthropicResponse
	err := postJSON(ctx, c.http, c.url, payload, &reply, c.maxRetries, func(req *http.Request) {
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	})
	if err != nil {
		return nil, &EnrichmentError{Provider: "anthropic", Err: err}
	}

	for _, part := range reply.Content {
		if part.Text != "" {
			verdict, err := parseVerdict(part.Text)
			if err != nil {
				return nil, &EnrichmentError{Provider: "anthropic", Err: err}
			}
			return verdict, nil
		}
	}
	return nil, &EnrichmentError{Provider: "anthropic", Err: errMissingContent}
}
