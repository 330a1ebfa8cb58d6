package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/vigilsec/promptwall/pkg/types"
)

// geminiClient speaks the Gemini generateContent API.
type geminiClient struct {
	http       *http.Client
	url        string
	apiKey     string
	maxRetries int
}

func newGeminiClient(s Settings) (*geminiClient, error) {
	base := s.Endpoint
	if base == "" {
		base = "https://generativelanguage.googleapis.com"
	}
	model := s.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &geminiClient{
		http:       &http.Client{Timeout: time.Duration(s.TimeoutSecs) * time.Second},
		url:        strings.TrimSuffix(base, "/") + "/v1beta/models/" + model + ":generateContent",
		apiKey:     s.APIKey,
		maxRetries: s.MaxRetries,
	}, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Enrich implements Client. Gemini has no separate system role in this API
// version, so the instructions are prepended to the user content.
func (c *geminiClient) Enrich(ctx context.Context, input string, report *types.ScanReport) (*types.LlmVerdict, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: systemPrompt + "\n\n" + userPrompt(input, report)}},
		}},
	}

	var reply geminiResponse
	err := postJSON(ctx, c.http, c.url, payload, &reply, c.maxRetries, func(req *http.Request) {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	})
	if err != nil {
		return nil, &EnrichmentError{Provider: "gemini", Err: err}
	}

	for _, cand := range reply.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				verdict, err := parseVerdict(part.Text)
				if err != nil {
					return nil, &EnrichmentError{Provider: "gemini", Err: err}
				}
				return verdict, nil
			}
		}
	}
	return nil, &EnrichmentError{Provider: "gemini", Err: errMissingContent}
}
