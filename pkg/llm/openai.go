package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/vigilsec/promptwall/pkg/types"
)

// openAIClient speaks the OpenAI chat-completions protocol. It also serves
// the azure provider through go-openai's native Azure configuration.
type openAIClient struct {
	provider   string
	client     *openai.Client
	model      string
	maxRetries int
}

func newOpenAIClient(s Settings) (*openAIClient, error) {
	provider := strings.ToLower(s.Provider)

	var cfg openai.ClientConfig
	if provider == "azure" {
		cfg = openai.DefaultAzureConfig(s.APIKey, s.Endpoint)
		if s.APIVersion != "" {
			cfg.APIVersion = s.APIVersion
		}
	} else {
		cfg = openai.DefaultConfig(s.APIKey)
		if s.Endpoint != "" {
			cfg.BaseURL = strings.TrimSuffix(s.Endpoint, "/") + "/v1"
		}
	}
	cfg.HTTPClient = &http.Client{Timeout: time.Duration(s.TimeoutSecs) * time.Second}

	model := s.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &openAIClient{
		provider:   provider,
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		maxRetries: s.MaxRetries,
	}, nil
}

// Enrich implements Client.
func (c *openAIClient) Enrich(ctx context.Context, input string, report *types.ScanReport) (*types.LlmVerdict, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(input, report)},
		},
		Temperature: 0.1,
		MaxTokens:   200,
	}

	var resp openai.ChatCompletionResponse
	var err error
	backoff := 200 * time.Millisecond
	for attempt := 0; ; attempt++ {
		resp, err = c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		if attempt >= c.maxRetries {
			return nil, &EnrichmentError{Provider: c.provider, Err: err}
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff = minDuration(backoff*2, 5*time.Second)
	}

	for _, choice := range resp.Choices {
		if choice.Message.Content != "" {
			verdict, err := parseVerdict(choice.Message.Content)
			if err != nil {
				return nil, &EnrichmentError{Provider: c.provider, Err: err}
			}
			return verdict, nil
		}
	}
	return nil, &EnrichmentError{Provider: c.provider, Err: errMissingContent}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
