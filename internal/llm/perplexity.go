package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	perplexityBaseURL      = "https://api.perplexity.ai"
	perplexityDefaultModel = "llama-3.1-sonar-large-128k-online"
)

// PerplexityProvider backs the text capability through Perplexity's
// OpenAI-compatible chat API.
type PerplexityProvider struct {
	client *openai.Client
}

func NewPerplexityProvider(apiKey string, httpClient *http.Client) *PerplexityProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = perplexityBaseURL
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &PerplexityProvider{client: openai.NewClientWithConfig(cfg)}
}

func (p *PerplexityProvider) Name() string { return "perplexity" }

func (p *PerplexityProvider) Complete(ctx context.Context, req TextRequest) (*TextResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = perplexityDefaultModel
	}

	msgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	oReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: msgs,
	}
	if req.Temperature > 0 {
		oReq.Temperature = float32(req.Temperature)
	}
	if req.MaxTokens > 0 {
		oReq.MaxTokens = req.MaxTokens
	}
	if req.JSONOnly {
		oReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, oReq)
	if err != nil {
		return nil, fmt.Errorf("perplexity chat: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &TextResponse{
		Provider:  "perplexity",
		Model:     model,
		Content:   content,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}
