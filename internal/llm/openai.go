package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openaiDefaultTextModel   = "gpt-4o-mini"
	openaiDefaultVisionModel = "gpt-4o"
	openaiDefaultImageModel  = openai.CreateImageModelDallE3
)

// OpenAIProvider backs the text, vision, and image-generation
// capabilities through the OpenAI API.
type OpenAIProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(apiKey string, httpClient *http.Client) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg)}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, req TextRequest) (*TextResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = openaiDefaultTextModel
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
		return nil, fmt.Errorf("openai chat: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &TextResponse{
		Provider:  "openai",
		Model:     resp.Model,
		Content:   content,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *OpenAIProvider) AnalyzeMedia(ctx context.Context, req VisionRequest) (*TextResponse, error) {
	if !strings.HasPrefix(req.MimeType, "image/") {
		return nil, fmt.Errorf("openai vision: unsupported media type %s", req.MimeType)
	}

	start := time.Now()

	model := req.Model
	if model == "" {
		model = openaiDefaultVisionModel
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", req.MimeType, base64.StdEncoding.EncodeToString(req.Data))

	oReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: req.Instruction},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
					},
				},
			},
		},
		MaxTokens: 1500,
	}
	if req.JSONOnly {
		oReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, oReq)
	if err != nil {
		return nil, fmt.Errorf("openai vision: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &TextResponse{
		Provider:  "openai",
		Model:     model,
		Content:   content,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *OpenAIProvider) GenerateImage(ctx context.Context, model, prompt string) (*ImageResult, error) {
	if model == "" {
		model = openaiDefaultImageModel
	}

	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Model:          model,
		Prompt:         prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, fmt.Errorf("openai image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai image generation: empty response")
	}

	return &ImageResult{
		Provider: "openai",
		Model:    model,
		URL:      resp.Data[0].URL,
	}, nil
}

func (p *OpenAIProvider) SubmitVideo(ctx context.Context, model, prompt string) (string, error) {
	return "", fmt.Errorf("openai: video generation not supported")
}

func (p *OpenAIProvider) PollVideo(ctx context.Context, ref string) (*VideoOperation, error) {
	return nil, fmt.Errorf("openai: video generation not supported")
}

// SignURL is a no-op: OpenAI image URLs are fetchable as returned.
func (p *OpenAIProvider) SignURL(uri string) string { return uri }
