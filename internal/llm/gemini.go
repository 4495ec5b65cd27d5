package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	geminiDefaultTextModel   = "gemini-2.5-flash"
	geminiDefaultVisionModel = "gemini-2.5-flash"
	geminiDefaultImageModel  = "gemini-2.5-flash-image"
	geminiDefaultVideoModel  = "veo-3.1-fast-generate-preview"
)

// GeminiProvider backs all three capabilities through the genai SDK:
// Models.GenerateContent for text, vision, and image, and the
// GenerateVideos operation flow for Veo video jobs.
type GeminiProvider struct {
	apiKey string
	client *genai.Client
}

func NewGeminiProvider(apiKey string, httpClient *http.Client) (*GeminiProvider, error) {
	return newGeminiProvider(apiKey, httpClient, "")
}

// newGeminiProvider allows overriding the endpoint; tests point it at a
// local server.
func newGeminiProvider(apiKey string, httpClient *http.Client, baseURL string) (*GeminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if httpClient != nil {
		cc.HTTPClient = httpClient
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiProvider{apiKey: apiKey, client: client}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Complete(ctx context.Context, req TextRequest) (*TextResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = geminiDefaultTextModel
	}

	cfg := &genai.GenerateContentConfig{}
	var userParts []*genai.Part
	for _, m := range req.Messages {
		if m.Role == "system" {
			cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: m.Content}}}
			continue
		}
		userParts = append(userParts, &genai.Part{Text: m.Content})
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.JSONOnly {
		cfg.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{{Role: "user", Parts: userParts}}
	res, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini chat: %w", err)
	}

	return &TextResponse{
		Provider:  "gemini",
		Model:     model,
		Content:   candidateText(res),
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *GeminiProvider) AnalyzeMedia(ctx context.Context, req VisionRequest) (*TextResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = geminiDefaultVisionModel
	}

	cfg := &genai.GenerateContentConfig{}
	if req.JSONOnly {
		cfg.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{
		{Text: req.Instruction},
		{InlineData: &genai.Blob{MIMEType: req.MimeType, Data: req.Data}},
	}}}
	res, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini vision: %w", err)
	}

	return &TextResponse{
		Provider:  "gemini",
		Model:     model,
		Content:   candidateText(res),
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *GeminiProvider) GenerateImage(ctx context.Context, model, prompt string) (*ImageResult, error) {
	if model == "" {
		model = geminiDefaultImageModel
	}

	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}
	res, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini image generation: %w", err)
	}

	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return &ImageResult{
				Provider: "gemini",
				Model:    model,
				URL:      fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(part.InlineData.Data)),
			}, nil
		}
	}

	return nil, fmt.Errorf("gemini image generation: no image in response")
}

// SubmitVideo starts a Veo generation job and returns the operation name.
func (p *GeminiProvider) SubmitVideo(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		model = geminiDefaultVideoModel
	}

	op, err := p.client.Models.GenerateVideos(ctx, model, prompt, nil, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    "16:9",
	})
	if err != nil {
		return "", fmt.Errorf("gemini video submit: %w", err)
	}
	if op.Name == "" {
		return "", fmt.Errorf("gemini video submit: no operation name in response")
	}
	return op.Name, nil
}

// PollVideo reads the operation state once. The returned URI is the bare
// download link; SignURL must be applied when the link is actually used.
func (p *GeminiProvider) PollVideo(ctx context.Context, ref string) (*VideoOperation, error) {
	op, err := p.client.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: ref}, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini video poll: %w", err)
	}
	return toVideoOperation(ref, op)
}

func toVideoOperation(ref string, op *genai.GenerateVideosOperation) (*VideoOperation, error) {
	out := &VideoOperation{Ref: ref, Done: op.Done}
	if !op.Done {
		return out, nil
	}

	if len(op.Error) > 0 {
		return nil, fmt.Errorf("gemini video poll: operation failed: %v", op.Error)
	}

	if op.Response != nil && len(op.Response.GeneratedVideos) > 0 && op.Response.GeneratedVideos[0].Video != nil {
		out.URI = op.Response.GeneratedVideos[0].Video.URI
	}
	if out.URI == "" {
		return nil, fmt.Errorf("gemini video poll: operation done but no video URI returned")
	}
	return out, nil
}

// SignURL appends the API key so the download link becomes fetchable.
func (p *GeminiProvider) SignURL(uri string) string {
	if uri == "" {
		return uri
	}
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + "key=" + p.apiKey
}

func candidateText(res *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}
	return sb.String()
}
