package llm

import (
	"context"
	"errors"
)

// Capability names one of the model features a provider may back.
type Capability string

const (
	CapabilityText   Capability = "text"
	CapabilityVision Capability = "vision"
	CapabilityMedia  Capability = "media"
)

// ErrNotConfigured is returned when no provider credential is configured
// for a requested capability. Callers surface it as a "not ready" state,
// never as a failed provider call.
var ErrNotConfigured = errors.New("no provider configured for capability")

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// TextRequest is the input for a text completion.
type TextRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	// JSONOnly asks the provider to constrain output to a JSON object,
	// where the underlying API supports that.
	JSONOnly bool `json:"json_only,omitempty"`
}

// TextResponse is the output of a text or vision completion.
type TextResponse struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Content   string `json:"content"`
	LatencyMs int64  `json:"latency_ms"`
}

// VisionRequest carries binary media plus an instruction for a
// multimodal model.
type VisionRequest struct {
	Model       string `json:"model,omitempty"`
	Instruction string `json:"instruction"`
	Data        []byte `json:"-"`
	MimeType    string `json:"mime_type"`
	JSONOnly    bool   `json:"json_only,omitempty"`
}

// ImageResult is a generated image reference: a fetchable URL or data URI.
type ImageResult struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	URL      string `json:"url"`
}

// VideoOperation is the state of a long-running video generation job.
// URI is only set once Done is true, and never carries a credential.
type VideoOperation struct {
	Ref  string `json:"ref"`
	Done bool   `json:"done"`
	URI  string `json:"uri,omitempty"`
}

// TextProvider performs one text-model round trip per call. No retries.
type TextProvider interface {
	Name() string
	Complete(ctx context.Context, req TextRequest) (*TextResponse, error)
}

// VisionProvider performs one multimodal round trip per call. No retries.
type VisionProvider interface {
	Name() string
	AnalyzeMedia(ctx context.Context, req VisionRequest) (*TextResponse, error)
}

// MediaProvider generates illustrative media. Image generation is a single
// synchronous call; video generation is submit-then-poll. An empty model
// selects the provider's default. SignURL attaches the provider access
// credential to a download reference at the last moment, so credentials
// never sit inside stored job records.
type MediaProvider interface {
	Name() string
	GenerateImage(ctx context.Context, model, prompt string) (*ImageResult, error)
	SubmitVideo(ctx context.Context, model, prompt string) (string, error)
	PollVideo(ctx context.Context, ref string) (*VideoOperation, error)
	SignURL(uri string) string
}
