package extract

import (
	"context"
	"errors"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/llm"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

var visionInstruction = `Extract a structured recipe from the provided document or photo.
Transcribe the recipe's title, description, ingredients, instructions, servings, prep time, and cook time.
If specific times or servings are not stated, make a reasonable estimate based on the recipe type.
Respond with ONLY a valid JSON object matching this schema:

` + visionSchemaSuffix

var visionSchemaSuffix = recipe.PromptSchema() + `

Do not include any text outside the JSON object. No markdown, no explanation.`

// VisionExtractor sends image or PDF bytes to a multimodal model and
// parses the reply into a Recipe. Exactly one round trip per call; a reply
// that is not valid JSON or misses required fields is a classified
// failure, never coerced into a partially-empty Recipe.
type VisionExtractor struct {
	gateway *llm.Gateway
	model   string
}

func NewVisionExtractor(gw *llm.Gateway, model string) *VisionExtractor {
	return &VisionExtractor{gateway: gw, model: model}
}

// Extract runs the vision round trip. Supplementary user text, when
// present, rides along as context in the instruction.
func (e *VisionExtractor) Extract(ctx context.Context, data []byte, mimeType, userText string) (*recipe.Recipe, error) {
	vp, err := e.gateway.Vision()
	if err != nil {
		return nil, recipe.WrapFailure(recipe.CredentialNotReady, "vision capability is not configured", err)
	}

	instruction := visionInstruction
	if userText != "" {
		instruction += "\n\nAdditional context supplied by the user:\n" + userText
	}

	resp, err := vp.AnalyzeMedia(ctx, llm.VisionRequest{
		Model:       e.model,
		Instruction: instruction,
		Data:        data,
		MimeType:    mimeType,
		JSONOnly:    true,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return nil, recipe.WrapFailure(recipe.CredentialNotReady, "vision capability is not configured", err)
		}
		return nil, recipe.WrapFailure(recipe.ProviderError, "vision model call failed", err)
	}

	return recipe.ParseModelOutput(resp.Content)
}
