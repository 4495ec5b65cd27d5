package extract

import (
	"context"
	"errors"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/llm"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

var textSystemPrompt = `You are a recipe digitization assistant.
You must respond with ONLY a valid JSON object matching this schema:

` + recipe.PromptSchema() + `

title, description, ingredients, and instructions must always be filled from the source text.
If servings, prepTime, or cookTime are not stated, estimate a reasonable value based on the recipe type rather than leaving them blank.
Do not include any text outside the JSON object. No markdown, no explanation.`

// TextExtractor structures assembled recipe text through a text-only LLM.
// One round trip, no retry.
type TextExtractor struct {
	gateway *llm.Gateway
	model   string
}

func NewTextExtractor(gw *llm.Gateway, model string) *TextExtractor {
	return &TextExtractor{gateway: gw, model: model}
}

func (e *TextExtractor) Extract(ctx context.Context, text string) (*recipe.Recipe, error) {
	tp, err := e.gateway.Text()
	if err != nil {
		return nil, recipe.WrapFailure(recipe.CredentialNotReady, "text capability is not configured", err)
	}

	resp, err := tp.Complete(ctx, llm.TextRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: "system", Content: textSystemPrompt},
			{Role: "user", Content: "Extract a structured recipe from the following input.\n\nRecipe Text:\n" + text},
		},
		Temperature: 0,
		JSONOnly:    true,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return nil, recipe.WrapFailure(recipe.CredentialNotReady, "text capability is not configured", err)
		}
		return nil, recipe.WrapFailure(recipe.ProviderError, "text model call failed", err)
	}

	return recipe.ParseModelOutput(resp.Content)
}
