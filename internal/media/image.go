package media

import (
	"context"
	"errors"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/llm"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

// ImageResult is the outcome of a synchronous image generation.
type ImageResult struct {
	URL    string `json:"image_url"`
	Prompt string `json:"prompt"`
}

// ImageGenerator runs the two-phase image pipeline: craft a stylistic
// prompt, then one synchronous generation call.
type ImageGenerator struct {
	gateway *llm.Gateway
	crafter *Crafter
	model   string
}

// NewImageGenerator wires the generator; model is the configured image
// model, empty for the provider default.
func NewImageGenerator(gw *llm.Gateway, crafter *Crafter, model string) *ImageGenerator {
	return &ImageGenerator{gateway: gw, crafter: crafter, model: model}
}

func (g *ImageGenerator) Generate(ctx context.Context, r *recipe.Recipe) (*ImageResult, error) {
	mp, err := g.gateway.Media()
	if err != nil {
		return nil, recipe.WrapFailure(recipe.CredentialNotReady, "media capability is not configured", err)
	}

	prompt := g.crafter.Craft(ctx, r, TargetImage)

	result, err := mp.GenerateImage(ctx, g.model, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return nil, recipe.WrapFailure(recipe.CredentialNotReady, "media capability is not configured", err)
		}
		return nil, recipe.WrapFailure(recipe.ProviderError, "image generation failed", err)
	}

	return &ImageResult{URL: result.URL, Prompt: prompt}, nil
}
