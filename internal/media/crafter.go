package media

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/llm"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

// Target selects the kind of media a crafted prompt is written for.
type Target string

const (
	TargetImage Target = "image"
	TargetVideo Target = "video"
)

const crafterSystemInstruction = `You are an expert food stylist and professional commercial photographer/videographer.
Your goal is to write a single-paragraph prompt for an AI %s generation model.

Consider the dish's origin, texture, and colors.
- For rustic dishes: use warm, natural, side-lit, slightly moody settings.
- For modern/fine dining: use clean, minimalist, bright, high-key photography.
- For vibrant/spicy/tropical: use high-contrast, colorful, saturated palettes.

Focus on sensory details: textures (crunchy, silky, steaming), colors, and composition (macro, overhead, 45-degree).
Do not use buzzwords like "photorealistic", instead describe the lighting and camera lens.
Keep it under 75 words.`

// Crafter derives a stylistic generation prompt from a Recipe. It never
// fails: any crafting error substitutes the deterministic fallback so
// media generation proceeds regardless.
type Crafter struct {
	gateway *llm.Gateway
	model   string
}

func NewCrafter(gw *llm.Gateway, model string) *Crafter {
	return &Crafter{gateway: gw, model: model}
}

// FallbackPrompt is the prompt used when crafting fails or returns empty.
func FallbackPrompt(target Target, title string) string {
	return fmt.Sprintf("Professional %s of %s", target, title)
}

func (c *Crafter) Craft(ctx context.Context, r *recipe.Recipe, target Target) string {
	tp, err := c.gateway.Text()
	if err != nil {
		slog.Warn("prompt crafting unavailable, using fallback", "error", err)
		return FallbackPrompt(target, r.Title)
	}

	medium := "photography"
	if target == TargetVideo {
		medium = "cinematic video"
	}

	ingredients := r.Ingredients
	if len(ingredients) > 5 {
		ingredients = ingredients[:5]
	}

	userPrompt := fmt.Sprintf(`Recipe: %s.
Description: %s.
Ingredients: %s.

Create a professional %s prompt for this dish.`,
		r.Title, r.Description, strings.Join(ingredients, ", "), medium)

	resp, err := tp.Complete(ctx, llm.TextRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: "system", Content: fmt.Sprintf(crafterSystemInstruction, target)},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.8,
	})
	if err != nil {
		slog.Warn("prompt crafting failed, using fallback", "target", target, "error", err)
		return FallbackPrompt(target, r.Title)
	}

	prompt := strings.TrimSpace(resp.Content)
	if prompt == "" {
		return FallbackPrompt(target, r.Title)
	}
	return prompt
}
