package extract

import (
	"context"
	"log/slog"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/config"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/llm"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

// Orchestrator is the extraction decision core. It selects a path per
// request, applies the PDF-to-vision fallback, and normalizes every path's
// output into the canonical Recipe. Exactly one extraction attempt flows
// to a terminal Recipe or terminal failure; a failed provider is reported,
// never transparently retried against another.
type Orchestrator struct {
	pdf    pdfTextExtractor
	vision *VisionExtractor
	text   *TextExtractor
}

// pdfTextExtractor is the text-layer step: extracted text plus whether it
// passed the recipe-likeness policy.
type pdfTextExtractor interface {
	Extract(data []byte) (string, bool)
}

func NewOrchestrator(gw *llm.Gateway, cfg config.ExtractionConfig, providers config.ProvidersConfig) *Orchestrator {
	return &Orchestrator{
		pdf:    NewPDFExtractor(cfg),
		vision: NewVisionExtractor(gw, providers.VisionModel),
		text:   NewTextExtractor(gw, providers.TextModel),
	}
}

// Extract routes the normalized input:
//
//  1. image -> vision directly; the model-structured Recipe short-circuits
//     the rest of the pipeline.
//  2. PDF -> text layer first; insufficient text falls back to vision over
//     the same bytes.
//  3. text only -> structured-text extraction, no vision call.
//
// Supplementary free text accompanying a file is appended to file-derived
// text before the structuring call; on vision paths it rides along as
// prompt context since vision already emits a final Recipe.
func (o *Orchestrator) Extract(ctx context.Context, in *Input) (*recipe.Recipe, error) {
	switch in.Kind {
	case SourceImage:
		return o.finish(o.vision.Extract(ctx, in.FileData, in.FileMime, in.Text))

	case SourcePDF:
		text, usable := o.pdf.Extract(in.FileData)
		if !usable {
			slog.Info("pdf text layer insufficient, using vision fallback", "chars", len(text))
			return o.finish(o.vision.Extract(ctx, in.FileData, in.FileMime, in.Text))
		}
		assembled := text
		if in.Text != "" {
			assembled += "\n\n" + in.Text
		}
		return o.finish(o.text.Extract(ctx, assembled))

	case SourceText:
		return o.finish(o.text.Extract(ctx, in.Text))
	}

	return nil, recipe.NewFailure(recipe.EmptyInput, "no extraction source")
}

// finish enforces the canonical-shape invariant on every path's output.
// Extractors already validate, but the orchestrator owns the guarantee.
func (o *Orchestrator) finish(r *recipe.Recipe, err error) (*recipe.Recipe, error) {
	if err != nil {
		return nil, err
	}
	if missing := r.MissingFields(); len(missing) > 0 {
		return nil, recipe.NewFailure(recipe.IncompleteRecipe,
			"extraction produced a recipe with missing fields")
	}
	return r, nil
}
