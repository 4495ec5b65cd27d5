package extract

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/config"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/pkg/textextract"
)

// recipeMarkers are cheap signals that text-layer output actually holds a
// recipe rather than headers and page furniture.
var recipeMarkers = []string{
	"ingredient", "instruction", "direction", "step",
	"cup", "tbsp", "tsp", "tablespoon", "teaspoon",
	"oven", "preheat", "simmer", "bake", "serve",
}

// PDFExtractor attempts direct text-layer extraction and applies the
// recipe-likeness policy. Direct extraction is cheap and exact for
// text-based PDFs but silently yields nothing on scanned documents, so an
// unusable result routes the caller to the vision fallback instead of
// surfacing an empty recipe.
type PDFExtractor struct {
	minText         int
	requireKeywords bool
}

func NewPDFExtractor(cfg config.ExtractionConfig) *PDFExtractor {
	minText := cfg.MinPDFText
	if minText <= 0 {
		minText = 150
	}
	return &PDFExtractor{
		minText:         minText,
		requireKeywords: cfg.RequireKeywords,
	}
}

// Extract returns the text layer and whether it is usable without the
// vision fallback. Unreadable PDFs count as unusable, same as scanned
// ones; the bytes still have a chance through the vision path.
func (e *PDFExtractor) Extract(data []byte) (string, bool) {
	result, err := textextract.ExtractPDF(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Debug("pdf text extraction failed, deferring to vision", "error", err)
		return "", false
	}

	text := strings.TrimSpace(result.Content)
	return text, e.usable(text)
}

func (e *PDFExtractor) usable(text string) bool {
	if len(text) <= e.minText {
		return false
	}
	if !e.requireKeywords {
		return true
	}
	lower := strings.ToLower(text)
	for _, marker := range recipeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
