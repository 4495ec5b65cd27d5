package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/extract"
)

type RecipeHandler struct {
	orchestrator *extract.Orchestrator
}

func NewRecipeHandler(orch *extract.Orchestrator) *RecipeHandler {
	return &RecipeHandler{orchestrator: orch}
}

// Extract accepts a multipart form with optional `text` and at most one
// `file` (PDF or image) and returns the structured recipe. Input
// validation happens before any provider call.
func (h *RecipeHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB max
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	text := r.FormValue("text")

	var fileData []byte
	var fileMime string
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		fileData, err = io.ReadAll(file)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read uploaded file"})
			return
		}
		fileMime = header.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile):
		// text-only submission
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid file upload"})
		return
	}

	in, err := extract.Normalize(text, fileData, fileMime)
	if err != nil {
		writeFailure(w, err)
		return
	}

	rec, err := h.orchestrator.Extract(r.Context(), in)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
