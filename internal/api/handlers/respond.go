package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// failureBody is the wire shape of a classified failure. RawOutput is
// included when present so a human can see what the model actually said.
type failureBody struct {
	Kind      recipe.FailureKind `json:"kind"`
	Message   string             `json:"message"`
	RawOutput string             `json:"raw_output,omitempty"`
}

func writeFailure(w http.ResponseWriter, err error) {
	f := recipe.AsFailure(err)
	writeJSON(w, failureStatus(f.Kind), map[string]failureBody{
		"error": {Kind: f.Kind, Message: f.Message, RawOutput: f.RawOutput},
	})
}

func failureStatus(kind recipe.FailureKind) int {
	switch kind {
	case recipe.EmptyInput, recipe.UnsupportedMediaType:
		return http.StatusBadRequest
	case recipe.CredentialNotReady:
		return http.StatusPreconditionFailed
	case recipe.MalformedModelOutput, recipe.IncompleteRecipe:
		return http.StatusUnprocessableEntity
	case recipe.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
