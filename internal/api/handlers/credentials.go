package handlers

import (
	"net/http"
	"time"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/auth"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/llm"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

// CredentialHandler implements the pre-flight "select/verify key" step that
// gates all extraction and generation work.
type CredentialHandler struct {
	gateway  *llm.Gateway
	sessions *auth.Sessions
}

func NewCredentialHandler(gw *llm.Gateway, sessions *auth.Sessions) *CredentialHandler {
	return &CredentialHandler{gateway: gw, sessions: sessions}
}

// Status reports which capabilities have a configured provider.
func (h *CredentialHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"capabilities": h.gateway.Status(),
	})
}

type verifyResponse struct {
	Token        string                 `json:"token"`
	ExpiresAt    time.Time              `json:"expires_at"`
	Capabilities []llm.CapabilityStatus `json:"capabilities"`
}

// Verify checks the server-held credentials and mints a session token.
// With no capability ready there is nothing to unlock and the caller gets
// the distinct not-ready state.
func (h *CredentialHandler) Verify(w http.ResponseWriter, r *http.Request) {
	statuses := h.gateway.Verify(r.Context())

	var ready []string
	for _, s := range statuses {
		if s.Ready {
			ready = append(ready, string(s.Capability))
		}
	}
	if len(ready) == 0 {
		writeFailure(w, recipe.NewFailure(recipe.CredentialNotReady, "no provider credentials are configured"))
		return
	}

	token, expires, err := h.sessions.Issue(ready)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not issue session token"})
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{
		Token:        token,
		ExpiresAt:    expires,
		Capabilities: statuses,
	})
}
