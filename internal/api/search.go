package api

import (
	"net/http"

	"github.com/campuslend/campuslend/internal/ranking"
)

// SearchHandler handles ranked item search.
type SearchHandler struct {
	Engine *ranking.Engine
}

// Search handles GET /api/search?q=term. Results are scored by owner rating
// and item condition and returned highest score first.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	term := r.URL.Query().Get("q")
	if term == "" {
		jsonError(w, http.StatusBadRequest, "search term required")
		return
	}

	candidates, err := h.Engine.Search(r.Context(), claims.UserID, term)
	if err != nil {
		domainError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"items": candidates})
}
