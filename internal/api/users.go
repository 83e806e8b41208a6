package api

import (
	"database/sql"
	"net/http"

	"github.com/campuslend/campuslend/internal/model"
	"github.com/campuslend/campuslend/internal/store"
)

// UsersHandler handles profile endpoints.
type UsersHandler struct {
	DB *sql.DB
}

type updateProfileRequest struct {
	School  string `json:"school"`
	Program string `json:"program"`
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	jsonResponse(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/users/me.
// School and program changes only affect future listings; existing items keep
// the snapshot taken at creation time.
func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.UpdateUserProfile(r.Context(), h.DB, claims.UserID, req.School, req.Program); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	user, _ := store.GetUser(r.Context(), h.DB, claims.UserID)
	jsonResponse(w, http.StatusOK, user)
}

// Items handles GET /api/users/{id}/items, listing a user's listings.
func (h *UsersHandler) Items(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		jsonError(w, http.StatusBadRequest, "user id required")
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, store.ItemFilter{OwnerID: userID})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}
