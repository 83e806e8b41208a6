package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/campuslend/campuslend/internal/lending"
	"github.com/campuslend/campuslend/internal/store"
)

// RequestsHandler handles borrow requests, borrower activity and ratings.
type RequestsHandler struct {
	DB      *sql.DB
	Lending *lending.Service
}

type rateRequest struct {
	Rating int `json:"rating"`
}

// Request handles POST /api/items/{id}/request. The requester is the
// authenticated user; exactly one of several concurrent requesters wins.
func (h *RequestsHandler) Request(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	item, err := h.Lending.Request(r.Context(), r.PathValue("id"), claims.UserID)
	if err != nil {
		domainError(w, err)
		return
	}

	slog.Info("item requested", "item", item.ID, "requester", claims.Username)
	jsonResponse(w, http.StatusOK, item)
}

// Activity handles GET /api/activity: what the caller is borrowing, what they
// still need to rate, and their loan history.
func (h *RequestsHandler) Activity(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	activity, err := h.Lending.ClassifyForBorrower(r.Context(), claims.UserID, time.Now())
	if err != nil {
		domainError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, activity)
}

// Rate handles POST /api/items/{id}/rate: submits an owner rating and closes
// the loan. Only the borrower who requested the item may rate it.
func (h *RequestsHandler) Rate(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	itemID := r.PathValue("id")
	item, err := store.GetItem(r.Context(), h.DB, itemID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.RequesterID != claims.UserID {
		jsonError(w, http.StatusForbidden, "only the borrower can rate this loan")
		return
	}

	if err := h.Lending.CompleteAndRate(r.Context(), itemID, req.Rating); err != nil {
		domainError(w, err)
		return
	}

	slog.Info("loan closed with rating", "item", itemID, "rating", req.Rating, "rater", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "rating submitted"})
}
