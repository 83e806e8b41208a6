package api

import (
	"database/sql"
	"net/http"

	"github.com/campuslend/campuslend/internal/imaging"
	"github.com/campuslend/campuslend/internal/lending"
	"github.com/campuslend/campuslend/internal/model"
	"github.com/campuslend/campuslend/internal/store"
)

// ItemsHandler handles item listing endpoints.
type ItemsHandler struct {
	DB      *sql.DB
	Lending *lending.Service
}

type createItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Condition   string `json:"condition"`
	ReturnDate  string `json:"return_date"`
}

// itemWithOwner pairs an item with its owner's public profile for browsing.
type itemWithOwner struct {
	model.Item
	Owner model.Profile `json:"owner"`
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Lending.Create(r.Context(), claims.UserID, lending.ItemDraft{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Condition:   req.Condition,
		ReturnDate:  req.ReturnDate,
	})
	if err != nil {
		domainError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// Browse handles GET /api/items: available items from other users, with owner
// profiles attached.
func (h *ItemsHandler) Browse(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, store.ItemFilter{
		Status:     model.ItemStatusAvailable,
		NotOwnerID: claims.UserID,
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	results, err := h.attachOwners(r, items)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, results)
}

// Loaned handles GET /api/items/loaned: the caller's items currently out on
// loan.
func (h *ItemsHandler) Loaned(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, store.ItemFilter{
		Status:  model.ItemStatusUnavailable,
		OwnerID: claims.UserID,
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list loaned items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// UploadImage handles PUT /api/items/{id}/image. Only the item's owner may
// set its image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id := r.PathValue("id")
	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.OwnerID != claims.UserID {
		jsonError(w, http.StatusForbidden, "only the owner can set the item image")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	// Sniffs the real format, downscales and re-encodes.
	result, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, id, result.Data, result.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// attachOwners joins each item with its owner's public profile.
func (h *ItemsHandler) attachOwners(r *http.Request, items []model.Item) ([]itemWithOwner, error) {
	results := make([]itemWithOwner, 0, len(items))
	owners := map[string]*model.User{}
	for _, item := range items {
		owner, ok := owners[item.OwnerID]
		if !ok {
			var err error
			owner, err = store.GetUser(r.Context(), h.DB, item.OwnerID)
			if err != nil {
				return nil, err
			}
			owners[item.OwnerID] = owner
		}

		var profile model.Profile
		if owner != nil {
			profile = owner.PublicProfile()
		}
		results = append(results, itemWithOwner{Item: item, Owner: profile})
	}
	return results, nil
}
