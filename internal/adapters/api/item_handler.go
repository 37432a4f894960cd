package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/garimpo/backend/internal/domain/items"
	"github.com/garimpo/backend/pkg/apierror"
	"github.com/garimpo/backend/pkg/auth"
)

// ItemService is the listing command surface the item handler depends on.
type ItemService interface {
	CreateItem(ctx context.Context, cmd items.CreateItemCommand) (*items.Item, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*items.Item, error)
	UpdateItem(ctx context.Context, cmd items.UpdateItemCommand) (*items.Item, error)
	CancelListing(ctx context.Context, cmd items.CancelListingCommand) (*items.Item, error)
}

// ItemLister is the browse surface. In production it is the redis
// read-through decorator, not the raw service.
type ItemLister interface {
	ListItems(ctx context.Context, query items.ListItemsQuery) (*items.ListItemsResult, error)
}

// ItemHandler handles listing HTTP requests.
type ItemHandler struct {
	items  ItemService
	lister ItemLister
	logger *slog.Logger
}

// NewItemHandler creates a new item handler.
func NewItemHandler(items ItemService, lister ItemLister, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: items, lister: lister, logger: logger}
}

// CreateItemRequest is the request body for creating a listing.
type CreateItemRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	ImageURL     string  `json:"image_url"`
	OfferType    string  `json:"offer_type"`
	Volume       float64 `json:"volume"`
	Location     string  `json:"location"`
	DurationDays int     `json:"duration_days"`
}

// UpdateItemRequest is the request body for editing a listing. Empty fields
// are left untouched.
type UpdateItemRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Volume      float64 `json:"volume"`
	Location    string  `json:"location"`
}

// Create handles POST /items
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		apierror.Unauthorized("").Write(w)
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest("invalid request body").Write(w)
		return
	}
	defer r.Body.Close()

	item, err := h.items.CreateItem(r.Context(), items.CreateItemCommand{
		OwnerID:      userID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		ImageURL:     req.ImageURL,
		OfferType:    items.OfferType(req.OfferType),
		Volume:       req.Volume,
		Location:     req.Location,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

// Get handles GET /items/{itemID}
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		apierror.BadRequest("invalid item id").Write(w)
		return
	}

	item, err := h.items.GetItem(r.Context(), itemID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// List handles GET /items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := items.ListItemsQuery{
		Status:   items.ItemStatus(q.Get("status")),
		Category: q.Get("category"),
	}
	if query.Status != "" && !query.Status.IsValid() {
		apierror.BadRequest("unknown status").Write(w)
		return
	}
	if owner := q.Get("owner_id"); owner != "" {
		ownerID, err := uuid.Parse(owner)
		if err != nil {
			apierror.BadRequest("invalid owner id").Write(w)
			return
		}
		query.OwnerID = ownerID
	}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	result, err := h.lister.ListItems(r.Context(), query)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSONWithMeta(w, http.StatusOK, toItemResponses(result.Items), result.Page, result.PageSize, result.TotalItems)
}

// Update handles PUT /items/{itemID}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		apierror.Unauthorized("").Write(w)
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		apierror.BadRequest("invalid item id").Write(w)
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest("invalid request body").Write(w)
		return
	}
	defer r.Body.Close()

	item, err := h.items.UpdateItem(r.Context(), items.UpdateItemCommand{
		ItemID:      itemID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Volume:      req.Volume,
		Location:    req.Location,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// Cancel handles DELETE /items/{itemID}. The listing is withdrawn, not
// deleted; its live offers are canceled with it.
func (h *ItemHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		apierror.Unauthorized("").Write(w)
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		apierror.BadRequest("invalid item id").Write(w)
		return
	}

	item, err := h.items.CancelListing(r.Context(), items.CancelListingCommand{
		ItemID: itemID,
		UserID: userID,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// Categories handles GET /categories
func (h *ItemHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, items.Categories)
}
