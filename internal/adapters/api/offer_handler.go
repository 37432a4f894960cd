package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/garimpo/backend/internal/domain/negotiation"
	"github.com/garimpo/backend/pkg/apierror"
	"github.com/garimpo/backend/pkg/auth"
)

// OfferService is the negotiation surface the offer handler depends on.
type OfferService interface {
	SubmitOffer(ctx context.Context, cmd negotiation.SubmitOfferCommand) (*negotiation.Offer, error)
	EditOffer(ctx context.Context, cmd negotiation.EditOfferCommand) (*negotiation.Offer, error)
	CancelOffer(ctx context.Context, cmd negotiation.CancelOfferCommand) (*negotiation.Offer, error)
	ConfirmOffer(ctx context.Context, cmd negotiation.ConfirmOfferCommand) (*negotiation.ConfirmResult, error)
	DeclineOffer(ctx context.Context, cmd negotiation.DeclineOfferCommand) (*negotiation.ConfirmResult, error)
	GetOffer(ctx context.Context, offerID uuid.UUID) (*negotiation.Offer, error)
	ListItemOffers(ctx context.Context, itemID uuid.UUID) ([]*negotiation.Offer, error)
	ListBidderOffers(ctx context.Context, bidderID uuid.UUID) ([]*negotiation.Offer, error)
}

// OfferHandler handles negotiation HTTP requests.
type OfferHandler struct {
	offers OfferService
	logger *slog.Logger
}

// NewOfferHandler creates a new offer handler.
func NewOfferHandler(offers OfferService, logger *slog.Logger) *OfferHandler {
	return &OfferHandler{offers: offers, logger: logger}
}

// SubmitOfferRequest is the request body for placing an offer.
type SubmitOfferRequest struct {
	Price   int64  `json:"price"`
	Message string `json:"message"`
}

// EditOfferRequest is the request body for editing an offer. Omitted fields
// are left untouched.
type EditOfferRequest struct {
	Price   *int64  `json:"price"`
	Message *string `json:"message"`
}

// ConfirmResponse reports the state of both records after a confirmation or
// decline.
type ConfirmResponse struct {
	Offer     OfferResponse `json:"offer"`
	Item      ItemResponse  `json:"item"`
	Finalized bool          `json:"finalized"`
}

// Submit handles POST /items/{itemID}/offers
func (h *OfferHandler) Submit(w http.ResponseWriter, r *http.Request) {
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

	var req SubmitOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest("invalid request body").Write(w)
		return
	}
	defer r.Body.Close()

	offer, err := h.offers.SubmitOffer(r.Context(), negotiation.SubmitOfferCommand{
		ItemID:   itemID,
		BidderID: userID,
		Price:    req.Price,
		Message:  req.Message,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOfferResponse(offer))
}

// Get handles GET /offers/{offerID}
func (h *OfferHandler) Get(w http.ResponseWriter, r *http.Request) {
	offerID, err := uuid.Parse(chi.URLParam(r, "offerID"))
	if err != nil {
		apierror.BadRequest("invalid offer id").Write(w)
		return
	}

	offer, err := h.offers.GetOffer(r.Context(), offerID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toOfferResponse(offer))
}

// ListForItem handles GET /items/{itemID}/offers
func (h *OfferHandler) ListForItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		apierror.BadRequest("invalid item id").Write(w)
		return
	}

	offers, err := h.offers.ListItemOffers(r.Context(), itemID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toOfferResponses(offers))
}

// ListMine handles GET /offers/my
func (h *OfferHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		apierror.Unauthorized("").Write(w)
		return
	}

	offers, err := h.offers.ListBidderOffers(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toOfferResponses(offers))
}

// Edit handles PATCH /offers/{offerID}
func (h *OfferHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		apierror.Unauthorized("").Write(w)
		return
	}

	offerID, err := uuid.Parse(chi.URLParam(r, "offerID"))
	if err != nil {
		apierror.BadRequest("invalid offer id").Write(w)
		return
	}

	var req EditOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest("invalid request body").Write(w)
		return
	}
	defer r.Body.Close()

	offer, err := h.offers.EditOffer(r.Context(), negotiation.EditOfferCommand{
		OfferID:  offerID,
		BidderID: userID,
		Price:    req.Price,
		Message:  req.Message,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toOfferResponse(offer))
}

// Cancel handles DELETE /offers/{offerID}
func (h *OfferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		apierror.Unauthorized("").Write(w)
		return
	}

	offerID, err := uuid.Parse(chi.URLParam(r, "offerID"))
	if err != nil {
		apierror.BadRequest("invalid offer id").Write(w)
		return
	}

	offer, err := h.offers.CancelOffer(r.Context(), negotiation.CancelOfferCommand{
		OfferID:  offerID,
		CallerID: userID,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toOfferResponse(offer))
}

// Confirm handles POST /offers/{offerID}/confirm
func (h *OfferHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		apierror.Unauthorized("").Write(w)
		return
	}

	offerID, err := uuid.Parse(chi.URLParam(r, "offerID"))
	if err != nil {
		apierror.BadRequest("invalid offer id").Write(w)
		return
	}

	result, err := h.offers.ConfirmOffer(r.Context(), negotiation.ConfirmOfferCommand{
		OfferID:  offerID,
		CallerID: userID,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ConfirmResponse{
		Offer:     toOfferResponse(result.Offer),
		Item:      toItemResponse(result.Item),
		Finalized: result.Finalized,
	})
}

// Decline handles POST /offers/{offerID}/decline
func (h *OfferHandler) Decline(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		apierror.Unauthorized("").Write(w)
		return
	}

	offerID, err := uuid.Parse(chi.URLParam(r, "offerID"))
	if err != nil {
		apierror.BadRequest("invalid offer id").Write(w)
		return
	}

	result, err := h.offers.DeclineOffer(r.Context(), negotiation.DeclineOfferCommand{
		OfferID:  offerID,
		CallerID: userID,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ConfirmResponse{
		Offer:     toOfferResponse(result.Offer),
		Item:      toItemResponse(result.Item),
		Finalized: result.Finalized,
	})
}
