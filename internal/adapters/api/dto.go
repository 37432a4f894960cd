package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/garimpo/backend/internal/domain/items"
	"github.com/garimpo/backend/internal/domain/negotiation"
	"github.com/garimpo/backend/internal/domain/users"
)

// ItemResponse is the wire representation of a listing.
type ItemResponse struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category"`
	ImageURL     string    `json:"image_url,omitempty"`
	OfferType    string    `json:"offer_type"`
	Volume       float64   `json:"volume,omitempty"`
	Location     string    `json:"location,omitempty"`
	DurationDays int       `json:"duration_days"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toItemResponse(item *items.Item) ItemResponse {
	return ItemResponse{
		ID:           item.ID,
		OwnerID:      item.OwnerID,
		Title:        item.Title,
		Description:  item.Description,
		Category:     item.Category,
		ImageURL:     item.ImageURL,
		OfferType:    string(item.OfferType),
		Volume:       item.Volume,
		Location:     item.Location,
		DurationDays: item.DurationDays,
		Status:       string(item.Status),
		CreatedAt:    item.CreatedAt,
		ExpiresAt:    item.ExpiresAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

func toItemResponses(list []*items.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(list))
	for _, item := range list {
		out = append(out, toItemResponse(item))
	}
	return out
}

// OfferResponse is the wire representation of an offer. Price is in cents;
// negative means the bidder wants to be paid to take the item.
type OfferResponse struct {
	ID              uuid.UUID `json:"id"`
	ItemID          uuid.UUID `json:"item_id"`
	BidderID        uuid.UUID `json:"bidder_id"`
	Price           int64     `json:"price"`
	Message         string    `json:"message,omitempty"`
	Status          string    `json:"status"`
	OwnerConfirmed  bool      `json:"owner_confirmed"`
	BidderConfirmed bool      `json:"bidder_confirmed"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toOfferResponse(offer *negotiation.Offer) OfferResponse {
	return OfferResponse{
		ID:              offer.ID,
		ItemID:          offer.ItemID,
		BidderID:        offer.BidderID,
		Price:           offer.Price,
		Message:         offer.Message,
		Status:          string(offer.Status),
		OwnerConfirmed:  offer.OwnerConfirmed,
		BidderConfirmed: offer.BidderConfirmed,
		CreatedAt:       offer.CreatedAt,
		UpdatedAt:       offer.UpdatedAt,
	}
}

func toOfferResponses(list []*negotiation.Offer) []OfferResponse {
	out := make([]OfferResponse, 0, len(list))
	for _, offer := range list {
		out = append(out, toOfferResponse(offer))
	}
	return out
}

// UserResponse is the wire representation of an account. The password hash
// never leaves the server.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user *users.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
	}
}
