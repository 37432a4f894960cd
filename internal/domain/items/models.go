package items

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus is the closed set of listing states.
type ItemStatus string

const (
	ItemStatusActive              ItemStatus = "active"
	ItemStatusPendingConfirmation ItemStatus = "pending_confirmation"
	ItemStatusNegotiated          ItemStatus = "negotiated"
	ItemStatusExpired             ItemStatus = "expired"
	ItemStatusCanceled            ItemStatus = "canceled"
)

// IsValid checks if the status is a known value.
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusActive, ItemStatusPendingConfirmation, ItemStatusNegotiated, ItemStatusExpired, ItemStatusCanceled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s ItemStatus) IsTerminal() bool {
	switch s {
	case ItemStatusNegotiated, ItemStatusExpired, ItemStatusCanceled:
		return true
	default:
		return false
	}
}

// OfferType describes the direction of payment a listing expects.
type OfferType string

const (
	OfferTypePay        OfferType = "pay"
	OfferTypeFree       OfferType = "free"
	OfferTypePaidToTake OfferType = "paid_to_take"
)

// IsValid checks if the offer type is a known value.
func (t OfferType) IsValid() bool {
	switch t {
	case OfferTypePay, OfferTypeFree, OfferTypePaidToTake:
		return true
	default:
		return false
	}
}

// AllowedDurations are the listing windows, in days, a seller can choose from.
var AllowedDurations = []int{1, 7, 15, 30}

// Categories is the fixed set of listing categories.
var Categories = []string{
	"Electronics",
	"Furniture",
	"Clothing",
	"Books",
	"Tools",
	"Toys",
	"Food",
	"Appliances",
	"Sports",
	"Miscellaneous",
}

// Item represents a marketplace listing.
type Item struct {
	ID           uuid.UUID  `db:"id"`
	OwnerID      uuid.UUID  `db:"owner_id"`
	Title        string     `db:"title"`
	Description  string     `db:"description"`
	Category     string     `db:"category"`
	ImageURL     string     `db:"image_url"`
	OfferType    OfferType  `db:"offer_type"`
	Volume       float64    `db:"volume"`
	Location     string     `db:"location"`
	DurationDays int        `db:"duration_days"`
	Status       ItemStatus `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
	ExpiresAt    time.Time  `db:"expires_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// IsOwnedBy checks whether the given user owns this listing.
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.OwnerID == userID
}

// IsExpired reports whether the listing window has elapsed.
func (i *Item) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// AcceptsOffers reports whether the listing is still open for negotiation.
func (i *Item) AcceptsOffers() bool {
	return i.Status == ItemStatusActive
}
