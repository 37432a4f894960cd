package negotiation

import (
	"time"

	"github.com/google/uuid"
)

// OfferStatus is the closed set of offer states.
type OfferStatus string

const (
	OfferStatusActive              OfferStatus = "active"
	OfferStatusPendingConfirmation OfferStatus = "pending_confirmation"
	OfferStatusNegotiated          OfferStatus = "negotiated"
	OfferStatusCanceled            OfferStatus = "canceled"
)

// IsValid checks if the status is a known value.
func (s OfferStatus) IsValid() bool {
	switch s {
	case OfferStatusActive, OfferStatusPendingConfirmation, OfferStatusNegotiated, OfferStatusCanceled:
		return true
	default:
		return false
	}
}

// IsLive reports whether the offer is still eligible for negotiation.
func (s OfferStatus) IsLive() bool {
	return s == OfferStatusActive || s == OfferStatusPendingConfirmation
}

// IsTerminal reports whether no further transitions are possible.
func (s OfferStatus) IsTerminal() bool {
	return s == OfferStatusNegotiated || s == OfferStatusCanceled
}

// Offer represents a proposal placed against a listing. Price is in cents; a
// negative price means the bidder wants to be paid to take the item.
type Offer struct {
	ID              uuid.UUID   `db:"id"`
	ItemID          uuid.UUID   `db:"item_id"`
	BidderID        uuid.UUID   `db:"bidder_id"`
	Price           int64       `db:"price"`
	Message         string      `db:"message"`
	Status          OfferStatus `db:"status"`
	OwnerConfirmed  bool        `db:"owner_confirmed"`
	BidderConfirmed bool        `db:"bidder_confirmed"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

// IsLive reports whether the offer is still eligible for negotiation.
func (o *Offer) IsLive() bool {
	return o.Status.IsLive()
}

// selectWinner picks the best offer among live ones: highest price first (a
// negative "pay me to take it" price is the least attractive), earliest
// created_at breaking ties. Returns nil for an empty slice.
func selectWinner(offers []*Offer) *Offer {
	var winner *Offer
	for _, o := range offers {
		if winner == nil {
			winner = o
			continue
		}
		if o.Price > winner.Price {
			winner = o
			continue
		}
		if o.Price == winner.Price && o.CreatedAt.Before(winner.CreatedAt) {
			winner = o
		}
	}
	return winner
}
