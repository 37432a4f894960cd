package negotiation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/garimpo/backend/internal/domain/items"
	"github.com/garimpo/backend/pkg/events"
)

// ItemRepository is the subset of item persistence the engine needs
type ItemRepository interface {
	// GetItemByID retrieves an item by its ID
	GetItemByID(ctx context.Context, itemID uuid.UUID) (*items.Item, error)

	// GetItemByIDForUpdate retrieves an item by its ID and locks its row.
	// All mutating operations on an item's negotiation state lock this row
	// first, which serializes them per item. Must be called within a
	// transaction.
	GetItemByIDForUpdate(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (*items.Item, error)

	// UpdateStatus updates an item's status within a transaction
	UpdateStatus(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, status items.ItemStatus) error

	// ListActiveItemsPastExpiry returns ids of active items whose listing
	// window elapsed before now
	ListActiveItemsPastExpiry(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// OfferRepository defines the interface for offer persistence
type OfferRepository interface {
	// SaveOffer inserts a new offer within a transaction
	SaveOffer(ctx context.Context, tx pgx.Tx, offer *Offer) error

	// GetOfferByID retrieves an offer by its ID
	GetOfferByID(ctx context.Context, offerID uuid.UUID) (*Offer, error)

	// GetOfferByIDForUpdate retrieves an offer by its ID and locks its row.
	// Must be called within a transaction, after the parent item's row has
	// been locked.
	GetOfferByIDForUpdate(ctx context.Context, tx pgx.Tx, offerID uuid.UUID) (*Offer, error)

	// FindLiveOfferForBidder returns the bidder's live offer on the item,
	// or nil if there is none. Called within a transaction holding the
	// item lock so duplicate checks cannot race.
	FindLiveOfferForBidder(ctx context.Context, tx pgx.Tx, bidderID, itemID uuid.UUID) (*Offer, error)

	// ListLiveOffersForItem retrieves live offers on an item, newest first
	ListLiveOffersForItem(ctx context.Context, itemID uuid.UUID) ([]*Offer, error)

	// ListActiveOffersForItemForUpdate retrieves the item's active offers
	// and locks their rows, for winner selection during expiry
	ListActiveOffersForItemForUpdate(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) ([]*Offer, error)

	// ListLiveOffersForBidder retrieves a user's live offers, newest first
	ListLiveOffersForBidder(ctx context.Context, bidderID uuid.UUID) ([]*Offer, error)

	// UpdateOffer persists an offer's mutable fields (price, message,
	// status, confirmation flags) within a transaction
	UpdateOffer(ctx context.Context, tx pgx.Tx, offer *Offer) error

	// CancelLiveOffersForItem cancels every live offer on an item within a
	// transaction
	CancelLiveOffersForItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error
}

// OutboxRepository defines the interface for outbox event persistence
type OutboxRepository interface {
	// SaveEvent saves an outbox event within a transaction
	SaveEvent(ctx context.Context, tx pgx.Tx, event *events.OutboxEvent) error
}
