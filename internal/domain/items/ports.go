package items

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListFilter narrows ListItems results. Zero values mean "no filter".
type ListFilter struct {
	Status   ItemStatus
	Category string
	OwnerID  uuid.UUID
	Limit    int
	Offset   int
}

// Repository defines the interface for item persistence
type Repository interface {
	// CreateItem creates a new listing
	CreateItem(ctx context.Context, item *Item) error

	// GetItemByID retrieves an item by its ID
	GetItemByID(ctx context.Context, itemID uuid.UUID) (*Item, error)

	// GetItemByIDForUpdate retrieves an item by its ID and locks its row.
	// Must be called within a transaction.
	GetItemByIDForUpdate(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (*Item, error)

	// UpdateItem updates an item's editable fields
	UpdateItem(ctx context.Context, item *Item) error

	// UpdateStatus updates an item's status within a transaction
	UpdateStatus(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, status ItemStatus) error

	// ListItems retrieves listings matching the filter, newest first
	ListItems(ctx context.Context, filter ListFilter) ([]*Item, error)

	// CountItems returns the number of listings matching the filter
	CountItems(ctx context.Context, filter ListFilter) (int64, error)

	// ListActiveItemsPastExpiry returns ids of active items whose listing
	// window elapsed before now. Used by the expiration sweep.
	ListActiveItemsPastExpiry(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// OfferCanceler cancels all live offers on an item when the listing itself
// is withdrawn by its owner.
type OfferCanceler interface {
	CancelLiveOffersForItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error
}
