package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/garimpo/backend/internal/domain/negotiation"
	pkgdb "github.com/garimpo/backend/pkg/database"
)

// PostgresOfferRepository implements negotiation.OfferRepository using pgx
type PostgresOfferRepository struct {
	pool *pgxpool.Pool // Keep pool for read-only operations
}

// NewPostgresOfferRepository creates a new PostgreSQL offer repository
func NewPostgresOfferRepository(pool *pgxpool.Pool) *PostgresOfferRepository {
	return &PostgresOfferRepository{pool: pool}
}

const offerColumns = `id, item_id, bidder_id, price, message, status, owner_confirmed, bidder_confirmed, created_at, updated_at`

// SaveOffer inserts a new offer within a transaction
func (r *PostgresOfferRepository) SaveOffer(ctx context.Context, tx pgx.Tx, offer *negotiation.Offer) error {
	query := `
		INSERT INTO offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6::offer_status, $7, $8, $9, $10)
	`
	_, err := tx.Exec(ctx, query,
		offer.ID,
		offer.ItemID,
		offer.BidderID,
		offer.Price,
		offer.Message,
		offer.Status,
		offer.OwnerConfirmed,
		offer.BidderConfirmed,
		offer.CreatedAt,
		offer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert offer: %w", err)
	}
	return nil
}

// GetOfferByID retrieves an offer by its ID
func (r *PostgresOfferRepository) GetOfferByID(ctx context.Context, offerID uuid.UUID) (*negotiation.Offer, error) {
	return r.getOfferByID(ctx, r.pool, offerID, false)
}

// GetOfferByIDForUpdate retrieves an offer by its ID and locks its row
func (r *PostgresOfferRepository) GetOfferByIDForUpdate(ctx context.Context, tx pgx.Tx, offerID uuid.UUID) (*negotiation.Offer, error) {
	return r.getOfferByID(ctx, tx, offerID, true)
}

func (r *PostgresOfferRepository) getOfferByID(ctx context.Context, db pkgdb.DBTX, offerID uuid.UUID, forUpdate bool) (*negotiation.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var offer negotiation.Offer
	err := db.QueryRow(ctx, query, offerID).Scan(
		&offer.ID,
		&offer.ItemID,
		&offer.BidderID,
		&offer.Price,
		&offer.Message,
		&offer.Status,
		&offer.OwnerConfirmed,
		&offer.BidderConfirmed,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("offer not found")
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &offer, nil
}

// FindLiveOfferForBidder returns the bidder's live offer on the item, or nil
// if there is none
func (r *PostgresOfferRepository) FindLiveOfferForBidder(ctx context.Context, tx pgx.Tx, bidderID, itemID uuid.UUID) (*negotiation.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers
		WHERE bidder_id = $1 AND item_id = $2 AND status IN ('active', 'pending_confirmation')
		LIMIT 1
	`
	var offer negotiation.Offer
	err := tx.QueryRow(ctx, query, bidderID, itemID).Scan(
		&offer.ID,
		&offer.ItemID,
		&offer.BidderID,
		&offer.Price,
		&offer.Message,
		&offer.Status,
		&offer.OwnerConfirmed,
		&offer.BidderConfirmed,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find live offer: %w", err)
	}
	return &offer, nil
}

// ListLiveOffersForItem retrieves live offers on an item, newest first
func (r *PostgresOfferRepository) ListLiveOffersForItem(ctx context.Context, itemID uuid.UUID) ([]*negotiation.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers
		WHERE item_id = $1 AND status IN ('active', 'pending_confirmation')
		ORDER BY created_at DESC
	`
	return r.queryOffers(ctx, r.pool, query, itemID)
}

// ListActiveOffersForItemForUpdate retrieves the item's active offers and
// locks their rows, for winner selection during expiry
func (r *PostgresOfferRepository) ListActiveOffersForItemForUpdate(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) ([]*negotiation.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers
		WHERE item_id = $1 AND status = 'active'
		ORDER BY created_at ASC
		FOR UPDATE
	`
	return r.queryOffers(ctx, tx, query, itemID)
}

// ListLiveOffersForBidder retrieves a user's live offers, newest first
func (r *PostgresOfferRepository) ListLiveOffersForBidder(ctx context.Context, bidderID uuid.UUID) ([]*negotiation.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers
		WHERE bidder_id = $1 AND status IN ('active', 'pending_confirmation')
		ORDER BY created_at DESC
	`
	return r.queryOffers(ctx, r.pool, query, bidderID)
}

func (r *PostgresOfferRepository) queryOffers(ctx context.Context, db pkgdb.DBTX, query string, args ...any) ([]*negotiation.Offer, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var result []*negotiation.Offer
	for rows.Next() {
		var offer negotiation.Offer
		if err := rows.Scan(
			&offer.ID,
			&offer.ItemID,
			&offer.BidderID,
			&offer.Price,
			&offer.Message,
			&offer.Status,
			&offer.OwnerConfirmed,
			&offer.BidderConfirmed,
			&offer.CreatedAt,
			&offer.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		result = append(result, &offer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	return result, nil
}

// UpdateOffer persists an offer's mutable fields within a transaction
func (r *PostgresOfferRepository) UpdateOffer(ctx context.Context, tx pgx.Tx, offer *negotiation.Offer) error {
	query := `
		UPDATE offers
		SET price = $1, message = $2, status = $3::offer_status, owner_confirmed = $4, bidder_confirmed = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := tx.Exec(ctx, query,
		offer.Price,
		offer.Message,
		offer.Status,
		offer.OwnerConfirmed,
		offer.BidderConfirmed,
		offer.UpdatedAt,
		offer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("offer not found")
	}
	return nil
}

// CancelLiveOffersForItem cancels every live offer on an item within a
// transaction. Used when the owner withdraws the listing.
func (r *PostgresOfferRepository) CancelLiveOffersForItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error {
	query := `
		UPDATE offers
		SET status = 'canceled', updated_at = NOW()
		WHERE item_id = $1 AND status IN ('active', 'pending_confirmation')
	`
	if _, err := tx.Exec(ctx, query, itemID); err != nil {
		return fmt.Errorf("failed to cancel live offers: %w", err)
	}
	return nil
}
