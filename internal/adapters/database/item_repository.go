package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/garimpo/backend/internal/domain/items"
	pkgdb "github.com/garimpo/backend/pkg/database"
)

// PostgresItemRepository implements items.Repository using pgx
type PostgresItemRepository struct {
	pool *pgxpool.Pool // Keep pool for non-transactional reads
}

// NewPostgresItemRepository creates a new PostgreSQL item repository
func NewPostgresItemRepository(pool *pgxpool.Pool) *PostgresItemRepository {
	return &PostgresItemRepository{pool: pool}
}

const itemColumns = `id, owner_id, title, description, category, image_url, offer_type, volume, location, duration_days, status, created_at, expires_at, updated_at`

// CreateItem inserts a new listing
func (r *PostgresItemRepository) CreateItem(ctx context.Context, item *items.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::item_status, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.OwnerID,
		item.Title,
		item.Description,
		item.Category,
		item.ImageURL,
		item.OfferType,
		item.Volume,
		item.Location,
		item.DurationDays,
		item.Status,
		item.CreatedAt,
		item.ExpiresAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// GetItemByID retrieves an item by its ID (non-transactional read)
func (r *PostgresItemRepository) GetItemByID(ctx context.Context, itemID uuid.UUID) (*items.Item, error) {
	return r.getItemByID(ctx, r.pool, itemID, false)
}

// GetItemByIDForUpdate retrieves an item by its ID and locks it for update.
// This serializes all negotiation-state mutations on the item.
func (r *PostgresItemRepository) GetItemByIDForUpdate(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (*items.Item, error) {
	return r.getItemByID(ctx, tx, itemID, true)
}

// getItemByID is the internal implementation that works with any DBTX
func (r *PostgresItemRepository) getItemByID(ctx context.Context, db pkgdb.DBTX, itemID uuid.UUID, forUpdate bool) (*items.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var item items.Item
	err := db.QueryRow(ctx, query, itemID).Scan(
		&item.ID,
		&item.OwnerID,
		&item.Title,
		&item.Description,
		&item.Category,
		&item.ImageURL,
		&item.OfferType,
		&item.Volume,
		&item.Location,
		&item.DurationDays,
		&item.Status,
		&item.CreatedAt,
		&item.ExpiresAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("item not found")
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// UpdateItem updates a listing's editable fields
func (r *PostgresItemRepository) UpdateItem(ctx context.Context, item *items.Item) error {
	query := `
		UPDATE items
		SET title = $1, description = $2, category = $3, image_url = $4, volume = $5, location = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.pool.Exec(ctx, query,
		item.Title,
		item.Description,
		item.Category,
		item.ImageURL,
		item.Volume,
		item.Location,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item not found")
	}
	return nil
}

// UpdateStatus updates an item's status within a transaction
func (r *PostgresItemRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, status items.ItemStatus) error {
	query := `
		UPDATE items
		SET status = $1::item_status, updated_at = NOW()
		WHERE id = $2
	`
	result, err := tx.Exec(ctx, query, status, itemID)
	if err != nil {
		return fmt.Errorf("failed to update item status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item not found")
	}
	return nil
}

// ListItems retrieves listings matching the filter, newest first
func (r *PostgresItemRepository) ListItems(ctx context.Context, filter items.ListFilter) ([]*items.Item, error) {
	query, args := buildListQuery("SELECT "+itemColumns+" FROM items", filter, true)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var result []*items.Item
	for rows.Next() {
		var item items.Item
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.Title,
			&item.Description,
			&item.Category,
			&item.ImageURL,
			&item.OfferType,
			&item.Volume,
			&item.Location,
			&item.DurationDays,
			&item.Status,
			&item.CreatedAt,
			&item.ExpiresAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		result = append(result, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return result, nil
}

// CountItems returns the number of listings matching the filter
func (r *PostgresItemRepository) CountItems(ctx context.Context, filter items.ListFilter) (int64, error) {
	query, args := buildListQuery("SELECT COUNT(*) FROM items", filter, false)

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// buildListQuery appends the filter's WHERE clauses and, when paged is set,
// ordering and pagination.
func buildListQuery(base string, filter items.ListFilter, paged bool) (string, []any) {
	query := base + " WHERE 1=1"
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d::item_status", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.OwnerID != uuid.Nil {
		args = append(args, filter.OwnerID)
		query += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}

	if paged {
		query += " ORDER BY created_at DESC"
		if filter.Limit > 0 {
			args = append(args, filter.Limit)
			query += fmt.Sprintf(" LIMIT $%d", len(args))
		}
		if filter.Offset > 0 {
			args = append(args, filter.Offset)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	return query, args
}

// ListActiveItemsPastExpiry returns ids of active items whose listing window
// elapsed before now. Used by the expiration sweep.
func (r *PostgresItemRepository) ListActiveItemsPastExpiry(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM items
		WHERE status = 'active' AND expires_at < $1
		ORDER BY expires_at ASC
	`
	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired items: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan item id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item ids: %w", err)
	}

	return ids, nil
}
