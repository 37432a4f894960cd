package items

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/garimpo/backend/pkg/database"
)

// Service errors
var (
	ErrItemNotFound       = fmt.Errorf("item not found")
	ErrUnauthorized       = fmt.Errorf("unauthorized: only the owner can perform this action")
	ErrInvalidTitle       = fmt.Errorf("title is required")
	ErrInvalidCategory    = fmt.Errorf("unknown category")
	ErrInvalidOfferType   = fmt.Errorf("offer type must be pay, free or paid_to_take")
	ErrInvalidDuration    = fmt.Errorf("duration must be one of 1, 7, 15 or 30 days")
	ErrCannotCancel       = fmt.Errorf("cannot cancel listing: negotiation already in progress or finished")
	ErrListingNotEditable = fmt.Errorf("listing can no longer be edited")
)

// CreateItemCommand represents the command to create a new listing
type CreateItemCommand struct {
	OwnerID      uuid.UUID
	Title        string
	Description  string
	Category     string
	ImageURL     string
	OfferType    OfferType
	Volume       float64
	Location     string
	DurationDays int
}

// UpdateItemCommand represents the command to update a listing
type UpdateItemCommand struct {
	ItemID      uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Category    string
	ImageURL    string
	Volume      float64
	Location    string
}

// CancelListingCommand represents the command to withdraw a listing
type CancelListingCommand struct {
	ItemID uuid.UUID
	UserID uuid.UUID
}

// ListItemsQuery represents filter and pagination parameters for browsing
type ListItemsQuery struct {
	Status   ItemStatus
	Category string
	OwnerID  uuid.UUID
	Page     int
	PageSize int
}

// Normalize applies the browsing defaults: page 1, page size 20 (capped at
// 100), active listings unless a status filter was given. Callers that key on
// the query, like the listing cache, must normalize first so equivalent
// queries collapse to one form.
func (q ListItemsQuery) Normalize() ListItemsQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Status == "" {
		q.Status = ItemStatusActive
	}
	return q
}

// ListItemsResult is one page of listings plus pagination info
type ListItemsResult struct {
	Items      []*Item
	Page       int
	PageSize   int
	TotalItems int64
}

// Service implements the core business logic for listings
type Service struct {
	txManager database.TransactionManager
	repo      Repository
	offers    OfferCanceler
}

// NewService creates a new item service
func NewService(txManager database.TransactionManager, repo Repository, offers OfferCanceler) *Service {
	return &Service{txManager: txManager, repo: repo, offers: offers}
}

// CreateItem creates a new listing in active status. The expiry is fixed at
// creation time from the chosen duration.
func (s *Service) CreateItem(ctx context.Context, cmd CreateItemCommand) (*Item, error) {
	if cmd.Title == "" {
		return nil, ErrInvalidTitle
	}
	if !slices.Contains(Categories, cmd.Category) {
		return nil, ErrInvalidCategory
	}
	if !cmd.OfferType.IsValid() {
		return nil, ErrInvalidOfferType
	}
	if !slices.Contains(AllowedDurations, cmd.DurationDays) {
		return nil, ErrInvalidDuration
	}

	now := time.Now()
	item := &Item{
		ID:           uuid.New(),
		OwnerID:      cmd.OwnerID,
		Title:        cmd.Title,
		Description:  cmd.Description,
		Category:     cmd.Category,
		ImageURL:     cmd.ImageURL,
		OfferType:    cmd.OfferType,
		Volume:       cmd.Volume,
		Location:     cmd.Location,
		DurationDays: cmd.DurationDays,
		Status:       ItemStatusActive,
		CreatedAt:    now,
		ExpiresAt:    now.AddDate(0, 0, cmd.DurationDays),
		UpdatedAt:    now,
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

// GetItem retrieves a listing by ID
func (s *Service) GetItem(ctx context.Context, itemID uuid.UUID) (*Item, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// ListItems retrieves a page of listings. Browsing reads are allowed to be
// slightly stale; only transition-applying writes require strict atomicity.
func (s *Service) ListItems(ctx context.Context, query ListItemsQuery) (*ListItemsResult, error) {
	query = query.Normalize()

	filter := ListFilter{
		Status:   query.Status,
		Category: query.Category,
		OwnerID:  query.OwnerID,
		Limit:    query.PageSize,
		Offset:   (query.Page - 1) * query.PageSize,
	}

	items, err := s.repo.ListItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	total, err := s.repo.CountItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	return &ListItemsResult{
		Items:      items,
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalItems: total,
	}, nil
}

// UpdateItem updates a listing's editable fields. Only the owner may update,
// and only while the listing is still active.
func (s *Service) UpdateItem(ctx context.Context, cmd UpdateItemCommand) (*Item, error) {
	item, err := s.repo.GetItemByID(ctx, cmd.ItemID)
	if err != nil {
		return nil, ErrItemNotFound
	}

	if !item.IsOwnedBy(cmd.UserID) {
		return nil, ErrUnauthorized
	}

	if item.Status != ItemStatusActive {
		return nil, ErrListingNotEditable
	}

	if cmd.Category != "" && !slices.Contains(Categories, cmd.Category) {
		return nil, ErrInvalidCategory
	}

	if cmd.Title != "" {
		item.Title = cmd.Title
	}
	if cmd.Description != "" {
		item.Description = cmd.Description
	}
	if cmd.Category != "" {
		item.Category = cmd.Category
	}
	if cmd.ImageURL != "" {
		item.ImageURL = cmd.ImageURL
	}
	if cmd.Volume != 0 {
		item.Volume = cmd.Volume
	}
	if cmd.Location != "" {
		item.Location = cmd.Location
	}
	item.UpdatedAt = time.Now()

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return item, nil
}

// CancelListing withdraws a listing. Only the owner may cancel, and only
// while the item is still active: once a winner was selected, the item has
// expired or a deal was closed, this path is rejected and the confirmation
// handshake (confirm/decline) is the only way forward. Live offers on the
// listing are canceled in the same transaction.
func (s *Service) CancelListing(ctx context.Context, cmd CancelListingCommand) (*Item, error) {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	item, err := s.repo.GetItemByIDForUpdate(ctx, tx, cmd.ItemID)
	if err != nil {
		return nil, ErrItemNotFound
	}

	if !item.IsOwnedBy(cmd.UserID) {
		return nil, ErrUnauthorized
	}

	if item.Status != ItemStatusActive {
		return nil, ErrCannotCancel
	}

	if err := s.repo.UpdateStatus(ctx, tx, item.ID, ItemStatusCanceled); err != nil {
		return nil, fmt.Errorf("failed to cancel listing: %w", err)
	}

	if err := s.offers.CancelLiveOffersForItem(ctx, tx, item.ID); err != nil {
		return nil, fmt.Errorf("failed to cancel live offers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	item.Status = ItemStatusCanceled
	return item, nil
}
