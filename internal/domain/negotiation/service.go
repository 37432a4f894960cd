package negotiation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/garimpo/backend/internal/domain/items"
	"github.com/garimpo/backend/pkg/database"
)

// Validation errors. Handlers map these onto the API failure taxonomy:
// not-found, forbidden, conflict, duplicate-offer, invalid-input.
var (
	ErrItemNotFound    = fmt.Errorf("item not found")
	ErrOfferNotFound   = fmt.Errorf("offer not found")
	ErrOwnItem         = fmt.Errorf("cannot make offers on your own item")
	ErrNotBidder       = fmt.Errorf("only the bidder can modify this offer")
	ErrNotParticipant  = fmt.Errorf("you are not part of this negotiation")
	ErrItemNotOpen     = fmt.Errorf("item is not open for negotiation")
	ErrOfferNotActive  = fmt.Errorf("offer is not active")
	ErrOfferNotPending = fmt.Errorf("offer is not pending confirmation")
	ErrDuplicateOffer  = fmt.Errorf("bidder already has a live offer on this item")
	ErrNoUpdates       = fmt.Errorf("no fields to update")
)

// SubmitOfferCommand represents the command to place an offer on a listing
type SubmitOfferCommand struct {
	ItemID   uuid.UUID
	BidderID uuid.UUID
	Price    int64
	Message  string
}

// EditOfferCommand mutates an active offer's price and/or message in place.
// Nil fields are left untouched.
type EditOfferCommand struct {
	OfferID  uuid.UUID
	BidderID uuid.UUID
	Price    *int64
	Message  *string
}

// CancelOfferCommand represents the command to withdraw an offer
type CancelOfferCommand struct {
	OfferID  uuid.UUID
	CallerID uuid.UUID
}

// ConfirmOfferCommand records one party's confirmation of a pending deal
type ConfirmOfferCommand struct {
	OfferID  uuid.UUID
	CallerID uuid.UUID
}

// DeclineOfferCommand rejects a pending deal on behalf of either party
type DeclineOfferCommand struct {
	OfferID  uuid.UUID
	CallerID uuid.UUID
}

// ConfirmResult reports the outcome of a confirmation. Finalized is true
// once both parties have confirmed and the deal closed.
type ConfirmResult struct {
	Offer     *Offer
	Item      *items.Item
	Finalized bool
}

// ExpireOutcome describes what a single ExpireItem application did.
type ExpireOutcome int

const (
	// ExpireOutcomeSkipped means the item was not (or no longer) eligible;
	// reapplying ExpireItem to a non-active item is a no-op, not an error.
	ExpireOutcomeSkipped ExpireOutcome = iota
	// ExpireOutcomeExpired means the item had no live offers and is now
	// terminally expired.
	ExpireOutcomeExpired
	// ExpireOutcomePending means a winner was selected and both the item
	// and the winning offer moved to pending confirmation.
	ExpireOutcomePending
)

// Service is the negotiation engine: the authoritative rulebook for every
// legal state transition on items and offers, whether triggered by a user
// request or by the expiration sweep. All multi-record transitions are
// applied in a single transaction under the parent item's row lock, so
// concurrent operations on one item are serialized at the record level.
type Service struct {
	txManager  database.TransactionManager
	itemRepo   ItemRepository
	offerRepo  OfferRepository
	outboxRepo OutboxRepository
}

// NewService creates a new negotiation service
func NewService(
	txManager database.TransactionManager,
	itemRepo ItemRepository,
	offerRepo OfferRepository,
	outboxRepo OutboxRepository,
) *Service {
	return &Service{
		txManager:  txManager,
		itemRepo:   itemRepo,
		offerRepo:  offerRepo,
		outboxRepo: outboxRepo,
	}
}

// SubmitOffer places a new offer on an open listing. The item row is locked
// first, so the duplicate-offer check cannot race a concurrent submission
// from the same bidder.
func (s *Service) SubmitOffer(ctx context.Context, cmd SubmitOfferCommand) (*Offer, error) {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	item, err := s.itemRepo.GetItemByIDForUpdate(ctx, tx, cmd.ItemID)
	if err != nil {
		return nil, ErrItemNotFound
	}

	if item.IsOwnedBy(cmd.BidderID) {
		return nil, ErrOwnItem
	}

	if !item.AcceptsOffers() {
		return nil, ErrItemNotOpen
	}

	existing, err := s.offerRepo.FindLiveOfferForBidder(ctx, tx, cmd.BidderID, cmd.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing offer: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateOffer
	}

	now := time.Now()
	offer := &Offer{
		ID:        uuid.New(),
		ItemID:    cmd.ItemID,
		BidderID:  cmd.BidderID,
		Price:     cmd.Price,
		Message:   cmd.Message,
		Status:    OfferStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.offerRepo.SaveOffer(ctx, tx, offer); err != nil {
		return nil, fmt.Errorf("failed to save offer: %w", err)
	}

	event, err := newOutboxEvent(EventTypeOfferSubmitted, NegotiationEvent{
		ItemID:    item.ID,
		OfferID:   offer.ID,
		BidderID:  offer.BidderID,
		OwnerID:   item.OwnerID,
		Price:     offer.Price,
		Timestamp: now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.outboxRepo.SaveEvent(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return offer, nil
}

// EditOffer updates the price and/or message of the caller's active offer.
// The status never changes here.
func (s *Service) EditOffer(ctx context.Context, cmd EditOfferCommand) (*Offer, error) {
	if cmd.Price == nil && cmd.Message == nil {
		return nil, ErrNoUpdates
	}

	preview, err := s.offerRepo.GetOfferByID(ctx, cmd.OfferID)
	if err != nil {
		return nil, ErrOfferNotFound
	}

	if preview.BidderID != cmd.BidderID {
		return nil, ErrNotBidder
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Lock order is always item before offer.
	item, err := s.itemRepo.GetItemByIDForUpdate(ctx, tx, preview.ItemID)
	if err != nil {
		return nil, ErrItemNotFound
	}

	offer, err := s.offerRepo.GetOfferByIDForUpdate(ctx, tx, cmd.OfferID)
	if err != nil {
		return nil, ErrOfferNotFound
	}

	if offer.Status != OfferStatusActive {
		return nil, ErrOfferNotActive
	}

	if !item.AcceptsOffers() {
		return nil, ErrItemNotOpen
	}

	if cmd.Price != nil {
		offer.Price = *cmd.Price
	}
	if cmd.Message != nil {
		offer.Message = *cmd.Message
	}
	offer.UpdatedAt = time.Now()

	if err := s.offerRepo.UpdateOffer(ctx, tx, offer); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return offer, nil
}

// CancelOffer withdraws the caller's active offer. Terminal and
// irreversible. A bidder may still cancel after the item left the active
// state, as long as their offer was not the selected winner.
func (s *Service) CancelOffer(ctx context.Context, cmd CancelOfferCommand) (*Offer, error) {
	preview, err := s.offerRepo.GetOfferByID(ctx, cmd.OfferID)
	if err != nil {
		return nil, ErrOfferNotFound
	}

	if preview.BidderID != cmd.CallerID {
		return nil, ErrNotBidder
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	item, err := s.itemRepo.GetItemByIDForUpdate(ctx, tx, preview.ItemID)
	if err != nil {
		return nil, ErrItemNotFound
	}

	offer, err := s.offerRepo.GetOfferByIDForUpdate(ctx, tx, cmd.OfferID)
	if err != nil {
		return nil, ErrOfferNotFound
	}

	if offer.Status != OfferStatusActive {
		return nil, ErrOfferNotActive
	}

	offer.Status = OfferStatusCanceled
	offer.UpdatedAt = time.Now()

	if err := s.offerRepo.UpdateOffer(ctx, tx, offer); err != nil {
		return nil, fmt.Errorf("failed to cancel offer: %w", err)
	}

	event, err := newOutboxEvent(EventTypeOfferCanceled, NegotiationEvent{
		ItemID:    item.ID,
		OfferID:   offer.ID,
		BidderID:  offer.BidderID,
		OwnerID:   item.OwnerID,
		Timestamp: offer.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	if err := s.outboxRepo.SaveEvent(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return offer, nil
}

// ConfirmOffer records the caller's side of the confirmation handshake.
// Setting a flag is idempotent; once both flags are set the offer and its
// item move to negotiated in the same commit, so no reader can observe one
// flipped without the other.
func (s *Service) ConfirmOffer(ctx context.Context, cmd ConfirmOfferCommand) (*ConfirmResult, error) {
	preview, err := s.offerRepo.GetOfferByID(ctx, cmd.OfferID)
	if err != nil {
		return nil, ErrOfferNotFound
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	item, err := s.itemRepo.GetItemByIDForUpdate(ctx, tx, preview.ItemID)
	if err != nil {
		return nil, ErrItemNotFound
	}

	offer, err := s.offerRepo.GetOfferByIDForUpdate(ctx, tx, cmd.OfferID)
	if err != nil {
		return nil, ErrOfferNotFound
	}

	if offer.Status != OfferStatusPendingConfirmation {
		return nil, ErrOfferNotPending
	}

	switch cmd.CallerID {
	case item.OwnerID:
		offer.OwnerConfirmed = true
	case offer.BidderID:
		offer.BidderConfirmed = true
	default:
		return nil, ErrNotParticipant
	}

	now := time.Now()
	offer.UpdatedAt = now

	finalized := offer.OwnerConfirmed && offer.BidderConfirmed
	if finalized {
		offer.Status = OfferStatusNegotiated
	}

	if err := s.offerRepo.UpdateOffer(ctx, tx, offer); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	if finalized {
		if err := s.itemRepo.UpdateStatus(ctx, tx, item.ID, items.ItemStatusNegotiated); err != nil {
			return nil, fmt.Errorf("failed to update item status: %w", err)
		}
		item.Status = items.ItemStatusNegotiated

		event, err := newOutboxEvent(EventTypeNegotiationFinalized, NegotiationEvent{
			ItemID:    item.ID,
			OfferID:   offer.ID,
			BidderID:  offer.BidderID,
			OwnerID:   item.OwnerID,
			Price:     offer.Price,
			Timestamp: now,
		})
		if err != nil {
			return nil, err
		}
		if err := s.outboxRepo.SaveEvent(ctx, tx, event); err != nil {
			return nil, fmt.Errorf("failed to save outbox event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &ConfirmResult{Offer: offer, Item: item, Finalized: finalized}, nil
}

// DeclineOffer rejects a pending deal. Either party may decline; both the
// offer and the item become canceled in the same commit. Terminal and
// irreversible.
func (s *Service) DeclineOffer(ctx context.Context, cmd DeclineOfferCommand) (*ConfirmResult, error) {
	preview, err := s.offerRepo.GetOfferByID(ctx, cmd.OfferID)
	if err != nil {
		return nil, ErrOfferNotFound
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	item, err := s.itemRepo.GetItemByIDForUpdate(ctx, tx, preview.ItemID)
	if err != nil {
		return nil, ErrItemNotFound
	}

	offer, err := s.offerRepo.GetOfferByIDForUpdate(ctx, tx, cmd.OfferID)
	if err != nil {
		return nil, ErrOfferNotFound
	}

	if offer.Status != OfferStatusPendingConfirmation {
		return nil, ErrOfferNotPending
	}

	if cmd.CallerID != item.OwnerID && cmd.CallerID != offer.BidderID {
		return nil, ErrNotParticipant
	}

	now := time.Now()
	offer.Status = OfferStatusCanceled
	offer.UpdatedAt = now

	if err := s.offerRepo.UpdateOffer(ctx, tx, offer); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	if err := s.itemRepo.UpdateStatus(ctx, tx, item.ID, items.ItemStatusCanceled); err != nil {
		return nil, fmt.Errorf("failed to update item status: %w", err)
	}
	item.Status = items.ItemStatusCanceled

	event, err := newOutboxEvent(EventTypeNegotiationDeclined, NegotiationEvent{
		ItemID:    item.ID,
		OfferID:   offer.ID,
		BidderID:  offer.BidderID,
		OwnerID:   item.OwnerID,
		Timestamp: now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.outboxRepo.SaveEvent(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &ConfirmResult{Offer: offer, Item: item, Finalized: false}, nil
}

// ExpireItem drives one item through the expiry transition. Invoked only by
// the expiration sweep, never by a user request. Reapplying it to an item
// that already left the active state is a no-op, which makes the sweep
// idempotent under overlap, retries and crashes.
func (s *Service) ExpireItem(ctx context.Context, itemID uuid.UUID, now time.Time) (ExpireOutcome, error) {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return ExpireOutcomeSkipped, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	item, err := s.itemRepo.GetItemByIDForUpdate(ctx, tx, itemID)
	if err != nil {
		return ExpireOutcomeSkipped, ErrItemNotFound
	}

	// A concurrent sweep tick or a user transition may have gotten here
	// first. Status is re-checked under the lock.
	if item.Status != items.ItemStatusActive {
		return ExpireOutcomeSkipped, nil
	}

	if !item.IsExpired(now) {
		return ExpireOutcomeSkipped, nil
	}

	offers, err := s.offerRepo.ListActiveOffersForItemForUpdate(ctx, tx, itemID)
	if err != nil {
		return ExpireOutcomeSkipped, fmt.Errorf("failed to load live offers: %w", err)
	}

	if len(offers) == 0 {
		if err := s.itemRepo.UpdateStatus(ctx, tx, itemID, items.ItemStatusExpired); err != nil {
			return ExpireOutcomeSkipped, fmt.Errorf("failed to expire item: %w", err)
		}

		event, err := newOutboxEvent(EventTypeItemExpired, NegotiationEvent{
			ItemID:    item.ID,
			OwnerID:   item.OwnerID,
			Timestamp: now,
		})
		if err != nil {
			return ExpireOutcomeSkipped, err
		}
		if err := s.outboxRepo.SaveEvent(ctx, tx, event); err != nil {
			return ExpireOutcomeSkipped, fmt.Errorf("failed to save outbox event: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return ExpireOutcomeSkipped, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return ExpireOutcomeExpired, nil
	}

	winner := selectWinner(offers)
	winner.Status = OfferStatusPendingConfirmation
	winner.UpdatedAt = now

	if err := s.offerRepo.UpdateOffer(ctx, tx, winner); err != nil {
		return ExpireOutcomeSkipped, fmt.Errorf("failed to update winning offer: %w", err)
	}

	if err := s.itemRepo.UpdateStatus(ctx, tx, itemID, items.ItemStatusPendingConfirmation); err != nil {
		return ExpireOutcomeSkipped, fmt.Errorf("failed to update item status: %w", err)
	}

	event, err := newOutboxEvent(EventTypeNegotiationPending, NegotiationEvent{
		ItemID:    item.ID,
		OfferID:   winner.ID,
		BidderID:  winner.BidderID,
		OwnerID:   item.OwnerID,
		Price:     winner.Price,
		Timestamp: now,
	})
	if err != nil {
		return ExpireOutcomeSkipped, err
	}
	if err := s.outboxRepo.SaveEvent(ctx, tx, event); err != nil {
		return ExpireOutcomeSkipped, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return ExpireOutcomeSkipped, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ExpireOutcomePending, nil
}

// GetOffer retrieves an offer by ID
func (s *Service) GetOffer(ctx context.Context, offerID uuid.UUID) (*Offer, error) {
	offer, err := s.offerRepo.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, ErrOfferNotFound
	}
	return offer, nil
}

// ListItemOffers retrieves the live offers on a listing, newest first
func (s *Service) ListItemOffers(ctx context.Context, itemID uuid.UUID) ([]*Offer, error) {
	if _, err := s.itemRepo.GetItemByID(ctx, itemID); err != nil {
		return nil, ErrItemNotFound
	}

	offers, err := s.offerRepo.ListLiveOffersForItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}

// ListBidderOffers retrieves a user's live offers, newest first
func (s *Service) ListBidderOffers(ctx context.Context, bidderID uuid.UUID) ([]*Offer, error) {
	offers, err := s.offerRepo.ListLiveOffersForBidder(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}
