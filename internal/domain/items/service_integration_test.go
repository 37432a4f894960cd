//go:build integration

package items_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infradb "github.com/garimpo/backend/internal/adapters/database"
	"github.com/garimpo/backend/internal/domain/items"
	"github.com/garimpo/backend/internal/domain/negotiation"
	"github.com/garimpo/backend/pkg/database"
	"github.com/garimpo/backend/pkg/testhelpers"
)

func seedUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, 'x')
	`, id, "user-"+id.String()[:8], id.String()[:8]+"@test.local")
	require.NoError(t, err, "Failed to seed test user")
	return id
}

func TestItemService_CancelListing(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	ctx := context.Background()

	txManager := database.NewPostgresTransactionManager(pool, 5*time.Second)
	itemRepo := infradb.NewPostgresItemRepository(pool)
	offerRepo := infradb.NewPostgresOfferRepository(pool)
	outboxRepo := infradb.NewPostgresOutboxRepository(pool)

	itemService := items.NewService(txManager, itemRepo, offerRepo)
	negotiationService := negotiation.NewService(txManager, itemRepo, offerRepo, outboxRepo)

	ownerID := seedUser(t, pool)
	bidderID := seedUser(t, pool)

	item, err := itemService.CreateItem(ctx, items.CreateItemCommand{
		OwnerID:      ownerID,
		Title:        "Old Fridge",
		Category:     "Appliances",
		OfferType:    items.OfferTypePay,
		DurationDays: 7,
	})
	require.NoError(t, err)

	offer, err := negotiationService.SubmitOffer(ctx, negotiation.SubmitOfferCommand{
		ItemID:   item.ID,
		BidderID: bidderID,
		Price:    5000,
	})
	require.NoError(t, err)

	t.Run("only the owner can cancel", func(t *testing.T) {
		_, err := itemService.CancelListing(ctx, items.CancelListingCommand{
			ItemID: item.ID,
			UserID: bidderID,
		})
		assert.ErrorIs(t, err, items.ErrUnauthorized)
	})

	t.Run("canceling cascades to live offers", func(t *testing.T) {
		canceled, err := itemService.CancelListing(ctx, items.CancelListingCommand{
			ItemID: item.ID,
			UserID: ownerID,
		})
		require.NoError(t, err)
		assert.Equal(t, items.ItemStatusCanceled, canceled.Status)

		stored, err := negotiationService.GetOffer(ctx, offer.ID)
		require.NoError(t, err)
		assert.Equal(t, negotiation.OfferStatusCanceled, stored.Status)
	})

	t.Run("cancel is not repeatable", func(t *testing.T) {
		_, err := itemService.CancelListing(ctx, items.CancelListingCommand{
			ItemID: item.ID,
			UserID: ownerID,
		})
		assert.ErrorIs(t, err, items.ErrCannotCancel)
	})
}
