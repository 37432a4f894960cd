package cache

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/garimpo/backend/internal/domain/items"
)

func TestListingKey(t *testing.T) {
	t.Run("equivalent queries share one key", func(t *testing.T) {
		implicit := listingKey(items.ListItemsQuery{}.Normalize())
		explicit := listingKey(items.ListItemsQuery{
			Status:   items.ItemStatusActive,
			Page:     1,
			PageSize: 20,
		}.Normalize())

		assert.Equal(t, explicit, implicit)
	})

	t.Run("oversized page size collapses to the default", func(t *testing.T) {
		def := listingKey(items.ListItemsQuery{}.Normalize())
		oversized := listingKey(items.ListItemsQuery{PageSize: 500}.Normalize())

		assert.Equal(t, def, oversized)
	})

	t.Run("distinct filters get distinct keys", func(t *testing.T) {
		base := listingKey(items.ListItemsQuery{}.Normalize())

		assert.NotEqual(t, base, listingKey(items.ListItemsQuery{Page: 2}.Normalize()))
		assert.NotEqual(t, base, listingKey(items.ListItemsQuery{Category: "Appliances"}.Normalize()))
		assert.NotEqual(t, base, listingKey(items.ListItemsQuery{OwnerID: uuid.New()}.Normalize()))
		assert.NotEqual(t, base, listingKey(items.ListItemsQuery{Status: items.ItemStatusExpired}.Normalize()))
	})
}
