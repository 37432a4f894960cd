package negotiation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOfferStatus_IsLive(t *testing.T) {
	assert.True(t, OfferStatusActive.IsLive())
	assert.True(t, OfferStatusPendingConfirmation.IsLive())
	assert.False(t, OfferStatusNegotiated.IsLive())
	assert.False(t, OfferStatusCanceled.IsLive())
}

func TestOfferStatus_IsTerminal(t *testing.T) {
	assert.False(t, OfferStatusActive.IsTerminal())
	assert.False(t, OfferStatusPendingConfirmation.IsTerminal())
	assert.True(t, OfferStatusNegotiated.IsTerminal())
	assert.True(t, OfferStatusCanceled.IsTerminal())
}

func TestOfferStatus_IsValid(t *testing.T) {
	assert.True(t, OfferStatusActive.IsValid())
	assert.False(t, OfferStatus("ativo").IsValid())
	assert.False(t, OfferStatus("").IsValid())
}

func TestSelectWinner(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	makeOffer := func(price int64, createdAt time.Time) *Offer {
		return &Offer{
			ID:        uuid.New(),
			Price:     price,
			Status:    OfferStatusActive,
			CreatedAt: createdAt,
		}
	}

	t.Run("highest price wins", func(t *testing.T) {
		low := makeOffer(50, base)
		negative := makeOffer(-20, base.Add(time.Minute))
		high := makeOffer(200, base.Add(2*time.Minute))

		winner := selectWinner([]*Offer{low, negative, high})
		assert.Equal(t, high.ID, winner.ID)
	})

	t.Run("earliest offer breaks price ties", func(t *testing.T) {
		later := makeOffer(200, base.Add(time.Hour))
		earlier := makeOffer(200, base)

		winner := selectWinner([]*Offer{later, earlier})
		assert.Equal(t, earlier.ID, winner.ID)
	})

	t.Run("result is independent of input order", func(t *testing.T) {
		a := makeOffer(50, base)
		b := makeOffer(200, base.Add(time.Minute))
		c := makeOffer(200, base.Add(2*time.Minute))

		winner1 := selectWinner([]*Offer{a, b, c})
		winner2 := selectWinner([]*Offer{c, a, b})
		winner3 := selectWinner([]*Offer{b, c, a})

		assert.Equal(t, b.ID, winner1.ID)
		assert.Equal(t, winner1.ID, winner2.ID)
		assert.Equal(t, winner2.ID, winner3.ID)
	})

	t.Run("single negative offer still wins", func(t *testing.T) {
		only := makeOffer(-500, base)

		winner := selectWinner([]*Offer{only})
		assert.Equal(t, only.ID, winner.ID)
	})

	t.Run("empty slice yields no winner", func(t *testing.T) {
		assert.Nil(t, selectWinner(nil))
	})
}
