package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nis2meetu/paymongo-server/internal/domain"
	"github.com/nis2meetu/paymongo-server/internal/repository"
)

func strptr(s string) *string { return &s }

func fixtureCatalog() *memCatalog {
	return &memCatalog{
		items: map[string]*domain.Item{
			"gem_small":   {ID: "gem_small", Category: domain.CategoryGem, Description: "A small pile of gems"},
			"hint_pack":   {ID: "hint_pack", Category: domain.CategoryHint, Description: "Hints"},
			"full_hearts": {ID: "full_hearts", Category: domain.CategoryStamina, Description: "Full stamina refill"},
			"sticker":     {ID: "sticker", Category: domain.CategoryGeneric, Description: "Collectible sticker"},
		},
		offers: map[string]*domain.Offer{
			"offer_bundle_a": {
				ID: "offer_bundle_a", Title: "Starter Bundle", IsBundle: true,
				Items: []domain.OfferItem{
					{OfferID: "offer_bundle_a", ItemID: "gem_small", Quantity: 5, Position: 0},
					{OfferID: "offer_bundle_a", ItemID: "sticker", Quantity: 2, Position: 1},
				},
			},
			"offer_refill": {
				ID: "offer_refill", Title: "Heart Refill",
				Items: []domain.OfferItem{
					{OfferID: "offer_refill", ItemID: "full_hearts", Quantity: 3, Position: 0},
				},
			},
			"offer_drifted": {
				ID: "offer_drifted", Title: "Half Gone",
				Items: []domain.OfferItem{
					{OfferID: "offer_drifted", ItemID: "removed_item", Quantity: 9, Position: 0},
					{OfferID: "offer_drifted", ItemID: "hint_pack", Quantity: 4, Position: 1},
				},
			},
		},
	}
}

func seedPaid(t *testing.T, store *memStore, offerID string) *domain.Transaction {
	t.Helper()
	tx := &domain.Transaction{
		ID:          "tx_1",
		ReferenceID: "ref_1",
		UserID:      "player_1",
		OfferID:     strptr(offerID),
		Quantity:    1,
		Status:      domain.StatusPaid,
	}
	require.NoError(t, store.Create(context.Background(), tx))
	return tx
}

func TestFulfillGemAndGenericBundle(t *testing.T) {
	store := newMemStore()
	f := NewFulfillment(store, fixtureCatalog(), zap.NewNop())
	tx := seedPaid(t, store, "offer_bundle_a")

	require.NoError(t, f.Fulfill(context.Background(), tx))

	inv := store.inventory("player_1")
	assert.Equal(t, int64(5), inv.Gems)
	assert.Equal(t, int64(0), inv.Hints)

	entry, ok := store.entry("player_1", "offer_bundle_a")
	require.True(t, ok, "generic reward keyed by offer id")
	assert.Equal(t, int64(2), entry.Quantity)
	assert.Equal(t, "Collectible sticker", entry.Description)

	assert.True(t, store.transaction("tx_1").Fulfilled)

	// second fulfillment of the same transaction changes nothing
	tx2 := store.transaction("tx_1")
	err := f.Fulfill(context.Background(), &tx2)
	assert.ErrorIs(t, err, repository.ErrAlreadyFulfilled)
	inv = store.inventory("player_1")
	assert.Equal(t, int64(5), inv.Gems)
	entry, _ = store.entry("player_1", "offer_bundle_a")
	assert.Equal(t, int64(2), entry.Quantity)
}

func TestFulfillStaminaResetsUIState(t *testing.T) {
	store := newMemStore()
	f := NewFulfillment(store, fixtureCatalog(), zap.NewNop())
	tx := seedPaid(t, store, "offer_refill")

	// prior UI state must not matter
	store.ui["player_1"] = &domain.PlayerUIState{UserID: "player_1", CurrentHearts: 1, HalfStep: true}

	require.NoError(t, f.Fulfill(context.Background(), tx))

	ui := store.ui["player_1"]
	assert.Equal(t, domain.MaxHearts, ui.CurrentHearts)
	assert.False(t, ui.HalfStep)
	// a refill is a reset, not a counter: quantity 3 does not accumulate
	inv := store.inventory("player_1")
	assert.Zero(t, inv.Gems)
	assert.Zero(t, inv.Hints)
}

func TestFulfillSkipsMissingItemLines(t *testing.T) {
	store := newMemStore()
	f := NewFulfillment(store, fixtureCatalog(), zap.NewNop())
	tx := seedPaid(t, store, "offer_drifted")

	require.NoError(t, f.Fulfill(context.Background(), tx))

	// the removed item line is skipped, the hint line still lands
	inv := store.inventory("player_1")
	assert.Equal(t, int64(4), inv.Hints)
	assert.True(t, store.transaction("tx_1").Fulfilled)
}

func TestFulfillUnknownOffer(t *testing.T) {
	store := newMemStore()
	f := NewFulfillment(store, fixtureCatalog(), zap.NewNop())
	tx := seedPaid(t, store, "offer_gone")

	err := f.Fulfill(context.Background(), tx)
	assert.ErrorIs(t, err, ErrOfferNotFound)
	assert.False(t, store.transaction("tx_1").Fulfilled)
}

func TestFulfillPurchaseQuantityMultiplies(t *testing.T) {
	store := newMemStore()
	f := NewFulfillment(store, fixtureCatalog(), zap.NewNop())
	tx := &domain.Transaction{
		ID: "tx_q", ReferenceID: "ref_q", UserID: "player_1",
		OfferID: strptr("offer_bundle_a"), Quantity: 3, Status: domain.StatusPaid,
	}
	require.NoError(t, store.Create(context.Background(), tx))

	require.NoError(t, f.Fulfill(context.Background(), tx))

	inv := store.inventory("player_1")
	assert.Equal(t, int64(15), inv.Gems)
	entry, _ := store.entry("player_1", "offer_bundle_a")
	assert.Equal(t, int64(6), entry.Quantity)
}

func TestFulfillStoreFailureLeavesFlagUnset(t *testing.T) {
	store := newMemStore()
	store.grantErr = errors.New("connection reset")
	f := NewFulfillment(store, fixtureCatalog(), zap.NewNop())
	tx := seedPaid(t, store, "offer_bundle_a")

	err := f.Fulfill(context.Background(), tx)
	require.Error(t, err)
	assert.False(t, store.transaction("tx_1").Fulfilled, "retry must be able to complete the grant")

	// the retried delivery succeeds once the store recovers
	store.grantErr = nil
	tx2 := store.transaction("tx_1")
	require.NoError(t, f.Fulfill(context.Background(), &tx2))
	assert.True(t, store.transaction("tx_1").Fulfilled)
	assert.Equal(t, int64(5), store.inventory("player_1").Gems)
}
