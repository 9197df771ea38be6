package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nis2meetu/paymongo-server/internal/domain"
	"github.com/nis2meetu/paymongo-server/internal/paymongo"
)

func newReconciler(store *memStore, pub Publisher) *Reconciler {
	f := NewFulfillment(store, fixtureCatalog(), zap.NewNop())
	return NewReconciler(store, f, pub, zap.NewNop())
}

func paidEvent(ref string) paymongo.PaymentEvent {
	return paymongo.PaymentEvent{
		Type:        "checkout_session.payment.paid",
		ReferenceID: ref,
		Outcome:     paymongo.OutcomePaid,
	}
}

func TestProcessEventPaidGrantsOnce(t *testing.T) {
	store := newMemStore()
	pub := &capturePublisher{}
	r := newReconciler(store, pub)
	seedPending(t, store)

	// the provider retries: same event three times
	for i := 0; i < 3; i++ {
		require.NoError(t, r.ProcessEvent(context.Background(), paidEvent("ref_1")))
	}

	tx := store.transaction("tx_1")
	assert.Equal(t, domain.StatusPaid, tx.Status)
	assert.True(t, tx.Fulfilled)
	assert.Equal(t, int64(5), store.inventory("player_1").Gems, "N deliveries grant exactly once")
	assert.Equal(t, []string{"payment.paid", "payment.paid", "payment.paid"}, pub.published())
}

func TestProcessEventNotFound(t *testing.T) {
	store := newMemStore()
	r := newReconciler(store, nil)

	err := r.ProcessEvent(context.Background(), paidEvent("ref_unknown"))
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assert.Zero(t, store.grantCalls)
}

func TestProcessEventFailedUpdatesStatusOnly(t *testing.T) {
	store := newMemStore()
	r := newReconciler(store, nil)
	seedPending(t, store)

	evt := paymongo.PaymentEvent{Type: "payment.failed", ReferenceID: "ref_1", Outcome: paymongo.OutcomeFailed}
	require.NoError(t, r.ProcessEvent(context.Background(), evt))

	tx := store.transaction("tx_1")
	assert.Equal(t, domain.StatusFailed, tx.Status)
	assert.False(t, tx.Fulfilled)
	assert.Zero(t, store.grantCalls)
}

func TestProcessEventRefundAfterPaidKeepsRewards(t *testing.T) {
	store := newMemStore()
	r := newReconciler(store, nil)
	seedPending(t, store)

	require.NoError(t, r.ProcessEvent(context.Background(), paidEvent("ref_1")))
	require.NoError(t, r.ProcessEvent(context.Background(), paymongo.PaymentEvent{
		Type: "payment.refunded", ReferenceID: "ref_1", Outcome: paymongo.OutcomeRefunded,
	}))

	tx := store.transaction("tx_1")
	assert.Equal(t, domain.StatusRefunded, tx.Status, "latest provider state wins")
	assert.True(t, tx.Fulfilled, "refund never reverts the flag")
	assert.Equal(t, int64(5), store.inventory("player_1").Gems, "no re-grant, no silent deduction")

	// a late duplicate of the paid event after the refund must not re-grant
	require.NoError(t, r.ProcessEvent(context.Background(), paidEvent("ref_1")))
	assert.Equal(t, int64(5), store.inventory("player_1").Gems)
}

func TestProcessEventUnknownOutcome(t *testing.T) {
	store := newMemStore()
	r := newReconciler(store, nil)
	seedPending(t, store)

	evt := paymongo.PaymentEvent{Type: "something.new", ReferenceID: "ref_1", Outcome: paymongo.OutcomeUnknown}
	require.NoError(t, r.ProcessEvent(context.Background(), evt))

	assert.Equal(t, domain.StatusUnknown, store.transaction("tx_1").Status)
	assert.Zero(t, store.grantCalls)
}

func TestProcessEventFreeFormPurchaseSkipsFulfillment(t *testing.T) {
	store := newMemStore()
	r := newReconciler(store, nil)
	tx := &domain.Transaction{
		ID: "tx_free", ReferenceID: "ref_free", UserID: "player_1",
		Status: domain.StatusPending, Quantity: 1, // no offer attached
	}
	require.NoError(t, store.Create(context.Background(), tx))

	require.NoError(t, r.ProcessEvent(context.Background(), paidEvent("ref_free")))

	assert.Equal(t, domain.StatusPaid, store.transaction("tx_free").Status)
	assert.Zero(t, store.grantCalls)
}

func TestProcessEventUnknownOfferStillAcks(t *testing.T) {
	store := newMemStore()
	r := newReconciler(store, nil)
	tx := &domain.Transaction{
		ID: "tx_1", ReferenceID: "ref_1", UserID: "player_1",
		OfferID: strptr("offer_gone"), Quantity: 1, Status: domain.StatusPending,
	}
	require.NoError(t, store.Create(context.Background(), tx))

	// data-integrity anomaly: contained, logged, not a delivery failure
	require.NoError(t, r.ProcessEvent(context.Background(), paidEvent("ref_1")))
	got := store.transaction("tx_1")
	assert.Equal(t, domain.StatusPaid, got.Status)
	assert.False(t, got.Fulfilled)
}

func seedPending(t *testing.T, store *memStore) {
	t.Helper()
	tx := &domain.Transaction{
		ID: "tx_1", ReferenceID: "ref_1", UserID: "player_1",
		OfferID: strptr("offer_bundle_a"), Quantity: 1, Status: domain.StatusPending,
	}
	require.NoError(t, store.Create(context.Background(), tx))
}
