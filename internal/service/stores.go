package service

import (
	"context"
	"errors"

	"github.com/nis2meetu/paymongo-server/internal/domain"
)

// Store errors the HTTP edge maps onto response codes. Anything else coming
// out of a store is treated as transient and answered 500 so the provider
// retries.
var (
	ErrTransactionNotFound = errors.New("no transaction for reference id")
	ErrOfferNotFound       = errors.New("offer not found")
)

// TransactionStore is the adapter over the transactions collection. The
// GrantIfNotFulfilled primitive must be atomic: check the fulfilled flag,
// apply the grant and set the flag as one unit, or concurrent duplicate
// deliveries can both grant.
type TransactionStore interface {
	Create(ctx context.Context, t *domain.Transaction) error
	ByReferenceID(ctx context.Context, ref string) ([]domain.Transaction, error)
	UpdateStatus(ctx context.Context, id string, to domain.TransactionStatus) error
	GrantIfNotFulfilled(ctx context.Context, txID string, g domain.RewardGrant) error
}

// CatalogStore is the read-only view of items and offers.
type CatalogStore interface {
	OfferByID(ctx context.Context, id string) (*domain.Offer, error)
	ItemByID(ctx context.Context, id string) (*domain.Item, error)
}

// Publisher fans reconciled outcomes out to the payment exchange. A nil
// Publisher disables fan-out (single-binary dev setups run without rabbit).
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}
