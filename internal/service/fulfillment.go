package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nis2meetu/paymongo-server/internal/domain"
	"github.com/nis2meetu/paymongo-server/internal/repository"
)

// Fulfillment expands a paid transaction's offer into concrete rewards and
// applies them to the player. Expansion is pure computation; all writes go
// through TransactionStore.GrantIfNotFulfilled so the grant and the
// fulfilled flag land together.
type Fulfillment struct {
	txs     TransactionStore
	catalog CatalogStore
	log     *zap.Logger
}

func NewFulfillment(txs TransactionStore, catalog CatalogStore, log *zap.Logger) *Fulfillment {
	return &Fulfillment{txs: txs, catalog: catalog, log: log}
}

// Fulfill grants the rewards for one transaction. Returns
// repository.ErrAlreadyFulfilled when an earlier delivery got here first and
// ErrOfferNotFound when the offer has left the catalog; both are skips, not
// failures. Any other error aborts without setting the fulfilled flag so a
// retried delivery can complete the grant.
func (f *Fulfillment) Fulfill(ctx context.Context, t *domain.Transaction) error {
	if t.Fulfilled {
		return repository.ErrAlreadyFulfilled
	}
	if t.OfferID == nil || t.UserID == "" {
		return nil
	}

	offer, err := f.catalog.OfferByID(ctx, *t.OfferID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOfferNotFound
	}
	if err != nil {
		return err
	}

	grant, err := f.expand(ctx, t, offer)
	if err != nil {
		return err
	}
	if grant.Empty() {
		f.log.Warn("offer expanded to nothing",
			zap.String("transaction_id", t.ID),
			zap.String("offer_id", offer.ID))
	}

	return f.txs.GrantIfNotFulfilled(ctx, t.ID, grant)
}

// expand aggregates the offer's lines by reward category. A line whose item
// has dropped out of the catalog is skipped, not fatal: catalogs drift and a
// player should still receive the rest of the bundle.
func (f *Fulfillment) expand(ctx context.Context, t *domain.Transaction, offer *domain.Offer) (domain.RewardGrant, error) {
	var (
		grant      domain.RewardGrant
		genericQty int64
		genericDsc []string
	)

	for _, oi := range offer.Items {
		item, err := f.catalog.ItemByID(ctx, oi.ItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			f.log.Warn("offer references unknown item, skipping line",
				zap.String("offer_id", offer.ID),
				zap.String("item_id", oi.ItemID))
			continue
		}
		if err != nil {
			return domain.RewardGrant{}, err
		}

		qty := oi.Quantity * int64(t.Quantity)
		switch item.Category {
		case domain.CategoryGem:
			grant.Gems += qty
		case domain.CategoryHint:
			grant.Hints += qty
		case domain.CategoryStamina:
			// a refill, not a counter: quantity is deliberately ignored
			grant.StaminaReset = true
		case domain.CategoryGeneric:
			genericQty += qty
			genericDsc = append(genericDsc, item.Description)
		default:
			f.log.Warn("item has unknown reward category, skipping line",
				zap.String("item_id", item.ID),
				zap.String("category", string(item.Category)))
		}
	}

	if genericQty > 0 {
		grant.Entries = append(grant.Entries, domain.InventoryEntry{
			RefID:       offer.ID,
			Quantity:    genericQty,
			Description: strings.Join(genericDsc, ", "),
		})
	}
	return grant, nil
}
