package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nis2meetu/paymongo-server/internal/domain"
	"github.com/nis2meetu/paymongo-server/internal/paymongo"
)

var ErrMissingReference = errors.New("checkout session returned no reference")

// Checkout opens a hosted PayMongo session and records the Pending
// transaction the later webhook will reconcile against. The transaction must
// be durable before the checkout URL is handed out, otherwise a fast payer
// races the insert.
type Checkout struct {
	client *paymongo.Client
	txs    TransactionStore
	log    *zap.Logger
}

func NewCheckout(client *paymongo.Client, txs TransactionStore, log *zap.Logger) *Checkout {
	return &Checkout{client: client, txs: txs, log: log}
}

type CreateCheckoutInput struct {
	Name     string
	Amount   int64 // centavos
	UserID   string
	OfferID  *string
	Quantity int
}

type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
	ReferenceID string `json:"reference_id"`
}

func (s *Checkout) Create(ctx context.Context, in CreateCheckoutInput) (*CheckoutResult, error) {
	cs, err := s.client.CreateCheckoutSession(ctx, in.Name, in.Amount, in.Quantity)
	if err != nil {
		return nil, err
	}
	if cs.ReferenceNumber == "" {
		return nil, ErrMissingReference
	}

	t := &domain.Transaction{
		ReferenceID: cs.ReferenceNumber,
		UserID:      in.UserID,
		OfferID:     in.OfferID,
		Quantity:    in.Quantity,
		Status:      domain.StatusPending,
	}
	if err := s.txs.Create(ctx, t); err != nil {
		return nil, err
	}

	s.log.Info("checkout session created",
		zap.String("reference_id", t.ReferenceID),
		zap.String("transaction_id", t.ID),
		zap.String("user_id", t.UserID))

	return &CheckoutResult{CheckoutURL: cs.CheckoutURL, ReferenceID: cs.ReferenceNumber}, nil
}
