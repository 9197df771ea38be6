package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nis2meetu/paymongo-server/internal/domain"
	"github.com/nis2meetu/paymongo-server/internal/paymongo"
	"github.com/nis2meetu/paymongo-server/internal/repository"
)

// Reconciler matches a normalized payment event to its transactions,
// persists the status transition and hands paid transactions to the
// fulfillment engine.
type Reconciler struct {
	txs       TransactionStore
	fulfiller *Fulfillment
	pub       Publisher
	log       *zap.Logger
}

func NewReconciler(txs TransactionStore, fulfiller *Fulfillment, pub Publisher, log *zap.Logger) *Reconciler {
	return &Reconciler{txs: txs, fulfiller: fulfiller, pub: pub, log: log}
}

// OutcomeEvent is the fan-out message published after reconciliation.
type OutcomeEvent struct {
	Event      string `json:"event"`
	Version    int    `json:"version"`
	OccurredAt string `json:"occurred_at"`
	Data       struct {
		TransactionID string `json:"transaction_id"`
		ReferenceID   string `json:"reference_id"`
		UserID        string `json:"user_id"`
		Status        string `json:"status"`
	} `json:"data"`
}

// ProcessEvent runs one webhook delivery end to end. A returned error means
// the delivery should be retried by the provider (500), except for
// ErrTransactionNotFound which the handler answers 404: the transaction may
// simply not be durably written yet.
func (r *Reconciler) ProcessEvent(ctx context.Context, evt paymongo.PaymentEvent) error {
	txs, err := r.txs.ByReferenceID(ctx, evt.ReferenceID)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		return ErrTransactionNotFound
	}
	if len(txs) > 1 {
		// reference_id is unique; seeing more rows means drifted data.
		// Reconcile each row independently rather than failing all of them.
		r.log.Warn("multiple transactions share a reference id",
			zap.String("reference_id", evt.ReferenceID),
			zap.Int("count", len(txs)))
	}

	status := statusFor(evt.Outcome)

	for i := range txs {
		t := &txs[i]
		if err := r.txs.UpdateStatus(ctx, t.ID, status); err != nil {
			return err
		}
		t.Status = status

		if status != domain.StatusPaid || t.UserID == "" || t.OfferID == nil {
			continue
		}
		if err := r.fulfiller.Fulfill(ctx, t); err != nil {
			switch {
			case errors.Is(err, repository.ErrAlreadyFulfilled):
				r.log.Info("rewards already granted, skipping",
					zap.String("transaction_id", t.ID))
			case errors.Is(err, ErrOfferNotFound):
				r.log.Warn("transaction references unknown offer, skipping grant",
					zap.String("transaction_id", t.ID),
					zap.String("offer_id", *t.OfferID))
			default:
				return err
			}
		}
	}

	r.publish(ctx, evt, txs, status)
	return nil
}

// publish is best effort: losing a fan-out message only delays a player
// notification, it never affects reconciliation.
func (r *Reconciler) publish(ctx context.Context, evt paymongo.PaymentEvent, txs []domain.Transaction, status domain.TransactionStatus) {
	if r.pub == nil {
		return
	}
	key := routingKey(status)
	if key == "" {
		return
	}
	for _, t := range txs {
		out := OutcomeEvent{Event: key, Version: 1, OccurredAt: time.Now().UTC().Format(time.RFC3339)}
		out.Data.TransactionID = t.ID
		out.Data.ReferenceID = evt.ReferenceID
		out.Data.UserID = t.UserID
		out.Data.Status = string(status)
		if err := r.pub.PublishJSON(ctx, key, out); err != nil {
			r.log.Warn("publish outcome event failed",
				zap.String("key", key),
				zap.String("transaction_id", t.ID),
				zap.Error(err))
		}
	}
}

func statusFor(out paymongo.Outcome) domain.TransactionStatus {
	switch out {
	case paymongo.OutcomePaid:
		return domain.StatusPaid
	case paymongo.OutcomeFailed:
		return domain.StatusFailed
	case paymongo.OutcomeRefunded:
		return domain.StatusRefunded
	default:
		return domain.StatusUnknown
	}
}

func routingKey(status domain.TransactionStatus) string {
	switch status {
	case domain.StatusPaid:
		return "payment.paid"
	case domain.StatusFailed:
		return "payment.failed"
	case domain.StatusRefunded:
		return "payment.refunded"
	default:
		return ""
	}
}
