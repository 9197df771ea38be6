package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/nis2meetu/paymongo-server/internal/domain"
	"github.com/nis2meetu/paymongo-server/internal/service"
	"github.com/nis2meetu/paymongo-server/pkg/mq"
)

type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// Worker turns payment outcome events into player notifications. It binds to
// payment.paid / payment.failed / payment.refunded and writes one row per
// event; a failed write Nacks with requeue so the notification is not lost.
type Worker struct {
	cons  *mq.Consumer
	store NotificationStore
	log   *zap.Logger
}

func NewWorker(cons *mq.Consumer, store NotificationStore, log *zap.Logger) *Worker {
	return &Worker{cons: cons, store: store, log: log}
}

func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.cons.Deliveries(ctx)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := w.handle(ctx, d); err != nil {
				w.log.Error("handle outcome event failed",
					zap.String("key", d.RoutingKey), zap.Error(err))
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) error {
	var evt service.OutcomeEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		// poison message, drop it
		w.log.Warn("unparseable outcome event", zap.String("key", d.RoutingKey))
		return nil
	}
	if evt.Data.UserID == "" {
		return nil
	}

	title, body := messageFor(d.RoutingKey, evt.Data.ReferenceID)
	return w.store.Create(ctx, &domain.Notification{
		UserID: evt.Data.UserID,
		Title:  title,
		Body:   body,
	})
}

func messageFor(key, ref string) (string, string) {
	switch key {
	case "payment.paid":
		return "Payment received", fmt.Sprintf("Your purchase %s was successful. Rewards have been added to your inventory.", ref)
	case "payment.failed":
		return "Payment failed", fmt.Sprintf("Your purchase %s could not be completed.", ref)
	case "payment.refunded":
		return "Payment refunded", fmt.Sprintf("Your purchase %s was refunded.", ref)
	default:
		return "Payment update", fmt.Sprintf("Your purchase %s changed state.", ref)
	}
}
