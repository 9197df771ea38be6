package httpx

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/nis2meetu/paymongo-server/internal/paymongo"
	"github.com/nis2meetu/paymongo-server/internal/service"
)

var tracer = otel.Tracer("paymongo-server/webhook")

type WebhookHandler struct {
	rec *service.Reconciler
	log *zap.Logger
}

func NewWebhookHandler(rec *service.Reconciler, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{rec: rec, log: log}
}

// Handle answers PayMongo's retry policy through status codes alone:
// 200 processed (including nothing-to-do), 400 stop retrying (we can never
// act on this payload), 404/500 retry later.
func (h *WebhookHandler) Handle(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "webhook.process")
	defer span.End()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	evt, err := paymongo.ParseEvent(body)
	if err != nil {
		h.log.Warn("malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing reference id"})
		return
	}
	span.SetAttributes(
		attribute.String("payment.event_type", evt.Type),
		attribute.String("payment.reference_id", evt.ReferenceID),
	)

	if err := h.rec.ProcessEvent(ctx, evt); err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			h.log.Warn("webhook for unknown transaction",
				zap.String("reference_id", evt.ReferenceID))
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		h.log.Error("webhook processing failed",
			zap.String("reference_id", evt.ReferenceID), zap.Error(err))
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
