package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nis2meetu/paymongo-server/internal/service"
)

type CheckoutHandler struct {
	svc *service.Checkout
	log *zap.Logger
}

func NewCheckoutHandler(svc *service.Checkout, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, log: log}
}

type createCheckoutBody struct {
	Name     string  `json:"name"`
	Amount   int64   `json:"amount"` // centavos
	UserID   string  `json:"user_id"`
	OfferID  *string `json:"offer_id"`
	Quantity int     `json:"quantity"`
}

func (h *CheckoutHandler) Create(c *gin.Context) {
	var body createCheckoutBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	res, err := h.svc.Create(c.Request.Context(), service.CreateCheckoutInput{
		Name:     body.Name,
		Amount:   body.Amount,
		UserID:   body.UserID,
		OfferID:  body.OfferID,
		Quantity: body.Quantity,
	})
	if err != nil {
		h.log.Error("checkout creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create checkout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"checkout_url": res.CheckoutURL,
		"reference_id": res.ReferenceID,
	})
}
