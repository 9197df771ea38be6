package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nis2meetu/paymongo-server/internal/service"
)

type Handlers struct {
	Webhook      *WebhookHandler
	Checkout     *CheckoutHandler
	Catalog      *CatalogHandler
	Player       *PlayerHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
}

// NewRouter mirrors the original route map: /api/paymongo for payments,
// /api/{items,offers,players,notifications,feedback} for the game data,
// /admin for the back office. Catalog writes require an admin token.
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	pm := r.Group("/api/paymongo")
	{
		pm.POST("/webhook", h.Webhook.Handle)
		pm.POST("/checkout", h.Checkout.Create)
	}

	items := r.Group("/api/items")
	{
		items.GET("", h.Catalog.ListItems)
		items.GET("/:id", h.Catalog.GetItem)
		items.POST("", JWTAuth(), RequireRole("admin"), h.Catalog.SaveItem)
		items.PUT("/:id", JWTAuth(), RequireRole("admin"), h.Catalog.SaveItem)
		items.DELETE("/:id", JWTAuth(), RequireRole("admin"), h.Catalog.DeleteItem)
	}

	offers := r.Group("/api/offers")
	{
		offers.GET("", h.Catalog.ListOffers)
		offers.GET("/:id", h.Catalog.GetOffer)
		offers.POST("", JWTAuth(), RequireRole("admin"), h.Catalog.SaveOffer)
		offers.PUT("/:id", JWTAuth(), RequireRole("admin"), h.Catalog.SaveOffer)
		offers.DELETE("/:id", JWTAuth(), RequireRole("admin"), h.Catalog.DeleteOffer)
	}

	players := r.Group("/api/players")
	{
		players.GET("", h.Player.List)
		players.GET("/:id", h.Player.Get)
	}

	notifs := r.Group("/api/notifications")
	{
		notifs.GET("/:userId", h.Notification.ListByUser)
		notifs.PUT("/:userId/:id/read", h.Notification.MarkRead)
	}

	feedback := r.Group("/api/feedback")
	{
		feedback.POST("", h.Notification.CreateFeedback)
		feedback.GET("", JWTAuth(), RequireRole("admin"), h.Notification.ListFeedback)
	}

	admin := r.Group("/admin")
	{
		admin.POST("/login", h.Admin.Login)
		admin.POST("/forgot-password", h.Admin.ForgotPassword)
		admin.POST("/verify-code", h.Admin.VerifyCode)
		admin.POST("/change-password", JWTAuth(), RequireRole("admin", service.RolePasswordReset), h.Admin.ChangePassword)
	}

	return r
}
