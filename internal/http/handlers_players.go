package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nis2meetu/paymongo-server/internal/domain"
	"github.com/nis2meetu/paymongo-server/internal/repository"
)

type PlayerHandler struct {
	players *repository.PlayerRepo
}

func NewPlayerHandler(players *repository.PlayerRepo) *PlayerHandler {
	return &PlayerHandler{players: players}
}

type playerView struct {
	ID        string                 `json:"id"`
	Inventory domain.PlayerInventory `json:"inventory"`
	UIState   domain.PlayerUIState   `json:"ui_state"`
}

func (h *PlayerHandler) List(c *gin.Context) {
	invs, err := h.players.ListInventories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]playerView, 0, len(invs))
	for _, inv := range invs {
		ui, err := h.players.UIStateByUser(c.Request.Context(), inv.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out = append(out, playerView{ID: inv.UserID, Inventory: inv, UIState: *ui})
	}
	c.JSON(http.StatusOK, out)
}

func (h *PlayerHandler) Get(c *gin.Context) {
	userID := c.Param("id")
	inv, err := h.players.InventoryByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ui, err := h.players.UIStateByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, playerView{ID: userID, Inventory: *inv, UIState: *ui})
}
