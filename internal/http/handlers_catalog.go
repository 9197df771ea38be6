package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nis2meetu/paymongo-server/internal/domain"
	"github.com/nis2meetu/paymongo-server/internal/repository"
)

type CatalogHandler struct {
	repo *repository.CatalogRepo
}

func NewCatalogHandler(repo *repository.CatalogRepo) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

// ---------- items ----------

func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.repo.ListItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) GetItem(c *gin.Context) {
	it, err := h.repo.ItemByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, it)
}

type itemBody struct {
	ID          string `json:"id" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
}

func (h *CatalogHandler) SaveItem(c *gin.Context) {
	var body itemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat := domain.RewardCategory(body.Category)
	switch cat {
	case domain.CategoryGem, domain.CategoryHint, domain.CategoryStamina, domain.CategoryGeneric:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	it := &domain.Item{ID: body.ID, Category: cat, Description: body.Description}
	if err := h.repo.SaveItem(c.Request.Context(), it); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	if err := h.repo.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ---------- offers ----------

func (h *CatalogHandler) ListOffers(c *gin.Context) {
	offers, err := h.repo.ListOffers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, offers)
}

func (h *CatalogHandler) GetOffer(c *gin.Context) {
	of, err := h.repo.OfferByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, of)
}

type offerBody struct {
	ID       string `json:"id" binding:"required"`
	Title    string `json:"title"`
	IsBundle bool   `json:"is_bundle"`
	Items    []struct {
		ItemID   string `json:"item_id" binding:"required"`
		Quantity int64  `json:"quantity" binding:"required"`
	} `json:"items"`
}

func (h *CatalogHandler) SaveOffer(c *gin.Context) {
	var body offerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	of := &domain.Offer{ID: body.ID, Title: body.Title, IsBundle: body.IsBundle}
	for _, it := range body.Items {
		of.Items = append(of.Items, domain.OfferItem{ItemID: it.ItemID, Quantity: it.Quantity})
	}
	if err := h.repo.SaveOffer(c.Request.Context(), of); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, of)
}

func (h *CatalogHandler) DeleteOffer(c *gin.Context) {
	if err := h.repo.DeleteOffer(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
