package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nis2meetu/paymongo-server/internal/domain"
)

// CatalogRepo serves the item and offer reference data. Reads dominate;
// writes come only from the admin CRUD routes.
type CatalogRepo struct{ db *gorm.DB }

func NewCatalogRepo(db *gorm.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Item{}, &domain.Offer{}, &domain.OfferItem{})
}

// ---------- items ----------

func (r *CatalogRepo) ItemByID(ctx context.Context, id string) (*domain.Item, error) {
	var it domain.Item
	if err := r.db.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *CatalogRepo) ListItems(ctx context.Context) ([]domain.Item, error) {
	var out []domain.Item
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CatalogRepo) SaveItem(ctx context.Context, it *domain.Item) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(it).Error
}

func (r *CatalogRepo) DeleteItem(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Item{}, "id = ?", id).Error
}

// ---------- offers ----------

func (r *CatalogRepo) OfferByID(ctx context.Context, id string) (*domain.Offer, error) {
	var of domain.Offer
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&of, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &of, nil
}

func (r *CatalogRepo) ListOffers(ctx context.Context) ([]domain.Offer, error) {
	var out []domain.Offer
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("id ASC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveOffer replaces the offer and its item lines as a unit so a half-edited
// bundle is never visible to fulfillment.
func (r *CatalogRepo) SaveOffer(ctx context.Context, of *domain.Offer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(of).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.OfferItem{}, "offer_id = ?", of.ID).Error; err != nil {
			return err
		}
		for i := range of.Items {
			of.Items[i].OfferID = of.ID
			of.Items[i].Position = i
		}
		if len(of.Items) == 0 {
			return nil
		}
		return tx.Create(&of.Items).Error
	})
}

func (r *CatalogRepo) DeleteOffer(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.OfferItem{}, "offer_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Offer{}, "id = ?", id).Error
	})
}
