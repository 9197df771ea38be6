package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nis2meetu/paymongo-server/internal/domain"
)

// PlayerRepo reads the per-player documents fulfillment writes into. All
// mutation goes through TransactionRepo.GrantIfNotFulfilled so the fulfilled
// guard can never be bypassed.
type PlayerRepo struct{ db *gorm.DB }

func NewPlayerRepo(db *gorm.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

func (r *PlayerRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.PlayerInventory{}, &domain.InventoryEntry{}, &domain.PlayerUIState{})
}

func (r *PlayerRepo) InventoryByUser(ctx context.Context, userID string) (*domain.PlayerInventory, error) {
	var inv domain.PlayerInventory
	err := r.db.WithContext(ctx).Preload("Entries").First(&inv, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// lazily created on first fulfillment; an empty view is not an error
		return &domain.PlayerInventory{UserID: userID, Entries: []domain.InventoryEntry{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *PlayerRepo) ListInventories(ctx context.Context) ([]domain.PlayerInventory, error) {
	var out []domain.PlayerInventory
	if err := r.db.WithContext(ctx).Preload("Entries").Order("user_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PlayerRepo) UIStateByUser(ctx context.Context, userID string) (*domain.PlayerUIState, error) {
	var ui domain.PlayerUIState
	err := r.db.WithContext(ctx).First(&ui, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.PlayerUIState{UserID: userID, CurrentHearts: domain.MaxHearts}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ui, nil
}
