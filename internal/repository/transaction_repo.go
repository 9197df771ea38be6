package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nis2meetu/paymongo-server/internal/domain"
)

// ErrAlreadyFulfilled is the expected steady state under provider retries,
// not a failure: the rewards were granted by an earlier delivery.
var ErrAlreadyFulfilled = errors.New("transaction already fulfilled")

type TransactionRepo struct{ db *gorm.DB }

func NewTransactionRepo(db *gorm.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

func (r *TransactionRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Transaction{})
}

func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Quantity <= 0 {
		t.Quantity = 1
	}
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	t.LastUpdated = time.Now().UTC()
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepo) ByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ByReferenceID returns every transaction recorded under the provider's
// reference. The column is unique so more than one row is a data-integrity
// anomaly; callers process each row independently rather than failing.
func (r *TransactionRepo) ByReferenceID(ctx context.Context, ref string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	if err := r.db.WithContext(ctx).Where("reference_id = ?", ref).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus overwrites status unconditionally: the most recent
// provider-reported state wins, there is no immutable terminal status.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, id string, to domain.TransactionStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": to, "last_updated": time.Now().UTC()}).Error
}

// GrantIfNotFulfilled applies a reward grant and flips the fulfilled flag in
// one database transaction, with the transaction row locked FOR UPDATE. Two
// concurrent deliveries of the same event serialize on the lock; the loser
// sees fulfilled=true and backs off with ErrAlreadyFulfilled. A failure
// anywhere rolls the whole grant back, so a provider retry starts clean.
func (r *TransactionRepo) GrantIfNotFulfilled(ctx context.Context, txID string, g domain.RewardGrant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t domain.Transaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&t, "id = ?", txID).Error; err != nil {
			return err
		}
		if t.Fulfilled {
			return ErrAlreadyFulfilled
		}

		now := time.Now().UTC()

		inv := domain.PlayerInventory{
			UserID:      t.UserID,
			Gems:        g.Gems,
			Hints:       g.Hints,
			LastUpdated: now,
		}
		if err := tx.Omit("Entries").Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"gems":         gorm.Expr("player_inventories.gems + ?", g.Gems),
				"hints":        gorm.Expr("player_inventories.hints + ?", g.Hints),
				"last_updated": now,
			}),
		}).Create(&inv).Error; err != nil {
			return err
		}

		for _, e := range g.Entries {
			e.UserID = t.UserID
			e.LastUpdated = now
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "ref_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"quantity":     gorm.Expr("inventory_entries.quantity + ?", e.Quantity),
					"description":  e.Description,
					"last_updated": now,
				}),
			}).Create(&e).Error; err != nil {
				return err
			}
		}

		if g.StaminaReset {
			ui := domain.PlayerUIState{
				UserID:        t.UserID,
				CurrentHearts: domain.MaxHearts,
				HalfStep:      false,
				LastUpdated:   now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"current_hearts": domain.MaxHearts,
					"half_step":      false,
					"last_updated":   now,
				}),
			}).Create(&ui).Error; err != nil {
				return err
			}
		}

		return tx.Model(&domain.Transaction{}).
			Where("id = ?", t.ID).
			Updates(map[string]any{"fulfilled": true, "last_updated": now}).Error
	})
}
