package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nis2meetu/paymongo-server/internal/domain"
)

type AdminRepo struct{ db *gorm.DB }

func NewAdminRepo(db *gorm.DB) *AdminRepo {
	return &AdminRepo{db: db}
}

func (r *AdminRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.AdminUser{}, &domain.VerificationCode{})
}

func (r *AdminRepo) ByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AdminRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&domain.AdminUser{}).
		Where("email = ?", email).
		Updates(map[string]any{"password_hash": passwordHash, "updated_at": time.Now().UTC()}).Error
}

// SaveCode upserts the one live verification code per user. Re-requesting a
// code replaces the old one and restarts its clock.
func (r *AdminRepo) SaveCode(ctx context.Context, c *domain.VerificationCode) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"code":       c.Code,
			"expires_at": c.ExpiresAt,
			"created_at": c.CreatedAt,
		}),
	}).Create(c).Error
}

func (r *AdminRepo) CodeByUser(ctx context.Context, userID string) (*domain.VerificationCode, error) {
	var c domain.VerificationCode
	if err := r.db.WithContext(ctx).First(&c, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *AdminRepo) DeleteCode(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Delete(&domain.VerificationCode{}, "user_id = ?", userID).Error
}
