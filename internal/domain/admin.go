package domain

import "time"

type AdminUser struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VerificationCode lives in the database rather than process memory so a
// restart, or a second instance, can still verify a code it did not issue.
// Expiry is checked on read; rows are deleted on successful use.
type VerificationCode struct {
	UserID    string `gorm:"primaryKey"`
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (v VerificationCode) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
