package domain

import "time"

type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusPaid     TransactionStatus = "PAID"
	StatusFailed   TransactionStatus = "FAILED"
	StatusRefunded TransactionStatus = "REFUNDED"
	StatusUnknown  TransactionStatus = "UNKNOWN"
)

// Transaction is one checkout attempt. ReferenceID is assigned by PayMongo
// when the checkout session is created, before any webhook can arrive, and is
// the only key a webhook event carries to correlate back to us.
type Transaction struct {
	ID          string            `gorm:"primaryKey" json:"id"`
	ReferenceID string            `gorm:"uniqueIndex" json:"reference_id"`
	UserID      string            `gorm:"index" json:"user_id"`
	OfferID     *string           `gorm:"index" json:"offer_id"` // nil for free-form purchases
	Quantity    int               `gorm:"default:1" json:"quantity"`
	Status      TransactionStatus `gorm:"index" json:"status"`
	// Fulfilled flips false -> true exactly once, under a row lock. Status may
	// keep changing afterward (e.g. PAID -> REFUNDED) without re-granting.
	Fulfilled   bool      `json:"fulfilled"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}
