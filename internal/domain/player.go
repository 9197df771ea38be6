package domain

import "time"

// MaxHearts is the full-stamina ceiling a stamina reward resets to.
const MaxHearts = 5

type PlayerInventory struct {
	UserID      string           `gorm:"primaryKey" json:"user_id"`
	Gems        int64            `json:"gems"`
	Hints       int64            `json:"hints"`
	Entries     []InventoryEntry `gorm:"foreignKey:UserID" json:"items"`
	LastUpdated time.Time        `json:"last_updated"`
}

// InventoryEntry is one display row of a player's non-counter rewards,
// keyed by the offer that granted it.
type InventoryEntry struct {
	UserID      string    `gorm:"primaryKey" json:"-"`
	RefID       string    `gorm:"primaryKey" json:"ref_id"`
	Quantity    int64     `json:"quantity"`
	Description string    `json:"description"`
	LastUpdated time.Time `json:"last_updated"`
}

type PlayerUIState struct {
	UserID        string    `gorm:"primaryKey" json:"user_id"`
	CurrentHearts int       `json:"current_hearts"`
	HalfStep      bool      `json:"half_step"`
	LastUpdated   time.Time `json:"last_updated"`
}

// RewardGrant is the aggregated effect of expanding one paid offer; it is
// computed first, then applied in a single store transaction.
type RewardGrant struct {
	Gems         int64
	Hints        int64
	StaminaReset bool
	Entries      []InventoryEntry
}

func (g RewardGrant) Empty() bool {
	return g.Gems == 0 && g.Hints == 0 && !g.StaminaReset && len(g.Entries) == 0
}
