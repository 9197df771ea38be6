package domain

// RewardCategory decides how fulfillment routes a purchased item.
type RewardCategory string

const (
	CategoryGem     RewardCategory = "GEM"
	CategoryHint    RewardCategory = "HINT"
	CategoryStamina RewardCategory = "STAMINA"
	CategoryGeneric RewardCategory = "GENERIC"
)

type Item struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Category    RewardCategory `gorm:"index" json:"category"`
	Description string         `json:"description"`
}

type Offer struct {
	ID       string      `gorm:"primaryKey" json:"id"`
	Title    string      `json:"title"`
	IsBundle bool        `json:"is_bundle"`
	Items    []OfferItem `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE" json:"items"`
}

type OfferItem struct {
	OfferID  string `gorm:"primaryKey" json:"-"`
	ItemID   string `gorm:"primaryKey" json:"item_id"`
	Quantity int64  `json:"quantity"`
	Position int    `json:"position"` // keeps the offer's display order stable
}
