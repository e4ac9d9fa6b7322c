package models

import (
	"time"
)

// WhitelistEntry caps a single user's contribution to a presale.
// Create-only: raising or lowering a cap requires operator intervention at the
// database level, there is no update path.
type WhitelistEntry struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	PresaleID uint   `gorm:"not null;uniqueIndex:idx_whitelist_presale_user" json:"presale_id"`
	User      string `gorm:"size:44;not null;uniqueIndex:idx_whitelist_presale_user" json:"user"`
	Address   string `gorm:"size:44;not null" json:"address"` // whitelist PDA
	Tier      uint8  `gorm:"not null;default:1" json:"tier"`
	// 0 means no individual cap beyond the presale hard cap
	MaxContributionUnits uint64    `gorm:"not null;default:0" json:"max_contribution_units"`
	CreatedAt            time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (WhitelistEntry) TableName() string {
	return "whitelist_entry"
}
