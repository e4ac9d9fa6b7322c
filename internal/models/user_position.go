package models

import (
	"time"
)

// UserPosition tracks one user's contribution, allocation and claims for one
// presale. Created lazily on the user's first contribution.
// Invariants: TokensClaimed <= TokensAllocated; both monotonically
// non-decreasing.
type UserPosition struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	PresaleID uint   `gorm:"not null;uniqueIndex:idx_position_presale_user" json:"presale_id"`
	User      string `gorm:"size:44;not null;uniqueIndex:idx_position_presale_user" json:"user"`
	Address   string `gorm:"size:44;not null" json:"address"` // position PDA

	PublicContributionUnits uint64 `gorm:"not null;default:0" json:"public_contribution_units"`
	TokensAllocated         uint64 `gorm:"not null;default:0" json:"tokens_allocated"`
	TokensClaimed           uint64 `gorm:"not null;default:0" json:"tokens_claimed"`

	Refunded bool `gorm:"default:false" json:"refunded"`
	HasVoted bool `gorm:"default:false" json:"has_voted"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserPosition) TableName() string {
	return "user_position"
}
