package models

import (
	"time"
)

// PlatformConfigID is the primary key of the singleton platform row.
const PlatformConfigID = 1

// PlatformConfig is the process-wide platform configuration. Exactly one row
// exists after initialization and it is immutable afterwards.
type PlatformConfig struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Owner     string    `gorm:"size:44;not null" json:"owner"`
	Operator  string    `gorm:"size:44;not null" json:"operator"`
	Treasury  string    `gorm:"size:44;not null" json:"treasury"`
	FeeBps    uint16    `gorm:"not null;default:0" json:"fee_bps"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (PlatformConfig) TableName() string {
	return "platform_config"
}

// IsAdmin reports whether caller is the platform owner or operator.
func (p *PlatformConfig) IsAdmin(caller string) bool {
	return caller == p.Owner || caller == p.Operator
}
