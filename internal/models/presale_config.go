package models

import (
	"time"
)

// Presale lifecycle phases (mirrors the on-chain program layout).
const (
	PhasePending      uint8 = 0
	PhasePublicActive uint8 = 1
	PhaseVoting       uint8 = 2
	PhaseLaunchable   uint8 = 3
	PhaseRefundable   uint8 = 4
	PhaseLaunched     uint8 = 5
)

// Vote outcomes.
const (
	OutcomeUndecided uint8 = 0
	OutcomeLaunch    uint8 = 1
	OutcomeRefund    uint8 = 2
)

// PresaleConfig is the central presale state machine, one row per mint.
// The three flags are one-way: they only ever transition false -> true.
type PresaleConfig struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Mint    string `gorm:"size:44;not null;uniqueIndex" json:"mint"`
	Address string `gorm:"size:44;not null;uniqueIndex" json:"address"` // presale PDA
	// Authority may fund the token vault and withdraw for launch
	Authority     string `gorm:"size:44;not null" json:"authority"`
	TokenDecimals uint8  `gorm:"not null;default:6" json:"token_decimals"`

	PublicStartTs int64 `gorm:"not null" json:"public_start_ts"`
	PublicEndTs   int64 `gorm:"not null" json:"public_end_ts"`
	TgeTs         int64 `gorm:"default:0" json:"tge_ts"`

	PublicPriceUnitsPerToken uint64 `gorm:"not null" json:"public_price_units_per_token"`
	HardCapUnits             uint64 `gorm:"not null" json:"hard_cap_units"`

	// Three-way token split, fixed at creation (raw token units)
	PublicTokenCap      uint64 `gorm:"not null" json:"public_token_cap"`
	LpTokenAllocation   uint64 `gorm:"not null" json:"lp_token_allocation"`
	EcosystemAllocation uint64 `gorm:"not null" json:"ecosystem_allocation"`

	PublicRaisedUnits uint64 `gorm:"not null;default:0" json:"public_raised_units"`

	IsFunded    bool `gorm:"default:false" json:"is_funded"`
	IsFinalized bool `gorm:"default:false" json:"is_finalized"`
	IsMigrated  bool `gorm:"default:false" json:"is_migrated"`

	Phase            uint8  `gorm:"default:0" json:"phase"`
	VoteYesWeight    uint64 `gorm:"default:0" json:"vote_yes_weight"`
	VoteNoWeight     uint64 `gorm:"default:0" json:"vote_no_weight"`
	VotingEndsTs     int64  `gorm:"default:0" json:"voting_ends_ts"`
	LaunchDeadlineTs int64  `gorm:"default:0" json:"launch_deadline_ts"`
	RefundEnabled    bool   `gorm:"default:false" json:"refund_enabled"`
	Outcome          uint8  `gorm:"default:0" json:"outcome"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PresaleConfig) TableName() string {
	return "presale_config"
}

// TotalTokenCommitment is the amount the authority must fund the token vault
// with: publicTokenCap + lpTokenAllocation + ecosystemAllocation.
func (p *PresaleConfig) TotalTokenCommitment() uint64 {
	return p.PublicTokenCap + p.LpTokenAllocation + p.EcosystemAllocation
}
