package models

import (
	"time"
)

// Vault account kinds. Presale-owned vaults carry the owning presale ID;
// external accounts (funder sources, user wallets, treasury, LP destinations)
// use KindExternal with PresaleID 0.
const (
	VaultKindToken       = "token_vault"
	VaultKindPublicFunds = "public_funds_vault"
	VaultKindEcosystem   = "ecosystem_vault"
	VaultKindExternal    = "external"
)

// AssetNative is the asset symbol for the ledger's native funding unit.
const AssetNative = "native"

// VaultAccount is one custodial value store in the settlement book. Vaults
// owned by a presale can only be debited through the settlement instructions;
// no handler mutates a balance outside a locked transaction.
type VaultAccount struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Address   string `gorm:"size:44;not null;uniqueIndex" json:"address"`
	PresaleID uint   `gorm:"not null;default:0;index" json:"presale_id"`
	Kind      string `gorm:"size:20;not null" json:"kind"`
	// "native" for funding units, otherwise the token mint
	Asset     string    `gorm:"size:44;not null" json:"asset"`
	Balance   uint64    `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (VaultAccount) TableName() string {
	return "vault_account"
}

// VaultTransferRecord is the append-only transfer journal. Every balance
// mutation writes exactly one record inside the same database transaction, so
// the journal replays to the current balances.
type VaultTransferRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	PresaleID   uint      `gorm:"not null;default:0;index" json:"presale_id"`
	FromAddress string    `gorm:"size:44;not null" json:"from_address"`
	ToAddress   string    `gorm:"size:44;not null" json:"to_address"`
	Asset       string    `gorm:"size:44;not null" json:"asset"`
	Amount      uint64    `gorm:"not null" json:"amount"`
	Instruction string    `gorm:"size:32;not null" json:"instruction"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (VaultTransferRecord) TableName() string {
	return "vault_transfer_record"
}
