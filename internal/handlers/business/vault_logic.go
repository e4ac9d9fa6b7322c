package business

import (
	"errors"

	"presalecontrol/internal/models"
	"presalecontrol/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockAccount loads a vault account by address with a FOR UPDATE row lock.
// The lock is held until the surrounding transaction commits or rolls back,
// which serializes every balance mutation per account.
func LockAccount(tx *gorm.DB, address string) (*models.VaultAccount, error) {
	var acct models.VaultAccount
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("address = ?", address).First(&acct).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

// LockOrCreateExternal locks an external book account, creating it with a
// zero balance on first contact. Used for lazily materialized destinations
// (claim targets, treasury, LP accounts).
func LockOrCreateExternal(tx *gorm.DB, address, asset string) (*models.VaultAccount, error) {
	acct, err := LockAccount(tx, address)
	if err == nil {
		if acct.Asset != asset {
			return nil, ErrAssetMismatch
		}
		return acct, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	acct = &models.VaultAccount{
		Address: address,
		Kind:    models.VaultKindExternal,
		Asset:   asset,
	}
	if err := tx.Create(acct).Error; err != nil {
		return nil, err
	}
	return acct, nil
}

// MoveFunds debits from and credits to, appending one journal record. Both
// accounts must already be locked in this transaction. A short source balance
// surfaces as ErrInsufficientBalance for external accounts and as
// ErrInsufficientVaultBalance for presale vaults, where it indicates an
// accounting violation rather than a user error.
func MoveFunds(tx *gorm.DB, presaleID uint, from, to *models.VaultAccount, amount uint64, instruction string) error {
	if from.Asset != to.Asset {
		return ErrAssetMismatch
	}

	newFrom, ok := utils.CheckedSub(from.Balance, amount)
	if !ok {
		if from.Kind == models.VaultKindExternal {
			return ErrInsufficientBalance
		}
		return ErrInsufficientVaultBalance
	}
	newTo, ok := utils.CheckedAdd(to.Balance, amount)
	if !ok {
		return ErrArithmeticOverflow
	}

	if err := tx.Model(from).Update("balance", newFrom).Error; err != nil {
		return err
	}
	if err := tx.Model(to).Update("balance", newTo).Error; err != nil {
		return err
	}
	from.Balance = newFrom
	to.Balance = newTo

	record := &models.VaultTransferRecord{
		PresaleID:   presaleID,
		FromAddress: from.Address,
		ToAddress:   to.Address,
		Asset:       from.Asset,
		Amount:      amount,
		Instruction: instruction,
	}
	return tx.Create(record).Error
}

// CreditAccount credits an account with funds arriving from outside the book
// (an observed on-chain deposit), journaling the credit.
func CreditAccount(tx *gorm.DB, acct *models.VaultAccount, amount uint64, instruction string) error {
	newBalance, ok := utils.CheckedAdd(acct.Balance, amount)
	if !ok {
		return ErrArithmeticOverflow
	}

	if err := tx.Model(acct).Update("balance", newBalance).Error; err != nil {
		return err
	}
	acct.Balance = newBalance

	record := &models.VaultTransferRecord{
		PresaleID:   acct.PresaleID,
		FromAddress: "offchain",
		ToAddress:   acct.Address,
		Asset:       acct.Asset,
		Amount:      amount,
		Instruction: instruction,
	}
	return tx.Create(record).Error
}
