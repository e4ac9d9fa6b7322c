package handlers

import (
	"errors"
	"net/http"
	"time"

	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/models"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// respondSettleError translates a business error into an HTTP response.
// Anything outside the settlement taxonomy is treated as an internal error.
func respondSettleError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, business.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, business.ErrAlreadyInitialized),
		errors.Is(err, business.ErrDuplicatePresale),
		errors.Is(err, business.ErrAlreadyFunded),
		errors.Is(err, business.ErrDuplicateWhitelist),
		errors.Is(err, business.ErrAlreadyFinalized),
		errors.Is(err, business.ErrAlreadyMigrated),
		errors.Is(err, business.ErrAlreadyVoted),
		errors.Is(err, business.ErrAlreadyClaimed),
		errors.Is(err, business.ErrAlreadyRefunded):
		status = http.StatusConflict
	case errors.Is(err, business.ErrInvalidFee),
		errors.Is(err, business.ErrInvalidWindow),
		errors.Is(err, business.ErrInvalidPrice),
		errors.Is(err, business.ErrInvalidCap),
		errors.Is(err, business.ErrInsufficientBalance),
		errors.Is(err, business.ErrWindowClosed),
		errors.Is(err, business.ErrCapExceeded),
		errors.Is(err, business.ErrWhitelistCapExceeded),
		errors.Is(err, business.ErrWindowNotElapsed),
		errors.Is(err, business.ErrNotFinalized),
		errors.Is(err, business.ErrNothingToClaim),
		errors.Is(err, business.ErrArithmeticOverflow),
		errors.Is(err, business.ErrInvalidPhase),
		errors.Is(err, business.ErrVotingClosed),
		errors.Is(err, business.ErrNoVoteWeight),
		errors.Is(err, business.ErrRefundsNotEnabled),
		errors.Is(err, business.ErrRefundsEnabled),
		errors.Is(err, business.ErrLaunchNotApproved),
		errors.Is(err, business.ErrAssetMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, business.ErrInsufficientVaultBalance):
		// vault shortfall means the book is inconsistent, not a bad request
		status = http.StatusInternalServerError
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// parsePubkey validates a base58 address field.
func parsePubkey(c *gin.Context, field, value string) (solana.PublicKey, bool) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + field + ": not a base58 public key"})
		return solana.PublicKey{}, false
	}
	return key, true
}

// lockPresaleByMint loads a presale row FOR UPDATE inside tx. Every mutating
// instruction locks the presale first, then its vault accounts, so lock
// acquisition order is consistent across handlers.
func lockPresaleByMint(tx *gorm.DB, mint string) (*models.PresaleConfig, error) {
	var presale models.PresaleConfig
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("mint = ?", mint).First(&presale).Error; err != nil {
		return nil, err
	}
	return &presale, nil
}

// lockPresaleVault locks one of the presale-owned vaults by kind.
func lockPresaleVault(tx *gorm.DB, presaleID uint, kind string) (*models.VaultAccount, error) {
	var acct models.VaultAccount
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("presale_id = ? AND kind = ?", presaleID, kind).
		First(&acct).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

// loadPlatform fetches the singleton platform row.
func loadPlatform(tx *gorm.DB) (*models.PlatformConfig, error) {
	var platform models.PlatformConfig
	if err := tx.First(&platform, models.PlatformConfigID).Error; err != nil {
		return nil, err
	}
	return &platform, nil
}

// tokenAccountAddress derives the associated token account of a wallet for a
// mint. External token balances in the book are kept per token account, the
// wallet address itself carries the native balance.
func tokenAccountAddress(wallet, mint solana.PublicKey) (string, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return "", err
	}
	return ata.String(), nil
}

// instructionTime resolves the effective timestamp of an instruction. The
// settlement book replays chain activity, so callers may carry the original
// chain timestamp; absent that, server time applies.
func instructionTime(ts *int64) int64 {
	if ts != nil {
		return *ts
	}
	return time.Now().Unix()
}
