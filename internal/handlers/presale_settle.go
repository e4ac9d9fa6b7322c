package handlers

import (
	"net/http"

	"presalecontrol/internal/events"
	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/models"
	dbconfig "presalecontrol/pkg/config"
	presalesolana "presalecontrol/pkg/solana"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// SettleRequest represents the request body shared by the settlement-phase
// instructions (finalize, migrate, withdraw-for-launch)
type SettleRequest struct {
	Caller    *string `json:"caller"`
	Mint      *string `json:"mint"`
	Timestamp *int64  `json:"timestamp"`
}

// FinalizePresale closes the sale one-way. Gate: the public window elapsed or
// the hard cap is fully subscribed. Admin only.
func FinalizePresale(c *gin.Context) {
	var request SettleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Caller == nil || request.Mint == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "caller, mint are required"})
		return
	}
	now := instructionTime(request.Timestamp)

	tx := dbconfig.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	platform, err := loadPlatform(tx)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Platform not initialized"})
		return
	}
	if err := business.AssertAdmin(platform, *request.Caller); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	presale, err := lockPresaleByMint(tx, *request.Mint)
	if err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}
	if err := business.ApplyFinalize(presale, now); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	if err := tx.Model(presale).Update("is_finalized", true).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.WithFields(log.Fields{
		"presale_id":   presale.ID,
		"total_raised": presale.PublicRaisedUnits,
	}).Info("presale finalized")

	events.Emit(events.SettlementEvent{
		Type:        events.TypePresaleFinalized,
		PresaleID:   presale.ID,
		Mint:        presale.Mint,
		TotalRaised: presale.PublicRaisedUnits,
		Timestamp:   now,
	})

	c.JSON(http.StatusOK, presale)
}

// MigrateRequest represents the request body for the liquidity migration
type MigrateRequest struct {
	Caller *string `json:"caller"`
	Mint   *string `json:"mint"`
	// raised funds seeding the liquidity pool
	LpFundingAmount *uint64 `json:"lp_funding_amount"`
	// destination accounts; default to the LP authority PDA's accounts
	LiquidityFundsAccount *string `json:"liquidity_funds_account"`
	LiquidityAssetAccount *string `json:"liquidity_asset_account"`
	Timestamp             *int64  `json:"timestamp"`
}

// MigrateAndCreateLp settles the liquidity migration of a finalized presale:
// the platform fee on the raised total goes to the treasury, lp_funding_amount
// of the raised funds goes to the liquidity funds account, the LP token
// allocation goes to the liquidity asset account, and the ecosystem allocation
// moves to the ecosystem vault. The remainder of the raised funds stays in the
// public funds vault for withdraw-for-launch. Admin only.
func MigrateAndCreateLp(c *gin.Context) {
	var request MigrateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Caller == nil || request.Mint == nil || request.LpFundingAmount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "caller, mint, lp_funding_amount are required"})
		return
	}
	mintKey, ok := parsePubkey(c, "mint", *request.Mint)
	if !ok {
		return
	}

	tx := dbconfig.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	platform, err := loadPlatform(tx)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Platform not initialized"})
		return
	}
	if err := business.AssertAdmin(platform, *request.Caller); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	presale, err := lockPresaleByMint(tx, *request.Mint)
	if err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}
	if err := business.ValidateMigration(presale); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	fee, err := business.MigrationFee(presale.PublicRaisedUnits, platform.FeeBps)
	if err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	presaleKey := solana.MustPublicKeyFromBase58(presale.Address)
	lpAuthority, err := presalesolana.GetLpAuthorityPDA(presaleKey)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	liquidityFundsAccount := lpAuthority.Address.String()
	if request.LiquidityFundsAccount != nil {
		liquidityFundsAccount = *request.LiquidityFundsAccount
	}
	liquidityAssetAccount := ""
	if request.LiquidityAssetAccount != nil {
		liquidityAssetAccount = *request.LiquidityAssetAccount
	} else {
		liquidityAssetAccount, err = tokenAccountAddress(lpAuthority.Address, mintKey)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	tokenVault, err := lockPresaleVault(tx, presale.ID, models.VaultKindToken)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	fundsVault, err := lockPresaleVault(tx, presale.ID, models.VaultKindPublicFunds)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ecosystemVault, err := lockPresaleVault(tx, presale.ID, models.VaultKindEcosystem)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 代币侧：LP 份额与生态份额离开公售金库
	lpAssetDestination, err := business.LockOrCreateExternal(tx, liquidityAssetAccount, presale.Mint)
	if err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}
	if err := business.MoveFunds(tx, presale.ID, tokenVault, lpAssetDestination, presale.LpTokenAllocation, "migrate_lp"); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}
	if err := business.MoveFunds(tx, presale.ID, tokenVault, ecosystemVault, presale.EcosystemAllocation, "migrate_ecosystem"); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	// 资金侧：手续费进平台金库，lp_funding_amount 进流动性账户
	if fee > 0 {
		treasury, err := business.LockOrCreateExternal(tx, platform.Treasury, models.AssetNative)
		if err != nil {
			tx.Rollback()
			respondSettleError(c, err)
			return
		}
		if err := business.MoveFunds(tx, presale.ID, fundsVault, treasury, fee, "migrate_fee"); err != nil {
			tx.Rollback()
			respondSettleError(c, err)
			return
		}
	}
	if *request.LpFundingAmount > 0 {
		lpFundsDestination, err := business.LockOrCreateExternal(tx, liquidityFundsAccount, models.AssetNative)
		if err != nil {
			tx.Rollback()
			respondSettleError(c, err)
			return
		}
		if err := business.MoveFunds(tx, presale.ID, fundsVault, lpFundsDestination, *request.LpFundingAmount, "migrate_lp_funding"); err != nil {
			tx.Rollback()
			respondSettleError(c, err)
			return
		}
	}

	presale.IsMigrated = true
	presale.Phase = models.PhaseLaunched
	if err := tx.Model(presale).Updates(map[string]interface{}{
		"is_migrated": true,
		"phase":       models.PhaseLaunched,
	}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.WithFields(log.Fields{
		"presale_id": presale.ID,
		"fee":        fee,
		"lp_tokens":  presale.LpTokenAllocation,
	}).Info("presale migrated")

	events.Emit(events.SettlementEvent{
		Type:      events.TypePresaleMigrated,
		PresaleID: presale.ID,
		Mint:      presale.Mint,
		Amount:    fee,
		Tokens:    presale.LpTokenAllocation,
		Timestamp: instructionTime(request.Timestamp),
	})

	c.JSON(http.StatusOK, gin.H{
		"presale":                 presale,
		"fee":                     fee,
		"liquidity_funds_account": liquidityFundsAccount,
		"liquidity_asset_account": liquidityAssetAccount,
	})
}

// WithdrawForLaunch sweeps the remaining raised funds to the presale
// authority after a winning launch vote.
func WithdrawForLaunch(c *gin.Context) {
	var request SettleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Caller == nil || request.Mint == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "caller, mint are required"})
		return
	}
	if _, ok := parsePubkey(c, "caller", *request.Caller); !ok {
		return
	}

	tx := dbconfig.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	presale, err := lockPresaleByMint(tx, *request.Mint)
	if err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}
	if err := business.ValidateWithdrawForLaunch(presale, *request.Caller); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	fundsVault, err := lockPresaleVault(tx, presale.ID, models.VaultKindPublicFunds)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	amount := fundsVault.Balance
	if amount == 0 {
		tx.Rollback()
		respondSettleError(c, business.ErrNothingToClaim)
		return
	}

	to, err := business.LockOrCreateExternal(tx, presale.Authority, models.AssetNative)
	if err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}
	if err := business.MoveFunds(tx, presale.ID, fundsVault, to, amount, "withdraw_for_launch"); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	presale.Phase = models.PhaseLaunched
	if err := tx.Model(presale).Update("phase", models.PhaseLaunched).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.WithFields(log.Fields{
		"presale_id": presale.ID,
		"amount":     amount,
	}).Info("raised funds withdrawn for launch")

	events.Emit(events.SettlementEvent{
		Type:      events.TypeWithdrawnForLaunch,
		PresaleID: presale.ID,
		Mint:      presale.Mint,
		User:      presale.Authority,
		Amount:    amount,
		Timestamp: instructionTime(request.Timestamp),
	})

	c.JSON(http.StatusOK, gin.H{
		"presale": presale,
		"amount":  amount,
	})
}
