package handlers

import (
	"errors"
	"net/http"

	"presalecontrol/internal/events"
	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/models"
	dbconfig "presalecontrol/pkg/config"
	presalesolana "presalecontrol/pkg/solana"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContributeRequest represents the request body for a public contribution
type ContributeRequest struct {
	Mint      *string `json:"mint"`
	User      *string `json:"user"`
	Amount    *uint64 `json:"amount"`
	Timestamp *int64  `json:"timestamp"`
}

// ClaimRequest represents the request body for claim and refund instructions
type ClaimRequest struct {
	Mint      *string `json:"mint"`
	User      *string `json:"user"`
	Timestamp *int64  `json:"timestamp"`
}

// lockOrCreatePosition locks the user's position row FOR UPDATE, creating it
// on the user's first contact with the presale.
func lockOrCreatePosition(tx *gorm.DB, presale *models.PresaleConfig, user string) (*models.UserPosition, error) {
	var pos models.UserPosition
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("presale_id = ? AND \"user\" = ?", presale.ID, user).
		First(&pos).Error
	if err == nil {
		return &pos, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	presaleKey := solana.MustPublicKeyFromBase58(presale.Address)
	userKey, keyErr := solana.PublicKeyFromBase58(user)
	if keyErr != nil {
		return nil, keyErr
	}
	pda, pdaErr := presalesolana.GetUserPositionPDA(presaleKey, userKey)
	if pdaErr != nil {
		return nil, pdaErr
	}

	pos = models.UserPosition{
		PresaleID: presale.ID,
		User:      user,
		Address:   pda.Address.String(),
	}
	if err := tx.Create(&pos).Error; err != nil {
		return nil, err
	}
	return &pos, nil
}

// ContributePublic records a public-phase contribution: the user's native
// balance moves into the public funds vault and the position's allocation is
// recomputed from the cumulative contribution.
func ContributePublic(c *gin.Context) {
	var request ContributeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Mint == nil || request.User == nil || request.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mint, user, amount are required"})
		return
	}
	if *request.Amount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	if _, ok := parsePubkey(c, "user", *request.User); !ok {
		return
	}
	now := instructionTime(request.Timestamp)

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

	pos, err := lockOrCreatePosition(tx, presale, *request.User)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 白名单为可选项：有记录则按记录累计上限限购
	var wl *models.WhitelistEntry
	var entry models.WhitelistEntry
	if err := tx.Where("presale_id = ? AND \"user\" = ?", presale.ID, *request.User).
		First(&entry).Error; err == nil {
		wl = &entry
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tokensDelta, err := business.ApplyContribution(presale, pos, wl, *request.Amount, now)
	if err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	from, err := business.LockAccount(tx, *request.User)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondSettleError(c, business.ErrInsufficientBalance)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	fundsVault, err := lockPresaleVault(tx, presale.ID, models.VaultKindPublicFunds)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := business.MoveFunds(tx, presale.ID, from, fundsVault, *request.Amount, "contribute"); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	if err := tx.Save(presale).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := tx.Save(pos).Error; err != nil {
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
		"user":         pos.User,
		"amount":       *request.Amount,
		"total_raised": presale.PublicRaisedUnits,
	}).Info("public contribution settled")

	events.Emit(events.SettlementEvent{
		Type:        events.TypeContribution,
		PresaleID:   presale.ID,
		Mint:        presale.Mint,
		User:        pos.User,
		Amount:      *request.Amount,
		Tokens:      tokensDelta,
		TotalRaised: presale.PublicRaisedUnits,
		Timestamp:   now,
	})

	c.JSON(http.StatusOK, gin.H{
		"position":     pos,
		"total_raised": presale.PublicRaisedUnits,
	})
}

// ClaimTokens settles a user's pro-rata token claim from the token vault into
// the user's associated token account. Claims open once the presale is
// finalized and are idempotent per allocation.
func ClaimTokens(c *gin.Context) {
	var request ClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Mint == nil || request.User == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mint, user are required"})
		return
	}
	userKey, ok := parsePubkey(c, "user", *request.User)
	if !ok {
		return
	}
	mintKey, ok := parsePubkey(c, "mint", *request.Mint)
	if !ok {
		return
	}
	destination, err := tokenAccountAddress(userKey, mintKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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

	var pos models.UserPosition
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("presale_id = ? AND \"user\" = ?", presale.ID, *request.User).
		First(&pos).Error; err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	claimable, err := business.Claimable(presale, &pos)
	if err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	tokenVault, err := lockPresaleVault(tx, presale.ID, models.VaultKindToken)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	to, err := business.LockOrCreateExternal(tx, destination, presale.Mint)
	if err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}
	if err := business.MoveFunds(tx, presale.ID, tokenVault, to, claimable, "claim_tokens"); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	pos.TokensClaimed += claimable
	if err := tx.Model(&pos).Update("tokens_claimed", pos.TokensClaimed).Error; err != nil {
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
		"user":       pos.User,
		"tokens":     claimable,
	}).Info("tokens claimed")

	events.Emit(events.SettlementEvent{
		Type:      events.TypeTokensClaimed,
		PresaleID: presale.ID,
		Mint:      presale.Mint,
		User:      pos.User,
		Tokens:    claimable,
		Timestamp: instructionTime(request.Timestamp),
	})

	c.JSON(http.StatusOK, pos)
}

// ClaimRefund returns a user's full contribution from the public funds vault
// once refunds are enabled. One refund per position.
func ClaimRefund(c *gin.Context) {
	var request ClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Mint == nil || request.User == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mint, user are required"})
		return
	}
	if _, ok := parsePubkey(c, "user", *request.User); !ok {
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

	var pos models.UserPosition
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("presale_id = ? AND \"user\" = ?", presale.ID, *request.User).
		First(&pos).Error; err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	amount, err := business.RefundAmount(presale, &pos)
	if err != nil {
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
	to, err := business.LockOrCreateExternal(tx, pos.User, models.AssetNative)
	if err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}
	if err := business.MoveFunds(tx, presale.ID, fundsVault, to, amount, "claim_refund"); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	if err := tx.Model(&pos).Update("refunded", true).Error; err != nil {
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
		"user":       pos.User,
		"amount":     amount,
	}).Info("contribution refunded")

	events.Emit(events.SettlementEvent{
		Type:      events.TypeRefundClaimed,
		PresaleID: presale.ID,
		Mint:      presale.Mint,
		User:      pos.User,
		Amount:    amount,
		Timestamp: instructionTime(request.Timestamp),
	})

	pos.Refunded = true
	c.JSON(http.StatusOK, pos)
}

// GetUserPosition returns one user's position on a presale
func GetUserPosition(c *gin.Context) {
	mint := c.Param("mint")
	user := c.Param("user")

	var presale models.PresaleConfig
	if err := dbconfig.DB.Where("mint = ?", mint).First(&presale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	var pos models.UserPosition
	if err := dbconfig.DB.Where("presale_id = ? AND \"user\" = ?", presale.ID, user).
		First(&pos).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, pos)
}

// ListUserPositions returns all positions for a presale
func ListUserPositions(c *gin.Context) {
	mint := c.Param("mint")

	var presale models.PresaleConfig
	if err := dbconfig.DB.Where("mint = ?", mint).First(&presale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	var positions []models.UserPosition
	if err := dbconfig.DB.Where("presale_id = ?", presale.ID).
		Order("public_contribution_units desc").
		Find(&positions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, positions)
}
