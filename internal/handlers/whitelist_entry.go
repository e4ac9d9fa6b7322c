package handlers

import (
	"net/http"
	"time"

	"presalecontrol/internal/events"
	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/models"
	dbconfig "presalecontrol/pkg/config"
	presalesolana "presalecontrol/pkg/solana"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// WhitelistEntryRequest represents the request body for whitelisting a user
type WhitelistEntryRequest struct {
	Caller               *string `json:"caller"`
	Mint                 *string `json:"mint"`
	User                 *string `json:"user"`
	Tier                 *uint8  `json:"tier"`
	MaxContributionUnits *uint64 `json:"max_contribution_units"`
}

// WhitelistUser creates a whitelist entry for a user on a presale. Entries
// are create-only; whitelisting the same user twice is a conflict.
func WhitelistUser(c *gin.Context) {
	var request WhitelistEntryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Caller == nil || request.Mint == nil || request.User == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "caller, mint, user are required"})
		return
	}
	userKey, ok := parsePubkey(c, "user", *request.User)
	if !ok {
		return
	}

	tier := uint8(1)
	if request.Tier != nil {
		tier = *request.Tier
	}
	maxContribution := uint64(0)
	if request.MaxContributionUnits != nil {
		maxContribution = *request.MaxContributionUnits
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

	var existing models.WhitelistEntry
	if err := tx.Where("presale_id = ? AND \"user\" = ?", presale.ID, *request.User).
		First(&existing).Error; err == nil {
		tx.Rollback()
		respondSettleError(c, business.ErrDuplicateWhitelist)
		return
	}

	presaleKey := solana.MustPublicKeyFromBase58(presale.Address)
	pda, err := presalesolana.GetWhitelistPDA(presaleKey, userKey)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entry := models.WhitelistEntry{
		PresaleID:            presale.ID,
		User:                 *request.User,
		Address:              pda.Address.String(),
		Tier:                 tier,
		MaxContributionUnits: maxContribution,
	}
	if err := tx.Create(&entry).Error; err != nil {
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
		"user":       entry.User,
		"tier":       entry.Tier,
	}).Info("user whitelisted")

	events.Emit(events.SettlementEvent{
		Type:      events.TypeUserWhitelisted,
		PresaleID: presale.ID,
		Mint:      presale.Mint,
		User:      entry.User,
		Amount:    entry.MaxContributionUnits,
		Timestamp: time.Now().Unix(),
	})

	c.JSON(http.StatusCreated, entry)
}

// ListWhitelistEntries returns all whitelist entries for a presale
func ListWhitelistEntries(c *gin.Context) {
	mint := c.Param("mint")

	var presale models.PresaleConfig
	if err := dbconfig.DB.Where("mint = ?", mint).First(&presale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	var entries []models.WhitelistEntry
	if err := dbconfig.DB.Where("presale_id = ?", presale.ID).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}
