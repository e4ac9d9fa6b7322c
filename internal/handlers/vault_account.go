package handlers

import (
	"net/http"
	"strconv"

	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/models"
	dbconfig "presalecontrol/pkg/config"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// DepositRequest represents the request body for crediting an external
// account with an observed on-chain deposit
type DepositRequest struct {
	Address *string `json:"address"`
	Asset   *string `json:"asset"`
	Amount  *uint64 `json:"amount"`
}

// DepositToAccount credits an external book account. This is the only entry
// point for value into the book; presale vaults cannot be credited directly.
func DepositToAccount(c *gin.Context) {
	var request DepositRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Address == nil || request.Asset == nil || request.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address, asset, amount are required"})
		return
	}
	if *request.Amount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	tx := dbconfig.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	acct, err := business.LockOrCreateExternal(tx, *request.Address, *request.Asset)
	if err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}
	if acct.Kind != models.VaultKindExternal {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "presale vaults cannot be credited directly"})
		return
	}
	if err := business.CreditAccount(tx, acct, *request.Amount, "deposit"); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.WithFields(log.Fields{
		"address": acct.Address,
		"asset":   acct.Asset,
		"amount":  *request.Amount,
	}).Info("external deposit credited")

	c.JSON(http.StatusOK, acct)
}

// GetVaultAccount returns one book account by address
func GetVaultAccount(c *gin.Context) {
	address := c.Param("address")

	var acct models.VaultAccount
	if err := dbconfig.DB.Where("address = ?", address).First(&acct).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, acct)
}

// ListPresaleVaults returns the custodial vaults of a presale
func ListPresaleVaults(c *gin.Context) {
	mint := c.Param("mint")

	var presale models.PresaleConfig
	if err := dbconfig.DB.Where("mint = ?", mint).First(&presale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	var vaults []models.VaultAccount
	if err := dbconfig.DB.Where("presale_id = ?", presale.ID).Find(&vaults).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, vaults)
}

// ListTransferRecords returns the transfer journal for a presale, newest first
func ListTransferRecords(c *gin.Context) {
	mint := c.Param("mint")

	var presale models.PresaleConfig
	if err := dbconfig.DB.Where("mint = ?", mint).First(&presale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	limit := 100
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	var records []models.VaultTransferRecord
	if err := dbconfig.DB.Where("presale_id = ?", presale.ID).
		Order("id desc").
		Limit(limit).
		Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}
