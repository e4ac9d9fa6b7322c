package handlers

import (
	"errors"
	"net/http"
	"time"

	"presalecontrol/internal/events"
	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/models"
	dbconfig "presalecontrol/pkg/config"
	presalesolana "presalecontrol/pkg/solana"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PlatformConfigRequest represents the request body for platform initialization
type PlatformConfigRequest struct {
	Owner    *string `json:"owner"`
	Operator *string `json:"operator"`
	Treasury *string `json:"treasury"`
	FeeBps   *uint16 `json:"fee_bps"`
}

// InitializePlatform creates the singleton platform config. Runs exactly once;
// a second call is rejected without touching the existing row.
func InitializePlatform(c *gin.Context) {
	var request PlatformConfigRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if request.Owner == nil || request.Operator == nil || request.Treasury == nil || request.FeeBps == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner, operator, treasury, fee_bps are required"})
		return
	}
	if _, ok := parsePubkey(c, "owner", *request.Owner); !ok {
		return
	}
	if _, ok := parsePubkey(c, "operator", *request.Operator); !ok {
		return
	}
	if _, ok := parsePubkey(c, "treasury", *request.Treasury); !ok {
		return
	}
	if err := business.ValidateFee(*request.FeeBps); err != nil {
		respondSettleError(c, err)
		return
	}

	tx := dbconfig.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var existing models.PlatformConfig
	err := tx.First(&existing, models.PlatformConfigID).Error
	if err == nil {
		tx.Rollback()
		respondSettleError(c, business.ErrAlreadyInitialized)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	platform := models.PlatformConfig{
		ID:       models.PlatformConfigID,
		Owner:    *request.Owner,
		Operator: *request.Operator,
		Treasury: *request.Treasury,
		FeeBps:   *request.FeeBps,
	}
	if err := tx.Create(&platform).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.WithFields(log.Fields{
		"owner":   platform.Owner,
		"fee_bps": platform.FeeBps,
	}).Info("platform initialized")

	events.Emit(events.SettlementEvent{
		Type:      events.TypePlatformInitialized,
		User:      platform.Owner,
		Timestamp: time.Now().Unix(),
	})

	c.JSON(http.StatusCreated, platform)
}

// GetPlatformConfig returns the platform config with its derived PDA
func GetPlatformConfig(c *gin.Context) {
	var platform models.PlatformConfig
	if err := dbconfig.DB.First(&platform, models.PlatformConfigID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Platform not initialized"})
		return
	}

	pda, err := presalesolana.GetPlatformPDA()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"platform": platform,
		"address":  pda.Address.String(),
		"bump":     pda.Bump,
	})
}
