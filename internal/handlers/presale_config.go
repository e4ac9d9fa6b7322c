package handlers

import (
	"errors"
	"net/http"
	"strconv"
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

// PresaleConfigRequest represents the request body for creating a presale
type PresaleConfigRequest struct {
	Caller                   *string `json:"caller"`
	Mint                     *string `json:"mint"`
	Authority                *string `json:"authority"`
	TokenDecimals            *uint8  `json:"token_decimals"`
	PublicStartTs            *int64  `json:"public_start_ts"`
	PublicEndTs              *int64  `json:"public_end_ts"`
	TgeTs                    *int64  `json:"tge_ts"`
	PublicPriceUnitsPerToken *uint64 `json:"public_price_units_per_token"`
	HardCapUnits             *uint64 `json:"hard_cap_units"`
	PublicTokenCap           *uint64 `json:"public_token_cap"`
	LpTokenAllocation        *uint64 `json:"lp_token_allocation"`
	EcosystemAllocation      *uint64 `json:"ecosystem_allocation"`
}

// PresaleConfigResp represents the response structure for a presale
type PresaleConfigResp struct {
	models.PresaleConfig
	TokenVault       string `json:"token_vault"`
	PublicFundsVault string `json:"public_funds_vault"`
	EcosystemVault   string `json:"ecosystem_vault"`
}

// CreatePresale creates a presale for a mint together with its three custodial
// vault accounts. Only the platform owner or operator may create presales.
func CreatePresale(c *gin.Context) {
	var request PresaleConfigRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 验证必填字段
	if request.Caller == nil || request.Mint == nil || request.Authority == nil ||
		request.PublicStartTs == nil || request.PublicEndTs == nil ||
		request.PublicPriceUnitsPerToken == nil || request.HardCapUnits == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "caller, mint, authority, public_start_ts, public_end_ts, public_price_units_per_token, hard_cap_units are required"})
		return
	}

	mintKey, ok := parsePubkey(c, "mint", *request.Mint)
	if !ok {
		return
	}
	if _, ok := parsePubkey(c, "authority", *request.Authority); !ok {
		return
	}

	if err := business.ValidatePresaleParams(*request.PublicStartTs, *request.PublicEndTs,
		*request.PublicPriceUnitsPerToken, *request.HardCapUnits); err != nil {
		respondSettleError(c, err)
		return
	}

	decimals := business.DefaultTokenDecimals
	if request.TokenDecimals != nil {
		decimals = *request.TokenDecimals
	}
	tgeTs := int64(0)
	if request.TgeTs != nil {
		tgeTs = *request.TgeTs
	}

	// 默认三段代币分配
	publicTokenCap := business.DefaultPublicTokenCap
	if request.PublicTokenCap != nil {
		publicTokenCap = *request.PublicTokenCap
	}
	lpTokenAllocation := business.DefaultLpTokenAllocation
	if request.LpTokenAllocation != nil {
		lpTokenAllocation = *request.LpTokenAllocation
	}
	ecosystemAllocation := business.DefaultEcosystemAllocation
	if request.EcosystemAllocation != nil {
		ecosystemAllocation = *request.EcosystemAllocation
	}

	// 派生预售及金库 PDA
	presalePDA, err := presalesolana.GetPresalePDA(mintKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	tokenVaultPDA, err := presalesolana.GetTokenVaultPDA(presalePDA.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	publicFundsPDA, err := presalesolana.GetPublicFundsVaultPDA(presalePDA.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ecosystemPDA, err := presalesolana.GetEcosystemVaultPDA(presalePDA.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
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

	var existing models.PresaleConfig
	if err := tx.Where("mint = ?", *request.Mint).First(&existing).Error; err == nil {
		tx.Rollback()
		respondSettleError(c, business.ErrDuplicatePresale)
		return
	}

	presale := models.PresaleConfig{
		Mint:                     *request.Mint,
		Address:                  presalePDA.Address.String(),
		Authority:                *request.Authority,
		TokenDecimals:            decimals,
		PublicStartTs:            *request.PublicStartTs,
		PublicEndTs:              *request.PublicEndTs,
		TgeTs:                    tgeTs,
		PublicPriceUnitsPerToken: *request.PublicPriceUnitsPerToken,
		HardCapUnits:             *request.HardCapUnits,
		PublicTokenCap:           publicTokenCap,
		LpTokenAllocation:        lpTokenAllocation,
		EcosystemAllocation:      ecosystemAllocation,
	}
	if err := business.ValidateAllocationSplit(&presale); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}
	if err := tx.Create(&presale).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 三个金库账户与预售一同落库
	vaults := []models.VaultAccount{
		{Address: tokenVaultPDA.Address.String(), PresaleID: presale.ID, Kind: models.VaultKindToken, Asset: presale.Mint},
		{Address: publicFundsPDA.Address.String(), PresaleID: presale.ID, Kind: models.VaultKindPublicFunds, Asset: models.AssetNative},
		{Address: ecosystemPDA.Address.String(), PresaleID: presale.ID, Kind: models.VaultKindEcosystem, Asset: presale.Mint},
	}
	for i := range vaults {
		if err := tx.Create(&vaults[i]).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.WithFields(log.Fields{
		"presale_id": presale.ID,
		"mint":       presale.Mint,
		"hard_cap":   presale.HardCapUnits,
	}).Info("presale created")

	events.Emit(events.SettlementEvent{
		Type:      events.TypePresaleCreated,
		PresaleID: presale.ID,
		Mint:      presale.Mint,
		User:      presale.Authority,
		Timestamp: time.Now().Unix(),
	})

	c.JSON(http.StatusCreated, buildPresaleResp(&presale, vaults))
}

// FundPresaleRequest represents the request body for funding the token vault
type FundPresaleRequest struct {
	Caller    *string `json:"caller"`
	Mint      *string `json:"mint"`
	Amount    *uint64 `json:"amount"`
	Timestamp *int64  `json:"timestamp"`
}

// FundPresaleTokens moves the full token commitment from the authority's token
// account into the presale token vault and flips is_funded. The amount must
// equal the creation-time commitment exactly.
func FundPresaleTokens(c *gin.Context) {
	var request FundPresaleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Caller == nil || request.Mint == nil || request.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "caller, mint, amount are required"})
		return
	}
	callerKey, ok := parsePubkey(c, "caller", *request.Caller)
	if !ok {
		return
	}
	mintKey, ok := parsePubkey(c, "mint", *request.Mint)
	if !ok {
		return
	}
	source, err := tokenAccountAddress(callerKey, mintKey)
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
	if err := business.ValidateFunding(presale, *request.Caller, *request.Amount); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	from, err := business.LockAccount(tx, source)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondSettleError(c, business.ErrInsufficientBalance)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	tokenVault, err := lockPresaleVault(tx, presale.ID, models.VaultKindToken)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := business.MoveFunds(tx, presale.ID, from, tokenVault, *request.Amount, "fund_presale"); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	presale.IsFunded = true
	if err := tx.Model(presale).Update("is_funded", true).Error; err != nil {
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
		"amount":     *request.Amount,
	}).Info("presale token vault funded")

	events.Emit(events.SettlementEvent{
		Type:      events.TypePresaleFunded,
		PresaleID: presale.ID,
		Mint:      presale.Mint,
		User:      *request.Caller,
		Amount:    *request.Amount,
		Timestamp: instructionTime(request.Timestamp),
	})

	c.JSON(http.StatusOK, presale)
}

// ListPresales returns a paginated list of presales
func ListPresales(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	pageSize := 10
	if ps := c.Query("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}

	var total int64
	if err := dbconfig.DB.Model(&models.PresaleConfig{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var presales []models.PresaleConfig
	if err := dbconfig.DB.Order("id desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&presales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	c.JSON(http.StatusOK, gin.H{
		"data": presales,
		"pagination": gin.H{
			"current_page": page,
			"page_size":    pageSize,
			"total_pages":  totalPages,
			"total_count":  total,
		},
	})
}

// GetPresale returns one presale by mint, with its vault accounts
func GetPresale(c *gin.Context) {
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

	c.JSON(http.StatusOK, buildPresaleResp(&presale, vaults))
}

func buildPresaleResp(presale *models.PresaleConfig, vaults []models.VaultAccount) *PresaleConfigResp {
	resp := &PresaleConfigResp{PresaleConfig: *presale}
	for _, v := range vaults {
		switch v.Kind {
		case models.VaultKindToken:
			resp.TokenVault = v.Address
		case models.VaultKindPublicFunds:
			resp.PublicFundsVault = v.Address
		case models.VaultKindEcosystem:
			resp.EcosystemVault = v.Address
		}
	}
	return resp
}
