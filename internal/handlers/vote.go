package handlers

import (
	"net/http"

	"presalecontrol/internal/events"
	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/models"
	dbconfig "presalecontrol/pkg/config"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"
)

// StartVoteRequest represents the request body for opening a launch vote
type StartVoteRequest struct {
	Caller       *string `json:"caller"`
	Mint         *string `json:"mint"`
	VotingEndsTs *int64  `json:"voting_ends_ts"`
	Timestamp    *int64  `json:"timestamp"`
}

// CastVoteRequest represents the request body for casting a vote
type CastVoteRequest struct {
	Mint          *string `json:"mint"`
	User          *string `json:"user"`
	SupportLaunch *bool   `json:"support_launch"`
	Timestamp     *int64  `json:"timestamp"`
}

// StartVote opens a contribution-weighted launch/refund vote on a finalized
// presale. Admin only.
func StartVote(c *gin.Context) {
	var request StartVoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Caller == nil || request.Mint == nil || request.VotingEndsTs == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "caller, mint, voting_ends_ts are required"})
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
	if !presale.IsFinalized {
		tx.Rollback()
		respondSettleError(c, business.ErrNotFinalized)
		return
	}
	if err := business.ApplyStartVote(presale, *request.VotingEndsTs, now); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	if err := tx.Save(presale).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.WithFields(log.Fields{
		"presale_id":     presale.ID,
		"voting_ends_ts": presale.VotingEndsTs,
	}).Info("launch vote started")

	events.Emit(events.SettlementEvent{
		Type:      events.TypeVoteStarted,
		PresaleID: presale.ID,
		Mint:      presale.Mint,
		Timestamp: now,
	})

	c.JSON(http.StatusOK, presale)
}

// CastVote records one contributor's vote, weighted by contribution.
func CastVote(c *gin.Context) {
	var request CastVoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Mint == nil || request.User == nil || request.SupportLaunch == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mint, user, support_launch are required"})
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

	var pos models.UserPosition
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("presale_id = ? AND \"user\" = ?", presale.ID, *request.User).
		First(&pos).Error; err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	if err := business.ApplyCastVote(presale, &pos, *request.SupportLaunch, now); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	if err := tx.Save(presale).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := tx.Model(&pos).Update("has_voted", true).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	events.Emit(events.SettlementEvent{
		Type:      events.TypeVoteCast,
		PresaleID: presale.ID,
		Mint:      presale.Mint,
		User:      pos.User,
		Amount:    pos.PublicContributionUnits,
		Timestamp: now,
	})

	c.JSON(http.StatusOK, gin.H{
		"vote_yes_weight": presale.VoteYesWeight,
		"vote_no_weight":  presale.VoteNoWeight,
	})
}

// ResolveVote tallies a closed vote: a yes majority makes the presale
// launchable with a launch deadline, otherwise refunds open. Admin only.
func ResolveVote(c *gin.Context) {
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
	if err := business.ApplyResolveVote(presale, now); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	if err := tx.Save(presale).Error; err != nil {
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
		"outcome":    presale.Outcome,
		"yes":        presale.VoteYesWeight,
		"no":         presale.VoteNoWeight,
	}).Info("launch vote resolved")

	events.Emit(events.SettlementEvent{
		Type:      events.TypeVoteResolved,
		PresaleID: presale.ID,
		Mint:      presale.Mint,
		Timestamp: now,
	})

	c.JSON(http.StatusOK, presale)
}

// EnableRefunds flips a launchable presale to refundable after the creator
// missed the launch deadline. Admin only.
func EnableRefunds(c *gin.Context) {
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
	if err := business.ApplyEnableRefunds(presale, now); err != nil {
		tx.Rollback()
		respondSettleError(c, err)
		return
	}

	if err := tx.Save(presale).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.WithField("presale_id", presale.ID).Info("refunds enabled")

	events.Emit(events.SettlementEvent{
		Type:      events.TypeRefundsEnabled,
		PresaleID: presale.ID,
		Mint:      presale.Mint,
		Timestamp: now,
	})

	c.JSON(http.StatusOK, presale)
}
