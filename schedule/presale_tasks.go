package schedule

import (
	"time"

	"presalecontrol/internal/events"
	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/models"
	dbconfig "presalecontrol/pkg/config"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"
)

// StartScheduler wires the presale lifecycle cron jobs and starts them.
// Callers own the returned cron and stop it on shutdown.
func StartScheduler() (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())

	// 每30秒检查一次到期的预售并自动结算
	if _, err := c.AddFunc("*/30 * * * * *", func() {
		if err := FinalizeDuePresales(); err != nil {
			logger.Errorf("> 自动结算预售失败: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	// 每30秒检查一次到期的投票
	if _, err := c.AddFunc("*/30 * * * * *", func() {
		if err := ResolveOverdueVotes(); err != nil {
			logger.Errorf("> 自动结算投票失败: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	// 每分钟检查错过上线期限的预售并开启退款
	if _, err := c.AddFunc("0 * * * * *", func() {
		if err := EnableOverdueRefunds(); err != nil {
			logger.Errorf("> 自动开启退款失败: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	logger.Info("> 预售定时任务已启动")
	return c, nil
}

// FinalizeDuePresales finalizes every presale whose public window elapsed or
// whose hard cap is fully subscribed. Each presale settles in its own
// transaction so one failure does not hold up the rest.
func FinalizeDuePresales() error {
	now := time.Now().Unix()

	var due []models.PresaleConfig
	if err := dbconfig.DB.
		Where("is_finalized = ? AND (public_end_ts <= ? OR public_raised_units = hard_cap_units)", false, now).
		Find(&due).Error; err != nil {
		return err
	}

	for i := range due {
		mint := due[i].Mint
		tx := dbconfig.DB.Begin()

		var presale models.PresaleConfig
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("mint = ?", mint).First(&presale).Error; err != nil {
			tx.Rollback()
			continue
		}
		if err := business.ApplyFinalize(&presale, now); err != nil {
			// lost the race against a manual finalize, nothing to do
			tx.Rollback()
			continue
		}
		if err := tx.Model(&presale).Update("is_finalized", true).Error; err != nil {
			tx.Rollback()
			logger.Errorf("> 预售 %d 自动结算失败: %v", presale.ID, err)
			continue
		}
		if err := tx.Commit().Error; err != nil {
			logger.Errorf("> 预售 %d 自动结算提交失败: %v", presale.ID, err)
			continue
		}

		logger.Infof("> 预售 %d 已自动结算, 总募集 %d", presale.ID, presale.PublicRaisedUnits)
		events.Emit(events.SettlementEvent{
			Type:        events.TypePresaleFinalized,
			PresaleID:   presale.ID,
			Mint:        presale.Mint,
			TotalRaised: presale.PublicRaisedUnits,
			Timestamp:   now,
		})
	}
	return nil
}

// ResolveOverdueVotes tallies every vote whose deadline passed.
func ResolveOverdueVotes() error {
	now := time.Now().Unix()

	var due []models.PresaleConfig
	if err := dbconfig.DB.
		Where("phase = ? AND voting_ends_ts <= ?", models.PhaseVoting, now).
		Find(&due).Error; err != nil {
		return err
	}

	for i := range due {
		mint := due[i].Mint
		tx := dbconfig.DB.Begin()

		var presale models.PresaleConfig
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("mint = ?", mint).First(&presale).Error; err != nil {
			tx.Rollback()
			continue
		}
		if err := business.ApplyResolveVote(&presale, now); err != nil {
			tx.Rollback()
			continue
		}
		if err := tx.Save(&presale).Error; err != nil {
			tx.Rollback()
			logger.Errorf("> 预售 %d 投票自动结算失败: %v", presale.ID, err)
			continue
		}
		if err := tx.Commit().Error; err != nil {
			logger.Errorf("> 预售 %d 投票结算提交失败: %v", presale.ID, err)
			continue
		}

		logger.Infof("> 预售 %d 投票已结算, 结果 %d", presale.ID, presale.Outcome)
		events.Emit(events.SettlementEvent{
			Type:      events.TypeVoteResolved,
			PresaleID: presale.ID,
			Mint:      presale.Mint,
			Timestamp: now,
		})
	}
	return nil
}

// EnableOverdueRefunds opens refunds on launchable presales whose creator
// missed the launch deadline.
func EnableOverdueRefunds() error {
	now := time.Now().Unix()

	var due []models.PresaleConfig
	if err := dbconfig.DB.
		Where("phase = ? AND launch_deadline_ts < ?", models.PhaseLaunchable, now).
		Find(&due).Error; err != nil {
		return err
	}

	for i := range due {
		mint := due[i].Mint
		tx := dbconfig.DB.Begin()

		var presale models.PresaleConfig
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("mint = ?", mint).First(&presale).Error; err != nil {
			tx.Rollback()
			continue
		}
		if err := business.ApplyEnableRefunds(&presale, now); err != nil {
			tx.Rollback()
			continue
		}
		if err := tx.Save(&presale).Error; err != nil {
			tx.Rollback()
			logger.Errorf("> 预售 %d 自动开启退款失败: %v", presale.ID, err)
			continue
		}
		if err := tx.Commit().Error; err != nil {
			logger.Errorf("> 预售 %d 退款提交失败: %v", presale.ID, err)
			continue
		}

		logger.Infof("> 预售 %d 已开启退款", presale.ID)
		events.Emit(events.SettlementEvent{
			Type:      events.TypeRefundsEnabled,
			PresaleID: presale.ID,
			Mint:      presale.Mint,
			Timestamp: now,
		})
	}
	return nil
}
