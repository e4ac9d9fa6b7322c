package events

import (
	"time"

	dbconfig "presalecontrol/pkg/config"

	log "github.com/sirupsen/logrus"
)

// Settlement event types, one per mutating instruction.
const (
	TypePlatformInitialized = "platform_initialized"
	TypePresaleCreated      = "presale_created"
	TypePresaleFunded       = "presale_funded"
	TypeUserWhitelisted     = "user_whitelisted"
	TypeContribution        = "contribution"
	TypePresaleFinalized    = "presale_finalized"
	TypePresaleMigrated     = "presale_migrated"
	TypeTokensClaimed       = "tokens_claimed"
	TypeRefundClaimed       = "refund_claimed"
	TypeVoteStarted         = "vote_started"
	TypeVoteCast            = "vote_cast"
	TypeVoteResolved        = "vote_resolved"
	TypeRefundsEnabled      = "refunds_enabled"
	TypeWithdrawnForLaunch  = "withdrawn_for_launch"
)

// SettlementEvent is emitted after a settlement instruction commits. It is
// published to the RabbitMQ settlement queue and fanned out to websocket
// subscribers.
type SettlementEvent struct {
	Type        string `json:"type"`
	PresaleID   uint   `json:"presale_id,omitempty"`
	Mint        string `json:"mint,omitempty"`
	User        string `json:"user,omitempty"`
	Amount      uint64 `json:"amount,omitempty"`
	Tokens      uint64 `json:"tokens,omitempty"`
	TotalRaised uint64 `json:"total_raised,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

var publisher *dbconfig.Publisher

// InitPublisher wires the RabbitMQ publisher. Safe to skip when RabbitMQ is
// not configured; events then only reach websocket subscribers.
func InitPublisher() error {
	p, err := dbconfig.NewPublisher()
	if err != nil {
		return err
	}
	publisher = p
	return nil
}

// Emit publishes a settlement event. Emission is best-effort: a broken queue
// or subscriber never fails the already-committed instruction.
func Emit(event SettlementEvent) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	if publisher != nil {
		if err := publisher.Publish(dbconfig.SettlementEventsQueue, event); err != nil {
			log.Errorf("Failed to publish settlement event %s: %v", event.Type, err)
		}
	}

	DefaultBroadcaster.Broadcast(event)
}
