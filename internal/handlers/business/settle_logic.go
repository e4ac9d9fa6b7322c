package business

import (
	"presalecontrol/internal/models"
	"presalecontrol/pkg/utils"
)

// Reference calibration: 800M tokens at 6 decimals, split 400M public /
// 300M liquidity / 100M ecosystem. Used as defaults when a presale is
// created without an explicit split.
const (
	DefaultTokenDecimals       uint8  = 6
	DefaultPublicTokenCap      uint64 = 400_000_000_000_000
	DefaultLpTokenAllocation   uint64 = 300_000_000_000_000
	DefaultEcosystemAllocation uint64 = 100_000_000_000_000

	MaxFeeBps uint16 = 10_000

	// After a launch vote passes, the creator has this long to launch.
	LaunchWindowSeconds int64 = 24 * 60 * 60
)

// AssertAdmin verifies the caller is the platform owner or operator.
func AssertAdmin(platform *models.PlatformConfig, caller string) error {
	if !platform.IsAdmin(caller) {
		return ErrUnauthorized
	}
	return nil
}

// ValidateFee checks the platform fee rate.
func ValidateFee(feeBps uint16) error {
	if feeBps > MaxFeeBps {
		return ErrInvalidFee
	}
	return nil
}

// ValidatePresaleParams checks creation-time sale parameters.
func ValidatePresaleParams(publicStartTs, publicEndTs int64, price, hardCap uint64) error {
	if publicStartTs >= publicEndTs {
		return ErrInvalidWindow
	}
	if price == 0 {
		return ErrInvalidPrice
	}
	if hardCap == 0 {
		return ErrInvalidCap
	}
	return nil
}

// ValidateAllocationSplit checks that the three-way token split is internally
// consistent: the sum must not overflow and the public cap must cover the
// allocation a fully subscribed hard cap would produce.
func ValidateAllocationSplit(p *models.PresaleConfig) error {
	sum, ok := utils.CheckedAdd(p.PublicTokenCap, p.LpTokenAllocation)
	if ok {
		sum, ok = utils.CheckedAdd(sum, p.EcosystemAllocation)
	}
	if !ok {
		return ErrArithmeticOverflow
	}
	if sum == 0 {
		return ErrInvalidCap
	}

	maxPublicTokens, err := TokensForContribution(p.HardCapUnits, p.TokenDecimals, p.PublicPriceUnitsPerToken)
	if err != nil {
		return err
	}
	if maxPublicTokens > p.PublicTokenCap {
		return ErrInvalidCap
	}
	return nil
}

// TokensForContribution converts cumulative contribution units into a raw
// token allocation: floor(units * 10^decimals / price).
func TokensForContribution(units uint64, decimals uint8, price uint64) (uint64, error) {
	if price == 0 {
		return 0, ErrInvalidPrice
	}
	scale, ok := utils.Pow10(decimals)
	if !ok {
		return 0, ErrArithmeticOverflow
	}
	scaled, ok := utils.CheckedMul(units, scale)
	if !ok {
		return 0, ErrArithmeticOverflow
	}
	tokens, ok := utils.CheckedDiv(scaled, price)
	if !ok {
		return 0, ErrInvalidPrice
	}
	return tokens, nil
}

// ValidateFunding checks the token-vault funding instruction. The deposited
// amount must equal the full three-way commitment and re-funding is rejected.
func ValidateFunding(p *models.PresaleConfig, caller string, amount uint64) error {
	if caller != p.Authority {
		return ErrUnauthorized
	}
	if p.IsFunded {
		return ErrAlreadyFunded
	}
	if amount != p.TotalTokenCommitment() {
		return ErrInvalidCap
	}
	return nil
}

// ApplyContribution validates a public contribution and, when valid, mutates
// the presale totals and the user position in place. The whitelist entry is
// optional: when present its cap is enforced cumulatively, when absent only
// the hard cap applies. Returns the number of tokens newly allocated.
//
// Callers must hold row locks on both the presale and the position for the
// duration of the surrounding transaction.
func ApplyContribution(p *models.PresaleConfig, pos *models.UserPosition, wl *models.WhitelistEntry, amount uint64, now int64) (uint64, error) {
	if p.IsFinalized {
		return 0, ErrAlreadyFinalized
	}
	if now < p.PublicStartTs || now > p.PublicEndTs {
		return 0, ErrWindowClosed
	}

	newRaised, ok := utils.CheckedAdd(p.PublicRaisedUnits, amount)
	if !ok {
		return 0, ErrArithmeticOverflow
	}
	if newRaised > p.HardCapUnits {
		return 0, ErrCapExceeded
	}

	newContribution, ok := utils.CheckedAdd(pos.PublicContributionUnits, amount)
	if !ok {
		return 0, ErrArithmeticOverflow
	}
	if wl != nil && wl.MaxContributionUnits > 0 && newContribution > wl.MaxContributionUnits {
		return 0, ErrWhitelistCapExceeded
	}

	newAllocation, err := TokensForContribution(newContribution, p.TokenDecimals, p.PublicPriceUnitsPerToken)
	if err != nil {
		return 0, err
	}
	// Allocation never decreases, even if integer division rounds against a
	// later smaller increment
	if newAllocation < pos.TokensAllocated {
		newAllocation = pos.TokensAllocated
	}
	delta := newAllocation - pos.TokensAllocated

	p.PublicRaisedUnits = newRaised
	pos.PublicContributionUnits = newContribution
	pos.TokensAllocated = newAllocation
	if p.Phase == models.PhasePending {
		p.Phase = models.PhasePublicActive
	}

	return delta, nil
}

// ApplyFinalize closes the sale one-way. The gate requires the public window
// to have elapsed or the hard cap to be fully subscribed.
func ApplyFinalize(p *models.PresaleConfig, now int64) error {
	if p.IsFinalized {
		return ErrAlreadyFinalized
	}
	if now < p.PublicEndTs && p.PublicRaisedUnits != p.HardCapUnits {
		return ErrWindowNotElapsed
	}
	p.IsFinalized = true
	return nil
}

// MigrationFee computes the treasury fee on the raised total.
func MigrationFee(raised uint64, feeBps uint16) (uint64, error) {
	product, ok := utils.CheckedMul(raised, uint64(feeBps))
	if !ok {
		return 0, ErrArithmeticOverflow
	}
	return product / uint64(MaxFeeBps), nil
}

// ValidateMigration checks the migrate preconditions.
func ValidateMigration(p *models.PresaleConfig) error {
	if !p.IsFinalized {
		return ErrNotFinalized
	}
	if p.IsMigrated {
		return ErrAlreadyMigrated
	}
	return nil
}

// Claimable returns the user's unclaimed allocation. Claiming opens once the
// presale is finalized; the claimable supply was escrowed at funding time and
// does not depend on migration. A refundable presale pays contributions back
// instead, so claims close the moment refunds open.
func Claimable(p *models.PresaleConfig, pos *models.UserPosition) (uint64, error) {
	if !p.IsFinalized {
		return 0, ErrNotFinalized
	}
	if p.RefundEnabled || p.Phase == models.PhaseRefundable {
		return 0, ErrRefundsEnabled
	}
	claimable, ok := utils.CheckedSub(pos.TokensAllocated, pos.TokensClaimed)
	if !ok || claimable == 0 {
		return 0, ErrNothingToClaim
	}
	return claimable, nil
}

// ApplyStartVote opens a launch/refund vote.
func ApplyStartVote(p *models.PresaleConfig, votingEndsTs, now int64) error {
	if p.IsMigrated {
		return ErrAlreadyMigrated
	}
	if votingEndsTs <= now {
		return ErrInvalidWindow
	}
	p.Phase = models.PhaseVoting
	p.VoteYesWeight = 0
	p.VoteNoWeight = 0
	p.VotingEndsTs = votingEndsTs
	p.Outcome = models.OutcomeUndecided
	return nil
}

// ApplyCastVote records one position's vote, weighted by its contribution.
func ApplyCastVote(p *models.PresaleConfig, pos *models.UserPosition, supportLaunch bool, now int64) error {
	if p.Phase != models.PhaseVoting {
		return ErrInvalidPhase
	}
	if now > p.VotingEndsTs {
		return ErrVotingClosed
	}
	if pos.HasVoted {
		return ErrAlreadyVoted
	}
	weight := pos.PublicContributionUnits
	if weight == 0 {
		return ErrNoVoteWeight
	}

	if supportLaunch {
		sum, ok := utils.CheckedAdd(p.VoteYesWeight, weight)
		if !ok {
			return ErrArithmeticOverflow
		}
		p.VoteYesWeight = sum
	} else {
		sum, ok := utils.CheckedAdd(p.VoteNoWeight, weight)
		if !ok {
			return ErrArithmeticOverflow
		}
		p.VoteNoWeight = sum
	}

	pos.HasVoted = true
	return nil
}

// ApplyResolveVote settles the vote once its deadline passed. A launch win
// starts the creator's launch countdown; otherwise refunds open immediately.
func ApplyResolveVote(p *models.PresaleConfig, now int64) error {
	if p.Phase != models.PhaseVoting {
		return ErrInvalidPhase
	}
	if now < p.VotingEndsTs {
		return ErrWindowNotElapsed
	}

	if p.VoteYesWeight > p.VoteNoWeight {
		p.Outcome = models.OutcomeLaunch
		p.Phase = models.PhaseLaunchable
		base := now
		if p.TgeTs > base {
			base = p.TgeTs
		}
		p.LaunchDeadlineTs = base + LaunchWindowSeconds
		p.RefundEnabled = false
	} else {
		p.Outcome = models.OutcomeRefund
		p.Phase = models.PhaseRefundable
		p.RefundEnabled = true
	}
	return nil
}

// ApplyEnableRefunds flips a launchable presale to refundable after the
// creator missed the launch deadline.
func ApplyEnableRefunds(p *models.PresaleConfig, now int64) error {
	if p.Phase != models.PhaseLaunchable {
		return ErrInvalidPhase
	}
	if now <= p.LaunchDeadlineTs {
		return ErrWindowNotElapsed
	}
	p.Phase = models.PhaseRefundable
	p.RefundEnabled = true
	p.Outcome = models.OutcomeRefund
	return nil
}

// RefundAmount returns the user's refundable contribution and marks nothing;
// the caller debits the public funds vault and sets Refunded in the same
// transaction. A position that already took tokens out of the token vault
// keeps them and forfeits the refund.
func RefundAmount(p *models.PresaleConfig, pos *models.UserPosition) (uint64, error) {
	if !p.RefundEnabled || p.Phase != models.PhaseRefundable {
		return 0, ErrRefundsNotEnabled
	}
	if pos.TokensClaimed > 0 {
		return 0, ErrAlreadyClaimed
	}
	if pos.Refunded {
		return 0, ErrAlreadyRefunded
	}
	if pos.PublicContributionUnits == 0 {
		return 0, ErrNothingToClaim
	}
	return pos.PublicContributionUnits, nil
}

// ValidateWithdrawForLaunch checks the authority's sweep of the remaining
// raised funds after a winning launch vote.
func ValidateWithdrawForLaunch(p *models.PresaleConfig, caller string) error {
	if caller != p.Authority {
		return ErrUnauthorized
	}
	if !p.IsFinalized {
		return ErrNotFinalized
	}
	if p.Outcome != models.OutcomeLaunch {
		return ErrLaunchNotApproved
	}
	return nil
}
