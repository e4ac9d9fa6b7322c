package business

import (
	"testing"

	"presalecontrol/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference calibration: 1% fee, 400 SOL hard cap at 0.001 SOL per token,
// 800M tokens split 400M/300M/100M at 6 decimals.
func calibratedPresale() *models.PresaleConfig {
	return &models.PresaleConfig{
		ID:                       1,
		Mint:                     "TokenMint111111111111111111111111111111111",
		Authority:                "Authority11111111111111111111111111111111",
		TokenDecimals:            6,
		PublicStartTs:            1_000,
		PublicEndTs:              2_000,
		PublicPriceUnitsPerToken: 1_000_000,
		HardCapUnits:             400_000_000_000,
		PublicTokenCap:           DefaultPublicTokenCap,
		LpTokenAllocation:        DefaultLpTokenAllocation,
		EcosystemAllocation:      DefaultEcosystemAllocation,
	}
}

func TestValidateFee(t *testing.T) {
	assert.NoError(t, ValidateFee(0))
	assert.NoError(t, ValidateFee(100))
	assert.NoError(t, ValidateFee(10_000))
	assert.ErrorIs(t, ValidateFee(10_001), ErrInvalidFee)
}

func TestAssertAdmin(t *testing.T) {
	platform := &models.PlatformConfig{Owner: "owner", Operator: "operator"}

	assert.NoError(t, AssertAdmin(platform, "owner"))
	assert.NoError(t, AssertAdmin(platform, "operator"))
	assert.ErrorIs(t, AssertAdmin(platform, "someone"), ErrUnauthorized)
}

func TestValidatePresaleParams(t *testing.T) {
	assert.NoError(t, ValidatePresaleParams(1_000, 2_000, 1_000_000, 400_000_000_000))
	assert.ErrorIs(t, ValidatePresaleParams(2_000, 1_000, 1, 1), ErrInvalidWindow)
	assert.ErrorIs(t, ValidatePresaleParams(2_000, 2_000, 1, 1), ErrInvalidWindow)
	assert.ErrorIs(t, ValidatePresaleParams(1_000, 2_000, 0, 1), ErrInvalidPrice)
	assert.ErrorIs(t, ValidatePresaleParams(1_000, 2_000, 1, 0), ErrInvalidCap)
}

func TestValidateAllocationSplit(t *testing.T) {
	p := calibratedPresale()
	assert.NoError(t, ValidateAllocationSplit(p))

	// a fully subscribed hard cap must fit into the public token cap
	over := calibratedPresale()
	over.PublicTokenCap = DefaultPublicTokenCap - 1
	assert.ErrorIs(t, ValidateAllocationSplit(over), ErrInvalidCap)

	empty := calibratedPresale()
	empty.PublicTokenCap = 0
	empty.LpTokenAllocation = 0
	empty.EcosystemAllocation = 0
	assert.ErrorIs(t, ValidateAllocationSplit(empty), ErrInvalidCap)
}

func TestTokensForContribution(t *testing.T) {
	// 1 SOL at 0.001 SOL/token and 6 decimals -> 1000 tokens raw
	tokens, err := TokensForContribution(1_000_000_000, 6, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), tokens)
	// 1000 whole tokens at 6 decimals
	assert.Equal(t, uint64(1_000), tokens/1_000_000)

	// floor division
	tokens, err = TokensForContribution(1_500, 0, 1_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tokens)

	_, err = TokensForContribution(1, 6, 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = TokensForContribution(^uint64(0), 6, 1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestValidateFunding(t *testing.T) {
	p := calibratedPresale()
	total := p.TotalTokenCommitment()
	assert.Equal(t, uint64(800_000_000_000_000), total)

	assert.NoError(t, ValidateFunding(p, p.Authority, total))
	assert.ErrorIs(t, ValidateFunding(p, "intruder", total), ErrUnauthorized)
	assert.ErrorIs(t, ValidateFunding(p, p.Authority, total-1), ErrInvalidCap)

	p.IsFunded = true
	assert.ErrorIs(t, ValidateFunding(p, p.Authority, total), ErrAlreadyFunded)
}

func TestApplyContribution(t *testing.T) {
	p := calibratedPresale()
	pos := &models.UserPosition{PresaleID: p.ID, User: "user"}
	wl := &models.WhitelistEntry{PresaleID: p.ID, User: "user", Tier: 1, MaxContributionUnits: 10_000_000_000}

	delta, err := ApplyContribution(p, pos, wl, 1_000_000_000, 1_500)
	require.NoError(t, err)

	assert.Equal(t, uint64(1_000_000_000), p.PublicRaisedUnits)
	assert.Equal(t, uint64(1_000_000_000), pos.PublicContributionUnits)
	assert.Equal(t, uint64(1_000_000_000), pos.TokensAllocated)
	assert.Equal(t, pos.TokensAllocated, delta)
	assert.Greater(t, delta, uint64(0))
}

func TestApplyContributionWindow(t *testing.T) {
	p := calibratedPresale()
	pos := &models.UserPosition{}

	_, err := ApplyContribution(p, pos, nil, 1, 999)
	assert.ErrorIs(t, err, ErrWindowClosed)
	_, err = ApplyContribution(p, pos, nil, 1, 2_001)
	assert.ErrorIs(t, err, ErrWindowClosed)

	// boundaries are inclusive
	_, err = ApplyContribution(p, pos, nil, 1, 1_000)
	assert.NoError(t, err)
	_, err = ApplyContribution(p, pos, nil, 1, 2_000)
	assert.NoError(t, err)
}

func TestApplyContributionAfterFinalize(t *testing.T) {
	p := calibratedPresale()
	p.IsFinalized = true

	_, err := ApplyContribution(p, &models.UserPosition{}, nil, 1, 1_500)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestApplyContributionHardCapBoundary(t *testing.T) {
	p := calibratedPresale()
	pos := &models.UserPosition{}

	// exactly the hard cap is fine
	_, err := ApplyContribution(p, pos, nil, p.HardCapUnits, 1_500)
	require.NoError(t, err)
	assert.Equal(t, p.HardCapUnits, p.PublicRaisedUnits)

	// one more unit must be rejected with no state change
	before := *p
	posBefore := *pos
	_, err = ApplyContribution(p, pos, nil, 1, 1_500)
	assert.ErrorIs(t, err, ErrCapExceeded)
	assert.Equal(t, before, *p)
	assert.Equal(t, posBefore, *pos)
}

func TestApplyContributionWhitelistCap(t *testing.T) {
	p := calibratedPresale()
	pos := &models.UserPosition{}
	wl := &models.WhitelistEntry{Tier: 1, MaxContributionUnits: 10_000_000_000}

	_, err := ApplyContribution(p, pos, wl, 9_000_000_000, 1_500)
	require.NoError(t, err)

	// cumulative cap: a second contribution over the limit fails
	_, err = ApplyContribution(p, pos, wl, 1_000_000_001, 1_500)
	assert.ErrorIs(t, err, ErrWhitelistCapExceeded)
	assert.Equal(t, uint64(9_000_000_000), pos.PublicContributionUnits)

	// exactly up to the cap still passes
	_, err = ApplyContribution(p, pos, wl, 1_000_000_000, 1_500)
	assert.NoError(t, err)
	assert.Equal(t, wl.MaxContributionUnits, pos.PublicContributionUnits)

	// a zero cap means no individual limit
	unlimited := &models.WhitelistEntry{Tier: 2, MaxContributionUnits: 0}
	other := &models.UserPosition{}
	_, err = ApplyContribution(p, other, unlimited, 50_000_000_000, 1_500)
	assert.NoError(t, err)
}

func TestApplyContributionAllocationMonotonic(t *testing.T) {
	p := calibratedPresale()
	pos := &models.UserPosition{}

	_, err := ApplyContribution(p, pos, nil, 1_000_000_000, 1_500)
	require.NoError(t, err)
	first := pos.TokensAllocated

	_, err = ApplyContribution(p, pos, nil, 1, 1_500)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pos.TokensAllocated, first)
}

func TestApplyFinalize(t *testing.T) {
	p := calibratedPresale()

	// before the window ends and below the cap: gate holds
	assert.ErrorIs(t, ApplyFinalize(p, 1_500), ErrWindowNotElapsed)
	assert.False(t, p.IsFinalized)

	// window elapsed
	require.NoError(t, ApplyFinalize(p, 2_000))
	assert.True(t, p.IsFinalized)

	// one-way flag
	assert.ErrorIs(t, ApplyFinalize(p, 3_000), ErrAlreadyFinalized)
	assert.True(t, p.IsFinalized)
}

func TestApplyFinalizeAtHardCap(t *testing.T) {
	p := calibratedPresale()
	p.PublicRaisedUnits = p.HardCapUnits

	// fully subscribed presales may finalize early
	assert.NoError(t, ApplyFinalize(p, 1_500))
	assert.True(t, p.IsFinalized)
}

func TestMigrationFee(t *testing.T) {
	// 1% of 400 SOL
	fee, err := MigrationFee(400_000_000_000, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(4_000_000_000), fee)

	fee, err = MigrationFee(400_000_000_000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), fee)

	fee, err = MigrationFee(0, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), fee)
}

func TestValidateMigration(t *testing.T) {
	p := calibratedPresale()
	assert.ErrorIs(t, ValidateMigration(p), ErrNotFinalized)

	p.IsFinalized = true
	assert.NoError(t, ValidateMigration(p))

	p.IsMigrated = true
	assert.ErrorIs(t, ValidateMigration(p), ErrAlreadyMigrated)
}

func TestClaimable(t *testing.T) {
	p := calibratedPresale()
	pos := &models.UserPosition{TokensAllocated: 1_000_000_000}

	// claiming requires a finalized presale, not migration
	_, err := Claimable(p, pos)
	assert.ErrorIs(t, err, ErrNotFinalized)

	p.IsFinalized = true
	claimable, err := Claimable(p, pos)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), claimable)

	// second claim with nothing new allocated fails and changes nothing
	pos.TokensClaimed = pos.TokensAllocated
	_, err = Claimable(p, pos)
	assert.ErrorIs(t, err, ErrNothingToClaim)
	assert.Equal(t, pos.TokensAllocated, pos.TokensClaimed)
}

func TestVoteLifecycle(t *testing.T) {
	p := calibratedPresale()
	p.IsFinalized = true

	require.NoError(t, ApplyStartVote(p, 3_000, 2_500))
	assert.Equal(t, models.PhaseVoting, p.Phase)

	yes := &models.UserPosition{PublicContributionUnits: 3_000_000_000}
	no := &models.UserPosition{PublicContributionUnits: 1_000_000_000}

	require.NoError(t, ApplyCastVote(p, yes, true, 2_600))
	require.NoError(t, ApplyCastVote(p, no, false, 2_600))
	assert.Equal(t, uint64(3_000_000_000), p.VoteYesWeight)
	assert.Equal(t, uint64(1_000_000_000), p.VoteNoWeight)

	// double vote rejected
	assert.ErrorIs(t, ApplyCastVote(p, yes, true, 2_600), ErrAlreadyVoted)

	// resolution before the deadline is rejected
	assert.ErrorIs(t, ApplyResolveVote(p, 2_900), ErrWindowNotElapsed)

	require.NoError(t, ApplyResolveVote(p, 3_000))
	assert.Equal(t, models.OutcomeLaunch, p.Outcome)
	assert.Equal(t, models.PhaseLaunchable, p.Phase)
	assert.Equal(t, int64(3_000+LaunchWindowSeconds), p.LaunchDeadlineTs)
	assert.False(t, p.RefundEnabled)
}

func TestVoteRefundOutcome(t *testing.T) {
	p := calibratedPresale()
	p.IsFinalized = true

	require.NoError(t, ApplyStartVote(p, 3_000, 2_500))

	voter := &models.UserPosition{PublicContributionUnits: 1_000}
	require.NoError(t, ApplyCastVote(p, voter, false, 2_600))

	require.NoError(t, ApplyResolveVote(p, 3_000))
	assert.Equal(t, models.OutcomeRefund, p.Outcome)
	assert.Equal(t, models.PhaseRefundable, p.Phase)
	assert.True(t, p.RefundEnabled)
}

func TestCastVoteRejections(t *testing.T) {
	p := calibratedPresale()
	voter := &models.UserPosition{PublicContributionUnits: 1_000}

	// not in voting phase
	assert.ErrorIs(t, ApplyCastVote(p, voter, true, 100), ErrInvalidPhase)

	p.IsFinalized = true
	require.NoError(t, ApplyStartVote(p, 3_000, 2_500))

	// past the deadline
	assert.ErrorIs(t, ApplyCastVote(p, voter, true, 3_001), ErrVotingClosed)

	// no weight without a contribution
	empty := &models.UserPosition{}
	assert.ErrorIs(t, ApplyCastVote(p, empty, true, 2_600), ErrNoVoteWeight)
}

func TestEnableRefundsAfterDeadline(t *testing.T) {
	p := calibratedPresale()
	p.Phase = models.PhaseLaunchable
	p.Outcome = models.OutcomeLaunch
	p.LaunchDeadlineTs = 5_000

	assert.ErrorIs(t, ApplyEnableRefunds(p, 5_000), ErrWindowNotElapsed)

	require.NoError(t, ApplyEnableRefunds(p, 5_001))
	assert.Equal(t, models.PhaseRefundable, p.Phase)
	assert.True(t, p.RefundEnabled)
	assert.Equal(t, models.OutcomeRefund, p.Outcome)
}

func TestRefundAmount(t *testing.T) {
	p := calibratedPresale()
	pos := &models.UserPosition{PublicContributionUnits: 2_000_000_000}

	_, err := RefundAmount(p, pos)
	assert.ErrorIs(t, err, ErrRefundsNotEnabled)

	p.Phase = models.PhaseRefundable
	p.RefundEnabled = true

	amount, err := RefundAmount(p, pos)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000_000), amount)

	pos.Refunded = true
	_, err = RefundAmount(p, pos)
	assert.ErrorIs(t, err, ErrAlreadyRefunded)
}

func TestClaimAndRefundExclusive(t *testing.T) {
	p := calibratedPresale()
	pos := &models.UserPosition{
		PublicContributionUnits: 1_000_000_000,
		TokensAllocated:         1_000_000_000,
	}

	// failed vote: finalize, vote no, resolve into the refundable phase
	p.IsFinalized = true
	require.NoError(t, ApplyStartVote(p, 3_000, 2_500))
	require.NoError(t, ApplyCastVote(p, pos, false, 2_600))
	require.NoError(t, ApplyResolveVote(p, 3_000))
	require.Equal(t, models.PhaseRefundable, p.Phase)

	// a refundable presale pays back contributions, never tokens
	_, err := Claimable(p, pos)
	assert.ErrorIs(t, err, ErrRefundsEnabled)

	amount, err := RefundAmount(p, pos)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), amount)

	// a position that claimed before refunds opened keeps the tokens
	// and forfeits the refund
	claimed := &models.UserPosition{
		PublicContributionUnits: 1_000_000_000,
		TokensAllocated:         1_000_000_000,
		TokensClaimed:           1_000_000_000,
	}
	_, err = RefundAmount(p, claimed)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestValidateWithdrawForLaunch(t *testing.T) {
	p := calibratedPresale()

	assert.ErrorIs(t, ValidateWithdrawForLaunch(p, "intruder"), ErrUnauthorized)
	assert.ErrorIs(t, ValidateWithdrawForLaunch(p, p.Authority), ErrNotFinalized)

	p.IsFinalized = true
	assert.ErrorIs(t, ValidateWithdrawForLaunch(p, p.Authority), ErrLaunchNotApproved)

	p.Outcome = models.OutcomeLaunch
	assert.NoError(t, ValidateWithdrawForLaunch(p, p.Authority))
}

func TestCalibrationScenario(t *testing.T) {
	// End-to-end accounting of the reference calibration on the pure logic:
	// fund 800M tokens, one contribution, finalize, migrate split, claim.
	p := calibratedPresale()
	pos := &models.UserPosition{}
	wl := &models.WhitelistEntry{Tier: 1, MaxContributionUnits: 10_000_000_000}

	require.NoError(t, ValidateFunding(p, p.Authority, 800_000_000_000_000))
	p.IsFunded = true
	tokenVault := p.TotalTokenCommitment()

	_, err := ApplyContribution(p, pos, wl, 1_000_000_000, 1_500)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), p.PublicRaisedUnits)

	require.NoError(t, ApplyFinalize(p, 2_000))

	fee, err := MigrationFee(p.PublicRaisedUnits, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), fee)

	require.NoError(t, ValidateMigration(p))
	// token vault loses the LP and ecosystem allocations at migration
	tokenVault -= p.LpTokenAllocation
	tokenVault -= p.EcosystemAllocation
	p.IsMigrated = true
	assert.Equal(t, p.PublicTokenCap, tokenVault)
	assert.ErrorIs(t, ValidateMigration(p), ErrAlreadyMigrated)

	claimable, err := Claimable(p, pos)
	require.NoError(t, err)
	assert.Equal(t, pos.TokensAllocated, claimable)
	tokenVault -= claimable
	pos.TokensClaimed = pos.TokensAllocated

	// vault invariant: cap minus claimed
	assert.Equal(t, p.PublicTokenCap-pos.TokensClaimed, tokenVault)
	assert.LessOrEqual(t, pos.TokensClaimed, pos.TokensAllocated)
}
