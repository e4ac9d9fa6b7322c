package business

import "errors"

// Settlement error taxonomy. Every precondition failure maps to exactly one
// of these; handlers translate them to HTTP statuses. An instruction that
// fails is rejected as a whole, no partial writes survive.
var (
	ErrAlreadyInitialized       = errors.New("platform already initialized")
	ErrInvalidFee               = errors.New("fee bps exceeds 10000")
	ErrDuplicatePresale         = errors.New("presale already exists for mint")
	ErrInvalidWindow            = errors.New("invalid contribution window")
	ErrInvalidPrice             = errors.New("invalid price")
	ErrInvalidCap               = errors.New("invalid cap")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrAlreadyFunded            = errors.New("presale already funded")
	ErrDuplicateWhitelist       = errors.New("user already whitelisted")
	ErrWindowClosed             = errors.New("contribution window closed")
	ErrAlreadyFinalized         = errors.New("presale already finalized")
	ErrCapExceeded              = errors.New("hard cap exceeded")
	ErrWhitelistCapExceeded     = errors.New("whitelist contribution cap exceeded")
	ErrWindowNotElapsed         = errors.New("contribution window not elapsed")
	ErrNotFinalized             = errors.New("presale not finalized")
	ErrAlreadyMigrated          = errors.New("presale already migrated")
	ErrInsufficientVaultBalance = errors.New("insufficient vault balance")
	ErrNothingToClaim           = errors.New("nothing to claim")
	ErrAlreadyClaimed           = errors.New("tokens already claimed")
	ErrArithmeticOverflow       = errors.New("arithmetic overflow")

	// Governance vote and refund flow
	ErrInvalidPhase      = errors.New("invalid presale phase")
	ErrVotingClosed      = errors.New("voting closed")
	ErrAlreadyVoted      = errors.New("already voted")
	ErrNoVoteWeight      = errors.New("no vote weight")
	ErrRefundsNotEnabled = errors.New("refunds not enabled")
	ErrRefundsEnabled    = errors.New("refunds enabled, claims closed")
	ErrAlreadyRefunded   = errors.New("already refunded")
	ErrLaunchNotApproved = errors.New("launch not approved")

	// Custody book
	ErrAssetMismatch = errors.New("asset mismatch between accounts")
)
