package gm

import "errors"

// Input validation.
var (
	// ErrInvalidAmount indicates a zero or otherwise unusable token amount.
	ErrInvalidAmount = errors.New("gm: invalid amount")
	// ErrInvalidPrice indicates a zero or otherwise unusable price.
	ErrInvalidPrice = errors.New("gm: invalid price")
	// ErrInvalidDeviation indicates a deviation above 10000 bps.
	ErrInvalidDeviation = errors.New("gm: invalid sanity deviation")
	// ErrInvalidMaxTimeDelay indicates a sanity freshness window above one year.
	ErrInvalidMaxTimeDelay = errors.New("gm: invalid sanity max time delay")
	// ErrInvalidLimitWindow indicates a configured rate limit with a zero window.
	ErrInvalidLimitWindow = errors.New("gm: invalid limit window")
	// ErrInvalidOracleMaxAge indicates a reference feed max age above one day.
	ErrInvalidOracleMaxAge = errors.New("gm: invalid oracle max age")
)

// Authorization.
var (
	// ErrUnauthorized indicates the caller lacks the required capability.
	ErrUnauthorized = errors.New("gm: missing required role")
	// ErrNotWhitelisted indicates no whitelist marker exists for the user.
	ErrNotWhitelisted = errors.New("gm: user not whitelisted")
)

// Temporal.
var (
	// ErrAttestationExpired indicates the attestation expiration has passed.
	ErrAttestationExpired = errors.New("gm: attestation expired")
	// ErrAttestationWindowTooLarge indicates the expiration lies too far in the future.
	ErrAttestationWindowTooLarge = errors.New("gm: attestation expiration too large")
	// ErrOutsideTradingHours indicates the trade falls on a weekend.
	ErrOutsideTradingHours = errors.New("gm: outside trading hours")
	// ErrOffsetOutOfRange indicates a trading-hours offset outside -12h..+14h.
	ErrOffsetOutOfRange = errors.New("gm: trading hours offset out of range")
	// ErrPriceStale indicates the recorded sanity price is older than the allowed delay.
	ErrPriceStale = errors.New("gm: sanity price stale")
	// ErrAttestationTooNew indicates a replay-guard record below the closing age.
	ErrAttestationTooNew = errors.New("gm: attestation too new to close")
)

// Economic.
var (
	// ErrPriceExceedsMaxDeviation indicates a price above the sanity band.
	ErrPriceExceedsMaxDeviation = errors.New("gm: price exceeds max deviation")
	// ErrPriceBelowMinDeviation indicates a price below the sanity band.
	ErrPriceBelowMinDeviation = errors.New("gm: price below min deviation")
	// ErrRateLimitExceeded indicates the notional exceeds the available capacity.
	ErrRateLimitExceeded = errors.New("gm: rate limit exceeded")
	// ErrRateLimitNotConfigured indicates no limit pair exists at a granularity;
	// trading is disabled until an administrator configures one.
	ErrRateLimitNotConfigured = errors.New("gm: rate limit not configured")
	// ErrAmountExceedsMaxMint indicates an administrative mint above the single-operation cap.
	ErrAmountExceedsMaxMint = errors.New("gm: amount exceeds max mint amount")
)

// Arithmetic.
var (
	// ErrMathOverflow indicates a computation left the 64-bit (or 128-bit) domain.
	ErrMathOverflow = errors.New("gm: math overflow")
	// ErrDivideByZero indicates a zero divisor.
	ErrDivideByZero = errors.New("gm: divide by zero")
	// ErrNegativeElapsed indicates a clock regression between capacity updates.
	ErrNegativeElapsed = errors.New("gm: negative time since last update")
)

// Signature verification.
var (
	// ErrAttestationSignerUnset indicates the trusted signer address is all zeros.
	ErrAttestationSignerUnset = errors.New("gm: attestation signer not set")
	// ErrMissingVerification indicates no signature verification accompanied the trade.
	ErrMissingVerification = errors.New("gm: missing signature verification")
	// ErrWrongSignatureCount indicates the verification carried a count other than one.
	ErrWrongSignatureCount = errors.New("gm: wrong signature count")
	// ErrDigestLength indicates a verified digest that is not 32 bytes.
	ErrDigestLength = errors.New("gm: expected 32-byte digest")
	// ErrDigestMismatch indicates the verified digest differs from the quote hash.
	ErrDigestMismatch = errors.New("gm: digest mismatch")
	// ErrSignerMismatch indicates the recovered address differs from the trusted signer.
	ErrSignerMismatch = errors.New("gm: recovered signer mismatch")
	// ErrSignatureMalformed indicates a signature that is not 65 bytes.
	ErrSignatureMalformed = errors.New("gm: malformed signature")
	// ErrSignatureInvalid indicates the signature could not be recovered.
	ErrSignatureInvalid = errors.New("gm: signature recovery failed")
)

// Replay prevention.
var (
	// ErrAttestationAlreadyUsed indicates the attestation id has been consumed.
	ErrAttestationAlreadyUsed = errors.New("gm: attestation already used")
	// ErrAttestationNotFound indicates no replay-guard record exists for the id.
	ErrAttestationNotFound = errors.New("gm: attestation not found")
	// ErrAttestationCreatorMismatch indicates a close by someone other than the creator.
	ErrAttestationCreatorMismatch = errors.New("gm: attestation creator mismatch")
)

// Reference oracle.
var (
	// ErrOracleStale indicates the reference feed sample exceeded its max age.
	ErrOracleStale = errors.New("gm: reference price stale")
	// ErrOracleNotConfigured indicates oracle pricing is enabled but no feed is wired.
	ErrOracleNotConfigured = errors.New("gm: reference price feed not configured")
	// ErrConfidenceTooWide indicates the feed confidence interval exceeds the threshold.
	ErrConfidenceTooWide = errors.New("gm: confidence threshold exceeded")
	// ErrInvalidPriceExponent indicates a non-negative or unrepresentable feed exponent.
	ErrInvalidPriceExponent = errors.New("gm: invalid price exponent")
	// ErrReferenceBelowFloor indicates the rescaled reference price is below the depeg floor.
	ErrReferenceBelowFloor = errors.New("gm: reference price below minimum")
)

// Pause state.
var (
	// ErrMintingPaused indicates minting is paused globally or for the asset.
	ErrMintingPaused = errors.New("gm: minting paused")
	// ErrRedemptionPaused indicates redemption is paused globally or for the asset.
	ErrRedemptionPaused = errors.New("gm: redemption paused")
	// ErrFactoryPaused indicates the token factory is paused.
	ErrFactoryPaused = errors.New("gm: factory paused")
	// ErrSanityCheckNotConfigured indicates no sanity record exists for the asset.
	ErrSanityCheckNotConfigured = errors.New("gm: sanity check not configured")
	// ErrStableNotConfigured indicates the stable settlement leg has not been initialised.
	ErrStableNotConfigured = errors.New("gm: stable settlement not configured")
)
