package gm

const (
	// SecondsPerDay is the number of seconds in a day.
	SecondsPerDay int64 = 86400
	// SecondsPerHour is the number of seconds in an hour.
	SecondsPerHour int64 = 3600

	// PriceScale is the fixed-point scaling factor applied to attestation prices.
	PriceScale uint64 = 1_000_000_000
	// BasisPointsDivisor converts basis points to a fraction (10000 bps = 100%).
	BasisPointsDivisor uint64 = 10_000

	// MaxAttestationWindow bounds how far in the future an attestation may expire.
	// It also doubles as the minimum age before a consumed attestation record can
	// be closed.
	MaxAttestationWindow int64 = 30
	// MaxSanityTimeDelay bounds the configurable price freshness window (1 year).
	MaxSanityTimeDelay int64 = 365 * SecondsPerDay

	// MinTradingHoursOffset and MaxTradingHoursOffset bound the UTC offset used
	// by the weekend gate (westernmost UTC-12 to easternmost UTC+14).
	MinTradingHoursOffset int64 = -12 * SecondsPerHour
	MaxTradingHoursOffset int64 = 14 * SecondsPerHour

	// SideBuy and SideSell are the side bytes bound into attestation digests.
	SideBuy  byte = 0x30
	SideSell byte = 0x31

	// TokenDecimals is the decimal precision of GM assets and the synthetic stable.
	TokenDecimals uint8 = 9

	// ReferencePriceDecimals is the precision reference-feed prices are rescaled to.
	ReferencePriceDecimals uint8 = 8
	// MinReferencePrice is the floor (at ReferencePriceDecimals precision) below
	// which the reference stable asset is considered depegged.
	MinReferencePrice uint64 = 98_000_000
	// ConfidenceThresholdPct caps the feed confidence interval at this percentage
	// of the reported price.
	ConfidenceThresholdPct uint64 = 1
	// MaxOraclePriceAge bounds the configurable reference feed max age (1 day).
	MaxOraclePriceAge uint64 = uint64(SecondsPerDay)

	// MaxMintAmount caps the notional value of a single administrative mint
	// operation ($10 million at 9 decimals).
	MaxMintAmount uint64 = 10_000_000_000_000_000

	// DefaultLimitWindow is the rate limit window applied when an administrator
	// configures a limit without an explicit window (1 hour).
	DefaultLimitWindow uint64 = 3600

	// ModuleName identifies this module to host-level pause views.
	ModuleName = "gm"
)
