package events

import "math/big"

const (
	// TypeTradeExecuted is emitted whenever a mint or redeem settles.
	TypeTradeExecuted = "gm.trade.executed"
	// TypeSanityCheckSet is emitted when sanity parameters are first installed for an asset.
	TypeSanityCheckSet = "gm.sanity.set"
	// TypeSanityCheckUpdated is emitted when sanity parameters change.
	TypeSanityCheckUpdated = "gm.sanity.updated"
	// TypeTokenLimitSet is emitted when the asset-level rate limit changes.
	TypeTokenLimitSet = "gm.limit.token"
	// TypeUserLimitSet is emitted when a user-level rate limit changes.
	TypeUserLimitSet = "gm.limit.user"
	// TypeMintingPaused is emitted when global minting is paused or resumed.
	TypeMintingPaused = "gm.pause.minting"
	// TypeRedemptionPaused is emitted when global redemption is paused or resumed.
	TypeRedemptionPaused = "gm.pause.redemption"
	// TypeFactoryPaused is emitted when the token factory is paused or resumed.
	TypeFactoryPaused = "gm.pause.factory"
	// TypeTokenPaused is emitted when a single asset's minting or redemption flags change.
	TypeTokenPaused = "gm.pause.token"
	// TypeAttestationSignerSet is emitted when the trusted secp256k1 signer changes.
	TypeAttestationSignerSet = "gm.signer.set"
	// TypeTradingHoursOffsetSet is emitted when the trading-hours UTC offset changes.
	TypeTradingHoursOffsetSet = "gm.hours.offset"
)

// TradeExecuted carries the monotonically increasing execution identifier of a
// settled mint or redeem.
type TradeExecuted struct {
	ExecutionID *big.Int
	Side        string
	Asset       [32]byte
	User        [32]byte
	Amount      uint64
	Price       uint64
}

func (TradeExecuted) EventType() string { return TypeTradeExecuted }

// SanityCheckSet announces freshly installed sanity parameters for an asset.
type SanityCheckSet struct {
	Asset               [32]byte
	LastPrice           uint64
	AllowedDeviationBps uint64
	MaxTimeDelay        int64
}

func (SanityCheckSet) EventType() string { return TypeSanityCheckSet }

// SanityCheckUpdated announces a change to one or more sanity parameters.
// Nil fields were left untouched.
type SanityCheckUpdated struct {
	Asset               [32]byte
	LastPrice           *uint64
	AllowedDeviationBps *uint64
	MaxTimeDelay        *int64
}

func (SanityCheckUpdated) EventType() string { return TypeSanityCheckUpdated }

// TokenLimitSet announces the asset-level rate limit configuration. Nil limit
// fields mean the corresponding pair was cleared.
type TokenLimitSet struct {
	Asset     [32]byte
	RateLimit *uint64
	Window    *uint64
}

func (TokenLimitSet) EventType() string { return TypeTokenLimitSet }

// UserLimitSet announces a user-level rate limit configuration.
type UserLimitSet struct {
	User      [32]byte
	Asset     [32]byte
	RateLimit *uint64
	Window    *uint64
}

func (UserLimitSet) EventType() string { return TypeUserLimitSet }

// MintingPaused reports the global minting pause flag.
type MintingPaused struct {
	Paused bool
	Actor  [32]byte
}

func (MintingPaused) EventType() string { return TypeMintingPaused }

// RedemptionPaused reports the global redemption pause flag.
type RedemptionPaused struct {
	Paused bool
	Actor  [32]byte
}

func (RedemptionPaused) EventType() string { return TypeRedemptionPaused }

// FactoryPaused reports the token factory pause flag.
type FactoryPaused struct {
	Paused bool
	Actor  [32]byte
}

func (FactoryPaused) EventType() string { return TypeFactoryPaused }

// TokenPaused reports per-asset pause flags.
type TokenPaused struct {
	Asset            [32]byte
	MintingPaused    bool
	RedemptionPaused bool
	Actor            [32]byte
}

func (TokenPaused) EventType() string { return TypeTokenPaused }

// AttestationSignerSet reports the trusted signer address rotation.
type AttestationSignerSet struct {
	Signer [20]byte
	Actor  [32]byte
}

func (AttestationSignerSet) EventType() string { return TypeAttestationSignerSet }

// TradingHoursOffsetSet reports a trading-hours offset change.
type TradingHoursOffsetSet struct {
	PrevOffset int64
	NewOffset  int64
	Actor      [32]byte
}

func (TradingHoursOffsetSet) EventType() string { return TypeTradingHoursOffsetSet }
