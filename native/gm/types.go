package gm

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Address identifies an account or asset on the host ledger (32 bytes).
type Address [32]byte

// ParseAddress decodes a 64-character hex string into an Address.
func ParseAddress(s string) (Address, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return Address{}, fmt.Errorf("gm: invalid address %q: %w", s, err)
	}
	if len(raw) != len(Address{}) {
		return Address{}, fmt.Errorf("gm: invalid address length %d", len(raw))
	}
	var addr Address
	copy(addr[:], raw)
	return addr, nil
}

// String renders the address as lower-case hex.
func (a Address) String() string { return hex.EncodeToString(a[:]) }

// IsZero reports whether the address is all zeros.
func (a Address) IsZero() bool { return a == Address{} }

// AttestationID is the unique 16-byte identifier bound into a signed quote.
// Identifiers are UUIDs in practice.
type AttestationID [16]byte

// NewAttestationID generates a random attestation identifier.
func NewAttestationID() AttestationID {
	return AttestationID(uuid.New())
}

// ParseAttestationID decodes a UUID string into an attestation identifier.
func ParseAttestationID(s string) (AttestationID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return AttestationID{}, fmt.Errorf("gm: invalid attestation id %q: %w", s, err)
	}
	return AttestationID(id), nil
}

// String renders the identifier in canonical UUID form.
func (id AttestationID) String() string { return uuid.UUID(id).String() }

// LimitConfig pairs a rate limit with its decay window. Modelling the pair as
// one optional struct enforces the both-or-neither invariant in the type.
type LimitConfig struct {
	RateLimit uint64
	Window    uint64
}

// Validate rejects a configured limit with a zero window.
func (c *LimitConfig) Validate() error {
	if c == nil {
		return nil
	}
	if c.Window == 0 {
		return ErrInvalidLimitWindow
	}
	return nil
}

// Clone returns a copy so records do not share limit pointers.
func (c *LimitConfig) Clone() *LimitConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// TokenLimit tracks asset-level rate limiting and pause flags. Capacity fields
// are meaningful only while Limit is configured; a last-updated of zero means
// the direction has never traded.
type TokenLimit struct {
	Asset              Address
	Limit              *LimitConfig
	MintCapacityUsed   uint64
	MintLastUpdated    int64
	RedeemCapacityUsed uint64
	RedeemLastUpdated  int64
	MintingPaused      bool
	RedemptionPaused   bool
	DefaultUserLimit   *LimitConfig
}

// UserRecord mirrors TokenLimit at (user, asset) granularity. Records are
// lazily created on first trade from the asset's defaults.
type UserRecord struct {
	Owner              Address
	Asset              Address
	Limit              *LimitConfig
	MintCapacityUsed   uint64
	MintLastUpdated    int64
	RedeemCapacityUsed uint64
	RedeemLastUpdated  int64
}

// AttestationRecord marks an attestation id as consumed. Its existence is the
// replay signal; it can be closed after a minimum age by its creator.
type AttestationRecord struct {
	ID        AttestationID
	Creator   Address
	CreatedAt int64
}

// ManagerState is the singleton global state of the exchange.
type ManagerState struct {
	ExecutionID        *big.Int
	FactoryPaused      bool
	RedemptionPaused   bool
	MintingPaused      bool
	AttestationSigner  [20]byte
	TradingHoursOffset int64
}

var maxExecutionID = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// NextExecutionID increments and returns the monotonically increasing trade
// execution identifier, failing once the 128-bit ceiling is reached.
func (m *ManagerState) NextExecutionID() (*big.Int, error) {
	current := m.ExecutionID
	if current == nil {
		current = big.NewInt(0)
	}
	if current.Cmp(maxExecutionID) >= 0 {
		return nil, ErrMathOverflow
	}
	next := new(big.Int).Add(current, big.NewInt(1))
	m.ExecutionID = next
	return new(big.Int).Set(next), nil
}

// StableManagerState is the singleton configuration of the stable settlement leg.
type StableManagerState struct {
	Owner              Address
	StableAsset        Address
	ReferenceAsset     Address
	OraclePriceEnabled bool
	OraclePriceMaxAge  uint64
	PriceFeedID        string
	ReferenceVault     Address
	StableVault        Address
}
