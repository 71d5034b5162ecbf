package gm

import (
	"math"

	"github.com/holiman/uint256"
)

// PriceData is a sample from a reference price feed. Price is scaled by
// 10^Exponent; Confidence is an absolute interval at the same scale.
type PriceData struct {
	Price       int64
	Confidence  uint64
	Exponent    int32
	PublishedAt int64
}

// PriceFeed serves reference asset samples no older than maxAge seconds.
// Implementations return ErrOracleStale when no fresh sample exists.
type PriceFeed interface {
	Price(feedID string, maxAge uint64) (PriceData, error)
}

// checkReferencePrice guards reference-asset settlement against a depegged
// or unreliable feed. The confidence interval must sit within one percent of
// the price, and the price rescaled to eight decimals must hold the 0.98
// floor.
func checkReferencePrice(data PriceData) error {
	if data.Price <= 0 {
		return ErrInvalidPrice
	}
	if data.Exponent >= 0 || data.Exponent < -int32(math.MaxUint8) {
		return ErrInvalidPriceExponent
	}
	price := uint64(data.Price)

	confidence := new(uint256.Int).Mul(uint256.NewInt(data.Confidence), uint256.NewInt(100))
	bound := new(uint256.Int).Mul(uint256.NewInt(price), uint256.NewInt(ConfidenceThresholdPct))
	if confidence.Gt(bound) {
		return ErrConfidenceTooWide
	}

	fromDecimals := uint8(-data.Exponent)
	scaled, err := NormalizeDecimals(price, fromDecimals, ReferencePriceDecimals, false)
	if err != nil {
		return err
	}
	if scaled < MinReferencePrice {
		return ErrReferenceBelowFloor
	}
	return nil
}
