package gm

// SanityCheck bounds how far an attested price may drift from the last
// administratively recorded price, and how stale that recorded price may be.
type SanityCheck struct {
	Asset               Address
	LastPrice           uint64
	AllowedDeviationBps uint64
	MaxTimeDelay        int64
	PriceLastUpdated    int64
}

// Validate enforces the configuration bounds for a sanity record.
func (c *SanityCheck) Validate() error {
	if c.LastPrice == 0 {
		return ErrInvalidPrice
	}
	if c.AllowedDeviationBps > BasisPointsDivisor {
		return ErrInvalidDeviation
	}
	if c.MaxTimeDelay < 0 || c.MaxTimeDelay > MaxSanityTimeDelay {
		return ErrInvalidMaxTimeDelay
	}
	return nil
}

// Check verifies an attested price against the recorded band and freshness
// window. The band is last price plus or minus the floored bps deviation; a
// recorded price exactly at the staleness boundary is still accepted.
func (c *SanityCheck) Check(price uint64, now int64) error {
	deviation, err := MulDiv(c.LastPrice, c.AllowedDeviationBps, BasisPointsDivisor, false)
	if err != nil {
		return err
	}
	maxPrice := c.LastPrice + deviation
	if maxPrice < c.LastPrice {
		return ErrMathOverflow
	}
	minPrice := c.LastPrice - deviation
	if price > maxPrice {
		return ErrPriceExceedsMaxDeviation
	}
	if price < minPrice {
		return ErrPriceBelowMinDeviation
	}
	elapsed := now - c.PriceLastUpdated
	if elapsed > c.MaxTimeDelay {
		return ErrPriceStale
	}
	return nil
}
