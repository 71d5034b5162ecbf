package gm

// consumeCapacity charges a notional amount against one limiter granularity.
// A nil config means the pair was never enabled and trading is refused. An
// unset lastUpdated (zero) charges against a full window with no decay
// elapsed. The returned value is the new capacity used; callers persist it
// together with the shared timestamp only once every granularity has passed.
func consumeCapacity(cfg *LimitConfig, used uint64, lastUpdated int64, notional uint64, now int64) (uint64, error) {
	if cfg == nil {
		return 0, ErrRateLimitNotConfigured
	}
	if lastUpdated == 0 {
		lastUpdated = now
	}
	decayed, err := CalculateCapacityUsed(now-lastUpdated, cfg.Window, used, cfg.RateLimit)
	if err != nil {
		return 0, err
	}
	next := decayed + notional
	if next < decayed {
		return 0, ErrMathOverflow
	}
	if next > cfg.RateLimit {
		return 0, ErrRateLimitExceeded
	}
	return next, nil
}

// checkRateLimits charges a trade's notional value against the asset and the
// user limiter, in that order. Both granularities are evaluated before either
// record changes, so a failure at the user level leaves the asset capacity
// untouched. mint selects the mint or the redeem capacity pair.
func checkRateLimits(state *State, token *TokenLimit, user *UserRecord, notional uint64, now int64, mint bool) error {
	var (
		tokenNext uint64
		userNext  uint64
		err       error
	)
	if mint {
		tokenNext, err = consumeCapacity(token.Limit, token.MintCapacityUsed, token.MintLastUpdated, notional, now)
		if err != nil {
			return err
		}
		userNext, err = consumeCapacity(user.Limit, user.MintCapacityUsed, user.MintLastUpdated, notional, now)
		if err != nil {
			return err
		}
		token.MintCapacityUsed = tokenNext
		token.MintLastUpdated = now
		user.MintCapacityUsed = userNext
		user.MintLastUpdated = now
	} else {
		tokenNext, err = consumeCapacity(token.Limit, token.RedeemCapacityUsed, token.RedeemLastUpdated, notional, now)
		if err != nil {
			return err
		}
		userNext, err = consumeCapacity(user.Limit, user.RedeemCapacityUsed, user.RedeemLastUpdated, notional, now)
		if err != nil {
			return err
		}
		token.RedeemCapacityUsed = tokenNext
		token.RedeemLastUpdated = now
		user.RedeemCapacityUsed = userNext
		user.RedeemLastUpdated = now
	}
	if err := state.PutTokenLimit(token); err != nil {
		return err
	}
	return state.PutUserRecord(user)
}

// ensureUserRecord loads the (owner, asset) limiter record, creating it from
// the asset's default user limit on first use. A fresh record starts with
// zero capacity used and an unset timestamp.
func ensureUserRecord(state *State, owner Address, token *TokenLimit) (*UserRecord, error) {
	record, exists, err := state.UserRecord(owner, token.Asset)
	if err != nil {
		return nil, err
	}
	if exists {
		return record, nil
	}
	record = &UserRecord{
		Owner: owner,
		Asset: token.Asset,
		Limit: token.DefaultUserLimit.Clone(),
	}
	if err := state.PutUserRecord(record); err != nil {
		return nil, err
	}
	return record, nil
}
