package gm

import (
	"log/slog"
	"time"

	"ondogm/core/events"
)

// Roles gating administrative operations. Role wiring lives with the host;
// the settlement core only asks whether an actor holds one.
const (
	// RoleAdmin may change sanity, limit, signer and trading-hours parameters.
	RoleAdmin = "ROLE_GM_ADMIN"
	// RolePauser may flip the global and per-asset pause flags.
	RolePauser = "ROLE_GM_PAUSER"
	// RoleMinter may mint tokens directly, within the per-operation cap.
	RoleMinter = "ROLE_GM_MINTER"
)

// RoleChecker answers whether an actor holds a named role.
type RoleChecker interface {
	HasRole(actor Address, role string) bool
}

// Admin applies governance parameter changes to the settlement records.
type Admin struct {
	state   *State
	tokens  TokenService
	roles   RoleChecker
	emitter events.Emitter
	logger  *slog.Logger
	now     func() time.Time
}

// NewAdmin constructs the governance surface over the given record store.
func NewAdmin(state *State, tokens TokenService, roles RoleChecker) *Admin {
	return &Admin{
		state:   state,
		tokens:  tokens,
		roles:   roles,
		emitter: events.NoopEmitter{},
		logger:  slog.Default(),
		now:     time.Now,
	}
}

// SetEmitter installs the event sink. A nil value restores the no-op sink.
func (a *Admin) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		a.emitter = events.NoopEmitter{}
		return
	}
	a.emitter = emitter
}

// SetLogger installs the structured logger.
func (a *Admin) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	a.logger = logger
}

// SetClock overrides the time source for tests.
func (a *Admin) SetClock(clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	a.now = clock
}

func (a *Admin) requireRole(actor Address, role string) error {
	if a.roles == nil || !a.roles.HasRole(actor, role) {
		return ErrUnauthorized
	}
	return nil
}

// InitializeSanityCheck installs the price band parameters for an asset. The
// recorded price is considered fresh as of now.
func (a *Admin) InitializeSanityCheck(actor, asset Address, lastPrice, allowedDeviationBps uint64, maxTimeDelay int64) error {
	if err := a.requireRole(actor, RoleAdmin); err != nil {
		return err
	}
	check := &SanityCheck{
		Asset:               asset,
		LastPrice:           lastPrice,
		AllowedDeviationBps: allowedDeviationBps,
		MaxTimeDelay:        maxTimeDelay,
		PriceLastUpdated:    a.now().Unix(),
	}
	if err := check.Validate(); err != nil {
		return err
	}
	if err := a.state.PutSanityCheck(check); err != nil {
		return err
	}
	a.emitter.Emit(events.SanityCheckSet{
		Asset:               asset,
		LastPrice:           lastPrice,
		AllowedDeviationBps: allowedDeviationBps,
		MaxTimeDelay:        maxTimeDelay,
	})
	a.logger.Info("gm sanity check installed", "asset", asset.String(), "last_price", lastPrice)
	return nil
}

// UpdateSanityCheck changes one or more sanity parameters. Nil arguments
// leave the corresponding field untouched. Updating the recorded price also
// refreshes its timestamp.
func (a *Admin) UpdateSanityCheck(actor, asset Address, lastPrice, allowedDeviationBps *uint64, maxTimeDelay *int64) error {
	if err := a.requireRole(actor, RoleAdmin); err != nil {
		return err
	}
	check, exists, err := a.state.SanityCheck(asset)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSanityCheckNotConfigured
	}
	if lastPrice != nil {
		check.LastPrice = *lastPrice
		check.PriceLastUpdated = a.now().Unix()
	}
	if allowedDeviationBps != nil {
		check.AllowedDeviationBps = *allowedDeviationBps
	}
	if maxTimeDelay != nil {
		check.MaxTimeDelay = *maxTimeDelay
	}
	if err := check.Validate(); err != nil {
		return err
	}
	if err := a.state.PutSanityCheck(check); err != nil {
		return err
	}
	a.emitter.Emit(events.SanityCheckUpdated{
		Asset:               asset,
		LastPrice:           lastPrice,
		AllowedDeviationBps: allowedDeviationBps,
		MaxTimeDelay:        maxTimeDelay,
	})
	return nil
}

// SetTokenLimit configures the asset-level rate limit and the default applied
// to new user records. Capacity counters are zeroed whenever a direction pair
// is newly configured.
func (a *Admin) SetTokenLimit(actor, asset Address, limit, defaultUserLimit *LimitConfig) error {
	if err := a.requireRole(actor, RoleAdmin); err != nil {
		return err
	}
	if err := limit.Validate(); err != nil {
		return err
	}
	if err := defaultUserLimit.Validate(); err != nil {
		return err
	}
	token, exists, err := a.state.TokenLimit(asset)
	if err != nil {
		return err
	}
	if !exists {
		token = &TokenLimit{Asset: asset}
	}
	if token.Limit == nil && limit != nil {
		token.MintCapacityUsed = 0
		token.MintLastUpdated = 0
		token.RedeemCapacityUsed = 0
		token.RedeemLastUpdated = 0
	}
	token.Limit = limit.Clone()
	token.DefaultUserLimit = defaultUserLimit.Clone()
	if err := a.state.PutTokenLimit(token); err != nil {
		return err
	}
	event := events.TokenLimitSet{Asset: asset}
	if limit != nil {
		rate, window := limit.RateLimit, limit.Window
		event.RateLimit, event.Window = &rate, &window
	}
	a.emitter.Emit(event)
	return nil
}

// SetUserRateLimit overrides the rate limit of a single (user, asset) record,
// creating the record from the asset defaults when absent.
func (a *Admin) SetUserRateLimit(actor, user, asset Address, limit *LimitConfig) error {
	if err := a.requireRole(actor, RoleAdmin); err != nil {
		return err
	}
	if err := limit.Validate(); err != nil {
		return err
	}
	token, exists, err := a.state.TokenLimit(asset)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRateLimitNotConfigured
	}
	record, err := ensureUserRecord(a.state, user, token)
	if err != nil {
		return err
	}
	if record.Limit == nil && limit != nil {
		record.MintCapacityUsed = 0
		record.MintLastUpdated = 0
		record.RedeemCapacityUsed = 0
		record.RedeemLastUpdated = 0
	}
	record.Limit = limit.Clone()
	if err := a.state.PutUserRecord(record); err != nil {
		return err
	}
	event := events.UserLimitSet{User: user, Asset: asset}
	if limit != nil {
		rate, window := limit.RateLimit, limit.Window
		event.RateLimit, event.Window = &rate, &window
	}
	a.emitter.Emit(event)
	return nil
}

// SetTokenPause flips the per-asset pause flags.
func (a *Admin) SetTokenPause(actor, asset Address, mintingPaused, redemptionPaused bool) error {
	if err := a.requireRole(actor, RolePauser); err != nil {
		return err
	}
	token, exists, err := a.state.TokenLimit(asset)
	if err != nil {
		return err
	}
	if !exists {
		token = &TokenLimit{Asset: asset}
	}
	token.MintingPaused = mintingPaused
	token.RedemptionPaused = redemptionPaused
	if err := a.state.PutTokenLimit(token); err != nil {
		return err
	}
	a.emitter.Emit(events.TokenPaused{
		Asset:            asset,
		MintingPaused:    mintingPaused,
		RedemptionPaused: redemptionPaused,
		Actor:            actor,
	})
	return nil
}

// SetMintingPaused flips the global minting pause flag.
func (a *Admin) SetMintingPaused(actor Address, paused bool) error {
	if err := a.requireRole(actor, RolePauser); err != nil {
		return err
	}
	manager, err := a.state.ManagerState()
	if err != nil {
		return err
	}
	manager.MintingPaused = paused
	if err := a.state.PutManagerState(manager); err != nil {
		return err
	}
	a.emitter.Emit(events.MintingPaused{Paused: paused, Actor: actor})
	a.logger.Info("gm minting pause set", "paused", paused, "actor", actor.String())
	return nil
}

// SetRedemptionPaused flips the global redemption pause flag.
func (a *Admin) SetRedemptionPaused(actor Address, paused bool) error {
	if err := a.requireRole(actor, RolePauser); err != nil {
		return err
	}
	manager, err := a.state.ManagerState()
	if err != nil {
		return err
	}
	manager.RedemptionPaused = paused
	if err := a.state.PutManagerState(manager); err != nil {
		return err
	}
	a.emitter.Emit(events.RedemptionPaused{Paused: paused, Actor: actor})
	a.logger.Info("gm redemption pause set", "paused", paused, "actor", actor.String())
	return nil
}

// SetFactoryPaused flips the token factory pause flag.
func (a *Admin) SetFactoryPaused(actor Address, paused bool) error {
	if err := a.requireRole(actor, RolePauser); err != nil {
		return err
	}
	manager, err := a.state.ManagerState()
	if err != nil {
		return err
	}
	manager.FactoryPaused = paused
	if err := a.state.PutManagerState(manager); err != nil {
		return err
	}
	a.emitter.Emit(events.FactoryPaused{Paused: paused, Actor: actor})
	return nil
}

// SetAttestationSigner rotates the trusted attestation signer address.
func (a *Admin) SetAttestationSigner(actor Address, signer [20]byte) error {
	if err := a.requireRole(actor, RoleAdmin); err != nil {
		return err
	}
	manager, err := a.state.ManagerState()
	if err != nil {
		return err
	}
	manager.AttestationSigner = signer
	if err := a.state.PutManagerState(manager); err != nil {
		return err
	}
	a.emitter.Emit(events.AttestationSignerSet{Signer: signer, Actor: actor})
	a.logger.Info("gm attestation signer set", "actor", actor.String())
	return nil
}

// SetTradingHoursOffset changes the UTC offset applied by the weekend gate.
func (a *Admin) SetTradingHoursOffset(actor Address, offset int64) error {
	if err := a.requireRole(actor, RoleAdmin); err != nil {
		return err
	}
	if err := ValidateTradingHoursOffset(offset); err != nil {
		return err
	}
	manager, err := a.state.ManagerState()
	if err != nil {
		return err
	}
	prev := manager.TradingHoursOffset
	manager.TradingHoursOffset = offset
	if err := a.state.PutManagerState(manager); err != nil {
		return err
	}
	a.emitter.Emit(events.TradingHoursOffsetSet{PrevOffset: prev, NewOffset: offset, Actor: actor})
	return nil
}

// SetStableState installs or replaces the stable settlement leg configuration.
func (a *Admin) SetStableState(actor Address, stable *StableManagerState) error {
	if err := a.requireRole(actor, RoleAdmin); err != nil {
		return err
	}
	return a.state.PutStableState(stable)
}

// MintTo mints tokens directly to an account. The notional value of a single
// operation, priced at the asset's recorded sanity price and rounded up,
// cannot exceed MaxMintAmount. Direct issuance halts while the factory is
// paused.
func (a *Admin) MintTo(actor Address, asset, to Address, amount uint64) error {
	if err := a.requireRole(actor, RoleMinter); err != nil {
		return err
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	manager, err := a.state.ManagerState()
	if err != nil {
		return err
	}
	if manager.FactoryPaused {
		return ErrFactoryPaused
	}
	check, exists, err := a.state.SanityCheck(asset)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSanityCheckNotConfigured
	}
	notional, err := MulDiv(amount, check.LastPrice, PriceScale, true)
	if err != nil {
		return err
	}
	if notional > MaxMintAmount {
		return ErrAmountExceedsMaxMint
	}
	if err := a.tokens.Mint(asset, to, amount); err != nil {
		return err
	}
	a.logger.Info("gm direct mint", "asset", asset.String(), "to", to.String(), "amount", amount)
	return nil
}
