package gm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ondogm/core/events"
)

type mockRoles map[string]map[Address]bool

func (r mockRoles) HasRole(actor Address, role string) bool { return r[role][actor] }

func newTestAdmin(t *testing.T) (*Admin, *State, *mockLedger, Address) {
	t.Helper()
	state := newTestState(t)
	ledger := &mockLedger{}
	actor := testAddress(0xAD)
	roles := mockRoles{
		RoleAdmin:  {actor: true},
		RolePauser: {actor: true},
		RoleMinter: {actor: true},
	}
	admin := NewAdmin(state, ledger, roles)
	admin.SetClock(func() time.Time { return time.Unix(fixtureNow, 0) })
	return admin, state, ledger, actor
}

func TestAdminRequiresRole(t *testing.T) {
	admin, _, _, _ := newTestAdmin(t)
	outsider := testAddress(0x99)
	err := admin.InitializeSanityCheck(outsider, testAddress(0x01), 1_000_000_000, 500, 3600)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, admin.SetMintingPaused(outsider, true), ErrUnauthorized)
	require.ErrorIs(t, admin.MintTo(outsider, testAddress(0x01), outsider, 1), ErrUnauthorized)
}

func TestAdminSanityLifecycle(t *testing.T) {
	admin, state, _, actor := newTestAdmin(t)
	asset := testAddress(0x01)

	require.NoError(t, admin.InitializeSanityCheck(actor, asset, 1_000_000_000, 500, 3600))
	check, exists, err := state.SanityCheck(asset)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, uint64(1_000_000_000), check.LastPrice)
	require.Equal(t, fixtureNow, check.PriceLastUpdated)

	// Bounds are enforced on update as well.
	bad := uint64(10_001)
	require.ErrorIs(t, admin.UpdateSanityCheck(actor, asset, nil, &bad, nil), ErrInvalidDeviation)

	price := uint64(2_000_000_000)
	admin.SetClock(func() time.Time { return time.Unix(fixtureNow+100, 0) })
	require.NoError(t, admin.UpdateSanityCheck(actor, asset, &price, nil, nil))
	check, _, err = state.SanityCheck(asset)
	require.NoError(t, err)
	require.Equal(t, price, check.LastPrice)
	require.Equal(t, fixtureNow+100, check.PriceLastUpdated)
	// Untouched fields survive.
	require.Equal(t, uint64(500), check.AllowedDeviationBps)

	require.ErrorIs(t, admin.UpdateSanityCheck(actor, testAddress(0x02), &price, nil, nil), ErrSanityCheckNotConfigured)
}

func TestAdminTokenLimitSeedsCapacity(t *testing.T) {
	admin, state, _, actor := newTestAdmin(t)
	asset := testAddress(0x01)

	require.ErrorIs(t,
		admin.SetTokenLimit(actor, asset, &LimitConfig{RateLimit: 10, Window: 0}, nil),
		ErrInvalidLimitWindow)

	require.NoError(t, admin.SetTokenLimit(actor, asset,
		&LimitConfig{RateLimit: 1_000, Window: 60},
		&LimitConfig{RateLimit: 100, Window: 60}))
	token, exists, err := state.TokenLimit(asset)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, uint64(1_000), token.Limit.RateLimit)
	require.Zero(t, token.MintCapacityUsed)

	// Simulate traffic, then reconfigure: counters persist while the pair
	// stays configured.
	token.MintCapacityUsed = 500
	token.MintLastUpdated = fixtureNow
	require.NoError(t, state.PutTokenLimit(token))
	require.NoError(t, admin.SetTokenLimit(actor, asset, &LimitConfig{RateLimit: 2_000, Window: 60}, nil))
	token, _, err = state.TokenLimit(asset)
	require.NoError(t, err)
	require.Equal(t, uint64(500), token.MintCapacityUsed)

	// Clearing and re-configuring the pair zeroes the counters.
	require.NoError(t, admin.SetTokenLimit(actor, asset, nil, nil))
	require.NoError(t, admin.SetTokenLimit(actor, asset, &LimitConfig{RateLimit: 2_000, Window: 60}, nil))
	token, _, err = state.TokenLimit(asset)
	require.NoError(t, err)
	require.Zero(t, token.MintCapacityUsed)
	require.Zero(t, token.MintLastUpdated)
}

func TestAdminUserRateLimit(t *testing.T) {
	admin, state, _, actor := newTestAdmin(t)
	asset := testAddress(0x01)
	user := testAddress(0x02)

	require.ErrorIs(t,
		admin.SetUserRateLimit(actor, user, asset, &LimitConfig{RateLimit: 10, Window: 60}),
		ErrRateLimitNotConfigured)

	require.NoError(t, admin.SetTokenLimit(actor, asset, &LimitConfig{RateLimit: 1_000, Window: 60}, nil))
	require.NoError(t, admin.SetUserRateLimit(actor, user, asset, &LimitConfig{RateLimit: 10, Window: 60}))
	record, exists, err := state.UserRecord(user, asset)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, uint64(10), record.Limit.RateLimit)
}

func TestAdminPauseFlags(t *testing.T) {
	admin, state, _, actor := newTestAdmin(t)
	emitter := &recordingEmitter{}
	admin.SetEmitter(emitter)

	require.NoError(t, admin.SetMintingPaused(actor, true))
	require.NoError(t, admin.SetRedemptionPaused(actor, true))
	require.NoError(t, admin.SetFactoryPaused(actor, true))
	manager, err := state.ManagerState()
	require.NoError(t, err)
	require.True(t, manager.MintingPaused)
	require.True(t, manager.RedemptionPaused)
	require.True(t, manager.FactoryPaused)
	require.Len(t, emitter.events, 3)

	require.NoError(t, admin.SetMintingPaused(actor, false))
	manager, err = state.ManagerState()
	require.NoError(t, err)
	require.False(t, manager.MintingPaused)

	asset := testAddress(0x01)
	require.NoError(t, admin.SetTokenPause(actor, asset, true, false))
	token, _, err := state.TokenLimit(asset)
	require.NoError(t, err)
	require.True(t, token.MintingPaused)
	require.False(t, token.RedemptionPaused)
}

func TestAdminSignerAndOffset(t *testing.T) {
	admin, state, _, actor := newTestAdmin(t)
	emitter := &recordingEmitter{}
	admin.SetEmitter(emitter)

	signer := [20]byte{0x01, 0x02}
	require.NoError(t, admin.SetAttestationSigner(actor, signer))
	require.ErrorIs(t, admin.SetTradingHoursOffset(actor, MaxTradingHoursOffset+1), ErrOffsetOutOfRange)
	require.NoError(t, admin.SetTradingHoursOffset(actor, -5*SecondsPerHour))

	manager, err := state.ManagerState()
	require.NoError(t, err)
	require.Equal(t, signer, manager.AttestationSigner)
	require.Equal(t, -5*SecondsPerHour, manager.TradingHoursOffset)

	offsetEvent, ok := emitter.events[len(emitter.events)-1].(events.TradingHoursOffsetSet)
	require.True(t, ok)
	require.Equal(t, int64(0), offsetEvent.PrevOffset)
	require.Equal(t, -5*SecondsPerHour, offsetEvent.NewOffset)
}

func TestAdminMintTo(t *testing.T) {
	admin, _, ledger, actor := newTestAdmin(t)
	asset := testAddress(0x01)
	to := testAddress(0x02)

	require.ErrorIs(t, admin.MintTo(actor, asset, to, 0), ErrInvalidAmount)
	require.ErrorIs(t, admin.MintTo(actor, asset, to, 1), ErrSanityCheckNotConfigured)

	// At a $1 recorded price the notional equals the raw amount.
	require.NoError(t, admin.InitializeSanityCheck(actor, asset, 1_000_000_000, 500, 3600))
	require.ErrorIs(t, admin.MintTo(actor, asset, to, MaxMintAmount+1), ErrAmountExceedsMaxMint)
	require.NoError(t, admin.MintTo(actor, asset, to, MaxMintAmount))
	require.Len(t, ledger.calls, 1)
	require.Equal(t, "mint", ledger.calls[0].op)
	require.Equal(t, MaxMintAmount, ledger.calls[0].amount)
}

func TestAdminMintToCapsNotionalValue(t *testing.T) {
	admin, _, ledger, actor := newTestAdmin(t)
	asset := testAddress(0x01)
	to := testAddress(0x02)

	// At a $5 recorded price, 10 million tokens carry a $50M notional and
	// must be refused even though the raw amount alone sits at the cap.
	require.NoError(t, admin.InitializeSanityCheck(actor, asset, 5_000_000_000, 500, 3600))
	require.ErrorIs(t, admin.MintTo(actor, asset, to, 10_000_000_000_000_000), ErrAmountExceedsMaxMint)

	// 2 million tokens at $5 sit exactly at the $10M notional cap.
	require.NoError(t, admin.MintTo(actor, asset, to, 2_000_000_000_000_000))
	require.Len(t, ledger.calls, 1)
	require.Equal(t, uint64(2_000_000_000_000_000), ledger.calls[0].amount)

	// One base unit above the cap boundary tips over.
	require.ErrorIs(t, admin.MintTo(actor, asset, to, 2_000_000_000_000_001), ErrAmountExceedsMaxMint)
}

func TestAdminMintToFactoryPause(t *testing.T) {
	admin, _, ledger, actor := newTestAdmin(t)
	asset := testAddress(0x01)
	require.NoError(t, admin.InitializeSanityCheck(actor, asset, 1_000_000_000, 500, 3600))
	require.NoError(t, admin.SetFactoryPaused(actor, true))
	require.ErrorIs(t, admin.MintTo(actor, asset, testAddress(0x02), 1), ErrFactoryPaused)
	require.Empty(t, ledger.calls)

	require.NoError(t, admin.SetFactoryPaused(actor, false))
	require.NoError(t, admin.MintTo(actor, asset, testAddress(0x02), 1))
	require.Len(t, ledger.calls, 1)
}
