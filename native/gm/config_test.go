package gm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const configFixture = `
ChainID = "ondo-gm-1"
AttestationSigner = "0x00112233445566778899aabbccddeeff00112233"
TradingHoursOffset = -18000

[[Assets]]
Asset = "a000000000000000000000000000000000000000000000000000000000000000"
LastPrice = 1000000000
AllowedDeviationBps = 500
MaxTimeDelaySeconds = 3600

[Assets.Limit]
RateLimit = 10000000000
Window = 60

[Assets.DefaultUserLimit]
RateLimit = 1000000000

[Stable]
Owner = "00000000000000000000000000000000000000000000000000000000000000c0"
StableAsset = "00000000000000000000000000000000000000000000000000000000000000c1"
ReferenceAsset = "00000000000000000000000000000000000000000000000000000000000000c2"
OraclePriceEnabled = true
OraclePriceMaxAge = 600
PriceFeedID = "usdc-usd"
ReferenceVault = "00000000000000000000000000000000000000000000000000000000000000c3"
StableVault = "00000000000000000000000000000000000000000000000000000000000000c4"
`

func writeConfigFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gm.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFixture(t, configFixture))
	require.NoError(t, err)
	require.Equal(t, "ondo-gm-1", cfg.ChainID)
	require.Equal(t, int64(-18000), cfg.TradingHoursOffset)
	require.Len(t, cfg.Assets, 1)
	require.NotNil(t, cfg.Stable)
	require.Equal(t, "usdc-usd", cfg.Stable.PriceFeedID)
	// A missing window falls back to the default.
	require.Equal(t, DefaultLimitWindow, cfg.Assets[0].DefaultUserLimit.toLimitConfig().Window)
}

func TestConfigApply(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFixture(t, configFixture))
	require.NoError(t, err)

	state := newTestState(t)
	require.NoError(t, cfg.Apply(state, fixtureNow))

	manager, err := state.ManagerState()
	require.NoError(t, err)
	require.Equal(t, int64(-18000), manager.TradingHoursOffset)
	require.Equal(t, byte(0x00), manager.AttestationSigner[0])
	require.Equal(t, byte(0x33), manager.AttestationSigner[19])

	asset := testAddress(0xA0)
	check, exists, err := state.SanityCheck(asset)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, uint64(1_000_000_000), check.LastPrice)
	require.Equal(t, fixtureNow, check.PriceLastUpdated)

	token, exists, err := state.TokenLimit(asset)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, uint64(10_000_000_000), token.Limit.RateLimit)
	require.Equal(t, uint64(60), token.Limit.Window)
	require.Equal(t, DefaultLimitWindow, token.DefaultUserLimit.Window)

	stable, exists, err := state.StableState()
	require.NoError(t, err)
	require.True(t, exists)
	require.True(t, stable.OraclePriceEnabled)
	require.Equal(t, uint64(600), stable.OraclePriceMaxAge)
}

func TestConfigNormaliseDeduplicates(t *testing.T) {
	cfg := Config{
		ChainID: "  ondo-gm-1  ",
		Assets: []AssetTOML{
			{Asset: "0xBB", LastPrice: 1},
			{Asset: "bb", LastPrice: 2},
			{Asset: "aa", LastPrice: 3},
			{Asset: "  ", LastPrice: 4},
		},
	}
	normalized := cfg.Normalise()
	require.Equal(t, "ondo-gm-1", normalized.ChainID)
	require.Len(t, normalized.Assets, 2)
	require.Equal(t, "aa", normalized.Assets[0].Asset)
	require.Equal(t, "bb", normalized.Assets[1].Asset)
	require.Equal(t, uint64(1), normalized.Assets[1].LastPrice)
}

func TestConfigApplyRejectsBadOffset(t *testing.T) {
	cfg := Config{TradingHoursOffset: MaxTradingHoursOffset + 1}
	state := newTestState(t)
	require.ErrorIs(t, cfg.Apply(state, fixtureNow), ErrOffsetOutOfRange)
}
