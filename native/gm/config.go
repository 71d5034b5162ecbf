package gm

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// LimitTOML models an optional rate limit pair parsed from configuration. A
// zero window falls back to DefaultLimitWindow.
type LimitTOML struct {
	RateLimit uint64 `toml:"RateLimit"`
	Window    uint64 `toml:"Window"`
}

func (cfg *LimitTOML) toLimitConfig() *LimitConfig {
	if cfg == nil {
		return nil
	}
	window := cfg.Window
	if window == 0 {
		window = DefaultLimitWindow
	}
	return &LimitConfig{RateLimit: cfg.RateLimit, Window: window}
}

// AssetTOML models one GM asset's settlement parameters parsed from
// configuration.
type AssetTOML struct {
	Asset               string     `toml:"Asset"`
	LastPrice           uint64     `toml:"LastPrice"`
	AllowedDeviationBps uint64     `toml:"AllowedDeviationBps"`
	MaxTimeDelaySeconds int64      `toml:"MaxTimeDelaySeconds"`
	Limit               *LimitTOML `toml:"Limit"`
	DefaultUserLimit    *LimitTOML `toml:"DefaultUserLimit"`
}

// StableTOML models the stable settlement leg parsed from configuration.
type StableTOML struct {
	Owner              string `toml:"Owner"`
	StableAsset        string `toml:"StableAsset"`
	ReferenceAsset     string `toml:"ReferenceAsset"`
	OraclePriceEnabled bool   `toml:"OraclePriceEnabled"`
	OraclePriceMaxAge  uint64 `toml:"OraclePriceMaxAge"`
	PriceFeedID        string `toml:"PriceFeedID"`
	ReferenceVault     string `toml:"ReferenceVault"`
	StableVault        string `toml:"StableVault"`
}

// Config is the genesis configuration of the settlement core.
type Config struct {
	ChainID            string      `toml:"ChainID"`
	AttestationSigner  string      `toml:"AttestationSigner"`
	TradingHoursOffset int64       `toml:"TradingHoursOffset"`
	Assets             []AssetTOML `toml:"Assets"`
	Stable             *StableTOML `toml:"Stable"`
}

// LoadConfig parses a TOML configuration file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("gm: decode config: %w", err)
	}
	return cfg.Normalise(), nil
}

// Normalise trims whitespace, removes duplicate assets, and orders entries
// deterministically.
func (cfg Config) Normalise() Config {
	normalized := cfg
	normalized.ChainID = strings.TrimSpace(cfg.ChainID)
	normalized.AttestationSigner = strings.TrimSpace(cfg.AttestationSigner)
	normalized.Assets = nil
	if len(cfg.Assets) > 0 {
		seen := make(map[string]struct{}, len(cfg.Assets))
		for _, entry := range cfg.Assets {
			asset := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(entry.Asset, "0x")))
			if asset == "" {
				continue
			}
			if _, exists := seen[asset]; exists {
				continue
			}
			seen[asset] = struct{}{}
			entry.Asset = asset
			normalized.Assets = append(normalized.Assets, entry)
		}
		sort.Slice(normalized.Assets, func(i, j int) bool {
			return normalized.Assets[i].Asset < normalized.Assets[j].Asset
		})
	}
	return normalized
}

// Apply seeds the settlement records from the configuration. Existing records
// are replaced; balances and capacity counters start from zero.
func (cfg Config) Apply(state *State, now int64) error {
	manager, err := state.ManagerState()
	if err != nil {
		return err
	}
	if cfg.AttestationSigner != "" {
		raw := strings.TrimPrefix(cfg.AttestationSigner, "0x")
		decoded, err := hex.DecodeString(raw)
		if err != nil {
			return fmt.Errorf("gm: attestation signer: %w", err)
		}
		var signer [20]byte
		if len(decoded) != len(signer) {
			return fmt.Errorf("gm: attestation signer: invalid length %d", len(decoded))
		}
		copy(signer[:], decoded)
		manager.AttestationSigner = signer
	}
	if err := ValidateTradingHoursOffset(cfg.TradingHoursOffset); err != nil {
		return err
	}
	manager.TradingHoursOffset = cfg.TradingHoursOffset
	if err := state.PutManagerState(manager); err != nil {
		return err
	}

	for _, entry := range cfg.Assets {
		asset, err := ParseAddress(entry.Asset)
		if err != nil {
			return err
		}
		check := &SanityCheck{
			Asset:               asset,
			LastPrice:           entry.LastPrice,
			AllowedDeviationBps: entry.AllowedDeviationBps,
			MaxTimeDelay:        entry.MaxTimeDelaySeconds,
			PriceLastUpdated:    now,
		}
		if err := check.Validate(); err != nil {
			return fmt.Errorf("gm: asset %s: %w", entry.Asset, err)
		}
		if err := state.PutSanityCheck(check); err != nil {
			return err
		}
		limit := entry.Limit.toLimitConfig()
		if err := limit.Validate(); err != nil {
			return fmt.Errorf("gm: asset %s: %w", entry.Asset, err)
		}
		token := &TokenLimit{
			Asset:            asset,
			Limit:            limit,
			DefaultUserLimit: entry.DefaultUserLimit.toLimitConfig(),
		}
		if err := state.PutTokenLimit(token); err != nil {
			return err
		}
	}

	if cfg.Stable != nil {
		stable, err := cfg.Stable.toStableState()
		if err != nil {
			return err
		}
		if err := state.PutStableState(stable); err != nil {
			return err
		}
	}
	return nil
}

func (cfg *StableTOML) toStableState() (*StableManagerState, error) {
	parse := func(field, value string) (Address, error) {
		addr, err := ParseAddress(value)
		if err != nil {
			return Address{}, fmt.Errorf("gm: stable %s: %w", field, err)
		}
		return addr, nil
	}
	owner, err := parse("owner", cfg.Owner)
	if err != nil {
		return nil, err
	}
	stableAsset, err := parse("asset", cfg.StableAsset)
	if err != nil {
		return nil, err
	}
	referenceAsset, err := parse("reference asset", cfg.ReferenceAsset)
	if err != nil {
		return nil, err
	}
	referenceVault, err := parse("reference vault", cfg.ReferenceVault)
	if err != nil {
		return nil, err
	}
	stableVault, err := parse("vault", cfg.StableVault)
	if err != nil {
		return nil, err
	}
	return &StableManagerState{
		Owner:              owner,
		StableAsset:        stableAsset,
		ReferenceAsset:     referenceAsset,
		OraclePriceEnabled: cfg.OraclePriceEnabled,
		OraclePriceMaxAge:  cfg.OraclePriceMaxAge,
		PriceFeedID:        strings.TrimSpace(cfg.PriceFeedID),
		ReferenceVault:     referenceVault,
		StableVault:        stableVault,
	}, nil
}
