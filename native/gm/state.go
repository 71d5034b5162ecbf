package gm

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"ondogm/storage"
)

// Storage abstracts the subset of state manager functionality required by the
// settlement core. Values are rlp-encoded records.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
}

// KVStore adapts a storage.Database to the Storage interface using rlp
// encoding for stored records.
type KVStore struct {
	db storage.Database
}

// NewKVStore wraps the provided database.
func NewKVStore(db storage.Database) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) KVGet(key []byte, out interface{}) (bool, error) {
	raw, err := s.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *KVStore) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return s.db.Put(key, encoded)
}

func (s *KVStore) KVDelete(key []byte) error {
	return s.db.Delete(key)
}

// Staged buffers writes and deletes on top of a base Storage so an exchange
// flow mutates nothing until every check has passed. Commit flushes the buffer
// in write order; discarding the Staged value aborts the flow with zero state
// mutation, matching the host's atomic commit/abort execution model.
type Staged struct {
	base    Storage
	writes  map[string][]byte
	order   []string
	deleted map[string]struct{}
}

// NewStaged constructs an empty overlay over base.
func NewStaged(base Storage) *Staged {
	return &Staged{
		base:    base,
		writes:  make(map[string][]byte),
		deleted: make(map[string]struct{}),
	}
}

func (s *Staged) KVGet(key []byte, out interface{}) (bool, error) {
	k := string(key)
	if _, gone := s.deleted[k]; gone {
		return false, nil
	}
	if encoded, ok := s.writes[k]; ok {
		if out == nil {
			return true, nil
		}
		if err := rlp.DecodeBytes(encoded, out); err != nil {
			return false, err
		}
		return true, nil
	}
	return s.base.KVGet(key, out)
}

func (s *Staged) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	k := string(key)
	if _, seen := s.writes[k]; !seen {
		s.order = append(s.order, k)
	}
	s.writes[k] = encoded
	delete(s.deleted, k)
	return nil
}

func (s *Staged) KVDelete(key []byte) error {
	k := string(key)
	delete(s.writes, k)
	s.deleted[k] = struct{}{}
	return nil
}

// Commit flushes all buffered writes and deletes to the base storage.
func (s *Staged) Commit() error {
	for _, k := range s.order {
		encoded, ok := s.writes[k]
		if !ok {
			continue
		}
		if err := s.base.KVPut([]byte(k), rlp.RawValue(encoded)); err != nil {
			return err
		}
	}
	for k := range s.deleted {
		if err := s.base.KVDelete([]byte(k)); err != nil {
			return err
		}
	}
	s.writes = make(map[string][]byte)
	s.order = s.order[:0]
	s.deleted = make(map[string]struct{})
	return nil
}

// State exposes typed access to the settlement records.
type State struct {
	store Storage
}

// NewState constructs a record store bound to the provided storage.
func NewState(store Storage) *State {
	return &State{store: store}
}

// Store returns the underlying storage (used to stack a Staged overlay).
func (s *State) Store() Storage { return s.store }

// --- stored forms (rlp carries no signed integers, so timestamps are clamped
// uint64 and the trading-hours offset is sign+magnitude) ---

type storedLimitConfig struct {
	Configured bool
	RateLimit  uint64
	Window     uint64
}

func toStoredLimit(cfg *LimitConfig) storedLimitConfig {
	if cfg == nil {
		return storedLimitConfig{}
	}
	return storedLimitConfig{Configured: true, RateLimit: cfg.RateLimit, Window: cfg.Window}
}

func (s storedLimitConfig) toLimit() *LimitConfig {
	if !s.Configured {
		return nil
	}
	return &LimitConfig{RateLimit: s.RateLimit, Window: s.Window}
}

type storedSanityCheck struct {
	Asset               [32]byte
	LastPrice           uint64
	AllowedDeviationBps uint64
	MaxTimeDelay        uint64
	PriceLastUpdated    uint64
}

type storedTokenLimit struct {
	Asset              [32]byte
	Limit              storedLimitConfig
	MintCapacityUsed   uint64
	MintLastUpdated    uint64
	RedeemCapacityUsed uint64
	RedeemLastUpdated  uint64
	MintingPaused      bool
	RedemptionPaused   bool
	DefaultUserLimit   storedLimitConfig
}

type storedUserRecord struct {
	Owner              [32]byte
	Asset              [32]byte
	Limit              storedLimitConfig
	MintCapacityUsed   uint64
	MintLastUpdated    uint64
	RedeemCapacityUsed uint64
	RedeemLastUpdated  uint64
}

type storedAttestation struct {
	ID        [16]byte
	Creator   [32]byte
	CreatedAt uint64
}

type storedManagerState struct {
	ExecutionID       *big.Int
	FactoryPaused     bool
	RedemptionPaused  bool
	MintingPaused     bool
	AttestationSigner [20]byte
	OffsetWestward    bool
	OffsetSeconds     uint64
}

type storedStableState struct {
	Owner              [32]byte
	StableAsset        [32]byte
	ReferenceAsset     [32]byte
	OraclePriceEnabled bool
	OraclePriceMaxAge  uint64
	PriceFeedID        string
	ReferenceVault     [32]byte
	StableVault        [32]byte
}

func clampTimestamp(ts int64) uint64 {
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func uint64ToInt64(value uint64) (int64, error) {
	if value > math.MaxInt64 {
		return 0, fmt.Errorf("value %d exceeds int64 range", value)
	}
	return int64(value), nil
}

// --- accessors ---

// SanityCheck loads the sanity record for an asset.
func (s *State) SanityCheck(asset Address) (*SanityCheck, bool, error) {
	var stored storedSanityCheck
	ok, err := s.store.KVGet(sanityCheckKey(asset), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	maxDelay, err := uint64ToInt64(stored.MaxTimeDelay)
	if err != nil {
		return nil, false, fmt.Errorf("gm: sanity max time delay: %w", err)
	}
	lastUpdated, err := uint64ToInt64(stored.PriceLastUpdated)
	if err != nil {
		return nil, false, fmt.Errorf("gm: sanity last updated: %w", err)
	}
	check := &SanityCheck{
		Asset:               Address(stored.Asset),
		LastPrice:           stored.LastPrice,
		AllowedDeviationBps: stored.AllowedDeviationBps,
		MaxTimeDelay:        maxDelay,
		PriceLastUpdated:    lastUpdated,
	}
	return check, true, nil
}

// PutSanityCheck persists the sanity record.
func (s *State) PutSanityCheck(check *SanityCheck) error {
	if check == nil {
		return fmt.Errorf("gm: sanity check must not be nil")
	}
	stored := storedSanityCheck{
		Asset:               check.Asset,
		LastPrice:           check.LastPrice,
		AllowedDeviationBps: check.AllowedDeviationBps,
		MaxTimeDelay:        clampTimestamp(check.MaxTimeDelay),
		PriceLastUpdated:    clampTimestamp(check.PriceLastUpdated),
	}
	return s.store.KVPut(sanityCheckKey(check.Asset), stored)
}

// TokenLimit loads the asset-level limiter record.
func (s *State) TokenLimit(asset Address) (*TokenLimit, bool, error) {
	var stored storedTokenLimit
	ok, err := s.store.KVGet(tokenLimitKey(asset), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	mintUpdated, err := uint64ToInt64(stored.MintLastUpdated)
	if err != nil {
		return nil, false, fmt.Errorf("gm: token limit mint updated: %w", err)
	}
	redeemUpdated, err := uint64ToInt64(stored.RedeemLastUpdated)
	if err != nil {
		return nil, false, fmt.Errorf("gm: token limit redeem updated: %w", err)
	}
	limit := &TokenLimit{
		Asset:              Address(stored.Asset),
		Limit:              stored.Limit.toLimit(),
		MintCapacityUsed:   stored.MintCapacityUsed,
		MintLastUpdated:    mintUpdated,
		RedeemCapacityUsed: stored.RedeemCapacityUsed,
		RedeemLastUpdated:  redeemUpdated,
		MintingPaused:      stored.MintingPaused,
		RedemptionPaused:   stored.RedemptionPaused,
		DefaultUserLimit:   stored.DefaultUserLimit.toLimit(),
	}
	return limit, true, nil
}

// PutTokenLimit persists the asset-level limiter record.
func (s *State) PutTokenLimit(limit *TokenLimit) error {
	if limit == nil {
		return fmt.Errorf("gm: token limit must not be nil")
	}
	stored := storedTokenLimit{
		Asset:              limit.Asset,
		Limit:              toStoredLimit(limit.Limit),
		MintCapacityUsed:   limit.MintCapacityUsed,
		MintLastUpdated:    clampTimestamp(limit.MintLastUpdated),
		RedeemCapacityUsed: limit.RedeemCapacityUsed,
		RedeemLastUpdated:  clampTimestamp(limit.RedeemLastUpdated),
		MintingPaused:      limit.MintingPaused,
		RedemptionPaused:   limit.RedemptionPaused,
		DefaultUserLimit:   toStoredLimit(limit.DefaultUserLimit),
	}
	return s.store.KVPut(tokenLimitKey(limit.Asset), stored)
}

// UserRecord loads the (user, asset) limiter record.
func (s *State) UserRecord(owner, asset Address) (*UserRecord, bool, error) {
	var stored storedUserRecord
	ok, err := s.store.KVGet(userRecordKey(owner, asset), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	mintUpdated, err := uint64ToInt64(stored.MintLastUpdated)
	if err != nil {
		return nil, false, fmt.Errorf("gm: user record mint updated: %w", err)
	}
	redeemUpdated, err := uint64ToInt64(stored.RedeemLastUpdated)
	if err != nil {
		return nil, false, fmt.Errorf("gm: user record redeem updated: %w", err)
	}
	record := &UserRecord{
		Owner:              Address(stored.Owner),
		Asset:              Address(stored.Asset),
		Limit:              stored.Limit.toLimit(),
		MintCapacityUsed:   stored.MintCapacityUsed,
		MintLastUpdated:    mintUpdated,
		RedeemCapacityUsed: stored.RedeemCapacityUsed,
		RedeemLastUpdated:  redeemUpdated,
	}
	return record, true, nil
}

// PutUserRecord persists the (user, asset) limiter record.
func (s *State) PutUserRecord(record *UserRecord) error {
	if record == nil {
		return fmt.Errorf("gm: user record must not be nil")
	}
	stored := storedUserRecord{
		Owner:              record.Owner,
		Asset:              record.Asset,
		Limit:              toStoredLimit(record.Limit),
		MintCapacityUsed:   record.MintCapacityUsed,
		MintLastUpdated:    clampTimestamp(record.MintLastUpdated),
		RedeemCapacityUsed: record.RedeemCapacityUsed,
		RedeemLastUpdated:  clampTimestamp(record.RedeemLastUpdated),
	}
	return s.store.KVPut(userRecordKey(record.Owner, record.Asset), stored)
}

// Attestation loads the replay-guard record for an attestation id.
func (s *State) Attestation(id AttestationID) (*AttestationRecord, bool, error) {
	var stored storedAttestation
	ok, err := s.store.KVGet(attestationKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	createdAt, err := uint64ToInt64(stored.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("gm: attestation created at: %w", err)
	}
	record := &AttestationRecord{
		ID:        AttestationID(stored.ID),
		Creator:   Address(stored.Creator),
		CreatedAt: createdAt,
	}
	return record, true, nil
}

// PutAttestation persists the replay-guard record.
func (s *State) PutAttestation(record *AttestationRecord) error {
	if record == nil {
		return fmt.Errorf("gm: attestation record must not be nil")
	}
	stored := storedAttestation{
		ID:        record.ID,
		Creator:   record.Creator,
		CreatedAt: clampTimestamp(record.CreatedAt),
	}
	return s.store.KVPut(attestationKey(record.ID), stored)
}

// DeleteAttestation removes a replay-guard record, reclaiming its storage.
func (s *State) DeleteAttestation(id AttestationID) error {
	return s.store.KVDelete(attestationKey(id))
}

// ManagerState loads the singleton exchange state, defaulting to zero values
// when it has never been written.
func (s *State) ManagerState() (*ManagerState, error) {
	var stored storedManagerState
	ok, err := s.store.KVGet(managerStateKey, &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &ManagerState{ExecutionID: big.NewInt(0)}, nil
	}
	offset, err := uint64ToInt64(stored.OffsetSeconds)
	if err != nil {
		return nil, fmt.Errorf("gm: trading hours offset: %w", err)
	}
	if stored.OffsetWestward {
		offset = -offset
	}
	execution := stored.ExecutionID
	if execution == nil {
		execution = big.NewInt(0)
	}
	state := &ManagerState{
		ExecutionID:        execution,
		FactoryPaused:      stored.FactoryPaused,
		RedemptionPaused:   stored.RedemptionPaused,
		MintingPaused:      stored.MintingPaused,
		AttestationSigner:  stored.AttestationSigner,
		TradingHoursOffset: offset,
	}
	return state, nil
}

// PutManagerState persists the singleton exchange state.
func (s *State) PutManagerState(state *ManagerState) error {
	if state == nil {
		return fmt.Errorf("gm: manager state must not be nil")
	}
	execution := state.ExecutionID
	if execution == nil {
		execution = big.NewInt(0)
	}
	stored := storedManagerState{
		ExecutionID:       execution,
		FactoryPaused:     state.FactoryPaused,
		RedemptionPaused:  state.RedemptionPaused,
		MintingPaused:     state.MintingPaused,
		AttestationSigner: state.AttestationSigner,
	}
	if state.TradingHoursOffset < 0 {
		stored.OffsetWestward = true
		stored.OffsetSeconds = uint64(-state.TradingHoursOffset)
	} else {
		stored.OffsetSeconds = uint64(state.TradingHoursOffset)
	}
	return s.store.KVPut(managerStateKey, stored)
}

// StableState loads the singleton stable-leg configuration.
func (s *State) StableState() (*StableManagerState, bool, error) {
	var stored storedStableState
	ok, err := s.store.KVGet(stableStateKey, &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	state := &StableManagerState{
		Owner:              Address(stored.Owner),
		StableAsset:        Address(stored.StableAsset),
		ReferenceAsset:     Address(stored.ReferenceAsset),
		OraclePriceEnabled: stored.OraclePriceEnabled,
		OraclePriceMaxAge:  stored.OraclePriceMaxAge,
		PriceFeedID:        stored.PriceFeedID,
		ReferenceVault:     Address(stored.ReferenceVault),
		StableVault:        Address(stored.StableVault),
	}
	return state, true, nil
}

// PutStableState persists the singleton stable-leg configuration.
func (s *State) PutStableState(state *StableManagerState) error {
	if state == nil {
		return fmt.Errorf("gm: stable state must not be nil")
	}
	if state.OraclePriceMaxAge > MaxOraclePriceAge {
		return ErrInvalidOracleMaxAge
	}
	stored := storedStableState{
		Owner:              state.Owner,
		StableAsset:        state.StableAsset,
		ReferenceAsset:     state.ReferenceAsset,
		OraclePriceEnabled: state.OraclePriceEnabled,
		OraclePriceMaxAge:  state.OraclePriceMaxAge,
		PriceFeedID:        state.PriceFeedID,
		ReferenceVault:     state.ReferenceVault,
		StableVault:        state.StableVault,
	}
	return s.store.KVPut(stableStateKey, stored)
}
