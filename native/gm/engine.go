package gm

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"ondogm/core/events"
	nativecommon "ondogm/native/common"
	"ondogm/observability/metrics"
)

// TokenService abstracts the host ledger operations the settlement core
// drives. Implementations are expected to be transactional with the
// surrounding state commit: when a flow returns an error, the host discards
// every balance movement alongside the staged record writes.
type TokenService interface {
	Transfer(asset, from, to Address, amount uint64) error
	Mint(asset Address, to Address, amount uint64) error
	Burn(asset Address, from Address, amount uint64) error
	Decimals(asset Address) (uint8, error)
}

// Whitelist answers whether a user account holds a whitelist marker for
// trading. A nil Whitelist on the engine disables the check.
type Whitelist interface {
	IsWhitelisted(user Address) (bool, error)
}

// TradeRequest carries everything needed to settle one attested mint or
// redeem. Signature is the 65-byte [R || S || V] secp256k1 signature over
// the quote digest. SettleInReference routes the cash leg through the
// reference asset instead of the synthetic stable.
type TradeRequest struct {
	User              Address
	Asset             Address
	AttestationID     AttestationID
	Price             uint64
	Amount            uint64
	Expiration        uint64
	Signature         []byte
	SettleInReference bool
}

// TradeReceipt reports the outcome of a settled trade.
type TradeReceipt struct {
	ExecutionID  *big.Int
	StableAmount uint64
}

// Engine settles attested mints and redeems for GM assets. All record
// mutations are staged and committed only after every check and both
// settlement legs succeed, so a failing flow leaves no partial writes.
type Engine struct {
	state     *State
	tokens    TokenService
	whitelist Whitelist
	feed      PriceFeed
	emitter   events.Emitter
	pauses    nativecommon.PauseView
	logger    *slog.Logger
	chainID   [32]byte
	now       func() time.Time
}

// NewEngine constructs an engine over the given record store and ledger.
func NewEngine(state *State, tokens TokenService, chainID [32]byte) *Engine {
	return &Engine{
		state:   state,
		tokens:  tokens,
		emitter: events.NoopEmitter{},
		logger:  slog.Default(),
		chainID: chainID,
		now:     time.Now,
	}
}

// SetWhitelist installs the whitelist gate. A nil value disables it.
func (e *Engine) SetWhitelist(w Whitelist) { e.whitelist = w }

// SetPriceFeed installs the reference price feed used when oracle pricing is
// enabled on the stable leg.
func (e *Engine) SetPriceFeed(f PriceFeed) { e.feed = f }

// SetEmitter installs the event sink. A nil value restores the no-op sink.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses installs the host-level pause view.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetLogger installs the structured logger.
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	e.logger = logger
}

// SetClock overrides the time source for tests.
func (e *Engine) SetClock(clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	e.now = clock
}

// Mint settles an attested purchase: the user pays the cash leg at the
// attested price and receives newly minted GM tokens.
func (e *Engine) Mint(req *TradeRequest) (*TradeReceipt, error) {
	receipt, err := e.trade(req, SideBuy)
	if err != nil {
		metrics.TradeRejected("mint", reasonLabel(err))
		return nil, err
	}
	return receipt, nil
}

// Redeem settles an attested sale: the user burns GM tokens and receives the
// cash leg at the attested price.
func (e *Engine) Redeem(req *TradeRequest) (*TradeReceipt, error) {
	receipt, err := e.trade(req, SideSell)
	if err != nil {
		metrics.TradeRejected("redeem", reasonLabel(err))
		return nil, err
	}
	return receipt, nil
}

func (e *Engine) trade(req *TradeRequest, side byte) (*TradeReceipt, error) {
	if req == nil {
		return nil, ErrInvalidAmount
	}
	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return nil, err
	}
	now := e.now().Unix()

	staged := NewStaged(e.state.Store())
	st := NewState(staged)

	manager, err := st.ManagerState()
	if err != nil {
		return nil, err
	}
	if side == SideBuy && manager.MintingPaused {
		return nil, ErrMintingPaused
	}
	if side == SideSell && manager.RedemptionPaused {
		return nil, ErrRedemptionPaused
	}

	token, exists, err := st.TokenLimit(req.Asset)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRateLimitNotConfigured
	}
	if side == SideBuy && token.MintingPaused {
		return nil, ErrMintingPaused
	}
	if side == SideSell && token.RedemptionPaused {
		return nil, ErrRedemptionPaused
	}

	if e.whitelist != nil {
		ok, err := e.whitelist.IsWhitelisted(req.User)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotWhitelisted
		}
	}

	if req.Amount == 0 {
		return nil, ErrInvalidAmount
	}
	if req.Price == 0 {
		return nil, ErrInvalidPrice
	}
	if err := CheckTradingHours(now, manager.TradingHoursOffset); err != nil {
		return nil, err
	}
	if now < 0 || uint64(now) >= req.Expiration {
		return nil, ErrAttestationExpired
	}
	if req.Expiration-uint64(now) > uint64(MaxAttestationWindow) {
		return nil, ErrAttestationWindowTooLarge
	}

	user, err := ensureUserRecord(st, req.User, token)
	if err != nil {
		return nil, err
	}

	attestations := NewAttestations(st)
	if err := attestations.Consume(req.AttestationID, req.User, now); err != nil {
		return nil, err
	}

	if manager.AttestationSigner == ([20]byte{}) {
		return nil, ErrAttestationSignerUnset
	}
	quote := Quote{
		ChainID:       e.chainID,
		AttestationID: req.AttestationID,
		Side:          side,
		User:          req.User,
		Asset:         req.Asset,
		Price:         req.Price,
		Amount:        req.Amount,
		Expiration:    req.Expiration,
	}
	digest := quote.Hash()
	verification, err := RecoverSignature(digest, req.Signature)
	if err != nil {
		return nil, err
	}
	if err := verification.Matches(digest, manager.AttestationSigner); err != nil {
		return nil, err
	}

	check, exists, err := st.SanityCheck(req.Asset)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrSanityCheckNotConfigured
	}
	if err := check.Check(req.Price, now); err != nil {
		return nil, err
	}

	notional, err := MulDiv(req.Price, req.Amount, PriceScale, true)
	if err != nil {
		return nil, err
	}
	if err := checkRateLimits(st, token, user, notional, now, side == SideBuy); err != nil {
		return nil, err
	}

	var stableAmount uint64
	if side == SideBuy {
		stableAmount, err = e.settlePayment(st, req, notional)
	} else {
		stableAmount, err = e.settlePayout(st, req)
	}
	if err != nil {
		return nil, err
	}

	if side == SideBuy {
		if err := e.tokens.Mint(req.Asset, req.User, req.Amount); err != nil {
			return nil, err
		}
	} else {
		if err := e.tokens.Burn(req.Asset, req.User, req.Amount); err != nil {
			return nil, err
		}
	}

	executionID, err := manager.NextExecutionID()
	if err != nil {
		return nil, err
	}
	if err := st.PutManagerState(manager); err != nil {
		return nil, err
	}
	if err := staged.Commit(); err != nil {
		return nil, err
	}

	sideLabel := "buy"
	if side == SideSell {
		sideLabel = "sell"
	}
	e.emitter.Emit(events.TradeExecuted{
		ExecutionID: new(big.Int).Set(executionID),
		Side:        sideLabel,
		Asset:       req.Asset,
		User:        req.User,
		Amount:      req.Amount,
		Price:       req.Price,
	})
	metrics.TradeExecuted(sideLabel)
	e.logger.Info("gm trade executed",
		"execution_id", executionID.String(),
		"side", sideLabel,
		"asset", req.Asset.String(),
		"user", req.User.String(),
		"amount", req.Amount,
		"price", req.Price,
	)
	return &TradeReceipt{ExecutionID: executionID, StableAmount: stableAmount}, nil
}

// CloseAttestation reclaims a single consumed attestation record.
func (e *Engine) CloseAttestation(id AttestationID, caller Address) error {
	if err := NewAttestations(e.state).Close(id, caller, e.now().Unix()); err != nil {
		return err
	}
	metrics.AttestationClosed()
	return nil
}

// CloseAttestations reclaims a batch of consumed attestation records. The
// batch is staged so either every record is removed or none are.
func (e *Engine) CloseAttestations(ids []AttestationID, caller Address) error {
	staged := NewStaged(e.state.Store())
	if err := NewAttestations(NewState(staged)).CloseBatch(ids, caller, e.now().Unix()); err != nil {
		return err
	}
	if err := staged.Commit(); err != nil {
		return err
	}
	for range ids {
		metrics.AttestationClosed()
	}
	return nil
}

// settlePayment collects the cash leg of a mint. The stable route charges the
// notional directly; the reference route normalizes the notional into the
// reference asset (rounding in the protocol's favour), collects it into the
// reference vault and retires the matching synthetic stable from the stable
// vault.
func (e *Engine) settlePayment(st *State, req *TradeRequest, notional uint64) (uint64, error) {
	if notional == 0 {
		return 0, ErrInvalidAmount
	}
	stable, exists, err := st.StableState()
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrStableNotConfigured
	}
	if !req.SettleInReference {
		if err := e.tokens.Transfer(stable.StableAsset, req.User, stable.StableVault, notional); err != nil {
			return 0, err
		}
		return notional, nil
	}

	refDecimals, err := e.tokens.Decimals(stable.ReferenceAsset)
	if err != nil {
		return 0, err
	}
	normalized, err := NormalizeDecimals(notional, TokenDecimals, refDecimals, true)
	if err != nil {
		return 0, err
	}
	if err := e.guardReferencePrice(stable); err != nil {
		return 0, err
	}
	if err := e.tokens.Transfer(stable.ReferenceAsset, req.User, stable.ReferenceVault, normalized); err != nil {
		return 0, err
	}
	stableDecimals, err := e.tokens.Decimals(stable.StableAsset)
	if err != nil {
		return 0, err
	}
	retired, err := NormalizeDecimals(normalized, refDecimals, stableDecimals, false)
	if err != nil {
		return 0, err
	}
	if err := e.tokens.Burn(stable.StableAsset, stable.StableVault, retired); err != nil {
		return 0, err
	}
	return notional, nil
}

// settlePayout issues the cash leg of a redeem. The payout rounds down so the
// protocol never over-pays; the reference route converts the freshly issued
// stable into the reference asset held by the reference vault.
func (e *Engine) settlePayout(st *State, req *TradeRequest) (uint64, error) {
	payout, err := MulDiv(req.Price, req.Amount, PriceScale, false)
	if err != nil {
		return 0, err
	}
	if payout == 0 {
		return 0, ErrInvalidAmount
	}
	stable, exists, err := st.StableState()
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrStableNotConfigured
	}
	if err := e.tokens.Mint(stable.StableAsset, req.User, payout); err != nil {
		return 0, err
	}
	if !req.SettleInReference {
		return payout, nil
	}

	refDecimals, err := e.tokens.Decimals(stable.ReferenceAsset)
	if err != nil {
		return 0, err
	}
	stableDecimals, err := e.tokens.Decimals(stable.StableAsset)
	if err != nil {
		return 0, err
	}
	out, err := NormalizeDecimals(payout, stableDecimals, refDecimals, false)
	if err != nil {
		return 0, err
	}
	if out == 0 {
		return 0, ErrInvalidAmount
	}
	collected, err := NormalizeDecimals(out, refDecimals, stableDecimals, false)
	if err != nil {
		return 0, err
	}
	if err := e.guardReferencePrice(stable); err != nil {
		return 0, err
	}
	if err := e.tokens.Transfer(stable.StableAsset, req.User, stable.StableVault, collected); err != nil {
		return 0, err
	}
	if err := e.tokens.Transfer(stable.ReferenceAsset, stable.ReferenceVault, req.User, out); err != nil {
		return 0, err
	}
	return payout, nil
}

// guardReferencePrice consults the reference feed when oracle pricing is
// enabled and refuses settlement while the reference asset looks depegged or
// the feed is unreliable.
func (e *Engine) guardReferencePrice(stable *StableManagerState) error {
	if !stable.OraclePriceEnabled {
		return nil
	}
	if e.feed == nil || stable.PriceFeedID == "" {
		return ErrOracleNotConfigured
	}
	data, err := e.feed.Price(stable.PriceFeedID, stable.OraclePriceMaxAge)
	if err != nil {
		return fmt.Errorf("gm: reference feed: %w", err)
	}
	return checkReferencePrice(data)
}

// reasonLabel collapses an error to a stable metrics label. Matching runs
// through errors.Is because feed failures reach here wrapped.
func reasonLabel(err error) string {
	switch {
	case errors.Is(err, ErrMintingPaused), errors.Is(err, ErrRedemptionPaused), errors.Is(err, nativecommon.ErrModulePaused):
		return "paused"
	case errors.Is(err, ErrNotWhitelisted):
		return "whitelist"
	case errors.Is(err, ErrOutsideTradingHours):
		return "trading_hours"
	case errors.Is(err, ErrAttestationExpired), errors.Is(err, ErrAttestationWindowTooLarge), errors.Is(err, ErrAttestationAlreadyUsed):
		return "attestation"
	case errors.Is(err, ErrPriceExceedsMaxDeviation), errors.Is(err, ErrPriceBelowMinDeviation), errors.Is(err, ErrPriceStale):
		return "sanity"
	case errors.Is(err, ErrRateLimitExceeded), errors.Is(err, ErrRateLimitNotConfigured):
		return "rate_limit"
	case errors.Is(err, ErrOracleStale), errors.Is(err, ErrOracleNotConfigured), errors.Is(err, ErrConfidenceTooWide),
		errors.Is(err, ErrInvalidPriceExponent), errors.Is(err, ErrReferenceBelowFloor):
		return "oracle"
	default:
		return "other"
	}
}
