// Package sweth implements the staking accounting engine behind swETH.
//
// Deposits of the base asset mint shares at the current exchange rate
// totalPooledAsset / totalShares, rounding down. Share counts per holder stay
// fixed while the pool grows, so the value of each share rises on reprice.
package sweth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/swell-network/swell-core/internal/events"
	"github.com/swell-network/swell-core/internal/log"
	"github.com/swell-network/swell-core/internal/state"
	"github.com/swell-network/swell-core/internal/storage"
	"github.com/swell-network/swell-core/pkg/revert"
)

// Token metadata.
const (
	Name     = "Liquid staked Swell Ether"
	Symbol   = "swETH"
	Decimals = 18
)

// Unit is 1e18, the fixed-point scale of exchange rates.
var Unit = uint256.NewInt(1_000_000_000_000_000_000)

var (
	keyTotals     = []byte("totals")
	prefixBalance = []byte("b/") // b/<holder(20)> -> uint256 (big-endian, trimmed)
)

// Params are the construction parameters of a new engine.
type Params struct {
	Address    common.Address // contract address the engine emits from
	MinDeposit *uint256.Int   // nil or zero: any non-zero deposit
}

type totals struct {
	Address   common.Address
	Pooled    *uint256.Int
	Shares    *uint256.Int
	Deposited *uint256.Int
}

// totalsRecord is the persisted form of totals, with decimal amounts.
type totalsRecord struct {
	Address           common.Address `json:"address"`
	TotalPooledAsset  string         `json:"totalPooledAsset"`
	TotalShares       string         `json:"totalShares"`
	TotalETHDeposited string         `json:"totalETHDeposited"`
}

func (t totals) record() totalsRecord {
	return totalsRecord{
		Address:           t.Address,
		TotalPooledAsset:  t.Pooled.Dec(),
		TotalShares:       t.Shares.Dec(),
		TotalETHDeposited: t.Deposited.Dec(),
	}
}

func (r totalsRecord) totals() (totals, error) {
	var t totals
	var err error
	t.Address = r.Address
	if t.Pooled, err = uint256.FromDecimal(r.TotalPooledAsset); err != nil {
		return t, fmt.Errorf("totalPooledAsset: %w", err)
	}
	if t.Shares, err = uint256.FromDecimal(r.TotalShares); err != nil {
		return t, fmt.Errorf("totalShares: %w", err)
	}
	if t.Deposited, err = uint256.FromDecimal(r.TotalETHDeposited); err != nil {
		return t, fmt.Errorf("totalETHDeposited: %w", err)
	}
	return t, nil
}

func (t totals) clone() totals {
	return totals{Address: t.Address, Pooled: t.Pooled.Clone(), Shares: t.Shares.Clone(), Deposited: t.Deposited.Clone()}
}

// Engine is the swETH share ledger.
type Engine struct {
	ex         *state.Executor
	db         *storage.PrefixDB
	perms      PermissionSource
	minDeposit *uint256.Int
	logger     zerolog.Logger

	mu       sync.RWMutex
	totals   totals
	balances map[common.Address]*uint256.Int
}

// pendingEngine holds values staged earlier in the current operation.
type pendingEngine struct {
	totals   totals
	balances map[common.Address]*uint256.Int
}

// New loads the engine from the "sweth/" namespace, or starts from the
// bootstrap state (no shares, nothing pooled) when nothing is stored.
func New(ex *state.Executor, perms PermissionSource, p Params) (*Engine, error) {
	e := &Engine{
		ex:         ex,
		db:         ex.Namespace("sweth/"),
		perms:      perms,
		minDeposit: new(uint256.Int),
		logger:     log.SwETH,
		balances:   make(map[common.Address]*uint256.Int),
	}
	if p.MinDeposit != nil {
		e.minDeposit = p.MinDeposit.Clone()
	}

	raw, err := e.db.Get(keyTotals)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		e.totals = totals{Address: p.Address, Pooled: new(uint256.Int), Shares: new(uint256.Int), Deposited: new(uint256.Int)}
		err = ex.Execute(func(tx *state.Tx) error {
			return tx.PutJSON(e.db, keyTotals, e.totals.record())
		})
		if err != nil {
			return nil, fmt.Errorf("initialize swETH: %w", err)
		}
		return e, nil
	case err != nil:
		return nil, fmt.Errorf("read swETH totals: %w", err)
	}

	var rec totalsRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode swETH totals: %w", err)
	}
	if e.totals, err = rec.totals(); err != nil {
		return nil, fmt.Errorf("decode swETH totals: %w", err)
	}
	err = e.db.ForEach(prefixBalance, func(key, value []byte) error {
		e.balances[common.BytesToAddress(key[len(prefixBalance):])] = new(uint256.Int).SetBytes(value)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load swETH balances: %w", err)
	}
	if err := e.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("stored swETH state: %w", err)
	}
	return e, nil
}

func (e *Engine) pending(tx *state.Tx) *pendingEngine {
	return tx.Pending(e, func() interface{} {
		e.mu.RLock()
		p := &pendingEngine{totals: e.totals.clone(), balances: make(map[common.Address]*uint256.Int)}
		e.mu.RUnlock()
		tx.OnCommit(func() { e.apply(p) })
		return p
	}).(*pendingEngine)
}

func (e *Engine) apply(p *pendingEngine) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.totals = p.totals
	for addr, b := range p.balances {
		if b.IsZero() {
			delete(e.balances, addr)
			continue
		}
		e.balances[addr] = b
	}
}

func (e *Engine) balanceIn(p *pendingEngine, addr common.Address) *uint256.Int {
	if b, ok := p.balances[addr]; ok {
		return b
	}
	return e.BalanceOf(addr)
}

// stageBalance records a new balance in p and in the operation's batch.
func (e *Engine) stageBalance(tx *state.Tx, p *pendingEngine, addr common.Address, bal *uint256.Int) error {
	p.balances[addr] = bal
	w := tx.Writer(e.db)
	if bal.IsZero() {
		return w.Delete(balanceKey(addr))
	}
	return w.Put(balanceKey(addr), bal.Bytes())
}

// Deposit accepts value units of the base asset from caller and mints
// shares for it. It returns the number of shares minted.
func (e *Engine) Deposit(caller common.Address, value *uint256.Int) (*uint256.Int, error) {
	if value == nil {
		value = new(uint256.Int)
	}
	var minted *uint256.Int
	err := e.ex.Execute(func(tx *state.Tx) error {
		var err error
		minted, err = e.DepositTx(tx, caller, value)
		return err
	})
	if err != nil {
		e.logger.Debug().Str("caller", caller.Hex()).Str("value", value.Dec()).Err(err).Msg("deposit rejected")
		return nil, err
	}
	e.logger.Info().
		Str("depositor", caller.Hex()).
		Str("amount", value.Dec()).
		Str("minted", minted.Dec()).
		Msg("ETH deposit received")
	return minted, nil
}

// DepositTx runs a deposit as part of an enclosing operation.
func (e *Engine) DepositTx(tx *state.Tx, caller common.Address, value *uint256.Int) (*uint256.Int, error) {
	if e.perms.CoreMethodsPaused() {
		return nil, ErrDepositsPaused
	}
	if !e.perms.IsWhitelisted(caller) {
		return nil, revert.Wrap(ErrNotInWhitelist, "%s", caller.Hex())
	}
	if value == nil || value.IsZero() {
		return nil, revert.Wrap(ErrInvalidDeposit, "zero value")
	}
	if value.Lt(e.minDeposit) {
		return nil, revert.Wrap(ErrInvalidDeposit, "%s below minimum %s", value.Dec(), e.minDeposit.Dec())
	}

	p := e.pending(tx)
	t := p.totals
	minted, err := sharesFor(value, t.Shares, t.Pooled)
	if err != nil {
		return nil, err
	}
	if minted.IsZero() {
		return nil, revert.Wrap(ErrInvalidDeposit, "%s mints no shares", value.Dec())
	}

	pooled, o1 := new(uint256.Int).AddOverflow(t.Pooled, value)
	shares, o2 := new(uint256.Int).AddOverflow(t.Shares, minted)
	deposited, o3 := new(uint256.Int).AddOverflow(t.Deposited, value)
	if o1 || o2 || o3 {
		return nil, revert.Wrap(ErrArithmeticOverflow, "deposit of %s", value.Dec())
	}
	// Bounded by shares, which did not overflow.
	bal := new(uint256.Int).Add(e.balanceIn(p, caller), minted)

	if err := e.stageBalance(tx, p, caller, bal); err != nil {
		return nil, err
	}
	p.totals = totals{Address: t.Address, Pooled: pooled, Shares: shares, Deposited: deposited}
	if err := tx.PutJSON(e.db, keyTotals, p.totals.record()); err != nil {
		return nil, err
	}
	err = tx.Emit(t.Address, events.ETHDepositReceived{
		From:                 caller,
		Amount:               value.Clone(),
		SwETHMinted:          minted.Clone(),
		NewTotalETHDeposited: deposited.Clone(),
	})
	if err != nil {
		return nil, err
	}
	return minted, nil
}

// sharesFor returns floor(value * shares / pooled), or value itself in the
// bootstrap state.
func sharesFor(value, shares, pooled *uint256.Int) (*uint256.Int, error) {
	if shares.IsZero() {
		return value.Clone(), nil
	}
	minted, overflow := new(uint256.Int).MulDivOverflow(value, shares, pooled)
	if overflow {
		return nil, revert.Wrap(ErrArithmeticOverflow, "share conversion of %s", value.Dec())
	}
	return minted, nil
}

// Transfer moves amount shares from caller to to.
func (e *Engine) Transfer(caller, to common.Address, amount *uint256.Int) error {
	if amount == nil {
		amount = new(uint256.Int)
	}
	err := e.ex.Execute(func(tx *state.Tx) error {
		if to == (common.Address{}) {
			return revert.Wrap(ErrZeroAddress, "transfer recipient")
		}
		p := e.pending(tx)
		from := e.balanceIn(p, caller)
		if from.Lt(amount) {
			return revert.Wrap(ErrInsufficientBalance, "%s has %s, need %s", caller.Hex(), from.Dec(), amount.Dec())
		}
		if err := e.stageBalance(tx, p, caller, new(uint256.Int).Sub(from, amount)); err != nil {
			return err
		}
		// Sum of balances equals total shares, so this cannot overflow.
		if err := e.stageBalance(tx, p, to, new(uint256.Int).Add(e.balanceIn(p, to), amount)); err != nil {
			return err
		}
		return tx.Emit(p.totals.Address, events.Transfer{From: caller, To: to, Value: amount.Clone()})
	})
	if err != nil {
		e.logger.Debug().Str("caller", caller.Hex()).Err(err).Msg("transfer rejected")
	}
	return err
}

// Reprice sets the pooled-asset total, changing the value of every share.
// Shares are unchanged.
func (e *Engine) Reprice(caller common.Address, newTotalPooledAsset *uint256.Int) error {
	err := e.ex.Execute(func(tx *state.Tx) error {
		if !e.perms.IsAdmin(caller) {
			return revert.Wrap(ErrUnauthorized, "%s is not an admin", caller.Hex())
		}
		if e.perms.BotMethodsPaused() {
			return ErrBotMethodsPaused
		}
		p := e.pending(tx)
		t := p.totals
		if t.Shares.IsZero() {
			return ErrNothingToReprice
		}
		if newTotalPooledAsset == nil || newTotalPooledAsset.IsZero() {
			return revert.Wrap(ErrInvalidReprice, "zero pooled asset")
		}
		rate, overflow := new(uint256.Int).MulDivOverflow(newTotalPooledAsset, Unit, t.Shares)
		if overflow {
			return revert.Wrap(ErrArithmeticOverflow, "rate for %s", newTotalPooledAsset.Dec())
		}

		prev := t.Pooled
		p.totals = totals{Address: t.Address, Pooled: newTotalPooledAsset.Clone(), Shares: t.Shares, Deposited: t.Deposited}
		if err := tx.PutJSON(e.db, keyTotals, p.totals.record()); err != nil {
			return err
		}
		return tx.Emit(t.Address, events.Reprice{
			NewTotalPooledAsset:      newTotalPooledAsset.Clone(),
			PreviousTotalPooledAsset: prev.Clone(),
			NewSwETHToETHRate:        rate,
		})
	})
	if err != nil {
		e.logger.Debug().Str("caller", caller.Hex()).Err(err).Msg("reprice rejected")
		return err
	}
	e.logger.Info().Str("totalPooledAsset", newTotalPooledAsset.Dec()).Msg("Repriced")
	return nil
}

// Address returns the engine's contract address.
func (e *Engine) Address() common.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totals.Address
}

// BalanceOf returns addr's share balance.
func (e *Engine) BalanceOf(addr common.Address) *uint256.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if b, ok := e.balances[addr]; ok {
		return b.Clone()
	}
	return new(uint256.Int)
}

// TotalSupply returns the total number of shares.
func (e *Engine) TotalSupply() *uint256.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totals.Shares.Clone()
}

// TotalPooledAsset returns the base asset backing all shares.
func (e *Engine) TotalPooledAsset() *uint256.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totals.Pooled.Clone()
}

// TotalETHDeposited returns the cumulative amount ever deposited.
func (e *Engine) TotalETHDeposited() *uint256.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totals.Deposited.Clone()
}

// SwETHToETHRate returns the base asset per share, scaled by 1e18.
func (e *Engine) SwETHToETHRate() *uint256.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return rate(e.totals.Pooled, e.totals.Shares)
}

// ETHToSwETHRate returns shares per unit of base asset, scaled by 1e18.
func (e *Engine) ETHToSwETHRate() *uint256.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return rate(e.totals.Shares, e.totals.Pooled)
}

func rate(num, den *uint256.Int) *uint256.Int {
	if den.IsZero() {
		return Unit.Clone()
	}
	r, overflow := new(uint256.Int).MulDivOverflow(num, Unit, den)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return r
}

func (e *Engine) Name() string    { return Name }
func (e *Engine) Symbol() string  { return Symbol }
func (e *Engine) Decimals() uint8 { return Decimals }

// Holders returns the number of addresses with a non-zero balance.
func (e *Engine) Holders() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.balances)
}

// CheckInvariants verifies that balances sum to the total supply and that
// shares and pooled asset are zero together.
func (e *Engine) CheckInvariants() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sum := new(uint256.Int)
	for addr, b := range e.balances {
		if _, overflow := sum.AddOverflow(sum, b); overflow {
			return fmt.Errorf("balance sum overflows at %s", addr.Hex())
		}
	}
	if !sum.Eq(e.totals.Shares) {
		return fmt.Errorf("balances sum to %s, total shares %s", sum.Dec(), e.totals.Shares.Dec())
	}
	if e.totals.Shares.IsZero() != e.totals.Pooled.IsZero() {
		return fmt.Errorf("total shares %s with pooled asset %s", e.totals.Shares.Dec(), e.totals.Pooled.Dec())
	}
	return nil
}

func balanceKey(addr common.Address) []byte {
	return append(append([]byte{}, prefixBalance...), addr[:]...)
}
