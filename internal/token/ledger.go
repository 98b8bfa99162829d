package token

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/swell-network/swell-core/internal/events"
	"github.com/swell-network/swell-core/internal/log"
	"github.com/swell-network/swell-core/internal/state"
	"github.com/swell-network/swell-core/internal/storage"
	"github.com/swell-network/swell-core/pkg/revert"
)

var (
	prefixBalance = []byte("b/") // b/<token(20)><holder(20)> -> uint256 (32 bytes)
	prefixSupply  = []byte("s/") // s/<token(20)> -> uint256 (32 bytes)
)

type holding struct {
	token  common.Address
	holder common.Address
}

// Ledger tracks ERC20 balances for registered tokens.
type Ledger struct {
	ex    *state.Executor
	db    *storage.PrefixDB
	store *Store

	mu       sync.RWMutex
	meta     map[common.Address]Metadata
	balances map[holding]*uint256.Int
	supply   map[common.Address]*uint256.Int
}

// pendingLedger holds values staged earlier in the current operation.
type pendingLedger struct {
	meta     map[common.Address]Metadata
	balances map[holding]*uint256.Int
	supply   map[common.Address]*uint256.Int
}

// NewLedger loads the ledger stored under the "tok/" namespace.
func NewLedger(ex *state.Executor) (*Ledger, error) {
	db := ex.Namespace("tok/")
	l := &Ledger{
		ex:       ex,
		db:       db,
		store:    NewStore(db),
		meta:     make(map[common.Address]Metadata),
		balances: make(map[holding]*uint256.Int),
		supply:   make(map[common.Address]*uint256.Int),
	}

	err := l.store.ForEach(func(addr common.Address, m *Metadata) error {
		l.meta[addr] = *m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load token metadata: %w", err)
	}
	err = db.ForEach(prefixBalance, func(key, value []byte) error {
		if len(key) != len(prefixBalance)+2*common.AddressLength {
			return fmt.Errorf("malformed balance key %x", key)
		}
		k := key[len(prefixBalance):]
		h := holding{token: common.BytesToAddress(k[:20]), holder: common.BytesToAddress(k[20:])}
		l.balances[h] = new(uint256.Int).SetBytes(value)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load token balances: %w", err)
	}
	err = db.ForEach(prefixSupply, func(key, value []byte) error {
		l.supply[common.BytesToAddress(key[len(prefixSupply):])] = new(uint256.Int).SetBytes(value)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load token supply: %w", err)
	}
	return l, nil
}

// Register records a new token at addr.
func (l *Ledger) Register(addr common.Address, meta Metadata) error {
	return l.ex.Execute(func(tx *state.Tx) error {
		return l.RegisterTx(tx, addr, meta)
	})
}

// RegisterTx registers a token as part of an enclosing operation.
func (l *Ledger) RegisterTx(tx *state.Tx, addr common.Address, meta Metadata) error {
	if addr == (common.Address{}) {
		return revert.Wrap(revert.ErrZeroAddress, "token address")
	}
	p := l.pending(tx)
	if _, ok := l.metadata(p, addr); ok {
		return revert.Wrap(ErrTokenExists, "%s", addr.Hex())
	}
	if err := l.store.Stage(tx.Writer(l.db), addr, &meta); err != nil {
		return err
	}
	p.meta[addr] = meta
	tx.OnCommit(func() {
		log.Token.Info().Str("token", addr.Hex()).Str("symbol", meta.Symbol).Msg("token registered")
	})
	return nil
}

// Mint creates amount new tokens for to.
func (l *Ledger) Mint(token, to common.Address, amount *uint256.Int) error {
	return l.ex.Execute(func(tx *state.Tx) error {
		return l.MintTx(tx, token, to, amount)
	})
}

// MintTx mints as part of an enclosing operation.
func (l *Ledger) MintTx(tx *state.Tx, token, to common.Address, amount *uint256.Int) error {
	p := l.pending(tx)
	if _, ok := l.metadata(p, token); !ok {
		return revert.Wrap(ErrUnknownToken, "%s", token.Hex())
	}
	if to == (common.Address{}) {
		return revert.Wrap(revert.ErrZeroAddress, "mint recipient")
	}

	supply, overflow := new(uint256.Int).AddOverflow(l.supplyOf(p, token), amount)
	if overflow {
		return revert.Wrap(revert.ErrArithmeticOverflow, "token supply")
	}
	// supply bounds every balance, so this cannot overflow.
	balance := new(uint256.Int).Add(l.balanceOf(p, token, to), amount)

	w := tx.Writer(l.db)
	if err := w.Put(supplyKey(token), supply.Bytes()); err != nil {
		return err
	}
	if err := w.Put(balanceKey(token, to), balance.Bytes()); err != nil {
		return err
	}
	if err := tx.Emit(token, events.Transfer{From: common.Address{}, To: to, Value: amount.Clone()}); err != nil {
		return err
	}
	p.supply[token] = supply
	p.balances[holding{token, to}] = balance
	return nil
}

// Transfer moves amount of token from one holder to another.
func (l *Ledger) Transfer(token, from, to common.Address, amount *uint256.Int) error {
	return l.ex.Execute(func(tx *state.Tx) error {
		return l.TransferTx(tx, token, from, to, amount)
	})
}

// TransferTx transfers as part of an enclosing operation.
func (l *Ledger) TransferTx(tx *state.Tx, token, from, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return revert.Wrap(revert.ErrZeroAddress, "transfer recipient")
	}
	p := l.pending(tx)
	fromBal := l.balanceOf(p, token, from)
	if fromBal.Lt(amount) {
		return revert.Wrap(ErrInsufficientBalance, "%s has %s, need %s", from.Hex(), fromBal.Dec(), amount.Dec())
	}

	fromBal = new(uint256.Int).Sub(fromBal, amount)
	p.balances[holding{token, from}] = fromBal
	toBal := new(uint256.Int).Add(l.balanceOf(p, token, to), amount)
	p.balances[holding{token, to}] = toBal

	w := tx.Writer(l.db)
	if err := w.Put(balanceKey(token, from), fromBal.Bytes()); err != nil {
		return err
	}
	if err := w.Put(balanceKey(token, to), toBal.Bytes()); err != nil {
		return err
	}
	return tx.Emit(token, events.Transfer{From: from, To: to, Value: amount.Clone()})
}

// BalanceOf returns holder's committed balance of token. Unknown tokens
// and holders have a zero balance.
func (l *Ledger) BalanceOf(token, holder common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if b, ok := l.balances[holding{token, holder}]; ok {
		return b.Clone()
	}
	return new(uint256.Int)
}

// BalanceOfTx returns holder's balance including changes staged in tx.
func (l *Ledger) BalanceOfTx(tx *state.Tx, token, holder common.Address) *uint256.Int {
	return l.balanceOf(l.pending(tx), token, holder).Clone()
}

// TotalSupply returns the committed supply of token.
func (l *Ledger) TotalSupply(token common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if s, ok := l.supply[token]; ok {
		return s.Clone()
	}
	return new(uint256.Int)
}

// Metadata returns the metadata of a registered token.
func (l *Ledger) Metadata(token common.Address) (Metadata, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.meta[token]
	return m, ok
}

// List returns all registered tokens in address order.
func (l *Ledger) List() ([]MetadataEntry, error) {
	return l.store.List()
}

func (l *Ledger) pending(tx *state.Tx) *pendingLedger {
	return tx.Pending(l, func() interface{} {
		p := &pendingLedger{
			meta:     make(map[common.Address]Metadata),
			balances: make(map[holding]*uint256.Int),
			supply:   make(map[common.Address]*uint256.Int),
		}
		tx.OnCommit(func() { l.apply(p) })
		return p
	}).(*pendingLedger)
}

func (l *Ledger) apply(p *pendingLedger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for addr, m := range p.meta {
		l.meta[addr] = m
	}
	for h, b := range p.balances {
		l.balances[h] = b
	}
	for addr, s := range p.supply {
		l.supply[addr] = s
	}
}

func (l *Ledger) metadata(p *pendingLedger, token common.Address) (Metadata, bool) {
	if m, ok := p.meta[token]; ok {
		return m, true
	}
	return l.Metadata(token)
}

func (l *Ledger) balanceOf(p *pendingLedger, token, holder common.Address) *uint256.Int {
	if b, ok := p.balances[holding{token, holder}]; ok {
		return b
	}
	return l.BalanceOf(token, holder)
}

func (l *Ledger) supplyOf(p *pendingLedger, token common.Address) *uint256.Int {
	if s, ok := p.supply[token]; ok {
		return s
	}
	return l.TotalSupply(token)
}

func balanceKey(token, holder common.Address) []byte {
	key := make([]byte, 0, len(prefixBalance)+2*common.AddressLength)
	key = append(key, prefixBalance...)
	key = append(key, token[:]...)
	return append(key, holder[:]...)
}

func supplyKey(token common.Address) []byte {
	return append(append([]byte{}, prefixSupply...), token[:]...)
}
