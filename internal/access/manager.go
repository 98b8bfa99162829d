// Package access implements the protocol's access control manager: the
// pause gate, the registry of collaborator addresses, admin roles and the
// rescue of tokens sent to the manager by mistake.
//
// Every mutation is admin-gated and emits an event. Reads are unrestricted
// and always reflect the last committed operation.
package access

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/swell-network/swell-core/internal/events"
	"github.com/swell-network/swell-core/internal/log"
	"github.com/swell-network/swell-core/internal/state"
	"github.com/swell-network/swell-core/internal/storage"
	"github.com/swell-network/swell-core/pkg/revert"
)

// AdminRole is the role identifier carried by RoleGranted/RoleRevoked.
var AdminRole = crypto.Keccak256Hash([]byte("PLATFORM_ADMIN"))

var keyState = []byte("state")

// TokenLedger moves foreign tokens on behalf of the manager.
type TokenLedger interface {
	BalanceOfTx(tx *state.Tx, token, holder common.Address) *uint256.Int
	TransferTx(tx *state.Tx, token, from, to common.Address, amount *uint256.Int) error
}

// Params are the construction parameters of a new manager.
type Params struct {
	Address  common.Address // contract address the manager emits from
	Admin    common.Address
	Treasury common.Address
}

// snapshot is the persisted manager state.
type snapshot struct {
	Address              common.Address   `json:"address"`
	Paused               PauseState       `json:"paused"`
	Treasury             common.Address   `json:"treasury"`
	SwETH                common.Address   `json:"swETH"`
	DepositManager       common.Address   `json:"depositManager"`
	NodeOperatorRegistry common.Address   `json:"nodeOperatorRegistry"`
	Admins               []common.Address `json:"admins"`
}

func (s *snapshot) clone() *snapshot {
	c := *s
	c.Admins = append([]common.Address(nil), s.Admins...)
	return &c
}

func (s *snapshot) isAdmin(addr common.Address) bool {
	for _, a := range s.Admins {
		if a == addr {
			return true
		}
	}
	return false
}

// Manager is the access control manager.
type Manager struct {
	ex     *state.Executor
	db     *storage.PrefixDB
	tokens TokenLedger
	logger zerolog.Logger

	mu  sync.RWMutex
	cur *snapshot
}

// New loads the manager from the "acm/" namespace, or initializes it from p
// when nothing is stored yet. A fresh manager starts with every category
// paused and every collaborator address zero.
func New(ex *state.Executor, tokens TokenLedger, p Params) (*Manager, error) {
	m := &Manager{
		ex:     ex,
		db:     ex.Namespace("acm/"),
		tokens: tokens,
		logger: log.Access,
	}

	raw, err := m.db.Get(keyState)
	switch {
	case err == nil:
		var s snapshot
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode manager state: %w", err)
		}
		if p.Address != (common.Address{}) && p.Address != s.Address {
			m.logger.Warn().
				Str("configured", p.Address.Hex()).
				Str("stored", s.Address.Hex()).
				Msg("Configured manager address differs from stored state, using stored")
		}
		m.cur = &s
		return m, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("read manager state: %w", err)
	}

	if p.Admin == (common.Address{}) {
		return nil, ErrNoAdmin
	}
	fresh := &snapshot{
		Address:  p.Address,
		Paused:   AllPaused(),
		Treasury: p.Treasury,
		Admins:   []common.Address{p.Admin},
	}
	err = ex.Execute(func(tx *state.Tx) error {
		if err := tx.PutJSON(m.db, keyState, fresh); err != nil {
			return err
		}
		tx.OnCommit(func() { m.cur = fresh })
		return tx.Emit(p.Address, events.RoleGranted{RoleChange: events.RoleChange{
			Role: AdminRole, Account: p.Admin, Sender: p.Admin,
		}})
	})
	if err != nil {
		return nil, fmt.Errorf("initialize manager: %w", err)
	}
	m.logger.Info().
		Str("address", p.Address.Hex()).
		Str("admin", p.Admin.Hex()).
		Str("treasury", p.Treasury.Hex()).
		Msg("Access control manager initialized")
	return m, nil
}

// exec runs an admin-gated mutation. fn edits the working copy of the state;
// the copy is persisted and published only if the whole operation commits.
func (m *Manager) exec(op string, caller common.Address, fn func(tx *state.Tx, s *snapshot) error) error {
	err := m.ex.Execute(func(tx *state.Tx) error {
		s := m.working(tx)
		if !s.isAdmin(caller) {
			return revert.Wrap(ErrUnauthorized, "%s is not an admin", caller.Hex())
		}
		if err := fn(tx, s); err != nil {
			return err
		}
		return tx.PutJSON(m.db, keyState, s)
	})
	if err != nil {
		m.logger.Debug().Str("op", op).Str("caller", caller.Hex()).Err(err).Msg("rejected")
		return err
	}
	m.logger.Info().Str("op", op).Str("caller", caller.Hex()).Msg("applied")
	return nil
}

// working returns the state as modified so far by the current operation.
func (m *Manager) working(tx *state.Tx) *snapshot {
	return tx.Pending(m, func() interface{} {
		s := m.snapshot().clone()
		tx.OnCommit(func() {
			m.mu.Lock()
			m.cur = s
			m.mu.Unlock()
		})
		return s
	}).(*snapshot)
}

func (m *Manager) snapshot() *snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// Pause sets category c to paused.
func (m *Manager) Pause(caller common.Address, c Category) error {
	return m.setPaused(caller, c, true)
}

// Unpause sets category c to unpaused.
func (m *Manager) Unpause(caller common.Address, c Category) error {
	return m.setPaused(caller, c, false)
}

func (m *Manager) setPaused(caller common.Address, c Category, paused bool) error {
	if !c.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	op := "unpause " + c.String()
	if paused {
		op = "pause " + c.String()
	}
	return m.exec(op, caller, func(tx *state.Tx, s *snapshot) error {
		if s.Paused.Get(c) == paused {
			if paused {
				return revert.Wrap(ErrAlreadyPaused, "%s", c)
			}
			return revert.Wrap(ErrAlreadyUnpaused, "%s", c)
		}
		s.Paused.set(c, paused)
		return tx.Emit(s.Address, c.event(paused))
	})
}

// Named wrappers, one pair per category.

func (m *Manager) PauseCoreMethods(caller common.Address) error {
	return m.Pause(caller, Core)
}

func (m *Manager) UnpauseCoreMethods(caller common.Address) error {
	return m.Unpause(caller, Core)
}

func (m *Manager) PauseBotMethods(caller common.Address) error {
	return m.Pause(caller, Bot)
}

func (m *Manager) UnpauseBotMethods(caller common.Address) error {
	return m.Unpause(caller, Bot)
}

func (m *Manager) PauseOperatorMethods(caller common.Address) error {
	return m.Pause(caller, Operator)
}

func (m *Manager) UnpauseOperatorMethods(caller common.Address) error {
	return m.Unpause(caller, Operator)
}

func (m *Manager) PauseWithdrawals(caller common.Address) error {
	return m.Pause(caller, Withdrawals)
}

func (m *Manager) UnpauseWithdrawals(caller common.Address) error {
	return m.Unpause(caller, Withdrawals)
}

// SetSwellTreasury replaces the treasury address.
func (m *Manager) SetSwellTreasury(caller, addr common.Address) error {
	return m.exec("setSwellTreasury", caller, func(tx *state.Tx, s *snapshot) error {
		prev := s.Treasury
		s.Treasury = addr
		return tx.Emit(s.Address, events.UpdatedSwellTreasury{AddressChange: events.AddressChange{NewAddress: addr, OldAddress: prev}})
	})
}

// SetSwETH replaces the swETH contract address.
func (m *Manager) SetSwETH(caller, addr common.Address) error {
	return m.exec("setSwETH", caller, func(tx *state.Tx, s *snapshot) error {
		prev := s.SwETH
		s.SwETH = addr
		return tx.Emit(s.Address, events.UpdatedSwETH{AddressChange: events.AddressChange{NewAddress: addr, OldAddress: prev}})
	})
}

// SetDepositManager replaces the deposit manager address.
func (m *Manager) SetDepositManager(caller, addr common.Address) error {
	return m.exec("setDepositManager", caller, func(tx *state.Tx, s *snapshot) error {
		prev := s.DepositManager
		s.DepositManager = addr
		return tx.Emit(s.Address, events.UpdatedDepositManager{AddressChange: events.AddressChange{NewAddress: addr, OldAddress: prev}})
	})
}

// SetNodeOperatorRegistry replaces the node operator registry address.
func (m *Manager) SetNodeOperatorRegistry(caller, addr common.Address) error {
	return m.exec("setNodeOperatorRegistry", caller, func(tx *state.Tx, s *snapshot) error {
		prev := s.NodeOperatorRegistry
		s.NodeOperatorRegistry = addr
		return tx.Emit(s.Address, events.UpdatedNodeOperatorRegistry{AddressChange: events.AddressChange{NewAddress: addr, OldAddress: prev}})
	})
}

// RescueERC20 sends the manager's whole balance of token to the treasury
// and returns the amount moved.
func (m *Manager) RescueERC20(caller, token common.Address) (*uint256.Int, error) {
	var amount *uint256.Int
	err := m.exec("rescueERC20", caller, func(tx *state.Tx, s *snapshot) error {
		amount = m.tokens.BalanceOfTx(tx, token, s.Address)
		if amount.IsZero() {
			return revert.Wrap(ErrNoTokensToWithdraw, "%s", token.Hex())
		}
		return m.tokens.TransferTx(tx, token, s.Address, s.Treasury, amount)
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// GrantAdmin gives account the admin role. Granting an existing admin is a
// no-op without an event.
func (m *Manager) GrantAdmin(caller, account common.Address) error {
	return m.exec("grantAdmin", caller, func(tx *state.Tx, s *snapshot) error {
		if account == (common.Address{}) {
			return revert.Wrap(revert.ErrZeroAddress, "admin")
		}
		if s.isAdmin(account) {
			return nil
		}
		s.Admins = append(s.Admins, account)
		return tx.Emit(s.Address, events.RoleGranted{RoleChange: events.RoleChange{
			Role: AdminRole, Account: account, Sender: caller,
		}})
	})
}

// RevokeAdmin removes account's admin role. Revoking a non-admin is a no-op;
// the last admin cannot be revoked.
func (m *Manager) RevokeAdmin(caller, account common.Address) error {
	return m.exec("revokeAdmin", caller, func(tx *state.Tx, s *snapshot) error {
		idx := -1
		for i, a := range s.Admins {
			if a == account {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil
		}
		if len(s.Admins) == 1 {
			return revert.Wrap(ErrLastAdmin, "%s", account.Hex())
		}
		s.Admins = append(s.Admins[:idx], s.Admins[idx+1:]...)
		return tx.Emit(s.Address, events.RoleRevoked{RoleChange: events.RoleChange{
			Role: AdminRole, Account: account, Sender: caller,
		}})
	})
}

// Address returns the manager's contract address.
func (m *Manager) Address() common.Address { return m.snapshot().Address }

// Paused reports whether category c is paused.
func (m *Manager) Paused(c Category) bool { return m.snapshot().Paused.Get(c) }

// PauseState returns all four flags.
func (m *Manager) PauseState() PauseState { return m.snapshot().Paused }

func (m *Manager) CoreMethodsPaused() bool     { return m.Paused(Core) }
func (m *Manager) BotMethodsPaused() bool      { return m.Paused(Bot) }
func (m *Manager) OperatorMethodsPaused() bool { return m.Paused(Operator) }
func (m *Manager) WithdrawalsPaused() bool     { return m.Paused(Withdrawals) }

func (m *Manager) SwellTreasury() common.Address        { return m.snapshot().Treasury }
func (m *Manager) SwETH() common.Address                { return m.snapshot().SwETH }
func (m *Manager) DepositManager() common.Address       { return m.snapshot().DepositManager }
func (m *Manager) NodeOperatorRegistry() common.Address { return m.snapshot().NodeOperatorRegistry }

// IsAdmin reports whether addr holds the admin role.
func (m *Manager) IsAdmin(addr common.Address) bool { return m.snapshot().isAdmin(addr) }

// Admins returns the admin set in grant order.
func (m *Manager) Admins() []common.Address {
	return append([]common.Address(nil), m.snapshot().Admins...)
}
