// Package whitelist implements the registry of addresses allowed to deposit.
// Membership is insertion-only and managed by a single owner.
package whitelist

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swell-network/swell-core/internal/events"
	"github.com/swell-network/swell-core/internal/log"
	"github.com/swell-network/swell-core/internal/state"
	"github.com/swell-network/swell-core/internal/storage"
	"github.com/swell-network/swell-core/pkg/revert"
)

var (
	ErrUnauthorized = revert.ErrUnauthorized
	ErrNoOwner      = errors.New("whitelist requires an owner")
)

var (
	keyOwner     = []byte("owner")
	keyContract  = []byte("contract")
	prefixMember = []byte("m/") // m/<address(20)> -> empty
)

// Registry is the deposit whitelist.
type Registry struct {
	ex *state.Executor
	db *storage.PrefixDB

	mu       sync.RWMutex
	contract common.Address
	owner    common.Address
	members  map[common.Address]struct{}
}

type pendingRegistry struct {
	owner common.Address
	added map[common.Address]struct{}
}

// New loads the registry from the "wl/" namespace. On an empty database
// owner becomes the initial owner and contract the emitting address.
func New(ex *state.Executor, contract, owner common.Address) (*Registry, error) {
	r := &Registry{
		ex:      ex,
		db:      ex.Namespace("wl/"),
		members: make(map[common.Address]struct{}),
	}

	raw, err := r.db.Get(keyOwner)
	if errors.Is(err, storage.ErrNotFound) {
		if err := r.initialize(contract, owner); err != nil {
			return nil, err
		}
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read whitelist owner: %w", err)
	}
	if err := json.Unmarshal(raw, &r.owner); err != nil {
		return nil, fmt.Errorf("decode whitelist owner: %w", err)
	}
	if raw, err = r.db.Get(keyContract); err != nil {
		return nil, fmt.Errorf("read whitelist contract: %w", err)
	}
	if err := json.Unmarshal(raw, &r.contract); err != nil {
		return nil, fmt.Errorf("decode whitelist contract: %w", err)
	}
	err = r.db.ForEach(prefixMember, func(key, _ []byte) error {
		r.members[common.BytesToAddress(key[len(prefixMember):])] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load whitelist: %w", err)
	}
	return r, nil
}

func (r *Registry) initialize(contract, owner common.Address) error {
	if owner == (common.Address{}) {
		return ErrNoOwner
	}
	return r.ex.Execute(func(tx *state.Tx) error {
		if err := tx.PutJSON(r.db, keyOwner, owner); err != nil {
			return err
		}
		if err := tx.PutJSON(r.db, keyContract, contract); err != nil {
			return err
		}
		tx.OnCommit(func() {
			r.owner = owner
			r.contract = contract
		})
		return tx.Emit(contract, events.OwnershipTransferred{NewOwner: owner})
	})
}

func (r *Registry) pending(tx *state.Tx) *pendingRegistry {
	return tx.Pending(r, func() interface{} {
		p := &pendingRegistry{owner: r.Owner(), added: make(map[common.Address]struct{})}
		tx.OnCommit(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.owner = p.owner
			for addr := range p.added {
				r.members[addr] = struct{}{}
			}
		})
		return p
	}).(*pendingRegistry)
}

// AddToWhitelist makes addr eligible to deposit. Adding a member again is a
// successful no-op without an event.
func (r *Registry) AddToWhitelist(caller, addr common.Address) error {
	return r.BatchAddToWhitelist(caller, []common.Address{addr})
}

// BatchAddToWhitelist adds every address in one operation.
func (r *Registry) BatchAddToWhitelist(caller common.Address, addrs []common.Address) error {
	var added int
	err := r.ex.Execute(func(tx *state.Tx) error {
		var err error
		added, err = r.AddTx(tx, caller, addrs)
		return err
	})
	if err != nil {
		log.Whitelist.Debug().Str("caller", caller.Hex()).Err(err).Msg("add rejected")
		return err
	}
	if added > 0 {
		log.Whitelist.Info().Int("added", added).Int("requested", len(addrs)).Msg("Whitelist updated")
	}
	return nil
}

// AddTx adds addrs as part of an enclosing operation and returns how many
// were new.
func (r *Registry) AddTx(tx *state.Tx, caller common.Address, addrs []common.Address) (int, error) {
	p := r.pending(tx)
	if caller != p.owner {
		return 0, revert.Wrap(ErrUnauthorized, "%s is not the whitelist owner", caller.Hex())
	}
	w := tx.Writer(r.db)
	added := 0
	for _, addr := range addrs {
		if _, ok := p.added[addr]; ok || r.IsWhitelisted(addr) {
			continue
		}
		if err := w.Put(memberKey(addr), []byte{}); err != nil {
			return 0, err
		}
		if err := tx.Emit(r.Contract(), events.AddedToWhitelist{Address: addr}); err != nil {
			return 0, err
		}
		p.added[addr] = struct{}{}
		added++
	}
	return added, nil
}

// TransferOwnership hands the registry to newOwner.
func (r *Registry) TransferOwnership(caller, newOwner common.Address) error {
	err := r.ex.Execute(func(tx *state.Tx) error {
		p := r.pending(tx)
		if caller != p.owner {
			return revert.Wrap(ErrUnauthorized, "%s is not the whitelist owner", caller.Hex())
		}
		if newOwner == (common.Address{}) {
			return revert.Wrap(revert.ErrZeroAddress, "new owner")
		}
		prev := p.owner
		p.owner = newOwner
		if err := tx.PutJSON(r.db, keyOwner, newOwner); err != nil {
			return err
		}
		return tx.Emit(r.Contract(), events.OwnershipTransferred{PreviousOwner: prev, NewOwner: newOwner})
	})
	if err != nil {
		log.Whitelist.Debug().Str("caller", caller.Hex()).Err(err).Msg("ownership transfer rejected")
		return err
	}
	log.Whitelist.Info().Str("owner", newOwner.Hex()).Msg("Whitelist ownership transferred")
	return nil
}

// IsWhitelisted reports whether addr may deposit.
func (r *Registry) IsWhitelisted(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[addr]
	return ok
}

// Owner returns the current owner.
func (r *Registry) Owner() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner
}

// Contract returns the address the registry emits events from.
func (r *Registry) Contract() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contract
}

// Len returns the number of members.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// List returns all members in address order.
func (r *Registry) List() ([]common.Address, error) {
	out := []common.Address{}
	err := r.db.ForEach(prefixMember, func(key, _ []byte) error {
		out = append(out, common.BytesToAddress(key[len(prefixMember):]))
		return nil
	})
	return out, err
}

func memberKey(addr common.Address) []byte {
	return append(append([]byte{}, prefixMember...), addr[:]...)
}
