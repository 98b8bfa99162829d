package node

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/swell-network/swell-core/config"
	"github.com/swell-network/swell-core/internal/state"
	"github.com/swell-network/swell-core/internal/storage"
	"github.com/swell-network/swell-core/internal/token"
)

var keyDeployed = []byte("deployed")

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// openDB opens the configured storage backend.
func openDB(cfg *config.Config) (storage.BatchDB, error) {
	switch cfg.DB.Backend {
	case config.BackendMemory:
		return storage.NewMemory(), nil
	case config.BackendBadger, "":
		db, err := storage.NewBadger(cfg.DBDir())
		if err != nil {
			return nil, fmt.Errorf("open database at %s: %w", cfg.DBDir(), err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported db backend: %s", cfg.DB.Backend)
	}
}

// applyDeployment admits the deployment's whitelist and registers its mock
// tokens in a single operation. A marker key makes it run once per database.
func (n *Node) applyDeployment(d *config.Deployment) error {
	ns := n.ex.Namespace("node/")
	done, err := ns.Has(keyDeployed)
	if err != nil {
		return err
	}
	if done {
		n.logger.Debug().Msg("Deployment already applied")
		return nil
	}

	members := make([]common.Address, len(d.Whitelist))
	for i, a := range d.Whitelist {
		members[i] = common.HexToAddress(a)
	}

	var added int
	err = n.ex.Execute(func(tx *state.Tx) error {
		if len(members) > 0 {
			if added, err = n.whitelist.AddTx(tx, n.protocol.WhitelistOwner, members); err != nil {
				return fmt.Errorf("whitelist: %w", err)
			}
		}
		for i, t := range d.Tokens {
			addr := d.TokenAddress(i, n.protocol.Admin)
			meta := token.Metadata{
				Name:     t.Name,
				Symbol:   t.Symbol,
				Decimals: t.Decimals,
				Creator:  n.protocol.Admin,
			}
			if err := n.tokens.RegisterTx(tx, addr, meta); err != nil {
				return fmt.Errorf("token %s: %w", t.Symbol, err)
			}
			if err := mintAllocs(tx, n.tokens, addr, t.Alloc); err != nil {
				return fmt.Errorf("token %s: %w", t.Symbol, err)
			}
		}
		return tx.Writer(ns).Put(keyDeployed, []byte{1})
	})
	if err != nil {
		return err
	}

	n.logger.Info().
		Int("whitelisted", added).
		Int("tokens", len(d.Tokens)).
		Msg("Deployment applied")
	return nil
}

// mintAllocs mints allocations in address order so the emitted events are
// deterministic.
func mintAllocs(tx *state.Tx, l *token.Ledger, addr common.Address, alloc map[string]string) error {
	holders := make([]string, 0, len(alloc))
	for h := range alloc {
		holders = append(holders, h)
	}
	sort.Strings(holders)

	for _, h := range holders {
		amount, err := uint256.FromDecimal(alloc[h])
		if err != nil {
			return fmt.Errorf("alloc %s: %w", h, err)
		}
		if amount.IsZero() {
			continue
		}
		if err := l.MintTx(tx, addr, common.HexToAddress(h), amount); err != nil {
			return fmt.Errorf("mint to %s: %w", h, err)
		}
	}
	return nil
}
