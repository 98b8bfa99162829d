package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/swell-network/swell-core/internal/wallet"
)

// Contract deployment nonces of the admin account.
const (
	NonceManager = 0
	NonceSwETH   = 1
	// Deployment tokens without an explicit address take nonce
	// NonceFirstToken + their index.
	NonceFirstToken = 2
)

// Protocol is the resolved set of parties and contract addresses.
type Protocol struct {
	Admin          common.Address
	Treasury       common.Address
	WhitelistOwner common.Address

	Manager common.Address
	SwETH   common.Address // also the whitelist contract

	MinDeposit *uint256.Int

	DevAccounts []wallet.Account
}

// Resolve fills in every protocol address. Admin and treasury default to
// dev accounts 0 and 1; the whitelist owner defaults to the admin; contract
// addresses default to CREATE addresses of the admin.
func Resolve(cfg *Config) (*Protocol, error) {
	p := &Protocol{MinDeposit: new(uint256.Int)}

	if cfg.Dev.Accounts > 0 {
		accounts, err := wallet.DevAccounts(cfg.Dev.Mnemonic, cfg.Dev.Accounts)
		if err != nil {
			return nil, fmt.Errorf("deriving dev accounts: %w", err)
		}
		p.DevAccounts = accounts
	}

	dev := func(i int, field string) (common.Address, error) {
		if i >= len(p.DevAccounts) {
			return common.Address{}, fmt.Errorf("%s is unset and no dev account %d exists", field, i)
		}
		return p.DevAccounts[i].Address, nil
	}

	var err error
	if p.Admin, err = addressOr(cfg.Protocol.Admin, func() (common.Address, error) {
		return dev(0, "protocol.admin")
	}); err != nil {
		return nil, err
	}
	if p.Treasury, err = addressOr(cfg.Protocol.Treasury, func() (common.Address, error) {
		return dev(1, "protocol.treasury")
	}); err != nil {
		return nil, err
	}
	p.WhitelistOwner, _ = addressOr(cfg.Protocol.WhitelistOwner, constant(p.Admin))
	p.Manager, _ = addressOr(cfg.Protocol.ManagerAddress, constant(crypto.CreateAddress(p.Admin, NonceManager)))
	p.SwETH, _ = addressOr(cfg.Protocol.SwETHAddress, constant(crypto.CreateAddress(p.Admin, NonceSwETH)))

	if cfg.Protocol.MinDeposit != "" {
		min, err := uint256.FromDecimal(cfg.Protocol.MinDeposit)
		if err != nil {
			return nil, fmt.Errorf("protocol.min_deposit: %w", err)
		}
		p.MinDeposit = min
	}
	return p, nil
}

func addressOr(s string, fallback func() (common.Address, error)) (common.Address, error) {
	if s == "" {
		return fallback()
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func constant(a common.Address) func() (common.Address, error) {
	return func() (common.Address, error) { return a, nil }
}

// Deployment describes state applied once to an empty database.
type Deployment struct {
	// Addresses admitted to the whitelist by its owner.
	Whitelist []string `json:"whitelist,omitempty"`

	// Mock ERC-20 tokens registered in the token ledger.
	Tokens []DeploymentToken `json:"tokens,omitempty"`
}

// DeploymentToken is a mock token and its initial allocations.
type DeploymentToken struct {
	Address  string `json:"address,omitempty"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`

	// Initial allocations (address -> amount in base units, decimal).
	Alloc map[string]string `json:"alloc,omitempty"`
}

// LoadDeployment reads and validates a deployment file.
func LoadDeployment(path string) (*Deployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deployment file: %w", err)
	}

	var d Deployment
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing deployment file: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deployment: %w", err)
	}
	return &d, nil
}

// Save writes the deployment to a file.
func (d *Deployment) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding deployment: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing deployment file: %w", err)
	}
	return nil
}

// Validate checks addresses and amounts.
func (d *Deployment) Validate() error {
	for i, a := range d.Whitelist {
		if !common.IsHexAddress(a) {
			return fmt.Errorf("whitelist[%d]: invalid address %q", i, a)
		}
	}

	seen := make(map[string]struct{})
	for i, t := range d.Tokens {
		if strings.TrimSpace(t.Symbol) == "" {
			return fmt.Errorf("tokens[%d]: symbol is required", i)
		}
		if t.Address != "" {
			if !common.IsHexAddress(t.Address) {
				return fmt.Errorf("tokens[%d]: invalid address %q", i, t.Address)
			}
			key := strings.ToLower(common.HexToAddress(t.Address).Hex())
			if _, ok := seen[key]; ok {
				return fmt.Errorf("tokens[%d]: duplicate address %s", i, t.Address)
			}
			seen[key] = struct{}{}
		}

		total := new(uint256.Int)
		for holder, amount := range t.Alloc {
			if !common.IsHexAddress(holder) {
				return fmt.Errorf("tokens[%d]: invalid alloc address %q", i, holder)
			}
			v, err := uint256.FromDecimal(amount)
			if err != nil {
				return fmt.Errorf("tokens[%d]: alloc %s: %w", i, holder, err)
			}
			if _, overflow := total.AddOverflow(total, v); overflow {
				return fmt.Errorf("tokens[%d]: allocations overflow uint256", i)
			}
		}
	}
	return nil
}

// TokenAddress returns the address of the i-th token: its explicit address
// or the admin's CREATE address at NonceFirstToken+i.
func (d *Deployment) TokenAddress(i int, admin common.Address) common.Address {
	if a := d.Tokens[i].Address; a != "" {
		return common.HexToAddress(a)
	}
	return crypto.CreateAddress(admin, uint64(NonceFirstToken+i))
}
