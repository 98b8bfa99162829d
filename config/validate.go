package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/swell-network/swell-core/internal/log"
	"github.com/swell-network/swell-core/internal/wallet"
)

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	switch cfg.DB.Backend {
	case BackendBadger, BackendMemory:
	default:
		return fmt.Errorf("db.backend must be %q or %q", BackendBadger, BackendMemory)
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}
	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q is not a known level", cfg.Log.Level)
	}

	addrs := []struct {
		field string
		value string
	}{
		{"protocol.admin", cfg.Protocol.Admin},
		{"protocol.treasury", cfg.Protocol.Treasury},
		{"protocol.whitelist_owner", cfg.Protocol.WhitelistOwner},
		{"protocol.manager_address", cfg.Protocol.ManagerAddress},
		{"protocol.sweth_address", cfg.Protocol.SwETHAddress},
	}
	for _, a := range addrs {
		if a.value != "" && !common.IsHexAddress(a.value) {
			return fmt.Errorf("%s must be a 20-byte hex address", a.field)
		}
	}
	if cfg.Protocol.MinDeposit != "" {
		if _, err := uint256.FromDecimal(cfg.Protocol.MinDeposit); err != nil {
			return fmt.Errorf("protocol.min_deposit: %w", err)
		}
	}

	// Admin and treasury fall back to dev accounts 0 and 1.
	needDev := cfg.Protocol.Admin == "" || cfg.Protocol.Treasury == ""
	if needDev {
		if !wallet.ValidateMnemonic(cfg.Dev.Mnemonic) {
			return fmt.Errorf("dev.mnemonic is invalid")
		}
		if cfg.Dev.Accounts < 2 {
			return fmt.Errorf("dev.accounts must be at least 2 when admin or treasury is unset")
		}
	}
	if cfg.Dev.Accounts < 0 {
		return fmt.Errorf("dev.accounts must not be negative")
	}
	return nil
}
