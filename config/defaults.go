package config

import "github.com/swell-network/swell-core/internal/wallet"

// DefaultDevAccounts is the number of development accounts derived at start.
const DefaultDevAccounts = 10

// Default returns the default node configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		DB: DBConfig{
			Backend: BackendBadger,
		},
		Dev: DevConfig{
			Mnemonic: wallet.DevMnemonic,
			Accounts: DefaultDevAccounts,
		},
		RPC: RPCConfig{
			Enabled:    true,
			Addr:       "127.0.0.1",
			Port:       8545,
			AllowedIPs: []string{"127.0.0.1"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
