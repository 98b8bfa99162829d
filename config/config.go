// Package config handles node configuration.
//
// Configuration comes from three layers, later layers winning:
//   - Built-in defaults
//   - The swell.conf file in the data directory
//   - Command-line flags
//
// Protocol addresses left empty are derived from the development mnemonic
// when the node starts (see Resolve).
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Storage backends.
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config holds node runtime configuration.
type Config struct {
	DataDir string `conf:"datadir"`

	// Storage
	DB DBConfig

	// Protocol parties and contract addresses
	Protocol ProtocolConfig

	// Development accounts
	Dev DevConfig

	// RPC server
	RPC RPCConfig

	// Prometheus endpoint
	Metrics MetricsConfig

	// Logging
	Log LogConfig

	// Path to a JSON deployment file applied once on an empty database.
	Deployment string `conf:"deployment"`
}

// DBConfig selects the storage backend.
type DBConfig struct {
	Backend string `conf:"db.backend"` // badger or memory
}

// ProtocolConfig holds the protocol's parties and contract addresses.
// Empty values are filled in by Resolve.
type ProtocolConfig struct {
	Admin          string `conf:"protocol.admin"`
	Treasury       string `conf:"protocol.treasury"`
	WhitelistOwner string `conf:"protocol.whitelist_owner"`
	ManagerAddress string `conf:"protocol.manager_address"`
	SwETHAddress   string `conf:"protocol.sweth_address"`
	MinDeposit     string `conf:"protocol.min_deposit"` // wei, decimal
}

// DevConfig holds the development account settings.
type DevConfig struct {
	Mnemonic string `conf:"dev.mnemonic"`
	Accounts int    `conf:"dev.accounts"`
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// MetricsConfig toggles the /metrics endpoint on the RPC server.
type MetricsConfig struct {
	Enabled bool `conf:"metrics.enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.swell
//	macOS:   ~/Library/Application Support/Swell
//	Windows: %APPDATA%\Swell
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".swell"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Swell")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Swell")
		}
		return filepath.Join(home, "AppData", "Roaming", "Swell")
	default:
		return filepath.Join(home, ".swell")
	}
}

// DBDir returns the badger database directory.
func (c *Config) DBDir() string {
	return filepath.Join(c.DataDir, "db")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "swell.conf")
}
