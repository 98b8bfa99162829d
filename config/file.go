package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads node configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a node config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "datadir":
		cfg.DataDir = value
	case "deployment":
		cfg.Deployment = value

	// Storage
	case "db.backend", "db":
		cfg.DB.Backend = strings.ToLower(value)

	// Protocol
	case "protocol.admin":
		cfg.Protocol.Admin = value
	case "protocol.treasury":
		cfg.Protocol.Treasury = value
	case "protocol.whitelist_owner":
		cfg.Protocol.WhitelistOwner = value
	case "protocol.manager_address":
		cfg.Protocol.ManagerAddress = value
	case "protocol.sweth_address":
		cfg.Protocol.SwETHAddress = value
	case "protocol.min_deposit":
		cfg.Protocol.MinDeposit = value

	// Development accounts
	case "dev.mnemonic":
		cfg.Dev.Mnemonic = value
	case "dev.accounts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Dev.Accounts = n

	// RPC
	case "rpc.enabled", "rpc":
		cfg.RPC.Enabled = parseBool(value)
	case "rpc.addr":
		cfg.RPC.Addr = value
	case "rpc.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.RPC.Port = port
	case "rpc.allowed":
		cfg.RPC.AllowedIPs = parseStringList(value)
	case "rpc.cors":
		cfg.RPC.CORSOrigins = parseStringList(value)

	// Metrics
	case "metrics.enabled", "metrics":
		cfg.Metrics.Enabled = parseBool(value)

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// parseStringList parses a comma-separated list.
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// WriteDefaultConfig writes a default node configuration file.
func WriteDefaultConfig(path string) error {
	content := `# Swell Node Configuration
#
# Protocol addresses left empty are derived on start: admin and treasury
# are dev accounts 0 and 1, contracts are deployed from the admin at
# nonces 0 (manager) and 1 (swETH, which also owns the whitelist).

# Data directory (default: ~/.swell)
# datadir = ~/.swell

# Storage backend: badger or memory
db.backend = badger

# JSON deployment file applied once on an empty database
# deployment = deployment.json

# ============================================================================
# Protocol
# ============================================================================

# protocol.admin =
# protocol.treasury =
# protocol.whitelist_owner =
# protocol.manager_address =
# protocol.sweth_address =

# Minimum deposit in wei (0 = any non-zero deposit)
# protocol.min_deposit = 0

# ============================================================================
# Development accounts
# ============================================================================

# dev.mnemonic = test test test test test test test test test test test junk
dev.accounts = ` + strconv.Itoa(DefaultDevAccounts) + `

# ============================================================================
# RPC Server
# ============================================================================

rpc.enabled = true
rpc.addr = 127.0.0.1
rpc.port = 8545
rpc.allowed = 127.0.0.1
# CORS allowed origins ("*" for all)
# rpc.cors = http://localhost:3000

# Serve prometheus metrics on /metrics
metrics.enabled = true

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
