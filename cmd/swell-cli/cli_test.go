package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swell-network/swell-core/config"
	"github.com/swell-network/swell-core/internal/node"
	"github.com/swell-network/swell-core/internal/sweth"
	"github.com/swell-network/swell-core/internal/whitelist"
)

const memberHex = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"

func startNode(t *testing.T) *node.Node {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = dir
	cfg.DB.Backend = config.BackendMemory
	cfg.RPC.Port = 0
	cfg.Log.Level = "error"
	cfg.Log.File = filepath.Join(dir, "node.log")

	n, err := node.New(cfg)
	if err != nil {
		t.Fatalf("node.New: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("node.Start: %v", err)
	}
	t.Cleanup(n.Stop)
	return n
}

func run(t *testing.T, n *node.Node, args ...string) error {
	t.Helper()
	jsonOutput = false
	root := rootCommand()
	root.SetArgs(append([]string{"--rpc", "http://" + n.RPCAddr()}, args...))
	return root.Execute()
}

func TestCLI_DepositFlow(t *testing.T) {
	n := startNode(t)
	member := common.HexToAddress(memberHex)

	if err := run(t, n, "whitelist", "add", memberHex); err != nil {
		t.Fatalf("whitelist add: %v", err)
	}
	if !n.Whitelist().IsWhitelisted(member) {
		t.Fatal("member not whitelisted")
	}

	err := run(t, n, "--from", memberHex, "deposit", "1eth")
	if !errors.Is(err, sweth.ErrDepositsPaused) {
		t.Fatalf("deposit while paused: got %v, want CoreMethodsPaused", err)
	}

	if err := run(t, n, "unpause", "core"); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if err := run(t, n, "--from", memberHex, "deposit", "2eth"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if got := n.SwETH().BalanceOf(member).Dec(); got != "2000000000000000000" {
		t.Errorf("balance = %s", got)
	}
	if err := run(t, n, "balance", memberHex); err != nil {
		t.Errorf("balance: %v", err)
	}
	if err := run(t, n, "status"); err != nil {
		t.Errorf("status: %v", err)
	}
}

func TestCLI_Unauthorized(t *testing.T) {
	n := startNode(t)

	err := run(t, n, "--from", memberHex, "whitelist", "add", memberHex)
	if !errors.Is(err, whitelist.ErrUnauthorized) {
		t.Fatalf("got %v, want Unauthorized", err)
	}
	err = run(t, n, "--from", memberHex, "pause", "bot")
	if err == nil {
		t.Fatal("expected non-admin pause to fail")
	}
}

func TestCLI_SetAndTokens(t *testing.T) {
	n := startNode(t)

	if err := run(t, n, "set", "deposit-manager", memberHex); err != nil {
		t.Fatalf("set deposit-manager: %v", err)
	}
	if n.Access().DepositManager() != common.HexToAddress(memberHex) {
		t.Errorf("deposit manager = %s", n.Access().DepositManager().Hex())
	}

	tokenAddr := "0x00000000000000000000000000000000000000bb"
	if err := run(t, n, "token", "register", "--symbol", "MOCK", "--decimals", "6", "--address", tokenAddr); err != nil {
		t.Fatalf("token register: %v", err)
	}
	if err := run(t, n, "token", "mint", tokenAddr, n.Access().Address().Hex(), "250"); err != nil {
		t.Fatalf("token mint: %v", err)
	}
	if err := run(t, n, "rescue", tokenAddr); err != nil {
		t.Fatalf("rescue: %v", err)
	}
	treasury := n.Access().SwellTreasury()
	if got := n.Tokens().BalanceOf(common.HexToAddress(tokenAddr), treasury).Uint64(); got != 250 {
		t.Errorf("treasury balance = %d, want 250", got)
	}
	if err := run(t, n, "events", "--event", "Transfer"); err != nil {
		t.Errorf("events: %v", err)
	}
}

func TestCLI_BadArgs(t *testing.T) {
	n := startNode(t)
	if err := run(t, n, "deposit", "lots"); err == nil {
		t.Error("expected amount parse error")
	}
	if err := run(t, n, "pause"); err == nil {
		t.Error("expected missing category error")
	}
}
