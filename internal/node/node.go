// Package node wires the protocol components, storage, metrics and the RPC
// server into a runnable process that can be embedded in any binary.
package node

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/swell-network/swell-core/config"
	"github.com/swell-network/swell-core/internal/access"
	"github.com/swell-network/swell-core/internal/events"
	klog "github.com/swell-network/swell-core/internal/log"
	"github.com/swell-network/swell-core/internal/metrics"
	"github.com/swell-network/swell-core/internal/rpc"
	"github.com/swell-network/swell-core/internal/state"
	"github.com/swell-network/swell-core/internal/storage"
	"github.com/swell-network/swell-core/internal/sweth"
	"github.com/swell-network/swell-core/internal/token"
	"github.com/swell-network/swell-core/internal/whitelist"
)

// Node is a fully-initialized protocol instance.
type Node struct {
	cfg      *config.Config
	protocol *config.Protocol
	logger   zerolog.Logger

	// Core
	db        storage.BatchDB
	ex        *state.Executor
	tokens    *token.Ledger
	acm       *access.Manager
	whitelist *whitelist.Registry
	swETH     *sweth.Engine

	// Observability
	metrics *metrics.Collector

	// RPC
	rpcServer *rpc.Server

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates and initializes a new Node. It opens storage, constructs or
// reloads every component and applies the deployment file on first start,
// but does NOT start the RPC server. Call Start() for that.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = logsDir + "/swelld.log"
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("node")

	// ── 2. Protocol parties ─────────────────────────────────────────
	protocol, err := config.Resolve(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve protocol: %w", err)
	}

	logger.Info().
		Str("version", config.Version).
		Str("admin", protocol.Admin.Hex()).
		Str("treasury", protocol.Treasury.Hex()).
		Str("manager", protocol.Manager.Hex()).
		Str("sweth", protocol.SwETH.Hex()).
		Str("min_deposit", protocol.MinDeposit.Dec()).
		Msg("Starting Swell protocol node")

	// ── 3. Open storage ─────────────────────────────────────────────
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("backend", cfg.DB.Backend).Str("path", cfg.DBDir()).Msg("Database opened")

	n := &Node{
		cfg:      cfg,
		protocol: protocol,
		logger:   logger,
		db:       db,
	}
	// ── 4. Components ───────────────────────────────────────────────
	if err := n.initComponents(); err != nil {
		db.Close()
		return nil, err
	}

	// ── 5. Deployment ───────────────────────────────────────────────
	if cfg.Deployment != "" {
		d, err := config.LoadDeployment(expandHome(cfg.Deployment))
		if err != nil {
			db.Close()
			return nil, err
		}
		if err := n.applyDeployment(d); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply deployment: %w", err)
		}
	}

	// ── 6. Metrics ──────────────────────────────────────────────────
	if cfg.Metrics.Enabled {
		n.metrics = metrics.New()
		if err := n.metrics.Replay(n.ex.Journal()); err != nil {
			db.Close()
			return nil, fmt.Errorf("replay events into metrics: %w", err)
		}
	}

	// ── 7. RPC server ───────────────────────────────────────────────
	if cfg.RPC.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
		n.rpcServer = rpc.New(addr, rpc.Backend{
			Access:    n.acm,
			Whitelist: n.whitelist,
			SwETH:     n.swETH,
			Tokens:    n.tokens,
			Journal:   n.ex.Journal(),
		}, cfg.RPC)
		n.rpcServer.SetProtocolInfo(n.protocolInfo())
		if n.metrics != nil {
			n.rpcServer.SetMetricsHandler(n.metrics.Handler())
		}
	} else {
		logger.Warn().Msg("RPC disabled by config")
	}

	n.ctx, n.cancel = context.WithCancel(context.Background())
	return n, nil
}

// initComponents builds the executor and the protocol contracts in
// deployment order. Construction is a no-op for components whose state
// already exists in the database.
func (n *Node) initComponents() error {
	ex, err := state.NewExecutor(n.db)
	if err != nil {
		return fmt.Errorf("create executor: %w", err)
	}
	tokens, err := token.NewLedger(ex)
	if err != nil {
		return fmt.Errorf("create token ledger: %w", err)
	}
	acm, err := access.New(ex, tokens, access.Params{
		Address:  n.protocol.Manager,
		Admin:    n.protocol.Admin,
		Treasury: n.protocol.Treasury,
	})
	if err != nil {
		return fmt.Errorf("create access control manager: %w", err)
	}
	wl, err := whitelist.New(ex, n.protocol.SwETH, n.protocol.WhitelistOwner)
	if err != nil {
		return fmt.Errorf("create whitelist: %w", err)
	}
	engine, err := sweth.New(ex, sweth.NewPermissions(acm, wl), sweth.Params{
		Address:    n.protocol.SwETH,
		MinDeposit: n.protocol.MinDeposit,
	})
	if err != nil {
		return fmt.Errorf("create swETH: %w", err)
	}

	n.ex = ex
	n.tokens = tokens
	n.acm = acm
	n.whitelist = wl
	n.swETH = engine

	n.logger.Info().
		Uint64("events", ex.Journal().Len()).
		Int("whitelisted", wl.Len()).
		Int("holders", engine.Holders()).
		Str("total_supply", engine.TotalSupply().Dec()).
		Msg("Protocol state loaded")
	return nil
}

func (n *Node) protocolInfo() rpc.ProtocolInfo {
	info := rpc.ProtocolInfo{
		Version:    config.Version,
		Admin:      n.protocol.Admin.Hex(),
		Treasury:   n.protocol.Treasury.Hex(),
		Manager:    n.acm.Address().Hex(),
		SwETH:      n.swETH.Address().Hex(),
		MinDeposit: n.protocol.MinDeposit.Dec(),
	}
	for _, a := range n.protocol.DevAccounts {
		info.DevAccounts = append(info.DevAccounts, a.Address.Hex())
	}
	return info
}

// Start launches the metrics consumer and the RPC server.
func (n *Node) Start() error {
	if n.metrics != nil {
		n.metrics.Start(n.ex.Journal())
	}
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return fmt.Errorf("start rpc: %w", err)
		}
		n.logger.Info().Str("addr", n.rpcServer.Addr()).Msg("RPC server listening")
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.runInvariantCheck()
	}()

	n.logger.Info().
		Str("sweth_to_eth_rate", n.swETH.SwETHToETHRate().Dec()).
		Bool("core_paused", n.acm.CoreMethodsPaused()).
		Msg("Node started successfully")
	return nil
}

// runInvariantCheck verifies the accounting invariants after every
// committed swETH event and logs any violation.
func (n *Node) runInvariantCheck() {
	ch := make(chan events.Log, 64)
	sub := n.ex.Journal().Subscribe(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case <-n.ctx.Done():
			return
		case err := <-sub.Err():
			if err != nil {
				n.logger.Error().Err(err).Msg("Event subscription failed")
			}
			return
		case l := <-ch:
			if l.Address != n.swETH.Address() {
				continue
			}
			if err := n.swETH.CheckInvariants(); err != nil {
				n.logger.Error().Err(err).Uint64("seq", l.Seq).Str("event", l.Name).Msg("Accounting invariant violated")
			}
		}
	}
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
	n.wg.Wait()

	if n.rpcServer != nil {
		n.rpcServer.Stop()
	}
	if n.metrics != nil {
		n.metrics.Stop()
	}
	if n.db != nil {
		n.db.Close()
	}

	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Protocol returns the resolved protocol parties.
func (n *Node) Protocol() *config.Protocol { return n.protocol }

// Access returns the access control manager.
func (n *Node) Access() *access.Manager { return n.acm }

// Whitelist returns the whitelist registry.
func (n *Node) Whitelist() *whitelist.Registry { return n.whitelist }

// SwETH returns the staking accounting engine.
func (n *Node) SwETH() *sweth.Engine { return n.swETH }

// Tokens returns the mock token ledger.
func (n *Node) Tokens() *token.Ledger { return n.tokens }

// Journal returns the event journal.
func (n *Node) Journal() *events.Journal { return n.ex.Journal() }
