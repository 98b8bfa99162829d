package rpcclient

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swell-network/swell-core/internal/access"
	klog "github.com/swell-network/swell-core/internal/log"
	"github.com/swell-network/swell-core/internal/rpc"
	"github.com/swell-network/swell-core/internal/state"
	"github.com/swell-network/swell-core/internal/storage"
	"github.com/swell-network/swell-core/internal/sweth"
	"github.com/swell-network/swell-core/internal/token"
	"github.com/swell-network/swell-core/internal/whitelist"
)

var (
	admin     = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	treasury  = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	depositor = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	managerAt = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	swETHAt   = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

func setupClient(t *testing.T) *Client {
	t.Helper()
	klog.Init("error", false, "")

	ex, err := state.NewExecutor(storage.NewMemory())
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	tokens, err := token.NewLedger(ex)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	acm, err := access.New(ex, tokens, access.Params{Address: managerAt, Admin: admin, Treasury: treasury})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	wl, err := whitelist.New(ex, swETHAt, admin)
	if err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	engine, err := sweth.New(ex, sweth.NewPermissions(acm, wl), sweth.Params{Address: swETHAt})
	if err != nil {
		t.Fatalf("sweth: %v", err)
	}

	srv := rpc.New("127.0.0.1:0", rpc.Backend{
		Access: acm, Whitelist: wl, SwETH: engine, Tokens: tokens, Journal: ex.Journal(),
	})
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return New("http://" + srv.Addr() + "/")
}

func TestClient_ACMGetState(t *testing.T) {
	client := setupClient(t)

	var result rpc.ACMStateResult
	if err := client.Call("acm_getState", nil, &result); err != nil {
		t.Fatalf("Call error: %v", err)
	}
	if result.Address != managerAt.Hex() {
		t.Errorf("address = %q", result.Address)
	}
	if !result.Paused.Core {
		t.Error("core should start paused")
	}
}

func TestClient_RevertMatchesSentinel(t *testing.T) {
	client := setupClient(t)

	err := client.Call("sweth_deposit", rpc.DepositParam{From: depositor.Hex(), Value: "1"}, nil)
	if err == nil {
		t.Fatal("expected revert while core is paused")
	}

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if !rpcErr.Reverted() {
		t.Errorf("code = %d, want revert", rpcErr.Code)
	}
	if !errors.Is(err, sweth.ErrDepositsPaused) {
		t.Errorf("errors.Is(err, ErrDepositsPaused) = false, data %q", rpcErr.Data)
	}
	if errors.Is(err, sweth.ErrNotInWhitelist) {
		t.Error("revert should not match a different kind")
	}
}

func TestClient_Call_DiscardResult(t *testing.T) {
	client := setupClient(t)

	if err := client.Call("acm_unpause", rpc.PauseParam{From: admin.Hex(), Category: "core"}, nil); err != nil {
		t.Fatalf("Call error: %v", err)
	}

	var paused bool
	if err := client.Call("acm_paused", rpc.CategoryParam{Category: "core"}, &paused); err != nil {
		t.Fatalf("Call error: %v", err)
	}
	if paused {
		t.Error("core should be unpaused")
	}
}

func TestClient_Call_InvalidEndpoint(t *testing.T) {
	client := New("http://127.0.0.1:1/") // port 1 should refuse

	var raw json.RawMessage
	if err := client.Call("protocol_getInfo", nil, &raw); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClient_Call_MethodNotFound(t *testing.T) {
	client := setupClient(t)

	var raw json.RawMessage
	err := client.Call("nonexistent_method", nil, &raw)
	if err == nil {
		t.Fatal("expected error for unknown method")
	}

	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32601 {
		t.Errorf("error code = %d, want -32601", rpcErr.Code)
	}
	if rpcErr.Reverted() {
		t.Error("method not found is not a revert")
	}
}
