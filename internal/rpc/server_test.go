package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swell-network/swell-core/config"
	"github.com/swell-network/swell-core/internal/access"
	"github.com/swell-network/swell-core/internal/events"
	klog "github.com/swell-network/swell-core/internal/log"
	"github.com/swell-network/swell-core/internal/metrics"
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

// testEnv holds all components for an RPC test.
type testEnv struct {
	server  *Server
	ex      *state.Executor
	acm     *access.Manager
	wl      *whitelist.Registry
	engine  *sweth.Engine
	tokens  *token.Ledger
	metrics *metrics.Collector
	url     string
}

func setupTestEnv(t *testing.T) *testEnv {
	return setupTestEnvWithConfig(t, config.RPCConfig{})
}

func setupTestEnvWithConfig(t *testing.T, rpcCfg config.RPCConfig) *testEnv {
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

	srv := New("127.0.0.1:0", Backend{
		Access:    acm,
		Whitelist: wl,
		SwETH:     engine,
		Tokens:    tokens,
		Journal:   ex.Journal(),
	}, rpcCfg)
	srv.SetProtocolInfo(ProtocolInfo{
		Admin:    admin.Hex(),
		Treasury: treasury.Hex(),
		Manager:  managerAt.Hex(),
		SwETH:    swETHAt.Hex(),
	})
	mc := metrics.New()
	srv.SetMetricsHandler(mc.Handler())
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		server:  srv,
		ex:      ex,
		acm:     acm,
		wl:      wl,
		engine:  engine,
		tokens:  tokens,
		metrics: mc,
		url:     fmt.Sprintf("http://%s/", srv.Addr()),
	}
}

func rpcCall(t *testing.T, url, method string, params interface{}) Response {
	t.Helper()
	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", method, err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rpcResp
}

// mustCall fails the test on an RPC error and decodes the result into out.
func mustCall(t *testing.T, url, method string, params, out interface{}) {
	t.Helper()
	resp := rpcCall(t, url, method, params)
	if resp.Error != nil {
		t.Fatalf("%s: unexpected error: %d %s", method, resp.Error.Code, resp.Error.Message)
	}
	if out == nil {
		return
	}
	data, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("%s: decode result: %v", method, err)
	}
}

// expectRevert asserts that the call fails with the given failure kind.
func expectRevert(t *testing.T, resp Response, name, selector string) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected revert %s, got success", name)
	}
	if resp.Error.Code != CodeExecutionReverted {
		t.Fatalf("error code = %d, want %d (%s)", resp.Error.Code, CodeExecutionReverted, resp.Error.Message)
	}
	if want := "execution reverted: " + name + "()"; resp.Error.Message != want {
		t.Errorf("message = %q, want %q", resp.Error.Message, want)
	}
	if resp.Error.Data != selector {
		t.Errorf("data = %v, want %s", resp.Error.Data, selector)
	}
}

// ── Tests ───────────────────────────────────────────────────────────────

func TestRPC_ProtocolGetInfo(t *testing.T) {
	env := setupTestEnv(t)

	var result ProtocolInfoResult
	mustCall(t, env.url, "protocol_getInfo", nil, &result)

	if result.Version != config.Version {
		t.Errorf("version = %q", result.Version)
	}
	if result.SwETH != swETHAt.Hex() {
		t.Errorf("sweth = %q", result.SwETH)
	}
	// RoleGranted and OwnershipTransferred from construction.
	if result.Events != 2 {
		t.Errorf("events = %d, want 2", result.Events)
	}
}

func TestRPC_ACMGetState_Initial(t *testing.T) {
	env := setupTestEnv(t)

	var result ACMStateResult
	mustCall(t, env.url, "acm_getState", nil, &result)

	if result.Address != managerAt.Hex() {
		t.Errorf("address = %q", result.Address)
	}
	if len(result.Admins) != 1 || result.Admins[0] != admin.Hex() {
		t.Errorf("admins = %v", result.Admins)
	}
	if !result.Paused.Core || !result.Paused.Bot || !result.Paused.Operator || !result.Paused.Withdrawals {
		t.Errorf("every category should start paused: %+v", result.Paused)
	}
	if result.SwellTreasury != treasury.Hex() {
		t.Errorf("treasury = %q", result.SwellTreasury)
	}
	if result.SwETH != (common.Address{}).Hex() {
		t.Errorf("sweth = %q, want zero address", result.SwETH)
	}
}

func TestRPC_ACMPauseUnpause(t *testing.T) {
	env := setupTestEnv(t)

	mustCall(t, env.url, "acm_unpause", PauseParam{From: admin.Hex(), Category: "core"}, nil)

	var paused bool
	mustCall(t, env.url, "acm_paused", CategoryParam{Category: "core"}, &paused)
	if paused {
		t.Error("core should be unpaused")
	}

	resp := rpcCall(t, env.url, "acm_unpause", PauseParam{From: admin.Hex(), Category: "core"})
	expectRevert(t, resp, "AlreadyUnpaused", access.ErrAlreadyUnpaused.SelectorHex())

	resp = rpcCall(t, env.url, "acm_pause", PauseParam{From: depositor.Hex(), Category: "bot"})
	expectRevert(t, resp, "Unauthorized", access.ErrUnauthorized.SelectorHex())
}

func TestRPC_ACMPaused_UnknownCategory(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "acm_paused", CategoryParam{Category: "everything"})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
}

func TestRPC_ACMSetters(t *testing.T) {
	env := setupTestEnv(t)
	newAddr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	for _, method := range []string{"acm_setSwETH", "acm_setDepositManager", "acm_setNodeOperatorRegistry", "acm_setSwellTreasury"} {
		mustCall(t, env.url, method, SetAddressParam{From: admin.Hex(), Address: newAddr.Hex()}, nil)
	}
	if env.acm.SwETH() != newAddr || env.acm.DepositManager() != newAddr ||
		env.acm.NodeOperatorRegistry() != newAddr || env.acm.SwellTreasury() != newAddr {
		t.Error("setters did not update the registry")
	}

	var logs LogsResult
	mustCall(t, env.url, "events_getLogs", LogsParam{Event: events.UpdatedSwellTreasuryName}, &logs)
	if len(logs.Logs) != 1 {
		t.Fatalf("got %d UpdatedSwellTreasury logs, want 1", len(logs.Logs))
	}
}

func TestRPC_ACMSet_InvalidAddress(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "acm_setSwETH", SetAddressParam{From: admin.Hex(), Address: "0x1234"})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
}

func TestRPC_ACMRescueERC20(t *testing.T) {
	env := setupTestEnv(t)

	var info TokenInfoResult
	mustCall(t, env.url, "token_register", TokenRegisterParam{
		From: depositor.Hex(), Name: "Mock", Symbol: "MCK", Decimals: 18,
	}, &info)
	mustCall(t, env.url, "token_mint", TokenMintParam{Token: info.Address, To: managerAt.Hex(), Amount: "1000"}, nil)

	var rescued RescueResult
	mustCall(t, env.url, "acm_rescueERC20", RescueParam{From: admin.Hex(), Token: info.Address}, &rescued)
	if rescued.Amount != "1000" || rescued.Treasury != treasury.Hex() {
		t.Errorf("rescue = %+v", rescued)
	}

	var bal BalanceResult
	mustCall(t, env.url, "token_balanceOf", TokenBalanceParam{Token: info.Address, Address: treasury.Hex()}, &bal)
	if bal.Balance != "1000" {
		t.Errorf("treasury balance = %s, want 1000", bal.Balance)
	}

	// withdrawERC20 is an alias.
	resp := rpcCall(t, env.url, "acm_withdrawERC20", RescueParam{From: admin.Hex(), Token: info.Address})
	expectRevert(t, resp, "NoTokensToWithdraw", access.ErrNoTokensToWithdraw.SelectorHex())
}

func TestRPC_ACMAdminRoles(t *testing.T) {
	env := setupTestEnv(t)

	mustCall(t, env.url, "acm_grantAdmin", SetAddressParam{From: admin.Hex(), Address: depositor.Hex()}, nil)
	var isAdmin bool
	mustCall(t, env.url, "acm_isAdmin", AddressParam{Address: depositor.Hex()}, &isAdmin)
	if !isAdmin {
		t.Error("depositor should be admin")
	}

	mustCall(t, env.url, "acm_revokeAdmin", SetAddressParam{From: depositor.Hex(), Address: admin.Hex()}, nil)
	resp := rpcCall(t, env.url, "acm_revokeAdmin", SetAddressParam{From: depositor.Hex(), Address: depositor.Hex()})
	expectRevert(t, resp, "LastAdmin", access.ErrLastAdmin.SelectorHex())
}

func TestRPC_Whitelist(t *testing.T) {
	env := setupTestEnv(t)
	other := common.HexToAddress("0x2222222222222222222222222222222222222222")

	resp := rpcCall(t, env.url, "whitelist_add", SetAddressParam{From: depositor.Hex(), Address: depositor.Hex()})
	expectRevert(t, resp, "Unauthorized", whitelist.ErrUnauthorized.SelectorHex())

	var added WhitelistAddResult
	mustCall(t, env.url, "whitelist_batchAdd", BatchAddParam{
		From:      admin.Hex(),
		Addresses: []string{depositor.Hex(), other.Hex(), depositor.Hex()},
	}, &added)
	if added.Members != 2 {
		t.Errorf("members = %d, want 2", added.Members)
	}

	var ok bool
	mustCall(t, env.url, "whitelist_isWhitelisted", AddressParam{Address: depositor.Hex()}, &ok)
	if !ok {
		t.Error("depositor should be whitelisted")
	}

	var list WhitelistListResult
	mustCall(t, env.url, "whitelist_list", nil, &list)
	if len(list.Addresses) != 2 {
		t.Errorf("list = %v", list.Addresses)
	}

	var info WhitelistInfoResult
	mustCall(t, env.url, "whitelist_getInfo", nil, &info)
	if info.Owner != admin.Hex() || info.Contract != swETHAt.Hex() {
		t.Errorf("info = %+v", info)
	}
}

func TestRPC_SwETHDepositFlow(t *testing.T) {
	env := setupTestEnv(t)
	deposit := DepositParam{From: depositor.Hex(), Value: "1000000000000000000"}

	resp := rpcCall(t, env.url, "sweth_deposit", deposit)
	expectRevert(t, resp, "CoreMethodsPaused", sweth.ErrDepositsPaused.SelectorHex())

	mustCall(t, env.url, "acm_unpause", PauseParam{From: admin.Hex(), Category: "core"}, nil)
	resp = rpcCall(t, env.url, "sweth_deposit", deposit)
	expectRevert(t, resp, "NotInWhitelist", sweth.ErrNotInWhitelist.SelectorHex())

	mustCall(t, env.url, "whitelist_add", SetAddressParam{From: admin.Hex(), Address: depositor.Hex()}, nil)
	resp = rpcCall(t, env.url, "sweth_deposit", DepositParam{From: depositor.Hex(), Value: "0"})
	expectRevert(t, resp, "InvalidETHDeposit", sweth.ErrInvalidDeposit.SelectorHex())

	var res DepositResult
	mustCall(t, env.url, "sweth_deposit", deposit, &res)
	if res.Minted != deposit.Value {
		t.Errorf("minted = %s, want %s", res.Minted, deposit.Value)
	}

	var bal BalanceResult
	mustCall(t, env.url, "sweth_balanceOf", AddressParam{Address: depositor.Hex()}, &bal)
	if bal.Balance != deposit.Value {
		t.Errorf("balance = %s", bal.Balance)
	}

	var info SwETHInfoResult
	mustCall(t, env.url, "sweth_getInfo", nil, &info)
	if info.TotalSupply != deposit.Value || info.TotalETHDeposited != deposit.Value || info.Holders != 1 {
		t.Errorf("info = %+v", info)
	}
	if info.SwETHToETHRate != "1000000000000000000" {
		t.Errorf("rate = %s", info.SwETHToETHRate)
	}

	var logs LogsResult
	mustCall(t, env.url, "events_getLogs", LogsParam{Event: events.ETHDepositReceivedName}, &logs)
	if len(logs.Logs) != 1 {
		t.Fatalf("got %d deposit logs, want 1", len(logs.Logs))
	}
	if logs.Logs[0].Address != swETHAt {
		t.Errorf("log address = %s", logs.Logs[0].Address.Hex())
	}
}

func TestRPC_SwETHReprice(t *testing.T) {
	env := setupTestEnv(t)
	mustCall(t, env.url, "acm_unpause", PauseParam{From: admin.Hex(), Category: "core"}, nil)
	mustCall(t, env.url, "whitelist_add", SetAddressParam{From: admin.Hex(), Address: depositor.Hex()}, nil)
	mustCall(t, env.url, "sweth_deposit", DepositParam{From: depositor.Hex(), Value: "100"}, nil)

	resp := rpcCall(t, env.url, "sweth_reprice", RepriceParam{From: admin.Hex(), Total: "150"})
	expectRevert(t, resp, "BotMethodsPaused", sweth.ErrBotMethodsPaused.SelectorHex())

	mustCall(t, env.url, "acm_unpause", PauseParam{From: admin.Hex(), Category: "bot"}, nil)
	var rate string
	mustCall(t, env.url, "sweth_reprice", RepriceParam{From: admin.Hex(), Total: "150"}, &rate)
	if rate != "1500000000000000000" {
		t.Errorf("rate = %s, want 1.5e18", rate)
	}
}

func TestRPC_SwETHTransfer(t *testing.T) {
	env := setupTestEnv(t)
	mustCall(t, env.url, "acm_unpause", PauseParam{From: admin.Hex(), Category: "core"}, nil)
	mustCall(t, env.url, "whitelist_add", SetAddressParam{From: admin.Hex(), Address: depositor.Hex()}, nil)
	mustCall(t, env.url, "sweth_deposit", DepositParam{From: depositor.Hex(), Value: "100"}, nil)

	mustCall(t, env.url, "sweth_transfer", TransferParam{From: depositor.Hex(), To: treasury.Hex(), Amount: "40"}, nil)
	if got := env.engine.BalanceOf(treasury).Uint64(); got != 40 {
		t.Errorf("recipient balance = %d, want 40", got)
	}

	resp := rpcCall(t, env.url, "sweth_transfer", TransferParam{From: depositor.Hex(), To: treasury.Hex(), Amount: "61"})
	expectRevert(t, resp, "InsufficientBalance", sweth.ErrInsufficientBalance.SelectorHex())
}

func TestRPC_TokenLedger(t *testing.T) {
	env := setupTestEnv(t)

	var info TokenInfoResult
	mustCall(t, env.url, "token_register", TokenRegisterParam{From: admin.Hex(), Name: "Mock", Symbol: "MCK", Decimals: 6}, &info)
	if want := token.DeriveAddress(admin, config.NonceFirstToken).Hex(); info.Address != want {
		t.Errorf("address = %s, want %s", info.Address, want)
	}

	resp := rpcCall(t, env.url, "token_register", TokenRegisterParam{From: admin.Hex(), Address: info.Address, Symbol: "DUP"})
	expectRevert(t, resp, "TokenAlreadyRegistered", token.ErrTokenExists.SelectorHex())

	mustCall(t, env.url, "token_mint", TokenMintParam{Token: info.Address, To: depositor.Hex(), Amount: "500"}, nil)
	mustCall(t, env.url, "token_transfer", TransferParam{Token: info.Address, From: depositor.Hex(), To: treasury.Hex(), Amount: "200"}, nil)

	var got TokenInfoResult
	mustCall(t, env.url, "token_getInfo", TokenParam{Token: info.Address}, &got)
	if got.TotalSupply != "500" || got.Decimals != 6 {
		t.Errorf("info = %+v", got)
	}

	var list TokenListResult
	mustCall(t, env.url, "token_list", nil, &list)
	if len(list.Tokens) != 1 {
		t.Errorf("tokens = %d, want 1", len(list.Tokens))
	}

	resp = rpcCall(t, env.url, "token_getInfo", TokenParam{Token: treasury.Hex()})
	if resp.Error == nil || resp.Error.Code != CodeNotFound {
		t.Errorf("expected not found, got %+v", resp.Error)
	}
}

func TestRPC_EventsGetLogs_Filter(t *testing.T) {
	env := setupTestEnv(t)
	mustCall(t, env.url, "acm_unpause", PauseParam{From: admin.Hex(), Category: "core"}, nil)
	mustCall(t, env.url, "acm_unpause", PauseParam{From: admin.Hex(), Category: "bot"}, nil)

	var all LogsResult
	mustCall(t, env.url, "events_getLogs", nil, &all)
	if len(all.Logs) != 4 || all.Head != 4 {
		t.Fatalf("got %d logs head %d, want 4", len(all.Logs), all.Head)
	}

	var fromACM LogsResult
	mustCall(t, env.url, "events_getLogs", LogsParam{Address: managerAt.Hex(), FromSeq: 1, Limit: 1}, &fromACM)
	if len(fromACM.Logs) != 1 || fromACM.Logs[0].Name != events.CoreMethodsPauseName {
		t.Fatalf("filtered logs = %+v", fromACM.Logs)
	}
}

func TestRPC_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "chain_getInfo", nil)
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", resp.Error)
	}
}

func TestRPC_InvalidParams(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "sweth_balanceOf", nil)
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}

	resp = rpcCall(t, env.url, "sweth_deposit", DepositParam{From: depositor.Hex(), Value: "1e18"})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Fatalf("expected invalid params for non-decimal amount, got %+v", resp.Error)
	}
}

func TestRPC_InvalidJSON(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Post(env.url, "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)
	if rpcResp.Error == nil || rpcResp.Error.Code != CodeParseError {
		t.Fatalf("expected parse error, got %+v", rpcResp.Error)
	}
}

func TestRPC_GetMethodNotAllowed(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Get(env.url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)

	if rpcResp.Error == nil {
		t.Fatal("expected error for GET request")
	}
	if rpcResp.Error.Code != CodeInvalidRequest {
		t.Errorf("error code = %d, want %d", rpcResp.Error.Code, CodeInvalidRequest)
	}
}

func TestRPC_BodySizeLimit(t *testing.T) {
	env := setupTestEnv(t)

	bigPayload := bytes.Repeat([]byte{'A'}, (1<<20)+1024)
	resp, err := http.Post(env.url, "application/json", bytes.NewReader(bigPayload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)
	if rpcResp.Error == nil || rpcResp.Error.Code != CodeInvalidRequest {
		t.Fatalf("expected invalid request for oversized body, got %+v", rpcResp.Error)
	}
}

func TestRPC_Metrics(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Get(env.url + "metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("metrics output missing go collector")
	}
}

// --- IP Filtering ---

func TestRPC_IPFilter_Allowed(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		AllowedIPs: []string{"127.0.0.1"},
	})

	resp := rpcCall(t, env.url, "protocol_getInfo", nil)
	if resp.Error != nil {
		t.Errorf("expected success for 127.0.0.1, got error: %s", resp.Error.Message)
	}
}

func TestRPC_IPFilter_Blocked(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		AllowedIPs: []string{"10.0.0.0/8"},
	})

	req := Request{JSONRPC: "2.0", Method: "protocol_getInfo", ID: 1}
	body, _ := json.Marshal(req)
	resp, err := http.Post(env.url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}

	mresp, err := http.Get(env.url + "metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer mresp.Body.Close()
	if mresp.StatusCode != http.StatusNotFound {
		t.Errorf("metrics from blocked IP: status %d, want 404", mresp.StatusCode)
	}
}

// --- CORS ---

func TestRPC_CORS_SpecificOrigin(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		CORSOrigins: []string{"http://myapp.com"},
	})

	for origin, want := range map[string]string{
		"http://myapp.com": "http://myapp.com",
		"http://evil.com":  "",
	} {
		body, _ := json.Marshal(Request{JSONRPC: "2.0", Method: "protocol_getInfo", ID: 1})
		httpReq, _ := http.NewRequest("POST", env.url, bytes.NewReader(body))
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Origin", origin)

		resp, err := http.DefaultClient.Do(httpReq)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()

		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != want {
			t.Errorf("origin %s: CORS header = %q, want %q", origin, got, want)
		}
	}
}

func TestRPC_CORS_Preflight(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		CORSOrigins: []string{"*"},
	})

	httpReq, _ := http.NewRequest("OPTIONS", env.url, nil)
	httpReq.Header.Set("Origin", "http://example.com")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing wildcard CORS header")
	}
}
