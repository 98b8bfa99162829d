package rpc

import (
	"github.com/swell-network/swell-core/internal/events"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000

	// CodeExecutionReverted is the code Ethereum nodes use for reverts.
	// The error data carries the 4-byte custom-error selector.
	CodeExecutionReverted = 3
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────
//
// Addresses are 0x-prefixed hex. Amounts are decimal strings in base units.

// AddressParam is used by endpoints that take a single address.
type AddressParam struct {
	Address string `json:"address"`
}

// CategoryParam is used by acm_paused.
type CategoryParam struct {
	Category string `json:"category"`
}

// PauseParam is used by acm_pause and acm_unpause.
type PauseParam struct {
	From     string `json:"from"`
	Category string `json:"category"`
}

// SetAddressParam is used by the acm_set* endpoints, whitelist_add,
// whitelist_transferOwnership, acm_grantAdmin and acm_revokeAdmin.
type SetAddressParam struct {
	From    string `json:"from"`
	Address string `json:"address"`
}

// RescueParam is used by acm_rescueERC20.
type RescueParam struct {
	From  string `json:"from"`
	Token string `json:"token"`
}

// BatchAddParam is used by whitelist_batchAdd.
type BatchAddParam struct {
	From      string   `json:"from"`
	Addresses []string `json:"addresses"`
}

// DepositParam is used by sweth_deposit.
type DepositParam struct {
	From  string `json:"from"`
	Value string `json:"value"`
}

// TransferParam is used by sweth_transfer and token_transfer.
type TransferParam struct {
	From   string `json:"from"`
	Token  string `json:"token,omitempty"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// RepriceParam is used by sweth_reprice.
type RepriceParam struct {
	From  string `json:"from"`
	Total string `json:"total"`
}

// TokenRegisterParam is used by token_register. An empty address is
// derived from the caller.
type TokenRegisterParam struct {
	From     string `json:"from"`
	Address  string `json:"address,omitempty"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// TokenMintParam is used by token_mint.
type TokenMintParam struct {
	Token  string `json:"token"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// TokenParam is used by token_getInfo.
type TokenParam struct {
	Token string `json:"token"`
}

// TokenBalanceParam is used by token_balanceOf.
type TokenBalanceParam struct {
	Token   string `json:"token"`
	Address string `json:"address"`
}

// LogsParam is used by events_getLogs. All fields are optional.
type LogsParam struct {
	FromSeq uint64 `json:"from_seq,omitempty"`
	Address string `json:"address,omitempty"`
	Event   string `json:"event,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// ── Result types ────────────────────────────────────────────────────────

// PausedResult lists every pause flag.
type PausedResult struct {
	Core        bool `json:"core"`
	Bot         bool `json:"bot"`
	Operator    bool `json:"operator"`
	Withdrawals bool `json:"withdrawals"`
}

// ACMStateResult is returned by acm_getState.
type ACMStateResult struct {
	Address              string       `json:"address"`
	Admins               []string     `json:"admins"`
	Paused               PausedResult `json:"paused"`
	SwellTreasury        string       `json:"swell_treasury"`
	SwETH                string       `json:"sweth"`
	DepositManager       string       `json:"deposit_manager"`
	NodeOperatorRegistry string       `json:"node_operator_registry"`
}

// RescueResult is returned by acm_rescueERC20.
type RescueResult struct {
	Amount   string `json:"amount"`
	Treasury string `json:"treasury"`
}

// WhitelistAddResult is returned by whitelist_add and whitelist_batchAdd.
type WhitelistAddResult struct {
	Requested int `json:"requested"`
	Members   int `json:"members"`
}

// WhitelistInfoResult is returned by whitelist_getInfo.
type WhitelistInfoResult struct {
	Contract string `json:"contract"`
	Owner    string `json:"owner"`
	Members  int    `json:"members"`
}

// WhitelistListResult is returned by whitelist_list.
type WhitelistListResult struct {
	Addresses []string `json:"addresses"`
}

// DepositResult is returned by sweth_deposit.
type DepositResult struct {
	Minted string `json:"minted"`
}

// BalanceResult is returned by sweth_balanceOf and token_balanceOf.
type BalanceResult struct {
	Address string `json:"address"`
	Token   string `json:"token,omitempty"`
	Balance string `json:"balance"`
}

// SwETHInfoResult is returned by sweth_getInfo.
type SwETHInfoResult struct {
	Address           string `json:"address"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	Decimals          uint8  `json:"decimals"`
	TotalSupply       string `json:"total_supply"`
	TotalPooledAsset  string `json:"total_pooled_asset"`
	TotalETHDeposited string `json:"total_eth_deposited"`
	SwETHToETHRate    string `json:"sweth_to_eth_rate"`
	ETHToSwETHRate    string `json:"eth_to_sweth_rate"`
	Holders           int    `json:"holders"`
	StateRoot         string `json:"state_root"`
}

// TokenInfoResult is returned by token_getInfo and used in token_list.
type TokenInfoResult struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	Creator     string `json:"creator"`
	TotalSupply string `json:"total_supply"`
}

// TokenListResult is returned by token_list.
type TokenListResult struct {
	Tokens []TokenInfoResult `json:"tokens"`
}

// LogResult is a journal entry with its decoded arguments.
type LogResult struct {
	events.Log
	Args interface{} `json:"args,omitempty"` // decoded event fields
}

// LogsResult is returned by events_getLogs.
type LogsResult struct {
	Logs []LogResult `json:"logs"`
	Head uint64      `json:"head"`
}

// ProtocolInfo describes the deployment served by a node.
type ProtocolInfo struct {
	Version     string   `json:"version"`
	Admin       string   `json:"admin"`
	Treasury    string   `json:"treasury"`
	Manager     string   `json:"manager"`
	SwETH       string   `json:"sweth"`
	MinDeposit  string   `json:"min_deposit"`
	DevAccounts []string `json:"dev_accounts,omitempty"`
}

// ProtocolInfoResult is returned by protocol_getInfo.
type ProtocolInfoResult struct {
	ProtocolInfo
	Events uint64 `json:"events"`
}
