package rpc

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/swell-network/swell-core/config"
	"github.com/swell-network/swell-core/internal/access"
	"github.com/swell-network/swell-core/internal/events"
	"github.com/swell-network/swell-core/internal/token"
)

// maxLogs caps a single events_getLogs response.
const maxLogs = 1000

// ── Protocol ────────────────────────────────────────────────────────────

func (s *Server) handleProtocolGetInfo(_ *Request) (interface{}, *Error) {
	return &ProtocolInfoResult{
		ProtocolInfo: s.info,
		Events:       s.journal.Len(),
	}, nil
}

// ── Access control manager ──────────────────────────────────────────────

func (s *Server) handleACMGetState(_ *Request) (interface{}, *Error) {
	ps := s.acm.PauseState()
	admins := s.acm.Admins()
	res := &ACMStateResult{
		Address:              s.acm.Address().Hex(),
		Admins:               make([]string, len(admins)),
		Paused:               PausedResult{Core: ps.Core, Bot: ps.Bot, Operator: ps.Operator, Withdrawals: ps.Withdrawals},
		SwellTreasury:        s.acm.SwellTreasury().Hex(),
		SwETH:                s.acm.SwETH().Hex(),
		DepositManager:       s.acm.DepositManager().Hex(),
		NodeOperatorRegistry: s.acm.NodeOperatorRegistry().Hex(),
	}
	for i, a := range admins {
		res.Admins[i] = a.Hex()
	}
	return res, nil
}

func (s *Server) handleACMPaused(req *Request) (interface{}, *Error) {
	var params CategoryParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	c, err := access.ParseCategory(params.Category)
	if err != nil {
		return nil, opError(err)
	}
	return s.acm.Paused(c), nil
}

func (s *Server) handleACMPause(req *Request, paused bool) (interface{}, *Error) {
	var params PauseParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	from, rpcErr := decodeAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	c, err := access.ParseCategory(params.Category)
	if err != nil {
		return nil, opError(err)
	}

	if paused {
		err = s.acm.Pause(from, c)
	} else {
		err = s.acm.Unpause(from, c)
	}
	if err != nil {
		return nil, opError(err)
	}
	return paused, nil
}

// handleACMSet serves every admin call of the form fn(caller, address).
func (s *Server) handleACMSet(req *Request, fn func(caller, addr common.Address) error) (interface{}, *Error) {
	from, addr, rpcErr := parseSetAddress(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := fn(from, addr); err != nil {
		return nil, opError(err)
	}
	return true, nil
}

func (s *Server) handleACMRescueERC20(req *Request) (interface{}, *Error) {
	var params RescueParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	from, rpcErr := decodeAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	tok, rpcErr := decodeAddress("token", params.Token)
	if rpcErr != nil {
		return nil, rpcErr
	}

	amount, err := s.acm.RescueERC20(from, tok)
	if err != nil {
		return nil, opError(err)
	}
	return &RescueResult{Amount: amount.Dec(), Treasury: s.acm.SwellTreasury().Hex()}, nil
}

func (s *Server) handleACMIsAdmin(req *Request) (interface{}, *Error) {
	addr, rpcErr := parseAddressParam(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return s.acm.IsAdmin(addr), nil
}

// ── Whitelist ───────────────────────────────────────────────────────────

func (s *Server) handleWhitelistGetInfo(_ *Request) (interface{}, *Error) {
	return &WhitelistInfoResult{
		Contract: s.whitelist.Contract().Hex(),
		Owner:    s.whitelist.Owner().Hex(),
		Members:  s.whitelist.Len(),
	}, nil
}

func (s *Server) handleWhitelistAdd(req *Request) (interface{}, *Error) {
	from, addr, rpcErr := parseSetAddress(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.whitelist.AddToWhitelist(from, addr); err != nil {
		return nil, opError(err)
	}
	return &WhitelistAddResult{Requested: 1, Members: s.whitelist.Len()}, nil
}

func (s *Server) handleWhitelistBatchAdd(req *Request) (interface{}, *Error) {
	var params BatchAddParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	from, rpcErr := decodeAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	addrs := make([]common.Address, len(params.Addresses))
	for i, a := range params.Addresses {
		addr, rpcErr := decodeAddress(fmt.Sprintf("addresses[%d]", i), a)
		if rpcErr != nil {
			return nil, rpcErr
		}
		addrs[i] = addr
	}

	if err := s.whitelist.BatchAddToWhitelist(from, addrs); err != nil {
		return nil, opError(err)
	}
	return &WhitelistAddResult{Requested: len(addrs), Members: s.whitelist.Len()}, nil
}

func (s *Server) handleWhitelistIsWhitelisted(req *Request) (interface{}, *Error) {
	addr, rpcErr := parseAddressParam(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return s.whitelist.IsWhitelisted(addr), nil
}

func (s *Server) handleWhitelistList(_ *Request) (interface{}, *Error) {
	members, err := s.whitelist.List()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("list whitelist: %v", err)}
	}
	res := &WhitelistListResult{Addresses: make([]string, len(members))}
	for i, m := range members {
		res.Addresses[i] = m.Hex()
	}
	return res, nil
}

func (s *Server) handleWhitelistTransferOwnership(req *Request) (interface{}, *Error) {
	from, addr, rpcErr := parseSetAddress(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.whitelist.TransferOwnership(from, addr); err != nil {
		return nil, opError(err)
	}
	return true, nil
}

// ── swETH ───────────────────────────────────────────────────────────────

func (s *Server) handleSwETHGetInfo(_ *Request) (interface{}, *Error) {
	e := s.engine
	return &SwETHInfoResult{
		Address:           e.Address().Hex(),
		Name:              e.Name(),
		Symbol:            e.Symbol(),
		Decimals:          e.Decimals(),
		TotalSupply:       e.TotalSupply().Dec(),
		TotalPooledAsset:  e.TotalPooledAsset().Dec(),
		TotalETHDeposited: e.TotalETHDeposited().Dec(),
		SwETHToETHRate:    e.SwETHToETHRate().Dec(),
		ETHToSwETHRate:    e.ETHToSwETHRate().Dec(),
		Holders:           e.Holders(),
		StateRoot:         e.StateRoot().Hex(),
	}, nil
}

func (s *Server) handleSwETHDeposit(req *Request) (interface{}, *Error) {
	var params DepositParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	from, rpcErr := decodeAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	value, rpcErr := decodeAmount("value", params.Value)
	if rpcErr != nil {
		return nil, rpcErr
	}

	minted, err := s.engine.Deposit(from, value)
	if err != nil {
		return nil, opError(err)
	}
	return &DepositResult{Minted: minted.Dec()}, nil
}

func (s *Server) handleSwETHTransfer(req *Request) (interface{}, *Error) {
	var params TransferParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	from, to, amount, rpcErr := decodeTransfer(&params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.engine.Transfer(from, to, amount); err != nil {
		return nil, opError(err)
	}
	return true, nil
}

func (s *Server) handleSwETHReprice(req *Request) (interface{}, *Error) {
	var params RepriceParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	from, rpcErr := decodeAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	total, rpcErr := decodeAmount("total", params.Total)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.engine.Reprice(from, total); err != nil {
		return nil, opError(err)
	}
	return s.engine.SwETHToETHRate().Dec(), nil
}

func (s *Server) handleSwETHBalanceOf(req *Request) (interface{}, *Error) {
	addr, rpcErr := parseAddressParam(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return &BalanceResult{Address: addr.Hex(), Balance: s.engine.BalanceOf(addr).Dec()}, nil
}

// ── Token ledger ────────────────────────────────────────────────────────

func (s *Server) handleTokenRegister(req *Request) (interface{}, *Error) {
	var params TokenRegisterParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	from, rpcErr := decodeAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if strings.TrimSpace(params.Symbol) == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "symbol is required"}
	}

	var addr common.Address
	if params.Address != "" {
		addr, rpcErr = decodeAddress("address", params.Address)
		if rpcErr != nil {
			return nil, rpcErr
		}
	} else {
		// Next CREATE address of the caller after its existing tokens.
		list, err := s.tokens.List()
		if err != nil {
			return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("list tokens: %v", err)}
		}
		created := 0
		for _, t := range list {
			if t.Creator == from {
				created++
			}
		}
		addr = token.DeriveAddress(from, uint64(config.NonceFirstToken+created))
	}

	meta := token.Metadata{Name: params.Name, Symbol: params.Symbol, Decimals: params.Decimals, Creator: from}
	if err := s.tokens.Register(addr, meta); err != nil {
		return nil, opError(err)
	}
	return s.tokenInfo(addr, meta), nil
}

func (s *Server) handleTokenMint(req *Request) (interface{}, *Error) {
	var params TokenMintParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	tok, rpcErr := decodeAddress("token", params.Token)
	if rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := decodeAddress("to", params.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := decodeAmount("amount", params.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.tokens.Mint(tok, to, amount); err != nil {
		return nil, opError(err)
	}
	return &BalanceResult{Address: to.Hex(), Token: tok.Hex(), Balance: s.tokens.BalanceOf(tok, to).Dec()}, nil
}

func (s *Server) handleTokenTransfer(req *Request) (interface{}, *Error) {
	var params TransferParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	tok, rpcErr := decodeAddress("token", params.Token)
	if rpcErr != nil {
		return nil, rpcErr
	}
	from, to, amount, rpcErr := decodeTransfer(&params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.tokens.Transfer(tok, from, to, amount); err != nil {
		return nil, opError(err)
	}
	return true, nil
}

func (s *Server) handleTokenBalanceOf(req *Request) (interface{}, *Error) {
	var params TokenBalanceParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	tok, rpcErr := decodeAddress("token", params.Token)
	if rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := decodeAddress("address", params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return &BalanceResult{Address: addr.Hex(), Token: tok.Hex(), Balance: s.tokens.BalanceOf(tok, addr).Dec()}, nil
}

func (s *Server) handleTokenGetInfo(req *Request) (interface{}, *Error) {
	var params TokenParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	tok, rpcErr := decodeAddress("token", params.Token)
	if rpcErr != nil {
		return nil, rpcErr
	}
	meta, ok := s.tokens.Metadata(tok)
	if !ok {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("token %s not found", tok.Hex())}
	}
	return s.tokenInfo(tok, meta), nil
}

func (s *Server) handleTokenList(_ *Request) (interface{}, *Error) {
	list, err := s.tokens.List()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("list tokens: %v", err)}
	}
	res := &TokenListResult{Tokens: make([]TokenInfoResult, 0, len(list))}
	for _, t := range list {
		res.Tokens = append(res.Tokens, *s.tokenInfo(t.Address, t.Metadata))
	}
	return res, nil
}

func (s *Server) tokenInfo(addr common.Address, meta token.Metadata) *TokenInfoResult {
	return &TokenInfoResult{
		Address:     addr.Hex(),
		Name:        meta.Name,
		Symbol:      meta.Symbol,
		Decimals:    meta.Decimals,
		Creator:     meta.Creator.Hex(),
		TotalSupply: s.tokens.TotalSupply(addr).Dec(),
	}
}

// ── Events ──────────────────────────────────────────────────────────────

func (s *Server) handleEventsGetLogs(req *Request) (interface{}, *Error) {
	var params LogsParam
	if req.Params != nil {
		if err := parseParams(req, &params); err != nil {
			return nil, err
		}
	}

	f := events.Filter{FromSeq: params.FromSeq, Name: params.Event, Limit: params.Limit}
	if f.Limit <= 0 || f.Limit > maxLogs {
		f.Limit = maxLogs
	}
	if params.Address != "" {
		addr, rpcErr := decodeAddress("address", params.Address)
		if rpcErr != nil {
			return nil, rpcErr
		}
		f.Address = &addr
	}

	logs, err := s.journal.Logs(f)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("read logs: %v", err)}
	}
	res := &LogsResult{Logs: make([]LogResult, len(logs)), Head: s.journal.Len()}
	for i, l := range logs {
		res.Logs[i].Log = l
		if ev, err := events.Decode(l); err == nil {
			res.Logs[i].Args = ev
		}
	}
	return res, nil
}

// ── Param helpers ───────────────────────────────────────────────────────

func decodeAddress(field, s string) (common.Address, *Error) {
	if s == "" {
		return common.Address{}, &Error{Code: CodeInvalidParams, Message: field + " is required"}
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid %s: %q is not a 20-byte hex address", field, s)}
	}
	return common.HexToAddress(s), nil
}

func decodeAmount(field, s string) (*uint256.Int, *Error) {
	if s == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: field + " is required"}
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid %s: %v", field, err)}
	}
	return v, nil
}

func decodeTransfer(p *TransferParam) (from, to common.Address, amount *uint256.Int, rpcErr *Error) {
	if from, rpcErr = decodeAddress("from", p.From); rpcErr != nil {
		return
	}
	if to, rpcErr = decodeAddress("to", p.To); rpcErr != nil {
		return
	}
	amount, rpcErr = decodeAmount("amount", p.Amount)
	return
}

func parseAddressParam(req *Request) (common.Address, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return common.Address{}, err
	}
	return decodeAddress("address", params.Address)
}

func parseSetAddress(req *Request) (from, addr common.Address, rpcErr *Error) {
	var params SetAddressParam
	if rpcErr = parseParams(req, &params); rpcErr != nil {
		return
	}
	if from, rpcErr = decodeAddress("from", params.From); rpcErr != nil {
		return
	}
	addr, rpcErr = decodeAddress("address", params.Address)
	return
}
