// Package rpc implements the JSON-RPC 2.0 API server.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/swell-network/swell-core/config"
	"github.com/swell-network/swell-core/internal/access"
	"github.com/swell-network/swell-core/internal/events"
	klog "github.com/swell-network/swell-core/internal/log"
	"github.com/swell-network/swell-core/internal/sweth"
	"github.com/swell-network/swell-core/internal/token"
	"github.com/swell-network/swell-core/internal/whitelist"
	"github.com/swell-network/swell-core/pkg/revert"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// Backend groups the protocol components served over RPC.
type Backend struct {
	Access    *access.Manager
	Whitelist *whitelist.Registry
	SwETH     *sweth.Engine
	Tokens    *token.Ledger
	Journal   *events.Journal
}

// Server is the JSON-RPC 2.0 HTTP server.
type Server struct {
	addr        string
	acm         *access.Manager
	whitelist   *whitelist.Registry
	engine      *sweth.Engine
	tokens      *token.Ledger
	journal     *events.Journal
	info        ProtocolInfo
	metrics     http.Handler // nil = /metrics disabled.
	server      *http.Server
	logger      zerolog.Logger
	ln          net.Listener
	allowedNets []*net.IPNet // Empty = allow all.
	corsOrigins []string     // Empty = no CORS headers.
}

// New creates a new RPC server. The rpcCfg parameter controls IP filtering
// and CORS. A zero-value RPCConfig allows all IPs and disables CORS.
func New(addr string, b Backend, rpcCfg ...config.RPCConfig) *Server {
	s := &Server{
		addr:      addr,
		acm:       b.Access,
		whitelist: b.Whitelist,
		engine:    b.SwETH,
		tokens:    b.Tokens,
		journal:   b.Journal,
		info:      ProtocolInfo{Version: config.Version},
		logger:    klog.RPC,
	}

	if len(rpcCfg) > 0 {
		s.allowedNets = parseAllowedIPs(rpcCfg[0].AllowedIPs)
		s.corsOrigins = rpcCfg[0].CORSOrigins
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	mux.HandleFunc("/metrics", s.handleMetrics)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// parseAllowedIPs converts string IP/CIDR entries into net.IPNet.
func parseAllowedIPs(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		_, ipNet, err := net.ParseCIDR(entry)
		if err == nil {
			nets = append(nets, ipNet)
			continue
		}
		// Try as a single IP (add /32 or /128).
		ip := net.ParseIP(entry)
		if ip == nil {
			continue
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// Start begins listening and serving in a background goroutine.
// It returns immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("rpc listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("RPC server error")
		}
	}()

	return nil
}

// Addr returns the listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// SetProtocolInfo sets the deployment description returned by
// protocol_getInfo.
func (s *Server) SetProtocolInfo(info ProtocolInfo) {
	if info.Version == "" {
		info.Version = config.Version
	}
	s.info = info
}

// SetMetricsHandler enables /metrics. Call before Start.
func (s *Server) SetMetricsHandler(h http.Handler) {
	s.metrics = h
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil || !s.allowed(r) {
		http.NotFound(w, r)
		return
	}
	s.metrics.ServeHTTP(w, r)
}

// allowed applies IP filtering to r.
func (s *Server) allowed(r *http.Request) bool {
	if len(s.allowedNets) == 0 {
		return true
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	return ip != nil && s.isIPAllowed(ip)
}

// handleRequest is the main HTTP handler for JSON-RPC requests.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if !s.allowed(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	// CORS headers.
	s.setCORSHeaders(w, r)

	// Handle CORS preflight.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, nil, CodeInvalidRequest, "only POST method is allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeError(w, nil, CodeParseError, "failed to read request body")
		return
	}
	if len(body) > maxBodySize {
		writeError(w, nil, CodeInvalidRequest, "request body too large")
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, nil, CodeParseError, "invalid JSON")
		return
	}

	if req.JSONRPC != "2.0" {
		writeError(w, req.ID, CodeInvalidRequest, "jsonrpc must be \"2.0\"")
		return
	}

	result, rpcErr := s.dispatch(&req)
	if rpcErr != nil {
		s.logger.Debug().Str("method", req.Method).Int("code", rpcErr.Code).Msg(rpcErr.Message)
		writeJSON(w, Response{
			JSONRPC: "2.0",
			Error:   rpcErr,
			ID:      req.ID,
		})
		return
	}

	writeJSON(w, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      req.ID,
	})
}

// dispatch routes a request to the appropriate handler.
func (s *Server) dispatch(req *Request) (interface{}, *Error) {
	switch req.Method {
	case "protocol_getInfo":
		return s.handleProtocolGetInfo(req)
	case "acm_getState":
		return s.handleACMGetState(req)
	case "acm_paused":
		return s.handleACMPaused(req)
	case "acm_pause":
		return s.handleACMPause(req, true)
	case "acm_unpause":
		return s.handleACMPause(req, false)
	case "acm_setSwellTreasury":
		return s.handleACMSet(req, s.acm.SetSwellTreasury)
	case "acm_setSwETH":
		return s.handleACMSet(req, s.acm.SetSwETH)
	case "acm_setDepositManager":
		return s.handleACMSet(req, s.acm.SetDepositManager)
	case "acm_setNodeOperatorRegistry":
		return s.handleACMSet(req, s.acm.SetNodeOperatorRegistry)
	case "acm_rescueERC20", "acm_withdrawERC20":
		return s.handleACMRescueERC20(req)
	case "acm_grantAdmin":
		return s.handleACMSet(req, s.acm.GrantAdmin)
	case "acm_revokeAdmin":
		return s.handleACMSet(req, s.acm.RevokeAdmin)
	case "acm_isAdmin":
		return s.handleACMIsAdmin(req)
	case "whitelist_getInfo":
		return s.handleWhitelistGetInfo(req)
	case "whitelist_add":
		return s.handleWhitelistAdd(req)
	case "whitelist_batchAdd":
		return s.handleWhitelistBatchAdd(req)
	case "whitelist_isWhitelisted":
		return s.handleWhitelistIsWhitelisted(req)
	case "whitelist_list":
		return s.handleWhitelistList(req)
	case "whitelist_transferOwnership":
		return s.handleWhitelistTransferOwnership(req)
	case "sweth_getInfo":
		return s.handleSwETHGetInfo(req)
	case "sweth_deposit":
		return s.handleSwETHDeposit(req)
	case "sweth_transfer":
		return s.handleSwETHTransfer(req)
	case "sweth_reprice":
		return s.handleSwETHReprice(req)
	case "sweth_balanceOf":
		return s.handleSwETHBalanceOf(req)
	case "token_register":
		return s.handleTokenRegister(req)
	case "token_mint":
		return s.handleTokenMint(req)
	case "token_transfer":
		return s.handleTokenTransfer(req)
	case "token_balanceOf":
		return s.handleTokenBalanceOf(req)
	case "token_getInfo":
		return s.handleTokenGetInfo(req)
	case "token_list":
		return s.handleTokenList(req)
	case "events_getLogs":
		return s.handleEventsGetLogs(req)
	default:
		return nil, &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)}
	}
}

// writeJSON writes a JSON-RPC response.
func writeJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writeError writes a JSON-RPC error response.
func writeError(w http.ResponseWriter, id interface{}, code int, message string) {
	writeJSON(w, Response{
		JSONRPC: "2.0",
		Error:   &Error{Code: code, Message: message},
		ID:      id,
	})
}

// isIPAllowed checks if the IP is in the allowed networks list.
func (s *Server) isIPAllowed(ip net.IP) bool {
	for _, n := range s.allowedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// setCORSHeaders adds CORS headers based on the configured origins.
func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if len(s.corsOrigins) == 0 {
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}

	// Check if origin is allowed.
	allowed := false
	for _, o := range s.corsOrigins {
		if o == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			allowed = true
			break
		}
		if o == origin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			allowed = true
			break
		}
	}

	if allowed {
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	}
}

// parseParams unmarshals the request params into the given target.
func parseParams(req *Request, target interface{}) *Error {
	if req.Params == nil {
		return &Error{Code: CodeInvalidParams, Message: "params required"}
	}

	data, err := json.Marshal(req.Params)
	if err != nil {
		return &Error{Code: CodeInvalidParams, Message: "invalid params"}
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

// opError maps an operation failure to a JSON-RPC error. Protocol
// failures become execution reverts carrying the custom-error selector.
func opError(err error) *Error {
	if kind, ok := revert.As(err); ok {
		return &Error{
			Code:    CodeExecutionReverted,
			Message: "execution reverted: " + kind.Signature(),
			Data:    kind.SelectorHex(),
		}
	}
	if errors.Is(err, access.ErrUnknownCategory) {
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	return &Error{Code: CodeInternalError, Message: err.Error()}
}
