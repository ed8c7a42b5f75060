package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bountyboard/native/badge"
	"bountyboard/native/bounty"
	"bountyboard/native/token"
	"bountyboard/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

// Server exposes the bounty board over JSON-RPC 2.0. Write methods require
// the bearer token from BOUNTY_RPC_TOKEN when one is configured.
type Server struct {
	engine    *bounty.Engine
	badges    *badge.Ledger
	token     *token.Ledger
	authToken string
	log       *slog.Logger
}

// NewServer wires the RPC surface around the supplied engine and ledgers.
func NewServer(engine *bounty.Engine, badges *badge.Ledger, tok *token.Ledger, log *slog.Logger) *Server {
	authToken := strings.TrimSpace(os.Getenv("BOUNTY_RPC_TOKEN"))
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		engine:    engine,
		badges:    badges,
		token:     tok,
		authToken: authToken,
		log:       log,
	}
}

// Router builds the HTTP handler: the JSON-RPC endpoint at /, a liveness probe
// and the prometheus scrape endpoint.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handle)
	return r
}

// Start serves the router on the supplied address and blocks.
func (s *Server) Start(addr string) error {
	s.log.Info("starting JSON-RPC server", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeResult(w http.ResponseWriter, id int, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func writeError(w http.ResponseWriter, status, id, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(RPCResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	})
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return nil
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return &RPCError{Code: codeUnauthorized, Message: "unauthorized", Data: "bearer token required"}
	}
	supplied := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "unauthorized", Data: "invalid token"}
	}
	return nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, 0, codeParseError, "parse_error", err.Error())
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, 0, codeParseError, "parse_error", err.Error())
		return
	}
	if req.JSONRPC != jsonRPCVersion || strings.TrimSpace(req.Method) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "invalid_request", "jsonrpc 2.0 request expected")
		return
	}

	module, method := splitMethod(req.Method)
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.dispatch(recorder, r, &req)
	observability.ModuleMetrics().Observe(module, method, recorder.status, time.Since(start))
}

func splitMethod(method string) (string, string) {
	parts := strings.SplitN(method, "_", 2)
	if len(parts) != 2 {
		return method, ""
	}
	return parts[0], parts[1]
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	switch req.Method {
	case "bounty_create":
		s.handleBountyCreate(w, r, req)
	case "bounty_claim":
		s.handleBountyClaim(w, r, req)
	case "bounty_submit":
		s.handleBountySubmit(w, r, req)
	case "bounty_approve":
		s.handleBountyApprove(w, r, req)
	case "bounty_reject":
		s.handleBountyReject(w, r, req)
	case "bounty_cancel":
		s.handleBountyCancel(w, r, req)
	case "bounty_get":
		s.handleBountyGet(w, req)
	case "bounty_listOpen":
		s.handleBountyListOpen(w, req)
	case "bounty_listByRequester":
		s.handleBountyListByRequester(w, req)
	case "bounty_listByHelper":
		s.handleBountyListByHelper(w, req)
	case "bounty_escrowBalance":
		s.handleBountyEscrowBalance(w, req)
	case "badge_get":
		s.handleBadgeGet(w, req)
	case "badge_listByRecipient":
		s.handleBadgeListByRecipient(w, req)
	case "token_balanceOf":
		s.handleTokenBalanceOf(w, req)
	case "token_approve":
		s.handleTokenApprove(w, r, req)
	case "token_allowance":
		s.handleTokenAllowance(w, req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method_not_found", fmt.Sprintf("unknown method %s", req.Method))
	}
}
