package rpc

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"abcommons/native/commons"
	"abcommons/native/curve"
	"abcommons/observability"
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
	codeNotInitialized = -32010
	codeSaleClosed     = -32011
	codePaymentError   = -32012
	codeCurveError     = -32013
)

// Server exposes the sale engine over JSON-RPC. Mutating methods require the
// bearer token from ABC_RPC_TOKEN; queries are open.
type Server struct {
	engine    *commons.Engine
	authToken string
	logger    *slog.Logger

	httpSrv *http.Server
}

func NewServer(engine *commons.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		authToken: strings.TrimSpace(os.Getenv("ABC_RPC_TOKEN")),
		logger:    logger,
	}
	// Built once here so Shutdown never races a Start running in another
	// goroutine.
	s.httpSrv = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router assembles the HTTP surface: the JSON-RPC endpoint at the root plus
// health and metrics for operators.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/", s.handle)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Start serves until the listener fails or Shutdown is called. Calling
// Shutdown first makes Start return immediately.
func (s *Server) Start(addr string) error {
	s.httpSrv.Addr = addr
	s.logger.Info("starting JSON-RPC server", "addr", addr)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
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

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// handle is the main request handler that routes to specific handlers.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	start := time.Now()
	outcome := "ok"
	defer func() {
		observability.SaleMetrics().RecordRequest(req.Method, outcome, time.Since(start).Seconds())
	}()

	switch req.Method {
	case "abc_buy":
		if authErr := s.requireAuth(r); authErr != nil {
			outcome = "unauthorized"
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		outcome = s.handleBuy(w, req)
	case "abc_burn":
		if authErr := s.requireAuth(r); authErr != nil {
			outcome = "unauthorized"
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		outcome = s.handleBurn(w, req)
	case "abc_curveInfo":
		outcome = s.handleCurveInfo(w, req)
	case "abc_phaseInfo":
		outcome = s.handlePhaseInfo(w, req)
	default:
		outcome = "not_found"
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("method %q not found", req.Method), nil)
	}
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "RPC authentication token not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials"}
	}
	return nil
}

func jsonUnmarshalStrict(data []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// writeEngineError maps engine sentinels onto JSON-RPC error codes and HTTP
// statuses. Anything unrecognised is reported as a server error.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) string {
	switch {
	case errors.Is(err, commons.ErrNotInitialized):
		writeError(w, http.StatusConflict, id, codeNotInitialized, err.Error(), nil)
		return "not_initialized"
	case errors.Is(err, commons.ErrSaleClosed), errors.Is(err, commons.ErrNotAllowlisted):
		writeError(w, http.StatusForbidden, id, codeSaleClosed, err.Error(), nil)
		return "rejected"
	case errors.Is(err, commons.ErrPayment), errors.Is(err, commons.ErrInvalidAmount), errors.Is(err, commons.ErrAddress):
		writeError(w, http.StatusBadRequest, id, codePaymentError, err.Error(), nil)
		return "bad_payment"
	case errors.Is(err, curve.ErrOverflow), errors.Is(err, curve.ErrDomain):
		writeError(w, http.StatusBadRequest, id, codeCurveError, err.Error(), nil)
		return "curve_error"
	case errors.Is(err, commons.ErrConfig), errors.Is(err, curve.ErrInvalidCurve), errors.Is(err, curve.ErrInvalidDecimals):
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, err.Error(), nil)
		return "bad_config"
	default:
		writeError(w, http.StatusInternalServerError, id, codeServerError, "operation failed", err.Error())
		return "error"
	}
}
