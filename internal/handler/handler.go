package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/launchlog/docgate/internal/aggregate"
	"github.com/launchlog/docgate/internal/config"
	"github.com/launchlog/docgate/internal/encoding"
	"github.com/launchlog/docgate/internal/provider"
	"github.com/launchlog/docgate/pkg/logger"
)

// GatewayHandler exposes the gateway's operations over HTTP
type GatewayHandler struct {
	config     *config.Config
	registry   *provider.Registry
	aggregator *aggregate.Aggregator
	format     encoding.Format
	ops        []provider.Operation
	opIndex    map[string]provider.Operation
}

// NewGatewayHandler creates a new gateway handler
func NewGatewayHandler(cfg *config.Config, registry *provider.Registry) *GatewayHandler {
	h := &GatewayHandler{
		config:     cfg,
		registry:   registry,
		aggregator: aggregate.New(registry),
		format:     encoding.ParseFormat(cfg.Encoding.Format),
		opIndex:    make(map[string]provider.Operation),
	}

	// Operation table: the aggregate lookup first, then every provider
	// operation in registry order.
	ops := append([]provider.Operation{h.aggregator.Operation()}, registry.Operations()...)
	for _, op := range ops {
		h.ops = append(h.ops, op)
		h.opIndex[op.Name] = op
	}

	return h
}

// ServeHTTP handles all HTTP requests
func (h *GatewayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	traceID := extractTraceID(r)
	if traceID == "" {
		traceID = uuid.NewString()
	}

	log := logger.WithTraceID(traceID)
	log.Info("request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote_addr", r.RemoteAddr),
	)

	w.Header().Set("X-Trace-ID", traceID)

	switch {
	case r.URL.Path == "/health":
		h.handleHealth(w, r, log)
	case r.URL.Path == "/v1/providers":
		h.handleProviders(w, r, log)
	case r.URL.Path == "/v1/tools":
		h.handleListTools(w, r, log)
	case strings.HasPrefix(r.URL.Path, "/v1/tools/"):
		name := strings.TrimPrefix(r.URL.Path, "/v1/tools/")
		h.handleToolCall(w, r, name, log)
	default:
		h.handleError(w, http.StatusNotFound, "not_found", "Endpoint not found", log)
	}

	log.Info("request completed",
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
}

// handleHealth handles health check requests
func (h *GatewayHandler) handleHealth(w http.ResponseWriter, r *http.Request, log *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

// handleProviders returns the metadata of every registered provider
func (h *GatewayHandler) handleProviders(w http.ResponseWriter, r *http.Request, log *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"providers": h.registry.Metadata(),
	})
}

// toolInfo describes one callable operation
type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// handleListTools returns the callable operation surface
func (h *GatewayHandler) handleListTools(w http.ResponseWriter, r *http.Request, log *zap.Logger) {
	tools := make([]toolInfo, 0, len(h.ops))
	for _, op := range h.ops {
		tools = append(tools, toolInfo{Name: op.Name, Description: op.Description})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"tools": tools,
	})
}

// handleToolCall dispatches POST /v1/tools/{name}
func (h *GatewayHandler) handleToolCall(w http.ResponseWriter, r *http.Request, name string, log *zap.Logger) {
	if r.Method != http.MethodPost {
		h.handleError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only POST method is allowed", log)
		return
	}

	op, ok := h.opIndex[name]
	if !ok {
		h.handleError(w, http.StatusNotFound, "unknown_tool", "Unknown tool: "+name, log)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.handleError(w, http.StatusBadRequest, "read_error", "Failed to read request body", log)
		return
	}
	defer r.Body.Close()

	var req provider.Request
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.handleError(w, http.StatusBadRequest, "parse_error", "Invalid JSON request body", log)
			return
		}
	}

	log = log.With(zap.String("tool", name))
	log.Debug("tool call", zap.String("query", req.Query), zap.String("library", req.Library))

	data, err := op.Call(r.Context(), req)
	if err != nil {
		status, code := classifyError(err)
		h.handleError(w, status, code, err.Error(), log)
		return
	}

	encoded, err := encoding.Encode(data, h.format)
	if err != nil {
		h.handleError(w, http.StatusInternalServerError, "encode_error", "Failed to encode result", log)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"result": encoded,
	})
}

// classifyError maps operation failures onto HTTP statuses: invalid
// input is the caller's fault, everything else is an upstream failure.
func classifyError(err error) (int, string) {
	if errors.Is(err, provider.ErrEmptyQuery) || errors.Is(err, provider.ErrQueryTooLong) {
		return http.StatusBadRequest, "validation_error"
	}
	return http.StatusBadGateway, "provider_error"
}

// handleError writes a JSON error response
func (h *GatewayHandler) handleError(w http.ResponseWriter, status int, code, message string, log *zap.Logger) {
	log.Warn("request failed",
		zap.Int("status", status),
		zap.String("code", code),
		zap.String("message", message),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// extractTraceID checks the headers clients commonly use
func extractTraceID(r *http.Request) string {
	for _, header := range []string{"X-Trace-ID", "X-Request-ID"} {
		if v := r.Header.Get(header); v != "" {
			return v
		}
	}
	return ""
}
