package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/fio-node/internal/api/middleware"
	"github.com/dvloznov/fio-node/internal/fio"
	"github.com/dvloznov/fio-node/internal/logger"
	"github.com/dvloznov/fio-node/internal/node"
)

// maxRequestBytes caps the size of an execute request body.
const maxRequestBytes = 8 << 20

// Executor runs one node execution.
type Executor interface {
	Execute(ctx context.Context, req node.ExecuteRequest) ([]node.Output, error)
}

// NodeHandler handles node execution endpoints.
type NodeHandler struct {
	executor       Executor
	continueOnFail bool
	log            zerolog.Logger
}

// NewNodeHandler creates a new node handler. continueOnFail applies to
// requests that do not set it.
func NewNodeHandler(executor Executor, continueOnFail bool, log zerolog.Logger) *NodeHandler {
	return &NodeHandler{
		executor:       executor,
		continueOnFail: continueOnFail,
		log:            log,
	}
}

// Execute handles POST /api/execute
func (h *NodeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Parameters     node.Parameters `json:"parameters"`
		Items          []node.Item     `json:"items"`
		ContinueOnFail *bool           `json:"continueOnFail"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Parameters.Operation == "" {
		req.Parameters.Operation = node.DefaultOperation
	}

	// A run without input still executes once, as a host would with a manual trigger.
	if len(req.Items) == 0 {
		req.Items = []node.Item{{JSON: map[string]any{}}}
	}

	continueOnFail := h.continueOnFail
	if req.ContinueOnFail != nil {
		continueOnFail = *req.ContinueOnFail
	}

	reqLog := h.log.With().Str("request_id", middleware.RequestIDFrom(r.Context())).Logger()
	ctx := logger.WithContext(r.Context(), reqLog)

	outputs, err := h.executor.Execute(ctx, node.ExecuteRequest{
		Parameters:     req.Parameters,
		Items:          req.Items,
		ContinueOnFail: continueOnFail,
	})
	if err != nil {
		status := StatusFor(err)
		reqLog.Error().
			Err(err).
			Str("operation", string(req.Parameters.Operation)).
			Int("status", status).
			Msg("Node execution failed")
		middleware.WriteError(w, status, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": outputs,
		"count": len(outputs),
	})
}

// Columns handles GET /api/columns
func (h *NodeHandler) Columns(w http.ResponseWriter, r *http.Request) {
	columns := fio.Columns()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"columns": columns,
		"count":   len(columns),
	})
}

// StatusFor maps an execution error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, fio.ErrMissingField),
		errors.Is(err, fio.ErrInvalidAmount),
		errors.Is(err, fio.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, fio.ErrAccessFault),
		errors.Is(err, fio.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
