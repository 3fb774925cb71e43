// Package server exposes the simulation over HTTP. Each run is advanced by
// the run manager under its own lock, so concurrent requests against the
// same run serialize there rather than here.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/config"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/run"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
)

// Fallback request-body limit when the configuration does not set one.
const maxDeclarationBytes = 1 << 16

type handler struct {
	logger  *zap.Logger
	cfg     *config.Configuration
	runs    *run.Manager
	version string
}

// NewHandler constructs the HTTP handler that serves the simulation API.
func NewHandler(logger *zap.Logger, cfg *config.Configuration, runs *run.Manager, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if version == "" {
		version = "dev"
	}

	h := &handler{logger: logger, cfg: cfg, runs: runs, version: version}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Get("/api/version", h.handleVersion)
	r.Get("/api/config", h.handleConfigExport)

	r.Route("/v1/runs", func(r chi.Router) {
		r.Post("/", h.handleCreateRun)
		r.Get("/{runID}", h.handleGetRun)
		r.Post("/{runID}/turns", h.handleAdvanceTurn)
		r.Get("/{runID}/turns", h.handleTurnHistory)
	})

	return r
}

type createRunResponse struct {
	RunID string             `json:"runId"`
	State state.CompanyState `json:"state"`
}

type turnRequest struct {
	Declaration string `json:"declaration"`
}

type turnResponse struct {
	Result   state.TurnResult `json:"result"`
	Duration string           `json:"duration"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	yamlBytes, err := h.cfg.MarshalYAMLBytes()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to encode configuration: %v", err), "server.handleConfigExport")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"configYaml": string(yamlBytes)})
}

func (h *handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	id, initial, err := h.runs.Create()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to create run: %v", err), "server.handleCreateRun")
		return
	}

	h.logger.Info("run created",
		zap.String("op", "server.handleCreateRun"),
		zap.String("run_id", id),
	)
	h.writeJSON(w, http.StatusCreated, createRunResponse{RunID: id, State: initial})
}

func (h *handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")
	current, err := h.runs.State(id)
	if err != nil {
		h.respondRunError(w, id, err, "server.handleGetRun")
		return
	}
	h.writeJSON(w, http.StatusOK, createRunResponse{RunID: id, State: current})
}

func (h *handler) handleAdvanceTurn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("failed to decode turn request: %v", err), "server.handleAdvanceTurn")
		return
	}

	result, err := h.runs.Advance(id, req.Declaration)
	if err != nil {
		h.respondRunError(w, id, err, "server.handleAdvanceTurn")
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("turn resolved",
		zap.String("op", "server.handleAdvanceTurn"),
		zap.String("run_id", id),
		zap.Int("turn_no", result.TurnNo),
		zap.Duration("duration", elapsed),
	)
	h.writeJSON(w, http.StatusOK, turnResponse{Result: result, Duration: elapsed.String()})
}

func (h *handler) handleTurnHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")
	history, err := h.runs.History(id)
	if err != nil {
		h.respondRunError(w, id, err, "server.handleTurnHistory")
		return
	}
	if history == nil {
		history = []state.TurnResult{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"runId": id,
		"turns": history,
	})
}

func (h *handler) maxBodyBytes() int64 {
	if h.cfg != nil && h.cfg.Server.MaxBodyBytes > 0 {
		return h.cfg.Server.MaxBodyBytes
	}
	return maxDeclarationBytes
}

func (h *handler) respondRunError(w http.ResponseWriter, id string, err error, op string) {
	status := http.StatusInternalServerError
	if errors.Is(err, run.ErrNotFound) {
		status = http.StatusNotFound
	}
	h.respondError(w, status, err.Error(), op)
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
