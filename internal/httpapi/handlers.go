// Package httpapi exposes the simulation's read surface over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/virtualtd/league-engine/internal/driver"
	"github.com/virtualtd/league-engine/internal/logging"
	"github.com/virtualtd/league-engine/internal/market"
	"github.com/virtualtd/league-engine/internal/store"
	"github.com/virtualtd/league-engine/internal/store/sqlite"
)

// Archive is the durable season history behind the in-memory store.
type Archive interface {
	Season(ctx context.Context, season int) (driver.SeasonReport, error)
	SeasonTransfers(ctx context.Context, season int) ([]market.Transfer, error)
	PlayerTransfers(ctx context.Context, playerID string) ([]market.Transfer, error)
}

// Status reports simulation progress for readiness checks.
type Status struct {
	Ready            bool   `json:"ready"`
	SeasonsCompleted int    `json:"seasons_completed"`
	LastError        string `json:"last_error,omitempty"`
}

// Handler wires HTTP routes to the season stores.
type Handler struct {
	mem      *store.MemoryStore
	archive  Archive
	logger   *slog.Logger
	statusFn func() Status
}

// NewHandler constructs a Handler. The archive may be nil; queries then fall
// back to the in-memory store only.
func NewHandler(mem *store.MemoryStore, archive Archive, logger *slog.Logger, statusFn func() Status) *Handler {
	return &Handler{
		mem:      mem,
		archive:  archive,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, Status{Ready: true}, h.logger)
		return
	}
	status := h.statusFn()
	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status, h.logger)
}

// Standings returns the final table of the most recent completed season.
func (h *Handler) Standings(w http.ResponseWriter, r *http.Request) {
	report, ok := h.mem.Latest()
	if !ok {
		writeError(w, r, http.StatusNotFound, "no completed seasons", h.logger)
		return
	}
	logger := loggerFromContext(r, h.logger)
	logging.Info(logger, "served standings",
		logging.FieldSeason, report.Season,
		logging.FieldCount, len(report.FinalTable))
	writeJSON(w, http.StatusOK, map[string]any{
		"season": report.Season,
		"table":  report.FinalTable,
	}, h.logger)
}

// Seasons lists completed season numbers.
func (h *Handler) Seasons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"seasons": h.mem.Seasons()}, h.logger)
}

// SeasonByNumber returns one season's full report, preferring the in-memory
// copy and falling back to the archive.
func (h *Handler) SeasonByNumber(w http.ResponseWriter, r *http.Request) {
	seasonN, ok := h.seasonParam(w, r)
	if !ok {
		return
	}

	if report, found := h.mem.Season(seasonN); found {
		writeJSON(w, http.StatusOK, report, h.logger)
		return
	}
	if h.archive != nil {
		report, err := h.archive.Season(r.Context(), seasonN)
		if err == nil {
			writeJSON(w, http.StatusOK, report, h.logger)
			return
		}
		if !errors.Is(err, sqlite.ErrSeasonNotFound) {
			writeError(w, r, http.StatusInternalServerError, "archive unavailable", h.logger)
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "season not found", h.logger)
}

// SeasonTransfers returns the transfers executed during one season.
func (h *Handler) SeasonTransfers(w http.ResponseWriter, r *http.Request) {
	seasonN, ok := h.seasonParam(w, r)
	if !ok {
		return
	}

	if h.archive != nil {
		transfers, err := h.archive.SeasonTransfers(r.Context(), seasonN)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "archive unavailable", h.logger)
			return
		}
		if len(transfers) > 0 {
			writeJSON(w, http.StatusOK, map[string]any{"transfers": transfers}, h.logger)
			return
		}
	}
	if report, found := h.mem.Season(seasonN); found {
		writeJSON(w, http.StatusOK, map[string]any{"transfers": report.Transfers}, h.logger)
		return
	}
	writeError(w, r, http.StatusNotFound, "season not found", h.logger)
}

// PlayerTransfers returns every archived transfer involving one player.
func (h *Handler) PlayerTransfers(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["id"]
	if playerID == "" {
		writeError(w, r, http.StatusBadRequest, "missing player id", h.logger)
		return
	}
	if h.archive == nil {
		writeError(w, r, http.StatusNotFound, "no transfer archive", h.logger)
		return
	}
	transfers, err := h.archive.PlayerTransfers(r.Context(), playerID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "archive unavailable", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transfers": transfers}, h.logger)
}

func (h *Handler) seasonParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := mux.Vars(r)["season"]
	seasonN, err := strconv.Atoi(raw)
	if err != nil || seasonN < 1 {
		writeError(w, r, http.StatusBadRequest, "invalid season number", h.logger)
		return 0, false
	}
	return seasonN, true
}
