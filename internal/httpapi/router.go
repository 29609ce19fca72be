package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/virtualtd/league-engine/internal/metrics"
)

// NewRouter registers the read API routes with logging middleware.
func NewRouter(handler *Handler, logger *slog.Logger, recorder *metrics.Recorder) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", handler.Health).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handler.Ready).Methods(http.MethodGet)
	r.HandleFunc("/standings", handler.Standings).Methods(http.MethodGet)
	r.HandleFunc("/seasons", handler.Seasons).Methods(http.MethodGet)
	r.HandleFunc("/seasons/{season:[0-9]+}", handler.SeasonByNumber).Methods(http.MethodGet)
	r.HandleFunc("/seasons/{season:[0-9]+}/transfers", handler.SeasonTransfers).Methods(http.MethodGet)
	r.HandleFunc("/players/{id}/transfers", handler.PlayerTransfers).Methods(http.MethodGet)

	return LoggingMiddleware(logger, recorder, r)
}
