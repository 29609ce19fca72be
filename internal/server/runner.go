package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/virtualtd/league-engine/internal/driver"
	"github.com/virtualtd/league-engine/internal/httpapi"
	"github.com/virtualtd/league-engine/internal/logging"
	"github.com/virtualtd/league-engine/internal/snapshots"
	"github.com/virtualtd/league-engine/internal/store"
	"github.com/virtualtd/league-engine/internal/store/sqlite"
)

// runner executes the configured number of seasons in the background and
// feeds every completed season into the stores.
type runner struct {
	drv     *driver.Driver
	seasons int
	mem     *store.MemoryStore
	archive *sqlite.Store
	snaps   *snapshots.Writer
	logger  *slog.Logger

	mu        sync.Mutex
	completed int
	done      bool
	lastError string
}

func newRunner(drv *driver.Driver, seasons int, mem *store.MemoryStore, archive *sqlite.Store, snaps *snapshots.Writer, logger *slog.Logger) *runner {
	return &runner{
		drv:     drv,
		seasons: seasons,
		mem:     mem,
		archive: archive,
		snaps:   snaps,
		logger:  logger,
	}
}

// Run simulates seasons until the target count is reached or the context is
// cancelled. Callers should run this in a goroutine.
func (r *runner) Run(ctx context.Context) {
	for i := 0; i < r.seasons; i++ {
		if ctx.Err() != nil {
			r.finish(ctx.Err())
			return
		}
		report, err := r.drv.RunSeason(ctx)
		if err != nil {
			logging.Error(r.logger, "season failed", err)
			r.finish(err)
			return
		}
		r.persist(ctx, report)
	}
	r.finish(nil)
}

func (r *runner) persist(ctx context.Context, report *driver.SeasonReport) {
	r.mem.PutSeason(*report)

	if r.archive != nil {
		if err := r.archive.SaveSeason(ctx, *report); err != nil {
			logging.Error(r.logger, "season archive failed", err,
				logging.FieldSeason, report.Season)
		}
	}
	if r.snaps != nil {
		if err := r.snaps.WriteSeasonSnapshot(*report); err != nil {
			logging.Error(r.logger, "season snapshot failed", err,
				logging.FieldSeason, report.Season)
		}
	}

	r.mu.Lock()
	r.completed++
	r.mu.Unlock()

	logging.Info(r.logger, "season complete",
		logging.FieldSeason, report.Season,
		"transfers", len(report.Transfers))
}

func (r *runner) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
	if err != nil {
		r.lastError = err.Error()
	}
}

// Status reports simulation progress for the readiness endpoint. The service
// is ready once at least one season has been archived.
func (r *runner) Status() httpapi.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return httpapi.Status{
		Ready:            r.completed > 0 || r.done,
		SeasonsCompleted: r.completed,
		LastError:        r.lastError,
	}
}
