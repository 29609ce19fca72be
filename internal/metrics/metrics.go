package metrics

import (
	"sync"
	"time"
)

type stageStats struct {
	runs         int
	errors       int
	matches      int
	transfers    int
	iterations   int
	lastDuration time.Duration
}

// Recorder captures lightweight, in-memory metrics about simulation stages.
// It is intentionally simple so it can be swapped for a real backend later.
type Recorder struct {
	mu    sync.Mutex
	stats map[string]*stageStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*stageStats),
		otel:  otel,
	}
}

// RecordHalf tracks one simulated half-season: duration, matches played, and
// whether it failed.
func (r *Recorder) RecordHalf(duration time.Duration, matches int, err error) {
	if r == nil {
		return
	}

	stats := r.ensureStats(StageHalf)
	stats.runs++
	stats.matches += matches
	stats.lastDuration = duration
	if err != nil {
		stats.errors++
	}
	if r.otel != nil {
		r.otel.recordHalf(duration, matches, err)
	}
}

// RecordWindow tracks one cleared transfer window: duration, clearing
// iterations, and executed transfers.
func (r *Recorder) RecordWindow(duration time.Duration, iterations, transfers int, err error) {
	if r == nil {
		return
	}

	stats := r.ensureStats(StageWindow)
	stats.runs++
	stats.iterations += iterations
	stats.transfers += transfers
	stats.lastDuration = duration
	if err != nil {
		stats.errors++
	}
	if r.otel != nil {
		r.otel.recordWindow(duration, iterations, transfers, err)
	}
}

// RecordSeason tracks one full season cycle.
func (r *Recorder) RecordSeason(duration time.Duration, err error) {
	if r == nil {
		return
	}

	stats := r.ensureStats(StageSeason)
	stats.runs++
	stats.lastDuration = duration
	if err != nil {
		stats.errors++
	}
	if r.otel != nil {
		r.otel.recordSeason(duration, err)
	}
}

// Runs returns the total runs recorded for a stage.
func (r *Recorder) Runs(stage string) int {
	return r.Snapshot(stage).Runs
}

// Errors returns the total failed runs recorded for a stage.
func (r *Recorder) Errors(stage string) int {
	return r.Snapshot(stage).Errors
}

// Matches returns the total matches recorded for a stage.
func (r *Recorder) Matches(stage string) int {
	return r.Snapshot(stage).Matches
}

// Transfers returns the total executed transfers recorded for a stage.
func (r *Recorder) Transfers(stage string) int {
	return r.Snapshot(stage).Transfers
}

// LastDuration returns the last recorded duration for a stage.
func (r *Recorder) LastDuration(stage string) time.Duration {
	return r.Snapshot(stage).LastDuration
}

// Snapshot returns a copy of the current stats for the stage.
type Snapshot struct {
	Runs         int
	Errors       int
	Matches      int
	Transfers    int
	Iterations   int
	LastDuration time.Duration
}

func (r *Recorder) Snapshot(stage string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	stats := r.snapshot(stage)
	return Snapshot{
		Runs:         stats.runs,
		Errors:       stats.errors,
		Matches:      stats.matches,
		Transfers:    stats.transfers,
		Iterations:   stats.iterations,
		LastDuration: stats.lastDuration,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

func (r *Recorder) ensureStats(stage string) *stageStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[stage]
	if !ok {
		stats = &stageStats{}
		r.stats[stage] = stats
	}
	return stats
}

func (r *Recorder) snapshot(stage string) stageStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stats, ok := r.stats[stage]; ok && stats != nil {
		return *stats
	}
	return stageStats{}
}
