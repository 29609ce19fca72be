// Package driver orchestrates the season cycle: half, window, mutation,
// half, window, mutation, season rollover. It is the sole owner of the season
// clock and the only component that evolves players.
package driver

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/virtualtd/league-engine/internal/clock"
	"github.com/virtualtd/league-engine/internal/domain/league"
	"github.com/virtualtd/league-engine/internal/domain/players"
	"github.com/virtualtd/league-engine/internal/market"
	"github.com/virtualtd/league-engine/internal/metrics"
	"github.com/virtualtd/league-engine/internal/season"
)

// CycleError wraps a fatal error with the season and phase it occurred in.
// Completed seasons' reports remain intact and queryable after one.
type CycleError struct {
	Season int
	Phase  clock.Phase
	Err    error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("season %d %s: %v", e.Season, e.Phase, e.Err)
}

func (e *CycleError) Unwrap() error { return e.Err }

// Config collects the driver's tuning and collaborators.
type Config struct {
	Seed          int64
	PlayerParams  players.Params
	OutcomeParams league.OutcomeParams
	MarketParams  market.Params
	Workers       int
	Decisions     Decisions
	Logger        *slog.Logger
	Metrics       *metrics.Recorder
}

// Driver runs a league through repeated season cycles.
type Driver struct {
	league    *league.League
	pool      *market.Pool
	clk       *clock.Clock
	rng       *rand.Rand
	cfg       Config
	decisions Decisions

	reports []*SeasonReport
}

// New builds a driver over a generated league and free-agent pool. All
// randomness (ability drift, injuries, match outcomes) derives from the
// single configured seed, so runs with equal seeds and equal decisions are
// exactly reproducible.
func New(l *league.League, pool *market.Pool, cfg Config) *Driver {
	if cfg.Decisions == nil {
		cfg.Decisions = PassivePolicy{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PlayerParams.MaxAge == 0 {
		cfg.PlayerParams = players.DefaultParams()
	}
	if cfg.OutcomeParams == (league.OutcomeParams{}) {
		cfg.OutcomeParams = league.DefaultOutcomeParams()
	}
	if cfg.MarketParams == (market.Params{}) {
		cfg.MarketParams = market.DefaultParams()
	}
	if pool == nil {
		pool = market.NewPool(nil)
	}
	return &Driver{
		league:    l,
		pool:      pool,
		clk:       clock.New(1),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		cfg:       cfg,
		decisions: cfg.Decisions,
	}
}

// Clock exposes the season clock read-only.
func (d *Driver) Clock() *clock.Clock { return d.clk }

// League returns the league under simulation.
func (d *Driver) League() *league.League { return d.league }

// Pool returns the free-agent pool.
func (d *Driver) Pool() *market.Pool { return d.pool }

// Reports returns every completed season's report in order.
func (d *Driver) Reports() []*SeasonReport {
	return append([]*SeasonReport(nil), d.reports...)
}

// Report returns the report for one completed season.
func (d *Driver) Report(seasonN int) (*SeasonReport, bool) {
	for _, r := range d.reports {
		if r.Season == seasonN {
			return r, true
		}
	}
	return nil, false
}

func (d *Driver) advance(to clock.Phase) error {
	return d.clk.Advance(to)
}

func (d *Driver) logInfo(msg string, args ...any) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Info(msg, args...)
	}
}

func (d *Driver) logWarn(msg string, args ...any) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Warn(msg, args...)
	}
}

// SeasonReport is everything one completed season produced.
type SeasonReport struct {
	Season     int                `json:"season"`
	FinalTable []league.Row       `json:"final_table"`
	FirstHalf  *season.HalfReport `json:"first_half"`
	SecondHalf *season.HalfReport `json:"second_half"`
	Winter     *market.Report     `json:"winter_window"`
	Summer     *market.Report     `json:"summer_window"`
	Players    []players.Player   `json:"players"`
	Departed   []players.Player   `json:"departed"`
	Transfers  []market.Transfer  `json:"transfers"`
}

func (r *SeasonReport) collectTransfers() {
	r.Transfers = nil
	if r.Winter != nil {
		r.Transfers = append(r.Transfers, r.Winter.Executed...)
	}
	if r.Summer != nil {
		r.Transfers = append(r.Transfers, r.Summer.Executed...)
	}
}
