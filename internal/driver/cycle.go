package driver

import (
	"context"
	"time"

	"github.com/virtualtd/league-engine/internal/clock"
	"github.com/virtualtd/league-engine/internal/market"
	"github.com/virtualtd/league-engine/internal/season"
)

// Run simulates n full seasons. It stops at the first fatal error; reports
// for seasons completed before the failure stay available.
func (d *Driver) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := d.RunSeason(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RunSeason executes the seven-step cycle for the current season:
// first half, winter window, mutation, second half, summer window, mutation,
// season rollover.
func (d *Driver) RunSeason(ctx context.Context) (*SeasonReport, error) {
	started := time.Now()
	seasonN := d.clk.Season()
	report := &SeasonReport{Season: seasonN}

	sim := season.New(d.league, seasonN, d.cfg.Seed, d.cfg.OutcomeParams, d.cfg.Workers)
	d.logInfo("season starting", "season", seasonN, "teams", len(d.league.Teams))

	fail := func(err error) (*SeasonReport, error) {
		wrapped := &CycleError{Season: seasonN, Phase: d.clk.Phase(), Err: err}
		if d.cfg.Metrics != nil {
			d.cfg.Metrics.RecordSeason(time.Since(started), wrapped)
		}
		return nil, wrapped
	}

	var err error
	if report.FirstHalf, err = d.runHalf(ctx, sim, clock.FirstHalf); err != nil {
		return fail(err)
	}
	if err = d.advance(clock.PhaseWinterWindow); err != nil {
		return fail(err)
	}
	if report.Winter, err = d.runWindow(ctx, clock.WinterWindow); err != nil {
		return fail(err)
	}
	if err = d.advance(clock.PhaseWinterMutation); err != nil {
		return fail(err)
	}
	departed, err := d.runMutation(clock.WinterWindow, report.FirstHalf.MinutesShare)
	if err != nil {
		return fail(err)
	}
	report.Departed = append(report.Departed, departed...)

	if err = d.advance(clock.PhaseSecondHalf); err != nil {
		return fail(err)
	}
	if report.SecondHalf, err = d.runHalf(ctx, sim, clock.SecondHalf); err != nil {
		return fail(err)
	}
	if err = d.advance(clock.PhaseSummerWindow); err != nil {
		return fail(err)
	}
	if report.Summer, err = d.runWindow(ctx, clock.SummerWindow); err != nil {
		return fail(err)
	}
	if err = d.advance(clock.PhaseSummerMutation); err != nil {
		return fail(err)
	}
	departed, err = d.runMutation(clock.SummerWindow, report.SecondHalf.MinutesShare)
	if err != nil {
		return fail(err)
	}
	report.Departed = append(report.Departed, departed...)

	if err = d.advance(clock.PhaseSeasonEnd); err != nil {
		return fail(err)
	}

	report.FinalTable = sim.Standings().Rank()
	report.Players = d.snapshotPlayers()
	report.collectTransfers()
	d.reports = append(d.reports, report)

	if d.cfg.Metrics != nil {
		d.cfg.Metrics.RecordSeason(time.Since(started), nil)
	}
	d.logInfo("season completed",
		"season", seasonN,
		"transfers", len(report.Transfers),
		"departed", len(report.Departed),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	// Roll the clock into the next season's first half.
	if err = d.advance(clock.PhaseFirstHalf); err != nil {
		return fail(err)
	}
	return report, nil
}

func (d *Driver) runHalf(ctx context.Context, sim *season.Simulator, half clock.Half) (*season.HalfReport, error) {
	started := time.Now()
	alloc := d.decisions.MinutesAllocation(d.clk.Season(), half, d.league)
	report, err := sim.SimulateHalf(ctx, half, alloc)
	if d.cfg.Metrics != nil {
		matches := 0
		if report != nil {
			matches = len(report.Results)
		}
		d.cfg.Metrics.RecordHalf(time.Since(started), matches, err)
	}
	if err != nil {
		return nil, err
	}
	for _, teamID := range report.Dropped {
		d.logWarn("minutes allocation dropped", "season", report.Season, "half", half.String(), "team", teamID)
	}
	d.logInfo("half simulated", "season", report.Season, "half", half.String(), "matches", len(report.Results))
	return report, nil
}

func (d *Driver) runWindow(ctx context.Context, window clock.Window) (*market.Report, error) {
	started := time.Now()
	seasonN := d.clk.Season()
	listings := d.decisions.Listings(seasonN, window, d.league, d.pool)
	offers := d.decisions.Bids(seasonN, window, d.league, d.pool, listings)

	report, err := market.Clear(ctx, d.league, d.pool, seasonN, window, listings, offers, d.cfg.MarketParams)
	if d.cfg.Metrics != nil {
		iterations, transfers := 0, 0
		if report != nil {
			iterations, transfers = report.Iterations, len(report.Executed)
		}
		d.cfg.Metrics.RecordWindow(time.Since(started), iterations, transfers, err)
	}
	if err != nil {
		return nil, err
	}
	d.logInfo("window cleared",
		"season", seasonN,
		"window", window.String(),
		"transfers", len(report.Executed),
		"iterations", report.Iterations,
	)
	return report, nil
}
