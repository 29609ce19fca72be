package season

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/virtualtd/league-engine/internal/clock"
	"github.com/virtualtd/league-engine/internal/domain/league"
	"github.com/virtualtd/league-engine/internal/domain/players"
	"github.com/virtualtd/league-engine/internal/domain/teams"
)

func newTestLeague(t *testing.T, teamCount int) *league.League {
	t.Helper()
	l := &league.League{Name: "Test League"}
	positions := []players.Position{
		players.Goalkeeper,
		players.Defender, players.Defender, players.Defender, players.Defender,
		players.Midfielder, players.Midfielder, players.Midfielder, players.Midfielder,
		players.Forward, players.Forward,
	}
	for i := 1; i <= teamCount; i++ {
		team := &teams.Team{
			ID:   fmt.Sprintf("T%02d", i),
			Name: fmt.Sprintf("Team %d", i),
		}
		for j, pos := range positions {
			p := &players.Player{
				ID:             fmt.Sprintf("P%02d%02d", i, j),
				Position:       pos,
				Age:            25,
				LatentAbility:  50 + float64(i),
				ObservedRating: 50 + float64(i),
				Potential:      70,
			}
			if err := team.Add(p, teams.FirstSquad); err != nil {
				t.Fatalf("add player: %v", err)
			}
		}
		l.Teams = append(l.Teams, team)
	}
	return l
}

func fullAllocation(l *league.League) Allocations {
	alloc := make(Allocations)
	for _, t := range l.Teams {
		a := make(teams.MinutesAllocation)
		for _, p := range t.Players() {
			a[p.ID] = 1
		}
		alloc[t.ID] = a
	}
	return alloc
}

func TestSimulateHalfPlaysFullRound(t *testing.T) {
	l := newTestLeague(t, 4)
	sim := New(l, 1, 42, league.DefaultOutcomeParams(), 2)

	report, err := sim.SimulateHalf(context.Background(), clock.FirstHalf, fullAllocation(l))
	if err != nil {
		t.Fatalf("first half: %v", err)
	}
	// Single round-robin over 4 teams.
	if len(report.Results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(report.Results))
	}
	if len(report.Standings) != 4 {
		t.Fatalf("expected 4 standings rows, got %d", len(report.Standings))
	}
	if sim.State() != WinterBreak {
		t.Fatalf("expected winter break, got %s", sim.State())
	}
	// Every allocated, available player accrues a minutes share.
	if len(report.MinutesShare) != 4*11 {
		t.Fatalf("expected 44 minutes shares, got %d", len(report.MinutesShare))
	}
	for id, share := range report.MinutesShare {
		if share <= 0 || share > 1 {
			t.Fatalf("player %s share out of range: %f", id, share)
		}
	}
}

func TestSimulateHalfRejectsSkippedAndRepeatedHalves(t *testing.T) {
	l := newTestLeague(t, 4)
	sim := New(l, 3, 1, league.DefaultOutcomeParams(), 1)
	ctx := context.Background()

	// Second half before the first.
	_, err := sim.SimulateHalf(ctx, clock.SecondHalf, nil)
	var transitionErr *InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transitionErr.Season != 3 || transitionErr.State != NotStarted || transitionErr.Half != clock.SecondHalf {
		t.Fatalf("unexpected error detail: %+v", transitionErr)
	}

	if _, err := sim.SimulateHalf(ctx, clock.FirstHalf, fullAllocation(l)); err != nil {
		t.Fatalf("first half: %v", err)
	}

	// Re-entry into a played half.
	if _, err := sim.SimulateHalf(ctx, clock.FirstHalf, nil); !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError on replay, got %v", err)
	}

	if _, err := sim.SimulateHalf(ctx, clock.SecondHalf, fullAllocation(l)); err != nil {
		t.Fatalf("second half: %v", err)
	}
	if sim.State() != Completed {
		t.Fatalf("expected completed, got %s", sim.State())
	}
	if _, err := sim.SimulateHalf(ctx, clock.SecondHalf, nil); !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError after completion, got %v", err)
	}
}

func TestSimulateHalfDropsInfeasibleAllocations(t *testing.T) {
	l := newTestLeague(t, 4)
	sim := New(l, 1, 9, league.DefaultOutcomeParams(), 2)

	alloc := fullAllocation(l)
	// Unknown player for T01, share out of range for T03.
	alloc["T01"]["unknown-player"] = 0.5
	for id := range alloc["T03"] {
		alloc["T03"][id] = 1.5
		break
	}

	report, err := sim.SimulateHalf(context.Background(), clock.FirstHalf, alloc)
	if err != nil {
		t.Fatalf("first half: %v", err)
	}
	if len(report.Dropped) != 2 {
		t.Fatalf("expected 2 dropped allocations, got %v", report.Dropped)
	}
	dropped := map[string]bool{}
	for _, id := range report.Dropped {
		dropped[id] = true
	}
	if !dropped["T01"] || !dropped["T03"] {
		t.Fatalf("expected T01 and T03 dropped, got %v", report.Dropped)
	}
	// Dropped teams still play their fixtures on the default lineup.
	if len(report.Results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(report.Results))
	}
}

func TestSimulateHalfIsDeterministic(t *testing.T) {
	run := func() *HalfReport {
		l := newTestLeague(t, 6)
		sim := New(l, 2, 77, league.DefaultOutcomeParams(), 4)
		report, err := sim.SimulateHalf(context.Background(), clock.FirstHalf, fullAllocation(l))
		if err != nil {
			t.Fatalf("half: %v", err)
		}
		return report
	}

	a, b := run(), run()
	if len(a.Results) != len(b.Results) {
		t.Fatalf("result count mismatch: %d vs %d", len(a.Results), len(b.Results))
	}
	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			t.Fatalf("result %d differs: %+v vs %+v", i, a.Results[i], b.Results[i])
		}
	}
}

func TestSimulateHalfHonorsContextCancellation(t *testing.T) {
	l := newTestLeague(t, 4)
	sim := New(l, 1, 5, league.DefaultOutcomeParams(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sim.SimulateHalf(ctx, clock.FirstHalf, fullAllocation(l)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
