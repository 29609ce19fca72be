// Package season runs one season's fixtures: two halves either side of the
// winter break, each a single pass over the scheduled fixtures.
package season

import (
	"context"
	"fmt"

	"github.com/virtualtd/league-engine/internal/clock"
	"github.com/virtualtd/league-engine/internal/domain/league"
	"github.com/virtualtd/league-engine/internal/domain/teams"
)

// State is the per-season lifecycle of the simulator.
type State int

const (
	NotStarted State = iota
	FirstHalfInProgress
	WinterBreak
	SecondHalfInProgress
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case FirstHalfInProgress:
		return "first_half_in_progress"
	case WinterBreak:
		return "winter_break"
	case SecondHalfInProgress:
		return "second_half_in_progress"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// InvalidTransitionError reports re-entry into a completed half or a skipped
// stage of the season lifecycle.
type InvalidTransitionError struct {
	Season int
	State  State
	Half   clock.Half
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("season %d: cannot simulate %s half from state %s", e.Season, e.Half, e.State)
}

// Allocations maps team ID to that team's minutes allocation for a half.
type Allocations map[string]teams.MinutesAllocation

// HalfReport is the output of one simulated half.
type HalfReport struct {
	Season  int                  `json:"season"`
	Half    clock.Half           `json:"-"`
	Results []league.MatchResult `json:"results"`
	// MinutesShare is each player's average share of match minutes across the
	// half, consumed by the evolution step.
	MinutesShare map[string]float64 `json:"minutes_share"`
	Standings    []league.Row       `json:"standings"`
	// Dropped lists teams whose minutes allocation was infeasible and was
	// discarded for the half.
	Dropped []string `json:"dropped_allocations,omitempty"`
}

// Simulator plays out a single season for a league. It only reads player
// ratings; evolving players between periods is the driver's job.
type Simulator struct {
	league   *league.League
	seasonN  int
	seed     int64
	params   league.OutcomeParams
	workers  int
	schedule league.Schedule

	state     State
	standings *league.Standings
}

// New prepares a simulator for one season. The schedule is generated up front
// and is deterministic given the league's team IDs and the season number.
func New(l *league.League, seasonN int, seed int64, params league.OutcomeParams, workers int) *Simulator {
	if workers <= 0 {
		workers = 1
	}
	return &Simulator{
		league:    l,
		seasonN:   seasonN,
		seed:      seed,
		params:    params,
		workers:   workers,
		schedule:  league.GenerateSchedule(l, seasonN),
		state:     NotStarted,
		standings: league.NewStandings(l),
	}
}

// State returns the season lifecycle state.
func (s *Simulator) State() State { return s.state }

// Schedule returns the season's fixture schedule.
func (s *Simulator) Schedule() league.Schedule { return s.schedule }

// Standings returns the current table.
func (s *Simulator) Standings() *league.Standings { return s.standings }

// SimulateHalf plays every fixture of the requested half exactly once and
// returns the results, updated standings, and accumulated player minutes.
// A half is terminal once played: re-entry or playing the second half before
// the first is rejected with InvalidTransitionError.
func (s *Simulator) SimulateHalf(ctx context.Context, half clock.Half, alloc Allocations) (*HalfReport, error) {
	var fixtures []league.Fixture
	switch {
	case half == clock.FirstHalf && s.state == NotStarted:
		s.state = FirstHalfInProgress
		fixtures = s.schedule.FirstHalf
	case half == clock.SecondHalf && s.state == WinterBreak:
		s.state = SecondHalfInProgress
		fixtures = s.schedule.SecondHalf
	default:
		return nil, &InvalidTransitionError{Season: s.seasonN, State: s.state, Half: half}
	}

	report, err := s.playFixtures(ctx, half, fixtures, alloc)
	if err != nil {
		return nil, err
	}

	if half == clock.FirstHalf {
		s.state = WinterBreak
	} else {
		s.state = Completed
	}
	return report, nil
}
