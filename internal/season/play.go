package season

import (
	"context"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/virtualtd/league-engine/internal/clock"
	"github.com/virtualtd/league-engine/internal/domain/league"
	"github.com/virtualtd/league-engine/internal/domain/teams"
)

// matchSlots is the number of on-pitch slots a minutes allocation can fill.
const matchSlots = 11

// playFixtures evaluates the half's fixtures on a bounded worker pool. Every
// fixture samples from its own derived rng stream, so evaluation order does
// not affect the outcome, and results are folded into the standings strictly
// in schedule order afterwards.
func (s *Simulator) playFixtures(ctx context.Context, half clock.Half, fixtures []league.Fixture, alloc Allocations) (*HalfReport, error) {
	report := &HalfReport{
		Season:       s.seasonN,
		Half:         half,
		MinutesShare: make(map[string]float64),
	}

	strengths := make(map[string]float64, len(s.league.Teams))
	for _, t := range s.league.Teams {
		a, ok := alloc[t.ID]
		if ok && !feasibleAllocation(t, a) {
			// Infeasible decisions are dropped, never fatal.
			report.Dropped = append(report.Dropped, t.ID)
			a = nil
		}
		strengths[t.ID] = teams.Strength(t, a)
		// The allocation holds for every match of the half, so a player's
		// average share per match is the allocated share itself.
		for _, p := range t.Players() {
			if share := a[p.ID]; share > 0 && p.Available() {
				report.MinutesShare[p.ID] = math.Min(1, share)
			}
		}
	}

	results := make([]league.MatchResult, len(fixtures))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, f := range fixtures {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(fixtureSeed(s.seed, s.seasonN, int(half), i)))
			results[i] = league.SampleResult(f, strengths[f.HomeTeamID], strengths[f.AwayTeamID], s.params, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Single serialization point: apply in schedule order.
	for _, res := range results {
		s.standings.Apply(res)
	}
	report.Results = results
	report.Standings = s.standings.Rank()

	return report, nil
}

// feasibleAllocation checks shares are in [0, 1] and the team does not field
// more than the available match slots.
func feasibleAllocation(t *teams.Team, alloc teams.MinutesAllocation) bool {
	total := 0.0
	for id, share := range alloc {
		if share < 0 || share > 1 {
			return false
		}
		if _, _, ok := t.Find(id); !ok {
			return false
		}
		total += share
	}
	return total <= matchSlots+1e-9
}

// fixtureSeed derives an independent, reproducible seed per fixture from the
// run seed and the fixture's position in the cycle (splitmix64 finalizer).
func fixtureSeed(seed int64, seasonN, half, index int) int64 {
	z := uint64(seed) ^ (uint64(seasonN) << 32) ^ (uint64(half) << 24) ^ uint64(index)
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
