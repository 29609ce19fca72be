package driver

import (
	"github.com/virtualtd/league-engine/internal/clock"
	"github.com/virtualtd/league-engine/internal/domain/league"
	"github.com/virtualtd/league-engine/internal/domain/players"
	"github.com/virtualtd/league-engine/internal/domain/teams"
	"github.com/virtualtd/league-engine/internal/market"
	"github.com/virtualtd/league-engine/internal/season"
)

// Decisions supplies the externally driven choices the engine consumes: who
// plays, who is listed, who is bid on, and whose contracts are extended. The
// engine validates them against roster and budget invariants but never infers
// intent; infeasible entries are dropped by the consuming stage.
type Decisions interface {
	// MinutesAllocation returns, per team, each player's share of match
	// minutes for the upcoming half. Shares sum to at most the eleven match
	// slots per team.
	MinutesAllocation(seasonN int, half clock.Half, l *league.League) season.Allocations

	// Listings returns the players offered for sale this window, including
	// free-agent listings from the pool.
	Listings(seasonN int, window clock.Window, l *league.League, pool *market.Pool) []market.Listing

	// Bids returns the offers teams make for listed players this window.
	Bids(seasonN int, window clock.Window, l *league.League, pool *market.Pool, listings []market.Listing) []market.Offer

	// ContractExtensions returns new contract terms per player, applied
	// during the mutation step that follows the window.
	ContractExtensions(seasonN int, window clock.Window, l *league.League) map[string]players.Contract
}

// Default minutes shares: the first-choice eleven carry most of the load,
// the bench rotates in, and academy players get cameo minutes.
const (
	starterShare = 0.70
	benchShare   = 0.20
	academyShare = 0.10
)

// PassivePolicy is the built-in decision policy: a fixed starter/bench/academy
// minutes split by observed rating and no transfer or contract activity. It
// stands in for every team the user does not drive.
type PassivePolicy struct{}

var _ Decisions = PassivePolicy{}

// MinutesAllocation gives the top-rated eleven of each first squad the
// starter share, the rest of the first squad the bench share, and the academy
// the academy share. Unavailable players get nothing.
func (PassivePolicy) MinutesAllocation(_ int, _ clock.Half, l *league.League) season.Allocations {
	alloc := make(season.Allocations, len(l.Teams))
	for _, t := range l.Teams {
		m := make(teams.MinutesAllocation)
		for i, p := range t.SortedByRating(teams.FirstSquad) {
			if !p.Available() {
				continue
			}
			if i < 11 {
				m[p.ID] = starterShare
			} else {
				m[p.ID] = benchShare
			}
		}
		for _, p := range t.SortedByRating(teams.Academy) {
			if p.Available() {
				m[p.ID] = academyShare
			}
		}
		alloc[t.ID] = m
	}
	return alloc
}

// Listings lists nothing: the passive policy neither sells nor releases.
func (PassivePolicy) Listings(int, clock.Window, *league.League, *market.Pool) []market.Listing {
	return nil
}

// Bids makes no offers.
func (PassivePolicy) Bids(int, clock.Window, *league.League, *market.Pool, []market.Listing) []market.Offer {
	return nil
}

// ContractExtensions extends nothing; contracts run down naturally.
func (PassivePolicy) ContractExtensions(int, clock.Window, *league.League) map[string]players.Contract {
	return nil
}
