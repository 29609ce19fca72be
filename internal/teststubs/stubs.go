// Package teststubs provides test doubles for driver collaborators.
package teststubs

import (
	"github.com/virtualtd/league-engine/internal/clock"
	"github.com/virtualtd/league-engine/internal/domain/league"
	"github.com/virtualtd/league-engine/internal/domain/players"
	"github.com/virtualtd/league-engine/internal/driver"
	"github.com/virtualtd/league-engine/internal/market"
	"github.com/virtualtd/league-engine/internal/season"
)

// ScriptedDecisions is a test double for driver.Decisions. Unset fields fall
// back to the passive policy, so a test only scripts what it cares about.
type ScriptedDecisions struct {
	MinutesFn    func(seasonN int, half clock.Half, l *league.League) season.Allocations
	ListingsFn   func(seasonN int, window clock.Window, l *league.League, pool *market.Pool) []market.Listing
	BidsFn       func(seasonN int, window clock.Window, l *league.League, pool *market.Pool, listings []market.Listing) []market.Offer
	ExtensionsFn func(seasonN int, window clock.Window, l *league.League) map[string]players.Contract

	fallback driver.PassivePolicy
}

func (s *ScriptedDecisions) MinutesAllocation(seasonN int, half clock.Half, l *league.League) season.Allocations {
	if s.MinutesFn != nil {
		return s.MinutesFn(seasonN, half, l)
	}
	return s.fallback.MinutesAllocation(seasonN, half, l)
}

func (s *ScriptedDecisions) Listings(seasonN int, window clock.Window, l *league.League, pool *market.Pool) []market.Listing {
	if s.ListingsFn != nil {
		return s.ListingsFn(seasonN, window, l, pool)
	}
	return s.fallback.Listings(seasonN, window, l, pool)
}

func (s *ScriptedDecisions) Bids(seasonN int, window clock.Window, l *league.League, pool *market.Pool, listings []market.Listing) []market.Offer {
	if s.BidsFn != nil {
		return s.BidsFn(seasonN, window, l, pool, listings)
	}
	return s.fallback.Bids(seasonN, window, l, pool, listings)
}

func (s *ScriptedDecisions) ContractExtensions(seasonN int, window clock.Window, l *league.League) map[string]players.Contract {
	if s.ExtensionsFn != nil {
		return s.ExtensionsFn(seasonN, window, l)
	}
	return s.fallback.ContractExtensions(seasonN, window, l)
}
