package teststubs

import (
	"testing"

	"github.com/virtualtd/league-engine/internal/clock"
	"github.com/virtualtd/league-engine/internal/domain/league"
	"github.com/virtualtd/league-engine/internal/market"
)

func TestScriptedDecisionsFallsBackToPassive(t *testing.T) {
	s := &ScriptedDecisions{}
	l := &league.League{}

	if got := s.Listings(1, clock.WinterWindow, l, market.NewPool(nil)); len(got) != 0 {
		t.Fatalf("expected passive policy to list nobody, got %d", len(got))
	}
	if got := s.ContractExtensions(1, clock.WinterWindow, l); len(got) != 0 {
		t.Fatalf("expected passive policy to extend nobody, got %d", len(got))
	}
}

func TestScriptedDecisionsUsesScripts(t *testing.T) {
	s := &ScriptedDecisions{
		ListingsFn: func(int, clock.Window, *league.League, *market.Pool) []market.Listing {
			return []market.Listing{{PlayerID: "P0001", SellerID: "T01", Price: 100}}
		},
	}

	got := s.Listings(1, clock.SummerWindow, &league.League{}, market.NewPool(nil))
	if len(got) != 1 || got[0].PlayerID != "P0001" {
		t.Fatalf("expected scripted listing, got %+v", got)
	}
}
