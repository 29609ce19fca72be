package market

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/virtualtd/league-engine/internal/clock"
	"github.com/virtualtd/league-engine/internal/domain/league"
	"github.com/virtualtd/league-engine/internal/domain/players"
	"github.com/virtualtd/league-engine/internal/domain/teams"
)

// listingState tracks one listing through the clearing rounds.
type listingState struct {
	listing Listing
	player  *players.Player
	seller  *teams.Team // nil for free agents
	sold    bool
	bids    []Offer
}

// Clear runs the window's fixed-point clearing loop. Each round walks the
// unsold listings in player-ID order, awards each to its best qualifying bid,
// and executes the transfer immediately; the loop ends when a full round
// executes nothing. Listings and bids that turn out infeasible are dropped
// locally and never abort the window. Exceeding the iteration cap returns
// ErrMarketDidNotConverge.
func Clear(ctx context.Context, l *league.League, pool *Pool, season int, window clock.Window, listings []Listing, offers []Offer, params Params) (*Report, error) {
	if params.MaxIterations <= 0 {
		params.MaxIterations = DefaultParams().MaxIterations
	}

	report := &Report{Season: season, Window: window.String()}

	states := collectListings(l, pool, listings, report)
	if err := collectBids(ctx, l, states, offers, report); err != nil {
		return nil, err
	}

	for iter := 1; ; iter++ {
		if iter > params.MaxIterations {
			return nil, fmt.Errorf("window %s season %d after %d iterations: %w",
				window, season, params.MaxIterations, ErrMarketDidNotConverge)
		}
		report.Iterations = iter

		awarded := 0
		for _, st := range states {
			if st.sold {
				continue
			}
			tr, ok, err := awardListing(l, pool, st, season, window, params, report)
			if err != nil {
				return nil, err
			}
			if ok {
				st.sold = true
				report.Executed = append(report.Executed, tr)
				awarded++
			}
		}
		if awarded == 0 {
			break
		}
	}

	for _, st := range states {
		if !st.sold {
			report.Unsold = append(report.Unsold, st.listing.PlayerID)
		}
	}
	return report, nil
}

// collectListings resolves listings against rosters and the free-agent pool,
// dropping duplicates and listings for unknown players.
func collectListings(l *league.League, pool *Pool, listings []Listing, report *Report) []*listingState {
	seen := make(map[string]bool, len(listings))
	var states []*listingState
	for _, li := range listings {
		if seen[li.PlayerID] {
			continue
		}
		st := &listingState{listing: li}
		if li.SellerID == "" {
			agent, ok := pool.Get(li.PlayerID)
			if !ok {
				continue
			}
			st.player = agent
			st.listing.Price = 0 // free agents move for zero fee
		} else {
			seller, ok := l.Team(li.SellerID)
			if !ok {
				continue
			}
			p, _, ok := seller.Find(li.PlayerID)
			if !ok {
				continue
			}
			st.player = p
			st.seller = seller
		}
		seen[li.PlayerID] = true
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].listing.PlayerID < states[j].listing.PlayerID
	})
	return states
}

// collectBids attaches statically qualifying offers to each listing. The
// static pass across listings is independent per listing and runs
// concurrently; budget and roster room are re-checked serially at award time,
// since earlier awards in the window change them.
func collectBids(ctx context.Context, l *league.League, states []*listingState, offers []Offer, report *Report) error {
	byPlayer := make(map[string][]Offer, len(states))
	for _, o := range offers {
		byPlayer[o.PlayerID] = append(byPlayer[o.PlayerID], o)
	}

	g, gctx := errgroup.WithContext(ctx)
	dropped := make([]int, len(states))
	for i, st := range states {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, o := range byPlayer[st.listing.PlayerID] {
				buyer, ok := l.Team(o.BuyerID)
				if !ok || (st.seller != nil && buyer.ID == st.seller.ID) || o.Amount < st.listing.Price {
					dropped[i]++
					continue
				}
				st.bids = append(st.bids, o)
			}
			// Highest amount first; lowest buyer ID breaks ties.
			sort.Slice(st.bids, func(a, b int) bool {
				if st.bids[a].Amount != st.bids[b].Amount {
					return st.bids[a].Amount > st.bids[b].Amount
				}
				return st.bids[a].BuyerID < st.bids[b].BuyerID
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, d := range dropped {
		report.DroppedOffers += d
	}
	return nil
}

// awardListing finds the best bid that is still feasible and executes it.
func awardListing(l *league.League, pool *Pool, st *listingState, season int, window clock.Window, params Params, report *Report) (Transfer, bool, error) {
	if st.seller != nil && !st.seller.CanRelease(st.player.ID) {
		return Transfer{}, false, nil
	}

	kind := targetRoster(st.player, params)
	for _, bid := range st.bids {
		buyer, ok := l.Team(bid.BuyerID)
		if !ok {
			continue
		}
		// The award amount is the winning bid; free agents sign for nothing.
		fee := bid.Amount
		if st.seller == nil {
			fee = 0
		}
		// A bid exceeding the remaining budget at the moment of evaluation is
		// dropped, not an error.
		if buyer.Budget < fee {
			report.DroppedOffers++
			continue
		}
		if !buyer.HasRoom(kind) {
			report.DroppedOffers++
			continue
		}
		if buyer.WageBudget > 0 && buyer.WageBill()+st.player.Contract.Wage > buyer.WageBudget {
			report.DroppedOffers++
			continue
		}
		tr, err := executeTransfer(buyer, st, fee, kind, season, window)
		if err != nil {
			return Transfer{}, false, err
		}
		if st.seller == nil {
			pool.remove(st.player.ID)
		}
		return tr, true, nil
	}
	return Transfer{}, false, nil
}

// executeTransfer atomically moves the player and the money. All constraints
// were validated immediately before under the window's serialized award loop,
// so any failure here is an engine bug and aborts the window.
func executeTransfer(buyer *teams.Team, st *listingState, fee float64, kind teams.RosterKind, season int, window clock.Window) (Transfer, error) {
	if buyer.Budget < fee {
		return Transfer{}, &BudgetViolationError{TeamID: buyer.ID, Budget: buyer.Budget, Fee: fee}
	}

	fromID := ""
	origKind := teams.FirstSquad
	if st.seller != nil {
		fromID = st.seller.ID
		if _, k, ok := st.seller.Find(st.player.ID); ok {
			origKind = k
		}
		if _, err := st.seller.Remove(st.player.ID); err != nil {
			return Transfer{}, fmt.Errorf("release %s from %s: %w", st.player.ID, st.seller.ID, err)
		}
	}
	if err := buyer.Add(st.player, kind); err != nil {
		// Roll the release back so the failed transfer has no partial effect.
		if st.seller != nil {
			_ = st.seller.Add(st.player, origKind)
		}
		return Transfer{}, fmt.Errorf("sign %s to %s: %w", st.player.ID, buyer.ID, err)
	}

	buyer.Budget -= fee
	if st.seller != nil {
		st.seller.Budget += fee
	}

	return Transfer{
		PlayerID:   st.player.ID,
		PlayerName: st.player.Name,
		FromTeamID: fromID,
		ToTeamID:   buyer.ID,
		Fee:        fee,
		Season:     season,
		Window:     window,
		WindowName: window.String(),
	}, nil
}
