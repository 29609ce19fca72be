package market

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

func newPlayer(id string, pos players.Position, wage float64) *players.Player {
	return &players.Player{
		ID:             id,
		Name:           "Player " + id,
		Position:       pos,
		Age:            25,
		LatentAbility:  60,
		ObservedRating: 60,
		Potential:      70,
		MarketValue:    100,
		Contract:       players.Contract{YearsRemaining: 2, Wage: wage},
	}
}

func newMarketTeam(t *testing.T, id string, budget, wageBudget float64) *teams.Team {
	t.Helper()
	team := &teams.Team{ID: id, Name: "Team " + id, Budget: budget, WageBudget: wageBudget}
	// Two goalkeepers so one can always be sold, plus outfield cover.
	squad := []players.Position{
		players.Goalkeeper, players.Goalkeeper,
		players.Defender, players.Defender, players.Defender,
		players.Midfielder, players.Midfielder,
		players.Forward, players.Forward,
	}
	for i, pos := range squad {
		p := newPlayer(fmt.Sprintf("%s-P%02d", id, i), pos, 10)
		if err := team.Add(p, teams.FirstSquad); err != nil {
			t.Fatalf("add player: %v", err)
		}
	}
	return team
}

func newMarketLeague(t *testing.T, budgets map[string]float64) *league.League {
	t.Helper()
	l := &league.League{Name: "Test League"}
	for _, id := range []string{"T01", "T02", "T03"} {
		budget := budgets[id]
		l.Teams = append(l.Teams, newMarketTeam(t, id, budget, 10000))
	}
	return l
}

func TestClearAwardsHighestBidAtBidAmount(t *testing.T) {
	l := newMarketLeague(t, map[string]float64{"T01": 0, "T02": 100, "T03": 100})
	seller, _ := l.Team("T01")
	playerID := seller.FirstTeam[2].ID

	listings := []Listing{{PlayerID: playerID, SellerID: "T01", Price: 20}}
	offers := []Offer{
		{BuyerID: "T02", PlayerID: playerID, Amount: 40},
		{BuyerID: "T03", PlayerID: playerID, Amount: 60},
	}

	report, err := Clear(context.Background(), l, NewPool(nil), 1, clock.SummerWindow, listings, offers, DefaultParams())
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(report.Executed) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(report.Executed))
	}
	tr := report.Executed[0]
	if tr.ToTeamID != "T03" || tr.FromTeamID != "T01" || tr.Fee != 60 {
		t.Fatalf("unexpected transfer %+v", tr)
	}

	buyer, _ := l.Team("T03")
	if buyer.Budget != 40 {
		t.Fatalf("buyer budget not debited: %f", buyer.Budget)
	}
	if seller.Budget != 60 {
		t.Fatalf("seller budget not credited: %f", seller.Budget)
	}
	if _, _, ok := seller.Find(playerID); ok {
		t.Fatalf("player still on seller roster")
	}
	if _, _, ok := buyer.Find(playerID); !ok {
		t.Fatalf("player missing from buyer roster")
	}
}

func TestClearConservesMoney(t *testing.T) {
	l := newMarketLeague(t, map[string]float64{"T01": 50, "T02": 80, "T03": 120})
	before := 0.0
	for _, team := range l.Teams {
		before += team.Budget
	}

	t01, _ := l.Team("T01")
	t02, _ := l.Team("T02")
	listings := []Listing{
		{PlayerID: t01.FirstTeam[3].ID, SellerID: "T01", Price: 10},
		{PlayerID: t02.FirstTeam[4].ID, SellerID: "T02", Price: 10},
	}
	offers := []Offer{
		{BuyerID: "T03", PlayerID: t01.FirstTeam[3].ID, Amount: 30},
		{BuyerID: "T01", PlayerID: t02.FirstTeam[4].ID, Amount: 25},
	}

	report, err := Clear(context.Background(), l, NewPool(nil), 2, clock.WinterWindow, listings, offers, DefaultParams())
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(report.Executed) != 2 {
		t.Fatalf("expected 2 transfers, got %+v", report)
	}

	after := 0.0
	for _, team := range l.Teams {
		after += team.Budget
	}
	if before != after {
		t.Fatalf("money not conserved: before %f after %f", before, after)
	}
	for _, team := range l.Teams {
		if team.Budget < 0 {
			t.Fatalf("team %s budget negative: %f", team.ID, team.Budget)
		}
	}
}

func TestClearFreeAgentSignsForZeroFee(t *testing.T) {
	l := newMarketLeague(t, map[string]float64{"T01": 0, "T02": 0, "T03": 0})
	agent := newPlayer("FA01", players.Midfielder, 15)
	agent.Contract = players.Contract{}
	pool := NewPool([]*players.Player{agent})

	listings := []Listing{{PlayerID: "FA01", Price: 999}}
	offers := []Offer{{BuyerID: "T02", PlayerID: "FA01", Amount: 999}}

	report, err := Clear(context.Background(), l, pool, 1, clock.SummerWindow, listings, offers, DefaultParams())
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(report.Executed) != 1 || report.Executed[0].Fee != 0 {
		t.Fatalf("expected free transfer, got %+v", report.Executed)
	}
	if report.Executed[0].FromTeamID != "" {
		t.Fatalf("free agent should have no selling team: %+v", report.Executed[0])
	}
	buyer, _ := l.Team("T02")
	if buyer.Budget != 0 {
		t.Fatalf("budget changed on free transfer: %f", buyer.Budget)
	}
	if _, _, ok := buyer.Find("FA01"); !ok {
		t.Fatalf("free agent not signed")
	}
	if pool.Size() != 0 {
		t.Fatalf("agent still in pool")
	}
}

func TestClearDropsBidsOverBudget(t *testing.T) {
	l := newMarketLeague(t, map[string]float64{"T01": 0, "T02": 10, "T03": 0})
	seller, _ := l.Team("T01")
	playerID := seller.FirstTeam[5].ID

	listings := []Listing{{PlayerID: playerID, SellerID: "T01", Price: 5}}
	offers := []Offer{{BuyerID: "T02", PlayerID: playerID, Amount: 50}}

	report, err := Clear(context.Background(), l, NewPool(nil), 1, clock.SummerWindow, listings, offers, DefaultParams())
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(report.Executed) != 0 {
		t.Fatalf("over-budget bid executed: %+v", report.Executed)
	}
	if report.DroppedOffers == 0 {
		t.Fatalf("expected dropped offer count")
	}
	if len(report.Unsold) != 1 || report.Unsold[0] != playerID {
		t.Fatalf("expected player unsold, got %v", report.Unsold)
	}
}

func TestClearSingleBudgetCoversAtMostOneSigning(t *testing.T) {
	l := newMarketLeague(t, map[string]float64{"T01": 0, "T02": 10, "T03": 0})
	seller, _ := l.Team("T01")
	expensive := seller.FirstTeam[3].ID
	cheap := seller.FirstTeam[4].ID

	listings := []Listing{
		{PlayerID: expensive, SellerID: "T01", Price: 8},
		{PlayerID: cheap, SellerID: "T01", Price: 5},
	}
	offers := []Offer{
		{BuyerID: "T02", PlayerID: expensive, Amount: 8},
		{BuyerID: "T02", PlayerID: cheap, Amount: 5},
	}

	report, err := Clear(context.Background(), l, NewPool(nil), 1, clock.SummerWindow, listings, offers, DefaultParams())
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	// 10 covers one fee but never both.
	if len(report.Executed) != 1 {
		t.Fatalf("expected exactly one transfer, got %+v", report.Executed)
	}
	buyer, _ := l.Team("T02")
	if buyer.Budget < 0 {
		t.Fatalf("buyer budget driven negative: %f", buyer.Budget)
	}
	if len(report.Unsold) != 1 {
		t.Fatalf("expected one unsold listing, got %v", report.Unsold)
	}
}

func TestClearRefusesToStripLastGoalkeeper(t *testing.T) {
	l := newMarketLeague(t, map[string]float64{"T01": 0, "T02": 500, "T03": 0})
	seller, _ := l.Team("T01")
	// Sell one goalkeeper then list the remaining one.
	firstGK := seller.FirstTeam[0].ID
	lastGK := seller.FirstTeam[1].ID

	listings := []Listing{
		{PlayerID: firstGK, SellerID: "T01", Price: 10},
		{PlayerID: lastGK, SellerID: "T01", Price: 10},
	}
	offers := []Offer{
		{BuyerID: "T02", PlayerID: firstGK, Amount: 20},
		{BuyerID: "T02", PlayerID: lastGK, Amount: 20},
	}

	report, err := Clear(context.Background(), l, NewPool(nil), 1, clock.SummerWindow, listings, offers, DefaultParams())
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(report.Executed) != 1 {
		t.Fatalf("expected exactly one goalkeeper sale, got %+v", report.Executed)
	}
	gks := 0
	for _, p := range seller.FirstTeam {
		if p.Position == players.Goalkeeper {
			gks++
		}
	}
	if gks != 1 {
		t.Fatalf("seller left with %d goalkeepers", gks)
	}
}

func TestClearBelowAskingPriceIsDropped(t *testing.T) {
	l := newMarketLeague(t, map[string]float64{"T01": 0, "T02": 500, "T03": 0})
	seller, _ := l.Team("T01")
	playerID := seller.FirstTeam[6].ID

	listings := []Listing{{PlayerID: playerID, SellerID: "T01", Price: 100}}
	offers := []Offer{{BuyerID: "T02", PlayerID: playerID, Amount: 99}}

	report, err := Clear(context.Background(), l, NewPool(nil), 1, clock.WinterWindow, listings, offers, DefaultParams())
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(report.Executed) != 0 {
		t.Fatalf("bid below asking price executed: %+v", report.Executed)
	}
	if report.DroppedOffers != 1 {
		t.Fatalf("expected 1 dropped offer, got %d", report.DroppedOffers)
	}
}

func TestClearIsDeterministic(t *testing.T) {
	run := func() *Report {
		l := newMarketLeague(t, map[string]float64{"T01": 100, "T02": 100, "T03": 100})
		t01, _ := l.Team("T01")
		t02, _ := l.Team("T02")
		listings := []Listing{
			{PlayerID: t01.FirstTeam[3].ID, SellerID: "T01", Price: 10},
			{PlayerID: t02.FirstTeam[3].ID, SellerID: "T02", Price: 10},
		}
		// Equal amounts: the lower buyer ID must win the tie every run.
		offers := []Offer{
			{BuyerID: "T03", PlayerID: t01.FirstTeam[3].ID, Amount: 30},
			{BuyerID: "T02", PlayerID: t01.FirstTeam[3].ID, Amount: 30},
			{BuyerID: "T03", PlayerID: t02.FirstTeam[3].ID, Amount: 20},
		}
		report, err := Clear(context.Background(), l, NewPool(nil), 1, clock.SummerWindow, listings, offers, DefaultParams())
		if err != nil {
			t.Fatalf("clear: %v", err)
		}
		return report
	}

	a, b := run(), run()
	if len(a.Executed) != len(b.Executed) {
		t.Fatalf("transfer count differs: %d vs %d", len(a.Executed), len(b.Executed))
	}
	for i := range a.Executed {
		if a.Executed[i] != b.Executed[i] {
			t.Fatalf("transfer %d differs: %+v vs %+v", i, a.Executed[i], b.Executed[i])
		}
	}
	if a.Executed[0].ToTeamID != "T02" {
		t.Fatalf("tie should go to lower buyer ID, got %s", a.Executed[0].ToTeamID)
	}
}

func TestClearIterationCap(t *testing.T) {
	l := newMarketLeague(t, map[string]float64{"T01": 100, "T02": 100, "T03": 100})
	t01, _ := l.Team("T01")
	t02, _ := l.Team("T02")
	listings := []Listing{
		{PlayerID: t01.FirstTeam[3].ID, SellerID: "T01", Price: 10},
		{PlayerID: t02.FirstTeam[3].ID, SellerID: "T02", Price: 10},
	}
	offers := []Offer{
		{BuyerID: "T02", PlayerID: t01.FirstTeam[3].ID, Amount: 30},
		{BuyerID: "T03", PlayerID: t02.FirstTeam[3].ID, Amount: 30},
	}

	// The loop only terminates on an empty round, so a cap of 1 cannot cover
	// both the awarding round and the empty one that follows.
	params := DefaultParams()
	params.MaxIterations = 1
	_, err := Clear(context.Background(), l, NewPool(nil), 1, clock.SummerWindow, listings, offers, params)
	if !errors.Is(err, ErrMarketDidNotConverge) {
		t.Fatalf("expected ErrMarketDidNotConverge, got %v", err)
	}
}

func TestPoolAddGetDrop(t *testing.T) {
	pool := NewPool([]*players.Player{
		newPlayer("FA02", players.Defender, 5),
		newPlayer("FA01", players.Forward, 5),
		newPlayer("FA02", players.Defender, 5), // duplicate dropped
	})
	if pool.Size() != 2 {
		t.Fatalf("expected 2 agents, got %d", pool.Size())
	}
	ordered := pool.Players()
	if ordered[0].ID != "FA01" || ordered[1].ID != "FA02" {
		t.Fatalf("pool not in ID order: %v, %v", ordered[0].ID, ordered[1].ID)
	}

	pool.Drop("FA01")
	if _, ok := pool.Get("FA01"); ok {
		t.Fatalf("dropped agent still present")
	}
	pool.Add(newPlayer("FA03", players.Midfielder, 5))
	if pool.Size() != 2 {
		t.Fatalf("expected 2 agents after add, got %d", pool.Size())
	}
}
