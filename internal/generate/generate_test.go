package generate

import (
	"encoding/json"
	"testing"

	"github.com/virtualtd/league-engine/internal/domain/players"
)

func TestWorldIsDeterministic(t *testing.T) {
	cfg := DefaultConfig(6)
	l1, p1 := World(cfg, 42)
	l2, p2 := World(cfg, 42)

	a, err := json.Marshal(l1)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(l2)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("equal seeds produced different leagues")
	}
	if p1.Size() != p2.Size() {
		t.Fatalf("pool sizes differ: %d vs %d", p1.Size(), p2.Size())
	}
	for i, agent := range p1.Players() {
		if *agent != *p2.Players()[i] {
			t.Fatalf("agent %d differs", i)
		}
	}
}

func TestWorldSeedsChangeOutcome(t *testing.T) {
	cfg := DefaultConfig(4)
	l1, _ := World(cfg, 1)
	l2, _ := World(cfg, 2)

	if l1.Teams[0].FirstTeam[0].LatentAbility == l2.Teams[0].FirstTeam[0].LatentAbility &&
		l1.Teams[0].FirstTeam[1].LatentAbility == l2.Teams[0].FirstTeam[1].LatentAbility {
		t.Fatalf("different seeds produced identical players")
	}
}

func TestWorldSquadShape(t *testing.T) {
	cfg := DefaultConfig(8)
	l, pool := World(cfg, 7)

	if len(l.Teams) != 8 {
		t.Fatalf("expected 8 teams, got %d", len(l.Teams))
	}
	if pool.Size() != cfg.PoolSize {
		t.Fatalf("expected %d free agents, got %d", cfg.PoolSize, pool.Size())
	}

	for _, team := range l.Teams {
		if len(team.FirstTeam) != 22 {
			t.Fatalf("team %s first squad has %d players", team.ID, len(team.FirstTeam))
		}
		if len(team.Academy) != 11 {
			t.Fatalf("team %s academy has %d players", team.ID, len(team.Academy))
		}
		if team.Budget != cfg.Budget || team.WageBudget != cfg.WageBudget {
			t.Fatalf("team %s finances not seeded: %+v", team.ID, team)
		}

		gks := 0
		for _, p := range team.FirstTeam {
			if p.Position == players.Goalkeeper {
				gks++
			}
		}
		if gks != 3 {
			t.Fatalf("team %s has %d first-squad goalkeepers", team.ID, gks)
		}
		for _, p := range team.Academy {
			if p.Age > cfg.Params.AcademyMaxAge {
				t.Fatalf("academy player %s too old: %f", p.ID, p.Age)
			}
		}
	}
}

func TestWorldPlayerInvariants(t *testing.T) {
	cfg := DefaultConfig(6)
	l, pool := World(cfg, 13)

	seen := make(map[string]bool)
	check := func(p *players.Player) {
		if seen[p.ID] {
			t.Fatalf("duplicate player ID %s", p.ID)
		}
		seen[p.ID] = true

		if p.Age < 17 || p.Age >= cfg.Params.MaxAge {
			t.Fatalf("player %s age out of range: %f", p.ID, p.Age)
		}
		if p.Age != float64(int(p.Age*2))/2 {
			t.Fatalf("player %s age off the half-year grain: %f", p.ID, p.Age)
		}
		if p.LatentAbility < 1 || p.LatentAbility > 99 {
			t.Fatalf("player %s ability out of range: %f", p.ID, p.LatentAbility)
		}
		if p.Potential < p.LatentAbility {
			t.Fatalf("player %s potential below ability", p.ID)
		}
		diff := p.ObservedRating - p.LatentAbility
		if diff > cfg.Params.NoiseBound || diff < -cfg.Params.NoiseBound {
			t.Fatalf("player %s observation noise out of bound: %f", p.ID, diff)
		}
		if p.MarketValue <= 0 {
			t.Fatalf("player %s has no market value", p.ID)
		}
		if !p.Available() {
			t.Fatalf("player %s generated unavailable", p.ID)
		}
	}

	for _, team := range l.Teams {
		for _, p := range team.Players() {
			check(p)
			if p.Contract.YearsRemaining < 1 {
				t.Fatalf("rostered player %s without a contract", p.ID)
			}
			if p.Contract.Wage <= 0 {
				t.Fatalf("rostered player %s without a wage", p.ID)
			}
		}
	}
	for _, agent := range pool.Players() {
		check(agent)
		if agent.Contract.YearsRemaining != 0 || agent.Contract.Wage != 0 {
			t.Fatalf("free agent %s still under contract: %+v", agent.ID, agent.Contract)
		}
	}
}

func TestNamesAreSeedStable(t *testing.T) {
	cfg := DefaultConfig(4)
	l1, _ := World(cfg, 5)
	l2, _ := World(cfg, 5)

	if l1.Name != l2.Name {
		t.Fatalf("league name not seed stable: %q vs %q", l1.Name, l2.Name)
	}
	for i := range l1.Teams {
		if l1.Teams[i].Name != l2.Teams[i].Name {
			t.Fatalf("team name not seed stable: %q vs %q", l1.Teams[i].Name, l2.Teams[i].Name)
		}
	}
}
