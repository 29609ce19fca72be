// Package generate builds a synthetic league and free-agent pool from a seed.
// The engine treats generation as an external collaborator; this reference
// generator exists so the service can run standalone and so regression tests
// have a reproducible world to simulate. Generated entities satisfy every
// roster, budget, and player invariant before the first season starts.
package generate

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/virtualtd/league-engine/internal/domain/league"
	"github.com/virtualtd/league-engine/internal/domain/players"
	"github.com/virtualtd/league-engine/internal/domain/teams"
	"github.com/virtualtd/league-engine/internal/market"
)

// Config controls the generated world.
type Config struct {
	Teams int
	// LeagueStrength is the mean team skill on the 0-100 scale; Spread is its
	// standard deviation across the league. A lower spread means a more
	// competitive league.
	LeagueStrength float64
	Spread         float64
	// Budget and WageBudget seed every team's finances.
	Budget     float64
	WageBudget float64
	// PoolSize is the number of generated free agents.
	PoolSize int
	Params   players.Params
}

// DefaultConfig returns a mid-strength league of the configured size.
func DefaultConfig(teamCount int) Config {
	return Config{
		Teams:          teamCount,
		LeagueStrength: 55,
		Spread:         10,
		Budget:         5000,
		WageBudget:     25000,
		PoolSize:       60,
		Params:         players.DefaultParams(),
	}
}

// firstSquadShape and academyShape fix how the 22+11 squad is distributed
// over position categories.
var firstSquadShape = []struct {
	pos   players.Position
	count int
}{
	{players.Goalkeeper, 3},
	{players.Defender, 7},
	{players.Midfielder, 7},
	{players.Forward, 5},
}

var academyShape = []struct {
	pos   players.Position
	count int
}{
	{players.Goalkeeper, 2},
	{players.Defender, 3},
	{players.Midfielder, 3},
	{players.Forward, 3},
}

// World generates a league and a free-agent pool from the seed. Two calls
// with the same config and seed produce identical worlds.
func World(cfg Config, seed int64) (*league.League, *market.Pool) {
	rng := rand.New(rand.NewSource(seed))
	g := &generator{rng: rng, cfg: cfg}

	l := &league.League{Name: g.leagueName()}
	for i := 0; i < cfg.Teams; i++ {
		strength := clampNormal(rng, cfg.LeagueStrength, cfg.Spread, 5, 95)
		l.Teams = append(l.Teams, g.team(i, strength))
	}

	agents := make([]*players.Player, 0, cfg.PoolSize)
	for i := 0; i < cfg.PoolSize; i++ {
		// Free agents skew toward the league's lower skill band.
		p := g.player(players.Positions[rng.Intn(len(players.Positions))],
			cfg.LeagueStrength-cfg.Spread, cfg.Spread, false)
		p.Contract = players.Contract{} // out of contract by definition
		p.MarketValue = players.MarketValue(*p, cfg.Params)
		agents = append(agents, p)
	}

	return l, market.NewPool(agents)
}

type generator struct {
	rng       *rand.Rand
	cfg       Config
	playerSeq int
	teamSeq   int
}

func (g *generator) team(index int, strength float64) *teams.Team {
	g.teamSeq++
	t := &teams.Team{
		ID:         fmt.Sprintf("T%02d", g.teamSeq),
		Name:       g.teamName(),
		Budget:     g.cfg.Budget,
		WageBudget: g.cfg.WageBudget,
	}

	for _, shape := range firstSquadShape {
		for i := 0; i < shape.count; i++ {
			// Starters sit around the team's strength, depth a band below.
			shift := 0.0
			if i > 0 {
				shift = g.cfg.Spread * 0.8
			}
			p := g.player(shape.pos, strength-shift, g.cfg.Spread*0.5, false)
			t.FirstTeam = append(t.FirstTeam, p)
		}
	}
	for _, shape := range academyShape {
		for i := 0; i < shape.count; i++ {
			p := g.player(shape.pos, strength-1.5*g.cfg.Spread, g.cfg.Spread*0.5, true)
			t.Academy = append(t.Academy, p)
		}
	}
	return t
}

func (g *generator) player(pos players.Position, skillMean, skillSD float64, academy bool) *players.Player {
	g.playerSeq++

	var age float64
	if academy {
		age = clampNormal(g.rng, 18.5, 1.0, 17, g.cfg.Params.AcademyMaxAge)
	} else {
		age = clampNormal(g.rng, 25.0, 3.5, 18, g.cfg.Params.MaxAge-1)
	}
	// Half-year grain matches the evolution step.
	age = math.Round(age*2) / 2

	skill := clampNormal(g.rng, skillMean, skillSD, 1, 99)
	potential := g.potential(age, skill)

	contractYears := float64(1 + g.rng.Intn(5))
	if academy {
		contractYears = float64(1 + g.rng.Intn(3))
	}

	p := &players.Player{
		ID:            fmt.Sprintf("P%04d", g.playerSeq),
		Name:          g.playerName(),
		Position:      pos,
		Age:           age,
		LatentAbility: skill,
		Potential:     potential,
		Contract: players.Contract{
			YearsRemaining: contractYears,
			Wage:           math.Round(skill * 10),
		},
		Availability: players.Availability{State: players.Fit},
		InjuryRisk:   math.Max(0.01, g.rng.NormFloat64()*0.02+0.05),
	}

	noise := (2*g.rng.Float64() - 1) * g.cfg.Params.NoiseBound
	p.ObservedRating = math.Max(0, math.Min(100, p.LatentAbility+noise))
	p.MarketValue = players.MarketValue(*p, g.cfg.Params)
	return p
}

// potential narrows with age: open for youngsters, modest for players in
// their prime, none past it.
func (g *generator) potential(age, skill float64) float64 {
	switch {
	case age <= 24:
		return skill + g.rng.Float64()*(100-skill)
	case age < 28:
		return math.Min(100, skill+g.rng.Float64()*g.cfg.Spread)
	default:
		return skill
	}
}

func clampNormal(rng *rand.Rand, mean, sd, lo, hi float64) float64 {
	v := rng.NormFloat64()*sd + mean
	for v < lo || v > hi {
		v = rng.NormFloat64()*sd + mean
	}
	return v
}
