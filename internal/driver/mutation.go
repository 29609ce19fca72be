package driver

import (
	"sort"

	"github.com/virtualtd/league-engine/internal/clock"
	"github.com/virtualtd/league-engine/internal/domain/players"
	"github.com/virtualtd/league-engine/internal/domain/teams"
)

// runMutation is the squad-mutation step that follows each transfer window:
// every player league-wide evolves one period (ability drift, fresh observed
// rating, availability transition, aging, value recompute), then rosters are
// mutated: retirement past the age maximum, release at contract expiry,
// academy age cuts, contract extensions, and academy promotion into opened
// first-squad slots. Released professionals join the free-agent pool.
func (d *Driver) runMutation(window clock.Window, minutes map[string]float64) ([]players.Player, error) {
	params := d.cfg.PlayerParams
	extensions := d.decisions.ContractExtensions(d.clk.Season(), window, d.league)

	var departed []players.Player

	for _, t := range d.teamsByID() {
		firstSize := len(t.FirstTeam)

		for _, p := range t.Players() {
			ctx := players.PeriodContext{MinutesShare: minutes[p.ID], Params: params}
			if err := p.Evolve(ctx, d.rng); err != nil {
				return nil, err
			}
		}

		events, toPool := d.rosterEvents(t, extensions, params)
		events = append(events, d.promotionEvents(t, events, firstSize)...)

		removed, err := t.ApplyMutation(events)
		if err != nil {
			return nil, err
		}
		for _, p := range removed {
			departed = append(departed, *p)
			if toPool[p.ID] {
				d.pool.Add(p)
			}
		}
	}

	d.evolvePool(params)
	return departed, nil
}

// rosterEvents decides removals and extensions for one team. Extensions are
// applied before expiry is judged, so a renewed player stays. A goalkeeper
// departure that no remaining or promotable goalkeeper can cover is deferred
// to a later period, since the mutation would be rejected wholesale otherwise.
func (d *Driver) rosterEvents(t *teams.Team, extensions map[string]players.Contract, params players.Params) ([]teams.MutationEvent, map[string]bool) {
	var events []teams.MutationEvent
	toPool := make(map[string]bool)

	extended := make(map[string]bool)
	for _, p := range t.Players() {
		if terms, ok := extensions[p.ID]; ok && terms.YearsRemaining > 0 {
			events = append(events, teams.MutationEvent{Kind: teams.Extend, PlayerID: p.ID, Contract: terms})
			extended[p.ID] = true
		}
	}

	academyDue := func(p *players.Player) bool {
		return p.Age > params.AcademyMaxAge || (p.Contract.YearsRemaining <= 0 && !extended[p.ID])
	}

	// Settle academy departures first; they bound how many goalkeepers the
	// first squad can draw on.
	acadGK, acadOutfield := 0, 0
	for _, p := range t.Academy {
		if p.Position == players.Goalkeeper {
			acadGK++
		} else if !academyDue(p) {
			acadOutfield++
		}
	}
	for _, p := range t.Academy {
		if !academyDue(p) || p.Position != players.Goalkeeper {
			if academyDue(p) {
				events = append(events, teams.MutationEvent{Kind: teams.Release, PlayerID: p.ID})
			}
			continue
		}
		// The last academy goalkeeper only leaves with the whole roster.
		if acadGK <= 1 && acadOutfield > 0 {
			continue
		}
		events = append(events, teams.MutationEvent{Kind: teams.Release, PlayerID: p.ID})
		acadGK--
	}

	// Goalkeepers the first squad can take without stripping the academy.
	spareAcadGK := acadGK
	if acadOutfield > 0 {
		spareAcadGK--
	}
	if spareAcadGK < 0 {
		spareAcadGK = 0
	}

	firstGK := 0
	for _, p := range t.FirstTeam {
		if p.Position == players.Goalkeeper {
			firstGK++
		}
	}
	for _, p := range t.FirstTeam {
		var kind teams.MutationKind
		switch {
		case p.Age >= params.MaxAge:
			kind = teams.Retire
		case p.Contract.YearsRemaining <= 0 && !extended[p.ID]:
			kind = teams.Release
		default:
			continue
		}
		if p.Position == players.Goalkeeper {
			if firstGK-1+spareAcadGK < 1 {
				continue
			}
			firstGK--
		}
		events = append(events, teams.MutationEvent{Kind: kind, PlayerID: p.ID})
		if kind == teams.Release {
			toPool[p.ID] = true
		}
	}
	return events, toPool
}

// promotionEvents refills first-squad slots opened by this step's removals
// with the best eligible academy players. A missing first-squad goalkeeper is
// backfilled first, but never at the cost of the academy's own mandatory
// goalkeeper slot.
func (d *Driver) promotionEvents(t *teams.Team, pending []teams.MutationEvent, firstSize int) []teams.MutationEvent {
	leaving := make(map[string]bool)
	for _, ev := range pending {
		if ev.Kind == teams.Retire || ev.Kind == teams.Release {
			leaving[ev.PlayerID] = true
		}
	}

	remainingFirst := 0
	firstKeepers := 0
	for _, p := range t.FirstTeam {
		if leaving[p.ID] {
			continue
		}
		remainingFirst++
		if p.Position == players.Goalkeeper {
			firstKeepers++
		}
	}

	var candidates []*players.Player
	academyKeepers := 0
	for _, p := range t.SortedByRating(teams.Academy) {
		if leaving[p.ID] {
			continue
		}
		candidates = append(candidates, p)
		if p.Position == players.Goalkeeper {
			academyKeepers++
		}
	}

	target := firstSize
	if target > teams.FirstSquadCapacity {
		target = teams.FirstSquadCapacity
	}

	var events []teams.MutationEvent
	promoted := make(map[string]bool)

	promote := func(p *players.Player) {
		events = append(events, teams.MutationEvent{Kind: teams.Promote, PlayerID: p.ID})
		promoted[p.ID] = true
		remainingFirst++
		if p.Position == players.Goalkeeper {
			firstKeepers++
			academyKeepers--
		}
	}

	if firstKeepers == 0 && remainingFirst > 0 {
		acadOutfield := len(candidates) - academyKeepers
		for _, p := range candidates {
			if p.Position != players.Goalkeeper || remainingFirst >= teams.FirstSquadCapacity {
				continue
			}
			// The academy's last goalkeeper is only taken when the academy
			// does not need him anymore.
			if academyKeepers <= 1 && acadOutfield > 0 {
				break
			}
			promote(p)
			break
		}
	}

	for _, p := range candidates {
		if remainingFirst >= target {
			break
		}
		if promoted[p.ID] {
			continue
		}
		// Keep a goalkeeper behind for the academy's own mandatory slot.
		if p.Position == players.Goalkeeper && academyKeepers <= 1 && firstKeepers > 0 {
			continue
		}
		promote(p)
	}
	return events
}

// evolvePool ages the free-agent pool alongside the league and drops agents
// who pass the retirement threshold.
func (d *Driver) evolvePool(params players.Params) {
	for _, p := range d.pool.Players() {
		ctx := players.PeriodContext{MinutesShare: 0, Params: params}
		if err := p.Evolve(ctx, d.rng); err != nil {
			continue
		}
		if p.Age >= params.MaxAge {
			d.pool.Drop(p.ID)
		}
	}
}

// teamsByID returns the league's teams in ID order so evolution draws from
// the shared rng stream in a reproducible sequence.
func (d *Driver) teamsByID() []*teams.Team {
	sorted := append([]*teams.Team(nil), d.league.Teams...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}

// snapshotPlayers copies every rostered player, sorted by ID.
func (d *Driver) snapshotPlayers() []players.Player {
	var snap []players.Player
	for _, t := range d.league.Teams {
		for _, p := range t.Players() {
			snap = append(snap, *p)
		}
	}
	sort.Slice(snap, func(i, j int) bool { return snap[i].ID < snap[j].ID })
	return snap
}
