// Package teams models a club: a first squad and an academy roster with
// fixed capacities, a transfer budget, and a wage budget. The package owns the
// roster and budget invariants every mutation and transfer must preserve.
package teams

import (
	"fmt"
	"sort"

	"github.com/virtualtd/league-engine/internal/domain/players"
)

const (
	// FirstSquadCapacity and AcademyCapacity fix the 22+11 squad structure.
	FirstSquadCapacity = 22
	AcademyCapacity    = 11
)

// RosterKind selects one of the two sub-rosters.
type RosterKind int

const (
	FirstSquad RosterKind = iota
	Academy
)

func (k RosterKind) String() string {
	if k == Academy {
		return "academy"
	}
	return "first_squad"
}

// Capacity returns the fixed size limit of the sub-roster.
func (k RosterKind) Capacity() int {
	if k == Academy {
		return AcademyCapacity
	}
	return FirstSquadCapacity
}

// RosterConstraintError reports a mutation or transfer that would violate the
// squad-size or mandatory-position invariants.
type RosterConstraintError struct {
	TeamID string
	Roster RosterKind
	Reason string
}

func (e *RosterConstraintError) Error() string {
	return fmt.Sprintf("team %s: %s roster: %s", e.TeamID, e.Roster, e.Reason)
}

// Team owns its players exclusively while they are on a roster. Rosters are
// ordered; iteration and aggregation always follow insertion order so runs
// are reproducible.
type Team struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	FirstTeam  []*players.Player `json:"first_team"`
	Academy    []*players.Player `json:"academy"`
	Budget     float64           `json:"budget"`
	WageBudget float64           `json:"wage_budget"`
}

// Roster returns the requested sub-roster slice.
func (t *Team) Roster(kind RosterKind) []*players.Player {
	if kind == Academy {
		return t.Academy
	}
	return t.FirstTeam
}

// Players returns first squad then academy, in roster order.
func (t *Team) Players() []*players.Player {
	all := make([]*players.Player, 0, len(t.FirstTeam)+len(t.Academy))
	all = append(all, t.FirstTeam...)
	all = append(all, t.Academy...)
	return all
}

// Find locates a player on either roster.
func (t *Team) Find(playerID string) (*players.Player, RosterKind, bool) {
	for _, p := range t.FirstTeam {
		if p.ID == playerID {
			return p, FirstSquad, true
		}
	}
	for _, p := range t.Academy {
		if p.ID == playerID {
			return p, Academy, true
		}
	}
	return nil, FirstSquad, false
}

// HasRoom reports whether the sub-roster can take one more player.
func (t *Team) HasRoom(kind RosterKind) bool {
	return len(t.Roster(kind)) < kind.Capacity()
}

// Add appends a player to the sub-roster, enforcing capacity.
func (t *Team) Add(p *players.Player, kind RosterKind) error {
	if !t.HasRoom(kind) {
		return &RosterConstraintError{TeamID: t.ID, Roster: kind, Reason: "roster at capacity"}
	}
	if kind == Academy {
		t.Academy = append(t.Academy, p)
	} else {
		t.FirstTeam = append(t.FirstTeam, p)
	}
	return nil
}

// Remove detaches a player from whichever roster holds them. Removing the
// last goalkeeper from the first squad is rejected: the roster must keep at
// least one player in every mandatory position category.
func (t *Team) Remove(playerID string) (*players.Player, error) {
	p, kind, ok := t.Find(playerID)
	if !ok {
		return nil, &RosterConstraintError{TeamID: t.ID, Roster: kind, Reason: fmt.Sprintf("player %s not on roster", playerID)}
	}
	if kind == FirstSquad && p.Position == players.Goalkeeper && t.countPosition(FirstSquad, players.Goalkeeper) <= 1 {
		return nil, &RosterConstraintError{TeamID: t.ID, Roster: kind, Reason: "would leave no goalkeeper"}
	}
	t.detach(playerID, kind)
	return p, nil
}

// CanRelease reports whether the player could leave the roster without
// violating the mandatory-position invariant.
func (t *Team) CanRelease(playerID string) bool {
	p, kind, ok := t.Find(playerID)
	if !ok {
		return false
	}
	if kind == FirstSquad && p.Position == players.Goalkeeper && t.countPosition(FirstSquad, players.Goalkeeper) <= 1 {
		return false
	}
	return true
}

// forceRemove detaches without the mandatory-position check. Mutation events
// such as retirement must always be applied; the constraint is re-validated
// by the caller afterwards.
func (t *Team) forceRemove(playerID string) (*players.Player, bool) {
	p, kind, ok := t.Find(playerID)
	if !ok {
		return nil, false
	}
	t.detach(playerID, kind)
	return p, true
}

func (t *Team) detach(playerID string, kind RosterKind) {
	roster := t.Roster(kind)
	kept := roster[:0]
	for _, p := range roster {
		if p.ID != playerID {
			kept = append(kept, p)
		}
	}
	if kind == Academy {
		t.Academy = kept
	} else {
		t.FirstTeam = kept
	}
}

func (t *Team) countPosition(kind RosterKind, pos players.Position) int {
	n := 0
	for _, p := range t.Roster(kind) {
		if p.Position == pos {
			n++
		}
	}
	return n
}

// WageBill sums the wages of every player on either roster.
func (t *Team) WageBill() float64 {
	total := 0.0
	for _, p := range t.Players() {
		total += p.Contract.Wage
	}
	return total
}

// SortedByRating returns the sub-roster ordered by observed rating descending,
// ID ascending on ties. The team's rosters are not reordered.
func (t *Team) SortedByRating(kind RosterKind) []*players.Player {
	roster := append([]*players.Player(nil), t.Roster(kind)...)
	sort.Slice(roster, func(i, j int) bool {
		if roster[i].ObservedRating != roster[j].ObservedRating {
			return roster[i].ObservedRating > roster[j].ObservedRating
		}
		return roster[i].ID < roster[j].ID
	})
	return roster
}
