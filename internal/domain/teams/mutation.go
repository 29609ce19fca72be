package teams

import (
	"fmt"

	"github.com/virtualtd/league-engine/internal/domain/players"
)

// MutationKind enumerates the squad mutations the evolution driver can decide.
type MutationKind int

const (
	// Retire removes a player permanently (age or contract rules).
	Retire MutationKind = iota
	// Release removes a player without retiring them (academy age cut).
	Release
	// Promote moves an academy player into an open first-squad slot.
	Promote
	// Extend replaces a player's contract terms.
	Extend
)

func (k MutationKind) String() string {
	switch k {
	case Retire:
		return "retire"
	case Release:
		return "release"
	case Promote:
		return "promote"
	case Extend:
		return "extend"
	default:
		return "unknown"
	}
}

// MutationEvent is one roster change decided by the driver.
type MutationEvent struct {
	Kind     MutationKind
	PlayerID string
	// Contract carries the new terms for Extend events.
	Contract players.Contract
}

// ApplyMutation applies the driver's roster events in order, then validates
// the mandatory-position invariant: neither sub-roster may be left without a
// goalkeeper while it still holds players. Events referencing unknown players
// are skipped; an invariant violation aborts with RosterConstraintError and
// the team unchanged.
func (t *Team) ApplyMutation(events []MutationEvent) ([]*players.Player, error) {
	staged := &Team{
		ID:         t.ID,
		Name:       t.Name,
		FirstTeam:  append([]*players.Player(nil), t.FirstTeam...),
		Academy:    append([]*players.Player(nil), t.Academy...),
		Budget:     t.Budget,
		WageBudget: t.WageBudget,
	}

	// Player structs are shared with the live team, so side effects (the
	// retired flag, new contract terms) are deferred until validation passes.
	var removed, retirees []*players.Player
	var extensions []MutationEvent
	for _, ev := range events {
		switch ev.Kind {
		case Retire, Release:
			p, ok := staged.forceRemove(ev.PlayerID)
			if !ok {
				continue
			}
			if ev.Kind == Retire {
				retirees = append(retirees, p)
			}
			removed = append(removed, p)
		case Promote:
			p, kind, ok := staged.Find(ev.PlayerID)
			if !ok || kind != Academy {
				continue
			}
			if !staged.HasRoom(FirstSquad) {
				return nil, &RosterConstraintError{TeamID: t.ID, Roster: FirstSquad, Reason: "promotion into a full first squad"}
			}
			staged.detach(ev.PlayerID, Academy)
			staged.FirstTeam = append(staged.FirstTeam, p)
		case Extend:
			if _, _, ok := staged.Find(ev.PlayerID); ok {
				extensions = append(extensions, ev)
			}
		}
	}

	if err := staged.validateMandatoryPositions(); err != nil {
		return nil, err
	}

	for _, p := range retirees {
		p.Retired = true
	}
	for _, ev := range extensions {
		if p, _, ok := staged.Find(ev.PlayerID); ok {
			p.Contract = ev.Contract
		}
	}

	t.FirstTeam = staged.FirstTeam
	t.Academy = staged.Academy
	return removed, nil
}

func (t *Team) validateMandatoryPositions() error {
	for _, kind := range []RosterKind{FirstSquad, Academy} {
		roster := t.Roster(kind)
		if len(roster) == 0 {
			continue
		}
		if t.countPosition(kind, players.Goalkeeper) == 0 {
			return &RosterConstraintError{
				TeamID: t.ID,
				Roster: kind,
				Reason: fmt.Sprintf("no %s left after mutation", players.Goalkeeper),
			}
		}
	}
	return nil
}
