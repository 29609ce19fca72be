// Package players models a single player's latent ability, observable
// rating, market value, contract, and availability, and implements the
// per-period evolution applied between season halves.
package players

import "fmt"

// Position is a plain category; role differences are modeled through the
// strength weights, not through subtypes.
type Position string

const (
	Goalkeeper Position = "GK"
	Defender   Position = "DEF"
	Midfielder Position = "MID"
	Forward    Position = "FWD"
)

// Positions lists every category in a fixed, deterministic order.
var Positions = []Position{Goalkeeper, Defender, Midfielder, Forward}

// AvailabilityState describes whether a player can be selected.
type AvailabilityState int

const (
	Fit AvailabilityState = iota
	Injured
	Suspended
)

func (a AvailabilityState) String() string {
	switch a {
	case Fit:
		return "fit"
	case Injured:
		return "injured"
	case Suspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Availability is the player's current selection state. PeriodsRemaining
// counts mutation steps until an injured or suspended player returns.
type Availability struct {
	State            AvailabilityState `json:"state"`
	PeriodsRemaining int               `json:"periods_remaining,omitempty"`
}

// Contract holds the remaining engagement with the owning team.
type Contract struct {
	YearsRemaining float64 `json:"years_remaining"`
	Wage           float64 `json:"wage"`
}

// Player is the engine's view of one player. ObservedRating is always derived
// from LatentAbility plus bounded noise during evolution and is what every
// other component (team strength, market valuation) reads; LatentAbility is
// never exposed to decisions.
type Player struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Position       Position     `json:"position"`
	Age            float64      `json:"age"`
	LatentAbility  float64      `json:"latent_ability"`
	Potential      float64      `json:"potential"`
	ObservedRating float64      `json:"observed_rating"`
	MarketValue    float64      `json:"market_value"`
	Contract       Contract     `json:"contract"`
	Availability   Availability `json:"availability"`
	InjuryRisk     float64      `json:"injury_risk"`
	Retired        bool         `json:"retired"`
}

// Available reports whether the player can be allocated minutes.
func (p *Player) Available() bool {
	return !p.Retired && p.Availability.State == Fit
}

// InvalidStateError reports an operation attempted on a player whose state
// forbids it, such as evolving a retired player.
type InvalidStateError struct {
	PlayerID string
	Op       string
	State    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("player %s: cannot %s in state %s", e.PlayerID, e.Op, e.State)
}
