package teams

import "github.com/virtualtd/league-engine/internal/domain/players"

// roleWeights shape how each position category contributes to the single
// team-strength scalar consumed by the match outcome model.
var roleWeights = map[players.Position]float64{
	players.Goalkeeper: 1.0,
	players.Defender:   1.0,
	players.Midfielder: 1.05,
	players.Forward:    1.1,
}

// MinutesAllocation maps player ID to the share of available minutes the
// player is given for a half, in [0, 1]. It is an externally supplied
// decision; the engine consumes it but never invents one.
type MinutesAllocation map[string]float64

// Strength aggregates the observed ratings of the players allocated minutes
// into one scalar. Pure function of the current roster state and the supplied
// allocation: unavailable players and players with no minutes contribute
// nothing, and an empty allocation yields zero.
func Strength(t *Team, minutes MinutesAllocation) float64 {
	var weighted, shares float64
	for _, p := range t.Players() {
		share := minutes[p.ID]
		if share <= 0 || !p.Available() {
			continue
		}
		if share > 1 {
			share = 1
		}
		weighted += p.ObservedRating * roleWeights[p.Position] * share
		shares += share
	}
	if shares == 0 {
		return 0
	}
	return weighted / shares
}
