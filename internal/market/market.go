// Package market clears a transfer window: listed players and free agents
// are matched to bidding teams under budget, wage, and roster constraints.
package market

import (
	"errors"
	"fmt"
	"sort"

	"github.com/virtualtd/league-engine/internal/clock"
	"github.com/virtualtd/league-engine/internal/domain/players"
	"github.com/virtualtd/league-engine/internal/domain/teams"
)

// ErrMarketDidNotConverge reports that the clearing loop exceeded its
// iteration bound. This indicates a configuration or invariant problem, not a
// normal market outcome.
var ErrMarketDidNotConverge = errors.New("transfer market did not converge within iteration bound")

// BudgetViolationError reports a transfer that reached execution although it
// would drive the buyer's budget negative. Qualification filters every such
// bid, so seeing this error means an engine bug.
type BudgetViolationError struct {
	TeamID string
	Budget float64
	Fee    float64
}

func (e *BudgetViolationError) Error() string {
	return fmt.Sprintf("team %s: fee %.2f exceeds budget %.2f", e.TeamID, e.Fee, e.Budget)
}

// Listing offers a player for sale. SellerID is empty for free agents, who
// transfer for zero fee but still occupy a roster slot and count against the
// wage budget.
type Listing struct {
	PlayerID string  `json:"player_id"`
	SellerID string  `json:"seller_id,omitempty"`
	Price    float64 `json:"price"`
}

// Offer is one team's bid for a listed player.
type Offer struct {
	BuyerID  string  `json:"buyer_id"`
	PlayerID string  `json:"player_id"`
	Amount   float64 `json:"amount"`
}

// Transfer is a completed, atomic move of a player between rosters and of
// money between budgets.
type Transfer struct {
	PlayerID   string       `json:"player_id"`
	PlayerName string       `json:"player_name"`
	FromTeamID string       `json:"from_team_id,omitempty"`
	ToTeamID   string       `json:"to_team_id"`
	Fee        float64      `json:"fee"`
	Season     int          `json:"season"`
	Window     clock.Window `json:"-"`
	WindowName string       `json:"window"`
}

// Params bounds the clearing loop.
type Params struct {
	// MaxIterations caps the fixed-point loop.
	MaxIterations int
	// AcademyMaxAge decides which sub-roster an incoming player occupies.
	AcademyMaxAge float64
}

// DefaultParams returns the market tuning used when nothing is configured.
func DefaultParams() Params {
	return Params{MaxIterations: 64, AcademyMaxAge: 21}
}

// Pool holds the free agents available to every window.
type Pool struct {
	agents map[string]*players.Player
	order  []string
}

// NewPool builds a free-agent pool.
func NewPool(agents []*players.Player) *Pool {
	p := &Pool{agents: make(map[string]*players.Player, len(agents))}
	for _, a := range agents {
		if _, ok := p.agents[a.ID]; ok {
			continue
		}
		p.agents[a.ID] = a
		p.order = append(p.order, a.ID)
	}
	sort.Strings(p.order)
	return p
}

// Get returns a free agent by ID.
func (p *Pool) Get(id string) (*players.Player, bool) {
	if p == nil {
		return nil, false
	}
	a, ok := p.agents[id]
	return a, ok
}

// Add returns a released player to the pool.
func (p *Pool) Add(a *players.Player) {
	if p == nil || a == nil {
		return
	}
	if _, ok := p.agents[a.ID]; ok {
		return
	}
	p.agents[a.ID] = a
	p.order = append(p.order, a.ID)
	sort.Strings(p.order)
}

// Drop removes a free agent from the pool, e.g. on retirement.
func (p *Pool) Drop(id string) {
	if p == nil {
		return
	}
	p.remove(id)
}

func (p *Pool) remove(id string) {
	delete(p.agents, id)
	kept := p.order[:0]
	for _, o := range p.order {
		if o != id {
			kept = append(kept, o)
		}
	}
	p.order = kept
}

// Players returns the pool in ID order.
func (p *Pool) Players() []*players.Player {
	if p == nil {
		return nil
	}
	out := make([]*players.Player, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.agents[id])
	}
	return out
}

// Size returns the number of free agents in the pool.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return len(p.agents)
}

// Report is the outcome of one cleared window.
type Report struct {
	Season     int        `json:"season"`
	Window     string     `json:"window"`
	Executed   []Transfer `json:"executed"`
	Unsold     []string   `json:"unsold"`
	Iterations int        `json:"iterations"`
	// DroppedOffers counts bids discarded as infeasible during clearing.
	DroppedOffers int `json:"dropped_offers"`
}

// targetRoster picks the sub-roster an incoming player occupies.
func targetRoster(p *players.Player, params Params) teams.RosterKind {
	if p.Age <= params.AcademyMaxAge {
		return teams.Academy
	}
	return teams.FirstSquad
}
