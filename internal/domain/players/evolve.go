package players

import (
	"math"
	"math/rand"
)

// Params tunes the evolution and valuation models. Values are plain
// configuration, not learned quantities.
type Params struct {
	// NoiseBound caps the absolute difference between latent ability and the
	// observed rating produced each period.
	NoiseBound float64
	// YouthAgeMax is the age below which ability trends upward with higher
	// variance.
	YouthAgeMax float64
	// DeclineAge is the age from which ability trends downward.
	DeclineAge float64
	// DevRate and DeclineRate are the mean per-period drift magnitudes for
	// young and veteran players.
	DevRate     float64
	DeclineRate float64
	// PeakAge is where the valuation curve peaks.
	PeakAge float64
	// ValueBase scales the valuation curve.
	ValueBase float64
	// Scarcity weights market value by position category.
	Scarcity map[Position]float64
	// InjuryAgeLoad and InjuryMinutesLoad scale a player's base injury risk
	// with age past the peak and with minutes played.
	InjuryAgeLoad     float64
	InjuryMinutesLoad float64
	// MaxRecoveryPeriods bounds the sampled injury recovery duration, in
	// mutation steps.
	MaxRecoveryPeriods int
	// MaxAge retires a player at the next mutation step once reached.
	MaxAge float64
	// AcademyMaxAge terminates academy players once exceeded.
	AcademyMaxAge float64
}

// DefaultParams returns the tuning used when no overrides are configured.
func DefaultParams() Params {
	return Params{
		NoiseBound:  3.0,
		YouthAgeMax: 24,
		DeclineAge:  30,
		DevRate:     0.9,
		DeclineRate: 0.6,
		PeakAge:     27,
		ValueBase:   1000,
		Scarcity: map[Position]float64{
			Goalkeeper: 0.9,
			Defender:   1.0,
			Midfielder: 1.1,
			Forward:    1.25,
		},
		InjuryAgeLoad:      0.05,
		InjuryMinutesLoad:  0.5,
		MaxRecoveryPeriods: 2,
		MaxAge:             35,
		AcademyMaxAge:      21,
	}
}

// PeriodContext carries the inputs one evolution step depends on.
type PeriodContext struct {
	// MinutesShare is the fraction of available minutes the player actually
	// played in the preceding half, in [0, 1].
	MinutesShare float64
	Params       Params
}

// Evolve advances the player by one half-season period: ability drift, a fresh
// observed rating, an availability transition, aging, contract run-down, and a
// recomputed market value. The player is mutated in place. Evolving a retired
// player is an error.
func (p *Player) Evolve(ctx PeriodContext, rng *rand.Rand) error {
	if p.Retired {
		return &InvalidStateError{PlayerID: p.ID, Op: "evolve", State: "retired"}
	}

	params := ctx.Params
	share := clamp(ctx.MinutesShare, 0, 1)

	p.driftAbility(params, share, rng)
	p.observe(params, rng)
	p.transitionAvailability(params, share, rng)

	p.Age += 0.5
	p.Contract.YearsRemaining = math.Max(0, p.Contract.YearsRemaining-0.5)

	p.MarketValue = MarketValue(*p, params)
	return nil
}

// driftAbility applies the age-dependent stochastic drift. Players who do not
// play develop (or decay) at a reduced magnitude.
func (p *Player) driftAbility(params Params, share float64, rng *rand.Rand) {
	var mean, sigma float64
	switch {
	case p.Age < params.YouthAgeMax:
		mean, sigma = params.DevRate, 1.2
	case p.Age >= params.DeclineAge:
		mean, sigma = -params.DeclineRate, 0.4
	default:
		mean, sigma = 0.1, 0.6
	}

	magnitude := 0.25 + 0.75*share
	delta := magnitude * (mean + sigma*rng.NormFloat64())

	p.LatentAbility = clamp(p.LatentAbility+delta, 0, math.Min(100, p.Potential))
}

// observe projects latent ability into the rating visible to teams and the
// market: latent plus independent noise bounded by NoiseBound.
func (p *Player) observe(params Params, rng *rand.Rand) {
	noise := (2*rng.Float64() - 1) * params.NoiseBound
	p.ObservedRating = clamp(p.LatentAbility+noise, 0, 100)
}

func (p *Player) transitionAvailability(params Params, share float64, rng *rand.Rand) {
	switch p.Availability.State {
	case Injured, Suspended:
		p.Availability.PeriodsRemaining--
		if p.Availability.PeriodsRemaining <= 0 {
			p.Availability = Availability{State: Fit}
		}
	case Fit:
		ageLoad := math.Max(0, p.Age-params.PeakAge) * params.InjuryAgeLoad
		risk := p.InjuryRisk * (1 + ageLoad + params.InjuryMinutesLoad*share)
		if rng.Float64() < clamp(risk, 0, 1) {
			recovery := 1
			if params.MaxRecoveryPeriods > 1 {
				recovery += rng.Intn(params.MaxRecoveryPeriods)
			}
			p.Availability = Availability{State: Injured, PeriodsRemaining: recovery}
		}
	}
}

// MarketValue is the deterministic estimated transfer value: a rating- and
// potential-driven base, shaped by a curve peaking at PeakAge, a contract
// multiplier, and position scarcity. Two players with identical attributes
// always value identically.
func MarketValue(p Player, params Params) float64 {
	rating := clamp(p.ObservedRating, 0, 100)
	potential := clamp(p.Potential, rating, 100)

	base := rating*rating + 0.5*(potential*potential-rating*rating)
	base *= params.ValueBase / 10000

	// Curve peaks at PeakAge: a gentle climb from 1.0 to 1.25, then a
	// hyperbolic decline. Continuous at the peak.
	age := math.Max(p.Age, 16)
	var ageMult float64
	if age < params.PeakAge {
		ageMult = 1 + 0.25*(age-16)/(params.PeakAge-16)
	} else {
		ageMult = 1.25 * params.PeakAge / age
	}

	months := math.Max(6, p.Contract.YearsRemaining*12)
	contractMult := 1 + 36/months

	scarcity := params.Scarcity[p.Position]
	if scarcity == 0 {
		scarcity = 1
	}

	value := base * ageMult * contractMult * scarcity
	if value < 0 {
		return 0
	}
	return value
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
