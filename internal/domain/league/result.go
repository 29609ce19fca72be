package league

import (
	"math"
	"math/rand"
)

// OutcomeParams tunes the probabilistic match outcome model.
type OutcomeParams struct {
	// DrawBaseline is the probability mass reserved for draws before the
	// remaining mass is split by relative strength.
	DrawBaseline float64
	// Steepness controls how sharply the win probability responds to the
	// strength difference.
	Steepness float64
	// BaseGoals is the Poisson mean for a side's baseline goal count.
	BaseGoals float64
}

// DefaultOutcomeParams returns the tuning used when nothing is configured.
func DefaultOutcomeParams() OutcomeParams {
	return OutcomeParams{
		DrawBaseline: 0.26,
		Steepness:    0.11,
		BaseGoals:    1.15,
	}
}

// MatchResult is one played fixture.
type MatchResult struct {
	Fixture    Fixture `json:"fixture"`
	HomeTeamID string  `json:"home_team_id"`
	AwayTeamID string  `json:"away_team_id"`
	HomeGoals  int     `json:"home_goals"`
	AwayGoals  int     `json:"away_goals"`
}

// RecordResult samples a scoreline from the strength difference and folds it
// into the standings. The home win probability is a logistic function of the
// difference scaled to the mass left after the draw baseline, so a stronger
// side is monotonically more likely to win. The sampled goals always agree
// with the sampled outcome.
func (s *Standings) RecordResult(fix Fixture, homeStrength, awayStrength float64, params OutcomeParams, rng *rand.Rand) MatchResult {
	res := SampleResult(fix, homeStrength, awayStrength, params, rng)
	s.Apply(res)
	return res
}

// SampleResult draws one result without touching any shared state, so fixture
// evaluation can run concurrently.
func SampleResult(fix Fixture, homeStrength, awayStrength float64, params OutcomeParams, rng *rand.Rand) MatchResult {
	diff := homeStrength - awayStrength
	pHomeWin := (1 - params.DrawBaseline) / (1 + math.Exp(-params.Steepness*diff))

	res := MatchResult{Fixture: fix, HomeTeamID: fix.HomeTeamID, AwayTeamID: fix.AwayTeamID}

	u := rng.Float64()
	loser := samplePoisson(params.BaseGoals, rng)
	switch {
	case u < pHomeWin:
		res.HomeGoals = loser + 1 + marginBonus(diff, rng)
		res.AwayGoals = loser
	case u < pHomeWin+params.DrawBaseline:
		res.HomeGoals = loser
		res.AwayGoals = loser
	default:
		res.HomeGoals = loser
		res.AwayGoals = loser + 1 + marginBonus(-diff, rng)
	}
	return res
}

// marginBonus occasionally widens the winner's margin, more often for larger
// strength gaps.
func marginBonus(diff float64, rng *rand.Rand) int {
	if diff <= 0 {
		return 0
	}
	lambda := math.Min(1.5, diff/12)
	return samplePoisson(lambda, rng)
}

// samplePoisson draws from a Poisson distribution with mean lambda using the
// multiplication method.
func samplePoisson(lambda float64, rng *rand.Rand) int {
	if lambda <= 0 {
		return 0
	}
	threshold := math.Exp(-lambda)
	p := 1.0
	k := 0
	for p > threshold {
		k++
		p *= rng.Float64()
	}
	return k - 1
}
