// Package league tracks the fixed set of teams in a competition and their
// standings across a season.
package league

import (
	"sort"

	"github.com/virtualtd/league-engine/internal/domain/teams"
)

// League holds a fixed set of teams for the duration of a season.
type League struct {
	Name  string
	Teams []*teams.Team
}

// Team looks a team up by ID.
func (l *League) Team(id string) (*teams.Team, bool) {
	for _, t := range l.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TeamIDs returns every team ID in a stable sorted order.
func (l *League) TeamIDs() []string {
	ids := make([]string, 0, len(l.Teams))
	for _, t := range l.Teams {
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)
	return ids
}

// Row is one team's standing.
type Row struct {
	TeamID       string `json:"team_id"`
	TeamName     string `json:"team_name"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	GoalDiff     int    `json:"goal_diff"`
	Points       int    `json:"points"`
}

// Standings maps team to record, recomputed incrementally after each match.
type Standings struct {
	rows map[string]*Row
}

// NewStandings seeds a zeroed row for every team so ranking is total from the
// first match onward.
func NewStandings(l *League) *Standings {
	rows := make(map[string]*Row, len(l.Teams))
	for _, t := range l.Teams {
		rows[t.ID] = &Row{TeamID: t.ID, TeamName: t.Name}
	}
	return &Standings{rows: rows}
}

// Row returns the standing for one team.
func (s *Standings) Row(teamID string) (Row, bool) {
	r, ok := s.rows[teamID]
	if !ok {
		return Row{}, false
	}
	return *r, true
}

// Apply folds one result into both teams' records: 3/1/0 points, goal
// difference, and match counts.
func (s *Standings) Apply(res MatchResult) {
	home, away := s.rows[res.HomeTeamID], s.rows[res.AwayTeamID]
	if home == nil || away == nil {
		return
	}

	home.Played++
	away.Played++
	home.GoalsFor += res.HomeGoals
	home.GoalsAgainst += res.AwayGoals
	away.GoalsFor += res.AwayGoals
	away.GoalsAgainst += res.HomeGoals

	switch {
	case res.HomeGoals > res.AwayGoals:
		home.Wins++
		home.Points += 3
		away.Losses++
	case res.HomeGoals < res.AwayGoals:
		away.Wins++
		away.Points += 3
		home.Losses++
	default:
		home.Draws++
		away.Draws++
		home.Points++
		away.Points++
	}

	home.GoalDiff = home.GoalsFor - home.GoalsAgainst
	away.GoalDiff = away.GoalsFor - away.GoalsAgainst
}

// Rank returns the table ordered by points desc, goal difference desc, goals
// for desc, then team ID asc. The final ID tiebreak makes the order total and
// deterministic.
func (s *Standings) Rank() []Row {
	table := make([]Row, 0, len(s.rows))
	for _, r := range s.rows {
		table = append(table, *r)
	}
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamID < b.TeamID
	})
	return table
}
