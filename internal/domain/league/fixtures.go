package league

// Fixture is one scheduled match.
type Fixture struct {
	Round      int    `json:"round"`
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
}

// Schedule is a season's fixture list split into the two halves played either
// side of the winter break.
type Schedule struct {
	FirstHalf  []Fixture `json:"first_half"`
	SecondHalf []Fixture `json:"second_half"`
}

// GenerateSchedule builds a double round-robin via the circle method: every
// team meets every other once per half, with home and away swapped in the
// second half. The rotation offset is derived from the season number, so the
// schedule is deterministic given team IDs and season, and varies between
// seasons. Odd team counts get a bye slot that is filtered out.
func GenerateSchedule(l *League, season int) Schedule {
	ids := l.TeamIDs()
	n := len(ids)
	if n < 2 {
		return Schedule{}
	}
	if n%2 != 0 {
		ids = append(ids, "") // bye
		n++
	}

	// Season-dependent starting rotation keeps pairings identical but shifts
	// which rounds they land in.
	for r := 0; r < (season-1)%(n-1); r++ {
		rotate(ids)
	}

	var firstHalf []Fixture
	for round := 1; round < n; round++ {
		for i := 0; i < n/2; i++ {
			home, away := ids[i], ids[n-1-i]
			if home == "" || away == "" {
				continue
			}
			// Alternate venue by round so no team hosts every week.
			if round%2 == 0 {
				home, away = away, home
			}
			firstHalf = append(firstHalf, Fixture{Round: round, HomeTeamID: home, AwayTeamID: away})
		}
		rotate(ids)
	}

	secondHalf := make([]Fixture, len(firstHalf))
	for i, f := range firstHalf {
		secondHalf[i] = Fixture{
			Round:      f.Round + n - 1,
			HomeTeamID: f.AwayTeamID,
			AwayTeamID: f.HomeTeamID,
		}
	}

	return Schedule{FirstHalf: firstHalf, SecondHalf: secondHalf}
}

// rotate performs one circle-method step: the first element stays fixed and
// the rest shift by one.
func rotate(ids []string) {
	last := ids[len(ids)-1]
	copy(ids[2:], ids[1:len(ids)-1])
	ids[1] = last
}
