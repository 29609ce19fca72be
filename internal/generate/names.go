package generate

import "fmt"

var teamAdjectives = []string{
	"Northern", "Coastal", "Royal", "United", "Old", "Riverside",
	"Western", "Harbour", "Iron", "Crystal", "Highland", "Valley",
}

var teamNouns = []string{
	"Rovers", "Athletic", "Wanderers", "City", "Town", "County",
	"Albion", "Rangers", "Dynamo", "Forest", "Orient", "Victoria",
}

var firstNames = []string{
	"Aleks", "Bruno", "Casper", "Dario", "Emil", "Felix", "Gianni",
	"Hugo", "Ivan", "Jonas", "Karim", "Luca", "Mateo", "Nikola",
	"Oscar", "Pavel", "Rafael", "Sergei", "Tomas", "Viktor",
}

var lastNames = []string{
	"Almeida", "Bergstrom", "Castellanos", "Dvorak", "Eriksen",
	"Fontaine", "Gruber", "Horvat", "Ibanez", "Jansen", "Kovacs",
	"Lindqvist", "Moreau", "Novak", "Okafor", "Petrov", "Quintana",
	"Rossi", "Silva", "Tanaka", "Ullmann", "Vasquez", "Weber",
	"Yilmaz", "Zola",
}

func (g *generator) leagueName() string {
	return fmt.Sprintf("%s League", teamAdjectives[g.rng.Intn(len(teamAdjectives))])
}

func (g *generator) teamName() string {
	return fmt.Sprintf("%s %s",
		teamAdjectives[g.rng.Intn(len(teamAdjectives))],
		teamNouns[g.rng.Intn(len(teamNouns))])
}

func (g *generator) playerName() string {
	return fmt.Sprintf("%s %s",
		firstNames[g.rng.Intn(len(firstNames))],
		lastNames[g.rng.Intn(len(lastNames))])
}
