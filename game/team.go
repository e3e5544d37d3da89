package game

import "rulesofwar/utils"

// TeamID indexes Board.Teams.
type TeamID int

// NoTeam marks an unowned tile.
const NoTeam TeamID = -1

// Team is a faction controlling units and territory.
type Team struct {
	ID     TeamID   `json:"id"`
	Name   string   `json:"name"`
	Color  string   `json:"color"`
	Cash   int      `json:"cash"`
	Active bool     `json:"active"`
	Allies []TeamID `json:"allies"` // symmetric, includes the team itself
}

// IsAllied reports whether other is in the team's alliance. Defeat never
// changes the alliance.
func (t *Team) IsAllied(other TeamID) bool {
	return utils.FindIndex(t.Allies, other) >= 0
}
