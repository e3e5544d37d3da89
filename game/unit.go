package game

// UnitID indexes the board's unit roster. IDs are never reused within a
// session so that recorded inputs and checkpoints stay comparable.
type UnitID int

const NoUnit UnitID = -1

// MaxHP is the health of an undamaged unit.
const MaxHP = 100

// Unit is a piece owned by a team. Static data is found through Type.
type Unit struct {
	ID       UnitID   `json:"id"`
	Type     string   `json:"type"`
	Team     TeamID   `json:"team"`
	HP       int      `json:"hp"`
	Ready    bool     `json:"ready"`
	Ammo     int      `json:"ammo"`
	Fuel     int      `json:"fuel"`
	Carrying []UnitID `json:"carrying,omitempty"`
	Pos      Coord    `json:"pos"`
	Placed   bool     `json:"placed"` // false while carried
	Alive    bool     `json:"alive"`
}

// NewUnit returns a full-strength, ready unit of the given type. It has no
// id or position until it is added to a board.
func NewUnit(ut *UnitType) Unit {
	return Unit{
		ID:    NoUnit,
		Type:  ut.Name,
		Team:  NoTeam,
		HP:    MaxHP,
		Ready: true,
		Ammo:  ut.Ammo,
		Fuel:  ut.Fuel,
	}
}
