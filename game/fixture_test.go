package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testRulesYAML = `
terrain:
  plains:   {icon: ".", color: green, defense: 1}
  road:     {icon: "=", color: white, defense: 0}
  forest:   {icon: "T", color: green, defense: 2}
  mountain: {icon: "^", color: brown, defense: 4}
  swamp:    {icon: "~", color: olive, defense: 0}
  sea:      {icon: "~", color: blue, defense: 0}
  city:
    icon: "C"
    color: grey
    defense: 3
    income: 100
    capture: true
    repairs: {infantry: 20, tank: 20}
  hq:
    icon: "H"
    color: grey
    defense: 4
    income: 100
    capture: true
    hq: true
  factory:
    icon: "F"
    color: grey
    defense: 3
    income: 100
    capture: true
    builds: {infantry: 1000, tank: 7000}
units:
  infantry:
    icon: i
    movement: 3
    fuel: 99
    capture: true
    secondary: {infantry: 55, tank: 5, artillery: 15, apc: 14}
    terrain: {plains: 1, road: 1, forest: 1, mountain: 2, swamp: 4, city: 1, hq: 1, factory: 1}
  tank:
    icon: T
    movement: 6
    fuel: 70
    ammo: 9
    primary: {tank: 55, artillery: 70, apc: 75}
    secondary: {infantry: 75}
    terrain: {plains: 1, road: 1, forest: 2, city: 1, hq: 1, factory: 1}
  artillery:
    icon: A
    movement: 5
    fuel: 50
    ammo: 9
    rangeMin: 2
    rangeMax: 3
    indirect: true
    primary: {infantry: 90, tank: 70, artillery: 75, apc: 70}
    terrain: {plains: 1, road: 1, forest: 2, city: 1, hq: 1, factory: 1}
  apc:
    icon: P
    movement: 6
    fuel: 70
    capacity: 1
    carries: [infantry]
    terrain: {plains: 1, road: 1, forest: 2, city: 1, hq: 1, factory: 1}
`

func testRules(t *testing.T) *Rules {
	t.Helper()
	r, err := LoadRules(strings.NewReader(testRulesYAML))
	require.NoError(t, err)
	return r
}

const (
	red  TeamID = 0
	blue TeamID = 1
)

// testBoard returns a w by h board of terrain with two hostile teams, red
// playing first.
func testBoard(t *testing.T, rules *Rules, w, h int, terrain string) *Board {
	t.Helper()
	b, err := NewBoard(rules, w, h, terrain)
	require.NoError(t, err)
	b.AddTeam("red", "red", 0)
	b.AddTeam("blue", "blue", 0)
	return b
}

func place(t *testing.T, b *Board, typ string, team TeamID, c Coord) UnitID {
	t.Helper()
	ut, err := b.Rules.Unit(typ)
	require.NoError(t, err)
	id, err := b.AddUnit(NewUnit(ut), team, c)
	require.NoError(t, err)
	return id
}
