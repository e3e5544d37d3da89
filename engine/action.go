package engine

import (
	"fmt"
	"slices"
	"sort"

	"rulesofwar/game"
	"rulesofwar/utils"
)

// Menu options.
const (
	OptClose     = "Close"
	OptSurrender = "Surrender"
	OptEndTurn   = "End Turn"
	OptUndo      = "Undo"
	OptStartOver = "Start Over"
	OptAttack    = "Attack"
	OptCapture   = "Capture"
	OptUnload    = "Unload"
	OptWait      = "Wait"
	OptCancel    = "Cancel"
	OptDone      = "Done"
)

// State is one step of a player's action. Step validates the input before
// touching the board and returns the next step or a terminal signal.
type State interface {
	Expects() InputKind
	Choices() Choices
	Step(b *game.Board, in Input, fx *Effects) (State, Signal, error)
}

// Effects collects what a step did that the controller reports on.
type Effects struct {
	Exchanges []game.Exchange
	Captures  []game.CaptureResult
	Defeated  []game.TeamID // surrendered
	Built     []game.UnitID
}

func illegal(s State, in Input) error {
	return fmt.Errorf("cannot handle %v input %v while expecting %v: %w", in.Kind, in, s.Expects(), ErrIllegalTransition)
}

func invalid(in Input) error {
	return fmt.Errorf("cannot handle %v: %w", in, ErrInvalidInput)
}

func sortCoords(cs []game.Coord) []game.Coord {
	slices.SortFunc(cs, func(a, b game.Coord) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return cs
}

// begin waits for the player to pick a tile.
type begin struct{}

func (begin) Expects() InputKind { return ExpectCoord }
func (begin) Choices() Choices   { return Choices{} }

func (s begin) Step(b *game.Board, in Input, _ *Effects) (State, Signal, error) {
	if in.Kind != ExpectCoord {
		return nil, Continue, illegal(s, in)
	}
	if !b.InBounds(in.At) {
		return nil, Continue, invalid(in)
	}
	team := b.CurrentTeam()
	if team != nil && team.Active {
		if u := b.UnitAt(in.At); u != nil {
			return newMove(b, u), Continue, nil
		}
		t := b.TileAt(in.At)
		if t.Owner == team.ID && b.TerrainOf(t).Buildable() {
			return newBuild(b, in.At), Continue, nil
		}
	}
	return mainMenu{}, Continue, nil
}

type mainMenu struct{}

func (mainMenu) Expects() InputKind { return ExpectMenu }

func (mainMenu) Choices() Choices {
	return Choices{Options: []string{OptClose, OptSurrender, OptEndTurn, OptUndo, OptStartOver}}
}

func (s mainMenu) Step(b *game.Board, in Input, fx *Effects) (State, Signal, error) {
	if in.Kind != ExpectMenu {
		return nil, Continue, illegal(s, in)
	}
	switch in.Choice {
	case OptClose:
		return nil, Trash, nil
	case OptSurrender:
		team := game.TeamID(b.Turn)
		b.Defeat(team)
		fx.Defeated = append(fx.Defeated, team)
		return nil, Commit, nil
	case OptEndTurn:
		return nil, End, nil
	case OptUndo:
		return nil, Undo, nil
	case OptStartOver:
		return nil, Restart, nil
	}
	return nil, Continue, invalid(in)
}

// build offers the units the current team can afford on one of its tiles.
type build struct {
	at      game.Coord
	options []string
	units   map[string]string // option -> unit type
}

func newBuild(b *game.Board, at game.Coord) build {
	s := build{at: at, units: map[string]string{}}
	prices := b.TerrainOf(b.TileAt(at)).Builds
	names := make([]string, 0, len(prices))
	for name := range prices {
		names = append(names, name)
	}
	sort.Strings(names)
	cash := b.CurrentTeam().Cash
	for _, name := range names {
		if prices[name] > cash {
			continue
		}
		opt := fmt.Sprintf("%s $%d", name, prices[name])
		s.options = append(s.options, opt)
		s.units[opt] = name
	}
	s.options = append(s.options, OptCancel)
	return s
}

func (build) Expects() InputKind { return ExpectMenu }
func (s build) Choices() Choices { return Choices{Options: slices.Clone(s.options)} }

func (s build) Step(b *game.Board, in Input, fx *Effects) (State, Signal, error) {
	if in.Kind != ExpectMenu {
		return nil, Continue, illegal(s, in)
	}
	if in.Choice == OptCancel {
		return nil, Trash, nil
	}
	name, ok := s.units[in.Choice]
	if !ok {
		return nil, Continue, invalid(in)
	}
	team := b.CurrentTeam()
	ut, err := b.Rules.Unit(name)
	if err != nil {
		return nil, Continue, err
	}
	price := b.TerrainOf(b.TileAt(s.at)).Builds[name]
	u := game.NewUnit(ut)
	u.Ready = false
	id, err := b.AddUnit(u, team.ID, s.at)
	if err != nil {
		return nil, Continue, fmt.Errorf("cannot build %s: %w", name, err)
	}
	team.Cash -= price
	fx.Built = append(fx.Built, id)
	return nil, Commit, nil
}

// move waits for the destination of the selected unit.
type move struct {
	unit   game.UnitID
	from   game.Coord
	reach  map[game.Coord]int
	coords []game.Coord
}

func newMove(b *game.Board, u *game.Unit) move {
	reach := b.Reachable(u.ID)
	coords := make([]game.Coord, 0, len(reach))
	for c := range reach {
		coords = append(coords, c)
	}
	return move{unit: u.ID, from: u.Pos, reach: reach, coords: sortCoords(coords)}
}

func (move) Expects() InputKind { return ExpectCoord }
func (s move) Choices() Choices { return Choices{Coords: slices.Clone(s.coords)} }

func (s move) Step(b *game.Board, in Input, _ *Effects) (State, Signal, error) {
	if in.Kind != ExpectCoord {
		return nil, Continue, illegal(s, in)
	}
	u := b.Unit(s.unit)
	left, ok := s.reach[in.At]
	if !ok || u == nil || u.Team != game.TeamID(b.Turn) || !u.Ready {
		return nil, Trash, nil
	}
	if in.At == s.from {
		return newUnitAct(b, u.ID, false), Continue, nil
	}

	ut := b.TypeOf(u)
	cost := b.MoveBudget(u) - left
	if occ := b.UnitAt(in.At); occ != nil {
		switch {
		case b.CanMerge(u, occ):
			occ.HP = utils.Clamp(occ.HP+u.HP, 0, game.MaxHP)
			occ.Ammo = utils.Clamp(occ.Ammo+u.Ammo, 0, ut.Ammo)
			occ.Fuel = utils.Clamp(occ.Fuel+u.Fuel, 0, ut.Fuel)
			occ.Ready = false
			b.TileAt(s.from).Capture = game.FullCapture
			b.RemoveUnit(u.ID)
			return nil, Commit, nil
		case b.CanBoard(u, occ):
			b.TileAt(s.from).Capture = game.FullCapture
			if err := b.LoadUnit(u.ID, occ.ID); err != nil {
				return nil, Continue, err
			}
			spendFuel(u, ut, cost)
			u.Ready = false
			return nil, Commit, nil
		}
	}

	if err := b.MoveUnit(u.ID, in.At); err != nil {
		return nil, Continue, err
	}
	b.TileAt(s.from).Capture = game.FullCapture
	spendFuel(u, ut, cost)
	return newUnitAct(b, u.ID, true), Continue, nil
}

func spendFuel(u *game.Unit, ut *game.UnitType, cost int) {
	if ut.Fuel > 0 {
		u.Fuel = max(0, u.Fuel-cost)
	}
}

// unitAct offers what a unit can do where it stands.
type unitAct struct {
	unit    game.UnitID
	options []string
	targets []game.Coord
}

func newUnitAct(b *game.Board, id game.UnitID, moved bool) unitAct {
	s := unitAct{unit: id}
	u := b.Unit(id)
	ut := b.TypeOf(u)
	if !(ut.Indirect && moved) {
		s.targets = b.Targets(id)
	}
	if len(s.targets) > 0 {
		s.options = append(s.options, OptAttack)
	}
	if b.CanCapture(id) {
		s.options = append(s.options, OptCapture)
	}
	if len(u.Carrying) > 0 {
		s.options = append(s.options, OptUnload)
	}
	s.options = append(s.options, OptWait, OptCancel)
	return s
}

func (unitAct) Expects() InputKind { return ExpectMenu }
func (s unitAct) Choices() Choices { return Choices{Options: slices.Clone(s.options)} }

func (s unitAct) Step(b *game.Board, in Input, fx *Effects) (State, Signal, error) {
	if in.Kind != ExpectMenu {
		return nil, Continue, illegal(s, in)
	}
	if !slices.Contains(s.options, in.Choice) {
		return nil, Continue, invalid(in)
	}
	u := b.Unit(s.unit)
	switch in.Choice {
	case OptAttack:
		return attack{unit: s.unit, targets: s.targets}, Continue, nil
	case OptCapture:
		res, err := b.Capture(s.unit)
		if err != nil {
			return nil, Continue, err
		}
		u.Ready = false
		fx.Captures = append(fx.Captures, res)
		return nil, Commit, nil
	case OptUnload:
		return newUnload(b, s.unit), Continue, nil
	case OptWait:
		u.Ready = false
		return nil, Commit, nil
	}
	return nil, Trash, nil
}

// attack waits for a target.
type attack struct {
	unit    game.UnitID
	targets []game.Coord
}

func (attack) Expects() InputKind { return ExpectCoord }
func (s attack) Choices() Choices { return Choices{Coords: slices.Clone(s.targets)} }

func (s attack) Step(b *game.Board, in Input, fx *Effects) (State, Signal, error) {
	if in.Kind != ExpectCoord {
		return nil, Continue, illegal(s, in)
	}
	if !slices.Contains(s.targets, in.At) {
		return nil, Trash, nil
	}
	u := b.Unit(s.unit)
	ex, err := b.ExecuteAttack(u.Pos, in.At)
	if err != nil {
		return nil, Continue, err
	}
	if u := b.Unit(s.unit); u != nil {
		u.Ready = false
	}
	fx.Exchanges = append(fx.Exchanges, ex)
	return nil, Commit, nil
}

// unload lists the carrier's passengers.
type unload struct {
	carrier game.UnitID
	options []string
}

func newUnload(b *game.Board, carrier game.UnitID) unload {
	s := unload{carrier: carrier}
	for i, id := range b.Unit(carrier).Carrying {
		s.options = append(s.options, fmt.Sprintf("%d: %s", i, b.Unit(id).Type))
	}
	s.options = append(s.options, OptDone)
	return s
}

func (unload) Expects() InputKind { return ExpectMenu }
func (s unload) Choices() Choices { return Choices{Options: slices.Clone(s.options)} }

func (s unload) Step(b *game.Board, in Input, _ *Effects) (State, Signal, error) {
	if in.Kind != ExpectMenu {
		return nil, Continue, illegal(s, in)
	}
	i := slices.Index(s.options, in.Choice)
	if i < 0 {
		return nil, Continue, invalid(in)
	}
	if in.Choice == OptDone {
		b.Unit(s.carrier).Ready = false
		return nil, Commit, nil
	}
	return newPlacement(b, s.carrier, i), Continue, nil
}

// placement waits for the tile a passenger is dropped on.
type placement struct {
	carrier game.UnitID
	index   int
	coords  []game.Coord
}

func newPlacement(b *game.Board, carrier game.UnitID, index int) placement {
	s := placement{carrier: carrier, index: index}
	c := b.Unit(carrier)
	pt := b.TypeOf(b.Unit(c.Carrying[index]))
	for _, at := range b.Range(c.Pos, 1, 1) {
		t := b.TileAt(at)
		if t == nil || t.Occupied() {
			continue
		}
		if _, ok := pt.Terrain[t.Terrain]; ok {
			s.coords = append(s.coords, at)
		}
	}
	sortCoords(s.coords)
	return s
}

func (placement) Expects() InputKind { return ExpectCoord }
func (s placement) Choices() Choices { return Choices{Coords: slices.Clone(s.coords)} }

// Step never fails: anything but a listed tile goes back to the passenger
// list.
func (s placement) Step(b *game.Board, in Input, _ *Effects) (State, Signal, error) {
	if in.Kind != ExpectCoord || !slices.Contains(s.coords, in.At) {
		return newUnload(b, s.carrier), Continue, nil
	}
	pid := b.Unit(s.carrier).Carrying[s.index]
	if err := b.UnloadUnit(s.carrier, s.index, in.At); err != nil {
		return nil, Continue, err
	}
	b.Unit(pid).Ready = false
	return newUnload(b, s.carrier), Continue, nil
}
