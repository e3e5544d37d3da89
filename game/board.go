package game

import (
	"fmt"
	"slices"

	"rulesofwar/utils"
)

// Board owns every tile, team and unit of a session. Entities refer to
// each other by id, so a value copy of the slices is a complete checkpoint.
type Board struct {
	Name  string
	W, H  int
	Day   int
	Turn  int // index of the current team
	Rules *Rules
	Teams []Team
	Tiles []Tile // row-major, len W*H
	units []Unit // every unit ever created, indexed by UnitID
}

// NewBoard returns a w by h board covered in the given terrain.
func NewBoard(rules *Rules, w, h int, terrain string) (*Board, error) {
	if _, ok := rules.Terrain[terrain]; !ok {
		return nil, fmt.Errorf("cannot create board: terrain %q: %w", terrain, ErrUnknownType)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("cannot create %dx%d board: %w", w, h, ErrInvalidMap)
	}
	b := &Board{W: w, H: h, Day: 1, Rules: rules, Tiles: make([]Tile, w*h)}
	for i := range b.Tiles {
		b.Tiles[i] = Tile{Terrain: terrain, Owner: NoTeam, Capture: FullCapture, Unit: NoUnit}
	}
	return b, nil
}

// AddTeam appends an active team allied only with itself.
func (b *Board) AddTeam(name, color string, cash int) TeamID {
	id := TeamID(len(b.Teams))
	b.Teams = append(b.Teams, Team{ID: id, Name: name, Color: color, Cash: cash, Active: true, Allies: []TeamID{id}})
	return id
}

// Ally joins the given teams into one alliance. Membership is symmetric.
func (b *Board) Ally(ids ...TeamID) {
	for _, a := range ids {
		for _, o := range ids {
			if t := b.Team(a); t != nil && !t.IsAllied(o) {
				t.Allies = append(t.Allies, o)
			}
		}
	}
}

func (b *Board) InBounds(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < b.W && c.Y < b.H
}

// TileAt returns nil for coordinates off the board.
func (b *Board) TileAt(c Coord) *Tile {
	if !b.InBounds(c) {
		return nil
	}
	return &b.Tiles[c.Y*b.W+c.X]
}

// UnitAt returns the unit standing at c, or nil.
func (b *Board) UnitAt(c Coord) *Unit {
	t := b.TileAt(c)
	if t == nil || t.Unit == NoUnit {
		return nil
	}
	return b.Unit(t.Unit)
}

// Unit returns a live unit by id, or nil.
func (b *Board) Unit(id UnitID) *Unit {
	if id < 0 || int(id) >= len(b.units) || !b.units[id].Alive {
		return nil
	}
	return &b.units[id]
}

func (b *Board) Team(id TeamID) *Team {
	if id < 0 || int(id) >= len(b.Teams) {
		return nil
	}
	return &b.Teams[id]
}

func (b *Board) CurrentTeam() *Team {
	return b.Team(TeamID(b.Turn))
}

// IsAllied reports whether two teams share an alliance. NoTeam is allied
// with nobody.
func (b *Board) IsAllied(a, o TeamID) bool {
	t := b.Team(a)
	return t != nil && o != NoTeam && t.IsAllied(o)
}

// TypeOf returns the static definition of a unit.
func (b *Board) TypeOf(u *Unit) *UnitType {
	return b.Rules.Units[u.Type]
}

// TerrainOf returns the static definition of a tile.
func (b *Board) TerrainOf(t *Tile) *Terrain {
	return b.Rules.Terrain[t.Terrain]
}

// Units lists the live units in id order, carried units included.
func (b *Board) Units() []*Unit {
	var out []*Unit
	for i := range b.units {
		if b.units[i].Alive {
			out = append(out, &b.units[i])
		}
	}
	return out
}

func (b *Board) UnitsOf(team TeamID) []*Unit {
	var out []*Unit
	for _, u := range b.Units() {
		if u.Team == team {
			out = append(out, u)
		}
	}
	return out
}

func (b *Board) TeamUnitCount(team TeamID) int {
	return len(b.UnitsOf(team))
}

// SetTerrain replaces the terrain of a tile. Ownership and occupant are kept.
func (b *Board) SetTerrain(c Coord, terrain string) error {
	t := b.TileAt(c)
	if t == nil {
		return fmt.Errorf("cannot set terrain at %v: %w", c, ErrOffBoard)
	}
	if _, ok := b.Rules.Terrain[terrain]; !ok {
		return fmt.Errorf("cannot set terrain at %v: %q: %w", c, terrain, ErrUnknownType)
	}
	t.Terrain = terrain
	t.Capture = FullCapture
	return nil
}

// MoveUnit relocates a unit onto an empty tile. Moving onto its own tile is
// a no-op.
func (b *Board) MoveUnit(id UnitID, c Coord) error {
	u := b.Unit(id)
	if u == nil {
		return fmt.Errorf("cannot move unit %d: %w", id, ErrNoUnit)
	}
	dst := b.TileAt(c)
	if dst == nil {
		return fmt.Errorf("cannot move unit %d to %v: %w", id, c, ErrOffBoard)
	}
	if dst.Unit == id {
		return nil
	}
	if dst.Unit != NoUnit {
		return fmt.Errorf("cannot move unit %d to %v: %w", id, c, ErrOccupiedTile)
	}
	if u.Placed {
		b.TileAt(u.Pos).Unit = NoUnit
	}
	dst.Unit = id
	u.Pos = c
	u.Placed = true
	return nil
}

// AddUnit places a new unit for team at c and returns its id. Any cargo
// listed on u is ignored; use LoadUnit to fill the new unit.
func (b *Board) AddUnit(u Unit, team TeamID, c Coord) (UnitID, error) {
	dst := b.TileAt(c)
	if dst == nil {
		return NoUnit, fmt.Errorf("cannot add %s at %v: %w", u.Type, c, ErrOffBoard)
	}
	if dst.Unit != NoUnit {
		return NoUnit, fmt.Errorf("cannot add %s at %v: %w", u.Type, c, ErrOccupiedTile)
	}
	id, err := b.register(u, team)
	if err != nil {
		return NoUnit, err
	}
	nu := &b.units[id]
	nu.Pos = c
	nu.Placed = true
	dst.Unit = id
	return id, nil
}

// addCargo registers a new unit directly inside a carrier.
func (b *Board) addCargo(u Unit, team TeamID, carrier UnitID) (UnitID, error) {
	if b.Unit(carrier) == nil {
		return NoUnit, fmt.Errorf("cannot add %s as cargo of %d: %w", u.Type, carrier, ErrNoUnit)
	}
	id, err := b.register(u, team)
	if err != nil {
		return NoUnit, err
	}
	if err := b.stow(id, carrier); err != nil {
		b.units[id].Alive = false
		return NoUnit, err
	}
	return id, nil
}

func (b *Board) register(u Unit, team TeamID) (UnitID, error) {
	if _, err := b.Rules.Unit(u.Type); err != nil {
		return NoUnit, fmt.Errorf("cannot add unit: %w", err)
	}
	if b.Team(team) == nil {
		return NoUnit, fmt.Errorf("cannot add %s for team %d: no such team", u.Type, team)
	}
	u.ID = UnitID(len(b.units))
	u.Team = team
	u.Alive = true
	u.Placed = false
	u.Carrying = nil
	u.HP = utils.Clamp(u.HP, 0, MaxHP)
	b.units = append(b.units, u)
	return u.ID, nil
}

// RemoveUnit takes a unit and everything it carries off the board.
func (b *Board) RemoveUnit(id UnitID) {
	u := b.Unit(id)
	if u == nil {
		return
	}
	cargo := u.Carrying
	u.Carrying = nil
	for _, c := range cargo {
		b.RemoveUnit(c)
	}
	if u.Placed {
		if t := b.TileAt(u.Pos); t != nil && t.Unit == id {
			t.Unit = NoUnit
		}
	} else if carrier := b.carrierOf(id); carrier != nil {
		carrier.Carrying = slices.DeleteFunc(carrier.Carrying, func(c UnitID) bool { return c == id })
	}
	u.Alive = false
	u.Placed = false
	u.Carrying = nil
}

func (b *Board) carrierOf(id UnitID) *Unit {
	for i := range b.units {
		if b.units[i].Alive && slices.Contains(b.units[i].Carrying, id) {
			return &b.units[i]
		}
	}
	return nil
}

// LoadUnit detaches a unit from the board and appends it to the carrier's
// manifest. Only units standing on the board can board. Carriers never
// carry other carriers.
func (b *Board) LoadUnit(id, carrier UnitID) error {
	u := b.Unit(id)
	if u == nil {
		return fmt.Errorf("cannot load unit %d into %d: %w", id, carrier, ErrNoUnit)
	}
	if !u.Placed {
		return fmt.Errorf("cannot load %s: already carried: %w", u.Type, ErrCannotCarry)
	}
	if err := b.stow(id, carrier); err != nil {
		return err
	}
	b.TileAt(u.Pos).Unit = NoUnit
	u.Placed = false
	return nil
}

// stow appends id to the carrier's manifest after checking it fits.
func (b *Board) stow(id, carrier UnitID) error {
	u, c := b.Unit(id), b.Unit(carrier)
	if u == nil || c == nil {
		return fmt.Errorf("cannot load unit %d into %d: %w", id, carrier, ErrNoUnit)
	}
	ct := b.TypeOf(c)
	if id == carrier || b.TypeOf(u).Capacity > 0 || !ct.CanCarry(u.Type) {
		return fmt.Errorf("cannot load %s into %s: %w", u.Type, c.Type, ErrCannotCarry)
	}
	if len(c.Carrying) >= ct.Capacity {
		return fmt.Errorf("cannot load %s into %s: %w", u.Type, c.Type, ErrCarrierFull)
	}
	c.Carrying = append(c.Carrying, id)
	return nil
}

// UnloadUnit pops the manifest entry at index and places it at c.
func (b *Board) UnloadUnit(carrier UnitID, index int, c Coord) error {
	cu := b.Unit(carrier)
	if cu == nil {
		return fmt.Errorf("cannot unload from %d: %w", carrier, ErrNoUnit)
	}
	if index < 0 || index >= len(cu.Carrying) {
		return fmt.Errorf("cannot unload cargo %d from %s: %w", index, cu.Type, ErrNoUnit)
	}
	dst := b.TileAt(c)
	if dst == nil {
		return fmt.Errorf("cannot unload to %v: %w", c, ErrOffBoard)
	}
	if dst.Unit != NoUnit {
		return fmt.Errorf("cannot unload to %v: %w", c, ErrOccupiedTile)
	}
	pid := cu.Carrying[index]
	cu.Carrying = slices.Delete(cu.Carrying, index, index+1)
	p := &b.units[pid]
	p.Pos = c
	p.Placed = true
	dst.Unit = pid
	return nil
}

// Purge removes every unit owned by team and, when includeTerritory is set,
// releases every tile it owns.
func (b *Board) Purge(team TeamID, includeTerritory bool) {
	for i := range b.units {
		if b.units[i].Alive && b.units[i].Team == team {
			b.RemoveUnit(b.units[i].ID)
		}
	}
	if !includeTerritory {
		return
	}
	for i := range b.Tiles {
		if b.Tiles[i].Owner == team {
			b.Tiles[i].Owner = NoTeam
			b.Tiles[i].Capture = FullCapture
		}
	}
}

// Defeat deactivates a team and removes its units. Its territory stays so
// that taking its headquarters later hands the land over.
func (b *Board) Defeat(team TeamID) {
	t := b.Team(team)
	if t == nil {
		return
	}
	t.Active = false
	b.Purge(team, false)
}

// TransferTerritory hands every tile owned by from to to.
func (b *Board) TransferTerritory(from, to TeamID) {
	for i := range b.Tiles {
		if b.Tiles[i].Owner == from {
			b.Tiles[i].Owner = to
			b.Tiles[i].Capture = FullCapture
		}
	}
}

// Range enumerates every coordinate whose distance from center lies in
// [lo, hi], ring by ring. Each ring of radius r > 0 is walked as four edges
// of r coordinates. Coordinates may fall off the board.
func (b *Board) Range(center Coord, lo, hi int) []Coord {
	if lo < 0 {
		lo = 0
	}
	var out []Coord
	for r := lo; r <= hi; r++ {
		if r == 0 {
			out = append(out, center)
			continue
		}
		x, y := center.X, center.Y
		for i := 0; i < r; i++ {
			out = append(out,
				Coord{x + i, y + r - i},
				Coord{x + r - i, y - i},
				Coord{x - i, y - r + i},
				Coord{x - r + i, y + i},
			)
		}
	}
	return out
}

func (b *Board) Dist(a, c Coord) int {
	return a.Dist(c)
}

// EndTurn hands the turn to the next active team. Passing the last team
// starts a new day and readies every unit. With no active team only the
// day advances.
func (b *Board) EndTurn() {
	n := len(b.Teams)
	wrapped := false
	for step := 1; step <= n; step++ {
		if b.Turn+step >= n {
			wrapped = true
		}
		idx := (b.Turn + step) % n
		if b.Teams[idx].Active {
			b.Turn = idx
			if wrapped {
				b.Day++
				b.Refresh()
			}
			return
		}
	}
	b.Day++
}

// Refresh readies every unit.
func (b *Board) Refresh() {
	for i := range b.units {
		if b.units[i].Alive {
			b.units[i].Ready = true
		}
	}
}

// Income is the sum of the income of every tile team owns.
func (b *Board) Income(team TeamID) int {
	total := 0
	for i := range b.Tiles {
		if b.Tiles[i].Owner == team {
			total += b.TerrainOf(&b.Tiles[i]).Income
		}
	}
	return total
}

// Resupply repairs and refills the units of team standing on allied tiles
// whose terrain services their type. It returns the ids it serviced.
func (b *Board) Resupply(team TeamID) []UnitID {
	var out []UnitID
	for _, u := range b.UnitsOf(team) {
		if !u.Placed {
			continue
		}
		t := b.TileAt(u.Pos)
		pct, ok := b.TerrainOf(t).Repairs[u.Type]
		if !ok || !b.IsAllied(team, t.Owner) {
			continue
		}
		ut := b.TypeOf(u)
		u.HP = utils.Clamp(u.HP+pct, 0, MaxHP)
		u.Ammo = ut.Ammo
		u.Fuel = ut.Fuel
		out = append(out, u.ID)
	}
	return out
}

// Copy returns an independent checkpoint of the board. Rules are shared.
func (b *Board) Copy() *Board {
	cp := *b
	cp.Tiles = slices.Clone(b.Tiles)
	cp.Teams = slices.Clone(b.Teams)
	for i := range cp.Teams {
		cp.Teams[i].Allies = slices.Clone(b.Teams[i].Allies)
	}
	cp.units = slices.Clone(b.units)
	for i := range cp.units {
		cp.units[i].Carrying = slices.Clone(b.units[i].Carrying)
	}
	return &cp
}
