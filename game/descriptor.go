package game

import (
	"fmt"
	"io"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// MapDescriptor is the serialized form of a board. Dimensions are implied
// by the cell list.
type MapDescriptor struct {
	Name      string           `json:"name" yaml:"name"`
	Day       int              `json:"day,omitempty" yaml:"day,omitempty"`
	Turn      int              `json:"turn,omitempty" yaml:"turn,omitempty"`
	Teams     []TeamDescriptor `json:"teams" yaml:"teams"`
	Alliances [][]int          `json:"alliances,omitempty" yaml:"alliances,omitempty"`
	Cells     []CellDescriptor `json:"cells" yaml:"cells"`
}

type TeamDescriptor struct {
	Name   string `json:"name" yaml:"name"`
	Color  string `json:"color" yaml:"color"`
	Cash   int    `json:"cash,omitempty" yaml:"cash,omitempty"`
	Active *bool  `json:"active,omitempty" yaml:"active,omitempty"` // nil means active
}

type CellDescriptor struct {
	X       int             `json:"x" yaml:"x"`
	Y       int             `json:"y" yaml:"y"`
	Terrain string          `json:"terrain" yaml:"terrain"`
	Team    *int            `json:"team,omitempty" yaml:"team,omitempty"`
	Capture int             `json:"capture,omitempty" yaml:"capture,omitempty"` // 0 means uncontested
	Unit    *UnitDescriptor `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// UnitDescriptor describes a unit and its cargo. Unset fields take the
// type's defaults.
type UnitDescriptor struct {
	Type     string           `json:"type" yaml:"type"`
	Team     int              `json:"team" yaml:"team"`
	HP       int              `json:"hp,omitempty" yaml:"hp,omitempty"`
	Ammo     *int             `json:"ammo,omitempty" yaml:"ammo,omitempty"`
	Fuel     *int             `json:"fuel,omitempty" yaml:"fuel,omitempty"`
	Ready    *bool            `json:"ready,omitempty" yaml:"ready,omitempty"`
	Carrying []UnitDescriptor `json:"carrying,omitempty" yaml:"carrying,omitempty"`
}

// LoadMap decodes a map descriptor from YAML or JSON.
func LoadMap(in io.Reader) (MapDescriptor, error) {
	var m MapDescriptor
	if err := yaml.NewDecoder(in).Decode(&m); err != nil {
		return MapDescriptor{}, fmt.Errorf("cannot decode map: %w", err)
	}
	return m, nil
}

// LoadBoard builds a board from a descriptor. The cell list must cover the
// rectangle it implies exactly once.
func LoadBoard(rules *Rules, m MapDescriptor) (*Board, error) {
	if len(m.Cells) == 0 {
		return nil, fmt.Errorf("cannot load map %q: no cells: %w", m.Name, ErrInvalidMap)
	}
	w, h := 0, 0
	for _, c := range m.Cells {
		if c.X < 0 || c.Y < 0 {
			return nil, fmt.Errorf("cannot load map %q: cell (%d,%d): %w", m.Name, c.X, c.Y, ErrInvalidMap)
		}
		w, h = max(w, c.X+1), max(h, c.Y+1)
	}
	if len(m.Cells) != w*h {
		return nil, fmt.Errorf("cannot load map %q: %d cells for a %dx%d grid: %w", m.Name, len(m.Cells), w, h, ErrInvalidMap)
	}

	b := &Board{Name: m.Name, W: w, H: h, Day: m.Day, Turn: m.Turn, Rules: rules, Tiles: make([]Tile, w*h)}
	if b.Day == 0 {
		b.Day = 1
	}
	for _, td := range m.Teams {
		id := b.AddTeam(td.Name, td.Color, td.Cash)
		if td.Active != nil {
			b.Teams[id].Active = *td.Active
		}
	}
	if len(b.Teams) > 0 && (b.Turn < 0 || b.Turn >= len(b.Teams)) {
		return nil, fmt.Errorf("cannot load map %q: turn %d: %w", m.Name, m.Turn, ErrInvalidMap)
	}
	for _, group := range m.Alliances {
		ids := make([]TeamID, 0, len(group))
		for _, g := range group {
			if b.Team(TeamID(g)) == nil {
				return nil, fmt.Errorf("cannot load map %q: alliance member %d: %w", m.Name, g, ErrInvalidMap)
			}
			ids = append(ids, TeamID(g))
		}
		b.Ally(ids...)
	}
	for i := range b.Teams {
		slices.Sort(b.Teams[i].Allies)
	}

	seen := make([]bool, w*h)
	for _, cd := range m.Cells {
		c := Coord{cd.X, cd.Y}
		i := cd.Y*w + cd.X
		if seen[i] {
			return nil, fmt.Errorf("cannot load map %q: duplicate cell %v: %w", m.Name, c, ErrInvalidMap)
		}
		seen[i] = true
		if _, ok := rules.Terrain[cd.Terrain]; !ok {
			return nil, fmt.Errorf("cannot load map %q: cell %v terrain %q: %w", m.Name, c, cd.Terrain, ErrUnknownType)
		}
		t := Tile{Terrain: cd.Terrain, Owner: NoTeam, Capture: cd.Capture, Unit: NoUnit}
		if t.Capture <= 0 || t.Capture > FullCapture {
			t.Capture = FullCapture
		}
		if cd.Team != nil {
			if b.Team(TeamID(*cd.Team)) == nil {
				return nil, fmt.Errorf("cannot load map %q: cell %v owner %d: %w", m.Name, c, *cd.Team, ErrInvalidMap)
			}
			t.Owner = TeamID(*cd.Team)
		}
		b.Tiles[i] = t
	}

	for _, cd := range m.Cells {
		if cd.Unit == nil {
			continue
		}
		c := Coord{cd.X, cd.Y}
		u, err := unitFrom(rules, *cd.Unit)
		if err != nil {
			return nil, fmt.Errorf("cannot load map %q: cell %v: %w", m.Name, c, err)
		}
		id, err := b.AddUnit(u, TeamID(cd.Unit.Team), c)
		if err != nil {
			return nil, fmt.Errorf("cannot load map %q: %w", m.Name, err)
		}
		for _, cargo := range cd.Unit.Carrying {
			p, err := unitFrom(rules, cargo)
			if err != nil {
				return nil, fmt.Errorf("cannot load map %q: cargo at %v: %w", m.Name, c, err)
			}
			if _, err := b.addCargo(p, TeamID(cargo.Team), id); err != nil {
				return nil, fmt.Errorf("cannot load map %q: cargo at %v: %w", m.Name, c, err)
			}
		}
	}
	return b, nil
}

func unitFrom(rules *Rules, ud UnitDescriptor) (Unit, error) {
	ut, err := rules.Unit(ud.Type)
	if err != nil {
		return Unit{}, err
	}
	u := NewUnit(ut)
	if ud.HP > 0 {
		u.HP = ud.HP
	}
	if ud.Ammo != nil {
		u.Ammo = *ud.Ammo
	}
	if ud.Fuel != nil {
		u.Fuel = *ud.Fuel
	}
	if ud.Ready != nil {
		u.Ready = *ud.Ready
	}
	return u, nil
}

// Export serializes the board. LoadBoard(rules, b.Export()) rebuilds an
// equivalent board; unit ids are renumbered in row-major order.
func (b *Board) Export() MapDescriptor {
	m := MapDescriptor{Name: b.Name, Day: b.Day, Turn: b.Turn, Alliances: b.allianceGroups()}
	for _, t := range b.Teams {
		active := t.Active
		m.Teams = append(m.Teams, TeamDescriptor{Name: t.Name, Color: t.Color, Cash: t.Cash, Active: &active})
	}
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			t := b.TileAt(Coord{x, y})
			cd := CellDescriptor{X: x, Y: y, Terrain: t.Terrain}
			if t.Capture != FullCapture {
				cd.Capture = t.Capture
			}
			if t.Owner != NoTeam {
				owner := int(t.Owner)
				cd.Team = &owner
			}
			if u := b.Unit(t.Unit); u != nil {
				ud := b.describe(u)
				cd.Unit = &ud
			}
			m.Cells = append(m.Cells, cd)
		}
	}
	return m
}

func (b *Board) describe(u *Unit) UnitDescriptor {
	ammo, fuel, ready := u.Ammo, u.Fuel, u.Ready
	ud := UnitDescriptor{Type: u.Type, Team: int(u.Team), HP: u.HP, Ammo: &ammo, Fuel: &fuel, Ready: &ready}
	for _, id := range u.Carrying {
		if p := b.Unit(id); p != nil {
			ud.Carrying = append(ud.Carrying, b.describe(p))
		}
	}
	return ud
}

// allianceGroups writes each alliance whose members all share the same ally
// set as one group and falls back to pairs otherwise.
func (b *Board) allianceGroups() [][]int {
	var groups [][]int
	seen := map[string]bool{}
	for _, t := range b.Teams {
		if len(t.Allies) < 2 {
			continue
		}
		members := slices.Clone(t.Allies)
		slices.Sort(members)
		clique := true
		for _, a := range members {
			other := slices.Clone(b.Team(a).Allies)
			slices.Sort(other)
			if !slices.Equal(members, other) {
				clique = false
				break
			}
		}
		if clique {
			key := fmt.Sprint(members)
			if !seen[key] {
				seen[key] = true
				groups = append(groups, toInts(members))
			}
			continue
		}
		for _, a := range members {
			if a <= t.ID {
				continue
			}
			key := fmt.Sprint([]TeamID{t.ID, a})
			if !seen[key] {
				seen[key] = true
				groups = append(groups, []int{int(t.ID), int(a)})
			}
		}
	}
	sort.Slice(groups, func(i, j int) bool { return slices.Compare(groups[i], groups[j]) < 0 })
	return groups
}

func toInts(ids []TeamID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
