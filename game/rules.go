package game

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"rulesofwar/utils"
)

// UnitType is the static definition shared by every unit of one kind.
type UnitType struct {
	Name      string         `json:"-" yaml:"-"`
	Icon      string         `json:"icon" yaml:"icon"`
	Movement  int            `json:"movement" yaml:"movement"`
	Fuel      int            `json:"fuel,omitempty" yaml:"fuel,omitempty"` // 0 means no fuel limit
	RangeMin  int            `json:"rangeMin,omitempty" yaml:"rangeMin,omitempty"`
	RangeMax  int            `json:"rangeMax,omitempty" yaml:"rangeMax,omitempty"`
	Ammo      int            `json:"ammo,omitempty" yaml:"ammo,omitempty"`
	Primary   map[string]int `json:"primary,omitempty" yaml:"primary,omitempty"`     // target type -> base damage, costs ammo
	Secondary map[string]int `json:"secondary,omitempty" yaml:"secondary,omitempty"` // target type -> base damage
	Terrain   map[string]int `json:"terrain" yaml:"terrain"`                         // terrain -> movement cost, absent means impassable
	Capacity  int            `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	Carries   []string       `json:"carries,omitempty" yaml:"carries,omitempty"`
	Indirect  bool           `json:"indirect,omitempty" yaml:"indirect,omitempty"`
	NoCover   bool           `json:"nocover,omitempty" yaml:"nocover,omitempty"`
	Capture   bool           `json:"capture,omitempty" yaml:"capture,omitempty"`
}

// InRange reports whether a target at distance d is inside the firing range.
func (ut *UnitType) InRange(d int) bool {
	return d >= ut.RangeMin && d <= ut.RangeMax
}

// CanCarry reports whether units of the named type may board this one.
func (ut *UnitType) CanCarry(name string) bool {
	return ut.Capacity > 0 && utils.FindIndex(ut.Carries, name) >= 0
}

// Terrain is the static definition of a kind of tile.
type Terrain struct {
	Name       string         `json:"-" yaml:"-"`
	Icon       string         `json:"icon" yaml:"icon"`
	Color      string         `json:"color" yaml:"color"`
	Defense    int            `json:"defense" yaml:"defense"`
	Income     int            `json:"income,omitempty" yaml:"income,omitempty"`
	Capturable bool           `json:"capture,omitempty" yaml:"capture,omitempty"`
	HQ         bool           `json:"hq,omitempty" yaml:"hq,omitempty"`
	Builds     map[string]int `json:"builds,omitempty" yaml:"builds,omitempty"`   // unit type -> price
	Repairs    map[string]int `json:"repairs,omitempty" yaml:"repairs,omitempty"` // unit type -> hp percent per turn
}

func (t *Terrain) Buildable() bool {
	return len(t.Builds) > 0
}

// Rules holds every unit and terrain definition of a session. Rules are
// immutable once prepared and are shared between board copies.
type Rules struct {
	Units   map[string]*UnitType `json:"units" yaml:"units"`
	Terrain map[string]*Terrain  `json:"terrain" yaml:"terrain"`
}

// NewRules builds and validates a rule set.
func NewRules(units map[string]*UnitType, terrain map[string]*Terrain) (*Rules, error) {
	r := &Rules{Units: units, Terrain: terrain}
	if err := r.Prepare(); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadRules decodes a rule descriptor. JSON input is accepted as well since
// it is a subset of YAML.
func LoadRules(in io.Reader) (*Rules, error) {
	var r Rules
	if err := yaml.NewDecoder(in).Decode(&r); err != nil {
		return nil, fmt.Errorf("cannot decode rules: %w", err)
	}
	if err := r.Prepare(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Prepare fills in derived fields and checks that every table refers to
// known unit and terrain types. It must run before the rules are used.
func (r *Rules) Prepare() error {
	if r.Units == nil {
		r.Units = map[string]*UnitType{}
	}
	if r.Terrain == nil {
		r.Terrain = map[string]*Terrain{}
	}
	for name, t := range r.Terrain {
		if t == nil {
			return fmt.Errorf("cannot prepare terrain %q: empty definition", name)
		}
		t.Name = name
		for _, unit := range sortedKeys(t.Builds) {
			if _, ok := r.Units[unit]; !ok {
				return fmt.Errorf("terrain %q builds %q: %w", name, unit, ErrUnknownType)
			}
		}
		for _, unit := range sortedKeys(t.Repairs) {
			if _, ok := r.Units[unit]; !ok {
				return fmt.Errorf("terrain %q repairs %q: %w", name, unit, ErrUnknownType)
			}
		}
	}
	for name, ut := range r.Units {
		if ut == nil {
			return fmt.Errorf("cannot prepare unit %q: empty definition", name)
		}
		ut.Name = name
		if ut.RangeMax == 0 {
			ut.RangeMin, ut.RangeMax = 1, 1
		}
		if ut.RangeMin > ut.RangeMax {
			return fmt.Errorf("unit %q has range %d-%d: minimum exceeds maximum", name, ut.RangeMin, ut.RangeMax)
		}
		for _, table := range []map[string]int{ut.Primary, ut.Secondary} {
			for _, target := range sortedKeys(table) {
				if _, ok := r.Units[target]; !ok {
					return fmt.Errorf("unit %q damages %q: %w", name, target, ErrUnknownType)
				}
			}
		}
		for _, terrain := range sortedKeys(ut.Terrain) {
			if _, ok := r.Terrain[terrain]; !ok {
				return fmt.Errorf("unit %q moves over %q: %w", name, terrain, ErrUnknownType)
			}
		}
		for _, cargo := range ut.Carries {
			if _, ok := r.Units[cargo]; !ok {
				return fmt.Errorf("unit %q carries %q: %w", name, cargo, ErrUnknownType)
			}
		}
	}
	return nil
}

// Unit looks up a unit type by name.
func (r *Rules) Unit(name string) (*UnitType, error) {
	ut, ok := r.Units[name]
	if !ok {
		return nil, fmt.Errorf("unit %q: %w", name, ErrUnknownType)
	}
	return ut, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
