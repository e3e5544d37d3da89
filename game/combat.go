package game

import "fmt"

// Strike is the outcome of one side firing on the other. OK is false when
// the attacker has no weapon able to hit the defender, which differs from a
// strike that does zero damage.
type Strike struct {
	Damage  int
	Primary bool
	OK      bool
}

// Exchange records a resolved attack and its counter.
type Exchange struct {
	Attacker   UnitID
	Defender   UnitID
	Struck     bool
	Dealt      int
	Countered  bool
	Taken      int
	AttackerHP int
	DefenderHP int
	Destroyed  []UnitID
	Eliminated []TeamID // active teams left without units anywhere
}

// Simulate computes the damage att would deal to def standing on terrain,
// scaled by basisHP. The primary weapon needs ammunition.
func (b *Board) Simulate(att, def *Unit, terrain *Terrain, basisHP int) Strike {
	at := b.TypeOf(att)
	defense := 0
	if terrain != nil && !b.TypeOf(def).NoCover {
		defense = terrain.Defense
	}
	if v, ok := at.Primary[def.Type]; ok && att.Ammo > 0 {
		return Strike{Damage: damage(v, basisHP, defense), Primary: true, OK: true}
	}
	if v, ok := at.Secondary[def.Type]; ok {
		return Strike{Damage: damage(v, basisHP, defense), OK: true}
	}
	return Strike{}
}

// damage is value * hp/100 * (1 - defense/10), rounded down, never negative.
func damage(value, hp, defense int) int {
	return max(0, value*hp*(10-defense)/1000)
}

// canCounter reports whether def may answer an attack from distance d.
func (b *Board) canCounter(def *Unit, d int) bool {
	dt := b.TypeOf(def)
	return def.HP > 0 && !dt.Indirect && dt.InRange(d)
}

// ExecuteAttack resolves an attack from the unit at from on the unit at to,
// including the defender's counter. The counter is scaled by the attacker's
// health after its own strike. Destroyed units are removed and the tiles
// they held stop being contested.
func (b *Board) ExecuteAttack(from, to Coord) (Exchange, error) {
	att, def := b.UnitAt(from), b.UnitAt(to)
	if att == nil || def == nil {
		return Exchange{}, fmt.Errorf("cannot attack from %v to %v: %w", from, to, ErrNoUnit)
	}
	ex := Exchange{Attacker: att.ID, Defender: def.ID, AttackerHP: att.HP, DefenderHP: def.HP}
	s := b.Simulate(att, def, b.TerrainOf(b.TileAt(to)), att.HP)
	if !s.OK {
		return ex, nil
	}
	ex.Struck = true
	ex.Dealt = s.Damage
	def.HP = max(0, def.HP-s.Damage)
	if s.Primary {
		att.Ammo--
	}

	if b.canCounter(def, from.Dist(to)) {
		c := b.Simulate(def, att, b.TerrainOf(b.TileAt(from)), att.HP)
		if c.OK {
			ex.Countered = true
			ex.Taken = c.Damage
			att.HP = max(0, att.HP-c.Damage)
			if c.Primary {
				def.Ammo--
			}
		}
	}
	ex.AttackerHP, ex.DefenderHP = att.HP, def.HP

	for _, u := range []*Unit{def, att} {
		if u.HP > 0 {
			continue
		}
		pos := u.Pos
		ex.Destroyed = append(ex.Destroyed, u.ID)
		b.RemoveUnit(u.ID)
		b.TileAt(pos).Capture = FullCapture
	}
	for _, t := range b.Teams {
		if t.Active && b.TeamUnitCount(t.ID) == 0 {
			ex.Eliminated = append(ex.Eliminated, t.ID)
		}
	}
	return ex, nil
}

// Forecast previews an attack without touching the board. The counter is
// zero-valued when the defender would not answer.
func (b *Board) Forecast(from, to Coord) (Strike, Strike, error) {
	att, def := b.UnitAt(from), b.UnitAt(to)
	if att == nil || def == nil {
		return Strike{}, Strike{}, fmt.Errorf("cannot forecast from %v to %v: %w", from, to, ErrNoUnit)
	}
	s := b.Simulate(att, def, b.TerrainOf(b.TileAt(to)), att.HP)
	if !s.OK {
		return s, Strike{}, nil
	}
	hit := *def
	hit.HP = max(0, def.HP-s.Damage)
	if !b.canCounter(&hit, from.Dist(to)) {
		return s, Strike{}, nil
	}
	return s, b.Simulate(&hit, att, b.TerrainOf(b.TileAt(from)), att.HP), nil
}

// Targets lists the hostile units the given unit can hit from where it
// stands.
func (b *Board) Targets(id UnitID) []Coord {
	u := b.Unit(id)
	if u == nil || !u.Placed {
		return nil
	}
	ut := b.TypeOf(u)
	var out []Coord
	for _, c := range b.Range(u.Pos, ut.RangeMin, ut.RangeMax) {
		occ := b.UnitAt(c)
		if occ == nil || b.IsAllied(u.Team, occ.Team) {
			continue
		}
		if b.Simulate(u, occ, b.TerrainOf(b.TileAt(c)), u.HP).OK {
			out = append(out, c)
		}
	}
	return out
}

// CaptureResult describes one capture step.
type CaptureResult struct {
	At       Coord
	Progress int
	Captured bool
	From     TeamID // previous owner
	HQ       bool   // a headquarters fell and From was defeated
}

// CanCapture reports whether the unit may work on the tile it stands on.
func (b *Board) CanCapture(id UnitID) bool {
	u := b.Unit(id)
	if u == nil || !u.Placed || !b.TypeOf(u).Capture {
		return false
	}
	t := b.TileAt(u.Pos)
	return b.TerrainOf(t).Capturable && !b.IsAllied(u.Team, t.Owner)
}

// Capture lowers the progress of the tile under the unit by half the unit's
// health. At zero the tile changes hands. Taking a headquarters defeats its
// owner and hands over all of the owner's territory.
func (b *Board) Capture(id UnitID) (CaptureResult, error) {
	if !b.CanCapture(id) {
		return CaptureResult{}, fmt.Errorf("cannot capture with unit %d: %w", id, ErrCannotCapture)
	}
	u := b.Unit(id)
	t := b.TileAt(u.Pos)
	res := CaptureResult{At: u.Pos, From: t.Owner}
	t.Capture -= u.HP / 2
	if t.Capture <= 0 {
		t.Owner = u.Team
		t.Capture = FullCapture
		res.Captured = true
		if b.TerrainOf(t).HQ && res.From != NoTeam {
			res.HQ = true
			b.Defeat(res.From)
			b.TransferTerritory(res.From, u.Team)
		}
	}
	res.Progress = t.Capture
	return res, nil
}
