package game

// MoveBudget is the number of movement points a unit may spend this step.
// Fuel-limited types cannot spend more than their remaining fuel.
func (b *Board) MoveBudget(u *Unit) int {
	ut := b.TypeOf(u)
	budget := ut.Movement
	if ut.Fuel > 0 && u.Fuel < budget {
		budget = u.Fuel
	}
	return max(budget, 0)
}

// Reachable returns every tile the unit may end its move on, mapped to the
// budget left on arrival. The unit's own tile is always included.
//
// Allied units can be passed through, hostile units block. A terrain
// missing from the unit's cost table is impassable and a tile costing more
// than what is left is never entered. A tile is expanded again only when
// reached with more budget than before.
func (b *Board) Reachable(id UnitID) map[Coord]int {
	u := b.Unit(id)
	if u == nil || !u.Placed {
		return nil
	}
	ut := b.TypeOf(u)
	best := map[Coord]int{u.Pos: b.MoveBudget(u)}
	queue := []Coord{u.Pos}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		left := best[c]
		if left <= 0 {
			continue
		}
		for _, n := range b.Range(c, 1, 1) {
			t := b.TileAt(n)
			if t == nil {
				continue
			}
			cost, ok := ut.Terrain[t.Terrain]
			if !ok || cost > left {
				continue
			}
			if occ := b.UnitAt(n); occ != nil && !b.IsAllied(u.Team, occ.Team) {
				continue
			}
			rem := left - cost
			if prev, seen := best[n]; seen && prev >= rem {
				continue
			}
			best[n] = rem
			queue = append(queue, n)
		}
	}
	for c := range best {
		if !b.canStop(u, c) {
			delete(best, c)
		}
	}
	return best
}

// canStop reports whether u may end its move at c: an empty tile, its own
// tile, a same-type ally to merge with, or an allied carrier with room.
func (b *Board) canStop(u *Unit, c Coord) bool {
	occ := b.UnitAt(c)
	if occ == nil || occ.ID == u.ID {
		return true
	}
	if !b.IsAllied(u.Team, occ.Team) {
		return false
	}
	if b.CanMerge(u, occ) {
		return true
	}
	return b.CanBoard(u, occ)
}

// CanMerge reports whether u may join occ. Loaded units never merge.
func (b *Board) CanMerge(u, occ *Unit) bool {
	return u.ID != occ.ID && u.Type == occ.Type && len(u.Carrying) == 0 && b.IsAllied(u.Team, occ.Team)
}

// CanBoard reports whether u fits into carrier.
func (b *Board) CanBoard(u, carrier *Unit) bool {
	ct := b.TypeOf(carrier)
	return u.ID != carrier.ID &&
		b.IsAllied(u.Team, carrier.Team) &&
		b.TypeOf(u).Capacity == 0 &&
		ct.CanCarry(u.Type) &&
		len(carrier.Carrying) < ct.Capacity
}

// MoveCost returns the movement points spent reaching dest, and false when
// dest is not a legal stop.
func (b *Board) MoveCost(id UnitID, dest Coord) (int, bool) {
	u := b.Unit(id)
	if u == nil {
		return 0, false
	}
	left, ok := b.Reachable(id)[dest]
	if !ok {
		return 0, false
	}
	return b.MoveBudget(u) - left, true
}
