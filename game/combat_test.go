package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// duelRules defines small duelling types on flat terrain without cover.
func duelRules(t *testing.T, aAmmo int) *Rules {
	t.Helper()
	flat := map[string]int{"flat": 1}
	r, err := NewRules(map[string]*UnitType{
		"alpha": {Movement: 3, Ammo: aAmmo, Secondary: map[string]int{"bravo": 50, "mortar": 50}, Terrain: flat},
		"bravo": {Movement: 3, Secondary: map[string]int{"alpha": 30}, Terrain: flat},
		"mortar": {
			Movement: 3, RangeMin: 1, RangeMax: 3, Indirect: true,
			Secondary: map[string]int{"alpha": 90}, Terrain: flat,
		},
		"gunner": {Movement: 3, Ammo: aAmmo, Primary: map[string]int{"bravo": 50}, Terrain: flat},
		"brute":  {Movement: 3, Secondary: map[string]int{"bravo": 250}, Terrain: flat},
	}, map[string]*Terrain{"flat": {Defense: 0}})
	require.NoError(t, err)
	return r
}

func TestExecuteAttack(t *testing.T) {
	t.Run("exchange with a counter", func(t *testing.T) {
		b := testBoard(t, duelRules(t, 0), 2, 1, "flat")
		a := place(t, b, "alpha", red, Coord{0, 0})
		d := place(t, b, "bravo", blue, Coord{1, 0})

		ex, err := b.ExecuteAttack(Coord{0, 0}, Coord{1, 0})
		require.NoError(t, err)
		require.Equal(t, 50, b.Unit(d).HP, "Defender should take 50")
		require.Equal(t, 70, b.Unit(a).HP, "Counter should use the attacker's health after its strike")
		require.True(t, ex.Struck)
		require.True(t, ex.Countered)
		require.Equal(t, 50, ex.Dealt)
		require.Equal(t, 30, ex.Taken)
		require.Empty(t, ex.Destroyed)
		require.Equal(t, d, b.UnitAt(Coord{1, 0}).ID, "Both units should stay on the board")
		require.Equal(t, a, b.UnitAt(Coord{0, 0}).ID)
	})

	t.Run("primary weapon without ammunition", func(t *testing.T) {
		b := testBoard(t, duelRules(t, 0), 2, 1, "flat")
		a := place(t, b, "gunner", red, Coord{0, 0})
		d := place(t, b, "bravo", blue, Coord{1, 0})

		s := b.Simulate(b.Unit(a), b.Unit(d), b.TerrainOf(b.TileAt(Coord{1, 0})), MaxHP)
		require.False(t, s.OK, "Should report no interaction rather than zero damage")

		ex, err := b.ExecuteAttack(Coord{0, 0}, Coord{1, 0})
		require.NoError(t, err)
		require.False(t, ex.Struck)
		require.False(t, ex.Countered)
		require.Equal(t, MaxHP, b.Unit(a).HP, "Should not touch the attacker")
		require.Equal(t, MaxHP, b.Unit(d).HP, "Should not touch the defender")
	})

	t.Run("primary weapon spends ammunition", func(t *testing.T) {
		b := testBoard(t, duelRules(t, 2), 2, 1, "flat")
		a := place(t, b, "gunner", red, Coord{0, 0})
		place(t, b, "bravo", blue, Coord{1, 0})

		ex, err := b.ExecuteAttack(Coord{0, 0}, Coord{1, 0})
		require.NoError(t, err)
		require.True(t, ex.Struck)
		require.Equal(t, 1, b.Unit(a).Ammo)
	})

	t.Run("indirect defenders never counter", func(t *testing.T) {
		b := testBoard(t, duelRules(t, 0), 2, 1, "flat")
		a := place(t, b, "alpha", red, Coord{0, 0})
		m := place(t, b, "mortar", blue, Coord{1, 0})

		ex, err := b.ExecuteAttack(Coord{0, 0}, Coord{1, 0})
		require.NoError(t, err)
		require.False(t, ex.Countered)
		require.Equal(t, MaxHP, b.Unit(a).HP)
		require.Equal(t, 50, b.Unit(m).HP)
	})

	t.Run("out of the defender's range", func(t *testing.T) {
		rules := testRules(t)
		b := testBoard(t, rules, 3, 1, "plains")
		art := place(t, b, "artillery", red, Coord{0, 0})
		tank := place(t, b, "tank", blue, Coord{2, 0})

		ex, err := b.ExecuteAttack(Coord{0, 0}, Coord{2, 0})
		require.NoError(t, err)
		require.True(t, ex.Struck)
		require.Equal(t, 63, ex.Dealt, "70 against plains cover 1")
		require.Equal(t, 37, b.Unit(tank).HP)
		require.False(t, ex.Countered, "A tank cannot answer from two tiles away")
		require.Equal(t, MaxHP, b.Unit(art).HP)
	})

	t.Run("destroyed units leave the board", func(t *testing.T) {
		b := testBoard(t, duelRules(t, 0), 2, 1, "flat")
		place(t, b, "brute", red, Coord{0, 0})
		d := place(t, b, "bravo", blue, Coord{1, 0})
		b.TileAt(Coord{1, 0}).Capture = 40

		ex, err := b.ExecuteAttack(Coord{0, 0}, Coord{1, 0})
		require.NoError(t, err)
		require.Equal(t, 0, ex.DefenderHP, "Health should floor at zero")
		require.Equal(t, []UnitID{d}, ex.Destroyed)
		require.Nil(t, b.Unit(d))
		require.Nil(t, b.UnitAt(Coord{1, 0}))
		require.Equal(t, FullCapture, b.TileAt(Coord{1, 0}).Capture, "Should reset the vacated tile")
		require.False(t, ex.Countered)
		require.Equal(t, []TeamID{blue}, ex.Eliminated)
	})

	t.Run("teams without units anywhere", func(t *testing.T) {
		b := testBoard(t, duelRules(t, 0), 3, 1, "flat")
		green := b.AddTeam("green", "green", 5000)
		gone := b.AddTeam("grey", "grey", 0)
		b.Teams[gone].Active = false
		place(t, b, "alpha", red, Coord{0, 0})
		place(t, b, "bravo", blue, Coord{1, 0})

		ex, err := b.ExecuteAttack(Coord{0, 0}, Coord{1, 0})
		require.NoError(t, err)
		require.Empty(t, ex.Destroyed)
		require.Equal(t, []TeamID{green}, ex.Eliminated, "Should list every active team left without units")
	})

	t.Run("missing units", func(t *testing.T) {
		b := testBoard(t, duelRules(t, 0), 2, 1, "flat")
		_, err := b.ExecuteAttack(Coord{0, 0}, Coord{1, 0})
		require.ErrorIs(t, err, ErrNoUnit)
	})
}

func TestSimulateCover(t *testing.T) {
	b := testBoard(t, testRules(t), 2, 1, "plains")
	require.NoError(t, b.SetTerrain(Coord{1, 0}, "forest"))
	a := place(t, b, "tank", red, Coord{0, 0})
	d := place(t, b, "tank", blue, Coord{1, 0})

	s := b.Simulate(b.Unit(a), b.Unit(d), b.TerrainOf(b.TileAt(Coord{1, 0})), MaxHP)
	require.True(t, s.Primary)
	require.Equal(t, 44, s.Damage, "55 against forest cover 2")

	s = b.Simulate(b.Unit(a), b.Unit(d), b.TerrainOf(b.TileAt(Coord{1, 0})), 50)
	require.Equal(t, 22, s.Damage, "Damage should scale with health")

	b.Rules.Units["tank"].NoCover = true
	s = b.Simulate(b.Unit(a), b.Unit(d), b.TerrainOf(b.TileAt(Coord{1, 0})), MaxHP)
	require.Equal(t, 55, s.Damage, "Units without cover should ignore terrain")
}

func TestForecast(t *testing.T) {
	b := testBoard(t, duelRules(t, 0), 2, 1, "flat")
	a := place(t, b, "alpha", red, Coord{0, 0})
	d := place(t, b, "bravo", blue, Coord{1, 0})
	before := b.Copy()

	hit, counter, err := b.Forecast(Coord{0, 0}, Coord{1, 0})
	require.NoError(t, err)
	require.Equal(t, 50, hit.Damage)
	require.Equal(t, 30, counter.Damage)
	require.Equal(t, before, b, "Forecasting should not change the board")

	b.Unit(d).HP = 40
	_, counter, err = b.Forecast(Coord{0, 0}, Coord{1, 0})
	require.NoError(t, err)
	require.False(t, counter.OK, "A defender that would die cannot answer")
	require.Equal(t, MaxHP, b.Unit(a).HP)
}

func TestTargets(t *testing.T) {
	b := testBoard(t, testRules(t), 5, 5, "plains")
	art := place(t, b, "artillery", red, Coord{2, 2})
	place(t, b, "infantry", blue, Coord{2, 3})
	place(t, b, "infantry", blue, Coord{2, 0})
	place(t, b, "tank", red, Coord{0, 2})
	place(t, b, "apc", blue, Coord{4, 3})

	got := b.Targets(art)
	require.ElementsMatch(t, []Coord{{2, 0}, {4, 3}}, got, "Should list enemies inside the firing band only")

	tank := b.UnitAt(Coord{0, 2}).ID
	require.Empty(t, b.Targets(tank))
}

func TestCapture(t *testing.T) {
	t.Run("taking a city in two steps", func(t *testing.T) {
		b := testBoard(t, testRules(t), 1, 1, "city")
		b.TileAt(Coord{0, 0}).Owner = blue
		inf := place(t, b, "infantry", red, Coord{0, 0})

		require.True(t, b.CanCapture(inf))
		res, err := b.Capture(inf)
		require.NoError(t, err)
		require.False(t, res.Captured)
		require.Equal(t, 50, res.Progress)
		require.Equal(t, blue, b.TileAt(Coord{0, 0}).Owner)

		res, err = b.Capture(inf)
		require.NoError(t, err)
		require.True(t, res.Captured)
		require.Equal(t, blue, res.From)
		require.Equal(t, red, b.TileAt(Coord{0, 0}).Owner)
		require.Equal(t, FullCapture, b.TileAt(Coord{0, 0}).Capture, "Should reset progress after a capture")
		require.False(t, b.CanCapture(inf), "Should not capture an allied tile")
	})

	t.Run("progress already at zero", func(t *testing.T) {
		b := testBoard(t, testRules(t), 1, 1, "city")
		b.TileAt(Coord{0, 0}).Capture = 0
		inf := place(t, b, "infantry", red, Coord{0, 0})
		b.Unit(inf).HP = 1

		res, err := b.Capture(inf)
		require.NoError(t, err)
		require.True(t, res.Captured, "Should transfer on the first action")
		require.Equal(t, red, b.TileAt(Coord{0, 0}).Owner)
	})

	t.Run("taking a headquarters", func(t *testing.T) {
		b := testBoard(t, testRules(t), 3, 1, "plains")
		require.NoError(t, b.SetTerrain(Coord{0, 0}, "hq"))
		require.NoError(t, b.SetTerrain(Coord{2, 0}, "city"))
		b.TileAt(Coord{0, 0}).Owner = blue
		b.TileAt(Coord{0, 0}).Capture = 10
		b.TileAt(Coord{2, 0}).Owner = blue
		inf := place(t, b, "infantry", red, Coord{0, 0})
		place(t, b, "tank", blue, Coord{1, 0})

		res, err := b.Capture(inf)
		require.NoError(t, err)
		require.True(t, res.HQ)
		require.False(t, b.Teams[blue].Active, "Should defeat the owner")
		require.Zero(t, b.TeamUnitCount(blue))
		require.Equal(t, red, b.TileAt(Coord{2, 0}).Owner, "Should hand over the rest of the territory")
	})

	t.Run("units that cannot capture", func(t *testing.T) {
		b := testBoard(t, testRules(t), 2, 1, "city")
		tank := place(t, b, "tank", red, Coord{0, 0})
		_, err := b.Capture(tank)
		require.ErrorIs(t, err, ErrCannotCapture)

		b2 := testBoard(t, testRules(t), 1, 1, "plains")
		inf := place(t, b2, "infantry", red, Coord{0, 0})
		require.False(t, b2.CanCapture(inf), "Should not capture plain terrain")
	})
}
