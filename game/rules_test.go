package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRules(t *testing.T) {
	t.Run("loading a complete rule set", func(t *testing.T) {
		r := testRules(t)

		inf, err := r.Unit("infantry")
		require.NoError(t, err)
		require.Equal(t, "infantry", inf.Name, "Should name types after their keys")
		require.Equal(t, 1, inf.RangeMin, "Should default to direct fire")
		require.Equal(t, 1, inf.RangeMax, "Should default to direct fire")

		art := r.Units["artillery"]
		require.True(t, art.Indirect)
		require.True(t, art.InRange(3))
		require.False(t, art.InRange(1), "Should respect the minimum range")

		require.True(t, r.Units["apc"].CanCarry("infantry"))
		require.False(t, r.Units["apc"].CanCarry("tank"))
		require.False(t, r.Units["tank"].CanCarry("infantry"), "Should not carry without capacity")

		require.True(t, r.Terrain["factory"].Buildable())
		require.False(t, r.Terrain["city"].Buildable())
		require.Equal(t, "city", r.Terrain["city"].Name)
	})

	t.Run("unknown unit type", func(t *testing.T) {
		_, err := testRules(t).Unit("zeppelin")
		require.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("dangling references", func(t *testing.T) {
		_, err := LoadRules(strings.NewReader(`
terrain:
  plains: {defense: 1}
units:
  infantry:
    movement: 3
    terrain: {plains: 1, lava: 1}
`))
		require.ErrorIs(t, err, ErrUnknownType, "Should reject terrain that does not exist")

		_, err = NewRules(
			map[string]*UnitType{"infantry": {Movement: 3, Secondary: map[string]int{"mech": 10}}},
			map[string]*Terrain{"plains": {}},
		)
		require.ErrorIs(t, err, ErrUnknownType, "Should reject damage against unknown types")
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := NewRules(map[string]*UnitType{"gun": {RangeMin: 3, RangeMax: 2}}, nil)
		require.Error(t, err)
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err := LoadRules(strings.NewReader("units: [1, 2"))
		require.Error(t, err)
	})
}
