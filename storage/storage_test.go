package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rulesofwar/engine"
	"rulesofwar/game"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newSession starts a two-team skirmish on a 3x1 strip and plays turns of
// single moves.
func newSession(t *testing.T, turns int) *engine.Engine {
	t.Helper()
	rules, err := game.NewRules(
		map[string]*game.UnitType{
			"infantry": {Movement: 3, Secondary: map[string]int{"infantry": 55}, Terrain: map[string]int{"plains": 1}},
		},
		map[string]*game.Terrain{"plains": {Defense: 1}},
	)
	require.NoError(t, err)
	b, err := game.NewBoard(rules, 4, 1, "plains")
	require.NoError(t, err)
	b.Name = "strip"
	red := b.AddTeam("red", "red", 0)
	blue := b.AddTeam("blue", "blue", 0)
	_, err = b.AddUnit(game.NewUnit(rules.Units["infantry"]), red, game.Coord{X: 0, Y: 0})
	require.NoError(t, err)
	_, err = b.AddUnit(game.NewUnit(rules.Units["infantry"]), blue, game.Coord{X: 3, Y: 0})
	require.NoError(t, err)

	e := engine.NewFromBoard(b)
	for i := 0; i < turns; i++ {
		pos := e.Board().UnitsOf(e.CurrentTeam().ID)[0].Pos
		for _, in := range []engine.Input{engine.Point(pos.X, pos.Y), engine.Point(pos.X, pos.Y), engine.Choose(engine.OptWait)} {
			_, err := e.Handle(in)
			require.NoError(t, err)
		}
		require.NoError(t, e.EndTurn())
	}
	return e
}

func TestSaveAndLoad(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	e := newSession(t, 2)

	require.NoError(t, s.Save(ctx, "first", e.Export()))

	sd, err := s.Load(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, e.Replay(), sd.History)

	resumed, err := engine.Load(sd)
	require.NoError(t, err)
	assert.Equal(t, e.Board(), resumed.Board(), "A loaded session should resume where it was saved")
}

func TestSaveReplaces(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "game", newSession(t, 1).Export()))
	require.NoError(t, s.Save(ctx, "game", newSession(t, 3).Export()))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "game", entries[0].Name)
	assert.Equal(t, "strip", entries[0].Map)
	assert.Equal(t, 3, entries[0].Turns)
}

func TestList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, s.Save(ctx, "a", newSession(t, 0).Export()))
	require.NoError(t, s.Save(ctx, "b", newSession(t, 1).Export()))
	entries, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMissingSessions(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "nope"), ErrNotFound)

	t.Run("after deleting", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "gone", newSession(t, 0).Export()))
		require.NoError(t, s.Delete(ctx, "gone"))
		_, err := s.Load(ctx, "gone")
		require.ErrorIs(t, err, ErrNotFound)
	})
}
