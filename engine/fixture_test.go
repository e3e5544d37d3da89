package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"rulesofwar/game"
)

const (
	red  game.TeamID = 0
	blue game.TeamID = 1
)

func loadRules(t *testing.T) *game.Rules {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", "rules.yaml"))
	require.NoError(t, err)
	defer f.Close()
	r, err := game.LoadRules(f)
	require.NoError(t, err)
	return r
}

func loadMap(t *testing.T, name string) game.MapDescriptor {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()
	m, err := game.LoadMap(f)
	require.NoError(t, err)
	return m
}

// newCrossing starts a session on the crossing map:
//
//	H . . . H
//	F i C i F
//	P T # . A
//
// Red owns the left column and blue the right one. The red APC at (0,2)
// carries an infantry, (2,2) is forest and the blue artillery stands on a
// city.
func newCrossing(t *testing.T, options ...Option) *Engine {
	t.Helper()
	e, err := New(loadRules(t), loadMap(t, "crossing.yaml"), nil, options...)
	require.NoError(t, err)
	return e
}

// play feeds inputs that must all be accepted and returns the last signal.
func play(t *testing.T, e *Engine, inputs ...Input) Signal {
	t.Helper()
	var sig Signal
	for _, in := range inputs {
		var err error
		sig, err = e.Handle(in)
		require.NoError(t, err, "Input %v should be accepted", in)
	}
	return sig
}
