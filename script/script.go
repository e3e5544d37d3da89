// Package script drives an engine from a recorded list of inputs.
package script

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"rulesofwar/engine"
)

// EndTurn is the script entry that closes the current turn.
const EndTurn = "END"

// Parse decodes a JSON array of inputs: [x,y] for a tile, a string for a
// menu option and "END" to end the turn.
func Parse(in io.Reader) ([]engine.Input, error) {
	var inputs []engine.Input
	if err := json.NewDecoder(in).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("cannot decode script: %w", err)
	}
	return inputs, nil
}

// Result summarizes a script run.
type Result struct {
	Inputs    int
	Rejected  int
	Turns     int
	Winners   []string
	Finished  bool
	Stopped   bool // the game ended before the script did
	Remaining int
}

// Run feeds every input to e. Rejected inputs are logged and skipped so a
// hand-written script can keep going; notifications are logged as they
// appear.
func Run(e *engine.Engine, inputs []engine.Input) (Result, error) {
	var res Result
	for i, in := range inputs {
		if e.Over() {
			res.Stopped = true
			res.Remaining = len(inputs) - i
			break
		}
		res.Inputs++
		if in.Kind == engine.ExpectMenu && in.Choice == EndTurn {
			if err := e.EndTurn(); err != nil {
				return res, fmt.Errorf("cannot end turn at input %d: %w", i, err)
			}
			res.Turns++
			report(e)
			continue
		}

		sig, err := e.Handle(in)
		if err != nil {
			res.Rejected++
			log.Warn().Err(err).Int("index", i).Str("input", in.String()).Msg("rejected input")
			continue
		}
		if sig == engine.End {
			res.Turns++
		}
		report(e)
	}

	if e.Over() {
		res.Finished = true
		for _, id := range e.Winners() {
			res.Winners = append(res.Winners, e.Board().Team(id).Name)
		}
	}
	return res, nil
}

func report(e *engine.Engine) {
	for _, n := range e.PopNotifications() {
		log.Info().Str("color", n.Color).Msg(n.Text)
	}
}
