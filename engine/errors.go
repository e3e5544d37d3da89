package engine

import "errors"

var (
	// ErrInvalidInput means the input is not one of the current choices.
	// The board is left untouched.
	ErrInvalidInput = errors.New("invalid input")
	// ErrIllegalTransition means the input has the wrong shape for the
	// current step, or the turn cannot end yet.
	ErrIllegalTransition = errors.New("illegal transition")
	ErrGameOver          = errors.New("game is over")
)
