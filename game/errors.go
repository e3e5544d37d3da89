package game

import "errors"

var (
	ErrOccupiedTile  = errors.New("occupied tile")
	ErrOffBoard      = errors.New("coordinate is off the board")
	ErrNoUnit        = errors.New("no such unit")
	ErrCarrierFull   = errors.New("carrier is at capacity")
	ErrCannotCarry   = errors.New("carrier does not accept unit")
	ErrCannotCapture = errors.New("tile cannot be captured by unit")
	ErrUnknownType   = errors.New("unknown type")
	ErrInvalidMap    = errors.New("invalid map")
)
