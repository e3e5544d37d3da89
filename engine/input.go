package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"rulesofwar/game"
)

// InputKind is the shape of input a step expects.
type InputKind int

const (
	ExpectCoord InputKind = iota
	ExpectMenu
)

func (k InputKind) String() string {
	switch k {
	case ExpectCoord:
		return "coord"
	case ExpectMenu:
		return "menu"
	}
	return fmt.Sprintf("InputKind(%d)", int(k))
}

// Input is a board coordinate or a menu choice.
type Input struct {
	Kind   InputKind
	At     game.Coord
	Choice string
}

func Point(x, y int) Input {
	return Input{Kind: ExpectCoord, At: game.Coord{X: x, Y: y}}
}

func Choose(option string) Input {
	return Input{Kind: ExpectMenu, Choice: option}
}

func (in Input) String() string {
	if in.Kind == ExpectMenu {
		return fmt.Sprintf("%q", in.Choice)
	}
	return in.At.String()
}

// MarshalJSON writes coordinates as [x,y] and choices as plain strings.
func (in Input) MarshalJSON() ([]byte, error) {
	if in.Kind == ExpectMenu {
		return json.Marshal(in.Choice)
	}
	return json.Marshal([2]int{in.At.X, in.At.Y})
}

func (in *Input) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return fmt.Errorf("cannot decode input null: want [x,y] or a string")
	}
	var choice string
	if err := json.Unmarshal(data, &choice); err == nil {
		if choice == "" {
			return fmt.Errorf("cannot decode input %s: empty choice", data)
		}
		*in = Choose(choice)
		return nil
	}
	var xy []int
	if err := json.Unmarshal(data, &xy); err != nil || len(xy) != 2 {
		return fmt.Errorf("cannot decode input %s: want [x,y] or a string", data)
	}
	*in = Point(xy[0], xy[1])
	return nil
}

// Choices is what the current step accepts: coordinates to highlight or
// menu options to render.
type Choices struct {
	Coords  []game.Coord
	Options []string
}

func (c Choices) HasCoord(at game.Coord) bool {
	return slices.Contains(c.Coords, at)
}

func (c Choices) HasOption(opt string) bool {
	return slices.Contains(c.Options, opt)
}

// Signal tells the controller what to do after a step.
type Signal int

const (
	Continue Signal = iota
	Commit
	Trash
	Undo
	End
	Restart
)

func (s Signal) String() string {
	switch s {
	case Continue:
		return "continue"
	case Commit:
		return "commit"
	case Trash:
		return "trash"
	case Undo:
		return "undo"
	case End:
		return "end"
	case Restart:
		return "restart"
	}
	return fmt.Sprintf("Signal(%d)", int(s))
}
