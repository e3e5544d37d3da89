package game

import "fmt"

// Coord is a board position. X grows to the right, Y grows downwards.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Dist returns the Manhattan distance between two coordinates.
func (c Coord) Dist(o Coord) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Less orders coordinates row by row.
func (c Coord) Less(o Coord) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
