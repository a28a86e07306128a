package domain

import "fmt"

// Immutable grid position. X grows eastwards, Y grows southwards (towards the yards).
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coordinate) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Manhattan distance between two grid positions.
func (c Coordinate) Manhattan(o Coordinate) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
