package domain

// Ordered grid coordinates from a leg's start to its end, both included.
// Consecutive entries differ by exactly one grid step.
type Path []Coordinate

// Steps is the number of moves along the path. It doubles as the leg cost.
func (p Path) Steps() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

func (p Path) Start() Coordinate { return p[0] }

func (p Path) End() Coordinate { return p[len(p)-1] }
