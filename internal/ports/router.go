package ports

import "ht-planning-service/internal/domain"

// Contract for lane-aware path computation between terminal reference points.
type Router interface {
	// Return the executable path for a leg.
	Path(leg domain.LegType, start, end domain.Coordinate) (domain.Path, error)
	// Return the step count Path would produce, without building the path.
	Cost(leg domain.LegType, start, end domain.Coordinate) (int, error)
}
