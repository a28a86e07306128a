package domain

import (
	"errors"
	"fmt"
)

// Boundary errors of the planning engine. Callers match them with errors.Is.
var (
	// ErrConfiguration reports a planning setup that cannot produce a decision,
	// such as a job with no candidate yards.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnreachableDestination reports a path request whose endpoints lie
	// outside the validated topology. It aborts the run.
	ErrUnreachableDestination = errors.New("unreachable destination")

	// ErrInputValidation reports malformed or duplicate jobs, trucks, yards or events.
	ErrInputValidation = errors.New("input validation error")

	ErrUnknownJob   = fmt.Errorf("%w: unknown job", ErrInputValidation)
	ErrUnknownTruck = fmt.Errorf("%w: unknown truck", ErrInputValidation)

	// ErrRunNotFound is returned by outcome stores for an unknown run id.
	ErrRunNotFound = errors.New("run not found")

	// ErrStalled is returned by the simulation driver when no job makes
	// progress for longer than the stall threshold.
	ErrStalled = errors.New("simulation stalled")
)
