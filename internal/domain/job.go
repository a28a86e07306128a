package domain

import (
	"fmt"
	"strings"
)

// Container movement type, as labelled in terminal job lists.
type JobKind string

const (
	// Discharge: pick the container up at the QC and take it to a yard.
	Discharge JobKind = "DI"
	// Load: fetch the container from a yard and bring it to the QC.
	Load JobKind = "LO"
	// Custom jobs carry an explicit leg sequence.
	Custom JobKind = "CUSTOM"
)

// Legs returns the fixed leg sequence of a job kind.
func (k JobKind) Legs() []LegType {
	switch k {
	case Discharge:
		return []LegType{BufferToQC, QCToBuffer, BufferToYard, YardToBuffer}
	case Load:
		return []LegType{BufferToYard, YardToBuffer, BufferToQC, QCToBuffer}
	default:
		return nil
	}
}

func ParseJobKind(s string) (JobKind, error) {
	switch k := JobKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case Discharge, Load, Custom:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown job type %q", ErrInputValidation, s)
	}
}

// Lifecycle of a job. Status only moves forward.
type JobStatus int

const (
	JobPending JobStatus = iota
	JobYardAssigned
	JobTruckAssigned
	JobInProgress
	JobComplete
)

func (s JobStatus) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobYardAssigned:
		return "yard_assigned"
	case JobTruckAssigned:
		return "truck_assigned"
	case JobInProgress:
		return "in_progress"
	case JobComplete:
		return "complete"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Job is a unit of container work requiring one truck for its whole leg sequence.
type Job struct {
	ID          string
	Kind        JobKind
	ContainerNo string
	QC          string
	QCSequence  int
	ArrivalTick int64
	Legs        []LegType

	// Yards the selector may choose from. Empty means every yard in the terminal.
	CandidateYards []string
	// Caller-pinned yard. Bypasses scoring but still counts towards usage.
	YardOverride string

	Status  JobStatus
	TruckID string
	YardID  string
	// Buffer slot of the assigned truck; every Buffer stop of the job resolves to it.
	Home Coordinate

	Dispatched int
	Completed  int
	StartTick  int64
	EndTick    int64
}

// NewJob builds a pending job with the leg sequence implied by kind.
func NewJob(id string, kind JobKind, qc string, arrival int64) *Job {
	return &Job{
		ID:          id,
		Kind:        kind,
		QC:          qc,
		ArrivalTick: arrival,
		Legs:        kind.Legs(),
		Status:      JobPending,
	}
}

// Validate checks the job's static fields. Topology references are checked by the planner.
func (j *Job) Validate() error {
	if strings.TrimSpace(j.ID) == "" {
		return fmt.Errorf("%w: job id must not be empty", ErrInputValidation)
	}
	if j.ArrivalTick < 0 {
		return fmt.Errorf("%w: job %s: negative arrival tick %d", ErrInputValidation, j.ID, j.ArrivalTick)
	}
	if len(j.Legs) == 0 {
		return fmt.Errorf("%w: job %s: empty leg sequence", ErrInputValidation, j.ID)
	}
	if j.Legs[0].From() != StopBuffer {
		return fmt.Errorf("%w: job %s: first leg %s must start at the buffer", ErrInputValidation, j.ID, j.Legs[0])
	}
	if last := j.Legs[len(j.Legs)-1]; last.To() != StopBuffer {
		return fmt.Errorf("%w: job %s: last leg %s must end at the buffer", ErrInputValidation, j.ID, last)
	}
	for i := 1; i < len(j.Legs); i++ {
		if j.Legs[i-1].To() != j.Legs[i].From() {
			return fmt.Errorf("%w: job %s: leg %d (%s) does not continue leg %d (%s)",
				ErrInputValidation, j.ID, i, j.Legs[i], i-1, j.Legs[i-1])
		}
	}
	if j.Visits(StopQC) && strings.TrimSpace(j.QC) == "" {
		return fmt.Errorf("%w: job %s: qc legs require a qc", ErrInputValidation, j.ID)
	}
	return nil
}

// Visits reports whether any leg of the job ends at the given stop kind.
func (j *Job) Visits(stop StopKind) bool {
	for _, l := range j.Legs {
		if l.To() == stop {
			return true
		}
	}
	return false
}

// NeedsDispatch reports whether the job's next leg is ready to be handed to its truck.
func (j *Job) NeedsDispatch() bool {
	return j.TruckID != "" && j.Status != JobComplete &&
		j.Dispatched == j.Completed && j.Dispatched < len(j.Legs)
}

// NextLeg is the leg the job will dispatch next.
func (j *Job) NextLeg() LegType { return j.Legs[j.Dispatched] }

// Bind the job to a truck parked at home.
func (j *Job) Bind(truckID string, home Coordinate, tick int64) error {
	if j.Status != JobYardAssigned {
		return fmt.Errorf("bind job %s: status is %s, want %s", j.ID, j.Status, JobYardAssigned)
	}
	j.TruckID = truckID
	j.Home = home
	j.StartTick = tick
	j.Status = JobTruckAssigned
	return nil
}

// CompleteLeg records completion of leg idx and reports whether the job is now complete.
func (j *Job) CompleteLeg(idx int, tick int64) (bool, error) {
	if j.TruckID == "" {
		return false, fmt.Errorf("%w: job %s has no truck", ErrInputValidation, j.ID)
	}
	if idx != j.Completed || idx >= j.Dispatched {
		return false, fmt.Errorf("%w: job %s: leg %d completed out of order (completed=%d dispatched=%d)",
			ErrInputValidation, j.ID, idx, j.Completed, j.Dispatched)
	}
	j.Completed++
	if j.Completed == len(j.Legs) {
		j.Status = JobComplete
		j.EndTick = tick
		return true, nil
	}
	j.Status = JobInProgress
	return false, nil
}
