package domain

import "fmt"

type TruckStatus int

const (
	TruckIdle TruckStatus = iota
	TruckBusy
)

func (s TruckStatus) String() string {
	if s == TruckBusy {
		return "busy"
	}
	return "idle"
}

// Horizontal transport truck. Idle trucks park on a buffer slot.
type Truck struct {
	ID     string
	Pos    Coordinate
	Status TruckStatus
	JobID  string
	// Ticks of the most recent leg dispatches, oldest first.
	recent []int64
}

func NewTruck(id string, pos Coordinate) *Truck {
	return &Truck{ID: id, Pos: pos, Status: TruckIdle}
}

// Assign the truck to a job, remembering at most historyLimit assignment ticks.
func (t *Truck) Assign(jobID string, tick int64, historyLimit int) error {
	if t.Status == TruckBusy {
		return fmt.Errorf("assign truck: truck %s is busy with job %s", t.ID, t.JobID)
	}
	t.Status = TruckBusy
	t.JobID = jobID
	t.Record(tick, historyLimit)
	return nil
}

// Record remembers a leg dispatched to the truck at tick, keeping at most
// historyLimit entries.
func (t *Truck) Record(tick int64, historyLimit int) {
	if historyLimit <= 0 {
		return
	}
	t.recent = append(t.recent, tick)
	if over := len(t.recent) - historyLimit; over > 0 {
		t.recent = append(t.recent[:0], t.recent[over:]...)
	}
}

// Release the truck at pos, making it available again.
func (t *Truck) Release(pos Coordinate) {
	t.Status = TruckIdle
	t.JobID = ""
	t.Pos = pos
}

// RecentTicks returns a copy of the remembered dispatch ticks.
func (t *Truck) RecentTicks() []int64 {
	out := make([]int64, len(t.recent))
	copy(out, t.recent)
	return out
}
