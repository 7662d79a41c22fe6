package car

import (
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/liftctl/liftctl/internal/domain"
)

// RunState is the car's discrete operating state.
type RunState int

const (
	// StateIdle means no pending stop; the car sits with doors closed.
	StateIdle RunState = iota
	// StateMovingUp means the car is advancing toward a stop above it.
	StateMovingUp
	// StateMovingDown means the car is advancing toward a stop below it.
	StateMovingDown
	// StateDoorsOpen means the car has arrived and is dwelling with
	// doors open.
	StateDoorsOpen
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateMovingUp:
		return "MOVING_UP"
	case StateMovingDown:
		return "MOVING_DOWN"
	case StateDoorsOpen:
		return "DOORS_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Target is the (floor, direction) pair the car is currently moving
// toward, kept distinct from queue entries so UI reconciliation does not
// erase it mid-travel (§9, "Active target").
type Target struct {
	Floor     int
	Direction domain.Direction
	Valid     bool
}

// indicators holds the three UI button-indicator sets (internal,
// external-up, external-down) as fixed-size bitsets over the floor
// range. Using a bitset (rather than a map or []bool) gives O(words)
// status-snapshot construction and keeps membership tests O(1),
// grounded in the same library used for per-car stop bitmaps by one of
// the other example repos in this project's lineage.
type indicators struct {
	internal *bitset.BitSet
	extUp    *bitset.BitSet
	extDown  *bitset.BitSet
	minFloor int
}

func newIndicators(minFloor, maxFloor int) *indicators {
	n := uint(maxFloor-minFloor) + 1
	return &indicators{
		internal: bitset.New(n),
		extUp:    bitset.New(n),
		extDown:  bitset.New(n),
		minFloor: minFloor,
	}
}

func (ind *indicators) idx(floor int) uint {
	return uint(floor - ind.minFloor)
}

func (ind *indicators) setInternal(floor int)   { ind.internal.Set(ind.idx(floor)) }
func (ind *indicators) clearInternal(floor int) { ind.internal.Clear(ind.idx(floor)) }
func (ind *indicators) setExtUp(floor int)      { ind.extUp.Set(ind.idx(floor)) }
func (ind *indicators) clearExtUp(floor int)    { ind.extUp.Clear(ind.idx(floor)) }
func (ind *indicators) setExtDown(floor int)    { ind.extDown.Set(ind.idx(floor)) }
func (ind *indicators) clearExtDown(floor int)  { ind.extDown.Clear(ind.idx(floor)) }

func (ind *indicators) floorsSet(bs *bitset.BitSet) []int {
	var out []int
	for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
		out = append(out, int(i)+ind.minFloor)
	}
	return out
}

// State is the car's physical and scheduling state: position, run state,
// door, the active target, and the UI indicator sets. Guarded by mu so
// the car's own tick goroutine, the dispatcher (on registration), and the
// re-optimizer (on migration) observe a consistent snapshot — matching
// the lock-per-car shared-resource policy.
type State struct {
	mu sync.Mutex

	name            string
	currentFloor    int
	runState        RunState
	movingDirection domain.Direction // last non-idle direction, for UI + clearing semantics
	doorOpen        bool
	target          Target
	minFloor        int
	maxFloor        int

	ui *indicators
}

// NewState creates car state starting IDLE at minFloor.
func NewState(name string, minFloor, maxFloor int) *State {
	return &State{
		name:            name,
		currentFloor:    minFloor,
		runState:        StateIdle,
		movingDirection: domain.DirectionIdle,
		minFloor:        minFloor,
		maxFloor:        maxFloor,
		ui:              newIndicators(minFloor, maxFloor),
	}
}

func (s *State) Name() string { return s.name }

func (s *State) CurrentFloor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFloor
}

func (s *State) setCurrentFloor(f int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentFloor = f
}

func (s *State) RunState() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runState
}

// EffectiveDirection is the direction used for scheduling decisions: the
// current run direction, or — if idle with doors open — the direction the
// car was last moving (glossary: "Effective direction").
func (s *State) EffectiveDirection() domain.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.runState {
	case StateMovingUp:
		return domain.DirectionUp
	case StateMovingDown:
		return domain.DirectionDown
	case StateDoorsOpen:
		return s.movingDirection
	default:
		return domain.DirectionIdle
	}
}

func (s *State) DoorOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doorOpen
}

func (s *State) ActiveTarget() Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

func (s *State) MinFloor() int { return s.minFloor }
func (s *State) MaxFloor() int { return s.maxFloor }

func (s *State) IsFloorInRange(floor int) bool {
	return floor >= s.minFloor && floor <= s.maxFloor
}

// Snapshot is the externally visible representation of one car, matching
// the broadcaster's `car_snapshot` JSON shape.
type Snapshot struct {
	CarID                int     `json:"car_id"`
	CurrentFloor         float64 `json:"current_floor"`
	Direction            string  `json:"direction"`
	DoorOpen             bool    `json:"door_open"`
	ExternalUpRequests   []int   `json:"external_up_requests"`
	ExternalDownRequests []int   `json:"external_down_requests"`
	InternalRequests     []int   `json:"internal_requests"`
	Timestamp            int64   `json:"timestamp"`
}

// Equal reports whether two snapshots are identical ignoring Timestamp,
// the comparison the broadcaster uses to gate duplicate pushes.
func (s Snapshot) Equal(other Snapshot) bool {
	s.Timestamp = 0
	other.Timestamp = 0
	if len(s.ExternalUpRequests) != len(other.ExternalUpRequests) ||
		len(s.ExternalDownRequests) != len(other.ExternalDownRequests) ||
		len(s.InternalRequests) != len(other.InternalRequests) {
		return false
	}
	for i := range s.ExternalUpRequests {
		if s.ExternalUpRequests[i] != other.ExternalUpRequests[i] {
			return false
		}
	}
	for i := range s.ExternalDownRequests {
		if s.ExternalDownRequests[i] != other.ExternalDownRequests[i] {
			return false
		}
	}
	for i := range s.InternalRequests {
		if s.InternalRequests[i] != other.InternalRequests[i] {
			return false
		}
	}
	return s.CarID == other.CarID &&
		s.CurrentFloor == other.CurrentFloor &&
		s.Direction == other.Direction &&
		s.DoorOpen == other.DoorOpen
}

var nowFunc = func() int64 { return time.Now().UnixMilli() }

func directionString(d domain.Direction) string {
	switch d {
	case domain.DirectionUp:
		return "UP"
	case domain.DirectionDown:
		return "DOWN"
	default:
		return "IDLE"
	}
}
