// Package scheduler implements the per-car stop scheduler: six ordered
// floor indices classified by "current direction x request direction",
// and the LOOK + directional policy that picks the next floor to service.
//
// This generalizes the two-map up/down destination tracker this codebase
// used to keep (see internal/directions in the project history) into the
// six-queue model required to support hall-call migration by stable
// request identity and turnaround/"missed request" semantics.
package scheduler

import (
	"sync"

	"github.com/liftctl/liftctl/internal/domain"
	"github.com/liftctl/liftctl/internal/floorindex"
)

// RequestID identifies a hall call or car call for lookup and migration.
type RequestID = floorindex.RequestID

// Class is the tagged variant over the four request kinds the scheduler
// tracks. There is no dynamic dispatch here — a request is just data plus
// a Class, matching which of the six indices it lives in.
type Class int

const (
	// ClassInternal is a car call (pressed inside the car).
	ClassInternal Class = iota
	// ClassExternalSameDirection is a hall call served while sweeping in
	// the passenger's requested direction.
	ClassExternalSameDirection
	// ClassMissed is a hall call classified opposite to the car's current
	// sweep direction; reachable only on the return sweep.
	ClassMissed
)

// Stop describes a single pending or just-peeked floor to service.
type Stop struct {
	Floor     int
	Direction domain.Direction
	Class     Class
}

// Scheduler owns the six per-car ordered floor indices and a monotonic
// request-id counter. All six indices plus the id counter are guarded by
// one mutex: pop_next and remove_by_id must be race-free with respect to
// each other, and §5 requires that scheduler mutations be serialized
// within a single car.
type Scheduler struct {
	mu sync.Mutex

	internalUp   *floorindex.Index // car calls above current floor
	internalDown *floorindex.Index // car calls below current floor
	upUp         *floorindex.Index // hall calls >= current, car going UP, want UP
	upDown       *floorindex.Index // hall calls >= current, car going UP, want DOWN (apex/turnaround)
	downDown     *floorindex.Index // hall calls <= current, car going DOWN, want DOWN
	downUp       *floorindex.Index // hall calls <= current, car going DOWN, want UP (apex/turnaround)

	nextID  uint64
	nextInt uint64 // counter for anonymous internal (car-call) ids
}

// New returns an empty six-queue scheduler.
func New() *Scheduler {
	return &Scheduler{
		internalUp:   floorindex.New(),
		internalDown: floorindex.New(),
		upUp:         floorindex.New(),
		upDown:       floorindex.New(),
		downDown:     floorindex.New(),
		downUp:       floorindex.New(),
	}
}

// AddHallCallResult indicates whether an inserted hall call should cause
// the car to open its doors immediately (submitted at the current floor
// while idle) rather than being queued.
type AddHallCallResult struct {
	ID           RequestID
	OpenDoorNow  bool
	AssignedDir  domain.Direction // direction the car should adopt, if it was idle
	NewlyIdleDir bool
}

// AddHallCall classifies and inserts a hall call per the table in the
// component design: IDLE/UP/DOWN effective direction, crossed against
// floor-vs-current and the passenger's requested direction.
func (s *Scheduler) AddHallCall(effectiveDir domain.Direction, current, floor int, passengerDir domain.Direction) AddHallCallResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.allocID()

	switch effectiveDir {
	case domain.DirectionIdle:
		switch {
		case floor > current:
			if passengerDir == domain.DirectionUp {
				s.upUp.Insert(floor, id)
			} else {
				s.upDown.Insert(floor, id)
			}
			return AddHallCallResult{ID: id, AssignedDir: domain.DirectionUp, NewlyIdleDir: true}
		case floor < current:
			if passengerDir == domain.DirectionDown {
				s.downDown.Insert(floor, id)
			} else {
				s.downUp.Insert(floor, id)
			}
			return AddHallCallResult{ID: id, AssignedDir: domain.DirectionDown, NewlyIdleDir: true}
		default:
			return AddHallCallResult{ID: id, OpenDoorNow: true}
		}

	case domain.DirectionUp:
		if floor >= current {
			if passengerDir == domain.DirectionUp {
				s.upUp.Insert(floor, id)
			} else {
				s.upDown.Insert(floor, id)
			}
		} else {
			// Missed: the car already passed this floor on the way up;
			// serviced on the return sweep, in its original direction.
			s.downUp.Insert(floor, id)
		}
		return AddHallCallResult{ID: id}

	case domain.DirectionDown:
		if floor <= current {
			if passengerDir == domain.DirectionDown {
				s.downDown.Insert(floor, id)
			} else {
				s.downUp.Insert(floor, id)
			}
		} else {
			s.upDown.Insert(floor, id)
		}
		return AddHallCallResult{ID: id}
	}

	return AddHallCallResult{ID: id}
}

// AddCarCall classifies and inserts a car call: internal_up if above the
// current floor, internal_down if below, and produces no queued request
// (door opens) when placed at the current floor.
func (s *Scheduler) AddCarCall(current, floor int) (openDoorNow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.allocInternalID()
	switch {
	case floor > current:
		s.internalUp.Insert(floor, id)
	case floor < current:
		s.internalDown.Insert(floor, id)
	default:
		return true
	}
	return false
}

// RemoveByID searches the four external (hall-call) queues, in the order
// up_up, down_down, up_down, down_up, and removes the first match. It
// returns the floor and the passenger's original requested direction.
// Car calls are never migrated and are not searched here.
func (s *Scheduler) RemoveByID(id RequestID) (floor int, direction domain.Direction, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.upUp.RemoveByID(id); ok {
		return f, domain.DirectionUp, true
	}
	if f, ok := s.downDown.RemoveByID(id); ok {
		return f, domain.DirectionDown, true
	}
	if f, ok := s.upDown.RemoveByID(id); ok {
		return f, domain.DirectionDown, true
	}
	if f, ok := s.downUp.RemoveByID(id); ok {
		return f, domain.DirectionUp, true
	}
	return 0, domain.DirectionIdle, false
}

// PeekNext returns the next stop under the LOOK + directional policy
// without removing it from its queue. effectiveDir is IDLE, UP, or DOWN;
// current is the car's (integer-snapped) current floor.
func (s *Scheduler) PeekNext(effectiveDir domain.Direction, current int) (Stop, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStop(effectiveDir, current, false)
}

// PopNext behaves like PeekNext but removes the returned stop from its
// queue, and reports the effective direction the caller should adopt
// (relevant when an IDLE or exhausted car flips direction, or when the
// car recurses through a turnaround).
func (s *Scheduler) PopNext(effectiveDir domain.Direction, current int) (Stop, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStop(effectiveDir, current, true)
}

// nextStop implements the peek_next/pop_next policy of the component
// design. Must be called with s.mu held.
func (s *Scheduler) nextStop(effectiveDir domain.Direction, current int, remove bool) (Stop, bool) {
	switch effectiveDir {
	case domain.DirectionUp:
		type cand struct {
			floor  int
			class  Class
			source *floorindex.Index
		}
		var best *cand
		consider := func(f int, ok bool, class Class, src *floorindex.Index) {
			if !ok {
				return
			}
			c := cand{floor: f, class: class, source: src}
			if best == nil || c.floor < best.floor || (c.floor == best.floor && c.class < best.class) {
				best = &c
			}
		}
		if f, ok := s.internalUp.PeekMin(); ok {
			consider(f, true, ClassInternal, s.internalUp)
		}
		if f, ok := s.upUp.PeekMin(); ok {
			consider(f, true, ClassExternalSameDirection, s.upUp)
		}
		if f, ok := s.downUp.PeekMin(); ok && f > current {
			consider(f, true, ClassMissed, s.downUp)
		}
		if best != nil {
			if remove {
				best.source.RemoveFloor(best.floor)
			}
			return Stop{Floor: best.floor, Direction: domain.DirectionUp, Class: best.class}, true
		}

		// Apex/turnaround: service the highest up_down entry as a DOWN stop.
		if f, ok := s.upDown.PeekMax(); ok {
			if remove {
				s.upDown.PopMax()
			}
			return Stop{Floor: f, Direction: domain.DirectionDown, Class: ClassExternalSameDirection}, true
		}

		// Nothing reachable going UP: flip to DOWN if anything is pending there.
		if s.downDown.Len() > 0 || s.downUp.Len() > 0 || s.internalDown.Len() > 0 {
			return s.nextStop(domain.DirectionDown, current, remove)
		}
		return Stop{}, false

	case domain.DirectionDown:
		type cand struct {
			floor  int
			class  Class
			source *floorindex.Index
		}
		var best *cand
		consider := func(f int, ok bool, class Class, src *floorindex.Index) {
			if !ok {
				return
			}
			c := cand{floor: f, class: class, source: src}
			if best == nil || c.floor > best.floor || (c.floor == best.floor && c.class < best.class) {
				best = &c
			}
		}
		if f, ok := s.internalDown.PeekMax(); ok {
			consider(f, true, ClassInternal, s.internalDown)
		}
		if f, ok := s.downDown.PeekMax(); ok {
			consider(f, true, ClassExternalSameDirection, s.downDown)
		}
		if f, ok := s.upDown.PeekMax(); ok && f < current {
			consider(f, true, ClassMissed, s.upDown)
		}
		if best != nil {
			if remove {
				best.source.RemoveFloor(best.floor)
			}
			return Stop{Floor: best.floor, Direction: domain.DirectionDown, Class: best.class}, true
		}

		if f, ok := s.downUp.PeekMin(); ok {
			if remove {
				s.downUp.PopMin()
			}
			return Stop{Floor: f, Direction: domain.DirectionUp, Class: ClassExternalSameDirection}, true
		}

		if s.upUp.Len() > 0 || s.upDown.Len() > 0 || s.internalUp.Len() > 0 {
			return s.nextStop(domain.DirectionUp, current, remove)
		}
		return Stop{}, false

	default: // IDLE: first non-empty class, in order up_up, down_down, up_down, down_up
		if s.upUp.Len() > 0 {
			return s.nextStop(domain.DirectionUp, current, remove)
		}
		if s.downDown.Len() > 0 {
			return s.nextStop(domain.DirectionDown, current, remove)
		}
		if s.upDown.Len() > 0 {
			return s.nextStop(domain.DirectionUp, current, remove)
		}
		if s.downUp.Len() > 0 {
			return s.nextStop(domain.DirectionDown, current, remove)
		}
		return Stop{}, false
	}
}

// HasRequestsAbove reports whether any queue holds a request above floor.
// Supplements the original implementation's UI helper of the same name:
// used by the car on arrival (clearArrivalIndicators) to decide whether
// both external indicators at the arrival floor are cleared.
func (s *Scheduler) HasRequestsAbove(floor int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.internalUp.PeekMax(); ok && f > floor {
		return true
	}
	if f, ok := s.upUp.PeekMax(); ok && f > floor {
		return true
	}
	if f, ok := s.upDown.PeekMax(); ok && f > floor {
		return true
	}
	if f, ok := s.downUp.PeekMax(); ok && f > floor {
		return true
	}
	return false
}

// HasRequestsBelow reports whether any queue holds a request below floor.
func (s *Scheduler) HasRequestsBelow(floor int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.internalDown.PeekMin(); ok && f < floor {
		return true
	}
	if f, ok := s.downDown.PeekMin(); ok && f < floor {
		return true
	}
	if f, ok := s.downUp.PeekMin(); ok && f < floor {
		return true
	}
	if f, ok := s.upDown.PeekMin(); ok && f < floor {
		return true
	}
	return false
}

// ExternalMembership reports, for a single floor, whether it is currently
// present in each of the four external (hall-call) queues. Used by the
// car's per-tick UI reconciliation (§4.3 step 1), which must decide
// whether to keep an external indicator lit without being able to reach
// into the scheduler's internals.
type ExternalMembership struct {
	UpUp, DownDown, UpDown, DownUp bool
}

func (s *Scheduler) ExternalMembership(floor int) ExternalMembership {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ExternalMembership{
		UpUp:     s.upUp.Contains(floor),
		DownDown: s.downDown.Contains(floor),
		UpDown:   s.upDown.Contains(floor),
		DownUp:   s.downUp.Contains(floor),
	}
}

// InternalFloors returns the union of internal_up and internal_down
// floors, used to fully resync the internal UI indicator each tick.
func (s *Scheduler) InternalFloors() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append(s.internalUp.Floors(), s.internalDown.Floors()...)
	return out
}

// Empty reports whether all six queues are empty.
func (s *Scheduler) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.internalUp.Len() == 0 && s.internalDown.Len() == 0 &&
		s.upUp.Len() == 0 && s.upDown.Len() == 0 &&
		s.downDown.Len() == 0 && s.downUp.Len() == 0
}

// Snapshot returns the floors currently held by each externally visible
// queue kind, for UI indicator reconciliation and status reporting.
type Snapshot struct {
	InternalUp, InternalDown []int
	UpUp, UpDown             []int
	DownDown, DownUp         []int
}

// Peek returns a read-only snapshot of all six queues.
func (s *Scheduler) Peek() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		InternalUp:   s.internalUp.Floors(),
		InternalDown: s.internalDown.Floors(),
		UpUp:         s.upUp.Floors(),
		UpDown:       s.upDown.Floors(),
		DownDown:     s.downDown.Floors(),
		DownUp:       s.downUp.Floors(),
	}
}

// RangeCount returns the count of stops between lo and hi (inclusive) in
// the same-direction hall-call queue and the internal car-call queue
// matching dir (up_up + internal_up, or down_down + internal_down), used by
// the cost function's "intermediate stops" term.
func (s *Scheduler) RangeCount(dir domain.Direction, lo, hi int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch dir {
	case domain.DirectionUp:
		return s.upUp.CountInRange(lo, hi) + s.internalUp.CountInRange(lo, hi)
	case domain.DirectionDown:
		return s.downDown.CountInRange(lo, hi) + s.internalDown.CountInRange(lo, hi)
	default:
		return 0
	}
}

// TotalScheduledStops returns the total number of pending stops across all
// six queues, used by the cost function's turnaround-case stop penalty.
func (s *Scheduler) TotalScheduledStops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.internalUp.Len() + s.internalDown.Len() + s.upUp.Len() + s.upDown.Len() + s.downDown.Len() + s.downUp.Len()
}

// Bounds returns the lowest and highest scheduled stop across all six
// queues, defaulting to current when every queue is empty, as used by the
// cost function's L/H terms.
func (s *Scheduler) Bounds(current int) (low, high int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	low, high = current, current
	first := true
	for _, idx := range []*floorindex.Index{s.internalUp, s.internalDown, s.upUp, s.upDown, s.downDown, s.downUp} {
		mn, ok := idx.PeekMin()
		if !ok {
			continue
		}
		mx, _ := idx.PeekMax()
		if first || mn < low {
			low = mn
		}
		if first || mx > high {
			high = mx
		}
		first = false
	}
	return low, high
}

func (s *Scheduler) allocID() RequestID {
	s.nextID++
	return RequestID(s.nextID)
}

func (s *Scheduler) allocInternalID() RequestID {
	s.nextInt++
	// Internal (car-call) ids live in a disjoint numeric space (high bit
	// set) so they never collide with externally tracked hall-call ids,
	// even though internal_up/internal_down are never targets of
	// RemoveByID.
	return RequestID(1<<63 | s.nextInt)
}
