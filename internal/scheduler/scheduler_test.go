package scheduler

import (
	"testing"

	"github.com/liftctl/liftctl/internal/domain"
)

func TestAddHallCallIdleAtCurrentFloorOpensDoor(t *testing.T) {
	s := New()
	res := s.AddHallCall(domain.DirectionIdle, 3, 3, domain.DirectionUp)
	if !res.OpenDoorNow {
		t.Fatalf("expected OpenDoorNow for a hall call at the current floor while idle")
	}
}

func TestAddHallCallIdleAboveAssignsUp(t *testing.T) {
	s := New()
	res := s.AddHallCall(domain.DirectionIdle, 0, 5, domain.DirectionUp)
	if res.AssignedDir != domain.DirectionUp {
		t.Fatalf("expected assigned direction UP, got %v", res.AssignedDir)
	}
	stop, ok := s.PeekNext(domain.DirectionUp, 0)
	if !ok || stop.Floor != 5 {
		t.Fatalf("expected next stop at floor 5, got %+v ok=%v", stop, ok)
	}
}

func TestMissedRequestServicedOnReturnInOriginalDirection(t *testing.T) {
	s := New()
	// Car moving UP from floor 5; a hall call arrives below it wanting UP.
	s.AddHallCall(domain.DirectionUp, 5, 2, domain.DirectionUp)

	// Going up, nothing is reachable above, so the scheduler flips to the
	// DOWN sweep, where the missed request surfaces as an UP stop.
	if stop, ok := s.PeekNext(domain.DirectionUp, 5); !ok || stop.Floor != 2 || stop.Direction != domain.DirectionUp {
		t.Fatalf("expected flip to surface the missed request at 2 as UP, got %+v ok=%v", stop, ok)
	}

	// On the return sweep (moving down, now past floor 5), it should
	// surface as an UP stop once reached as the turnaround candidate.
	stop, ok := s.PopNext(domain.DirectionDown, 6)
	if !ok {
		t.Fatalf("expected a stop on the return sweep")
	}
	if stop.Floor != 2 || stop.Direction != domain.DirectionUp {
		t.Fatalf("expected missed request serviced as UP at floor 2, got %+v", stop)
	}
}

func TestRemoveByIDMigratesHallCall(t *testing.T) {
	s := New()
	res := s.AddHallCall(domain.DirectionUp, 0, 7, domain.DirectionUp)

	floor, dir, found := s.RemoveByID(res.ID)
	if !found || floor != 7 || dir != domain.DirectionUp {
		t.Fatalf("RemoveByID = floor=%d dir=%v found=%v, want 7,up,true", floor, dir, found)
	}
	if _, ok := s.PeekNext(domain.DirectionUp, 0); ok {
		t.Fatalf("expected queue empty after removal")
	}
}

func TestCarCallAtCurrentFloorOpensDoorWithoutQueueing(t *testing.T) {
	s := New()
	openNow := s.AddCarCall(4, 4)
	if !openNow {
		t.Fatalf("expected door-open signal for car call at current floor")
	}
	if !s.Empty() {
		t.Fatalf("a car call at the current floor must not be queued")
	}
}

func TestInternalStopsTakePriorityOverExternalAtSameFloor(t *testing.T) {
	s := New()
	s.AddHallCall(domain.DirectionUp, 0, 5, domain.DirectionUp)
	s.AddCarCall(0, 5)

	stop, ok := s.PeekNext(domain.DirectionUp, 0)
	if !ok || stop.Floor != 5 || stop.Class != ClassInternal {
		t.Fatalf("expected internal class to win tie at same floor, got %+v ok=%v", stop, ok)
	}
}

func TestApexTurnaroundFlipsDirection(t *testing.T) {
	s := New()
	// Car moving up, a DOWN-bound hall call at floor 8 is the apex.
	s.AddHallCall(domain.DirectionUp, 0, 8, domain.DirectionDown)

	stop, ok := s.PopNext(domain.DirectionUp, 8)
	if !ok || stop.Floor != 8 || stop.Direction != domain.DirectionDown {
		t.Fatalf("expected apex turnaround stop at 8 going down, got %+v ok=%v", stop, ok)
	}
}

func TestDirectionFlipWhenExhausted(t *testing.T) {
	s := New()
	s.AddHallCall(domain.DirectionDown, 10, 2, domain.DirectionDown)

	// Nothing left to do UP, but a DOWN request exists — PeekNext with
	// effective UP direction should flip and recurse.
	stop, ok := s.PeekNext(domain.DirectionUp, 10)
	if !ok || stop.Floor != 2 {
		t.Fatalf("expected flip-to-down to surface floor 2, got %+v ok=%v", stop, ok)
	}
}

func TestIdlePicksFirstNonEmptyClassInOrder(t *testing.T) {
	s := New()
	s.AddHallCall(domain.DirectionIdle, 0, 3, domain.DirectionDown) // up_down: 3 > 0 and the passenger wants DOWN
	stop, ok := s.PeekNext(domain.DirectionIdle, 0)
	if !ok {
		t.Fatalf("expected a stop from IDLE state")
	}
	if stop.Floor != 3 {
		t.Fatalf("expected floor 3, got %d", stop.Floor)
	}
}

func TestRangeCountExcludesOutOfRange(t *testing.T) {
	s := New()
	s.AddHallCall(domain.DirectionUp, 0, 3, domain.DirectionUp)
	s.AddHallCall(domain.DirectionUp, 0, 6, domain.DirectionUp)
	s.AddHallCall(domain.DirectionUp, 0, 9, domain.DirectionUp)

	if got := s.RangeCount(domain.DirectionUp, 1, 6); got != 2 {
		t.Fatalf("RangeCount(1,6) = %d, want 2", got)
	}
}

func TestHasRequestsAboveAndBelow(t *testing.T) {
	s := New()
	s.AddHallCall(domain.DirectionUp, 0, 5, domain.DirectionUp)
	if !s.HasRequestsAbove(2) {
		t.Fatalf("expected HasRequestsAbove(2) true")
	}
	if s.HasRequestsAbove(9) {
		t.Fatalf("expected HasRequestsAbove(9) false")
	}
}
