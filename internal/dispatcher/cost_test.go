package dispatcher

import (
	"testing"

	"github.com/liftctl/liftctl/internal/domain"
)

type fakeCar struct {
	current int
	dir     domain.Direction
	low     int
	high    int
	rangeFn func(domain.Direction, int, int) int
	stops   int
}

func (f *fakeCar) CurrentFloor() int                    { return f.current }
func (f *fakeCar) EffectiveDirection() domain.Direction  { return f.dir }
func (f *fakeCar) Bounds() (int, int)                    { return f.low, f.high }
func (f *fakeCar) TotalScheduledStops() int              { return f.stops }
func (f *fakeCar) RangeCount(d domain.Direction, lo, hi int) int {
	if f.rangeFn != nil {
		return f.rangeFn(d, lo, hi)
	}
	return 0
}

var params = costParams{travelPerFloor: 5, stopPenalty: 5, turnaroundPenalty: 15}

func TestCostIdleIsTravelTimeOnly(t *testing.T) {
	c := &fakeCar{current: 2, dir: domain.DirectionIdle}
	got := cost(c, 7, domain.DirectionUp, params)
	if got != 25 {
		t.Fatalf("cost = %v, want 25", got)
	}
}

func TestCostSameDirectionAheadUsesIntermediateStops(t *testing.T) {
	c := &fakeCar{current: 2, dir: domain.DirectionUp, low: 2, high: 10,
		rangeFn: func(d domain.Direction, lo, hi int) int {
			if d == domain.DirectionUp && lo == 3 && hi == 6 {
				return 2
			}
			return 0
		},
	}
	got := cost(c, 7, domain.DirectionUp, params)
	// T*(7-2) + S*2 = 25 + 10 = 35
	if got != 35 {
		t.Fatalf("cost = %v, want 35", got)
	}
}

func TestCostSameDirectionBehindIncursTurnaround(t *testing.T) {
	c := &fakeCar{current: 8, dir: domain.DirectionUp, low: 0, high: 10, stops: 3}
	got := cost(c, 4, domain.DirectionUp, params)
	// T*((10-8)+(10-0)+|4-0|) + S*3 + P = 5*16 + 15 + 15 = 110
	if got != 110 {
		t.Fatalf("cost = %v, want 110", got)
	}
}

func TestCostOppositeDirectionIncursTurnaroundAtApex(t *testing.T) {
	c := &fakeCar{current: 5, dir: domain.DirectionUp, low: 0, high: 9}
	got := cost(c, 3, domain.DirectionDown, params)
	// turn = max(high, floor) = 9; T*((9-5)+(9-3)) + S*0 + P = 5*10 + 15 = 65
	if got != 65 {
		t.Fatalf("cost = %v, want 65", got)
	}
}

func TestRangeCountStrictReturnsZeroForAdjacentFloors(t *testing.T) {
	c := &fakeCar{rangeFn: func(domain.Direction, int, int) int {
		t.Fatalf("RangeCount should not be called for adjacent floors")
		return 0
	}}
	if got := rangeCountStrict(c, domain.DirectionUp, 2, 3); got != 0 {
		t.Fatalf("rangeCountStrict(2,3) = %d, want 0", got)
	}
}
