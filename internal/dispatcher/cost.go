package dispatcher

import "github.com/liftctl/liftctl/internal/domain"

// carView is the minimal read-only surface the cost function needs from a
// car, kept narrow so cost.go can be tested against a fake without pulling
// in the car package's tick goroutine.
type carView interface {
	CurrentFloor() int
	EffectiveDirection() domain.Direction
	Bounds() (low, high int)
	RangeCount(dir domain.Direction, lo, hi int) int
	TotalScheduledStops() int
}

// costParams bundles the T/S/P constants the cost function is parameterized
// by (component design §4.4).
type costParams struct {
	travelPerFloor     float64
	stopPenalty        float64
	turnaroundPenalty  float64
}

// cost scores how expensive it would be for car to service a hall call at
// floor in direction dir, in simulated time units. Lower is better.
func cost(c carView, floor int, dir domain.Direction, p costParams) float64 {
	current := c.CurrentFloor()
	effDir := c.EffectiveDirection()
	low, high := c.Bounds()

	if effDir == domain.DirectionIdle {
		return p.travelPerFloor * float64(abs(floor-current))
	}

	if effDir == domain.DirectionUp {
		if dir == domain.DirectionUp {
			return costSameDirection(c, current, floor, domain.DirectionUp, p)
		}
		return costOppositeDirection(c, current, floor, low, high, domain.DirectionUp, p)
	}

	// effDir == DOWN
	if dir == domain.DirectionDown {
		return costSameDirection(c, current, floor, domain.DirectionDown, p)
	}
	return costOppositeDirection(c, current, floor, low, high, domain.DirectionDown, p)
}

// costSameDirection handles "request UP, car UP" and its DOWN mirror: either
// the floor is still ahead of the car's sweep, or the car already passed it
// and must complete a full loop before returning (turnaround penalty).
func costSameDirection(c carView, current, floor int, travel domain.Direction, p costParams) float64 {
	if travel == domain.DirectionUp {
		if current <= floor {
			intermediate := rangeCountStrict(c, domain.DirectionUp, current, floor)
			return p.travelPerFloor*float64(floor-current) + p.stopPenalty*float64(intermediate)
		}
		low, high := c.Bounds()
		return p.travelPerFloor*float64((high-current)+(high-low)+abs(floor-low)) +
			p.stopPenalty*float64(c.TotalScheduledStops()) + p.turnaroundPenalty
	}

	// travel == DOWN
	if current >= floor {
		intermediate := rangeCountStrict(c, domain.DirectionDown, floor, current)
		return p.travelPerFloor*float64(current-floor) + p.stopPenalty*float64(intermediate)
	}
	low, high := c.Bounds()
	return p.travelPerFloor*float64((current-low)+(high-low)+abs(floor-high)) +
		p.stopPenalty*float64(c.TotalScheduledStops()) + p.turnaroundPenalty
}

// costOppositeDirection handles "request UP, car DOWN" and its mirror: the
// car must turn around at turn = min(L, floor) (or max(H, floor) for the
// DOWN-request/UP-car case) before it can start serving the request.
func costOppositeDirection(c carView, current, floor, low, high int, carTravel domain.Direction, p costParams) float64 {
	if carTravel == domain.DirectionUp {
		// car moving UP, request wants DOWN: turn at the highest point.
		turn := high
		if floor > turn {
			turn = floor
		}
		upStops := c.RangeCount(domain.DirectionUp, current, turn)
		downStops := c.RangeCount(domain.DirectionDown, floor, turn)
		return p.travelPerFloor*float64((turn-current)+(turn-floor)) +
			p.stopPenalty*float64(upStops+downStops) + p.turnaroundPenalty
	}

	// car moving DOWN, request wants UP: turn at the lowest point.
	turn := low
	if floor < turn {
		turn = floor
	}
	downStops := c.RangeCount(domain.DirectionDown, turn, current)
	upStops := c.RangeCount(domain.DirectionUp, turn, floor)
	return p.travelPerFloor*float64((current-turn)+(floor-turn)) +
		p.stopPenalty*float64(downStops+upStops) + p.turnaroundPenalty
}

// rangeCountStrict counts stops strictly between lo and hi (exclusive),
// returning 0 when there is no room between them — CountInRange's swap
// behavior on lo>hi would otherwise misreport adjacent-floor requests.
func rangeCountStrict(c carView, dir domain.Direction, lo, hi int) int {
	if lo+1 > hi-1 {
		return 0
	}
	return c.RangeCount(dir, lo+1, hi-1)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
